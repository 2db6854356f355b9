package llm

import (
	"context"
	"errors"
	"strings"
)

// Provider is the AI gateway: one prompt in, one raw text reply out.
// No streaming and no structured output contract; callers sanitize the reply.
type Provider interface {
	SendPrompt(ctx context.Context, prompt string) (string, error)
	GetProviderName() string
}

// represents an error from an LLM provider
type ProviderError struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return e.Provider + " error: " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Provider + " error: " + e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Common error codes
// For current and future use across different providers
const (
	ErrCodeAPIKey        = "invalid_api_key"
	ErrCodeRateLimit     = "rate_limit_exceeded"
	ErrCodeServiceDown   = "service_unavailable"
	ErrCodeInvalidInput  = "invalid_input"
	ErrCodeTimeout       = "timeout"
	ErrCodeEmptyResponse = "empty_response"
)

// ClassifyError maps a transport error to a provider error code.
func ClassifyError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ErrCodeTimeout
	case isRateLimitError(err):
		return ErrCodeRateLimit
	case isAuthError(err):
		return ErrCodeAPIKey
	}
	return ErrCodeServiceDown
}

// ClassifyStatus maps an HTTP status returned by a provider API to an error code.
func ClassifyStatus(status int) string {
	switch {
	case status == 429:
		return ErrCodeRateLimit
	case status == 401 || status == 403:
		return ErrCodeAPIKey
	case status == 400 || status == 404 || status == 422:
		return ErrCodeInvalidInput
	case status == 408 || status == 504:
		return ErrCodeTimeout
	}
	return ErrCodeServiceDown
}

func isRateLimitError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "resource_exhausted") ||
		strings.Contains(msg, "quota")
}

func isAuthError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "401") ||
		strings.Contains(msg, "403") ||
		strings.Contains(msg, "api key") ||
		strings.Contains(msg, "permission_denied")
}
