package gemini

import (
	"context"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"mockmate/internal/llm"
)

const providerName = "gemini"

// Client sends prompts to the Gemini API.
type Client struct {
	client *genai.Client
	config *Config
}

func NewClient(config *Config) (*Client, error) {
	return newClient(context.Background(), config, nil)
}

func newClient(ctx context.Context, config *Config, httpClient *http.Client) (*Client, error) {
	cc := &genai.ClientConfig{
		APIKey:     config.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if config.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL, APIVersion: "v1beta"}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, &llm.ProviderError{
			Provider: providerName,
			Code:     llm.ErrCodeAPIKey,
			Message:  "Failed to create Gemini client",
			Err:      err,
		}
	}

	return &Client{
		client: client,
		config: config,
	}, nil
}

// SendPrompt returns the concatenated text parts of the first candidate.
func (c *Client) SendPrompt(ctx context.Context, prompt string) (string, error) {
	ctx, span := llm.StartChatSpan(ctx, providerName, c.config.Model)
	defer span.End()

	result, err := c.client.Models.GenerateContent(ctx, c.config.Model, genai.Text(prompt), nil)
	if err != nil {
		code := llm.ClassifyError(err)
		llm.FailSpan(span, code, err)
		return "", &llm.ProviderError{
			Provider: providerName,
			Code:     code,
			Message:  "Failed to generate content",
			Err:      err,
		}
	}

	text := responseText(result)
	if text == "" {
		llm.FailSpan(span, llm.ErrCodeEmptyResponse, nil)
		return "", &llm.ProviderError{
			Provider: providerName,
			Code:     llm.ErrCodeEmptyResponse,
			Message:  "Empty response generated",
		}
	}
	return text, nil
}

func responseText(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 {
		return ""
	}
	candidate := result.Candidates[0]
	if candidate == nil || candidate.Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

func (c *Client) GetProviderName() string {
	return providerName
}
