package anthropic

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"mockmate/internal/llm"
)

const providerName = "anthropic"

// Client sends prompts to the Anthropic Messages API.
type Client struct {
	client anthropic.Client
	config *Config
}

func NewClient(config *Config, extra ...option.RequestOption) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithMaxRetries(0),
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}
	opts = append(opts, extra...)

	if config.MaxTokens <= 0 {
		config.MaxTokens = 4096
	}
	return &Client{
		client: anthropic.NewClient(opts...),
		config: config,
	}
}

func (c *Client) SendPrompt(ctx context.Context, prompt string) (string, error) {
	ctx, span := llm.StartChatSpan(ctx, providerName, c.config.Model)
	defer span.End()

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.config.Model),
		MaxTokens: c.config.MaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		code := llm.ClassifyError(err)
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			code = llm.ClassifyStatus(apiErr.StatusCode)
		}
		llm.FailSpan(span, code, err)
		return "", &llm.ProviderError{
			Provider: providerName,
			Code:     code,
			Message:  "Messages request failed",
			Err:      err,
		}
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		llm.FailSpan(span, llm.ErrCodeEmptyResponse, nil)
		return "", &llm.ProviderError{
			Provider: providerName,
			Code:     llm.ErrCodeEmptyResponse,
			Message:  "Empty response generated",
		}
	}

	llm.RecordUsage(span, resp.Usage.InputTokens, resp.Usage.OutputTokens)
	return sb.String(), nil
}

func (c *Client) GetProviderName() string {
	return providerName
}
