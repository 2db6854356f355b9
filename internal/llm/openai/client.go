package openai

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"mockmate/internal/llm"
)

const providerName = "openai"

// Client sends prompts to an OpenAI-compatible Chat Completions API.
type Client struct {
	client openai.Client
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
		client: openai.NewClient(opts...),
		config: config,
	}
}

func (c *Client) SendPrompt(ctx context.Context, prompt string) (string, error) {
	ctx, span := llm.StartChatSpan(ctx, providerName, c.config.Model)
	defer span.End()

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.config.Model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		MaxCompletionTokens: openai.Int(c.config.MaxTokens),
	})
	if err != nil {
		code := llm.ClassifyError(err)
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			code = llm.ClassifyStatus(apiErr.StatusCode)
		}
		llm.FailSpan(span, code, err)
		return "", &llm.ProviderError{
			Provider: providerName,
			Code:     code,
			Message:  "Chat completion failed",
			Err:      err,
		}
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		llm.FailSpan(span, llm.ErrCodeEmptyResponse, nil)
		return "", &llm.ProviderError{
			Provider: providerName,
			Code:     llm.ErrCodeEmptyResponse,
			Message:  "Empty response generated",
		}
	}

	llm.RecordUsage(span, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) GetProviderName() string {
	return providerName
}
