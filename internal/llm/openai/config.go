package openai

import (
	"errors"
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

const defaultModel = "gpt-4o-mini"

// Config targets OpenAI or any compatible endpoint via OPENAI_BASE_URL.
type Config struct {
	APIKey    string `envconfig:"API_KEY"`
	Model     string `envconfig:"MODEL"`
	BaseURL   string `envconfig:"BASE_URL"`
	MaxTokens int64  `envconfig:"MAX_TOKENS" default:"4096"`
}

func NewConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("openai", &cfg); err != nil {
		return nil, fmt.Errorf("openai config: %w", err)
	}
	if cfg.APIKey == "" {
		return nil, errors.New("OPENAI_API_KEY environment variable is required")
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.MaxTokens <= 0 {
		return nil, fmt.Errorf("OPENAI_MAX_TOKENS must be positive, got %d", cfg.MaxTokens)
	}
	return &cfg, nil
}
