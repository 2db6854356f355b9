package anthropic

import (
	"errors"
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

const defaultModel = "claude-haiku-4-5"

type Config struct {
	APIKey    string `envconfig:"API_KEY"`
	Model     string `envconfig:"MODEL"`
	BaseURL   string `envconfig:"BASE_URL"`
	MaxTokens int64  `envconfig:"MAX_TOKENS" default:"4096"`
}

func NewConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("anthropic", &cfg); err != nil {
		return nil, fmt.Errorf("anthropic config: %w", err)
	}
	if cfg.APIKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY environment variable is required")
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.MaxTokens <= 0 {
		return nil, fmt.Errorf("ANTHROPIC_MAX_TOKENS must be positive, got %d", cfg.MaxTokens)
	}
	return &cfg, nil
}
