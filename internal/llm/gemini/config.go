package gemini

import (
	"errors"
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

const defaultModel = "gemini-2.5-flash"

// Config is read from GEMINI_* variables.
type Config struct {
	APIKey  string `envconfig:"API_KEY"`
	Model   string `envconfig:"MODEL"`
	BaseURL string `envconfig:"BASE_URL"`
}

func NewConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("gemini", &cfg); err != nil {
		return nil, fmt.Errorf("gemini config: %w", err)
	}
	if cfg.APIKey == "" {
		return nil, errors.New("GEMINI_API_KEY environment variable is required")
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	return &cfg, nil
}
