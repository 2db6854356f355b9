package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	Env       string `envconfig:"APP_ENV" default:"development"`
	Port      int    `envconfig:"PORT" default:"8080"`
	JWT       JWTConfig
	LLM       LLMConfig
	Store     StoreConfig
	Redis     RedisConfig
	Session   SessionConfig
	HTTP      HTTPConfig
	CORS      CORSConfig
	Telemetry TelemetryConfig
}

type JWTConfig struct {
	Secret string `envconfig:"JWT_SECRET" required:"true"`
}

// LLMConfig selects the AI gateway provider; each provider reads its own
// credentials and model name.
type LLMConfig struct {
	Provider          string        `envconfig:"LLM_PROVIDER" default:"gemini"`
	EvaluationTimeout time.Duration `envconfig:"EVALUATION_TIMEOUT" default:"60s"`
	GenerationTimeout time.Duration `envconfig:"GENERATION_TIMEOUT" default:"90s"`
}

type StoreConfig struct {
	Driver   string `envconfig:"STORE_DRIVER" default:"mongo"`
	MongoURI string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDB  string `envconfig:"MONGO_DB" default:"mockmate"`
	DSN      string `envconfig:"DATABASE_DSN"`
}

type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

type SessionConfig struct {
	TTL           time.Duration `envconfig:"SESSION_TTL" default:"30m"`
	SweepSchedule string        `envconfig:"SWEEP_SCHEDULE" default:"@every 1m"`
}

type HTTPConfig struct {
	RequestTimeout  time.Duration `envconfig:"HTTP_REQUEST_TIMEOUT" default:"120s"`
	ShutdownTimeout time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"30s"`
}

type CORSConfig struct {
	TrustedOrigins []string `envconfig:"CORS_TRUSTED_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
}

type TelemetryConfig struct {
	Endpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Headers  string `envconfig:"OTEL_EXPORTER_OTLP_HEADERS"`
}

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var supportedProviders = map[string]bool{
	"gemini":    true,
	"openai":    true,
	"anthropic": true,
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
		"test":        true,
	}
	if !validEnvs[c.Env] {
		return fmt.Errorf("invalid environment: %s (must be one of: development, staging, production, test)", c.Env)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d (must be between 1 and 65535)", c.Port)
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}
	if !supportedProviders[c.LLM.Provider] {
		return fmt.Errorf("unsupported AI provider: %s (must be one of: gemini, openai, anthropic)", c.LLM.Provider)
	}
	if c.LLM.EvaluationTimeout <= 0 || c.LLM.GenerationTimeout <= 0 {
		return fmt.Errorf("EVALUATION_TIMEOUT and GENERATION_TIMEOUT must be positive")
	}

	switch c.Store.Driver {
	case DriverMongo:
		if c.Store.MongoURI == "" || c.Store.MongoDB == "" {
			return fmt.Errorf("MONGO_URI and MONGO_DB are required for the mongo store")
		}
	case DriverPostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("DATABASE_DSN is required for the postgres store")
		}
	case DriverSQLite:
		if c.Store.DSN == "" {
			c.Store.DSN = "mockmate.db"
		}
	default:
		return fmt.Errorf("invalid STORE_DRIVER: %s (must be one of: mongo, postgres, sqlite)", c.Store.Driver)
	}

	if c.Redis.Addr == "" {
		return fmt.Errorf("REDIS_ADDR is required")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.Session.SweepSchedule == "" {
		return fmt.Errorf("SWEEP_SCHEDULE is required")
	}
	// the request timeout bounds a whole stop request, evaluation included
	if c.HTTP.RequestTimeout <= c.LLM.EvaluationTimeout {
		return fmt.Errorf("HTTP_REQUEST_TIMEOUT (%s) must exceed EVALUATION_TIMEOUT (%s)",
			c.HTTP.RequestTimeout, c.LLM.EvaluationTimeout)
	}
	if c.HTTP.RequestTimeout <= c.LLM.GenerationTimeout {
		return fmt.Errorf("HTTP_REQUEST_TIMEOUT (%s) must exceed GENERATION_TIMEOUT (%s)",
			c.HTTP.RequestTimeout, c.LLM.GenerationTimeout)
	}
	if len(c.CORSOrigins()) == 0 {
		return fmt.Errorf("at least one trusted origin must be specified")
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) ServerAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// CORSOrigins returns the trimmed, non-empty trusted origins.
func (c *Config) CORSOrigins() []string {
	origins := make([]string, 0, len(c.CORS.TrustedOrigins))
	for _, origin := range c.CORS.TrustedOrigins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// String omits secrets.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Env=%s, Port=%d, LLM.Provider=%s, Store.Driver=%s, Redis.Addr=%s, "+
		"Session.TTL=%s, CORS.Origins=%d, Telemetry=%t}",
		c.Env, c.Port, c.LLM.Provider, c.Store.Driver, c.Redis.Addr,
		c.Session.TTL, len(c.CORSOrigins()), c.Telemetry.Endpoint != "")
}
