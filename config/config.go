package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
)

// Supported platform identifiers.
const (
	PlatformAuto   = "auto"
	PlatformStdio  = "stdio"
	PlatformLambda = "lambda"
)

// Config holds the process-level settings read from the environment.
// The engine-controlled settings live in RuntimeOptions instead.
type Config struct {
	// ServiceName prefixes metric names and tags every log entry.
	ServiceName string `env:"SERVICE_NAME,default=e5e-function"`

	// Environment (development, staging, production). Also selects the
	// .env.{Environment} file.
	Environment string `env:"ENVIRONMENT,default=production"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL,default=info"`

	// Platform selects the transport: stdio (the e5e engine), lambda, or
	// auto to detect it from the environment.
	Platform string `env:"E5E_PLATFORM,default=auto"`

	// HandlerTimeout bounds a single invocation. Zero disables it, which is
	// what the e5e engine expects.
	HandlerTimeout time.Duration `env:"HANDLER_TIMEOUT,default=0s"`

	// EnableMetrics toggles the metrics middleware.
	EnableMetrics bool `env:"HANDLER_ENABLE_METRICS,default=true"`

	// MetricsTextfile, when set, receives the metrics in the Prometheus text
	// format on shutdown.
	MetricsTextfile string `env:"METRICS_TEXTFILE"`

	// LambdaEntrypoint names the registered function served on AWS Lambda,
	// where the engine's startup arguments are not available.
	LambdaEntrypoint string `env:"E5E_ENTRYPOINT"`
}

// Load reads the .env files and decodes the environment into a Config.
func Load() (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, fmt.Errorf("failed to load env files: %w", err)
	}

	cfg, err := parse()
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Default returns the configuration used when nothing is set in the environment.
func Default() *Config {
	return &Config{
		ServiceName: "e5e-function",
		Environment: "production",
		LogLevel:    "info",
		Platform:    PlatformAuto,
		// metrics are cheap and local, keep them on
		EnableMetrics: true,
	}
}

func parse() (*Config, error) {
	cfg := &Config{}
	if err := envdecode.Decode(cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, err
	}
	return cfg, nil
}

// Validate normalizes the configuration and rejects values the runtime
// cannot work with.
func (c *Config) Validate() error {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	case "":
		c.LogLevel = "info"
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.LogLevel)
	}

	c.Platform = strings.ToLower(strings.TrimSpace(c.Platform))
	switch c.Platform {
	case PlatformAuto, PlatformStdio, PlatformLambda:
	case "":
		c.Platform = PlatformAuto
	default:
		return fmt.Errorf("%w: unknown platform %q", ErrInvalidConfig, c.Platform)
	}

	if c.HandlerTimeout < 0 {
		return fmt.Errorf("%w: negative handler timeout %s", ErrInvalidConfig, c.HandlerTimeout)
	}

	if c.ServiceName == "" {
		c.ServiceName = "e5e-function"
	}

	if c.Environment == "" {
		c.Environment = "production"
	}

	return nil
}
