package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port     string `envconfig:"PORT" default:"8080"`
	GinMode  string `envconfig:"GIN_MODE" default:"release"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	// json or text
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	ArtifactManifest string `envconfig:"ARTIFACT_MANIFEST" default:"models/artifacts.yaml"`
	MismatchPolicy   string `envconfig:"MISMATCH_POLICY" default:"zero-fill"`
	ONNXRuntimeLib   string `envconfig:"ONNXRUNTIME_LIB"`

	EnableDB    bool   `envconfig:"ENABLE_DB" default:"false"`
	DatabaseURL string `envconfig:"DATABASE_URL"`

	RateLimitRPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"20"`
	RateLimitBurst int     `envconfig:"RATE_LIMIT_BURST" default:"40"`
	MaxBodyBytes   int64   `envconfig:"MAX_BODY_BYTES" default:"1048576"`

	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env config: %w", err)
	}

	if cfg.EnableDB && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when ENABLE_DB=true")
	}
	if cfg.RateLimitRPS < 0 || cfg.RateLimitBurst < 0 {
		return nil, fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must not be negative")
	}

	return &cfg, nil
}
