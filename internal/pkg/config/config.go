package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	API    APIConfig
	Upload UploadConfig
	Stub   StubConfig
}

// APIConfig locates the remote MediSage service.
type APIConfig struct {
	BaseURL string        `env:"MEDISAGE_API_BASE,    default=http://localhost:8000"`
	Timeout time.Duration `env:"MEDISAGE_API_TIMEOUT, default=30s"`
}

// UploadConfig bounds what the upload workflow accepts client-side.
type UploadConfig struct {
	MaxBytes int64 `env:"MEDISAGE_MAX_UPLOAD_BYTES, default=10485760"`
}

// StubConfig configures the labstub development server. RedisAddr is
// optional; when empty the duplicate-upload guard stays in process memory.
type StubConfig struct {
	Port      string `env:"LABSTUB_PORT, default=8000"`
	RedisAddr string `env:"LABSTUB_REDIS_ADDR"`
	RedisDB   int    `env:"LABSTUB_REDIS_DB, default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
