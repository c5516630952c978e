package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	// EncryptionKeys is a comma-separated base64 keyring, first key primary.
	EncryptionKeys string `env:"ENCRYPTION_KEYS"`

	Postgres PostgresConfig
	Mongo    MongoConfig
	Redis    RedisConfig
}

type PostgresConfig struct {
	DSN string `env:"POSTGRES_DSN, default=host=localhost user=postgres dbname=access_engine port=5432 sslmode=disable"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=access_engine"`
}

type RedisConfig struct {
	Addr      string        `env:"REDIS_ADDR, default=localhost:6379"`
	DB        int           `env:"REDIS_DB,   default=0"`
	ToggleTTL time.Duration `env:"TOGGLE_CACHE_TTL, default=30s"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("config: JWT_SECRET is required")
	}
	if cfg.EncryptionKeys == "" {
		return nil, fmt.Errorf("config: ENCRYPTION_KEYS is required")
	}
	return &cfg, nil
}
