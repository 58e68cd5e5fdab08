package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Dosada05/chess-pairings/storage"
	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	defaultPort      = 8080
	defaultMaxRounds = 20
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL        string
	ServerPort         int
	AppEnv             string
	MaxRounds          int
	CORSAllowedOrigins []string
	R2                 storage.CloudflareR2UploaderConfig
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == EnvDevelopment
}

// Load reads the configuration from the environment, loading a .env file first when
// one is present.
func Load() (*Config, error) {
	_ = godotenv.Load() // .env нужен только локально

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	port, err := intFromEnv("SERVER_PORT", defaultPort)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	maxRounds, err := intFromEnv("MAX_ROUNDS", defaultMaxRounds)
	if err != nil {
		return nil, err
	}
	if maxRounds < 1 {
		return nil, fmt.Errorf("MAX_ROUNDS must be positive, got %d", maxRounds)
	}

	appEnv := strings.ToLower(strings.TrimSpace(os.Getenv("APP_ENV")))
	if appEnv == "" {
		appEnv = EnvProduction
	}

	cfg := &Config{
		DatabaseURL:        dbURL,
		ServerPort:         port,
		AppEnv:             appEnv,
		MaxRounds:          maxRounds,
		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS"), []string{"*"}),
		R2: storage.CloudflareR2UploaderConfig{
			AccountID:       os.Getenv("R2_ACCOUNT_ID"),
			AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
			BucketName:      os.Getenv("R2_BUCKET_NAME"),
			PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
		},
	}

	return cfg, nil
}

func intFromEnv(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return v, nil
}

func splitList(raw string, def []string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
