package config

import (
	"errors"
	"fmt"
	"time"

	"atomichabits/utils"
)

type JWTConfig struct {
	SecretKey  string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

type Config struct {
	Env        string
	Port       string
	DemoMode   bool
	DemoUserID string
	Location   *time.Location

	Database   DatabaseConfig
	LocalStore LocalStoreConfig
	Redis      RedisConfig
	JWT        JWTConfig
	RateLimit  RateLimitConfig
	Log        utils.LogConfig

	CORSOrigins    []string
	MaxRequestSize int64
}

// Load reads the configuration from the environment. Call godotenv first if
// a .env file should be honoured.
func Load() (*Config, error) {
	cfg := &Config{
		Env:        utils.GetEnvAsString("GO_ENV", "development"),
		Port:       utils.GetEnvAsString("PORT", "8080"),
		DemoMode:   utils.GetEnvAsBool("DEMO_MODE", false),
		DemoUserID: utils.GetEnvAsString("DEMO_USER_ID", "demo-user"),

		Database:   LoadDatabaseConfig(),
		LocalStore: LoadLocalStoreConfig(),
		Redis:      LoadRedisConfig(),
		JWT: JWTConfig{
			SecretKey:  utils.GetEnvAsString("JWT_SECRET_KEY", ""),
			Issuer:     utils.GetEnvAsString("JWT_ISSUER", "atomichabits"),
			AccessTTL:  utils.GetEnvAsDuration("JWT_EXPIRATION_TIME", 30*time.Minute),
			RefreshTTL: utils.GetEnvAsDuration("REFRESH_TOKEN_EXPIRATION_TIME", 7*24*time.Hour),
		},
		RateLimit: RateLimitConfig{
			RPS:   utils.GetEnvAsFloat("RATE_LIMIT_RPS", 5),
			Burst: utils.GetEnvAsInt("RATE_LIMIT_BURST", 30),
		},
		Log: utils.LogConfig{
			Level: utils.GetEnvAsString("LOG_LEVEL", "info"),
			File:  utils.GetEnvAsString("LOG_FILE", ""),
			JSON:  utils.GetEnvAsBool("LOG_JSON", false),
		},
		CORSOrigins:    utils.GetEnvAsSlice("CORS_ORIGINS", []string{"http://localhost:3000"}),
		MaxRequestSize: int64(utils.GetEnvAsInt("MAX_REQUEST_SIZE", 1<<20)),
	}

	loc, err := time.LoadLocation(utils.GetEnvAsString("TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	cfg.Location = loc

	if cfg.JWT.SecretKey == "" {
		if !cfg.DemoMode && cfg.Env != "test" {
			return nil, errors.New("JWT_SECRET_KEY is not set")
		}
		cfg.JWT.SecretKey = "test_secret_key"
	}

	return cfg, nil
}
