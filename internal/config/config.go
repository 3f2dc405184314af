package config

import (
	"os"
	"strconv"
)

// Config holds all configuration for the application
type Config struct {
	HTTP  HTTPConfig
	Redis RedisConfig
	Rules RulesConfig
}

// HTTPConfig holds the server listen configuration
type HTTPConfig struct {
	Addr string
}

// RedisConfig holds Redis-specific configuration. URL takes precedence
// over the individual fields when set.
type RedisConfig struct {
	URL      string
	Addr     string
	Password string
	DB       int
}

// RulesConfig holds rules catalog API configuration
type RulesConfig struct {
	BaseURL   string
	CacheSize int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		HTTP: HTTPConfig{
			Addr: getEnvOrDefault("HTTP_ADDR", ":8080"),
		},
		Redis: RedisConfig{
			URL:      os.Getenv("REDIS_URL"),
			Addr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvAsIntOrDefault("REDIS_DB", 0),
		},
		Rules: RulesConfig{
			BaseURL:   getEnvOrDefault("RULES_API_URL", "https://www.dnd5eapi.co/api"),
			CacheSize: getEnvAsIntOrDefault("RULES_CACHE_SIZE", 256),
		},
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
