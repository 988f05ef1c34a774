package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	DatabaseURL   string
	Port          string
	Environment   string
	PolygonAPIKey string

	// Market data cache TTL (seconds in env, default 15 minutes)
	CacheTTL time.Duration

	// Maximum accepted upload size for fonts/logos, bytes
	MaxUploadBytes int64
}

func Load() *Config {
	defaultDSN := "root:chartstudio@tcp(127.0.0.1:3306)/chart_studio?charset=utf8mb4&parseTime=True&loc=Local"

	ttlSeconds := getEnvInt("CACHE_TTL_SECONDS", 900)

	return &Config{
		DatabaseURL:    getEnv("DATABASE_URL", defaultDSN),
		Port:           getEnv("PORT", "8080"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		PolygonAPIKey:  getEnv("POLYGON_API_KEY", ""),
		CacheTTL:       time.Duration(ttlSeconds) * time.Second,
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", 10<<20)),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
