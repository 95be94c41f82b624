package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Env struct {
	AppAddr     string
	GinMode     string
	DBDSN       string
	JWTSecret   string
	TokenTTL    time.Duration
	CORSOrigins []string
}

// LoadEnv reads configuration from the environment, after loading a .env
// file when present. Defaults are development values.
func LoadEnv() Env {
	_ = godotenv.Load()

	return Env{
		AppAddr:     getEnv("APP_ADDR", ":8080"),
		GinMode:     getEnv("GIN_MODE", ""),
		DBDSN:       getEnv("DB_DSN", "root:@tcp(127.0.0.1:3306)/mybus?parseTime=true&loc=UTC&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s"),
		JWTSecret:   getEnv("JWT_SECRET", "super-secret-key-change-me"),
		TokenTTL:    getEnvHours("JWT_TTL_HOURS", 24),
		CORSOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvHours(key string, fallback int) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && parsed > 0 {
			return time.Duration(parsed) * time.Hour
		}
	}
	return time.Duration(fallback) * time.Hour
}

func splitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
