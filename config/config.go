package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr             string
	DatabasePath     string
	LogLevel         string
	Environment      string
	CORSOrigins      []string
	ReportDir        string
	MaxBodyBytes     int64
	AggregateWorkers int
	ClosingEnabled   bool
	ClosingInterval  time.Duration
}

func Load() Config {
	return Config{
		Addr:             getEnv("APP_ADDR", ":8080"),
		DatabasePath:     getEnv("DATABASE_PATH", "earnings.db"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		Environment:      getEnv("APP_ENV", "development"),
		CORSOrigins:      getEnvList("CORS_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		ReportDir:        getEnv("REPORT_DIR", "storage/reports"),
		MaxBodyBytes:     int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		AggregateWorkers: getEnvInt("AGGREGATE_WORKERS", 4),
		ClosingEnabled:   getEnvBool("MONTH_CLOSING_ENABLED", true),
		ClosingInterval:  getEnvDuration("MONTH_CLOSING_INTERVAL", time.Hour),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("APP_ADDR is required")
	}
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.AggregateWorkers <= 0 {
		return fmt.Errorf("AGGREGATE_WORKERS must be positive")
	}
	if c.ClosingEnabled && c.ClosingInterval < time.Minute {
		return fmt.Errorf("MONTH_CLOSING_INTERVAL must be at least 1m")
	}
	return nil
}
