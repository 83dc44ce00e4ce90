// Package config centralizes how Plant HealthCheck reads environment
// variables and exposes them as typed values.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config is the runtime configuration shared by the CLI and the worker.
type Config struct {
	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// WorkerConcurrency is the asynq handler pool size.
	WorkerConcurrency int

	// AlertThreshold is the score below which a completed inspection raises
	// a health_score_low alert. Distinct from the classification bands.
	AlertThreshold float64

	// OverdueScanInterval is the cron spec for the periodic overdue scan.
	OverdueScanInterval string

	LogLevel string
}

const (
	defaultRedisAddr       = "127.0.0.1:6379"
	defaultConcurrency     = 4
	defaultAlertThreshold  = 60
	defaultOverdueInterval = "@every 1h"
	defaultLogLevel        = "info"
)

// Load reads configuration from the environment falling back to defaults.
// DATABASE_URL is the only required variable.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		RedisAddr:           readEnv("REDIS_ADDR", defaultRedisAddr),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
		RedisDB:             parseInt("REDIS_DB", 0),
		WorkerConcurrency:   parseInt("PLANTHEALTH_WORKERS", defaultConcurrency),
		AlertThreshold:      parseFloat("PLANTHEALTH_ALERT_THRESHOLD", defaultAlertThreshold),
		OverdueScanInterval: readEnv("PLANTHEALTH_OVERDUE_SCAN", defaultOverdueInterval),
		LogLevel:            readEnv("PLANTHEALTH_LOG_LEVEL", defaultLogLevel),
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.WorkerConcurrency <= 0 {
		cfg.WorkerConcurrency = defaultConcurrency
	}
	if cfg.AlertThreshold <= 0 {
		cfg.AlertThreshold = defaultAlertThreshold
	}
	return cfg, nil
}

func readEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func parseInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func parseFloat(key string, def float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return def
}
