package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the service-level knobs. Database and auth settings are read
// where they are used; these are the values the HTTP layer needs.
type Config struct {
	Port         string
	SolveTimeout time.Duration // wall-clock budget per scenario solve
	MaxHorizon   int           // largest horizon_days a request may ask for
}

// Load reads the configuration from the environment, applying defaults
func Load() Config {
	return Config{
		Port:         getEnv("PORT", "8000"),
		SolveTimeout: getEnvDuration("SOLVE_TIMEOUT", 10*time.Second),
		MaxHorizon:   getEnvInt("MAX_HORIZON_DAYS", 3650),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
