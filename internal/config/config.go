package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

var dotenvOnce sync.Once

// loadDotenv reads an optional .env file once per process. Variables that
// are already set in the environment win.
func loadDotenv() {
	dotenvOnce.Do(func() {
		if err := godotenv.Load(); err != nil {
			slog.Debug("failed to load .env file", "error", err)
		}
	})
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBoolOrDefault(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

// getEnvListOrDefault splits a comma-separated variable, dropping blanks.
func getEnvListOrDefault(key, defaultVal string) []string {
	raw := getEnvOrDefault(key, defaultVal)
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
