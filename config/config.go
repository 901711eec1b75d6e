package config

import (
	"os"
	"sync"

	"github.com/joho/godotenv"

	"github.com/quickstay/booking/logger"
)

var loadOnce sync.Once

// LoadEnv loads variables from a .env file if one is present. Real
// deployments set the environment directly, so a missing file is fine.
func LoadEnv() {
	loadOnce.Do(func() {
		if err := godotenv.Load(); err != nil {
			logger.InfoLogger.Info("No .env file found, using process environment")
		}
	})
}

// Getenv returns the value of key, or fallback when unset.
func Getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
