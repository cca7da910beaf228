// Package config provides configuration management functionality.
//
// This package loads configuration from environment variables (.env file)
// once at process startup. There is no settings database layer here (the
// weekly solver runs as a stateless batch worker, not a long-lived
// service), so environment variables are the single source of truth.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the process's static configuration.
type Config struct {
	DataDir         string        // working directory for export artifacts (always absolute)
	LogLevel        string        // debug, info, warn, error
	Port            int           // HTTP port for the observer's websocket endpoint
	DevMode         bool          // development mode flag (pretty logging, verbose output)
	SolverTimeLimit time.Duration // per-pass wall-clock budget before the solver gives up
	S3Bucket        string        // destination bucket for archived MPS/infeasibility dumps
	S3Region        string
}

// Load reads .env (if present) and the process environment, with
// dataDirOverride taking priority over DATA_DIR when non-empty.
func Load(dataDirOverride ...string) (*Config, error) {
	_ = godotenv.Load()

	var dataDir string
	if len(dataDirOverride) > 0 && dataDirOverride[0] != "" {
		dataDir = dataDirOverride[0]
	} else {
		dataDir = getEnv("DATA_DIR", "")
		if dataDir == "" {
			dataDir = "./data"
		}
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return &Config{
		DataDir:         absDataDir,
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		Port:            getEnvAsInt("PORT", 8090),
		DevMode:         getEnvAsBool("DEV_MODE", false),
		SolverTimeLimit: time.Duration(getEnvAsInt("SOLVER_TIME_LIMIT_SECONDS", 30)) * time.Second,
		S3Bucket:        getEnv("ARCHIVE_S3_BUCKET", ""),
		S3Region:        getEnv("ARCHIVE_S3_REGION", "eu-west-1"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
