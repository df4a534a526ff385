// Package config handles configuration loading and management
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// AppConfig holds the configuration loaded from environment variables.
type AppConfig struct {
	APIKey      string
	HistoryFile string
	Endpoint    string
	ConfigFile  string
	LogLevel    string
}

// Load reads configuration from environment variables and .env file.
func Load() (*AppConfig, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// It's okay if the file doesn't exist
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	return &AppConfig{
		APIKey:      getEnv(EnvAPIKey, ""),
		HistoryFile: getEnv(EnvHistoryFile, DefaultHistoryFile),
		Endpoint:    getEnv(EnvEndpoint, DefaultEndpoint),
		ConfigFile:  getEnv(EnvConfigFile, ""),
		LogLevel:    getEnv(EnvLogLevel, "info"),
	}, nil
}

func (c *AppConfig) String() string {
	keyDisplay := "(not set)"
	if c.APIKey != "" {
		keyDisplay = "********"
	}

	configDisplay := c.ConfigFile
	if configDisplay == "" {
		configDisplay = "(none)"
	}

	return fmt.Sprintf(`Current Configuration:
======================
API Key:        %s
History File:   %s
Endpoint:       %s
Config File:    %s
Log Level:      %s`,
		keyDisplay,
		c.HistoryFile,
		c.Endpoint,
		configDisplay,
		c.LogLevel,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
