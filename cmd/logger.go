package cmd

import (
	"fmt"
	"os"

	"github.com/ethpandaops/pagespeed-history/internal/config"
	"github.com/sirupsen/logrus"
)

// InitLogger (re)creates the shared logger using LOG_LEVEL, defaulting to info.
// Call it again after loading another env file.
func InitLogger() {
	if Logger == nil {
		Logger = logrus.New()
	}

	logLevel := os.Getenv(config.EnvLogLevel)
	if logLevel == "" {
		logLevel = "info"
	}

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		// Can't use Logger here since it might not be set up yet
		fmt.Fprintf(os.Stderr, "Invalid LOG_LEVEL '%s', defaulting to 'info'\n", logLevel)
		level = logrus.InfoLevel
	}
	Logger.SetLevel(level)
}
