package config

import "github.com/ethpandaops/pagespeed-history/internal/pagespeed"

const (
	// EnvAPIKey is the environment variable holding the PageSpeed API key.
	EnvAPIKey = "API_KEY"
	// EnvHistoryFile overrides the history file location.
	EnvHistoryFile = "PAGESPEED_HISTORY_FILE"
	// EnvEndpoint overrides the PageSpeed API endpoint.
	EnvEndpoint = "PAGESPEED_ENDPOINT"
	// EnvConfigFile points at an optional YAML configuration file.
	EnvConfigFile = "PAGESPEED_CONFIG"
	// EnvLogLevel sets the log level.
	EnvLogLevel = "LOG_LEVEL"
	// DefaultHistoryFile is the history location relative to the working directory.
	DefaultHistoryFile = "history/_data.json"
	// DefaultEndpoint is the PageSpeed Insights v5 endpoint.
	DefaultEndpoint = pagespeed.DefaultEndpoint
	// DefaultStrategy is used when neither flags nor the config file choose one.
	DefaultStrategy = pagespeed.StrategyMobile
)
