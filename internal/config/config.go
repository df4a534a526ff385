package config

import (
	"fmt"
	"strings"

	"github.com/ethpandaops/pagespeed-history/internal/pagespeed"
)

// Flags are the raw command-line values of one invocation.
type Flags struct {
	URLs            []string
	APIKey          string
	Desktop         bool
	Compare         bool
	MainThreadTasks bool
	ResetHistory    bool
	HistoryFile     string
}

// Options is the resolved configuration of one invocation. Build it with
// NewOptions and treat it as read-only.
type Options struct {
	URLs            []string
	APIKey          string
	Strategy        pagespeed.Strategy
	Compare         bool
	MainThreadTasks bool
	ResetHistory    bool
	HistoryFile     string
	Endpoint        string
}

// NewOptions resolves each setting independently: flags win over the config
// file, which wins over the environment and defaults. app and file may be nil.
func NewOptions(app *AppConfig, file *FileConfig, flags Flags) (Options, error) {
	if app == nil {
		app = &AppConfig{HistoryFile: DefaultHistoryFile, Endpoint: DefaultEndpoint}
	}
	if file == nil {
		file = &FileConfig{}
	}

	opts := Options{
		URLs:            cleanURLs(flags.URLs),
		APIKey:          firstNonEmpty(flags.APIKey, app.APIKey),
		Strategy:        DefaultStrategy,
		Compare:         flags.Compare,
		MainThreadTasks: flags.MainThreadTasks,
		ResetHistory:    flags.ResetHistory,
		HistoryFile:     firstNonEmpty(flags.HistoryFile, file.HistoryFile, app.HistoryFile, DefaultHistoryFile),
		Endpoint:        firstNonEmpty(app.Endpoint, DefaultEndpoint),
	}

	if len(opts.URLs) == 0 {
		opts.URLs = cleanURLs(file.URLs)
	}

	switch {
	case flags.Desktop:
		opts.Strategy = pagespeed.StrategyDesktop
	case file.Strategy != "":
		strategy, err := pagespeed.ParseStrategy(file.Strategy)
		if err != nil {
			return Options{}, fmt.Errorf("config file: %w", err)
		}
		opts.Strategy = strategy
	}

	return opts, nil
}

// cleanURLs trims each value and drops blanks. Values are never split:
// commas are legal inside a URL and the URL is the site's history key.
// Repeats are kept.
func cleanURLs(values []string) []string {
	urls := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			urls = append(urls, trimmed)
		}
	}

	return urls
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
