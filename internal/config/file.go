package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileConfig is the optional YAML configuration file.
//
//	urls:
//	  - https://example.com
//	  - https://example.org
//	strategy: desktop
//	history_file: /var/lib/pagespeed/_data.json
type FileConfig struct {
	URLs        []string `yaml:"urls"`
	Strategy    string   `yaml:"strategy"`
	HistoryFile string   `yaml:"history_file"`
}

// LoadFile reads the YAML configuration at path. An empty path yields an empty config.
func LoadFile(path string) (*FileConfig, error) {
	if path == "" {
		return &FileConfig{}, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is user supplied on purpose
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	return &cfg, nil
}
