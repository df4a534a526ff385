package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/ethpandaops/pagespeed-history/internal/config"
	"github.com/ethpandaops/pagespeed-history/internal/pagespeed"
	"github.com/ethpandaops/pagespeed-history/internal/report"
	"github.com/ethpandaops/pagespeed-history/internal/session"
	"github.com/sirupsen/logrus"
)

// loadOptions resolves the invocation's options from the environment, the
// optional config file and the parsed flags.
func loadOptions(f config.Flags) (config.Options, error) {
	app, err := config.Load()
	if err != nil {
		return config.Options{}, fmt.Errorf("failed to load config: %w", err)
	}

	path := configFile
	if path == "" {
		path = app.ConfigFile
	}

	file, err := config.LoadFile(path)
	if err != nil {
		return config.Options{}, err
	}

	return config.NewOptions(app, file, f)
}

// runSession runs one session command with the given flags.
func runSession(ctx context.Context, command string, f config.Flags) error {
	opts, err := loadOptions(f)
	if err != nil {
		return err
	}

	client := pagespeed.NewClient(Logger, pagespeed.WithEndpoint(opts.Endpoint))
	s := session.New(Logger, opts, client, report.NewTerminal(os.Stdout))

	summary, err := s.Run(ctx, command)
	if err != nil {
		return err
	}

	Logger.WithFields(logrus.Fields{
		"command":   summary.Command,
		"requested": summary.Requested,
		"recorded":  summary.Recorded,
	}).Debug("session finished")

	return nil
}
