package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethpandaops/pagespeed-history/internal/config"
	"github.com/ethpandaops/pagespeed-history/internal/report"
	"github.com/ethpandaops/pagespeed-history/internal/session"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Logger is the shared logger instance for all commands
	Logger *logrus.Logger

	flags      config.Flags
	configFile string
	envFile    string
	verbose    bool

	rootCmd = &cobra.Command{
		Use:   "pagespeed-history",
		Short: "PageSpeed history - record and compare PageSpeed Insights results",
		Long: `PageSpeed history fetches PageSpeed Insights metrics for one or more URLs,
keeps a per-site history of every result and compares sites within a batch
or across everything recorded so far.

Run without arguments to launch interactive mode, or use subcommands for direct operations.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if envFile != "" {
				if err := godotenv.Load(envFile); err != nil {
					return fmt.Errorf("failed to load env file '%s': %w", envFile, err)
				}
				InitLogger()
			}
			if verbose {
				Logger.SetLevel(logrus.DebugLevel)
			}
			return nil
		},
		RunE: runUnknown,
	}
)

// Execute runs the root command
func Execute() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		Logger.Warn("Received interrupt signal, abandoning in-flight requests")
		cancel()
	}()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// Unknown commands are already reported by the session.
		if !errors.Is(err, session.ErrUnknownCommand) {
			fmt.Fprintln(os.Stderr, err)
		}
		cancel()
		os.Exit(1) //nolint:gocritic // cancel is called explicitly above
	}
}

func init() {
	// Load .env file if it exists
	_ = godotenv.Load()

	InitLogger()

	pf := rootCmd.PersistentFlags()
	pf.StringArrayVar(&flags.URLs, "url", nil, "URL to analyze (repeat for several sites)")
	pf.StringVar(&flags.APIKey, "key", "", "PageSpeed Insights API key (overrides "+config.EnvAPIKey+")")
	pf.BoolVar(&flags.Desktop, "desktop", false, "Use the desktop strategy instead of mobile")
	pf.BoolVar(&flags.Compare, "compare", false, "Compare sites instead of listing each one")
	pf.BoolVar(&flags.MainThreadTasks, "mtt", false, "Include main-thread task details (reserved)")
	pf.BoolVar(&flags.ResetHistory, "reset-history", false, "Move the current history aside and start a fresh one")
	pf.StringVar(&flags.HistoryFile, "history-file", "", "History file location (overrides "+config.EnvHistoryFile+")")
	pf.StringVar(&configFile, "config", "", "Optional YAML config file (overrides "+config.EnvConfigFile+")")
	pf.StringVar(&envFile, "env", "", "Env file to load before reading configuration")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	_ = pf.MarkHidden("mtt")
}

// runUnknown handles anything that is not a registered subcommand. The session
// reports it without opening the history.
func runUnknown(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}

	s := session.New(Logger, config.Options{}, nil, report.NewTerminal(os.Stdout))
	_, err := s.Run(cmd.Context(), args[0])

	return err
}
