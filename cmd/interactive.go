// Package cmd contains CLI command definitions
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/ethpandaops/pagespeed-history/internal/config"
	"github.com/ethpandaops/pagespeed-history/internal/history"
	"github.com/ethpandaops/pagespeed-history/internal/session"
	"github.com/ethpandaops/pagespeed-history/pkg/interactive"
	"github.com/spf13/cobra"
)

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Launch interactive TUI mode",
	Long:  `Launches the interactive Terminal User Interface for PageSpeed history.`,
	Run: func(cmd *cobra.Command, _ []string) {
		RunInteractive(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}

// RunInteractive shows the main menu until the user exits.
func RunInteractive(ctx context.Context) {
	fmt.Println("PageSpeed History - Interactive Mode")
	fmt.Println("====================================")
	fmt.Println()

	for {
		options := []interactive.MenuOption{
			{
				Name:        "📈 Get Analytics",
				Description: "Fetch and record PageSpeed metrics for one or more URLs",
				Action: func() error {
					return getAnalyticsInteractive(ctx)
				},
			},
			{
				Name:        "📜 Show History",
				Description: "List or compare recorded results (read-only)",
				Action: func() error {
					return showHistoryInteractive(ctx)
				},
			},
			{
				Name:        "💾 Export History",
				Description: "Write the history file to a SQLite database",
				Action: func() error {
					if err := exportHistory(ctx, exportOutput); err != nil {
						fmt.Printf("\n❌ Error: %v\n", err)
					}
					interactive.PauseForEnter()
					return nil
				},
			},
			{
				Name:        "📋 Show Config",
				Description: "Display current environment configuration",
				Action: func() error {
					if err := showConfig(); err != nil {
						fmt.Printf("\n❌ Error: %v\n", err)
					}
					interactive.PauseForEnter()
					return nil
				},
			},
		}

		if err := interactive.ShowMainMenu(options); err != nil {
			if errors.Is(err, interactive.ErrExit) {
				fmt.Println("Goodbye!")
				return
			}
			log.Fatal(err)
		}

		fmt.Println()
	}
}

func getAnalyticsInteractive(ctx context.Context) error {
	urls, err := interactive.InputList("URLs to analyze:", "Separate several URLs with spaces")
	if err != nil || len(urls) == 0 {
		fmt.Println("No URLs given.")
		interactive.PauseForEnter()
		return nil
	}

	f := flags
	f.URLs = urls
	f.Desktop = interactive.Confirm("Use the desktop strategy?")
	f.Compare = len(urls) > 1 && interactive.Confirm("Compare the sites instead of listing each one?")

	if err := runSession(ctx, session.CommandGetAnalytics, f); err != nil {
		fmt.Printf("\n❌ Error: %v\n", err)
	}

	interactive.PauseForEnter()
	return nil
}

func showHistoryInteractive(ctx context.Context) error {
	opts, err := loadOptions(flags)
	if err != nil {
		fmt.Printf("\n❌ Error: %v\n", err)
		interactive.PauseForEnter()
		return nil
	}

	store, err := history.Load(Logger, opts.HistoryFile)
	if err != nil {
		fmt.Printf("\n❌ Error: %v\n", err)
		interactive.PauseForEnter()
		return nil
	}

	if store.Len() == 0 {
		fmt.Println("Nothing has been recorded yet.")
		interactive.PauseForEnter()
		return nil
	}

	sites, err := interactive.SelectMany("Select sites (none selects all):", store.Sites())
	if err != nil {
		fmt.Println("Selection canceled.")
		interactive.PauseForEnter()
		return nil
	}

	f := config.Flags{
		URLs:        selectedOrAll(sites, store),
		HistoryFile: flags.HistoryFile,
		Compare:     interactive.Confirm("Compare the sites by average Speed Index?"),
	}

	if err := runSession(ctx, session.CommandShowHistory, f); err != nil {
		fmt.Printf("\n❌ Error: %v\n", err)
	}

	interactive.PauseForEnter()
	return nil
}

// selectedOrAll returns the picked sites, or every recorded site when nothing was picked.
func selectedOrAll(selected []string, store *history.Store) []string {
	if len(selected) == 0 {
		return store.Sites()
	}

	return selected
}
