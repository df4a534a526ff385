package cmd

import (
	"github.com/ethpandaops/pagespeed-history/internal/session"
	"github.com/spf13/cobra"
)

var showHistoryCmd = &cobra.Command{
	Use:   session.CommandShowHistory,
	Short: "Show recorded history for each --url",
	Long: `Lists every recorded result of each --url together with the average Speed
Index over all entries. Without --url every recorded site is listed.

With --compare the sites are ranked by their average Speed Index instead.
Nothing is fetched and the history file is not modified.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSession(cmd.Context(), session.CommandShowHistory, flags)
	},
}

func init() {
	rootCmd.AddCommand(showHistoryCmd)
}
