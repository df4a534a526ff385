package cmd

import (
	"github.com/ethpandaops/pagespeed-history/internal/session"
	"github.com/spf13/cobra"
)

var getAnalyticsCmd = &cobra.Command{
	Use:   session.CommandGetAnalytics,
	Short: "Fetch PageSpeed metrics for every --url and record them",
	Long: `Fetches PageSpeed Insights results for every --url concurrently, appends one
record per successful URL to the history file and prints the metrics.

Failed URLs are reported and skipped. With --compare only the fastest site of
the batch and each site's Speed Index are printed.

Example:
  pagespeed-history get-analytics --url https://example.com --url https://example.org
  pagespeed-history get-analytics --url https://example.com --url "https://example.org/?a=1,2" --desktop --compare`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSession(cmd.Context(), session.CommandGetAnalytics, flags)
	},
}

func init() {
	rootCmd.AddCommand(getAnalyticsCmd)
}
