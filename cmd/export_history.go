package cmd

import (
	"context"
	"fmt"

	"github.com/ethpandaops/pagespeed-history/internal/history"
	"github.com/ethpandaops/pagespeed-history/internal/report"
	"github.com/spf13/cobra"
)

var exportOutput string

var exportHistoryCmd = &cobra.Command{
	Use:   "export-history",
	Short: "Export the history file to a SQLite database",
	Long: `Writes every readable record of the history file into the records table of a
SQLite database so it can be queried with any SQLite client. An existing
records table is replaced.

Example:
  pagespeed-history export-history --output history.db
  sqlite3 history.db 'SELECT site, AVG(speed_index_score) FROM records GROUP BY site'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return exportHistory(cmd.Context(), exportOutput)
	},
}

func init() {
	exportHistoryCmd.Flags().StringVarP(&exportOutput, "output", "o", "history.db", "SQLite database to write")
	rootCmd.AddCommand(exportHistoryCmd)
}

func exportHistory(ctx context.Context, output string) error {
	opts, err := loadOptions(flags)
	if err != nil {
		return err
	}

	store, err := history.Load(Logger, opts.HistoryFile)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	colors := report.NewColorHelper()
	for _, w := range store.Warnings() {
		fmt.Println(colors.Warning("! " + w))
	}

	written, err := history.ExportSQLite(ctx, store, output)
	if err != nil {
		return fmt.Errorf("failed to export history: %w", err)
	}

	fmt.Println(colors.Success(fmt.Sprintf("✓ Exported %d records from %d sites to %s", written, store.Len(), output)))

	return nil
}
