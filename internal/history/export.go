package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // CGO-free SQLite
)

const exportSchema = `
CREATE TABLE IF NOT EXISTS records(
  id                  INTEGER PRIMARY KEY,
  site                TEXT    NOT NULL,
  strategy            TEXT    NOT NULL,
  ts_utc              INTEGER NOT NULL,
  ts_iso              TEXT    NOT NULL,
  speed_index_score   REAL,
  tbt_score           REAL,
  tbt_display         TEXT,
  lcp_score           REAL,
  lcp_display         TEXT,
  fcp_score           REAL,
  fcp_display         TEXT,
  tti_score           REAL,
  tti_display         TEXT,
  cls_score           REAL,
  cls_display         TEXT
);
CREATE INDEX IF NOT EXISTS idx_records_site ON records(site);
CREATE INDEX IF NOT EXISTS idx_records_ts   ON records(ts_utc);
`

// ExportSQLite writes every readable record of the store into the records
// table of the SQLite database at dbPath, replacing its previous contents.
// It returns the number of rows written.
func ExportSQLite(ctx context.Context, s *Store, dbPath string) (int, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return 0, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, exportSchema); err != nil {
		return 0, fmt.Errorf("failed to create database tables: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM records`); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("failed to clear records: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO records(
		site, strategy, ts_utc, ts_iso,
		speed_index_score, tbt_score, tbt_display, lcp_score, lcp_display,
		fcp_score, fcp_display, tti_score, tti_display, cls_score, cls_display
	) VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	written := 0
	for _, site := range s.Sites() {
		for _, r := range s.Records(site) {
			d := r.Data
			if _, err := stmt.ExecContext(ctx,
				site, string(r.Strategy), int64(r.Timestamp), r.Time().UTC().Format(time.RFC3339Nano),
				d.SpeedIndexScore, d.TotalBlockingTimeScore, d.TotalBlockingTimeDisplay,
				d.LargestContentfulPaintScore, d.LargestContentfulPaintDisplay,
				d.FirstContentfulPaintScore, d.FirstContentfulPaintDisplay,
				d.TimeToInteractiveScore, d.TimeToInteractiveDisplay,
				d.CumulativeLayoutShiftScore, d.CumulativeLayoutShiftDisplay,
			); err != nil {
				_ = tx.Rollback()
				return 0, fmt.Errorf("failed to insert record for %s: %w", site, err)
			}
			written++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return written, nil
}
