package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethpandaops/pagespeed-history/internal/metrics"
	"github.com/ethpandaops/pagespeed-history/internal/pagespeed"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetLevel(logrus.DebugLevel)
	log.SetOutput(os.Stderr)

	return log
}

func score(v float64) *float64 { return &v }

func text(s string) *string { return &s }

func record(site string, ts int64, si float64) metrics.Record {
	return metrics.Record{
		Site:      site,
		Strategy:  pagespeed.StrategyMobile,
		Timestamp: metrics.Millis(ts),
		Data: metrics.Metrics{
			ID:                       site + "/",
			SpeedIndexScore:          score(si),
			TotalBlockingTimeDisplay: text("120 ms"),
		},
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "_data.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(newTestLogger(), filepath.Join(t.TempDir(), "missing.json"))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLoad_CorruptState(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "truncated write", content: `{"https://a.example": {"records": [`},
		{name: "empty file", content: ``},
		{name: "top level array", content: `[]`},
		{name: "top level null", content: `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(newTestLogger(), writeFile(t, tt.content))
			require.ErrorIs(t, err, ErrCorruptState)
		})
	}
}

func TestInitialize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history", "_data.json")

	s, err := Initialize(newTestLogger(), path)
	require.NoError(t, err)
	assert.Zero(t, s.Len())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}

func TestInitialize_WriteFailure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	_, err := Initialize(newTestLogger(), filepath.Join(blocker, "_data.json"))
	require.ErrorIs(t, err, ErrWriteFailure)
}

func TestAppend_OrderPreservingAndAssociative(t *testing.T) {
	r1 := record("https://a.example", 1, 0.1)
	r2 := record("https://a.example", 2, 0.2)
	r3 := record("https://a.example", 3, 0.3)

	split := New(newTestLogger(), "unused")
	split.Append("https://a.example", r1, r2)
	split.Append("https://a.example", r3)

	whole := New(newTestLogger(), "unused")
	whole.Append("https://a.example", r1, r2, r3)

	assert.Equal(t, whole.Records("https://a.example"), split.Records("https://a.example"))
	assert.Equal(t, []metrics.Record{r1, r2, r3}, split.Records("https://a.example"))
}

func TestAppend_NeverDeduplicates(t *testing.T) {
	s := New(newTestLogger(), "unused")
	r := record("https://a.example", 5, 0.5)

	s.Append("https://a.example", r)
	s.Append("https://a.example", r)

	assert.Len(t, s.Records("https://a.example"), 2)
	assert.Empty(t, s.Warnings())
}

func TestPersistLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "_data.json")

	s := New(newTestLogger(), path)
	s.Append("https://a.example", record("https://a.example", 10, 0.8), record("https://a.example", 20, 0.7))
	s.Append("https://b.example", record("https://b.example", 15, 0.6))
	require.NoError(t, s.Persist())

	loaded, err := Load(newTestLogger(), path)
	require.NoError(t, err)

	assert.Equal(t, s.Sites(), loaded.Sites())
	for _, site := range s.Sites() {
		assert.Equal(t, s.Records(site), loaded.Records(site), site)
	}
	assert.Empty(t, loaded.Warnings())

	matches, err := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestLoad_SelfHealsCorruptEntries(t *testing.T) {
	path := writeFile(t, `{
		"https://good.example": {"records": [
			{"site": "https://good.example", "strategy": "MOBILE", "timestamp": 1, "data": {"speedIndexScore": 0.9}}
		]},
		"https://missing.example": {},
		"https://object.example": {"records": {"0": {}}},
		"https://string.example": "oops"
	}`)

	s, err := Load(newTestLogger(), path)
	require.NoError(t, err)

	assert.Equal(t, 4, s.Len())
	assert.Len(t, s.Warnings(), 3)
	assert.Len(t, s.Records("https://good.example"), 1)
	assert.Empty(t, s.Records("https://missing.example"))

	fresh := record("https://object.example", 99, 0.4)
	s.Append("https://object.example", fresh)

	assert.Equal(t, []metrics.Record{fresh}, s.Records("https://object.example"))
	warnings := s.Warnings()
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "https://object.example")

	require.NoError(t, s.Persist())

	var doc map[string]json.RawMessage
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &doc))

	// Untouched corrupt entries are written back as they were.
	assert.JSONEq(t, `"oops"`, string(doc["https://string.example"]))
	assert.JSONEq(t, `{}`, string(doc["https://missing.example"]))
}

func TestLoad_KeepsUnreadableRecords(t *testing.T) {
	path := writeFile(t, `{
		"https://a.example": {"records": [
			{"site": "https://a.example", "strategy": "MOBILE", "timestamp": 1, "data": {}},
			42,
			{"site": "https://a.example", "strategy": "MOBILE", "timestamp": "2023-11-14T22:13:20.000Z", "data": {"speedIndexScore": 0.5}}
		]}
	}`)

	s, err := Load(newTestLogger(), path)
	require.NoError(t, err)

	records := s.Records("https://a.example")
	require.Len(t, records, 2)
	assert.Equal(t, metrics.Millis(1700000000000), records[1].Timestamp)
	assert.Len(t, s.Warnings(), 1)

	s.Append("https://a.example", record("https://a.example", 1700000000001, 0.6))
	require.NoError(t, s.Persist())

	var doc map[string]struct {
		Records []json.RawMessage `json:"records"`
	}
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &doc))

	elems := doc["https://a.example"].Records
	require.Len(t, elems, 4)
	assert.JSONEq(t, `42`, string(elems[1]))
}

func TestMoveAside(t *testing.T) {
	path := writeFile(t, `{broken`)

	moved, err := MoveAside(path, "corrupt")
	require.NoError(t, err)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	assert.Contains(t, moved, "_data.json.corrupt-")

	data, err := os.ReadFile(moved)
	require.NoError(t, err)
	assert.Equal(t, `{broken`, string(data))
}

func TestExportSQLite(t *testing.T) {
	s := New(newTestLogger(), "unused")
	s.Append("https://a.example", record("https://a.example", 10, 0.8), record("https://a.example", 20, 0.7))
	s.Append("https://b.example", record("https://b.example", 15, 0.6))

	dbPath := filepath.Join(t.TempDir(), "history.db")

	written, err := ExportSQLite(context.Background(), s, dbPath)
	require.NoError(t, err)
	assert.Equal(t, 3, written)

	// A second export replaces rather than duplicates.
	written, err = ExportSQLite(context.Background(), s, dbPath)
	require.NoError(t, err)
	assert.Equal(t, 3, written)

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM records`).Scan(&count))
	assert.Equal(t, 3, count)

	var avg float64
	require.NoError(t, db.QueryRow(`SELECT AVG(speed_index_score) FROM records WHERE site = ?`, "https://a.example").Scan(&avg))
	assert.InDelta(t, 0.75, avg, 1e-9)

	var lcp sql.NullFloat64
	require.NoError(t, db.QueryRow(`SELECT lcp_score FROM records LIMIT 1`).Scan(&lcp))
	assert.False(t, lcp.Valid)
}
