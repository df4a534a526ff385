package report

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/ethpandaops/pagespeed-history/internal/aggregate"
	"github.com/ethpandaops/pagespeed-history/internal/metrics"
	"github.com/ethpandaops/pagespeed-history/internal/pagespeed"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func newTestTerminal(t *testing.T) (*Terminal, *bytes.Buffer) {
	t.Helper()

	// Disable colors for consistent testing
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })

	buf := &bytes.Buffer{}
	term := NewTerminal(buf)
	term.now = func() time.Time { return time.UnixMilli(1700000000000).Add(72 * time.Hour) }

	return term, buf
}

func ptr(v float64) *float64 { return &v }

func rec(site string, si *float64) metrics.Record {
	return metrics.Record{
		Site:      site,
		Strategy:  pagespeed.StrategyMobile,
		Timestamp: metrics.Millis(1700000000000),
		Data:      metrics.Metrics{SpeedIndexScore: si},
	}
}

func TestTerminal_Batch(t *testing.T) {
	term, buf := newTestTerminal(t)

	term.Batch([]metrics.Record{rec("https://a.example", ptr(0.93))})

	out := buf.String()
	assert.Contains(t, out, "Mobile performance data for https://a.example")
	assert.Contains(t, out, "Speed Index")
	assert.Contains(t, out, "93")
	assert.Contains(t, out, "Cumulative Layout Shift Score")
	assert.NotContains(t, out, "NaN")
}

func TestTerminal_BatchComparison(t *testing.T) {
	term, buf := newTestTerminal(t)

	term.BatchComparison([]metrics.Record{
		rec("https://a.example", ptr(0.41)),
		rec("https://b.example", ptr(0.88)),
		rec("https://c.example", nil),
	})

	out := buf.String()
	assert.Contains(t, out, "https://b.example was fastest at 88")
	assert.Contains(t, out, "https://c.example")
}

func TestTerminal_SiteHistory(t *testing.T) {
	term, buf := newTestTerminal(t)

	term.SiteHistory("https://a.example", []metrics.Record{
		rec("https://a.example", ptr(0.8)),
		rec("https://a.example", ptr(0.6)),
	})

	out := buf.String()
	assert.Contains(t, out, "Recorded at")
	assert.Contains(t, out, "3 days ago")
	assert.Contains(t, out, "Average Speed Index score from all entries (count = 2) is:\n70")
}

func TestTerminal_HistoryComparison(t *testing.T) {
	term, buf := newTestTerminal(t)

	cmp := aggregate.BatchCompare([]aggregate.Group{
		{Site: "https://a.example", Records: []metrics.Record{rec("https://a.example", ptr(0.8))}},
		{Site: "https://b.example", Records: []metrics.Record{rec("https://b.example", ptr(0.6))}},
		{Site: "https://c.example"},
	})
	term.HistoryComparison(cmp)

	out := buf.String()
	assert.Contains(t, out, "https://a.example was fastest")
	assert.Contains(t, out, "80")
	assert.Contains(t, out, "60")
	assert.Contains(t, out, "no history")
}

func TestTerminal_WarnAndError(t *testing.T) {
	term, buf := newTestTerminal(t)

	term.Warn("history may be corrupted")
	term.Error("could not save history", errors.New("disk full"))

	assert.Contains(t, buf.String(), "! history may be corrupted")
	assert.Contains(t, buf.String(), "✗ could not save history: disk full")
}

func TestColorHelper_FormatScore(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	helper := NewColorHelper()

	assert.Equal(t, "95", helper.FormatScore(95, true))
	assert.Equal(t, "51", helper.FormatScore(50.5, true))
	assert.Equal(t, "-", helper.FormatScore(0, false))
}

func TestColorHelper_FormatScoreColorFollowsRoundedValue(t *testing.T) {
	helper := NewColorHelper()

	assert.Equal(t, helper.Success("90"), helper.FormatScore(89.6, true))
	assert.Equal(t, helper.FormatScore(90, true), helper.FormatScore(89.6, true))
	assert.Equal(t, helper.Warning("50"), helper.FormatScore(49.5, true))
	assert.Equal(t, helper.Failure("49"), helper.FormatScore(49.4, true))
}
