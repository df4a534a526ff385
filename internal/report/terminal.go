// Package report renders analytics and history to the terminal.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ethpandaops/pagespeed-history/internal/aggregate"
	"github.com/ethpandaops/pagespeed-history/internal/metrics"
)

// Reporter presents session output to the user.
type Reporter interface {
	Warn(message string)
	Error(message string, err error)
	Batch(records []metrics.Record)
	BatchComparison(records []metrics.Record)
	SiteHistory(site string, records []metrics.Record)
	HistoryComparison(cmp aggregate.Comparison)
}

// Terminal writes human-readable tables to a writer.
type Terminal struct {
	writer   io.Writer
	colors   *ColorHelper
	renderer Renderer
	now      func() time.Time
}

// NewTerminal creates a terminal reporter writing to w.
func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{
		writer:   w,
		colors:   NewColorHelper(),
		renderer: NewRenderer(),
		now:      time.Now,
	}
}

// Warn prints a yellow warning line.
func (t *Terminal) Warn(message string) {
	fmt.Fprintln(t.writer, t.colors.Warning("! "+message))
}

// Error prints a red message and error details.
func (t *Terminal) Error(message string, err error) {
	if err != nil {
		message = fmt.Sprintf("%s: %v", message, err)
	}
	fmt.Fprintln(t.writer, t.colors.Failure("✗ "+message))
}

// Batch prints the metric table of every record fetched in this session.
func (t *Terminal) Batch(records []metrics.Record) {
	for _, r := range records {
		fmt.Fprintln(t.writer)
		fmt.Fprintf(t.writer, "%s %s\n",
			t.colors.Success(r.Strategy.Label()+" performance data for"),
			t.colors.Site(r.Site))
		t.metricTable(r.Data)
	}
}

// BatchComparison prints the fastest record of this session followed by every speed index.
func (t *Terminal) BatchComparison(records []metrics.Record) {
	t.phase("Comparison Results")

	fastest, ok := aggregate.Fastest(records)
	if !ok {
		t.Warn("no site returned a speed index to compare")
	} else {
		pct, _ := metrics.Percent(fastest.Data.SpeedIndexScore)
		fmt.Fprintf(t.writer, "%s %s %s\n\n",
			t.colors.Site(fastest.Site),
			t.colors.Success("was fastest at"),
			t.colors.FormatScore(pct, true))
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		pct, valid := metrics.Percent(r.Data.SpeedIndexScore)
		rows = append(rows, []string{r.Site, t.colors.FormatScore(pct, valid)})
	}

	t.renderer.RenderToWriter(t.writer, []string{"Site", "Speed Index"}, rows)
}

// SiteHistory prints every recorded observation of a site and its average speed index.
func (t *Terminal) SiteHistory(site string, records []metrics.Record) {
	for _, r := range records {
		recorded := r.Time()
		fmt.Fprintln(t.writer)
		fmt.Fprintf(t.writer, "%s %s\n",
			t.colors.Success(r.Strategy.Label()+" performance data for"),
			t.colors.Site(site))
		fmt.Fprintf(t.writer, "%s %s %s\n",
			t.colors.Success("Recorded at"),
			recorded.Local().Format("2006-01-02 15:04:05"),
			t.colors.Muted("("+humanize.RelTime(recorded, t.now(), "ago", "from now")+")"))
		t.metricTable(r.Data)
	}

	avg := aggregate.HistoryAverage(records)
	fmt.Fprintf(t.writer, "\n%s\n%s\n",
		t.colors.Success(fmt.Sprintf("Average Speed Index score from all entries (count = %d) is:", len(records))),
		t.colors.FormatScore(avg.Value, avg.Valid))
}

// HistoryComparison prints the winner and the per-site averages across history.
func (t *Terminal) HistoryComparison(cmp aggregate.Comparison) {
	t.phase("Comparison Results")

	if cmp.Winner == nil {
		t.Warn("no site has a recorded speed index to compare")
	} else {
		fmt.Fprintf(t.writer, "%s %s\n\n",
			t.colors.Site(cmp.Winner.Site),
			t.colors.Success("was fastest"))
	}

	fmt.Fprintln(t.writer, t.colors.Success("Average speed index of each site:"))

	rows := make([][]string, 0, len(cmp.Averages))
	for _, a := range cmp.Averages {
		if a.Empty() {
			rows = append(rows, []string{a.Site, "0", t.colors.Muted("no history")})
			continue
		}
		rows = append(rows, []string{a.Site, fmt.Sprintf("%d", a.Count), t.colors.FormatScore(a.Average.Value, a.Average.Valid)})
	}

	t.renderer.RenderToWriter(t.writer, []string{"Site", "Entries", "Average"}, rows)
}

func (t *Terminal) metricTable(m metrics.Metrics) {
	rows := make([][]string, 0, 11)
	for _, row := range m.Rows() {
		rows = append(rows, []string{row.Metric, row.Value})
	}

	t.renderer.RenderToWriter(t.writer, []string{"Metric", "Value"}, rows)
}

func (t *Terminal) phase(name string) {
	fmt.Fprintf(t.writer, "\n%s\n\n", t.colors.Header("▸ "+name))
}

// Compile-time interface compliance check
var _ Reporter = (*Terminal)(nil)
