package metrics

import (
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/ethpandaops/pagespeed-history/internal/pagespeed"
)

// Placeholder is shown in place of any absent or non-numeric value.
const Placeholder = "-"

// ErrExtractionFailure indicates the payload was empty and no record can be built.
var ErrExtractionFailure = errors.New("extraction failure: empty payload")

// Extract builds a record for site from a PageSpeed payload.
// Missing audits or fields leave the matching metric nil; only an empty payload fails.
func Extract(site string, strategy pagespeed.Strategy, payload *pagespeed.Payload, fetchedAt time.Time) (*Record, error) {
	if payload.IsEmpty() {
		return nil, ErrExtractionFailure
	}

	si := payload.Audit(pagespeed.AuditSpeedIndex)
	tbt := payload.Audit(pagespeed.AuditTotalBlockingTime)
	lcp := payload.Audit(pagespeed.AuditLargestContentfulPaint)
	fcp := payload.Audit(pagespeed.AuditFirstContentfulPaint)
	tti := payload.Audit(pagespeed.AuditInteractive)
	cls := payload.Audit(pagespeed.AuditCumulativeLayoutShift)

	return &Record{
		Site:      site,
		Strategy:  strategy,
		Timestamp: NewMillis(fetchedAt),
		Data: Metrics{
			ID:                            payload.ID.String(),
			SpeedIndexScore:               si.Score.Ptr(),
			TotalBlockingTimeScore:        tbt.Score.Ptr(),
			TotalBlockingTimeDisplay:      tbt.DisplayValue.Ptr(),
			LargestContentfulPaintScore:   lcp.Score.Ptr(),
			LargestContentfulPaintDisplay: lcp.DisplayValue.Ptr(),
			FirstContentfulPaintScore:     fcp.Score.Ptr(),
			FirstContentfulPaintDisplay:   fcp.DisplayValue.Ptr(),
			TimeToInteractiveScore:        tti.Score.Ptr(),
			TimeToInteractiveDisplay:      tti.DisplayValue.Ptr(),
			CumulativeLayoutShiftScore:    cls.Score.Ptr(),
			CumulativeLayoutShiftDisplay:  cls.DisplayValue.Ptr(),
		},
	}, nil
}

// Percent scales a [0,1] score to [0,100]. It reports false when the
// score is absent or not a finite number.
func Percent(score *float64) (float64, bool) {
	if score == nil || math.IsNaN(*score) || math.IsInf(*score, 0) {
		return 0, false
	}

	return *score * 100, true
}

// FormatScore renders a score as a rounded 0-100 value, or the placeholder.
func FormatScore(score *float64) string {
	pct, ok := Percent(score)
	if !ok {
		return Placeholder
	}

	return strconv.FormatFloat(math.Round(pct), 'f', 0, 64)
}

// FormatDisplay renders a display value, or the placeholder when absent.
func FormatDisplay(display *string) string {
	if display == nil || *display == "" {
		return Placeholder
	}

	return *display
}

// Row is one line of a metric table.
type Row struct {
	Metric string
	Value  string
}

// Rows lists the metrics of m in display order.
func (m Metrics) Rows() []Row {
	return []Row{
		{Metric: "Speed Index", Value: FormatScore(m.SpeedIndexScore)},
		{Metric: "Total Blocking Time", Value: FormatDisplay(m.TotalBlockingTimeDisplay)},
		{Metric: "Total Blocking Time Score", Value: FormatScore(m.TotalBlockingTimeScore)},
		{Metric: "Largest Contentful Paint", Value: FormatDisplay(m.LargestContentfulPaintDisplay)},
		{Metric: "Largest Contentful Paint Score", Value: FormatScore(m.LargestContentfulPaintScore)},
		{Metric: "First Contentful Paint", Value: FormatDisplay(m.FirstContentfulPaintDisplay)},
		{Metric: "First Contentful Paint Score", Value: FormatScore(m.FirstContentfulPaintScore)},
		{Metric: "Time to Interactive", Value: FormatDisplay(m.TimeToInteractiveDisplay)},
		{Metric: "Time to Interactive Score", Value: FormatScore(m.TimeToInteractiveScore)},
		{Metric: "Cumulative Layout Shift", Value: FormatDisplay(m.CumulativeLayoutShiftDisplay)},
		{Metric: "Cumulative Layout Shift Score", Value: FormatScore(m.CumulativeLayoutShiftScore)},
	}
}
