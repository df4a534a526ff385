// Package metrics holds the per-observation metric record and the extractor that
// builds it from a PageSpeed payload.
package metrics

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/ethpandaops/pagespeed-history/internal/pagespeed"
)

// Metrics is the flat set of Lighthouse values kept per observation.
// JSON keys match the history files written by earlier releases.
type Metrics struct {
	ID                            string   `json:"id,omitempty"`
	SpeedIndexScore               *float64 `json:"speedIndexScore,omitempty"`
	TotalBlockingTimeScore        *float64 `json:"tbtScore,omitempty"`
	TotalBlockingTimeDisplay      *string  `json:"tbtDisplayValue,omitempty"`
	LargestContentfulPaintScore   *float64 `json:"lcpScore,omitempty"`
	LargestContentfulPaintDisplay *string  `json:"lcpDisplayValue,omitempty"`
	FirstContentfulPaintScore     *float64 `json:"fcpScore,omitempty"`
	FirstContentfulPaintDisplay   *string  `json:"fcpDisplayValue,omitempty"`
	TimeToInteractiveScore        *float64 `json:"ttiScore,omitempty"`
	TimeToInteractiveDisplay      *string  `json:"ttiDisplayValue,omitempty"`
	CumulativeLayoutShiftScore    *float64 `json:"clsScore,omitempty"`
	CumulativeLayoutShiftDisplay  *string  `json:"clsDisplayValue,omitempty"`
}

// Record is one observation of one site.
type Record struct {
	Site      string             `json:"site"`
	Strategy  pagespeed.Strategy `json:"strategy"`
	Timestamp Millis             `json:"timestamp"`
	Data      Metrics            `json:"data"`
}

// Time returns the observation time.
func (r Record) Time() time.Time {
	return r.Timestamp.Time()
}

// SpeedIndex returns the speed index score and whether it is present.
// It is the ranking key used by comparisons.
func SpeedIndex(r Record) (float64, bool) {
	return value(r.Data.SpeedIndexScore)
}

func value(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}

	return *p, true
}

// Millis is a timestamp in milliseconds since the Unix epoch.
type Millis int64

// NewMillis converts t to Millis.
func NewMillis(t time.Time) Millis {
	return Millis(t.UnixMilli())
}

// Time converts m back to a time.Time.
func (m Millis) Time() time.Time {
	return time.UnixMilli(int64(m))
}

// UnmarshalJSON accepts an integer, a numeric string or an RFC3339 string.
// Files written by the first release stored the service's analysisUTCTimestamp.
func (m *Millis) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		v, err := n.Int64()
		if err != nil {
			f, ferr := n.Float64()
			if ferr != nil {
				return fmt.Errorf("invalid timestamp %s: %w", data, err)
			}
			v = int64(f)
		}
		*m = Millis(v)

		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid timestamp %s: %w", data, err)
	}

	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		*m = Millis(v)
		return nil
	}

	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", s, err)
	}

	*m = NewMillis(t)

	return nil
}
