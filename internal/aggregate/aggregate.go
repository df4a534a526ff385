// Package aggregate computes averages and rankings over metric records.
package aggregate

import (
	"math"
	"strconv"

	"github.com/ethpandaops/pagespeed-history/internal/metrics"
)

// Percent is a 0-100 value that may be absent. Absent values render as the placeholder.
type Percent struct {
	Value float64
	Valid bool
}

// String renders the value rounded to the nearest integer, or the placeholder.
func (p Percent) String() string {
	if !p.Valid {
		return metrics.Placeholder
	}

	return strconv.FormatFloat(math.Round(p.Value), 'f', 0, 64)
}

// Average returns the arithmetic mean of the present values of items.
// An empty set, or one where no value is present, averages to 0.
func Average[T any](items []T, value func(T) (float64, bool)) float64 {
	var (
		sum   float64
		count int
	)

	for _, it := range items {
		v, ok := value(it)
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		sum += v
		count++
	}

	if count == 0 {
		return 0
	}

	return sum / float64(count)
}

// AveragePercent is Average scaled by 100. An empty set yields a valid 0;
// a non-empty set without any present value yields the placeholder.
func AveragePercent[T any](items []T, value func(T) (float64, bool)) Percent {
	if len(items) == 0 {
		return Percent{Valid: true}
	}

	present := false
	for _, it := range items {
		if v, ok := value(it); ok && !math.IsNaN(v) && !math.IsInf(v, 0) {
			present = true
			break
		}
	}

	if !present {
		return Percent{}
	}

	avg := Average(items, value)
	pct, ok := metrics.Percent(&avg)

	return Percent{Value: pct, Valid: ok}
}

// HighestOf returns the item with the largest present value. Ties resolve to
// the leftmost item. It reports false when no item has a value. items is not modified.
func HighestOf[T any](items []T, value func(T) (float64, bool)) (T, bool) {
	var (
		best  T
		top   float64
		found bool
	)

	for _, it := range items {
		v, ok := value(it)
		if !ok || math.IsNaN(v) {
			continue
		}
		if !found || v > top {
			best, top, found = it, v, true
		}
	}

	return best, found
}
