package aggregate

import (
	"github.com/ethpandaops/pagespeed-history/internal/metrics"
)

// Group is the set of records compared as one site.
type Group struct {
	Site    string
	Records []metrics.Record
}

// SiteAverage is the average speed index of one group.
type SiteAverage struct {
	Site    string
	Count   int
	Average Percent
}

// Empty reports whether the group had no records.
func (a SiteAverage) Empty() bool {
	return a.Count == 0
}

// Comparison is the result of BatchCompare. Winner is nil when no group
// has a usable average.
type Comparison struct {
	Averages []SiteAverage
	Winner   *SiteAverage
}

// BatchCompare averages the speed index score of each group and picks the
// group with the highest average. Empty groups are listed but never win.
func BatchCompare(groups []Group) Comparison {
	averages := make([]SiteAverage, 0, len(groups))
	for _, g := range groups {
		if len(g.Records) == 0 {
			averages = append(averages, SiteAverage{Site: g.Site})
			continue
		}

		averages = append(averages, SiteAverage{
			Site:    g.Site,
			Count:   len(g.Records),
			Average: AveragePercent(g.Records, metrics.SpeedIndex),
		})
	}

	cmp := Comparison{Averages: averages}

	winner, ok := HighestOf(averages, func(a SiteAverage) (float64, bool) {
		if a.Empty() || !a.Average.Valid {
			return 0, false
		}
		return a.Average.Value, true
	})
	if ok {
		cmp.Winner = &winner
	}

	return cmp
}

// Fastest returns the record with the highest speed index score in a batch.
func Fastest(records []metrics.Record) (metrics.Record, bool) {
	return HighestOf(records, metrics.SpeedIndex)
}

// HistoryAverage is the average speed index, as a percentage, over every record of a site.
func HistoryAverage(records []metrics.Record) Percent {
	return AveragePercent(records, metrics.SpeedIndex)
}
