// Package stats computes per-column descriptive statistics over a table.
package stats

import (
	"sort"

	mstats "github.com/montanaflynn/stats"

	"github.com/KaramelBytes/tabloom-cli/internal/table"
)

// ColumnStat summarizes one column. Numeric fields are 0 when the column
// has no parseable values.
type ColumnStat struct {
	Column    string  `json:"column"`
	Count     int     `json:"count"`
	Mean      float64 `json:"mean"`
	Median    float64 `json:"median"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	NullCount int     `json:"nullCount"`
}

// Compute returns one ColumnStat per column over every row of t.
func Compute(t *table.Table) []ColumnStat {
	out := make([]ColumnStat, 0, len(t.Columns))
	for _, c := range t.Columns {
		out = append(out, Column(t, c))
	}
	return out
}

// Column computes the statistics of a single column.
func Column(t *table.Table, column string) ColumnStat {
	cs := ColumnStat{Column: column}
	for _, r := range t.Rows {
		if r.Get(column).IsBlank() {
			cs.NullCount++
		}
	}
	data := mstats.Float64Data(t.Numbers(column))
	cs.Count = data.Len()
	if cs.Count == 0 {
		return cs
	}
	cs.Mean, _ = mstats.Mean(data)
	cs.Min, _ = mstats.Min(data)
	cs.Max, _ = mstats.Max(data)
	cs.Median = MiddlePick(data)
	return cs
}

// MiddlePick returns the element at index floor(n/2) of the ascending sort.
// For even n this is the upper of the two middle values, not their average.
func MiddlePick(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)
	return sorted[len(sorted)/2]
}
