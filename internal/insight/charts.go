package insight

import (
	"math"
	"regexp"

	"github.com/KaramelBytes/tabloom-cli/internal/table"
)

var timeLikeColumn = regexp.MustCompile(`(?i)date|time|year|month|day`)

// ChartPlan lists recommended chart types and the column to plot first.
type ChartPlan struct {
	Charts             []string `json:"charts"`
	DefaultColumn      string   `json:"defaultColumn,omitempty"`
	NumericColumns     []string `json:"numericColumns"`
	CategoricalColumns []string `json:"categoricalColumns"`
}

// RecommendCharts inspects every row of t and suggests chart types.
func RecommendCharts(t *table.Table) ChartPlan {
	plan := ChartPlan{
		NumericColumns:     NumericColumns(t),
		CategoricalColumns: CategoricalColumns(t),
	}
	if len(plan.NumericColumns) > 0 {
		plan.Charts = append(plan.Charts, "line", "bar")
		if len(plan.CategoricalColumns) > 0 {
			plan.Charts = append(plan.Charts, "grouped-bar", "stacked-bar")
		}
		for _, c := range t.Columns {
			if timeLikeColumn.MatchString(c) {
				plan.Charts = append(plan.Charts, "time-series")
				break
			}
		}
		plan.DefaultColumn = plan.NumericColumns[0]
	}
	if len(plan.CategoricalColumns) > 0 {
		plan.Charts = append(plan.Charts, "pie", "donut")
	}
	return plan
}

// CategoricalColumns returns columns with fewer distinct raw values than
// min(20, 20% of the rows).
func CategoricalColumns(t *table.Table) []string {
	limit := math.Min(20, float64(t.Len())*0.2)
	var out []string
	for _, c := range t.Columns {
		distinct := make(map[string]struct{})
		for _, r := range t.Rows {
			distinct[r.Get(c).GoString()] = struct{}{}
		}
		if float64(len(distinct)) < limit {
			out = append(out, c)
		}
	}
	return out
}
