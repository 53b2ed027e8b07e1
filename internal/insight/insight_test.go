package insight

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/tabloom-cli/internal/stats"
	"github.com/KaramelBytes/tabloom-cli/internal/table"
)

func numbers(cols []string, n int, f func(i int, col string) table.Value) *table.Table {
	rows := make([]table.Row, n)
	for i := range rows {
		rows[i] = table.Row{}
		for _, c := range cols {
			rows[i][c] = f(i, c)
		}
	}
	return table.New(cols, rows)
}

func titles(in []Insight) []string {
	out := make([]string, len(in))
	for i, x := range in {
		out[i] = x.Title
	}
	return out
}

func TestAnalyzeOverviewUsesFullCounts(t *testing.T) {
	tb := numbers([]string{"a", "b"}, 120, func(i int, col string) table.Value {
		return table.NumberValue(float64(i))
	})
	res := NewAnalyzer(Options{}).Analyze(tb)
	assert.Equal(t, 50, res.SampleSize)
	assert.Equal(t, 120, res.Rows)
	assert.Contains(t, res.Insights, Insight{
		Title:       "Dataset Overview",
		Description: "Dataset contains 120 rows and 2 columns.",
		Level:       LevelInfo,
	})
}

func TestAnalyzeQualityInsights(t *testing.T) {
	tb := table.New([]string{"id", "note"}, []table.Row{
		{"id": table.StringValue("1"), "note": table.StringValue("x")},
		{"id": table.StringValue("1"), "note": table.StringValue("x")},
		{"id": table.StringValue("2"), "note": table.StringValue("")},
		{"id": table.StringValue("3")},
	})
	res := NewAnalyzer(DefaultOptions()).Analyze(tb)
	assert.Equal(t, []string{
		"Missing Values in note",
		"Duplicate Rows Detected",
		"Dataset Overview",
		"Numeric Analysis Available",
	}, titles(res.Insights))
	assert.Equal(t, "50.0% of values are missing in this column.", res.Insights[0].Description)
	assert.Equal(t, "Approximately 25.0% of rows may be duplicates.", res.Insights[1].Description)
	assert.Equal(t, "1 columns contain numeric data suitable for statistical analysis.", res.Insights[3].Description)
	assert.Equal(t, []string{"id"}, res.NumericColumns)
}

func TestAnalyzeEmptyTable(t *testing.T) {
	res := NewAnalyzer(DefaultOptions()).Analyze(table.New([]string{"a"}, nil))
	assert.Equal(t, []string{"Dataset Overview"}, titles(res.Insights))
	assert.Empty(t, res.Correlations)
	assert.Empty(t, res.Anomalies)
}

func TestIdenticalColumnsCorrelateAtOne(t *testing.T) {
	x := []float64{1, 4, 2, 8, 5, 7}
	assert.InDelta(t, 1.0, Pearson(x, x), 1e-12)

	y := []float64{3, 1, 4, 1, 5, 9}
	assert.InDelta(t, Pearson(x, y), Pearson(y, x), 1e-15)
	assert.Equal(t, 0.0, Pearson([]float64{2, 2, 2}, []float64{1, 2, 3}))
	assert.Equal(t, 0.0, Pearson([]float64{1}, []float64{1, 2}))
}

func TestCorrelationsRequireMatchingCounts(t *testing.T) {
	tb := numbers([]string{"a", "b", "c", "d"}, 8, func(i int, col string) table.Value {
		switch col {
		case "a":
			return table.NumberValue(float64(i))
		case "b":
			return table.NumberValue(float64(-2 * i))
		case "c":
			if i == 0 {
				return table.NullValue()
			}
			return table.NumberValue(float64(i))
		default:
			return table.NumberValue(float64(i % 2))
		}
	})
	res := NewAnalyzer(DefaultOptions()).Analyze(tb)
	// a~d is weak and every pair with c is skipped for its shorter count
	require.Len(t, res.Correlations, 1)
	assert.Equal(t, "a", res.Correlations[0].Column1)
	assert.Equal(t, "b", res.Correlations[0].Column2)
	assert.InDelta(t, -1.0, res.Correlations[0].Score, 1e-12)
	for _, c := range res.Correlations {
		assert.NotEqual(t, "c", c.Column1)
		assert.NotEqual(t, "c", c.Column2)
	}
}

func TestAnomalies(t *testing.T) {
	tb := numbers([]string{"v"}, 12, func(i int, _ string) table.Value {
		if i == 7 {
			return table.NumberValue(1000)
		}
		return table.NumberValue(10)
	})
	res := NewAnalyzer(DefaultOptions()).Analyze(tb)
	require.Len(t, res.Anomalies, 1)
	assert.Equal(t, AnomalySet{Column: "v", Rows: []int{7}}, res.Anomalies[0])

	few := numbers([]string{"v"}, 9, func(i int, _ string) table.Value {
		return table.NumberValue(float64(i * i * i))
	})
	assert.Empty(t, NewAnalyzer(DefaultOptions()).Analyze(few).Anomalies)
}

func TestRecommendCharts(t *testing.T) {
	tb := numbers([]string{"sale_date", "amount", "region"}, 100, func(i int, col string) table.Value {
		switch col {
		case "sale_date":
			return table.StringValue(fmt.Sprintf("d%d", i))
		case "amount":
			return table.NumberValue(float64(i))
		default:
			return table.StringValue([]string{"north", "south"}[i%2])
		}
	})
	plan := RecommendCharts(tb)
	assert.Equal(t, []string{"line", "bar", "grouped-bar", "stacked-bar", "time-series", "pie", "donut"}, plan.Charts)
	assert.Equal(t, "amount", plan.DefaultColumn)
	assert.Equal(t, []string{"region"}, plan.CategoricalColumns)

	text := numbers([]string{"name"}, 3, func(i int, _ string) table.Value {
		return table.StringValue(fmt.Sprint("n", i))
	})
	assert.Empty(t, RecommendCharts(text).Charts)
}

func TestReportMarkdown(t *testing.T) {
	tb := table.New([]string{"a", "b|c"}, []table.Row{
		{"a": table.NumberValue(1), "b|c": table.StringValue("x\ny")},
	})
	rep := &Report{
		Name:   "data.csv",
		Result: NewAnalyzer(DefaultOptions()).Analyze(tb),
		Stats:  stats.Compute(tb),
		Head:   tb,
		AIText: "  looks fine  ",
	}
	md := rep.Markdown()
	assert.Contains(t, md, "File: data.csv\n")
	assert.Contains(t, md, "Rows: 1\n")
	assert.Contains(t, md, "[INSIGHTS]\n- [info] Dataset Overview: Dataset contains 1 rows and 2 columns.\n")
	assert.Contains(t, md, "- a: numeric 1, nulls 0 (min 1, median 1, max 1, mean 1)\n")
	assert.Contains(t, md, "| 1 | x y |\n")
	assert.Contains(t, md, "[AI INSIGHTS]\nlooks fine\n")
}
