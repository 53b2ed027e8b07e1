// Package insight derives data-quality insights, correlations and anomalies
// from a bounded sample of a table.
package insight

import (
	"fmt"

	"github.com/KaramelBytes/tabloom-cli/internal/dedupe"
	"github.com/KaramelBytes/tabloom-cli/internal/table"
)

// Level classifies an insight for display.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelSuccess Level = "success"
)

// Insight is one titled finding.
type Insight struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Level       Level  `json:"type"`
}

// Correlation is a strong linear relationship between two numeric columns.
type Correlation struct {
	Column1 string  `json:"column1"`
	Column2 string  `json:"column2"`
	Score   float64 `json:"score"`
}

// AnomalySet lists sample-row indices whose value is an outlier in Column.
type AnomalySet struct {
	Column string `json:"column"`
	Rows   []int  `json:"rows"`
}

// Options controls the analysis thresholds.
type Options struct {
	// SampleRows bounds the rows examined; the overview still reports full counts.
	SampleRows int
	// MissingPct is the missing share, in percent, above which a column is flagged.
	MissingPct float64
	// MinCorrValues is the minimum parseable values per column for a correlation.
	MinCorrValues int
	// CorrThreshold keeps pairs with |r| above it.
	CorrThreshold float64
	// MinAnomalyValues is the minimum parseable values for anomaly detection.
	MinAnomalyValues int
	// AnomalySigma flags values further than this many standard deviations.
	AnomalySigma float64
}

// DefaultOptions returns the standard thresholds.
func DefaultOptions() Options {
	return Options{
		SampleRows:       50,
		MissingPct:       10,
		MinCorrValues:    5,
		CorrThreshold:    0.5,
		MinAnomalyValues: 10,
		AnomalySigma:     2,
	}
}

// Result is the full output of an analysis run.
type Result struct {
	Rows           int           `json:"rows"`
	Columns        int           `json:"columns"`
	SampleSize     int           `json:"sampleSize"`
	Insights       []Insight     `json:"insights"`
	NumericColumns []string      `json:"numericColumns"`
	Correlations   []Correlation `json:"correlations"`
	Anomalies      []AnomalySet  `json:"anomalies"`
}

// Analyzer runs the insight steps with fixed options.
type Analyzer struct {
	opt Options
}

// NewAnalyzer returns an Analyzer. Zero option fields take their defaults.
func NewAnalyzer(opt Options) *Analyzer {
	def := DefaultOptions()
	if opt.SampleRows <= 0 {
		opt.SampleRows = def.SampleRows
	}
	if opt.MissingPct <= 0 {
		opt.MissingPct = def.MissingPct
	}
	if opt.MinCorrValues <= 0 {
		opt.MinCorrValues = def.MinCorrValues
	}
	if opt.CorrThreshold <= 0 {
		opt.CorrThreshold = def.CorrThreshold
	}
	if opt.MinAnomalyValues <= 0 {
		opt.MinAnomalyValues = def.MinAnomalyValues
	}
	if opt.AnomalySigma <= 0 {
		opt.AnomalySigma = def.AnomalySigma
	}
	return &Analyzer{opt: opt}
}

// Analyze examines the first SampleRows rows of t.
func (a *Analyzer) Analyze(t *table.Table) *Result {
	sample := t.Head(a.opt.SampleRows)
	res := &Result{
		Rows:       t.Len(),
		Columns:    len(t.Columns),
		SampleSize: sample.Len(),
	}
	res.Insights = append(res.Insights, a.missingValues(sample)...)
	if in, ok := duplicates(sample); ok {
		res.Insights = append(res.Insights, in)
	}
	res.Insights = append(res.Insights, Insight{
		Title:       "Dataset Overview",
		Description: fmt.Sprintf("Dataset contains %d rows and %d columns.", res.Rows, res.Columns),
		Level:       LevelInfo,
	})
	res.NumericColumns = NumericColumns(sample)
	if n := len(res.NumericColumns); n > 0 {
		res.Insights = append(res.Insights, Insight{
			Title:       "Numeric Analysis Available",
			Description: fmt.Sprintf("%d columns contain numeric data suitable for statistical analysis.", n),
			Level:       LevelSuccess,
		})
	}
	res.Correlations = a.correlations(sample, res.NumericColumns)
	res.Anomalies = a.anomalies(sample, res.NumericColumns)
	return res
}

func (a *Analyzer) missingValues(sample *table.Table) []Insight {
	n := sample.Len()
	if n == 0 {
		return nil
	}
	var out []Insight
	for _, c := range sample.Columns {
		missing := 0
		for _, r := range sample.Rows {
			if r.Get(c).IsBlank() {
				missing++
			}
		}
		pct := float64(missing) / float64(n) * 100
		if pct > a.opt.MissingPct {
			out = append(out, Insight{
				Title:       "Missing Values in " + c,
				Description: fmt.Sprintf("%.1f%% of values are missing in this column.", pct),
				Level:       LevelWarning,
			})
		}
	}
	return out
}

func duplicates(sample *table.Table) (Insight, bool) {
	n := sample.Len()
	distinct := dedupe.Distinct(sample)
	if distinct >= n {
		return Insight{}, false
	}
	pct := float64(n-distinct) / float64(n) * 100
	return Insight{
		Title:       "Duplicate Rows Detected",
		Description: fmt.Sprintf("Approximately %.1f%% of rows may be duplicates.", pct),
		Level:       LevelWarning,
	}, true
}

// NumericColumns returns the columns where more than half the rows parse as numbers.
func NumericColumns(t *table.Table) []string {
	var out []string
	for _, c := range t.Columns {
		if float64(len(t.Numbers(c))) > float64(t.Len())*0.5 {
			out = append(out, c)
		}
	}
	return out
}
