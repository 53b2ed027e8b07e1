package insight

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/tabloom-cli/internal/stats"
	"github.com/KaramelBytes/tabloom-cli/internal/table"
)

// Report is a markdown-friendly view of an analysis run.
type Report struct {
	Name   string
	Result *Result
	Stats  []stats.ColumnStat
	// Head holds the rows shown in the sample section; nil skips it.
	Head *table.Table
	// AIText is optional free-form commentary from the AI runtime.
	AIText string
}

// Markdown renders the report.
func (r *Report) Markdown() string {
	var b strings.Builder
	res := r.Result
	if res == nil {
		res = &Result{}
	}
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	if res.SampleSize > 0 && res.SampleSize < res.Rows {
		b.WriteString(fmt.Sprintf("Rows: %d (sampled %d)\n", res.Rows, res.SampleSize))
	} else {
		b.WriteString(fmt.Sprintf("Rows: %d\n", res.Rows))
	}
	b.WriteString(fmt.Sprintf("Columns: %d\n", res.Columns))

	if len(r.Stats) > 0 {
		b.WriteString("\n[SCHEMA]\n")
		for _, s := range r.Stats {
			b.WriteString(fmt.Sprintf("- %s: numeric %d, nulls %d", safeName(s.Column), s.Count, s.NullCount))
			if s.Count > 0 {
				b.WriteString(fmt.Sprintf(" (min %.4g, median %.4g, max %.4g, mean %.4g)", s.Min, s.Median, s.Max, s.Mean))
			}
			b.WriteString("\n")
		}
	}

	if len(res.Insights) > 0 {
		b.WriteString("\n[INSIGHTS]\n")
		for _, in := range res.Insights {
			b.WriteString(fmt.Sprintf("- [%s] %s: %s\n", in.Level, in.Title, in.Description))
		}
	}

	if len(res.Correlations) > 0 {
		b.WriteString("\n[CORRELATIONS]\n")
		pairs := append([]Correlation(nil), res.Correlations...)
		sort.SliceStable(pairs, func(i, j int) bool {
			return math.Abs(pairs[i].Score) > math.Abs(pairs[j].Score)
		})
		for _, p := range pairs {
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f (%s)\n", p.Column1, p.Column2, p.Score, strength(p.Score)))
		}
	}

	if len(res.Anomalies) > 0 {
		b.WriteString("\n[ANOMALIES]\n")
		for _, a := range res.Anomalies {
			idx := make([]string, len(a.Rows))
			for i, n := range a.Rows {
				idx[i] = fmt.Sprint(n + 1)
			}
			b.WriteString(fmt.Sprintf("- %s: %d outliers at rows %s\n", a.Column, len(a.Rows), strings.Join(idx, ", ")))
		}
	}

	if r.Head != nil && r.Head.Len() > 0 && len(r.Head.Columns) > 0 {
		b.WriteString("\n[HEAD AND SAMPLE ROWS]\n")
		b.WriteString("| ")
		for i, c := range r.Head.Columns {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(safeName(c))
		}
		b.WriteString(" |\n| ")
		for i := range r.Head.Columns {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString("---")
		}
		b.WriteString(" |\n")
		for _, row := range r.Head.Rows {
			b.WriteString("| ")
			for i, c := range r.Head.Columns {
				if i > 0 {
					b.WriteString(" | ")
				}
				val := row.Get(c).String()
				if len(val) > 80 {
					val = val[:77] + "..."
				}
				b.WriteString(safeVal(val))
			}
			b.WriteString(" |\n")
		}
	}

	if strings.TrimSpace(r.AIText) != "" {
		b.WriteString("\n[AI INSIGHTS]\n")
		b.WriteString(strings.TrimSpace(r.AIText))
		b.WriteString("\n")
	}
	return b.String()
}

func strength(r float64) string {
	switch a := math.Abs(r); {
	case a > 0.8:
		return "strong"
	case a > 0.6:
		return "moderate"
	default:
		return "weak"
	}
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
