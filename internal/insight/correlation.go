package insight

import (
	"math"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/tabloom-cli/internal/table"
)

// Pearson returns the correlation coefficient of x and y, or 0 when either
// series has no variance or the lengths differ.
func Pearson(x, y []float64) float64 {
	if len(x) != len(y) || len(x) == 0 {
		return 0
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

// Each column is filtered independently, so a pair is only scored when both
// columns have the same number of parseable values.
func (a *Analyzer) correlations(sample *table.Table, numeric []string) []Correlation {
	var out []Correlation
	for i := 0; i < len(numeric); i++ {
		x := sample.Numbers(numeric[i])
		for j := i + 1; j < len(numeric); j++ {
			y := sample.Numbers(numeric[j])
			if len(x) < a.opt.MinCorrValues || len(x) != len(y) {
				continue
			}
			if r := Pearson(x, y); math.Abs(r) > a.opt.CorrThreshold {
				out = append(out, Correlation{Column1: numeric[i], Column2: numeric[j], Score: r})
			}
		}
	}
	return out
}

func (a *Analyzer) anomalies(sample *table.Table, numeric []string) []AnomalySet {
	var out []AnomalySet
	for _, c := range numeric {
		var vals []float64
		var idx []int
		for i, r := range sample.Rows {
			if f, ok := r.Get(c).Float(); ok {
				vals = append(vals, f)
				idx = append(idx, i)
			}
		}
		if len(vals) < a.opt.MinAnomalyValues {
			continue
		}
		mean, err := mstats.Mean(vals)
		if err != nil {
			continue
		}
		sd, err := mstats.StandardDeviationPopulation(vals)
		if err != nil {
			continue
		}
		var flagged []int
		for k, v := range vals {
			if math.Abs(v-mean) > a.opt.AnomalySigma*sd {
				flagged = append(flagged, idx[k])
			}
		}
		if len(flagged) > 0 {
			out = append(out, AnomalySet{Column: c, Rows: flagged})
		}
	}
	return out
}
