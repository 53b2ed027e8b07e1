// Package forecast projects a column forward with an ordinary least squares line.
package forecast

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/tabloom-cli/internal/table"
)

// Horizon is the number of projected points.
const Horizon = 5

// Fit is a fitted line y = Slope*x + Intercept over positional indices.
type Fit struct {
	Slope     float64
	Intercept float64
	N         int
}

// At evaluates the line at x.
func (f Fit) At(x float64) float64 { return f.Slope*x + f.Intercept }

// FitLine regresses ys on their indices 0..n-1. ok is false when fewer than
// two values are given.
func FitLine(ys []float64) (Fit, bool) {
	n := len(ys)
	if n < 2 {
		return Fit{}, false
	}
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}
	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	return Fit{Slope: slope, Intercept: intercept, N: n}, true
}

// Predict projects the parseable values of column at x = n..n+Horizon-1.
func Predict(t *table.Table, column string) ([]float64, bool) {
	fit, ok := FitLine(t.Numbers(column))
	if !ok {
		return nil, false
	}
	out := make([]float64, Horizon)
	for i := range out {
		out[i] = fit.At(float64(fit.N + i))
	}
	return out, true
}

// Point is one labelled value of a chartable series.
type Point struct {
	Label string  `json:"name"`
	Value float64 `json:"value"`
}

// Series returns the parseable values of column labelled "Point 1", "Point 2", ...
func Series(t *table.Table, column string) []Point {
	nums := t.Numbers(column)
	out := make([]Point, len(nums))
	for i, v := range nums {
		out[i] = Point{Label: fmt.Sprintf("Point %d", i+1), Value: v}
	}
	return out
}
