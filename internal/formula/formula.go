// Package formula derives new columns from arithmetic formulas over existing
// columns or from manually supplied values.
package formula

import (
	"strings"

	"github.com/KaramelBytes/tabloom-cli/internal/apperr"
	"github.com/KaramelBytes/tabloom-cli/internal/table"
)

// AddColumn returns a copy of t with column name derived from formula, or
// from manual (newline separated, row i gets line i) when formula is empty.
// A malformed formula fails the whole call and t is left as it was.
func AddColumn(t *table.Table, name, formula, manual string) (*table.Table, error) {
	name = strings.TrimSpace(name)
	formula = strings.TrimSpace(formula)
	if name == "" || (formula == "" && manual == "") {
		return nil, apperr.Validation("column", "missing column name or source")
	}
	if formula != "" && manual != "" {
		return nil, apperr.Validation("column", "use either a formula or manual values, not both")
	}

	out := t.Clone()
	if formula != "" {
		expr, err := Compile(formula)
		if err != nil {
			return nil, apperr.Parse("formula", err)
		}
		for _, row := range out.Rows {
			r := row
			row[name] = table.NumberValue(expr.Eval(func(col string) float64 {
				f, ok := r.Get(col).Float()
				if !ok {
					return 0
				}
				return f
			}))
		}
	} else {
		values := ManualValues(manual)
		for i, row := range out.Rows {
			v := ""
			if i < len(values) {
				v = values[i]
			}
			row[name] = table.StringValue(v)
		}
	}
	if !out.HasColumn(name) {
		out.Columns = append(out.Columns, name)
	}
	return out, nil
}

// ManualValues splits a newline-delimited value list, tolerating CRLF.
func ManualValues(s string) []string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
