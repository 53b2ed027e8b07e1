package formula

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/tabloom-cli/internal/apperr"
	"github.com/KaramelBytes/tabloom-cli/internal/table"
)

func sales() *table.Table {
	return table.New([]string{"price", "qty"}, []table.Row{
		{"price": table.StringValue("10"), "qty": table.StringValue("3")},
		{"price": table.NumberValue(2.5), "qty": table.StringValue("-2")},
		{"price": table.StringValue("n/a"), "qty": table.StringValue("4")},
	})
}

func TestCompileEvaluatesWithPrecedence(t *testing.T) {
	cases := map[string]float64{
		"1 + 2 * 3":       7,
		"(1 + 2) * 3":     9,
		"10 / 4 - 1":      1.5,
		"-3 + 5":          2,
		"2 * -(1 + 1)":    -4,
		"8 / 2 / 2":       2,
		"1.5e2 + .5":      150.5,
		"--4":             4,
		"{a} - -{b}":      5,
		"({a} + {b}) / 2": 2.5,
	}
	resolve := func(col string) float64 {
		return map[string]float64{"a": 3, "b": 2}[col]
	}
	for src, want := range cases {
		e, err := Compile(src)
		require.NoError(t, err, src)
		assert.InDelta(t, want, e.Eval(resolve), 1e-12, src)
	}
}

func TestCompileRejectsMalformed(t *testing.T) {
	for _, src := range []string{
		"1 +",
		"(1 + 2",
		"1 + 2)",
		"{price",
		"{}",
		"2 ** 3",
		"alert(1)",
		"1 2",
		".",
		"{a} {b}",
	} {
		_, err := Compile(src)
		assert.Error(t, err, src)
	}
}

func TestCompileColumns(t *testing.T) {
	e, err := Compile("{price} * {qty} + {price}")
	require.NoError(t, err)
	assert.Equal(t, []string{"price", "qty"}, e.Columns())
}

func TestAddColumnFormula(t *testing.T) {
	in := sales()
	out, err := AddColumn(in, "total", "{price} * {qty}", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"price", "qty", "total"}, out.Columns)

	want := []float64{30, -5, 0}
	for i, w := range want {
		f, ok := out.Rows[i].Get("total").Float()
		require.True(t, ok)
		assert.Equal(t, w, f)
	}
	assert.False(t, in.HasColumn("total"))
	assert.False(t, in.Rows[0].Has("total"))
}

func TestAddColumnDivisionByZero(t *testing.T) {
	out, err := AddColumn(sales(), "ratio", "{price} / 0", "")
	require.NoError(t, err)
	assert.Equal(t, table.KindNumber, out.Rows[0].Get("ratio").Kind())
	f, _ := out.Rows[0].Get("ratio").Float()
	assert.True(t, math.IsInf(f, 1))
}

func TestAddColumnManual(t *testing.T) {
	out, err := AddColumn(sales(), "note", "", "a\r\nb")
	require.NoError(t, err)
	assert.Equal(t, "a", out.Rows[0].Get("note").String())
	assert.Equal(t, "b", out.Rows[1].Get("note").String())
	assert.True(t, out.Rows[2].Has("note"))
	assert.Equal(t, "", out.Rows[2].Get("note").String())
}

func TestAddColumnOverwritesExisting(t *testing.T) {
	out, err := AddColumn(sales(), "qty", "{qty} * 2", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"price", "qty"}, out.Columns)
	f, _ := out.Rows[0].Get("qty").Float()
	assert.Equal(t, 6.0, f)
}

func TestAddColumnErrors(t *testing.T) {
	_, err := AddColumn(sales(), "", "{price}", "")
	assert.True(t, apperr.IsValidation(err))
	assert.Contains(t, err.Error(), "missing column name or source")

	_, err = AddColumn(sales(), "x", "", "")
	assert.True(t, apperr.IsValidation(err))

	_, err = AddColumn(sales(), "x", "{price} *", "")
	assert.True(t, apperr.IsParse(err))
}
