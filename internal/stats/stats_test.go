package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/tabloom-cli/internal/table"
)

func TestComputeMixedColumn(t *testing.T) {
	tb := table.New([]string{"v", "name"}, []table.Row{
		{"v": table.StringValue("4"), "name": table.StringValue("a")},
		{"v": table.StringValue("1"), "name": table.StringValue("")},
		{"v": table.StringValue("oops"), "name": table.NullValue()},
		{"v": table.NumberValue(3)},
		{"v": table.StringValue(""), "name": table.StringValue("d")},
		{"v": table.StringValue("2")},
	})
	got := Compute(tb)
	require.Len(t, got, 2)

	v := got[0]
	assert.Equal(t, "v", v.Column)
	assert.Equal(t, 4, v.Count)
	assert.InDelta(t, 2.5, v.Mean, 1e-12)
	assert.Equal(t, 3.0, v.Median)
	assert.Equal(t, 1.0, v.Min)
	assert.Equal(t, 4.0, v.Max)
	assert.Equal(t, 1, v.NullCount)

	name := got[1]
	assert.Equal(t, 0, name.Count)
	assert.Equal(t, 4, name.NullCount)
}

func TestMedianIsUpperMiddle(t *testing.T) {
	assert.Equal(t, 3.0, MiddlePick([]float64{4, 2, 1, 3}))
	assert.Equal(t, 2.0, MiddlePick([]float64{3, 1, 2}))
	assert.Equal(t, 0.0, MiddlePick(nil))
}

func TestAllNullColumn(t *testing.T) {
	tb := table.New([]string{"x"}, []table.Row{
		{"x": table.NullValue()},
		{"x": table.StringValue("")},
		{},
	})
	got := Column(tb, "x")
	assert.Equal(t, ColumnStat{Column: "x", NullCount: 3}, got)
}
