package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KaramelBytes/tabloom-cli/internal/table"
)

func TestDedupeKeepsFirstOccurrence(t *testing.T) {
	in := table.New([]string{"id", "v"}, []table.Row{
		{"id": table.StringValue("1"), "v": table.StringValue("a")},
		{"id": table.StringValue("2"), "v": table.StringValue("b")},
		{"id": table.StringValue("1"), "v": table.StringValue("a")},
		{"id": table.NumberValue(1), "v": table.StringValue("a")},
		{"id": table.StringValue("1")},
		{"id": table.StringValue("1"), "v": table.NullValue()},
		{"id": table.StringValue("2"), "v": table.StringValue("b")},
	})

	out, removed := Dedupe(in)
	assert.Equal(t, 2, removed)
	assert.Len(t, out.Rows, 5)
	assert.Equal(t, "2", out.Rows[1].Get("id").String())
	assert.Equal(t, table.KindNumber, out.Rows[2].Get("id").Kind())
	assert.False(t, out.Rows[3].Has("v"))
	assert.Equal(t, table.KindNull, out.Rows[4].Get("v").Kind())
	assert.Len(t, in.Rows, 7)
	assert.Equal(t, 5, Distinct(in))
}

func TestDedupeIsIdempotent(t *testing.T) {
	in := table.New([]string{"x"}, []table.Row{
		{"x": table.StringValue("a")},
		{"x": table.StringValue("a")},
		{"x": table.StringValue("b")},
	})
	once, _ := Dedupe(in)
	twice, removed := Dedupe(once)
	assert.Equal(t, 0, removed)
	assert.Equal(t, once.Rows, twice.Rows)
	assert.LessOrEqual(t, len(once.Rows), len(in.Rows))
}

func TestDedupeEmpty(t *testing.T) {
	out, removed := Dedupe(table.New([]string{"a"}, nil))
	assert.Zero(t, removed)
	assert.Empty(t, out.Rows)
}
