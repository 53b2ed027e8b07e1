package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/tabloom-cli/internal/apperr"
	"github.com/KaramelBytes/tabloom-cli/internal/table"
	"github.com/KaramelBytes/tabloom-cli/internal/transform"
)

const cleanup = `
name: cleanup
steps:
  - kind: transform
    rules:
      - column: name
        operation: trim
      - column: name
        operation: TITLECASE
  - kind: add_column
    name: total
    formula: "{price} * {qty}"
  - kind: fill_null
    column: city
    value: unknown
  - kind: dedupe
  - kind: remove_column
    column: qty
`

func orders() *table.Table {
	return table.New([]string{"name", "price", "qty", "city"}, []table.Row{
		{"name": table.StringValue(" ann lee "), "price": table.StringValue("2"), "qty": table.StringValue("3"), "city": table.StringValue("Oslo")},
		{"name": table.StringValue("bob"), "price": table.StringValue("5"), "qty": table.StringValue("1")},
		{"name": table.StringValue("Bob"), "price": table.StringValue("5"), "qty": table.StringValue("1"), "city": table.StringValue("")},
	})
}

func TestLoadAndExecute(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cleanup.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cleanup), 0o644))
	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "cleanup", p.Name)
	assert.Equal(t, transform.OpTitleCase, p.Steps[0].Rules[1].Operation)

	in := orders()
	run, err := Execute(in, p.Steps)
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	require.Len(t, run.Results, 5)
	assert.Equal(t, 1, run.Results[3].Removed)

	out := run.Table
	assert.Equal(t, []string{"name", "price", "city", "total"}, out.Columns)
	require.Len(t, out.Rows, 2)
	assert.Equal(t, "Ann Lee", out.Rows[0].Get("name").String())
	assert.Equal(t, "unknown", out.Rows[1].Get("city").String())
	total, _ := out.Rows[0].Get("total").Float()
	assert.Equal(t, 6.0, total)

	assert.Equal(t, " ann lee ", in.Rows[0].Get("name").String())
	assert.Len(t, in.Rows, 3)
}

func TestExecuteStopsAtFailingStep(t *testing.T) {
	steps := []Step{
		{Kind: KindDedupe},
		{Kind: KindAddColumn, Name: "x"},
		{Kind: KindRemoveColumn, Column: "qty"},
	}
	run, err := Execute(orders(), steps)
	require.Error(t, err)
	var se *ErrStep
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 1, se.Index)
	assert.True(t, apperr.IsValidation(err))
	assert.Len(t, run.Results, 1)
	assert.Nil(t, run.Table)
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"empty":        "steps: []",
		"unknown kind": "steps:\n  - kind: explode",
		"bad rule":     "steps:\n  - kind: transform\n    rules:\n      - column: a\n        operation: shout",
		"bad formula":  "steps:\n  - kind: add_column\n    name: t\n    formula: \"{a} +\"",
		"no column":    "steps:\n  - kind: fill_null\n    value: x",
		"bad yaml":     "steps: [",
	}
	for name, src := range cases {
		_, err := Parse([]byte(src))
		assert.Error(t, err, name)
	}
	_, err := Parse([]byte("steps:\n  - kind: add_column\n    name: t\n    formula: \"{a} +\""))
	assert.True(t, apperr.IsParse(err))
}

func TestBlankFormulaFallsBackToValues(t *testing.T) {
	p, err := Parse([]byte("steps:\n  - kind: add_column\n    name: tag\n    formula: \" \"\n    values: \"a\\nb\"\n"))
	require.NoError(t, err)
	run, err := Execute(orders(), p.Steps)
	require.NoError(t, err)
	out := run.Table
	assert.Equal(t, "a", out.Rows[0].Get("tag").String())
	assert.Equal(t, "b", out.Rows[1].Get("tag").String())
	assert.Equal(t, "", out.Rows[2].Get("tag").String())
}

func TestMarshalRoundTrip(t *testing.T) {
	p := &Pipeline{Name: "p", Steps: []Step{
		{Kind: KindTransform, Rules: []transform.Rule{{Column: "a", Operation: transform.OpReplace, Argument: `\d+`}}},
		{Kind: KindAddColumn, Name: "notes", Values: "x\ny"},
	}}
	b, err := p.Marshal()
	require.NoError(t, err)
	back, err := Parse(b)
	require.NoError(t, err)
	assert.Equal(t, p, back)
}
