package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/tabloom-cli/internal/apperr"
	"github.com/KaramelBytes/tabloom-cli/internal/table"
)

func one(col string, v table.Value) *table.Table {
	return table.New([]string{col}, []table.Row{{col: v}})
}

func applyOne(t *testing.T, v table.Value, op Operation, arg string) table.Value {
	t.Helper()
	out := Apply(one("c", v), []Rule{{Column: "c", Operation: op, Argument: arg}})
	require.Equal(t, 1, out.Len())
	return out.Rows[0].Get("c")
}

func TestTrimThenTitleCase(t *testing.T) {
	in := one("name", table.StringValue(" john SMITH "))
	out := Apply(in, []Rule{
		{Column: "name", Operation: OpTrim},
		{Column: "name", Operation: OpTitleCase},
	})
	assert.Equal(t, "John Smith", out.Rows[0].Get("name").String())
	assert.Equal(t, " john SMITH ", in.Rows[0].Get("name").String(), "input must not be mutated")
}

func TestOperations(t *testing.T) {
	cases := []struct {
		name string
		in   table.Value
		op   Operation
		arg  string
		want string
	}{
		{"upper", table.StringValue("abc"), OpUppercase, "", "ABC"},
		{"upper number", table.NumberValue(5), OpUppercase, "", "5"},
		{"lower", table.StringValue("AbC"), OpLowercase, "", "abc"},
		{"title double space", table.StringValue("a  b"), OpTitleCase, "", "A  B"},
		{"collapse", table.StringValue("a \t\n b   c"), OpRemoveEmptySpaces, "", "a b c"},
		{"replace deletes matches", table.StringValue("a-b-c"), OpReplace, "-", "abc"},
		{"replace regex", table.StringValue("id123x45"), OpReplace, `\d+`, "idx"},
		{"replace invalid regex keeps value", table.StringValue("a(b"), OpReplace, "(", "a(b"},
		{"special", table.StringValue("he!!o w@rld 42"), OpRemoveSpecial, "", "heo wrld 42"},
		{"truncate", table.StringValue("abcdefgh"), OpTruncateText, "3", "abc..."},
		{"truncate short", table.StringValue("ab"), OpTruncateText, "3", "ab"},
		{"truncate bad arg", table.StringValue("abcdef"), OpTruncateText, "x", "abcdef"},
		{"numbers", table.StringValue("$1,234.50 USD"), OpExtractNumbers, "", "1234.50"},
		{"emails", table.StringValue("a@x.com; b.c@y.org"), OpExtractEmails, "", "a@x.com, b.c@y.org"},
		{"no emails", table.StringValue("nobody"), OpExtractEmails, "", ""},
		{"date iso", table.StringValue("2024-03-05T10:00:00Z"), OpFormatDate, "", "2024-03-05"},
		{"date us", table.StringValue("03/05/2024"), OpFormatDate, "", "2024-03-05"},
		{"date words", table.StringValue("March 5, 2024"), OpFormatDate, "", "2024-03-05"},
		{"date invalid", table.StringValue("not a date"), OpFormatDate, "", "not a date"},
		{"date epoch millis", table.NumberValue(86400000), OpFormatDate, "", "1970-01-02"},
		{"date beyond range", table.NumberValue(9e15), OpFormatDate, "", table.FormatNumber(9e15)},
		{"date far beyond range", table.NumberValue(1e20), OpFormatDate, "", table.FormatNumber(1e20)},
		{"date negative overflow", table.NumberValue(-1e19), OpFormatDate, "", table.FormatNumber(-1e19)},
		{"phone", table.StringValue("1234567890"), OpFormatPhone, "", "(123) 456-7890"},
		{"phone punctuated", table.StringValue("123.456.7890"), OpFormatPhone, "", "(123) 456-7890"},
		{"phone short", table.StringValue("123"), OpFormatPhone, "", "123"},
		{"fill empty", table.StringValue(""), OpFillNull, "n/a", "n/a"},
		{"fill null", table.NullValue(), OpFillNull, "n/a", "n/a"},
		{"fill zero", table.NumberValue(0), OpFillNull, "n/a", "n/a"},
		{"fill keeps", table.StringValue("x"), OpFillNull, "n/a", "x"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := applyOne(t, c.in, c.op, c.arg)
			assert.Equal(t, c.want, got.String())
		})
	}
}

func TestRoundNumber(t *testing.T) {
	got := applyOne(t, table.StringValue("3.14159"), OpRoundNumber, "2")
	require.Equal(t, table.KindNumber, got.Kind())
	f, _ := got.Float()
	assert.InDelta(t, 3.14, f, 1e-12)

	kept := applyOne(t, table.StringValue("abc"), OpRoundNumber, "2")
	assert.Equal(t, table.KindString, kept.Kind())
	assert.Equal(t, "abc", kept.String())

	half := applyOne(t, table.NumberValue(-2.5), OpRoundNumber, "0")
	f, _ = half.Float()
	assert.Equal(t, -2.0, f)
}

func TestMissingColumnIsNotCreated(t *testing.T) {
	in := table.New([]string{"a", "b"}, []table.Row{
		{"a": table.StringValue("x"), "b": table.StringValue("y")},
		{"a": table.StringValue("z")},
	})
	out := Apply(in, []Rule{{Column: "b", Operation: OpFillNull, Argument: "filled"}})
	assert.False(t, out.Rows[1].Has("b"))
	assert.Equal(t, "y", out.Rows[0].Get("b").String())
}

func TestIdempotentOperations(t *testing.T) {
	in := table.New([]string{"c"}, []table.Row{
		{"c": table.StringValue("  Hello,   WORLD!  ")},
		{"c": table.StringValue("\tmixed  spaces\n")},
		{"c": table.NumberValue(12.5)},
	})
	for _, op := range []Operation{OpTrim, OpUppercase, OpLowercase, OpRemoveEmptySpaces, OpRemoveSpecial} {
		rules := []Rule{{Column: "c", Operation: op}}
		once := Apply(in, rules)
		twice := Apply(once, rules)
		for i := range once.Rows {
			assert.Equal(t, once.Rows[i].Get("c").String(), twice.Rows[i].Get("c").String(), string(op))
		}
	}
}

func TestParseRule(t *testing.T) {
	r, err := ParseRule("created:FORMATDATE")
	require.NoError(t, err)
	assert.Equal(t, OpFormatDate, r.Operation)

	r, err = ParseRule("time:replace:\\d{2}:\\d{2}")
	require.NoError(t, err)
	assert.Equal(t, `\d{2}:\d{2}`, r.Argument)

	_, err = ParseRule("nocolon")
	assert.True(t, apperr.IsValidation(err))

	_, err = ParseRule("c:explode")
	assert.True(t, apperr.IsValidation(err))
}

func TestRemoveColumnAndFillNulls(t *testing.T) {
	in := table.New([]string{"a", "b"}, []table.Row{
		{"a": table.StringValue("1"), "b": table.StringValue("")},
		{"a": table.StringValue("2")},
	})
	removed := RemoveColumn(in, "a")
	assert.Equal(t, []string{"b"}, removed.Columns)
	assert.False(t, removed.Rows[0].Has("a"))
	assert.Equal(t, []string{"a", "b"}, in.Columns)

	filled := FillNulls(in, "b", "0")
	assert.Equal(t, "0", filled.Rows[0].Get("b").String())
	assert.Equal(t, "0", filled.Rows[1].Get("b").String())
}
