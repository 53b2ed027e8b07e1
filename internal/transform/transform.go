package transform

import (
	"math"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/KaramelBytes/tabloom-cli/internal/table"
)

const ellipsis = "..."

// whitespace also covers the unicode spaces that \s alone misses in RE2.
const whitespace = `\s\x0B\p{Zs}\x{FEFF}\x{2028}\x{2029}`

var (
	reSpaceRuns   = regexp.MustCompile(`[` + whitespace + `]+`)
	reSpecial     = regexp.MustCompile(`[^a-zA-Z0-9` + whitespace + `]`)
	reNonNumeric  = regexp.MustCompile(`[^0-9.]`)
	reNonDigit    = regexp.MustCompile(`\D`)
	reEmail       = regexp.MustCompile(`[\w.-]+@[\w.-]+\.\w+`)
	reLeadingInts = regexp.MustCompile(`^[+-]?\d+`)
)

// Apply runs rules in order over a copy of t. Each rule only touches rows
// that already carry its column. Values an operation cannot handle are kept.
func Apply(t *table.Table, rules []Rule) *table.Table {
	out := t.Clone()
	for _, r := range rules {
		applyRule(out, r)
	}
	return out
}

func applyRule(t *table.Table, r Rule) {
	var re *regexp.Regexp
	if r.Operation == OpReplace {
		// an invalid pattern disables the rule rather than failing the batch
		compiled, err := regexp.Compile(r.Argument)
		if err != nil {
			return
		}
		re = compiled
	}
	for _, row := range t.Rows {
		v, ok := row[r.Column]
		if !ok {
			continue
		}
		row[r.Column] = rewrite(v, r, re)
	}
}

func rewrite(v table.Value, r Rule, re *regexp.Regexp) table.Value {
	switch r.Operation {
	case OpUppercase:
		return table.StringValue(strings.ToUpper(v.String()))
	case OpLowercase:
		return table.StringValue(strings.ToLower(v.String()))
	case OpTitleCase:
		return table.StringValue(titleCase(v.String()))
	case OpTrim:
		return table.StringValue(strings.TrimFunc(v.String(), isSpace))
	case OpRemoveEmptySpaces:
		return table.StringValue(reSpaceRuns.ReplaceAllString(v.String(), " "))
	case OpReplace:
		return table.StringValue(re.ReplaceAllString(v.String(), ""))
	case OpRemoveSpecial:
		return table.StringValue(reSpecial.ReplaceAllString(v.String(), ""))
	case OpTruncateText:
		return table.StringValue(truncate(v.String(), r.Argument))
	case OpExtractNumbers:
		return table.StringValue(reNonNumeric.ReplaceAllString(v.String(), ""))
	case OpExtractEmails:
		return table.StringValue(strings.Join(reEmail.FindAllString(v.String(), -1), ", "))
	case OpFormatDate:
		if ts, ok := parseDate(v); ok {
			return table.StringValue(ts.UTC().Format("2006-01-02"))
		}
		return v
	case OpFormatPhone:
		digits := reNonDigit.ReplaceAllString(v.String(), "")
		if len(digits) == 10 {
			return table.StringValue("(" + digits[:3] + ") " + digits[3:6] + "-" + digits[6:])
		}
		return v
	case OpRoundNumber:
		return roundNumber(v, r.Argument)
	case OpFillNull:
		if !v.Truthy() {
			return table.StringValue(r.Argument)
		}
		return v
	}
	return v
}

func isSpace(r rune) bool { return unicode.IsSpace(r) || r == '\uFEFF' }

func titleCase(s string) string {
	words := strings.Split(strings.ToLower(s), " ")
	for i, w := range words {
		first, size := utf8.DecodeRuneInString(w)
		if size == 0 {
			continue
		}
		words[i] = string(unicode.ToUpper(first)) + w[size:]
	}
	return strings.Join(words, " ")
}

// parseInt reads the leading integer of s; ok is false when there is none.
func parseInt(s string) (int, bool) {
	m := reLeadingInts.FindString(strings.TrimLeftFunc(s, unicode.IsSpace))
	if m == "" {
		return 0, false
	}
	n := 0
	neg := false
	for i, c := range m {
		switch {
		case i == 0 && (c == '-' || c == '+'):
			neg = c == '-'
		default:
			if n > math.MaxInt32/10 {
				n = math.MaxInt32
				continue
			}
			n = n*10 + int(c-'0')
		}
	}
	if neg {
		n = -n
	}
	return n, true
}

func truncate(s, arg string) string {
	n, ok := parseInt(arg)
	if !ok {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n < 0 {
		n = 0
	}
	return string(runes[:n]) + ellipsis
}

func roundNumber(v table.Value, arg string) table.Value {
	f, ok := v.Float()
	if !ok {
		return v
	}
	places, ok := parseInt(arg)
	if !ok {
		return v
	}
	p := math.Pow(10, float64(places))
	// half-up toward +Inf, so -2.5 rounds to -2
	return table.NumberValue(math.Floor(f*p+0.5) / p)
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006-01",
	"2006/01/02",
	"2006/1/2",
	"01/02/2006",
	"1/2/2006",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"01-02-2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"Jan 2 2006",
	"2 January 2006",
	"2 Jan 2006",
	time.RFC1123,
	time.RFC1123Z,
	time.RFC850,
	time.ANSIC,
	"Mon Jan 2 2006",
	"Mon Jan 02 2006 15:04:05",
	"2006",
}

// maxEpochMillis bounds numeric timestamps to ±100,000,000 days around the epoch.
const maxEpochMillis = 8.64e15

func parseDate(v table.Value) (time.Time, bool) {
	switch v.Kind() {
	case table.KindNumber:
		f, ok := v.Float()
		if !ok || math.IsInf(f, 0) || math.Abs(f) > maxEpochMillis {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(f)), true
	case table.KindString:
	default:
		return time.Time{}, false
	}
	s := strings.TrimSpace(v.String())
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range dateLayouts {
		if ts, err := time.Parse(l, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// RemoveColumn drops a column from the list and from every row.
func RemoveColumn(t *table.Table, column string) *table.Table {
	out := t.Clone()
	cols := out.Columns[:0]
	for _, c := range out.Columns {
		if c != column {
			cols = append(cols, c)
		}
	}
	out.Columns = cols
	for _, row := range out.Rows {
		delete(row, column)
	}
	return out
}

// FillNulls replaces falsy cells of column with value on every row,
// creating the key where it is absent.
func FillNulls(t *table.Table, column, value string) *table.Table {
	out := t.Clone()
	for _, row := range out.Rows {
		if !row.Get(column).Truthy() {
			row[column] = table.StringValue(value)
		}
	}
	if !out.HasColumn(column) {
		out.Columns = append(out.Columns, column)
	}
	return out
}
