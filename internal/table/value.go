package table

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Kind tags the dynamic type carried by a Value.
type Kind uint8

const (
	KindMissing Kind = iota
	KindNull
	KindString
	KindNumber
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return "missing"
	}
}

// Value is a single cell. The zero Value is Missing.
type Value struct {
	kind Kind
	s    string
	n    float64
	b    bool
}

func NullValue() Value            { return Value{kind: KindNull} }
func StringValue(s string) Value  { return Value{kind: KindString, s: s} }
func NumberValue(f float64) Value { return Value{kind: KindNumber, n: f} }
func BoolValue(b bool) Value      { return Value{kind: KindBool, b: b} }

func (v Value) Kind() Kind      { return v.kind }
func (v Value) IsMissing() bool { return v.kind == KindMissing }

// IsBlank reports whether the cell counts as null: missing, null or "".
func (v Value) IsBlank() bool {
	switch v.kind {
	case KindMissing, KindNull:
		return true
	case KindString:
		return v.s == ""
	}
	return false
}

// Truthy mirrors loose truthiness: missing, null, "", 0, NaN and false are falsy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindString:
		return v.s != ""
	case KindNumber:
		return v.n != 0 && !math.IsNaN(v.n)
	case KindBool:
		return v.b
	}
	return false
}

// String casts the value to text. Null and missing cast to "".
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindNumber:
		return FormatNumber(v.n)
	case KindBool:
		return strconv.FormatBool(v.b)
	}
	return ""
}

// Float parses the value as a floating point number using leading-prefix
// semantics ("12abc" is 12, "abc" is not numeric). Bools and nulls are not numeric.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindNumber:
		if math.IsNaN(v.n) {
			return 0, false
		}
		return v.n, true
	case KindString:
		return ParseFloat(v.s)
	}
	return 0, false
}

// Equal compares kind and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.s == o.s
	case KindNumber:
		return v.n == o.n || (math.IsNaN(v.n) && math.IsNaN(o.n))
	case KindBool:
		return v.b == o.b
	}
	return true
}

// GoString keeps the type tag so fingerprints never confuse "1" with 1.
func (v Value) GoString() string {
	switch v.kind {
	case KindString:
		return "s" + strconv.Quote(v.s)
	case KindNumber:
		return "n" + FormatNumber(v.n)
	case KindBool:
		return "b" + strconv.FormatBool(v.b)
	case KindNull:
		return "null"
	}
	return "missing"
}

// MarshalJSON encodes the value the way a JSON stringifier would: NaN and
// infinities become null, missing values encode as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return marshalString(v.s)
	case KindNumber:
		if math.IsNaN(v.n) || math.IsInf(v.n, 0) {
			return []byte("null"), nil
		}
		return []byte(FormatNumber(v.n)), nil
	case KindBool:
		return json.Marshal(v.b)
	}
	return []byte("null"), nil
}

// UnmarshalJSON decodes scalars into their kinds; objects and arrays are
// kept as their raw JSON text.
func (v *Value) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 {
		return fmt.Errorf("empty json value")
	}
	switch trimmed[0] {
	case 'n':
		*v = NullValue()
	case 't', 'f':
		var x bool
		if err := json.Unmarshal(trimmed, &x); err != nil {
			return err
		}
		*v = BoolValue(x)
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*v = StringValue(s)
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err != nil {
			return err
		}
		*v = StringValue(buf.String())
	default:
		f, err := strconv.ParseFloat(string(trimmed), 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return fmt.Errorf("decode number %q: %w", trimmed, err)
		}
		*v = NumberValue(f)
	}
	return nil
}

func marshalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

var floatPrefix = regexp.MustCompile(`^[+-]?(?:Infinity|(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?)`)

// ParseFloat parses the longest numeric prefix of s after leading whitespace.
func ParseFloat(s string) (float64, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	m := floatPrefix.FindString(s)
	if m == "" {
		return 0, false
	}
	if strings.HasSuffix(m, "Infinity") {
		if strings.HasPrefix(m, "-") {
			return math.Inf(-1), true
		}
		return math.Inf(1), true
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		// out-of-range literals still carry a usable ±Inf
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return f, true
		}
		return 0, false
	}
	return f, true
}

// FormatNumber renders f in shortest round-trip form, switching to
// exponent notation outside [1e-7, 1e21).
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs >= 1e21 || abs < 1e-7) {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")
		sign := exp[:1]
		digits := strings.TrimLeft(exp[1:], "0")
		if digits == "" {
			digits = "0"
		}
		return mant + "e" + sign + digits
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
