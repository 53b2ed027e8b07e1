package table

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Row maps column names to cells. Absent keys read as Missing.
type Row map[string]Value

// Get returns the cell for column, Missing when the key is absent.
func (r Row) Get(column string) Value { return r[column] }

// Has reports whether the row carries the column key.
func (r Row) Has(column string) bool {
	_, ok := r[column]
	return ok
}

// Clone returns a shallow copy; values are immutable so this is a full copy.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Field is one key/value pair of a Record.
type Field struct {
	Key   string
	Value Value
}

// Record is an ordered list of fields as produced by intake parsers.
type Record []Field

// Table is the in-memory dataset: ordered unique columns and ordered rows.
type Table struct {
	Columns []string
	Rows    []Row
}

// New builds a table from columns and rows, dropping duplicate column names.
func New(columns []string, rows []Row) *Table {
	return &Table{Columns: uniqueColumns(columns), Rows: rows}
}

// Load builds a table from records. Columns are the keys of the first
// record in order.
func Load(records []Record) *Table {
	t := &Table{Rows: make([]Row, 0, len(records))}
	if len(records) > 0 {
		keys := make([]string, 0, len(records[0]))
		for _, f := range records[0] {
			keys = append(keys, f.Key)
		}
		t.Columns = uniqueColumns(keys)
	}
	for _, rec := range records {
		row := make(Row, len(rec))
		for _, f := range rec {
			row[f.Key] = f.Value
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func uniqueColumns(cols []string) []string {
	seen := make(map[string]bool, len(cols))
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// HasColumn reports whether name is in the column list.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Clone deep-copies the column list and every row.
func (t *Table) Clone() *Table {
	out := &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([]Row, len(t.Rows)),
	}
	for i, r := range t.Rows {
		out.Rows[i] = r.Clone()
	}
	return out
}

// Head returns a table sharing rows with t limited to the first n rows.
func (t *Table) Head(n int) *Table {
	if n < 0 || n > len(t.Rows) {
		n = len(t.Rows)
	}
	return &Table{Columns: t.Columns, Rows: t.Rows[:n]}
}

// Column returns the cells of one column in row order.
func (t *Table) Column(name string) []Value {
	out := make([]Value, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Get(name)
	}
	return out
}

// Numbers returns the parseable values of a column in row order.
func (t *Table) Numbers(name string) []float64 {
	var out []float64
	for _, r := range t.Rows {
		if f, ok := r.Get(name).Float(); ok {
			out = append(out, f)
		}
	}
	return out
}

// Keys orders a row's keys: table columns first, then any extra keys sorted.
func (t *Table) Keys(r Row) []string {
	keys := make([]string, 0, len(r))
	inCols := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		inCols[c] = true
		if r.Has(c) {
			keys = append(keys, c)
		}
	}
	var extra []string
	for k := range r {
		if !inCols[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(keys, extra...)
}

// Fingerprint serializes a row field-for-field with type tags. Two rows are
// exact duplicates iff their fingerprints are equal.
func (t *Table) Fingerprint(r Row) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range t.Keys(r) {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(fmt.Sprintf("%q:%#v", k, r[k]))
	}
	b.WriteByte('}')
	return b.String()
}

// EncodeJSON writes the rows as an array of objects with keys in column
// order. indent "" writes compact output.
func (t *Table) EncodeJSON(w io.Writer, indent string) error {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, r := range t.Rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for j, k := range t.Keys(r) {
			if j > 0 {
				buf.WriteByte(',')
			}
			kb, err := marshalString(k)
			if err != nil {
				return fmt.Errorf("encode key %q: %w", k, err)
			}
			vb, err := r[k].MarshalJSON()
			if err != nil {
				return fmt.Errorf("encode value for %q: %w", k, err)
			}
			buf.Write(kb)
			buf.WriteByte(':')
			buf.Write(vb)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	out := buf.Bytes()
	if indent != "" {
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, out, "", indent); err != nil {
			return fmt.Errorf("indent json: %w", err)
		}
		out = pretty.Bytes()
	}
	_, err := w.Write(out)
	return err
}
