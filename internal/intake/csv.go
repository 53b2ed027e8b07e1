package intake

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/tabloom-cli/internal/table"
)

type csvParser struct{}

func (csvParser) CanParse(filename string) bool { return hasExt(filename, ".csv", ".tsv") }

// Parse uses the header row as keys. Short rows leave trailing keys absent,
// extra fields are dropped and rows with only blank values are skipped.
func (csvParser) Parse(filename string, r io.Reader) ([]table.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	if hasExt(filename, ".tsv") {
		cr.Comma = '\t'
	}

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = trimBOM(header[0])
	}

	var out []table.Record
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		n := len(row)
		if n > len(header) {
			n = len(header)
		}
		rec := make(table.Record, 0, n)
		for i := 0; i < n; i++ {
			rec = append(rec, table.Field{Key: header[i], Value: table.StringValue(row[i])})
		}
		if blankRecord(rec) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func trimBOM(s string) string { return strings.TrimPrefix(s, "\ufeff") }
