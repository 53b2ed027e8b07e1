package intake

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/tabloom-cli/internal/table"
)

type xlsxParser struct{}

func (xlsxParser) CanParse(filename string) bool { return hasExt(filename, ".xlsx") }

// Parse reads the first sheet. The first row gives keys; empty cells are
// omitted from their record. Numeric and boolean cells keep their type;
// dates stay as serial numbers.
func (xlsxParser) Parse(_ string, r io.Reader) ([]table.Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	var out []table.Record
	for ri, row := range rows[1:] {
		var rec table.Record
		for i, cell := range row {
			if i >= len(header) || header[i] == "" || cell == "" {
				continue
			}
			rec = append(rec, table.Field{Key: header[i], Value: cellValue(f, sheets[0], i+1, ri+2, cell)})
		}
		if len(rec) == 0 {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// cellValue types a raw cell by its stored type. Cells without a type
// attribute are numbers when they parse as one.
func cellValue(f *excelize.File, sheet string, col, row int, raw string) table.Value {
	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return table.StringValue(raw)
	}
	typ, err := f.GetCellType(sheet, ref)
	if err != nil {
		return table.StringValue(raw)
	}
	switch typ {
	case excelize.CellTypeBool:
		b, err := strconv.ParseBool(raw)
		if err == nil {
			return table.BoolValue(b)
		}
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return table.NumberValue(n)
		}
	}
	return table.StringValue(raw)
}
