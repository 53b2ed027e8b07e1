// Package export serializes a table as CSV, JSON or an XLSX workbook.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/tabloom-cli/internal/apperr"
	"github.com/KaramelBytes/tabloom-cli/internal/table"
	"github.com/KaramelBytes/tabloom-cli/internal/utils"
)

// Format is an export container.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// SheetName is the single worksheet written to XLSX exports.
const SheetName = "Sheet1"

var mimeTypes = map[Format]string{
	FormatCSV:  "text/csv",
	FormatJSON: "application/json",
	FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// Formats lists the supported formats.
func Formats() []Format { return []Format{FormatCSV, FormatJSON, FormatXLSX} }

// ParseFormat resolves a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := mimeTypes[f]; !ok {
		return "", apperr.Validation("format", fmt.Sprintf("unsupported export format %q (use csv, json or xlsx)", s))
	}
	return f, nil
}

// MIMEType returns the content type of f.
func MIMEType(f Format) string { return mimeTypes[f] }

// Filename returns "<base>_export.<ext>". An empty base becomes "data".
func Filename(base string, f Format) string {
	base = strings.TrimSuffix(filepath.Base(base), filepath.Ext(base))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "data"
	}
	return base + "_export." + string(f)
}

// Export writes t to w in format f. Rows missing a column serialize as empty.
func Export(w io.Writer, t *table.Table, f Format) error {
	switch f {
	case FormatCSV:
		return writeCSV(w, t)
	case FormatJSON:
		if err := t.EncodeJSON(w, "  "); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	case FormatXLSX:
		return writeXLSX(w, t)
	}
	return apperr.Validation("format", fmt.Sprintf("unsupported export format %q", f))
}

// WriteFile renders t and writes it atomically to path.
func WriteFile(path string, t *table.Table, f Format) error {
	var buf bytes.Buffer
	if err := Export(&buf, t, f); err != nil {
		return err
	}
	if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}

func writeCSV(w io.Writer, t *table.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	rec := make([]string, len(t.Columns))
	for _, r := range t.Rows {
		for i, c := range t.Columns {
			rec[i] = r.Get(c).String()
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeXLSX(w io.Writer, t *table.Table) error {
	f := excelize.NewFile()
	defer f.Close()
	if name := f.GetSheetName(0); name != SheetName {
		if err := f.SetSheetName(name, SheetName); err != nil {
			return fmt.Errorf("name sheet: %w", err)
		}
	}
	for i, c := range t.Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(SheetName, cell, c); err != nil {
			return fmt.Errorf("write header %s: %w", cell, err)
		}
	}
	for ri, r := range t.Rows {
		for ci, c := range t.Columns {
			v := r.Get(c)
			if v.IsBlank() {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(ci+1, ri+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(SheetName, cell, cellValue(v)); err != nil {
				return fmt.Errorf("write %s: %w", cell, err)
			}
		}
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func cellValue(v table.Value) any {
	switch v.Kind() {
	case table.KindNumber:
		if f, ok := v.Float(); ok && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return f
		}
	case table.KindBool:
		return v.Truthy()
	}
	return v.String()
}
