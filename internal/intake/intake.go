// Package intake turns uploaded files or fetched JSON into table records.
package intake

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/tabloom-cli/internal/apperr"
	"github.com/KaramelBytes/tabloom-cli/internal/table"
)

// Parser decodes one file format into ordered records.
type Parser interface {
	CanParse(filename string) bool
	Parse(filename string, r io.Reader) ([]table.Record, error)
}

var registry []Parser

// Register adds a parser implementation to the registry.
func Register(p Parser) {
	registry = append(registry, p)
}

func init() {
	Register(csvParser{})
	Register(xlsxParser{})
	Register(jsonParser{})
}

// ErrUnsupported indicates a format no registered parser accepts.
var ErrUnsupported = errors.New("unsupported file format")

// Supported reports whether a registered parser accepts filename.
func Supported(filename string) bool {
	return lookup(filename) != nil
}

func lookup(filename string) Parser {
	for _, p := range registry {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// ParseFile reads path and parses it with the parser matching its extension.
func ParseFile(path string) (*table.Table, error) {
	p := lookup(path)
	if p == nil {
		return nil, fmt.Errorf("%s: %w", filepath.Ext(path), ErrUnsupported)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	defer f.Close()
	return parseWith(p, filepath.Base(path), f)
}

// ParseReader parses r as the format implied by filename.
func ParseReader(filename string, r io.Reader) (*table.Table, error) {
	p := lookup(filename)
	if p == nil {
		return nil, fmt.Errorf("%s: %w", filepath.Ext(filename), ErrUnsupported)
	}
	return parseWith(p, filename, r)
}

func parseWith(p Parser, name string, r io.Reader) (*table.Table, error) {
	recs, err := p.Parse(name, r)
	if err != nil {
		if apperr.IsParse(err) {
			return nil, err
		}
		return nil, apperr.Parse(name, err)
	}
	if len(recs) == 0 {
		return nil, apperr.Parsef(name, "no rows")
	}
	return table.Load(recs), nil
}

func hasExt(filename string, exts ...string) bool {
	name := strings.ToLower(filename)
	for _, e := range exts {
		if strings.HasSuffix(name, e) {
			return true
		}
	}
	return false
}

// blankRecord reports whether every field is null or empty.
func blankRecord(rec table.Record) bool {
	for _, f := range rec {
		if !f.Value.IsBlank() {
			return false
		}
	}
	return true
}
