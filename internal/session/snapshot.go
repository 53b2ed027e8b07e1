// Package session holds the working table between commands in a single
// local snapshot slot and gates uploads through the quota collaborator.
package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/KaramelBytes/tabloom-cli/internal/table"
	"github.com/KaramelBytes/tabloom-cli/internal/utils"
)

// DefaultSlot is the snapshot file name used when none is configured.
const DefaultSlot = "etl_processed_data.json"

// ErrNoSnapshot indicates the slot is empty.
var ErrNoSnapshot = errors.New("no dataset loaded; run 'tabloom load <file|url>' first")

// Snapshot is the persisted working table.
type Snapshot struct {
	ID      string       `json:"id"`
	SavedAt time.Time    `json:"saved_at"`
	Source  string       `json:"source"`
	Steps   []string     `json:"steps,omitempty"`
	Table   *table.Table `json:"-"`
}

type snapshotFile struct {
	ID      string          `json:"id"`
	SavedAt time.Time       `json:"saved_at"`
	Source  string          `json:"source"`
	Steps   []string        `json:"steps,omitempty"`
	Columns []string        `json:"columns"`
	Rows    json.RawMessage `json:"rows"`
}

// MarshalJSON writes rows with keys in column order.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	t := s.Table
	if t == nil {
		t = &table.Table{}
	}
	var rows bytes.Buffer
	if err := t.EncodeJSON(&rows, ""); err != nil {
		return nil, err
	}
	cols := t.Columns
	if cols == nil {
		cols = []string{}
	}
	return json.Marshal(snapshotFile{
		ID: s.ID, SavedAt: s.SavedAt, Source: s.Source, Steps: s.Steps,
		Columns: cols, Rows: rows.Bytes(),
	})
}

func (s *Snapshot) UnmarshalJSON(b []byte) error {
	var f snapshotFile
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	var rows []map[string]table.Value
	if len(f.Rows) > 0 {
		if err := json.Unmarshal(f.Rows, &rows); err != nil {
			return fmt.Errorf("decode rows: %w", err)
		}
	}
	t := table.New(f.Columns, make([]table.Row, len(rows)))
	for i, r := range rows {
		t.Rows[i] = table.Row(r)
		if t.Rows[i] == nil {
			t.Rows[i] = table.Row{}
		}
	}
	*s = Snapshot{ID: f.ID, SavedAt: f.SavedAt, Source: f.Source, Steps: f.Steps, Table: t}
	return nil
}

// Store reads and writes the snapshot slot. The last write wins.
type Store struct {
	path string
}

// NewStore returns a store for the slot file at path.
func NewStore(path string) *Store { return &Store{path: path} }

// Path returns the slot file location.
func (s *Store) Path() string { return s.path }

// Load reads the slot. An empty slot returns ErrNoSnapshot.
func (s *Store) Load() (*Snapshot, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	return &snap, nil
}

// Save writes snap atomically.
func (s *Store) Save(snap *Snapshot) error {
	data, err := utils.PrettyJSON(snap)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(s.path, data)
}

// Clear empties the slot. Clearing an empty slot is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	return nil
}
