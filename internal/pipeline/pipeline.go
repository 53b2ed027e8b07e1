// Package pipeline replays an ordered list of serializable step descriptors
// against a table.
package pipeline

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/tabloom-cli/internal/apperr"
	"github.com/KaramelBytes/tabloom-cli/internal/dedupe"
	"github.com/KaramelBytes/tabloom-cli/internal/formula"
	"github.com/KaramelBytes/tabloom-cli/internal/table"
	"github.com/KaramelBytes/tabloom-cli/internal/transform"
)

// Kind names a step type.
type Kind string

const (
	KindTransform    Kind = "transform"
	KindAddColumn    Kind = "add_column"
	KindRemoveColumn Kind = "remove_column"
	KindFillNull     Kind = "fill_null"
	KindDedupe       Kind = "dedupe"
)

// Step is one pipeline stage. Only the fields of its Kind are used.
type Step struct {
	Kind    Kind             `yaml:"kind" json:"kind"`
	Rules   []transform.Rule `yaml:"rules,omitempty" json:"rules,omitempty"`
	Name    string           `yaml:"name,omitempty" json:"name,omitempty"`
	Formula string           `yaml:"formula,omitempty" json:"formula,omitempty"`
	Values  string           `yaml:"values,omitempty" json:"values,omitempty"`
	Column  string           `yaml:"column,omitempty" json:"column,omitempty"`
	Value   string           `yaml:"value,omitempty" json:"value,omitempty"`
}

// Pipeline is a named ordered list of steps.
type Pipeline struct {
	Name  string `yaml:"name,omitempty" json:"name,omitempty"`
	Steps []Step `yaml:"steps" json:"steps"`
}

// Load reads a YAML pipeline file and validates it.
func Load(path string) (*Pipeline, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pipeline: %w", err)
	}
	return Parse(b)
}

// Parse decodes and validates a YAML pipeline.
func Parse(b []byte) (*Pipeline, error) {
	var p Pipeline
	if err := yaml.Unmarshal(b, &p); err != nil {
		return nil, apperr.Parse("pipeline", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Marshal encodes the pipeline as YAML.
func (p *Pipeline) Marshal() ([]byte, error) {
	return yaml.Marshal(p)
}

// Validate checks every step. Rule operation names are normalized in place.
func (p *Pipeline) Validate() error {
	if len(p.Steps) == 0 {
		return apperr.Validation("steps", "pipeline has no steps")
	}
	for i := range p.Steps {
		if err := p.Steps[i].Validate(); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, p.Steps[i].Kind, err)
		}
	}
	return nil
}

// Validate checks the fields required by the step kind.
func (s *Step) Validate() error {
	s.Kind = Kind(strings.ToLower(strings.TrimSpace(string(s.Kind))))
	switch s.Kind {
	case KindTransform:
		if len(s.Rules) == 0 {
			return apperr.Validation("rules", "transform step needs at least one rule")
		}
		return transform.ValidateRules(s.Rules)
	case KindAddColumn:
		if strings.TrimSpace(s.Name) == "" || (strings.TrimSpace(s.Formula) == "" && s.Values == "") {
			return apperr.Validation("column", "missing column name or source")
		}
		if f := strings.TrimSpace(s.Formula); f != "" {
			if _, err := formula.Compile(f); err != nil {
				return apperr.Parse("formula", err)
			}
		}
	case KindRemoveColumn, KindFillNull:
		if strings.TrimSpace(s.Column) == "" {
			return apperr.Validation("column", "missing column name")
		}
	case KindDedupe:
	default:
		return apperr.Validation("kind", fmt.Sprintf("unknown step kind %q", s.Kind))
	}
	return nil
}

// Label is a short human description of the step.
func (s Step) Label() string {
	switch s.Kind {
	case KindTransform:
		parts := make([]string, len(s.Rules))
		for i, r := range s.Rules {
			parts[i] = r.Column + ":" + string(r.Operation)
		}
		return "transform " + strings.Join(parts, ",")
	case KindAddColumn:
		return "add_column " + s.Name
	case KindRemoveColumn, KindFillNull:
		return string(s.Kind) + " " + s.Column
	}
	return string(s.Kind)
}

// StepResult describes the effect of one applied step.
type StepResult struct {
	Index   int    `json:"index"`
	Label   string `json:"label"`
	Rows    int    `json:"rows"`
	Columns int    `json:"columns"`
	Removed int    `json:"removed,omitempty"`
}

// Run is the outcome of replaying a pipeline.
type Run struct {
	ID      string
	Table   *table.Table
	Results []StepResult
}

// ErrStep wraps the failure of one step.
type ErrStep struct {
	Index int
	Label string
	Err   error
}

func (e *ErrStep) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index+1, e.Label, e.Err)
}

func (e *ErrStep) Unwrap() error { return e.Err }

// Execute replays steps on a copy of t. It stops at the first failing step;
// t is never modified.
func Execute(t *table.Table, steps []Step) (*Run, error) {
	run := &Run{ID: uuid.NewString()}
	cur := t
	for i, s := range steps {
		next, removed, err := Apply(cur, s)
		if err != nil {
			return run, &ErrStep{Index: i, Label: s.Label(), Err: err}
		}
		cur = next
		run.Results = append(run.Results, StepResult{
			Index: i + 1, Label: s.Label(), Rows: cur.Len(), Columns: len(cur.Columns), Removed: removed,
		})
	}
	if cur == t {
		cur = t.Clone()
	}
	run.Table = cur
	return run, nil
}

// Apply runs a single step. removed is the number of rows dropped by dedupe.
func Apply(t *table.Table, s Step) (*table.Table, int, error) {
	if err := s.Validate(); err != nil {
		return nil, 0, err
	}
	switch s.Kind {
	case KindTransform:
		return transform.Apply(t, s.Rules), 0, nil
	case KindAddColumn:
		out, err := formula.AddColumn(t, s.Name, s.Formula, s.Values)
		return out, 0, err
	case KindRemoveColumn:
		return transform.RemoveColumn(t, s.Column), 0, nil
	case KindFillNull:
		return transform.FillNulls(t, s.Column, s.Value), 0, nil
	case KindDedupe:
		out, removed := dedupe.Dedupe(t)
		return out, removed, nil
	}
	return nil, 0, errors.New("unreachable step kind")
}
