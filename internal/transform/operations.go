package transform

import (
	"fmt"
	"sort"
	"strings"

	"github.com/KaramelBytes/tabloom-cli/internal/apperr"
)

// Operation names a column rewrite.
type Operation string

const (
	OpUppercase         Operation = "uppercase"
	OpLowercase         Operation = "lowercase"
	OpTitleCase         Operation = "titleCase"
	OpTrim              Operation = "trim"
	OpRemoveEmptySpaces Operation = "removeEmptySpaces"
	OpReplace           Operation = "replace"
	OpRemoveSpecial     Operation = "removeSpecialChars"
	OpTruncateText      Operation = "truncateText"
	OpExtractNumbers    Operation = "extractNumbers"
	OpExtractEmails     Operation = "extractEmails"
	OpFormatDate        Operation = "formatDate"
	OpFormatPhone       Operation = "formatPhoneNumber"
	OpRoundNumber       Operation = "roundNumber"
	OpFillNull          Operation = "fillNull"
)

var operations = map[Operation]string{
	OpUppercase:         "Uppercase",
	OpLowercase:         "Lowercase",
	OpTitleCase:         "Title Case",
	OpTrim:              "Trim Whitespace",
	OpRemoveEmptySpaces: "Remove Extra Spaces",
	OpReplace:           "Replace Text",
	OpRemoveSpecial:     "Remove Special Characters",
	OpTruncateText:      "Truncate Text",
	OpExtractNumbers:    "Extract Numbers",
	OpExtractEmails:     "Extract Emails",
	OpFormatDate:        "Format Date",
	OpFormatPhone:       "Format Phone Number",
	OpRoundNumber:       "Round Number",
	OpFillNull:          "Fill Null Values",
}

// Label returns the human-readable name of the operation.
func (o Operation) Label() string { return operations[o] }

// Operations lists the supported operations in name order.
func Operations() []Operation {
	out := make([]Operation, 0, len(operations))
	for op := range operations {
		out = append(out, op)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseOperation resolves a name case-insensitively.
func ParseOperation(name string) (Operation, error) {
	n := strings.TrimSpace(name)
	for op := range operations {
		if strings.EqualFold(string(op), n) {
			return op, nil
		}
	}
	return "", apperr.Validation("operation", fmt.Sprintf("unknown operation %q", name))
}

// Rule is one column rewrite with an optional argument.
type Rule struct {
	Column    string    `yaml:"column" json:"column"`
	Operation Operation `yaml:"operation" json:"operation"`
	Argument  string    `yaml:"argument,omitempty" json:"argument,omitempty"`
}

// Validate checks that the rule names a column and a known operation. The
// operation name is normalized in place.
func (r *Rule) Validate() error {
	if strings.TrimSpace(r.Column) == "" {
		return apperr.Validation("column", "missing column name")
	}
	op, err := ParseOperation(string(r.Operation))
	if err != nil {
		return err
	}
	r.Operation = op
	return nil
}

// ParseRule parses "column:operation[:argument]". The argument may contain colons.
func ParseRule(s string) (Rule, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) < 2 {
		return Rule{}, apperr.Validation("rule", fmt.Sprintf("expected column:operation[:argument], got %q", s))
	}
	r := Rule{Column: parts[0], Operation: Operation(parts[1])}
	if len(parts) == 3 {
		r.Argument = parts[2]
	}
	if err := r.Validate(); err != nil {
		return Rule{}, err
	}
	return r, nil
}

// ValidateRules validates every rule, reporting the first failing index.
func ValidateRules(rules []Rule) error {
	for i := range rules {
		if err := rules[i].Validate(); err != nil {
			return fmt.Errorf("rule %d: %w", i+1, err)
		}
	}
	return nil
}
