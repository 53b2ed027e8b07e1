// Package dedupe drops exact duplicate rows.
package dedupe

import "github.com/KaramelBytes/tabloom-cli/internal/table"

// Dedupe keeps the first occurrence of each distinct row fingerprint in
// original order and reports how many rows were removed.
func Dedupe(t *table.Table) (*table.Table, int) {
	seen := make(map[string]struct{}, len(t.Rows))
	out := &table.Table{Columns: append([]string(nil), t.Columns...)}
	for _, r := range t.Rows {
		fp := t.Fingerprint(r)
		if _, dup := seen[fp]; dup {
			continue
		}
		seen[fp] = struct{}{}
		out.Rows = append(out.Rows, r.Clone())
	}
	return out, len(t.Rows) - len(out.Rows)
}

// Distinct counts distinct row fingerprints.
func Distinct(t *table.Table) int {
	seen := make(map[string]struct{}, len(t.Rows))
	for _, r := range t.Rows {
		seen[t.Fingerprint(r)] = struct{}{}
	}
	return len(seen)
}
