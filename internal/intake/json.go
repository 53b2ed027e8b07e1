package intake

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/KaramelBytes/tabloom-cli/internal/table"
)

type jsonParser struct{}

func (jsonParser) CanParse(filename string) bool { return hasExt(filename, ".json") }

func (jsonParser) Parse(_ string, r io.Reader) ([]table.Record, error) {
	return DecodeJSONArray(r)
}

// DecodeJSONArray decodes a top-level array of objects, keeping each
// object's key order. Nested objects and arrays are kept as raw JSON text.
func DecodeJSONArray(r io.Reader) ([]table.Record, error) {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty document")
		}
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, errors.New("expected a JSON array of objects")
	}
	var out []table.Record
	for i := 0; dec.More(); i++ {
		rec, err := decodeObject(dec)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, rec)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeObject(dec *json.Decoder) (table.Record, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("not an object")
	}
	var rec table.Record
	seen := map[string]int{}
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := kt.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected key %v", kt)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		var v table.Value
		if err := v.UnmarshalJSON(raw); err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		// a repeated key keeps its first position and its last value
		if at, dup := seen[key]; dup {
			rec[at].Value = v
			continue
		}
		seen[key] = len(rec)
		rec = append(rec, table.Field{Key: key, Value: v})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return rec, nil
}
