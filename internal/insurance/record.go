package insurance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Record is one loosely typed policy object from the upstream JSON. Providers
// disagree on field names, so values are looked up through alias lists.
type Record map[string]any

// Lookup returns the first alias whose value is present and non-empty. A
// value counts as empty when it is null, "", false or numerically zero.
func (r Record) Lookup(aliases ...string) (any, bool) {
	for _, k := range aliases {
		v, ok := r[k]
		if ok && present(v) {
			return v, true
		}
	}
	return nil, false
}

// String is Lookup rendered as text, or def when no alias is present.
func (r Record) String(def string, aliases ...string) string {
	v, ok := r.Lookup(aliases...)
	if !ok {
		return def
	}
	return stringify(v)
}

func present(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case bool:
		return x
	case json.Number:
		f, err := x.Float64()
		return err != nil || f != 0
	case float64:
		return x != 0
	}
	return true
}

func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

// Decode reads an upstream payload into records. The array may be the whole
// payload or sit under a "data" key; any other shape yields no records.
// Elements that are not objects become empty records so a single bad element
// never drops the rest of the batch.
func Decode(payload []byte) ([]Record, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var top any
	if err := dec.Decode(&top); err != nil {
		return nil, fmt.Errorf("decode insurance payload: %w", err)
	}

	var items []any
	switch v := top.(type) {
	case map[string]any:
		if data, ok := v["data"]; ok && present(data) {
			items, _ = data.([]any)
		}
	case []any:
		items = v
	}

	records := make([]Record, 0, len(items))
	for _, it := range items {
		m, _ := it.(map[string]any)
		records = append(records, Record(m))
	}
	return records, nil
}
