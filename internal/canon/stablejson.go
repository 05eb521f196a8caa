package canon

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// StableJSON serializes an arbitrary record (struct, map, or anything
// encoding/json accepts) to a byte-stable JSON form: object keys as
// encoding/json names them (json tags for structs, map keys verbatim, with
// no case conversion), sorted alphabetically at every level, and null
// fields omitted. Used for the run hash
// chain and anywhere two equal logical records must produce
// identical bytes.
func StableJSON(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("canon: marshal: %w", err)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return "", fmt.Errorf("canon: round-trip unmarshal: %w", err)
	}
	var b strings.Builder
	writeStable(&b, generic)
	return b.String(), nil
}

func writeStable(b *strings.Builder, v any) {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k, vv := range val {
			if vv == nil {
				continue // null omission
			}
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			keyBytes, _ := json.Marshal(k)
			b.Write(keyBytes)
			b.WriteByte(':')
			writeStable(b, val[k])
		}
		b.WriteByte('}')
	case []any:
		b.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				b.WriteByte(',')
			}
			writeStable(b, item)
		}
		b.WriteByte(']')
	default:
		out, _ := json.Marshal(val)
		b.Write(out)
	}
}
