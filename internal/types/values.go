package types

import "encoding/json"

// NormalizeValues turns json.Number values decoded with UseNumber into
// int64 or float64, so integers stay integers and drivers bind them with a
// numeric type.
func NormalizeValues(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		n, ok := v.(json.Number)
		if !ok {
			out[k] = v
			continue
		}
		if i, err := n.Int64(); err == nil {
			out[k] = i
		} else if f, err := n.Float64(); err == nil {
			out[k] = f
		} else {
			out[k] = n.String()
		}
	}
	return out
}
