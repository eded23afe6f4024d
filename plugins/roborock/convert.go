package roborock

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// normalizeMap accepts a status object or the one-element list get_status returns.
func normalizeMap(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case map[string]any:
		return v, true
	case []any:
		if len(v) > 0 {
			if item, ok := v[0].(map[string]any); ok {
				return item, true
			}
		}
	}
	return nil, false
}

func stringFrom(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

func floatFrom(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case json.Number:
		f, _ := t.Float64()
		return f
	case string:
		f, _ := strconv.ParseFloat(t, 64)
		return f
	default:
		return 0
	}
}

func intFrom(v any) int {
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	default:
		return int(floatFrom(v))
	}
}

func numericOrString(value string) any {
	if value == "" {
		return value
	}
	if i, err := strconv.Atoi(value); err == nil {
		return i
	}
	return value
}
