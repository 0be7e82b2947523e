package service

// Helpers for digging through the opaque provider payload. The snapshot is
// stored and passed around as map[string]any; nothing here assumes more shape
// than the one field being read.

func getMap(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	if v, ok := m[key].(map[string]any); ok {
		return v
	}
	return nil
}

func getArray(m map[string]any, key string) []any {
	if m == nil {
		return nil
	}
	if v, ok := m[key].([]any); ok {
		return v
	}
	return nil
}

func getFirstInArray(m map[string]any, key string) map[string]any {
	arr := getArray(m, key)
	if len(arr) > 0 {
		if v, ok := arr[0].(map[string]any); ok {
			return v
		}
	}
	return nil
}

func getString(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// lookupFloat reports whether the field was present and numeric, so callers
// can render an explicit placeholder instead of a zero.
func lookupFloat(m map[string]any, key string) (float64, bool) {
	if m == nil {
		return 0, false
	}
	switch v := m[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func getFloat(m map[string]any, key string) float64 {
	v, _ := lookupFloat(m, key)
	return v
}
