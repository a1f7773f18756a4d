package models

// Accessors for the generic key-value trees produced by the serializers.
// Missing keys and mismatched types read as zero values; type errors that
// matter are caught by the schema validation in front of deserialization.

func stringField(data map[string]any, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}

	return ""
}

func boolField(data map[string]any, key string) bool {
	if v, ok := data[key].(bool); ok {
		return v
	}

	return false
}

func mapField(data map[string]any, key string) map[string]any {
	if v, ok := data[key].(map[string]any); ok {
		return v
	}

	return nil
}

func sliceField(data map[string]any, key string) []any {
	if v, ok := data[key].([]any); ok {
		return v
	}

	return nil
}

func stringSliceField(data map[string]any, key string) []string {
	raw := sliceField(data, key)
	if len(raw) == 0 {
		return nil
	}

	values := make([]string, 0, len(raw))

	for _, item := range raw {
		if s, ok := item.(string); ok {
			values = append(values, s)
		}
	}

	return values
}
