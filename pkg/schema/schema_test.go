package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ValidDefinition(t *testing.T) {
	t.Parallel()

	err := Validate(map[string]any{
		"id":   "f1",
		"name": "Flow",
		"nodes": []any{
			map[string]any{
				"name":   "n1",
				"tool":   "t1",
				"inputs": map[string]any{"x": "${flow.x}"},
			},
		},
		"inputs": map[string]any{
			"x": map[string]any{"type": "string"},
		},
		"outputs": map[string]any{
			"y": map[string]any{"type": "string", "reference": "${n1.output}"},
		},
		"tools": []any{
			map[string]any{"name": "t1"},
		},
	})

	assert.NoError(t, err)
}

func TestValidate_MinimalDefinition(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Validate(map[string]any{"name": "empty"}))
}

func TestValidate_Invalid(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		data map[string]any
	}{
		{
			name: "node without tool",
			data: map[string]any{
				"nodes": []any{map[string]any{"name": "n1"}},
			},
		},
		{
			name: "node name wrong type",
			data: map[string]any{
				"nodes": []any{map[string]any{"name": 5, "tool": "t"}},
			},
		},
		{
			name: "input definition without type",
			data: map[string]any{
				"inputs": map[string]any{"x": map[string]any{"description": "no type"}},
			},
		},
		{
			name: "skip condition without when",
			data: map[string]any{
				"nodes": []any{map[string]any{
					"name": "n1",
					"tool": "t",
					"skip": map[string]any{"is": true},
				}},
			},
		},
		{
			name: "tool without name",
			data: map[string]any{
				"tools": []any{map[string]any{"type": "python"}},
			},
		},
		{
			name: "variants entry without variants table",
			data: map[string]any{
				"node_variants": map[string]any{
					"n1": map[string]any{"default_variant_id": "v0"},
				},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := Validate(tc.data)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid flow definition")
		})
	}
}
