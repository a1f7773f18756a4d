// Package schema validates raw flow definition trees against the flow
// JSON schema before they reach deserialization.
package schema

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

var conditionSchema = map[string]any{
	"type":     "object",
	"required": []any{"when"},
	"properties": map[string]any{
		"when":   map[string]any{},
		"is":     map[string]any{},
		"return": map[string]any{},
	},
}

var nodeSchema = map[string]any{
	"type":     "object",
	"required": []any{"name", "tool"},
	"properties": map[string]any{
		"name":         map[string]any{"type": "string", "minLength": 1},
		"tool":         map[string]any{"type": "string", "minLength": 1},
		"inputs":       map[string]any{"type": "object"},
		"comment":      map[string]any{"type": "string"},
		"api":          map[string]any{"type": "string"},
		"provider":     map[string]any{"type": "string"},
		"module":       map[string]any{"type": "string"},
		"connection":   map[string]any{"type": "string"},
		"aggregation":  map[string]any{"type": "boolean"},
		"reduce":       map[string]any{"type": "boolean"},
		"enable_cache": map[string]any{"type": "boolean"},
		"use_variants": map[string]any{"type": "boolean"},
		"type":         map[string]any{"type": "string"},
		"source": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"type": map[string]any{"type": "string"},
				"tool": map[string]any{"type": "string"},
				"path": map[string]any{"type": "string"},
			},
		},
		"skip":     conditionSchema,
		"activate": conditionSchema,
	},
}

// flowSchema is the shape of a serialized flow definition tree.
var flowSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"id":   map[string]any{"type": "string"},
		"name": map[string]any{"type": "string"},
		"nodes": map[string]any{
			"type":  "array",
			"items": nodeSchema,
		},
		"inputs": map[string]any{
			"type": "object",
			"additionalProperties": map[string]any{
				"type":     "object",
				"required": []any{"type"},
				"properties": map[string]any{
					"type":            map[string]any{"type": "string"},
					"default":         map[string]any{},
					"description":     map[string]any{"type": "string"},
					"enum":            map[string]any{"type": "array"},
					"is_chat_input":   map[string]any{"type": "boolean"},
					"is_chat_history": map[string]any{"type": "boolean"},
				},
			},
		},
		"outputs": map[string]any{
			"type": "object",
			"additionalProperties": map[string]any{
				"type":     "object",
				"required": []any{"type"},
				"properties": map[string]any{
					"type":            map[string]any{"type": "string"},
					"reference":       map[string]any{},
					"description":     map[string]any{"type": "string"},
					"evaluation_only": map[string]any{"type": "boolean"},
					"is_chat_output":  map[string]any{"type": "boolean"},
				},
			},
		},
		"tools": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"name"},
			},
		},
		"node_variants": map[string]any{
			"type": "object",
			"additionalProperties": map[string]any{
				"type":     "object",
				"required": []any{"variants"},
				"properties": map[string]any{
					"default_variant_id": map[string]any{"type": "string"},
					"variants": map[string]any{
						"type": "object",
						"additionalProperties": map[string]any{
							"type":     "object",
							"required": []any{"node"},
						},
					},
				},
			},
		},
	},
}

// Validate checks a raw flow definition tree against the flow schema.
func Validate(data map[string]any) error {
	schemaLoader := gojsonschema.NewGoLoader(flowSchema)
	dataLoader := gojsonschema.NewGoLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return fmt.Errorf("failed to validate flow definition: %w", err)
	}

	if !result.Valid() {
		descriptions := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			descriptions = append(descriptions, desc.String())
		}

		return fmt.Errorf("invalid flow definition: %s", strings.Join(descriptions, "; "))
	}

	return nil
}
