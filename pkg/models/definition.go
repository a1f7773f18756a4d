package models

import "fmt"

// FlowInputDefinition declares a graph-level input.
type FlowInputDefinition struct {
	Type          ValueType `json:"type"`
	Default       any       `json:"default,omitempty"`
	Description   string    `json:"description,omitempty"`
	Enum          []string  `json:"enum,omitempty"`
	IsChatInput   bool      `json:"is_chat_input,omitempty"`
	IsChatHistory bool      `json:"is_chat_history,omitempty"`
}

// DeserializeFlowInputDefinition constructs a flow input definition from
// a generic tree.
func DeserializeFlowInputDefinition(data map[string]any) (*FlowInputDefinition, error) {
	valueType, err := ParseValueType(stringField(data, "type"))
	if err != nil {
		return nil, err
	}

	return &FlowInputDefinition{
		Type:          valueType,
		Default:       data["default"],
		Description:   stringField(data, "description"),
		Enum:          stringSliceField(data, "enum"),
		IsChatInput:   boolField(data, "is_chat_input"),
		IsChatHistory: boolField(data, "is_chat_history"),
	}, nil
}

// Serialize renders the flow input definition as a generic tree.
func (d *FlowInputDefinition) Serialize() map[string]any {
	data := map[string]any{"type": string(d.Type)}

	if d.Default != nil {
		data["default"] = fmt.Sprintf("%v", d.Default)
	}

	if d.Description != "" {
		data["description"] = d.Description
	}

	if len(d.Enum) > 0 {
		data["enum"] = d.Enum
	}

	if d.IsChatInput {
		data["is_chat_input"] = true
	}

	if d.IsChatHistory {
		data["is_chat_history"] = true
	}

	return data
}

// FlowOutputDefinition declares a graph-level output, normally backed by
// a node reference.
type FlowOutputDefinition struct {
	Type           ValueType       `json:"type"`
	Reference      InputAssignment `json:"reference"`
	Description    string          `json:"description,omitempty"`
	EvaluationOnly bool            `json:"evaluation_only,omitempty"`
	IsChatOutput   bool            `json:"is_chat_output,omitempty"`
}

// DeserializeFlowOutputDefinition constructs a flow output definition
// from a generic tree.
func DeserializeFlowOutputDefinition(data map[string]any) (*FlowOutputDefinition, error) {
	valueType, err := ParseValueType(stringField(data, "type"))
	if err != nil {
		return nil, err
	}

	return &FlowOutputDefinition{
		Type:           valueType,
		Reference:      DeserializeInputAssignment(data["reference"]),
		Description:    stringField(data, "description"),
		EvaluationOnly: boolField(data, "evaluation_only"),
		IsChatOutput:   boolField(data, "is_chat_output"),
	}, nil
}

// Serialize renders the flow output definition as a generic tree.
func (d *FlowOutputDefinition) Serialize() map[string]any {
	data := map[string]any{"type": string(d.Type)}

	if d.Reference.Value != nil {
		data["reference"] = d.Reference.Serialize()
	}

	if d.Description != "" {
		data["description"] = d.Description
	}

	if d.EvaluationOnly {
		data["evaluation_only"] = true
	}

	if d.IsChatOutput {
		data["is_chat_output"] = true
	}

	return data
}

// NodeVariant is one alternative definition for a variant-bearing node.
type NodeVariant struct {
	Node        *Node  `json:"node"`
	Description string `json:"description,omitempty"`
}

// DeserializeNodeVariant constructs a node variant from a generic tree.
func DeserializeNodeVariant(data map[string]any) (*NodeVariant, error) {
	nodeData, ok := data["node"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("node variant missing 'node'")
	}

	node, err := DeserializeNode(nodeData)
	if err != nil {
		return nil, err
	}

	return &NodeVariant{
		Node:        node,
		Description: stringField(data, "description"),
	}, nil
}

// NodeVariants holds the variant table of a single node, keyed by
// variant id, with one variant marked as default.
type NodeVariants struct {
	DefaultVariantID string                  `json:"default_variant_id"`
	Variants         map[string]*NodeVariant `json:"variants"`
}

// DeserializeNodeVariants constructs a node variant table from a generic tree.
func DeserializeNodeVariants(data map[string]any) (*NodeVariants, error) {
	variants := map[string]*NodeVariant{}

	for variantID, raw := range mapField(data, "variants") {
		variantData, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("variant %q is not a mapping", variantID)
		}

		variant, err := DeserializeNodeVariant(variantData)
		if err != nil {
			return nil, fmt.Errorf("variant %q: %w", variantID, err)
		}

		variants[variantID] = variant
	}

	return &NodeVariants{
		DefaultVariantID: stringField(data, "default_variant_id"),
		Variants:         variants,
	}, nil
}
