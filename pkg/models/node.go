package models

import "fmt"

// Node represents a single computation vertex in a flow, bound to a tool
// with named input assignments. Name is unique within a flow.
type Node struct {
	Name        string                     `json:"name"   validate:"required,min=1"`
	Tool        string                     `json:"tool"   validate:"required"`
	Inputs      map[string]InputAssignment `json:"inputs"`
	Comment     string                     `json:"comment,omitempty"`
	API         string                     `json:"api,omitempty"`
	Provider    string                     `json:"provider,omitempty"`
	Module      string                     `json:"module,omitempty"` // Provider module to import
	Connection  string                     `json:"connection,omitempty"`
	Aggregation bool                       `json:"aggregation,omitempty"`
	EnableCache bool                       `json:"enable_cache,omitempty"`
	UseVariants bool                       `json:"use_variants,omitempty"`
	Source      *ToolSource                `json:"source,omitempty"`
	Type        ToolType                   `json:"type,omitempty"`
	Skip        *SkipCondition             `json:"skip,omitempty"`
	Activate    *ActivateCondition         `json:"activate,omitempty"`
}

// DeserializeNode constructs a node from a generic tree. Declaring both
// skip and activate conditions is a construction conflict and aborts
// with ErrNodeConditionConflict naming the node.
func DeserializeNode(data map[string]any) (*Node, error) {
	node := &Node{
		Name:       stringField(data, "name"),
		Tool:       stringField(data, "tool"),
		Inputs:     map[string]InputAssignment{},
		Comment:    stringField(data, "comment"),
		API:        stringField(data, "api"),
		Provider:   stringField(data, "provider"),
		Module:     stringField(data, "module"),
		Connection: stringField(data, "connection"),
		// "reduce" is the legacy spelling of "aggregation".
		Aggregation: boolField(data, "aggregation") || boolField(data, "reduce"),
		EnableCache: boolField(data, "enable_cache"),
		UseVariants: boolField(data, "use_variants"),
	}

	for name, raw := range mapField(data, "inputs") {
		node.Inputs[name] = DeserializeInputAssignment(raw)
	}

	if source, ok := data["source"].(map[string]any); ok {
		toolSource, err := DeserializeToolSource(source)
		if err != nil {
			return nil, NewNodeError("Deserialize", node.Name, err)
		}

		node.Source = toolSource
	}

	if tag := stringField(data, "type"); tag != "" {
		toolType, err := ParseToolType(tag)
		if err != nil {
			return nil, NewNodeError("Deserialize", node.Name, err)
		}

		node.Type = toolType
	}

	if skip, ok := data["skip"].(map[string]any); ok {
		condition, err := DeserializeSkipCondition(skip)
		if err != nil {
			return nil, NewNodeError("Deserialize", node.Name, err)
		}

		node.Skip = condition
	}

	if activate, ok := data["activate"].(map[string]any); ok {
		condition, err := DeserializeActivateCondition(activate)
		if err != nil {
			return nil, NewNodeError("Deserialize", node.Name, err)
		}

		node.Activate = condition
	}

	if node.Skip != nil && node.Activate != nil {
		return nil, fmt.Errorf("node %q: %w", node.Name, ErrNodeConditionConflict)
	}

	return node, nil
}

// Serialize renders the node as a generic tree. Empty attributes are
// omitted, except inputs, which is always an explicit mapping. An
// aggregation node also emits the legacy "reduce" key for consumers
// still reading the old spelling.
func (n *Node) Serialize() map[string]any {
	data := map[string]any{
		"name": n.Name,
		"tool": n.Tool,
	}

	inputs := map[string]any{}
	for name, input := range n.Inputs {
		inputs[name] = input.Serialize()
	}

	data["inputs"] = inputs

	if n.Comment != "" {
		data["comment"] = n.Comment
	}

	if n.API != "" {
		data["api"] = n.API
	}

	if n.Provider != "" {
		data["provider"] = n.Provider
	}

	if n.Module != "" {
		data["module"] = n.Module
	}

	if n.Connection != "" {
		data["connection"] = n.Connection
	}

	if n.Aggregation {
		data["aggregation"] = true
		data["reduce"] = true
	}

	if n.EnableCache {
		data["enable_cache"] = true
	}

	if n.UseVariants {
		data["use_variants"] = true
	}

	if n.Source != nil {
		data["source"] = n.Source.Serialize()
	}

	if n.Type != "" {
		data["type"] = string(n.Type)
	}

	if n.Skip != nil {
		data["skip"] = n.Skip.Serialize()
	}

	if n.Activate != nil {
		data["activate"] = n.Activate.Serialize()
	}

	return data
}
