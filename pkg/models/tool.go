package models

import (
	"fmt"
	"strings"
)

// ToolType represents the category of tool a node binds to.
type ToolType string

const (
	ToolTypeLLM    ToolType = "llm"
	ToolTypePython ToolType = "python"
	ToolTypePrompt ToolType = "prompt"
)

// ParseToolType parses a tool type tag, rejecting unknown tags.
func ParseToolType(tag string) (ToolType, error) {
	switch ToolType(tag) {
	case ToolTypeLLM, ToolTypePython, ToolTypePrompt:
		return ToolType(tag), nil
	}

	return "", fmt.Errorf("%w: tool type %q", ErrUnknownTypeTag, tag)
}

// ValueType represents a plain value type a tool input can accept.
type ValueType string

const (
	ValueTypeInt    ValueType = "int"
	ValueTypeDouble ValueType = "double"
	ValueTypeBool   ValueType = "bool"
	ValueTypeString ValueType = "string"
	ValueTypeSecret ValueType = "secret"
	ValueTypeList   ValueType = "list"
	ValueTypeObject ValueType = "object"
)

var valueTypes = map[string]ValueType{
	"int":    ValueTypeInt,
	"double": ValueTypeDouble,
	"bool":   ValueTypeBool,
	"string": ValueTypeString,
	"secret": ValueTypeSecret,
	"list":   ValueTypeList,
	"object": ValueTypeObject,
}

// ParseValueType parses a value type tag, rejecting unknown tags.
func ParseValueType(tag string) (ValueType, error) {
	if vt, ok := valueTypes[strings.ToLower(tag)]; ok {
		return vt, nil
	}

	return "", fmt.Errorf("%w: value type %q", ErrUnknownTypeTag, tag)
}

// IsValueTypeTag reports whether a tool input type tag names a plain
// value type. Tags outside this set are domain-specific types, which is
// what marks an input as a possible connection slot.
func IsValueTypeTag(tag string) bool {
	_, ok := valueTypes[strings.ToLower(tag)]

	return ok
}

// ToolSourceType represents where a node's tool implementation comes from.
type ToolSourceType string

const (
	ToolSourceTypeCode              ToolSourceType = "code"
	ToolSourceTypePackage           ToolSourceType = "package"
	ToolSourceTypePackageWithPrompt ToolSourceType = "package_with_prompt"
)

// ParseToolSourceType parses a tool source type tag, rejecting unknown tags.
func ParseToolSourceType(tag string) (ToolSourceType, error) {
	switch ToolSourceType(tag) {
	case ToolSourceTypeCode, ToolSourceTypePackage, ToolSourceTypePackageWithPrompt:
		return ToolSourceType(tag), nil
	}

	return "", fmt.Errorf("%w: tool source type %q", ErrUnknownTypeTag, tag)
}

// ToolSource describes the origin of a node's tool implementation.
type ToolSource struct {
	Type ToolSourceType `json:"type"           yaml:"type"`
	Tool string         `json:"tool,omitempty" yaml:"tool,omitempty"`
	Path string         `json:"path,omitempty" yaml:"path,omitempty"`
}

// DeserializeToolSource constructs a tool source from a generic tree.
func DeserializeToolSource(data map[string]any) (*ToolSource, error) {
	sourceType := ToolSourceTypeCode

	if tag := stringField(data, "type"); tag != "" {
		parsed, err := ParseToolSourceType(tag)
		if err != nil {
			return nil, err
		}

		sourceType = parsed
	}

	return &ToolSource{
		Type: sourceType,
		Tool: stringField(data, "tool"),
		Path: stringField(data, "path"),
	}, nil
}

// Serialize renders the tool source as a generic tree, omitting empty fields.
func (s *ToolSource) Serialize() map[string]any {
	data := map[string]any{"type": string(s.Type)}
	if s.Tool != "" {
		data["tool"] = s.Tool
	}

	if s.Path != "" {
		data["path"] = s.Path
	}

	return data
}

// ToolInput declares the accepted type tags of a single tool input.
type ToolInput struct {
	Type        []string `json:"type"                  yaml:"type"`
	Default     any      `json:"default,omitempty"     yaml:"default,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
}

// IsConnectionSlot reports whether the input accepts some domain-specific
// non-value type and is therefore a possible connection slot.
func (i ToolInput) IsConnectionSlot() bool {
	for _, tag := range i.Type {
		if !IsValueTypeTag(tag) {
			return true
		}
	}

	return false
}

// Tool represents a declared computation unit interface a node binds to.
type Tool struct {
	Name        string               `json:"name"                  yaml:"name"                  validate:"required"`
	Type        ToolType             `json:"type,omitempty"        yaml:"type,omitempty"`
	Inputs      map[string]ToolInput `json:"inputs,omitempty"      yaml:"inputs,omitempty"`
	Module      string               `json:"module,omitempty"      yaml:"module,omitempty"`
	Description string               `json:"description,omitempty" yaml:"description,omitempty"`
}

// DeserializeTool constructs a tool declaration from a generic tree.
func DeserializeTool(data map[string]any) (*Tool, error) {
	tool := &Tool{
		Name:        stringField(data, "name"),
		Inputs:      map[string]ToolInput{},
		Module:      stringField(data, "module"),
		Description: stringField(data, "description"),
	}

	if tag := stringField(data, "type"); tag != "" {
		toolType, err := ParseToolType(tag)
		if err != nil {
			return nil, fmt.Errorf("tool %q: %w", tool.Name, err)
		}

		tool.Type = toolType
	}

	for name, raw := range mapField(data, "inputs") {
		input := ToolInput{}

		inputData, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("tool %q: input %q is not a mapping", tool.Name, name)
		}

		switch typ := inputData["type"].(type) {
		case string:
			input.Type = []string{typ}
		case []any:
			for _, tag := range typ {
				input.Type = append(input.Type, fmt.Sprintf("%v", tag))
			}
		}

		input.Default = inputData["default"]
		input.Description = stringField(inputData, "description")
		tool.Inputs[name] = input
	}

	return tool, nil
}

// ConnectionRef is an opaque marker for a value that names an external
// credential. It serializes through its own textual form.
type ConnectionRef string

// ConnectionName returns the referenced connection name.
func (c ConnectionRef) ConnectionName() string {
	return string(c)
}
