package models

import (
	"fmt"
	"strings"
)

// InputValueType discriminates how a bound input value is resolved.
type InputValueType string

const (
	InputValueTypeLiteral       InputValueType = "Literal"
	InputValueTypeFlowInput     InputValueType = "FlowInput"
	InputValueTypeNodeReference InputValueType = "NodeReference"
)

// FlowInputPrefix is the canonical prefix of a flow input reference.
const FlowInputPrefix = "flow."

// Checked in order; the second spelling is kept for backward compatibility.
var flowInputPrefixes = []string{FlowInputPrefix, "inputs."}

// DefaultOutputSection is the section read from a node reference that
// names no section of its own.
const DefaultOutputSection = "output"

// InputAssignment represents the assignment of a single input value:
// a literal, a flow input, or a reference to another node's output.
type InputAssignment struct {
	Value     any            `json:"value"`
	ValueType InputValueType `json:"value_type"`
	Section   string         `json:"section,omitempty"`
	Property  string         `json:"property,omitempty"`
}

// Serialize renders the assignment back into its reference string form.
// Literals pass through unchanged, except connection markers, which
// serialize through their own textual form.
func (a InputAssignment) Serialize() any {
	switch a.ValueType {
	case InputValueTypeFlowInput:
		return fmt.Sprintf("${%s%v}", FlowInputPrefix, a.Value)
	case InputValueTypeNodeReference:
		if a.Property != "" {
			return fmt.Sprintf("${%v.%s.%s}", a.Value, a.Section, a.Property)
		}

		return fmt.Sprintf("${%v.%s}", a.Value, a.Section)
	}

	if conn, ok := a.Value.(ConnectionRef); ok {
		return conn.ConnectionName()
	}

	return a.Value
}

// DeserializeInputAssignment parses a raw input value. Strings of the
// form ${...} become flow input or node reference assignments; anything
// else, including malformed wrappers, is a literal.
func DeserializeInputAssignment(value any) InputAssignment {
	literal := InputAssignment{Value: value, ValueType: InputValueTypeLiteral}

	s, ok := value.(string)
	if !ok || !strings.HasPrefix(s, "$") || len(s) <= 2 {
		return literal
	}

	inner := s[1:]
	if inner[0] != '{' || inner[len(inner)-1] != '}' {
		return literal
	}

	return deserializeReference(inner[1 : len(inner)-1])
}

// deserializeReference dispatches the text inside a ${...} wrapper to a
// flow input or node reference assignment.
func deserializeReference(value string) InputAssignment {
	if IsFlowInput(value) {
		assignment, _ := DeserializeFlowInputAssignment(value)

		return assignment.InputAssignment
	}

	return deserializeNodeReference(value)
}

// deserializeNodeReference splits "<node>[.<section>[.<property>]]".
// Any text after the second dot is the full property path, dots included.
func deserializeNodeReference(data string) InputAssignment {
	if !strings.Contains(data, ".") {
		return InputAssignment{Value: data, ValueType: InputValueTypeNodeReference, Section: DefaultOutputSection}
	}

	parts := strings.SplitN(data, ".", 2)
	nodeName, portName := parts[0], parts[1]

	if !strings.Contains(portName, ".") {
		return InputAssignment{Value: nodeName, ValueType: InputValueTypeNodeReference, Section: portName}
	}

	parts = strings.SplitN(portName, ".", 2)

	return InputAssignment{
		Value:     nodeName,
		ValueType: InputValueTypeNodeReference,
		Section:   parts[0],
		Property:  parts[1],
	}
}

// FlowInputAssignment is an input assignment bound to a flow input. It
// additionally records the textual prefix it was parsed with, for
// round-trip fidelity. Created only through deserialization.
type FlowInputAssignment struct {
	InputAssignment

	Prefix string `json:"prefix"`
}

// IsFlowInput reports whether a reference body names a flow input.
func IsFlowInput(value string) bool {
	for _, prefix := range flowInputPrefixes {
		if strings.HasPrefix(value, prefix) {
			return true
		}
	}

	return false
}

// DeserializeFlowInputAssignment parses the body of a flow input
// reference. The prefix must be one of the accepted aliases.
func DeserializeFlowInputAssignment(value string) (FlowInputAssignment, error) {
	for _, prefix := range flowInputPrefixes {
		if strings.HasPrefix(value, prefix) {
			return FlowInputAssignment{
				InputAssignment: InputAssignment{
					Value:     strings.TrimPrefix(value, prefix),
					ValueType: InputValueTypeFlowInput,
				},
				Prefix: prefix,
			}, nil
		}
	}

	return FlowInputAssignment{}, fmt.Errorf("%w: %q", ErrUnknownFlowInputPrefix, value)
}
