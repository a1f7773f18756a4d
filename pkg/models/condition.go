package models

import "fmt"

// ActivateCondition gates a node's execution: the node runs only if the
// resolved condition value equals ConditionValue.
type ActivateCondition struct {
	Condition      InputAssignment `json:"condition"`
	ConditionValue any             `json:"condition_value"`
}

// DeserializeActivateCondition constructs an activate condition from a
// generic tree with "when" and "is" keys.
func DeserializeActivateCondition(data map[string]any) (*ActivateCondition, error) {
	when, ok := data["when"]
	if !ok {
		return nil, fmt.Errorf("activate condition missing 'when'")
	}

	return &ActivateCondition{
		Condition:      DeserializeInputAssignment(when),
		ConditionValue: data["is"],
	}, nil
}

// Serialize renders the activate condition as a generic tree.
func (c *ActivateCondition) Serialize() map[string]any {
	return map[string]any{
		"when": c.Condition.Serialize(),
		"is":   c.ConditionValue,
	}
}

// SkipCondition short-circuits a node: if the resolved condition value
// equals ConditionValue the node is skipped and ReturnValue stands in
// for its output.
type SkipCondition struct {
	Condition      InputAssignment `json:"condition"`
	ConditionValue any             `json:"condition_value"`
	ReturnValue    InputAssignment `json:"return_value"`
}

// DeserializeSkipCondition constructs a skip condition from a generic
// tree with "when", "is" and "return" keys.
func DeserializeSkipCondition(data map[string]any) (*SkipCondition, error) {
	when, ok := data["when"]
	if !ok {
		return nil, fmt.Errorf("skip condition missing 'when'")
	}

	returnValue, ok := data["return"]
	if !ok {
		return nil, fmt.Errorf("skip condition missing 'return'")
	}

	return &SkipCondition{
		Condition:      DeserializeInputAssignment(when),
		ConditionValue: data["is"],
		ReturnValue:    DeserializeInputAssignment(returnValue),
	}, nil
}

// Serialize renders the skip condition as a generic tree.
func (c *SkipCondition) Serialize() map[string]any {
	return map[string]any{
		"when":   c.Condition.Serialize(),
		"is":     c.ConditionValue,
		"return": c.ReturnValue.Serialize(),
	}
}
