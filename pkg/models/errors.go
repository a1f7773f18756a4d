// Package models defines the core domain model for declarative flow
// graphs: nodes, input assignments, conditions, variants and the flow
// aggregate with its resolution queries.
package models

import (
	"errors"
	"fmt"
)

// Standard domain error types used across flow construction and queries.
var (
	// ErrNodeConditionConflict indicates a node declares both a skip and
	// an activate condition.
	ErrNodeConditionConflict = errors.New("node can't have both skip and activate condition")

	// ErrNodeNotFound indicates a node was not found by the given name.
	ErrNodeNotFound = errors.New("node not found")

	// ErrToolNotFound indicates a tool was not found by the given name.
	ErrToolNotFound = errors.New("tool not found")

	// ErrUnknownFlowInputPrefix indicates a flow input reference uses a
	// prefix outside the accepted alias set.
	ErrUnknownFlowInputPrefix = errors.New("unknown flow input prefix")

	// ErrFailedToImportModule indicates one or more tool/provider modules
	// required by the flow could not be imported.
	ErrFailedToImportModule = errors.New("failed to import module")

	// ErrUnknownTypeTag indicates an enum-like string field holds a value
	// outside its closed tag set.
	ErrUnknownTypeTag = errors.New("unknown type tag")
)

// FlowError wraps flow construction and mutation errors with context.
type FlowError struct {
	Op       string // Operation being performed (e.g., "Deserialize", "ApplyNodeOverrides")
	FlowName string // Flow name if known
	NodeName string // Node name if applicable
	Err      error  // Underlying error
}

func (e *FlowError) Error() string {
	target := e.FlowName
	if e.NodeName != "" {
		target = fmt.Sprintf("node %s", e.NodeName)
	}

	return fmt.Sprintf("%s failed for %s: %v", e.Op, target, e.Err)
}

func (e *FlowError) Unwrap() error {
	return e.Err
}

// NewFlowError creates a new flow error with context.
func NewFlowError(op, flowName string, err error) *FlowError {
	return &FlowError{Op: op, FlowName: flowName, Err: err}
}

// NewNodeError creates a new flow error scoped to a single node.
func NewNodeError(op, nodeName string, err error) *FlowError {
	return &FlowError{Op: op, NodeName: nodeName, Err: err}
}

// IsNodeConditionConflict checks if an error indicates a skip/activate conflict.
func IsNodeConditionConflict(err error) bool {
	return errors.Is(err, ErrNodeConditionConflict)
}

// IsNodeNotFound checks if an error indicates a missing node.
func IsNodeNotFound(err error) bool {
	return errors.Is(err, ErrNodeNotFound)
}

// IsFailedToImportModule checks if an error indicates a requisite module
// import failure.
func IsFailedToImportModule(err error) bool {
	return errors.Is(err, ErrFailedToImportModule)
}
