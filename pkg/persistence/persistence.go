// Package persistence defines the storage boundary for flow definitions.
package persistence

import (
	"context"

	"github.com/flowgraph/flowgraph/pkg/models"
)

// FlowRepository stores and resolves flow definitions.
type FlowRepository interface {
	// List returns all stored flows, fully resolved.
	List(ctx context.Context) ([]*models.Flow, error)

	// GetByID returns the flow with the given id, or ErrFlowNotFound.
	GetByID(ctx context.Context, id string) (*models.Flow, error)

	// Save stores a flow definition, assigning an id when absent.
	Save(ctx context.Context, flow *models.Flow) error

	// Delete removes the flow with the given id, or ErrFlowNotFound.
	Delete(ctx context.Context, id string) error

	// HealthCheck reports whether the store is reachable.
	HealthCheck(ctx context.Context) error

	// Close releases any resources held by the store.
	Close(ctx context.Context) error
}
