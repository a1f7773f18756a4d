// Package postgresql provides a PostgreSQL-backed flow repository.
// Definitions are stored as JSON documents and resolved on read.
package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq" // postgres driver

	"github.com/flowgraph/flowgraph/pkg/models"
	"github.com/flowgraph/flowgraph/pkg/persistence"
	"github.com/flowgraph/flowgraph/pkg/schema"
)

// Repository implements persistence.FlowRepository on PostgreSQL.
type Repository struct {
	db         *sql.DB
	logger     *slog.Logger
	importer   models.ModuleImporter
	toolLoader models.ToolLoader
}

// NewRepository opens a connection pool and ensures the schema exists.
// The importer and tool loader are optional collaborators wired into
// every loaded flow; either may be nil.
func NewRepository(databaseURL string, logger *slog.Logger, importer models.ModuleImporter, toolLoader models.ToolLoader) (*Repository, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	repo := &Repository{db: db, logger: logger, importer: importer, toolLoader: toolLoader}

	if err := repo.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate flow schema: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS flow_definitions (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			definition JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`

	_, err := r.db.Exec(query)

	return err
}

// List returns all stored flows, fully resolved.
func (r *Repository) List(ctx context.Context) ([]*models.Flow, error) {
	query := `SELECT id, definition FROM flow_definitions ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query flow definitions: %w", err)
	}

	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", closeErr)
		}
	}()

	var flows []*models.Flow

	for rows.Next() {
		var (
			id  string
			raw []byte
		)

		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan flow definition: %w", err)
		}

		flow, err := r.resolve(raw)
		if err != nil {
			return nil, persistence.NewFlowError("List", id, err)
		}

		flows = append(flows, flow)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating flow definitions: %w", err)
	}

	return flows, nil
}

// GetByID returns the flow with the given id.
func (r *Repository) GetByID(ctx context.Context, id string) (*models.Flow, error) {
	query := `SELECT definition FROM flow_definitions WHERE id = $1`

	var raw []byte

	err := r.db.QueryRowContext(ctx, query, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.NewFlowError("GetByID", id, persistence.ErrFlowNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query flow definition: %w", err)
	}

	flow, err := r.resolve(raw)
	if err != nil {
		return nil, persistence.NewFlowError("GetByID", id, err)
	}

	return flow, nil
}

// Save upserts a flow definition, assigning an id when absent.
func (r *Repository) Save(ctx context.Context, flow *models.Flow) error {
	if flow.ID == "" {
		flow.ID = uuid.New().String()
	}

	raw, err := json.Marshal(flow.Serialize())
	if err != nil {
		return persistence.NewFlowError("Save", flow.ID, err)
	}

	query := `
		INSERT INTO flow_definitions (id, name, definition, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			definition = EXCLUDED.definition,
			updated_at = EXCLUDED.updated_at
	`

	if _, err := r.db.ExecContext(ctx, query, flow.ID, flow.Name, raw, time.Now().UTC()); err != nil {
		return persistence.NewFlowError("Save", flow.ID, fmt.Errorf("failed to save flow definition: %w", err))
	}

	return nil
}

// Delete removes the flow with the given id.
func (r *Repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM flow_definitions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete flow definition: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}

	if affected == 0 {
		return persistence.NewFlowError("Delete", id, persistence.ErrFlowNotFound)
	}

	return nil
}

// HealthCheck pings the database.
func (r *Repository) HealthCheck(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the connection pool.
func (r *Repository) Close(ctx context.Context) error {
	return r.db.Close()
}

// resolve validates and constructs a flow from its stored JSON document.
func (r *Repository) resolve(raw []byte) (*models.Flow, error) {
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("%w: %w", persistence.ErrInvalidFlowDefinition, err)
	}

	if err := schema.Validate(data); err != nil {
		return nil, fmt.Errorf("%w: %w", persistence.ErrInvalidFlowDefinition, err)
	}

	flow, err := models.DeserializeFlow(data, r.importer)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", persistence.ErrInvalidFlowDefinition, err)
	}

	if r.toolLoader != nil {
		flow.SetToolLoader(r.toolLoader)
	}

	return flow, nil
}
