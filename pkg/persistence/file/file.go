// Package file provides a file-based flow repository: a directory of
// YAML flow definition files, one file per flow.
package file

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/flowgraph/flowgraph/pkg/models"
	"github.com/flowgraph/flowgraph/pkg/persistence"
	"github.com/flowgraph/flowgraph/pkg/schema"
)

// Repository implements persistence.FlowRepository on a directory of
// YAML definition files.
type Repository struct {
	root       string
	importer   models.ModuleImporter
	toolLoader models.ToolLoader
}

// NewRepository creates a repository rooted at the given directory.
// The importer and tool loader are optional collaborators wired into
// every loaded flow; either may be nil.
func NewRepository(root string, importer models.ModuleImporter, toolLoader models.ToolLoader) *Repository {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Repository{root: cleanRoot, importer: importer, toolLoader: toolLoader}
}

// List returns every flow definition in the repository directory.
func (r *Repository) List(ctx context.Context) ([]*models.Flow, error) {
	root := os.DirFS(r.root)

	paths, err := fs.Glob(root, "*.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to list flow files: %w", err)
	}

	ymlPaths, err := fs.Glob(root, "*.yml")
	if err != nil {
		return nil, fmt.Errorf("failed to list flow files: %w", err)
	}

	paths = append(paths, ymlPaths...)

	flows := make([]*models.Flow, 0, len(paths))

	for _, path := range paths {
		flow, err := r.load(filepath.Join(r.root, path))
		if err != nil {
			return nil, fmt.Errorf("failed to load flow file %q: %w", path, err)
		}

		flows = append(flows, flow)
	}

	return flows, nil
}

// GetByID returns the flow stored as "<id>.yaml" (or ".yml").
func (r *Repository) GetByID(ctx context.Context, id string) (*models.Flow, error) {
	for _, ext := range []string{".yaml", ".yml"} {
		path := filepath.Join(r.root, id+ext)
		if _, err := os.Stat(path); err != nil {
			continue
		}

		flow, err := r.load(path)
		if err != nil {
			return nil, persistence.NewFlowError("GetByID", id, err)
		}

		return flow, nil
	}

	return nil, persistence.NewFlowError("GetByID", id, persistence.ErrFlowNotFound)
}

// Save stores a flow as "<id>.yaml", assigning a fresh id when absent.
func (r *Repository) Save(ctx context.Context, flow *models.Flow) error {
	if flow.ID == "" {
		flow.ID = uuid.New().String()
	}

	data, err := yaml.Marshal(flow.Serialize())
	if err != nil {
		return persistence.NewFlowError("Save", flow.ID, err)
	}

	if err := os.MkdirAll(r.root, 0o755); err != nil {
		return persistence.NewFlowError("Save", flow.ID, err)
	}

	path := filepath.Join(r.root, flow.ID+".yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return persistence.NewFlowError("Save", flow.ID, err)
	}

	return nil
}

// Delete removes the flow file with the given id.
func (r *Repository) Delete(ctx context.Context, id string) error {
	for _, ext := range []string{".yaml", ".yml"} {
		path := filepath.Join(r.root, id+ext)
		if _, err := os.Stat(path); err != nil {
			continue
		}

		if err := os.Remove(path); err != nil {
			return persistence.NewFlowError("Delete", id, err)
		}

		return nil
	}

	return persistence.NewFlowError("Delete", id, persistence.ErrFlowNotFound)
}

// HealthCheck verifies the repository directory exists.
func (r *Repository) HealthCheck(ctx context.Context) error {
	if _, err := os.Stat(r.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Close performs any necessary cleanup. For file-based repositories,
// there is nothing to clean up.
func (r *Repository) Close(ctx context.Context) error {
	return nil
}

// load reads, schema-validates and constructs a single flow file.
func (r *Repository) load(path string) (*models.Flow, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var data map[string]any
	if err := yaml.Unmarshal(raw, &data); err != nil {
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
