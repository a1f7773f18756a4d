// Package registry holds the declared tools and provider modules a flow
// can bind to. It is populated by an explicit registration phase before
// flows are loaded; flow construction only ever performs lookups.
package registry

import (
	"fmt"
	"log/slog"

	"github.com/flowgraph/flowgraph/pkg/models"
)

// ModuleFunc registers the runtime capabilities of a tool or provider
// module when invoked.
type ModuleFunc func() error

type Registry struct {
	logger  *slog.Logger
	tools   map[string]*models.Tool
	modules map[string]ModuleFunc
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		logger:  log,
		tools:   make(map[string]*models.Tool),
		modules: make(map[string]ModuleFunc),
	}
}

// RegisterTool makes a tool declaration available for node lookups.
func (r *Registry) RegisterTool(tool *models.Tool) {
	r.tools[tool.Name] = tool
}

// LookupTool returns the declared tool with the given name.
func (r *Registry) LookupTool(name string) (*models.Tool, bool) {
	tool, ok := r.tools[name]

	return tool, ok
}

// RegisterModule makes a tool/provider module importable by name.
func (r *Registry) RegisterModule(name string, fn ModuleFunc) {
	r.modules[name] = fn
}

// ImportModule resolves a declared module identifier and runs its
// registration hook. Implements models.ModuleImporter.
func (r *Registry) ImportModule(name string) error {
	fn, ok := r.modules[name]
	if !ok {
		return fmt.Errorf("module %q not registered", name)
	}

	if err := fn(); err != nil {
		return fmt.Errorf("module %q registration failed: %w", name, err)
	}

	r.logger.Debug("Imported module", "module", name)

	return nil
}

// LoadToolForNode resolves a node's tool declaration. Package-sourced
// nodes resolve through their source tool key, everything else through
// the node's tool identifier. Implements models.ToolLoader.
func (r *Registry) LoadToolForNode(node *models.Node) (*models.Tool, bool) {
	key := node.Tool
	if node.Source != nil && node.Source.Tool != "" {
		key = node.Source.Tool
	}

	tool, ok := r.tools[key]
	if !ok {
		r.logger.Debug("Tool not registered", "node", node.Name, "tool", key)

		return nil, false
	}

	return tool, true
}
