// Package cmd provides common initialization functions for the
// command-line binaries.
package cmd

import (
	"log/slog"
	"strings"

	"github.com/flowgraph/flowgraph/pkg/models"
	"github.com/flowgraph/flowgraph/pkg/persistence"
	"github.com/flowgraph/flowgraph/pkg/persistence/file"
	"github.com/flowgraph/flowgraph/pkg/persistence/postgresql"
	"github.com/flowgraph/flowgraph/pkg/registry"
)

// NewFlowRepository builds a repository from a storage URL. Postgres
// URLs get the database-backed store; everything else is treated as a
// flow directory path.
func NewFlowRepository(storageURL string, logger *slog.Logger, reg *registry.Registry) (persistence.FlowRepository, error) {
	var (
		importer models.ModuleImporter
		loader   models.ToolLoader
	)

	if reg != nil {
		importer, loader = reg, reg
	}

	switch parseStorageProvider(storageURL) {
	case "postgres":
		return postgresql.NewRepository(storageURL, logger, importer, loader)
	default:
		return file.NewRepository(storageURL, importer, loader), nil
	}
}

func parseStorageProvider(storageURL string) string {
	scheme, _, found := strings.Cut(storageURL, "://")
	if !found {
		return "file"
	}

	switch scheme {
	case "postgres", "postgresql":
		return "postgres"
	default:
		return "file"
	}
}
