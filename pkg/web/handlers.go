// Package web provides the HTTP handlers for flow inspection.
package web

import (
	"log/slog"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"gopkg.in/yaml.v3"

	"github.com/flowgraph/flowgraph/pkg/models"
	"github.com/flowgraph/flowgraph/pkg/persistence"
	"github.com/flowgraph/flowgraph/pkg/schema"
)

// APIHandlers exposes read-only inspection endpoints over a flow repository.
type APIHandlers struct {
	repository persistence.FlowRepository
	validate   *validator.Validate
	logger     *slog.Logger
}

func NewAPIHandlers(repository persistence.FlowRepository, validate *validator.Validate, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		repository: repository,
		validate:   validate,
		logger:     logger,
	}
}

// GetFlows returns every stored flow definition.
func (h *APIHandlers) GetFlows(c fiber.Ctx) error {
	flows, err := h.repository.List(c.Context())
	if err != nil {
		return handleRepositoryError(c, err)
	}

	serialized := make([]map[string]any, 0, len(flows))
	for _, flow := range flows {
		serialized = append(serialized, flow.Serialize())
	}

	return c.JSON(serialized)
}

// GetFlow returns a single flow definition.
func (h *APIHandlers) GetFlow(c fiber.Ctx) error {
	flow, err := h.repository.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleRepositoryError(c, err)
	}

	return c.JSON(flow.Serialize())
}

// GetFlowConnections returns the connection names a flow requires.
func (h *APIHandlers) GetFlowConnections(c fiber.Ctx) error {
	flow, err := h.repository.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleRepositoryError(c, err)
	}

	names := make([]string, 0)
	for name := range flow.GetConnectionNames() {
		names = append(names, name)
	}

	sort.Strings(names)

	return c.JSON(fiber.Map{"connection_names": names})
}

// GetFlowNode returns a single node of a flow.
func (h *APIHandlers) GetFlowNode(c fiber.Ctx) error {
	flow, err := h.repository.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleRepositoryError(c, err)
	}

	node := flow.GetNode(c.Params("nodeName"))
	if node == nil {
		return notFound(c, "node not found")
	}

	return c.JSON(node.Serialize())
}

// ValidateFlow checks a posted flow definition (YAML or JSON) without
// storing it.
func (h *APIHandlers) ValidateFlow(c fiber.Ctx) error {
	var data map[string]any
	if err := yaml.Unmarshal(c.Body(), &data); err != nil {
		return badRequest(c, "failed to parse flow definition: "+err.Error())
	}

	if err := schema.Validate(data); err != nil {
		return badRequest(c, err.Error())
	}

	flow, err := models.DeserializeFlow(data, nil)
	if err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.validate.Struct(flow); err != nil {
		return badRequest(c, err.Error())
	}

	return c.JSON(fiber.Map{"valid": true, "id": flow.ID, "name": flow.Name})
}

// HealthCheck reports repository health.
func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	if err := h.repository.HealthCheck(c.Context()); err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"status": "healthy"})
}
