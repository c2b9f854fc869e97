// Package web provides HTTP handlers and REST API endpoints for rule
// management and trigger ingestion.
package web

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/ninjagenz/automata/pkg/engine"
	"github.com/ninjagenz/automata/pkg/interpolate"
	"github.com/ninjagenz/automata/pkg/models"
	"github.com/ninjagenz/automata/pkg/persistence"
	"github.com/ninjagenz/automata/pkg/registry"
)

type APIHandlers struct {
	engine      *engine.Engine
	persistence persistence.Persistence
	registry    *registry.Registry
	validator   *validator.Validate
}

func NewAPIHandlers(
	eng *engine.Engine,
	persist persistence.Persistence,
	reg *registry.Registry,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		engine:      eng,
		persistence: persist,
		registry:    reg,
		validator:   validator,
	}
}

// Trigger fires an event through the rule engine and returns the execution
// result synchronously. Deferred chains report their pre-delay steps only.
func (h *APIHandlers) Trigger(c fiber.Ctx) error {
	var req TriggerRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	result, err := h.engine.Trigger(c.Context(), req.EventName, req.Payload)
	if err != nil {
		return handleEngineError(c, err)
	}

	return c.JSON(result)
}

func (h *APIHandlers) GetRules(c fiber.Ctx) error {
	workspaceID := c.Params("workspaceID")
	if workspaceID == "" {
		return badRequest(c, "Workspace ID is required")
	}

	rules, err := h.persistence.RuleRepository().Rules(c.Context(), workspaceID)
	if err != nil {
		return handleEngineError(c, err)
	}

	return c.JSON(fiber.Map{
		"rules": rules,
		"count": len(rules),
	})
}

func (h *APIHandlers) GetRule(c fiber.Ctx) error {
	workspaceID := c.Params("workspaceID")
	id := c.Params("id")

	if workspaceID == "" || id == "" {
		return badRequest(c, "Workspace ID and rule ID are required")
	}

	rule, err := h.persistence.RuleRepository().RuleByID(c.Context(), workspaceID, id)
	if err != nil {
		return handleEngineError(c, err)
	}

	return c.JSON(rule)
}

func (h *APIHandlers) CreateRule(c fiber.Ctx) error {
	workspaceID := c.Params("workspaceID")
	if workspaceID == "" {
		return badRequest(c, "Workspace ID is required")
	}

	var req CreateRuleRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.registry.ValidateChain(req.ActionChain); err != nil {
		return badRequest(c, err.Error())
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	rule := &models.Rule{
		Name:         req.Name,
		WorkspaceID:  workspaceID,
		TriggerEvent: req.TriggerEvent,
		IsActive:     isActive,
		Filters:      req.Filters,
		ActionChain:  req.ActionChain,
	}

	if err := h.persistence.RuleRepository().SaveRule(c.Context(), rule); err != nil {
		return handleEngineError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(rule)
}

func (h *APIHandlers) UpdateRule(c fiber.Ctx) error {
	workspaceID := c.Params("workspaceID")
	id := c.Params("id")

	if workspaceID == "" || id == "" {
		return badRequest(c, "Workspace ID and rule ID are required")
	}

	var req UpdateRuleRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	existing, err := h.persistence.RuleRepository().RuleByID(c.Context(), workspaceID, id)
	if err != nil {
		return handleEngineError(c, err)
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}

	if req.TriggerEvent != nil {
		existing.TriggerEvent = *req.TriggerEvent
	}

	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}

	if req.Filters != nil {
		existing.Filters = req.Filters
	}

	if req.ActionChain != nil {
		if err := h.registry.ValidateChain(req.ActionChain); err != nil {
			return badRequest(c, err.Error())
		}

		existing.ActionChain = req.ActionChain
	}

	if err := h.persistence.RuleRepository().SaveRule(c.Context(), existing); err != nil {
		return handleEngineError(c, err)
	}

	return c.JSON(existing)
}

func (h *APIHandlers) DeleteRule(c fiber.Ctx) error {
	workspaceID := c.Params("workspaceID")
	id := c.Params("id")

	if workspaceID == "" || id == "" {
		return badRequest(c, "Workspace ID and rule ID are required")
	}

	err := h.persistence.RuleRepository().DeleteRule(c.Context(), workspaceID, id)
	if err != nil {
		return handleEngineError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// GetVariables returns the interpolation variables available to rule authors
// for a given trigger event. This backs the template editor's autocomplete.
func (h *APIHandlers) GetVariables(c fiber.Ctx) error {
	eventName := c.Params("event")
	if eventName == "" {
		return badRequest(c, "Event name is required")
	}

	return c.JSON(fiber.Map{
		"event":     eventName,
		"variables": interpolate.Catalog(eventName),
	})
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	err := h.persistence.HealthCheck(c.Context())

	status := "healthy"
	message := "Automata API is healthy"
	httpStatus := http.StatusOK

	if err != nil {
		status = "unhealthy"
		message = "Automata API is unhealthy"
		httpStatus = http.StatusInternalServerError
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":    status,
		"message":   message,
		"timestamp": time.Now().UTC(),
	})
}
