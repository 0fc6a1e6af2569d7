package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/decisiontrace/decisiontrace/internal/domain"
	"github.com/decisiontrace/decisiontrace/internal/service"
	"github.com/decisiontrace/decisiontrace/internal/validator"
)

// ScenarioHandler handles scenario endpoints
type ScenarioHandler struct {
	scenarioService *service.ScenarioService
	logger          *zap.Logger
}

// NewScenarioHandler creates a new scenario handler
func NewScenarioHandler(scenarioService *service.ScenarioService, logger *zap.Logger) *ScenarioHandler {
	return &ScenarioHandler{
		scenarioService: scenarioService,
		logger:          logger,
	}
}

// Create handles POST /v1/scenarios
func (h *ScenarioHandler) Create(c *fiber.Ctx) error {
	var input domain.ScenarioInput
	if err := c.BodyParser(&input); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}

	if err := validator.Validate(&input); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return validationError(c, verrs)
		}
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	scenario, err := h.scenarioService.Create(c.Context(), &input)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(scenario)
}

// Get handles GET /v1/scenarios/:id
func (h *ScenarioHandler) Get(c *fiber.Ctx) error {
	id, err := parsePathUUID(c, "id")
	if err != nil {
		return err
	}

	scenario, err := h.scenarioService.Get(c.Context(), id)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(scenario)
}

// List handles GET /v1/scenarios
func (h *ScenarioHandler) List(c *fiber.Ctx) error {
	filter := &domain.ScenarioFilter{}
	if v := c.Query("category"); v != "" {
		filter.Category = &v
	}

	p := ParsePagination(c, 100)
	list, err := h.scenarioService.List(c.Context(), filter, p.Limit, p.Offset)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(list)
}

// Update handles PATCH /v1/scenarios/:id
func (h *ScenarioHandler) Update(c *fiber.Ctx) error {
	id, err := parsePathUUID(c, "id")
	if err != nil {
		return err
	}

	var input domain.ScenarioUpdateInput
	if err := c.BodyParser(&input); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}

	if err := validator.Validate(&input); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return validationError(c, verrs)
		}
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	scenario, err := h.scenarioService.Update(c.Context(), id, &input)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(scenario)
}

// Delete handles DELETE /v1/scenarios/:id
func (h *ScenarioHandler) Delete(c *fiber.Ctx) error {
	id, err := parsePathUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.scenarioService.Delete(c.Context(), id); err != nil {
		return serviceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
