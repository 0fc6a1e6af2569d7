package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/decisiontrace/decisiontrace/internal/domain"
	"github.com/decisiontrace/decisiontrace/internal/service"
	"github.com/decisiontrace/decisiontrace/internal/validator"
)

// ExperimentHandler handles experiment endpoints
type ExperimentHandler struct {
	experimentService *service.ExperimentService
	logger            *zap.Logger
}

// NewExperimentHandler creates a new experiment handler
func NewExperimentHandler(experimentService *service.ExperimentService, logger *zap.Logger) *ExperimentHandler {
	return &ExperimentHandler{
		experimentService: experimentService,
		logger:            logger,
	}
}

// Create handles POST /v1/experiments
func (h *ExperimentHandler) Create(c *fiber.Ctx) error {
	var input domain.ExperimentInput
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

	experiment, err := h.experimentService.Create(c.Context(), &input)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(experiment)
}

// Get handles GET /v1/experiments/:id
func (h *ExperimentHandler) Get(c *fiber.Ctx) error {
	id, err := parsePathUUID(c, "id")
	if err != nil {
		return err
	}

	experiment, err := h.experimentService.Get(c.Context(), id)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(experiment)
}

// List handles GET /v1/experiments
func (h *ExperimentHandler) List(c *fiber.Ctx) error {
	filter := &domain.ExperimentFilter{
		Search: c.Query("search"),
	}
	if v := c.Query("isActive"); v != "" {
		active := v == "true"
		filter.IsActive = &active
	}

	p := ParsePagination(c, 100)
	list, err := h.experimentService.List(c.Context(), filter, p.Limit, p.Offset)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(list)
}

// Deactivate handles POST /v1/experiments/:id/deactivate
func (h *ExperimentHandler) Deactivate(c *fiber.Ctx) error {
	id, err := parsePathUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.experimentService.Deactivate(c.Context(), id); err != nil {
		return serviceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Activate handles POST /v1/experiments/:id/activate
func (h *ExperimentHandler) Activate(c *fiber.Ctx) error {
	id, err := parsePathUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.experimentService.Activate(c.Context(), id); err != nil {
		return serviceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
