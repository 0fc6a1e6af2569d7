package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/decisiontrace/decisiontrace/internal/domain"
	"github.com/decisiontrace/decisiontrace/internal/middleware"
	"github.com/decisiontrace/decisiontrace/internal/service"
	"github.com/decisiontrace/decisiontrace/internal/validator"
)

// SessionHandler handles session endpoints
type SessionHandler struct {
	sessionService  *service.SessionService
	responseService *service.ResponseService
	logger          *zap.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(
	sessionService *service.SessionService,
	responseService *service.ResponseService,
	logger *zap.Logger,
) *SessionHandler {
	return &SessionHandler{
		sessionService:  sessionService,
		responseService: responseService,
		logger:          logger,
	}
}

// Create handles POST /v1/sessions
func (h *SessionHandler) Create(c *fiber.Ctx) error {
	var input domain.SessionInput
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

	session, err := h.sessionService.Create(c.Context(), &input)
	if err != nil {
		return serviceError(c, err)
	}

	middleware.RecordSessionStarted()
	h.logger.Info("session started",
		zap.String("session_id", session.ID.String()),
		zap.String("experiment_id", session.ExperimentID.String()),
	)

	return c.Status(fiber.StatusCreated).JSON(session)
}

// Get handles GET /v1/sessions/:id
func (h *SessionHandler) Get(c *fiber.Ctx) error {
	id, err := parsePathUUID(c, "id")
	if err != nil {
		return err
	}

	session, err := h.sessionService.Get(c.Context(), id)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(session)
}

// List handles GET /v1/sessions
func (h *SessionHandler) List(c *fiber.Ctx) error {
	filter := &domain.SessionFilter{}
	if v := c.Query("experimentId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return errorResponse(c, fiber.StatusBadRequest, "invalid experimentId")
		}
		filter.ExperimentID = &id
	}
	if v := c.Query("participantId"); v != "" {
		filter.ParticipantID = &v
	}
	if v := c.Query("status"); v != "" {
		status := domain.SessionStatus(v)
		if !status.IsValid() {
			return errorResponse(c, fiber.StatusBadRequest, "invalid status")
		}
		filter.Status = &status
	}

	p := ParsePagination(c, 100)
	list, err := h.sessionService.List(c.Context(), filter, p.Limit, p.Offset)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(list)
}

// Complete handles POST /v1/sessions/:id/complete
func (h *SessionHandler) Complete(c *fiber.Ctx) error {
	id, err := parsePathUUID(c, "id")
	if err != nil {
		return err
	}

	session, err := h.sessionService.Complete(c.Context(), id)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(session)
}

// Abandon handles POST /v1/sessions/:id/abandon
func (h *SessionHandler) Abandon(c *fiber.Ctx) error {
	id, err := parsePathUUID(c, "id")
	if err != nil {
		return err
	}

	session, err := h.sessionService.Abandon(c.Context(), id)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(session)
}

// RecordResponse handles POST /v1/sessions/:id/responses
func (h *SessionHandler) RecordResponse(c *fiber.Ctx) error {
	sessionID, err := parsePathUUID(c, "id")
	if err != nil {
		return err
	}

	var input domain.RecordInput
	if err := c.BodyParser(&input); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}
	input.SessionID = sessionID

	if err := validator.Validate(&input); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return validationError(c, verrs)
		}
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.responseService.Record(c.Context(), &input)
	if err != nil {
		return serviceError(c, err)
	}

	middleware.RecordResponseRecorded()
	return c.Status(fiber.StatusCreated).JSON(response)
}

// ListResponses handles GET /v1/sessions/:id/responses
func (h *SessionHandler) ListResponses(c *fiber.Ctx) error {
	sessionID, err := parsePathUUID(c, "id")
	if err != nil {
		return err
	}

	responses, err := h.responseService.ListBySession(c.Context(), sessionID)
	if err != nil {
		return serviceError(c, err)
	}
	if responses == nil {
		responses = []domain.ScenarioResponse{}
	}

	return c.JSON(fiber.Map{"responses": responses})
}

// SubmitResponse handles POST /v1/responses/:id/submit
func (h *SessionHandler) SubmitResponse(c *fiber.Ctx) error {
	responseID, err := parsePathUUID(c, "id")
	if err != nil {
		return err
	}

	var input domain.SubmitInput
	if err := c.BodyParser(&input); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}

	response, err := h.responseService.Submit(c.Context(), responseID, &input)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(response)
}

// GetResponse handles GET /v1/responses/:id
func (h *SessionHandler) GetResponse(c *fiber.Ctx) error {
	responseID, err := parsePathUUID(c, "id")
	if err != nil {
		return err
	}

	response, err := h.responseService.Get(c.Context(), responseID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(response)
}
