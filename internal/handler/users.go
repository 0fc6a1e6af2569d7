package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/decisiontrace/decisiontrace/internal/domain"
	"github.com/decisiontrace/decisiontrace/internal/service"
)

// UserHandler handles user endpoints
type UserHandler struct {
	userService *service.UserService
	logger      *zap.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// CreateUserRequest represents a request to create a user
type CreateUserRequest struct {
	Email    string          `json:"email" validate:"required,email"`
	FullName string          `json:"fullName"`
	Role     domain.UserRole `json:"role"`
}

// Create handles POST /v1/users
func (h *UserHandler) Create(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}
	if req.Email == "" {
		return errorResponse(c, fiber.StatusBadRequest, "email is required")
	}
	if req.Role == "" {
		req.Role = domain.UserRoleOperator
	}

	user, err := h.userService.Create(c.Context(), req.Email, req.FullName, req.Role)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

// Get handles GET /v1/users/:id
func (h *UserHandler) Get(c *fiber.Ctx) error {
	id, err := parsePathUUID(c, "id")
	if err != nil {
		return err
	}

	user, err := h.userService.Get(c.Context(), id)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(user)
}

// UpdatePreferences handles PUT /v1/users/:id/preferences
func (h *UserHandler) UpdatePreferences(c *fiber.Ctx) error {
	id, err := parsePathUUID(c, "id")
	if err != nil {
		return err
	}

	var prefs domain.Preferences
	if err := c.BodyParser(&prefs); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}

	user, err := h.userService.UpdatePreferences(c.Context(), id, prefs)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(user)
}
