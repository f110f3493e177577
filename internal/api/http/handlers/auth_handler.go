package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/task-service/internal/api/dto"
	"github.com/spec-kit/task-service/internal/service"
	apperrors "github.com/spec-kit/task-service/pkg/util"
)

// AuthHandler exposes the public registration and login endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Name == "" || req.Username == "" || req.Password == "" || req.Email == "" {
		return apperrors.NewValidationError("name, username, password, email required", nil)
	}

	user, err := h.auth.Register(c.UserContext(), req.Name, req.Username, req.Password, req.Email)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(dto.UserProfile{
		ID:       user.ID,
		Name:     user.Name,
		Username: user.Username,
		Email:    user.Email,
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.NewValidationError("username and password required", nil)
	}

	result, err := h.auth.Login(c.UserContext(), req.Username, req.Password, c.IP())
	if err != nil {
		return err
	}

	return c.JSON(dto.LoginResponse{
		Token:    result.Token,
		Username: result.Username,
		Email:    result.Email,
	})
}
