package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/abhinav/feedback-service/internal/api/dto"
	"github.com/abhinav/feedback-service/internal/domain"
	"github.com/abhinav/feedback-service/internal/service"
	apperrors "github.com/abhinav/feedback-service/pkg/util"
)

// UsersHandler exposes registration, login and account listing.
type UsersHandler struct {
	auth *service.AuthService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService) *UsersHandler {
	return &UsersHandler{auth: authService}
}

// Register handles POST /api/auth/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("username, email and password are required", nil)
	}

	role := domain.RoleUser
	if strings.TrimSpace(req.Role) != "" {
		parsed, err := domain.ParseRole(req.Role)
		if err != nil {
			return apperrors.NewValidationError(err.Error(), map[string]any{"role": req.Role})
		}
		role = parsed
	}

	user, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     role,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{"user": dto.NewUserResponse(user)},
	})
}

// Login handles POST /api/auth/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.NewValidationError("username and password are required", nil)
	}

	user, token, expiresAt, err := h.auth.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": dto.AuthResponse{Token: token, Username: user.Username, ExpiresAt: expiresAt},
	})
}

// List handles GET /api/users. Admin only, enforced by the route guard.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	users, err := h.auth.ListUsers(c.UserContext())
	if err != nil {
		return err
	}

	responses := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, dto.NewUserResponse(user))
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"users": responses}})
}
