package handlers

import (
	"github.com/gofiber/fiber/v2"

	"screw-inspection/domain/dto"
	"screw-inspection/domain/services"
	"screw-inspection/pkg/logger"
	"screw-inspection/pkg/utils"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Login godoc
// @Summary Log in with username and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.LoginResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		return utils.ServiceErrorResponse(c, "Invalid login request", err)
	}

	resp, err := h.authService.Login(c.UserContext(), &req)
	if err != nil {
		logger.Warn(logger.CategoryAuth, "login_failed", "Login rejected", map[string]interface{}{
			"username": req.Username,
			"ip":       c.IP(),
		})
		return utils.ServiceErrorResponse(c, "Login failed", err)
	}

	logger.Auth("login", "User logged in", map[string]interface{}{
		"user_id": resp.User.ID.String(),
		"ip":      c.IP(),
	})
	return utils.SuccessResponse(c, "Login successful", resp)
}

// Register godoc
// @Summary Self-register an operator account
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Account"
// @Success 201 {object} dto.UserResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		return utils.ServiceErrorResponse(c, "Invalid registration request", err)
	}

	user, err := h.authService.Register(c.UserContext(), &req)
	if err != nil {
		return utils.ServiceErrorResponse(c, "Registration failed", err)
	}

	logger.Auth("register", "User registered", map[string]interface{}{
		"user_id": user.ID.String(),
		"ip":      c.IP(),
	})
	return utils.CreatedResponse(c, "User registered successfully", dto.UserToUserResponse(user))
}

// GetCurrentUser returns the authenticated user's profile
func (h *AuthHandler) GetCurrentUser(c *fiber.Ctx) error {
	userCtx, err := utils.GetUserFromContext(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "Not authenticated")
	}

	user, err := h.authService.GetCurrentUser(c.UserContext(), userCtx.ID)
	if err != nil {
		return utils.ServiceErrorResponse(c, "Failed to get user", err)
	}
	return utils.SuccessResponse(c, "User retrieved successfully", dto.UserToUserResponse(user))
}
