package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"screw-inspection/domain/models"
	"screw-inspection/pkg/logger"
	"screw-inspection/pkg/utils"
)

// Protected validates the bearer token and stores the user context in locals
func Protected(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return utils.UnauthorizedResponse(c, "Missing authorization header")
		}

		token := utils.ExtractTokenFromHeader(authHeader)
		if token == "" {
			return utils.UnauthorizedResponse(c, "Invalid authorization header format")
		}

		return authenticate(c, token, jwtSecret)
	}
}

// ProtectedWithQueryToken also accepts ?token= for websocket upgrades, where
// browsers cannot send an Authorization header.
func ProtectedWithQueryToken(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := utils.ExtractTokenFromHeader(c.Get("Authorization"))
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			return utils.UnauthorizedResponse(c, "Missing authorization")
		}
		return authenticate(c, token, jwtSecret)
	}
}

func authenticate(c *fiber.Ctx, token, jwtSecret string) error {
	userCtx, err := utils.ValidateTokenStringToUUID(token, jwtSecret)
	if err != nil {
		logger.Warn(logger.CategoryAuth, "token_rejected", "Token validation failed", map[string]interface{}{
			"path":  c.Path(),
			"ip":    c.IP(),
			"error": err.Error(),
		})
		switch {
		case errors.Is(err, utils.ErrExpiredToken):
			return utils.UnauthorizedResponse(c, "Token has expired")
		case errors.Is(err, utils.ErrMissingToken):
			return utils.UnauthorizedResponse(c, "Missing token")
		default:
			return utils.UnauthorizedResponse(c, "Invalid token")
		}
	}

	c.Locals("user", userCtx)
	return c.Next()
}

// RequireRole lets the request through when the caller holds any of roles
func RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := utils.GetUserFromContext(c)
		if err != nil {
			return utils.UnauthorizedResponse(c, "User not authenticated")
		}

		for _, role := range roles {
			if user.Role == role {
				return c.Next()
			}
		}
		return utils.ForbiddenResponse(c, "Insufficient permissions")
	}
}

func AdminOnly() fiber.Handler {
	return RequireRole(models.RoleAdmin)
}

// EngineeringOnly admits admins and technicians
func EngineeringOnly() fiber.Handler {
	return RequireRole(models.RoleAdmin, models.RoleTechnician)
}
