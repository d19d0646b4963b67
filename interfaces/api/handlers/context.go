package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"screw-inspection/domain/services"
	"screw-inspection/pkg/apperrors"
	"screw-inspection/pkg/utils"
)

// actorFromContext builds the service-layer actor from the session token
func actorFromContext(c *fiber.Ctx) (services.Actor, error) {
	user, err := utils.GetUserFromContext(c)
	if err != nil {
		return services.Actor{}, apperrors.ErrUnauthorized
	}
	return services.Actor{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
		Team:     user.Team,
		IP:       c.IP(),
	}, nil
}

func parseIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperrors.Validation("invalid %s", name)
	}
	return id, nil
}

// bindJSON parses the body into req and runs its validate tags
func bindJSON(c *fiber.Ctx, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	return utils.ValidateStruct(req)
}
