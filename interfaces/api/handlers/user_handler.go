package handlers

import (
	"github.com/gofiber/fiber/v2"

	"screw-inspection/domain/dto"
	"screw-inspection/domain/services"
	"screw-inspection/pkg/utils"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) List(c *fiber.Ctx) error {
	page, limit, _ := dto.NormalizePage(c.QueryInt("page", 1), c.QueryInt("limit", dto.DefaultPageSize))

	users, total, err := h.userService.List(c.UserContext(), c.Query("search"), page, limit)
	if err != nil {
		return utils.ServiceErrorResponse(c, "Failed to list users", err)
	}
	return utils.SuccessResponse(c, "Users retrieved successfully", dto.UserListResponse{
		Users: dto.UsersToUserResponses(users),
		Meta:  dto.NewPaginationMeta(total, page, limit),
	})
}

func (h *UserHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.ServiceErrorResponse(c, "Invalid user id", err)
	}

	user, err := h.userService.Get(c.UserContext(), id)
	if err != nil {
		return utils.ServiceErrorResponse(c, "Failed to get user", err)
	}
	return utils.SuccessResponse(c, "User retrieved successfully", dto.UserToUserResponse(user))
}

func (h *UserHandler) Create(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "Not authenticated")
	}

	var req dto.CreateUserRequest
	if err := bindJSON(c, &req); err != nil {
		return utils.ServiceErrorResponse(c, "Invalid user", err)
	}

	user, err := h.userService.Create(c.UserContext(), actor, &req)
	if err != nil {
		return utils.ServiceErrorResponse(c, "Failed to create user", err)
	}
	return utils.CreatedResponse(c, "User created successfully", dto.UserToUserResponse(user))
}

func (h *UserHandler) Update(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "Not authenticated")
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.ServiceErrorResponse(c, "Invalid user id", err)
	}

	var req dto.UpdateUserRequest
	if err := bindJSON(c, &req); err != nil {
		return utils.ServiceErrorResponse(c, "Invalid user", err)
	}

	user, err := h.userService.Update(c.UserContext(), actor, id, &req)
	if err != nil {
		return utils.ServiceErrorResponse(c, "Failed to update user", err)
	}
	return utils.SuccessResponse(c, "User updated successfully", dto.UserToUserResponse(user))
}

// Deactivate is a soft delete; the account keeps its inspection history
func (h *UserHandler) Deactivate(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "Not authenticated")
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.ServiceErrorResponse(c, "Invalid user id", err)
	}

	user, err := h.userService.Deactivate(c.UserContext(), actor, id)
	if err != nil {
		return utils.ServiceErrorResponse(c, "Failed to deactivate user", err)
	}
	return utils.SuccessResponse(c, "User deactivated successfully", dto.UserToUserResponse(user))
}
