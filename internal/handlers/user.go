package handlers

import (
	"relais/internal/repositories"
	"relais/internal/services/user"
	"relais/internal/utils/pagination"
	"relais/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService user.Service
}

func NewUserHandler(userService user.Service) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) Create(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}

	var input user.CreateInput
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}

	u, err := h.userService.Create(c.UserContext(), claims, input)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "User created", u)
}

func (h *UserHandler) List(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}

	q := filters(c)
	filter := repositories.UserFilter{
		Role:      c.Query("role"),
		Status:    c.Query("status"),
		PartnerID: q.ID("partner_id"),
		AgencyID:  q.ID("agency_id"),
		Search:    c.Query("q"),
	}
	if err := q.Err(); err != nil {
		return response.FromError(c, err)
	}
	p := pagination.ParseFromRequest(c)

	users, total, err := h.userService.List(c.UserContext(), claims, filter, p)
	if err != nil {
		return response.FromError(c, err)
	}
	p.Total = total
	return c.JSON(pagination.Response(p, users))
}

func (h *UserHandler) Get(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	u, err := h.userService.Get(c.UserContext(), claims, id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "User retrieved", u)
}

func (h *UserHandler) Update(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	var input user.UpdateInput
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}

	u, err := h.userService.Update(c.UserContext(), claims, id, input)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "User updated", u)
}

func (h *UserHandler) SetStatus(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	var input struct {
		Status string `json:"status" validate:"required"`
	}
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}

	u, err := h.userService.SetStatus(c.UserContext(), claims, id, input.Status)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "User status updated", u)
}

func (h *UserHandler) SetPermissions(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	var input struct {
		Permissions []string `json:"permissions"`
	}
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}

	u, err := h.userService.SetPermissions(c.UserContext(), claims, id, input.Permissions)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Permissions updated", u)
}

func (h *UserHandler) AssignAgency(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	var input struct {
		AgencyID uint `json:"agency_id" validate:"required"`
	}
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}

	u, err := h.userService.AssignAgency(c.UserContext(), claims, id, input.AgencyID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Agent assigned", u)
}

func (h *UserHandler) Delete(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	if err := h.userService.Delete(c.UserContext(), claims, id); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "User deleted", nil)
}
