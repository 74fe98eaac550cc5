package handlers

import (
	"relais/internal/services/balance"
	"relais/internal/utils/pagination"
	"relais/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type BalanceHandler struct {
	balanceService balance.Service
}

func NewBalanceHandler(balanceService balance.Service) *BalanceHandler {
	return &BalanceHandler{balanceService: balanceService}
}

// Mine returns the balances the caller operates on.
func (h *BalanceHandler) Mine(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}

	summary, err := h.balanceService.Summary(c.UserContext(), claims.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Balance retrieved", summary)
}

// MyHistory lists movements on the balance the caller operates on.
func (h *BalanceHandler) MyHistory(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}

	summary, err := h.balanceService.Summary(c.UserContext(), claims.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return h.history(c, summary.Owner)
}

// History lists movements of /balances/:owner/:id.
func (h *BalanceHandler) History(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	return h.history(c, balance.Owner{Kind: c.Params("owner"), ID: id})
}

func (h *BalanceHandler) history(c *fiber.Ctx, owner balance.Owner) error {
	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}

	p := pagination.ParseFromRequest(c)
	movements, total, err := h.balanceService.History(c.UserContext(), claims, owner, p)
	if err != nil {
		return response.FromError(c, err)
	}
	p.Total = total
	return c.JSON(pagination.Response(p, movements))
}

type adjustRequest struct {
	OwnerKind string  `json:"owner_kind" validate:"required,oneof=agency user"`
	OwnerID   uint    `json:"owner_id" validate:"required"`
	Balance   string  `json:"balance" validate:"required,oneof=principal revenue commission"`
	Delta     float64 `json:"delta" validate:"required"`
	Reason    string  `json:"reason" validate:"required,max=500"`
}

func (h *BalanceHandler) Adjust(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}

	var input adjustRequest
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}

	movement, err := h.balanceService.Adjust(c.UserContext(), claims,
		balance.Owner{Kind: input.OwnerKind, ID: input.OwnerID}, input.Balance, input.Delta, input.Reason)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Balance adjusted", movement)
}
