package handlers

import (
	"strconv"

	"relais/internal/repositories"
	"relais/internal/services/fee"
	"relais/internal/services/operation"
	"relais/internal/utils/pagination"
	"relais/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type OperationHandler struct {
	operationService operation.Service
	feeService       fee.Service
}

func NewOperationHandler(operationService operation.Service, feeService fee.Service) *OperationHandler {
	return &OperationHandler{
		operationService: operationService,
		feeService:       feeService,
	}
}

func (h *OperationHandler) Create(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}

	var input operation.Input
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}

	op, err := h.operationService.Create(c.UserContext(), claims, input)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Operation type created", op)
}

func (h *OperationHandler) List(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}

	p := pagination.ParseFromRequest(c)
	ops, total, err := h.operationService.List(c.UserContext(), claims,
		repositories.OperationTypeFilter{Category: c.Query("category"), Status: c.Query("status")}, p)
	if err != nil {
		return response.FromError(c, err)
	}
	p.Total = total
	return c.JSON(pagination.Response(p, ops))
}

func (h *OperationHandler) Get(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	op, err := h.operationService.Get(c.UserContext(), claims, id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Operation type retrieved", op)
}

func (h *OperationHandler) Update(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	var input operation.UpdateInput
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}

	op, err := h.operationService.Update(c.UserContext(), claims, id, input)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Operation type updated", op)
}

func (h *OperationHandler) Delete(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	if err := h.operationService.Delete(c.UserContext(), claims, id); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Operation type deleted", nil)
}

// PreviewFee quotes the fee the caller would pay on ?amount= for the
// operation type in the route.
func (h *OperationHandler) PreviewFee(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	amount, err := strconv.ParseFloat(c.Query("amount"), 64)
	if err != nil {
		return response.BadRequest(c, "amount must be a number")
	}
	quote, err := h.feeService.Preview(c.UserContext(), claims.UserID, id, amount)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Fee preview", quote)
}
