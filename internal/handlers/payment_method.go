package handlers

import (
	"strconv"

	"relais/internal/commission"
	"relais/internal/models"
	"relais/internal/repositories"
	"relais/internal/services/fee"
	"relais/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// PaymentMethodHandler exposes the recharge funding channels.
type PaymentMethodHandler struct {
	methods    repositories.PaymentMethodRepository
	feeService fee.Service
}

func NewPaymentMethodHandler(methods repositories.PaymentMethodRepository, feeService fee.Service) *PaymentMethodHandler {
	return &PaymentMethodHandler{methods: methods, feeService: feeService}
}

// List shows active methods; operation writers also see inactive ones.
func (h *PaymentMethodHandler) List(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}

	activeOnly := !claims.HasPermission(models.PermissionOperationWrite)
	methods, err := h.methods.List(c.UserContext(), activeOnly)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Payment methods retrieved", methods)
}

type paymentMethodRequest struct {
	Code            string            `json:"code" validate:"required,max=40"`
	Name            string            `json:"name" validate:"required,max=120"`
	FeeSchedule     commission.Config `json:"fee_schedule"`
	RequiresGateway bool              `json:"requires_gateway"`
	RequiresProof   bool              `json:"requires_proof"`
	Active          *bool             `json:"active"`
}

// Upsert creates or replaces the method with the given code.
func (h *PaymentMethodHandler) Upsert(c *fiber.Ctx) error {
	var input paymentMethodRequest
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}

	commission.SortTiers(input.FeeSchedule.Tiers)
	if err := commission.ValidateConfig(input.FeeSchedule); err != nil {
		return response.ValidationError(c, map[string]string{"fee_schedule": err.Error()})
	}

	method := &models.PaymentMethod{
		Code:            input.Code,
		Name:            input.Name,
		FeeSchedule:     input.FeeSchedule,
		RequiresGateway: input.RequiresGateway,
		RequiresProof:   input.RequiresProof,
		Active:          input.Active == nil || *input.Active,
	}
	if err := h.methods.Upsert(c.UserContext(), method); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Payment method saved", method)
}

// Quote previews the fee and the credited amount for ?amount= on a method.
func (h *PaymentMethodHandler) Quote(c *fiber.Ctx) error {
	amount, err := strconv.ParseFloat(c.Query("amount"), 64)
	if err != nil {
		return response.BadRequest(c, "amount must be a number")
	}

	quote, err := h.feeService.PaymentMethodFee(c.UserContext(), c.Params("code"), amount)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Fee preview", quote)
}
