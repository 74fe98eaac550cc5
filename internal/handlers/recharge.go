package handlers

import (
	"relais/internal/repositories"
	"relais/internal/services/recharge"
	"relais/internal/utils/pagination"
	"relais/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// MaxProofSize caps uploaded proof-of-payment documents.
const MaxProofSize = 5 << 20

type RechargeHandler struct {
	rechargeService recharge.Service
}

func NewRechargeHandler(rechargeService recharge.Service) *RechargeHandler {
	return &RechargeHandler{rechargeService: rechargeService}
}

// Create accepts JSON or a multipart form. The form's "proof" file is
// stored as the proof of payment.
func (h *RechargeHandler) Create(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}

	var input recharge.CreateInput
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}

	var proof *recharge.Proof
	if fh, err := c.FormFile("proof"); err == nil {
		if fh.Size > MaxProofSize {
			return response.Error(c, fiber.StatusRequestEntityTooLarge, "proof exceeds 5MB")
		}
		f, err := fh.Open()
		if err != nil {
			return response.BadRequest(c, "unreadable proof file")
		}
		defer f.Close()
		proof = &recharge.Proof{ContentType: fh.Header.Get(fiber.HeaderContentType), Body: f}
	}

	result, err := h.rechargeService.Create(c.UserContext(), claims, input, proof)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Recharge requested", result)
}

func (h *RechargeHandler) List(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}

	q := filters(c)
	filter := repositories.RechargeFilter{
		Status:    c.Query("status"),
		AgentID:   q.ID("agent_id"),
		PartnerID: q.ID("partner_id"),
		Method:    c.Query("payment_method"),
		From:      q.Time("from"),
		To:        q.Time("to"),
	}
	if err := q.Err(); err != nil {
		return response.FromError(c, err)
	}
	p := pagination.ParseFromRequest(c)

	reqs, total, err := h.rechargeService.List(c.UserContext(), claims, filter, p)
	if err != nil {
		return response.FromError(c, err)
	}
	p.Total = total
	return c.JSON(pagination.Response(p, reqs))
}

func (h *RechargeHandler) Get(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	req, err := h.rechargeService.Get(c.UserContext(), claims, id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Recharge retrieved", req)
}

func (h *RechargeHandler) Approve(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	req, err := h.rechargeService.Approve(c.UserContext(), claims, id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Recharge approved", req)
}

func (h *RechargeHandler) Reject(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	var input struct {
		Reason string `json:"reason" validate:"required,max=500"`
	}
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}

	req, err := h.rechargeService.Reject(c.UserContext(), claims, id, input.Reason)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Recharge rejected", req)
}
