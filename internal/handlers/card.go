package handlers

import (
	"relais/internal/repositories"
	"relais/internal/services/card"
	"relais/internal/utils/pagination"
	"relais/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// MaxBatchSize caps uploaded card batch files.
const MaxBatchSize = 10 << 20

type CardHandler struct {
	cardService card.Service
}

func NewCardHandler(cardService card.Service) *CardHandler {
	return &CardHandler{cardService: cardService}
}

// Import reads a CSV batch from the multipart "file" field.
func (h *CardHandler) Import(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "file is required")
	}
	if fh.Size > MaxBatchSize {
		return response.Error(c, fiber.StatusRequestEntityTooLarge, "batch file exceeds 10MB")
	}
	f, err := fh.Open()
	if err != nil {
		return response.BadRequest(c, "unreadable batch file")
	}
	defer f.Close()

	report, err := h.cardService.ImportBatch(c.UserContext(), claims, c.FormValue("batch_ref"), f)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Batch imported", report)
}

func cardFilter(c *fiber.Ctx) (repositories.CardFilter, error) {
	q := filters(c)
	filter := repositories.CardFilter{
		Status:    c.Query("status"),
		BatchRef:  c.Query("batch_ref"),
		AgentID:   q.ID("agent_id"),
		FaceValue: q.Amount("face_value"),
	}
	return filter, q.Err()
}

func (h *CardHandler) List(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}

	filter, err := cardFilter(c)
	if err != nil {
		return response.FromError(c, err)
	}
	p := pagination.ParseFromRequest(c)
	cards, total, err := h.cardService.List(c.UserContext(), claims, filter, p)
	if err != nil {
		return response.FromError(c, err)
	}
	p.Total = total
	return c.JSON(pagination.Response(p, cards))
}

func (h *CardHandler) Stats(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}

	filter, err := cardFilter(c)
	if err != nil {
		return response.FromError(c, err)
	}
	stats, err := h.cardService.Stats(c.UserContext(), claims, filter)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Card stock", stats)
}

func (h *CardHandler) Assign(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}

	var input card.AssignInput
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}

	cards, err := h.cardService.Assign(c.UserContext(), claims, input)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Cards assigned", cards)
}

func (h *CardHandler) Sell(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	sale, err := h.cardService.Sell(c.UserContext(), claims, id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Card sold", sale)
}

func (h *CardHandler) Block(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	blocked, err := h.cardService.Block(c.UserContext(), claims, id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Card blocked", blocked)
}
