package handlers

import (
	"relais/internal/repositories"
	"relais/internal/services/transaction"
	"relais/internal/utils/pagination"
	"relais/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type TransactionHandler struct {
	transactionService transaction.Service
}

func NewTransactionHandler(transactionService transaction.Service) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// Execute records an operation performed by the calling agent. The
// transaction stays pending until a validator decides on it.
func (h *TransactionHandler) Execute(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}

	var input transaction.ExecuteInput
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}

	tx, err := h.transactionService.Execute(c.UserContext(), claims, input)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Transaction submitted", tx)
}

func (h *TransactionHandler) List(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}

	q := filters(c)
	filter := repositories.TransactionFilter{
		Status:          c.Query("status"),
		AgentID:         q.ID("agent_id"),
		PartnerID:       q.ID("partner_id"),
		OperationTypeID: q.ID("operation_type_id"),
		AssignedTo:      q.ID("assigned_to"),
		From:            q.Time("from"),
		To:              q.Time("to"),
	}
	if err := q.Err(); err != nil {
		return response.FromError(c, err)
	}
	p := pagination.ParseFromRequest(c)

	txs, total, err := h.transactionService.List(c.UserContext(), claims, filter, p)
	if err != nil {
		return response.FromError(c, err)
	}
	p.Total = total
	return c.JSON(pagination.Response(p, txs))
}

func (h *TransactionHandler) Get(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	tx, err := h.transactionService.Get(c.UserContext(), claims, id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Transaction retrieved", tx)
}

func (h *TransactionHandler) Validate(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	tx, err := h.transactionService.Validate(c.UserContext(), claims, id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Transaction validated", tx)
}

func (h *TransactionHandler) Reject(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	var input transaction.RejectInput
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}

	tx, err := h.transactionService.Reject(c.UserContext(), claims, id, input.Reason)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Transaction rejected", tx)
}

func (h *TransactionHandler) Reassign(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return response.FromError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	var input transaction.ReassignInput
	if err := bind(c, &input); err != nil {
		return response.FromError(c, err)
	}

	tx, err := h.transactionService.Reassign(c.UserContext(), claims, id, input.AssigneeID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Transaction reassigned", tx)
}
