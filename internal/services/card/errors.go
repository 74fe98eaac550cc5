package card

import (
	"net/http"

	apperrors "relais/internal/errors"
)

var (
	ErrEmptyBatch = &apperrors.DomainError{
		Code:    "CARD_EMPTY_BATCH",
		Message: "the file contains no valid cards",
		Status:  http.StatusBadRequest,
	}
	ErrNotEnoughCards = &apperrors.DomainError{
		Code:    "CARD_STOCK_SHORT",
		Message: "not enough available cards of this face value",
		Status:  http.StatusConflict,
	}
	ErrCardNotAssigned = &apperrors.DomainError{
		Code:    "CARD_NOT_ASSIGNED",
		Message: "card is not assigned to this agent",
		Status:  http.StatusConflict,
	}
	ErrCardSold = &apperrors.DomainError{
		Code:    "CARD_SOLD",
		Message: "card has already been sold",
		Status:  http.StatusConflict,
	}
	ErrNotAgent = &apperrors.DomainError{
		Code:    "CARD_NOT_AGENT",
		Message: "cards can only be assigned to active agents",
		Status:  http.StatusUnprocessableEntity,
	}
)
