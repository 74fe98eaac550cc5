package transaction

import (
	"net/http"

	apperrors "relais/internal/errors"
)

var (
	ErrInvalidStatusTransition = &apperrors.DomainError{
		Code:    "TRANSACTION_INVALID_TRANSITION",
		Message: "transaction is no longer pending",
		Status:  http.StatusConflict,
	}
	ErrAgentInactive = &apperrors.DomainError{
		Code:    "AGENT_INACTIVE",
		Message: "agent account is not active",
		Status:  http.StatusForbidden,
	}
	ErrAmountOutOfRange = &apperrors.DomainError{
		Code:    "TRANSACTION_AMOUNT_RANGE",
		Message: "amount is outside the allowed range",
		Status:  http.StatusBadRequest,
	}
	ErrInvalidAssignee = &apperrors.DomainError{
		Code:    "TRANSACTION_INVALID_ASSIGNEE",
		Message: "assignee cannot validate transactions",
		Status:  http.StatusUnprocessableEntity,
	}
	ErrAssignedElsewhere = &apperrors.DomainError{
		Code:    "TRANSACTION_ASSIGNED_ELSEWHERE",
		Message: "transaction is assigned to another validator",
		Status:  http.StatusForbidden,
	}
)
