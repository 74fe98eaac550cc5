package recharge

import (
	"net/http"

	apperrors "relais/internal/errors"
)

var (
	ErrInvalidStatusTransition = &apperrors.DomainError{
		Code:    "RECHARGE_INVALID_TRANSITION",
		Message: "recharge request is no longer pending",
		Status:  http.StatusConflict,
	}
	ErrProofRequired = &apperrors.DomainError{
		Code:    "RECHARGE_PROOF_REQUIRED",
		Message: "this payment method requires a proof of payment",
		Status:  http.StatusBadRequest,
	}
	ErrPaymentIncomplete = &apperrors.DomainError{
		Code:    "RECHARGE_PAYMENT_INCOMPLETE",
		Message: "card payment has not succeeded yet",
		Status:  http.StatusUnprocessableEntity,
	}
	ErrAgentInactive = &apperrors.DomainError{
		Code:    "AGENT_INACTIVE",
		Message: "agent account is not active",
		Status:  http.StatusForbidden,
	}
)
