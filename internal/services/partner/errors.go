package partner

import (
	"net/http"

	apperrors "relais/internal/errors"
)

var (
	ErrOwnerNotPartner = &apperrors.DomainError{
		Code:    "PARTNER_OWNER_ROLE",
		Message: "owner must be a user with the partner role",
		Status:  http.StatusBadRequest,
	}
	ErrOwnerAlreadyLinked = &apperrors.DomainError{
		Code:    "PARTNER_OWNER_LINKED",
		Message: "owner already belongs to a partner",
		Status:  http.StatusConflict,
	}
	ErrActiveContractExists = &apperrors.DomainError{
		Code:    "CONTRACT_ACTIVE_EXISTS",
		Message: "partner already has an active contract; confirm to replace it",
		Status:  http.StatusConflict,
	}
	ErrContractExpired = &apperrors.DomainError{
		Code:    "CONTRACT_EXPIRED",
		Message: "contract validity period has ended",
		Status:  http.StatusUnprocessableEntity,
	}
	ErrContractNotEditable = &apperrors.DomainError{
		Code:    "CONTRACT_NOT_EDITABLE",
		Message: "inactive contracts cannot be edited",
		Status:  http.StatusConflict,
	}
	ErrExceptionIndex = &apperrors.DomainError{
		Code:    "CONTRACT_EXCEPTION_INDEX",
		Message: "exception index out of range",
		Status:  http.StatusBadRequest,
	}
	ErrInvalidOrder = &apperrors.DomainError{
		Code:    "CONTRACT_INVALID_ORDER",
		Message: "order must be a permutation of the current exceptions",
		Status:  http.StatusBadRequest,
	}
)
