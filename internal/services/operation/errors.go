package operation

import (
	"net/http"

	apperrors "relais/internal/errors"
)

var (
	ErrCodeTaken = &apperrors.DomainError{
		Code:    "OPERATION_CODE_TAKEN",
		Message: "an operation type with this code already exists",
		Status:  http.StatusConflict,
	}
	ErrOperationDisabled = &apperrors.DomainError{
		Code:    "OPERATION_DISABLED",
		Message: "operation type is disabled",
		Status:  http.StatusUnprocessableEntity,
	}
	ErrRoleNotAllowed = &apperrors.DomainError{
		Code:    "OPERATION_ROLE_NOT_ALLOWED",
		Message: "operation type is not available for this role",
		Status:  http.StatusForbidden,
	}
)

var ErrOperationInUse = &apperrors.DomainError{
	Code:    "OPERATION_IN_USE",
	Message: "operation type has transactions; disable it instead",
	Status:  http.StatusConflict,
}

var ErrInvalidRole = &apperrors.DomainError{
	Code:    "OPERATION_INVALID_ROLE",
	Message: "allowed_roles contains an unknown role",
	Status:  http.StatusBadRequest,
}
