package errors

import "net/http"

var (
	ErrInsufficientBalance = &DomainError{
		Code:    "INSUFFICIENT_BALANCE",
		Message: "insufficient balance",
		Status:  http.StatusUnprocessableEntity,
	}
	ErrInvalidAmount = &DomainError{
		Code:    "INVALID_AMOUNT",
		Message: "invalid amount",
		Status:  http.StatusBadRequest,
	}
	ErrBalanceOwnerNotFound = &DomainError{
		Code:    "BALANCE_OWNER_NOT_FOUND",
		Message: "balance owner not found",
		Status:  http.StatusNotFound,
	}
)
