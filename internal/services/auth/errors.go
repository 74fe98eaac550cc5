package auth

import (
	"net/http"

	apperrors "relais/internal/errors"
)

var (
	ErrInvalidCredentials = apperrors.New("INVALID_CREDENTIALS", "invalid credentials", http.StatusUnauthorized)
	ErrAccountLocked      = apperrors.New("ACCOUNT_LOCKED", "account temporarily locked after repeated failures", http.StatusTooManyRequests)
	ErrAccountInactive    = apperrors.New("ACCOUNT_INACTIVE", "account is not active", http.StatusForbidden)
	ErrInvalidToken       = apperrors.New("INVALID_TOKEN", "invalid or expired token", http.StatusUnauthorized)
	ErrSessionExpired     = apperrors.New("SESSION_EXPIRED", "session expired, please sign in again", http.StatusUnauthorized)
	ErrWeakPassword       = apperrors.New("WEAK_PASSWORD", "password must be at least 8 characters and contain a special character", http.StatusBadRequest)
)
