package user

import (
	"net/http"

	apperrors "relais/internal/errors"
)

var (
	ErrEmailTaken        = apperrors.New("EMAIL_TAKEN", "email already taken", http.StatusConflict)
	ErrPhoneTaken        = apperrors.New("PHONE_TAKEN", "phone number already taken", http.StatusConflict)
	ErrRoleNotAllowed    = apperrors.New("ROLE_NOT_ALLOWED", "you cannot manage users with this role", http.StatusForbidden)
	ErrInvalidRole       = apperrors.New("INVALID_ROLE", "unknown role", http.StatusBadRequest)
	ErrNotGrantable      = apperrors.New("PERMISSION_NOT_GRANTABLE", "permission cannot be granted to a sub-admin", http.StatusBadRequest)
	ErrNotSousAdmin      = apperrors.New("NOT_SOUS_ADMIN", "permissions can only be set on sub-admins", http.StatusBadRequest)
	ErrNotAgent          = apperrors.New("NOT_AGENT", "only agents can be attached to an agency", http.StatusBadRequest)
	ErrSelfAction        = apperrors.New("SELF_ACTION", "you cannot perform this action on your own account", http.StatusBadRequest)
	ErrInvalidUserStatus = apperrors.New("INVALID_USER_STATUS", "unknown user status", http.StatusBadRequest)
)
