package models

import "github.com/golang-jwt/jwt/v5"

type UserClaims struct {
	jwt.RegisteredClaims
	UserID       uint     `json:"user_id"`
	Email        string   `json:"email"`
	Role         string   `json:"role"`
	PartnerID    *uint    `json:"partner_id,omitempty"`
	AgencyID     *uint    `json:"agency_id,omitempty"`
	Permissions  []string `json:"permissions"`
	TokenVersion int      `json:"token_version"`
}

// HasPermission checks if the claims include a specific permission
func (c *UserClaims) HasPermission(permission string) bool {
	for _, p := range c.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the caller is back-office staff.
func (c *UserClaims) IsAdmin() bool {
	return c.Role == RoleAdminGeneral || c.Role == RoleSousAdmin
}

// ClaimsFor builds the token claims for u.
func ClaimsFor(u *User) *UserClaims {
	return &UserClaims{
		UserID:       u.ID,
		Email:        u.Email,
		Role:         u.Role,
		PartnerID:    u.PartnerID,
		AgencyID:     u.AgencyID,
		Permissions:  GetDefaultPermissions(u.Role, u.Permissions...),
		TokenVersion: u.TokenVersion,
	}
}
