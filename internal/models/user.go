package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Roles
const (
	RoleAgent        = "agent"
	RolePartner      = "partner"
	RoleAdminGeneral = "admin_general"
	RoleSousAdmin    = "sous_admin"
	RoleDeveloper    = "developer"
)

// User statuses
const (
	UserStatusActive    = "active"
	UserStatusSuspended = "suspended"
	UserStatusPending   = "pending"
)

// ValidRoles lists every role a user can hold.
var ValidRoles = []string{RoleAgent, RolePartner, RoleAdminGeneral, RoleSousAdmin, RoleDeveloper}

type User struct {
	gorm.Model
	Email               string         `gorm:"uniqueIndex;not null" json:"email"`
	Password            string         `gorm:"not null" json:"-"`
	Name                string         `gorm:"not null" json:"name"`
	Phone               string         `gorm:"uniqueIndex;not null" json:"phone"`
	Role                string         `gorm:"not null;index;default:'agent'" json:"role"`
	Status              string         `gorm:"not null;default:'active'" json:"status"`
	PartnerID           *uint          `gorm:"index" json:"partner_id,omitempty"`
	AgencyID            *uint          `gorm:"index" json:"agency_id,omitempty"`
	Balance             float64        `gorm:"not null;default:0" json:"balance"`
	CommissionBalance   float64        `gorm:"not null;default:0" json:"commission_balance"`
	Permissions         pq.StringArray `gorm:"type:text[]" json:"permissions,omitempty"`
	FCMToken            string         `json:"-"`
	LastLoginAt         *time.Time     `json:"last_login_at,omitempty"`
	LastLoginIP         string         `json:"-"`
	FailedLoginAttempts int            `gorm:"default:0" json:"-"`
	AccountLockoutUntil *time.Time     `json:"-"`
	TokenVersion        int            `gorm:"default:1" json:"-"`
	CreatedBy           *uint          `json:"created_by,omitempty"`
}

// IsAdmin reports whether the user belongs to the back-office staff.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdminGeneral || u.Role == RoleSousAdmin
}

// IsActive reports whether the user may log in and operate.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// IsValidRole reports whether role is one of ValidRoles.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
