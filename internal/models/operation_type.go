package models

import (
	"time"

	"relais/internal/commission"

	"github.com/lib/pq"
)

// Operation type statuses
const (
	OperationStatusActive   = "active"
	OperationStatusDisabled = "disabled"
)

// Form field kinds
const (
	FieldText   = "text"
	FieldNumber = "number"
	FieldPhone  = "phone"
	FieldEmail  = "email"
	FieldSelect = "select"
)

// FormField describes one input of an operation's dynamic form.
type FormField struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Type     string   `json:"type"`
	Required bool     `json:"required"`
	Options  []string `json:"options,omitempty"`
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	Pattern  string   `json:"pattern,omitempty"`
}

// OperationType is a kind of transaction agents can execute.
type OperationType struct {
	ID               uint              `gorm:"primarykey" json:"id"`
	Code             string            `gorm:"uniqueIndex;not null" json:"code"`
	Name             string            `gorm:"not null" json:"name"`
	Category         string            `gorm:"index" json:"category"`
	Description      string            `json:"description"`
	CommissionConfig commission.Config `gorm:"type:jsonb;serializer:json" json:"commission_config"`
	FieldSchema      []FormField       `gorm:"type:jsonb;serializer:json" json:"field_schema"`
	AllowedRoles     pq.StringArray    `gorm:"type:text[]" json:"allowed_roles"`
	Status           string            `gorm:"not null;default:'active'" json:"status"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// CommissionView projects the operation type onto the resolver's input.
func (o *OperationType) CommissionView() commission.Operation {
	return commission.Operation{
		ID:       o.ID,
		Code:     o.Code,
		Category: o.Category,
		Config:   o.CommissionConfig,
	}
}

// AllowsRole reports whether role may execute this operation. An empty
// list allows agents only.
func (o *OperationType) AllowsRole(role string) bool {
	if len(o.AllowedRoles) == 0 {
		return role == RoleAgent
	}
	for _, r := range o.AllowedRoles {
		if r == role {
			return true
		}
	}
	return false
}
