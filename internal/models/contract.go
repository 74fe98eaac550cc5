package models

import (
	"time"

	"relais/internal/commission"
)

// Contract statuses
const (
	ContractStatusDraft    = "draft"
	ContractStatusActive   = "active"
	ContractStatusInactive = "inactive"
)

// Contract overrides the default commission rules for one partner.
// Exceptions are evaluated in slice order.
type Contract struct {
	ID                uint                   `gorm:"primarykey" json:"id"`
	PartnerID         uint                   `gorm:"not null;index" json:"partner_id"`
	Name              string                 `gorm:"not null" json:"name"`
	Status            string                 `gorm:"not null;default:'draft';index" json:"status"`
	DefaultCommission commission.Config      `gorm:"type:jsonb;serializer:json" json:"default_commission"`
	Exceptions        []commission.Exception `gorm:"type:jsonb;serializer:json" json:"exceptions"`
	StartsAt          *time.Time             `json:"starts_at,omitempty"`
	EndsAt            *time.Time             `json:"ends_at,omitempty"`
	CreatedBy         uint                   `json:"created_by"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
}

// CommissionView projects the contract onto the resolver's input.
func (c *Contract) CommissionView() *commission.Contract {
	if c == nil {
		return nil
	}
	return &commission.Contract{
		ID:         c.ID,
		Default:    c.DefaultCommission,
		Exceptions: c.Exceptions,
	}
}
