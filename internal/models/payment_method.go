package models

import (
	"time"

	"relais/internal/commission"
)

// PaymentMethod is a channel agents use to fund recharges, with its own
// fee schedule.
type PaymentMethod struct {
	ID              uint              `gorm:"primarykey" json:"id"`
	Code            string            `gorm:"uniqueIndex;not null" json:"code"`
	Name            string            `gorm:"not null" json:"name"`
	FeeSchedule     commission.Config `gorm:"type:jsonb;serializer:json" json:"fee_schedule"`
	RequiresGateway bool              `gorm:"default:false" json:"requires_gateway"`
	RequiresProof   bool              `gorm:"default:false" json:"requires_proof"`
	Active          bool              `gorm:"default:true" json:"active"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}
