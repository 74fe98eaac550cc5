package models

import (
	"time"
)

// Agency holds the balance pair shared by a partner's agents.
type Agency struct {
	ID               uint    `gorm:"primarykey" json:"id"`
	PartnerID        uint    `gorm:"uniqueIndex;not null" json:"partner_id"`
	Name             string  `gorm:"not null" json:"name"`
	PrincipalBalance float64 `gorm:"not null;default:0" json:"principal_balance"`
	RevenueBalance   float64 `gorm:"not null;default:0" json:"revenue_balance"`
	Currency         string  `gorm:"default:'XOF'" json:"currency"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
