package models

import (
	"time"
)

// Partner statuses
const (
	PartnerStatusActive    = "active"
	PartnerStatusSuspended = "suspended"
)

// Partner is a reseller organization; its agents act under it.
type Partner struct {
	ID          uint    `gorm:"primarykey" json:"id"`
	Name        string  `gorm:"not null" json:"name"`
	OwnerUserID uint    `gorm:"uniqueIndex;not null" json:"owner_user_id"`
	Phone       string  `json:"phone"`
	Address     string  `json:"address"`
	Status      string  `gorm:"not null;default:'active'" json:"status"`
	Agency      *Agency `gorm:"foreignKey:PartnerID" json:"agency,omitempty"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
