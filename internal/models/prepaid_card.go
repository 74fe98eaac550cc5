package models

import (
	"strings"
	"time"
)

// Prepaid card statuses
const (
	CardStatusAvailable = "available"
	CardStatusAssigned  = "assigned"
	CardStatusSold      = "sold"
	CardStatusBlocked   = "blocked"
)

// PrepaidCard is one unit of prepaid-card inventory.
type PrepaidCard struct {
	ID            uint       `gorm:"primarykey" json:"id"`
	Serial        string     `gorm:"uniqueIndex;not null" json:"serial"`
	PIN           string     `gorm:"not null" json:"pin"`
	FaceValue     float64    `gorm:"not null;index" json:"face_value"`
	BatchRef      string     `gorm:"index" json:"batch_ref"`
	Status        string     `gorm:"not null;default:'available';index" json:"status"`
	AgentID       *uint      `gorm:"index" json:"agent_id,omitempty"`
	AssignedAt    *time.Time `json:"assigned_at,omitempty"`
	SoldAt        *time.Time `json:"sold_at,omitempty"`
	SaleReference string     `json:"sale_reference,omitempty"`
	ImportedBy    uint       `json:"imported_by"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Masked returns a copy whose PIN only shows its last two characters.
func (c PrepaidCard) Masked() PrepaidCard {
	if n := len(c.PIN); n > 2 {
		c.PIN = strings.Repeat("*", n-2) + c.PIN[n-2:]
	} else {
		c.PIN = strings.Repeat("*", n)
	}
	return c
}

// CardStats aggregates inventory per status.
type CardStats struct {
	Status    string  `json:"status"`
	Count     int64   `json:"count"`
	FaceValue float64 `json:"face_value"`
}
