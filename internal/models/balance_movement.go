package models

import "time"

// Balance owner kinds
const (
	OwnerAgency = "agency"
	OwnerUser   = "user"
)

// Balance kinds
const (
	BalancePrincipal  = "principal"
	BalanceRevenue    = "revenue"
	BalanceCommission = "commission"
)

// BalanceMovement is the audit row written for every balance change.
type BalanceMovement struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	OwnerKind     string    `gorm:"not null;index:idx_movement_owner" json:"owner_kind"`
	OwnerID       uint      `gorm:"not null;index:idx_movement_owner" json:"owner_id"`
	BalanceKind   string    `gorm:"not null" json:"balance_kind"`
	Delta         float64   `gorm:"not null" json:"delta"`
	BalanceBefore float64   `gorm:"not null" json:"balance_before"`
	BalanceAfter  float64   `gorm:"not null" json:"balance_after"`
	Reference     string    `gorm:"index" json:"reference"`
	Reason        string    `json:"reason"`
	ActorID       *uint     `json:"actor_id,omitempty"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
}
