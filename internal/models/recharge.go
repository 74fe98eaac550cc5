package models

import (
	"time"
)

// Recharge statuses
const (
	RechargeStatusPending  = "pending"
	RechargeStatusApproved = "approved"
	RechargeStatusRejected = "rejected"
)

// AgentRechargeRequest is a balance top-up requested by an agent.
type AgentRechargeRequest struct {
	ID                uint       `gorm:"primarykey" json:"id"`
	Reference         string     `gorm:"uniqueIndex;not null" json:"reference"`
	AgentID           uint       `gorm:"not null;index" json:"agent_id"`
	AgencyID          *uint      `gorm:"index" json:"agency_id,omitempty"`
	PartnerID         *uint      `gorm:"index" json:"partner_id,omitempty"`
	Amount            float64    `gorm:"not null" json:"amount"`
	PaymentMethodCode string     `gorm:"not null" json:"payment_method"`
	Fee               float64    `gorm:"not null;default:0" json:"fee"`
	NetAmount         float64    `gorm:"not null" json:"net_amount"`
	Status            string     `gorm:"not null;default:'pending';index" json:"status"`
	ProofPath         string     `json:"proof_path,omitempty"`
	GatewayReference  string     `json:"gateway_reference,omitempty"`
	Note              string     `json:"note,omitempty"`
	ProcessedBy       *uint      `json:"processed_by,omitempty"`
	ProcessedAt       *time.Time `json:"processed_at,omitempty"`
	RejectionReason   string     `json:"rejection_reason,omitempty"`
	CreatedAt         time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// IsPending reports whether the request still awaits a decision.
func (r *AgentRechargeRequest) IsPending() bool {
	return r.Status == RechargeStatusPending
}
