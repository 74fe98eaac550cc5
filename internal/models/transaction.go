package models

import (
	"time"

	"relais/internal/commission"
)

// Transaction statuses
const (
	TransactionStatusPending   = "pending"
	TransactionStatusValidated = "validated"
	TransactionStatusRejected  = "rejected"
)

// Transaction is an operation executed by an agent and awaiting, or past,
// back-office validation.
type Transaction struct {
	ID                uint              `gorm:"primarykey" json:"id"`
	Reference         string            `gorm:"uniqueIndex;not null" json:"reference"`
	OperationTypeID   uint              `gorm:"not null;index" json:"operation_type_id"`
	OperationCode     string            `json:"operation_code"`
	OperationCategory string            `json:"operation_category"`
	AgentID           uint              `gorm:"not null;index" json:"agent_id"`
	AgencyID          *uint             `gorm:"index" json:"agency_id,omitempty"`
	PartnerID         *uint             `gorm:"index" json:"partner_id,omitempty"`
	ContractID        *uint             `json:"contract_id,omitempty"`
	Amount            float64           `gorm:"not null" json:"amount"`
	Fee               float64           `gorm:"not null;default:0" json:"fee"`
	CompanyCommission float64           `gorm:"not null;default:0" json:"company_commission"`
	PartnerCommission float64           `gorm:"not null;default:0" json:"partner_commission"`
	CommissionSource  commission.Source `json:"commission_source"`
	Fields            JSON              `gorm:"type:jsonb" json:"fields"`
	Status            string            `gorm:"not null;default:'pending';index" json:"status"`
	AssignedTo        *uint             `gorm:"index" json:"assigned_to,omitempty"`
	ValidatedBy       *uint             `json:"validated_by,omitempty"`
	ValidatedAt       *time.Time        `json:"validated_at,omitempty"`
	RejectionReason   string            `json:"rejection_reason,omitempty"`
	Currency          string            `gorm:"default:'XOF'" json:"currency"`
	CreatedAt         time.Time         `gorm:"index" json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// IsPending reports whether the transaction still awaits a decision.
func (t *Transaction) IsPending() bool {
	return t.Status == TransactionStatusPending
}

// Debited is what was taken from the balance owner at execution.
func (t *Transaction) Debited() float64 {
	return t.Amount + t.Fee
}
