package repositories

import "time"

type UserFilter struct {
	Role      string
	Status    string
	PartnerID *uint
	AgencyID  *uint
	Search    string
}

type PartnerFilter struct {
	Status string
	Search string
}

type OperationTypeFilter struct {
	Category string
	Status   string
}

// TransactionFilter narrows transaction listings. Nil pointers match all.
type TransactionFilter struct {
	Status          string
	AgentID         *uint
	PartnerID       *uint
	OperationTypeID *uint
	AssignedTo      *uint
	From            *time.Time
	To              *time.Time
}

type RechargeFilter struct {
	Status    string
	AgentID   *uint
	PartnerID *uint
	Method    string
	From      *time.Time
	To        *time.Time
}

type CardFilter struct {
	Status    string
	BatchRef  string
	AgentID   *uint
	FaceValue float64
}

// TransactionTotals aggregates a filtered set of transactions.
type TransactionTotals struct {
	Count             int64
	Volume            float64
	Fees              float64
	CompanyCommission float64
	PartnerCommission float64
}
