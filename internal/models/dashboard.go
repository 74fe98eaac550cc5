package models

// AdminDashboard is the back-office overview.
type AdminDashboard struct {
	UsersByRole            map[string]int64 `json:"users_by_role"`
	PendingTransactions    int64            `json:"pending_transactions"`
	PendingRecharges       int64            `json:"pending_recharges"`
	VolumeToday            float64          `json:"volume_today"`
	VolumeMonth            float64          `json:"volume_month"`
	CompanyCommissionMonth float64          `json:"company_commission_month"`
	PartnerCommissionMonth float64          `json:"partner_commission_month"`
	AvailableCards         int64            `json:"available_cards"`
}

// PartnerDashboard summarises one partner's network.
type PartnerDashboard struct {
	PartnerID              uint          `json:"partner_id"`
	Agents                 int64         `json:"agents"`
	PrincipalBalance       float64       `json:"principal_balance"`
	RevenueBalance         float64       `json:"revenue_balance"`
	VolumeMonth            float64       `json:"volume_month"`
	PartnerCommissionMonth float64       `json:"partner_commission_month"`
	PendingTransactions    int64         `json:"pending_transactions"`
	RecentTransactions     []Transaction `json:"recent_transactions"`
}

// AgentDashboard is what an agent sees on login.
type AgentDashboard struct {
	Balance             float64       `json:"balance"`
	BalanceOwner        string        `json:"balance_owner"`
	CommissionBalance   float64       `json:"commission_balance"`
	PendingTransactions int64         `json:"pending_transactions"`
	PendingRecharges    int64         `json:"pending_recharges"`
	AssignedCards       int64         `json:"assigned_cards"`
	RecentTransactions  []Transaction `json:"recent_transactions"`
}
