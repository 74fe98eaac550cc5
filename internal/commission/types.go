// Package commission resolves which fee schedule applies to an operation and
// evaluates it.
//
// A schedule is chosen by precedence: a contract exception targeting the
// operation itself, then a contract exception targeting the operation's
// category, then the operation type's own schedule, then the contract's
// default schedule. The computed fee is split between the company and the
// partner using the chosen schedule's company share. All amounts are rounded
// to whole currency units.
package commission

// Type is the kind of fee schedule.
type Type string

const (
	TypeNone       Type = "none"
	TypeFixed      Type = "fixed"
	TypePercentage Type = "percentage"
	TypeTiers      Type = "tiers"
)

// Tier is a banded rule. To == 0 leaves the band open-ended.
type Tier struct {
	From  float64 `json:"from"`
	To    float64 `json:"to"`
	Type  Type    `json:"type"`
	Value float64 `json:"value"`
}

// Contains reports whether amount falls in [From, To].
func (t Tier) Contains(amount float64) bool {
	if amount < t.From {
		return false
	}
	return t.To == 0 || amount <= t.To
}

// Config describes a fee schedule and how its fee is shared.
type Config struct {
	Type                Type    `json:"type"`
	Amount              float64 `json:"amount,omitempty"`
	Rate                float64 `json:"rate,omitempty"`
	Tiers               []Tier  `json:"tiers,omitempty"`
	CompanySharePercent float64 `json:"company_share_percent"`
}

// IsSet reports whether the config charges anything at all.
func (c Config) IsSet() bool {
	return c.Type != "" && c.Type != TypeNone
}

// TargetType selects what a contract exception matches on.
type TargetType string

const (
	TargetService  TargetType = "service"
	TargetCategory TargetType = "category"
)

// Exception overrides the schedule for one service or a whole category.
type Exception struct {
	TargetType TargetType `json:"target_type"`
	Target     string     `json:"target"`
	Label      string     `json:"label,omitempty"`
	Config     Config     `json:"config"`
}

// Source records which rule produced the applied schedule.
type Source string

const (
	SourceServiceException  Source = "service_exception"
	SourceCategoryException Source = "category_exception"
	SourceOperationType     Source = "operation_type"
	SourceContractDefault   Source = "contract_default"
	SourceNone              Source = "none"
)

// Operation is the view of an operation type the resolver needs.
type Operation struct {
	ID       uint
	Code     string
	Category string
	Config   Config
}

// Contract is the view of a partner contract the resolver needs.
type Contract struct {
	ID         uint
	Default    Config
	Exceptions []Exception
}

// Result is a fully evaluated fee.
type Result struct {
	Amount       float64 `json:"amount"`
	Fee          float64 `json:"fee"`
	CompanyShare float64 `json:"company_share"`
	PartnerShare float64 `json:"partner_share"`
	Source       Source  `json:"source"`
	Config       Config  `json:"config"`
}
