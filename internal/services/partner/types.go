package partner

import (
	"time"

	"relais/internal/commission"
)

type CreatePartnerInput struct {
	Name        string `json:"name" validate:"required,max=120"`
	OwnerUserID uint   `json:"owner_user_id" validate:"required"`
	Phone       string `json:"phone" validate:"omitempty,phone"`
	Address     string `json:"address" validate:"max=255"`
	AgencyName  string `json:"agency_name" validate:"max=120"`
}

type ContractInput struct {
	PartnerID         uint                   `json:"partner_id" validate:"required"`
	Name              string                 `json:"name" validate:"required,max=120"`
	DefaultCommission commission.Config      `json:"default_commission"`
	Exceptions        []commission.Exception `json:"exceptions"`
	StartsAt          *time.Time             `json:"starts_at"`
	EndsAt            *time.Time             `json:"ends_at"`
}

// ContractUpdate replaces the editable parts of a contract. Nil fields are
// left untouched.
type ContractUpdate struct {
	Name              *string                 `json:"name" validate:"omitempty,max=120"`
	DefaultCommission *commission.Config      `json:"default_commission"`
	Exceptions        *[]commission.Exception `json:"exceptions"`
	StartsAt          *time.Time              `json:"starts_at"`
	EndsAt            *time.Time              `json:"ends_at"`
}
