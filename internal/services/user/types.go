package user

type CreateInput struct {
	Email       string   `json:"email" validate:"required,email"`
	Phone       string   `json:"phone" validate:"required,phone"`
	Name        string   `json:"name" validate:"required,max=120"`
	Password    string   `json:"password" validate:"required,min=8,max=72"`
	Role        string   `json:"role" validate:"required"`
	PartnerID   *uint    `json:"partner_id"`
	AgencyID    *uint    `json:"agency_id"`
	Permissions []string `json:"permissions"`
}

// UpdateInput carries profile changes; nil fields are left untouched.
type UpdateInput struct {
	Name  *string `json:"name" validate:"omitempty,max=120"`
	Email *string `json:"email" validate:"omitempty,email"`
	Phone *string `json:"phone" validate:"omitempty,phone"`
}
