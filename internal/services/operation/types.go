package operation

import (
	"relais/internal/commission"
	"relais/internal/models"
)

type Input struct {
	Code             string             `json:"code" validate:"required,max=40"`
	Name             string             `json:"name" validate:"required,max=120"`
	Category         string             `json:"category" validate:"required,max=60"`
	Description      string             `json:"description" validate:"max=500"`
	CommissionConfig commission.Config  `json:"commission_config"`
	FieldSchema      []models.FormField `json:"field_schema"`
	AllowedRoles     []string           `json:"allowed_roles"`
}

// UpdateInput changes an operation type. The code is immutable.
type UpdateInput struct {
	Name             *string             `json:"name" validate:"omitempty,max=120"`
	Category         *string             `json:"category" validate:"omitempty,max=60"`
	Description      *string             `json:"description" validate:"omitempty,max=500"`
	CommissionConfig *commission.Config  `json:"commission_config"`
	FieldSchema      *[]models.FormField `json:"field_schema"`
	AllowedRoles     *[]string           `json:"allowed_roles"`
	Status           *string             `json:"status" validate:"omitempty,oneof=active disabled"`
}
