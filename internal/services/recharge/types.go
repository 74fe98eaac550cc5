package recharge

import (
	"io"

	"relais/internal/models"
)

type CreateInput struct {
	Amount float64 `json:"amount" form:"amount" validate:"required,gt=0"`
	Method string  `json:"payment_method" form:"payment_method" validate:"required"`
	Note   string  `json:"note" form:"note" validate:"max=500"`
}

// Proof is an uploaded proof-of-payment document.
type Proof struct {
	ContentType string
	Body        io.Reader
}

// CreateResult carries the stored request and, for card payments, the
// client secret the agent's app confirms the payment with.
type CreateResult struct {
	Recharge     *models.AgentRechargeRequest `json:"recharge"`
	ClientSecret string                       `json:"client_secret,omitempty"`
}
