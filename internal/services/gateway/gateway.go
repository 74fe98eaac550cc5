// Package gateway collects card payments for recharge requests through Stripe.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	apperrors "relais/internal/errors"

	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/client"
)

var ErrGatewayUnavailable = apperrors.New("GATEWAY_UNAVAILABLE", "card payments are not configured", http.StatusServiceUnavailable)

// Intent is the part of a payment intent the recharge flow needs.
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret,omitempty"`
	Status       string `json:"status"`
	Amount       int64  `json:"amount"`
}

// Succeeded reports whether the payment has been captured.
func (i Intent) Succeeded() bool {
	return i.Status == string(stripe.PaymentIntentStatusSucceeded)
}

type Gateway interface {
	CreateIntent(ctx context.Context, amount int64, currency, reference string) (*Intent, error)
	GetIntent(ctx context.Context, id string) (*Intent, error)
}

type Stripe struct {
	api *client.API
}

// NewStripe returns a Stripe gateway, or Disabled when key is empty.
func NewStripe(key string) Gateway {
	if key == "" {
		return Disabled{}
	}
	sc := &client.API{}
	sc.Init(key, nil)
	return &Stripe{api: sc}
}

func (s *Stripe) CreateIntent(ctx context.Context, amount int64, currency, reference string) (*Intent, error) {
	if amount <= 0 {
		return nil, apperrors.ErrInvalidAmount
	}

	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amount),
		Currency:           stripe.String(strings.ToLower(currency)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Description:        stripe.String("Balance recharge " + reference),
	}
	params.Context = ctx
	params.AddMetadata("reference", reference)
	params.SetIdempotencyKey("recharge-" + reference)

	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", describe(err))
	}
	return toIntent(pi), nil
}

func (s *Stripe) GetIntent(ctx context.Context, id string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := s.api.PaymentIntents.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("get payment intent: %w", describe(err))
	}
	return toIntent(pi), nil
}

func toIntent(pi *stripe.PaymentIntent) *Intent {
	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		Amount:       pi.Amount,
	}
}

// describe keeps Stripe's user-facing message when there is one.
func describe(err error) error {
	var serr *stripe.Error
	if errors.As(err, &serr) && serr.Msg != "" {
		return fmt.Errorf("%s: %w", serr.Msg, err)
	}
	return err
}

// Disabled rejects every call. It is used when no Stripe key is configured.
type Disabled struct{}

func (Disabled) CreateIntent(context.Context, int64, string, string) (*Intent, error) {
	return nil, ErrGatewayUnavailable
}

func (Disabled) GetIntent(context.Context, string) (*Intent, error) {
	return nil, ErrGatewayUnavailable
}
