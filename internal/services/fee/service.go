// Package fee quotes what an operation or a recharge will cost before it is
// submitted.
package fee

import (
	"context"
	"net/http"
	"time"

	"relais/internal/commission"
	apperrors "relais/internal/errors"
	"relais/internal/models"
	"relais/internal/repositories"
	"relais/internal/services/operation"

	"github.com/shopspring/decimal"
)

var ErrMethodInactive = &apperrors.DomainError{
	Code:    "PAYMENT_METHOD_INACTIVE",
	Message: "payment method is not available",
	Status:  http.StatusUnprocessableEntity,
}

// Quote is a fee preview for one operation.
type Quote struct {
	commission.Result
	Total           float64 `json:"total"`
	OperationTypeID uint    `json:"operation_type_id"`
	OperationCode   string  `json:"operation_code"`
	OperationName   string  `json:"operation_name"`
	ContractID      *uint   `json:"contract_id,omitempty"`
	ContractName    string  `json:"contract_name,omitempty"`
}

// MethodQuote is a fee preview for a recharge.
type MethodQuote struct {
	Method    *models.PaymentMethod `json:"method"`
	Amount    float64               `json:"amount"`
	Fee       float64               `json:"fee"`
	NetAmount float64               `json:"net_amount"`
}

type Service interface {
	Preview(ctx context.Context, userID, operationTypeID uint, amount float64) (*Quote, error)
	Quote(ctx context.Context, user *models.User, op *models.OperationType, amount float64) (*Quote, error)
	PaymentMethodFee(ctx context.Context, methodCode string, amount float64) (*MethodQuote, error)
}

type service struct {
	store repositories.Store
	now   func() time.Time
}

func NewService(store repositories.Store) Service {
	return &service{store: store, now: time.Now}
}

// Preview loads the user and operation type and quotes amount.
func (s *service) Preview(ctx context.Context, userID, operationTypeID uint, amount float64) (*Quote, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	op, err := s.store.OperationTypes().GetByID(ctx, operationTypeID)
	if err != nil {
		return nil, err
	}
	if err := operation.CheckUsable(op, user.Role); err != nil {
		return nil, err
	}
	return s.Quote(ctx, user, op, amount)
}

// Quote computes the fee user pays for op, honouring the user's partner
// contract when one is active and in force.
func (s *service) Quote(ctx context.Context, user *models.User, op *models.OperationType, amount float64) (*Quote, error) {
	var contract *models.Contract
	if user.PartnerID != nil {
		c, err := s.store.Contracts().GetActive(ctx, *user.PartnerID)
		if err != nil {
			return nil, err
		}
		if c != nil && inForce(c, s.now()) {
			contract = c
		}
	}

	res, err := commission.Calculate(op.CommissionView(), contract.CommissionView(), amount)
	if err != nil {
		return nil, err
	}

	q := &Quote{
		Result:          res,
		Total:           decimal.NewFromFloat(amount).Add(decimal.NewFromFloat(res.Fee)).InexactFloat64(),
		OperationTypeID: op.ID,
		OperationCode:   op.Code,
		OperationName:   op.Name,
	}
	if contract != nil {
		q.ContractID = &contract.ID
		q.ContractName = contract.Name
	}
	return q, nil
}

// PaymentMethodFee quotes a recharge of amount through the method. The fee
// is taken out of the credited amount.
func (s *service) PaymentMethodFee(ctx context.Context, methodCode string, amount float64) (*MethodQuote, error) {
	method, err := s.store.PaymentMethods().GetByCode(ctx, methodCode)
	if err != nil {
		return nil, err
	}
	if !method.Active {
		return nil, ErrMethodInactive
	}

	fee, err := commission.Evaluate(method.FeeSchedule, amount)
	if err != nil {
		return nil, err
	}
	amt := decimal.NewFromFloat(amount)
	if fee.GreaterThanOrEqual(amt) {
		return nil, apperrors.ErrInvalidAmount
	}

	return &MethodQuote{
		Method:    method,
		Amount:    amount,
		Fee:       fee.InexactFloat64(),
		NetAmount: amt.Sub(fee).InexactFloat64(),
	}, nil
}

func inForce(c *models.Contract, now time.Time) bool {
	if c.StartsAt != nil && now.Before(*c.StartsAt) {
		return false
	}
	if c.EndsAt != nil && now.After(*c.EndsAt) {
		return false
	}
	return true
}
