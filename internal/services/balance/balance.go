// Package balance moves money between agency and user balances and keeps
// the audit trail of every change.
//
// Agents that belong to an agency spend from the agency's principal balance
// and earn into its revenue balance. Agents without an agency use their own
// balance and commission balance.
package balance

import (
	"context"
	"fmt"

	apperrors "relais/internal/errors"
	"relais/internal/metrics"
	"relais/internal/models"
	"relais/internal/repositories"

	"github.com/shopspring/decimal"
)

type Operation string

const (
	OperationCredit Operation = "credit"
	OperationDebit  Operation = "debit"
)

// Owner identifies a balance holder.
type Owner struct {
	Kind string `json:"kind"`
	ID   uint   `json:"id"`
}

// SpenderOf resolves whose principal balance an agent spends from: the
// agency's when the agent belongs to one, otherwise the agent's own.
func SpenderOf(agentID uint, agencyID *uint) Owner {
	if agencyID != nil {
		return Owner{Kind: models.OwnerAgency, ID: *agencyID}
	}
	return Owner{Kind: models.OwnerUser, ID: agentID}
}

// EarnerOf returns the owner and balance kind an agent's commissions are
// paid into.
func EarnerOf(agentID uint, agencyID *uint) (Owner, string) {
	if agencyID != nil {
		return Owner{Kind: models.OwnerAgency, ID: *agencyID}, models.BalanceRevenue
	}
	return Owner{Kind: models.OwnerUser, ID: agentID}, models.BalanceCommission
}

func OwnerFor(u *models.User) Owner {
	return SpenderOf(u.ID, u.AgencyID)
}

func EarningsFor(u *models.User) (Owner, string) {
	return EarnerOf(u.ID, u.AgencyID)
}

// Entry is one balance change request.
type Entry struct {
	Owner     Owner
	Kind      string
	Amount    float64
	Reference string
	Reason    string
	ActorID   *uint
}

// Debit removes e.Amount from the balance, failing when funds are short.
// store must be transactional.
func Debit(ctx context.Context, store repositories.Store, e Entry) (*models.BalanceMovement, error) {
	return apply(ctx, store, OperationDebit, e)
}

// Credit adds e.Amount to the balance. store must be transactional.
func Credit(ctx context.Context, store repositories.Store, e Entry) (*models.BalanceMovement, error) {
	return apply(ctx, store, OperationCredit, e)
}

func apply(ctx context.Context, store repositories.Store, op Operation, e Entry) (*models.BalanceMovement, error) {
	if e.Amount <= 0 {
		return nil, apperrors.ErrInvalidAmount
	}
	if e.Kind == "" {
		e.Kind = models.BalancePrincipal
	}

	current, err := store.Balances().Lock(ctx, e.Owner.Kind, e.Owner.ID, e.Kind)
	if err != nil {
		return nil, err
	}

	before := decimal.NewFromFloat(current)
	delta := decimal.NewFromFloat(e.Amount)
	if op == OperationDebit {
		if before.LessThan(delta) {
			return nil, fmt.Errorf("%w: %s %d has %s, needs %s", apperrors.ErrInsufficientBalance,
				e.Owner.Kind, e.Owner.ID, before.StringFixed(0), delta.StringFixed(0))
		}
		delta = delta.Neg()
	}
	after := before.Add(delta)

	if err := store.Balances().Set(ctx, e.Owner.Kind, e.Owner.ID, e.Kind, after.InexactFloat64()); err != nil {
		return nil, err
	}

	movement := &models.BalanceMovement{
		OwnerKind:     e.Owner.Kind,
		OwnerID:       e.Owner.ID,
		BalanceKind:   e.Kind,
		Delta:         delta.InexactFloat64(),
		BalanceBefore: before.InexactFloat64(),
		BalanceAfter:  after.InexactFloat64(),
		Reference:     e.Reference,
		Reason:        e.Reason,
		ActorID:       e.ActorID,
	}
	if err := store.Balances().RecordMovement(ctx, movement); err != nil {
		return nil, err
	}

	metrics.RecordBalanceChange(e.Owner.Kind, e.Kind, movement.Delta)
	return movement, nil
}
