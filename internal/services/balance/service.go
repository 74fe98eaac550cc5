package balance

import (
	"context"
	"fmt"
	"net/http"

	apperrors "relais/internal/errors"
	"relais/internal/events"
	"relais/internal/models"
	"relais/internal/repositories"
	"relais/internal/utils"
	"relais/internal/utils/pagination"

	"go.uber.org/zap"
)

var ErrNoAgencyAccess = apperrors.New("BALANCE_NO_ACCESS", "cannot access this balance", http.StatusForbidden)

// Summary is the balance view returned to clients.
type Summary struct {
	Owner     Owner   `json:"owner"`
	Principal float64 `json:"principal"`
	// Earnings is the agency revenue balance or the user's commission balance.
	Earnings float64 `json:"earnings"`
}

type Service interface {
	// Summary returns the balances the user operates on.
	Summary(ctx context.Context, userID uint) (*Summary, error)
	// Adjust credits (positive delta) or debits (negative delta) a balance by hand.
	Adjust(ctx context.Context, actor *models.UserClaims, owner Owner, kind string, delta float64, reason string) (*models.BalanceMovement, error)
	History(ctx context.Context, actor *models.UserClaims, owner Owner, p pagination.Pagination) ([]models.BalanceMovement, int64, error)
}

type service struct {
	store     repositories.Store
	publisher events.Publisher
	log       *zap.Logger
}

func NewService(store repositories.Store, publisher events.Publisher, log *zap.Logger) Service {
	return &service{store: store, publisher: publisher, log: log}
}

func (s *service) Summary(ctx context.Context, userID uint) (*Summary, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	owner := OwnerFor(user)
	summary := &Summary{Owner: owner, Principal: user.Balance, Earnings: user.CommissionBalance}
	if owner.Kind == models.OwnerAgency {
		agency, err := s.store.Agencies().GetByID(ctx, owner.ID)
		if err != nil {
			return nil, err
		}
		summary.Principal = agency.PrincipalBalance
		summary.Earnings = agency.RevenueBalance
	}
	return summary, nil
}

func (s *service) Adjust(ctx context.Context, actor *models.UserClaims, owner Owner, kind string, delta float64, reason string) (*models.BalanceMovement, error) {
	if !actor.HasPermission(models.PermissionBalanceAdjust) {
		return nil, apperrors.ErrForbidden
	}
	if delta == 0 {
		return nil, apperrors.ErrInvalidAmount
	}
	if reason == "" {
		return nil, fmt.Errorf("%w: a reason is required", apperrors.ErrInvalidInput)
	}

	entry := Entry{
		Owner:     owner,
		Kind:      kind,
		Amount:    delta,
		Reference: utils.NewReference("ADJ"),
		Reason:    reason,
		ActorID:   &actor.UserID,
	}

	var movement *models.BalanceMovement
	err := s.store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		var err error
		if delta > 0 {
			movement, err = Credit(ctx, tx, entry)
		} else {
			entry.Amount = -delta
			movement, err = Debit(ctx, tx, entry)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("balance adjusted",
		zap.Uint("actor", actor.UserID),
		zap.String("owner_kind", owner.Kind),
		zap.Uint("owner_id", owner.ID),
		zap.String("balance", movement.BalanceKind),
		zap.Float64("delta", movement.Delta),
		zap.String("reason", reason))

	change := events.Change{Entity: events.EntityBalance, Action: events.ActionUpdated, ID: owner.ID, Data: movement}
	if owner.Kind == models.OwnerUser {
		change.UserID = &owner.ID
	}
	_ = s.publisher.Publish(ctx, change)
	return movement, nil
}

func (s *service) History(ctx context.Context, actor *models.UserClaims, owner Owner, p pagination.Pagination) ([]models.BalanceMovement, int64, error) {
	if err := s.canView(ctx, actor, owner); err != nil {
		return nil, 0, err
	}
	return s.store.Balances().Movements(ctx, owner.Kind, owner.ID, p.Offset, p.Limit)
}

// canView lets staff see every balance, partners their agency, and users
// the balance they operate on.
func (s *service) canView(ctx context.Context, actor *models.UserClaims, owner Owner) error {
	if actor.IsAdmin() && actor.HasPermission(models.PermissionBalanceRead) {
		return nil
	}

	switch owner.Kind {
	case models.OwnerUser:
		if owner.ID == actor.UserID {
			return nil
		}
	case models.OwnerAgency:
		if actor.AgencyID != nil && *actor.AgencyID == owner.ID {
			return nil
		}
		if actor.Role == models.RolePartner && actor.PartnerID != nil {
			agency, err := s.store.Agencies().GetByID(ctx, owner.ID)
			if err != nil {
				return err
			}
			if agency.PartnerID == *actor.PartnerID {
				return nil
			}
		}
	}
	return ErrNoAgencyAccess
}
