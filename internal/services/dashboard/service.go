// Package dashboard builds the landing-page summaries for each role.
package dashboard

import (
	"context"
	"fmt"
	"time"

	apperrors "relais/internal/errors"
	"relais/internal/models"
	"relais/internal/repositories"
	"relais/internal/services/balance"
)

// RecentLimit is how many recent transactions a dashboard shows.
const RecentLimit = 5

type Service interface {
	// Get returns the dashboard matching the actor's role.
	Get(ctx context.Context, actor *models.UserClaims) (interface{}, error)
	Admin(ctx context.Context) (*models.AdminDashboard, error)
	Partner(ctx context.Context, partnerID uint) (*models.PartnerDashboard, error)
	Agent(ctx context.Context, agentID uint) (*models.AgentDashboard, error)
}

type service struct {
	store repositories.Store
	now   func() time.Time
}

func NewService(store repositories.Store) Service {
	return &service{store: store, now: time.Now}
}

func (s *service) Get(ctx context.Context, actor *models.UserClaims) (interface{}, error) {
	if !actor.HasPermission(models.PermissionDashboard) {
		return nil, apperrors.ErrForbidden
	}
	switch actor.Role {
	case models.RoleAdminGeneral, models.RoleSousAdmin, models.RoleDeveloper:
		return s.Admin(ctx)
	case models.RolePartner:
		if actor.PartnerID == nil {
			return nil, apperrors.ErrForbidden
		}
		return s.Partner(ctx, *actor.PartnerID)
	case models.RoleAgent:
		return s.Agent(ctx, actor.UserID)
	}
	return nil, apperrors.ErrForbidden
}

func (s *service) Admin(ctx context.Context) (*models.AdminDashboard, error) {
	today, month := s.periods()
	d := &models.AdminDashboard{}

	var err error
	if d.UsersByRole, err = s.store.Users().CountByRole(ctx, nil); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	pending, err := s.store.Transactions().Summarize(ctx, repositories.TransactionFilter{Status: models.TransactionStatusPending})
	if err != nil {
		return nil, fmt.Errorf("pending transactions: %w", err)
	}
	d.PendingTransactions = pending.Count

	if d.PendingRecharges, err = s.store.Recharges().Count(ctx, repositories.RechargeFilter{Status: models.RechargeStatusPending}); err != nil {
		return nil, fmt.Errorf("pending recharges: %w", err)
	}

	daily, err := s.store.Transactions().Summarize(ctx, repositories.TransactionFilter{Status: models.TransactionStatusValidated, From: &today})
	if err != nil {
		return nil, fmt.Errorf("daily volume: %w", err)
	}
	d.VolumeToday = daily.Volume

	monthly, err := s.store.Transactions().Summarize(ctx, repositories.TransactionFilter{Status: models.TransactionStatusValidated, From: &month})
	if err != nil {
		return nil, fmt.Errorf("monthly volume: %w", err)
	}
	d.VolumeMonth = monthly.Volume
	d.CompanyCommissionMonth = monthly.CompanyCommission
	d.PartnerCommissionMonth = monthly.PartnerCommission

	stats, err := s.store.Cards().Stats(ctx, repositories.CardFilter{Status: models.CardStatusAvailable})
	if err != nil {
		return nil, fmt.Errorf("card stock: %w", err)
	}
	d.AvailableCards = countCards(stats)
	return d, nil
}

func (s *service) Partner(ctx context.Context, partnerID uint) (*models.PartnerDashboard, error) {
	_, month := s.periods()
	d := &models.PartnerDashboard{PartnerID: partnerID}

	counts, err := s.store.Users().CountByRole(ctx, &partnerID)
	if err != nil {
		return nil, fmt.Errorf("count agents: %w", err)
	}
	d.Agents = counts[models.RoleAgent]

	agency, err := s.store.Agencies().GetByPartnerID(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	d.PrincipalBalance = agency.PrincipalBalance
	d.RevenueBalance = agency.RevenueBalance

	monthly, err := s.store.Transactions().Summarize(ctx, repositories.TransactionFilter{
		Status:    models.TransactionStatusValidated,
		PartnerID: &partnerID,
		From:      &month,
	})
	if err != nil {
		return nil, fmt.Errorf("monthly volume: %w", err)
	}
	d.VolumeMonth = monthly.Volume
	d.PartnerCommissionMonth = monthly.PartnerCommission

	pending, err := s.store.Transactions().Summarize(ctx, repositories.TransactionFilter{
		Status:    models.TransactionStatusPending,
		PartnerID: &partnerID,
	})
	if err != nil {
		return nil, fmt.Errorf("pending transactions: %w", err)
	}
	d.PendingTransactions = pending.Count

	if d.RecentTransactions, _, err = s.store.Transactions().List(ctx, repositories.TransactionFilter{PartnerID: &partnerID}, 0, RecentLimit); err != nil {
		return nil, fmt.Errorf("recent transactions: %w", err)
	}
	return d, nil
}

func (s *service) Agent(ctx context.Context, agentID uint) (*models.AgentDashboard, error) {
	user, err := s.store.Users().GetByID(ctx, agentID)
	if err != nil {
		return nil, err
	}

	owner := balance.OwnerFor(user)
	d := &models.AgentDashboard{BalanceOwner: owner.Kind}
	if owner.Kind == models.OwnerAgency {
		agency, err := s.store.Agencies().GetByID(ctx, owner.ID)
		if err != nil {
			return nil, err
		}
		d.Balance = agency.PrincipalBalance
		d.CommissionBalance = agency.RevenueBalance
	} else {
		d.Balance = user.Balance
		d.CommissionBalance = user.CommissionBalance
	}

	pending, err := s.store.Transactions().Summarize(ctx, repositories.TransactionFilter{
		Status:  models.TransactionStatusPending,
		AgentID: &agentID,
	})
	if err != nil {
		return nil, fmt.Errorf("pending transactions: %w", err)
	}
	d.PendingTransactions = pending.Count

	if d.PendingRecharges, err = s.store.Recharges().Count(ctx, repositories.RechargeFilter{
		Status:  models.RechargeStatusPending,
		AgentID: &agentID,
	}); err != nil {
		return nil, fmt.Errorf("pending recharges: %w", err)
	}

	stats, err := s.store.Cards().Stats(ctx, repositories.CardFilter{Status: models.CardStatusAssigned, AgentID: &agentID})
	if err != nil {
		return nil, fmt.Errorf("card stock: %w", err)
	}
	d.AssignedCards = countCards(stats)

	if d.RecentTransactions, _, err = s.store.Transactions().List(ctx, repositories.TransactionFilter{AgentID: &agentID}, 0, RecentLimit); err != nil {
		return nil, fmt.Errorf("recent transactions: %w", err)
	}
	return d, nil
}

// periods returns the start of today and of the current month.
func (s *service) periods() (time.Time, time.Time) {
	now := s.now()
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location()),
		time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
}

func countCards(stats []models.CardStats) int64 {
	var n int64
	for _, st := range stats {
		n += st.Count
	}
	return n
}
