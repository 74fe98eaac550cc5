package dashboard

import (
	"context"
	"testing"
	"time"

	apperrors "relais/internal/errors"
	"relais/internal/models"
	"relais/internal/repositories"
	"relais/internal/repositories/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 14, 15, 30, 0, 0, time.UTC)

func uintPtr(v uint) *uint { return &v }

func newService(store *mocks.Store) *service {
	return &service{store: store, now: func() time.Time { return fixedNow }}
}

func TestAdmin(t *testing.T) {
	today := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	month := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	store := mocks.NewStore()
	store.UserRepo.On("CountByRole", (*uint)(nil)).Return(map[string]int64{models.RoleAgent: 12, models.RolePartner: 3}, nil)
	store.TransactionRepo.On("Summarize", repositories.TransactionFilter{Status: models.TransactionStatusPending}).
		Return(repositories.TransactionTotals{Count: 4}, nil)
	store.TransactionRepo.On("Summarize", repositories.TransactionFilter{Status: models.TransactionStatusValidated, From: &today}).
		Return(repositories.TransactionTotals{Count: 2, Volume: 30000}, nil)
	store.TransactionRepo.On("Summarize", repositories.TransactionFilter{Status: models.TransactionStatusValidated, From: &month}).
		Return(repositories.TransactionTotals{Count: 40, Volume: 900000, CompanyCommission: 4000, PartnerCommission: 6000}, nil)
	store.RechargeRepo.On("Count", repositories.RechargeFilter{Status: models.RechargeStatusPending}).Return(int64(2), nil)
	store.CardRepo.On("Stats", repositories.CardFilter{Status: models.CardStatusAvailable}).
		Return([]models.CardStats{{Count: 10, FaceValue: 1000}, {Count: 5, FaceValue: 5000}}, nil)

	d, err := newService(store).Admin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), d.UsersByRole[models.RoleAgent])
	assert.Equal(t, int64(4), d.PendingTransactions)
	assert.Equal(t, int64(2), d.PendingRecharges)
	assert.Equal(t, float64(30000), d.VolumeToday)
	assert.Equal(t, float64(900000), d.VolumeMonth)
	assert.Equal(t, float64(4000), d.CompanyCommissionMonth)
	assert.Equal(t, float64(6000), d.PartnerCommissionMonth)
	assert.Equal(t, int64(15), d.AvailableCards)
	store.AssertExpectations(t)
}

func TestPartner(t *testing.T) {
	month := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	pid := uint(5)

	store := mocks.NewStore()
	store.UserRepo.On("CountByRole", &pid).Return(map[string]int64{models.RoleAgent: 7}, nil)
	store.AgencyRepo.On("GetByPartnerID", pid).Return(&models.Agency{ID: 9, PrincipalBalance: 50000, RevenueBalance: 1200}, nil)
	store.TransactionRepo.On("Summarize", repositories.TransactionFilter{Status: models.TransactionStatusValidated, PartnerID: &pid, From: &month}).
		Return(repositories.TransactionTotals{Volume: 250000, PartnerCommission: 1800}, nil)
	store.TransactionRepo.On("Summarize", repositories.TransactionFilter{Status: models.TransactionStatusPending, PartnerID: &pid}).
		Return(repositories.TransactionTotals{Count: 3}, nil)
	store.TransactionRepo.On("List", repositories.TransactionFilter{PartnerID: &pid}, 0, RecentLimit).
		Return([]models.Transaction{{ID: 1}, {ID: 2}}, int64(2), nil)

	d, err := newService(store).Partner(context.Background(), pid)
	require.NoError(t, err)
	assert.Equal(t, int64(7), d.Agents)
	assert.Equal(t, float64(50000), d.PrincipalBalance)
	assert.Equal(t, float64(1200), d.RevenueBalance)
	assert.Equal(t, float64(250000), d.VolumeMonth)
	assert.Equal(t, float64(1800), d.PartnerCommissionMonth)
	assert.Equal(t, int64(3), d.PendingTransactions)
	assert.Len(t, d.RecentTransactions, 2)
	store.AssertExpectations(t)
}

func agentExpectations(store *mocks.Store, agentID uint) {
	store.TransactionRepo.On("Summarize", repositories.TransactionFilter{Status: models.TransactionStatusPending, AgentID: &agentID}).
		Return(repositories.TransactionTotals{Count: 1}, nil)
	store.RechargeRepo.On("Count", repositories.RechargeFilter{Status: models.RechargeStatusPending, AgentID: &agentID}).Return(int64(1), nil)
	store.CardRepo.On("Stats", repositories.CardFilter{Status: models.CardStatusAssigned, AgentID: &agentID}).
		Return([]models.CardStats{{Count: 4}}, nil)
	store.TransactionRepo.On("List", repositories.TransactionFilter{AgentID: &agentID}, 0, RecentLimit).
		Return([]models.Transaction{}, int64(0), nil)
}

func TestAgent(t *testing.T) {
	t.Run("agency agent sees agency balances", func(t *testing.T) {
		u := &models.User{Role: models.RoleAgent, AgencyID: uintPtr(9), PartnerID: uintPtr(5), Balance: 1}
		u.ID = 30

		store := mocks.NewStore()
		store.UserRepo.On("GetByID", uint(30)).Return(u, nil)
		store.AgencyRepo.On("GetByID", uint(9)).Return(&models.Agency{ID: 9, PrincipalBalance: 50000, RevenueBalance: 700}, nil)
		agentExpectations(store, 30)

		d, err := newService(store).Agent(context.Background(), 30)
		require.NoError(t, err)
		assert.Equal(t, models.OwnerAgency, d.BalanceOwner)
		assert.Equal(t, float64(50000), d.Balance)
		assert.Equal(t, float64(700), d.CommissionBalance)
		assert.Equal(t, int64(1), d.PendingTransactions)
		assert.Equal(t, int64(1), d.PendingRecharges)
		assert.Equal(t, int64(4), d.AssignedCards)
		store.AssertExpectations(t)
	})

	t.Run("independent agent sees own balances", func(t *testing.T) {
		u := &models.User{Role: models.RoleAgent, Balance: 8000, CommissionBalance: 150}
		u.ID = 31

		store := mocks.NewStore()
		store.UserRepo.On("GetByID", uint(31)).Return(u, nil)
		agentExpectations(store, 31)

		d, err := newService(store).Agent(context.Background(), 31)
		require.NoError(t, err)
		assert.Equal(t, models.OwnerUser, d.BalanceOwner)
		assert.Equal(t, float64(8000), d.Balance)
		assert.Equal(t, float64(150), d.CommissionBalance)
		store.AgencyRepo.AssertNotCalled(t, "GetByID", uint(9))
	})
}

func TestGet_DispatchesByRole(t *testing.T) {
	store := mocks.NewStore()
	u := &models.User{Role: models.RoleAgent}
	u.ID = 31
	store.UserRepo.On("GetByID", uint(31)).Return(u, nil)
	agentExpectations(store, 31)

	claims := &models.UserClaims{UserID: 31, Role: models.RoleAgent, Permissions: models.GetDefaultPermissions(models.RoleAgent)}
	d, err := newService(store).Get(context.Background(), claims)
	require.NoError(t, err)
	assert.IsType(t, &models.AgentDashboard{}, d)

	orphan := &models.UserClaims{Role: models.RolePartner, Permissions: models.GetDefaultPermissions(models.RolePartner)}
	_, err = newService(store).Get(context.Background(), orphan)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = newService(store).Get(context.Background(), &models.UserClaims{Role: models.RoleAgent})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}
