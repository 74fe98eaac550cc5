package balance

import (
	"context"
	"testing"

	apperrors "relais/internal/errors"
	"relais/internal/events"
	"relais/internal/models"
	"relais/internal/repositories/mocks"
	"relais/internal/utils/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func uintPtr(v uint) *uint { return &v }

func TestOwnerFor(t *testing.T) {
	agent := &models.User{AgencyID: uintPtr(7)}
	agent.ID = 3
	assert.Equal(t, Owner{Kind: models.OwnerAgency, ID: 7}, OwnerFor(agent))

	owner, kind := EarningsFor(agent)
	assert.Equal(t, Owner{Kind: models.OwnerAgency, ID: 7}, owner)
	assert.Equal(t, models.BalanceRevenue, kind)

	solo := &models.User{}
	solo.ID = 4
	assert.Equal(t, Owner{Kind: models.OwnerUser, ID: 4}, OwnerFor(solo))
	_, kind = EarningsFor(solo)
	assert.Equal(t, models.BalanceCommission, kind)
}

func TestSpenderAndEarnerOf(t *testing.T) {
	assert.Equal(t, Owner{Kind: models.OwnerAgency, ID: 7}, SpenderOf(3, uintPtr(7)))
	assert.Equal(t, Owner{Kind: models.OwnerUser, ID: 3}, SpenderOf(3, nil))

	owner, kind := EarnerOf(3, uintPtr(7))
	assert.Equal(t, Owner{Kind: models.OwnerAgency, ID: 7}, owner)
	assert.Equal(t, models.BalanceRevenue, kind)

	owner, kind = EarnerOf(3, nil)
	assert.Equal(t, Owner{Kind: models.OwnerUser, ID: 3}, owner)
	assert.Equal(t, models.BalanceCommission, kind)
}

func TestDebit(t *testing.T) {
	owner := Owner{Kind: models.OwnerAgency, ID: 7}

	tests := []struct {
		name      string
		amount    float64
		current   float64
		setupMock func(*mocks.BalanceRepository)
		wantErr   error
	}{
		{
			name:    "sufficient funds",
			amount:  1500,
			current: 10000,
			setupMock: func(m *mocks.BalanceRepository) {
				m.On("Lock", models.OwnerAgency, uint(7), models.BalancePrincipal).Return(float64(10000), nil)
				m.On("Set", models.OwnerAgency, uint(7), models.BalancePrincipal, float64(8500)).Return(nil)
				m.On("RecordMovement", mock.MatchedBy(func(mv *models.BalanceMovement) bool {
					return mv.Delta == -1500 && mv.BalanceBefore == 10000 && mv.BalanceAfter == 8500 && mv.Reference == "TX-1"
				})).Return(nil)
			},
		},
		{
			name:   "insufficient funds",
			amount: 1500,
			setupMock: func(m *mocks.BalanceRepository) {
				m.On("Lock", models.OwnerAgency, uint(7), models.BalancePrincipal).Return(float64(1000), nil)
			},
			wantErr: apperrors.ErrInsufficientBalance,
		},
		{
			name:      "zero amount",
			amount:    0,
			setupMock: func(m *mocks.BalanceRepository) {},
			wantErr:   apperrors.ErrInvalidAmount,
		},
		{
			name:   "exact balance",
			amount: 1000,
			setupMock: func(m *mocks.BalanceRepository) {
				m.On("Lock", models.OwnerAgency, uint(7), models.BalancePrincipal).Return(float64(1000), nil)
				m.On("Set", models.OwnerAgency, uint(7), models.BalancePrincipal, float64(0)).Return(nil)
				m.On("RecordMovement", mock.Anything).Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := mocks.NewStore()
			tt.setupMock(store.BalanceRepo)

			_, err := Debit(context.Background(), store, Entry{Owner: owner, Amount: tt.amount, Reference: "TX-1"})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			store.AssertExpectations(t)
		})
	}
}

func TestCredit_CommissionBalance(t *testing.T) {
	store := mocks.NewStore()
	store.BalanceRepo.On("Lock", models.OwnerUser, uint(4), models.BalanceCommission).Return(float64(10), nil)
	store.BalanceRepo.On("Set", models.OwnerUser, uint(4), models.BalanceCommission, float64(130)).Return(nil)
	store.BalanceRepo.On("RecordMovement", mock.Anything).Return(nil)

	mv, err := Credit(context.Background(), store, Entry{
		Owner:  Owner{Kind: models.OwnerUser, ID: 4},
		Kind:   models.BalanceCommission,
		Amount: 120,
	})
	require.NoError(t, err)
	assert.Equal(t, float64(120), mv.Delta)
	store.AssertExpectations(t)
}

func TestService_Adjust(t *testing.T) {
	admin := &models.UserClaims{UserID: 1, Role: models.RoleAdminGeneral, Permissions: models.GetDefaultPermissions(models.RoleAdminGeneral)}
	owner := Owner{Kind: models.OwnerUser, ID: 4}

	t.Run("negative delta debits", func(t *testing.T) {
		store := mocks.NewStore()
		store.BalanceRepo.On("Lock", models.OwnerUser, uint(4), models.BalancePrincipal).Return(float64(500), nil)
		store.BalanceRepo.On("Set", models.OwnerUser, uint(4), models.BalancePrincipal, float64(300)).Return(nil)
		store.BalanceRepo.On("RecordMovement", mock.MatchedBy(func(mv *models.BalanceMovement) bool {
			return *mv.ActorID == 1 && mv.Reason == "correction"
		})).Return(nil)

		svc := NewService(store, events.Noop{}, zap.NewNop())
		mv, err := svc.Adjust(context.Background(), admin, owner, "", -200, "correction")
		require.NoError(t, err)
		assert.Equal(t, float64(-200), mv.Delta)
		assert.Equal(t, 1, store.TxCount)
		store.AssertExpectations(t)
	})

	t.Run("requires permission", func(t *testing.T) {
		partner := &models.UserClaims{UserID: 2, Role: models.RolePartner, Permissions: models.GetDefaultPermissions(models.RolePartner)}
		svc := NewService(mocks.NewStore(), events.Noop{}, zap.NewNop())
		_, err := svc.Adjust(context.Background(), partner, owner, "", 100, "gift")
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("requires reason", func(t *testing.T) {
		svc := NewService(mocks.NewStore(), events.Noop{}, zap.NewNop())
		_, err := svc.Adjust(context.Background(), admin, owner, "", 100, "")
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestService_History_Access(t *testing.T) {
	agency := Owner{Kind: models.OwnerAgency, ID: 7}
	p := pagination.New(1, 20)

	t.Run("partner sees own agency", func(t *testing.T) {
		store := mocks.NewStore()
		store.AgencyRepo.On("GetByID", uint(7)).Return(&models.Agency{ID: 7, PartnerID: 2}, nil)
		store.BalanceRepo.On("Movements", models.OwnerAgency, uint(7), 0, 20).Return([]models.BalanceMovement{{ID: 1}}, int64(1), nil)

		svc := NewService(store, events.Noop{}, zap.NewNop())
		partner := &models.UserClaims{UserID: 5, Role: models.RolePartner, PartnerID: uintPtr(2)}
		items, total, err := svc.History(context.Background(), partner, agency, p)
		require.NoError(t, err)
		assert.Len(t, items, 1)
		assert.Equal(t, int64(1), total)
	})

	t.Run("other partner is refused", func(t *testing.T) {
		store := mocks.NewStore()
		store.AgencyRepo.On("GetByID", uint(7)).Return(&models.Agency{ID: 7, PartnerID: 2}, nil)

		svc := NewService(store, events.Noop{}, zap.NewNop())
		partner := &models.UserClaims{UserID: 6, Role: models.RolePartner, PartnerID: uintPtr(3)}
		_, _, err := svc.History(context.Background(), partner, agency, p)
		assert.ErrorIs(t, err, ErrNoAgencyAccess)
	})

	t.Run("agent sees own agency", func(t *testing.T) {
		store := mocks.NewStore()
		store.BalanceRepo.On("Movements", models.OwnerAgency, uint(7), 0, 20).Return([]models.BalanceMovement{}, int64(0), nil)

		svc := NewService(store, events.Noop{}, zap.NewNop())
		agent := &models.UserClaims{UserID: 8, Role: models.RoleAgent, AgencyID: uintPtr(7)}
		_, _, err := svc.History(context.Background(), agent, agency, p)
		assert.NoError(t, err)
	})
}

func TestService_Summary(t *testing.T) {
	store := mocks.NewStore()
	agent := &models.User{AgencyID: uintPtr(7), Balance: 99}
	agent.ID = 8
	store.UserRepo.On("GetByID", uint(8)).Return(agent, nil)
	store.AgencyRepo.On("GetByID", uint(7)).Return(&models.Agency{ID: 7, PrincipalBalance: 5000, RevenueBalance: 250}, nil)

	svc := NewService(store, events.Noop{}, zap.NewNop())
	summary, err := svc.Summary(context.Background(), 8)
	require.NoError(t, err)
	assert.Equal(t, float64(5000), summary.Principal)
	assert.Equal(t, float64(250), summary.Earnings)
}
