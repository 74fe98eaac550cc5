package card

import (
	"context"
	"strings"
	"testing"

	apperrors "relais/internal/errors"
	"relais/internal/models"
	"relais/internal/repositories"
	"relais/internal/repositories/mocks"
	"relais/internal/utils/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func uintPtr(v uint) *uint { return &v }

var admin = &models.UserClaims{UserID: 1, Role: models.RoleAdminGeneral, Permissions: models.GetDefaultPermissions(models.RoleAdminGeneral)}

func agentClaims() *models.UserClaims {
	return &models.UserClaims{UserID: 30, Role: models.RoleAgent, Permissions: models.GetDefaultPermissions(models.RoleAgent)}
}

func agent() *models.User {
	u := &models.User{Role: models.RoleAgent, Status: models.UserStatusActive, AgencyID: uintPtr(9), PartnerID: uintPtr(5)}
	u.ID = 30
	return u
}

func newService(store *mocks.Store) Service {
	return NewService(store, nil, nil, zap.NewNop())
}

const batchCSV = `serial,pin,face_value
SN-001,1234567890,1000
SN-002,2234567890,1000
SN-001,9999999999,1000
SN-003,,1000
SN-004,4234567890,abc
SN-005,5234567890,5000
too,short
`

func TestImportBatch(t *testing.T) {
	store := mocks.NewStore()
	store.CardRepo.On("ExistingSerials", []string{"SN-001", "SN-002", "SN-005"}).Return([]string{"SN-002"}, nil)
	store.CardRepo.On("CreateBatch", mock.MatchedBy(func(cards []models.PrepaidCard) bool {
		return len(cards) == 2 && cards[0].Serial == "SN-001" && cards[1].Serial == "SN-005" &&
			cards[1].FaceValue == 5000 && cards[0].BatchRef == "B-42" && cards[0].Status == models.CardStatusAvailable
	})).Return(int64(2), nil)

	report, err := newService(store).ImportBatch(context.Background(), admin, "B-42", strings.NewReader(batchCSV))
	require.NoError(t, err)
	assert.Equal(t, int64(2), report.Imported)
	assert.ElementsMatch(t, []string{"SN-001", "SN-002"}, report.Duplicates)
	require.Len(t, report.Invalid, 3)
	assert.Equal(t, 5, report.Invalid[0].Line)
	assert.Equal(t, 6, report.Invalid[1].Line)
	assert.Equal(t, 8, report.Invalid[2].Line)
	store.AssertExpectations(t)
}

func TestImportBatch_Empty(t *testing.T) {
	_, err := newService(mocks.NewStore()).ImportBatch(context.Background(), admin, "", strings.NewReader("serial,pin,face_value\n"))
	assert.ErrorIs(t, err, ErrEmptyBatch)

	_, err = newService(mocks.NewStore()).ImportBatch(context.Background(), agentClaims(), "", strings.NewReader(batchCSV))
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestList_MasksPINs(t *testing.T) {
	store := mocks.NewStore()
	store.CardRepo.On("List", repositories.CardFilter{AgentID: uintPtr(30)}, 0, 20).
		Return([]models.PrepaidCard{{ID: 1, PIN: "1234567890"}}, int64(1), nil)

	cards, _, err := newService(store).List(context.Background(), agentClaims(), repositories.CardFilter{}, pagination.New(1, 20))
	require.NoError(t, err)
	assert.Equal(t, "********90", cards[0].PIN)

	partner := &models.UserClaims{Role: models.RolePartner, Permissions: models.GetDefaultPermissions(models.RolePartner)}
	_, _, err = newService(store).List(context.Background(), partner, repositories.CardFilter{}, pagination.New(1, 20))
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestAssign(t *testing.T) {
	input := AssignInput{AgentID: 30, FaceValue: 1000, Quantity: 2}
	stock := func() []models.PrepaidCard {
		return []models.PrepaidCard{{ID: 3, PIN: "1111"}, {ID: 8, PIN: "2222"}}
	}

	t.Run("oldest stock first", func(t *testing.T) {
		store := mocks.NewStore()
		store.UserRepo.On("GetByID", uint(30)).Return(agent(), nil)
		store.CardRepo.On("LockAvailable", float64(1000), 2).Return(stock(), nil)
		store.CardRepo.On("Assign", []uint{3, 8}, uint(30)).Return(nil)

		cards, err := newService(store).Assign(context.Background(), admin, input)
		require.NoError(t, err)
		require.Len(t, cards, 2)
		assert.Equal(t, models.CardStatusAssigned, cards[0].Status)
		assert.Equal(t, "**11", cards[0].PIN)
		store.AssertExpectations(t)
	})

	t.Run("short stock assigns nothing", func(t *testing.T) {
		store := mocks.NewStore()
		store.UserRepo.On("GetByID", uint(30)).Return(agent(), nil)
		store.CardRepo.On("LockAvailable", float64(1000), 2).Return(stock()[:1], nil)

		_, err := newService(store).Assign(context.Background(), admin, input)
		assert.ErrorIs(t, err, ErrNotEnoughCards)
		store.CardRepo.AssertNotCalled(t, "Assign", mock.Anything, mock.Anything)
	})

	t.Run("target must be an agent", func(t *testing.T) {
		partner := agent()
		partner.Role = models.RolePartner
		store := mocks.NewStore()
		store.UserRepo.On("GetByID", uint(30)).Return(partner, nil)

		_, err := newService(store).Assign(context.Background(), admin, input)
		assert.ErrorIs(t, err, ErrNotAgent)
	})
}

func TestSell(t *testing.T) {
	assigned := func(agentID uint) *models.PrepaidCard {
		return &models.PrepaidCard{ID: 3, Serial: "SN-001", PIN: "1234567890", FaceValue: 1000,
			Status: models.CardStatusAssigned, AgentID: &agentID}
	}

	t.Run("debits face value and reveals PIN", func(t *testing.T) {
		store := mocks.NewStore()
		store.UserRepo.On("GetByID", uint(30)).Return(agent(), nil)
		store.CardRepo.On("GetForUpdate", uint(3)).Return(assigned(30), nil)
		store.BalanceRepo.On("Lock", models.OwnerAgency, uint(9), models.BalancePrincipal).Return(float64(5000), nil)
		store.BalanceRepo.On("Set", models.OwnerAgency, uint(9), models.BalancePrincipal, float64(4000)).Return(nil)
		store.BalanceRepo.On("RecordMovement", mock.Anything).Return(nil)
		store.CardRepo.On("Update", mock.MatchedBy(func(c *models.PrepaidCard) bool {
			return c.Status == models.CardStatusSold && c.SoldAt != nil
		})).Return(nil)

		sale, err := newService(store).Sell(context.Background(), agentClaims(), 3)
		require.NoError(t, err)
		assert.Equal(t, "1234567890", sale.Card.PIN)
		assert.Equal(t, sale.Reference, sale.Card.SaleReference)
		store.AssertExpectations(t)
	})

	t.Run("another agent's card", func(t *testing.T) {
		store := mocks.NewStore()
		store.UserRepo.On("GetByID", uint(30)).Return(agent(), nil)
		store.CardRepo.On("GetForUpdate", uint(3)).Return(assigned(31), nil)

		_, err := newService(store).Sell(context.Background(), agentClaims(), 3)
		assert.ErrorIs(t, err, ErrCardNotAssigned)
	})

	t.Run("already sold", func(t *testing.T) {
		sold := assigned(30)
		sold.Status = models.CardStatusSold
		store := mocks.NewStore()
		store.UserRepo.On("GetByID", uint(30)).Return(agent(), nil)
		store.CardRepo.On("GetForUpdate", uint(3)).Return(sold, nil)

		_, err := newService(store).Sell(context.Background(), agentClaims(), 3)
		assert.ErrorIs(t, err, ErrCardSold)
	})

	t.Run("insufficient balance", func(t *testing.T) {
		store := mocks.NewStore()
		store.UserRepo.On("GetByID", uint(30)).Return(agent(), nil)
		store.CardRepo.On("GetForUpdate", uint(3)).Return(assigned(30), nil)
		store.BalanceRepo.On("Lock", models.OwnerAgency, uint(9), models.BalancePrincipal).Return(float64(500), nil)

		_, err := newService(store).Sell(context.Background(), agentClaims(), 3)
		assert.ErrorIs(t, err, apperrors.ErrInsufficientBalance)
		store.CardRepo.AssertNotCalled(t, "Update", mock.Anything)
	})
}

func TestBlock(t *testing.T) {
	store := mocks.NewStore()
	store.CardRepo.On("GetByID", uint(3)).Return(&models.PrepaidCard{ID: 3, PIN: "12345", Status: models.CardStatusAvailable}, nil)
	store.CardRepo.On("GetByID", uint(4)).Return(&models.PrepaidCard{ID: 4, Status: models.CardStatusSold}, nil)
	store.CardRepo.On("Update", mock.Anything).Return(nil)
	svc := newService(store)

	card, err := svc.Block(context.Background(), admin, 3)
	require.NoError(t, err)
	assert.Equal(t, models.CardStatusBlocked, card.Status)
	assert.Equal(t, "***45", card.PIN)

	_, err = svc.Block(context.Background(), admin, 4)
	assert.ErrorIs(t, err, ErrCardSold)
}
