package recharge

import (
	"context"
	"io"
	"strings"
	"testing"

	"relais/internal/commission"
	apperrors "relais/internal/errors"
	"relais/internal/models"
	"relais/internal/repositories"
	"relais/internal/repositories/mocks"
	"relais/internal/services/fee"
	"relais/internal/services/gateway"
	"relais/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func uintPtr(v uint) *uint { return &v }

type fakeGateway struct {
	created []int64
	status  string
}

func (g *fakeGateway) CreateIntent(_ context.Context, amount int64, _, _ string) (*gateway.Intent, error) {
	g.created = append(g.created, amount)
	return &gateway.Intent{ID: "pi_123", ClientSecret: "pi_123_secret", Status: "requires_payment_method", Amount: amount}, nil
}

func (g *fakeGateway) GetIntent(_ context.Context, id string) (*gateway.Intent, error) {
	return &gateway.Intent{ID: id, Status: g.status}, nil
}

type fakeStorage struct{ uploaded string }

func (f *fakeStorage) Upload(_ context.Context, prefix, _ string, r io.Reader) (string, error) {
	b, _ := io.ReadAll(r)
	f.uploaded = string(b)
	return prefix + "/proof.png", nil
}

var (
	wave = &models.PaymentMethod{Code: "wave", Active: true, RequiresProof: true,
		FeeSchedule: commission.Config{Type: commission.TypePercentage, Rate: 1}}
	card = &models.PaymentMethod{Code: "card", Active: true, RequiresGateway: true,
		FeeSchedule: commission.Config{Type: commission.TypeFixed, Amount: 300}}
)

func agent() *models.User {
	u := &models.User{Role: models.RoleAgent, Status: models.UserStatusActive, AgencyID: uintPtr(9), PartnerID: uintPtr(5)}
	u.ID = 30
	return u
}

func agentClaims() *models.UserClaims {
	return &models.UserClaims{UserID: 30, Role: models.RoleAgent, Permissions: models.GetDefaultPermissions(models.RoleAgent)}
}

var admin = &models.UserClaims{UserID: 1, Role: models.RoleAdminGeneral, Permissions: models.GetDefaultPermissions(models.RoleAdminGeneral)}

func build(store *mocks.Store, gw *fakeGateway, files *fakeStorage) Service {
	return NewService(Config{Store: store, Fees: fee.NewService(store), Gateway: gw, Storage: files})
}

func TestCreate(t *testing.T) {
	t.Run("proof upload and net amount", func(t *testing.T) {
		store := mocks.NewStore()
		store.UserRepo.On("GetByID", uint(30)).Return(agent(), nil)
		store.PaymentMethodRepo.On("GetByCode", "wave").Return(wave, nil)
		store.RechargeRepo.On("Create", mock.MatchedBy(func(r *models.AgentRechargeRequest) bool {
			return r.Fee == 500 && r.NetAmount == 49500 && r.Status == models.RechargeStatusPending &&
				strings.HasPrefix(r.ProofPath, "recharges/RCH-")
		})).Return(nil)
		files := &fakeStorage{}

		res, err := build(store, &fakeGateway{}, files).Create(context.Background(), agentClaims(),
			CreateInput{Amount: 50000, Method: "wave"},
			&Proof{ContentType: "image/png", Body: strings.NewReader("png-bytes")})
		require.NoError(t, err)
		assert.Empty(t, res.ClientSecret)
		assert.Equal(t, "png-bytes", files.uploaded)
		store.AssertExpectations(t)
	})

	t.Run("proof missing", func(t *testing.T) {
		store := mocks.NewStore()
		store.UserRepo.On("GetByID", uint(30)).Return(agent(), nil)
		store.PaymentMethodRepo.On("GetByCode", "wave").Return(wave, nil)

		_, err := build(store, &fakeGateway{}, &fakeStorage{}).Create(context.Background(), agentClaims(),
			CreateInput{Amount: 50000, Method: "wave"}, nil)
		assert.ErrorIs(t, err, ErrProofRequired)
	})

	t.Run("card creates payment intent", func(t *testing.T) {
		store := mocks.NewStore()
		store.UserRepo.On("GetByID", uint(30)).Return(agent(), nil)
		store.PaymentMethodRepo.On("GetByCode", "card").Return(card, nil)
		store.RechargeRepo.On("Create", mock.MatchedBy(func(r *models.AgentRechargeRequest) bool {
			return r.GatewayReference == "pi_123" && r.NetAmount == 9700
		})).Return(nil)
		gw := &fakeGateway{}

		res, err := build(store, gw, &fakeStorage{}).Create(context.Background(), agentClaims(),
			CreateInput{Amount: 10000, Method: "card"}, nil)
		require.NoError(t, err)
		assert.Equal(t, "pi_123_secret", res.ClientSecret)
		assert.Equal(t, []int64{10000}, gw.created)
	})

	t.Run("validation", func(t *testing.T) {
		_, err := build(mocks.NewStore(), &fakeGateway{}, &fakeStorage{}).Create(context.Background(), agentClaims(),
			CreateInput{Amount: 0, Method: ""}, nil)
		var verr validation.Error
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "amount")
		assert.Contains(t, verr.Fields, "payment_method")
	})
}

func pendingRequest(gatewayRef string) *models.AgentRechargeRequest {
	return &models.AgentRechargeRequest{
		ID: 4, Reference: "RCH-1", AgentID: 30, AgencyID: uintPtr(9), PartnerID: uintPtr(5),
		Amount: 10000, Fee: 300, NetAmount: 9700, PaymentMethodCode: "card",
		GatewayReference: gatewayRef, Status: models.RechargeStatusPending,
	}
}

func TestApprove(t *testing.T) {
	t.Run("credits net amount", func(t *testing.T) {
		store := mocks.NewStore()
		store.RechargeRepo.On("GetByID", uint(4)).Return(pendingRequest("pi_123"), nil)
		store.RechargeRepo.On("GetForUpdate", uint(4)).Return(pendingRequest("pi_123"), nil)
		store.BalanceRepo.On("Lock", models.OwnerAgency, uint(9), models.BalancePrincipal).Return(float64(300), nil)
		store.BalanceRepo.On("Set", models.OwnerAgency, uint(9), models.BalancePrincipal, float64(10000)).Return(nil)
		store.BalanceRepo.On("RecordMovement", mock.Anything).Return(nil)
		store.RechargeRepo.On("Update", mock.MatchedBy(func(r *models.AgentRechargeRequest) bool {
			return r.Status == models.RechargeStatusApproved && *r.ProcessedBy == 1
		})).Return(nil)
		store.UserRepo.On("GetByID", uint(30)).Return(agent(), nil)

		req, err := build(store, &fakeGateway{status: "succeeded"}, nil).Approve(context.Background(), admin, 4)
		require.NoError(t, err)
		assert.Equal(t, models.RechargeStatusApproved, req.Status)
		store.AssertExpectations(t)
	})

	t.Run("card payment not captured", func(t *testing.T) {
		store := mocks.NewStore()
		store.RechargeRepo.On("GetByID", uint(4)).Return(pendingRequest("pi_123"), nil)

		_, err := build(store, &fakeGateway{status: "processing"}, nil).Approve(context.Background(), admin, 4)
		assert.ErrorIs(t, err, ErrPaymentIncomplete)
	})

	t.Run("already decided", func(t *testing.T) {
		done := pendingRequest("")
		done.Status = models.RechargeStatusRejected

		store := mocks.NewStore()
		store.RechargeRepo.On("GetByID", uint(4)).Return(done, nil)

		_, err := build(store, &fakeGateway{}, nil).Approve(context.Background(), admin, 4)
		assert.ErrorIs(t, err, ErrInvalidStatusTransition)
	})

	t.Run("agents cannot approve", func(t *testing.T) {
		_, err := build(mocks.NewStore(), &fakeGateway{}, nil).Approve(context.Background(), agentClaims(), 4)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})
}

func TestReject(t *testing.T) {
	store := mocks.NewStore()
	store.RechargeRepo.On("GetForUpdate", uint(4)).Return(pendingRequest(""), nil)
	store.RechargeRepo.On("Update", mock.MatchedBy(func(r *models.AgentRechargeRequest) bool {
		return r.Status == models.RechargeStatusRejected && r.RejectionReason == "blurry receipt"
	})).Return(nil)
	store.UserRepo.On("GetByID", uint(30)).Return(agent(), nil)

	_, err := build(store, &fakeGateway{}, nil).Reject(context.Background(), admin, 4, "blurry receipt")
	require.NoError(t, err)
	store.BalanceRepo.AssertNotCalled(t, "Lock", mock.Anything, mock.Anything, mock.Anything)

	_, err = build(mocks.NewStore(), &fakeGateway{}, nil).Reject(context.Background(), admin, 4, " ")
	var verr validation.Error
	assert.ErrorAs(t, err, &verr)
}

func TestScope(t *testing.T) {
	f, err := Scope(agentClaims(), repositories.RechargeFilter{})
	require.NoError(t, err)
	assert.Equal(t, uint(30), *f.AgentID)

	partner := &models.UserClaims{UserID: 3, Role: models.RolePartner, PartnerID: uintPtr(5),
		Permissions: models.GetDefaultPermissions(models.RolePartner)}
	f, err = Scope(partner, repositories.RechargeFilter{})
	require.NoError(t, err)
	assert.Equal(t, uint(5), *f.PartnerID)

	_, err = Scope(&models.UserClaims{Role: models.RoleDeveloper, Permissions: models.GetDefaultPermissions(models.RoleDeveloper)}, repositories.RechargeFilter{})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}
