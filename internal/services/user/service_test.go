package user

import (
	"context"
	"testing"

	apperrors "relais/internal/errors"
	"relais/internal/events"
	"relais/internal/models"
	"relais/internal/repositories"
	"relais/internal/repositories/mocks"
	"relais/internal/utils/pagination"
	"relais/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func uintPtr(v uint) *uint { return &v }

func claims(id uint, role string, granted ...string) *models.UserClaims {
	return &models.UserClaims{UserID: id, Role: role, Permissions: models.GetDefaultPermissions(role, granted...)}
}

func newService(store *mocks.Store) Service {
	return NewService(store, events.Noop{}, zap.NewNop())
}

func validInput(role string) CreateInput {
	return CreateInput{
		Email:    "new@relais.test",
		Phone:    "+221770000002",
		Name:     "New User",
		Password: "Str0ng!pass",
		Role:     role,
	}
}

func expectUnique(store *mocks.Store) {
	store.UserRepo.On("GetByEmail", "new@relais.test").Return(nil, repositories.ErrUserNotFound)
	store.UserRepo.On("GetByPhone", "+221770000002").Return(nil, repositories.ErrUserNotFound)
}

func TestCreate_RoleMatrix(t *testing.T) {
	tests := []struct {
		name    string
		actor   *models.UserClaims
		role    string
		allowed bool
	}{
		{"admin creates sub-admin", claims(1, models.RoleAdminGeneral), models.RoleSousAdmin, true},
		{"admin creates developer", claims(1, models.RoleAdminGeneral), models.RoleDeveloper, true},
		{"sub-admin with user:write creates partner", claims(2, models.RoleSousAdmin, models.PermissionUserWrite), models.RolePartner, true},
		{"sub-admin without user:write", claims(2, models.RoleSousAdmin), models.RoleAgent, false},
		{"sub-admin cannot create admin", claims(2, models.RoleSousAdmin, models.PermissionUserWrite), models.RoleAdminGeneral, false},
		{"partner cannot create partner", claims(3, models.RolePartner), models.RolePartner, false},
		{"agent cannot create", claims(4, models.RoleAgent), models.RoleAgent, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := mocks.NewStore()
			if tt.allowed {
				expectUnique(store)
				store.UserRepo.On("Create", mock.Anything).Return(nil)
			}

			u, err := newService(store).Create(context.Background(), tt.actor, validInput(tt.role))
			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, tt.role, u.Role)
				assert.NotEqual(t, "Str0ng!pass", u.Password)
			} else {
				assert.ErrorIs(t, err, ErrRoleNotAllowed)
			}
			store.AssertExpectations(t)
		})
	}
}

func TestCreate_PartnerAgentJoinsPartnerAgency(t *testing.T) {
	store := mocks.NewStore()
	expectUnique(store)
	store.AgencyRepo.On("GetByPartnerID", uint(5)).Return(&models.Agency{ID: 9, PartnerID: 5}, nil)
	store.UserRepo.On("Create", mock.MatchedBy(func(u *models.User) bool {
		return *u.PartnerID == 5 && *u.AgencyID == 9 && *u.CreatedBy == 3
	})).Return(nil)

	actor := claims(3, models.RolePartner)
	actor.PartnerID = uintPtr(5)
	actor.AgencyID = uintPtr(9)

	input := validInput(models.RoleAgent)
	input.PartnerID = uintPtr(77)

	_, err := newService(store).Create(context.Background(), actor, input)
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestCreate_Validation(t *testing.T) {
	input := validInput(models.RoleAgent)
	input.Email = "not-an-email"

	_, err := newService(mocks.NewStore()).Create(context.Background(), claims(1, models.RoleAdminGeneral), input)
	var verr validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "email")
}

func TestCreate_DuplicateEmail(t *testing.T) {
	store := mocks.NewStore()
	existing := &models.User{}
	existing.ID = 50
	store.UserRepo.On("GetByEmail", "new@relais.test").Return(existing, nil)

	_, err := newService(store).Create(context.Background(), claims(1, models.RoleAdminGeneral), validInput(models.RoleAgent))
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestCreate_SousAdminPermissionsMustBeGrantable(t *testing.T) {
	store := mocks.NewStore()
	expectUnique(store)

	input := validInput(models.RoleSousAdmin)
	input.Permissions = []string{models.PermissionBalanceAdjust}

	_, err := newService(store).Create(context.Background(), claims(1, models.RoleAdminGeneral), input)
	assert.ErrorIs(t, err, ErrNotGrantable)
}

func TestSetPermissions(t *testing.T) {
	target := &models.User{Role: models.RoleSousAdmin, TokenVersion: 1}
	target.ID = 20

	store := mocks.NewStore()
	store.UserRepo.On("GetByID", uint(20)).Return(target, nil)
	store.UserRepo.On("Update", mock.MatchedBy(func(u *models.User) bool {
		return u.TokenVersion == 2 && len(u.Permissions) == 1
	})).Return(nil)

	u, err := newService(store).SetPermissions(context.Background(), claims(1, models.RoleAdminGeneral), 20,
		[]string{models.PermissionTransactionValidate})
	require.NoError(t, err)
	assert.Equal(t, []string{models.PermissionTransactionValidate}, []string(u.Permissions))

	_, err = newService(store).SetPermissions(context.Background(), claims(2, models.RoleSousAdmin, models.PermissionUserWrite), 20, nil)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestSetStatus(t *testing.T) {
	agent := &models.User{Role: models.RoleAgent, PartnerID: uintPtr(5), TokenVersion: 3}
	agent.ID = 30

	t.Run("partner suspends own agent", func(t *testing.T) {
		store := mocks.NewStore()
		store.UserRepo.On("GetByID", uint(30)).Return(agent, nil)
		store.UserRepo.On("Update", mock.MatchedBy(func(u *models.User) bool {
			return u.Status == models.UserStatusSuspended && u.TokenVersion == 4
		})).Return(nil)

		partner := claims(3, models.RolePartner)
		partner.PartnerID = uintPtr(5)
		_, err := newService(store).SetStatus(context.Background(), partner, 30, models.UserStatusSuspended)
		require.NoError(t, err)
	})

	t.Run("other partner refused", func(t *testing.T) {
		store := mocks.NewStore()
		store.UserRepo.On("GetByID", uint(30)).Return(agent, nil)

		partner := claims(4, models.RolePartner)
		partner.PartnerID = uintPtr(6)
		_, err := newService(store).SetStatus(context.Background(), partner, 30, models.UserStatusActive)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("self", func(t *testing.T) {
		_, err := newService(mocks.NewStore()).SetStatus(context.Background(), claims(30, models.RoleAdminGeneral), 30, models.UserStatusSuspended)
		assert.ErrorIs(t, err, ErrSelfAction)
	})

	t.Run("unknown status", func(t *testing.T) {
		_, err := newService(mocks.NewStore()).SetStatus(context.Background(), claims(1, models.RoleAdminGeneral), 30, "deleted")
		assert.ErrorIs(t, err, ErrInvalidUserStatus)
	})
}

func TestList_PartnerScope(t *testing.T) {
	store := mocks.NewStore()
	store.UserRepo.On("List", repositories.UserFilter{Role: models.RoleAgent, PartnerID: uintPtr(5)}, 0, 20).
		Return([]models.User{}, int64(0), nil)

	partner := claims(3, models.RolePartner)
	partner.PartnerID = uintPtr(5)

	_, _, err := newService(store).List(context.Background(), partner, repositories.UserFilter{Role: models.RoleAgent}, pagination.New(1, 20))
	require.NoError(t, err)
	store.AssertExpectations(t)

	_, _, err = newService(store).List(context.Background(), claims(8, models.RoleAgent), repositories.UserFilter{}, pagination.New(1, 20))
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestAssignAgency(t *testing.T) {
	agent := &models.User{Role: models.RoleAgent}
	agent.ID = 30

	store := mocks.NewStore()
	store.UserRepo.On("GetByID", uint(30)).Return(agent, nil)
	store.AgencyRepo.On("GetByID", uint(9)).Return(&models.Agency{ID: 9, PartnerID: 5}, nil)
	store.UserRepo.On("Update", mock.MatchedBy(func(u *models.User) bool {
		return *u.AgencyID == 9 && *u.PartnerID == 5
	})).Return(nil)

	_, err := newService(store).AssignAgency(context.Background(), claims(1, models.RoleAdminGeneral), 30, 9)
	require.NoError(t, err)
	store.AssertExpectations(t)
}
