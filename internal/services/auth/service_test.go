package auth

import (
	"context"
	"testing"
	"time"

	"relais/internal/config"
	"relais/internal/models"
	"relais/internal/repositories"
	"relais/internal/repositories/mocks"
	"relais/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var authCfg = config.AuthConfig{
	JWTSecret:     "access",
	RefreshSecret: "refresh",
	AccessTTL:     time.Minute,
	RefreshTTL:    time.Hour,
}

func newUser(t *testing.T, password string) *models.User {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &models.User{
		Email:        "agent@relais.test",
		Phone:        "+221770000001",
		Password:     string(hashed),
		Role:         models.RoleAgent,
		Status:       models.UserStatusActive,
		TokenVersion: 1,
	}
	u.ID = 10
	return u
}

func TestLogin(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		identifier string
		password   string
		setup      func(*mocks.UserRepository, *models.User)
		wantErr    error
	}{
		{
			name:       "email login",
			identifier: "agent@relais.test",
			password:   "Secret#123",
			setup: func(m *mocks.UserRepository, u *models.User) {
				m.On("GetByEmail", "agent@relais.test").Return(u, nil)
				m.On("Update", mock.MatchedBy(func(u *models.User) bool {
					return u.LastLoginAt != nil && u.LastLoginIP == "10.0.0.1" && u.FailedLoginAttempts == 0
				})).Return(nil)
			},
		},
		{
			name:       "phone login",
			identifier: "+221770000001",
			password:   "Secret#123",
			setup: func(m *mocks.UserRepository, u *models.User) {
				m.On("GetByPhone", "+221770000001").Return(u, nil)
				m.On("Update", mock.Anything).Return(nil)
			},
		},
		{
			name:       "unknown user",
			identifier: "ghost@relais.test",
			password:   "Secret#123",
			setup: func(m *mocks.UserRepository, u *models.User) {
				m.On("GetByEmail", "ghost@relais.test").Return(nil, repositories.ErrUserNotFound)
			},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:       "wrong password counts failure",
			identifier: "agent@relais.test",
			password:   "nope",
			setup: func(m *mocks.UserRepository, u *models.User) {
				m.On("GetByEmail", "agent@relais.test").Return(u, nil)
				m.On("Update", mock.MatchedBy(func(u *models.User) bool {
					return u.FailedLoginAttempts == 1 && u.AccountLockoutUntil == nil
				})).Return(nil)
			},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:       "fifth failure locks account",
			identifier: "agent@relais.test",
			password:   "nope",
			setup: func(m *mocks.UserRepository, u *models.User) {
				u.FailedLoginAttempts = MaxFailedAttempts - 1
				m.On("GetByEmail", "agent@relais.test").Return(u, nil)
				m.On("Update", mock.MatchedBy(func(u *models.User) bool {
					return u.AccountLockoutUntil != nil && u.AccountLockoutUntil.Equal(fixed.Add(LockoutDuration))
				})).Return(nil)
			},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:       "locked account",
			identifier: "agent@relais.test",
			password:   "Secret#123",
			setup: func(m *mocks.UserRepository, u *models.User) {
				until := fixed.Add(time.Minute)
				u.AccountLockoutUntil = &until
				m.On("GetByEmail", "agent@relais.test").Return(u, nil)
			},
			wantErr: ErrAccountLocked,
		},
		{
			name:       "suspended account",
			identifier: "agent@relais.test",
			password:   "Secret#123",
			setup: func(m *mocks.UserRepository, u *models.User) {
				u.Status = models.UserStatusSuspended
				m.On("GetByEmail", "agent@relais.test").Return(u, nil)
			},
			wantErr: ErrAccountInactive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.UserRepository)
			tt.setup(repo, newUser(t, "Secret#123"))

			svc := NewService(repo, authCfg, zap.NewNop()).(*service)
			svc.now = func() time.Time { return fixed }

			user, tokens, err := svc.Login(context.Background(), tt.identifier, tt.password, "10.0.0.1")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, tokens)
			} else {
				require.NoError(t, err)
				assert.Equal(t, uint(10), user.ID)

				claims, err := utils.ParseToken(tokens.AccessToken, authCfg.JWTSecret)
				require.NoError(t, err)
				assert.Contains(t, claims.Permissions, models.PermissionTransactionExecute)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestRefreshTokens(t *testing.T) {
	user := newUser(t, "Secret#123")
	_, refresh, err := utils.GenerateTokens(models.ClaimsFor(user), authCfg)
	require.NoError(t, err)

	t.Run("valid", func(t *testing.T) {
		repo := new(mocks.UserRepository)
		repo.On("GetByID", uint(10)).Return(user, nil)

		tokens, err := NewService(repo, authCfg, zap.NewNop()).RefreshTokens(context.Background(), refresh)
		require.NoError(t, err)
		assert.NotEmpty(t, tokens.AccessToken)
	})

	t.Run("revoked by logout", func(t *testing.T) {
		bumped := *user
		bumped.TokenVersion = 2
		repo := new(mocks.UserRepository)
		repo.On("GetByID", uint(10)).Return(&bumped, nil)

		_, err := NewService(repo, authCfg, zap.NewNop()).RefreshTokens(context.Background(), refresh)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := NewService(new(mocks.UserRepository), authCfg, zap.NewNop()).RefreshTokens(context.Background(), "not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestAuthenticate(t *testing.T) {
	user := newUser(t, "Secret#123")
	access, refresh, err := utils.GenerateTokens(models.ClaimsFor(user), authCfg)
	require.NoError(t, err)

	t.Run("valid", func(t *testing.T) {
		repo := new(mocks.UserRepository)
		repo.On("GetByID", uint(10)).Return(user, nil)

		claims, err := NewService(repo, authCfg, zap.NewNop()).Authenticate(context.Background(), access)
		require.NoError(t, err)
		assert.Equal(t, uint(10), claims.UserID)
		assert.Equal(t, models.RoleAgent, claims.Role)
	})

	t.Run("stale version", func(t *testing.T) {
		bumped := *user
		bumped.TokenVersion = 3
		repo := new(mocks.UserRepository)
		repo.On("GetByID", uint(10)).Return(&bumped, nil)

		_, err := NewService(repo, authCfg, zap.NewNop()).Authenticate(context.Background(), access)
		assert.ErrorIs(t, err, ErrSessionExpired)
	})

	t.Run("suspended", func(t *testing.T) {
		suspended := *user
		suspended.Status = models.UserStatusSuspended
		repo := new(mocks.UserRepository)
		repo.On("GetByID", uint(10)).Return(&suspended, nil)

		_, err := NewService(repo, authCfg, zap.NewNop()).Authenticate(context.Background(), access)
		assert.ErrorIs(t, err, ErrAccountInactive)
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		_, err := NewService(new(mocks.UserRepository), authCfg, zap.NewNop()).Authenticate(context.Background(), refresh)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestChangePassword(t *testing.T) {
	user := newUser(t, "Secret#123")
	repo := new(mocks.UserRepository)
	repo.On("GetByID", uint(10)).Return(user, nil)
	repo.On("Update", mock.MatchedBy(func(u *models.User) bool {
		return u.TokenVersion == 2 && bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("N3w!password")) == nil
	})).Return(nil)

	svc := NewService(repo, authCfg, zap.NewNop())
	require.NoError(t, svc.ChangePassword(context.Background(), 10, "Secret#123", "N3w!password"))
	repo.AssertExpectations(t)

	assert.ErrorIs(t, svc.ChangePassword(context.Background(), 10, "wrong", "N3w!password"), ErrInvalidCredentials)
}

func TestHashPassword(t *testing.T) {
	_, err := HashPassword("short!")
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = HashPassword("longenoughnospecial")
	assert.ErrorIs(t, err, ErrWeakPassword)

	hashed, err := HashPassword("long-enough!")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hashed), []byte("long-enough!")))
}
