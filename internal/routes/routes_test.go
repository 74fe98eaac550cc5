package routes

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"relais/internal/config"
	"relais/internal/handlers"
	"relais/internal/middleware"
	"relais/internal/models"
	"relais/internal/services/auth"
	"relais/internal/services/partner"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockAuth struct {
	auth.Service
	mock.Mock
}

func (m *mockAuth) Login(ctx context.Context, identifier, password, ip string) (*models.User, *auth.Tokens, error) {
	args := m.Called(identifier, password)
	return nil, nil, args.Error(2)
}

func (m *mockAuth) Authenticate(ctx context.Context, token string) (*models.UserClaims, error) {
	args := m.Called(token)
	claims, _ := args.Get(0).(*models.UserClaims)
	return claims, args.Error(1)
}

type mockPartners struct {
	partner.Service
	mock.Mock
}

func (m *mockPartners) ActivateContract(ctx context.Context, actor *models.UserClaims, id uint, confirm bool) (*models.Contract, error) {
	args := m.Called(actor.Role, id, confirm)
	contract, _ := args.Get(0).(*models.Contract)
	return contract, args.Error(1)
}

func claimsFor(role string) *models.UserClaims {
	return &models.UserClaims{UserID: 1, Role: role, Permissions: models.GetDefaultPermissions(role)}
}

func newApp(authSvc *mockAuth, partners *mockPartners) *fiber.App {
	app := fiber.New()
	SetupRoutes(app, Handlers{
		Auth:     middleware.NewAuthMiddleware(authSvc, zap.NewNop()),
		AuthH:    handlers.NewAuthHandler(authSvc, nil, config.AuthConfig{}, false),
		Partners: handlers.NewPartnerHandler(partners),
	})
	return app
}

func send(t *testing.T, app *fiber.App, method, target, token, body string) int {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestLoginIsRateLimited(t *testing.T) {
	authSvc := new(mockAuth)
	authSvc.On("Login", "agent@relais.test", "wrong!pass").Return(nil, nil, auth.ErrInvalidCredentials)
	app := newApp(authSvc, new(mockPartners))

	body := `{"identifier":"agent@relais.test","password":"wrong!pass"}`
	for i := 0; i < LoginLimit; i++ {
		assert.Equal(t, fiber.StatusUnauthorized, send(t, app, fiber.MethodPost, "/api/login", "", body), "attempt %d", i+1)
	}
	assert.Equal(t, fiber.StatusTooManyRequests, send(t, app, fiber.MethodPost, "/api/login", "", body))
	authSvc.AssertNumberOfCalls(t, "Login", LoginLimit)
}

func TestContractActivationGuard(t *testing.T) {
	tests := []struct {
		name string
		role string
		want int
	}{
		{name: "agent", role: models.RoleAgent, want: fiber.StatusForbidden},
		{name: "partner", role: models.RolePartner, want: fiber.StatusForbidden},
		{name: "developer", role: models.RoleDeveloper, want: fiber.StatusForbidden},
		{name: "sub-admin without grant", role: models.RoleSousAdmin, want: fiber.StatusForbidden},
		{name: "general admin", role: models.RoleAdminGeneral, want: fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authSvc := new(mockAuth)
			authSvc.On("Authenticate", "token").Return(claimsFor(tt.role), nil)
			partners := new(mockPartners)
			partners.On("ActivateContract", models.RoleAdminGeneral, uint(5), true).
				Return(&models.Contract{ID: 5, Status: models.ContractStatusActive}, nil).Maybe()

			status := send(t, newApp(authSvc, partners), fiber.MethodPost, "/api/contracts/5/activate?confirm=true", "token", "")
			assert.Equal(t, tt.want, status)
			partners.AssertExpectations(t)
		})
	}
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	app := newApp(new(mockAuth), new(mockPartners))

	assert.Equal(t, fiber.StatusUnauthorized, send(t, app, fiber.MethodPost, "/api/contracts/5/activate", "", ""))
	assert.Equal(t, fiber.StatusUnauthorized, send(t, app, fiber.MethodGet, "/api/users", "", ""))
}

func TestUserListGuard(t *testing.T) {
	authSvc := new(mockAuth)
	authSvc.On("Authenticate", "dev").Return(claimsFor(models.RoleDeveloper), nil)

	status := send(t, newApp(authSvc, new(mockPartners)), fiber.MethodGet, "/api/users", "dev", "")
	assert.Equal(t, fiber.StatusForbidden, status)
}
