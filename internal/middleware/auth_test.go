package middleware

import (
	"context"
	"net/http/httptest"
	"testing"

	"relais/internal/models"
	"relais/internal/services/auth"
	"relais/internal/utils"

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

func (m *mockAuth) Authenticate(ctx context.Context, token string) (*models.UserClaims, error) {
	args := m.Called(token)
	claims, _ := args.Get(0).(*models.UserClaims)
	return claims, args.Error(1)
}

func agentClaims() *models.UserClaims {
	return &models.UserClaims{UserID: 7, Role: models.RoleAgent, Permissions: models.GetDefaultPermissions(models.RoleAgent)}
}

func newApp(svc auth.Service, guards ...fiber.Handler) *fiber.App {
	app := fiber.New()
	handlers := append([]fiber.Handler{NewAuthMiddleware(svc, zap.NewNop()).Handler}, guards...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		claims, err := utils.GetUserClaims(c)
		if err != nil {
			return err
		}
		return c.SendString(claims.Role)
	})
	app.Get("/", handlers...)
	return app
}

func get(t *testing.T, app *fiber.App, header string) int {
	req := httptest.NewRequest(fiber.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(fiber.HeaderAuthorization, header)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestAuthMiddleware(t *testing.T) {
	svc := new(mockAuth)
	svc.On("Authenticate", "good").Return(agentClaims(), nil)
	svc.On("Authenticate", "stale").Return(nil, auth.ErrSessionExpired)
	app := newApp(svc)

	assert.Equal(t, fiber.StatusOK, get(t, app, "Bearer good"))
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, ""))
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "Token good"))
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "Bearer stale"))
}

func TestRequireRoles(t *testing.T) {
	svc := new(mockAuth)
	svc.On("Authenticate", "good").Return(agentClaims(), nil)

	assert.Equal(t, fiber.StatusOK, get(t, newApp(svc, RequireRoles(models.RolePartner, models.RoleAgent)), "Bearer good"))
	assert.Equal(t, fiber.StatusForbidden, get(t, newApp(svc, RequireRoles(models.RoleAdminGeneral)), "Bearer good"))
}

func TestHasPermission(t *testing.T) {
	svc := new(mockAuth)
	svc.On("Authenticate", "agent").Return(agentClaims(), nil)
	svc.On("Authenticate", "admin").Return(&models.UserClaims{UserID: 1, Role: models.RoleAdminGeneral}, nil)

	assert.Equal(t, fiber.StatusOK, get(t, newApp(svc, HasPermission(models.PermissionTransactionExecute)), "Bearer agent"))
	assert.Equal(t, fiber.StatusForbidden, get(t, newApp(svc, HasPermission(models.PermissionCardWrite)), "Bearer agent"))
	assert.Equal(t, fiber.StatusOK, get(t, newApp(svc, HasPermission(models.PermissionCardWrite)), "Bearer admin"))
}
