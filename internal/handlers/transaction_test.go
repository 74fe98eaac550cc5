package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "relais/internal/errors"
	"relais/internal/models"
	"relais/internal/repositories"
	"relais/internal/services/transaction"
	"relais/internal/utils"
	"relais/internal/utils/pagination"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTransactions struct {
	mock.Mock
}

func (m *mockTransactions) Execute(ctx context.Context, actor *models.UserClaims, input transaction.ExecuteInput) (*models.Transaction, error) {
	args := m.Called(actor, input)
	tx, _ := args.Get(0).(*models.Transaction)
	return tx, args.Error(1)
}

func (m *mockTransactions) Validate(ctx context.Context, actor *models.UserClaims, id uint) (*models.Transaction, error) {
	args := m.Called(actor, id)
	tx, _ := args.Get(0).(*models.Transaction)
	return tx, args.Error(1)
}

func (m *mockTransactions) Reject(ctx context.Context, actor *models.UserClaims, id uint, reason string) (*models.Transaction, error) {
	args := m.Called(actor, id, reason)
	tx, _ := args.Get(0).(*models.Transaction)
	return tx, args.Error(1)
}

func (m *mockTransactions) Reassign(ctx context.Context, actor *models.UserClaims, id, assigneeID uint) (*models.Transaction, error) {
	args := m.Called(actor, id, assigneeID)
	tx, _ := args.Get(0).(*models.Transaction)
	return tx, args.Error(1)
}

func (m *mockTransactions) Get(ctx context.Context, actor *models.UserClaims, id uint) (*models.Transaction, error) {
	args := m.Called(actor, id)
	tx, _ := args.Get(0).(*models.Transaction)
	return tx, args.Error(1)
}

func (m *mockTransactions) List(ctx context.Context, actor *models.UserClaims, filter repositories.TransactionFilter, p pagination.Pagination) ([]models.Transaction, int64, error) {
	args := m.Called(actor, filter, p)
	txs, _ := args.Get(0).([]models.Transaction)
	return txs, args.Get(1).(int64), args.Error(2)
}

var agent = &models.UserClaims{UserID: 7, Role: models.RoleAgent, Permissions: models.GetDefaultPermissions(models.RoleAgent)}

func transactionApp(svc transaction.Service, claims *models.UserClaims) *fiber.App {
	h := NewTransactionHandler(svc)
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if claims != nil {
			c.Locals(utils.ClaimsKey, claims)
		}
		return c.Next()
	})
	app.Post("/transactions", h.Execute)
	app.Get("/transactions", h.List)
	app.Get("/transactions/:id", h.Get)
	app.Post("/transactions/:id/reject", h.Reject)
	return app
}

func do(t *testing.T, app *fiber.App, method, target, body string) (int, map[string]interface{}) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)

	out := map[string]interface{}{}
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func TestTransactionHandler_Execute(t *testing.T) {
	svc := new(mockTransactions)
	input := transaction.ExecuteInput{OperationTypeID: 3, Amount: 15000, Fields: map[string]interface{}{"phone": "0700000000"}}
	svc.On("Execute", agent, input).Return(&models.Transaction{ID: 11, Reference: "TX-1", Status: models.TransactionStatusPending}, nil)

	status, body := do(t, transactionApp(svc, agent), fiber.MethodPost, "/transactions",
		`{"operation_type_id":3,"amount":15000,"fields":{"phone":"0700000000"}}`)

	assert.Equal(t, fiber.StatusCreated, status)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "TX-1", data["reference"])
	svc.AssertExpectations(t)
}

func TestTransactionHandler_ExecuteRejectsInvalidBody(t *testing.T) {
	svc := new(mockTransactions)
	app := transactionApp(svc, agent)

	status, body := do(t, app, fiber.MethodPost, "/transactions", `{"operation_type_id":3,"amount":0}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Contains(t, body["fields"], "amount")

	status, body = do(t, app, fiber.MethodPost, "/transactions", `{not json`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "INVALID_BODY", body["code"])

	svc.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestTransactionHandler_RequiresClaims(t *testing.T) {
	svc := new(mockTransactions)

	status, body := do(t, transactionApp(svc, nil), fiber.MethodGet, "/transactions/1", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", body["code"])
}

func TestTransactionHandler_GetMapsDomainErrors(t *testing.T) {
	svc := new(mockTransactions)
	svc.On("Get", agent, uint(9)).Return(nil, apperrors.ErrNotFound)
	app := transactionApp(svc, agent)

	status, _ := do(t, app, fiber.MethodGet, "/transactions/9", "")
	assert.Equal(t, fiber.StatusNotFound, status)

	status, body := do(t, app, fiber.MethodGet, "/transactions/abc", "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "INVALID_ID", body["code"])
	svc.AssertExpectations(t)
}

func TestTransactionHandler_ListPassesFilters(t *testing.T) {
	svc := new(mockTransactions)
	svc.On("List", agent, mock.MatchedBy(func(f repositories.TransactionFilter) bool {
		return f.Status == models.TransactionStatusPending &&
			f.OperationTypeID != nil && *f.OperationTypeID == 3 &&
			f.From != nil && f.From.Format("2006-01-02") == "2026-03-01" &&
			f.AgentID == nil
	}), mock.Anything).Return([]models.Transaction{{ID: 1}, {ID: 2}}, int64(2), nil)

	status, body := do(t, transactionApp(svc, agent), fiber.MethodGet,
		"/transactions?status=pending&operation_type_id=3&from=2026-03-01", "")

	assert.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["data"], 2)
	meta := body["meta"].(map[string]interface{})
	assert.Equal(t, float64(2), meta["total_items"])
	svc.AssertExpectations(t)
}

func TestTransactionHandler_ListRejectsMalformedFilters(t *testing.T) {
	svc := new(mockTransactions)
	app := transactionApp(svc, agent)

	for _, query := range []string{"agent_id=abc", "operation_type_id=0", "from=yesterday", "assigned_to=-4"} {
		status, body := do(t, app, fiber.MethodGet, "/transactions?"+query, "")
		assert.Equal(t, fiber.StatusBadRequest, status, query)
		assert.Equal(t, "INVALID_QUERY", body["code"], query)
	}
	svc.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
}

func TestTransactionHandler_Reject(t *testing.T) {
	svc := new(mockTransactions)
	svc.On("Reject", agent, uint(4), "wrong number").
		Return(nil, transaction.ErrInvalidStatusTransition)
	app := transactionApp(svc, agent)

	status, body := do(t, app, fiber.MethodPost, "/transactions/4/reject", `{"reason":"wrong number"}`)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "TRANSACTION_INVALID_TRANSITION", body["code"])

	status, _ = do(t, app, fiber.MethodPost, "/transactions/4/reject", `{}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	svc.AssertExpectations(t)
}
