// Package routes defines the API routing configuration.
// It sets up all HTTP routes and their corresponding handlers,
// including middleware and authentication requirements.
package routes

import (
	"time"

	"relais/internal/handlers"
	"relais/internal/metrics"
	"relais/internal/middleware"
	"relais/internal/models"
	"relais/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth           *middleware.AuthMiddleware
	AuthH          *handlers.AuthHandler
	Users          *handlers.UserHandler
	Partners       *handlers.PartnerHandler
	Operations     *handlers.OperationHandler
	PaymentMethods *handlers.PaymentMethodHandler
	Transactions   *handlers.TransactionHandler
	Recharges      *handlers.RechargeHandler
	Cards          *handlers.CardHandler
	Balances       *handlers.BalanceHandler
	Dashboard      *handlers.DashboardHandler
	Health         *handlers.HealthHandler
}

// LoginLimit is the number of login attempts allowed per IP per minute.
const LoginLimit = 10

// SetupRoutes configures all application routes.
// It groups routes by functionality and applies appropriate middleware.
func SetupRoutes(app *fiber.App, h Handlers) {
	app.Get("/health", h.Health.Check)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	api := app.Group("/api")

	// Public endpoints (no auth required)
	loginLimiter := limiter.New(limiter.Config{
		Max:        LoginLimit,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return response.Error(c, fiber.StatusTooManyRequests, "too many login attempts, try again later")
		},
	})
	api.Post("/login", loginLimiter, h.AuthH.Login)
	api.Post("/refresh", h.AuthH.RefreshToken)

	protected := api.Group("", h.Auth.Handler)

	authGroup := protected.Group("/auth")
	authGroup.Get("/me", h.AuthH.Me)
	authGroup.Post("/logout", h.AuthH.Logout)
	authGroup.Post("/change-password", middleware.HasPermission(models.PermissionChangePassword), h.AuthH.ChangePassword)
	authGroup.Post("/devices", h.AuthH.RegisterDevice)

	protected.Get("/dashboard", middleware.HasPermission(models.PermissionDashboard), h.Dashboard.Get)

	users := protected.Group("/users")
	users.Post("/", middleware.HasPermission(models.PermissionUserWrite), h.Users.Create)
	users.Get("/", middleware.HasPermission(models.PermissionUserRead), h.Users.List)
	users.Get("/:id", h.Users.Get)
	users.Patch("/:id", h.Users.Update)
	users.Patch("/:id/status", middleware.HasPermission(models.PermissionUserWrite), h.Users.SetStatus)
	users.Put("/:id/permissions", middleware.RequireRoles(models.RoleAdminGeneral), h.Users.SetPermissions)
	users.Put("/:id/agency", middleware.HasPermission(models.PermissionUserWrite), h.Users.AssignAgency)
	users.Delete("/:id", middleware.HasPermission(models.PermissionUserWrite), h.Users.Delete)

	partners := protected.Group("/partners", middleware.HasPermission(models.PermissionPartnerRead))
	partners.Post("/", middleware.HasPermission(models.PermissionPartnerWrite), h.Partners.Create)
	partners.Get("/", h.Partners.List)
	partners.Get("/:id", h.Partners.Get)
	partners.Patch("/:id/status", middleware.HasPermission(models.PermissionPartnerWrite), h.Partners.SetStatus)
	partners.Get("/:id/contracts", h.Partners.ListContracts)
	partners.Get("/:id/contracts/active", h.Partners.ActiveContract)

	contracts := protected.Group("/contracts")
	contracts.Get("/:id", middleware.HasPermission(models.PermissionPartnerRead), h.Partners.GetContract)
	writeContracts := middleware.HasPermission(models.PermissionContractWrite)
	contracts.Post("/", writeContracts, h.Partners.CreateContract)
	contracts.Patch("/:id", writeContracts, h.Partners.UpdateContract)
	contracts.Post("/:id/exceptions", writeContracts, h.Partners.AddException)
	contracts.Put("/:id/exceptions/order", writeContracts, h.Partners.ReorderExceptions)
	contracts.Delete("/:id/exceptions/:index", writeContracts, h.Partners.RemoveException)
	contracts.Post("/:id/activate", writeContracts, h.Partners.ActivateContract)
	contracts.Post("/:id/deactivate", writeContracts, h.Partners.DeactivateContract)

	ops := protected.Group("/operation-types", middleware.HasPermission(models.PermissionOperationRead))
	ops.Get("/", h.Operations.List)
	ops.Get("/:id", h.Operations.Get)
	ops.Get("/:id/fee", h.Operations.PreviewFee)
	ops.Post("/", middleware.HasPermission(models.PermissionOperationWrite), h.Operations.Create)
	ops.Patch("/:id", middleware.HasPermission(models.PermissionOperationWrite), h.Operations.Update)
	ops.Delete("/:id", middleware.HasPermission(models.PermissionOperationWrite), h.Operations.Delete)

	methods := protected.Group("/payment-methods")
	methods.Get("/", h.PaymentMethods.List)
	methods.Get("/:code/fee", h.PaymentMethods.Quote)
	methods.Put("/", middleware.HasPermission(models.PermissionOperationWrite), h.PaymentMethods.Upsert)

	txs := protected.Group("/transactions", middleware.HasPermission(models.PermissionTransactionRead))
	txs.Post("/", middleware.HasPermission(models.PermissionTransactionExecute), h.Transactions.Execute)
	txs.Get("/", h.Transactions.List)
	txs.Get("/:id", h.Transactions.Get)
	decide := middleware.HasPermission(models.PermissionTransactionValidate)
	txs.Post("/:id/validate", decide, h.Transactions.Validate)
	txs.Post("/:id/reject", decide, h.Transactions.Reject)
	txs.Post("/:id/reassign", decide, h.Transactions.Reassign)

	recharges := protected.Group("/recharges", middleware.HasPermission(models.PermissionRechargeRead))
	recharges.Post("/", middleware.HasPermission(models.PermissionRechargeRequest), h.Recharges.Create)
	recharges.Get("/", h.Recharges.List)
	recharges.Get("/:id", h.Recharges.Get)
	recharges.Post("/:id/approve", middleware.HasPermission(models.PermissionRechargeApprove), h.Recharges.Approve)
	recharges.Post("/:id/reject", middleware.HasPermission(models.PermissionRechargeApprove), h.Recharges.Reject)

	cards := protected.Group("/cards")
	cards.Get("/", middleware.HasPermission(models.PermissionCardRead), h.Cards.List)
	cards.Get("/stats", middleware.HasPermission(models.PermissionCardRead), h.Cards.Stats)
	cards.Post("/import", middleware.HasPermission(models.PermissionCardWrite), h.Cards.Import)
	cards.Post("/assign", middleware.HasPermission(models.PermissionCardWrite), h.Cards.Assign)
	cards.Post("/:id/block", middleware.HasPermission(models.PermissionCardWrite), h.Cards.Block)
	cards.Post("/:id/sell", middleware.HasPermission(models.PermissionCardSell), h.Cards.Sell)

	balances := protected.Group("/balances", middleware.HasPermission(models.PermissionBalanceRead))
	balances.Get("/me", h.Balances.Mine)
	balances.Get("/me/movements", h.Balances.MyHistory)
	balances.Get("/:owner/:id/movements", h.Balances.History)
	balances.Post("/adjust", middleware.HasPermission(models.PermissionBalanceAdjust), h.Balances.Adjust)
}
