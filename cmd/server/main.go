// Package main is the entry point for the API server.
// It initializes all dependencies, sets up the HTTP and websocket servers,
// and shuts them down gracefully on SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"relais/internal/config"
	"relais/internal/events"
	"relais/internal/handlers"
	"relais/internal/logger"
	"relais/internal/middleware"
	"relais/internal/realtime"
	"relais/internal/repositories"
	"relais/internal/repositories/cache"
	"relais/internal/routes"
	"relais/internal/services/auth"
	"relais/internal/services/balance"
	"relais/internal/services/card"
	"relais/internal/services/dashboard"
	"relais/internal/services/fee"
	"relais/internal/services/gateway"
	"relais/internal/services/notification"
	"relais/internal/services/operation"
	"relais/internal/services/partner"
	"relais/internal/services/recharge"
	"relais/internal/services/storage"
	"relais/internal/services/transaction"
	"relais/internal/services/user"
	"relais/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zl, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer zl.Sync()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repositories.InitDB(cfg.DB, log)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	// Redis is optional: without it the API runs uncached and realtime
	// changes stay on this instance.
	var rdb *redis.Client
	if client, err := cache.NewRedisClient(ctx, cfg.Redis); err != nil {
		log.Warn("redis unavailable, running without cache", zap.Error(err))
	} else {
		rdb = client
		defer rdb.Close()
	}

	var cacheService *cache.Service
	if rdb != nil {
		cacheService = cache.NewService(rdb, cfg.Redis.TTL)
	}
	store := repositories.NewStore(db, cacheService)

	hub := realtime.NewHub(log.Named("realtime"))
	go hub.Run(ctx)

	fanout := events.NewFanout(log.Named("events"))
	if rdb != nil {
		fanout.Add("redis", events.NewRedisPublisher(rdb, events.Channel))
		go func() {
			if err := hub.Subscribe(ctx, rdb, events.Channel); err != nil {
				log.Error("realtime subscription ended", zap.Error(err))
			}
		}()
	} else {
		fanout.Add("local", hub)
	}
	if len(cfg.KafkaBrokers) > 0 {
		kafka := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kafka.Close()
		fanout.Add("kafka", kafka)
	}

	var (
		notifier notification.Notifier = notification.Noop{}
		files    storage.Storage       = storage.Disabled{}
	)
	app, err := config.InitFirebase(ctx, cfg)
	if err != nil {
		return err
	}
	if app != nil {
		if notifier, err = notification.NewFCM(ctx, app, log.Named("fcm")); err != nil {
			return err
		}
		bucket, err := storage.NewFirebaseBucket(ctx, app)
		if err != nil {
			return err
		}
		files = bucket
	} else {
		log.Warn("firebase not configured, push notifications and proof uploads are disabled")
	}

	feeService := fee.NewService(store)
	authService := auth.NewService(store.Users(), cfg.Auth, log.Named("auth"))
	userService := user.NewService(store, fanout, log.Named("user"))
	partnerService := partner.NewService(store, fanout, log.Named("partner"))
	operationService := operation.NewService(store, fanout, log.Named("operation"))
	transactionService := transaction.NewService(store, feeService, notifier, fanout, log.Named("transaction"))
	rechargeService := recharge.NewService(recharge.Config{
		Store:     store,
		Fees:      feeService,
		Gateway:   gateway.NewStripe(cfg.StripeSecretKey),
		Storage:   files,
		Notifier:  notifier,
		Publisher: fanout,
		Log:       log.Named("recharge"),
		Currency:  cfg.Currency,
	})
	cardService := card.NewService(store, notifier, fanout, log.Named("card"))
	balanceService := balance.NewService(store, fanout, log.Named("balance"))
	dashboardService := dashboard.NewService(store)

	api := fiber.New(fiber.Config{
		AppName:      "relais " + version,
		BodyLimit:    handlers.MaxBatchSize + 1<<20,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return response.Error(c, fe.Code, fe.Message)
			}
			log.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
			return response.ServerError(c, "internal server error")
		},
	})
	api.Use(recover.New())
	api.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowCredentials: true,
	}))
	api.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	routes.SetupRoutes(api, routes.Handlers{
		Auth:           middleware.NewAuthMiddleware(authService, log.Named("http")),
		AuthH:          handlers.NewAuthHandler(authService, userService, cfg.Auth, cfg.IsProduction()),
		Users:          handlers.NewUserHandler(userService),
		Partners:       handlers.NewPartnerHandler(partnerService),
		Operations:     handlers.NewOperationHandler(operationService, feeService),
		PaymentMethods: handlers.NewPaymentMethodHandler(store.PaymentMethods(), feeService),
		Transactions:   handlers.NewTransactionHandler(transactionService),
		Recharges:      handlers.NewRechargeHandler(rechargeService),
		Cards:          handlers.NewCardHandler(cardService),
		Balances:       handlers.NewBalanceHandler(balanceService),
		Dashboard:      handlers.NewDashboardHandler(dashboardService),
		Health:         handlers.NewHealthHandler(db, rdb, version),
	})

	ws := realtime.NewServer(cfg.RealtimeAddr, hub, authService, strings.Split(cfg.CORSOrigins, ","))

	errc := make(chan error, 2)
	go func() {
		log.Info("api listening", zap.String("port", cfg.Port))
		errc <- api.Listen(":" + cfg.Port)
	}()
	go func() {
		log.Info("realtime listening", zap.String("addr", cfg.RealtimeAddr))
		if err := ws.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errc:
		log.Error("listener failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := ws.Shutdown(shutdownCtx); err != nil {
		log.Warn("realtime shutdown", zap.Error(err))
	}
	return api.ShutdownWithContext(shutdownCtx)
}
