// Command admin_seed creates the first general administrator and the
// default recharge payment methods. Running it again changes nothing.
package main

import (
	"context"
	"errors"
	"log"

	"relais/internal/commission"
	"relais/internal/config"
	"relais/internal/logger"
	"relais/internal/models"
	"relais/internal/repositories"
	"relais/internal/services/auth"

	"go.uber.org/zap"
)

var defaultMethods = []models.PaymentMethod{
	{Code: "cash", Name: "Cash deposit", FeeSchedule: commission.Config{Type: commission.TypeNone}, RequiresProof: true, Active: true},
	{Code: "bank_transfer", Name: "Bank transfer", FeeSchedule: commission.Config{Type: commission.TypeNone}, RequiresProof: true, Active: true},
	{Code: "mobile_money", Name: "Mobile money", FeeSchedule: commission.Config{Type: commission.TypePercentage, Rate: 1}, RequiresProof: true, Active: true},
	{Code: "card", Name: "Bank card", FeeSchedule: commission.Config{Type: commission.TypePercentage, Rate: 2.5}, RequiresGateway: true, Active: true},
}

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

	adminEmail := config.GetEnv("ADMIN_EMAIL", "")
	adminPassword := config.GetEnv("ADMIN_PASSWORD", "")
	adminPhone := config.GetEnv("ADMIN_PHONE", "")
	if adminEmail == "" || adminPassword == "" || adminPhone == "" {
		zl.Fatal("ADMIN_EMAIL, ADMIN_PASSWORD, and ADMIN_PHONE must be set in environment")
	}

	db, err := repositories.InitDB(cfg.DB, zl)
	if err != nil {
		zl.Fatal("database", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	ctx := context.Background()
	store := repositories.NewStore(db, nil)

	if err := seedAdmin(ctx, store, adminEmail, adminPhone, adminPassword, zl); err != nil {
		zl.Fatal("seed admin", zap.Error(err))
	}

	for i := range defaultMethods {
		m := defaultMethods[i]
		if _, err := store.PaymentMethods().GetByCode(ctx, m.Code); err == nil {
			continue
		} else if !errors.Is(err, repositories.ErrPaymentMethodNotFound) {
			zl.Fatal("look up payment method", zap.String("code", m.Code), zap.Error(err))
		}
		if err := store.PaymentMethods().Upsert(ctx, &m); err != nil {
			zl.Fatal("seed payment method", zap.String("code", m.Code), zap.Error(err))
		}
		zl.Info("payment method created", zap.String("code", m.Code))
	}
}

func seedAdmin(ctx context.Context, store repositories.Store, email, phone, password string, log *zap.Logger) error {
	_, err := store.Users().GetByEmail(ctx, email)
	if err == nil {
		log.Info("admin user already exists", zap.String("email", email))
		return nil
	}
	if !errors.Is(err, repositories.ErrUserNotFound) {
		return err
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	admin := &models.User{
		Name:         "Administrator",
		Email:        email,
		Phone:        phone,
		Password:     hashed,
		Role:         models.RoleAdminGeneral,
		Status:       models.UserStatusActive,
		Permissions:  models.GetDefaultPermissions(models.RoleAdminGeneral),
		TokenVersion: 1,
	}
	if err := store.Users().Create(ctx, admin); err != nil {
		return err
	}

	log.Info("admin account created", zap.Uint("id", admin.ID), zap.String("email", email))
	return nil
}
