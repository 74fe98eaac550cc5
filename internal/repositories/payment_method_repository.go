package repositories

import (
	"context"
	"strings"

	"relais/internal/models"
	"relais/internal/repositories/cache"
	keys "relais/internal/utils/cache"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentMethodRepository interface {
	GetByCode(ctx context.Context, code string) (*models.PaymentMethod, error)
	List(ctx context.Context, activeOnly bool) ([]models.PaymentMethod, error)
	// Upsert inserts the method or updates the one with the same code.
	Upsert(ctx context.Context, method *models.PaymentMethod) error
}

type paymentMethodRepository struct {
	db    *gorm.DB
	cache *cache.Service
	stale invalidator
}

func normalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

func paymentMethodKey(code string) string {
	return keys.GenerateKey(keys.EntityPaymentMethod, keys.KeyCode, code)
}

func (r *paymentMethodRepository) GetByCode(ctx context.Context, code string) (*models.PaymentMethod, error) {
	code = normalizeCode(code)

	return cache.Remember(ctx, r.cache, paymentMethodKey(code), func() (*models.PaymentMethod, error) {
		var method models.PaymentMethod
		if err := r.db.WithContext(ctx).Where("code = ?", code).First(&method).Error; err != nil {
			return nil, translate(err, ErrPaymentMethodNotFound)
		}
		return &method, nil
	})
}

func (r *paymentMethodRepository) List(ctx context.Context, activeOnly bool) ([]models.PaymentMethod, error) {
	q := r.db.WithContext(ctx).Order("name")
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var methods []models.PaymentMethod
	err := q.Find(&methods).Error
	return methods, err
}

func (r *paymentMethodRepository) Upsert(ctx context.Context, method *models.PaymentMethod) error {
	method.Code = normalizeCode(method.Code)
	defer r.stale.Invalidate(ctx, paymentMethodKey(method.Code))

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "fee_schedule", "requires_gateway", "requires_proof", "active", "updated_at"}),
	}).Create(method).Error
	if err != nil || method.Active {
		return err
	}
	// gorm substitutes the column default for a false bool on insert.
	return r.db.WithContext(ctx).Model(&models.PaymentMethod{}).
		Where("code = ?", method.Code).Update("active", false).Error
}
