package repositories

import (
	"context"
	"strings"

	"relais/internal/models"
	"relais/internal/repositories/cache"
	keys "relais/internal/utils/cache"

	"gorm.io/gorm"
)

type OperationTypeRepository interface {
	Create(ctx context.Context, op *models.OperationType) error
	// GetByID is served from cache when possible.
	GetByID(ctx context.Context, id uint) (*models.OperationType, error)
	GetByCode(ctx context.Context, code string) (*models.OperationType, error)
	Update(ctx context.Context, op *models.OperationType) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter OperationTypeFilter, offset, limit int) ([]models.OperationType, int64, error)
}

type operationTypeRepository struct {
	db    *gorm.DB
	cache *cache.Service
	stale invalidator
}

func operationTypeKey(id uint) string {
	return keys.GenerateKey(keys.EntityOperationType, keys.KeyID, id)
}

func (r *operationTypeRepository) Create(ctx context.Context, op *models.OperationType) error {
	op.Code = strings.ToUpper(strings.TrimSpace(op.Code))
	return translate(r.db.WithContext(ctx).Create(op).Error, ErrOperationTypeNotFound)
}

func (r *operationTypeRepository) GetByID(ctx context.Context, id uint) (*models.OperationType, error) {
	return cache.Remember(ctx, r.cache, operationTypeKey(id), func() (*models.OperationType, error) {
		var op models.OperationType
		if err := r.db.WithContext(ctx).First(&op, id).Error; err != nil {
			return nil, translate(err, ErrOperationTypeNotFound)
		}
		return &op, nil
	})
}

func (r *operationTypeRepository) GetByCode(ctx context.Context, code string) (*models.OperationType, error) {
	var op models.OperationType
	err := r.db.WithContext(ctx).Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).First(&op).Error
	if err != nil {
		return nil, translate(err, ErrOperationTypeNotFound)
	}
	return &op, nil
}

func (r *operationTypeRepository) Update(ctx context.Context, op *models.OperationType) error {
	op.Code = strings.ToUpper(strings.TrimSpace(op.Code))
	if err := r.db.WithContext(ctx).Save(op).Error; err != nil {
		return translate(err, ErrOperationTypeNotFound)
	}
	return r.stale.Invalidate(ctx, operationTypeKey(op.ID))
}

func (r *operationTypeRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.OperationType{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOperationTypeNotFound
	}
	return r.stale.Invalidate(ctx, operationTypeKey(id))
}

func (r *operationTypeRepository) List(ctx context.Context, filter OperationTypeFilter, offset, limit int) ([]models.OperationType, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.OperationType{})
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ops []models.OperationType
	err := q.Order("category, name").Offset(offset).Limit(limit).Find(&ops).Error
	return ops, total, err
}
