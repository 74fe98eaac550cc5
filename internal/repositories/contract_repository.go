package repositories

import (
	"context"

	"relais/internal/models"
	"relais/internal/repositories/cache"
	keys "relais/internal/utils/cache"

	"gorm.io/gorm"
)

type ContractRepository interface {
	Create(ctx context.Context, contract *models.Contract) error
	GetByID(ctx context.Context, id uint) (*models.Contract, error)
	Update(ctx context.Context, contract *models.Contract) error
	ListByPartner(ctx context.Context, partnerID uint) ([]models.Contract, error)

	// GetActive returns the partner's active contract or nil when there is
	// none. Cached per partner.
	GetActive(ctx context.Context, partnerID uint) (*models.Contract, error)

	// DeactivateOthers marks every active contract of the partner except
	// keepID inactive and returns how many were changed.
	DeactivateOthers(ctx context.Context, partnerID, keepID uint) (int64, error)
}

type contractRepository struct {
	db    *gorm.DB
	cache *cache.Service
	stale invalidator
}

func activeContractKey(partnerID uint) string {
	return keys.GenerateKey(keys.EntityActiveContract, keys.KeyPartner, partnerID)
}

func (r *contractRepository) Create(ctx context.Context, contract *models.Contract) error {
	if err := r.db.WithContext(ctx).Create(contract).Error; err != nil {
		return translate(err, ErrContractNotFound)
	}
	return r.stale.Invalidate(ctx, activeContractKey(contract.PartnerID))
}

func (r *contractRepository) GetByID(ctx context.Context, id uint) (*models.Contract, error) {
	var contract models.Contract
	if err := r.db.WithContext(ctx).First(&contract, id).Error; err != nil {
		return nil, translate(err, ErrContractNotFound)
	}
	return &contract, nil
}

func (r *contractRepository) Update(ctx context.Context, contract *models.Contract) error {
	if err := r.db.WithContext(ctx).Save(contract).Error; err != nil {
		return translate(err, ErrContractNotFound)
	}
	return r.stale.Invalidate(ctx, activeContractKey(contract.PartnerID))
}

func (r *contractRepository) ListByPartner(ctx context.Context, partnerID uint) ([]models.Contract, error) {
	var contracts []models.Contract
	err := r.db.WithContext(ctx).
		Where("partner_id = ?", partnerID).
		Order("created_at DESC").
		Find(&contracts).Error
	return contracts, err
}

func (r *contractRepository) GetActive(ctx context.Context, partnerID uint) (*models.Contract, error) {
	return cache.Remember(ctx, r.cache, activeContractKey(partnerID), func() (*models.Contract, error) {
		var contract models.Contract
		err := r.db.WithContext(ctx).
			Where("partner_id = ? AND status = ?", partnerID, models.ContractStatusActive).
			Order("updated_at DESC").
			Limit(1).
			Find(&contract).Error
		if err != nil || contract.ID == 0 {
			return nil, err
		}
		return &contract, nil
	})
}

func (r *contractRepository) DeactivateOthers(ctx context.Context, partnerID, keepID uint) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Contract{}).
		Where("partner_id = ? AND status = ? AND id <> ?", partnerID, models.ContractStatusActive, keepID).
		Update("status", models.ContractStatusInactive)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, r.stale.Invalidate(ctx, activeContractKey(partnerID))
}
