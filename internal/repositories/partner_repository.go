package repositories

import (
	"context"

	"relais/internal/models"

	"gorm.io/gorm"
)

type AgencyRepository interface {
	Create(ctx context.Context, agency *models.Agency) error
	GetByID(ctx context.Context, id uint) (*models.Agency, error)
	GetByPartnerID(ctx context.Context, partnerID uint) (*models.Agency, error)
}

type PartnerRepository interface {
	Create(ctx context.Context, partner *models.Partner) error
	// GetByID preloads the partner's agency.
	GetByID(ctx context.Context, id uint) (*models.Partner, error)
	Update(ctx context.Context, partner *models.Partner) error
	List(ctx context.Context, filter PartnerFilter, offset, limit int) ([]models.Partner, int64, error)
}

type agencyRepository struct {
	db *gorm.DB
}

func (r *agencyRepository) Create(ctx context.Context, agency *models.Agency) error {
	return translate(r.db.WithContext(ctx).Create(agency).Error, ErrAgencyNotFound)
}

func (r *agencyRepository) GetByID(ctx context.Context, id uint) (*models.Agency, error) {
	var agency models.Agency
	if err := r.db.WithContext(ctx).First(&agency, id).Error; err != nil {
		return nil, translate(err, ErrAgencyNotFound)
	}
	return &agency, nil
}

func (r *agencyRepository) GetByPartnerID(ctx context.Context, partnerID uint) (*models.Agency, error) {
	var agency models.Agency
	if err := r.db.WithContext(ctx).Where("partner_id = ?", partnerID).First(&agency).Error; err != nil {
		return nil, translate(err, ErrAgencyNotFound)
	}
	return &agency, nil
}

type partnerRepository struct {
	db *gorm.DB
}

func (r *partnerRepository) Create(ctx context.Context, partner *models.Partner) error {
	return translate(r.db.WithContext(ctx).Omit("Agency").Create(partner).Error, ErrPartnerNotFound)
}

func (r *partnerRepository) GetByID(ctx context.Context, id uint) (*models.Partner, error) {
	var partner models.Partner
	if err := r.db.WithContext(ctx).Preload("Agency").First(&partner, id).Error; err != nil {
		return nil, translate(err, ErrPartnerNotFound)
	}
	return &partner, nil
}

func (r *partnerRepository) Update(ctx context.Context, partner *models.Partner) error {
	return translate(r.db.WithContext(ctx).Omit("Agency").Save(partner).Error, ErrPartnerNotFound)
}

func (r *partnerRepository) List(ctx context.Context, filter PartnerFilter, offset, limit int) ([]models.Partner, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Partner{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		q = q.Where("name ILIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var partners []models.Partner
	err := q.Preload("Agency").Order("name").Offset(offset).Limit(limit).Find(&partners).Error
	return partners, total, err
}
