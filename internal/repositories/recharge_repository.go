package repositories

import (
	"context"

	"relais/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RechargeRepository interface {
	Create(ctx context.Context, req *models.AgentRechargeRequest) error
	GetByID(ctx context.Context, id uint) (*models.AgentRechargeRequest, error)
	GetForUpdate(ctx context.Context, id uint) (*models.AgentRechargeRequest, error)
	Update(ctx context.Context, req *models.AgentRechargeRequest) error
	List(ctx context.Context, filter RechargeFilter, offset, limit int) ([]models.AgentRechargeRequest, int64, error)
	Count(ctx context.Context, filter RechargeFilter) (int64, error)
}

type rechargeRepository struct {
	db *gorm.DB
}

func (r *rechargeRepository) Create(ctx context.Context, req *models.AgentRechargeRequest) error {
	return translate(r.db.WithContext(ctx).Create(req).Error, ErrRechargeNotFound)
}

func (r *rechargeRepository) GetByID(ctx context.Context, id uint) (*models.AgentRechargeRequest, error) {
	var req models.AgentRechargeRequest
	if err := r.db.WithContext(ctx).First(&req, id).Error; err != nil {
		return nil, translate(err, ErrRechargeNotFound)
	}
	return &req, nil
}

func (r *rechargeRepository) GetForUpdate(ctx context.Context, id uint) (*models.AgentRechargeRequest, error) {
	var req models.AgentRechargeRequest
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&req, id).Error
	if err != nil {
		return nil, translate(err, ErrRechargeNotFound)
	}
	return &req, nil
}

func (r *rechargeRepository) Update(ctx context.Context, req *models.AgentRechargeRequest) error {
	return translate(r.db.WithContext(ctx).Save(req).Error, ErrRechargeNotFound)
}

func (r *rechargeRepository) filtered(ctx context.Context, f RechargeFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.AgentRechargeRequest{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.AgentID != nil {
		q = q.Where("agent_id = ?", *f.AgentID)
	}
	if f.PartnerID != nil {
		q = q.Where("partner_id = ?", *f.PartnerID)
	}
	if f.Method != "" {
		q = q.Where("payment_method_code = ?", f.Method)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at < ?", *f.To)
	}
	return q
}

func (r *rechargeRepository) List(ctx context.Context, filter RechargeFilter, offset, limit int) ([]models.AgentRechargeRequest, int64, error) {
	q := r.filtered(ctx, filter)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reqs []models.AgentRechargeRequest
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&reqs).Error
	return reqs, total, err
}

func (r *rechargeRepository) Count(ctx context.Context, filter RechargeFilter) (int64, error) {
	var total int64
	err := r.filtered(ctx, filter).Count(&total).Error
	return total, err
}
