package repositories

import (
	"context"
	"time"

	"relais/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CardRepository interface {
	// ExistingSerials returns which of serials are already stored.
	ExistingSerials(ctx context.Context, serials []string) ([]string, error)
	// CreateBatch inserts cards, silently skipping serial collisions, and
	// returns how many rows were written.
	CreateBatch(ctx context.Context, cards []models.PrepaidCard) (int64, error)
	GetByID(ctx context.Context, id uint) (*models.PrepaidCard, error)
	GetForUpdate(ctx context.Context, id uint) (*models.PrepaidCard, error)
	Update(ctx context.Context, card *models.PrepaidCard) error
	List(ctx context.Context, filter CardFilter, offset, limit int) ([]models.PrepaidCard, int64, error)
	Stats(ctx context.Context, filter CardFilter) ([]models.CardStats, error)
	// LockAvailable locks up to quantity available cards of faceValue,
	// oldest first, skipping rows locked by concurrent assignments.
	LockAvailable(ctx context.Context, faceValue float64, quantity int) ([]models.PrepaidCard, error)
	Assign(ctx context.Context, ids []uint, agentID uint, at time.Time) error
}

type cardRepository struct {
	db *gorm.DB
}

func (r *cardRepository) ExistingSerials(ctx context.Context, serials []string) ([]string, error) {
	var existing []string
	if len(serials) == 0 {
		return existing, nil
	}
	err := r.db.WithContext(ctx).Model(&models.PrepaidCard{}).
		Where("serial IN ?", serials).
		Pluck("serial", &existing).Error
	return existing, err
}

func (r *cardRepository) CreateBatch(ctx context.Context, cards []models.PrepaidCard) (int64, error) {
	if len(cards) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "serial"}}, DoNothing: true}).
		CreateInBatches(&cards, 500)
	return result.RowsAffected, result.Error
}

func (r *cardRepository) GetByID(ctx context.Context, id uint) (*models.PrepaidCard, error) {
	var card models.PrepaidCard
	if err := r.db.WithContext(ctx).First(&card, id).Error; err != nil {
		return nil, translate(err, ErrCardNotFound)
	}
	return &card, nil
}

func (r *cardRepository) GetForUpdate(ctx context.Context, id uint) (*models.PrepaidCard, error) {
	var card models.PrepaidCard
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&card, id).Error
	if err != nil {
		return nil, translate(err, ErrCardNotFound)
	}
	return &card, nil
}

func (r *cardRepository) Update(ctx context.Context, card *models.PrepaidCard) error {
	return translate(r.db.WithContext(ctx).Save(card).Error, ErrCardNotFound)
}

func (r *cardRepository) filtered(ctx context.Context, f CardFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.PrepaidCard{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.BatchRef != "" {
		q = q.Where("batch_ref = ?", f.BatchRef)
	}
	if f.AgentID != nil {
		q = q.Where("agent_id = ?", *f.AgentID)
	}
	if f.FaceValue > 0 {
		q = q.Where("face_value = ?", f.FaceValue)
	}
	return q
}

func (r *cardRepository) List(ctx context.Context, filter CardFilter, offset, limit int) ([]models.PrepaidCard, int64, error) {
	q := r.filtered(ctx, filter)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var cards []models.PrepaidCard
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&cards).Error
	return cards, total, err
}

func (r *cardRepository) Stats(ctx context.Context, filter CardFilter) ([]models.CardStats, error) {
	var stats []models.CardStats
	err := r.filtered(ctx, filter).
		Select("status, COUNT(*) AS count, COALESCE(SUM(face_value), 0) AS face_value").
		Group("status").
		Order("status").
		Scan(&stats).Error
	return stats, err
}

func (r *cardRepository) LockAvailable(ctx context.Context, faceValue float64, quantity int) ([]models.PrepaidCard, error) {
	var cards []models.PrepaidCard
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("status = ? AND face_value = ?", models.CardStatusAvailable, faceValue).
		Order("created_at ASC, id ASC").
		Limit(quantity).
		Find(&cards).Error
	return cards, err
}

func (r *cardRepository) Assign(ctx context.Context, ids []uint, agentID uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.PrepaidCard{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"status":      models.CardStatusAssigned,
			"agent_id":    agentID,
			"assigned_at": at,
		}).Error
}
