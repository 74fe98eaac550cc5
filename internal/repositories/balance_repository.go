package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	apperrors "relais/internal/errors"
	"relais/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BalanceRepository reads and writes the balance columns of agencies and
// users. Callers run it inside ExecuteInTransaction so Lock holds until
// commit.
type BalanceRepository interface {
	// Lock returns the current value of the balance and locks its row.
	Lock(ctx context.Context, ownerKind string, ownerID uint, balanceKind string) (float64, error)
	Set(ctx context.Context, ownerKind string, ownerID uint, balanceKind string, value float64) error
	RecordMovement(ctx context.Context, m *models.BalanceMovement) error
	Movements(ctx context.Context, ownerKind string, ownerID uint, offset, limit int) ([]models.BalanceMovement, int64, error)
}

type balanceRepository struct {
	db    *gorm.DB
	stale invalidator
}

// balanceColumn maps an owner and balance kind to its model and column.
func balanceColumn(ownerKind, balanceKind string) (interface{}, string, error) {
	switch ownerKind {
	case models.OwnerAgency:
		switch balanceKind {
		case models.BalancePrincipal:
			return &models.Agency{}, "principal_balance", nil
		case models.BalanceRevenue:
			return &models.Agency{}, "revenue_balance", nil
		}
	case models.OwnerUser:
		switch balanceKind {
		case models.BalancePrincipal:
			return &models.User{}, "balance", nil
		case models.BalanceCommission:
			return &models.User{}, "commission_balance", nil
		}
	}
	return nil, "", fmt.Errorf("%w: %s has no %s balance", apperrors.ErrInvalidInput, ownerKind, balanceKind)
}

func (r *balanceRepository) Lock(ctx context.Context, ownerKind string, ownerID uint, balanceKind string) (float64, error) {
	model, column, err := balanceColumn(ownerKind, balanceKind)
	if err != nil {
		return 0, err
	}

	var value float64
	err = r.db.WithContext(ctx).Model(model).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select(column).
		Where("id = ?", ownerID).
		Row().
		Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, apperrors.ErrBalanceOwnerNotFound
	}
	return value, err
}

func (r *balanceRepository) Set(ctx context.Context, ownerKind string, ownerID uint, balanceKind string, value float64) error {
	model, column, err := balanceColumn(ownerKind, balanceKind)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Model(model).Where("id = ?", ownerID).UpdateColumn(column, value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrBalanceOwnerNotFound
	}

	if ownerKind == models.OwnerUser {
		return r.stale.Invalidate(ctx, userKey(ownerID))
	}
	return nil
}

func (r *balanceRepository) RecordMovement(ctx context.Context, m *models.BalanceMovement) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *balanceRepository) Movements(ctx context.Context, ownerKind string, ownerID uint, offset, limit int) ([]models.BalanceMovement, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.BalanceMovement{}).
		Where("owner_kind = ? AND owner_id = ?", ownerKind, ownerID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var movements []models.BalanceMovement
	err := q.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&movements).Error
	return movements, total, err
}
