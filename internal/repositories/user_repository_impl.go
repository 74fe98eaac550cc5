package repositories

import (
	"context"

	"relais/internal/models"
	"relais/internal/repositories/cache"
	keys "relais/internal/utils/cache"

	"gorm.io/gorm"
)

type userRepository struct {
	db    *gorm.DB
	cache *cache.Service
	stale invalidator
}

func userKey(id uint) string {
	return keys.GenerateKey(keys.EntityUser, keys.KeyID, id)
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	user.Email = normalizeEmail(user.Email)
	return translate(r.db.WithContext(ctx).Create(user).Error, ErrUserNotFound)
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return cache.Remember(ctx, r.cache, userKey(id), func() (*models.User, error) {
		var user models.User
		if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
			return nil, translate(err, ErrUserNotFound)
		}
		return &user, nil
	})
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if err != nil {
		return nil, translate(err, ErrUserNotFound)
	}
	return &user, nil
}

func (r *userRepository) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&user).Error
	if err != nil {
		return nil, translate(err, ErrUserNotFound)
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	user.Email = normalizeEmail(user.Email)
	err := r.db.WithContext(ctx).
		Omit("balance", "commission_balance").
		Save(user).Error
	if err != nil {
		return translate(err, ErrUserNotFound)
	}
	return r.stale.Invalidate(ctx, userKey(user.ID))
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.User{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return r.stale.Invalidate(ctx, userKey(id))
}

func (r *userRepository) IncrementTokenVersion(ctx context.Context, userID uint) error {
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).
		UpdateColumn("token_version", gorm.Expr("token_version + 1")).Error
	if err != nil {
		return err
	}
	return r.stale.Invalidate(ctx, userKey(userID))
}

func (r *userRepository) List(ctx context.Context, filter UserFilter, offset, limit int) ([]models.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.User{})
	if filter.Role != "" {
		q = q.Where("role = ?", filter.Role)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.PartnerID != nil {
		q = q.Where("partner_id = ?", *filter.PartnerID)
	}
	if filter.AgencyID != nil {
		q = q.Where("agency_id = ?", *filter.AgencyID)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("name ILIKE ? OR email ILIKE ? OR phone LIKE ?", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error
	return users, total, err
}

func (r *userRepository) CountByRole(ctx context.Context, partnerID *uint) (map[string]int64, error) {
	type row struct {
		Role  string
		Count int64
	}
	var rows []row

	q := r.db.WithContext(ctx).Model(&models.User{}).Select("role, COUNT(*) AS count")
	if partnerID != nil {
		q = q.Where("partner_id = ?", *partnerID)
	}
	if err := q.Group("role").Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Role] = r.Count
	}
	return counts, nil
}
