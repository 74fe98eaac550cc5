package repositories

import (
	"context"
	"strings"

	"relais/internal/models"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error

	// GetByID is served from cache when possible.
	GetByID(ctx context.Context, id uint) (*models.User, error)

	GetByEmail(ctx context.Context, email string) (*models.User, error)

	GetByPhone(ctx context.Context, phone string) (*models.User, error)

	// Update saves profile fields. Balances are only changed through
	// BalanceRepository.
	Update(ctx context.Context, user *models.User) error

	// Delete soft-deletes a user.
	Delete(ctx context.Context, id uint) error

	IncrementTokenVersion(ctx context.Context, userID uint) error

	List(ctx context.Context, filter UserFilter, offset, limit int) ([]models.User, int64, error)

	// CountByRole counts users per role, limited to partnerID when set.
	CountByRole(ctx context.Context, partnerID *uint) (map[string]int64, error)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
