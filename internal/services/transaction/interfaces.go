package transaction

import (
	"context"

	"relais/internal/models"
	"relais/internal/repositories"
	"relais/internal/services/fee"
	"relais/internal/utils/pagination"
)

type Service interface {
	Execute(ctx context.Context, actor *models.UserClaims, input ExecuteInput) (*models.Transaction, error)
	Validate(ctx context.Context, actor *models.UserClaims, id uint) (*models.Transaction, error)
	Reject(ctx context.Context, actor *models.UserClaims, id uint, reason string) (*models.Transaction, error)
	Reassign(ctx context.Context, actor *models.UserClaims, id, assigneeID uint) (*models.Transaction, error)
	Get(ctx context.Context, actor *models.UserClaims, id uint) (*models.Transaction, error)
	List(ctx context.Context, actor *models.UserClaims, filter repositories.TransactionFilter, p pagination.Pagination) ([]models.Transaction, int64, error)
}

// FeeQuoter prices an operation for a user.
type FeeQuoter interface {
	Quote(ctx context.Context, user *models.User, op *models.OperationType, amount float64) (*fee.Quote, error)
}
