package repositories

import (
	"context"

	"relais/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	GetByID(ctx context.Context, id uint) (*models.Transaction, error)
	// GetForUpdate locks the row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id uint) (*models.Transaction, error)
	Update(ctx context.Context, tx *models.Transaction) error
	List(ctx context.Context, filter TransactionFilter, offset, limit int) ([]models.Transaction, int64, error)
	Summarize(ctx context.Context, filter TransactionFilter) (TransactionTotals, error)
}

type transactionRepository struct {
	db *gorm.DB
}

func (r *transactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	return translate(r.db.WithContext(ctx).Create(tx).Error, ErrTransactionNotFound)
}

func (r *transactionRepository) GetByID(ctx context.Context, id uint) (*models.Transaction, error) {
	var tx models.Transaction
	if err := r.db.WithContext(ctx).First(&tx, id).Error; err != nil {
		return nil, translate(err, ErrTransactionNotFound)
	}
	return &tx, nil
}

func (r *transactionRepository) GetForUpdate(ctx context.Context, id uint) (*models.Transaction, error) {
	var tx models.Transaction
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&tx, id).Error
	if err != nil {
		return nil, translate(err, ErrTransactionNotFound)
	}
	return &tx, nil
}

func (r *transactionRepository) Update(ctx context.Context, tx *models.Transaction) error {
	return translate(r.db.WithContext(ctx).Save(tx).Error, ErrTransactionNotFound)
}

func (r *transactionRepository) filtered(ctx context.Context, f TransactionFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Transaction{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.AgentID != nil {
		q = q.Where("agent_id = ?", *f.AgentID)
	}
	if f.PartnerID != nil {
		q = q.Where("partner_id = ?", *f.PartnerID)
	}
	if f.OperationTypeID != nil {
		q = q.Where("operation_type_id = ?", *f.OperationTypeID)
	}
	if f.AssignedTo != nil {
		q = q.Where("assigned_to = ?", *f.AssignedTo)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at < ?", *f.To)
	}
	return q
}

func (r *transactionRepository) List(ctx context.Context, filter TransactionFilter, offset, limit int) ([]models.Transaction, int64, error) {
	q := r.filtered(ctx, filter)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var txs []models.Transaction
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&txs).Error
	return txs, total, err
}

func (r *transactionRepository) Summarize(ctx context.Context, filter TransactionFilter) (TransactionTotals, error) {
	var totals TransactionTotals
	err := r.filtered(ctx, filter).
		Select(`COUNT(*), COALESCE(SUM(amount), 0), COALESCE(SUM(fee), 0),
			COALESCE(SUM(company_commission), 0), COALESCE(SUM(partner_commission), 0)`).
		Row().
		Scan(&totals.Count, &totals.Volume, &totals.Fees, &totals.CompanyCommission, &totals.PartnerCommission)
	return totals, err
}
