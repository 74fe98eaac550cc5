package repositories

import (
	"context"

	"relais/internal/repositories/cache"

	"gorm.io/gorm"
)

// Store gives services access to every repository and runs units of work.
// Repositories obtained from the Store passed to fn share fn's transaction.
type Store interface {
	Users() UserRepository
	Agencies() AgencyRepository
	Partners() PartnerRepository
	Contracts() ContractRepository
	OperationTypes() OperationTypeRepository
	Transactions() TransactionRepository
	Recharges() RechargeRepository
	PaymentMethods() PaymentMethodRepository
	Cards() CardRepository
	Balances() BalanceRepository

	ExecuteInTransaction(ctx context.Context, fn func(Store) error) error
}

// invalidator is what writers call after changing a cached row.
type invalidator = cache.Invalidator

// gormStore reads through cache and drops stale keys through stale. Inside a
// transaction cache is nil and stale defers the drops until commit.
type gormStore struct {
	db    *gorm.DB
	cache *cache.Service
	stale invalidator
}

// NewStore returns a Store backed by db. cache may be nil.
func NewStore(db *gorm.DB, cache *cache.Service) Store {
	return &gormStore{db: db, cache: cache, stale: cache}
}

func (s *gormStore) Users() UserRepository {
	return &userRepository{db: s.db, cache: s.cache, stale: s.stale}
}

func (s *gormStore) Agencies() AgencyRepository {
	return &agencyRepository{db: s.db}
}

func (s *gormStore) Partners() PartnerRepository {
	return &partnerRepository{db: s.db}
}

func (s *gormStore) Contracts() ContractRepository {
	return &contractRepository{db: s.db, cache: s.cache, stale: s.stale}
}

func (s *gormStore) OperationTypes() OperationTypeRepository {
	return &operationTypeRepository{db: s.db, cache: s.cache, stale: s.stale}
}

func (s *gormStore) Transactions() TransactionRepository {
	return &transactionRepository{db: s.db}
}

func (s *gormStore) Recharges() RechargeRepository {
	return &rechargeRepository{db: s.db}
}

func (s *gormStore) PaymentMethods() PaymentMethodRepository {
	return &paymentMethodRepository{db: s.db, cache: s.cache, stale: s.stale}
}

func (s *gormStore) Cards() CardRepository {
	return &cardRepository{db: s.db}
}

func (s *gormStore) Balances() BalanceRepository {
	return &balanceRepository{db: s.db, stale: s.stale}
}

// ExecuteInTransaction runs fn in a database transaction. Cache keys the
// transaction invalidates are dropped only after it commits.
func (s *gormStore) ExecuteInTransaction(ctx context.Context, fn func(Store) error) error {
	return afterCommit(ctx, s.stale, func(stale invalidator) error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(&gormStore{db: tx, stale: stale})
		})
	})
}

func afterCommit(ctx context.Context, target invalidator, run func(invalidator) error) error {
	pending := cache.NewPending(target)
	if err := run(pending); err != nil {
		return err
	}
	// The rows are committed; a failed flush leaves entries until their TTL.
	_ = pending.Flush(ctx)
	return nil
}
