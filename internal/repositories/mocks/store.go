// Package mocks provides testify mocks of the repository interfaces.
package mocks

import (
	"context"

	"relais/internal/repositories"

	"github.com/stretchr/testify/mock"
)

// Store is a repositories.Store whose repositories are mocks. Transactions
// run fn inline against the same mocks; set TxErr to make them fail.
type Store struct {
	UserRepo          *UserRepository
	AgencyRepo        *AgencyRepository
	PartnerRepo       *PartnerRepository
	ContractRepo      *ContractRepository
	OperationTypeRepo *OperationTypeRepository
	TransactionRepo   *TransactionRepository
	RechargeRepo      *RechargeRepository
	PaymentMethodRepo *PaymentMethodRepository
	CardRepo          *CardRepository
	BalanceRepo       *BalanceRepository

	TxErr   error
	TxCount int
}

func NewStore() *Store {
	return &Store{
		UserRepo:          new(UserRepository),
		AgencyRepo:        new(AgencyRepository),
		PartnerRepo:       new(PartnerRepository),
		ContractRepo:      new(ContractRepository),
		OperationTypeRepo: new(OperationTypeRepository),
		TransactionRepo:   new(TransactionRepository),
		RechargeRepo:      new(RechargeRepository),
		PaymentMethodRepo: new(PaymentMethodRepository),
		CardRepo:          new(CardRepository),
		BalanceRepo:       new(BalanceRepository),
	}
}

func (s *Store) Users() repositories.UserRepository                   { return s.UserRepo }
func (s *Store) Agencies() repositories.AgencyRepository              { return s.AgencyRepo }
func (s *Store) Partners() repositories.PartnerRepository             { return s.PartnerRepo }
func (s *Store) Contracts() repositories.ContractRepository           { return s.ContractRepo }
func (s *Store) OperationTypes() repositories.OperationTypeRepository { return s.OperationTypeRepo }
func (s *Store) Transactions() repositories.TransactionRepository     { return s.TransactionRepo }
func (s *Store) Recharges() repositories.RechargeRepository           { return s.RechargeRepo }
func (s *Store) PaymentMethods() repositories.PaymentMethodRepository { return s.PaymentMethodRepo }
func (s *Store) Cards() repositories.CardRepository                   { return s.CardRepo }
func (s *Store) Balances() repositories.BalanceRepository             { return s.BalanceRepo }

func (s *Store) ExecuteInTransaction(ctx context.Context, fn func(repositories.Store) error) error {
	s.TxCount++
	if s.TxErr != nil {
		return s.TxErr
	}
	return fn(s)
}

// AssertExpectations checks every repository mock.
func (s *Store) AssertExpectations(t mock.TestingT) {
	s.UserRepo.AssertExpectations(t)
	s.AgencyRepo.AssertExpectations(t)
	s.PartnerRepo.AssertExpectations(t)
	s.ContractRepo.AssertExpectations(t)
	s.OperationTypeRepo.AssertExpectations(t)
	s.TransactionRepo.AssertExpectations(t)
	s.RechargeRepo.AssertExpectations(t)
	s.PaymentMethodRepo.AssertExpectations(t)
	s.CardRepo.AssertExpectations(t)
	s.BalanceRepo.AssertExpectations(t)
}
