package mocks

import (
	"context"
	"time"

	"relais/internal/models"
	"relais/internal/repositories"

	"github.com/stretchr/testify/mock"
)

type UserRepository struct{ mock.Mock }

func (m *UserRepository) Create(ctx context.Context, user *models.User) error {
	return m.Called(user).Error(0)
}

func (m *UserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(id)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(email)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *UserRepository) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	args := m.Called(phone)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *UserRepository) Update(ctx context.Context, user *models.User) error {
	return m.Called(user).Error(0)
}

func (m *UserRepository) Delete(ctx context.Context, id uint) error {
	return m.Called(id).Error(0)
}

func (m *UserRepository) IncrementTokenVersion(ctx context.Context, userID uint) error {
	return m.Called(userID).Error(0)
}

func (m *UserRepository) List(ctx context.Context, filter repositories.UserFilter, offset, limit int) ([]models.User, int64, error) {
	args := m.Called(filter, offset, limit)
	users, _ := args.Get(0).([]models.User)
	return users, args.Get(1).(int64), args.Error(2)
}

func (m *UserRepository) CountByRole(ctx context.Context, partnerID *uint) (map[string]int64, error) {
	args := m.Called(partnerID)
	counts, _ := args.Get(0).(map[string]int64)
	return counts, args.Error(1)
}

type AgencyRepository struct{ mock.Mock }

func (m *AgencyRepository) Create(ctx context.Context, agency *models.Agency) error {
	return m.Called(agency).Error(0)
}

func (m *AgencyRepository) GetByID(ctx context.Context, id uint) (*models.Agency, error) {
	args := m.Called(id)
	a, _ := args.Get(0).(*models.Agency)
	return a, args.Error(1)
}

func (m *AgencyRepository) GetByPartnerID(ctx context.Context, partnerID uint) (*models.Agency, error) {
	args := m.Called(partnerID)
	a, _ := args.Get(0).(*models.Agency)
	return a, args.Error(1)
}

type PartnerRepository struct{ mock.Mock }

func (m *PartnerRepository) Create(ctx context.Context, partner *models.Partner) error {
	return m.Called(partner).Error(0)
}

func (m *PartnerRepository) GetByID(ctx context.Context, id uint) (*models.Partner, error) {
	args := m.Called(id)
	p, _ := args.Get(0).(*models.Partner)
	return p, args.Error(1)
}

func (m *PartnerRepository) Update(ctx context.Context, partner *models.Partner) error {
	return m.Called(partner).Error(0)
}

func (m *PartnerRepository) List(ctx context.Context, filter repositories.PartnerFilter, offset, limit int) ([]models.Partner, int64, error) {
	args := m.Called(filter, offset, limit)
	p, _ := args.Get(0).([]models.Partner)
	return p, args.Get(1).(int64), args.Error(2)
}

type ContractRepository struct{ mock.Mock }

func (m *ContractRepository) Create(ctx context.Context, contract *models.Contract) error {
	return m.Called(contract).Error(0)
}

func (m *ContractRepository) GetByID(ctx context.Context, id uint) (*models.Contract, error) {
	args := m.Called(id)
	c, _ := args.Get(0).(*models.Contract)
	return c, args.Error(1)
}

func (m *ContractRepository) Update(ctx context.Context, contract *models.Contract) error {
	return m.Called(contract).Error(0)
}

func (m *ContractRepository) ListByPartner(ctx context.Context, partnerID uint) ([]models.Contract, error) {
	args := m.Called(partnerID)
	c, _ := args.Get(0).([]models.Contract)
	return c, args.Error(1)
}

func (m *ContractRepository) GetActive(ctx context.Context, partnerID uint) (*models.Contract, error) {
	args := m.Called(partnerID)
	c, _ := args.Get(0).(*models.Contract)
	return c, args.Error(1)
}

func (m *ContractRepository) DeactivateOthers(ctx context.Context, partnerID, keepID uint) (int64, error) {
	args := m.Called(partnerID, keepID)
	return args.Get(0).(int64), args.Error(1)
}

type OperationTypeRepository struct{ mock.Mock }

func (m *OperationTypeRepository) Create(ctx context.Context, op *models.OperationType) error {
	return m.Called(op).Error(0)
}

func (m *OperationTypeRepository) GetByID(ctx context.Context, id uint) (*models.OperationType, error) {
	args := m.Called(id)
	op, _ := args.Get(0).(*models.OperationType)
	return op, args.Error(1)
}

func (m *OperationTypeRepository) GetByCode(ctx context.Context, code string) (*models.OperationType, error) {
	args := m.Called(code)
	op, _ := args.Get(0).(*models.OperationType)
	return op, args.Error(1)
}

func (m *OperationTypeRepository) Update(ctx context.Context, op *models.OperationType) error {
	return m.Called(op).Error(0)
}

func (m *OperationTypeRepository) Delete(ctx context.Context, id uint) error {
	return m.Called(id).Error(0)
}

func (m *OperationTypeRepository) List(ctx context.Context, filter repositories.OperationTypeFilter, offset, limit int) ([]models.OperationType, int64, error) {
	args := m.Called(filter, offset, limit)
	ops, _ := args.Get(0).([]models.OperationType)
	return ops, args.Get(1).(int64), args.Error(2)
}

type TransactionRepository struct{ mock.Mock }

func (m *TransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	return m.Called(tx).Error(0)
}

func (m *TransactionRepository) GetByID(ctx context.Context, id uint) (*models.Transaction, error) {
	args := m.Called(id)
	tx, _ := args.Get(0).(*models.Transaction)
	return tx, args.Error(1)
}

func (m *TransactionRepository) GetForUpdate(ctx context.Context, id uint) (*models.Transaction, error) {
	args := m.Called(id)
	tx, _ := args.Get(0).(*models.Transaction)
	return tx, args.Error(1)
}

func (m *TransactionRepository) Update(ctx context.Context, tx *models.Transaction) error {
	return m.Called(tx).Error(0)
}

func (m *TransactionRepository) List(ctx context.Context, filter repositories.TransactionFilter, offset, limit int) ([]models.Transaction, int64, error) {
	args := m.Called(filter, offset, limit)
	txs, _ := args.Get(0).([]models.Transaction)
	return txs, args.Get(1).(int64), args.Error(2)
}

func (m *TransactionRepository) Summarize(ctx context.Context, filter repositories.TransactionFilter) (repositories.TransactionTotals, error) {
	args := m.Called(filter)
	return args.Get(0).(repositories.TransactionTotals), args.Error(1)
}

type RechargeRepository struct{ mock.Mock }

func (m *RechargeRepository) Create(ctx context.Context, req *models.AgentRechargeRequest) error {
	return m.Called(req).Error(0)
}

func (m *RechargeRepository) GetByID(ctx context.Context, id uint) (*models.AgentRechargeRequest, error) {
	args := m.Called(id)
	r, _ := args.Get(0).(*models.AgentRechargeRequest)
	return r, args.Error(1)
}

func (m *RechargeRepository) GetForUpdate(ctx context.Context, id uint) (*models.AgentRechargeRequest, error) {
	args := m.Called(id)
	r, _ := args.Get(0).(*models.AgentRechargeRequest)
	return r, args.Error(1)
}

func (m *RechargeRepository) Update(ctx context.Context, req *models.AgentRechargeRequest) error {
	return m.Called(req).Error(0)
}

func (m *RechargeRepository) List(ctx context.Context, filter repositories.RechargeFilter, offset, limit int) ([]models.AgentRechargeRequest, int64, error) {
	args := m.Called(filter, offset, limit)
	r, _ := args.Get(0).([]models.AgentRechargeRequest)
	return r, args.Get(1).(int64), args.Error(2)
}

func (m *RechargeRepository) Count(ctx context.Context, filter repositories.RechargeFilter) (int64, error) {
	args := m.Called(filter)
	return args.Get(0).(int64), args.Error(1)
}

type PaymentMethodRepository struct{ mock.Mock }

func (m *PaymentMethodRepository) GetByCode(ctx context.Context, code string) (*models.PaymentMethod, error) {
	args := m.Called(code)
	pm, _ := args.Get(0).(*models.PaymentMethod)
	return pm, args.Error(1)
}

func (m *PaymentMethodRepository) List(ctx context.Context, activeOnly bool) ([]models.PaymentMethod, error) {
	args := m.Called(activeOnly)
	pms, _ := args.Get(0).([]models.PaymentMethod)
	return pms, args.Error(1)
}

func (m *PaymentMethodRepository) Upsert(ctx context.Context, method *models.PaymentMethod) error {
	return m.Called(method).Error(0)
}

type CardRepository struct{ mock.Mock }

func (m *CardRepository) ExistingSerials(ctx context.Context, serials []string) ([]string, error) {
	args := m.Called(serials)
	s, _ := args.Get(0).([]string)
	return s, args.Error(1)
}

func (m *CardRepository) CreateBatch(ctx context.Context, cards []models.PrepaidCard) (int64, error) {
	args := m.Called(cards)
	return args.Get(0).(int64), args.Error(1)
}

func (m *CardRepository) GetByID(ctx context.Context, id uint) (*models.PrepaidCard, error) {
	args := m.Called(id)
	c, _ := args.Get(0).(*models.PrepaidCard)
	return c, args.Error(1)
}

func (m *CardRepository) GetForUpdate(ctx context.Context, id uint) (*models.PrepaidCard, error) {
	args := m.Called(id)
	c, _ := args.Get(0).(*models.PrepaidCard)
	return c, args.Error(1)
}

func (m *CardRepository) Update(ctx context.Context, card *models.PrepaidCard) error {
	return m.Called(card).Error(0)
}

func (m *CardRepository) List(ctx context.Context, filter repositories.CardFilter, offset, limit int) ([]models.PrepaidCard, int64, error) {
	args := m.Called(filter, offset, limit)
	c, _ := args.Get(0).([]models.PrepaidCard)
	return c, args.Get(1).(int64), args.Error(2)
}

func (m *CardRepository) Stats(ctx context.Context, filter repositories.CardFilter) ([]models.CardStats, error) {
	args := m.Called(filter)
	s, _ := args.Get(0).([]models.CardStats)
	return s, args.Error(1)
}

func (m *CardRepository) LockAvailable(ctx context.Context, faceValue float64, quantity int) ([]models.PrepaidCard, error) {
	args := m.Called(faceValue, quantity)
	c, _ := args.Get(0).([]models.PrepaidCard)
	return c, args.Error(1)
}

func (m *CardRepository) Assign(ctx context.Context, ids []uint, agentID uint, at time.Time) error {
	return m.Called(ids, agentID).Error(0)
}

type BalanceRepository struct{ mock.Mock }

func (m *BalanceRepository) Lock(ctx context.Context, ownerKind string, ownerID uint, balanceKind string) (float64, error) {
	args := m.Called(ownerKind, ownerID, balanceKind)
	return args.Get(0).(float64), args.Error(1)
}

func (m *BalanceRepository) Set(ctx context.Context, ownerKind string, ownerID uint, balanceKind string, value float64) error {
	return m.Called(ownerKind, ownerID, balanceKind, value).Error(0)
}

func (m *BalanceRepository) RecordMovement(ctx context.Context, mv *models.BalanceMovement) error {
	return m.Called(mv).Error(0)
}

func (m *BalanceRepository) Movements(ctx context.Context, ownerKind string, ownerID uint, offset, limit int) ([]models.BalanceMovement, int64, error) {
	args := m.Called(ownerKind, ownerID, offset, limit)
	mv, _ := args.Get(0).([]models.BalanceMovement)
	return mv, args.Get(1).(int64), args.Error(2)
}
