package partner

import (
	"context"
	"fmt"
	"time"

	"relais/internal/commission"
	apperrors "relais/internal/errors"
	"relais/internal/events"
	"relais/internal/models"
	"relais/internal/repositories"
	"relais/internal/utils/pagination"
	"relais/internal/validation"

	"go.uber.org/zap"
)

type Service interface {
	CreatePartner(ctx context.Context, actor *models.UserClaims, input CreatePartnerInput) (*models.Partner, error)
	GetPartner(ctx context.Context, actor *models.UserClaims, id uint) (*models.Partner, error)
	ListPartners(ctx context.Context, actor *models.UserClaims, filter repositories.PartnerFilter, p pagination.Pagination) ([]models.Partner, int64, error)
	SetPartnerStatus(ctx context.Context, actor *models.UserClaims, id uint, status string) (*models.Partner, error)

	CreateContract(ctx context.Context, actor *models.UserClaims, input ContractInput) (*models.Contract, error)
	GetContract(ctx context.Context, actor *models.UserClaims, id uint) (*models.Contract, error)
	ListContracts(ctx context.Context, actor *models.UserClaims, partnerID uint) ([]models.Contract, error)
	UpdateContract(ctx context.Context, actor *models.UserClaims, id uint, input ContractUpdate) (*models.Contract, error)
	AddException(ctx context.Context, actor *models.UserClaims, id uint, exc commission.Exception) (*models.Contract, error)
	RemoveException(ctx context.Context, actor *models.UserClaims, id uint, index int) (*models.Contract, error)
	ReorderExceptions(ctx context.Context, actor *models.UserClaims, id uint, order []int) (*models.Contract, error)
	ActivateContract(ctx context.Context, actor *models.UserClaims, id uint, confirm bool) (*models.Contract, error)
	DeactivateContract(ctx context.Context, actor *models.UserClaims, id uint) (*models.Contract, error)
	ActiveContract(ctx context.Context, actor *models.UserClaims, partnerID uint) (*models.Contract, error)
}

type service struct {
	store     repositories.Store
	publisher events.Publisher
	log       *zap.Logger
	now       func() time.Time
}

func NewService(store repositories.Store, publisher events.Publisher, log *zap.Logger) Service {
	return &service{store: store, publisher: publisher, log: log, now: time.Now}
}

func (s *service) CreatePartner(ctx context.Context, actor *models.UserClaims, input CreatePartnerInput) (*models.Partner, error) {
	if !actor.IsAdmin() || !actor.HasPermission(models.PermissionPartnerWrite) {
		return nil, apperrors.ErrForbidden
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	owner, err := s.store.Users().GetByID(ctx, input.OwnerUserID)
	if err != nil {
		return nil, err
	}
	if owner.Role != models.RolePartner {
		return nil, ErrOwnerNotPartner
	}
	if owner.PartnerID != nil {
		return nil, ErrOwnerAlreadyLinked
	}

	agencyName := input.AgencyName
	if agencyName == "" {
		agencyName = input.Name
	}

	partner := &models.Partner{
		Name:        input.Name,
		OwnerUserID: owner.ID,
		Phone:       input.Phone,
		Address:     input.Address,
		Status:      models.PartnerStatusActive,
	}

	err = s.store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		if err := tx.Partners().Create(ctx, partner); err != nil {
			return err
		}
		agency := &models.Agency{PartnerID: partner.ID, Name: agencyName}
		if err := tx.Agencies().Create(ctx, agency); err != nil {
			return err
		}
		partner.Agency = agency

		owner.PartnerID = &partner.ID
		owner.AgencyID = &agency.ID
		owner.TokenVersion++
		return tx.Users().Update(ctx, owner)
	})
	if err != nil {
		return nil, fmt.Errorf("create partner: %w", err)
	}

	s.log.Info("partner created",
		zap.Uint("partner_id", partner.ID),
		zap.Uint("owner_id", owner.ID),
		zap.Uint("created_by", actor.UserID))
	return partner, nil
}

func (s *service) GetPartner(ctx context.Context, actor *models.UserClaims, id uint) (*models.Partner, error) {
	if !canReadPartner(actor, id) {
		return nil, apperrors.ErrForbidden
	}
	return s.store.Partners().GetByID(ctx, id)
}

func (s *service) ListPartners(ctx context.Context, actor *models.UserClaims, filter repositories.PartnerFilter, p pagination.Pagination) ([]models.Partner, int64, error) {
	if !actor.IsAdmin() || !actor.HasPermission(models.PermissionPartnerRead) {
		return nil, 0, apperrors.ErrForbidden
	}
	return s.store.Partners().List(ctx, filter, p.Offset, p.Limit)
}

func (s *service) SetPartnerStatus(ctx context.Context, actor *models.UserClaims, id uint, status string) (*models.Partner, error) {
	if !actor.IsAdmin() || !actor.HasPermission(models.PermissionPartnerWrite) {
		return nil, apperrors.ErrForbidden
	}
	if status != models.PartnerStatusActive && status != models.PartnerStatusSuspended {
		return nil, fmt.Errorf("%w: unknown partner status %q", apperrors.ErrInvalidInput, status)
	}

	partner, err := s.store.Partners().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	partner.Status = status
	if err := s.store.Partners().Update(ctx, partner); err != nil {
		return nil, err
	}
	s.log.Info("partner status changed", zap.Uint("partner_id", id), zap.String("status", status))
	return partner, nil
}

func (s *service) CreateContract(ctx context.Context, actor *models.UserClaims, input ContractInput) (*models.Contract, error) {
	if !canWriteContracts(actor) {
		return nil, apperrors.ErrForbidden
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if err := validateTerms(input.DefaultCommission, input.Exceptions, input.StartsAt, input.EndsAt); err != nil {
		return nil, err
	}
	if _, err := s.store.Partners().GetByID(ctx, input.PartnerID); err != nil {
		return nil, err
	}

	contract := &models.Contract{
		PartnerID:         input.PartnerID,
		Name:              input.Name,
		Status:            models.ContractStatusDraft,
		DefaultCommission: input.DefaultCommission,
		Exceptions:        input.Exceptions,
		StartsAt:          input.StartsAt,
		EndsAt:            input.EndsAt,
		CreatedBy:         actor.UserID,
	}
	if contract.Exceptions == nil {
		contract.Exceptions = []commission.Exception{}
	}
	if err := s.store.Contracts().Create(ctx, contract); err != nil {
		return nil, err
	}

	s.log.Info("contract created", zap.Uint("contract_id", contract.ID), zap.Uint("partner_id", contract.PartnerID))
	s.publish(ctx, contract, events.ActionCreated)
	return contract, nil
}

func (s *service) GetContract(ctx context.Context, actor *models.UserClaims, id uint) (*models.Contract, error) {
	contract, err := s.store.Contracts().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canReadPartner(actor, contract.PartnerID) {
		return nil, apperrors.ErrForbidden
	}
	return contract, nil
}

func (s *service) ListContracts(ctx context.Context, actor *models.UserClaims, partnerID uint) ([]models.Contract, error) {
	if !canReadPartner(actor, partnerID) {
		return nil, apperrors.ErrForbidden
	}
	return s.store.Contracts().ListByPartner(ctx, partnerID)
}

func (s *service) UpdateContract(ctx context.Context, actor *models.UserClaims, id uint, input ContractUpdate) (*models.Contract, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	return s.mutate(ctx, actor, id, func(c *models.Contract) error {
		if input.Name != nil {
			c.Name = *input.Name
		}
		if input.DefaultCommission != nil {
			c.DefaultCommission = *input.DefaultCommission
		}
		if input.Exceptions != nil {
			c.Exceptions = *input.Exceptions
		}
		if input.StartsAt != nil {
			c.StartsAt = input.StartsAt
		}
		if input.EndsAt != nil {
			c.EndsAt = input.EndsAt
		}
		return nil
	})
}

func (s *service) AddException(ctx context.Context, actor *models.UserClaims, id uint, exc commission.Exception) (*models.Contract, error) {
	return s.mutate(ctx, actor, id, func(c *models.Contract) error {
		c.Exceptions = append(c.Exceptions, exc)
		return nil
	})
}

func (s *service) RemoveException(ctx context.Context, actor *models.UserClaims, id uint, index int) (*models.Contract, error) {
	return s.mutate(ctx, actor, id, func(c *models.Contract) error {
		if index < 0 || index >= len(c.Exceptions) {
			return ErrExceptionIndex
		}
		c.Exceptions = append(c.Exceptions[:index:index], c.Exceptions[index+1:]...)
		return nil
	})
}

// ReorderExceptions rearranges exceptions so that position i holds the
// exception previously at order[i].
func (s *service) ReorderExceptions(ctx context.Context, actor *models.UserClaims, id uint, order []int) (*models.Contract, error) {
	return s.mutate(ctx, actor, id, func(c *models.Contract) error {
		if len(order) != len(c.Exceptions) {
			return ErrInvalidOrder
		}
		seen := make([]bool, len(order))
		reordered := make([]commission.Exception, len(order))
		for i, from := range order {
			if from < 0 || from >= len(order) || seen[from] {
				return ErrInvalidOrder
			}
			seen[from] = true
			reordered[i] = c.Exceptions[from]
		}
		c.Exceptions = reordered
		return nil
	})
}

// ActivateContract makes the contract the partner's active one. When another
// contract is active the caller must confirm the replacement; the previous
// contract is then deactivated in the same transaction.
func (s *service) ActivateContract(ctx context.Context, actor *models.UserClaims, id uint, confirm bool) (*models.Contract, error) {
	if !canWriteContracts(actor) {
		return nil, apperrors.ErrForbidden
	}

	var contract *models.Contract
	var replaced int64
	err := s.store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		c, err := tx.Contracts().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if c.EndsAt != nil && c.EndsAt.Before(s.now()) {
			return ErrContractExpired
		}
		contract = c
		if c.Status == models.ContractStatusActive {
			return nil
		}

		current, err := tx.Contracts().GetActive(ctx, c.PartnerID)
		if err != nil {
			return err
		}
		if current != nil && current.ID != c.ID && !confirm {
			return ErrActiveContractExists
		}

		if replaced, err = tx.Contracts().DeactivateOthers(ctx, c.PartnerID, c.ID); err != nil {
			return err
		}
		c.Status = models.ContractStatusActive
		return tx.Contracts().Update(ctx, c)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("contract activated",
		zap.Uint("contract_id", contract.ID),
		zap.Uint("partner_id", contract.PartnerID),
		zap.Int64("replaced", replaced),
		zap.Uint("actor", actor.UserID))
	s.publish(ctx, contract, events.ActionUpdated)
	return contract, nil
}

func (s *service) DeactivateContract(ctx context.Context, actor *models.UserClaims, id uint) (*models.Contract, error) {
	if !canWriteContracts(actor) {
		return nil, apperrors.ErrForbidden
	}

	contract, err := s.store.Contracts().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if contract.Status == models.ContractStatusInactive {
		return contract, nil
	}

	contract.Status = models.ContractStatusInactive
	if err := s.store.Contracts().Update(ctx, contract); err != nil {
		return nil, err
	}

	s.log.Info("contract deactivated", zap.Uint("contract_id", id), zap.Uint("actor", actor.UserID))
	s.publish(ctx, contract, events.ActionUpdated)
	return contract, nil
}

// ActiveContract returns nil, nil when the partner has no active contract.
func (s *service) ActiveContract(ctx context.Context, actor *models.UserClaims, partnerID uint) (*models.Contract, error) {
	if !canReadPartner(actor, partnerID) {
		return nil, apperrors.ErrForbidden
	}
	return s.store.Contracts().GetActive(ctx, partnerID)
}

// mutate loads a contract, applies fn, revalidates the commission terms and
// saves.
func (s *service) mutate(ctx context.Context, actor *models.UserClaims, id uint, fn func(*models.Contract) error) (*models.Contract, error) {
	if !canWriteContracts(actor) {
		return nil, apperrors.ErrForbidden
	}

	contract, err := s.store.Contracts().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if contract.Status == models.ContractStatusInactive {
		return nil, ErrContractNotEditable
	}

	if err := fn(contract); err != nil {
		return nil, err
	}
	if err := validateTerms(contract.DefaultCommission, contract.Exceptions, contract.StartsAt, contract.EndsAt); err != nil {
		return nil, err
	}

	if err := s.store.Contracts().Update(ctx, contract); err != nil {
		return nil, err
	}
	s.publish(ctx, contract, events.ActionUpdated)
	return contract, nil
}

func (s *service) publish(ctx context.Context, c *models.Contract, action string) {
	_ = s.publisher.Publish(ctx, events.Change{
		Entity:    events.EntityContract,
		Action:    action,
		ID:        c.ID,
		PartnerID: &c.PartnerID,
		Data:      map[string]string{"status": c.Status},
	})
}

// validateTerms sorts every tier table in place and checks the schedules.
func validateTerms(def commission.Config, exceptions []commission.Exception, startsAt, endsAt *time.Time) error {
	v := validation.New()

	commission.SortTiers(def.Tiers)
	if err := commission.ValidateConfig(def); err != nil {
		v.AddError("default_commission", err.Error())
	}

	for i := range exceptions {
		exc := &exceptions[i]
		field := fmt.Sprintf("exceptions[%d]", i)

		v.Check(exc.TargetType == commission.TargetService || exc.TargetType == commission.TargetCategory,
			field+".target_type", "must be service or category")
		v.Required(field+".target", exc.Target)

		commission.SortTiers(exc.Config.Tiers)
		if err := commission.ValidateConfig(exc.Config); err != nil {
			v.AddError(field+".config", err.Error())
		}
	}

	if startsAt != nil && endsAt != nil {
		v.Check(endsAt.After(*startsAt), "ends_at", "must be after starts_at")
	}
	return v.Err()
}

func canWriteContracts(actor *models.UserClaims) bool {
	return actor.IsAdmin() && actor.HasPermission(models.PermissionContractWrite)
}

// canReadPartner: staff with partner:read see every partner, partners see
// only their own.
func canReadPartner(actor *models.UserClaims, partnerID uint) bool {
	if actor.IsAdmin() {
		return actor.HasPermission(models.PermissionPartnerRead)
	}
	return actor.Role == models.RolePartner && actor.PartnerID != nil && *actor.PartnerID == partnerID
}
