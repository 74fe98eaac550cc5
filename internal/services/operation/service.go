package operation

import (
	"context"
	"errors"
	"fmt"
	"strings"

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
	Create(ctx context.Context, actor *models.UserClaims, input Input) (*models.OperationType, error)
	Get(ctx context.Context, actor *models.UserClaims, id uint) (*models.OperationType, error)
	List(ctx context.Context, actor *models.UserClaims, filter repositories.OperationTypeFilter, p pagination.Pagination) ([]models.OperationType, int64, error)
	Update(ctx context.Context, actor *models.UserClaims, id uint, input UpdateInput) (*models.OperationType, error)
	Delete(ctx context.Context, actor *models.UserClaims, id uint) error
}

type service struct {
	store     repositories.Store
	publisher events.Publisher
	log       *zap.Logger
}

func NewService(store repositories.Store, publisher events.Publisher, log *zap.Logger) Service {
	return &service{store: store, publisher: publisher, log: log}
}

// CheckUsable reports whether role may execute op right now.
func CheckUsable(op *models.OperationType, role string) error {
	if op.Status != models.OperationStatusActive {
		return ErrOperationDisabled
	}
	if !op.AllowsRole(role) {
		return ErrRoleNotAllowed
	}
	return nil
}

func (s *service) Create(ctx context.Context, actor *models.UserClaims, input Input) (*models.OperationType, error) {
	if !actor.HasPermission(models.PermissionOperationWrite) {
		return nil, apperrors.ErrForbidden
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if err := validateDefinition(input.CommissionConfig, input.FieldSchema, input.AllowedRoles); err != nil {
		return nil, err
	}

	_, err := s.store.OperationTypes().GetByCode(ctx, input.Code)
	if err == nil {
		return nil, ErrCodeTaken
	}
	if !errors.Is(err, repositories.ErrOperationTypeNotFound) {
		return nil, err
	}

	op := &models.OperationType{
		Code:             input.Code,
		Name:             input.Name,
		Category:         strings.ToLower(strings.TrimSpace(input.Category)),
		Description:      input.Description,
		CommissionConfig: input.CommissionConfig,
		FieldSchema:      input.FieldSchema,
		AllowedRoles:     input.AllowedRoles,
		Status:           models.OperationStatusActive,
	}
	if err := s.store.OperationTypes().Create(ctx, op); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrCodeTaken
		}
		return nil, err
	}

	s.log.Info("operation type created", zap.Uint("id", op.ID), zap.String("code", op.Code), zap.Uint("actor", actor.UserID))
	s.publish(ctx, op, events.ActionCreated)
	return op, nil
}

func (s *service) Get(ctx context.Context, actor *models.UserClaims, id uint) (*models.OperationType, error) {
	if !actor.HasPermission(models.PermissionOperationRead) {
		return nil, apperrors.ErrForbidden
	}
	return s.store.OperationTypes().GetByID(ctx, id)
}

// List shows every operation type to those who manage them and only active
// ones to everyone else.
func (s *service) List(ctx context.Context, actor *models.UserClaims, filter repositories.OperationTypeFilter, p pagination.Pagination) ([]models.OperationType, int64, error) {
	if !actor.HasPermission(models.PermissionOperationRead) {
		return nil, 0, apperrors.ErrForbidden
	}
	if !actor.HasPermission(models.PermissionOperationWrite) {
		filter.Status = models.OperationStatusActive
	}
	return s.store.OperationTypes().List(ctx, filter, p.Offset, p.Limit)
}

func (s *service) Update(ctx context.Context, actor *models.UserClaims, id uint, input UpdateInput) (*models.OperationType, error) {
	if !actor.HasPermission(models.PermissionOperationWrite) {
		return nil, apperrors.ErrForbidden
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	op, err := s.store.OperationTypes().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		op.Name = *input.Name
	}
	if input.Category != nil {
		op.Category = strings.ToLower(strings.TrimSpace(*input.Category))
	}
	if input.Description != nil {
		op.Description = *input.Description
	}
	if input.CommissionConfig != nil {
		op.CommissionConfig = *input.CommissionConfig
	}
	if input.FieldSchema != nil {
		op.FieldSchema = *input.FieldSchema
	}
	if input.AllowedRoles != nil {
		op.AllowedRoles = *input.AllowedRoles
	}
	if input.Status != nil {
		op.Status = *input.Status
	}

	if err := validateDefinition(op.CommissionConfig, op.FieldSchema, op.AllowedRoles); err != nil {
		return nil, err
	}
	if err := s.store.OperationTypes().Update(ctx, op); err != nil {
		return nil, err
	}

	s.log.Info("operation type updated", zap.Uint("id", op.ID), zap.Uint("actor", actor.UserID))
	s.publish(ctx, op, events.ActionUpdated)
	return op, nil
}

func (s *service) Delete(ctx context.Context, actor *models.UserClaims, id uint) error {
	if !actor.HasPermission(models.PermissionOperationWrite) {
		return apperrors.ErrForbidden
	}

	totals, err := s.store.Transactions().Summarize(ctx, repositories.TransactionFilter{OperationTypeID: &id})
	if err != nil {
		return err
	}
	if totals.Count > 0 {
		return ErrOperationInUse
	}

	if err := s.store.OperationTypes().Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("operation type deleted", zap.Uint("id", id), zap.Uint("actor", actor.UserID))
	_ = s.publisher.Publish(ctx, events.Change{Entity: events.EntityOperationType, Action: events.ActionDeleted, ID: id})
	return nil
}

func (s *service) publish(ctx context.Context, op *models.OperationType, action string) {
	_ = s.publisher.Publish(ctx, events.Change{
		Entity: events.EntityOperationType,
		Action: action,
		ID:     op.ID,
		Data:   map[string]string{"code": op.Code, "status": op.Status},
	})
}

func validateDefinition(cfg commission.Config, schema []models.FormField, roles []string) error {
	commission.SortTiers(cfg.Tiers)
	if err := commission.ValidateConfig(cfg); err != nil {
		return err
	}
	if err := ValidateSchema(schema); err != nil {
		return err
	}
	for _, r := range roles {
		if !models.IsValidRole(r) {
			return fmt.Errorf("%w: %s", ErrInvalidRole, r)
		}
	}
	return nil
}
