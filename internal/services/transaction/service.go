// Package transaction runs the lifecycle of agent operations: execution,
// back-office validation or rejection, and reassignment between validators.
package transaction

import (
	"context"
	"fmt"
	"time"

	apperrors "relais/internal/errors"
	"relais/internal/events"
	"relais/internal/metrics"
	"relais/internal/models"
	"relais/internal/repositories"
	"relais/internal/services/notification"
	"relais/internal/services/operation"
	"relais/internal/utils"
	"relais/internal/utils/pagination"
	"relais/internal/validation"

	"go.uber.org/zap"
)

type service struct {
	store     repositories.Store
	fees      FeeQuoter
	notifier  notification.Notifier
	publisher events.Publisher
	log       *zap.Logger
	now       func() time.Time
}

func NewService(store repositories.Store, fees FeeQuoter, notifier notification.Notifier, publisher events.Publisher, log *zap.Logger) Service {
	if store == nil {
		panic("store is required")
	}
	if fees == nil {
		panic("fee quoter is required")
	}
	if notifier == nil {
		notifier = notification.Noop{}
	}
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &service{
		store:     store,
		fees:      fees,
		notifier:  notifier,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

func (s *service) Execute(ctx context.Context, actor *models.UserClaims, input ExecuteInput) (_ *models.Transaction, err error) {
	defer func(start time.Time) { metrics.ObserveOperation(opExecute, start, err) }(s.now())

	if !actor.HasPermission(models.PermissionTransactionExecute) {
		return nil, apperrors.ErrForbidden
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if input.Amount < validation.MinTransactionAmount || input.Amount > validation.MaxTransactionAmount {
		return nil, ErrAmountOutOfRange
	}

	agent, err := s.store.Users().GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if !agent.IsActive() {
		return nil, ErrAgentInactive
	}

	op, err := s.store.OperationTypes().GetByID(ctx, input.OperationTypeID)
	if err != nil {
		return nil, err
	}
	if err := operation.CheckUsable(op, agent.Role); err != nil {
		return nil, err
	}

	fields, err := operation.ValidateFields(op.FieldSchema, input.Fields)
	if err != nil {
		return nil, err
	}

	quote, err := s.fees.Quote(ctx, agent, op, input.Amount)
	if err != nil {
		return nil, err
	}

	t := &models.Transaction{
		Reference:         utils.NewReference(ReferencePrefix),
		OperationTypeID:   op.ID,
		OperationCode:     op.Code,
		OperationCategory: op.Category,
		AgentID:           agent.ID,
		AgencyID:          agent.AgencyID,
		PartnerID:         agent.PartnerID,
		ContractID:        quote.ContractID,
		Amount:            input.Amount,
		Fee:               quote.Fee,
		CompanyCommission: quote.CompanyShare,
		PartnerCommission: quote.PartnerShare,
		CommissionSource:  quote.Source,
		Fields:            fields,
		Status:            models.TransactionStatusPending,
	}

	err = s.store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		if err := hold(ctx, tx, t); err != nil {
			return err
		}
		return tx.Transactions().Create(ctx, t)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("transaction executed",
		zap.String("reference", t.Reference),
		zap.Uint("agent_id", t.AgentID),
		zap.String("operation", t.OperationCode),
		zap.Float64("amount", t.Amount),
		zap.Float64("fee", t.Fee),
		zap.String("commission_source", string(t.CommissionSource)))
	metrics.RecordTransaction(t.Status, t.OperationCategory, t.Amount, t.Fee)
	s.publish(ctx, t, events.ActionCreated)
	return t, nil
}

func (s *service) Validate(ctx context.Context, actor *models.UserClaims, id uint) (_ *models.Transaction, err error) {
	defer func(start time.Time) { metrics.ObserveOperation(opValidate, start, err) }(s.now())

	if !canDecide(actor) {
		return nil, apperrors.ErrForbidden
	}

	var t *models.Transaction
	err = s.store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		var err error
		if t, err = s.lockPending(ctx, tx, actor, id); err != nil {
			return err
		}
		if err := settle(ctx, tx, t, actor.UserID); err != nil {
			return err
		}

		now := s.now()
		t.Status = models.TransactionStatusValidated
		t.ValidatedBy = &actor.UserID
		t.ValidatedAt = &now
		return tx.Transactions().Update(ctx, t)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("transaction validated", zap.String("reference", t.Reference), zap.Uint("validator", actor.UserID))
	metrics.RecordTransaction(t.Status, t.OperationCategory, t.Amount, t.Fee)
	s.publish(ctx, t, events.ActionValidated)
	notification.NotifyUser(ctx, s.notifier, s.store.Users(), s.log, t.AgentID, notification.Message{
		Title: "Transaction validated",
		Body:  fmt.Sprintf("%s of %.0f has been validated.", t.Reference, t.Amount),
		Data:  map[string]string{"transaction_id": fmt.Sprint(t.ID), "status": t.Status},
	})
	return t, nil
}

func (s *service) Reject(ctx context.Context, actor *models.UserClaims, id uint, reason string) (_ *models.Transaction, err error) {
	defer func(start time.Time) { metrics.ObserveOperation(opReject, start, err) }(s.now())

	if !canDecide(actor) {
		return nil, apperrors.ErrForbidden
	}
	if err := validation.Struct(RejectInput{Reason: reason}); err != nil {
		return nil, err
	}

	var t *models.Transaction
	err = s.store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		var err error
		if t, err = s.lockPending(ctx, tx, actor, id); err != nil {
			return err
		}
		if err := refund(ctx, tx, t, actor.UserID); err != nil {
			return err
		}

		now := s.now()
		t.Status = models.TransactionStatusRejected
		t.RejectionReason = reason
		t.ValidatedBy = &actor.UserID
		t.ValidatedAt = &now
		return tx.Transactions().Update(ctx, t)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("transaction rejected",
		zap.String("reference", t.Reference),
		zap.Uint("validator", actor.UserID),
		zap.String("reason", reason))
	metrics.RecordTransaction(t.Status, t.OperationCategory, t.Amount, t.Fee)
	s.publish(ctx, t, events.ActionRejected)
	notification.NotifyUser(ctx, s.notifier, s.store.Users(), s.log, t.AgentID, notification.Message{
		Title: "Transaction rejected",
		Body:  fmt.Sprintf("%s was rejected: %s", t.Reference, reason),
		Data:  map[string]string{"transaction_id": fmt.Sprint(t.ID), "status": t.Status},
	})
	return t, nil
}

// Reassign hands a pending transaction to another validator.
func (s *service) Reassign(ctx context.Context, actor *models.UserClaims, id, assigneeID uint) (*models.Transaction, error) {
	if !canDecide(actor) {
		return nil, apperrors.ErrForbidden
	}

	assignee, err := s.store.Users().GetByID(ctx, assigneeID)
	if err != nil {
		return nil, err
	}
	if !canValidate(assignee) {
		return nil, ErrInvalidAssignee
	}

	var t *models.Transaction
	err = s.store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		var err error
		if t, err = tx.Transactions().GetForUpdate(ctx, id); err != nil {
			return err
		}
		if !t.IsPending() {
			return ErrInvalidStatusTransition
		}
		t.AssignedTo = &assignee.ID
		return tx.Transactions().Update(ctx, t)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("transaction reassigned",
		zap.String("reference", t.Reference),
		zap.Uint("assignee", assignee.ID),
		zap.Uint("actor", actor.UserID))
	s.publish(ctx, t, events.ActionAssigned)
	if err := s.notifier.Notify(ctx, assignee, notification.Message{
		Title: "Transaction assigned",
		Body:  fmt.Sprintf("%s is waiting for your validation.", t.Reference),
		Data:  map[string]string{"transaction_id": fmt.Sprint(t.ID)},
	}); err != nil {
		s.log.Warn("notify assignee", zap.Uint("user_id", assignee.ID), zap.Error(err))
	}
	return t, nil
}

func (s *service) Get(ctx context.Context, actor *models.UserClaims, id uint) (*models.Transaction, error) {
	t, err := s.store.Transactions().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(actor, t) {
		return nil, apperrors.ErrForbidden
	}
	return t, nil
}

func (s *service) List(ctx context.Context, actor *models.UserClaims, filter repositories.TransactionFilter, p pagination.Pagination) ([]models.Transaction, int64, error) {
	scoped, err := Scope(actor, filter)
	if err != nil {
		return nil, 0, err
	}
	return s.store.Transactions().List(ctx, scoped, p.Offset, p.Limit)
}

// Scope narrows filter to what actor may see.
func Scope(actor *models.UserClaims, filter repositories.TransactionFilter) (repositories.TransactionFilter, error) {
	if !actor.HasPermission(models.PermissionTransactionRead) {
		return filter, apperrors.ErrForbidden
	}
	switch actor.Role {
	case models.RoleAdminGeneral, models.RoleSousAdmin, models.RoleDeveloper:
	case models.RolePartner:
		if actor.PartnerID == nil {
			return filter, apperrors.ErrForbidden
		}
		filter.PartnerID = actor.PartnerID
	case models.RoleAgent:
		filter.AgentID = &actor.UserID
	default:
		return filter, apperrors.ErrForbidden
	}
	return filter, nil
}

// lockPending loads the transaction for update and checks actor may decide
// on it now.
func (s *service) lockPending(ctx context.Context, tx repositories.Store, actor *models.UserClaims, id uint) (*models.Transaction, error) {
	t, err := tx.Transactions().GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.IsPending() {
		return nil, fmt.Errorf("%w: %s is %s", ErrInvalidStatusTransition, t.Reference, t.Status)
	}
	if t.AssignedTo != nil && *t.AssignedTo != actor.UserID && actor.Role != models.RoleAdminGeneral {
		return nil, ErrAssignedElsewhere
	}
	return t, nil
}

func (s *service) publish(ctx context.Context, t *models.Transaction, action string) {
	_ = s.publisher.Publish(ctx, events.Change{
		Entity:    events.EntityTransaction,
		Action:    action,
		ID:        t.ID,
		PartnerID: t.PartnerID,
		UserID:    &t.AgentID,
		Data: map[string]interface{}{
			"reference": t.Reference,
			"status":    t.Status,
			"amount":    t.Amount,
		},
	})
}

func canDecide(actor *models.UserClaims) bool {
	return actor.IsAdmin() && actor.HasPermission(models.PermissionTransactionValidate)
}

func canValidate(u *models.User) bool {
	if !u.IsAdmin() || !u.IsActive() {
		return false
	}
	return models.ClaimsFor(u).HasPermission(models.PermissionTransactionValidate)
}

func canView(actor *models.UserClaims, t *models.Transaction) bool {
	scoped, err := Scope(actor, repositories.TransactionFilter{})
	if err != nil {
		return false
	}
	if scoped.AgentID != nil && *scoped.AgentID != t.AgentID {
		return false
	}
	if scoped.PartnerID != nil && (t.PartnerID == nil || *t.PartnerID != *scoped.PartnerID) {
		return false
	}
	return true
}
