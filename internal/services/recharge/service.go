// Package recharge handles agents' requests to top up their balance.
package recharge

import (
	"context"
	"fmt"
	"math"
	"time"

	apperrors "relais/internal/errors"
	"relais/internal/events"
	"relais/internal/metrics"
	"relais/internal/models"
	"relais/internal/repositories"
	"relais/internal/services/balance"
	"relais/internal/services/fee"
	"relais/internal/services/gateway"
	"relais/internal/services/notification"
	"relais/internal/services/storage"
	"relais/internal/utils"
	"relais/internal/utils/pagination"
	"relais/internal/validation"

	"go.uber.org/zap"
)

const referencePrefix = "RCH"

type Service interface {
	Create(ctx context.Context, actor *models.UserClaims, input CreateInput, proof *Proof) (*CreateResult, error)
	Approve(ctx context.Context, actor *models.UserClaims, id uint) (*models.AgentRechargeRequest, error)
	Reject(ctx context.Context, actor *models.UserClaims, id uint, reason string) (*models.AgentRechargeRequest, error)
	Get(ctx context.Context, actor *models.UserClaims, id uint) (*models.AgentRechargeRequest, error)
	List(ctx context.Context, actor *models.UserClaims, filter repositories.RechargeFilter, p pagination.Pagination) ([]models.AgentRechargeRequest, int64, error)
}

// MethodQuoter prices a recharge through a payment method.
type MethodQuoter interface {
	PaymentMethodFee(ctx context.Context, methodCode string, amount float64) (*fee.MethodQuote, error)
}

type Config struct {
	Store     repositories.Store
	Fees      MethodQuoter
	Gateway   gateway.Gateway
	Storage   storage.Storage
	Notifier  notification.Notifier
	Publisher events.Publisher
	Log       *zap.Logger
	Currency  string
}

type service struct {
	Config
	now func() time.Time
}

func NewService(cfg Config) Service {
	if cfg.Store == nil {
		panic("store is required")
	}
	if cfg.Fees == nil {
		panic("fee quoter is required")
	}
	if cfg.Gateway == nil {
		cfg.Gateway = gateway.Disabled{}
	}
	if cfg.Storage == nil {
		cfg.Storage = storage.Disabled{}
	}
	if cfg.Notifier == nil {
		cfg.Notifier = notification.Noop{}
	}
	if cfg.Publisher == nil {
		cfg.Publisher = events.Noop{}
	}
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	if cfg.Currency == "" {
		cfg.Currency = "XOF"
	}
	return &service{Config: cfg, now: time.Now}
}

func (s *service) Create(ctx context.Context, actor *models.UserClaims, input CreateInput, proof *Proof) (*CreateResult, error) {
	if !actor.HasPermission(models.PermissionRechargeRequest) {
		return nil, apperrors.ErrForbidden
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	agent, err := s.Store.Users().GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if !agent.IsActive() {
		return nil, ErrAgentInactive
	}

	quote, err := s.Fees.PaymentMethodFee(ctx, input.Method, input.Amount)
	if err != nil {
		return nil, err
	}
	if quote.Method.RequiresProof && proof == nil {
		return nil, ErrProofRequired
	}

	req := &models.AgentRechargeRequest{
		Reference:         utils.NewReference(referencePrefix),
		AgentID:           agent.ID,
		AgencyID:          agent.AgencyID,
		PartnerID:         agent.PartnerID,
		Amount:            input.Amount,
		PaymentMethodCode: quote.Method.Code,
		Fee:               quote.Fee,
		NetAmount:         quote.NetAmount,
		Status:            models.RechargeStatusPending,
		Note:              input.Note,
	}
	result := &CreateResult{Recharge: req}

	if proof != nil {
		path, err := s.Storage.Upload(ctx, "recharges/"+req.Reference, proof.ContentType, proof.Body)
		if err != nil {
			return nil, fmt.Errorf("upload proof: %w", err)
		}
		req.ProofPath = path
	}

	if quote.Method.RequiresGateway {
		intent, err := s.Gateway.CreateIntent(ctx, int64(math.Round(input.Amount)), s.Currency, req.Reference)
		if err != nil {
			return nil, err
		}
		req.GatewayReference = intent.ID
		result.ClientSecret = intent.ClientSecret
	}

	if err := s.Store.Recharges().Create(ctx, req); err != nil {
		return nil, err
	}

	s.Log.Info("recharge requested",
		zap.String("reference", req.Reference),
		zap.Uint("agent_id", req.AgentID),
		zap.String("method", req.PaymentMethodCode),
		zap.Float64("amount", req.Amount),
		zap.Float64("fee", req.Fee))
	metrics.RecordRecharge(req.Status, req.PaymentMethodCode)
	s.publish(ctx, req, events.ActionCreated)
	return result, nil
}

// Approve credits the net amount to the agent's balance owner. Card
// recharges are only approved once the payment intent has succeeded.
func (s *service) Approve(ctx context.Context, actor *models.UserClaims, id uint) (*models.AgentRechargeRequest, error) {
	if !canDecide(actor) {
		return nil, apperrors.ErrForbidden
	}

	current, err := s.Store.Recharges().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.IsPending() {
		return nil, ErrInvalidStatusTransition
	}
	if current.GatewayReference != "" {
		intent, err := s.Gateway.GetIntent(ctx, current.GatewayReference)
		if err != nil {
			return nil, err
		}
		if !intent.Succeeded() {
			return nil, fmt.Errorf("%w: intent is %s", ErrPaymentIncomplete, intent.Status)
		}
	}

	var req *models.AgentRechargeRequest
	err = s.Store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		var err error
		if req, err = tx.Recharges().GetForUpdate(ctx, id); err != nil {
			return err
		}
		if !req.IsPending() {
			return ErrInvalidStatusTransition
		}

		if _, err := balance.Credit(ctx, tx, balance.Entry{
			Owner:     balance.SpenderOf(req.AgentID, req.AgencyID),
			Kind:      models.BalancePrincipal,
			Amount:    req.NetAmount,
			Reference: req.Reference,
			Reason:    "recharge " + req.PaymentMethodCode,
			ActorID:   &actor.UserID,
		}); err != nil {
			return err
		}

		s.decide(req, actor, models.RechargeStatusApproved)
		return tx.Recharges().Update(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	s.Log.Info("recharge approved", zap.String("reference", req.Reference), zap.Uint("actor", actor.UserID))
	metrics.RecordRecharge(req.Status, req.PaymentMethodCode)
	s.publish(ctx, req, events.ActionApproved)
	notification.NotifyUser(ctx, s.Notifier, s.Store.Users(), s.Log, req.AgentID, notification.Message{
		Title: "Recharge approved",
		Body:  fmt.Sprintf("%.0f %s has been credited to your balance.", req.NetAmount, s.Currency),
		Data:  map[string]string{"recharge_id": fmt.Sprint(req.ID), "status": req.Status},
	})
	return req, nil
}

func (s *service) Reject(ctx context.Context, actor *models.UserClaims, id uint, reason string) (*models.AgentRechargeRequest, error) {
	if !canDecide(actor) {
		return nil, apperrors.ErrForbidden
	}
	v := validation.New()
	v.Required("reason", reason)
	v.MaxLength("reason", reason, validation.MaxReasonLength)
	if err := v.Err(); err != nil {
		return nil, err
	}

	var req *models.AgentRechargeRequest
	err := s.Store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		var err error
		if req, err = tx.Recharges().GetForUpdate(ctx, id); err != nil {
			return err
		}
		if !req.IsPending() {
			return ErrInvalidStatusTransition
		}
		s.decide(req, actor, models.RechargeStatusRejected)
		req.RejectionReason = reason
		return tx.Recharges().Update(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	s.Log.Info("recharge rejected", zap.String("reference", req.Reference), zap.String("reason", reason))
	metrics.RecordRecharge(req.Status, req.PaymentMethodCode)
	s.publish(ctx, req, events.ActionRejected)
	notification.NotifyUser(ctx, s.Notifier, s.Store.Users(), s.Log, req.AgentID, notification.Message{
		Title: "Recharge rejected",
		Body:  reason,
		Data:  map[string]string{"recharge_id": fmt.Sprint(req.ID), "status": req.Status},
	})
	return req, nil
}

func (s *service) Get(ctx context.Context, actor *models.UserClaims, id uint) (*models.AgentRechargeRequest, error) {
	req, err := s.Store.Recharges().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	scoped, err := Scope(actor, repositories.RechargeFilter{})
	if err != nil {
		return nil, err
	}
	if scoped.AgentID != nil && *scoped.AgentID != req.AgentID {
		return nil, apperrors.ErrForbidden
	}
	if scoped.PartnerID != nil && (req.PartnerID == nil || *req.PartnerID != *scoped.PartnerID) {
		return nil, apperrors.ErrForbidden
	}
	return req, nil
}

func (s *service) List(ctx context.Context, actor *models.UserClaims, filter repositories.RechargeFilter, p pagination.Pagination) ([]models.AgentRechargeRequest, int64, error) {
	scoped, err := Scope(actor, filter)
	if err != nil {
		return nil, 0, err
	}
	return s.Store.Recharges().List(ctx, scoped, p.Offset, p.Limit)
}

// Scope narrows filter to the requests actor may see.
func Scope(actor *models.UserClaims, filter repositories.RechargeFilter) (repositories.RechargeFilter, error) {
	if !actor.HasPermission(models.PermissionRechargeRead) {
		return filter, apperrors.ErrForbidden
	}
	switch {
	case actor.IsAdmin():
	case actor.Role == models.RolePartner && actor.PartnerID != nil:
		filter.PartnerID = actor.PartnerID
	case actor.Role == models.RoleAgent:
		filter.AgentID = &actor.UserID
	default:
		return filter, apperrors.ErrForbidden
	}
	return filter, nil
}

func (s *service) decide(req *models.AgentRechargeRequest, actor *models.UserClaims, status string) {
	now := s.now()
	req.Status = status
	req.ProcessedBy = &actor.UserID
	req.ProcessedAt = &now
}

func (s *service) publish(ctx context.Context, req *models.AgentRechargeRequest, action string) {
	_ = s.Publisher.Publish(ctx, events.Change{
		Entity:    events.EntityRecharge,
		Action:    action,
		ID:        req.ID,
		PartnerID: req.PartnerID,
		UserID:    &req.AgentID,
		Data: map[string]interface{}{
			"reference": req.Reference,
			"status":    req.Status,
			"amount":    req.Amount,
		},
	})
}

func canDecide(actor *models.UserClaims) bool {
	return actor.IsAdmin() && actor.HasPermission(models.PermissionRechargeApprove)
}
