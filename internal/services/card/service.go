// Package card manages the prepaid-card inventory: batch imports, assignment
// to agents and sale.
package card

import (
	"context"
	"fmt"
	"io"
	"time"

	apperrors "relais/internal/errors"
	"relais/internal/events"
	"relais/internal/metrics"
	"relais/internal/models"
	"relais/internal/repositories"
	"relais/internal/services/balance"
	"relais/internal/services/notification"
	"relais/internal/utils"
	"relais/internal/utils/pagination"
	"relais/internal/validation"

	"go.uber.org/zap"
)

const (
	batchPrefix = "BATCH"
	salePrefix  = "CRD"
)

type Service interface {
	ImportBatch(ctx context.Context, actor *models.UserClaims, batchRef string, r io.Reader) (*ImportReport, error)
	List(ctx context.Context, actor *models.UserClaims, filter repositories.CardFilter, p pagination.Pagination) ([]models.PrepaidCard, int64, error)
	Stats(ctx context.Context, actor *models.UserClaims, filter repositories.CardFilter) ([]models.CardStats, error)
	Assign(ctx context.Context, actor *models.UserClaims, input AssignInput) ([]models.PrepaidCard, error)
	Sell(ctx context.Context, actor *models.UserClaims, cardID uint) (*Sale, error)
	Block(ctx context.Context, actor *models.UserClaims, cardID uint) (*models.PrepaidCard, error)
}

type service struct {
	store     repositories.Store
	notifier  notification.Notifier
	publisher events.Publisher
	log       *zap.Logger
	now       func() time.Time
}

func NewService(store repositories.Store, notifier notification.Notifier, publisher events.Publisher, log *zap.Logger) Service {
	if notifier == nil {
		notifier = notification.Noop{}
	}
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &service{store: store, notifier: notifier, publisher: publisher, log: log, now: time.Now}
}

func (s *service) ImportBatch(ctx context.Context, actor *models.UserClaims, batchRef string, r io.Reader) (*ImportReport, error) {
	if !canManage(actor) {
		return nil, apperrors.ErrForbidden
	}
	if batchRef == "" {
		batchRef = utils.NewReference(batchPrefix)
	}

	cards, duplicates, invalid, err := parseBatch(r, batchRef, actor.UserID)
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 && len(duplicates) == 0 {
		return nil, ErrEmptyBatch
	}

	serials := make([]string, len(cards))
	for i, c := range cards {
		serials[i] = c.Serial
	}
	existing, err := s.store.Cards().ExistingSerials(ctx, serials)
	if err != nil {
		return nil, err
	}
	duplicates = append(duplicates, existing...)
	cards = dropExisting(cards, existing)

	report := &ImportReport{
		BatchRef:   batchRef,
		Duplicates: duplicates,
		Invalid:    invalid,
	}
	if report.Duplicates == nil {
		report.Duplicates = []string{}
	}
	if report.Invalid == nil {
		report.Invalid = []RowError{}
	}

	if len(cards) > 0 {
		if report.Imported, err = s.store.Cards().CreateBatch(ctx, cards); err != nil {
			return nil, fmt.Errorf("store batch %s: %w", batchRef, err)
		}
	}

	s.log.Info("card batch imported",
		zap.String("batch_ref", batchRef),
		zap.Int64("imported", report.Imported),
		zap.Int("duplicates", len(report.Duplicates)),
		zap.Int("invalid", len(report.Invalid)))
	metrics.RecordCardEvent("imported", int(report.Imported))
	return report, nil
}

func (s *service) List(ctx context.Context, actor *models.UserClaims, filter repositories.CardFilter, p pagination.Pagination) ([]models.PrepaidCard, int64, error) {
	scoped, err := scope(actor, filter)
	if err != nil {
		return nil, 0, err
	}
	cards, total, err := s.store.Cards().List(ctx, scoped, p.Offset, p.Limit)
	if err != nil {
		return nil, 0, err
	}
	for i := range cards {
		cards[i] = cards[i].Masked()
	}
	return cards, total, nil
}

func (s *service) Stats(ctx context.Context, actor *models.UserClaims, filter repositories.CardFilter) ([]models.CardStats, error) {
	scoped, err := scope(actor, filter)
	if err != nil {
		return nil, err
	}
	return s.store.Cards().Stats(ctx, scoped)
}

// Assign hands quantity available cards of a face value to an agent, oldest
// stock first. Either all requested cards are assigned or none.
func (s *service) Assign(ctx context.Context, actor *models.UserClaims, input AssignInput) ([]models.PrepaidCard, error) {
	if !canManage(actor) {
		return nil, apperrors.ErrForbidden
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	agent, err := s.store.Users().GetByID(ctx, input.AgentID)
	if err != nil {
		return nil, err
	}
	if agent.Role != models.RoleAgent || !agent.IsActive() {
		return nil, ErrNotAgent
	}

	var cards []models.PrepaidCard
	err = s.store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		var err error
		if cards, err = tx.Cards().LockAvailable(ctx, input.FaceValue, input.Quantity); err != nil {
			return err
		}
		if len(cards) < input.Quantity {
			return fmt.Errorf("%w: %d of %d available", ErrNotEnoughCards, len(cards), input.Quantity)
		}

		now := s.now()
		ids := make([]uint, len(cards))
		for i := range cards {
			ids[i] = cards[i].ID
			cards[i].Status = models.CardStatusAssigned
			cards[i].AgentID = &agent.ID
			cards[i].AssignedAt = &now
		}
		return tx.Cards().Assign(ctx, ids, agent.ID, now)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("cards assigned",
		zap.Uint("agent_id", agent.ID),
		zap.Float64("face_value", input.FaceValue),
		zap.Int("quantity", len(cards)),
		zap.Uint("actor", actor.UserID))
	metrics.RecordCardEvent("assigned", len(cards))
	_ = s.publisher.Publish(ctx, events.Change{
		Entity:    events.EntityCard,
		Action:    events.ActionAssigned,
		ID:        cards[0].ID,
		PartnerID: agent.PartnerID,
		UserID:    &agent.ID,
		Data:      map[string]interface{}{"face_value": input.FaceValue, "quantity": len(cards)},
	})
	if err := s.notifier.Notify(ctx, agent, notification.Message{
		Title: "Cards assigned",
		Body:  fmt.Sprintf("%d cards of %.0f were added to your stock.", len(cards), input.FaceValue),
	}); err != nil {
		s.log.Warn("notify agent", zap.Uint("user_id", agent.ID), zap.Error(err))
	}

	for i := range cards {
		cards[i] = cards[i].Masked()
	}
	return cards, nil
}

// Sell marks one of the agent's cards sold and debits its face value from
// the agent's balance owner. The PIN is returned unmasked.
func (s *service) Sell(ctx context.Context, actor *models.UserClaims, cardID uint) (*Sale, error) {
	if !actor.HasPermission(models.PermissionCardSell) {
		return nil, apperrors.ErrForbidden
	}

	agent, err := s.store.Users().GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if !agent.IsActive() {
		return nil, ErrNotAgent
	}

	sale := &Sale{Reference: utils.NewReference(salePrefix)}
	err = s.store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		card, err := tx.Cards().GetForUpdate(ctx, cardID)
		if err != nil {
			return err
		}
		if card.Status == models.CardStatusSold {
			return ErrCardSold
		}
		if card.Status != models.CardStatusAssigned || card.AgentID == nil || *card.AgentID != agent.ID {
			return ErrCardNotAssigned
		}

		if _, err := balance.Debit(ctx, tx, balance.Entry{
			Owner:     balance.OwnerFor(agent),
			Kind:      models.BalancePrincipal,
			Amount:    card.FaceValue,
			Reference: sale.Reference,
			Reason:    "card sale " + card.Serial,
			ActorID:   &agent.ID,
		}); err != nil {
			return err
		}

		now := s.now()
		card.Status = models.CardStatusSold
		card.SoldAt = &now
		card.SaleReference = sale.Reference
		if err := tx.Cards().Update(ctx, card); err != nil {
			return err
		}
		sale.Card = *card
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("card sold",
		zap.Uint("card_id", cardID),
		zap.Uint("agent_id", agent.ID),
		zap.String("reference", sale.Reference))
	metrics.RecordCardEvent("sold", 1)
	_ = s.publisher.Publish(ctx, events.Change{
		Entity:    events.EntityCard,
		Action:    events.ActionSold,
		ID:        cardID,
		PartnerID: agent.PartnerID,
		UserID:    &agent.ID,
		Data:      map[string]interface{}{"face_value": sale.Card.FaceValue, "reference": sale.Reference},
	})
	return sale, nil
}

func (s *service) Block(ctx context.Context, actor *models.UserClaims, cardID uint) (*models.PrepaidCard, error) {
	if !canManage(actor) {
		return nil, apperrors.ErrForbidden
	}

	card, err := s.store.Cards().GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card.Status == models.CardStatusSold {
		return nil, ErrCardSold
	}
	if card.Status != models.CardStatusBlocked {
		card.Status = models.CardStatusBlocked
		if err := s.store.Cards().Update(ctx, card); err != nil {
			return nil, err
		}
		s.log.Info("card blocked", zap.Uint("card_id", cardID), zap.Uint("actor", actor.UserID))
		metrics.RecordCardEvent("blocked", 1)
		_ = s.publisher.Publish(ctx, events.Change{Entity: events.EntityCard, Action: events.ActionUpdated, ID: cardID, UserID: card.AgentID})
	}

	masked := card.Masked()
	return &masked, nil
}

func canManage(actor *models.UserClaims) bool {
	return actor.IsAdmin() && actor.HasPermission(models.PermissionCardWrite)
}

// scope: staff with card:read see the whole inventory, agents their own stock.
func scope(actor *models.UserClaims, filter repositories.CardFilter) (repositories.CardFilter, error) {
	switch {
	case actor.IsAdmin() && actor.HasPermission(models.PermissionCardRead):
	case actor.Role == models.RoleAgent && actor.HasPermission(models.PermissionCardRead):
		filter.AgentID = &actor.UserID
	default:
		return filter, apperrors.ErrForbidden
	}
	return filter, nil
}
