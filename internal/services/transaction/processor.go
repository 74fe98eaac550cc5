package transaction

import (
	"context"
	"fmt"

	"relais/internal/models"
	"relais/internal/repositories"
	"relais/internal/services/balance"
)

// hold takes amount plus fee from the spender at execution.
func hold(ctx context.Context, store repositories.Store, t *models.Transaction) error {
	_, err := balance.Debit(ctx, store, balance.Entry{
		Owner:     balance.SpenderOf(t.AgentID, t.AgencyID),
		Kind:      models.BalancePrincipal,
		Amount:    t.Debited(),
		Reference: t.Reference,
		Reason:    "operation " + t.OperationCode,
		ActorID:   &t.AgentID,
	})
	if err != nil {
		return fmt.Errorf("debit %s: %w", t.Reference, err)
	}
	return nil
}

// settle pays the partner share once the transaction is validated.
func settle(ctx context.Context, store repositories.Store, t *models.Transaction, actorID uint) error {
	if t.PartnerCommission <= 0 {
		return nil
	}
	owner, kind := balance.EarnerOf(t.AgentID, t.AgencyID)
	_, err := balance.Credit(ctx, store, balance.Entry{
		Owner:     owner,
		Kind:      kind,
		Amount:    t.PartnerCommission,
		Reference: t.Reference,
		Reason:    "commission " + t.OperationCode,
		ActorID:   &actorID,
	})
	if err != nil {
		return fmt.Errorf("credit commission %s: %w", t.Reference, err)
	}
	return nil
}

// refund returns amount plus fee to the spender after a rejection.
func refund(ctx context.Context, store repositories.Store, t *models.Transaction, actorID uint) error {
	_, err := balance.Credit(ctx, store, balance.Entry{
		Owner:     balance.SpenderOf(t.AgentID, t.AgencyID),
		Kind:      models.BalancePrincipal,
		Amount:    t.Debited(),
		Reference: t.Reference,
		Reason:    "refund " + t.OperationCode,
		ActorID:   &actorID,
	})
	if err != nil {
		return fmt.Errorf("refund %s: %w", t.Reference, err)
	}
	return nil
}
