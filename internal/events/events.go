// Package events publishes change notifications for realtime clients and
// downstream consumers.
package events

import (
	"context"
	"errors"
	"time"

	"relais/internal/metrics"

	"go.uber.org/zap"
)

// Channel is the redis pub/sub channel carrying Change messages.
const Channel = "relais:changes"

// Entities
const (
	EntityTransaction   = "transaction"
	EntityRecharge      = "recharge"
	EntityCard          = "prepaid_card"
	EntityContract      = "contract"
	EntityUser          = "user"
	EntityOperationType = "operation_type"
	EntityBalance       = "balance"
)

// Actions
const (
	ActionCreated   = "created"
	ActionUpdated   = "updated"
	ActionDeleted   = "deleted"
	ActionValidated = "validated"
	ActionApproved  = "approved"
	ActionRejected  = "rejected"
	ActionAssigned  = "assigned"
	ActionSold      = "sold"
)

// Change describes a row that changed. PartnerID and UserID scope who may
// see it; a change with neither is visible to staff only.
type Change struct {
	Entity    string      `json:"entity"`
	Action    string      `json:"action"`
	ID        uint        `json:"id"`
	PartnerID *uint       `json:"partner_id,omitempty"`
	UserID    *uint       `json:"user_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	At        time.Time   `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, change Change) error
}

// Noop discards every change.
type Noop struct{}

func (Noop) Publish(context.Context, Change) error { return nil }

type namedPublisher struct {
	name string
	Publisher
}

// Fanout publishes to every sink and reports all failures.
type Fanout struct {
	sinks []namedPublisher
	log   *zap.Logger
}

func NewFanout(log *zap.Logger) *Fanout {
	return &Fanout{log: log}
}

// Add registers a sink under name, used in logs and metrics.
func (f *Fanout) Add(name string, p Publisher) *Fanout {
	f.sinks = append(f.sinks, namedPublisher{name: name, Publisher: p})
	return f
}

func (f *Fanout) Publish(ctx context.Context, change Change) error {
	if change.At.IsZero() {
		change.At = time.Now().UTC()
	}

	var errs []error
	for _, sink := range f.sinks {
		if err := sink.Publish(ctx, change); err != nil {
			metrics.RecordPublishError(sink.name)
			f.log.Warn("publish change",
				zap.String("sink", sink.name),
				zap.String("entity", change.Entity),
				zap.Uint("id", change.ID),
				zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
