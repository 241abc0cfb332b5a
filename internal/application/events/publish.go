// Package events drains the domain events aggregates record while they
// mutate. Events are published to the structured log; downstream consumers
// tail the log rather than a broker.
package events

import (
	"context"

	"github.com/bancentral/corebank/internal/domain/shared"
	"github.com/bancentral/corebank/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Publish emits every recorded event of the given aggregates and clears
// them. Call it after the aggregate's state change has been persisted;
// events from a failed persist should never be published.
func Publish(ctx context.Context, roots ...shared.AggregateRoot) {
	log := logger.L(ctx)
	for _, root := range roots {
		for _, event := range root.GetDomainEvents() {
			log.Info("domain event",
				zap.String("event_id", event.EventID().String()),
				zap.String("event_type", event.EventType()),
				zap.String("aggregate_id", event.AggregateID().String()),
				zap.String("aggregate_type", event.AggregateType()),
				zap.Time("occurred_at", event.OccurredAt()),
			)
		}
		root.ClearDomainEvents()
	}
}
