package port

import (
	"context"

	"github.com/filipal/graph-platform-iam/internal/core/domain"
)

// EventPublisher publishes domain events to the message bus.
type EventPublisher interface {
	PublishAccountRegistered(ctx context.Context, event domain.AccountRegisteredEvent) error
	PublishRoleChanged(ctx context.Context, event domain.RoleChangedEvent) error
}
