package kafka

import (
	"context"

	"go.uber.org/zap"

	"github.com/filipal/graph-platform-iam/internal/core/domain"
	"github.com/filipal/graph-platform-iam/internal/core/port"
)

// StubPublisher logs events instead of publishing them. Used when no
// brokers are configured, for local development and tests.
type StubPublisher struct {
	logger *zap.Logger
}

func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (s *StubPublisher) PublishAccountRegistered(_ context.Context, event domain.AccountRegisteredEvent) error {
	s.logger.Info("event skipped, no brokers configured",
		zap.String("event_type", eventTypeAccountRegistered),
		zap.Int64("account_id", event.AccountID),
		zap.String("role", event.Role.String()))
	return nil
}

func (s *StubPublisher) PublishRoleChanged(_ context.Context, event domain.RoleChangedEvent) error {
	s.logger.Info("event skipped, no brokers configured",
		zap.String("event_type", eventTypeRoleChanged),
		zap.Int64("account_id", event.AccountID),
		zap.String("new_role", event.NewRole.String()))
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
