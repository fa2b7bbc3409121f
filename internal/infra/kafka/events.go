package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/filipal/graph-platform-iam/internal/core/domain"
	"github.com/filipal/graph-platform-iam/internal/core/port"
	"github.com/filipal/graph-platform-iam/internal/infra/config"
)

const schemaVersion = "1.0"

const (
	eventTypeAccountRegistered = "account.registered"
	eventTypeRoleChanged       = "account.role.changed"
)

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	AccountID int64            `json:"account_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType string, accountID int64, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	if span := trace.SpanFromContext(ctx); span != nil {
		if sc := span.SpanContext(); sc.IsValid() {
			metadata["trace_id"] = sc.TraceID().String()
		}
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		AccountID: accountID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishAccountRegistered publishes account.registered events.
func (p *EventPublisher) PublishAccountRegistered(ctx context.Context, event domain.AccountRegisteredEvent) error {
	payload := struct {
		AccountID    int64          `json:"account_id"`
		Username     string         `json:"username"`
		Email        string         `json:"email,omitempty"`
		Role         string         `json:"role"`
		RegisteredAt time.Time      `json:"registered_at"`
		Metadata     map[string]any `json:"metadata,omitempty"`
	}{
		AccountID:    event.AccountID,
		Username:     event.Username,
		Email:        event.Email,
		Role:         event.Role.String(),
		RegisteredAt: event.RegisteredAt,
		Metadata:     event.Metadata,
	}

	return p.publish(ctx, event.EventID, eventTypeAccountRegistered, event.AccountID, event.RegisteredAt, payload)
}

// PublishRoleChanged publishes account.role.changed events.
func (p *EventPublisher) PublishRoleChanged(ctx context.Context, event domain.RoleChangedEvent) error {
	payload := struct {
		AccountID    int64          `json:"account_id"`
		PreviousRole string         `json:"previous_role"`
		NewRole      string         `json:"new_role"`
		ChangedBy    int64          `json:"changed_by"`
		ChangedAt    time.Time      `json:"changed_at"`
		Metadata     map[string]any `json:"metadata,omitempty"`
	}{
		AccountID:    event.AccountID,
		PreviousRole: event.PreviousRole.String(),
		NewRole:      event.NewRole.String(),
		ChangedBy:    event.ChangedBy,
		ChangedAt:    event.ChangedAt,
		Metadata:     event.Metadata,
	}

	return p.publish(ctx, event.EventID, eventTypeRoleChanged, event.AccountID, event.ChangedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
