// Package events publishes scheduling domain events. Publishing is best
// effort: failures are logged and never surface to the caller.
package events

import (
	"context"
	"time"

	"clinicsched/pkg/kafka"
	"clinicsched/pkg/logger"

	"github.com/google/uuid"
)

const (
	AppointmentReserved       = "appointment.reserved"
	AppointmentSeriesReserved = "appointment.series_reserved"
	AppointmentRescheduled    = "appointment.rescheduled"
	AppointmentStatusChanged  = "appointment.status_changed"
	BlockedTimeCreated        = "blocked_time.created"

	SchemaVersion = "1"
	Source        = "clinicsched"
)

type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	TenantID   string    `json:"tenantId"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data"`
}

func New(eventType, tenantID string, data any) Event {
	return Event{
		ID:         uuid.New().String(),
		Type:       eventType,
		TenantID:   tenantID,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

type Publisher interface {
	Publish(ctx context.Context, evt Event)
	Close() error
}

// MessagePublisher is satisfied by *kafka.Producer.
type MessagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	producer MessagePublisher
	timeout  time.Duration
	log      *logger.Logger
}

func NewKafkaPublisher(producer MessagePublisher, timeout time.Duration, log *logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, timeout: timeout, log: log}
}

func (p *KafkaPublisher) Publish(ctx context.Context, evt Event) {
	msg, err := kafka.NewMessage().
		WithKey(evt.TenantID).
		WithEventID(evt.ID).
		WithEventType(evt.Type).
		WithSchemaVersion(SchemaVersion).
		WithSource(Source).
		WithTimestamp(evt.OccurredAt).
		WithValue(evt).
		Build()
	if err != nil {
		p.log.Error("failed to build event message", "event_type", evt.Type, "event_id", evt.ID, "error", err)
		return
	}

	// The reservation is already committed; a cancelled request must not drop the event.
	pubCtx := context.WithoutCancel(ctx)
	if p.timeout > 0 {
		var cancel context.CancelFunc
		pubCtx, cancel = context.WithTimeout(pubCtx, p.timeout)
		defer cancel()
	}

	if err := p.producer.Publish(pubCtx, msg); err != nil {
		p.log.Warn("failed to publish event",
			"event_type", evt.Type,
			"event_id", evt.ID,
			"tenant_id", evt.TenantID,
			"error", err,
		)
	}
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// NoopPublisher is used when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) {}

func (NoopPublisher) Close() error { return nil }
