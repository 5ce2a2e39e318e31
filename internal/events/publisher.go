package events

import (
	"context"
	"time"

	"restobook/pkg/kafka"
	"restobook/pkg/logger"
	"restobook/pkg/model"
)

// MessagePublisher is satisfied by *kafka.Producer.
type MessagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// Publisher emits reservation events. It satisfies service.Notifier; a failed
// publish is logged and the stored reservation stands.
type Publisher struct {
	producer MessagePublisher
	log      *logger.Logger
	timeout  time.Duration
}

func NewPublisher(producer MessagePublisher, log *logger.Logger) *Publisher {
	return &Publisher{
		producer: producer,
		log:      log,
		timeout:  5 * time.Second,
	}
}

func (p *Publisher) ReservationCreated(ctx context.Context, r *model.Reservation) {
	p.publish(ctx, &ReservationEvent{Type: ReservationCreated, Reservation: r})
}

func (p *Publisher) ReservationModified(ctx context.Context, before, after *model.Reservation) {
	p.publish(ctx, &ReservationEvent{Type: ReservationModified, Reservation: after, Previous: before})
}

func (p *Publisher) ReservationCancelled(ctx context.Context, r *model.Reservation) {
	p.publish(ctx, &ReservationEvent{Type: ReservationCancelled, Reservation: r})
}

func (p *Publisher) publish(ctx context.Context, event *ReservationEvent) {
	event.OccurredAt = time.Now().UTC()

	// keyed by reservation id so every change of one reservation lands on one partition
	msg, err := kafka.NewMessage().
		WithKey(event.Reservation.ID).
		WithValue(event).
		WithEventType(string(event.Type)).
		WithSchemaVersion(SchemaVersion).
		WithSource(Source).
		Build()
	if err != nil {
		p.log.Error("Failed to encode reservation event", "type", event.Type, "reservation_id", event.Reservation.ID, "error", err)
		return
	}

	// the request context may already be finishing; publishing gets its own deadline
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	if err := p.producer.Publish(pubCtx, msg); err != nil {
		p.log.Warn("Failed to publish reservation event",
			"type", event.Type,
			"reservation_id", event.Reservation.ID,
			"phone", event.Reservation.Phone,
			"date", event.Reservation.Date,
			"error", err,
		)
		return
	}
	p.log.Debug("Reservation event published", "type", event.Type, "reservation_id", event.Reservation.ID, "event_id", msg.GetEventID())
}
