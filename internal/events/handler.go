package events

import (
	"context"
	"fmt"

	"restobook/internal/calendarsync"
	"restobook/pkg/kafka"
)

// JobApplier is satisfied by *calendarsync.Applier.
type JobApplier interface {
	Apply(ctx context.Context, job calendarsync.Job) (string, error)
}

// CalendarHandler applies consumed reservation events to the calendar.
// Undecodable events are permanent failures; calendar errors are left to the
// consumer's classification so provider outages are retried.
func CalendarHandler(applier JobApplier) kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		var event ReservationEvent
		if err := msg.DecodeValue(&event); err != nil {
			return kafka.NewPermanentError("undecodable reservation event", err)
		}
		if event.Reservation == nil {
			return kafka.NewPermanentError("reservation event without reservation", fmt.Errorf("event %s", msg.GetEventID()))
		}

		switch event.Type {
		case ReservationCreated, ReservationModified, ReservationCancelled:
		default:
			return kafka.NewPermanentError("unknown reservation event type", fmt.Errorf("%q", event.Type))
		}

		if _, err := applier.Apply(ctx, event.Job()); err != nil {
			return fmt.Errorf("apply %s for reservation %s: %w", event.Type, event.Reservation.ID, err)
		}
		return nil
	}
}
