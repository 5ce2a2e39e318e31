// Package events carries reservation changes over Kafka to out-of-process
// consumers such as the calendar sync worker.
package events

import (
	"time"

	"restobook/internal/calendarsync"
	"restobook/pkg/model"
)

const (
	SchemaVersion = "1"
	Source        = "reservations"
)

type Type string

const (
	ReservationCreated   Type = "reservation.created"
	ReservationModified  Type = "reservation.modified"
	ReservationCancelled Type = "reservation.cancelled"
)

// ReservationEvent is the JSON payload on the reservation events topic.
// Previous is set for modifications only.
type ReservationEvent struct {
	Type        Type               `json:"type"`
	Reservation *model.Reservation `json:"reservation"`
	Previous    *model.Reservation `json:"previous,omitempty"`
	OccurredAt  time.Time          `json:"occurred_at"`
}

// Job converts the event into a calendar sync job.
func (e *ReservationEvent) Job() calendarsync.Job {
	job := calendarsync.Job{
		Kind:        calendarsync.JobKind(e.Type),
		Reservation: e.Reservation,
	}
	if e.Type == ReservationModified && e.Reservation != nil && e.Reservation.CalendarEventID == "" && e.Previous != nil {
		job.Reservation = e.Reservation.Clone()
		job.Reservation.CalendarEventID = e.Previous.CalendarEventID
	}
	return job
}
