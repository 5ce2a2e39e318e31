package calendarsync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"restobook/pkg/logger"
	"restobook/pkg/model"
)

type JobKind string

const (
	JobCreated   JobKind = "reservation.created"
	JobModified  JobKind = "reservation.modified"
	JobCancelled JobKind = "reservation.cancelled"
)

// Job is one reservation change to mirror. Reservation is the state after the
// change; for JobCancelled it is the removed reservation.
type Job struct {
	Kind        JobKind
	Reservation *model.Reservation
}

// ReservationUpdater is the write-back half of the reservation repository.
type ReservationUpdater interface {
	Update(ctx context.Context, phone, date string, changes *model.ReservationChanges) error
}

// Applier turns jobs into calendar calls and stores created event ids on
// the reservation.
type Applier struct {
	calendar     Calendar
	reservations ReservationUpdater
	loc          *time.Location
	log          *logger.Logger

	mu     sync.Mutex
	events map[string]string // reservation id -> event id, for jobs queued before write-back
}

func NewApplier(calendar Calendar, reservations ReservationUpdater, loc *time.Location, log *logger.Logger) *Applier {
	return &Applier{
		calendar:     calendar,
		reservations: reservations,
		loc:          loc,
		log:          log,
		events:       make(map[string]string),
	}
}

// Apply runs a single job and returns the event id it touched.
func (a *Applier) Apply(ctx context.Context, job Job) (string, error) {
	if job.Reservation == nil {
		return "", fmt.Errorf("job %s has no reservation", job.Kind)
	}

	switch job.Kind {
	case JobCreated:
		return a.create(ctx, job.Reservation)
	case JobModified:
		return a.modify(ctx, job.Reservation)
	case JobCancelled:
		return a.cancel(ctx, job.Reservation)
	default:
		return "", fmt.Errorf("unknown job kind %q", job.Kind)
	}
}

// create is safe to retry: an event already created for the reservation is
// reused and only the write-back is repeated.
func (a *Applier) create(ctx context.Context, r *model.Reservation) (string, error) {
	eventID := a.eventID(r)
	if eventID == "" {
		event, err := EventFor(r, a.loc)
		if err != nil {
			return "", err
		}
		if eventID, err = a.calendar.CreateEvent(ctx, event); err != nil {
			return "", err
		}
		a.remember(r.ID, eventID)
	}

	changes := &model.ReservationChanges{CalendarEventID: &eventID}
	if err := a.reservations.Update(ctx, r.Phone, r.Date, changes); err != nil {
		return eventID, fmt.Errorf("event %s created but not stored on reservation: %w", eventID, err)
	}
	return eventID, nil
}

// modify updates the existing event, or creates one when the reservation was
// never mirrored or the provider lost it.
func (a *Applier) modify(ctx context.Context, r *model.Reservation) (string, error) {
	eventID := a.eventID(r)
	if eventID == "" {
		return a.create(ctx, r)
	}

	event, err := EventFor(r, a.loc)
	if err != nil {
		return "", err
	}
	event.ID = eventID

	err = a.calendar.UpdateEvent(ctx, event)
	if errors.Is(err, ErrEventNotFound) {
		a.log.Warn("Calendar event missing, recreating", "event_id", eventID, "reservation_id", r.ID)
		a.forget(r.ID)
		orphan := r.Clone()
		orphan.CalendarEventID = ""
		return a.create(ctx, orphan)
	}
	if err != nil {
		return eventID, err
	}

	// The create job may have failed to store the id because the reservation
	// had already moved to another date; store it under the current key.
	if r.CalendarEventID == "" {
		changes := &model.ReservationChanges{CalendarEventID: &eventID}
		if err := a.reservations.Update(ctx, r.Phone, r.Date, changes); err != nil {
			return eventID, fmt.Errorf("event %s updated but not stored on reservation: %w", eventID, err)
		}
	}
	return eventID, nil
}

func (a *Applier) cancel(ctx context.Context, r *model.Reservation) (string, error) {
	eventID := a.eventID(r)
	if eventID == "" {
		return "", nil
	}

	if err := a.calendar.DeleteEvent(ctx, eventID); err != nil && !errors.Is(err, ErrEventNotFound) {
		return eventID, err
	}
	a.forget(r.ID)
	return eventID, nil
}

func (a *Applier) eventID(r *model.Reservation) string {
	if r.CalendarEventID != "" {
		return r.CalendarEventID
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.events[r.ID]
}

func (a *Applier) remember(reservationID, eventID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events[reservationID] = eventID
}

func (a *Applier) forget(reservationID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.events, reservationID)
}
