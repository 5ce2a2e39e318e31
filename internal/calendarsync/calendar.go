// Package calendarsync mirrors stored reservations into an external calendar.
// Local state is always written first; calendar failures are logged and never
// undo a reservation.
package calendarsync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"restobook/pkg/model"
)

// ErrEventNotFound is returned when the provider no longer knows the event.
var ErrEventNotFound = errors.New("calendar event not found")

type Event struct {
	ID          string
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
}

type Calendar interface {
	CreateEvent(ctx context.Context, event *Event) (string, error)
	UpdateEvent(ctx context.Context, event *Event) error
	DeleteEvent(ctx context.Context, eventID string) error
}

// EventFor renders a reservation as a calendar event in loc. The event ends
// after the reservation's estimated duration.
func EventFor(r *model.Reservation, loc *time.Location) (*Event, error) {
	start, err := time.ParseInLocation(model.DateLayout+" "+model.TimeLayout, r.Date+" "+r.Time, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid reservation slot %s %s: %w", r.Date, r.Time, err)
	}

	return &Event{
		ID:          r.CalendarEventID,
		Summary:     fmt.Sprintf("Reservation: %s (%d guests)", r.Name, r.PartySize),
		Description: eventDescription(r),
		Start:       start,
		End:         start.Add(time.Duration(r.DurationMin) * time.Minute),
	}, nil
}

func eventDescription(r *model.Reservation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", r.Name)
	fmt.Fprintf(&b, "Phone: %s\n", r.Phone)
	fmt.Fprintf(&b, "Guests: %d\n", r.PartySize)

	tables := make([]string, 0, len(r.TableIDs()))
	for _, id := range r.TableIDs() {
		tables = append(tables, fmt.Sprintf("%d", id))
	}
	label := "Table"
	if r.IsMerged() {
		label = "Tables"
	}
	fmt.Fprintf(&b, "%s: %s\n", label, strings.Join(tables, ", "))

	if r.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", r.Notes)
	}
	return b.String()
}
