package availability

import (
	"context"
	"fmt"

	"restobook/internal/reservations/rules"
	"restobook/pkg/model"
)

// ReservationReader is the slice of the reservation store the checker needs.
type ReservationReader interface {
	FindByDate(ctx context.Context, date string) ([]*model.Reservation, error)
}

// Window is a half-open [Start, End) interval in minutes since midnight.
type Window struct {
	Start int
	End   int
}

func NewWindow(startMin, durationMin int) Window {
	return Window{Start: startMin, End: startMin + durationMin}
}

// Overlaps reports whether w and o share any minute. Touching windows do not overlap.
func (w Window) Overlaps(o Window) bool {
	return w.Start < o.End && o.Start < w.End
}

// ReservationWindow returns the interval a stored reservation occupies.
func ReservationWindow(r *model.Reservation) (Window, error) {
	start, err := rules.ParseTime(r.Time)
	if err != nil {
		return Window{}, fmt.Errorf("reservation %s: %w", r.ID, err)
	}
	return NewWindow(start, r.DurationMin), nil
}

type checkOptions struct {
	ignoreID string
}

type Option func(*checkOptions)

// IgnoreReservation leaves the reservation with the given id out of the conflict set.
// Modify uses it so a booking does not collide with itself.
func IgnoreReservation(id string) Option {
	return func(o *checkOptions) {
		o.ignoreID = id
	}
}

type Checker struct {
	reservations ReservationReader
}

func NewChecker(reservations ReservationReader) *Checker {
	return &Checker{reservations: reservations}
}

// IsTableAvailable reports whether tableID is free for durationMin minutes from
// startTime on date. A table held as a merge member blocks exactly like a primary table.
// date must already be normalized.
func (c *Checker) IsTableAvailable(ctx context.Context, tableID int, date, startTime string, durationMin int, opts ...Option) (bool, error) {
	conflicts, err := c.Conflicts(ctx, tableID, date, startTime, durationMin, opts...)
	if err != nil {
		return false, err
	}
	return len(conflicts) == 0, nil
}

// Conflicts returns the reservations on date that hold tableID during the proposed window.
func (c *Checker) Conflicts(ctx context.Context, tableID int, date, startTime string, durationMin int, opts ...Option) ([]*model.Reservation, error) {
	o := checkOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	start, err := rules.ParseTime(startTime)
	if err != nil {
		return nil, err
	}
	proposed := NewWindow(start, durationMin)

	existing, err := c.reservations.FindByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load reservations for %s: %w", date, err)
	}

	var conflicts []*model.Reservation
	for _, r := range existing {
		if o.ignoreID != "" && r.ID == o.ignoreID {
			continue
		}
		if !r.Uses(tableID) {
			continue
		}
		w, err := ReservationWindow(r)
		if err != nil {
			return nil, err
		}
		if proposed.Overlaps(w) {
			conflicts = append(conflicts, r)
		}
	}
	return conflicts, nil
}

// FreeTables filters tables down to those available for the window, preserving order.
// Reservations for the date are read once.
func (c *Checker) FreeTables(ctx context.Context, tables []*model.Table, date, startTime string, durationMin int, opts ...Option) ([]*model.Table, error) {
	o := checkOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	start, err := rules.ParseTime(startTime)
	if err != nil {
		return nil, err
	}
	proposed := NewWindow(start, durationMin)

	existing, err := c.reservations.FindByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load reservations for %s: %w", date, err)
	}

	busy := make(map[int]bool)
	for _, r := range existing {
		if o.ignoreID != "" && r.ID == o.ignoreID {
			continue
		}
		w, err := ReservationWindow(r)
		if err != nil {
			return nil, err
		}
		if !proposed.Overlaps(w) {
			continue
		}
		for _, id := range r.TableIDs() {
			busy[id] = true
		}
	}

	free := make([]*model.Table, 0, len(tables))
	for _, t := range tables {
		if !busy[t.ID] {
			free = append(free, t)
		}
	}
	return free, nil
}
