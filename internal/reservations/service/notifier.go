package service

import (
	"context"

	"restobook/pkg/model"
)

// Notifier receives reservation changes after they are stored. Implementations must
// not block the caller for long and never report failures back: the stored state
// is authoritative.
type Notifier interface {
	ReservationCreated(ctx context.Context, r *model.Reservation)
	ReservationModified(ctx context.Context, before, after *model.Reservation)
	ReservationCancelled(ctx context.Context, r *model.Reservation)
}

type NopNotifier struct{}

func (NopNotifier) ReservationCreated(context.Context, *model.Reservation)                      {}
func (NopNotifier) ReservationModified(context.Context, *model.Reservation, *model.Reservation) {}
func (NopNotifier) ReservationCancelled(context.Context, *model.Reservation)                    {}

// MultiNotifier fans every change out to each notifier in order.
type MultiNotifier []Notifier

func (m MultiNotifier) ReservationCreated(ctx context.Context, r *model.Reservation) {
	for _, n := range m {
		n.ReservationCreated(ctx, r)
	}
}

func (m MultiNotifier) ReservationModified(ctx context.Context, before, after *model.Reservation) {
	for _, n := range m {
		n.ReservationModified(ctx, before, after)
	}
}

func (m MultiNotifier) ReservationCancelled(ctx context.Context, r *model.Reservation) {
	for _, n := range m {
		n.ReservationCancelled(ctx, r)
	}
}
