package repository

import (
	"context"
	"time"

	"restobook/pkg/model"
)

const (
	ReservationsCollection = "reservations"
	TablesCollection       = "tables"
	HolidaysCollection     = "holidays"
	LocksCollection        = "reservation_locks"
)

// ReservationRepository stores reservations keyed by (phone, date). Dates are
// always normalized YYYY-MM-DD strings.
type ReservationRepository interface {
	FindByPhoneAndDate(ctx context.Context, phone, date string) ([]*model.Reservation, error)
	FindByDate(ctx context.Context, date string) ([]*model.Reservation, error)
	Insert(ctx context.Context, reservation *model.Reservation) error
	DeleteByPhoneAndDate(ctx context.Context, phone, date string) error
	Update(ctx context.Context, phone, date string, changes *model.ReservationChanges) error
}

type TableRepository interface {
	FindByZoneAndMinCapacity(ctx context.Context, zone model.Zone, minCapacity int) ([]*model.Table, error)
	GetByID(ctx context.Context, id int) (*model.Table, error)
	ListAll(ctx context.Context) ([]*model.Table, error)
}

// HolidaySource returns the holiday name for a date, or "" when the date is a working day.
type HolidaySource interface {
	HolidayName(ctx context.Context, date string) (string, error)
}

// LockRepository hands out advisory locks that expire after ttl.
// Acquire returns ErrLockHeld when another owner holds an unexpired lock on key.
// Release only removes the lock while owner still holds it, so an operation
// that outlived its ttl cannot free a lock someone else has taken since.
type LockRepository interface {
	Acquire(ctx context.Context, key, owner string, ttl time.Duration) error
	Release(ctx context.Context, key, owner string) error
}
