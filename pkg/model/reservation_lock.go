package model

import "time"

// ReservationLock is an advisory lock guarding a (phone, date) or (table, date) slot
// while a create or modify runs its check-then-write sequence.
type ReservationLock struct {
	ID        string    `bson:"_id" json:"id"`
	Owner     string    `bson:"owner" json:"owner"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
