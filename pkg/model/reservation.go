package model

import (
	"slices"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type Reservation struct {
	ID              string    `json:"id" bson:"_id"`
	TableID         int       `json:"table_id" bson:"table_id"`
	MergedTables    []int     `json:"merged_tables,omitempty" bson:"merged_tables,omitempty"`
	Name            string    `json:"name" bson:"name"`
	PartySize       int       `json:"party_size" bson:"party_size"`
	Date            string    `json:"date" bson:"date"`
	Time            string    `json:"time" bson:"time"`
	Phone           string    `json:"phone" bson:"phone"`
	DurationMin     int       `json:"duration_min" bson:"duration_min"`
	Notes           string    `json:"notes,omitempty" bson:"notes,omitempty"`
	CalendarEventID string    `json:"calendar_event_id,omitempty" bson:"calendar_event_id,omitempty"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at"`
}

// TableIDs returns the primary table followed by any merged tables.
func (r *Reservation) TableIDs() []int {
	ids := make([]int, 0, 1+len(r.MergedTables))
	ids = append(ids, r.TableID)
	return append(ids, r.MergedTables...)
}

// Uses reports whether tableID is held by the reservation, as primary or merge member.
func (r *Reservation) Uses(tableID int) bool {
	return r.TableID == tableID || slices.Contains(r.MergedTables, tableID)
}

func (r *Reservation) IsMerged() bool {
	return len(r.MergedTables) > 0
}

func (r *Reservation) Clone() *Reservation {
	c := *r
	c.MergedTables = slices.Clone(r.MergedTables)
	return &c
}

// NewReservation is the create request. When TableID is zero the tables are
// allocated in Zone; MergedTables lists tables beyond the primary one.
type NewReservation struct {
	TableID      int    `json:"table_id,omitempty" validate:"omitempty,min=1"`
	MergedTables []int  `json:"merged_tables,omitempty" validate:"omitempty,max=2,dive,min=1"`
	Zone         Zone   `json:"zone,omitempty" validate:"omitempty,oneof=interior terrace"`
	Name         string `json:"name" validate:"required,min=1,max=100"`
	PartySize    int    `json:"party_size" validate:"required,min=1,max=50"`
	Date         string `json:"date" validate:"required"`
	Time         string `json:"time" validate:"required,time_of_day"`
	Phone        string `json:"phone" validate:"required,e164"`
	Notes        string `json:"notes,omitempty" validate:"max=500"`
}

// ReservationUpdate carries the fields a customer may change.
type ReservationUpdate struct {
	Date      *string `json:"date,omitempty" validate:"omitempty,min=1"`
	Time      *string `json:"time,omitempty" validate:"omitempty,time_of_day"`
	PartySize *int    `json:"party_size,omitempty" validate:"omitempty,min=1,max=50"`
}

func (u *ReservationUpdate) IsEmpty() bool {
	return u.Date == nil && u.Time == nil && u.PartySize == nil
}

// ReservationChanges is the storage-level field set applied by a single update.
// Nil fields are left untouched.
type ReservationChanges struct {
	Date            *string
	Time            *string
	PartySize       *int
	DurationMin     *int
	TableID         *int
	MergedTables    *[]int
	CalendarEventID *string
}

func (c *ReservationChanges) IsEmpty() bool {
	return c.Date == nil && c.Time == nil && c.PartySize == nil && c.DurationMin == nil &&
		c.TableID == nil && c.MergedTables == nil && c.CalendarEventID == nil
}

// Apply copies the changed fields onto r.
func (c *ReservationChanges) Apply(r *Reservation) {
	if c.Date != nil {
		r.Date = *c.Date
	}
	if c.Time != nil {
		r.Time = *c.Time
	}
	if c.PartySize != nil {
		r.PartySize = *c.PartySize
	}
	if c.DurationMin != nil {
		r.DurationMin = *c.DurationMin
	}
	if c.TableID != nil {
		r.TableID = *c.TableID
	}
	if c.MergedTables != nil {
		r.MergedTables = slices.Clone(*c.MergedTables)
	}
	if c.CalendarEventID != nil {
		r.CalendarEventID = *c.CalendarEventID
	}
}
