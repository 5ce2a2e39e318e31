package service

import (
	"context"
	"slices"
	"testing"

	apperrors "restobook/pkg/errors"
	"restobook/pkg/model"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestBookingService_Modify_NoCapacityLeavesReservationUnchanged(t *testing.T) {
	tests := []struct {
		name   string
		update *model.ReservationUpdate
	}{
		{name: "larger party", update: &model.ReservationUpdate{PartySize: intPtr(5)}},
		{name: "larger party on another date", update: &model.ReservationUpdate{PartySize: intPtr(11), Date: strPtr(thursday)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, model.DefaultTables)
			original := mustCreate(t, f, request(phoneA, wednesday, "20:00", 1, 2))
			mustCreate(t, f, request(phoneB, wednesday, "20:00", 4, 6))
			mustCreate(t, f, request(phoneC, wednesday, "20:00", 2, 4))

			_, err := f.bookings.Modify(context.Background(), phoneA, wednesday, tt.update)
			assertCode(t, err, apperrors.CodeNoCapacity)

			got := stored(t, f, phoneA, wednesday)
			if got.TableID != original.TableID || got.IsMerged() || got.PartySize != 2 ||
				got.Time != original.Time || got.DurationMin != original.DurationMin {
				t.Errorf("reservation changed after rejected modify: %+v", got)
			}
			if len(f.notifier.modified) != 0 {
				t.Error("rejected modify must not notify")
			}
		})
	}
}

func TestBookingService_Modify_PartySize(t *testing.T) {
	tests := []struct {
		name         string
		tableID      int
		merged       []int
		partySize    int
		newPartySize int
		wantTables   []int
		wantDuration int
	}{
		{
			name:         "increase beyond capacity moves to a bigger table",
			tableID:      1,
			partySize:    2,
			newPartySize: 5,
			wantTables:   []int{4},
			wantDuration: 105,
		},
		{
			name:         "increase within capacity keeps the table",
			tableID:      2,
			partySize:    2,
			newPartySize: 4,
			wantTables:   []int{2},
			wantDuration: 90,
		},
		{
			name:         "decrease never reassigns",
			tableID:      4,
			merged:       []int{2},
			partySize:    10,
			newPartySize: 3,
			wantTables:   []int{4, 2},
			wantDuration: 75,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, model.DefaultTables)
			req := request(phoneA, wednesday, "20:00", tt.tableID, tt.partySize)
			req.MergedTables = tt.merged
			mustCreate(t, f, req)

			updated, err := f.bookings.Modify(context.Background(), phoneA, wednesday, &model.ReservationUpdate{PartySize: intPtr(tt.newPartySize)})
			if err != nil {
				t.Fatalf("Modify() error = %v", err)
			}

			got := stored(t, f, phoneA, wednesday)
			if !slices.Equal(got.TableIDs(), tt.wantTables) {
				t.Errorf("stored tables = %v, want %v", got.TableIDs(), tt.wantTables)
			}
			if !slices.Equal(updated.TableIDs(), tt.wantTables) {
				t.Errorf("returned tables = %v, want %v", updated.TableIDs(), tt.wantTables)
			}
			if got.PartySize != tt.newPartySize || got.DurationMin != tt.wantDuration {
				t.Errorf("stored party/duration = %d/%d, want %d/%d", got.PartySize, got.DurationMin, tt.newPartySize, tt.wantDuration)
			}

			if len(f.notifier.modified) != 1 {
				t.Fatalf("expected one modified notification, got %d", len(f.notifier.modified))
			}
			before := f.notifier.modified[0][0]
			if before.PartySize != tt.partySize {
				t.Errorf("notification before.PartySize = %d, want %d", before.PartySize, tt.partySize)
			}
		})
	}
}

func TestBookingService_Modify_Reallocation(t *testing.T) {
	tables := []*model.Table{
		{ID: 1, Capacity: 2, Zone: model.ZoneTerrace},
		{ID: 2, Capacity: 2, Zone: model.ZoneTerrace},
		{ID: 3, Capacity: 3, Zone: model.ZoneTerrace},
		{ID: 4, Capacity: 8, Zone: model.ZoneInterior},
	}
	f := newFixture(t, tables)
	mustCreate(t, f, request(phoneA, wednesday, "13:00", 1, 2))

	// table 1 is excluded, so 5 guests need tables 3 and 2 in the same zone
	updated, err := f.bookings.Modify(context.Background(), phoneA, wednesday, &model.ReservationUpdate{PartySize: intPtr(5)})
	if err != nil {
		t.Fatalf("Modify() error = %v", err)
	}
	if !slices.Equal(updated.TableIDs(), []int{3, 2}) {
		t.Errorf("tables = %v, want [3 2]", updated.TableIDs())
	}
}

func TestBookingService_Modify_TimeAndDate(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T, f *fixture)
		update   *model.ReservationUpdate
		wantCode string
		check    func(t *testing.T, f *fixture, updated *model.Reservation)
	}{
		{
			name:   "move earlier",
			update: &model.ReservationUpdate{Time: strPtr("13:00")},
			check: func(t *testing.T, f *fixture, updated *model.Reservation) {
				if got := stored(t, f, phoneA, wednesday); got.Time != "13:00" || got.DurationMin != 60 {
					t.Errorf("stored time/duration = %s/%d", got.Time, got.DurationMin)
				}
			},
		},
		{
			name:   "late sitting adds time",
			update: &model.ReservationUpdate{Time: strPtr("21:30")},
			check: func(t *testing.T, f *fixture, updated *model.Reservation) {
				if updated.DurationMin != 90 {
					t.Errorf("DurationMin = %d, want 90", updated.DurationMin)
				}
			},
		},
		{
			name:   "overlapping itself is fine",
			update: &model.ReservationUpdate{Time: strPtr("19:15")},
		},
		{
			name: "conflicts with another booking",
			setup: func(t *testing.T, f *fixture) {
				mustCreate(t, f, request(phoneB, wednesday, "20:00", 2, 2))
			},
			update:   &model.ReservationUpdate{Time: strPtr("19:30")},
			wantCode: apperrors.CodeTableUnavailable,
		},
		{
			name:   "new date normalized",
			update: &model.ReservationUpdate{Date: strPtr("8/5/2025")},
			check: func(t *testing.T, f *fixture, updated *model.Reservation) {
				stored(t, f, phoneA, thursday)
				left, _ := f.store.Reservations().FindByPhoneAndDate(context.Background(), phoneA, wednesday)
				if len(left) != 0 {
					t.Error("reservation still stored under the old date")
				}
			},
		},
		{
			name:     "new date on closed day",
			update:   &model.ReservationUpdate{Date: strPtr(monday)},
			wantCode: apperrors.CodeRestaurantClosed,
		},
		{
			name:     "new time outside hours",
			update:   &model.ReservationUpdate{Time: strPtr("07:00")},
			wantCode: apperrors.CodeRestaurantClosed,
		},
		{
			name: "new date already booked by the same phone",
			setup: func(t *testing.T, f *fixture) {
				mustCreate(t, f, request(phoneA, thursday, "13:00", 1, 2))
			},
			update:   &model.ReservationUpdate{Date: strPtr(thursday)},
			wantCode: apperrors.CodeDuplicateBooking,
		},
		{
			name:     "unparseable new date",
			update:   &model.ReservationUpdate{Date: strPtr("May 8th")},
			wantCode: apperrors.CodeInvalidDateFormat,
		},
		{
			name:     "empty update",
			update:   &model.ReservationUpdate{},
			wantCode: apperrors.CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, model.DefaultTables)
			original := mustCreate(t, f, request(phoneA, wednesday, "19:00", 2, 2))
			if tt.setup != nil {
				tt.setup(t, f)
			}

			updated, err := f.bookings.Modify(context.Background(), phoneA, wednesday, tt.update)
			if tt.wantCode != "" {
				assertCode(t, err, tt.wantCode)
				got := stored(t, f, phoneA, wednesday)
				if got.Time != original.Time || got.TableID != original.TableID {
					t.Errorf("rejected modify changed the reservation: %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Modify() error = %v", err)
			}
			if tt.check != nil {
				tt.check(t, f, updated)
			}
		})
	}
}

func TestBookingService_Modify_NotFound(t *testing.T) {
	f := newFixture(t, model.DefaultTables)
	_, err := f.bookings.Modify(context.Background(), phoneA, wednesday, &model.ReservationUpdate{PartySize: intPtr(3)})
	assertCode(t, err, apperrors.CodeNotFound)
}
