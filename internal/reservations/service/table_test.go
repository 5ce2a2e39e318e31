package service

import (
	"context"
	"testing"

	apperrors "restobook/pkg/errors"
	"restobook/pkg/model"
)

func TestTableService_FindTable(t *testing.T) {
	tables := []*model.Table{
		{ID: 1, Capacity: 2, Zone: model.ZoneInterior},
		{ID: 2, Capacity: 2, Zone: model.ZoneInterior},
		{ID: 3, Capacity: 4, Zone: model.ZoneInterior},
		{ID: 4, Capacity: 6, Zone: model.ZoneInterior},
		{ID: 5, Capacity: 2, Zone: model.ZoneTerrace},
		{ID: 6, Capacity: 3, Zone: model.ZoneTerrace},
	}

	tests := []struct {
		name         string
		partySize    int
		zone         model.Zone
		date         string
		time         string
		wantKind     string
		wantIDs      []int
		wantDuration int
		wantCode     string
	}{
		{name: "single", partySize: 5, zone: model.ZoneInterior, date: wednesday, time: "20:00", wantKind: "single", wantIDs: []int{4}, wantDuration: 105},
		{name: "merge", partySize: 5, zone: model.ZoneTerrace, date: "07-05-2025", time: "20:00", wantKind: "merged", wantIDs: []int{6, 5}, wantDuration: 105},
		{name: "unavailable", partySize: 7, zone: model.ZoneTerrace, date: wednesday, time: "20:00", wantKind: "unavailable", wantDuration: 135},
		{name: "closed", partySize: 2, zone: model.ZoneTerrace, date: monday, time: "20:00", wantCode: apperrors.CodeRestaurantClosed},
		{name: "bad zone", partySize: 2, zone: "garden", date: wednesday, time: "20:00", wantCode: apperrors.CodeInvalidInput},
		{name: "bad party", partySize: 0, zone: model.ZoneTerrace, date: wednesday, time: "20:00", wantCode: apperrors.CodeInvalidInput},
		{name: "bad date", partySize: 2, zone: model.ZoneTerrace, date: "someday", time: "20:00", wantCode: apperrors.CodeInvalidDateFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tables)
			got, err := f.tables.FindTable(context.Background(), tt.partySize, tt.zone, tt.date, tt.time)
			if tt.wantCode != "" {
				assertCode(t, err, tt.wantCode)
				return
			}
			if err != nil {
				t.Fatalf("FindTable() error = %v", err)
			}
			if got.Kind != tt.wantKind {
				t.Fatalf("Kind = %s, want %s", got.Kind, tt.wantKind)
			}
			if len(got.Tables) != len(tt.wantIDs) {
				t.Fatalf("tables = %v, want %v", tableIDs(got.Tables), tt.wantIDs)
			}
			for i, id := range tt.wantIDs {
				if got.Tables[i].ID != id {
					t.Errorf("tables = %v, want %v", tableIDs(got.Tables), tt.wantIDs)
				}
			}
			if got.Date != wednesday {
				t.Errorf("Date = %s, want normalized %s", got.Date, wednesday)
			}
			if got.DurationMin != tt.wantDuration {
				t.Errorf("DurationMin = %d, want %d", got.DurationMin, tt.wantDuration)
			}
		})
	}
}

func TestTableService_AvailableTables(t *testing.T) {
	f := newFixture(t, model.DefaultTables)
	mustCreate(t, f, request(phoneA, wednesday, "20:00", 2, 2))

	got, err := f.tables.AvailableTables(context.Background(), 2, model.ZoneInterior, wednesday, "20:30")
	if err != nil {
		t.Fatalf("AvailableTables() error = %v", err)
	}
	if ids := tableIDs(got); len(ids) != 2 || ids[0] != 1 || ids[1] != 4 {
		t.Errorf("AvailableTables = %v, want [1 4]", ids)
	}
}

func TestTableService_ListTables(t *testing.T) {
	f := newFixture(t, model.DefaultTables)
	got, err := f.tables.ListTables(context.Background())
	if err != nil {
		t.Fatalf("ListTables() error = %v", err)
	}
	if len(got) != 4 || got[0].ID != 1 {
		t.Errorf("ListTables = %v", tableIDs(got))
	}
}

func TestTableService_IsTableAvailable(t *testing.T) {
	f := newFixture(t, model.DefaultTables)
	mustCreate(t, f, request(phoneA, wednesday, "20:00", 2, 2))

	busy, err := f.tables.IsTableAvailable(context.Background(), 2, wednesday, "20:30", 2)
	if err != nil {
		t.Fatalf("IsTableAvailable() error = %v", err)
	}
	if busy.Available {
		t.Error("table 2 should be busy at 20:30")
	}

	free, err := f.tables.IsTableAvailable(context.Background(), 2, "7/5/2025", "21:00", 2)
	if err != nil {
		t.Fatalf("IsTableAvailable() error = %v", err)
	}
	if !free.Available || free.DurationMin != 90 {
		t.Errorf("table 2 at 21:00 = %+v, want available for 90 minutes", free)
	}

	_, err = f.tables.IsTableAvailable(context.Background(), 42, wednesday, "21:00", 2)
	assertCode(t, err, apperrors.CodeNotFound)
}
