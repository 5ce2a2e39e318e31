package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"restobook/internal/reservations/repository"
	"restobook/internal/reservations/validator"
	"restobook/pkg/config"
	apperrors "restobook/pkg/errors"
	"restobook/pkg/logger"
	"restobook/pkg/model"
)

const (
	phoneA = "+34600111222"
	phoneB = "+34600333444"
	phoneC = "+34600555666"

	// 2025-05-07 is a Wednesday, 2025-05-05 a Monday.
	wednesday = "2025-05-07"
	thursday  = "2025-05-08"
	monday    = "2025-05-05"
	christmas = "2025-12-25"
)

func testConfig() *config.Config {
	return &config.Config{
		OpenTime:             "09:00",
		CloseTime:            "00:00",
		ClosedWeekday:        "monday",
		PhoneRegion:          "ES",
		BaseDurationMin:      60,
		ExtraMinutesPerGuest: 15,
		LateHour:             21,
		LateBonusMin:         30,
		MaxDurationMin:       180,
		LockTTL:              10 * time.Second,
		Log:                  logger.NewNop(),
	}
}

type recordingNotifier struct {
	mu        sync.Mutex
	created   []*model.Reservation
	modified  [][2]*model.Reservation
	cancelled []*model.Reservation
}

func (n *recordingNotifier) ReservationCreated(ctx context.Context, r *model.Reservation) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, r)
}

func (n *recordingNotifier) ReservationModified(ctx context.Context, before, after *model.Reservation) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.modified = append(n.modified, [2]*model.Reservation{before, after})
}

func (n *recordingNotifier) ReservationCancelled(ctx context.Context, r *model.Reservation) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancelled = append(n.cancelled, r)
}

type fixture struct {
	store    *repository.MemoryStore
	notifier *recordingNotifier
	bookings BookingService
	tables   TableService
	info     InfoService
}

func newFixture(t *testing.T, tables []*model.Table) *fixture {
	t.Helper()

	cfg := testConfig()
	store := repository.NewMemoryStore(tables, []model.Holiday{{Date: christmas, Name: "Christmas Day"}})
	engine, err := NewEngine(cfg, store.Reservations(), store.Tables(), store.Holidays())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	notifier := &recordingNotifier{}

	return &fixture{
		store:    store,
		notifier: notifier,
		bookings: NewBookingService(store.Reservations(), store.Tables(), store.Locks(), engine,
			validator.NewReservationValidator(cfg.Log), notifier, cfg),
		tables: NewTableService(store.Tables(), engine, cfg),
		info:   NewInfoService(engine, cfg),
	}
}

func request(phone, date, at string, tableID, partySize int) *model.NewReservation {
	return &model.NewReservation{
		TableID:   tableID,
		Name:      "Guest",
		PartySize: partySize,
		Date:      date,
		Time:      at,
		Phone:     phone,
	}
}

func mustCreate(t *testing.T, f *fixture, req *model.NewReservation) *model.Reservation {
	t.Helper()
	r, err := f.bookings.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("Create(%+v) error = %v", req, err)
	}
	return r
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	if !apperrors.HasCode(err, code) {
		t.Fatalf("expected %s error, got %v", code, err)
	}
}

func stored(t *testing.T, f *fixture, phone, date string) *model.Reservation {
	t.Helper()
	found, err := f.store.Reservations().FindByPhoneAndDate(context.Background(), phone, date)
	if err != nil {
		t.Fatalf("FindByPhoneAndDate() error = %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("expected one stored reservation for %s on %s, got %d", phone, date, len(found))
	}
	return found[0]
}
