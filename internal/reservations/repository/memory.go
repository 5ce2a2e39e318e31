package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	reservationserrors "restobook/internal/reservations/errors"
	"restobook/pkg/model"

	"github.com/google/uuid"
)

// MemoryStore keeps every collection in process memory. It backs the memory
// storage backend and the service tests.
type MemoryStore struct {
	mu           sync.RWMutex
	reservations map[string]*model.Reservation
	tables       map[int]*model.Table
	holidays     map[string]string
	locks        map[string]memoryLock
	now          func() time.Time
}

func NewMemoryStore(tables []*model.Table, holidays []model.Holiday) *MemoryStore {
	s := &MemoryStore{
		reservations: make(map[string]*model.Reservation),
		tables:       make(map[int]*model.Table),
		holidays:     make(map[string]string),
		locks:        make(map[string]memoryLock),
		now:          time.Now,
	}
	for _, t := range tables {
		copied := *t
		s.tables[t.ID] = &copied
	}
	for _, h := range holidays {
		s.holidays[h.Date] = h.Name
	}
	return s
}

func (s *MemoryStore) Reservations() ReservationRepository { return (*memoryReservations)(s) }
func (s *MemoryStore) Tables() TableRepository             { return (*memoryTables)(s) }
func (s *MemoryStore) Holidays() HolidaySource             { return (*memoryHolidays)(s) }
func (s *MemoryStore) Locks() LockRepository               { return (*memoryLocks)(s) }

type memoryReservations MemoryStore

func (m *memoryReservations) FindByPhoneAndDate(ctx context.Context, phone, date string) ([]*model.Reservation, error) {
	return m.filter(func(r *model.Reservation) bool { return r.Phone == phone && r.Date == date }), nil
}

func (m *memoryReservations) FindByDate(ctx context.Context, date string) ([]*model.Reservation, error) {
	return m.filter(func(r *model.Reservation) bool { return r.Date == date }), nil
}

func (m *memoryReservations) filter(match func(*model.Reservation) bool) []*model.Reservation {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []*model.Reservation{}
	for _, r := range m.reservations {
		if match(r) {
			out = append(out, r.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Time != out[j].Time {
			return out[i].Time < out[j].Time
		}
		return out[i].TableID < out[j].TableID
	})
	return out
}

func (m *memoryReservations) Insert(ctx context.Context, reservation *model.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.reservations {
		if r.Phone == reservation.Phone && r.Date == reservation.Date {
			return reservationserrors.ErrDuplicate
		}
	}

	if reservation.ID == "" {
		reservation.ID = uuid.NewString()
	}
	reservation.CreatedAt = m.now().UTC().Truncate(time.Millisecond)
	m.reservations[reservation.ID] = reservation.Clone()
	return nil
}

func (m *memoryReservations) DeleteByPhoneAndDate(ctx context.Context, phone, date string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	deleted := 0
	for id, r := range m.reservations {
		if r.Phone == phone && r.Date == date {
			delete(m.reservations, id)
			deleted++
		}
	}
	if deleted == 0 {
		return reservationserrors.ErrNotFound
	}
	return nil
}

func (m *memoryReservations) Update(ctx context.Context, phone, date string, changes *model.ReservationChanges) error {
	if changes == nil || changes.IsEmpty() {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var target *model.Reservation
	for _, r := range m.reservations {
		if r.Phone == phone && r.Date == date {
			target = r
			break
		}
	}
	if target == nil {
		return reservationserrors.ErrNotFound
	}

	if changes.Date != nil && *changes.Date != date {
		for _, r := range m.reservations {
			if r.ID != target.ID && r.Phone == phone && r.Date == *changes.Date {
				return reservationserrors.ErrDuplicate
			}
		}
	}

	changes.Apply(target)
	return nil
}

type memoryTables MemoryStore

func (m *memoryTables) FindByZoneAndMinCapacity(ctx context.Context, zone model.Zone, minCapacity int) ([]*model.Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []*model.Table{}
	for _, t := range m.tables {
		if t.Zone == zone && t.Capacity >= minCapacity {
			copied := *t
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Capacity != out[j].Capacity {
			return out[i].Capacity < out[j].Capacity
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *memoryTables) GetByID(ctx context.Context, id int) (*model.Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tables[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", reservationserrors.ErrTableNotFound, id)
	}
	copied := *t
	return &copied, nil
}

func (m *memoryTables) ListAll(ctx context.Context) ([]*model.Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*model.Table, 0, len(m.tables))
	for _, t := range m.tables {
		copied := *t
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memoryHolidays MemoryStore

func (m *memoryHolidays) HolidayName(ctx context.Context, date string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.holidays[date], nil
}

type memoryLock struct {
	owner   string
	expires time.Time
}

type memoryLocks MemoryStore

func (m *memoryLocks) Acquire(ctx context.Context, key, owner string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if lock, held := m.locks[key]; held && now.Before(lock.expires) {
		return fmt.Errorf("%w: %s", reservationserrors.ErrLockHeld, key)
	}
	m.locks[key] = memoryLock{owner: owner, expires: now.Add(ttl)}
	return nil
}

func (m *memoryLocks) Release(ctx context.Context, key, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if lock, held := m.locks[key]; held && lock.owner == owner {
		delete(m.locks, key)
	}
	return nil
}
