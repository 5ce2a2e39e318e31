package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"restobook/internal/reservations/allocator"
	"restobook/internal/reservations/availability"
	reservationserrors "restobook/internal/reservations/errors"
	"restobook/internal/reservations/repository"
	"restobook/internal/reservations/validator"
	"restobook/pkg/config"
	apperrors "restobook/pkg/errors"
	"restobook/pkg/model"
	"restobook/pkg/sanitizer"
)

type BookingService interface {
	Create(ctx context.Context, req *model.NewReservation) (*model.Reservation, error)
	Get(ctx context.Context, phone, date string) (*model.Reservation, error)
	Cancel(ctx context.Context, phone, date string) error
	Modify(ctx context.Context, phone, date string, update *model.ReservationUpdate) (*model.Reservation, error)
}

type bookingService struct {
	reservations repository.ReservationRepository
	tables       repository.TableRepository
	locks        repository.LockRepository
	engine       *Engine
	validator    *validator.ReservationValidator
	notifier     Notifier
	cfg          *config.Config
}

func NewBookingService(
	reservations repository.ReservationRepository,
	tables repository.TableRepository,
	locks repository.LockRepository,
	engine *Engine,
	validator *validator.ReservationValidator,
	notifier Notifier,
	cfg *config.Config,
) BookingService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &bookingService{
		reservations: reservations,
		tables:       tables,
		locks:        locks,
		engine:       engine,
		validator:    validator,
		notifier:     notifier,
		cfg:          cfg,
	}
}

func (s *bookingService) Create(ctx context.Context, req *model.NewReservation) (*model.Reservation, error) {
	s.sanitize(req)
	if err := s.validate(req); err != nil {
		return nil, err
	}

	date, err := normalizeDate(req.Date)
	if err != nil {
		return nil, err
	}
	startTime, err := normalizeTime(req.Time)
	if err != nil {
		return nil, err
	}

	if err := s.ensureOpen(ctx, date, startTime); err != nil {
		return nil, err
	}

	locks := newSlotLocks(s.locks, s.cfg.LockTTL, s.cfg.Log)
	defer locks.release()

	if err := locks.phone(ctx, req.Phone, date); err != nil {
		return nil, err
	}
	if err := s.ensureNoDuplicate(ctx, req.Phone, date, ""); err != nil {
		return nil, err
	}

	durationMin, err := s.estimate(req.PartySize, startTime)
	if err != nil {
		return nil, err
	}

	tableSet, err := s.resolveTables(ctx, req, date, startTime)
	if err != nil {
		return nil, err
	}
	ids := tableIDs(tableSet)

	if err := locks.tables(ctx, date, ids); err != nil {
		return nil, err
	}
	if err := s.ensureAvailable(ctx, ids, date, startTime, durationMin); err != nil {
		return nil, err
	}

	reservation := &model.Reservation{
		TableID:     ids[0],
		Name:        req.Name,
		PartySize:   req.PartySize,
		Date:        date,
		Time:        startTime,
		Phone:       req.Phone,
		DurationMin: durationMin,
		Notes:       req.Notes,
	}
	if len(ids) > 1 {
		reservation.MergedTables = ids[1:]
	}

	if err := s.reservations.Insert(ctx, reservation); err != nil {
		s.cfg.Log.Error("Failed to create reservation", "phone", req.Phone, "date", date, "error", err)
		return nil, mapRepositoryError(err, "create reservation", req.Phone, date)
	}

	s.cfg.Log.Info("Reservation created successfully",
		"id", reservation.ID,
		"phone", reservation.Phone,
		"date", reservation.Date,
		"time", reservation.Time,
		"tables", reservation.TableIDs(),
		"duration_min", reservation.DurationMin,
	)

	s.notifier.ReservationCreated(ctx, reservation)
	return reservation, nil
}

func (s *bookingService) Get(ctx context.Context, phone, date string) (*model.Reservation, error) {
	phone, date, err := s.normalizeKey(phone, date)
	if err != nil {
		return nil, err
	}
	return s.find(ctx, phone, date)
}

func (s *bookingService) Cancel(ctx context.Context, phone, date string) error {
	phone, date, err := s.normalizeKey(phone, date)
	if err != nil {
		return err
	}

	locks := newSlotLocks(s.locks, s.cfg.LockTTL, s.cfg.Log)
	defer locks.release()

	if err := locks.phone(ctx, phone, date); err != nil {
		return err
	}

	existing, err := s.find(ctx, phone, date)
	if err != nil {
		return err
	}

	if err := s.reservations.DeleteByPhoneAndDate(ctx, phone, date); err != nil {
		s.cfg.Log.Error("Failed to cancel reservation", "phone", phone, "date", date, "error", err)
		return mapRepositoryError(err, "cancel reservation", phone, date)
	}

	s.cfg.Log.Info("Reservation cancelled successfully", "id", existing.ID, "phone", phone, "date", date)

	s.notifier.ReservationCancelled(ctx, existing)
	return nil
}

// Modify changes date, time or party size. Every check runs before the single
// write, so a rejected modification leaves the stored reservation untouched.
func (s *bookingService) Modify(ctx context.Context, phone, date string, update *model.ReservationUpdate) (*model.Reservation, error) {
	if update == nil {
		return nil, apperrors.InvalidInput("Update cannot be empty")
	}
	if err := s.validator.ValidateUpdate(update); err != nil {
		s.cfg.Log.Warn("Reservation update validation failed", "phone", phone, "date", date, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	phone, date, err := s.normalizeKey(phone, date)
	if err != nil {
		return nil, err
	}

	locks := newSlotLocks(s.locks, s.cfg.LockTTL, s.cfg.Log)
	defer locks.release()

	if err := locks.phone(ctx, phone, date); err != nil {
		return nil, err
	}

	existing, err := s.find(ctx, phone, date)
	if err != nil {
		return nil, err
	}

	newDate, newTime, newParty := existing.Date, existing.Time, existing.PartySize
	if update.Date != nil {
		if newDate, err = normalizeDate(*update.Date); err != nil {
			return nil, err
		}
	}
	if update.Time != nil {
		if newTime, err = normalizeTime(*update.Time); err != nil {
			return nil, err
		}
	}
	if update.PartySize != nil {
		newParty = *update.PartySize
	}

	dateChanged := newDate != existing.Date
	timeChanged := newTime != existing.Time

	if dateChanged || timeChanged {
		if err := s.ensureOpen(ctx, newDate, newTime); err != nil {
			return nil, err
		}
	}
	if dateChanged {
		if err := locks.phone(ctx, phone, newDate); err != nil {
			return nil, err
		}
		if err := s.ensureNoDuplicate(ctx, phone, newDate, existing.ID); err != nil {
			return nil, err
		}
	}

	durationMin, err := s.estimate(newParty, newTime)
	if err != nil {
		return nil, err
	}

	current, err := s.loadTables(ctx, existing.TableIDs())
	if err != nil {
		return nil, err
	}
	ids := existing.TableIDs()

	if newParty > existing.PartySize && model.TotalCapacity(current) < newParty {
		result, err := s.engine.Allocator.FindTable(ctx, newParty, current[0].Zone, newDate, newTime,
			allocator.ExcludeTables(existing.TableID),
			allocator.IgnoreReservation(existing.ID),
		)
		if err != nil {
			return nil, apperrors.Internal("Failed to search for tables", err)
		}
		if !result.Found() {
			s.cfg.Log.Info("No tables for larger party",
				"phone", phone,
				"date", newDate,
				"party_size", newParty,
				"current_tables", ids,
			)
			return nil, apperrors.NoCapacity(newParty, newDate, newTime)
		}
		ids = tableIDs(result.Tables)
	}

	if err := locks.tables(ctx, newDate, ids); err != nil {
		return nil, err
	}
	if err := s.ensureAvailable(ctx, ids, newDate, newTime, durationMin, availability.IgnoreReservation(existing.ID)); err != nil {
		return nil, err
	}

	changes := buildChanges(existing, newDate, newTime, newParty, durationMin, ids)
	if changes.IsEmpty() {
		return existing, nil
	}

	if err := s.reservations.Update(ctx, phone, date, changes); err != nil {
		s.cfg.Log.Error("Failed to modify reservation", "phone", phone, "date", date, "error", err)
		return nil, mapRepositoryError(err, "modify reservation", phone, newDate)
	}

	updated := *existing
	changes.Apply(&updated)

	s.cfg.Log.Info("Reservation modified successfully",
		"id", updated.ID,
		"phone", phone,
		"date", updated.Date,
		"time", updated.Time,
		"party_size", updated.PartySize,
		"tables", updated.TableIDs(),
	)

	s.notifier.ReservationModified(ctx, existing, &updated)
	return &updated, nil
}

// --- Helpers ---

func (s *bookingService) sanitize(req *model.NewReservation) {
	req.Name = sanitizer.NormalizeName(req.Name)
	req.Notes = sanitizer.NormalizeNotes(req.Notes)
	if phone := sanitizer.NormalizePhone(req.Phone, s.cfg.PhoneRegion); phone != "" {
		req.Phone = phone
	}
}

func (s *bookingService) validate(req *model.NewReservation) error {
	if err := s.validator.Validate(req); err != nil {
		s.cfg.Log.Warn("Reservation validation failed", "error", err)
		return apperrors.Validation("Reservation validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *bookingService) estimate(partySize int, startTime string) (int, error) {
	durationMin, err := s.engine.Duration.EstimateAt(partySize, startTime)
	if err != nil {
		return 0, apperrors.Validation("Invalid time", map[string]any{"time": startTime, "error": err.Error()})
	}
	return durationMin, nil
}

func (s *bookingService) normalizeKey(phone, date string) (string, string, error) {
	normalizedPhone, err := normalizePhone(phone, s.cfg.PhoneRegion)
	if err != nil {
		return "", "", err
	}
	normalizedDate, err := normalizeDate(date)
	if err != nil {
		return "", "", err
	}
	return normalizedPhone, normalizedDate, nil
}

func (s *bookingService) find(ctx context.Context, phone, date string) (*model.Reservation, error) {
	found, err := s.reservations.FindByPhoneAndDate(ctx, phone, date)
	if err != nil {
		s.cfg.Log.Error("Failed to look up reservation", "phone", phone, "date", date, "error", err)
		return nil, apperrors.Internal("Failed to retrieve reservation", err)
	}
	if len(found) == 0 {
		return nil, apperrors.NotFoundWithID("Reservation", reservationKey(phone, date))
	}
	return found[0], nil
}

func (s *bookingService) ensureOpen(ctx context.Context, date, startTime string) error {
	open, reason, err := s.engine.Calendar.IsOpen(ctx, date, startTime)
	if err != nil {
		if errors.Is(err, reservationserrors.ErrInvalidDateFormat) {
			return apperrors.InvalidDateFormat(date)
		}
		return apperrors.Internal("Failed to check opening hours", err)
	}
	if !open {
		return apperrors.Closed(reason)
	}
	return nil
}

// ensureNoDuplicate enforces one reservation per phone and date, whatever the time.
func (s *bookingService) ensureNoDuplicate(ctx context.Context, phone, date, ignoreID string) error {
	existing, err := s.reservations.FindByPhoneAndDate(ctx, phone, date)
	if err != nil {
		return apperrors.Internal("Failed to check existing reservations", err)
	}
	for _, r := range existing {
		if r.ID != ignoreID {
			return apperrors.DuplicateBooking(phone, date)
		}
	}
	return nil
}

// resolveTables returns the table set for a new reservation, primary first.
// Without a table id the allocator picks the set in the requested zone.
func (s *bookingService) resolveTables(ctx context.Context, req *model.NewReservation, date, startTime string) ([]*model.Table, error) {
	if req.TableID == 0 {
		result, err := s.engine.Allocator.FindTable(ctx, req.PartySize, req.Zone, date, startTime)
		if err != nil {
			return nil, apperrors.Internal("Failed to search for tables", err)
		}
		if !result.Found() {
			return nil, apperrors.NoCapacity(req.PartySize, date, startTime)
		}
		return result.Tables, nil
	}

	ids := append([]int{req.TableID}, req.MergedTables...)
	tables := make([]*model.Table, 0, len(ids))
	for _, id := range ids {
		table, err := s.tables.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, reservationserrors.ErrTableNotFound) {
				return nil, apperrors.InsufficientCapacity(fmt.Sprintf("table %d does not exist", id), req.PartySize, 0)
			}
			return nil, apperrors.Internal("Failed to load table", err)
		}
		tables = append(tables, table)
	}

	capacity := model.TotalCapacity(tables)
	if len(tables) == 1 {
		if capacity < req.PartySize {
			return nil, apperrors.InsufficientCapacity(
				fmt.Sprintf("table %d seats %d guests; search for a table or merge for %d", tables[0].ID, capacity, req.PartySize),
				req.PartySize, capacity,
			)
		}
		return tables, nil
	}

	for _, t := range tables[1:] {
		if t.Zone != tables[0].Zone {
			return nil, apperrors.InsufficientCapacity(
				fmt.Sprintf("merged tables must share one zone: table %d is %s, table %d is %s", tables[0].ID, tables[0].Zone, t.ID, t.Zone),
				req.PartySize, capacity,
			)
		}
	}
	if capacity < req.PartySize {
		return nil, apperrors.InsufficientCapacity(
			fmt.Sprintf("tables %v seat %d guests together", ids, capacity),
			req.PartySize, capacity,
		)
	}
	return tables, nil
}

func (s *bookingService) loadTables(ctx context.Context, ids []int) ([]*model.Table, error) {
	tables := make([]*model.Table, 0, len(ids))
	for _, id := range ids {
		table, err := s.tables.GetByID(ctx, id)
		if err != nil {
			return nil, apperrors.Internal(fmt.Sprintf("Failed to load table %d", id), err)
		}
		tables = append(tables, table)
	}
	return tables, nil
}

// ensureAvailable reports the first table of the set that is already taken.
func (s *bookingService) ensureAvailable(ctx context.Context, ids []int, date, startTime string, durationMin int, opts ...availability.Option) error {
	for _, id := range ids {
		ok, err := s.engine.Checker.IsTableAvailable(ctx, id, date, startTime, durationMin, opts...)
		if err != nil {
			return apperrors.Internal("Failed to check table availability", err)
		}
		if !ok {
			return apperrors.TableUnavailable(id, date, startTime)
		}
	}
	return nil
}

func buildChanges(existing *model.Reservation, date, startTime string, partySize, durationMin int, ids []int) *model.ReservationChanges {
	changes := &model.ReservationChanges{}
	if date != existing.Date {
		changes.Date = &date
	}
	if startTime != existing.Time {
		changes.Time = &startTime
	}
	if partySize != existing.PartySize {
		changes.PartySize = &partySize
	}
	if durationMin != existing.DurationMin {
		changes.DurationMin = &durationMin
	}
	if !slices.Equal(ids, existing.TableIDs()) {
		primary := ids[0]
		merged := slices.Clone(ids[1:])
		changes.TableID = &primary
		changes.MergedTables = &merged
	}
	return changes
}

func tableIDs(tables []*model.Table) []int {
	ids := make([]int, 0, len(tables))
	for _, t := range tables {
		ids = append(ids, t.ID)
	}
	return ids
}
