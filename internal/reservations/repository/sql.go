package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	reservationserrors "restobook/internal/reservations/errors"
	"restobook/pkg/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type reservationRow struct {
	ID              string `gorm:"primaryKey"`
	TableID         int    `gorm:"not null"`
	MergedTables    []int  `gorm:"serializer:json"`
	Name            string `gorm:"not null"`
	PartySize       int    `gorm:"not null"`
	Date            string `gorm:"not null;index;uniqueIndex:idx_reservation_phone_date"`
	Time            string `gorm:"not null"`
	Phone           string `gorm:"not null;uniqueIndex:idx_reservation_phone_date"`
	DurationMin     int    `gorm:"not null"`
	Notes           string
	CalendarEventID string
	CreatedAt       time.Time
}

func (reservationRow) TableName() string { return ReservationsCollection }

type tableRow struct {
	ID       int    `gorm:"primaryKey;autoIncrement:false"`
	Capacity int    `gorm:"not null"`
	Zone     string `gorm:"not null;index"`
}

func (tableRow) TableName() string { return "restaurant_tables" }

type holidayRow struct {
	Date string `gorm:"primaryKey"`
	Name string `gorm:"not null"`
}

func (holidayRow) TableName() string { return HolidaysCollection }

type lockRow struct {
	ID        string    `gorm:"primaryKey"`
	Owner     string    `gorm:"not null;default:''"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time
}

func (lockRow) TableName() string { return LocksCollection }

// MigrateSQL creates or updates the SQL schema.
func MigrateSQL(db *gorm.DB) error {
	return db.AutoMigrate(&reservationRow{}, &tableRow{}, &holidayRow{}, &lockRow{})
}

// SeedSQLTables inserts tables that are not present yet.
func SeedSQLTables(ctx context.Context, db *gorm.DB, tables []*model.Table) error {
	rows := make([]tableRow, 0, len(tables))
	for _, t := range tables {
		rows = append(rows, tableRow{ID: t.ID, Capacity: t.Capacity, Zone: string(t.Zone)})
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

// SeedSQLHolidays upserts holidays by date.
func SeedSQLHolidays(ctx context.Context, db *gorm.DB, holidays []model.Holiday) error {
	if len(holidays) == 0 {
		return nil
	}
	rows := make([]holidayRow, 0, len(holidays))
	for _, h := range holidays {
		rows = append(rows, holidayRow{Date: h.Date, Name: h.Name})
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"name"}),
	}).Create(&rows).Error
}

func toReservationRow(r *model.Reservation) *reservationRow {
	return &reservationRow{
		ID:              r.ID,
		TableID:         r.TableID,
		MergedTables:    r.MergedTables,
		Name:            r.Name,
		PartySize:       r.PartySize,
		Date:            r.Date,
		Time:            r.Time,
		Phone:           r.Phone,
		DurationMin:     r.DurationMin,
		Notes:           r.Notes,
		CalendarEventID: r.CalendarEventID,
		CreatedAt:       r.CreatedAt,
	}
}

func (row *reservationRow) toModel() *model.Reservation {
	r := &model.Reservation{
		ID:              row.ID,
		TableID:         row.TableID,
		Name:            row.Name,
		PartySize:       row.PartySize,
		Date:            row.Date,
		Time:            row.Time,
		Phone:           row.Phone,
		DurationMin:     row.DurationMin,
		Notes:           row.Notes,
		CalendarEventID: row.CalendarEventID,
		CreatedAt:       row.CreatedAt,
	}
	if len(row.MergedTables) > 0 {
		r.MergedTables = row.MergedTables
	}
	return r
}

type sqlReservationRepository struct {
	db *gorm.DB
}

func NewSQLReservationRepository(db *gorm.DB) ReservationRepository {
	return &sqlReservationRepository{db: db}
}

func (r *sqlReservationRepository) FindByPhoneAndDate(ctx context.Context, phone, date string) ([]*model.Reservation, error) {
	return r.find(ctx, "phone = ? AND date = ?", phone, date)
}

func (r *sqlReservationRepository) FindByDate(ctx context.Context, date string) ([]*model.Reservation, error) {
	return r.find(ctx, "date = ?", date)
}

func (r *sqlReservationRepository) find(ctx context.Context, query string, args ...any) ([]*model.Reservation, error) {
	var rows []reservationRow
	if err := r.db.WithContext(ctx).Where(query, args...).Order("time ASC, table_id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find reservations: %w", err)
	}

	reservations := make([]*model.Reservation, 0, len(rows))
	for i := range rows {
		reservations = append(reservations, rows[i].toModel())
	}
	return reservations, nil
}

func (r *sqlReservationRepository) Insert(ctx context.Context, reservation *model.Reservation) error {
	if reservation.ID == "" {
		reservation.ID = uuid.NewString()
	}
	reservation.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&reservationRow{}).
			Where("phone = ? AND date = ?", reservation.Phone, reservation.Date).
			Count(&count).Error
		if err != nil {
			return fmt.Errorf("failed to check existing reservation: %w", err)
		}
		if count > 0 {
			return reservationserrors.ErrDuplicate
		}

		if err := tx.Create(toReservationRow(reservation)).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return reservationserrors.ErrDuplicate
			}
			return fmt.Errorf("failed to insert reservation: %w", err)
		}
		return nil
	})
}

func (r *sqlReservationRepository) DeleteByPhoneAndDate(ctx context.Context, phone, date string) error {
	result := r.db.WithContext(ctx).Where("phone = ? AND date = ?", phone, date).Delete(&reservationRow{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete reservation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return reservationserrors.ErrNotFound
	}
	return nil
}

// Update loads the row, applies changes and saves it in one transaction.
func (r *sqlReservationRepository) Update(ctx context.Context, phone, date string, changes *model.ReservationChanges) error {
	if changes == nil || changes.IsEmpty() {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row reservationRow
		if err := tx.Where("phone = ? AND date = ?", phone, date).Take(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return reservationserrors.ErrNotFound
			}
			return fmt.Errorf("failed to load reservation: %w", err)
		}

		reservation := row.toModel()
		changes.Apply(reservation)

		if changes.Date != nil && *changes.Date != date {
			var count int64
			err := tx.Model(&reservationRow{}).
				Where("phone = ? AND date = ? AND id <> ?", phone, *changes.Date, row.ID).
				Count(&count).Error
			if err != nil {
				return fmt.Errorf("failed to check existing reservation: %w", err)
			}
			if count > 0 {
				return reservationserrors.ErrDuplicate
			}
		}

		if err := tx.Save(toReservationRow(reservation)).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return reservationserrors.ErrDuplicate
			}
			return fmt.Errorf("failed to update reservation: %w", err)
		}
		return nil
	})
}

type sqlTableRepository struct {
	db *gorm.DB
}

func NewSQLTableRepository(db *gorm.DB) TableRepository {
	return &sqlTableRepository{db: db}
}

func (r *sqlTableRepository) FindByZoneAndMinCapacity(ctx context.Context, zone model.Zone, minCapacity int) ([]*model.Table, error) {
	var rows []tableRow
	err := r.db.WithContext(ctx).
		Where("zone = ? AND capacity >= ?", string(zone), minCapacity).
		Order("capacity ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find tables: %w", err)
	}
	return tableRowsToModel(rows), nil
}

func (r *sqlTableRepository) GetByID(ctx context.Context, id int) (*model.Table, error) {
	var row tableRow
	if err := r.db.WithContext(ctx).Take(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %d", reservationserrors.ErrTableNotFound, id)
		}
		return nil, fmt.Errorf("failed to find table: %w", err)
	}
	return &model.Table{ID: row.ID, Capacity: row.Capacity, Zone: model.Zone(row.Zone)}, nil
}

func (r *sqlTableRepository) ListAll(ctx context.Context) ([]*model.Table, error) {
	var rows []tableRow
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	return tableRowsToModel(rows), nil
}

func tableRowsToModel(rows []tableRow) []*model.Table {
	tables := make([]*model.Table, 0, len(rows))
	for _, row := range rows {
		tables = append(tables, &model.Table{ID: row.ID, Capacity: row.Capacity, Zone: model.Zone(row.Zone)})
	}
	return tables
}

type sqlHolidayRepository struct {
	db *gorm.DB
}

func NewSQLHolidayRepository(db *gorm.DB) HolidaySource {
	return &sqlHolidayRepository{db: db}
}

func (r *sqlHolidayRepository) HolidayName(ctx context.Context, date string) (string, error) {
	var rows []holidayRow
	if err := r.db.WithContext(ctx).Where("date = ?", date).Limit(1).Find(&rows).Error; err != nil {
		return "", fmt.Errorf("failed to find holiday: %w", err)
	}
	if len(rows) == 0 {
		return "", nil
	}
	return rows[0].Name, nil
}

type sqlLockRepository struct {
	db *gorm.DB
}

func NewSQLLockRepository(db *gorm.DB) LockRepository {
	return &sqlLockRepository{db: db}
}

func (r *sqlLockRepository) Acquire(ctx context.Context, key, owner string, ttl time.Duration) error {
	now := time.Now().UTC()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND expires_at <= ?", key, now).Delete(&lockRow{}).Error; err != nil {
			return fmt.Errorf("failed to clear expired lock: %w", err)
		}

		result := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&lockRow{ID: key, Owner: owner, ExpiresAt: now.Add(ttl), CreatedAt: now})
		if result.Error != nil {
			return fmt.Errorf("failed to acquire lock: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: %s", reservationserrors.ErrLockHeld, key)
		}
		return nil
	})
}

func (r *sqlLockRepository) Release(ctx context.Context, key, owner string) error {
	if err := r.db.WithContext(ctx).Where("id = ? AND owner = ?", key, owner).Delete(&lockRow{}).Error; err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}
