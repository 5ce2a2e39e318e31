package repository

import (
	"context"
	"fmt"

	"restobook/pkg/config"
	"restobook/pkg/model"
)

// Stores groups the repositories of one storage backend.
type Stores struct {
	Reservations ReservationRepository
	Tables       TableRepository
	Holidays     HolidaySource
	Locks        LockRepository
}

// OpenStores connects the configured backend and resolves the holiday source.
// The sqlite schema is migrated and seeded on open; Mongo is migrated by cmd/migrate.
func OpenStores(ctx context.Context, cfg *config.Config) (*Stores, error) {
	var stores *Stores

	switch cfg.StorageBackend {
	case config.BackendMongo:
		cfg.SetMongo()
		stores = &Stores{
			Reservations: NewMongoReservationRepository(cfg),
			Tables:       NewMongoTableRepository(cfg),
			Locks:        NewMongoLockRepository(cfg),
		}
	case config.BackendSQLite:
		cfg.SetSQLite()
		db := cfg.Client.SQLite
		if err := MigrateSQL(db); err != nil {
			return nil, fmt.Errorf("failed to migrate sqlite schema: %w", err)
		}
		if err := SeedSQLTables(ctx, db, model.DefaultTables); err != nil {
			return nil, fmt.Errorf("failed to seed sqlite tables: %w", err)
		}
		stores = &Stores{
			Reservations: NewSQLReservationRepository(db),
			Tables:       NewSQLTableRepository(db),
			Locks:        NewSQLLockRepository(db),
		}
	case config.BackendMemory:
		memory := NewMemoryStore(model.DefaultTables, nil)
		stores = &Stores{
			Reservations: memory.Reservations(),
			Tables:       memory.Tables(),
			Locks:        memory.Locks(),
		}
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}

	holidays, err := openHolidaySource(cfg)
	if err != nil {
		return nil, err
	}
	stores.Holidays = holidays

	cfg.Log.Info("Storage opened", "backend", cfg.StorageBackend, "holidays", cfg.HolidaySource)
	return stores, nil
}

func openHolidaySource(cfg *config.Config) (HolidaySource, error) {
	switch cfg.HolidaySource {
	case config.HolidaysFromJSON:
		source, err := NewFileHolidaySource(cfg.HolidaysFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load holidays: %w", err)
		}
		return source, nil
	case config.HolidaysFromMongo:
		if cfg.Client.Mongo == nil {
			cfg.SetMongo()
		}
		return NewMongoHolidayRepository(cfg), nil
	case config.HolidaysFromSQLite:
		if cfg.Client.SQLite == nil {
			return nil, fmt.Errorf("holiday source sqlite needs the sqlite storage backend")
		}
		return NewSQLHolidayRepository(cfg.Client.SQLite), nil
	default:
		return nil, fmt.Errorf("unknown holiday source %q", cfg.HolidaySource)
	}
}
