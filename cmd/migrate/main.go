package main

import (
	"context"
	"time"

	mongoMigration "restobook/internal/migrations/mongo"
	"restobook/internal/reservations/repository"
	"restobook/pkg/config"
	"restobook/pkg/model"
)

const JobName = "migrate"

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	cfg := config.Load(JobName)
	defer cfg.GracefulShutdown()
	cfg.Log.Info("Starting migration job", "backend", cfg.StorageBackend)

	holidays := loadHolidays(cfg)

	switch cfg.StorageBackend {
	case config.BackendMongo:
		migrateMongo(ctx, cfg, holidays)
	case config.BackendSQLite:
		migrateSQLite(ctx, cfg, holidays)
	default:
		cfg.Log.Info("Nothing to migrate for backend", "backend", cfg.StorageBackend)
		return
	}
	cfg.Log.Info("Migration completed successfully")
}

// loadHolidays reads HOLIDAYS_FILE when present; a missing file only skips the import.
func loadHolidays(cfg *config.Config) []model.Holiday {
	if cfg.HolidaysFile == "" {
		return nil
	}
	holidays, err := repository.LoadHolidaysFile(cfg.HolidaysFile)
	if err != nil {
		cfg.Log.Warn("Skipping holiday import", "file", cfg.HolidaysFile, "error", err)
		return nil
	}
	return holidays
}

func migrateMongo(ctx context.Context, cfg *config.Config, holidays []model.Holiday) {
	cfg.SetMongo()
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)

	if err := mongoMigration.RunMigration(ctx, db, cfg.Log); err != nil {
		cfg.Log.Fatal("Migration failed", "error", err)
	}
	if err := mongoMigration.SeedTables(ctx, db, model.DefaultTables, cfg.Log); err != nil {
		cfg.Log.Fatal("Table seed failed", "error", err)
	}
	if err := mongoMigration.ImportHolidays(ctx, db, holidays, cfg.Log); err != nil {
		cfg.Log.Fatal("Holiday import failed", "error", err)
	}
}

func migrateSQLite(ctx context.Context, cfg *config.Config, holidays []model.Holiday) {
	cfg.SetSQLite()
	db := cfg.Client.SQLite

	if err := repository.MigrateSQL(db); err != nil {
		cfg.Log.Fatal("Migration failed", "error", err)
	}
	if err := repository.SeedSQLTables(ctx, db, model.DefaultTables); err != nil {
		cfg.Log.Fatal("Table seed failed", "error", err)
	}
	if err := repository.SeedSQLHolidays(ctx, db, holidays); err != nil {
		cfg.Log.Fatal("Holiday import failed", "error", err)
	}
	cfg.Log.Info("SQLite schema ready", "path", cfg.SQLitePath, "holidays", len(holidays))
}
