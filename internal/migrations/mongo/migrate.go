package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"restobook/internal/migrations/mongo/validators"
	"restobook/internal/reservations/repository"
	"restobook/pkg/logger"
	"restobook/pkg/model"
)

type collectionSpec struct {
	Name      string
	Indexes   []mongo.IndexModel
	Validator bson.M
}

var (
	ReservationsIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "phone", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetName("phone_date_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "date", Value: 1}},
			Options: options.Index().SetName("date"),
		},
	}

	TablesIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "zone", Value: 1}, {Key: "capacity", Value: 1}},
			Options: options.Index().SetName("zone_capacity"),
		},
	}

	HolidaysIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "date", Value: 1}},
			Options: options.Index().SetName("date_unique").SetUnique(true),
		},
	}

	// Expired locks are reaped by the server; Acquire also overwrites them.
	LocksIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetName("expires_at_ttl").SetExpireAfterSeconds(0),
		},
	}
)

func collections() []collectionSpec {
	return []collectionSpec{
		{Name: repository.ReservationsCollection, Indexes: ReservationsIndexes, Validator: validators.ReservationValidator},
		{Name: repository.TablesCollection, Indexes: TablesIndexes, Validator: validators.TableValidator},
		{Name: repository.HolidaysCollection, Indexes: HolidaysIndexes, Validator: validators.HolidayValidator},
		{Name: repository.LocksCollection, Indexes: LocksIndexes, Validator: validators.LockValidator},
	}
}

// RunMigration creates the collections with their validators and indexes.
// It is safe to run repeatedly.
func RunMigration(ctx context.Context, db *mongo.Database, log *logger.Logger) error {
	log.Info("Running Mongo migrations", "database", db.Name())

	for _, def := range collections() {
		if err := ensureCollection(ctx, db, def.Name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", def.Name, err)
		}
		if err := ensureIndexes(ctx, db, def.Name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", def.Name, err)
		}
	}

	log.Info("All migrations applied successfully")
	return nil
}

// SeedTables inserts the floor plan. Existing tables keep their stored values.
func SeedTables(ctx context.Context, db *mongo.Database, tables []*model.Table, log *logger.Logger) error {
	if len(tables) == 0 {
		return nil
	}
	coll := db.Collection(repository.TablesCollection)

	models := make([]mongo.WriteModel, 0, len(tables))
	for _, t := range tables {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": t.ID}).
			SetUpdate(bson.M{"$setOnInsert": bson.M{"capacity": t.Capacity, "zone": string(t.Zone)}}).
			SetUpsert(true))
	}

	result, err := coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return fmt.Errorf("failed to seed tables: %w", err)
	}
	log.Info("Seeded tables", "inserted", result.UpsertedCount, "total", len(tables))
	return nil
}

// ImportHolidays upserts holidays by date, replacing names that changed.
func ImportHolidays(ctx context.Context, db *mongo.Database, holidays []model.Holiday, log *logger.Logger) error {
	if len(holidays) == 0 {
		log.Info("No holidays to import")
		return nil
	}
	coll := db.Collection(repository.HolidaysCollection)

	models := make([]mongo.WriteModel, 0, len(holidays))
	for _, h := range holidays {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"date": h.Date}).
			SetUpdate(bson.M{"$set": bson.M{"date": h.Date, "name": h.Name}}).
			SetUpsert(true))
	}

	result, err := coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return fmt.Errorf("failed to import holidays: %w", err)
	}
	log.Info("Imported holidays", "inserted", result.UpsertedCount, "updated", result.ModifiedCount)
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	log.Info("Collection already exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	coll := db.Collection(name)
	if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "count", len(models))
	return nil
}
