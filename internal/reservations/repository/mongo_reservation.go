package repository

import (
	"context"
	"fmt"
	"time"

	reservationserrors "restobook/internal/reservations/errors"
	"restobook/pkg/config"
	"restobook/pkg/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoReservationRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoReservationRepository(cfg *config.Config) ReservationRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoReservationRepository{
		cfg:        cfg,
		collection: db.Collection(ReservationsCollection),
	}
}

func (r *mongoReservationRepository) FindByPhoneAndDate(ctx context.Context, phone, date string) ([]*model.Reservation, error) {
	return r.find(ctx, bson.M{"phone": phone, "date": date})
}

func (r *mongoReservationRepository) FindByDate(ctx context.Context, date string) ([]*model.Reservation, error) {
	return r.find(ctx, bson.M{"date": date})
}

func (r *mongoReservationRepository) find(ctx context.Context, filter bson.M) ([]*model.Reservation, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "time", Value: 1}, {Key: "table_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find reservations: %w", err)
	}
	defer cursor.Close(ctx)

	reservations := []*model.Reservation{}
	if err = cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}
	return reservations, nil
}

func (r *mongoReservationRepository) Insert(ctx context.Context, reservation *model.Reservation) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if reservation.ID == "" {
		reservation.ID = uuid.NewString()
	}
	reservation.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	if _, err := r.collection.InsertOne(ctx, reservation); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return reservationserrors.ErrDuplicate
		}
		return fmt.Errorf("failed to insert reservation: %w", err)
	}
	return nil
}

func (r *mongoReservationRepository) DeleteByPhoneAndDate(ctx context.Context, phone, date string) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteMany(ctx, bson.M{"phone": phone, "date": date})
	if err != nil {
		return fmt.Errorf("failed to delete reservation: %w", err)
	}
	if result.DeletedCount == 0 {
		return reservationserrors.ErrNotFound
	}
	return nil
}

func (r *mongoReservationRepository) Update(ctx context.Context, phone, date string, changes *model.ReservationChanges) error {
	if changes == nil || changes.IsEmpty() {
		return nil
	}

	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	set, unset := changesToBSON(changes)
	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"phone": phone, "date": date}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return reservationserrors.ErrDuplicate
		}
		return fmt.Errorf("failed to update reservation: %w", err)
	}
	if result.MatchedCount == 0 {
		return reservationserrors.ErrNotFound
	}
	return nil
}

// changesToBSON splits changes into $set and $unset documents. An empty merge
// list is unset so single-table reservations keep the same shape as new ones.
func changesToBSON(c *model.ReservationChanges) (bson.M, bson.M) {
	set := bson.M{}
	unset := bson.M{}

	if c.Date != nil {
		set["date"] = *c.Date
	}
	if c.Time != nil {
		set["time"] = *c.Time
	}
	if c.PartySize != nil {
		set["party_size"] = *c.PartySize
	}
	if c.DurationMin != nil {
		set["duration_min"] = *c.DurationMin
	}
	if c.TableID != nil {
		set["table_id"] = *c.TableID
	}
	if c.MergedTables != nil {
		if len(*c.MergedTables) == 0 {
			unset["merged_tables"] = ""
		} else {
			set["merged_tables"] = *c.MergedTables
		}
	}
	if c.CalendarEventID != nil {
		if *c.CalendarEventID == "" {
			unset["calendar_event_id"] = ""
		} else {
			set["calendar_event_id"] = *c.CalendarEventID
		}
	}
	return set, unset
}
