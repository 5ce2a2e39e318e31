package repository

import (
	"context"
	"fmt"
	"time"

	reservationserrors "restobook/internal/reservations/errors"
	"restobook/pkg/config"
	"restobook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoLockRepository(cfg *config.Config) LockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoLockRepository{
		cfg:        cfg,
		collection: db.Collection(LocksCollection),
	}
}

// Acquire inserts the lock document; the unique _id makes a second holder fail.
// The TTL index only sweeps about once a minute, so an expired lock that is
// still present is removed here before retrying once.
func (r *mongoLockRepository) Acquire(ctx context.Context, key, owner string, ttl time.Duration) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	err := r.insert(ctx, key, owner, ttl)
	if err == nil || !mongo.IsDuplicateKeyError(err) {
		return err
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{
		"_id":        key,
		"expires_at": bson.M{"$lte": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("failed to clear expired lock: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", reservationserrors.ErrLockHeld, key)
	}

	if err := r.insert(ctx, key, owner, ttl); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", reservationserrors.ErrLockHeld, key)
		}
		return err
	}
	return nil
}

func (r *mongoLockRepository) insert(ctx context.Context, key, owner string, ttl time.Duration) error {
	now := time.Now().UTC()
	lock := &model.ReservationLock{
		ID:        key,
		Owner:     owner,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	if _, err := r.collection.InsertOne(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return err
		}
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	return nil
}

func (r *mongoLockRepository) Release(ctx context.Context, key, owner string) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": key, "owner": owner}); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}
