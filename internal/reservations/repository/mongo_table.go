package repository

import (
	"context"
	"errors"
	"fmt"

	reservationserrors "restobook/internal/reservations/errors"
	"restobook/pkg/config"
	"restobook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoTableRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoTableRepository(cfg *config.Config) TableRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoTableRepository{
		cfg:        cfg,
		collection: db.Collection(TablesCollection),
	}
}

func (r *mongoTableRepository) FindByZoneAndMinCapacity(ctx context.Context, zone model.Zone, minCapacity int) ([]*model.Table, error) {
	filter := bson.M{
		"zone":     zone,
		"capacity": bson.M{"$gte": minCapacity},
	}
	return r.find(ctx, filter, bson.D{{Key: "capacity", Value: 1}, {Key: "_id", Value: 1}})
}

func (r *mongoTableRepository) ListAll(ctx context.Context) ([]*model.Table, error) {
	return r.find(ctx, bson.M{}, bson.D{{Key: "_id", Value: 1}})
}

func (r *mongoTableRepository) find(ctx context.Context, filter bson.M, sort bson.D) ([]*model.Table, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("failed to find tables: %w", err)
	}
	defer cursor.Close(ctx)

	tables := []*model.Table{}
	if err = cursor.All(ctx, &tables); err != nil {
		return nil, fmt.Errorf("failed to decode tables: %w", err)
	}
	return tables, nil
}

func (r *mongoTableRepository) GetByID(ctx context.Context, id int) (*model.Table, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var table model.Table
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&table)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %d", reservationserrors.ErrTableNotFound, id)
		}
		return nil, fmt.Errorf("failed to find table: %w", err)
	}
	return &table, nil
}
