package repository

import (
	"context"
	"errors"
	"fmt"

	"restobook/pkg/config"
	"restobook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoHolidayRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoHolidayRepository(cfg *config.Config) HolidaySource {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoHolidayRepository{
		cfg:        cfg,
		collection: db.Collection(HolidaysCollection),
	}
}

func (r *mongoHolidayRepository) HolidayName(ctx context.Context, date string) (string, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var holiday model.Holiday
	err := r.collection.FindOne(ctx, bson.M{"date": date}).Decode(&holiday)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", nil
		}
		return "", fmt.Errorf("failed to find holiday: %w", err)
	}
	return holiday.Name, nil
}
