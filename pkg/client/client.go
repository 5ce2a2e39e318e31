package client

import (
	"context"
	"time"

	"restobook/pkg/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type Client struct {
	Mongo  *mongo.Client
	SQLite *gorm.DB
}

func NewClient() *Client {
	return &Client{}
}

func (c *Client) SetMongo(log *logger.Logger, mongoURI string, mongoConnTimeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), mongoConnTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB", "error", err)
	}

	log.Info("Successfully connected to MongoDB")
	c.Mongo = client
}

func (c *Client) SetSQLite(log *logger.Logger, path string) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		log.Fatal("Failed to open SQLite database", "error", err, "path", path)
	}

	// sqlite serializes writers; a single connection avoids "database is locked"
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("Failed to access SQLite connection pool", "error", err)
	}
	sqlDB.SetMaxOpenConns(1)

	log.Info("Successfully opened SQLite database", "path", path)
	c.SQLite = db
}

func (c *Client) GracefulShutdown(log *logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if c.Mongo != nil {
		if err := c.Mongo.Disconnect(ctx); err != nil {
			log.Error("Failed to disconnect from MongoDB", "error", err)
		} else {
			log.Info("Disconnected from MongoDB")
		}
	}
	if c.SQLite != nil {
		if sqlDB, err := c.SQLite.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Error("Failed to close SQLite database", "error", err)
			}
		}
	}
}
