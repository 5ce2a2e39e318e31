package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"restobook/internal/calendarsync"
	"restobook/internal/events"
	"restobook/internal/reservations/repository"
	"restobook/pkg/config"
	"restobook/pkg/kafka"
	kafka_config "restobook/pkg/kafka/config"
	kafka_middleware "restobook/pkg/kafka/middleware"
)

const ServiceName = "calendar-sync"

func main() {
	cfg := config.Load(ServiceName)
	if !cfg.CalendarEnabled {
		cfg.Log.Fatal("Calendar sync worker started with CALENDAR_ENABLED=false")
	}
	if cfg.StorageBackend == config.BackendMemory {
		cfg.Log.Fatal("Calendar sync worker needs a shared storage backend", "backend", cfg.StorageBackend)
	}
	defer cfg.GracefulShutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, err := repository.OpenStores(ctx, cfg)
	if err != nil {
		cfg.Log.Fatal("Failed to open storage", "error", err)
	}

	kafkaCfg, err := kafka_config.Load(ServiceName)
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	calendar := calendarsync.NewGoogleCalendar(calendarsync.GoogleConfig{
		BaseURL:    cfg.CalendarBaseURL,
		CalendarID: cfg.CalendarID,
		Token:      cfg.CalendarToken,
		TimeZone:   cfg.TimeZone,
		Timeout:    cfg.CalendarTimeout,
		Retries:    cfg.CalendarRetries,
	}, cfg.Log)
	applier := calendarsync.NewApplier(calendar, stores.Reservations, cfg.Location(), cfg.Log)

	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		cfg.ReservationEventsTopic,
		cfg.CalendarSyncGroupID,
		cfg.ReservationEventsDLQ,
		events.CalendarHandler(applier),
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	if kafkaCfg.LogMessages {
		consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
	}

	cfg.Log.Info("Calendar sync worker consuming",
		"topic", cfg.ReservationEventsTopic,
		"group_id", cfg.CalendarSyncGroupID,
		"calendar_id", cfg.CalendarID,
	)

	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Kafka consumer stopped", "error", err)
	}
	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close Kafka consumer", "error", err)
	}
	cfg.Log.Info("Calendar sync worker stopped")
}
