package main

import (
	"context"
	"time"

	"restobook/internal/calendarsync"
	"restobook/internal/events"
	"restobook/internal/reservations/handler"
	"restobook/internal/reservations/repository"
	"restobook/internal/reservations/service"
	"restobook/internal/reservations/validator"
	"restobook/pkg/app"
	"restobook/pkg/config"
	"restobook/pkg/kafka"
	kafka_config "restobook/pkg/kafka/config"
	kafka_middleware "restobook/pkg/kafka/middleware"
)

const ServiceName = "reservations"

func main() {
	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting Reservations service")

	stores, err := repository.OpenStores(context.Background(), cfg)
	if err != nil {
		cfg.Log.Fatal("Failed to open storage", "error", err)
	}

	serverApp := app.NewApplication()
	notifier := initNotifier(cfg, stores, serverApp)
	bookings, tables, info := initServices(cfg, stores, notifier)

	serverApp.SetApp(cfg, handler.NewRouter(bookings, tables, info, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config, stores *repository.Stores, notifier service.Notifier) (service.BookingService, service.TableService, service.InfoService) {
	engine, err := service.NewEngine(cfg, stores.Reservations, stores.Tables, stores.Holidays)
	if err != nil {
		cfg.Log.Fatal("Failed to build reservation engine", "error", err)
	}

	bookings := service.NewBookingService(
		stores.Reservations,
		stores.Tables,
		stores.Locks,
		engine,
		validator.NewReservationValidator(cfg.Log),
		notifier,
		cfg,
	)
	tables := service.NewTableService(stores.Tables, engine, cfg)
	info := service.NewInfoService(engine, cfg)

	cfg.Log.Info("Reservation services initialized", "backend", cfg.StorageBackend)
	return bookings, tables, info
}

// initNotifier picks where committed changes go. With kafka events the
// calendar-sync worker owns calendar updates, so no in-process dispatcher runs.
func initNotifier(cfg *config.Config, stores *repository.Stores, serverApp *app.Application) service.Notifier {
	var notifiers service.MultiNotifier

	switch {
	case cfg.EventsBackend == config.EventsKafka:
		notifiers = append(notifiers, initPublisher(cfg, serverApp))
	case cfg.CalendarEnabled:
		notifiers = append(notifiers, initDispatcher(cfg, stores, serverApp))
	default:
		cfg.Log.Info("Calendar sync disabled")
	}

	return notifiers
}

func initPublisher(cfg *config.Config, serverApp *app.Application) service.Notifier {
	kafkaCfg, err := kafka_config.Load(ServiceName)
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.ReservationEventsTopic, cfg.ReservationEventsDLQ, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	if kafkaCfg.LogMessages {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	}

	serverApp.OnShutdown(func(ctx context.Context) {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	})

	cfg.Log.Info("Publishing reservation events to Kafka", "topic", cfg.ReservationEventsTopic)
	return events.NewPublisher(producer, cfg.Log)
}

func initDispatcher(cfg *config.Config, stores *repository.Stores, serverApp *app.Application) service.Notifier {
	calendar := calendarsync.NewGoogleCalendar(googleConfig(cfg), cfg.Log)
	applier := calendarsync.NewApplier(calendar, stores.Reservations, cfg.Location(), cfg.Log)
	dispatcher := calendarsync.NewDispatcher(applier, cfg.CalendarQueueSize, cfg.Log,
		calendarsync.WithJobTimeout(cfg.CalendarTimeout*time.Duration(cfg.CalendarRetries+1)),
	)

	serverApp.OnShutdown(func(ctx context.Context) {
		if err := dispatcher.Close(ctx); err != nil {
			cfg.Log.Warn("Calendar sync queue not drained before shutdown", "error", err)
		}
	})

	cfg.Log.Info("Calendar sync running in process", "calendar_id", cfg.CalendarID, "queue_size", cfg.CalendarQueueSize)
	return dispatcher
}

func googleConfig(cfg *config.Config) calendarsync.GoogleConfig {
	return calendarsync.GoogleConfig{
		BaseURL:    cfg.CalendarBaseURL,
		CalendarID: cfg.CalendarID,
		Token:      cfg.CalendarToken,
		TimeZone:   cfg.TimeZone,
		Timeout:    cfg.CalendarTimeout,
		Retries:    cfg.CalendarRetries,
	}
}
