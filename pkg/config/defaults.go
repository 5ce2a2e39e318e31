package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "restobook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort          = "8080"
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "json"
	DefaultLogMaskPhones = true

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultStorageBackend = BackendMongo
	DefaultSQLitePath     = "restobook.db"

	DefaultOpenTime      = "09:00"
	DefaultCloseTime     = "00:00"
	DefaultClosedWeekday = "monday"
	DefaultTimeZone      = "Europe/Madrid"
	DefaultPhoneRegion   = ""

	DefaultBaseDurationMin      = 60
	DefaultExtraMinutesPerGuest = 15
	DefaultLateHour             = 21
	DefaultLateBonusMin         = 30
	DefaultMaxDurationMin       = 180

	DefaultHolidaySource = HolidaysFromJSON
	DefaultHolidaysFile  = "data/holidays.json"

	DefaultLockTTL = 10 * time.Second

	DefaultCalendarEnabled   = false
	DefaultCalendarBaseURL   = "https://www.googleapis.com/calendar/v3"
	DefaultCalendarID        = "primary"
	DefaultCalendarTimeout   = 5 * time.Second
	DefaultCalendarRetries   = 2
	DefaultCalendarQueueSize = 100

	DefaultEventsBackend          = EventsInProcess
	DefaultReservationEventsTopic = "reservation-events"
	DefaultReservationEventsDLQ   = "reservation-events-dlq"
	DefaultCalendarSyncGroupID    = "calendar-sync"
)

const (
	BackendMongo  = "mongo"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"

	HolidaysFromJSON   = "json"
	HolidaysFromMongo  = "mongo"
	HolidaysFromSQLite = "sqlite"

	EventsInProcess = "inprocess"
	EventsKafka     = "kafka"
)
