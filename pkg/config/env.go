package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort          = "PORT"
	EnvLogLevel      = "LOG_LEVEL"
	EnvLogFormat     = "LOG_FORMAT"
	EnvLogMaskPhones = "LOG_MASK_PHONES"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvStorageBackend = "STORAGE_BACKEND"
	EnvSQLitePath     = "SQLITE_PATH"

	EnvOpenTime      = "OPEN_TIME"
	EnvCloseTime     = "CLOSE_TIME"
	EnvClosedWeekday = "CLOSED_WEEKDAY"
	EnvTimeZone      = "TIME_ZONE"
	EnvPhoneRegion   = "PHONE_REGION"

	EnvBaseDurationMin      = "BASE_DURATION_MIN"
	EnvExtraMinutesPerGuest = "EXTRA_MINUTES_PER_GUEST"
	EnvLateHour             = "LATE_HOUR"
	EnvLateBonusMin         = "LATE_BONUS_MIN"
	EnvMaxDurationMin       = "MAX_DURATION_MIN"

	EnvHolidaySource = "HOLIDAY_SOURCE"
	EnvHolidaysFile  = "HOLIDAYS_FILE"

	EnvLockTTL = "LOCK_TTL"

	EnvCalendarEnabled   = "CALENDAR_ENABLED"
	EnvCalendarBaseURL   = "CALENDAR_BASE_URL"
	EnvCalendarID        = "CALENDAR_ID"
	EnvCalendarToken     = "CALENDAR_TOKEN"
	EnvCalendarTimeout   = "CALENDAR_TIMEOUT"
	EnvCalendarRetries   = "CALENDAR_RETRIES"
	EnvCalendarQueueSize = "CALENDAR_QUEUE_SIZE"

	EnvEventsBackend          = "EVENTS_BACKEND"
	EnvReservationEventsTopic = "RESERVATION_EVENTS_TOPIC"
	EnvReservationEventsDLQ   = "RESERVATION_EVENTS_DLQ"
	EnvCalendarSyncGroupID    = "CALENDAR_SYNC_GROUP_ID"
)
