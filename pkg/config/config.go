package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"restobook/internal/reservations/rules"
	"restobook/pkg/client"
	"restobook/pkg/locale"
	"restobook/pkg/logger"
)

var timeRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	StorageBackend string
	SQLitePath     string

	OpenTime      string
	CloseTime     string
	ClosedWeekday string
	TimeZone      string
	PhoneRegion   string

	BaseDurationMin      int
	ExtraMinutesPerGuest int
	LateHour             int
	LateBonusMin         int
	MaxDurationMin       int

	HolidaySource string
	HolidaysFile  string

	LockTTL time.Duration

	CalendarEnabled   bool
	CalendarBaseURL   string
	CalendarID        string
	CalendarToken     string
	CalendarTimeout   time.Duration
	CalendarRetries   int
	CalendarQueueSize int

	EventsBackend          string
	ReservationEventsTopic string
	ReservationEventsDLQ   string
	CalendarSyncGroupID    string

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		StorageBackend: strings.ToLower(getEnvStr(EnvStorageBackend, DefaultStorageBackend)),
		SQLitePath:     getEnvStr(EnvSQLitePath, DefaultSQLitePath),

		OpenTime:      getEnvStr(EnvOpenTime, DefaultOpenTime),
		CloseTime:     getEnvStr(EnvCloseTime, DefaultCloseTime),
		ClosedWeekday: getEnvStr(EnvClosedWeekday, DefaultClosedWeekday),
		TimeZone:      getEnvStr(EnvTimeZone, DefaultTimeZone),
		PhoneRegion:   strings.ToUpper(getEnvStr(EnvPhoneRegion, DefaultPhoneRegion)),

		BaseDurationMin:      getEnvNum(EnvBaseDurationMin, DefaultBaseDurationMin),
		ExtraMinutesPerGuest: getEnvNum(EnvExtraMinutesPerGuest, DefaultExtraMinutesPerGuest),
		LateHour:             getEnvNum(EnvLateHour, DefaultLateHour),
		LateBonusMin:         getEnvNum(EnvLateBonusMin, DefaultLateBonusMin),
		MaxDurationMin:       getEnvNum(EnvMaxDurationMin, DefaultMaxDurationMin),

		HolidaySource: strings.ToLower(getEnvStr(EnvHolidaySource, DefaultHolidaySource)),
		HolidaysFile:  getEnvStr(EnvHolidaysFile, DefaultHolidaysFile),

		LockTTL: getEnvDuration(EnvLockTTL, DefaultLockTTL),

		CalendarEnabled:   getEnvBool(EnvCalendarEnabled, DefaultCalendarEnabled),
		CalendarBaseURL:   getEnvStr(EnvCalendarBaseURL, DefaultCalendarBaseURL),
		CalendarID:        getEnvStr(EnvCalendarID, DefaultCalendarID),
		CalendarToken:     getEnvStr(EnvCalendarToken, ""),
		CalendarTimeout:   getEnvDuration(EnvCalendarTimeout, DefaultCalendarTimeout),
		CalendarRetries:   getEnvNum(EnvCalendarRetries, DefaultCalendarRetries),
		CalendarQueueSize: getEnvNum(EnvCalendarQueueSize, DefaultCalendarQueueSize),

		EventsBackend:          strings.ToLower(getEnvStr(EnvEventsBackend, DefaultEventsBackend)),
		ReservationEventsTopic: getEnvStr(EnvReservationEventsTopic, DefaultReservationEventsTopic),
		ReservationEventsDLQ:   getEnvStr(EnvReservationEventsDLQ, DefaultReservationEventsDLQ),
		CalendarSyncGroupID:    getEnvStr(EnvCalendarSyncGroupID, DefaultCalendarSyncGroupID),

		Log: logger.New(logger.Config{
			Level:      getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:     getEnvStr(EnvLogFormat, DefaultLogFormat),
			AddSource:  true,
			Service:    serviceName,
			MaskPhones: getEnvBool(EnvLogMaskPhones, DefaultLogMaskPhones),
		}),
		Client: client.NewClient(),
	}
	if cfg.PhoneRegion == "" {
		cfg.PhoneRegion = locale.DetectRegion(cfg.TimeZone)
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) SetSQLite() {
	cfg.Client.SetSQLite(cfg.Log, cfg.SQLitePath)
}

// NeedsMongo reports whether any configured component reads from MongoDB.
func (cfg *Config) NeedsMongo() bool {
	return cfg.StorageBackend == BackendMongo || cfg.HolidaySource == HolidaysFromMongo
}

// OpeningPolicy builds the immutable opening rules from the loaded values.
func (cfg *Config) OpeningPolicy() (rules.OpeningPolicy, error) {
	weekday, err := rules.ParseWeekday(cfg.ClosedWeekday)
	if err != nil {
		return rules.OpeningPolicy{}, err
	}
	return rules.NewOpeningPolicy(cfg.OpenTime, cfg.CloseTime, weekday)
}

func (cfg *Config) DurationPolicy() rules.DurationPolicy {
	return rules.DurationPolicy{
		BaseMin:          cfg.BaseDurationMin,
		PerExtraGuestMin: cfg.ExtraMinutesPerGuest,
		LateHour:         cfg.LateHour,
		LateBonusMin:     cfg.LateBonusMin,
		MaxMin:           cfg.MaxDurationMin,
	}
}

func (cfg *Config) Location() *time.Location {
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	switch cfg.StorageBackend {
	case BackendMongo, BackendSQLite, BackendMemory:
	default:
		errors = append(errors, fmt.Sprintf("StorageBackend must be one of [mongo, sqlite, memory], got: %s", cfg.StorageBackend))
	}
	if cfg.StorageBackend == BackendSQLite && cfg.SQLitePath == "" {
		errors = append(errors, "SQLitePath cannot be empty when StorageBackend is sqlite")
	}

	if cfg.NeedsMongo() {
		if cfg.MongoURI == "" {
			errors = append(errors, "MongoURI cannot be empty")
		} else if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
			errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
		}
		if cfg.MongoDatabaseName == "" {
			errors = append(errors, "MongoDatabaseName cannot be empty")
		}
		if cfg.MongoConnTimeout <= 0 {
			errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
		}
	}

	if !timeRegex.MatchString(cfg.OpenTime) {
		errors = append(errors, fmt.Sprintf("OpenTime must be in HH:MM format (00:00-23:59), got: %s", cfg.OpenTime))
	}
	if !timeRegex.MatchString(cfg.CloseTime) {
		errors = append(errors, fmt.Sprintf("CloseTime must be in HH:MM format (00:00-23:59), got: %s", cfg.CloseTime))
	}
	if _, err := rules.ParseWeekday(cfg.ClosedWeekday); err != nil {
		errors = append(errors, fmt.Sprintf("ClosedWeekday must be an English weekday name, got: %s", cfg.ClosedWeekday))
	}
	if _, err := time.LoadLocation(cfg.TimeZone); err != nil {
		errors = append(errors, fmt.Sprintf("TimeZone must be a valid IANA zone, got: %s", cfg.TimeZone))
	}

	if cfg.BaseDurationMin <= 0 {
		errors = append(errors, fmt.Sprintf("BaseDurationMin must be positive, got: %d", cfg.BaseDurationMin))
	}
	if cfg.MaxDurationMin < cfg.BaseDurationMin {
		errors = append(errors, fmt.Sprintf("MaxDurationMin (%d) must be >= BaseDurationMin (%d)", cfg.MaxDurationMin, cfg.BaseDurationMin))
	}
	if cfg.ExtraMinutesPerGuest < 0 {
		errors = append(errors, fmt.Sprintf("ExtraMinutesPerGuest cannot be negative, got: %d", cfg.ExtraMinutesPerGuest))
	}
	if cfg.LateBonusMin < 0 {
		errors = append(errors, fmt.Sprintf("LateBonusMin cannot be negative, got: %d", cfg.LateBonusMin))
	}
	if cfg.LateHour < 0 || cfg.LateHour > 23 {
		errors = append(errors, fmt.Sprintf("LateHour must be between 0 and 23, got: %d", cfg.LateHour))
	}

	switch cfg.HolidaySource {
	case HolidaysFromJSON:
		if cfg.HolidaysFile == "" {
			errors = append(errors, "HolidaysFile cannot be empty when HolidaySource is json")
		}
	case HolidaysFromMongo:
	case HolidaysFromSQLite:
		if cfg.StorageBackend != BackendSQLite {
			errors = append(errors, "HolidaySource sqlite requires StorageBackend sqlite")
		}
	default:
		errors = append(errors, fmt.Sprintf("HolidaySource must be one of [json, mongo, sqlite], got: %s", cfg.HolidaySource))
	}

	if cfg.LockTTL <= 0 {
		errors = append(errors, fmt.Sprintf("LockTTL must be positive, got: %s", cfg.LockTTL))
	}

	if cfg.CalendarEnabled {
		if cfg.CalendarToken == "" {
			errors = append(errors, "CalendarToken is required when calendar sync is enabled")
		}
		if cfg.CalendarID == "" {
			errors = append(errors, "CalendarID cannot be empty when calendar sync is enabled")
		}
		if cfg.CalendarTimeout <= 0 {
			errors = append(errors, fmt.Sprintf("CalendarTimeout must be positive, got: %s", cfg.CalendarTimeout))
		}
		if cfg.CalendarRetries < 0 {
			errors = append(errors, fmt.Sprintf("CalendarRetries cannot be negative, got: %d", cfg.CalendarRetries))
		}
		if cfg.CalendarQueueSize <= 0 {
			errors = append(errors, fmt.Sprintf("CalendarQueueSize must be positive, got: %d", cfg.CalendarQueueSize))
		}
	}

	switch cfg.EventsBackend {
	case EventsInProcess:
	case EventsKafka:
		if cfg.ReservationEventsTopic == "" {
			errors = append(errors, "ReservationEventsTopic cannot be empty when EventsBackend is kafka")
		}
	default:
		errors = append(errors, fmt.Sprintf("EventsBackend must be one of [inprocess, kafka], got: %s", cfg.EventsBackend))
	}

	if cfg.RateLimitWindow <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}
	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.IdempotencyTTL <= 0 {
		errors = append(errors, fmt.Sprintf("IdempotencyTTL must be positive, got: %s", cfg.IdempotencyTTL))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"storage_backend", cfg.StorageBackend,
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"sqlite_path", cfg.SQLitePath,
		"port", cfg.Port,
		"open_time", cfg.OpenTime,
		"close_time", cfg.CloseTime,
		"closed_weekday", cfg.ClosedWeekday,
		"time_zone", cfg.TimeZone,
		"phone_region", cfg.PhoneRegion,
		"base_duration_min", cfg.BaseDurationMin,
		"extra_minutes_per_guest", cfg.ExtraMinutesPerGuest,
		"late_hour", cfg.LateHour,
		"late_bonus_min", cfg.LateBonusMin,
		"max_duration_min", cfg.MaxDurationMin,
		"holiday_source", cfg.HolidaySource,
		"holidays_file", cfg.HolidaysFile,
		"lock_ttl", cfg.LockTTL,
		"calendar_enabled", cfg.CalendarEnabled,
		"calendar_id", cfg.CalendarID,
		"calendar_token_set", cfg.CalendarToken != "",
		"events_backend", cfg.EventsBackend,
		"reservation_events_topic", cfg.ReservationEventsTopic,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log)
}
