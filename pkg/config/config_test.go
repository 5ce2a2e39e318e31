package config

import (
	"strings"
	"testing"
	"time"

	"restobook/pkg/logger"
)

func validConfig() *Config {
	return &Config{
		MongoURI:             DefaultMongoURI,
		MongoDatabaseName:    DefaultMongoDatabaseName,
		MongoConnTimeout:     DefaultMongoConnTimeout,
		Port:                 DefaultPort,
		RateLimitRequests:    DefaultRateLimitRequests,
		RateLimitWindow:      DefaultRateLimitWindow,
		RequestTimeout:       DefaultRequestTimeout,
		IdempotencyTTL:       DefaultIdempotencyTTL,
		MaxRequestSize:       DefaultMaxRequestSize,
		ReadTimeout:          DefaultReadTimeout,
		WriteTimeout:         DefaultWriteTimeout,
		IdleTimeout:          DefaultIdleTimeout,
		ShutdownTimeout:      DefaultShutdownTimeout,
		StorageBackend:       DefaultStorageBackend,
		SQLitePath:           DefaultSQLitePath,
		OpenTime:             DefaultOpenTime,
		CloseTime:            DefaultCloseTime,
		ClosedWeekday:        DefaultClosedWeekday,
		TimeZone:             DefaultTimeZone,
		BaseDurationMin:      DefaultBaseDurationMin,
		ExtraMinutesPerGuest: DefaultExtraMinutesPerGuest,
		LateHour:             DefaultLateHour,
		LateBonusMin:         DefaultLateBonusMin,
		MaxDurationMin:       DefaultMaxDurationMin,
		HolidaySource:        DefaultHolidaySource,
		HolidaysFile:         DefaultHolidaysFile,
		LockTTL:              DefaultLockTTL,
		CalendarQueueSize:    DefaultCalendarQueueSize,
		EventsBackend:        DefaultEventsBackend,
		Log:                  logger.NewNop(),
	}
}

func TestValidate_Defaults(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("defaults should validate, got: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantMsg string
	}{
		{"bad open time", func(c *Config) { c.OpenTime = "9am" }, "OpenTime"},
		{"bad close time", func(c *Config) { c.CloseTime = "24:00" }, "CloseTime"},
		{"unknown weekday", func(c *Config) { c.ClosedWeekday = "lunes" }, "ClosedWeekday"},
		{"bad time zone", func(c *Config) { c.TimeZone = "Mars/Olympus" }, "TimeZone"},
		{"max below base", func(c *Config) { c.MaxDurationMin = 30 }, "MaxDurationMin"},
		{"late hour out of range", func(c *Config) { c.LateHour = 24 }, "LateHour"},
		{"unknown backend", func(c *Config) { c.StorageBackend = "redis" }, "StorageBackend"},
		{"calendar without token", func(c *Config) { c.CalendarEnabled = true; c.CalendarID = "primary"; c.CalendarTimeout = time.Second }, "CalendarToken"},
		{"unknown events backend", func(c *Config) { c.EventsBackend = "nats" }, "EventsBackend"},
		{"mongo uri scheme", func(c *Config) { c.MongoURI = "postgres://localhost" }, "MongoURI"},
		{"lock ttl", func(c *Config) { c.LockTTL = 0 }, "LockTTL"},
		{"sqlite holidays on mongo", func(c *Config) { c.HolidaySource = HolidaysFromSQLite }, "HolidaySource"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error mentioning %s", tt.wantMsg)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %s", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestValidate_MongoSkippedForSQLite(t *testing.T) {
	cfg := validConfig()
	cfg.StorageBackend = BackendSQLite
	cfg.MongoURI = ""

	if err := cfg.Validate(); err != nil {
		t.Fatalf("sqlite backend with json holidays should not require mongo: %v", err)
	}
}

func TestPolicies(t *testing.T) {
	cfg := validConfig()

	opening, err := cfg.OpeningPolicy()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opening.ClosedDay != time.Monday {
		t.Errorf("ClosedDay = %v, want Monday", opening.ClosedDay)
	}
	if opening.OpenTime() != "09:00" || opening.CloseTime() != "00:00" {
		t.Errorf("opening window = %s-%s, want 09:00-00:00", opening.OpenTime(), opening.CloseTime())
	}

	duration := cfg.DurationPolicy()
	if duration.BaseMin != 60 || duration.MaxMin != 180 || duration.LateHour != 21 {
		t.Errorf("unexpected duration policy: %+v", duration)
	}
}

func TestRedactMongoURI(t *testing.T) {
	got := redactMongoURI("mongodb://user:secret@db:27017")
	if got != "mongodb://***:***@db:27017" {
		t.Errorf("redactMongoURI() = %s", got)
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("RESTOBOOK_TEST_NUM", "42")
	t.Setenv("RESTOBOOK_TEST_BAD_NUM", "x")
	t.Setenv("RESTOBOOK_TEST_DURATION", "3s")
	t.Setenv("RESTOBOOK_TEST_BOOL", "true")

	if got := getEnvNum("RESTOBOOK_TEST_NUM", 1); got != 42 {
		t.Errorf("getEnvNum = %d, want 42", got)
	}
	if got := getEnvNum("RESTOBOOK_TEST_BAD_NUM", 7); got != 7 {
		t.Errorf("getEnvNum fallback = %d, want 7", got)
	}
	if got := getEnvDuration("RESTOBOOK_TEST_DURATION", time.Second); got != 3*time.Second {
		t.Errorf("getEnvDuration = %s, want 3s", got)
	}
	if got := getEnvBool("RESTOBOOK_TEST_BOOL", false); !got {
		t.Error("getEnvBool = false, want true")
	}
	if got := getEnvStr("RESTOBOOK_TEST_UNSET", "fallback"); got != "fallback" {
		t.Errorf("getEnvStr = %s, want fallback", got)
	}
}
