package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeHolidays(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "holidays.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write holidays: %v", err)
	}
	return path
}

func TestFileHolidaySource(t *testing.T) {
	path := writeHolidays(t, `[
		{"date": "2025-12-25 00:00:00", "name": "Christmas Day"},
		{"date": "06/01/2026", "name": "Epiphany"}
	]`)

	source, err := NewFileHolidaySource(path)
	if err != nil {
		t.Fatalf("NewFileHolidaySource() error = %v", err)
	}

	tests := []struct {
		date string
		want string
	}{
		{date: "2025-12-25", want: "Christmas Day"},
		{date: "2026-01-06", want: "Epiphany"},
		{date: "2025-12-26", want: ""},
	}
	for _, tt := range tests {
		got, err := source.HolidayName(context.Background(), tt.date)
		if err != nil {
			t.Fatalf("HolidayName(%s) error = %v", tt.date, err)
		}
		if got != tt.want {
			t.Errorf("HolidayName(%s) = %q, want %q", tt.date, got, tt.want)
		}
	}
}

func TestLoadHolidaysFile_Errors(t *testing.T) {
	if _, err := LoadHolidaysFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := LoadHolidaysFile(writeHolidays(t, `{"date": "2025-12-25"}`)); err == nil {
		t.Error("expected error for non-array document")
	}
	if _, err := LoadHolidaysFile(writeHolidays(t, `[{"date": "25.12.2025", "name": "x"}]`)); err == nil {
		t.Error("expected error for unparseable date")
	}
}
