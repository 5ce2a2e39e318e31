package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"restobook/internal/reservations/rules"
	"restobook/pkg/model"
)

type fileHolidaySource struct {
	names map[string]string
}

// LoadHolidaysFile reads a JSON array of {"date","name"} objects. Dates may carry a
// time suffix ("2025-12-25 00:00:00") and any layout ParseDate accepts.
func LoadHolidaysFile(path string) ([]model.Holiday, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read holidays file: %w", err)
	}

	var raw []model.Holiday
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse holidays file %s: %w", path, err)
	}

	holidays := make([]model.Holiday, 0, len(raw))
	for i, h := range raw {
		day, _, _ := strings.Cut(strings.TrimSpace(h.Date), " ")
		date, err := rules.NormalizeDate(day)
		if err != nil {
			return nil, fmt.Errorf("holiday %d in %s: %w", i, path, err)
		}
		holidays = append(holidays, model.Holiday{Date: date, Name: strings.TrimSpace(h.Name)})
	}
	return holidays, nil
}

// NewFileHolidaySource loads the holidays once; later lookups never touch the file.
func NewFileHolidaySource(path string) (HolidaySource, error) {
	holidays, err := LoadHolidaysFile(path)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(holidays))
	for _, h := range holidays {
		names[h.Date] = h.Name
	}
	return &fileHolidaySource{names: names}, nil
}

func (s *fileHolidaySource) HolidayName(ctx context.Context, date string) (string, error) {
	return s.names[date], nil
}
