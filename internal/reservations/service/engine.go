package service

import (
	"fmt"

	"restobook/internal/reservations/allocator"
	"restobook/internal/reservations/availability"
	"restobook/internal/reservations/repository"
	"restobook/internal/reservations/rules"
	"restobook/pkg/config"
)

// Engine bundles the pure rules and the read-side components shared by the services.
type Engine struct {
	Calendar  *rules.Calendar
	Duration  rules.DurationPolicy
	Checker   *availability.Checker
	Allocator *allocator.Allocator
}

func NewEngine(
	cfg *config.Config,
	reservations repository.ReservationRepository,
	tables repository.TableRepository,
	holidays repository.HolidaySource,
) (*Engine, error) {
	opening, err := cfg.OpeningPolicy()
	if err != nil {
		return nil, fmt.Errorf("invalid opening policy: %w", err)
	}
	duration := cfg.DurationPolicy()
	checker := availability.NewChecker(reservations)

	return &Engine{
		Calendar:  rules.NewCalendar(opening, holidays),
		Duration:  duration,
		Checker:   checker,
		Allocator: allocator.New(tables, checker, duration),
	}, nil
}
