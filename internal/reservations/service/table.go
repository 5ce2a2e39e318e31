package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	reservationserrors "restobook/internal/reservations/errors"
	"restobook/internal/reservations/repository"
	"restobook/pkg/config"
	apperrors "restobook/pkg/errors"
	"restobook/pkg/model"
)

type TableService interface {
	ListTables(ctx context.Context) ([]*model.Table, error)
	FindTable(ctx context.Context, partySize int, zone model.Zone, date, startTime string) (*model.Allocation, error)
	AvailableTables(ctx context.Context, partySize int, zone model.Zone, date, startTime string) ([]*model.Table, error)
	IsTableAvailable(ctx context.Context, tableID int, date, startTime string, partySize int) (*model.TableAvailability, error)
}

type tableService struct {
	tables repository.TableRepository
	engine *Engine
	cfg    *config.Config
}

func NewTableService(tables repository.TableRepository, engine *Engine, cfg *config.Config) TableService {
	return &tableService{
		tables: tables,
		engine: engine,
		cfg:    cfg,
	}
}

func (s *tableService) ListTables(ctx context.Context) ([]*model.Table, error) {
	tables, err := s.tables.ListAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list tables", "error", err)
		return nil, apperrors.Internal("Failed to retrieve tables", err)
	}
	return tables, nil
}

func (s *tableService) FindTable(ctx context.Context, partySize int, zone model.Zone, date, startTime string) (*model.Allocation, error) {
	date, startTime, err := s.prepareSearch(ctx, partySize, zone, date, startTime)
	if err != nil {
		return nil, err
	}

	result, err := s.engine.Allocator.FindTable(ctx, partySize, zone, date, startTime)
	if err != nil {
		s.cfg.Log.Error("Table search failed", "party_size", partySize, "zone", zone, "date", date, "error", err)
		return nil, apperrors.Internal("Failed to search for tables", err)
	}

	durationMin, err := s.engine.Duration.EstimateAt(partySize, startTime)
	if err != nil {
		return nil, apperrors.Internal("Failed to estimate duration", err)
	}
	allocation := &model.Allocation{
		Kind:        result.Kind.String(),
		Tables:      result.Tables,
		Capacity:    result.Capacity(),
		PartySize:   partySize,
		Zone:        zone,
		Date:        date,
		Time:        startTime,
		DurationMin: durationMin,
	}
	if allocation.Tables == nil {
		allocation.Tables = []*model.Table{}
	}

	s.cfg.Log.Debug("Table search completed",
		"party_size", partySize,
		"zone", zone,
		"date", date,
		"time", startTime,
		"kind", allocation.Kind,
		"tables", tableIDs(result.Tables),
	)
	return allocation, nil
}

func (s *tableService) AvailableTables(ctx context.Context, partySize int, zone model.Zone, date, startTime string) ([]*model.Table, error) {
	date, startTime, err := s.prepareSearch(ctx, partySize, zone, date, startTime)
	if err != nil {
		return nil, err
	}

	tables, err := s.engine.Allocator.AvailableTables(ctx, partySize, zone, date, startTime)
	if err != nil {
		return nil, apperrors.Internal("Failed to search for tables", err)
	}
	return tables, nil
}

func (s *tableService) IsTableAvailable(ctx context.Context, tableID int, date, startTime string, partySize int) (*model.TableAvailability, error) {
	if partySize < 1 {
		return nil, apperrors.InvalidInput("party_size must be at least 1")
	}
	date, err := normalizeDate(date)
	if err != nil {
		return nil, err
	}
	startTime, err = normalizeTime(startTime)
	if err != nil {
		return nil, err
	}

	if _, err := s.tables.GetByID(ctx, tableID); err != nil {
		if errors.Is(err, reservationserrors.ErrTableNotFound) {
			return nil, apperrors.NotFoundWithID("Table", strconv.Itoa(tableID))
		}
		return nil, apperrors.Internal("Failed to load table", err)
	}

	durationMin, err := s.engine.Duration.EstimateAt(partySize, startTime)
	if err != nil {
		return nil, apperrors.Internal("Failed to estimate duration", err)
	}

	available, err := s.engine.Checker.IsTableAvailable(ctx, tableID, date, startTime, durationMin)
	if err != nil {
		return nil, apperrors.Internal("Failed to check table availability", err)
	}

	return &model.TableAvailability{
		TableID:     tableID,
		Date:        date,
		Time:        startTime,
		DurationMin: durationMin,
		Available:   available,
	}, nil
}

// prepareSearch validates a search and normalizes its date and time. A closed
// slot is reported as such rather than as an empty search.
func (s *tableService) prepareSearch(ctx context.Context, partySize int, zone model.Zone, date, startTime string) (string, string, error) {
	if partySize < 1 {
		return "", "", apperrors.InvalidInput("party_size must be at least 1")
	}
	if !zone.Valid() {
		return "", "", apperrors.InvalidInput(fmt.Sprintf("zone must be one of: %s, %s", model.ZoneInterior, model.ZoneTerrace))
	}

	date, err := normalizeDate(date)
	if err != nil {
		return "", "", err
	}
	startTime, err = normalizeTime(startTime)
	if err != nil {
		return "", "", err
	}

	open, reason, err := s.engine.Calendar.IsOpen(ctx, date, startTime)
	if err != nil {
		return "", "", apperrors.Internal("Failed to check opening hours", err)
	}
	if !open {
		return "", "", apperrors.Closed(reason)
	}
	return date, startTime, nil
}
