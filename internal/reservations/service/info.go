package service

import (
	"context"
	"fmt"
	"strings"

	"restobook/internal/reservations/rules"
	"restobook/pkg/config"
	apperrors "restobook/pkg/errors"
	"restobook/pkg/model"
)

type InfoService interface {
	OpeningHours(ctx context.Context) *model.OpeningHours
	CheckOpen(ctx context.Context, date, startTime string) (*model.OpenStatus, error)
}

type infoService struct {
	engine *Engine
	cfg    *config.Config
}

func NewInfoService(engine *Engine, cfg *config.Config) InfoService {
	return &infoService{engine: engine, cfg: cfg}
}

func (s *infoService) OpeningHours(ctx context.Context) *model.OpeningHours {
	policy := s.engine.Calendar.Policy()
	closedDay := policy.ClosedDay.String()

	return &model.OpeningHours{
		OpenTime:  policy.OpenTime(),
		CloseTime: policy.CloseTime(),
		ClosedDay: strings.ToLower(closedDay),
		Hours:     openingHoursText(policy),
		Days:      fmt.Sprintf("Open every day except %s. Closed on public holidays.", closedDay),
	}
}

func (s *infoService) CheckOpen(ctx context.Context, date, startTime string) (*model.OpenStatus, error) {
	date, err := normalizeDate(date)
	if err != nil {
		return nil, err
	}
	startTime, err = normalizeTime(startTime)
	if err != nil {
		return nil, err
	}

	open, reason, err := s.engine.Calendar.IsOpen(ctx, date, startTime)
	if err != nil {
		s.cfg.Log.Error("Failed to check opening hours", "date", date, "time", startTime, "error", err)
		return nil, apperrors.Internal("Failed to check opening hours", err)
	}
	return &model.OpenStatus{Date: date, Time: startTime, Open: open, Reason: reason}, nil
}

func openingHoursText(p rules.OpeningPolicy) string {
	if p.CloseMin == 0 {
		return fmt.Sprintf("From %s until midnight", p.OpenTime())
	}
	return fmt.Sprintf("From %s to %s", p.OpenTime(), p.CloseTime())
}
