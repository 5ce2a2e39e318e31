package calendarsync

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"restobook/pkg/logger"

	"github.com/go-resty/resty/v2"
)

type GoogleConfig struct {
	BaseURL    string
	CalendarID string
	Token      string
	TimeZone   string
	Timeout    time.Duration
	Retries    int
}

type googleDateTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone,omitempty"`
}

type googleEvent struct {
	ID          string          `json:"id,omitempty"`
	Summary     string          `json:"summary"`
	Description string          `json:"description,omitempty"`
	Start       *googleDateTime `json:"start"`
	End         *googleDateTime `json:"end"`
}

type googleError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// GoogleCalendar talks to the Google Calendar v3 REST API with a bearer token.
type GoogleCalendar struct {
	http       *resty.Client
	calendarID string
	timeZone   string
	log        *logger.Logger
}

func NewGoogleCalendar(cfg GoogleConfig, log *logger.Logger) *GoogleCalendar {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(200*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			return err != nil || resp.StatusCode() == http.StatusTooManyRequests || resp.StatusCode() >= http.StatusInternalServerError
		}).
		SetAuthToken(cfg.Token).
		SetHeader("Accept", "application/json")

	return &GoogleCalendar{
		http:       client,
		calendarID: cfg.CalendarID,
		timeZone:   cfg.TimeZone,
		log:        log,
	}
}

func (g *GoogleCalendar) CreateEvent(ctx context.Context, event *Event) (string, error) {
	var created googleEvent
	var apiErr googleError

	resp, err := g.http.R().
		SetContext(ctx).
		SetPathParam("calendarId", g.calendarID).
		SetBody(g.toGoogle(event)).
		SetResult(&created).
		SetError(&apiErr).
		Post("/calendars/{calendarId}/events")
	if err != nil {
		return "", fmt.Errorf("failed to create calendar event: %w", err)
	}
	if resp.IsError() {
		return "", g.apiError("create", resp, &apiErr)
	}
	if created.ID == "" {
		return "", fmt.Errorf("calendar provider returned an event without id")
	}

	g.log.Debug("Calendar event created", "event_id", created.ID, "start", event.Start)
	return created.ID, nil
}

func (g *GoogleCalendar) UpdateEvent(ctx context.Context, event *Event) error {
	var apiErr googleError

	resp, err := g.http.R().
		SetContext(ctx).
		SetPathParams(map[string]string{
			"calendarId": g.calendarID,
			"eventId":    event.ID,
		}).
		SetBody(g.toGoogle(event)).
		SetError(&apiErr).
		Patch("/calendars/{calendarId}/events/{eventId}")
	if err != nil {
		return fmt.Errorf("failed to update calendar event %s: %w", event.ID, err)
	}
	if resp.IsError() {
		return g.apiError("update", resp, &apiErr)
	}
	return nil
}

// DeleteEvent treats an already removed event as success.
func (g *GoogleCalendar) DeleteEvent(ctx context.Context, eventID string) error {
	var apiErr googleError

	resp, err := g.http.R().
		SetContext(ctx).
		SetPathParams(map[string]string{
			"calendarId": g.calendarID,
			"eventId":    eventID,
		}).
		SetError(&apiErr).
		Delete("/calendars/{calendarId}/events/{eventId}")
	if err != nil {
		return fmt.Errorf("failed to delete calendar event %s: %w", eventID, err)
	}
	if resp.StatusCode() == http.StatusNotFound || resp.StatusCode() == http.StatusGone {
		return nil
	}
	if resp.IsError() {
		return g.apiError("delete", resp, &apiErr)
	}
	return nil
}

func (g *GoogleCalendar) toGoogle(event *Event) *googleEvent {
	return &googleEvent{
		Summary:     event.Summary,
		Description: event.Description,
		Start:       &googleDateTime{DateTime: event.Start.Format(time.RFC3339), TimeZone: g.timeZone},
		End:         &googleDateTime{DateTime: event.End.Format(time.RFC3339), TimeZone: g.timeZone},
	}
}

func (g *GoogleCalendar) apiError(op string, resp *resty.Response, apiErr *googleError) error {
	if resp.StatusCode() == http.StatusNotFound {
		return fmt.Errorf("calendar %s: %w", op, ErrEventNotFound)
	}
	message := apiErr.Error.Message
	if message == "" {
		message = resp.Status()
	}
	return fmt.Errorf("calendar %s failed with status %d: %s", op, resp.StatusCode(), message)
}
