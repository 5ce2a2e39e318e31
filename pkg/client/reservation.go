package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	apperrors "restobook/pkg/errors"
	"restobook/pkg/model"

	"github.com/go-resty/resty/v2"
)

const idempotencyHeader = "Idempotency-Key"

type envelope[T any] struct {
	Data T `json:"data"`
}

type errorBody struct {
	Error   string         `json:"error"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details"`
}

// ReservationClient calls the reservations HTTP API. Error responses come back
// as *apperrors.AppError carrying the server's code and status.
type ReservationClient struct {
	http *resty.Client
}

func NewReservationClient(baseURL string, timeout time.Duration) *ReservationClient {
	return &ReservationClient{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json").
			SetError(&errorBody{}),
	}
}

// Create books a reservation. A non-empty idempotencyKey makes retries replay the first answer.
func (c *ReservationClient) Create(ctx context.Context, req *model.NewReservation, idempotencyKey string) (*model.Reservation, error) {
	var out envelope[*model.Reservation]
	r := c.http.R().SetContext(ctx).SetBody(req).SetResult(&out)
	if idempotencyKey != "" {
		r.SetHeader(idempotencyHeader, idempotencyKey)
	}

	resp, err := r.Post("/api/v1/reservations")
	if err := check(resp, err, "create reservation"); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *ReservationClient) Get(ctx context.Context, phone, date string) (*model.Reservation, error) {
	var out envelope[*model.Reservation]
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).Get(reservationPath(phone, date))
	if err := check(resp, err, "get reservation"); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *ReservationClient) Modify(ctx context.Context, phone, date string, update *model.ReservationUpdate) (*model.Reservation, error) {
	var out envelope[*model.Reservation]
	resp, err := c.http.R().SetContext(ctx).SetBody(update).SetResult(&out).Patch(reservationPath(phone, date))
	if err := check(resp, err, "modify reservation"); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *ReservationClient) Cancel(ctx context.Context, phone, date string) error {
	resp, err := c.http.R().SetContext(ctx).Delete(reservationPath(phone, date))
	return check(resp, err, "cancel reservation")
}

func (c *ReservationClient) FindTable(ctx context.Context, partySize int, zone model.Zone, date, at string) (*model.Allocation, error) {
	var out envelope[*model.Allocation]
	resp, err := c.http.R().SetContext(ctx).
		SetQueryParams(map[string]string{
			"party_size": strconv.Itoa(partySize),
			"zone":       zone.String(),
			"date":       date,
			"time":       at,
		}).
		SetResult(&out).
		Get("/api/v1/allocations")
	if err := check(resp, err, "find table"); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *ReservationClient) TableAvailability(ctx context.Context, tableID int, date, at string, partySize int) (*model.TableAvailability, error) {
	var out envelope[*model.TableAvailability]
	resp, err := c.http.R().SetContext(ctx).
		SetQueryParams(map[string]string{
			"date":       date,
			"time":       at,
			"party_size": strconv.Itoa(partySize),
		}).
		SetResult(&out).
		Get(fmt.Sprintf("/api/v1/tables/%d/availability", tableID))
	if err := check(resp, err, "table availability"); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *ReservationClient) ListTables(ctx context.Context) ([]*model.Table, error) {
	var out envelope[[]*model.Table]
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).Get("/api/v1/tables")
	if err := check(resp, err, "list tables"); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *ReservationClient) OpeningHours(ctx context.Context) (*model.OpeningHours, error) {
	var out envelope[*model.OpeningHours]
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).Get("/api/v1/info/opening-hours")
	if err := check(resp, err, "opening hours"); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func reservationPath(phone, date string) string {
	return "/api/v1/reservations/" + url.PathEscape(phone) + "/" + url.PathEscape(date)
}

func check(resp *resty.Response, err error, operation string) error {
	if err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}
	if !resp.IsError() {
		return nil
	}

	body, _ := resp.Error().(*errorBody)
	if body == nil || body.Code == "" {
		return apperrors.New(apperrors.CodeInternal,
			fmt.Sprintf("%s failed with status %d", operation, resp.StatusCode()), resp.StatusCode())
	}
	appErr := apperrors.New(body.Code, body.Error, resp.StatusCode())
	if len(body.Details) > 0 {
		appErr = appErr.WithDetails(body.Details)
	}
	return appErr
}
