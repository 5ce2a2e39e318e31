package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "restobook/pkg/errors"
	"restobook/pkg/logger"
	"restobook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type mockBookingService struct {
	createFunc func(ctx context.Context, req *model.NewReservation) (*model.Reservation, error)
	getFunc    func(ctx context.Context, phone, date string) (*model.Reservation, error)
	cancelFunc func(ctx context.Context, phone, date string) error
	modifyFunc func(ctx context.Context, phone, date string, update *model.ReservationUpdate) (*model.Reservation, error)
}

func (m *mockBookingService) Create(ctx context.Context, req *model.NewReservation) (*model.Reservation, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, req)
	}
	return nil, errors.New("unexpected Create call")
}

func (m *mockBookingService) Get(ctx context.Context, phone, date string) (*model.Reservation, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, phone, date)
	}
	return nil, errors.New("unexpected Get call")
}

func (m *mockBookingService) Cancel(ctx context.Context, phone, date string) error {
	if m.cancelFunc != nil {
		return m.cancelFunc(ctx, phone, date)
	}
	return errors.New("unexpected Cancel call")
}

func (m *mockBookingService) Modify(ctx context.Context, phone, date string, update *model.ReservationUpdate) (*model.Reservation, error) {
	if m.modifyFunc != nil {
		return m.modifyFunc(ctx, phone, date, update)
	}
	return nil, errors.New("unexpected Modify call")
}

type mockTableService struct {
	listFunc      func(ctx context.Context) ([]*model.Table, error)
	findFunc      func(ctx context.Context, partySize int, zone model.Zone, date, startTime string) (*model.Allocation, error)
	availableFunc func(ctx context.Context, partySize int, zone model.Zone, date, startTime string) ([]*model.Table, error)
	isFreeFunc    func(ctx context.Context, tableID int, date, startTime string, partySize int) (*model.TableAvailability, error)
}

func (m *mockTableService) ListTables(ctx context.Context) ([]*model.Table, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, errors.New("unexpected ListTables call")
}

func (m *mockTableService) FindTable(ctx context.Context, partySize int, zone model.Zone, date, startTime string) (*model.Allocation, error) {
	if m.findFunc != nil {
		return m.findFunc(ctx, partySize, zone, date, startTime)
	}
	return nil, errors.New("unexpected FindTable call")
}

func (m *mockTableService) AvailableTables(ctx context.Context, partySize int, zone model.Zone, date, startTime string) ([]*model.Table, error) {
	if m.availableFunc != nil {
		return m.availableFunc(ctx, partySize, zone, date, startTime)
	}
	return nil, errors.New("unexpected AvailableTables call")
}

func (m *mockTableService) IsTableAvailable(ctx context.Context, tableID int, date, startTime string, partySize int) (*model.TableAvailability, error) {
	if m.isFreeFunc != nil {
		return m.isFreeFunc(ctx, tableID, date, startTime, partySize)
	}
	return nil, errors.New("unexpected IsTableAvailable call")
}

type mockInfoService struct {
	checkFunc func(ctx context.Context, date, startTime string) (*model.OpenStatus, error)
}

func (m *mockInfoService) OpeningHours(ctx context.Context) *model.OpeningHours {
	return &model.OpeningHours{OpenTime: "09:00", CloseTime: "00:00", ClosedDay: "monday"}
}

func (m *mockInfoService) CheckOpen(ctx context.Context, date, startTime string) (*model.OpenStatus, error) {
	if m.checkFunc != nil {
		return m.checkFunc(ctx, date, startTime)
	}
	return nil, errors.New("unexpected CheckOpen call")
}

func newTestRouter(bookings *mockBookingService, tables *mockTableService, info *mockInfoService) *httprouter.Router {
	router := httprouter.New()
	NewRouter(bookings, tables, info, logger.NewNop()).RegisterRoutes(router)
	return router
}

func serve(router http.Handler, method, target string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v (%s)", err, rec.Body.String())
	}
	return body
}

func TestReservationHandler_Create(t *testing.T) {
	var received *model.NewReservation
	bookings := &mockBookingService{
		createFunc: func(ctx context.Context, req *model.NewReservation) (*model.Reservation, error) {
			received = req
			return &model.Reservation{ID: "r1", TableID: 4, PartySize: req.PartySize, Phone: req.Phone, Date: req.Date, Time: req.Time}, nil
		},
	}
	router := newTestRouter(bookings, &mockTableService{}, &mockInfoService{})

	body := `{"table_id":4,"name":"Ana","party_size":5,"date":"2025-05-07","time":"20:00","phone":"+34600111222"}`
	rec := serve(router, http.MethodPost, "/api/v1/reservations", strings.NewReader(body))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (%s)", rec.Code, rec.Body.String())
	}
	if received == nil || received.TableID != 4 || received.PartySize != 5 || received.Phone != "+34600111222" {
		t.Errorf("service received %+v", received)
	}

	var resp struct {
		Data model.Reservation `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if resp.Data.ID != "r1" || resp.Data.TableID != 4 {
		t.Errorf("unexpected reservation in body: %+v", resp.Data)
	}
}

func TestReservationHandler_CreateErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"malformed body", `{"party_size":`, nil, http.StatusBadRequest, ""},
		{"closed", `{}`, apperrors.Closed("weekly rest day"), http.StatusUnprocessableEntity, apperrors.CodeRestaurantClosed},
		{"duplicate", `{}`, apperrors.DuplicateBooking("+34600111222", "2025-05-07"), http.StatusConflict, apperrors.CodeDuplicateBooking},
		{"table taken", `{}`, apperrors.TableUnavailable(2, "2025-05-07", "20:00"), http.StatusConflict, apperrors.CodeTableUnavailable},
		{"bad date", `{}`, apperrors.InvalidDateFormat("7/5/2025"), http.StatusBadRequest, apperrors.CodeInvalidDateFormat},
		{"storage failure", `{}`, errors.New("socket closed"), http.StatusInternalServerError, apperrors.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			bookings := &mockBookingService{
				createFunc: func(ctx context.Context, req *model.NewReservation) (*model.Reservation, error) {
					called = true
					return nil, tt.err
				},
			}
			router := newTestRouter(bookings, &mockTableService{}, &mockInfoService{})

			rec := serve(router, http.MethodPost, "/api/v1/reservations", strings.NewReader(tt.body))
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.err == nil && called {
				t.Error("service should not be called for a malformed body")
			}
			if tt.wantCode != "" {
				if got := decodeError(t, rec)["code"]; got != tt.wantCode {
					t.Errorf("code = %v, want %s", got, tt.wantCode)
				}
			}
		})
	}
}

func TestReservationHandler_PathParams(t *testing.T) {
	var gotPhone, gotDate string
	bookings := &mockBookingService{
		getFunc: func(ctx context.Context, phone, date string) (*model.Reservation, error) {
			gotPhone, gotDate = phone, date
			return &model.Reservation{Phone: phone, Date: date}, nil
		},
		cancelFunc: func(ctx context.Context, phone, date string) error {
			gotPhone, gotDate = phone, date
			return nil
		},
	}
	router := newTestRouter(bookings, &mockTableService{}, &mockInfoService{})

	rec := serve(router, http.MethodGet, "/api/v1/reservations/+34600111222/07-05-2025", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET status = %d", rec.Code)
	}
	if gotPhone != "+34600111222" || gotDate != "07-05-2025" {
		t.Errorf("GET passed phone=%q date=%q", gotPhone, gotDate)
	}

	rec = serve(router, http.MethodDelete, "/api/v1/reservations/600111222/2025-05-07", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("DELETE status = %d", rec.Code)
	}
	if gotPhone != "600111222" || gotDate != "2025-05-07" {
		t.Errorf("DELETE passed phone=%q date=%q", gotPhone, gotDate)
	}
}

func TestReservationHandler_DateInQuery(t *testing.T) {
	var gotPhone, gotDate string
	bookings := &mockBookingService{
		getFunc: func(ctx context.Context, phone, date string) (*model.Reservation, error) {
			gotPhone, gotDate = phone, date
			return &model.Reservation{Phone: phone, Date: "2025-05-07"}, nil
		},
		modifyFunc: func(ctx context.Context, phone, date string, update *model.ReservationUpdate) (*model.Reservation, error) {
			gotPhone, gotDate = phone, date
			return &model.Reservation{Phone: phone, Date: "2025-05-07"}, nil
		},
		cancelFunc: func(ctx context.Context, phone, date string) error {
			gotPhone, gotDate = phone, date
			return nil
		},
	}
	router := newTestRouter(bookings, &mockTableService{}, &mockInfoService{})

	tests := []struct {
		method     string
		target     string
		body       io.Reader
		wantStatus int
	}{
		{http.MethodGet, "/api/v1/reservations/+34600111222?date=07/05/2025", nil, http.StatusOK},
		{http.MethodPatch, "/api/v1/reservations/+34600111222?date=07%2F05%2F2025", strings.NewReader(`{"party_size":3}`), http.StatusOK},
		{http.MethodDelete, "/api/v1/reservations/+34600111222?date=07/05/2025", nil, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			gotPhone, gotDate = "", ""
			rec := serve(router, tt.method, tt.target, tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if gotPhone != "+34600111222" || gotDate != "07/05/2025" {
				t.Errorf("service got phone=%q date=%q", gotPhone, gotDate)
			}
		})
	}
}

func TestReservationHandler_Cancel_NotFound(t *testing.T) {
	bookings := &mockBookingService{
		cancelFunc: func(ctx context.Context, phone, date string) error {
			return apperrors.NotFoundWithID("Reservation", phone+"/"+date)
		},
	}
	router := newTestRouter(bookings, &mockTableService{}, &mockInfoService{})

	rec := serve(router, http.MethodDelete, "/api/v1/reservations/+34600111222/2025-05-07", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestReservationHandler_Modify(t *testing.T) {
	var received *model.ReservationUpdate
	bookings := &mockBookingService{
		modifyFunc: func(ctx context.Context, phone, date string, update *model.ReservationUpdate) (*model.Reservation, error) {
			received = update
			if *update.PartySize > 10 {
				return nil, apperrors.NoCapacity(*update.PartySize, date, "20:00")
			}
			return &model.Reservation{Phone: phone, Date: date, PartySize: *update.PartySize}, nil
		},
	}
	router := newTestRouter(bookings, &mockTableService{}, &mockInfoService{})

	rec := serve(router, http.MethodPatch, "/api/v1/reservations/+34600111222/2025-05-07", strings.NewReader(`{"party_size":6}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}
	if received == nil || received.PartySize == nil || *received.PartySize != 6 || received.Date != nil || received.Time != nil {
		t.Errorf("service received %+v", received)
	}

	rec = serve(router, http.MethodPatch, "/api/v1/reservations/+34600111222/2025-05-07", strings.NewReader(`{"party_size":12}`))
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if got := decodeError(t, rec)["code"]; got != apperrors.CodeNoCapacity {
		t.Errorf("code = %v, want %s", got, apperrors.CodeNoCapacity)
	}
}

func TestTableHandler_Allocate(t *testing.T) {
	var gotParty int
	var gotZone model.Zone
	tables := &mockTableService{
		findFunc: func(ctx context.Context, partySize int, zone model.Zone, date, startTime string) (*model.Allocation, error) {
			gotParty, gotZone = partySize, zone
			return &model.Allocation{Kind: "merged", Tables: []*model.Table{{ID: 3, Capacity: 4}, {ID: 2, Capacity: 2}}, Capacity: 6}, nil
		},
	}
	router := newTestRouter(&mockBookingService{}, tables, &mockInfoService{})

	rec := serve(router, http.MethodGet, "/api/v1/allocations?party_size=5&zone=terrace&date=2025-05-07&time=20:00", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}
	if gotParty != 5 || gotZone != model.ZoneTerrace {
		t.Errorf("service received party=%d zone=%s", gotParty, gotZone)
	}

	var resp struct {
		Data model.Allocation `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if resp.Data.Kind != "merged" || len(resp.Data.Tables) != 2 {
		t.Errorf("unexpected allocation: %+v", resp.Data)
	}
}

func TestTableHandler_QueryValidation(t *testing.T) {
	router := newTestRouter(&mockBookingService{}, &mockTableService{}, &mockInfoService{})

	tests := []struct {
		name   string
		target string
	}{
		{"missing party size", "/api/v1/allocations?zone=interior&date=2025-05-07&time=20:00"},
		{"non numeric party size", "/api/v1/allocations?party_size=four&zone=interior&date=2025-05-07&time=20:00"},
		{"missing zone", "/api/v1/allocations?party_size=2&date=2025-05-07&time=20:00"},
		{"missing time", "/api/v1/allocations?party_size=2&zone=interior&date=2025-05-07"},
		{"bad table id", "/api/v1/tables/abc/availability?date=2025-05-07&time=20:00&party_size=2"},
		{"zero table id", "/api/v1/tables/0/availability?date=2025-05-07&time=20:00&party_size=2"},
		{"availability without date", "/api/v1/tables/2/availability?time=20:00&party_size=2"},
		{"search list without zone", "/api/v1/tables?date=2025-05-07&time=20:00&party_size=2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(router, http.MethodGet, tt.target, nil)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (%s)", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestTableHandler_List(t *testing.T) {
	listed, searched := false, false
	tables := &mockTableService{
		listFunc: func(ctx context.Context) ([]*model.Table, error) {
			listed = true
			return model.DefaultTables, nil
		},
		availableFunc: func(ctx context.Context, partySize int, zone model.Zone, date, startTime string) ([]*model.Table, error) {
			searched = true
			return []*model.Table{{ID: 1, Capacity: 2, Zone: zone}}, nil
		},
	}
	router := newTestRouter(&mockBookingService{}, tables, &mockInfoService{})

	if rec := serve(router, http.MethodGet, "/api/v1/tables", nil); rec.Code != http.StatusOK || !listed || searched {
		t.Errorf("plain list: status=%d listed=%v searched=%v", rec.Code, listed, searched)
	}

	listed = false
	if rec := serve(router, http.MethodGet, "/api/v1/tables?party_size=2&zone=interior&date=2025-05-07&time=20:00", nil); rec.Code != http.StatusOK || listed || !searched {
		t.Errorf("search list: status=%d listed=%v searched=%v", rec.Code, listed, searched)
	}
}

func TestTableHandler_Availability(t *testing.T) {
	tables := &mockTableService{
		isFreeFunc: func(ctx context.Context, tableID int, date, startTime string, partySize int) (*model.TableAvailability, error) {
			if tableID == 99 {
				return nil, apperrors.NotFoundWithID("Table", "99")
			}
			return &model.TableAvailability{TableID: tableID, Date: date, Time: startTime, DurationMin: 90, Available: true}, nil
		},
	}
	router := newTestRouter(&mockBookingService{}, tables, &mockInfoService{})

	rec := serve(router, http.MethodGet, "/api/v1/tables/2/availability?date=2025-05-07&time=21:00&party_size=2", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data model.TableAvailability `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if resp.Data.TableID != 2 || !resp.Data.Available {
		t.Errorf("unexpected availability: %+v", resp.Data)
	}

	rec = serve(router, http.MethodGet, "/api/v1/tables/99/availability?date=2025-05-07&time=21:00&party_size=2", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestInfoHandler(t *testing.T) {
	info := &mockInfoService{
		checkFunc: func(ctx context.Context, date, startTime string) (*model.OpenStatus, error) {
			return &model.OpenStatus{Date: date, Time: startTime, Open: false, Reason: "weekly rest day"}, nil
		},
	}
	router := newTestRouter(&mockBookingService{}, &mockTableService{}, info)

	rec := serve(router, http.MethodGet, "/api/v1/info/opening-hours", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"close_time":"00:00"`) {
		t.Errorf("opening hours: %d %s", rec.Code, rec.Body.String())
	}

	rec = serve(router, http.MethodGet, "/api/v1/info/open?date=2025-05-05&time=20:00", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"open":false`) {
		t.Errorf("check open: %d %s", rec.Code, rec.Body.String())
	}

	rec = serve(router, http.MethodGet, "/api/v1/info/open?time=20:00", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing date: status = %d, want 400", rec.Code)
	}
}

func TestHealthHandler(t *testing.T) {
	up := ReadinessCheck{Name: "sqlite", Probe: func(context.Context) error { return nil }}
	down := ReadinessCheck{Name: "mongo", Probe: func(context.Context) error { return errors.New("no route") }}

	tests := []struct {
		name       string
		checks     []ReadinessCheck
		path       string
		wantStatus int
		wantBody   []string
	}{
		{"liveness", nil, "/health", http.StatusOK, []string{`"status":"ok"`}},
		{"ready in memory", nil, "/ready", http.StatusOK, []string{`"storage":"memory"`}},
		{"ready with database", []ReadinessCheck{up}, "/ready", http.StatusOK, []string{`"sqlite":"ok"`}},
		{"one dependency down", []ReadinessCheck{up, down}, "/ready", http.StatusServiceUnavailable, []string{`"status":"unavailable"`, `"sqlite":"ok"`, `"mongo":"error"`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := httprouter.New()
			NewHealthHandler(logger.NewNop(), tt.checks...).RegisterRoutes(router)

			rec := serve(router, http.MethodGet, tt.path, nil)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			for _, want := range tt.wantBody {
				if !strings.Contains(rec.Body.String(), want) {
					t.Errorf("body %s does not contain %s", rec.Body.String(), want)
				}
			}
		})
	}
}
