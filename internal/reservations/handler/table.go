package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"restobook/internal/reservations/service"
	apperrors "restobook/pkg/errors"
	httputil "restobook/pkg/http"
	"restobook/pkg/logger"
	"restobook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type TableHandler struct {
	service service.TableService
	log     *logger.Logger
}

func NewTableHandler(service service.TableService, log *logger.Logger) *TableHandler {
	return &TableHandler{
		service: service,
		log:     log,
	}
}

// List returns every table, or only the free ones when the search parameters
// are present.
func (h *TableHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	if query.Get("date") == "" {
		tables, err := h.service.ListTables(r.Context())
		if err != nil {
			h.writeError(w, "List", err)
			return
		}
		h.writeSuccess(w, "List", tables)
		return
	}

	partySize, zone, date, startTime, err := searchParams(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	tables, err := h.service.AvailableTables(r.Context(), partySize, zone, date, startTime)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}
	h.writeSuccess(w, "List", tables)
}

func (h *TableHandler) Allocate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	partySize, zone, date, startTime, err := searchParams(r)
	if err != nil {
		h.writeError(w, "Allocate", err)
		return
	}

	allocation, err := h.service.FindTable(r.Context(), partySize, zone, date, startTime)
	if err != nil {
		h.writeError(w, "Allocate", err)
		return
	}
	h.writeSuccess(w, "Allocate", allocation)
}

func (h *TableHandler) Availability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	rawID := ps.ByName("id")
	tableID, err := strconv.Atoi(rawID)
	if err != nil || tableID <= 0 {
		h.writeError(w, "Availability", apperrors.InvalidInput(fmt.Sprintf("invalid table id: %s", rawID)))
		return
	}

	query := r.URL.Query()
	date, err := requiredParam(query, "date")
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}
	startTime, err := requiredParam(query, "time")
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}
	partySize, err := intParam(query, "party_size")
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}

	availability, err := h.service.IsTableAvailable(r.Context(), tableID, date, startTime, partySize)
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}
	h.writeSuccess(w, "Availability", availability)
}

func (h *TableHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/tables", h.List)
	router.GET("/api/v1/tables/:id/availability", h.Availability)
	router.GET("/api/v1/allocations", h.Allocate)
}

func searchParams(r *http.Request) (int, model.Zone, string, string, error) {
	query := r.URL.Query()

	partySize, err := intParam(query, "party_size")
	if err != nil {
		return 0, "", "", "", err
	}
	zone, err := requiredParam(query, "zone")
	if err != nil {
		return 0, "", "", "", err
	}
	date, err := requiredParam(query, "date")
	if err != nil {
		return 0, "", "", "", err
	}
	startTime, err := requiredParam(query, "time")
	if err != nil {
		return 0, "", "", "", err
	}
	return partySize, model.Zone(zone), date, startTime, nil
}

func (h *TableHandler) writeSuccess(w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}

func (h *TableHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}
