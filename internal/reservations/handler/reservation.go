package handler

import (
	"encoding/json"
	"net/http"

	"restobook/internal/reservations/service"
	httputil "restobook/pkg/http"
	"restobook/pkg/logger"
	"restobook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ReservationHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewReservationHandler(service service.BookingService, log *logger.Logger) *ReservationHandler {
	return &ReservationHandler{
		service: service,
		log:     log,
	}
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.NewReservation
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadBody(w, "Create")
		return
	}

	reservation, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, reservation); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *ReservationHandler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	phone, date := reservationKey(r, ps)
	reservation, err := h.service.Get(r.Context(), phone, date)
	if err != nil {
		h.writeError(w, "Get", err)
		return
	}

	if err := httputil.WriteSuccess(w, reservation); err != nil {
		h.log.Error("failed to write success response", "handler", "Get", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) Modify(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.ReservationUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.writeBadBody(w, "Modify")
		return
	}

	phone, date := reservationKey(r, ps)
	reservation, err := h.service.Modify(r.Context(), phone, date, &update)
	if err != nil {
		h.writeError(w, "Modify", err)
		return
	}

	if err := httputil.WriteSuccess(w, reservation); err != nil {
		h.log.Error("failed to write success response", "handler", "Modify", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	phone, date := reservationKey(r, ps)
	if err := h.service.Cancel(r.Context(), phone, date); err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *ReservationHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/reservations", h.Create)
	router.GET("/api/v1/reservations/:phone/:date", h.Get)
	router.PATCH("/api/v1/reservations/:phone/:date", h.Modify)
	router.DELETE("/api/v1/reservations/:phone/:date", h.Cancel)

	// Day-first dates such as 07/05/2025 cannot travel in a path segment.
	router.GET("/api/v1/reservations/:phone", h.Get)
	router.PATCH("/api/v1/reservations/:phone", h.Modify)
	router.DELETE("/api/v1/reservations/:phone", h.Cancel)
}

// reservationKey reads the (phone, date) key from /:phone/:date or from
// /:phone?date=.
func reservationKey(r *http.Request, ps httprouter.Params) (string, string) {
	date := ps.ByName("date")
	if date == "" {
		date = r.URL.Query().Get("date")
	}
	return ps.ByName("phone"), date
}

func (h *ReservationHandler) writeBadBody(w http.ResponseWriter, handler string) {
	if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
		Error: "Invalid request body",
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", handler, "operation", "WriteJSON", "error", err)
	}
}

func (h *ReservationHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}
