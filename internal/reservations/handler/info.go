package handler

import (
	"net/http"

	"restobook/internal/reservations/service"
	httputil "restobook/pkg/http"
	"restobook/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type InfoHandler struct {
	service service.InfoService
	log     *logger.Logger
}

func NewInfoHandler(service service.InfoService, log *logger.Logger) *InfoHandler {
	return &InfoHandler{
		service: service,
		log:     log,
	}
}

func (h *InfoHandler) OpeningHours(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteSuccess(w, h.service.OpeningHours(r.Context())); err != nil {
		h.log.Error("failed to write success response", "handler", "OpeningHours", "operation", "WriteSuccess", "error", err)
	}
}

func (h *InfoHandler) CheckOpen(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	date, err := requiredParam(query, "date")
	if err != nil {
		h.writeError(w, err)
		return
	}

	startTime, err := requiredParam(query, "time")
	if err != nil {
		h.writeError(w, err)
		return
	}

	status, err := h.service.CheckOpen(r.Context(), date, startTime)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := httputil.WriteSuccess(w, status); err != nil {
		h.log.Error("failed to write success response", "handler", "CheckOpen", "operation", "WriteSuccess", "error", err)
	}
}

func (h *InfoHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/info/opening-hours", h.OpeningHours)
	router.GET("/api/v1/info/open", h.CheckOpen)
}

func (h *InfoHandler) writeError(w http.ResponseWriter, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", "CheckOpen", "operation", "WriteError", "error", writeErr)
	}
}
