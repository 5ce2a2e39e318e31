package handler

import (
	"restobook/internal/reservations/service"
	"restobook/pkg/contracts"
	"restobook/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

// Router groups the public API handlers behind one RegisterRoutes call.
type Router struct {
	handlers []contracts.Handler
}

var _ contracts.Handler = (*Router)(nil)

func NewRouter(bookings service.BookingService, tables service.TableService, info service.InfoService, log *logger.Logger) *Router {
	return &Router{
		handlers: []contracts.Handler{
			NewReservationHandler(bookings, log),
			NewTableHandler(tables, log),
			NewInfoHandler(info, log),
		},
	}
}

func (rt *Router) RegisterRoutes(router *httprouter.Router) {
	for _, h := range rt.handlers {
		h.RegisterRoutes(router)
	}
}
