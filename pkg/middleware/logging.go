package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"restobook/pkg/logger"

	"github.com/google/uuid"
)

type contextKey string

const (
	RequestIDKey    contextKey = "request_id"
	RequestIDHeader            = "X-Request-ID"
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// RequestLogging tags every request with an id (reusing an inbound
// X-Request-ID) and logs start and completion. Customer phones in
// reservation paths are masked.
func RequestLogging(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}

			r = r.WithContext(context.WithValue(r.Context(), RequestIDKey, requestID))
			w.Header().Set(RequestIDHeader, requestID)

			reqLog := log.With(
				"request_id", requestID,
				"method", r.Method,
				"path", logPath(r.URL.Path),
			)
			reqLog.Debug("HTTP request started", "remote_addr", r.RemoteAddr)

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			level := reqLog.Info
			switch {
			case wrapped.statusCode >= http.StatusInternalServerError:
				level = reqLog.Error
			case wrapped.statusCode >= http.StatusBadRequest:
				level = reqLog.Warn
			}
			level("HTTP request completed",
				"status", wrapped.statusCode,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

func logPath(path string) string {
	rest, ok := strings.CutPrefix(path, reservationsPath)
	if !ok {
		return path
	}
	phone, tail, found := strings.Cut(rest, "/")
	masked := reservationsPath + logger.MaskPhone(phone)
	if found {
		masked += "/" + tail
	}
	return masked
}
