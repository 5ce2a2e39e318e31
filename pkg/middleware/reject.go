package middleware

import (
	"net/http"

	httputil "restobook/pkg/http"
)

func requestIDFrom(r *http.Request) string {
	requestID, _ := r.Context().Value(RequestIDKey).(string)
	return requestID
}

// reject writes a terminal JSON error in the same shape the handlers use.
func reject(w http.ResponseWriter, status int, code, message string) {
	_ = httputil.WriteJSON(w, status, httputil.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
