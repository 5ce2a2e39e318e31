package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeNotFound     = "NOT_FOUND"
	CodeValidation   = "VALIDATION_ERROR"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL_ERROR"
	CodeTimeout      = "TIMEOUT"
	CodeUnavailable  = "SERVICE_UNAVAILABLE"
	CodeInvalidInput = "INVALID_INPUT"

	CodeInvalidDateFormat    = "INVALID_DATE_FORMAT"
	CodeRestaurantClosed     = "RESTAURANT_CLOSED"
	CodeDuplicateBooking     = "DUPLICATE_BOOKING"
	CodeInsufficientCapacity = "INSUFFICIENT_CAPACITY"
	CodeTableUnavailable     = "TABLE_UNAVAILABLE"
	CodeNoCapacity           = "NO_CAPACITY"
)

type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) StatusCode() int {
	return e.HTTPStatus
}

func (e *AppError) ToJSON() []byte {
	data, _ := json.Marshal(ErrorResponse{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
	return data
}

type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

func Wrap(err error, code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

func NotFoundWithID(resource, id string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

func Validation(message string, details map[string]any) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    details,
	}
}

func InvalidInput(message string) *AppError {
	return &AppError{
		Code:       CodeInvalidInput,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func Timeout(message string) *AppError {
	return &AppError{
		Code:       CodeTimeout,
		Message:    message,
		HTTPStatus: http.StatusGatewayTimeout,
	}
}

func Unavailable(service string) *AppError {
	return &AppError{
		Code:       CodeUnavailable,
		Message:    fmt.Sprintf("%s is temporarily unavailable", service),
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

func InvalidDateFormat(raw string) *AppError {
	return &AppError{
		Code:       CodeInvalidDateFormat,
		Message:    fmt.Sprintf("unrecognized date format: %q", raw),
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"date": raw},
	}
}

// Closed carries the single reason the restaurant cannot take the booking.
func Closed(reason string) *AppError {
	return &AppError{
		Code:       CodeRestaurantClosed,
		Message:    reason,
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"reason": reason},
	}
}

func DuplicateBooking(phone, date string) *AppError {
	return &AppError{
		Code:       CodeDuplicateBooking,
		Message:    fmt.Sprintf("a reservation already exists for %s on %s", phone, date),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"phone": phone, "date": date},
	}
}

func InsufficientCapacity(message string, partySize, capacity int) *AppError {
	return &AppError{
		Code:       CodeInsufficientCapacity,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"party_size": partySize, "capacity": capacity},
	}
}

func TableUnavailable(tableID int, date, time string) *AppError {
	return &AppError{
		Code:       CodeTableUnavailable,
		Message:    fmt.Sprintf("table %d is not available at %s on %s", tableID, time, date),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"table_id": tableID, "date": date, "time": time},
	}
}

func NoCapacity(partySize int, date, time string) *AppError {
	return &AppError{
		Code:       CodeNoCapacity,
		Message:    fmt.Sprintf("no table or table combination can seat %d guests at %s on %s", partySize, time, date),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"party_size": partySize, "date": date, "time": time},
	}
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}

// HasCode reports whether err is an AppError carrying code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}
