package service

import (
	"errors"
	"fmt"

	reservationserrors "restobook/internal/reservations/errors"
	"restobook/internal/reservations/rules"
	apperrors "restobook/pkg/errors"
	"restobook/pkg/sanitizer"
)

func normalizeDate(raw string) (string, error) {
	date, err := rules.NormalizeDate(raw)
	if err != nil {
		return "", apperrors.InvalidDateFormat(raw)
	}
	return date, nil
}

func normalizeTime(raw string) (string, error) {
	t, err := rules.NormalizeTime(raw)
	if err != nil {
		return "", apperrors.Validation("Invalid time", map[string]any{"time": raw, "error": "time must be HH:MM"})
	}
	return t, nil
}

func normalizePhone(raw, region string) (string, error) {
	phone := sanitizer.NormalizePhone(raw, region)
	if phone == "" {
		return "", apperrors.InvalidInput(fmt.Sprintf("Invalid phone number: %q", raw))
	}
	return phone, nil
}

func reservationKey(phone, date string) string {
	return phone + "/" + date
}

func mapRepositoryError(err error, action, phone, date string) error {
	switch {
	case apperrors.IsAppError(err):
		return err
	case errors.Is(err, reservationserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Reservation", reservationKey(phone, date))
	case errors.Is(err, reservationserrors.ErrDuplicate):
		return apperrors.DuplicateBooking(phone, date)
	default:
		return apperrors.Internal("Failed to "+action, err)
	}
}
