package validator

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"restobook/internal/reservations/rules"
	"restobook/pkg/logger"
	"restobook/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type ReservationValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewReservationValidator(log *logger.Logger) *ReservationValidator {
	v := validator.New()

	if err := v.RegisterValidation("time_of_day", validateTimeOfDay); err != nil {
		log.Fatal("Failed to register 'time_of_day' validator",
			"error", err,
		)
	}

	log.Debug("Reservation validator initialized successfully")

	return &ReservationValidator{
		validate: v,
		logger:   log,
	}
}

func validateTimeOfDay(fl validator.FieldLevel) bool {
	_, err := rules.ParseTime(fl.Field().String())
	return err == nil
}

func (v *ReservationValidator) Validate(req *model.NewReservation) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if len(req.MergedTables) > 0 && req.TableID == 0 {
		return ValidationErrors{
			ValidationError{
				Field:   "TableID",
				Message: "table_id is required when merged_tables is set",
			},
		}
	}

	ids := append([]int{req.TableID}, req.MergedTables...)
	slices.Sort(ids)
	if len(slices.Compact(ids)) != 1+len(req.MergedTables) {
		return ValidationErrors{
			ValidationError{
				Field:   "MergedTables",
				Message: "merged_tables must not repeat a table",
			},
		}
	}

	if req.TableID == 0 && req.Zone == "" {
		return ValidationErrors{
			ValidationError{
				Field:   "Zone",
				Message: "zone is required when no table is given",
			},
		}
	}

	return nil
}

func (v *ReservationValidator) ValidateUpdate(update *model.ReservationUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if update.IsEmpty() {
		return ValidationErrors{
			ValidationError{
				Field:   "Update",
				Message: "at least one of date, time or party_size must be set",
			},
		}
	}

	return nil
}

func (v *ReservationValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "e164":
			message = fmt.Sprintf("%s must be a valid phone number (e.g., +34600111222)", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "time_of_day":
			message = fmt.Sprintf("%s must be a time of day in HH:MM format", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
