// Package validation builds the shared go-playground validator with the
// scheduling tags and renders its errors as field messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"clinicsched/internal/scheduling/hours"
	"clinicsched/pkg/logger"

	"github.com/go-playground/validator/v10"
)

var scopeIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_\-:.]{0,63}$`)

var weekdayNames = map[string]bool{
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
}

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

// Fields returns the errors keyed by field, for API error details.
func (v ValidationErrors) Fields() map[string]any {
	details := make(map[string]any, len(v))
	for _, err := range v {
		details[err.Field] = err.Message
	}
	return details
}

// New returns a validator with the custom tags registered. It is built once
// per domain validator at startup.
func New(log *logger.Logger) *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	if err := v.RegisterValidation("scope_id", validateScopeID); err != nil {
		log.Fatal("Failed to register 'scope_id' validator", "error", err)
	}
	if err := v.RegisterValidation("clock", validateClock); err != nil {
		log.Fatal("Failed to register 'clock' validator", "error", err)
	}
	if err := v.RegisterValidation("weekday_hours", validateWeekdayHours); err != nil {
		log.Fatal("Failed to register 'weekday_hours' validator", "error", err)
	}

	return v
}

func validateScopeID(fl validator.FieldLevel) bool {
	return scopeIDRegex.MatchString(fl.Field().String())
}

func validateClock(fl validator.FieldLevel) bool {
	_, _, err := hours.ParseClock(fl.Field().String())
	return err == nil
}

func validateWeekdayHours(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.Map {
		return false
	}
	seen := map[string]bool{}
	for _, key := range field.MapKeys() {
		name := strings.ToLower(key.String())
		if !weekdayNames[name] || seen[name] {
			return false
		}
		seen[name] = true
	}
	return true
}

// Struct validates s and converts validator errors into ValidationErrors.
func Struct(v *validator.Validate, s any) error {
	if err := v.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return Translate(validationErrs)
		}
		return err
	}
	return nil
}

func Translate(errs validator.ValidationErrors) ValidationErrors {
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
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "gtfield":
			message = fmt.Sprintf("%s must be after %s", err.Field(), err.Param())
		case "uuid4":
			message = fmt.Sprintf("%s must be a UUID v4", err.Field())
		case "scope_id":
			message = fmt.Sprintf("%s must be 1-64 characters of letters, digits, '_', '-', ':' or '.'", err.Field())
		case "clock":
			message = fmt.Sprintf("%s must be a 24h time in HH:MM format", err.Field())
		case "weekday_hours":
			message = fmt.Sprintf("%s keys must be unique weekday names (monday..sunday)", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
