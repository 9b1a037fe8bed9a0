package facade

import (
	"context"
	"errors"

	"clinicsched/internal/scheduling/availability"
	"clinicsched/internal/scheduling/conflict"
	apperrors "clinicsched/pkg/errors"
)

// ToAppError maps scheduling core errors onto API errors. AppErrors pass through.
func ToAppError(err error) error {
	switch {
	case err == nil:
		return nil
	case apperrors.IsAppError(err):
		return err
	case errors.Is(err, conflict.ErrInvalidInterval):
		return apperrors.InvalidInput("startTime must be before endTime")
	case errors.Is(err, conflict.ErrInvalidScope):
		return apperrors.InvalidInput("tenantId and userId are required")
	case errors.Is(err, availability.ErrInvalidDuration):
		return apperrors.InvalidInput("duration must be a positive number of minutes")
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Timeout("Scheduling lookup timed out")
	default:
		return apperrors.Internal("Failed to evaluate schedule", err)
	}
}
