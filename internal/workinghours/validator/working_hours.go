package validator

import (
	"clinicsched/internal/scheduling/hours"
	"clinicsched/internal/validation"
	"clinicsched/pkg/logger"
	"clinicsched/pkg/model"

	"github.com/go-playground/validator/v10"
)

type WorkingHoursValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewWorkingHoursValidator(log *logger.Logger) *WorkingHoursValidator {
	v := validation.New(log)
	log.Info("Working hours validator initialized successfully")
	return &WorkingHoursValidator{
		validate: v,
		logger:   log,
	}
}

// Validate is strict: unlike resolution, which degrades a bad day to closed,
// writes with inverted ranges or malformed clocks are rejected.
func (v *WorkingHoursValidator) Validate(wh *model.WorkingHoursConfig) error {
	if err := validation.Struct(v.validate, wh); err != nil {
		return err
	}
	if err := hours.Validate(wh.Hours); err != nil {
		return validation.ValidationErrors{
			validation.ValidationError{
				Field:   "hours",
				Message: err.Error(),
			},
		}
	}
	return nil
}
