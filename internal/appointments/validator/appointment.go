package validator

import (
	"clinicsched/internal/validation"
	"clinicsched/pkg/logger"
	"clinicsched/pkg/model"

	"github.com/go-playground/validator/v10"
)

type AppointmentValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewAppointmentValidator(log *logger.Logger) *AppointmentValidator {
	v := validation.New(log)
	log.Info("Appointment validator initialized successfully")
	return &AppointmentValidator{
		validate: v,
		logger:   log,
	}
}

func (v *AppointmentValidator) Validate(appt *model.Appointment) error {
	return validation.Struct(v.validate, appt)
}

func (v *AppointmentValidator) ValidateRule(rule *model.RecurrenceRule) error {
	if rule == nil {
		return validation.ValidationErrors{
			validation.ValidationError{Field: "recurrence", Message: "recurrence is required"},
		}
	}
	return validation.Struct(v.validate, rule)
}

func (v *AppointmentValidator) ValidateUpdate(update *model.AppointmentUpdate) error {
	if err := validation.Struct(v.validate, update); err != nil {
		return err
	}
	if update.StartTime != nil && update.EndTime != nil && !update.EndTime.After(*update.StartTime) {
		return validation.ValidationErrors{
			validation.ValidationError{
				Field:   "endTime",
				Message: "endTime must be after startTime",
			},
		}
	}
	return nil
}

func (v *AppointmentValidator) ValidateStatus(update *model.StatusUpdate) error {
	return validation.Struct(v.validate, update)
}
