package validator

import (
	"clinicsched/internal/validation"
	"clinicsched/pkg/logger"
	"clinicsched/pkg/model"

	"github.com/go-playground/validator/v10"
)

type BlockedTimeValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBlockedTimeValidator(log *logger.Logger) *BlockedTimeValidator {
	v := validation.New(log)
	log.Info("Blocked time validator initialized successfully")
	return &BlockedTimeValidator{
		validate: v,
		logger:   log,
	}
}

func (v *BlockedTimeValidator) Validate(bt *model.BlockedTime) error {
	return validation.Struct(v.validate, bt)
}
