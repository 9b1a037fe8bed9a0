package facade

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"clinicsched/internal/scheduling/availability"
	"clinicsched/internal/scheduling/conflict"
	apperrors "clinicsched/pkg/errors"

	"github.com/stretchr/testify/assert"
)

func TestToAppError(t *testing.T) {
	assert.Nil(t, ToAppError(nil))

	passthrough := apperrors.Conflict("taken")
	assert.Same(t, passthrough, ToAppError(passthrough))

	tests := []struct {
		err    error
		status int
	}{
		{err: conflict.ErrInvalidInterval, status: http.StatusBadRequest},
		{err: fmt.Errorf("check: %w", conflict.ErrInvalidScope), status: http.StatusBadRequest},
		{err: availability.ErrInvalidDuration, status: http.StatusBadRequest},
		{err: context.DeadlineExceeded, status: http.StatusGatewayTimeout},
		{err: errors.New("mongo down"), status: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		appErr := apperrors.AsAppError(ToAppError(tt.err))
		if assert.NotNil(t, appErr, tt.err.Error()) {
			assert.Equal(t, tt.status, appErr.StatusCode(), tt.err.Error())
		}
	}
}
