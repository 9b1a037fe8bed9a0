package validation

import (
	"errors"
	"testing"

	"clinicsched/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	TenantID string                       `json:"tenantId" validate:"required,scope_id"`
	Start    string                       `json:"start" validate:"required,clock"`
	Days     map[string]map[string]string `json:"days" validate:"omitempty,weekday_hours"`
}

func TestStruct(t *testing.T) {
	v := New(logger.Discard())

	tests := []struct {
		name      string
		in        sample
		wantField string
	}{
		{name: "valid", in: sample{TenantID: "clinic-1", Start: "09:00", Days: map[string]map[string]string{"Monday": {}}}},
		{name: "missing tenant", in: sample{Start: "09:00"}, wantField: "tenantId"},
		{name: "bad tenant", in: sample{TenantID: "has space", Start: "09:00"}, wantField: "tenantId"},
		{name: "bad clock", in: sample{TenantID: "t1", Start: "9am"}, wantField: "start"},
		{name: "unknown weekday", in: sample{TenantID: "t1", Start: "09:00", Days: map[string]map[string]string{"funday": {}}}, wantField: "days"},
		{name: "duplicate weekday", in: sample{TenantID: "t1", Start: "09:00", Days: map[string]map[string]string{"monday": {}, "MONDAY": {}}}, wantField: "days"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(v, tt.in)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var verrs ValidationErrors
			require.True(t, errors.As(err, &verrs))
			require.NotEmpty(t, verrs)
			assert.Equal(t, tt.wantField, verrs[0].Field)
			assert.Contains(t, verrs.Fields(), tt.wantField)
		})
	}
}

func TestValidationErrors_Error(t *testing.T) {
	assert.Equal(t, "", ValidationErrors{}.Error())
	errs := ValidationErrors{{Field: "a", Message: "bad"}, {Field: "b", Message: "worse"}}
	assert.Equal(t, "validation failed: 2 error(s): [a: bad; b: worse]", errs.Error())
}
