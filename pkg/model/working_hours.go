package model

import "time"

// WorkingHours maps a weekday name ("monday".."sunday") to its open hours.
// A weekday without an entry is closed.
type WorkingHours map[string]DayHours

type DayHours struct {
	Start  string  `json:"start" bson:"start" yaml:"start" validate:"required,clock"`
	End    string  `json:"end" bson:"end" yaml:"end" validate:"required,clock"`
	Breaks []Break `json:"breaks,omitempty" bson:"breaks,omitempty" yaml:"breaks,omitempty" validate:"omitempty,max=12,dive"`
}

type Break struct {
	Start string `json:"start" bson:"start" yaml:"start" validate:"required,clock"`
	End   string `json:"end" bson:"end" yaml:"end" validate:"required,clock"`
}

// WorkingHoursConfig is the stored document. An empty ProviderID marks the tenant default.
type WorkingHoursConfig struct {
	ID         string       `json:"id,omitempty" bson:"_id,omitempty"`
	TenantID   string       `json:"tenantId" bson:"tenant_id" validate:"required,scope_id"`
	ProviderID string       `json:"providerId,omitempty" bson:"provider_id" validate:"omitempty,scope_id"`
	Hours      WorkingHours `json:"hours" bson:"hours" validate:"required,weekday_hours,dive"`
	UpdatedAt  time.Time    `json:"updatedAt" bson:"updated_at"`
}

const (
	HoursSourceProvider = "provider"
	HoursSourceTenant   = "tenant"
	HoursSourceFile     = "default"
	HoursSourceNone     = "none"
)

// EffectiveHours is the resolved configuration and where it came from.
type EffectiveHours struct {
	TenantID   string       `json:"tenantId"`
	ProviderID string       `json:"providerId,omitempty"`
	Source     string       `json:"source"`
	Hours      WorkingHours `json:"hours"`
}
