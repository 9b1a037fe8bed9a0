package model

import "time"

const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no-show"
)

// BlockingStatuses are the appointment statuses that occupy time.
var BlockingStatuses = []string{StatusScheduled, StatusCompleted}

type Appointment struct {
	ID                string          `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	TenantID          string          `json:"tenantId" bson:"tenant_id" validate:"required,scope_id"`
	UserID            string          `json:"userId" bson:"user_id" validate:"required,scope_id"`
	ProviderID        string          `json:"providerId,omitempty" bson:"provider_id,omitempty" validate:"omitempty,scope_id"`
	ResourceID        string          `json:"resourceId,omitempty" bson:"resource_id,omitempty" validate:"omitempty,scope_id"`
	ServiceID         string          `json:"serviceId" bson:"service_id" validate:"required,scope_id"`
	StartTime         time.Time       `json:"startTime" bson:"start_time" validate:"required"`
	EndTime           time.Time       `json:"endTime" bson:"end_time" validate:"required,gtfield=StartTime"`
	Status            string          `json:"status" bson:"status" validate:"required,oneof=scheduled completed cancelled no-show"`
	Notes             string          `json:"notes,omitempty" bson:"notes,omitempty" validate:"omitempty,max=1000"`
	RecurrenceRule    *RecurrenceRule `json:"recurrenceRule,omitempty" bson:"recurrence_rule,omitempty" validate:"omitempty"`
	RecurrenceGroupID string          `json:"recurrenceGroupId,omitempty" bson:"recurrence_group_id,omitempty" validate:"omitempty,uuid4"`
	CreatedAt         time.Time       `json:"createdAt" bson:"created_at" validate:"omitempty"`
	UpdatedAt         time.Time       `json:"updatedAt,omitempty" bson:"updated_at,omitempty" validate:"omitempty"`
}

func (a *Appointment) Interval() Interval {
	return Interval{Start: a.StartTime, End: a.EndTime}
}

func (a *Appointment) Scope() Scope {
	return Scope{
		TenantID:   a.TenantID,
		UserID:     a.UserID,
		ProviderID: a.ProviderID,
		ResourceID: a.ResourceID,
	}
}

// Blocking reports whether the appointment occupies its time window.
func (a *Appointment) Blocking() bool {
	return a.Status == StatusScheduled || a.Status == StatusCompleted
}

// AppointmentUpdate carries a reschedule or reassignment. Nil fields are left unchanged.
type AppointmentUpdate struct {
	ProviderID *string    `json:"providerId,omitempty" validate:"omitempty,scope_id"`
	ResourceID *string    `json:"resourceId,omitempty" validate:"omitempty,scope_id"`
	ServiceID  *string    `json:"serviceId,omitempty" validate:"omitempty,scope_id"`
	StartTime  *time.Time `json:"startTime,omitempty" validate:"omitempty"`
	EndTime    *time.Time `json:"endTime,omitempty" validate:"omitempty"`
	Notes      *string    `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

func (u *AppointmentUpdate) ChangesSchedule() bool {
	return u.StartTime != nil || u.EndTime != nil || u.ProviderID != nil || u.ResourceID != nil
}

type StatusUpdate struct {
	Status string `json:"status" validate:"required,oneof=scheduled completed cancelled no-show"`
}

// CanTransition allows moves out of scheduled only. Terminal states stay put.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	return from == StatusScheduled
}
