package testutil

import (
	"time"

	"clinicsched/pkg/model"
)

type AppointmentBuilder struct {
	appt model.Appointment
}

func NewAppointmentBuilder(tenantID string) *AppointmentBuilder {
	start := NextWeekday(time.Monday, 10)
	return &AppointmentBuilder{
		appt: model.Appointment{
			TenantID:   tenantID,
			UserID:     "patient-1",
			ProviderID: "dr-cohen",
			ServiceID:  "checkup",
			StartTime:  start,
			EndTime:    start.Add(30 * time.Minute),
			Status:     model.StatusScheduled,
		},
	}
}

func (b *AppointmentBuilder) WithUser(userID string) *AppointmentBuilder {
	b.appt.UserID = userID
	return b
}

func (b *AppointmentBuilder) WithProvider(providerID string) *AppointmentBuilder {
	b.appt.ProviderID = providerID
	return b
}

func (b *AppointmentBuilder) WithResource(resourceID string) *AppointmentBuilder {
	b.appt.ResourceID = resourceID
	return b
}

func (b *AppointmentBuilder) At(start time.Time, d time.Duration) *AppointmentBuilder {
	b.appt.StartTime = start
	b.appt.EndTime = start.Add(d)
	return b
}

func (b *AppointmentBuilder) Build() model.Appointment {
	return b.appt
}

// AllDayHours opens every weekday from midnight to 23:59.
func AllDayHours() model.WorkingHours {
	hours := model.WorkingHours{}
	for _, day := range []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"} {
		hours[day] = model.DayHours{Start: "00:00", End: "23:59"}
	}
	return hours
}

// NextWeekday returns the given weekday at hour:00 UTC, at least a week out.
func NextWeekday(day time.Weekday, hour int) time.Time {
	now := time.Now().UTC()
	base := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, time.UTC).AddDate(0, 0, 7)
	for base.Weekday() != day {
		base = base.AddDate(0, 0, 1)
	}
	return base
}
