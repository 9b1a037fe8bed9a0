// Package conflict decides whether a candidate interval can be booked for a
// scope, reporting every reason it cannot.
package conflict

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clinicsched/internal/scheduling/timeline"
	"clinicsched/pkg/contracts"
	"clinicsched/pkg/model"
)

var (
	ErrInvalidInterval = errors.New("start time must be before end time")

	ErrInvalidScope = errors.New("tenant and user are required")
)

const clockLayout = "15:04"

type Detector struct {
	sources   Sources
	suggester contracts.Suggester
}

func NewDetector(sources Sources) *Detector {
	return &Detector{sources: sources}
}

// SetSuggester wires the slot search used to fill suggestions on conflict.
func (d *Detector) SetSuggester(s contracts.Suggester) {
	d.suggester = s
}

// Check runs Detect and, when the candidate conflicts, fills suggestions
// from the wired Suggester.
func (d *Detector) Check(ctx context.Context, candidate model.Interval, scope model.Scope, excludeID string) (*model.ConflictResult, error) {
	result, err := d.Detect(ctx, candidate, scope, excludeID)
	if err != nil {
		return nil, err
	}

	if result.HasConflict && d.suggester != nil {
		slots, err := d.suggester.Suggest(ctx, scope, candidate.Duration())
		if err != nil {
			if d.sources.Log != nil {
				d.sources.Log.Warn("Failed to compute suggestions", "tenant_id", scope.TenantID, "error", err)
			}
		} else if slots != nil {
			result.Suggestions = slots
		}
	}

	return result, nil
}

// Detect runs every check against candidate and collects all conflicts in a
// fixed order: working hours, provider, resource, blocked time. excludeID
// skips the appointment being rescheduled. Suggestions are left empty.
func (d *Detector) Detect(ctx context.Context, candidate model.Interval, scope model.Scope, excludeID string) (*model.ConflictResult, error) {
	if !candidate.Valid() {
		return nil, ErrInvalidInterval
	}
	if scope.TenantID == "" || scope.UserID == "" {
		return nil, ErrInvalidScope
	}

	open, err := d.sources.OpenIntervals(ctx, scope, candidate)
	if err != nil {
		return nil, err
	}
	occ, err := d.sources.Occupied(ctx, scope, candidate, excludeID)
	if err != nil {
		return nil, err
	}

	result := &model.ConflictResult{Conflicts: []model.Conflict{}, Suggestions: []model.Slot{}}

	if !timeline.Covered(candidate, open) {
		result.Add(model.Conflict{
			Type:    model.ConflictOutsideWorkingHours,
			Message: "Requested time is outside working hours",
		})
	}

	owner := "Provider"
	if !scope.HasProvider() {
		owner = "User"
	}
	for _, a := range occ.ProviderAppointments {
		result.Add(d.appointmentConflict(model.ConflictProviderAppointment, a,
			owner+" already has an appointment from %s to %s"))
	}
	for _, a := range occ.ResourceAppointments {
		result.Add(d.appointmentConflict(model.ConflictResourceAppointment, a,
			"Resource is already booked from %s to %s"))
	}
	for _, b := range occ.BlockedTimes {
		start, end := b.StartTime, b.EndTime
		msg := fmt.Sprintf("Time is blocked from %s to %s", d.clock(start), d.clock(end))
		if b.Reason != "" {
			msg += ": " + b.Reason
		}
		result.Add(model.Conflict{
			Type:          model.ConflictBlockedTime,
			Message:       msg,
			ConflictingID: b.ID,
			Start:         &start,
			End:           &end,
		})
	}

	return result, nil
}

func (d *Detector) appointmentConflict(t model.ConflictType, a *model.Appointment, format string) model.Conflict {
	start, end := a.StartTime, a.EndTime
	return model.Conflict{
		Type:          t,
		Message:       fmt.Sprintf(format, d.clock(start), d.clock(end)),
		ConflictingID: a.ID,
		Start:         &start,
		End:           &end,
	}
}

func (d *Detector) clock(t time.Time) string {
	return t.In(d.sources.location()).Format(clockLayout)
}
