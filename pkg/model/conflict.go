package model

import "time"

type ConflictType string

const (
	ConflictProviderAppointment ConflictType = "provider_appointment"
	ConflictResourceAppointment ConflictType = "resource_appointment"
	ConflictBlockedTime         ConflictType = "blocked_time"
	ConflictOutsideWorkingHours ConflictType = "outside_working_hours"
)

type Conflict struct {
	Type          ConflictType `json:"type"`
	Message       string       `json:"message"`
	ConflictingID string       `json:"conflictingId,omitempty"`
	Start         *time.Time   `json:"startTime,omitempty"`
	End           *time.Time   `json:"endTime,omitempty"`
}

type ConflictResult struct {
	HasConflict bool       `json:"hasConflict"`
	Conflicts   []Conflict `json:"conflicts"`
	Suggestions []Slot     `json:"suggestions"`
}

func (r *ConflictResult) Add(c Conflict) {
	r.Conflicts = append(r.Conflicts, c)
	r.HasConflict = true
}

func (r *ConflictResult) Types() []ConflictType {
	types := make([]ConflictType, 0, len(r.Conflicts))
	for _, c := range r.Conflicts {
		types = append(types, c.Type)
	}
	return types
}
