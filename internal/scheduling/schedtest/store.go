// Package schedtest provides an in-memory implementation of the scheduling
// lookups for tests.
package schedtest

import (
	"context"
	"slices"
	"sync"

	"clinicsched/pkg/model"
)

// Store implements contracts.AppointmentLookup, contracts.BlockedTimeLookup
// and contracts.WorkingHoursSource over slices.
type Store struct {
	mu           sync.Mutex
	Appointments []*model.Appointment
	Blocked      []*model.BlockedTime
	Hours        map[string]model.WorkingHours
	TenantHours  model.WorkingHours

	AppointmentErr error
	BlockedErr     error
	HoursErr       error
}

func NewStore() *Store {
	return &Store{Hours: map[string]model.WorkingHours{}}
}

func (s *Store) AddAppointment(a *model.Appointment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.Status == "" {
		a.Status = model.StatusScheduled
	}
	s.Appointments = append(s.Appointments, a)
}

func (s *Store) AddBlocked(b *model.BlockedTime) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Blocked = append(s.Blocked, b)
}

func (s *Store) AppointmentLookup() *AppointmentLookup {
	return &AppointmentLookup{s: s}
}

func (s *Store) BlockedTimeLookup() *BlockedTimeLookup {
	return &BlockedTimeLookup{s: s}
}

type AppointmentLookup struct{ s *Store }

func (l *AppointmentLookup) FindOverlapping(_ context.Context, q model.OverlapQuery) ([]*model.Appointment, error) {
	s := l.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.AppointmentErr != nil {
		return nil, s.AppointmentErr
	}

	var out []*model.Appointment
	for _, a := range s.Appointments {
		if a.TenantID != q.TenantID || (q.ExcludeID != "" && a.ID == q.ExcludeID) {
			continue
		}
		if q.ProviderID != "" && a.ProviderID != q.ProviderID {
			continue
		}
		if q.ResourceID != "" && a.ResourceID != q.ResourceID {
			continue
		}
		if q.ProviderID == "" && q.ResourceID == "" && a.UserID != q.UserID {
			continue
		}
		if len(q.Statuses) > 0 && !slices.Contains(q.Statuses, a.Status) {
			continue
		}
		if !a.Interval().Overlaps(q.Window) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

type BlockedTimeLookup struct{ s *Store }

func (l *BlockedTimeLookup) FindOverlapping(_ context.Context, q model.OverlapQuery) ([]*model.BlockedTime, error) {
	s := l.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.BlockedErr != nil {
		return nil, s.BlockedErr
	}

	var out []*model.BlockedTime
	for _, b := range s.Blocked {
		if b.TenantID == q.TenantID && b.Interval().Overlaps(q.Window) {
			out = append(out, b)
		}
	}
	return out, nil
}

// Effective returns the provider hours, then the tenant default.
func (s *Store) Effective(_ context.Context, _ string, providerID string) (model.WorkingHours, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.HoursErr != nil {
		return nil, s.HoursErr
	}
	if wh, ok := s.Hours[providerID]; ok && providerID != "" {
		return wh, nil
	}
	return s.TenantHours, nil
}

// Weekdays returns the same hours for Monday through Friday.
func Weekdays(start, end string, breaks ...model.Break) model.WorkingHours {
	wh := model.WorkingHours{}
	for _, d := range []string{"monday", "tuesday", "wednesday", "thursday", "friday"} {
		wh[d] = model.DayHours{Start: start, End: end, Breaks: breaks}
	}
	return wh
}
