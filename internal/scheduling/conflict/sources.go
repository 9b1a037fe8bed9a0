package conflict

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"clinicsched/internal/scheduling/hours"
	"clinicsched/pkg/contracts"
	"clinicsched/pkg/logger"
	"clinicsched/pkg/model"
)

// Sources groups the read-side collaborators shared by conflict detection and
// slot availability.
type Sources struct {
	Appointments contracts.AppointmentLookup
	BlockedTimes contracts.BlockedTimeLookup
	Hours        contracts.WorkingHoursSource
	Location     *time.Location
	Log          *logger.Logger
}

// Occupancy is everything in scope that intersects a window.
type Occupancy struct {
	ProviderAppointments []*model.Appointment
	ResourceAppointments []*model.Appointment
	BlockedTimes         []*model.BlockedTime
}

// Intervals flattens the occupancy into busy intervals.
func (o Occupancy) Intervals() []model.Interval {
	busy := make([]model.Interval, 0, len(o.ProviderAppointments)+len(o.ResourceAppointments)+len(o.BlockedTimes))
	for _, a := range o.ProviderAppointments {
		busy = append(busy, a.Interval())
	}
	for _, a := range o.ResourceAppointments {
		busy = append(busy, a.Interval())
	}
	for _, b := range o.BlockedTimes {
		busy = append(busy, b.Interval())
	}
	return busy
}

func (s Sources) location() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

// OpenIntervals returns the working-hour intervals for every calendar date
// touched by window. A malformed day is logged and treated as closed.
func (s Sources) OpenIntervals(ctx context.Context, scope model.Scope, window model.Interval) ([]model.Interval, error) {
	wh, err := s.Hours.Effective(ctx, scope.TenantID, scope.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load working hours: %w", err)
	}

	loc := s.location()
	var open []model.Interval
	first := window.Start.In(loc)
	last := window.End.In(loc)
	for day := first; !dayAfter(day, last); day = day.AddDate(0, 0, 1) {
		intervals, err := hours.Resolve(day, wh, loc)
		if err != nil {
			if errors.Is(err, hours.ErrMalformedDay) {
				if s.Log != nil {
					s.Log.Warn("Malformed working hours, treating day as closed",
						"tenant_id", scope.TenantID,
						"provider_id", scope.ProviderID,
						"date", day.Format("2006-01-02"),
						"error", err,
					)
				}
				continue
			}
			return nil, err
		}
		open = append(open, intervals...)
	}
	return open, nil
}

// Occupied runs the appointment and blocked-time lookups for scope
// concurrently and filters the results in-process.
func (s Sources) Occupied(ctx context.Context, scope model.Scope, window model.Interval, excludeID string) (Occupancy, error) {
	var occ Occupancy
	var errProvider, errResource, errBlocked error
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		q := model.OverlapQuery{
			TenantID:  scope.TenantID,
			Window:    window,
			Statuses:  model.BlockingStatuses,
			ExcludeID: excludeID,
		}
		if scope.HasProvider() {
			q.ProviderID = scope.ProviderID
		} else {
			q.UserID = scope.UserID
		}
		found, err := s.Appointments.FindOverlapping(ctx, q)
		if err != nil {
			errProvider = fmt.Errorf("failed to find provider appointments: %w", err)
			return
		}
		occ.ProviderAppointments = filterAppointments(found, window, excludeID)
	}()

	go func() {
		defer wg.Done()
		found, err := s.BlockedTimes.FindOverlapping(ctx, model.OverlapQuery{
			TenantID:   scope.TenantID,
			UserID:     scope.UserID,
			ProviderID: scope.ProviderID,
			ResourceID: scope.ResourceID,
			Window:     window,
		})
		if err != nil {
			errBlocked = fmt.Errorf("failed to find blocked times: %w", err)
			return
		}
		for _, b := range found {
			if b.AppliesTo(scope) && b.Interval().Overlaps(window) {
				occ.BlockedTimes = append(occ.BlockedTimes, b)
			}
		}
	}()

	if scope.HasResource() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			found, err := s.Appointments.FindOverlapping(ctx, model.OverlapQuery{
				TenantID:   scope.TenantID,
				ResourceID: scope.ResourceID,
				Window:     window,
				Statuses:   model.BlockingStatuses,
				ExcludeID:  excludeID,
			})
			if err != nil {
				errResource = fmt.Errorf("failed to find resource appointments: %w", err)
				return
			}
			occ.ResourceAppointments = filterAppointments(found, window, excludeID)
		}()
	}

	wg.Wait()
	if err := errors.Join(errProvider, errResource, errBlocked); err != nil {
		return Occupancy{}, err
	}
	return occ, nil
}

func filterAppointments(found []*model.Appointment, window model.Interval, excludeID string) []*model.Appointment {
	var kept []*model.Appointment
	for _, a := range found {
		if excludeID != "" && a.ID == excludeID {
			continue
		}
		if !a.Blocking() || !a.Interval().Overlaps(window) {
			continue
		}
		kept = append(kept, a)
	}
	return kept
}

func dayAfter(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay > by
	}
	if am != bm {
		return am > bm
	}
	return ad > bd
}
