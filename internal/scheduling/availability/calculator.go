// Package availability computes free booking slots from working hours,
// appointments and blocked times.
package availability

import (
	"context"
	"errors"
	"time"

	"clinicsched/internal/scheduling/conflict"
	"clinicsched/internal/scheduling/timeline"
	"clinicsched/pkg/model"
)

var ErrInvalidDuration = errors.New("duration must be positive")

const (
	DefaultDaysAhead      = 7
	DefaultMaxSuggestions = 3
)

type Calculator struct {
	sources        conflict.Sources
	now            func() time.Time
	daysAhead      int
	maxSuggestions int
}

type Option func(*Calculator)

func WithClock(now func() time.Time) Option {
	return func(c *Calculator) { c.now = now }
}

func WithDaysAhead(days int) Option {
	return func(c *Calculator) {
		if days > 0 {
			c.daysAhead = days
		}
	}
}

func WithMaxSuggestions(n int) Option {
	return func(c *Calculator) {
		if n > 0 {
			c.maxSuggestions = n
		}
	}
}

func NewCalculator(sources conflict.Sources, opts ...Option) *Calculator {
	c := &Calculator{
		sources:        sources,
		now:            time.Now,
		daysAhead:      DefaultDaysAhead,
		maxSuggestions: DefaultMaxSuggestions,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Calculator) location() *time.Location {
	if c.sources.Location == nil {
		return time.UTC
	}
	return c.sources.Location
}

// AvailableSlots returns the free slots of duration on the calendar date of
// date. Slots never straddle a free-interval boundary.
func (c *Calculator) AvailableSlots(ctx context.Context, scope model.Scope, date time.Time, duration time.Duration) ([]model.Slot, error) {
	if duration <= 0 {
		return nil, ErrInvalidDuration
	}
	if scope.TenantID == "" || scope.UserID == "" {
		return nil, conflict.ErrInvalidScope
	}

	loc := c.location()
	y, m, d := date.In(loc).Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, loc)
	day := model.Interval{Start: dayStart, End: dayStart.AddDate(0, 0, 1)}

	open, err := c.sources.OpenIntervals(ctx, scope, model.Interval{Start: dayStart, End: dayStart})
	if err != nil {
		return nil, err
	}
	open = timeline.Normalize(open)
	if len(open) == 0 {
		return []model.Slot{}, nil
	}

	// Hours ending at 24:00 reach the next midnight, so widen the window to the open span.
	if last := open[len(open)-1].End; last.After(day.End) {
		day.End = last
	}

	occ, err := c.sources.Occupied(ctx, scope, day, "")
	if err != nil {
		return nil, err
	}

	slots := timeline.Slice(timeline.Subtract(open, occ.Intervals()), duration)
	if slots == nil {
		return []model.Slot{}, nil
	}
	return slots, nil
}

// SuggestedSlots scans forward from today, dropping today's slots that have
// already started, and stops once the suggestion limit is collected.
func (c *Calculator) SuggestedSlots(ctx context.Context, scope model.Scope, duration time.Duration, daysAhead int) ([]model.DaySlots, error) {
	if duration <= 0 {
		return nil, ErrInvalidDuration
	}
	if daysAhead <= 0 {
		daysAhead = c.daysAhead
	}

	now := c.now().In(c.location())
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, c.location())

	result := []model.DaySlots{}
	remaining := c.maxSuggestions
	for i := 0; i < daysAhead && remaining > 0; i++ {
		date := today.AddDate(0, 0, i)
		slots, err := c.AvailableSlots(ctx, scope, date, duration)
		if err != nil {
			return nil, err
		}

		picked := make([]model.Slot, 0, remaining)
		for _, s := range slots {
			if i == 0 && s.Start.Before(now) {
				continue
			}
			picked = append(picked, s)
			if len(picked) == remaining {
				break
			}
		}
		if len(picked) == 0 {
			continue
		}
		remaining -= len(picked)
		result = append(result, model.DaySlots{Date: date.Format("2006-01-02"), Slots: picked})
	}
	return result, nil
}

// Suggest implements contracts.Suggester over SuggestedSlots.
func (c *Calculator) Suggest(ctx context.Context, scope model.Scope, duration time.Duration) ([]model.Slot, error) {
	days, err := c.SuggestedSlots(ctx, scope, duration, c.daysAhead)
	if err != nil {
		return nil, err
	}
	slots := []model.Slot{}
	for _, d := range days {
		slots = append(slots, d.Slots...)
	}
	return slots, nil
}
