// Package hours turns a weekday working-hours map into the concrete open
// intervals of a calendar date.
package hours

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"clinicsched/internal/scheduling/timeline"
	"clinicsched/pkg/model"
)

var (
	ErrMalformedDay = errors.New("malformed working hours day")

	ErrUnknownWeekday = errors.New("unknown weekday")
)

var clockRegex = regexp.MustCompile(`^(?:([01]\d|2[0-3]):([0-5]\d)|(24):(00))$`)

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// WeekdayName returns the lowercase map key used for d.
func WeekdayName(d time.Weekday) string {
	return strings.ToLower(d.String())
}

// ParseClock parses a 24h "HH:MM" string. "24:00" is accepted as end of day.
func ParseClock(s string) (int, int, error) {
	m := clockRegex.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, fmt.Errorf("%w: invalid time %q", ErrMalformedDay, s)
	}
	hh, mm := m[1], m[2]
	if hh == "" {
		hh, mm = m[3], m[4]
	}
	h, _ := strconv.Atoi(hh)
	minute, _ := strconv.Atoi(mm)
	return h, minute, nil
}

// DayFor returns the configuration for the weekday of date, matching keys
// case-insensitively.
func DayFor(date time.Time, hours model.WorkingHours) (model.DayHours, bool) {
	name := WeekdayName(date.Weekday())
	if day, ok := hours[name]; ok {
		return day, true
	}
	for key, day := range hours {
		if strings.EqualFold(key, name) {
			return day, true
		}
	}
	return model.DayHours{}, false
}

// Resolve returns the ordered open intervals of the calendar date of date in
// loc. A day without configuration yields no intervals. Breaks are clamped to
// the day's hours and subtracted. A malformed day returns ErrMalformedDay and
// must be treated as closed.
func Resolve(date time.Time, hours model.WorkingHours, loc *time.Location) ([]model.Interval, error) {
	if loc == nil {
		loc = time.UTC
	}
	local := date.In(loc)

	day, ok := DayFor(local, hours)
	if !ok {
		return nil, nil
	}

	open, err := dayInterval(local, day.Start, day.End, loc)
	if err != nil {
		return nil, err
	}

	breaks := make([]model.Interval, 0, len(day.Breaks))
	for _, b := range day.Breaks {
		bs, err := clockOn(local, b.Start, loc)
		if err != nil {
			return nil, err
		}
		be, err := clockOn(local, b.End, loc)
		if err != nil {
			return nil, err
		}
		clamped := timeline.Clamp(model.Interval{Start: bs, End: be}, open)
		if clamped.Valid() {
			breaks = append(breaks, clamped)
		}
	}

	return timeline.Subtract([]model.Interval{open}, breaks), nil
}

// Validate checks a working-hours map strictly: known weekday names, well
// formed clocks, start before end for days and breaks.
func Validate(hours model.WorkingHours) error {
	ref := time.Date(2000, 1, 3, 0, 0, 0, 0, time.UTC)
	for key, day := range hours {
		if _, ok := weekdays[strings.ToLower(key)]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownWeekday, key)
		}
		if _, err := dayInterval(ref, day.Start, day.End, time.UTC); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		for i, b := range day.Breaks {
			if _, err := dayInterval(ref, b.Start, b.End, time.UTC); err != nil {
				return fmt.Errorf("%s break %d: %w", key, i, err)
			}
		}
	}
	return nil
}

func dayInterval(date time.Time, start, end string, loc *time.Location) (model.Interval, error) {
	s, err := clockOn(date, start, loc)
	if err != nil {
		return model.Interval{}, err
	}
	e, err := clockOn(date, end, loc)
	if err != nil {
		return model.Interval{}, err
	}
	if !s.Before(e) {
		return model.Interval{}, fmt.Errorf("%w: start %s is not before end %s", ErrMalformedDay, start, end)
	}
	return model.Interval{Start: s, End: e}, nil
}

func clockOn(date time.Time, clock string, loc *time.Location) (time.Time, error) {
	h, m, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	y, mo, d := date.Date()
	return time.Date(y, mo, d, h, m, 0, 0, loc), nil
}
