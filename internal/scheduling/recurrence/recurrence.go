// Package recurrence expands a recurrence rule into concrete intervals.
// The base interval is instance zero and is never part of the expansion.
package recurrence

import (
	"time"

	"clinicsched/pkg/model"
)

// DefaultCeiling bounds every expansion, including rules with a count or end date.
const DefaultCeiling = 52

type Expansion struct {
	Instances []model.Interval
	// CeilingReached is set when the ceiling, not count or endDate, ended the series.
	CeilingReached bool
}

func Expand(base model.Interval, rule model.RecurrenceRule, loc *time.Location) Expansion {
	return ExpandWithCeiling(base, rule, loc, DefaultCeiling)
}

// ExpandWithCeiling computes every instance directly from base, so monthly
// clamping on one instance never drifts into the next. The end date is
// compared by calendar date in loc and is inclusive.
func ExpandWithCeiling(base model.Interval, rule model.RecurrenceRule, loc *time.Location, ceiling int) Expansion {
	if loc == nil {
		loc = time.UTC
	}
	if ceiling <= 0 {
		ceiling = DefaultCeiling
	}
	step := rule.Interval
	if step < 1 {
		step = 1
	}
	if !base.Valid() || !knownFrequency(rule.Frequency) {
		return Expansion{}
	}

	limit := ceiling
	if rule.Count != nil {
		limit = *rule.Count - 1
		if limit <= 0 {
			return Expansion{}
		}
	}

	var lastDay time.Time
	if rule.EndDate != nil {
		lastDay = dateOf(rule.EndDate.In(loc))
	}

	start := base.Start.In(loc)
	length := base.Duration()
	exp := Expansion{}

	for k := 1; k <= limit; k++ {
		if k > ceiling {
			exp.CeilingReached = true
			break
		}
		next := advance(start, rule.Frequency, k*step)
		if rule.EndDate != nil && dateOf(next).After(lastDay) {
			return exp
		}
		exp.Instances = append(exp.Instances, model.Interval{Start: next, End: next.Add(length)})
	}

	if rule.Count == nil && len(exp.Instances) == ceiling {
		if rule.EndDate == nil {
			exp.CeilingReached = true
		} else if !dateOf(advance(start, rule.Frequency, (ceiling+1)*step)).After(lastDay) {
			exp.CeilingReached = true
		}
	}
	return exp
}

func knownFrequency(f string) bool {
	switch f {
	case model.FrequencyDaily, model.FrequencyWeekly, model.FrequencyMonthly:
		return true
	}
	return false
}

func advance(start time.Time, frequency string, n int) time.Time {
	switch frequency {
	case model.FrequencyDaily:
		return start.AddDate(0, 0, n)
	case model.FrequencyWeekly:
		return start.AddDate(0, 0, 7*n)
	default:
		return addMonthsClamped(start, n)
	}
}

// addMonthsClamped moves t forward n calendar months, clamping the day to the
// last day of the target month.
func addMonthsClamped(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	lastOfTarget := time.Date(y, m+time.Month(n)+1, 0, 0, 0, 0, 0, t.Location()).Day()
	if d > lastOfTarget {
		d = lastOfTarget
	}
	return time.Date(y, m+time.Month(n), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
