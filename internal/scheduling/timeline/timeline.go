// Package timeline implements half-open interval arithmetic used by the
// scheduling core: normalizing, subtracting and slicing free time.
package timeline

import (
	"sort"
	"time"

	"clinicsched/pkg/model"
)

// Normalize drops empty intervals, sorts by start and merges overlapping or
// touching intervals. The input is not modified.
func Normalize(intervals []model.Interval) []model.Interval {
	valid := make([]model.Interval, 0, len(intervals))
	for _, iv := range intervals {
		if iv.Valid() {
			valid = append(valid, iv)
		}
	}
	if len(valid) == 0 {
		return nil
	}

	sort.Slice(valid, func(i, j int) bool {
		return valid[i].Start.Before(valid[j].Start)
	})

	merged := []model.Interval{valid[0]}
	for _, iv := range valid[1:] {
		last := &merged[len(merged)-1]
		if !iv.Start.After(last.End) {
			if iv.End.After(last.End) {
				last.End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// Subtract removes every busy interval from the free intervals.
func Subtract(free, busy []model.Interval) []model.Interval {
	busy = Normalize(busy)
	result := Normalize(free)

	for _, b := range busy {
		next := make([]model.Interval, 0, len(result)+1)
		for _, f := range result {
			if !f.Overlaps(b) {
				next = append(next, f)
				continue
			}
			if f.Start.Before(b.Start) {
				next = append(next, model.Interval{Start: f.Start, End: b.Start})
			}
			if f.End.After(b.End) {
				next = append(next, model.Interval{Start: b.End, End: f.End})
			}
		}
		result = next
	}
	return result
}

// Clamp restricts iv to bounds. The result may be empty (Start == End or inverted).
func Clamp(iv, bounds model.Interval) model.Interval {
	if iv.Start.Before(bounds.Start) {
		iv.Start = bounds.Start
	}
	if iv.End.After(bounds.End) {
		iv.End = bounds.End
	}
	return iv
}

// Slice cuts each free interval into consecutive slots of length d. A slot
// never crosses the boundary of the interval it came from; remainders shorter
// than d are dropped.
func Slice(free []model.Interval, d time.Duration) []model.Slot {
	if d <= 0 {
		return nil
	}

	var slots []model.Slot
	for _, f := range free {
		for start := f.Start; !start.Add(d).After(f.End); start = start.Add(d) {
			slots = append(slots, model.Slot{
				Start:     start,
				End:       start.Add(d),
				Available: true,
			})
		}
	}
	return slots
}

// Covered reports whether candidate lies entirely within one of the intervals.
func Covered(candidate model.Interval, intervals []model.Interval) bool {
	for _, iv := range Normalize(intervals) {
		if iv.Contains(candidate) {
			return true
		}
	}
	return false
}
