package model

import "time"

// Interval is a half-open time window [Start, End).
type Interval struct {
	Start time.Time `json:"startTime" bson:"start_time" yaml:"start"`
	End   time.Time `json:"endTime" bson:"end_time" yaml:"end"`
}

func NewInterval(start, end time.Time) Interval {
	return Interval{Start: start, End: end}
}

func (i Interval) Valid() bool {
	return i.Start.Before(i.End)
}

func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Overlaps uses half-open semantics: touching endpoints do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && i.End.After(other.Start)
}

func (i Interval) Contains(other Interval) bool {
	return !other.Start.Before(i.Start) && !other.End.After(i.End)
}

func (i Interval) Shift(d time.Duration) Interval {
	return Interval{Start: i.Start.Add(d), End: i.End.Add(d)}
}

// Scope partitions conflict checks. ProviderID and ResourceID are optional.
type Scope struct {
	TenantID   string `json:"tenantId"`
	UserID     string `json:"userId"`
	ProviderID string `json:"providerId,omitempty"`
	ResourceID string `json:"resourceId,omitempty"`
}

func (s Scope) HasProvider() bool {
	return s.ProviderID != ""
}

func (s Scope) HasResource() bool {
	return s.ResourceID != ""
}

// OverlapQuery selects records of one scope dimension intersecting Window.
type OverlapQuery struct {
	TenantID   string
	UserID     string
	ProviderID string
	ResourceID string
	Window     Interval
	Statuses   []string
	ExcludeID  string
}
