package model

import "time"

const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

type RecurrenceRule struct {
	Frequency string     `json:"frequency" bson:"frequency" yaml:"frequency" validate:"required,oneof=daily weekly monthly"`
	Interval  int        `json:"interval" bson:"interval" yaml:"interval" validate:"omitempty,min=0,max=365"`
	Count     *int       `json:"count,omitempty" bson:"count,omitempty" yaml:"count,omitempty" validate:"omitempty,min=1,max=367"`
	EndDate   *time.Time `json:"endDate,omitempty" bson:"end_date,omitempty" yaml:"endDate,omitempty" validate:"omitempty"`
}

// Bounded reports whether count or endDate limits the series.
func (r RecurrenceRule) Bounded() bool {
	return r.Count != nil || r.EndDate != nil
}
