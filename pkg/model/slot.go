package model

import "time"

type Slot struct {
	Start     time.Time `json:"startTime"`
	End       time.Time `json:"endTime"`
	Available bool      `json:"available"`
}

func (s Slot) Interval() Interval {
	return Interval{Start: s.Start, End: s.End}
}

type DaySlots struct {
	Date  string `json:"date"`
	Slots []Slot `json:"slots"`
}
