package schedule

import (
	"fmt"
)

// WorkingHours describes the bookable day: hours in [Start, End), one slot
// every Interval minutes inside each hour.
type WorkingHours struct {
	Start    int `mapstructure:"start" json:"start"`
	End      int `mapstructure:"end" json:"end"`
	Interval int `mapstructure:"interval" json:"interval"`
}

func (w WorkingHours) Validate() error {
	if w.Start < 0 || w.Start > 23 {
		return fmt.Errorf("working hours start must be 0-23 (got %d)", w.Start)
	}
	if w.End <= w.Start || w.End > 24 {
		return fmt.Errorf("working hours end must be after start and <= 24 (got %d)", w.End)
	}
	if w.Interval < 1 || w.Interval > 60 {
		return fmt.Errorf("working hours interval must be 1-60 minutes (got %d)", w.Interval)
	}
	return nil
}

// GenerateSlots returns the HH:MM labels for the day in ascending order.
// The minute axis restarts at 0 every hour, so an interval that does not
// divide 60 leaves a short gap before the next hour.
func GenerateSlots(w WorkingHours) []string {
	if w.Interval <= 0 || w.End <= w.Start {
		return nil
	}
	out := make([]string, 0, SlotCount(w))
	for h := w.Start; h < w.End; h++ {
		for m := 0; m < 60; m += w.Interval {
			out = append(out, fmt.Sprintf("%02d:%02d", h, m))
		}
	}
	return out
}

// SlotCount is the number of labels GenerateSlots produces.
func SlotCount(w WorkingHours) int {
	if w.Interval <= 0 || w.End <= w.Start {
		return 0
	}
	perHour := (59 / w.Interval) + 1
	return (w.End - w.Start) * perHour
}
