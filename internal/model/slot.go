package model

import "time"

// SlotReason explains why a candidate slot is unavailable.
type SlotReason string

const (
	SlotReasonBooked SlotReason = "booked"
	SlotReasonClosed SlotReason = "closed"
	SlotReasonPast   SlotReason = "past"
)

// Slot is one candidate bookable interval of the service's duration.
type Slot struct {
	StartTime time.Time  `json:"start_time"`
	EndTime   time.Time  `json:"end_time"`
	Available bool       `json:"available"`
	Reason    SlotReason `json:"reason,omitempty"`
}

// Interval is a half-open [Start, End) time range.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open intervals intersect.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Empty reports whether the interval is empty or inverted.
func (i Interval) Empty() bool {
	return !i.Start.Before(i.End)
}
