package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay is a wall-clock time within a day, stored as "HH:MM".
type TimeOfDay string

// ParseTimeOfDay validates s and returns it as a TimeOfDay.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t := TimeOfDay(s)
	if _, err := t.Minutes(); err != nil {
		return "", err
	}
	return t, nil
}

// Minutes returns the time of day as minutes since midnight.
func (t TimeOfDay) Minutes() (int, error) {
	parts := strings.Split(string(t), ":")
	if len(parts) < 2 {
		return 0, fmt.Errorf("invalid time of day: %q", string(t))
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q: %w", string(t), err)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q: %w", string(t), err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("time of day out of range: %q", string(t))
	}

	return hour*60 + minute, nil
}

// On anchors the time of day to the given date, in the date's location.
func (t TimeOfDay) On(date time.Time) (time.Time, error) {
	mins, err := t.Minutes()
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), mins/60, mins%60, 0, 0, date.Location()), nil
}

// Before reports whether t is strictly earlier than other. Both must be
// valid; invalid values compare as not-before.
func (t TimeOfDay) Before(other TimeOfDay) bool {
	a, err := t.Minutes()
	if err != nil {
		return false
	}
	b, err := other.Minutes()
	if err != nil {
		return false
	}
	return a < b
}

func (t TimeOfDay) String() string {
	return string(t)
}
