package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWeekday(t *testing.T) {
	// 2025-03-10 is a Monday.
	monday := time.Date(2025, 3, 10, 0, 0, 0, 0, time.Local)

	for i := 0; i < 7; i++ {
		assert.Equal(t, i, Weekday(monday.AddDate(0, 0, i)))
	}
}

func TestDateOnly(t *testing.T) {
	ts := time.Date(2025, 3, 10, 18, 45, 12, 999, time.Local)
	day := DateOnly(ts)

	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.Local), day)
	assert.Equal(t, ts.Location(), day.Location())
}

func TestStaffLeaveCovers(t *testing.T) {
	leave := &StaffLeave{
		StartDate: time.Date(2025, 3, 10, 0, 0, 0, 0, time.Local),
		EndDate:   time.Date(2025, 3, 12, 0, 0, 0, 0, time.Local),
	}

	assert.False(t, leave.Covers(time.Date(2025, 3, 9, 0, 0, 0, 0, time.Local)))
	assert.True(t, leave.Covers(time.Date(2025, 3, 10, 0, 0, 0, 0, time.Local)))
	assert.True(t, leave.Covers(time.Date(2025, 3, 11, 23, 59, 0, 0, time.Local)))
	assert.True(t, leave.Covers(time.Date(2025, 3, 12, 0, 0, 0, 0, time.Local)))
	assert.False(t, leave.Covers(time.Date(2025, 3, 13, 0, 0, 0, 0, time.Local)))
}
