package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalendarDayIgnoresTimeAndOffset(t *testing.T) {
	cases := []string{
		"2024-03-10T00:00:00Z",
		"2024-03-10T23:59:59Z",
		"2024-03-10T15:30:00+05:30",
		"2024-03-10",
	}
	for _, c := range cases {
		assert.Equal(t, "2024-03-10", CalendarDay(c), "input %q", c)
	}
	assert.Equal(t, "", CalendarDay("bogus"))
	assert.Equal(t, "", CalendarDay(""))
}

func TestWeekWindowAnchorsOnSunday(t *testing.T) {
	// 2024-03-13 is a Wednesday.
	anchor := time.Date(2024, 3, 13, 15, 42, 0, 0, time.UTC)
	start, end := WeekWindow(anchor)
	assert.Equal(t, time.Sunday, start.Weekday())
	assert.Equal(t, "2024-03-10", start.Format("2006-01-02"))
	assert.Equal(t, "2024-03-16", end.Format("2006-01-02"))

	// A Sunday anchors its own week.
	start2, _ := WeekWindow(start)
	assert.Equal(t, start, start2)
}

func TestDateWindowStartsTomorrow(t *testing.T) {
	now := time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC)
	start, end := DateWindow(now)
	assert.Equal(t, "2024-03-11", start.Format("2006-01-02"))
	assert.Equal(t, 59, int(end.Sub(start).Hours()/24))
}

func TestSelectableRejectsPastAndToday(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	assert.False(t, Selectable("2024-03-09", now))
	assert.False(t, Selectable("2024-03-10", now))
	assert.True(t, Selectable("2024-03-11", now))
	assert.False(t, Selectable("not-a-date", now))
}

func TestGroupByDaySortsDaysAndTimes(t *testing.T) {
	slots := []Slot{
		{ID: "c", Date: "2024-03-11T00:00:00Z", StartTime: "14:00"},
		{ID: "a", Date: "2024-03-10T09:00:00Z", StartTime: "10:30"},
		{ID: "b", Date: "2024-03-10T22:00:00Z", StartTime: "09:00"},
	}
	groups := GroupByDay(slots)
	require.Len(t, groups, 2)
	assert.Equal(t, "2024-03-10", groups[0].Day)
	require.Len(t, groups[0].Slots, 2)
	assert.Equal(t, "b", groups[0].Slots[0].ID)
	assert.Equal(t, "a", groups[0].Slots[1].ID)
	assert.Equal(t, "2024-03-11", groups[1].Day)
}

func TestSlotsOnMatchesCalendarDayOnly(t *testing.T) {
	slots := []Slot{
		{ID: "x", Date: "2024-03-10T00:00:00Z", StartTime: "10:00"},
		{ID: "y", Date: "2024-03-10T18:45:00+02:00", StartTime: "09:00"},
		{ID: "z", Date: "2024-03-11T00:00:00Z", StartTime: "09:00"},
	}
	got := SlotsOn(slots, "2024-03-10")
	require.Len(t, got, 2)
	assert.Equal(t, "y", got[0].ID)
	assert.Equal(t, "x", got[1].ID)
}
