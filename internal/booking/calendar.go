package booking

import (
	"sort"
	"time"
)

// Slot is one bookable consultation window as stored by the backend.
// Date carries a full timestamp, but bucketing only ever looks at its
// calendar-day portion.
type Slot struct {
	ID        string `json:"_id"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Available bool   `json:"isAvailable"`
}

// DayGroup is the date-view unit: one calendar day and its slots
// sorted by start time.
type DayGroup struct {
	Day   string
	Slots []Slot
}

const dateWindowDays = 60

// CalendarDay extracts the yyyy-mm-dd portion of a stored slot date.
// Time-of-day and zone offset are ignored deliberately: only the
// calendar day matters for bucketing.
func CalendarDay(stored string) string {
	if len(stored) < 10 {
		return ""
	}
	day := stored[:10]
	if _, err := time.Parse("2006-01-02", day); err != nil {
		return ""
	}
	return day
}

// WeekWindow returns the 7-day window anchored at the Sunday of the
// week containing anchor, at local midnight.
func WeekWindow(anchor time.Time) (time.Time, time.Time) {
	day := localMidnight(anchor)
	sunday := day.AddDate(0, 0, -int(day.Weekday()))
	return sunday, sunday.AddDate(0, 0, 6)
}

// DateWindow returns the fixed 60-day forward window used by the date
// view. It starts tomorrow: past dates are never requested.
func DateWindow(now time.Time) (time.Time, time.Time) {
	start := localMidnight(now).AddDate(0, 0, 1)
	return start, start.AddDate(0, 0, dateWindowDays-1)
}

// Selectable reports whether the day (yyyy-mm-dd) may be picked:
// strictly before tomorrow at local midnight is never selectable.
func Selectable(day string, now time.Time) bool {
	d, err := time.ParseInLocation("2006-01-02", day, now.Location())
	if err != nil {
		return false
	}
	return !d.Before(localMidnight(now).AddDate(0, 0, 1))
}

// GroupByDay buckets slots by calendar day for the date view, days
// ascending, slots within a day ordered by start time.
func GroupByDay(slots []Slot) []DayGroup {
	buckets := map[string][]Slot{}
	for _, s := range slots {
		day := CalendarDay(s.Date)
		if day == "" {
			continue
		}
		buckets[day] = append(buckets[day], s)
	}
	days := make([]string, 0, len(buckets))
	for day := range buckets {
		days = append(days, day)
	}
	sort.Strings(days)

	groups := make([]DayGroup, 0, len(days))
	for _, day := range days {
		group := buckets[day]
		sort.Slice(group, func(i, j int) bool { return group[i].StartTime < group[j].StartTime })
		groups = append(groups, DayGroup{Day: day, Slots: group})
	}
	return groups
}

// SlotsOn is the week-view lookup: slots whose stored date falls on
// the given calendar day, sorted by start time.
func SlotsOn(slots []Slot, day string) []Slot {
	var out []Slot
	for _, s := range slots {
		if CalendarDay(s.Date) == day {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out
}

func localMidnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
