package types

import "time"

// ToDate normalizes a timestamp to midnight UTC. All membership business dates
// (contract dates, billing periods, freeze windows) are calendar dates.
func ToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of calendar days from start to end.
// Negative when end is before start.
func DaysBetween(start, end time.Time) int {
	s := ToDate(start)
	e := ToDate(end)
	return int(e.Sub(s).Hours() / 24)
}

// MonthsBetween returns the number of whole calendar months from start to end,
// clamped to zero when end is not after start.
func MonthsBetween(start, end time.Time) int {
	s := ToDate(start)
	e := ToDate(end)
	if !e.After(s) {
		return 0
	}

	months := (e.Year()-s.Year())*12 + int(e.Month()) - int(s.Month())
	if e.Day() < s.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}
