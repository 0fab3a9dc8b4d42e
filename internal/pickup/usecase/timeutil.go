package usecase

import "time"

// AddHours returns t shifted by n hours. t itself is not modified.
func AddHours(t time.Time, n int) time.Time {
	return t.Add(time.Duration(n) * time.Hour)
}

// EndOfPreviousDay returns the last representable millisecond of the
// calendar day before now, in loc.
func EndOfPreviousDay(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	startOfToday := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return startOfToday.Add(-time.Millisecond)
}
