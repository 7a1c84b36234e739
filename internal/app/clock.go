package app

import "time"

// Clock supplies the current time. Services never read time.Now directly.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in a fixed location.
type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// daysLeftInMonth counts the days from t to the end of its month, t's day included.
func daysLeftInMonth(t time.Time) int {
	last := startOfMonth(t).AddDate(0, 1, -1).Day()
	return last - t.Day() + 1
}
