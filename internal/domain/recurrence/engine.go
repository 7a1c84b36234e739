package recurrence

import (
	"sort"
	"time"
)

// LastDayOfMonth returns the number of days in t's month.
func LastDayOfMonth(t time.Time) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

// weekdayIndex maps time.Weekday (Sunday=0) onto Monday=0..Sunday=6.
func weekdayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// Fires reports whether the rule produces an operation on day's calendar date.
func Fires(rule Rule, day time.Time) bool {
	switch rule.Kind {
	case KindDaily:
		return true
	case KindWeekly:
		wd := weekdayIndex(day.Weekday())
		for _, a := range rule.Anchors {
			if a == wd {
				return true
			}
		}
	case KindMonthly:
		last := LastDayOfMonth(day)
		for _, d := range resolveMonthDays(rule.Anchors, last) {
			if d == day.Day() {
				return true
			}
		}
	}
	return false
}

// Occurrences returns the days of now's month strictly after now.Day() on
// which the rule fires, ascending and without duplicates. It never crosses
// into the next month.
func Occurrences(rule Rule, now time.Time) []int {
	horizon := LastDayOfMonth(now)
	today := now.Day()
	seen := make(map[int]struct{})
	days := []int{}
	add := func(d int) {
		if d <= today || d > horizon {
			return
		}
		if _, ok := seen[d]; ok {
			return
		}
		seen[d] = struct{}{}
		days = append(days, d)
	}

	switch rule.Kind {
	case KindDaily:
		for d := today + 1; d <= horizon; d++ {
			add(d)
		}
	case KindMonthly:
		for _, d := range resolveMonthDays(rule.Anchors, horizon) {
			add(d)
		}
	case KindWeekly:
		byWeekday := make(map[int][]int, 7)
		for d := today + 1; d <= horizon; d++ {
			date := time.Date(now.Year(), now.Month(), d, 0, 0, 0, 0, now.Location())
			wd := weekdayIndex(date.Weekday())
			byWeekday[wd] = append(byWeekday[wd], d)
		}
		for _, a := range rule.Anchors {
			for _, d := range byWeekday[a] {
				add(d)
			}
		}
	}

	sort.Ints(days)
	return days
}

func resolveMonthDays(anchors []int, last int) []int {
	out := make([]int, 0, len(anchors))
	for _, a := range anchors {
		if a == LastDay {
			out = append(out, last)
			continue
		}
		out = append(out, a)
	}
	return out
}
