package model

import (
	"sort"
	"time"
)

const dayLayout = "2006-01-02"

// DayKey formats t as the UTC calendar day it falls on.
func DayKey(t time.Time) string {
	return t.UTC().Format(dayLayout)
}

// CoveredDays walks from start to end in 24h steps, end included when a step
// lands on or before it, and returns the calendar day of every step.
func CoveredDays(start, end time.Time) []string {
	if end.Before(start) {
		return nil
	}
	days := make([]string, 0, wholeDays(start, end)+1)
	for t := start; !t.After(end); t = t.Add(24 * time.Hour) {
		days = append(days, DayKey(t))
	}
	return days
}

// wholeDays counts complete 24h periods from start to end, 0 when end is
// not after start.  It works on Unix seconds so ranges longer than
// time.Duration can hold are still counted exactly.
func wholeDays(start, end time.Time) int {
	secs := end.Unix() - start.Unix()
	if secs <= 0 {
		return 0
	}
	return int(secs / secondsPerDay)
}

const secondsPerDay = 24 * 60 * 60

// DaySet is a set of calendar days keyed by DayKey.
type DaySet map[string]struct{}

// Contains reports whether day is in the set.
func (s DaySet) Contains(day string) bool {
	_, ok := s[day]
	return ok
}

// Sorted returns the days in ascending order.
func (s DaySet) Sorted() []string {
	out := make([]string, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// BlockedDays returns every day covered by any of the bookings.
func BlockedDays(bookings []Booking) DaySet {
	set := make(DaySet)
	for i := range bookings {
		for _, d := range bookings[i].Days() {
			set[d] = struct{}{}
		}
	}
	return set
}

// IsBookable reports whether candidate shares no day with the existing
// bookings.  A stored booking with the candidate's own id is skipped so an
// update is not compared against its previous dates.
func IsBookable(candidate Booking, existing []Booking) bool {
	others := make([]Booking, 0, len(existing))
	for _, b := range existing {
		if candidate.ID != 0 && b.ID == candidate.ID {
			continue
		}
		others = append(others, b)
	}
	blocked := BlockedDays(others)
	for _, d := range candidate.Days() {
		if blocked.Contains(d) {
			return false
		}
	}
	return true
}
