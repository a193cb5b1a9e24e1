// Package us provides the United States federal (settlement) holiday
// calendar.
package us

import (
	"time"

	"github.com/username/bdays/pkg/dateutil"
)

// Settlement observes the US federal holidays. A holiday falling on a
// Saturday is observed on the preceding Friday and one falling on a Sunday
// on the following Monday.
type Settlement struct{}

func (s Settlement) IsHoliday(d dateutil.Date) (bool, error) {
	return s.HolidayName(d) != "", nil
}

type holiday struct {
	name  string
	since int
	date  func(year int) dateutil.Date
}

func fixed(month time.Month, day int) func(int) dateutil.Date {
	return func(year int) dateutil.Date { return dateutil.Of(year, month, day) }
}

func nth(wd time.Weekday, month time.Month, occurrence int) func(int) dateutil.Date {
	return func(year int) dateutil.Date { return FindWeekday(wd, year, month, occurrence, true) }
}

func last(wd time.Weekday, month time.Month) func(int) dateutil.Date {
	return func(year int) dateutil.Date { return FindWeekday(wd, year, month, 1, false) }
}

var holidays = []holiday{
	{"New Year's Day", 0, fixed(time.January, 1)},
	{"Martin Luther King Jr. Day", 1983, nth(time.Monday, time.January, 3)},
	{"Washington's Birthday", 0, nth(time.Monday, time.February, 3)},
	{"Memorial Day", 0, last(time.Monday, time.May)},
	{"Juneteenth", 2021, fixed(time.June, 19)},
	{"Independence Day", 0, fixed(time.July, 4)},
	{"Labor Day", 0, nth(time.Monday, time.September, 1)},
	{"Columbus Day", 0, nth(time.Monday, time.October, 2)},
	{"Veterans Day", 0, fixed(time.November, 11)},
	{"Thanksgiving Day", 0, nth(time.Thursday, time.November, 4)},
	{"Christmas Day", 0, fixed(time.December, 25)},
}

// HolidayName returns the name of the holiday observed on d, or "".
func (Settlement) HolidayName(d dateutil.Date) string {
	// New Year's Day on a Saturday is observed on December 31.
	if d.Month() == time.December && d.Day() == 31 && d.Weekday() == time.Friday {
		return "New Year's Day"
	}
	for _, h := range holidays {
		if d.Year() < h.since {
			continue
		}
		if observed(h.date(d.Year())) == d {
			return h.name
		}
	}
	return ""
}

// observed moves a Saturday to Friday and a Sunday to Monday.
func observed(d dateutil.Date) dateutil.Date {
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDays(-1)
	case time.Sunday:
		return d.AddDays(1)
	}
	return d
}

// EndOfMonth returns the last day of month in year.
func EndOfMonth(year int, month time.Month) dateutil.Date {
	return dateutil.Of(year, month+1, 0)
}

// FindWeekday returns the occurrence-th wd of month in year, counting from
// the first day of the month when ascending is true and from the last day
// otherwise. FindWeekday(time.Monday, 2024, time.May, 1, false) is the last
// Monday of May 2024.
func FindWeekday(wd time.Weekday, year int, month time.Month, occurrence int, ascending bool) dateutil.Date {
	if ascending {
		anchor := dateutil.Of(year, month, 1)
		offset := (int(wd) - int(anchor.Weekday()) + 7) % 7
		return anchor.AddDays(offset + 7*(occurrence-1))
	}

	anchor := EndOfMonth(year, month)
	offset := (int(anchor.Weekday()) - int(wd) + 7) % 7
	return anchor.AddDays(-offset - 7*(occurrence-1))
}
