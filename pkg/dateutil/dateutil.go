// Package dateutil provides Date, a calendar date in the proleptic Gregorian
// calendar without time of day or time zone.
//
// Every Date maps to a linear day index counting days from the epoch
// 0001-01-01 (index 1). Subtracting two indexes yields the number of elapsed
// calendar days, and index mod 7 yields the weekday (0 = Sunday).
package dateutil

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidDate is returned when a year/month/day triple does not name a
// real calendar day.
var ErrInvalidDate = errors.New("invalid date")

// Date is an immutable calendar date. The zero value is not a valid date.
type Date struct {
	year  int
	month time.Month
	day   int
}

// daysBefore[m] is the number of days before month m+1 in a non-leap year.
var daysBefore = [...]int{0, 31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334, 365}

// New returns the date year-month-day, or ErrInvalidDate when the triple
// does not exist (e.g. February 30).
func New(year int, month time.Month, day int) (Date, error) {
	if month < time.January || month > time.December || day < 1 || day > DaysIn(year, month) {
		return Date{}, fmt.Errorf("%w: %04d-%02d-%02d", ErrInvalidDate, year, int(month), day)
	}
	return Date{year: year, month: month, day: day}, nil
}

// Of returns the date year-month-day, normalizing out-of-range values the
// same way time.Date does (October 32 becomes November 1).
func Of(year int, month time.Month, day int) Date {
	return FromTime(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// FromTime returns the calendar date of t in t's location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{year: y, month: m, day: d}
}

// FromIndex returns the date with the given linear day index.
func FromIndex(index int) Date {
	return FromTime(time.Date(1, time.January, index, 0, 0, 0, 0, time.UTC))
}

// Today returns the current local date.
func Today() Date {
	return FromTime(time.Now())
}

// WithYearDay returns the ord-th day of year (1-based). The boolean is false
// when ord is outside the year.
func WithYearDay(year, ord int) (Date, bool) {
	if ord < 1 || ord > DaysInYear(year) {
		return Date{}, false
	}
	for m := time.January; m <= time.December; m++ {
		n := DaysIn(year, m)
		if ord <= n {
			return Date{year: year, month: m, day: ord}, true
		}
		ord -= n
	}
	return Date{}, false
}

// Step returns the date exactly one calendar day after d when forward is
// true, or one day before it otherwise.
func Step(d Date, forward bool) Date {
	ord := d.YearDay() - 1
	if forward {
		ord = d.YearDay() + 1
	}
	if next, ok := WithYearDay(d.year, ord); ok {
		return next
	}
	if forward {
		return Date{year: d.year + 1, month: time.January, day: 1}
	}
	return Date{year: d.year - 1, month: time.December, day: 31}
}

// IsLeap reports whether year is a Gregorian leap year.
func IsLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInYear returns 366 for leap years and 365 otherwise.
func DaysInYear(year int) int {
	if IsLeap(year) {
		return 366
	}
	return 365
}

// DaysIn returns the number of days of month in year.
func DaysIn(year int, month time.Month) int {
	if month == time.February && IsLeap(year) {
		return 29
	}
	return daysBefore[month] - daysBefore[month-1]
}

func (d Date) Year() int         { return d.year }
func (d Date) Month() time.Month { return d.month }
func (d Date) Day() int          { return d.day }

// YearDay returns the day of the year, in the range [1, 366].
func (d Date) YearDay() int {
	n := daysBefore[d.month-1] + d.day
	if d.month > time.February && IsLeap(d.year) {
		n++
	}
	return n
}

// Index returns the linear day index of d (0001-01-01 is 1).
func (d Date) Index() int {
	y := d.year - 1
	return 365*y + floorDiv(y, 4) - floorDiv(y, 100) + floorDiv(y, 400) + d.YearDay()
}

// Weekday returns the day of the week of d.
func (d Date) Weekday() time.Weekday {
	return time.Weekday(mod(d.Index(), 7))
}

// IsWeekend reports whether d falls on a Saturday or a Sunday.
func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsWeekday reports whether d falls on Monday through Friday.
func (d Date) IsWeekday() bool {
	return !d.IsWeekend()
}

// AddDays returns d shifted by n calendar days.
func (d Date) AddDays(n int) Date {
	if n == 0 {
		return d
	}
	return FromIndex(d.Index() + n)
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or
// after other.
func (d Date) Compare(other Date) int {
	switch {
	case d.year != other.year:
		return sign(d.year - other.year)
	case d.month != other.month:
		return sign(int(d.month) - int(other.month))
	default:
		return sign(d.day - other.day)
	}
}

func (d Date) Before(other Date) bool { return d.Compare(other) < 0 }
func (d Date) After(other Date) bool  { return d.Compare(other) > 0 }
func (d Date) Equal(other Date) bool  { return d == other }

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d == Date{} }

// Time returns midnight UTC of d.
func (d Date) Time() time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)
}

// String formats d as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.year, int(d.month), d.day)
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

var layouts = []string{
	"2006-01-02",
	"02.01.2006",
	"20060102",
}

// Parse parses a date in one of the formats YYYY-MM-DD, DD.MM.YYYY or
// YYYYMMDD.
func Parse(s string) (Date, error) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return FromTime(t), nil
		}
	}
	return Date{}, fmt.Errorf("%w: cannot parse %q", ErrInvalidDate, s)
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level constants.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}
