// Package calendar implements business-day arithmetic on top of a
// HolidayCalendar.
//
// A business day is a weekday (Monday through Friday) that is not a holiday.
// Rule sets only have to answer IsHoliday; New wraps one with the generic
// algorithms and NewCache precomputes them over a fixed date range.
package calendar

import (
	"errors"

	"github.com/username/bdays/pkg/dateutil"
)

var (
	// ErrInvalidRange is returned by NewCache when the lower bound is after
	// the upper bound.
	ErrInvalidRange = errors.New("invalid date range")

	// ErrOutOfRange is returned when a cache is queried outside the range it
	// was built for.
	ErrOutOfRange = errors.New("date out of cache range")
)

// HolidayCalendar reports whether a date is a holiday.
//
// Weekends need not be reported; they are never business days.
type HolidayCalendar interface {
	IsHoliday(d dateutil.Date) (bool, error)
}

// HolidayNamer is implemented by rule sets that can name their holidays.
type HolidayNamer interface {
	// HolidayName returns the name of the holiday on d, or "" if d is not a
	// named holiday.
	HolidayName(d dateutil.Date) string
}

// HolidayFunc adapts an ordinary function to HolidayCalendar.
type HolidayFunc func(d dateutil.Date) (bool, error)

// IsHoliday calls f(d).
func (f HolidayFunc) IsHoliday(d dateutil.Date) (bool, error) {
	return f(d)
}

// BusinessCalendar is a HolidayCalendar with business-day operations.
type BusinessCalendar interface {
	HolidayCalendar

	// IsBusinessDay reports whether d is neither a weekend nor a holiday.
	IsBusinessDay(d dateutil.Date) (bool, error)

	// ToBusinessDay returns d if it is a business day, otherwise the next
	// (forward) or previous business day.
	ToBusinessDay(d dateutil.Date, forward bool) (dateutil.Date, error)

	// AdvanceBusinessDays moves n business days from d after snapping d
	// forward to a business day. Negative n moves backwards.
	AdvanceBusinessDays(d dateutil.Date, n int) (dateutil.Date, error)

	// BusinessDaysBetween snaps both dates forward to business days and
	// returns the signed number of business days from d0 to d1.
	BusinessDaysBetween(d0, d1 dateutil.Date) (int, error)
}

// IsWeekend reports whether d is a Saturday or a Sunday.
func IsWeekend(d dateutil.Date) bool { return d.IsWeekend() }

// IsWeekday reports whether d is Monday through Friday.
func IsWeekday(d dateutil.Date) bool { return d.IsWeekday() }

// Calendar implements BusinessCalendar by evaluating the wrapped
// HolidayCalendar day by day.
type Calendar struct {
	holidays HolidayCalendar
}

var _ BusinessCalendar = (*Calendar)(nil)

// New wraps h with the business-day algorithms. If h already is a
// *Calendar it is returned unchanged.
func New(h HolidayCalendar) *Calendar {
	if c, ok := h.(*Calendar); ok {
		return c
	}
	return &Calendar{holidays: h}
}

// Holidays returns the wrapped rule set.
func (c *Calendar) Holidays() HolidayCalendar {
	return c.holidays
}

func (c *Calendar) IsHoliday(d dateutil.Date) (bool, error) {
	return c.holidays.IsHoliday(d)
}

func (c *Calendar) IsBusinessDay(d dateutil.Date) (bool, error) {
	return isBusinessDay(c.holidays, d)
}

func (c *Calendar) ToBusinessDay(d dateutil.Date, forward bool) (dateutil.Date, error) {
	return toBusinessDay(c.IsBusinessDay, d, forward)
}

func (c *Calendar) AdvanceBusinessDays(d dateutil.Date, n int) (dateutil.Date, error) {
	return advanceBusinessDays(c.IsBusinessDay, d, n)
}

func (c *Calendar) BusinessDaysBetween(d0, d1 dateutil.Date) (int, error) {
	d0, err := c.ToBusinessDay(d0, true)
	if err != nil {
		return 0, err
	}
	d1, err = c.ToBusinessDay(d1, true)
	if err != nil {
		return 0, err
	}

	from, to, inc := d0, d1, 1
	if d1.Before(d0) {
		from, to, inc = d1, d0, -1
	}

	count := 0
	for from.Before(to) {
		from, err = c.AdvanceBusinessDays(from, 1)
		if err != nil {
			return 0, err
		}
		count += inc
	}
	return count, nil
}

// businessDayFunc is the IsBusinessDay method of a BusinessCalendar.
type businessDayFunc func(d dateutil.Date) (bool, error)

func isBusinessDay(h HolidayCalendar, d dateutil.Date) (bool, error) {
	if d.IsWeekend() {
		return false, nil
	}
	holiday, err := h.IsHoliday(d)
	if err != nil {
		return false, err
	}
	return !holiday, nil
}

func toBusinessDay(isBday businessDayFunc, d dateutil.Date, forward bool) (dateutil.Date, error) {
	for {
		ok, err := isBday(d)
		if err != nil {
			return dateutil.Date{}, err
		}
		if ok {
			return d, nil
		}
		d = dateutil.Step(d, forward)
	}
}

func advanceBusinessDays(isBday businessDayFunc, d dateutil.Date, n int) (dateutil.Date, error) {
	d, err := toBusinessDay(isBday, d, true)
	if err != nil {
		return dateutil.Date{}, err
	}

	forward := n > 0
	if n < 0 {
		n = -n
	}

	for ; n > 0; n-- {
		d, err = toBusinessDay(isBday, dateutil.Step(d, forward), forward)
		if err != nil {
			return dateutil.Date{}, err
		}
	}
	return d, nil
}
