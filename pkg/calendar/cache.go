package calendar

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/username/bdays/pkg/dateutil"
)

// Cache is a BusinessCalendar precomputed over the closed range [Min, Max].
//
// IsHoliday, IsBusinessDay and BusinessDaysBetween are O(1). Queries outside
// the range fail with ErrOutOfRange. A Cache is never modified after
// NewCache returns, so it is safe for concurrent use.
type Cache struct {
	min      dateutil.Date
	max      dateutil.Date
	minIndex int

	holidays []bool
	bdays    []bool

	// prefix[i] is the number of business days strictly before min+i.
	prefix []int
}

var _ BusinessCalendar = (*Cache)(nil)

type cacheOptions struct {
	logger *zap.Logger
}

// CacheOption configures NewCache.
type CacheOption func(*cacheOptions)

// WithLogger sets the logger used to report cache construction.
func WithLogger(logger *zap.Logger) CacheOption {
	return func(o *cacheOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewCache evaluates h once for every day in [first, last] and returns the
// resulting Cache. It fails with ErrInvalidRange if first is after last, or
// with the first error returned by h.
func NewCache(h HolidayCalendar, first, last dateutil.Date, opts ...CacheOption) (*Cache, error) {
	options := cacheOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&options)
	}

	if last.Before(first) {
		return nil, fmt.Errorf("%w: %v is after %v", ErrInvalidRange, first, last)
	}

	started := time.Now()
	n := last.Index() - first.Index() + 1

	c := &Cache{
		min:      first,
		max:      last,
		minIndex: first.Index(),
		holidays: make([]bool, n),
		bdays:    make([]bool, n),
		prefix:   make([]int, n),
	}

	count := 0
	d := first
	for i := 0; i < n; i++ {
		holiday, err := h.IsHoliday(d)
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate holiday calendar on %v: %w", d, err)
		}
		bday := !holiday && d.IsWeekday()

		c.holidays[i] = holiday
		c.bdays[i] = bday
		c.prefix[i] = count
		if bday {
			count++
		}
		d = dateutil.Step(d, true)
	}

	options.logger.Info("Holiday calendar cache built",
		zap.Stringer("from", first),
		zap.Stringer("to", last),
		zap.Int("days", n),
		zap.Int("business_days", count),
		zap.Duration("elapsed", time.Since(started)))

	return c, nil
}

// Min returns the first date covered by the cache.
func (c *Cache) Min() dateutil.Date { return c.min }

// Max returns the last date covered by the cache.
func (c *Cache) Max() dateutil.Date { return c.max }

// Len returns the number of days covered by the cache.
func (c *Cache) Len() int { return len(c.bdays) }

func (c *Cache) row(d dateutil.Date) (int, error) {
	i := d.Index() - c.minIndex
	if i < 0 || i >= len(c.bdays) {
		return 0, fmt.Errorf("%w: %v not in [%v, %v]", ErrOutOfRange, d, c.min, c.max)
	}
	return i, nil
}

func (c *Cache) IsHoliday(d dateutil.Date) (bool, error) {
	i, err := c.row(d)
	if err != nil {
		return false, err
	}
	return c.holidays[i], nil
}

func (c *Cache) IsBusinessDay(d dateutil.Date) (bool, error) {
	i, err := c.row(d)
	if err != nil {
		return false, err
	}
	return c.bdays[i], nil
}

func (c *Cache) ToBusinessDay(d dateutil.Date, forward bool) (dateutil.Date, error) {
	return toBusinessDay(c.IsBusinessDay, d, forward)
}

func (c *Cache) AdvanceBusinessDays(d dateutil.Date, n int) (dateutil.Date, error) {
	return advanceBusinessDays(c.IsBusinessDay, d, n)
}

func (c *Cache) BusinessDaysBetween(d0, d1 dateutil.Date) (int, error) {
	d0, err := c.ToBusinessDay(d0, true)
	if err != nil {
		return 0, err
	}
	d1, err = c.ToBusinessDay(d1, true)
	if err != nil {
		return 0, err
	}

	// Both rows are in range: ToBusinessDay checked them.
	i0, _ := c.row(d0)
	i1, _ := c.row(d1)
	return c.prefix[i1] - c.prefix[i0], nil
}

// CountBusinessDays returns the number of business days in the closed
// range [from, to] without snapping either end.
func (c *Cache) CountBusinessDays(from, to dateutil.Date) (int, error) {
	if to.Before(from) {
		return 0, fmt.Errorf("%w: %v is after %v", ErrInvalidRange, from, to)
	}
	i0, err := c.row(from)
	if err != nil {
		return 0, err
	}
	i1, err := c.row(to)
	if err != nil {
		return 0, err
	}

	n := c.prefix[i1] - c.prefix[i0]
	if c.bdays[i1] {
		n++
	}
	return n, nil
}
