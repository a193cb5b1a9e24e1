package registry

import (
	"sync"

	"github.com/rickar/cal/v2"
	calus "github.com/rickar/cal/v2/us"

	"github.com/username/bdays/pkg/calendar"
	"github.com/username/bdays/pkg/dateutil"
)

// CalAdapter exposes a github.com/rickar/cal business calendar as a
// HolidayCalendar.
type CalAdapter struct {
	mu       sync.Mutex
	cal      *cal.BusinessCalendar
	observed bool
}

var (
	_ calendar.HolidayCalendar = (*CalAdapter)(nil)
	_ calendar.HolidayNamer    = (*CalAdapter)(nil)
)

// NewCalAdapter wraps bc. When observed is true a holiday counts on the day
// it is observed, otherwise on the day it actually falls.
func NewCalAdapter(bc *cal.BusinessCalendar, observed bool) *CalAdapter {
	return &CalAdapter{cal: bc, observed: observed}
}

// NewUSFederal returns the US federal holidays as published by rickar/cal,
// counted on their observed days.
func NewUSFederal() *CalAdapter {
	bc := cal.NewBusinessCalendar()
	bc.AddHoliday(
		calus.NewYear,
		calus.MlkDay,
		calus.PresidentsDay,
		calus.MemorialDay,
		calus.Juneteenth,
		calus.IndependenceDay,
		calus.LaborDay,
		calus.ColumbusDay,
		calus.VeteransDay,
		calus.ThanksgivingDay,
		calus.ChristmasDay,
	)
	return NewCalAdapter(bc, true)
}

func (a *CalAdapter) IsHoliday(d dateutil.Date) (bool, error) {
	actual, observed, _ := a.lookup(d)
	if a.observed {
		return observed, nil
	}
	return actual, nil
}

// HolidayName returns the rickar/cal name of the holiday on d, or "".
func (a *CalAdapter) HolidayName(d dateutil.Date) string {
	actual, observed, h := a.lookup(d)
	if h == nil || (a.observed && !observed) || (!a.observed && !actual) {
		return ""
	}
	return h.Name
}

func (a *CalAdapter) lookup(d dateutil.Date) (bool, bool, *cal.Holiday) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cal.IsHoliday(d.Time())
}
