// Package easter computes the date of Easter Sunday in the Gregorian
// calendar.
package easter

import (
	"errors"
	"fmt"
	"time"

	"github.com/username/bdays/pkg/dateutil"
)

// FirstYear is the year the Gregorian calendar was adopted. Easter dates
// before it are not computed.
const FirstYear = 1582

// ErrYearOutOfRange is returned for years before FirstYear.
var ErrYearOutOfRange = errors.New("easter: year out of range")

// Index returns the linear day index (see dateutil.Date.Index) of Easter
// Sunday in year.
func Index(year int) (int, error) {
	if year < FirstYear {
		return 0, fmt.Errorf("%w: %d is before %d", ErrYearOutOfRange, year, FirstYear)
	}

	century := year/100 + 1
	golden := year % 19

	// shifted epact
	se := (14 + 11*golden - 3*century/4 + (5+8*century)/25) % 30
	if se < 0 {
		se += 30
	}
	if se == 0 || (se == 1 && golden > 10) {
		se++
	}

	// paschal full moon
	p := dateutil.Of(year, time.April, 19).Index() - se

	// Index 0 mod 7 is a Sunday, so this is the first Sunday after p.
	return p + 7 - p%7, nil
}

// Date returns the date of Easter Sunday in year.
func Date(year int) (dateutil.Date, error) {
	idx, err := Index(year)
	if err != nil {
		return dateutil.Date{}, err
	}
	return dateutil.FromIndex(idx), nil
}
