package calendar

import "github.com/username/bdays/pkg/dateutil"

// WeekendsOnly has no holidays: only Saturdays and Sundays are non-business
// days.
type WeekendsOnly struct{}

func (WeekendsOnly) IsHoliday(dateutil.Date) (bool, error) {
	return false, nil
}
