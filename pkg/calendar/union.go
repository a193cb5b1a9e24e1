package calendar

import "github.com/username/bdays/pkg/dateutil"

// Union is a holiday on any day that at least one of its members reports as
// a holiday. Members are consulted in order and evaluation stops at the
// first holiday or error.
type Union []HolidayCalendar

// NewUnion returns a Union of the given calendars.
func NewUnion(members ...HolidayCalendar) Union {
	return Union(members)
}

func (u Union) IsHoliday(d dateutil.Date) (bool, error) {
	for _, member := range u {
		holiday, err := member.IsHoliday(d)
		if err != nil {
			return false, err
		}
		if holiday {
			return true, nil
		}
	}
	return false, nil
}

// HolidayName returns the first non-empty name reported by a member that
// implements HolidayNamer.
func (u Union) HolidayName(d dateutil.Date) string {
	for _, member := range u {
		if namer, ok := member.(HolidayNamer); ok {
			if name := namer.HolidayName(d); name != "" {
				return name
			}
		}
	}
	return ""
}
