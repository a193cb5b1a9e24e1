// Package de provides the public holidays of the German federal states.
//
// Holidays are only known from 1990 (reunification) onwards; earlier dates
// are never holidays.
package de

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/username/bdays/pkg/dateutil"
	"github.com/username/bdays/pkg/easter"
)

// ErrUnknownState is returned by ParseState for unrecognised codes.
var ErrUnknownState = errors.New("unknown German state")

// State is a German federal state. Any is a pseudo-state that observes every
// holiday of any state.
type State int

const (
	BW  State = iota // Baden-Württemberg
	BY               // Bayern
	BE               // Berlin
	BB               // Brandenburg
	HB               // Bremen
	HH               // Hamburg
	HE               // Hessen
	MV               // Mecklenburg-Vorpommern
	NI               // Niedersachsen
	NW               // Nordrhein-Westfalen
	RP               // Rheinland-Pfalz
	SL               // Saarland
	SN               // Sachsen
	ST               // Sachsen-Anhalt
	SH               // Schleswig-Holstein
	TH               // Thüringen
	Any
)

var stateCodes = [...]string{
	"BW", "BY", "BE", "BB", "HB", "HH", "HE", "MV",
	"NI", "NW", "RP", "SL", "SN", "ST", "SH", "TH", "ANY",
}

// AllStates lists the sixteen federal states, excluding Any.
var AllStates = []State{BW, BY, BE, BB, HB, HH, HE, MV, NI, NW, RP, SL, SN, ST, SH, TH}

func (s State) String() string {
	if s < BW || s > Any {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateCodes[s]
}

// ParseState returns the State for a two-letter code such as "BY" or for
// "any". Matching is case-insensitive.
func ParseState(code string) (State, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for i, c := range stateCodes {
		if c == code {
			return State(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownState, code)
}

type holiday int

const (
	noHoliday holiday = iota
	newYearsDay
	epiphany
	internationalWomensDay
	goodFriday
	easterMonday
	labourDay
	ascensionDay
	whitMonday
	corpusChristi
	assumptionDay
	worldChildrensDay
	germanUnityDay
	reformationDay
	allSaintsDay
	repentanceAndPrayerDay
	christmasDay
	secondDayOfChristmas
)

var holidayNames = map[holiday]string{
	newYearsDay:            "New Year's Day",
	epiphany:               "Epiphany",
	internationalWomensDay: "International Women's Day",
	goodFriday:             "Good Friday",
	easterMonday:           "Easter Monday",
	labourDay:              "Labour Day",
	ascensionDay:           "Ascension Day",
	whitMonday:             "Whit Monday",
	corpusChristi:          "Corpus Christi",
	assumptionDay:          "Assumption Day",
	worldChildrensDay:      "World Children's Day",
	germanUnityDay:         "German Unity Day",
	reformationDay:         "Reformation Day",
	allSaintsDay:           "All Saints' Day",
	repentanceAndPrayerDay: "Day of Repentance and Prayer",
	christmasDay:           "Christmas Day",
	secondDayOfChristmas:   "Second Day of Christmas",
}

// holidayOn returns the candidate holiday falling on d, regardless of state.
// Ascension Day falling on May 1 is reported as Labour Day.
func holidayOn(d dateutil.Date) (holiday, error) {
	mm, dd := d.Month(), d.Day()
	switch {
	case mm == time.January && dd == 1:
		return newYearsDay, nil
	case mm == time.January && dd == 6:
		return epiphany, nil
	case mm == time.March && dd == 8:
		return internationalWomensDay, nil
	case mm == time.May && dd == 1:
		return labourDay, nil
	case mm == time.August && dd == 15:
		return assumptionDay, nil
	case mm == time.September && dd == 20:
		return worldChildrensDay, nil
	case mm == time.October && dd == 3:
		return germanUnityDay, nil
	case mm == time.October && dd == 31:
		return reformationDay, nil
	case mm == time.November && dd == 1:
		return allSaintsDay, nil
	case mm == time.December && dd == 25:
		return christmasDay, nil
	case mm == time.December && dd == 26:
		return secondDayOfChristmas, nil
	case mm == time.November && dd >= 16 && dd <= 22 && d.Weekday() == time.Wednesday:
		return repentanceAndPrayerDay, nil
	}

	// Easter-based holidays fall between March 20 and June 24.
	if mm < time.March || mm > time.June {
		return noHoliday, nil
	}
	e, err := easter.Index(d.Year())
	if err != nil {
		return noHoliday, fmt.Errorf("de: %w", err)
	}
	switch d.Index() - e {
	case -2:
		return goodFriday, nil
	case 1:
		return easterMonday, nil
	case 39:
		return ascensionDay, nil
	case 50:
		return whitMonday, nil
	case 60:
		return corpusChristi, nil
	}
	return noHoliday, nil
}

func (s State) in(states ...State) bool {
	for _, other := range states {
		if s == other {
			return true
		}
	}
	return false
}

// observes reports whether s observes h in year.
func (s State) observes(h holiday, year int) bool {
	if year < 1990 {
		return false
	}

	switch h {
	case newYearsDay, goodFriday, easterMonday, labourDay, ascensionDay,
		whitMonday, germanUnityDay, christmasDay, secondDayOfChristmas:
		return true
	case epiphany:
		return s.in(BW, BY, ST, Any)
	case internationalWomensDay:
		return (s.in(BE, Any) && year >= 2019) || (s == MV && year >= 2023)
	case corpusChristi:
		return s.in(BW, BY, HE, NW, RP, SL, Any)
	case assumptionDay:
		return s.in(BY, SL, Any)
	case worldChildrensDay:
		return s.in(TH, Any) && year >= 2019
	case reformationDay:
		// 500th anniversary of the Reformation.
		if year == 2017 || s.in(BB, MV, SN, ST, TH, Any) {
			return true
		}
		return s.in(HB, HH, NI, SH) && year >= 2018
	case allSaintsDay:
		return s.in(BW, BY, NW, RP, SL, Any)
	case repentanceAndPrayerDay:
		return year <= 1994 || s.in(SN, Any)
	}
	return false
}

func (s State) IsHoliday(d dateutil.Date) (bool, error) {
	if d.Year() < 1990 {
		return false, nil
	}
	h, err := holidayOn(d)
	if err != nil {
		return false, err
	}
	return s.observes(h, d.Year()), nil
}

// HolidayName returns the English name of the holiday s observes on d, or ""
// if d is not a holiday in s.
func (s State) HolidayName(d dateutil.Date) string {
	if d.Year() < 1990 {
		return ""
	}
	h, err := holidayOn(d)
	if err != nil || !s.observes(h, d.Year()) {
		return ""
	}
	return holidayNames[h]
}

// NumHolidays returns the number of holidays s observes in year, including
// those falling on a weekend. Holidays sharing a date are counted
// separately.
func (s State) NumHolidays(year int) int {
	n := 0
	for h := newYearsDay; h <= secondDayOfChristmas; h++ {
		if s.observes(h, year) {
			n++
		}
	}
	return n
}

// States is a holiday on any day that is a holiday in at least one of its
// states.
type States []State

func (ss States) IsHoliday(d dateutil.Date) (bool, error) {
	if len(ss) == 0 || d.Year() < 1990 {
		return false, nil
	}
	h, err := holidayOn(d)
	if err != nil {
		return false, err
	}
	for _, s := range ss {
		if s.observes(h, d.Year()) {
			return true, nil
		}
	}
	return false, nil
}
