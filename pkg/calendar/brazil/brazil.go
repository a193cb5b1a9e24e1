// Package brazil provides Brazilian holiday calendars.
package brazil

import (
	"fmt"
	"time"

	"github.com/username/bdays/pkg/dateutil"
	"github.com/username/bdays/pkg/easter"
)

// Settlement is the Brazilian banking (settlement) holiday calendar.
type Settlement struct{}

// Exchange is the B3 (BM&FBOVESPA) exchange holiday calendar: the
// settlement holidays plus São Paulo and exchange-specific closures.
type Exchange struct{}

func (Settlement) IsHoliday(d dateutil.Date) (bool, error) {
	if isNationalFixed(d) {
		return true, nil
	}
	// Corpus Christi, the latest Easter-based holiday, is never later than
	// June 24.
	if d.Month() >= time.August {
		return false, nil
	}
	return isEasterBased(d)
}

func (Exchange) IsHoliday(d dateutil.Date) (bool, error) {
	if isNationalFixed(d) {
		return true, nil
	}

	yy, mm, dd := d.Year(), d.Month(), d.Day()
	switch {
	// Aniversário de São Paulo
	case mm == time.January && dd == 25 && yy < 2022:
		return true, nil
	// Revolução Constitucionalista
	case mm == time.July && dd == 9 && yy < 2022 && yy != 2020:
		return true, nil
	// Dia da Consciência Negra
	case mm == time.November && dd == 20 && isBlackConsciousnessDay(yy):
		return true, nil
	// Véspera de Natal
	case mm == time.December && dd == 24:
		return true, nil
	case isLastWeekdayOfYear(d):
		return true, nil
	}

	if mm >= time.August {
		return false, nil
	}
	return isEasterBased(d)
}

func isNationalFixed(d dateutil.Date) bool {
	mm, dd := d.Month(), d.Day()
	switch {
	case mm == time.January && dd == 1: // Confraternização Universal
	case mm == time.April && dd == 21: // Tiradentes
	case mm == time.May && dd == 1: // Dia do Trabalho
	case mm == time.September && dd == 7: // Independência do Brasil
	case mm == time.October && dd == 12: // Nossa Senhora Aparecida
	case mm == time.November && dd == 2: // Finados
	case mm == time.November && dd == 15: // Proclamação da República
	case mm == time.December && dd == 25: // Natal
	default:
		return false
	}
	return true
}

func isEasterBased(d dateutil.Date) (bool, error) {
	e, err := easter.Index(d.Year())
	if err != nil {
		return false, fmt.Errorf("brazil: %w", err)
	}

	switch d.Index() - e {
	case -48, -47: // Carnaval (segunda e terça)
		return true, nil
	case -2: // Sexta-feira Santa
		return true, nil
	case 60: // Corpus Christi
		return true, nil
	}
	return false, nil
}

// The exchange observed Consciência Negra from 2007 until 2019 and in 2021;
// it is a national holiday since 2024.
func isBlackConsciousnessDay(year int) bool {
	return (year >= 2007 && year <= 2019) || year == 2021 || year >= 2024
}

// isLastWeekdayOfYear reports whether d is the last Monday-Friday of December.
func isLastWeekdayOfYear(d dateutil.Date) bool {
	if d.Month() != time.December || d.Day() < 29 || d.IsWeekend() {
		return false
	}
	for next := dateutil.Step(d, true); next.Year() == d.Year(); next = dateutil.Step(next, true) {
		if next.IsWeekday() {
			return false
		}
	}
	return true
}
