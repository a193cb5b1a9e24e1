package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/username/bdays/internal/isdayoff"
	"github.com/username/bdays/pkg/calendar"
	"github.com/username/bdays/pkg/calendar/brazil"
	"github.com/username/bdays/pkg/calendar/de"
	"github.com/username/bdays/pkg/calendar/us"
	"github.com/username/bdays/pkg/dateutil"
)

func TestNames(t *testing.T) {
	names := New(nil).Names()

	for _, want := range []string{
		"weekends", "br-settlement", "br-exchange", "us-settlement", "us-federal",
		"de-any", "de-by", "de-th", "ru",
	} {
		assert.Contains(t, names, want)
	}
	assert.Len(t, names, 6+17)
	assert.IsIncreasing(t, names)
}

func TestLookup(t *testing.T) {
	r := New(zap.NewNop())

	tests := []struct {
		name string
		want calendar.HolidayCalendar
	}{
		{"", calendar.WeekendsOnly{}},
		{"weekends", calendar.WeekendsOnly{}},
		{"br-settlement", brazil.Settlement{}},
		{"BR-Exchange", brazil.Exchange{}},
		{" us-settlement ", us.Settlement{}},
		{"de-by", de.BY},
		{"de-any", de.Any},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Lookup(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := r.Lookup("mars")
	assert.ErrorIs(t, err, ErrUnknownCalendar)

	ru, err := r.Lookup("ru")
	require.NoError(t, err)
	assert.IsType(t, &isdayoff.Calendar{}, ru)
	again, err := r.Lookup("RU")
	require.NoError(t, err)
	assert.Same(t, ru, again, "downloaded years are shared between lookups")

	federal, err := r.Lookup("us-federal")
	require.NoError(t, err)
	assert.IsType(t, &CalAdapter{}, federal)
}

func TestResolve(t *testing.T) {
	r := New(nil)

	name, err := r.Resolve(" DE-BY ")
	require.NoError(t, err)
	assert.Equal(t, "de-by", name)

	name, err = r.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, DefaultCalendar, name)

	_, err = r.Resolve("mars")
	assert.ErrorIs(t, err, ErrUnknownCalendar)
}

func TestRegister(t *testing.T) {
	r := New(nil)
	r.Register("Closed-Fridays", func() (calendar.HolidayCalendar, error) {
		return calendar.HolidayFunc(func(d dateutil.Date) (bool, error) {
			return d.Weekday() == 5, nil
		}), nil
	})

	h, err := r.Lookup("closed-fridays")
	require.NoError(t, err)
	got, err := h.IsHoliday(dateutil.Of(2024, 3, 1))
	require.NoError(t, err)
	assert.True(t, got)
}

func TestBuildWithHolidaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "holidays.txt")
	require.NoError(t, os.WriteFile(path, []byte("2024-03-04 Company day\n"), 0o644))

	h, err := New(nil).Build("br-settlement", path)
	require.NoError(t, err)

	for date, want := range map[string]bool{
		"2024-03-04": true,  // from the file
		"2024-02-12": true,  // Carnival
		"2024-03-05": false, // ordinary Tuesday
	} {
		got, err := h.IsHoliday(dateutil.MustParse(date))
		require.NoError(t, err)
		assert.Equal(t, want, got, date)
	}

	namer, ok := h.(calendar.HolidayNamer)
	require.True(t, ok)
	assert.Equal(t, "Company day", namer.HolidayName(dateutil.Of(2024, 3, 4)))
}

func TestBuildErrors(t *testing.T) {
	r := New(nil)

	_, err := r.Build("nowhere", "")
	assert.ErrorIs(t, err, ErrUnknownCalendar)

	_, err = r.Build("weekends", filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestUSFederalMatchesSettlement(t *testing.T) {
	federal := NewUSFederal()
	settlement := us.Settlement{}

	for d := dateutil.Of(2024, 1, 1); d.Year() == 2024; d = dateutil.Step(d, true) {
		if d.IsWeekend() {
			continue
		}
		want, err := settlement.IsHoliday(d)
		require.NoError(t, err)
		got, err := federal.IsHoliday(d)
		require.NoError(t, err)
		assert.Equal(t, want, got, d.String())
	}
}

func TestUSFederalNames(t *testing.T) {
	federal := NewUSFederal()

	assert.NotEmpty(t, federal.HolidayName(dateutil.Of(2024, 11, 28)))
	assert.Empty(t, federal.HolidayName(dateutil.Of(2024, 11, 27)))

	// Independence Day 2021 fell on a Sunday and was observed on Monday.
	observed, err := federal.IsHoliday(dateutil.Of(2021, 7, 5))
	require.NoError(t, err)
	assert.True(t, observed)

	actual := NewCalAdapter(federal.cal, false)
	got, err := actual.IsHoliday(dateutil.Of(2021, 7, 5))
	require.NoError(t, err)
	assert.False(t, got)
	got, err = actual.IsHoliday(dateutil.Of(2021, 7, 4))
	require.NoError(t, err)
	assert.True(t, got)
}
