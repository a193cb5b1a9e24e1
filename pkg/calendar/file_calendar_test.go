package calendar

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/username/bdays/pkg/dateutil"
)

const holidaysFile = `# Company holidays
2025-01-01 New Year's Day

2025-05-01 Labour Day
2025-13-01 Broken
31.12.2025 New Year's Eve
20251224
`

func TestFileCalendarRead(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	fc := NewFileCalendar("", zap.New(core))

	if err := fc.Read(strings.NewReader(holidaysFile)); err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	tests := []struct {
		date     dateutil.Date
		want     bool
		wantName string
	}{
		{dateutil.Of(2025, 1, 1), true, "New Year's Day"},
		{dateutil.Of(2025, 5, 1), true, "Labour Day"},
		{dateutil.Of(2025, 12, 31), true, "New Year's Eve"},
		{dateutil.Of(2025, 12, 24), true, ""},
		{dateutil.Of(2025, 1, 2), false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.date.String(), func(t *testing.T) {
			got, err := fc.IsHoliday(tt.date)
			if err != nil {
				t.Fatalf("IsHoliday() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("IsHoliday(%v) = %v, want %v", tt.date, got, tt.want)
			}
			if name := fc.HolidayName(tt.date); name != tt.wantName {
				t.Errorf("HolidayName(%v) = %q, want %q", tt.date, name, tt.wantName)
			}
		})
	}

	if n := logs.FilterMessage("Failed to parse date").Len(); n != 1 {
		t.Errorf("logged %d parse failures, want 1", n)
	}

	dates := fc.Dates()
	if len(dates) != 4 || dates[0] != dateutil.Of(2025, 1, 1) || dates[3] != dateutil.Of(2025, 12, 31) {
		t.Errorf("Dates() = %v", dates)
	}
}

func TestFileCalendarLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "holidays.txt")
	if err := os.WriteFile(path, []byte(holidaysFile), 0o644); err != nil {
		t.Fatal(err)
	}

	fc := NewFileCalendar(path, nil)
	if err := fc.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	bday, err := New(fc).IsBusinessDay(dateutil.Of(2025, 5, 1))
	if err != nil {
		t.Fatalf("IsBusinessDay() error = %v", err)
	}
	if bday {
		t.Error("2025-05-01 should not be a business day")
	}
}

func TestFileCalendarLoadMissing(t *testing.T) {
	fc := NewFileCalendar(filepath.Join(t.TempDir(), "missing.txt"), zap.NewNop())
	if err := fc.Load(); err == nil {
		t.Error("Load() of a missing file should fail")
	}
}
