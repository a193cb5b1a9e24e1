package calendar

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/username/bdays/pkg/dateutil"
)

// FileCalendar implements HolidayCalendar using a local text file listing
// one holiday per line.
//
// Line format: YYYY-MM-DD [name]. Empty lines and lines starting with '#'
// are ignored.
type FileCalendar struct {
	filePath string
	logger   *zap.Logger
	names    map[dateutil.Date]string
}

// NewFileCalendar creates a new FileCalendar instance. Call Load before
// querying it.
func NewFileCalendar(filePath string, logger *zap.Logger) *FileCalendar {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileCalendar{
		filePath: filePath,
		logger:   logger,
		names:    make(map[dateutil.Date]string),
	}
}

// Load loads holidays from the file
func (fc *FileCalendar) Load() error {
	file, err := os.Open(fc.filePath)
	if err != nil {
		return fmt.Errorf("failed to open calendar file: %w", err)
	}
	defer file.Close()

	if err := fc.Read(file); err != nil {
		return err
	}

	fc.logger.Info("Calendar file loaded",
		zap.String("file", fc.filePath),
		zap.Int("holidays", len(fc.names)))

	return nil
}

// Read parses holidays from r and adds them to the calendar. Malformed
// lines are logged and skipped.
func (fc *FileCalendar) Read(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Example: 2025-01-01 New Year's Day
		parts := strings.SplitN(line, " ", 2)
		date, err := dateutil.Parse(parts[0])
		if err != nil {
			fc.logger.Warn("Failed to parse date",
				zap.Int("line", lineNo),
				zap.String("date", parts[0]),
				zap.Error(err))
			continue
		}

		name := ""
		if len(parts) == 2 {
			name = strings.TrimSpace(parts[1])
		}
		fc.names[date] = name
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading calendar file: %w", err)
	}
	return nil
}

func (fc *FileCalendar) IsHoliday(d dateutil.Date) (bool, error) {
	_, ok := fc.names[d]
	return ok, nil
}

// HolidayName returns the name listed for d, or "" if d is not listed.
func (fc *FileCalendar) HolidayName(d dateutil.Date) string {
	return fc.names[d]
}

// Dates returns every listed holiday in ascending order.
func (fc *FileCalendar) Dates() []dateutil.Date {
	dates := make([]dateutil.Date, 0, len(fc.names))
	for d := range fc.names {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].Before(dates[j])
	})
	return dates
}
