// Package isdayoff provides the Russian production calendar published by
// isdayoff.ru, with the xmlcalendar.ru JSON files as a fallback source.
package isdayoff

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/username/bdays/pkg/dateutil"
)

const (
	DefaultBaseURL     = "https://isdayoff.ru"
	DefaultFallbackURL = "https://xmlcalendar.ru/data/ru/{year}/calendar.json"
	defaultHTTPTimeout = 10 * time.Second
)

// ErrUnavailable is returned when neither source has data for a year.
var ErrUnavailable = errors.New("production calendar unavailable")

// Calendar implements calendar.HolidayCalendar using the isdayoff.ru API.
//
// Data is downloaded one year at a time and kept for the lifetime of the
// Calendar, including failures, so a missing year costs one request per
// source. Transferred working Saturdays are not business days: weekends
// never are.
type Calendar struct {
	httpClient  *http.Client
	logger      *zap.Logger
	baseURL     string
	fallbackURL string

	mu    sync.Mutex
	years map[int]*yearData
}

type yearData struct {
	off []bool // indexed by day of year - 1
	err error
}

// xmlCalendarYear represents xmlcalendar.ru JSON structure
type xmlCalendarYear struct {
	Year   int                `json:"year"`
	Months []xmlCalendarMonth `json:"months"`
}

type xmlCalendarMonth struct {
	Month int    `json:"month"`
	Days  string `json:"days"` // "1*,2,3+,4,8,9,..." where * = shortened, + = transferred
}

// New creates a Calendar. fallbackURL may contain a {year} placeholder;
// an empty fallbackURL disables the fallback.
func New(baseURL, fallbackURL string, logger *zap.Logger) *Calendar {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calendar{
		httpClient: &http.Client{
			Timeout: defaultHTTPTimeout,
		},
		logger:      logger,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		fallbackURL: fallbackURL,
		years:       make(map[int]*yearData),
	}
}

// IsHoliday reports whether d is a weekday on which nobody works.
func (c *Calendar) IsHoliday(d dateutil.Date) (bool, error) {
	if d.IsWeekend() {
		return false, nil
	}
	data := c.year(d.Year())
	if data.err != nil {
		return false, data.err
	}
	return data.off[d.YearDay()-1], nil
}

// ClearCache drops every downloaded year.
func (c *Calendar) ClearCache() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.years = make(map[int]*yearData)
	c.logger.Info("Calendar cache cleared")
}

func (c *Calendar) year(year int) *yearData {
	c.mu.Lock()
	defer c.mu.Unlock()

	if data, ok := c.years[year]; ok {
		return data
	}

	data := &yearData{}
	data.off, data.err = c.fetchYear(year)
	c.years[year] = data
	return data
}

func (c *Calendar) fetchYear(year int) ([]bool, error) {
	off, err := c.fetchYearFromAPI(year)
	if err == nil {
		return off, nil
	}
	if c.fallbackURL == "" {
		return nil, fmt.Errorf("%w: %d: %w", ErrUnavailable, year, err)
	}

	c.logger.Warn("Failed to fetch year from API, trying fallback",
		zap.Int("year", year),
		zap.Error(err))

	off, fallbackErr := c.fetchYearFromFallback(year)
	if fallbackErr != nil {
		return nil, fmt.Errorf("%w: %d: API=%w, Fallback=%w", ErrUnavailable, year, err, fallbackErr)
	}

	c.logger.Info("Using fallback data", zap.Int("year", year))
	return off, nil
}

// fetchYearFromAPI fetches the whole year from the isdayoff.ru bulk API
func (c *Calendar) fetchYearFromAPI(year int) ([]bool, error) {
	// Build URL: https://isdayoff.ru/api/getdata?year=2025&pre=1
	url := fmt.Sprintf("%s/api/getdata?year=%d&pre=1", c.baseURL, year)

	c.logger.Debug("Fetching year from isdayoff.ru",
		zap.String("url", url),
		zap.Int("year", year))

	resp, err := c.httpClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch calendar data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	off, err := parseBulkResponse(year, strings.TrimSpace(string(body)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse bulk response: %w", err)
	}

	c.logger.Info("Year fetched from API", zap.Int("year", year))
	return off, nil
}

// parseBulkResponse parses isdayoff.ru bulk response string
// Format: one digit per day of the year where:
// 0 = working day
// 1 = non-working day (holiday/weekend)
// 2 = shortened working day
func parseBulkResponse(year int, data string) ([]bool, error) {
	if len(data) != dateutil.DaysInYear(year) {
		return nil, fmt.Errorf("bulk data length mismatch: expected %d, got %d", dateutil.DaysInYear(year), len(data))
	}

	off := make([]bool, len(data))
	for i, code := range data {
		switch code {
		case '0', '2':
		case '1':
			off[i] = true
		default:
			return nil, fmt.Errorf("unknown code '%c' at position %d", code, i)
		}
	}
	return off, nil
}

// fetchYearFromFallback downloads the year from xmlcalendar.ru
func (c *Calendar) fetchYearFromFallback(year int) ([]bool, error) {
	url := strings.ReplaceAll(c.fallbackURL, "{year}", strconv.Itoa(year))

	c.logger.Info("Downloading fallback calendar data",
		zap.String("url", url),
		zap.Int("year", year))

	resp, err := c.httpClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch fallback data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fallback API returned status %d", resp.StatusCode)
	}

	var xmlYear xmlCalendarYear
	if err := json.NewDecoder(resp.Body).Decode(&xmlYear); err != nil {
		return nil, fmt.Errorf("failed to parse fallback JSON: %w", err)
	}
	if xmlYear.Year != 0 && xmlYear.Year != year {
		return nil, fmt.Errorf("fallback data is for year %d, want %d", xmlYear.Year, year)
	}

	off := make([]bool, dateutil.DaysInYear(year))
	for _, month := range xmlYear.Months {
		if month.Month < 1 || month.Month > 12 {
			return nil, fmt.Errorf("invalid month %d in fallback data", month.Month)
		}
		c.markXMLCalendarMonth(off, year, time.Month(month.Month), month.Days)
	}
	return off, nil
}

// markXMLCalendarMonth parses xmlcalendar.ru compact format
// Format: "1*,2,3+,4,8,9,15,16,22,23,29,30"
// * = shortened day, + = transferred day, others = weekends/holidays
func (c *Calendar) markXMLCalendarMonth(off []bool, year int, month time.Month, days string) {
	for _, part := range strings.Split(days, ",") {
		part = strings.TrimSpace(part)
		if part == "" || strings.HasSuffix(part, "*") {
			continue
		}

		day, err := strconv.Atoi(strings.TrimSuffix(part, "+"))
		if err != nil || day < 1 || day > dateutil.DaysIn(year, month) {
			c.logger.Warn("Failed to parse day number",
				zap.String("part", part),
				zap.Int("month", int(month)),
				zap.Error(err))
			continue
		}

		off[dateutil.Of(year, month, day).YearDay()-1] = true
	}
}
