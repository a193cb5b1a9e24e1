package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/username/bdays/internal/isdayoff"
	"github.com/username/bdays/internal/registry"
	"github.com/username/bdays/pkg/calendar"
	"github.com/username/bdays/pkg/dateutil"
	"github.com/username/bdays/pkg/easter"
)

// Options controls how calendars are prepared for serving.
type Options struct {
	HolidaysFile string // Extra holidays added to every calendar
	CacheEnabled bool
	CacheFrom    dateutil.Date
	CacheTo      dateutil.Date
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	registry *registry.Registry
	options  Options
	logger   *zap.Logger

	mu        sync.Mutex
	calendars map[string]*entry
}

// entry is a calendar prepared once and shared by all requests. A failed
// preparation is kept too.
type entry struct {
	once     sync.Once
	holidays calendar.HolidayCalendar
	business calendar.BusinessCalendar
	err      error
}

// MaxAdvance bounds the number of business days a single advance request
// may step.
const MaxAdvance = 100000

// NewHandler creates a new handler serving the calendars of reg.
func NewHandler(reg *registry.Registry, options Options, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		registry:  reg,
		options:   options,
		logger:    logger,
		calendars: make(map[string]*entry),
	}
}

type DayResponse struct {
	Date        dateutil.Date `json:"date"`
	Weekday     string        `json:"weekday"`
	Holiday     bool          `json:"holiday"`
	BusinessDay bool          `json:"business_day"`
	Name        string        `json:"name,omitempty"`
}

type DateResponse struct {
	Date dateutil.Date `json:"date"`
}

type CountResponse struct {
	From         dateutil.Date `json:"from"`
	To           dateutil.Date `json:"to"`
	BusinessDays int           `json:"business_days"`
}

type CalendarsResponse struct {
	Calendars []string `json:"calendars"`
}

type HolidayDTO struct {
	Date    dateutil.Date `json:"date"`
	Weekday string        `json:"weekday"`
	Name    string        `json:"name,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ListCalendars handles GET /api/calendars
func (h *Handler) ListCalendars(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, CalendarsResponse{Calendars: h.registry.Names()})
}

// GetDay handles GET /api/calendars/{name}/days/{date}
func (h *Handler) GetDay(w http.ResponseWriter, r *http.Request) {
	e, ok := h.calendar(w, r)
	if !ok {
		return
	}
	d, ok := dateParam(w, r, "date")
	if !ok {
		return
	}

	holiday, err := e.business.IsHoliday(d)
	if err != nil {
		h.writeCalendarError(w, err)
		return
	}
	bday, err := e.business.IsBusinessDay(d)
	if err != nil {
		h.writeCalendarError(w, err)
		return
	}

	resp := DayResponse{
		Date:        d,
		Weekday:     d.Weekday().String(),
		Holiday:     holiday,
		BusinessDay: bday,
	}
	if namer, ok := e.holidays.(calendar.HolidayNamer); ok && holiday {
		resp.Name = namer.HolidayName(d)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Adjust handles GET /api/calendars/{name}/adjust/{date}?backward=true
func (h *Handler) Adjust(w http.ResponseWriter, r *http.Request) {
	e, ok := h.calendar(w, r)
	if !ok {
		return
	}
	d, ok := dateParam(w, r, "date")
	if !ok {
		return
	}
	backward := false
	if s := r.URL.Query().Get("backward"); s != "" {
		var err error
		if backward, err = strconv.ParseBool(s); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid backward flag", err)
			return
		}
	}

	adjusted, err := e.business.ToBusinessDay(d, !backward)
	if err != nil {
		h.writeCalendarError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DateResponse{Date: adjusted})
}

// Advance handles GET /api/calendars/{name}/advance/{date}?n=3
func (h *Handler) Advance(w http.ResponseWriter, r *http.Request) {
	e, ok := h.calendar(w, r)
	if !ok {
		return
	}
	d, ok := dateParam(w, r, "date")
	if !ok {
		return
	}
	n, err := strconv.Atoi(r.URL.Query().Get("n"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid number of business days", err)
		return
	}
	if n > MaxAdvance || n < -MaxAdvance {
		writeError(w, http.StatusBadRequest, "Invalid number of business days",
			fmt.Errorf("|n| must not exceed %d", MaxAdvance))
		return
	}

	result, err := e.business.AdvanceBusinessDays(d, n)
	if err != nil {
		h.writeCalendarError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DateResponse{Date: result})
}

// Between handles GET /api/calendars/{name}/between?from=...&to=...
func (h *Handler) Between(w http.ResponseWriter, r *http.Request) {
	e, ok := h.calendar(w, r)
	if !ok {
		return
	}
	from, to, ok := rangeQuery(w, r)
	if !ok {
		return
	}

	n, err := e.business.BusinessDaysBetween(from, to)
	if err != nil {
		h.writeCalendarError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CountResponse{From: from, To: to, BusinessDays: n})
}

// Count handles GET /api/calendars/{name}/count?from=...&to=...
func (h *Handler) Count(w http.ResponseWriter, r *http.Request) {
	e, ok := h.calendar(w, r)
	if !ok {
		return
	}
	from, to, ok := rangeQuery(w, r)
	if !ok {
		return
	}

	cache, isCache := e.business.(*calendar.Cache)
	if !isCache {
		var err error
		cache, err = calendar.NewCache(e.holidays, from, to)
		if err != nil {
			h.writeCalendarError(w, err)
			return
		}
	}

	n, err := cache.CountBusinessDays(from, to)
	if err != nil {
		h.writeCalendarError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CountResponse{From: from, To: to, BusinessDays: n})
}

// ListHolidays handles GET /api/calendars/{name}/holidays/{year}
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	e, ok := h.calendar(w, r)
	if !ok {
		return
	}
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	namer, _ := e.holidays.(calendar.HolidayNamer)
	holidays := []HolidayDTO{}
	for d := dateutil.Of(year, time.January, 1); d.Year() == year; d = dateutil.Step(d, true) {
		if d.IsWeekend() {
			continue
		}
		holiday, err := e.holidays.IsHoliday(d)
		if err != nil {
			h.writeCalendarError(w, err)
			return
		}
		if !holiday {
			continue
		}

		dto := HolidayDTO{Date: d, Weekday: d.Weekday().String()}
		if namer != nil {
			dto.Name = namer.HolidayName(d)
		}
		holidays = append(holidays, dto)
	}

	writeJSON(w, http.StatusOK, holidays)
}

// GetEaster handles GET /api/easter/{year}
func (h *Handler) GetEaster(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	d, err := easter.Date(year)
	if err != nil {
		h.writeCalendarError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DateResponse{Date: d})
}

// calendar returns the prepared calendar named in the URL, writing an error
// response when it cannot be prepared. Each name is prepared at most once;
// other calendars stay available meanwhile.
func (h *Handler) calendar(w http.ResponseWriter, r *http.Request) (*entry, bool) {
	name, err := h.registry.Resolve(chi.URLParam(r, "name"))
	if err != nil {
		h.writeCalendarError(w, err)
		return nil, false
	}

	h.mu.Lock()
	e, ok := h.calendars[name]
	if !ok {
		e = &entry{}
		h.calendars[name] = e
	}
	h.mu.Unlock()

	e.once.Do(func() { h.prepare(name, e) })
	if e.err != nil {
		h.writeCalendarError(w, e.err)
		return nil, false
	}
	return e, true
}

func (h *Handler) prepare(name string, e *entry) {
	holidays, err := h.registry.Build(name, h.options.HolidaysFile)
	if err != nil {
		e.err = err
		return
	}

	e.holidays, e.business = holidays, calendar.New(holidays)
	if !h.options.CacheEnabled {
		return
	}

	started := time.Now()
	cache, err := calendar.NewCache(holidays, h.options.CacheFrom, h.options.CacheTo, calendar.WithLogger(h.logger))
	if err != nil {
		e.err = fmt.Errorf("failed to build calendar cache for %v..%v (adjust cache.from/cache.to): %w",
			h.options.CacheFrom, h.options.CacheTo, err)
		h.logger.Error("Calendar preparation failed",
			zap.String("calendar", name),
			zap.Duration("elapsed", time.Since(started)),
			zap.Error(err))
		return
	}
	e.business = cache
}

func dateParam(w http.ResponseWriter, r *http.Request, key string) (dateutil.Date, bool) {
	d, err := dateutil.Parse(chi.URLParam(r, key))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return d, false
	}
	return d, true
}

func rangeQuery(w http.ResponseWriter, r *http.Request) (from, to dateutil.Date, ok bool) {
	q := r.URL.Query()
	from, err := dateutil.Parse(q.Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from date", err)
		return from, to, false
	}
	to, err = dateutil.Parse(q.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid to date", err)
		return from, to, false
	}
	return from, to, true
}

// writeCalendarError maps domain errors to HTTP statuses.
func (h *Handler) writeCalendarError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, registry.ErrUnknownCalendar):
		writeError(w, http.StatusNotFound, "Calendar not found", err)
	case errors.Is(err, isdayoff.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "Calendar data unavailable", err)
	case errors.Is(err, calendar.ErrOutOfRange),
		errors.Is(err, calendar.ErrInvalidRange),
		errors.Is(err, easter.ErrYearOutOfRange):
		writeError(w, http.StatusUnprocessableEntity, "Date outside supported range", err)
	default:
		h.logger.Error("Calendar evaluation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Calendar evaluation failed", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
