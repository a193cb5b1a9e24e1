// Package registry maps calendar names used in configuration and on the
// command line to holiday calendars.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/username/bdays/internal/isdayoff"
	"github.com/username/bdays/pkg/calendar"
	"github.com/username/bdays/pkg/calendar/brazil"
	"github.com/username/bdays/pkg/calendar/de"
	"github.com/username/bdays/pkg/calendar/us"
)

// DefaultCalendar is used when no calendar name is configured.
const DefaultCalendar = "weekends"

// ErrUnknownCalendar is returned when a name is not registered.
var ErrUnknownCalendar = errors.New("unknown calendar")

// Factory creates a holiday calendar.
type Factory func() (calendar.HolidayCalendar, error)

// Registry holds the named calendars.
type Registry struct {
	factories map[string]Factory
	logger    *zap.Logger
}

// New returns a Registry with every built-in calendar registered.
func New(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{
		factories: make(map[string]Factory),
		logger:    logger,
	}

	r.Register("weekends", static(calendar.WeekendsOnly{}))
	r.Register("br-settlement", static(brazil.Settlement{}))
	r.Register("br-exchange", static(brazil.Exchange{}))
	r.Register("us-settlement", static(us.Settlement{}))
	r.Register("us-federal", func() (calendar.HolidayCalendar, error) {
		return NewUSFederal(), nil
	})
	// One instance so downloaded years are shared between lookups.
	r.Register("ru", static(isdayoff.New(isdayoff.DefaultBaseURL, isdayoff.DefaultFallbackURL, logger)))
	for _, s := range append(de.AllStates, de.Any) {
		r.Register("de-"+strings.ToLower(s.String()), static(s))
	}

	return r
}

func static(h calendar.HolidayCalendar) Factory {
	return func() (calendar.HolidayCalendar, error) { return h, nil }
}

// Register adds or replaces the calendar called name.
func (r *Registry) Register(name string, f Factory) {
	r.factories[strings.ToLower(name)] = f
}

// Names returns the registered calendar names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the registered form of name. Names are case-insensitive;
// an empty name selects DefaultCalendar.
func (r *Registry) Resolve(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = DefaultCalendar
	}
	if _, ok := r.factories[name]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCalendar, name)
	}
	return name, nil
}

// Lookup returns the calendar registered as name.
func (r *Registry) Lookup(name string) (calendar.HolidayCalendar, error) {
	name, err := r.Resolve(name)
	if err != nil {
		return nil, err
	}
	h, err := r.factories[name]()
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar %q: %w", name, err)
	}
	return h, nil
}

// Build looks up name and, when holidaysFile is set, adds the holidays listed
// in that file on top of it.
func (r *Registry) Build(name, holidaysFile string) (calendar.HolidayCalendar, error) {
	h, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	if holidaysFile == "" {
		r.logger.Debug("Using calendar", zap.String("calendar", name))
		return h, nil
	}

	fc := calendar.NewFileCalendar(holidaysFile, r.logger)
	if err := fc.Load(); err != nil {
		return nil, fmt.Errorf("failed to load holidays file: %w", err)
	}

	r.logger.Debug("Using calendar with extra holidays",
		zap.String("calendar", name),
		zap.String("holidays_file", holidaysFile))

	return calendar.NewUnion(h, fc), nil
}
