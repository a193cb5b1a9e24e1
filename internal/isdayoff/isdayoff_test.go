package isdayoff

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"github.com/username/bdays/pkg/dateutil"
)

// bulk2025 renders a year in isdayoff.ru bulk format with weekends off and
// the given overrides.
func bulk2025(overrides map[string]byte) string {
	var sb strings.Builder
	for d := dateutil.Of(2025, 1, 1); d.Year() == 2025; d = dateutil.Step(d, true) {
		if code, ok := overrides[d.String()]; ok {
			sb.WriteByte(code)
		} else if d.IsWeekend() {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

type testServer struct {
	*httptest.Server
	apiCalls      atomic.Int32
	fallbackCalls atomic.Int32
}

func newTestServer(t *testing.T, api, fallback http.HandlerFunc) *testServer {
	ts := &testServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/getdata", func(w http.ResponseWriter, r *http.Request) {
		ts.apiCalls.Add(1)
		api(w, r)
	})
	mux.HandleFunc("/fallback/", func(w http.ResponseWriter, r *http.Request) {
		ts.fallbackCalls.Add(1)
		fallback(w, r)
	})
	ts.Server = httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func failing(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "unavailable", http.StatusServiceUnavailable)
}

func TestCalendar_API(t *testing.T) {
	data := bulk2025(map[string]byte{
		"2025-01-01": '1', "2025-01-02": '1', "2025-01-03": '1',
		"2025-01-06": '1', "2025-01-07": '1', "2025-01-08": '1',
		"2025-03-07": '2',
	})
	ts := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("year") != "2025" {
			t.Errorf("year = %q, want 2025", r.URL.Query().Get("year"))
		}
		_, _ = w.Write([]byte(data))
	}, failing)

	cal := New(ts.URL, ts.URL+"/fallback/{year}.json", zap.NewNop())

	tests := []struct {
		date string
		want bool
	}{
		{"2025-01-01", true},
		{"2025-01-08", true},
		{"2025-01-09", false},
		{"2025-01-04", false}, // Saturday
		{"2025-03-07", false}, // shortened
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			got, err := cal.IsHoliday(dateutil.MustParse(tt.date))
			if err != nil {
				t.Fatalf("IsHoliday() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("IsHoliday(%s) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}

	if n := ts.apiCalls.Load(); n != 1 {
		t.Errorf("API called %d times, want 1", n)
	}
	if n := ts.fallbackCalls.Load(); n != 0 {
		t.Errorf("fallback called %d times, want 0", n)
	}

	cal.ClearCache()
	if _, err := cal.IsHoliday(dateutil.Of(2025, 1, 9)); err != nil {
		t.Fatalf("IsHoliday() error = %v", err)
	}
	if n := ts.apiCalls.Load(); n != 2 {
		t.Errorf("API called %d times after ClearCache, want 2", n)
	}
}

func TestCalendar_Fallback(t *testing.T) {
	ts := newTestServer(t, failing, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/fallback/2025.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"year":2025,"months":[
			{"month":1,"days":"1,2,3,4,5,6,7,8,11,12,18,19,25,26"},
			{"month":11,"days":"1*,2,3+,4,8,9,15,16,22,23,29,30"}]}`))
	})

	cal := New(ts.URL, ts.URL+"/fallback/{year}.json", nil)

	tests := []struct {
		date string
		want bool
	}{
		{"2025-01-08", true},
		{"2025-01-09", false},
		{"2025-11-03", true}, // transferred
		{"2025-11-04", true},
		{"2025-11-05", false},
	}

	for _, tt := range tests {
		got, err := cal.IsHoliday(dateutil.MustParse(tt.date))
		if err != nil {
			t.Fatalf("IsHoliday(%s) error = %v", tt.date, err)
		}
		if got != tt.want {
			t.Errorf("IsHoliday(%s) = %v, want %v", tt.date, got, tt.want)
		}
	}

	if n := ts.fallbackCalls.Load(); n != 1 {
		t.Errorf("fallback called %d times, want 1", n)
	}
}

func TestCalendar_Unavailable(t *testing.T) {
	ts := newTestServer(t, failing, failing)
	cal := New(ts.URL, ts.URL+"/fallback/{year}.json", zap.NewNop())

	for i := 0; i < 3; i++ {
		_, err := cal.IsHoliday(dateutil.Of(2030, 5, 6))
		if !errors.Is(err, ErrUnavailable) {
			t.Fatalf("IsHoliday() error = %v, want ErrUnavailable", err)
		}
	}

	if n := ts.apiCalls.Load(); n != 1 {
		t.Errorf("API called %d times, want 1", n)
	}
	if n := ts.fallbackCalls.Load(); n != 1 {
		t.Errorf("fallback called %d times, want 1", n)
	}

	// Weekends are answered without any request.
	if _, err := cal.IsHoliday(dateutil.Of(2031, 5, 3)); err != nil {
		t.Errorf("IsHoliday(Saturday) error = %v", err)
	}
}

func TestCalendar_NoFallback(t *testing.T) {
	ts := newTestServer(t, failing, failing)
	cal := New(ts.URL, "", zap.NewNop())

	if _, err := cal.IsHoliday(dateutil.Of(2025, 5, 6)); !errors.Is(err, ErrUnavailable) {
		t.Errorf("IsHoliday() error = %v, want ErrUnavailable", err)
	}
	if n := ts.fallbackCalls.Load(); n != 0 {
		t.Errorf("fallback called %d times, want 0", n)
	}
}

func TestParseBulkResponse(t *testing.T) {
	tests := []struct {
		name    string
		year    int
		data    string
		wantOff int
		wantErr bool
	}{
		{"2025", 2025, bulk2025(nil), 104, false},
		{"length mismatch", 2025, bulk2025(nil)[1:], 0, true},
		{"leap year length", 2024, bulk2025(nil), 0, true},
		{"unknown code", 2025, "3" + bulk2025(nil)[1:], 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			off, err := parseBulkResponse(tt.year, tt.data)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseBulkResponse() error = %v, wantErr %v", err, tt.wantErr)
			}
			n := 0
			for _, o := range off {
				if o {
					n++
				}
			}
			if n != tt.wantOff {
				t.Errorf("off days = %d, want %d", n, tt.wantOff)
			}
		})
	}
}
