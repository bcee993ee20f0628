package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"planboard/internal/api"
	"planboard/internal/config"
	appLog "planboard/internal/log"
	"planboard/internal/model"
	"planboard/internal/store"
)

func TestMain(m *testing.M) {
	appLog.SetOutput(io.Discard)
	m.Run()
}

// stubBackend serves canned envelopes for the stores behind the gateway.
type stubBackend struct {
	schedules []model.Schedule
	news      []model.NewsItem
}

func envelopeFor(t *testing.T, v any) (api.Envelope, error) {
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	return api.Envelope{Code: 200, Data: data}, nil
}

type testBackend struct {
	t    *testing.T
	stub stubBackend
}

func (b *testBackend) QuerySchedules(context.Context, api.ScheduleQuery) (api.Envelope, error) {
	return envelopeFor(b.t, b.stub.schedules)
}

func (b *testBackend) StoreSchedule(context.Context, api.ScheduleStoreReq) (api.Envelope, error) {
	return api.Envelope{Code: 200, Msg: "created"}, nil
}

func (b *testBackend) UpdateSchedule(context.Context, api.ScheduleUpdateReq) (api.Envelope, error) {
	return api.Envelope{Code: 200, Msg: "updated"}, nil
}

func (b *testBackend) QueryNews(context.Context, string) (api.Envelope, error) {
	return envelopeFor(b.t, b.stub.news)
}

func newTestServer(t *testing.T, stub stubBackend) *Server {
	t.Helper()
	backend := &testBackend{t: t, stub: stub}
	cfg := config.DefaultConfig()
	return NewServer(cfg, store.NewScheduleStore(backend, 1), store.NewNewsStore(backend))
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, stubBackend{})
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	if w.Code != http.StatusOK || w.Body.String() != "OK" {
		t.Errorf("health = %d %q", w.Code, w.Body.String())
	}
}

func TestGetSchedules(t *testing.T) {
	s := newTestServer(t, stubBackend{
		schedules: []model.Schedule{{ID: 1, Year: 2025, Month: 12, Day: 2, Content: "standup", Status: 1}},
	})
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/api/schedules?year=2025&month=12&day=2", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Date      store.Date       `json:"date"`
		Schedules []model.Schedule `json:"schedules"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	if resp.Date != (store.Date{Year: 2025, Month: 12, Day: 2}) {
		t.Errorf("date = %+v", resp.Date)
	}
	if len(resp.Schedules) != 1 || resp.Schedules[0].Content != "standup" {
		t.Errorf("schedules = %+v", resp.Schedules)
	}
}

func TestPostScheduleCreates(t *testing.T) {
	s := newTestServer(t, stubBackend{})
	body := strings.NewReader(`{"content":"dentist","start_time":"11:00","priority":2}`)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest("POST", "/api/schedules", body))

	var res store.MutationResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	if !res.Success || res.Msg != "created" {
		t.Errorf("result = %+v", res)
	}
}

func TestGetNews(t *testing.T) {
	s := newTestServer(t, stubBackend{
		news: []model.NewsItem{{ID: 1, Title: "headline"}},
	})
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/api/news?year=2025&month=12&day=4", nil))

	var news []model.NewsItem
	if err := json.Unmarshal(w.Body.Bytes(), &news); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	if len(news) != 1 || news[0].Title != "headline" {
		t.Errorf("news = %+v", news)
	}
}

func TestCalendarICS(t *testing.T) {
	s := newTestServer(t, stubBackend{
		schedules: []model.Schedule{{ID: 3, Year: 2025, Month: 12, Day: 2, Content: "review", Status: 1}},
	})

	// Populate the cache through a month fetch first.
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/api/schedules/month?year=2025&month=12", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("month fetch status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/calendar.ics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("ics status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/calendar") {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(w.Body.String(), "SUMMARY:review") {
		t.Error("ICS body missing cached schedule")
	}
}

func TestUnfinishedIsCacheOnly(t *testing.T) {
	s := newTestServer(t, stubBackend{})
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/api/schedules/unfinished?year=2025&month=12&day=9", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var list []model.Schedule
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("un-fetched day returned %+v", list)
	}
}

func TestMethodGuards(t *testing.T) {
	s := newTestServer(t, stubBackend{})
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest("DELETE", "/api/schedules", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", w.Code)
	}

	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/api/schedules/update", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", w.Code)
	}
}

func TestRootServesUI(t *testing.T) {
	s := newTestServer(t, stubBackend{})
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Planboard") {
		t.Error("root view missing UI page")
	}
}

func TestUnknownAPIPathIs404(t *testing.T) {
	s := newTestServer(t, stubBackend{})
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/api/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
