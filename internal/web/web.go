// Package web is the local UI gateway: it serves the single-page view at
// the root path and a small JSON API over the state stores for that view
// to bind against. All backend traffic still flows through the stores;
// handlers here never talk to the backend directly.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"time"

	"planboard/internal/config"
	"planboard/internal/export"
	appLog "planboard/internal/log"
	"planboard/internal/model"
	"planboard/internal/store"
)

// Server wires the stores to HTTP handlers.
type Server struct {
	cfg       *config.Config
	schedules *store.ScheduleStore
	news      *store.NewsStore
	mux       *http.ServeMux
}

//go:embed all:static
var embeddedStatic embed.FS

// NewServer constructs the gateway over the given stores.
func NewServer(cfg *config.Config, schedules *store.ScheduleStore, news *store.NewsStore) *Server {
	s := &Server{
		cfg:       cfg,
		schedules: schedules,
		news:      news,
		mux:       http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/schedules", s.handleSchedules)
	s.mux.HandleFunc("/api/schedules/month", s.handleMonth)
	s.mux.HandleFunc("/api/schedules/unfinished", s.handleUnfinished)
	s.mux.HandleFunc("/api/schedules/update", s.handleUpdate)
	s.mux.HandleFunc("/api/schedules/toggle", s.handleToggle)
	s.mux.HandleFunc("/api/news", s.handleNews)
	s.mux.HandleFunc("/calendar.ics", s.handleCalendarICS)

	// The single UI view lives at the root path.
	s.mux.Handle("/", s.staticFileServer())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// scheduleDayResponse is the JSON shape for GET /api/schedules.
type scheduleDayResponse struct {
	Date      store.Date       `json:"date"`
	Schedules []model.Schedule `json:"schedules"`
}

// handleSchedules selects and fetches one day.
//
// GET  /api/schedules?year=2025&month=12&day=2 (all default to today)
// POST /api/schedules with a schedule body creates a record for the
// currently selected day.
func (s *Server) handleSchedules(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		year, month, day := dateParams(r)
		s.schedules.SetSelectedDate(year, month, day)
		s.schedules.FetchSchedules(r.Context())
		writeJSON(w, http.StatusOK, scheduleDayResponse{
			Date:      s.schedules.SelectedDate(),
			Schedules: s.schedules.Schedules(),
		})

	case http.MethodPost:
		var body model.Schedule
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid schedule body")
			return
		}
		res := s.schedules.AddSchedule(r.Context(), body)
		writeJSON(w, http.StatusOK, res)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// monthResponse is the JSON shape for GET /api/schedules/month.
type monthResponse struct {
	Year  int                         `json:"year"`
	Month int                         `json:"month"`
	Days  map[string][]model.Schedule `json:"days"`
}

// handleMonth fetches a whole month into the cache and returns it grouped
// by date key. Re-requesting the already loaded month returns the cache
// without backend traffic.
func (s *Server) handleMonth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	year, month, _ := dateParams(r)
	s.schedules.FetchMonthSchedules(r.Context(), year, month)
	writeJSON(w, http.StatusOK, monthResponse{
		Year:  year,
		Month: month,
		Days:  s.schedules.MonthlySchedules(),
	})
}

// handleUnfinished is a pure cache read; it never triggers a fetch.
func (s *Server) handleUnfinished(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	year, month, day := dateParams(r)
	writeJSON(w, http.StatusOK, s.schedules.UnfinishedSchedules(year, month, day))
}

// handleUpdate fully replaces one record.
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var body model.Schedule
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid schedule body")
		return
	}
	writeJSON(w, http.StatusOK, s.schedules.EditSchedule(r.Context(), body))
}

// toggleRequest is the body for POST /api/schedules/toggle.
type toggleRequest struct {
	Schedule model.Schedule `json:"schedule"`
	Status   int            `json:"status"`
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var body toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid toggle body")
		return
	}
	writeJSON(w, http.StatusOK, s.schedules.ToggleScheduleStatus(r.Context(), body.Schedule, body.Status))
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	year, month, day := dateParams(r)
	s.news.FetchNews(r.Context(), year, month, day)
	writeJSON(w, http.StatusOK, s.news.News())
}

// handleCalendarICS serves the cached month as an iCalendar document for
// subscription by external calendar apps.
func (s *Server) handleCalendarICS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	body := export.MonthCalendar(s.schedules.MonthlySchedules())
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="planboard.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

// staticFileServer serves the embedded single-page UI. API paths never
// fall through to it.
func (s *Server) staticFileServer() http.Handler {
	sub, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		appLog.Error("embedded static filesystem unavailable", err)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "UI not available", http.StatusServiceUnavailable)
		})
	}
	fileServer := http.FileServer(http.FS(sub))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/") {
			http.NotFound(w, r)
			return
		}
		fileServer.ServeHTTP(w, r)
	})
}

// dateParams reads year/month/day query parameters, each defaulting to
// the corresponding component of today's local date.
func dateParams(r *http.Request) (year, month, day int) {
	now := time.Now()
	q := r.URL.Query()
	year = parseIntDefault(q.Get("year"), now.Year())
	month = parseIntDefault(q.Get("month"), int(now.Month()))
	day = parseIntDefault(q.Get("day"), now.Day())
	return year, month, day
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}

// Start runs the gateway until ctx is canceled, then shuts it down.
func Start(ctx context.Context, cfg *config.Config, schedules *store.ScheduleStore, news *store.NewsStore) error {
	s := NewServer(cfg, schedules, news)
	srv := &http.Server{
		Addr:    cfg.Listen,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
