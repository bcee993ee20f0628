// Package store holds the reactive client-side state the UI binds
// against: the current selection, the day's schedule list, a monthly cache
// keyed by date, and the daily news digest.
//
// The stores do no de-duplication or cancellation of overlapping calls;
// when two fetches for the same state race, whichever response lands last
// wins, and the boolean loading flags are cleared by whichever call
// finishes first. Callers that care about ordering serialize their calls.
// Internal maps and slices are mutex-guarded so the cron refresher and the
// UI gateway can share a store across goroutines.
package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"planboard/internal/api"
	"planboard/internal/datefmt"
	appLog "planboard/internal/log"
	"planboard/internal/model"
)

// Backend is the slice of the backend client the stores consume. The real
// implementation is *api.Client; tests substitute a recording fake.
type Backend interface {
	QuerySchedules(ctx context.Context, q api.ScheduleQuery) (api.Envelope, error)
	StoreSchedule(ctx context.Context, req api.ScheduleStoreReq) (api.Envelope, error)
	UpdateSchedule(ctx context.Context, req api.ScheduleUpdateReq) (api.Envelope, error)
	QueryNews(ctx context.Context, date string) (api.Envelope, error)
}

// Date is a calendar day selection.
type Date struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// MutationResult is what Add/Edit/Toggle report back to the UI. Failures
// carry a message only; no partial-success states exist.
type MutationResult struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
}

// ScheduleStore owns the selection, the current day's schedule list and
// the monthly cache. The cache maps date keys ("YYYY-MM-DD") to the
// schedules of that day; an entry exists only once that day has been
// fetched, directly or as part of a month query.
type ScheduleStore struct {
	backend Backend
	userID  int64

	mu           sync.RWMutex
	selected     Date
	scheduleList []model.Schedule
	monthly      map[string][]model.Schedule
	// loadedYear/loadedMonth is the single-slot loaded-month marker:
	// only the most recently fetched month counts as loaded, so
	// switching away and back forces a re-fetch. (0,0) matches no
	// real month.
	loadedYear   int
	loadedMonth  int
	loading      bool
	monthLoading bool
}

// NewScheduleStore creates a store acting for the given user with an
// empty cache and no selection.
func NewScheduleStore(backend Backend, userID int64) *ScheduleStore {
	return &ScheduleStore{
		backend: backend,
		userID:  userID,
		monthly: make(map[string][]model.Schedule),
	}
}

// SetSelectedDate replaces the current selection. No I/O.
func (s *ScheduleStore) SetSelectedDate(year, month, day int) {
	s.mu.Lock()
	s.selected = Date{Year: year, Month: month, Day: day}
	s.mu.Unlock()
}

// SelectedDate returns the current selection.
func (s *ScheduleStore) SelectedDate() Date {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// Schedules returns a copy of the current day's schedule list.
func (s *ScheduleStore) Schedules() []model.Schedule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Schedule(nil), s.scheduleList...)
}

// MonthlySchedules returns a copy of the monthly cache.
func (s *ScheduleStore) MonthlySchedules() map[string][]model.Schedule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]model.Schedule, len(s.monthly))
	for k, v := range s.monthly {
		out[k] = append([]model.Schedule(nil), v...)
	}
	return out
}

// Loading reports whether a day fetch or mutation is in flight.
func (s *ScheduleStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// MonthLoading reports whether a month fetch is in flight.
func (s *ScheduleStore) MonthLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.monthLoading
}

// FetchSchedules queries the backend for the currently selected day. On
// success the day's list and the matching cache entry are replaced; on any
// failure the list is cleared. Callers cannot tell an empty day from a
// failed fetch; failures only show up in the log.
func (s *ScheduleStore) FetchSchedules(ctx context.Context) {
	s.mu.Lock()
	s.loading = true
	sel := s.selected
	s.mu.Unlock()
	defer s.setLoading(false)

	day := sel.Day
	env, err := s.backend.QuerySchedules(ctx, api.ScheduleQuery{
		UserID: s.userID,
		Year:   sel.Year,
		Month:  sel.Month,
		Day:    &day,
	})
	if err != nil {
		appLog.Error("schedule day fetch failed", err, "year", sel.Year, "month", sel.Month, "day", sel.Day)
		s.setScheduleList(nil)
		return
	}
	if !env.OK() {
		appLog.Error("schedule day query rejected", errMsg(env.Msg), "code", env.Code)
		s.setScheduleList(nil)
		return
	}

	list, err := env.DecodeSchedules()
	if err != nil {
		appLog.Error("schedule day payload decode failed", err)
		s.setScheduleList(nil)
		return
	}
	if list == nil {
		list = []model.Schedule{}
	}

	key := datefmt.DateKey(sel.Year, sel.Month, sel.Day)
	s.mu.Lock()
	s.scheduleList = list
	s.monthly[key] = list
	s.mu.Unlock()
}

// FetchMonthSchedules queries the whole month (no day in the request) and
// redistributes the result into the cache keyed by each record's own
// calendar fields. A month equal to the loaded-month marker is not fetched
// again; everything else is, including a previously visited month, because
// the marker holds a single slot.
func (s *ScheduleStore) FetchMonthSchedules(ctx context.Context, year, month int) {
	s.mu.Lock()
	if s.loadedYear == year && s.loadedMonth == month {
		s.mu.Unlock()
		return
	}
	s.monthLoading = true
	s.mu.Unlock()
	defer s.setMonthLoading(false)

	env, err := s.backend.QuerySchedules(ctx, api.ScheduleQuery{
		UserID: s.userID,
		Year:   year,
		Month:  month,
	})
	if err != nil {
		appLog.Error("schedule month fetch failed", err, "year", year, "month", month)
		return
	}
	if !env.OK() {
		appLog.Error("schedule month query rejected", errMsg(env.Msg), "code", env.Code)
		return
	}

	list, err := env.DecodeSchedules()
	if err != nil {
		appLog.Error("schedule month payload decode failed", err)
		return
	}

	prefix := fmt.Sprintf("%d-%s", year, datefmt.PadZero(month))

	s.mu.Lock()
	// Purge the target month wholesale, then regroup. Records from
	// adjacent months (backend spillover) land under their own date key
	// and are appended, never overwritten.
	for key := range s.monthly {
		if strings.HasPrefix(key, prefix) {
			delete(s.monthly, key)
		}
	}
	for _, sched := range list {
		key := datefmt.DateKey(sched.Year, sched.Month, sched.Day)
		s.monthly[key] = append(s.monthly[key], sched)
	}
	s.loadedYear = year
	s.loadedMonth = month
	s.mu.Unlock()

	appLog.Info("month schedules loaded", "year", year, "month", month, "count", len(list))
}

// UnfinishedSchedules returns the cached records of a day whose status is
// not completed, in backend order. A never-fetched day yields an empty
// list; no request is issued.
func (s *ScheduleStore) UnfinishedSchedules(year, month, day int) []model.Schedule {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cached := s.monthly[datefmt.DateKey(year, month, day)]
	out := make([]model.Schedule, 0, len(cached))
	for _, sched := range cached {
		if sched.Status != model.StatusCompleted {
			out = append(out, sched)
		}
	}
	return out
}

// ClearMonthlyCache empties the cache and resets the loaded-month marker
// to its match-nothing sentinel.
func (s *ScheduleStore) ClearMonthlyCache() {
	s.mu.Lock()
	s.monthly = make(map[string][]model.Schedule)
	s.loadedYear = 0
	s.loadedMonth = 0
	s.mu.Unlock()
}

// AddSchedule creates a record for the currently selected day, then
// refetches that day and invalidates and refetches the whole month so the
// cache reflects backend-computed fields. A failed store call leaves the
// list and cache untouched.
func (s *ScheduleStore) AddSchedule(ctx context.Context, data model.Schedule) MutationResult {
	s.setLoading(true)
	defer s.setLoading(false)

	sel := s.SelectedDate()
	status := data.Status
	if status == 0 {
		status = model.StatusNotStarted
	}

	env, err := s.backend.StoreSchedule(ctx, api.ScheduleStoreReq{
		Year:     sel.Year,
		Month:    sel.Month,
		Day:      sel.Day,
		UserID:   s.userID,
		Content:  data.Content,
		Start:    data.StartTime,
		End:      data.EndTime,
		Priority: data.Priority,
		Status:   status,
	})
	if err != nil {
		appLog.Error("schedule create failed", err)
		return MutationResult{Success: false, Msg: "failed to create schedule"}
	}
	if !env.OK() {
		return MutationResult{Success: false, Msg: env.Msg}
	}

	s.FetchSchedules(ctx)
	s.ClearMonthlyCache()
	s.FetchMonthSchedules(ctx, sel.Year, sel.Month)

	return MutationResult{Success: true, Msg: env.Msg}
}

// EditSchedule fully replaces an existing record, then refetches the day
// and invalidates and refetches the month. The month refreshed is taken
// from the record's own calendar fields when it carries them, falling back
// to the current selection.
func (s *ScheduleStore) EditSchedule(ctx context.Context, data model.Schedule) MutationResult {
	s.setLoading(true)
	defer s.setLoading(false)

	env, err := s.backend.UpdateSchedule(ctx, api.ScheduleUpdateReq{
		ID:       data.ID,
		Year:     data.Year,
		Month:    data.Month,
		Day:      data.Day,
		Start:    data.StartTime,
		End:      data.EndTime,
		Content:  data.Content,
		Status:   data.Status,
		UserID:   s.userID,
		Priority: data.Priority,
	})
	if err != nil {
		appLog.Error("schedule update failed", err, "id", data.ID)
		return MutationResult{Success: false, Msg: "failed to update schedule"}
	}
	if !env.OK() {
		return MutationResult{Success: false, Msg: env.Msg}
	}

	year, month := data.Year, data.Month
	if year == 0 || month == 0 {
		sel := s.SelectedDate()
		year, month = sel.Year, sel.Month
	}

	s.FetchSchedules(ctx)
	s.ClearMonthlyCache()
	s.FetchMonthSchedules(ctx, year, month)

	return MutationResult{Success: true, Msg: env.Msg}
}

// ToggleScheduleStatus forwards to EditSchedule with the new status. The
// record's stored start/end times are normalized first because the update
// endpoint requires canonical time strings even for a pure status change.
func (s *ScheduleStore) ToggleScheduleStatus(ctx context.Context, sched model.Schedule, newStatus int) MutationResult {
	sched.StartTime = datefmt.NormalizeDateTime(sched.StartTime, sched.Year, sched.Month, sched.Day)
	sched.EndTime = datefmt.NormalizeDateTime(sched.EndTime, sched.Year, sched.Month, sched.Day)
	sched.Status = newStatus
	return s.EditSchedule(ctx, sched)
}

func (s *ScheduleStore) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *ScheduleStore) setMonthLoading(v bool) {
	s.mu.Lock()
	s.monthLoading = v
	s.mu.Unlock()
}

func (s *ScheduleStore) setScheduleList(list []model.Schedule) {
	if list == nil {
		list = []model.Schedule{}
	}
	s.mu.Lock()
	s.scheduleList = list
	s.mu.Unlock()
}
