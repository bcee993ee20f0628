// Package export projects the schedule store's monthly cache into an
// iCalendar document, so the cached month can be subscribed to from any
// external calendar application.
package export

import (
	"fmt"
	"sort"
	"time"

	ical "github.com/arran4/golang-ical"

	"planboard/internal/datefmt"
	"planboard/internal/model"
)

const prodID = "-//planboard//schedule export//EN"

// MonthCalendar renders the given date-key -> schedules mapping as a
// serialized VCALENDAR. Days are emitted in key order and records in their
// cached (backend) order, so the output is deterministic for a given cache
// state. Completed records are marked with STATUS while all others are
// confirmed.
func MonthCalendar(monthly map[string][]model.Schedule) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(prodID)

	keys := make([]string, 0, len(monthly))
	for k := range monthly {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	now := time.Now()
	for _, key := range keys {
		for i, sched := range monthly[key] {
			ev := cal.AddEvent(eventUID(key, i, sched))
			ev.SetDtStampTime(now)
			ev.SetSummary(sched.Content)

			start, end := eventTimes(sched)
			ev.SetStartAt(start)
			ev.SetEndAt(end)

			if sched.Status == model.StatusCompleted {
				ev.SetStatus(ical.ObjectStatusCompleted)
			} else {
				ev.SetStatus(ical.ObjectStatusConfirmed)
			}
		}
	}

	return cal.Serialize()
}

// eventUID derives a stable UID per record. Backend ids are unique; the
// cache position only backstops records that never got one.
func eventUID(key string, index int, sched model.Schedule) string {
	if sched.ID != 0 {
		return fmt.Sprintf("planboard-%d", sched.ID)
	}
	return fmt.Sprintf("planboard-%s-%d", key, index)
}

// eventTimes resolves a record's start/end strings into concrete local
// times. The strings are normalized first (the backend may hand back
// offset timestamps or bare times); anything that still does not parse
// falls back to the record's calendar day, with a one-hour default span.
func eventTimes(sched model.Schedule) (time.Time, time.Time) {
	dayStart := time.Date(sched.Year, time.Month(sched.Month), sched.Day, 0, 0, 0, 0, time.Local)

	start, ok := parseCanonical(sched.StartTime, sched)
	if !ok {
		start = dayStart
	}
	end, ok := parseCanonical(sched.EndTime, sched)
	if !ok || !end.After(start) {
		end = start.Add(time.Hour)
	}
	return start, end
}

func parseCanonical(raw string, sched model.Schedule) (time.Time, bool) {
	normalized := datefmt.NormalizeDateTime(raw, sched.Year, sched.Month, sched.Day)
	if normalized == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation("2006-01-02 15:04:05", normalized, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
