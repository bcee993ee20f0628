package store

import (
	"context"
	"errors"
	"sync"

	"planboard/internal/datefmt"
	appLog "planboard/internal/log"
	"planboard/internal/model"
)

// NewsStore owns the daily news digest: one list and a loading flag.
type NewsStore struct {
	backend Backend

	mu       sync.RWMutex
	newsList []model.NewsItem
	loading  bool
}

// NewNewsStore creates an empty news store.
func NewNewsStore(backend Backend) *NewsStore {
	return &NewsStore{backend: backend}
}

// News returns a copy of the current news list.
func (n *NewsStore) News() []model.NewsItem {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return append([]model.NewsItem(nil), n.newsList...)
}

// Loading reports whether a fetch is in flight.
func (n *NewsStore) Loading() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.loading
}

// FetchNews replaces the news list with the digest for the given day,
// addressed by its midnight timestamp. Any failure clears the list; as
// with schedules, callers cannot tell an empty day from a failed fetch.
func (n *NewsStore) FetchNews(ctx context.Context, year, month, day int) {
	n.setLoading(true)
	defer n.setLoading(false)

	date := datefmt.MidnightString(year, month, day)

	env, err := n.backend.QueryNews(ctx, date)
	if err != nil {
		appLog.Error("news fetch failed", err, "date", date)
		n.setList(nil)
		return
	}
	if !env.OK() {
		appLog.Error("news query rejected", errMsg(env.Msg), "code", env.Code, "date", date)
		n.setList(nil)
		return
	}

	list, err := env.DecodeNews()
	if err != nil {
		appLog.Error("news payload decode failed", err, "date", date)
		n.setList(nil)
		return
	}
	n.setList(list)
}

// ClearNews resets the list to empty. No I/O.
func (n *NewsStore) ClearNews() {
	n.setList(nil)
}

func (n *NewsStore) setLoading(v bool) {
	n.mu.Lock()
	n.loading = v
	n.mu.Unlock()
}

func (n *NewsStore) setList(list []model.NewsItem) {
	if list == nil {
		list = []model.NewsItem{}
	}
	n.mu.Lock()
	n.newsList = list
	n.mu.Unlock()
}

// errMsg wraps a backend failure message as an error for logging.
func errMsg(msg string) error {
	if msg == "" {
		msg = "backend rejected request"
	}
	return errors.New(msg)
}
