package store

import (
	"context"
	"errors"
	"testing"

	"planboard/internal/api"
	"planboard/internal/model"
)

func TestFetchNewsSuccess(t *testing.T) {
	fb := &fakeBackend{
		newsFn: func(date string) (api.Envelope, error) {
			if date != "2025-12-04 00:00:00" {
				t.Errorf("date = %q, want midnight form", date)
			}
			return okEnvelope([]model.NewsItem{
				{ID: 1, Title: "headline one"},
				{ID: 2, Title: "headline two"},
			}), nil
		},
	}
	n := NewNewsStore(fb)
	n.FetchNews(context.Background(), 2025, 12, 4)

	got := n.News()
	if len(got) != 2 || got[0].Title != "headline one" {
		t.Errorf("news = %+v", got)
	}
	if n.Loading() {
		t.Error("loading flag still set after fetch")
	}
}

func TestFetchNewsFailureClearsList(t *testing.T) {
	fb := &fakeBackend{
		newsFn: func(date string) (api.Envelope, error) {
			return okEnvelope([]model.NewsItem{{ID: 1, Title: "stale"}}), nil
		},
	}
	n := NewNewsStore(fb)
	n.FetchNews(context.Background(), 2025, 12, 4)

	fb.newsFn = func(date string) (api.Envelope, error) {
		return api.Envelope{Code: 500, Msg: "spider offline"}, nil
	}
	n.FetchNews(context.Background(), 2025, 12, 5)
	if got := n.News(); len(got) != 0 {
		t.Errorf("list after rejected query = %+v, want empty", got)
	}

	fb.newsFn = func(date string) (api.Envelope, error) {
		return api.Envelope{}, errors.New("timeout")
	}
	n.FetchNews(context.Background(), 2025, 12, 6)
	if got := n.News(); len(got) != 0 {
		t.Errorf("list after transport error = %+v, want empty", got)
	}
}

func TestClearNews(t *testing.T) {
	fb := &fakeBackend{
		newsFn: func(date string) (api.Envelope, error) {
			return okEnvelope([]model.NewsItem{{ID: 1, Title: "x"}}), nil
		},
	}
	n := NewNewsStore(fb)
	n.FetchNews(context.Background(), 2025, 12, 4)
	callsBefore := len(fb.calls)

	n.ClearNews()
	if len(n.News()) != 0 {
		t.Error("list not empty after ClearNews")
	}
	if len(fb.calls) != callsBefore {
		t.Error("ClearNews must not issue requests")
	}
}
