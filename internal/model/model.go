// Package model defines the data shapes exchanged with the scheduling
// backend. Field names and JSON tags follow the backend contract; calendar
// fields travel as plain integers and times as free-form strings.
package model

// Schedule is a single calendar entry owned by a user.
//
// StartTime/EndTime arrive from the backend in several shapes (offset
// timestamps, canonical "YYYY-MM-DD HH:mm:ss", bare "HH:mm"); they are
// normalized via internal/datefmt before being sent back on update.
type Schedule struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	Year      int    `json:"year"`
	Month     int    `json:"month"`
	Day       int    `json:"day"`
	Content   string `json:"content"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Priority  int    `json:"priority"`
	Status    int    `json:"status"`
}

// Priority levels.
const (
	PriorityLow    = 0
	PriorityMedium = 1
	PriorityHigh   = 2
)

// Status codes. StatusCompleted is the sentinel the store uses to filter
// finished entries out of the "unfinished" view.
const (
	StatusNotStarted = 1
	StatusInProgress = 2
	StatusEnded      = 3
	StatusCompleted  = 4
)

// NewsItem is one entry of the daily news digest. The stores treat it as an
// opaque value; fields are decoded only so the UI can render them.
type NewsItem struct {
	ID          int64  `json:"id"`
	NewsID      string `json:"news_id"`
	Title       string `json:"title"`
	Creator     string `json:"creator,omitempty"`
	Source      string `json:"source,omitempty"`
	Desc        string `json:"desc"`
	Link        string `json:"link"`
	Cover       string `json:"cover"`
	PublishTime string `json:"publish_time,omitempty"`
	CommentNum  int    `json:"comment_num"`
	ReadNum     int    `json:"read_num"`
	LikeNum     int    `json:"like_num"`
}
