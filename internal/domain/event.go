package domain

import "time"

// Event kinds
const (
	EventView  = "view"
	EventClick = "click"
)

// Event is one immutable analytics record: a page view or a link click.
// Events are append-only - there is no update or delete path anywhere in
// the system, which is what makes the aggregation queries trustworthy.
type Event struct {
	ID        int64
	UserID    *int64 // Nullable: a view can be recorded against no profile
	LinkID    *int64 // Set for clicks, nil for views
	Kind      string // EventView or EventClick
	Referrer  *string
	UserAgent *string
	IPAddress *string
	CreatedAt time.Time // Authoritative timestamp for aggregation windows
}

// ClientInfo is the request-side context attached to an event. The HTTP
// layer builds it explicitly from the incoming request; nothing below the
// handler reads ambient request state.
type ClientInfo struct {
	Referrer  string
	UserAgent string
	IPAddress string
}

// NewViewEvent creates a profile view event. userID may be nil when the
// profile reference could not be resolved - the view is recorded anyway.
func NewViewEvent(userID *int64, client ClientInfo) *Event {
	return &Event{
		UserID:    userID,
		Kind:      EventView,
		Referrer:  optional(client.Referrer),
		UserAgent: optional(client.UserAgent),
		IPAddress: optional(client.IPAddress),
		CreatedAt: time.Now(),
	}
}

// NewClickEvent creates a link click event.
func NewClickEvent(userID *int64, linkID int64, client ClientInfo) *Event {
	return &Event{
		UserID:    userID,
		LinkID:    &linkID,
		Kind:      EventClick,
		Referrer:  optional(client.Referrer),
		UserAgent: optional(client.UserAgent),
		IPAddress: optional(client.IPAddress),
		CreatedAt: time.Now(),
	}
}

// DailyClicks is one row of the daily click series: a calendar date with at
// least one click. Dates with zero clicks are never synthesized.
type DailyClicks struct {
	Date   time.Time
	Clicks int64
}

// ReferrerClicks is one row of the top-referrers report. Referrers are
// grouped by exact string - no protocol or query-string normalization.
type ReferrerClicks struct {
	Referrer string
	Clicks   int64
}

// LinkPerformance pairs a link's all-time counter with a recomputed count
// of click events inside the recent window.
type LinkPerformance struct {
	LinkID       int64
	Title        string
	Clicks       int64
	RecentClicks int64
}

// AnalyticsReport bundles the three per-profile aggregations.
type AnalyticsReport struct {
	DailyClicks     []DailyClicks
	TopReferrers    []ReferrerClicks
	LinkPerformance []LinkPerformance
}

// optional maps "" to nil so empty request fields land as NULL.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
