// Package model defines the data structures used in the inoreader-mcp
// application, including Feed, Article, and the filter/result types passed
// between the tool layer and the API client. All entities are upstream-defined
// and read-through; nothing is persisted locally.
package model

import "time"

type Feed struct {
	ID          string
	Title       string
	URL         string
	HTMLURL     string
	Categories  []string
	UnreadCount int
}

type Article struct {
	ID         string
	Title      string
	Author     string
	FeedID     string
	FeedTitle  string
	Categories []string
	Published  time.Time
	Read       bool
	URL        string
	// Summary and Content hold the upstream HTML as-is; the tool layer
	// strips markup before anything reaches the host.
	Summary string
	Content string
}

// ArticleFilter narrows stream requests. Zero values mean "no constraint",
// except Limit where zero falls back to the configured per-request maximum.
type ArticleFilter struct {
	FeedID     string
	UnreadOnly bool
	Since      time.Time
	Limit      int
}

// MarkResult is the per-id outcome of a bulk mark-as-read call.
type MarkResult struct {
	OK  bool
	Err string
}

// Stats aggregates unread counts derived from the feed list.
type Stats struct {
	TotalUnread int
	FeedCount   int
	// FeedsWithUnread is sorted by unread count, highest first.
	FeedsWithUnread []Feed
}
