// Package domain contains the core data structures and domain logic for the application.
package domain

// Breakdown holds the attributed duration and activity counts for a single contributor.
// It is the summary row every accumulator folds its items into.
type Breakdown struct {
	Name         string `json:"name"`
	Avatar       string `json:"avatar"`
	Duration     int64  `json:"duration_ms"`
	Commits      int    `json:"commits"`
	PullRequests int    `json:"pull_requests"`
	Issues       int    `json:"issues"`
	Comments     int    `json:"comments"`
}

// Author is the canonical (alias resolved) identity of the person behind an item.
type Author struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}
