package accumulator

import (
	"github.com/naka-gawa/timesheet/internal/domain"
	"github.com/naka-gawa/timesheet/internal/duration"
)

// source is what Users reads from another accumulator.
type source[T any] interface {
	Items() []T
	Author(item T) *domain.Author
	Duration(item T) int64
}

// Users folds the raw items of the commit, pull request and issue accumulators into
// one row per contributor, reusing the durations those accumulators already hold.
type Users struct {
	rows *breakdowns
}

// NewUsers creates an empty contributor aggregator.
func NewUsers() *Users {
	return &Users{rows: newBreakdowns()}
}

// Initialize aggregates commits, then pull requests, then issues.
func (u *Users) Initialize(commits *Commits, pullRequests *PullRequests, issues *Issues) {
	addSource[domain.Commit](u, commits, func(b *domain.Breakdown) { b.Commits++ })
	addSource[domain.PullRequest](u, pullRequests, func(b *domain.Breakdown) { b.PullRequests++ })
	addSource[domain.Issue](u, issues, func(b *domain.Breakdown) { b.Issues++ })
}

func addSource[T any](u *Users, src source[T], count func(*domain.Breakdown)) {
	for _, item := range src.Items() {
		author := src.Author(item)
		if author == nil {
			continue
		}
		row := u.rows.get(*author)
		row.Duration = duration.Sum(row.Duration, src.Duration(item))
		count(row)
	}
}

// Breakdown returns one row per contributor in registration order.
func (u *Users) Breakdown() []domain.Breakdown {
	return u.rows.list()
}

// Calculate is Breakdown; it lets Users take part in Merge.
func (u *Users) Calculate() []domain.Breakdown {
	return u.Breakdown()
}

// TotalDuration sums the duration of every contributor.
func (u *Users) TotalDuration() int64 {
	var total int64
	for _, row := range u.rows.list() {
		total = duration.Sum(total, row.Duration)
	}
	return total
}

// FormatDuration formats the duration of a contributor row.
func (u *Users) FormatDuration(row domain.Breakdown, pattern string) string {
	return duration.Format(row.Duration, pattern)
}
