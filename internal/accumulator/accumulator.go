// Package accumulator collects repository activity per entity type, attributes
// parsed durations to each item and rolls them up per contributor.
package accumulator

import (
	"context"
	"time"

	"github.com/naka-gawa/timesheet/internal/domain"
	"github.com/naka-gawa/timesheet/internal/duration"
	"github.com/naka-gawa/timesheet/internal/identity"
	"go.uber.org/zap"
)

// Accumulator is the capability set shared by every entity accumulator.
type Accumulator[T any] interface {
	Add(items ...T)
	Exists(item T) bool
	Duration(item T) int64
	AddDuration(item T, ms int64)
	Author(item T) *domain.Author
	Identify(item T) string
	Items() []T
	FilteredItems() []T
	Calculate() []domain.Breakdown
	TotalDuration() int64
	FormatDuration(item T, pattern string) string
}

// Summarizer folds items into per-contributor rows.
type Summarizer interface {
	Calculate() []domain.Breakdown
}

// Totaler reports the sum of every accumulated duration.
type Totaler interface {
	TotalDuration() int64
}

// CommitFetcher fetches default branch history.
type CommitFetcher interface {
	FetchCommitHistory(ctx context.Context, repo domain.Repository, since time.Time, cursor string) (domain.Connection[domain.Commit], error)
}

// PullRequestFetcher fetches pull requests and their commits and comments.
type PullRequestFetcher interface {
	FetchPullRequests(ctx context.Context, ids []string) ([]domain.PullRequest, error)
	FetchPullRequestCommits(ctx context.Context, pullRequestID, cursor string) (domain.Connection[domain.Commit], error)
	FetchPullRequestComments(ctx context.Context, pullRequestID, cursor string) (domain.Connection[domain.Comment], error)
}

// IssueFetcher fetches labeled issues.
type IssueFetcher interface {
	FetchIssues(ctx context.Context, repo domain.Repository, label, cursor string) (domain.Connection[domain.Issue], error)
}

// IssueCloser comments on and closes issues.
type IssueCloser interface {
	CloseIssue(ctx context.Context, repo domain.Repository, number int, comment string) error
}

// Deps are the collaborators every accumulator needs. Nil fields fall back to defaults.
type Deps struct {
	Parser *duration.Parser
	Mapper *identity.Mapper
	Logger *zap.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Parser == nil {
		d.Parser = duration.NewParser()
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return d
}

// entity describes what differs between item types.
type entity[T any] struct {
	identify       func(T) string
	durationFields func(T) []string
	author         func(*identity.Mapper, T) *domain.Author
	count          func(*domain.Breakdown)
	// acceptDuration gates AddDuration; nil accepts every item.
	acceptDuration func(T) bool
}

// base implements Accumulator on top of a Store and an entity description.
type base[T any] struct {
	entity entity[T]
	store  *Store[T]
	deps   Deps
}

func newBase[T any](e entity[T], deps Deps) *base[T] {
	return &base[T]{entity: e, store: NewStore(e.identify), deps: deps.withDefaults()}
}

// Add appends unknown items and seeds their duration from their duration fields.
// Items whose time belongs elsewhere are not parsed, so the parser tally counts them once.
func (b *base[T]) Add(items ...T) {
	for _, item := range items {
		if !b.store.Insert(item) {
			continue
		}
		b.store.Ensure(b.Identify(item))
		if b.entity.acceptDuration != nil && !b.entity.acceptDuration(item) {
			continue
		}
		b.AddDuration(item, b.deps.Parser.Compute(b.entity.durationFields(item)...))
	}
}

func (b *base[T]) Exists(item T) bool {
	return b.store.Has(b.Identify(item))
}

// Duration returns the accumulated duration of item, materializing a zero entry when absent.
func (b *base[T]) Duration(item T) int64 {
	return b.store.Ensure(b.Identify(item))
}

func (b *base[T]) AddDuration(item T, ms int64) {
	if b.entity.acceptDuration != nil && !b.entity.acceptDuration(item) {
		return
	}
	b.store.AddDuration(b.Identify(item), ms)
}

func (b *base[T]) Author(item T) *domain.Author {
	return b.entity.author(b.deps.Mapper, item)
}

func (b *base[T]) Identify(item T) string {
	return b.entity.identify(item)
}

// DurationFields returns the texts of item that are parsed for durations.
func (b *base[T]) DurationFields(item T) []string {
	return b.entity.durationFields(item)
}

func (b *base[T]) Items() []T {
	return b.store.Items()
}

func (b *base[T]) FilteredItems() []T {
	return b.store.Items()
}

func (b *base[T]) TotalDuration() int64 {
	return b.store.TotalDuration()
}

func (b *base[T]) FormatDuration(item T, pattern string) string {
	return duration.Format(b.Duration(item), pattern)
}

// Calculate groups items by canonical author, summing accumulated durations. Authorless items are skipped.
func (b *base[T]) Calculate() []domain.Breakdown {
	rows := newBreakdowns()
	for _, item := range b.store.Items() {
		author := b.Author(item)
		if author == nil {
			continue
		}
		row := rows.get(*author)
		row.Duration = duration.Sum(row.Duration, b.Duration(item))
		b.entity.count(row)
	}
	return rows.list()
}

func (b *base[T]) filter(keep func(T) bool) []T {
	var out []T
	for _, item := range b.store.Items() {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

func actorAuthor(mapper *identity.Mapper, actor *domain.Actor) *domain.Author {
	if actor == nil {
		return nil
	}
	return &domain.Author{Name: mapper.Map(actor.Login), Avatar: actor.AvatarURL}
}
