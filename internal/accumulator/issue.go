package accumulator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/naka-gawa/timesheet/internal/domain"
	"github.com/naka-gawa/timesheet/internal/identity"
	"github.com/naka-gawa/timesheet/internal/pagination"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// closeConcurrency bounds the number of issues closed at once.
const closeConcurrency = 8

// Issues accumulates issues labeled with a repository path, used to log time
// that has no commit or pull request behind it.
type Issues struct {
	*base[domain.Issue]
}

// NewIssues creates an empty issue accumulator.
func NewIssues(deps Deps) *Issues {
	return &Issues{base: newBase(entity[domain.Issue]{
		identify:       func(i domain.Issue) string { return i.ID },
		durationFields: func(i domain.Issue) []string { return []string{i.BodyText} },
		author: func(mapper *identity.Mapper, i domain.Issue) *domain.Author {
			return actorAuthor(mapper, i.Author)
		},
		count: func(b *domain.Breakdown) { b.Issues++ },
	}, deps)}
}

// PageStillInWindow reports whether every issue of a page was created inside the window.
// Following pages are only worth fetching while this holds, which assumes the issues
// arrive newest first.
func PageStillInWindow(window domain.Window) func(page []domain.Issue) bool {
	return func(page []domain.Issue) bool {
		for _, issue := range page {
			if !window.Contains(issue.CreatedAt) {
				return false
			}
		}
		return true
	}
}

// Initialize fetches the issues of repo labeled with label and keeps those created inside the window.
func (i *Issues) Initialize(ctx context.Context, fetcher IssueFetcher, repo domain.Repository, label string, window domain.Window) error {
	issues, err := pagination.Collect(ctx, pagination.Options[domain.Issue]{
		Continue: PageStillInWindow(window),
		Next: func(ctx context.Context, cursor string) (domain.Connection[domain.Issue], error) {
			return fetcher.FetchIssues(ctx, repo, label, cursor)
		},
	})
	if err != nil {
		return fmt.Errorf("failed to fetch issues labeled %s: %w", label, err)
	}

	for _, issue := range issues {
		if window.Contains(issue.CreatedAt) {
			i.Add(issue)
		}
	}
	i.deps.Logger.Debug("issues accumulated", zap.String("label", label), zap.Int("fetched", len(issues)), zap.Int("kept", i.store.Len()))
	return nil
}

// CloseAll comments on and closes every open issue of repo concurrently. Every issue
// is attempted; the failures are returned joined.
func (i *Issues) CloseAll(ctx context.Context, closer IssueCloser, repo domain.Repository, message string) error {
	var (
		mu   sync.Mutex
		errs []error
	)

	var eg errgroup.Group
	eg.SetLimit(closeConcurrency)
	for _, issue := range i.Items() {
		if issue.State == domain.StateClosed {
			continue
		}
		eg.Go(func() error {
			if err := closer.CloseIssue(ctx, repo, issue.Number, message); err != nil {
				i.deps.Logger.Warn("failed to close issue", zap.Int("number", issue.Number), zap.Error(err))
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = eg.Wait()

	return errors.Join(errs...)
}
