package accumulator

import (
	"context"
	"fmt"

	"github.com/naka-gawa/timesheet/internal/domain"
	"github.com/naka-gawa/timesheet/internal/identity"
	"github.com/naka-gawa/timesheet/internal/pagination"
	"go.uber.org/zap"
)

// PullRequests accumulates the pull requests behind fetched commits. Each pull
// request also collects the time logged on its own commits and comments.
type PullRequests struct {
	*base[domain.PullRequest]
}

// NewPullRequests creates an empty pull request accumulator.
func NewPullRequests(deps Deps) *PullRequests {
	return &PullRequests{base: newBase(entity[domain.PullRequest]{
		identify:       func(pr domain.PullRequest) string { return pr.ID },
		durationFields: func(pr domain.PullRequest) []string { return []string{pr.BodyText} },
		author: func(mapper *identity.Mapper, pr domain.PullRequest) *domain.Author {
			return actorAuthor(mapper, pr.Author)
		},
		count: func(b *domain.Breakdown) { b.PullRequests++ },
	}, deps)}
}

// Initialize fetches the pull requests associated with the accumulated commits and
// attributes their commits' and comments' durations to them. Comments are recorded in comments.
func (p *PullRequests) Initialize(ctx context.Context, fetcher PullRequestFetcher, commits *Commits, comments *Comments) error {
	ids := associatedPullRequestIDs(commits.Items())
	if len(ids) == 0 {
		return nil
	}

	pullRequests, err := fetcher.FetchPullRequests(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to fetch pull requests: %w", err)
	}
	p.Add(pullRequests...)

	for _, pr := range p.Items() {
		prCommits, err := pagination.Collect(ctx, pagination.Options[domain.Commit]{
			Next: func(ctx context.Context, cursor string) (domain.Connection[domain.Commit], error) {
				return fetcher.FetchPullRequestCommits(ctx, pr.ID, cursor)
			},
		})
		if err != nil {
			return fmt.Errorf("failed to fetch commits of pull request #%d: %w", pr.Number, err)
		}
		prComments, err := pagination.Collect(ctx, pagination.Options[domain.Comment]{
			Next: func(ctx context.Context, cursor string) (domain.Connection[domain.Comment], error) {
				return fetcher.FetchPullRequestComments(ctx, pr.ID, cursor)
			},
		})
		if err != nil {
			return fmt.Errorf("failed to fetch comments of pull request #%d: %w", pr.Number, err)
		}

		for _, commit := range prCommits {
			p.AddDuration(pr, p.deps.Parser.Compute(commits.DurationFields(commit)...))
		}
		for _, comment := range prComments {
			comments.Add(comment)
			p.AddDuration(pr, comments.Duration(comment))
		}

		p.deps.Logger.Debug("pull request accumulated",
			zap.Int("number", pr.Number),
			zap.Int("commits", len(prCommits)),
			zap.Int("comments", len(prComments)),
			zap.Int64("duration_ms", p.Duration(pr)),
		)
	}
	return nil
}

// FilteredItems drops pull requests without logged time.
func (p *PullRequests) FilteredItems() []domain.PullRequest {
	return p.filter(func(pr domain.PullRequest) bool { return p.Duration(pr) != 0 })
}

// associatedPullRequestIDs returns the distinct pull request ids of commits in first-seen order.
func associatedPullRequestIDs(commits []domain.Commit) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, commit := range commits {
		for _, id := range commit.AssociatedPullRequestIDs {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}
