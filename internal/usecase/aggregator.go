// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/naka-gawa/timesheet/internal/accumulator"
	"github.com/naka-gawa/timesheet/internal/domain"
	"github.com/naka-gawa/timesheet/internal/duration"
	"github.com/naka-gawa/timesheet/internal/gateway"
	"github.com/naka-gawa/timesheet/internal/identity"
	"github.com/naka-gawa/timesheet/internal/report"
	"go.uber.org/zap"
)

// Repository is the outcome of aggregating a single repository.
type Repository struct {
	Data report.RepositoryData
	// Breakdown merges the commit and pull request contributors.
	Breakdown []domain.Breakdown

	issues *accumulator.Issues
}

// Aggregator is the use case for aggregating the logged time of repositories.
// It drives the accumulators of one repository in their dependency order.
type Aggregator struct {
	fetcher gateway.Fetcher
	parser  *duration.Parser
	tally   *duration.Tally
	mapper  *identity.Mapper
	window  domain.Window
	current domain.Repository
	logger  *zap.Logger
}

// NewAggregator creates a new Aggregator instance. current is the repository holding the
// issues labeled with the path of each aggregated repository.
func NewAggregator(fetcher gateway.Fetcher, mapper *identity.Mapper, window domain.Window, current domain.Repository, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	tally := &duration.Tally{}
	return &Aggregator{
		fetcher: fetcher,
		parser:  duration.NewParser().WithTally(tally),
		tally:   tally,
		mapper:  mapper,
		window:  window,
		current: current,
		logger:  logger,
	}
}

// Total is the running total of every duration parsed by this aggregator.
func (a *Aggregator) Total() int64 {
	return a.tally.Total()
}

// AggregateRepository collects commits, then pull requests and their comments, then the
// issues logged against repo, and folds them per contributor.
func (a *Aggregator) AggregateRepository(ctx context.Context, repo domain.Repository) (*Repository, error) {
	log := a.logger.With(zap.String("repository", repo.Path()))
	log.Debug("aggregating repository")

	deps := accumulator.Deps{Parser: a.parser, Mapper: a.mapper, Logger: log}
	commits := accumulator.NewCommits(deps)
	comments := accumulator.NewComments(deps)
	pullRequests := accumulator.NewPullRequests(deps)
	issues := accumulator.NewIssues(deps)

	if err := commits.Initialize(ctx, a.fetcher, repo, a.window.Since); err != nil {
		return nil, err
	}
	if err := pullRequests.Initialize(ctx, a.fetcher, commits, comments); err != nil {
		return nil, err
	}
	if err := issues.Initialize(ctx, a.fetcher, a.current, repo.Path(), a.window); err != nil {
		return nil, err
	}

	users := accumulator.NewUsers()
	users.Initialize(commits, pullRequests, issues)

	log.Debug("repository aggregated",
		zap.Int("commits", len(commits.Items())),
		zap.Int("pull_requests", len(pullRequests.Items())),
		zap.Int("comments", len(comments.Items())),
		zap.Int("issues", len(issues.Items())),
	)

	return &Repository{
		Data: report.RepositoryData{
			Repository:   repo,
			Users:        users.Breakdown(),
			Commits:      commits,
			PullRequests: pullRequests,
			Issues:       issues,
		},
		Breakdown: accumulator.Merge(commits, pullRequests),
		issues:    issues,
	}, nil
}

// Aggregate aggregates every parseable reference in order. References that cannot be
// parsed are logged and skipped; the first fetch failure aborts.
func (a *Aggregator) Aggregate(ctx context.Context, refs []string) ([]*Repository, error) {
	var results []*Repository
	for _, ref := range refs {
		repo, err := domain.ParseRepository(ref)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidRepository) {
				a.logger.Warn("could not parse repository, skipping", zap.String("reference", ref), zap.Error(err))
				continue
			}
			return nil, err
		}

		result, err := a.AggregateRepository(ctx, repo)
		if err != nil {
			return nil, fmt.Errorf("failed to aggregate %s: %w", repo.Path(), err)
		}
		results = append(results, result)
	}
	return results, nil
}

// CloseMessage is the comment left on an issue once its time is reported.
func CloseMessage(window domain.Window) string {
	return fmt.Sprintf("This issue has been tracked and will be included in the `%s` report.", lowerMonth(window))
}

// CloseIssues closes the open issues logged against repo in the current repository.
func (a *Aggregator) CloseIssues(ctx context.Context, closer gateway.IssueCloser, repo *Repository) error {
	if err := repo.issues.CloseAll(ctx, closer, a.current, CloseMessage(a.window)); err != nil {
		return fmt.Errorf("failed to close issues of %s: %w", repo.Data.Repository.Path(), err)
	}
	return nil
}
