package accumulator

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/naka-gawa/timesheet/internal/domain"
	"github.com/naka-gawa/timesheet/internal/identity"
	"github.com/naka-gawa/timesheet/internal/pagination"
	"go.uber.org/zap"
)

// Commits accumulates default branch commits. Time logged on a commit that belongs
// to a pull request is attributed to the pull request instead.
type Commits struct {
	*base[domain.Commit]
}

// NewCommits creates an empty commit accumulator.
func NewCommits(deps Deps) *Commits {
	return &Commits{base: newBase(entity[domain.Commit]{
		identify:       func(c domain.Commit) string { return c.OID },
		durationFields: func(c domain.Commit) []string { return []string{c.MessageHeadline} },
		author:         commitAuthor,
		count:          func(b *domain.Breakdown) { b.Commits++ },
		acceptDuration: func(c domain.Commit) bool { return len(c.AssociatedPullRequestIDs) == 0 },
	}, deps)}
}

// Initialize adds every commit of the default branch since the given time.
func (c *Commits) Initialize(ctx context.Context, fetcher CommitFetcher, repo domain.Repository, since time.Time) error {
	commits, err := pagination.Collect(ctx, pagination.Options[domain.Commit]{
		Next: func(ctx context.Context, cursor string) (domain.Connection[domain.Commit], error) {
			return fetcher.FetchCommitHistory(ctx, repo, since, cursor)
		},
	})
	if err != nil {
		return fmt.Errorf("failed to fetch commits of %s: %w", repo.Path(), err)
	}

	c.Add(commits...)
	c.deps.Logger.Debug("commits accumulated", zap.String("repository", repo.Path()), zap.Int("commits", c.store.Len()))
	return nil
}

// FilteredItems drops commits that belong to a pull request and commits without logged time.
func (c *Commits) FilteredItems() []domain.Commit {
	return c.filter(func(commit domain.Commit) bool {
		return len(commit.AssociatedPullRequestIDs) == 0 && c.Duration(commit) != 0
	})
}

// commitAuthor prefers the linked account login, then its display name, then the git author name.
func commitAuthor(mapper *identity.Mapper, c domain.Commit) *domain.Author {
	if c.Author == nil {
		return nil
	}

	raw := c.Author.Name
	avatar := ""
	if u := c.Author.User; u != nil {
		switch {
		case u.Login != "":
			raw = u.Login
		case u.Name != "":
			raw = u.Name
		}
		avatar = u.AvatarURL
	}

	name := mapper.Map(raw)
	if avatar == "" {
		avatar = "https://github.com/identicons/" + url.PathEscape(name) + ".png"
	}
	return &domain.Author{Name: name, Avatar: avatar}
}
