package report

import (
	"testing"
	"time"

	"github.com/naka-gawa/timesheet/internal/accumulator"
	"github.com/naka-gawa/timesheet/internal/domain"
)

var (
	widgets = domain.Repository{Host: "github.com", Owner: "acme", Name: "widgets"}
	mayNow  = time.Date(2024, time.May, 20, 15, 4, 0, 0, time.UTC)
)

func alice() *domain.Actor {
	return &domain.Actor{Login: "alice", AvatarURL: "https://avatars/alice"}
}

// fixture builds a repository with one timed pull request, one untimed pull request,
// one timed commit outside of any pull request and one issue.
func fixture(t *testing.T) RepositoryData {
	t.Helper()

	commits := accumulator.NewCommits(accumulator.Deps{})
	commits.Add(
		domain.Commit{
			OID: "c1", AbbreviatedOID: "c1abc", MessageHeadline: "hotfix 30m", URL: "https://github.com/acme/widgets/commit/c1",
			Author: &domain.CommitAuthor{Name: "alice", User: &domain.User{Login: "alice", AvatarURL: "https://avatars/alice"}},
		},
		domain.Commit{OID: "c2", AbbreviatedOID: "c2abc", MessageHeadline: "merge", AssociatedPullRequestIDs: []string{"PR1"}},
	)

	pullRequests := accumulator.NewPullRequests(accumulator.Deps{})
	pullRequests.Add(
		domain.PullRequest{ID: "PR1", Number: 7, Title: "Add login", BodyText: "1h", URL: "https://github.com/acme/widgets/pull/7", Author: alice()},
		domain.PullRequest{ID: "PR2", Number: 8, Title: "Typo", URL: "https://github.com/acme/widgets/pull/8", Author: alice()},
	)

	issues := accumulator.NewIssues(accumulator.Deps{})
	issues.Add(domain.Issue{ID: "I1", Number: 3, Title: "Standup", BodyText: "15m", URL: "https://github.com/acme/timesheet/issues/3", Author: alice()})

	users := accumulator.NewUsers()
	users.Initialize(commits, pullRequests, issues)

	return RepositoryData{
		Repository:   widgets,
		Users:        users.Breakdown(),
		Commits:      commits,
		PullRequests: pullRequests,
		Issues:       issues,
	}
}
