package accumulator

import (
	"context"
	"time"

	"github.com/naka-gawa/timesheet/internal/domain"
	"github.com/stretchr/testify/mock"
)

// mockFetcher is a mock implementation of the gateway.Fetcher interface.
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) FetchCommitHistory(ctx context.Context, repo domain.Repository, since time.Time, cursor string) (domain.Connection[domain.Commit], error) {
	args := m.Called(ctx, repo, since, cursor)
	return args.Get(0).(domain.Connection[domain.Commit]), args.Error(1)
}

func (m *mockFetcher) FetchPullRequests(ctx context.Context, ids []string) ([]domain.PullRequest, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PullRequest), args.Error(1)
}

func (m *mockFetcher) FetchPullRequestCommits(ctx context.Context, pullRequestID, cursor string) (domain.Connection[domain.Commit], error) {
	args := m.Called(ctx, pullRequestID, cursor)
	return args.Get(0).(domain.Connection[domain.Commit]), args.Error(1)
}

func (m *mockFetcher) FetchPullRequestComments(ctx context.Context, pullRequestID, cursor string) (domain.Connection[domain.Comment], error) {
	args := m.Called(ctx, pullRequestID, cursor)
	return args.Get(0).(domain.Connection[domain.Comment]), args.Error(1)
}

func (m *mockFetcher) FetchIssues(ctx context.Context, repo domain.Repository, label, cursor string) (domain.Connection[domain.Issue], error) {
	args := m.Called(ctx, repo, label, cursor)
	return args.Get(0).(domain.Connection[domain.Issue]), args.Error(1)
}

// mockCloser is a mock implementation of the IssueCloser interface.
type mockCloser struct {
	mock.Mock
}

func (m *mockCloser) CloseIssue(ctx context.Context, repo domain.Repository, number int, comment string) error {
	return m.Called(ctx, repo, number, comment).Error(0)
}

func page[T any](hasNext bool, cursorPrefix string, nodes ...T) domain.Connection[T] {
	conn := domain.Connection[T]{HasNextPage: hasNext}
	for i, node := range nodes {
		conn.Edges = append(conn.Edges, domain.Edge[T]{Cursor: cursorPrefix + string(rune('a'+i)), Node: node})
	}
	return conn
}

func actor(login string) *domain.Actor {
	return &domain.Actor{Login: login, AvatarURL: "https://avatars/" + login}
}

func commitBy(oid, headline, login string, prs ...string) domain.Commit {
	return domain.Commit{
		OID:                      oid,
		MessageHeadline:          headline,
		Author:                   &domain.CommitAuthor{Name: login, User: &domain.User{Login: login, AvatarURL: "https://avatars/" + login}},
		AssociatedPullRequestIDs: prs,
	}
}
