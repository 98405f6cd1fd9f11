package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/naka-gawa/timesheet/internal/domain"
	"github.com/naka-gawa/timesheet/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockFetcher is a mock implementation of the gateway.Fetcher interface.
// It allows us to simulate the behavior of the GitHub gateway without making real API calls.
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

// mockCloser is a mock implementation of the gateway.IssueCloser interface.
type mockCloser struct {
	mock.Mock
}

func (m *mockCloser) CloseIssue(ctx context.Context, repo domain.Repository, number int, comment string) error {
	return m.Called(ctx, repo, number, comment).Error(0)
}

var (
	widgets   = domain.Repository{Host: "github.com", Owner: "acme", Name: "widgets"}
	timesheet = domain.Repository{Host: "github.com", Owner: "acme", Name: "timesheet"}
	mayWindow = domain.NewWindow(time.Date(2024, time.May, 20, 15, 4, 0, 0, time.UTC), time.UTC)
)

func single[T any](node T) domain.Connection[T] {
	return domain.Connection[T]{Edges: []domain.Edge[T]{{Cursor: "c", Node: node}}}
}

func user(login string) *domain.Actor {
	return &domain.Actor{Login: login, AvatarURL: "https://avatars/" + login}
}

func commitBy(oid, headline, login string, prs ...string) domain.Commit {
	return domain.Commit{
		OID:                      oid,
		AbbreviatedOID:           oid,
		MessageHeadline:          headline,
		Author:                   &domain.CommitAuthor{Name: login, User: &domain.User{Login: login, AvatarURL: "https://avatars/" + login}},
		AssociatedPullRequestIDs: prs,
	}
}

// expectWidgets registers the activity of acme/widgets in May 2024:
// a direct commit (30m), a pull request (1h) with a commit (15m) and a review comment (5m),
// and an issue (10m) logged in acme/timesheet.
func expectWidgets(f *mockFetcher) {
	f.On("FetchCommitHistory", mock.Anything, widgets, mayWindow.Since, "").Return(domain.Connection[domain.Commit]{
		Edges: []domain.Edge[domain.Commit]{
			{Cursor: "a", Node: commitBy("c1", "hotfix 30m", "alice")},
			{Cursor: "b", Node: commitBy("c2", "feature", "alice", "PR1")},
		},
	}, nil)
	f.On("FetchPullRequests", mock.Anything, []string{"PR1"}).Return([]domain.PullRequest{
		{ID: "PR1", Number: 9, Title: "Feature", BodyText: "estimate 1h", State: domain.StateMerged, Author: user("bob")},
	}, nil)
	f.On("FetchPullRequestCommits", mock.Anything, "PR1", "").Return(single(commitBy("p1", "work 15m", "bob")), nil)
	f.On("FetchPullRequestComments", mock.Anything, "PR1", "").Return(single(domain.Comment{ID: "IC1", BodyText: "review 5m", Author: user("carol")}), nil)
	f.On("FetchIssues", mock.Anything, timesheet, "acme/widgets", "").Return(single(domain.Issue{
		ID: "I1", Number: 4, Title: "Planning", BodyText: "10m", State: domain.StateOpen,
		CreatedAt: time.Date(2024, time.May, 10, 0, 0, 0, 0, time.UTC), Author: user("alice-work"),
	}), nil)
}

var gears = domain.Repository{Host: "github.com", Owner: "acme", Name: "gears"}

// expectGears registers acme/gears: a single 2h commit that belongs to PR7 and is
// therefore reached twice, once from the history and once from the pull request.
func expectGears(f *mockFetcher) {
	shared := commitBy("g1", "work 2h", "dave", "PR7")
	f.On("FetchCommitHistory", mock.Anything, gears, mayWindow.Since, "").Return(single(shared), nil)
	f.On("FetchPullRequests", mock.Anything, []string{"PR7"}).Return([]domain.PullRequest{
		{ID: "PR7", Number: 7, Title: "Gears", State: domain.StateMerged, Author: user("dave")},
	}, nil)
	f.On("FetchPullRequestCommits", mock.Anything, "PR7", "").Return(single(shared), nil)
	f.On("FetchPullRequestComments", mock.Anything, "PR7", "").Return(domain.Connection[domain.Comment]{}, nil)
	f.On("FetchIssues", mock.Anything, timesheet, "acme/gears", "").Return(domain.Connection[domain.Issue]{}, nil)
}

func TestAggregator_PullRequestCommitCountedOnce(t *testing.T) {
	fetcher := new(mockFetcher)
	expectGears(fetcher)

	aggregator := NewAggregator(fetcher, nil, mayWindow, timesheet, nil)
	result, err := aggregator.AggregateRepository(context.Background(), gears)
	require.NoError(t, err)

	assert.Equal(t, int64(2*3_600_000), result.Data.TotalDuration())
	assert.Equal(t, result.Data.TotalDuration(), aggregator.Total())
	fetcher.AssertExpectations(t)
}

func TestAggregator_AggregateRepository(t *testing.T) {
	fetcher := new(mockFetcher)
	expectWidgets(fetcher)
	mapper := identity.NewMapper(identity.Alias{Name: "alice", Handles: []string{"alice-work"}})

	aggregator := NewAggregator(fetcher, mapper, mayWindow, timesheet, nil)
	result, err := aggregator.AggregateRepository(context.Background(), widgets)
	require.NoError(t, err)

	assert.Equal(t, []domain.Breakdown{
		{Name: "alice", Avatar: "https://avatars/alice", Duration: 40 * 60_000, Commits: 2, Issues: 1},
		{Name: "bob", Avatar: "https://avatars/bob", Duration: 80 * 60_000, PullRequests: 1},
	}, result.Data.Users)
	assert.Equal(t, []domain.Breakdown{
		{Name: "alice", Avatar: "https://avatars/alice", Duration: 30 * 60_000, Commits: 2},
		{Name: "bob", Avatar: "https://avatars/bob", Duration: 80 * 60_000, PullRequests: 1},
	}, result.Breakdown)
	assert.Equal(t, int64(120*60_000), result.Data.TotalDuration())
	assert.Equal(t, int64(120*60_000), aggregator.Total(), "every parsed duration is tallied once")
	fetcher.AssertExpectations(t)
}

func TestAggregator_Aggregate(t *testing.T) {
	testCases := []struct {
		name          string
		refs          []string
		setupMock     func(f *mockFetcher)
		expectedRepos []string
		expectedErr   string
	}{
		{
			name:          "unparseable references are skipped",
			refs:          []string{"not-a-repo", "https://github.com/acme/widgets.git"},
			setupMock:     expectWidgets,
			expectedRepos: []string{"acme/widgets"},
		},
		{
			name: "fetch failure aborts",
			refs: []string{"acme/widgets"},
			setupMock: func(f *mockFetcher) {
				f.On("FetchCommitHistory", mock.Anything, widgets, mayWindow.Since, "").
					Return(domain.Connection[domain.Commit]{}, errors.New("github api error"))
			},
			expectedErr: "failed to aggregate acme/widgets",
		},
		{
			name:          "no references",
			refs:          nil,
			setupMock:     func(*mockFetcher) {},
			expectedRepos: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fetcher := new(mockFetcher)
			tc.setupMock(fetcher)

			results, err := NewAggregator(fetcher, nil, mayWindow, timesheet, nil).Aggregate(context.Background(), tc.refs)
			if tc.expectedErr != "" {
				assert.ErrorContains(t, err, tc.expectedErr)
				assert.ErrorContains(t, err, "github api error")
				return
			}
			require.NoError(t, err)

			var repos []string
			for _, r := range results {
				repos = append(repos, r.Data.Repository.Path())
			}
			assert.Equal(t, tc.expectedRepos, repos)
		})
	}
}

func TestAggregator_CloseIssues(t *testing.T) {
	fetcher := new(mockFetcher)
	expectWidgets(fetcher)
	aggregator := NewAggregator(fetcher, nil, mayWindow, timesheet, nil)
	result, err := aggregator.AggregateRepository(context.Background(), widgets)
	require.NoError(t, err)

	closer := new(mockCloser)
	closer.On("CloseIssue", mock.Anything, timesheet, 4, "This issue has been tracked and will be included in the `may` report.").
		Return(errors.New("forbidden"))

	err = aggregator.CloseIssues(context.Background(), closer, result)
	assert.ErrorContains(t, err, "failed to close issues of acme/widgets")
	assert.ErrorContains(t, err, "forbidden")
	closer.AssertExpectations(t)
}
