// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v62/github"
	"github.com/naka-gawa/timesheet/internal/domain"
	"github.com/shurcooL/githubv4"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// Fetcher defines the behavior of a gateway for fetching activity from GitHub.
// Every method returns a single page; callers drive pagination.
type Fetcher interface {
	FetchCommitHistory(ctx context.Context, repo domain.Repository, since time.Time, cursor string) (domain.Connection[domain.Commit], error)
	FetchPullRequests(ctx context.Context, ids []string) ([]domain.PullRequest, error)
	FetchPullRequestCommits(ctx context.Context, pullRequestID, cursor string) (domain.Connection[domain.Commit], error)
	FetchPullRequestComments(ctx context.Context, pullRequestID, cursor string) (domain.Connection[domain.Comment], error)
	FetchIssues(ctx context.Context, repo domain.Repository, label, cursor string) (domain.Connection[domain.Issue], error)
}

// IssueCloser comments on and closes issues.
type IssueCloser interface {
	CloseIssue(ctx context.Context, repo domain.Repository, number int, comment string) error
}

// Options configures authentication and endpoints of the gateway.
// Either Token or the GitHub App triple (AppID, InstallationID, PrivateKeyPath) must be set.
type Options struct {
	Token          string
	AppID          int64
	InstallationID int64
	PrivateKeyPath string
	// APIBaseURL is the REST root of a GitHub Enterprise Server, e.g. https://ghe.example.com/api/v3/.
	APIBaseURL string
	Timeout    time.Duration
}

// GitHubGateway is the concrete implementation of the Fetcher and IssueCloser interfaces.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	logger        *zap.Logger
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
func NewGitHubGateway(opts Options, logger *zap.Logger) (*GitHubGateway, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}

	transport, err := authTransport(opts, rateLimitWaiter)
	if err != nil {
		return nil, err
	}
	httpClient := &http.Client{Transport: transport, Timeout: opts.Timeout}

	restClient := github.NewClient(httpClient)
	graphqlClient := githubv4.NewClient(httpClient)
	if base := strings.TrimSpace(opts.APIBaseURL); base != "" {
		restClient, err = restClient.WithEnterpriseURLs(base, base)
		if err != nil {
			return nil, fmt.Errorf("failed to configure enterprise urls: %w", err)
		}
		graphqlURL, err := enterpriseGraphQLURL(base)
		if err != nil {
			return nil, err
		}
		graphqlClient = githubv4.NewEnterpriseClient(graphqlURL, httpClient)
	}

	return &GitHubGateway{
		restClient:    restClient,
		graphqlClient: graphqlClient,
		logger:        logger,
	}, nil
}

func authTransport(opts Options, base http.RoundTripper) (http.RoundTripper, error) {
	if opts.AppID > 0 {
		itr, err := ghinstallation.NewKeyFromFile(base, opts.AppID, opts.InstallationID, opts.PrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create github app transport: %w", err)
		}
		if opts.APIBaseURL != "" {
			itr.BaseURL = strings.TrimSuffix(opts.APIBaseURL, "/")
		}
		return itr, nil
	}
	if opts.Token == "" {
		return nil, fmt.Errorf("either a token or github app credentials are required")
	}
	return &oauth2.Transport{
		Base:   base,
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token}),
	}, nil
}

// enterpriseGraphQLURL maps https://host/api/v3/ to https://host/api/graphql.
func enterpriseGraphQLURL(apiBaseURL string) (string, error) {
	u, err := url.Parse(apiBaseURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse api base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("failed to parse api base url: missing scheme or host")
	}
	path := strings.TrimSuffix(u.Path, "/")
	path = strings.TrimSuffix(path, "/v3")
	u.Path = path + "/graphql"
	return u.String(), nil
}

func (g *GitHubGateway) FetchCommitHistory(ctx context.Context, repo domain.Repository, since time.Time, cursor string) (domain.Connection[domain.Commit], error) {
	g.logger.Debug("fetching commit history page", zap.String("repository", repo.Path()), zap.Time("since", since), zap.String("cursor", cursor))
	variables := map[string]interface{}{
		"owner":  githubv4.String(repo.Owner),
		"name":   githubv4.String(repo.Name),
		"since":  githubv4.GitTimestamp{Time: since},
		"cursor": cursorVariable(cursor),
	}

	var q commitHistoryQuery
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		return domain.Connection[domain.Commit]{}, fmt.Errorf("failed to execute GraphQL query for commit history of %s: %w", repo.Path(), err)
	}
	if q.Repository.DefaultBranchRef == nil {
		// Empty repositories have no default branch.
		return domain.Connection[domain.Commit]{}, nil
	}

	history := q.Repository.DefaultBranchRef.Target.Commit.History
	conn := domain.Connection[domain.Commit]{HasNextPage: history.PageInfo.HasNextPage}
	for _, edge := range history.Edges {
		var associated []string
		for _, pr := range edge.Node.AssociatedPullRequests.Edges {
			associated = append(associated, pr.Node.ID)
		}
		conn.Edges = append(conn.Edges, domain.Edge[domain.Commit]{
			Cursor: edge.Cursor,
			Node:   toCommit(edge.Node.Commit, associated),
		})
	}
	return conn, nil
}

func (g *GitHubGateway) FetchPullRequests(ctx context.Context, ids []string) ([]domain.PullRequest, error) {
	pullRequests := make([]domain.PullRequest, 0, len(ids))
	for batch := range slices.Chunk(ids, pageSize) {
		g.logger.Debug("fetching pull request batch", zap.Int("size", len(batch)))
		nodeIDs := make([]githubv4.ID, 0, len(batch))
		for _, id := range batch {
			nodeIDs = append(nodeIDs, githubv4.ID(id))
		}

		var q pullRequestsQuery
		if err := g.graphqlClient.Query(ctx, &q, map[string]interface{}{"ids": nodeIDs}); err != nil {
			return nil, fmt.Errorf("failed to execute GraphQL query for pull requests: %w", err)
		}
		for _, node := range q.Nodes {
			if node.PullRequest.ID == "" {
				continue
			}
			pullRequests = append(pullRequests, toPullRequest(node.PullRequest))
		}
	}
	return pullRequests, nil
}

func (g *GitHubGateway) FetchPullRequestCommits(ctx context.Context, pullRequestID, cursor string) (domain.Connection[domain.Commit], error) {
	g.logger.Debug("fetching pull request commits page", zap.String("pull_request", pullRequestID), zap.String("cursor", cursor))
	variables := map[string]interface{}{
		"ids":    []githubv4.ID{githubv4.ID(pullRequestID)},
		"cursor": cursorVariable(cursor),
	}

	var q pullRequestCommitsQuery
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		return domain.Connection[domain.Commit]{}, fmt.Errorf("failed to execute GraphQL query for commits of pull request %s: %w", pullRequestID, err)
	}

	var conn domain.Connection[domain.Commit]
	if len(q.Nodes) == 0 {
		return conn, nil
	}
	commits := q.Nodes[0].PullRequest.Commits
	conn.HasNextPage = commits.PageInfo.HasNextPage
	for _, edge := range commits.Edges {
		conn.Edges = append(conn.Edges, domain.Edge[domain.Commit]{Cursor: edge.Cursor, Node: toCommit(edge.Node.Commit, nil)})
	}
	return conn, nil
}

func (g *GitHubGateway) FetchPullRequestComments(ctx context.Context, pullRequestID, cursor string) (domain.Connection[domain.Comment], error) {
	g.logger.Debug("fetching pull request comments page", zap.String("pull_request", pullRequestID), zap.String("cursor", cursor))
	variables := map[string]interface{}{
		"ids":    []githubv4.ID{githubv4.ID(pullRequestID)},
		"cursor": cursorVariable(cursor),
	}

	var q pullRequestCommentsQuery
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		return domain.Connection[domain.Comment]{}, fmt.Errorf("failed to execute GraphQL query for comments of pull request %s: %w", pullRequestID, err)
	}

	var conn domain.Connection[domain.Comment]
	if len(q.Nodes) == 0 {
		return conn, nil
	}
	comments := q.Nodes[0].PullRequest.Comments
	conn.HasNextPage = comments.PageInfo.HasNextPage
	for _, edge := range comments.Edges {
		conn.Edges = append(conn.Edges, domain.Edge[domain.Comment]{Cursor: edge.Cursor, Node: toComment(edge.Node)})
	}
	return conn, nil
}

func (g *GitHubGateway) FetchIssues(ctx context.Context, repo domain.Repository, label, cursor string) (domain.Connection[domain.Issue], error) {
	g.logger.Debug("fetching issues page", zap.String("repository", repo.Path()), zap.String("label", label), zap.String("cursor", cursor))
	variables := map[string]interface{}{
		"owner":  githubv4.String(repo.Owner),
		"name":   githubv4.String(repo.Name),
		"labels": []githubv4.String{githubv4.String(label)},
		"cursor": cursorVariable(cursor),
	}

	var q issuesQuery
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		return domain.Connection[domain.Issue]{}, fmt.Errorf("failed to execute GraphQL query for issues of %s: %w", repo.Path(), err)
	}

	issues := q.Repository.Issues
	conn := domain.Connection[domain.Issue]{HasNextPage: issues.PageInfo.HasNextPage}
	for _, edge := range issues.Edges {
		conn.Edges = append(conn.Edges, domain.Edge[domain.Issue]{Cursor: edge.Cursor, Node: toIssue(edge.Node)})
	}
	return conn, nil
}

// CloseIssue leaves a comment on the issue and closes it using the REST API.
func (g *GitHubGateway) CloseIssue(ctx context.Context, repo domain.Repository, number int, comment string) error {
	g.logger.Debug("closing issue", zap.String("repository", repo.Path()), zap.Int("number", number))
	if _, _, err := g.restClient.Issues.CreateComment(ctx, repo.Owner, repo.Name, number, &github.IssueComment{Body: github.String(comment)}); err != nil {
		return fmt.Errorf("failed to comment on issue %s#%d: %w", repo.Path(), number, err)
	}
	if _, _, err := g.restClient.Issues.Edit(ctx, repo.Owner, repo.Name, number, &github.IssueRequest{State: github.String("closed")}); err != nil {
		return fmt.Errorf("failed to close issue %s#%d: %w", repo.Path(), number, err)
	}
	return nil
}
