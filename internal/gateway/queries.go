package gateway

import (
	"time"

	"github.com/naka-gawa/timesheet/internal/domain"
	"github.com/shurcooL/githubv4"
)

// pageSize is the GraphQL maximum for every connection below.
const pageSize = 100

type actorNode struct {
	Login     string
	AvatarURL string `graphql:"avatarUrl(size: 12)"`
}

type commitNode struct {
	Oid             string
	AbbreviatedOid  string
	MessageHeadline string
	URL             string
	Author          *struct {
		Name string
		User *struct {
			Login     string
			Name      string
			AvatarURL string `graphql:"avatarUrl(size: 12)"`
		}
	}
}

type pullRequestNode struct {
	ID       string
	Number   int
	Title    string
	BodyText string
	State    string
	URL      string
	ClosedAt *githubv4.DateTime
	Author   *actorNode
}

type commentNode struct {
	ID       string
	URL      string
	BodyText string
	Author   *actorNode
}

type issueNode struct {
	ID        string
	Number    int
	Title     string
	BodyText  string
	State     string
	URL       string
	CreatedAt githubv4.DateTime
	Author    *actorNode
	Labels    struct {
		Nodes []struct {
			Name string
		}
	} `graphql:"labels(first: 100)"`
}

// commitHistoryQuery walks the default branch history since a timestamp.
type commitHistoryQuery struct {
	Repository struct {
		DefaultBranchRef *struct {
			Target struct {
				Commit struct {
					History struct {
						PageInfo struct {
							HasNextPage bool
						}
						Edges []struct {
							Cursor string
							Node   struct {
								Commit                 commitNode `graphql:"... on Commit"`
								AssociatedPullRequests struct {
									Edges []struct {
										Node struct {
											ID string
										}
									}
								} `graphql:"associatedPullRequests(first: 100)"`
							}
						}
					} `graphql:"history(since: $since, after: $cursor, first: 100)"`
				} `graphql:"... on Commit"`
			}
		}
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// pullRequestsQuery resolves a batch of pull request node ids.
type pullRequestsQuery struct {
	Nodes []struct {
		PullRequest pullRequestNode `graphql:"... on PullRequest"`
	} `graphql:"nodes(ids: $ids)"`
}

type pullRequestCommitsQuery struct {
	Nodes []struct {
		PullRequest struct {
			Commits struct {
				PageInfo struct {
					HasNextPage bool
				}
				Edges []struct {
					Cursor string
					Node   struct {
						Commit commitNode
					}
				}
			} `graphql:"commits(first: 100, after: $cursor)"`
		} `graphql:"... on PullRequest"`
	} `graphql:"nodes(ids: $ids)"`
}

type pullRequestCommentsQuery struct {
	Nodes []struct {
		PullRequest struct {
			Comments struct {
				PageInfo struct {
					HasNextPage bool
				}
				Edges []struct {
					Cursor string
					Node   commentNode
				}
			} `graphql:"comments(first: 100, after: $cursor)"`
		} `graphql:"... on PullRequest"`
	} `graphql:"nodes(ids: $ids)"`
}

// issuesQuery lists labeled issues newest first; the monthly early stop relies on that order.
type issuesQuery struct {
	Repository struct {
		Issues struct {
			PageInfo struct {
				HasNextPage bool
			}
			Edges []struct {
				Cursor string
				Node   issueNode
			}
		} `graphql:"issues(first: 100, after: $cursor, labels: $labels, orderBy: {field: CREATED_AT, direction: DESC})"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

func cursorVariable(cursor string) *githubv4.String {
	if cursor == "" {
		return nil
	}
	return githubv4.NewString(githubv4.String(cursor))
}

func toActor(a *actorNode) *domain.Actor {
	if a == nil {
		return nil
	}
	return &domain.Actor{Login: a.Login, AvatarURL: a.AvatarURL}
}

func toCommit(n commitNode, associated []string) domain.Commit {
	commit := domain.Commit{
		OID:                      n.Oid,
		AbbreviatedOID:           n.AbbreviatedOid,
		MessageHeadline:          n.MessageHeadline,
		URL:                      n.URL,
		AssociatedPullRequestIDs: associated,
	}
	if n.Author != nil {
		commit.Author = &domain.CommitAuthor{Name: n.Author.Name}
		if u := n.Author.User; u != nil {
			commit.Author.User = &domain.User{Login: u.Login, Name: u.Name, AvatarURL: u.AvatarURL}
		}
	}
	return commit
}

func toPullRequest(n pullRequestNode) domain.PullRequest {
	pr := domain.PullRequest{
		ID:       n.ID,
		Number:   n.Number,
		Title:    n.Title,
		BodyText: n.BodyText,
		State:    n.State,
		URL:      n.URL,
		Author:   toActor(n.Author),
	}
	if n.ClosedAt != nil {
		closedAt := n.ClosedAt.Time
		pr.ClosedAt = &closedAt
	}
	return pr
}

func toComment(n commentNode) domain.Comment {
	return domain.Comment{ID: n.ID, URL: n.URL, BodyText: n.BodyText, Author: toActor(n.Author)}
}

func toIssue(n issueNode) domain.Issue {
	issue := domain.Issue{
		ID:        n.ID,
		Number:    n.Number,
		Title:     n.Title,
		BodyText:  n.BodyText,
		State:     n.State,
		URL:       n.URL,
		CreatedAt: n.CreatedAt.Time.In(time.UTC),
		Author:    toActor(n.Author),
	}
	for _, label := range n.Labels.Nodes {
		issue.Labels = append(issue.Labels, label.Name)
	}
	return issue
}
