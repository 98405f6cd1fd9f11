package domain

import "time"

// Issue and pull request states as reported by the GraphQL API.
const (
	StateOpen   = "OPEN"
	StateClosed = "CLOSED"
	StateMerged = "MERGED"
)

// Actor is the author of a pull request, issue or comment.
type Actor struct {
	Login     string
	AvatarURL string
}

// User is the platform account linked to a git commit author.
type User struct {
	Login     string
	Name      string
	AvatarURL string
}

// CommitAuthor is the git author of a commit, optionally linked to a platform user.
type CommitAuthor struct {
	Name string
	User *User
}

// Commit is a commit reachable from a repository's default branch.
type Commit struct {
	OID                      string
	AbbreviatedOID           string
	MessageHeadline          string
	URL                      string
	Author                   *CommitAuthor
	AssociatedPullRequestIDs []string
}

// PullRequest is a pull request associated with at least one fetched commit.
type PullRequest struct {
	ID       string
	Number   int
	Title    string
	BodyText string
	State    string
	URL      string
	ClosedAt *time.Time
	Author   *Actor
}

// Issue is a labeled issue used to log time against a repository.
type Issue struct {
	ID        string
	Number    int
	Title     string
	BodyText  string
	State     string
	URL       string
	CreatedAt time.Time
	Author    *Actor
	Labels    []string
}

// Comment is a pull request conversation comment.
type Comment struct {
	ID       string
	URL      string
	BodyText string
	Author   *Actor
}
