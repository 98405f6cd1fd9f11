package report

import (
	"strconv"

	"github.com/naka-gawa/timesheet/internal/accumulator"
	"github.com/naka-gawa/timesheet/internal/domain"
	"github.com/naka-gawa/timesheet/internal/duration"
)

// RepositoryData is everything collected for one repository during a run.
type RepositoryData struct {
	Repository   domain.Repository
	Users        []domain.Breakdown
	Commits      accumulator.Accumulator[domain.Commit]
	PullRequests accumulator.Accumulator[domain.PullRequest]
	Issues       accumulator.Accumulator[domain.Issue]
}

// TotalDuration sums the pull request, commit and issue durations of the repository.
func (d RepositoryData) TotalDuration() int64 {
	return accumulator.TotalDuration(d.PullRequests, d.Commits, d.Issues)
}

// BreakdownTable lists every contributor with their duration and counters.
func BreakdownTable(users []domain.Breakdown, pattern string) [][]string {
	rows := [][]string{{"Author", "Duration", "Commits", "Pull Request", "Issues"}}
	for _, user := range users {
		rows = append(rows, []string{
			ImageField(user.Name, user.Avatar) + " " + user.Name,
			duration.Format(user.Duration, pattern),
			strconv.Itoa(user.Commits),
			strconv.Itoa(user.PullRequests),
			strconv.Itoa(user.Issues),
		})
	}
	return rows
}

// PullRequestTable lists the pull requests that carry logged time.
func PullRequestTable(pullRequests accumulator.Accumulator[domain.PullRequest], pattern string) [][]string {
	rows := [][]string{{"#", "Pull Request", "Duration", "Link"}}
	for _, pr := range pullRequests.FilteredItems() {
		rows = append(rows, []string{
			authorField(pullRequests.Author(pr)),
			pr.Title,
			pullRequests.FormatDuration(pr, pattern),
			NumberField(strconv.Itoa(pr.Number), pr.URL),
		})
	}
	return rows
}

// IssueTable lists every issue logged against the repository.
func IssueTable(issues accumulator.Accumulator[domain.Issue], pattern string) [][]string {
	rows := [][]string{{"#", "Title", "Duration", "Link"}}
	for _, issue := range issues.FilteredItems() {
		rows = append(rows, []string{
			authorField(issues.Author(issue)),
			issue.Title,
			issues.FormatDuration(issue, pattern),
			NumberField(strconv.Itoa(issue.Number), issue.URL),
		})
	}
	return rows
}

// CommitTable lists the commits that carry logged time outside of a pull request.
func CommitTable(commits accumulator.Accumulator[domain.Commit], pattern string) [][]string {
	rows := [][]string{{"#", "Title", "Duration", "Link"}}
	for _, commit := range commits.FilteredItems() {
		rows = append(rows, []string{
			authorField(commits.Author(commit)),
			commit.MessageHeadline,
			commits.FormatDuration(commit, pattern),
			LinkField(commit.AbbreviatedOID, commit.URL),
		})
	}
	return rows
}

// MasterTable has one row per repository linking to its monthly report.
func MasterTable(data []RepositoryData, layout Layout, pattern string) [][]string {
	rows := [][]string{{"Repository", "Total", "Commits", "Pull Request", "Issues"}}
	for _, repo := range data {
		rows = append(rows, []string{
			LinkField(repo.Repository.Name, layout.ReportLink(repo.Repository)),
			duration.Format(repo.TotalDuration(), pattern),
			strconv.Itoa(len(repo.Commits.Items())),
			strconv.Itoa(len(repo.PullRequests.Items())),
			strconv.Itoa(len(repo.Issues.Items())),
		})
	}
	return rows
}

func authorField(author *domain.Author) string {
	if author == nil {
		return ImageField("", "")
	}
	return ImageField(author.Name, author.Avatar)
}
