package report

import (
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/naka-gawa/timesheet/internal/duration"
)

// Tokens maps dotted keys such as "table.breakdown" to their rendered values.
type Tokens map[string]string

var tokenPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.]+)\s*\}\}`)

// Render replaces every {{ key }} in template with its token. Unknown keys are left as written.
func Render(template string, tokens Tokens) string {
	return tokenPattern.ReplaceAllStringFunc(template, func(match string) string {
		key := tokenPattern.FindStringSubmatch(match)[1]
		if value, ok := tokens[key]; ok {
			return value
		}
		return match
	})
}

// Merge copies the tokens of every set into t, later sets overriding earlier ones.
func (t Tokens) Merge(sets ...Tokens) Tokens {
	for _, set := range sets {
		for k, v := range set {
			t[k] = v
		}
	}
	return t
}

// DateTokens describes now under the "date" namespace.
func DateTokens(now time.Time) Tokens {
	return Tokens{
		"date.now":        now.Format("January 2, 2006 3:04 PM"),
		"date.monthLong":  now.Month().String(),
		"date.monthShort": now.Format("Jan"),
		"date.isoDate":    now.Format(time.DateOnly),
		"date.http":       now.UTC().Format(http.TimeFormat),
		"date.year":       strconv.Itoa(now.Year()),
		"date.month":      now.Format("01"),
	}
}

// RepositoryTokens are the tokens available to the per repository template.
func RepositoryTokens(data RepositoryData, now time.Time, pattern string) Tokens {
	mean, median := PullRequestStats(data.PullRequests)
	return Tokens{
		"totalDuration":                   formatDuration(data.TotalDuration(), pattern),
		"repository.owner":                data.Repository.Owner,
		"repository.name":                 data.Repository.Name,
		"repository.path":                 data.Repository.Path(),
		"repository.url":                  data.Repository.URL(),
		"table.breakdown":                 Markdown(BreakdownTable(data.Users, pattern)),
		"table.pullRequests":              Markdown(PullRequestTable(data.PullRequests, pattern)),
		"table.issues":                    Markdown(IssueTable(data.Issues, pattern)),
		"table.commits":                   Markdown(CommitTable(data.Commits, pattern)),
		"stats.meanPullRequestDuration":   formatDuration(mean, pattern),
		"stats.medianPullRequestDuration": formatDuration(median, pattern),
	}.Merge(DateTokens(now))
}

// MasterTokens are the tokens available to the master template. totalDuration is the
// sum of the repository totals listed in the table.
func MasterTokens(data []RepositoryData, layout Layout, pattern string) Tokens {
	var total int64
	for _, repo := range data {
		total = duration.Sum(total, repo.TotalDuration())
	}
	return Tokens{
		"table.breakdown": Markdown(MasterTable(data, layout, pattern)),
		"totalDuration":   formatDuration(total, pattern),
	}.Merge(DateTokens(layout.Window.Now))
}
