package report

import (
	"github.com/montanaflynn/stats"
	"github.com/naka-gawa/timesheet/internal/accumulator"
	"github.com/naka-gawa/timesheet/internal/domain"
	"github.com/naka-gawa/timesheet/internal/duration"
)

// PullRequestStats returns the mean and median duration, in milliseconds, of the
// pull requests that carry logged time. Both are zero when there are none.
func PullRequestStats(pullRequests accumulator.Accumulator[domain.PullRequest]) (mean, median int64) {
	items := pullRequests.FilteredItems()
	if len(items) == 0 {
		return 0, 0
	}

	data := make(stats.Float64Data, 0, len(items))
	for _, pr := range items {
		data = append(data, float64(pullRequests.Duration(pr)))
	}

	m, err := data.Mean()
	if err != nil {
		return 0, 0
	}
	md, err := data.Median()
	if err != nil {
		return 0, 0
	}
	return int64(m), int64(md)
}

func formatDuration(ms int64, pattern string) string {
	return duration.Format(ms, pattern)
}
