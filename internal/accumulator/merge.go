package accumulator

import (
	"github.com/naka-gawa/timesheet/internal/domain"
	"github.com/naka-gawa/timesheet/internal/duration"
)

// breakdowns keeps per-contributor rows in first-seen order.
type breakdowns struct {
	order []string
	rows  map[string]*domain.Breakdown
}

func newBreakdowns() *breakdowns {
	return &breakdowns{rows: make(map[string]*domain.Breakdown)}
}

func (b *breakdowns) get(author domain.Author) *domain.Breakdown {
	row, ok := b.rows[author.Name]
	if !ok {
		row = &domain.Breakdown{Name: author.Name, Avatar: author.Avatar}
		b.rows[author.Name] = row
		b.order = append(b.order, author.Name)
	}
	return row
}

func (b *breakdowns) list() []domain.Breakdown {
	out := make([]domain.Breakdown, 0, len(b.order))
	for _, name := range b.order {
		out = append(out, *b.rows[name])
	}
	return out
}

// Merge unions the Calculate output of every accumulator by contributor name,
// summing durations and all four counters. The first avatar seen for a name is kept.
func Merge(accumulators ...Summarizer) []domain.Breakdown {
	rows := newBreakdowns()
	for _, acc := range accumulators {
		for _, user := range acc.Calculate() {
			row := rows.get(domain.Author{Name: user.Name, Avatar: user.Avatar})
			row.Duration = duration.Sum(row.Duration, user.Duration)
			row.Commits += user.Commits
			row.PullRequests += user.PullRequests
			row.Issues += user.Issues
			row.Comments += user.Comments
		}
	}
	return rows.list()
}

// TotalDuration sums the accumulated durations of every accumulator.
func TotalDuration(accumulators ...Totaler) int64 {
	var total int64
	for _, acc := range accumulators {
		total = duration.Sum(total, acc.TotalDuration())
	}
	return total
}

// FormattedTotalDuration formats the summed duration of accumulators with pattern.
func FormattedTotalDuration(accumulators []Totaler, pattern string) string {
	return duration.Format(TotalDuration(accumulators...), pattern)
}
