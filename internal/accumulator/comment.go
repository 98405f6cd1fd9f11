package accumulator

import (
	"github.com/naka-gawa/timesheet/internal/domain"
	"github.com/naka-gawa/timesheet/internal/identity"
)

// Comments accumulates pull request comments as the pull request accumulator discovers them.
type Comments struct {
	*base[domain.Comment]
}

// NewComments creates an empty comment accumulator.
func NewComments(deps Deps) *Comments {
	return &Comments{base: newBase(entity[domain.Comment]{
		identify:       func(c domain.Comment) string { return c.ID },
		durationFields: func(c domain.Comment) []string { return []string{c.BodyText} },
		author: func(mapper *identity.Mapper, c domain.Comment) *domain.Author {
			return actorAuthor(mapper, c.Author)
		},
		count: func(b *domain.Breakdown) { b.Comments++ },
	}, deps)}
}
