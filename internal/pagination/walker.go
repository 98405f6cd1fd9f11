// Package pagination follows cursor paginated connections to completion.
package pagination

import (
	"context"
	"fmt"

	"github.com/naka-gawa/timesheet/internal/domain"
)

// NextFunc fetches the page following cursor. An empty cursor requests the first page.
type NextFunc[T any] func(ctx context.Context, cursor string) (domain.Connection[T], error)

// Options controls how Walk traverses a connection. Every field is optional.
type Options[T any] struct {
	// Transform is applied to every node before it is collected.
	Transform func(ctx context.Context, node T) (T, error)
	// Continue decides, from the nodes of the page just processed, whether the next page is wanted.
	Continue func(page []T) bool
	// Next fetches the following page. Without it only the first page is returned.
	Next NextFunc[T]
}

// Walk flattens first and every following page into one ordered slice.
//
// A following page is requested only when the current page reports more results,
// carried at least one cursor, and the Continue policy (if any) accepts the page.
func Walk[T any](ctx context.Context, first domain.Connection[T], opts Options[T]) ([]T, error) {
	var nodes []T
	page := first

	for pageNum := 1; ; pageNum++ {
		pageNodes := make([]T, 0, len(page.Edges))
		cursor := ""

		for _, edge := range page.Edges {
			node := edge.Node
			if opts.Transform != nil {
				transformed, err := opts.Transform(ctx, node)
				if err != nil {
					return nil, fmt.Errorf("failed to transform node on page %d: %w", pageNum, err)
				}
				node = transformed
			}
			pageNodes = append(pageNodes, node)
			cursor = edge.Cursor
		}
		nodes = append(nodes, pageNodes...)

		if !page.HasNextPage || cursor == "" || opts.Next == nil {
			break
		}
		if opts.Continue != nil && !opts.Continue(pageNodes) {
			break
		}

		next, err := opts.Next(ctx, cursor)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch page %d: %w", pageNum+1, err)
		}
		page = next
	}

	if nodes == nil {
		nodes = []T{}
	}
	return nodes, nil
}

// Collect fetches the first page through opts.Next and walks the rest.
func Collect[T any](ctx context.Context, opts Options[T]) ([]T, error) {
	if opts.Next == nil {
		return nil, fmt.Errorf("pagination: Next is required to collect")
	}
	first, err := opts.Next(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page 1: %w", err)
	}
	return Walk(ctx, first, opts)
}
