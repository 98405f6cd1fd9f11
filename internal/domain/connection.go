package domain

// Edge is a single node of a paged connection together with its cursor.
type Edge[T any] struct {
	Cursor string
	Node   T
}

// Connection is one page of a cursor paginated result set.
type Connection[T any] struct {
	HasNextPage bool
	Edges       []Edge[T]
}

// Nodes returns the nodes of the page in edge order.
func (c Connection[T]) Nodes() []T {
	nodes := make([]T, 0, len(c.Edges))
	for _, edge := range c.Edges {
		nodes = append(nodes, edge.Node)
	}
	return nodes
}
