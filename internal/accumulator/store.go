package accumulator

import "github.com/naka-gawa/timesheet/internal/duration"

// Store is the bookkeeping every accumulator shares: an insertion ordered,
// identity deduplicated item list and a duration (milliseconds) per identity.
type Store[T any] struct {
	identify  func(T) string
	items     []T
	index     map[string]int
	durations map[string]int64
}

// NewStore creates an empty store keyed by identify.
func NewStore[T any](identify func(T) string) *Store[T] {
	return &Store[T]{
		identify:  identify,
		index:     make(map[string]int),
		durations: make(map[string]int64),
	}
}

// Insert appends item unless its identity is already known. It reports whether it was appended.
func (s *Store[T]) Insert(item T) bool {
	id := s.identify(item)
	if _, ok := s.index[id]; ok {
		return false
	}
	s.index[id] = len(s.items)
	s.items = append(s.items, item)
	return true
}

// Has reports whether an item with identity id was inserted.
func (s *Store[T]) Has(id string) bool {
	_, ok := s.index[id]
	return ok
}

// Ensure materializes a zero duration for id when none exists and returns the current value.
// It is idempotent; reading a duration through Ensure leaves an entry behind.
func (s *Store[T]) Ensure(id string) int64 {
	if _, ok := s.durations[id]; !ok {
		s.durations[id] = 0
	}
	return s.durations[id]
}

// AddDuration increments the duration of id, creating it at zero first.
func (s *Store[T]) AddDuration(id string, ms int64) {
	s.Ensure(id)
	s.durations[id] = duration.Sum(s.durations[id], ms)
}

// HasDuration reports whether a duration entry exists for id.
func (s *Store[T]) HasDuration(id string) bool {
	_, ok := s.durations[id]
	return ok
}

// Items returns the items in insertion order. The slice must not be modified.
func (s *Store[T]) Items() []T {
	return s.items
}

// Len returns the number of distinct items.
func (s *Store[T]) Len() int {
	return len(s.items)
}

// TotalDuration sums every duration entry.
func (s *Store[T]) TotalDuration() int64 {
	var total int64
	for _, ms := range s.durations {
		total = duration.Sum(total, ms)
	}
	return total
}
