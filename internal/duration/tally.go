package duration

import "sync/atomic"

// Tally is a monotonic running total of computed durations, owned by whoever needs the figure.
type Tally struct {
	total atomic.Int64
}

// Add records ms into the tally, saturating like Sum.
func (t *Tally) Add(ms int64) {
	for {
		old := t.total.Load()
		if t.total.CompareAndSwap(old, Sum(old, ms)) {
			return
		}
	}
}

// Total returns everything recorded so far.
func (t *Tally) Total() int64 {
	return t.total.Load()
}
