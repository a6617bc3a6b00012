// Package barrier provides a reusable (cyclic) barrier for a fixed party of
// goroutines.
package barrier

import (
	"sync"

	sorterrors "github.com/tamirms/radixsort/errors"
)

// Barrier blocks each caller of Wait until parties goroutines have arrived,
// then releases them together and resets for the next cycle.
//
// The generation counter is what makes reuse safe: a goroutine released from
// cycle g may immediately call Wait again and join cycle g+1 while slower
// goroutines are still waking up from g. Waiters only leave when the
// generation they arrived in has advanced, so an early arrival in g+1 can
// never be mistaken for the release of g.
type Barrier struct {
	mu         sync.Mutex
	cond       *sync.Cond
	parties    int
	arrived    int
	generation uint64
	broken     bool
}

// New creates a barrier for the given number of parties.
// Panics if parties < 1.
func New(parties int) *Barrier {
	if parties < 1 {
		panic("barrier: parties must be positive")
	}
	b := &Barrier{parties: parties}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Wait blocks until all parties have called Wait in the current cycle.
// Returns ErrSortAborted if the barrier is broken before or while waiting.
func (b *Barrier) Wait() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.broken {
		return sorterrors.ErrSortAborted
	}

	gen := b.generation
	b.arrived++
	if b.arrived == b.parties {
		b.arrived = 0
		b.generation++
		b.cond.Broadcast()
		return nil
	}

	for gen == b.generation && !b.broken {
		b.cond.Wait()
	}
	if gen == b.generation {
		return sorterrors.ErrSortAborted
	}
	return nil
}

// Break releases every current waiter with ErrSortAborted and makes all
// future Wait calls fail immediately. Waiters whose cycle already completed
// are unaffected. Safe to call more than once.
func (b *Barrier) Break() {
	b.mu.Lock()
	b.broken = true
	b.cond.Broadcast()
	b.mu.Unlock()
}

// Generation returns the number of completed cycles.
func (b *Barrier) Generation() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.generation
}
