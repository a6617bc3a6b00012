package barrier

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	sorterrors "github.com/tamirms/radixsort/errors"
)

// TestBarrierCyclesInLockstep runs many cycles and verifies that no party
// leaves cycle c before every party has arrived at cycle c.
func TestBarrierCyclesInLockstep(t *testing.T) {
	for _, parties := range []int{1, 2, 3, 7, 16} {
		const cycles = 200
		b := New(parties)
		var arrivals atomic.Int64
		var wg sync.WaitGroup
		errs := make(chan error, parties)

		for range parties {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for c := range cycles {
					arrivals.Add(1)
					if err := b.Wait(); err != nil {
						errs <- err
						return
					}
					if got, want := arrivals.Load(), int64((c+1)*parties); got < want {
						errs <- errors.New("party released before all arrivals")
						return
					}
				}
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			t.Fatalf("parties=%d: %v", parties, err)
		}
		if got := b.Generation(); got != cycles {
			t.Fatalf("parties=%d: generation = %d, want %d", parties, got, cycles)
		}
	}
}

func TestBarrierBreakReleasesWaiters(t *testing.T) {
	b := New(3)
	errs := make(chan error, 2)
	for range 2 {
		go func() { errs <- b.Wait() }()
	}

	// Give both waiters time to block; Break must release them either way.
	time.Sleep(10 * time.Millisecond)
	b.Break()

	for range 2 {
		select {
		case err := <-errs:
			if !errors.Is(err, sorterrors.ErrSortAborted) {
				t.Fatalf("Wait after Break = %v, want ErrSortAborted", err)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("waiter not released by Break")
		}
	}

	if err := b.Wait(); !errors.Is(err, sorterrors.ErrSortAborted) {
		t.Fatalf("Wait on broken barrier = %v, want ErrSortAborted", err)
	}
}

func TestBarrierBreakIsIdempotent(t *testing.T) {
	b := New(2)
	b.Break()
	b.Break()
	if err := b.Wait(); !errors.Is(err, sorterrors.ErrSortAborted) {
		t.Fatalf("Wait = %v, want ErrSortAborted", err)
	}
}

func TestNewPanicsOnNonPositiveParties(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("New(0) did not panic")
		}
	}()
	New(0)
}
