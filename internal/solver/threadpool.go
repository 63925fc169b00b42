package solver

import "golang.org/x/sync/errgroup"

// threadPool hands out exclusive indices into a StackAllocator's per-thread
// arenas so concurrent traversal tasks never share a stack.
type threadPool struct {
	ids  chan int
	size int
}

func newThreadPool(n int) *threadPool {
	p := &threadPool{ids: make(chan int, n), size: n}
	for i := 0; i < n; i++ {
		p.ids <- i
	}
	return p
}

func (p *threadPool) acquire() int {
	return <-p.ids
}

func (p *threadPool) release(id int) {
	p.ids <- id
}

// parallelFor runs fn(i, tid) for every i in [0, n), spreading the work
// over at most pool.size worker goroutines instead of one goroutine per
// item. homeThread is the arena slot the caller already holds; parallelFor
// folds it in as one of the workers rather than leaving it idle, so only
// workers-1 further slots are ever acquired from pool — exactly the number
// actually sitting unclaimed in the pool while the caller holds homeThread.
// Each worker keeps its slot for its whole strided share of the work and
// releases it only once that share is done.
//
// Both properties matter. A fan-out wider than the pool (e.g. a ~47-card
// turn chance node against a handful of threads) used to spawn one
// goroutine per item, all racing to acquire from the same fixed-size pool
// while release was deferred until the whole batch joined: once the pool
// was exhausted the surplus goroutines blocked on acquire forever and Wait
// never returned. And requesting a full pool.size *more* slots on top of
// the one the caller already holds would still deadlock by exactly one
// slot, since only pool.size-1 are ever free in the channel at that point.
func parallelFor(pool *threadPool, homeThread, n int, fn func(i, tid int)) {
	workers := pool.size
	if workers > n {
		workers = n
	}
	var g errgroup.Group
	for w := 1; w < workers; w++ {
		w := w
		g.Go(func() error {
			tid := pool.acquire()
			defer pool.release(tid)
			for i := w; i < n; i += workers {
				fn(i, tid)
			}
			return nil
		})
	}
	for i := 0; i < n; i += workers {
		fn(i, homeThread)
	}
	_ = g.Wait()
}
