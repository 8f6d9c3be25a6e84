// Package pool provides a small worker pool used to parallelize the
// independent, CPU-bound round computations inside the attestation proofs
// (auxiliary commitment generation, per-round verification) across
// multiple goroutines bounded by a fixed worker count.
package pool

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Pool bounds the number of goroutines used to run a batch of independent
// jobs concurrently.
type Pool struct {
	workers int
	sem     chan struct{}
}

// NewPool creates a Pool with n workers. n<=0 uses runtime.GOMAXPROCS(0),
// matching the zero-value convention call sites throughout this module use
// ("pool.NewPool(0)" means "use all available cores").
func NewPool(n int) *Pool {
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	return &Pool{workers: n, sem: make(chan struct{}, n)}
}

// TearDown releases the pool. Kept for symmetry with callers that always
// `defer pl.TearDown()`; there is no background goroutine to stop since
// Parallelize only runs for the duration of a single call.
func (p *Pool) TearDown() {}

// Parallelize runs fn(i) for i in [0,n) across at most p.workers goroutines
// at a time, and returns the first error encountered (if any). An error
// does not cancel the remaining jobs; all n jobs are run.
func (p *Pool) Parallelize(n int, fn func(i int) error) error {
	if n == 0 {
		return nil
	}
	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		p.sem <- struct{}{}
		g.Go(func() error {
			defer func() { <-p.sem }()
			return fn(i)
		})
	}
	return g.Wait()
}

// Submit runs a single closure on the pool, blocking until it completes and
// returning its error. It hands one job to the pool's worker budget rather
// than a full Parallelize fan-out.
func (p *Pool) Submit(fn func() error) error {
	p.sem <- struct{}{}
	defer func() { <-p.sem }()
	return fn()
}
