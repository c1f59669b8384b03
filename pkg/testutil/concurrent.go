package testutil

import (
	"errors"
	"sync"
	"sync/atomic"

	dErrors "mobileauth/pkg/domain-errors"
)

// ConcurrentResult tracks outcomes of concurrent test operations.
type ConcurrentResult struct {
	Successes   int32
	Errors      int32
	Stale       int32
	RateLimited int32
}

// Total returns the total number of operations executed.
func (r *ConcurrentResult) Total() int32 {
	return r.Successes + r.Errors + r.Stale + r.RateLimited
}

var (
	staleErr       = &dErrors.Error{Code: dErrors.CodeStaleFlow}
	rateLimitedErr = &dErrors.Error{Code: dErrors.CodeRateLimited}
)

// RunConcurrent executes fn in parallel goroutines and sorts each outcome by
// its domain error code.
func RunConcurrent(goroutines int, fn func(idx int) error) *ConcurrentResult {
	var wg sync.WaitGroup
	var successes, errs, stale, limited atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			err := fn(idx)
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, staleErr):
				stale.Add(1)
			case errors.Is(err, rateLimitedErr):
				limited.Add(1)
			default:
				errs.Add(1)
			}
		}(i)
	}

	wg.Wait()

	return &ConcurrentResult{
		Successes:   successes.Load(),
		Errors:      errs.Load(),
		Stale:       stale.Load(),
		RateLimited: limited.Load(),
	}
}
