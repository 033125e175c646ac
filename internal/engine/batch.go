package engine

import (
	"context"
	"runtime"
	"sync"
)

// BatchReport aggregates the outcomes of a multi-user analysis run.
type BatchReport struct {
	Results map[string]*Result
	Errors  map[string]error
}

// Succeeded returns the number of users whose pass completed.
func (r *BatchReport) Succeeded() int {
	return len(r.Results)
}

// Failed returns the number of users whose pass returned an error.
func (r *BatchReport) Failed() int {
	return len(r.Errors)
}

// AnalyzeUsers runs one analysis pass for each user id over a bounded worker
// pool. Duplicate ids collapse to a single pass; per-user serialization still
// holds because every pass goes through the same lock table. A failed pass
// lands in the report instead of aborting the run.
//
// If workers is 0 it defaults to runtime.NumCPU.
func (e *Engine) AnalyzeUsers(ctx context.Context, userIDs []string, opts Options, workers int) *BatchReport {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	seen := make(map[string]struct{}, len(userIDs))
	queue := make(chan string, len(userIDs))
	for _, userID := range userIDs {
		if _, dup := seen[userID]; dup || userID == "" {
			continue
		}
		seen[userID] = struct{}{}
		queue <- userID
	}
	close(queue)

	report := &BatchReport{
		Results: make(map[string]*Result, len(seen)),
		Errors:  make(map[string]error),
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for userID := range queue {
				if ctx.Err() != nil {
					mu.Lock()
					report.Errors[userID] = ctx.Err()
					mu.Unlock()
					continue
				}
				result, err := e.AnalyzeAndUpdatePatterns(ctx, userID, opts)
				mu.Lock()
				if err != nil {
					report.Errors[userID] = err
				} else {
					report.Results[userID] = result
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	return report
}
