// Package parallel splits elementwise work over measurement points across CPU cores.
//
// Only per-point computations go through here. Reductions (sums) stay sequential
// in the callers so that results do not depend on the number of CPUs.
package parallel

import (
	"runtime"
	"sync"
)

// DefaultThreshold is the number of items below which work runs on the calling goroutine.
const DefaultThreshold = 1000

// Parallelize divides the specified total number (items) according to the number of CPU cores,
// and executes the specified function (fn) in parallel for each range (start, end)
func Parallelize(items int, fn func(start, end int)) {
	if items <= 0 {
		return
	}

	numWorkers := runtime.NumCPU()
	if numWorkers > items {
		numWorkers = items
	}

	// ceiling division
	chunkSize := (items + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}

	wg.Wait()
}

// ParallelizeWithThreshold performs parallelization only when the number of items exceeds the threshold
// If below threshold, normal sequential processing is performed
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= threshold {
		fn(0, items)
		return
	}
	Parallelize(items, fn)
}

// Map fills out[i] = fn(i) for every i in [0, len(out)), fanning out above threshold.
// fn must only read shared state.
func Map(out []float64, threshold int, fn func(i int) float64) {
	ParallelizeWithThreshold(len(out), threshold, func(start, end int) {
		for i := start; i < end; i++ {
			out[i] = fn(i)
		}
	})
}
