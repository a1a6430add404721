package engine

import "sync"

// forEachRange splits [0, n) into at most workers contiguous ranges and runs
// fn on each in its own goroutine. With one worker fn runs inline.
func forEachRange(n, workers int, fn func(lo, hi int)) {
	if n <= 0 {
		return
	}
	if workers <= 1 || n == 1 {
		fn(0, n)
		return
	}

	workers = min(workers, n)
	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			fn(lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}

// outputWorkers caps the worker count so each worker gets a useful share.
func outputWorkers(outputs, workers int) int {
	if outputs < parallelMinOutputs {
		return 1
	}
	return max(1, min(workers, outputs/minOutputsPerWorker))
}
