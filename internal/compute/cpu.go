package compute

import (
	"fmt"
	"runtime"
	"sync"
)

// minParallelRows is the row count below which Reduce stays on the calling
// goroutine.
const minParallelRows = 16

type CPUBackend struct {
	workers int
}

func NewCPUBackend() *CPUBackend {
	return NewCPUBackendN(runtime.NumCPU())
}

// NewCPUBackendN fixes the worker count; values below 1 mean one worker.
func NewCPUBackendN(workers int) *CPUBackend {
	return &CPUBackend{workers: max(workers, 1)}
}

func (c *CPUBackend) Name() string    { return fmt.Sprintf("cpu (%d workers)", c.workers) }
func (c *CPUBackend) Available() bool { return true }
func (c *CPUBackend) Cleanup()        {}

func (c *CPUBackend) Workers() int { return c.workers }

func (c *CPUBackend) Reduce(n, width int, kernel Kernel) []complex128 {
	result := make([]complex128, width)
	if n <= 0 {
		return result
	}

	if n < minParallelRows || c.workers == 1 {
		kernel(0, n, result)
		return result
	}

	workers := min(c.workers, n)
	local := make([][]complex128, workers)
	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		local[w] = make([]complex128, width)

		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(acc []complex128) {
			defer wg.Done()
			kernel(start, end, acc)
		}(local[w])
	}

	wg.Wait()

	for w := 0; w < workers; w++ {
		for i := range result {
			result[i] += local[w][i]
		}
	}
	return result
}
