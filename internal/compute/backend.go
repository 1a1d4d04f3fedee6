package compute

// Kernel accumulates the contribution of rows [lo, hi) into acc.
type Kernel func(lo, hi int, acc []complex128)

type Backend interface {
	Name() string
	Available() bool
	// Reduce runs kernel over [0, n) and returns the width accumulators
	// summed over all chunks.
	Reduce(n, width int, kernel Kernel) []complex128
	Cleanup()
}

var activeBackend Backend = NewCPUBackend()

func SetBackend(b Backend) {
	if activeBackend != nil {
		activeBackend.Cleanup()
	}
	activeBackend = b
}

func GetBackend() Backend {
	return activeBackend
}
