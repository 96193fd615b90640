package compute

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/barneshut/internal/barneshut"
)

// serialThreshold is the body count below which chunking costs more than it saves.
const serialThreshold = 16

// CPUBackend sums every pairwise interaction exactly.
type CPUBackend struct {
	workers int
}

// NewCPUBackend returns a direct-summation backend. A non-positive worker
// count selects runtime.NumCPU.
func NewCPUBackend(workers int) *CPUBackend {
	return &CPUBackend{workers: normalizeWorkers(workers)}
}

func (c *CPUBackend) Name() string { return "direct" }

func (c *CPUBackend) Forces(bodies []*barneshut.Body, p barneshut.Params) []barneshut.Vector {
	return DirectForces(bodies, p, c.workers)
}

// DirectForces returns the exact O(n^2) force on each body using the same
// softened law and zero-distance rule as the tree evaluation. Results are
// indexed like bodies.
func DirectForces(bodies []*barneshut.Body, p barneshut.Params, workers int) []barneshut.Vector {
	n := len(bodies)
	out := make([]barneshut.Vector, n)

	workers = normalizeWorkers(workers)
	if n < serialThreshold || workers == 1 {
		directRange(bodies, p, out, 0, n)
		return out
	}

	ParallelFor(n, workers, func(start, end int) {
		directRange(bodies, p, out, start, end)
	})
	return out
}

func directRange(bodies []*barneshut.Body, p barneshut.Params, out []barneshut.Vector, start, end int) {
	for i := start; i < end; i++ {
		acc := barneshut.Body{Location: bodies[i].Location, Mass: bodies[i].Mass}
		for j, o := range bodies {
			if i == j {
				continue
			}
			acc.AddForce(o, p)
		}
		out[i] = acc.Force
	}
}

// ParallelFor splits [0, n) into contiguous chunks and runs fn on each chunk
// concurrently. Chunks never overlap, so fn may write to its own indices
// without locking.
func ParallelFor(n, workers int, fn func(start, end int)) {
	workers = normalizeWorkers(workers)
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		if n > 0 {
			fn(0, n)
		}
		return
	}

	chunkSize := (n + workers - 1) / workers
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			break
		}
		g.Go(func() error {
			fn(start, end)
			return nil
		})
	}
	_ = g.Wait()
}

func normalizeWorkers(workers int) int {
	if workers <= 0 {
		return runtime.NumCPU()
	}
	return workers
}
