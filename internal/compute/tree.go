package compute

import "github.com/san-kum/barneshut/internal/barneshut"

// TreeBackend builds a throwaway quadtree per call and evaluates each body
// against it. Bodies are copied so their force accumulators stay untouched.
type TreeBackend struct {
	workers int
}

func NewTreeBackend(workers int) *TreeBackend {
	return &TreeBackend{workers: normalizeWorkers(workers)}
}

func (t *TreeBackend) Name() string { return "tree" }

func (t *TreeBackend) Forces(bodies []*barneshut.Body, p barneshut.Params) []barneshut.Vector {
	out := make([]barneshut.Vector, len(bodies))
	tree := barneshut.Build(bodies, p)
	if tree == nil {
		return out
	}

	ParallelFor(len(bodies), t.workers, func(start, end int) {
		for i := start; i < end; i++ {
			probe := *bodies[i]
			probe.ResetForce()
			tree.UpdateForce(&probe)
			out[i] = probe.Force
		}
	})
	return out
}
