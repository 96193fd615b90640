// Package barneshut provides the 2D Barnes-Hut gravity engine.
//
// The package defines the body model and the spatial decomposition used to
// approximate pairwise gravity in O(n log n):
//
//   - [Point], [Vector]: plane coordinates and force/velocity accumulators
//   - [Quadrant]: axis-aligned region with a fixed child priority order
//   - [Body]: point mass with force accumulation and semi-implicit Euler update
//   - [Set]: ordered, mutable collection of bodies
//   - [Quadtree]: lazily subdivided tree of centre-of-mass aggregates
//   - [Params]: physical constants and the approximation threshold
//
// # Example
//
//	p := barneshut.DefaultParams()
//	tree := barneshut.New(q, p)
//	for _, b := range bodies {
//	    tree.Insert(b)
//	}
//	for _, b := range bodies {
//	    b.ResetForce()
//	    tree.UpdateForce(b)
//	}
//
// # Thread Safety
//
// Insertion mutates the tree and must run on one goroutine. Once built, a
// Quadtree may be traversed by [Quadtree.UpdateForce] from many goroutines as
// long as each goroutine owns the bodies whose forces it accumulates.
package barneshut
