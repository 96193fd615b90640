// Package compute provides force evaluation backends over a body snapshot.
//
// Two backends are registered:
//
//   - direct: exact pairwise summation, chunked across workers
//   - tree: Barnes-Hut approximation through a per-call quadtree
//
// Both use the same softened force law, so the direct backend serves as the
// reference when measuring approximation error:
//
//	exact := compute.DirectForces(bodies, params, 0)
//	b, _ := compute.Get("tree", 0)
//	approx := b.Forces(bodies, params)
package compute
