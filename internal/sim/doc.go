// Package sim drives a body set through time.
//
// Each step rebuilds a quadtree over the current positions, evaluates every
// body's force against it, and only then integrates. A single Simulator is not
// safe for concurrent use; Sweep creates one per run.
package sim
