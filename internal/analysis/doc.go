// Package analysis measures the accuracy of the Barnes-Hut approximation.
//
//   - [CompareForces]: tree forces against exact pairwise forces
//   - [ThetaSweep]: the same comparison over several opening thresholds
//
// # Convergence
//
// Error falls as theta shrinks and vanishes at theta = 0:
//
//	reports := analysis.ThetaSweep(bodies, params, []float64{1, 0.5, 0.25, 0})
//	for _, r := range reports {
//	    fmt.Printf("%.2f %.2e\n", r.Theta, r.MaxError)
//	}
package analysis
