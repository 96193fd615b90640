package analysis

import (
	"math"
	"time"

	"github.com/san-kum/barneshut/internal/barneshut"
	"github.com/san-kum/barneshut/internal/compute"
)

// Report compares tree forces with the exact reference for one theta.
type Report struct {
	Theta     float64
	Bodies    int
	MeanError float64
	MaxError  float64
	// Nodes is the size of the tree the tree forces were read from.
	Nodes      int
	TreeTime   time.Duration
	DirectTime time.Duration
}

// Speedup is DirectTime / TreeTime.
func (r Report) Speedup() float64 {
	if r.TreeTime == 0 {
		return 0
	}
	return float64(r.DirectTime) / float64(r.TreeTime)
}

// CompareForces evaluates bodies with the tree at p.Theta and with direct
// summation. Errors are relative to the magnitude of the exact force; bodies
// with zero exact force are measured in absolute terms. Bodies are not
// modified.
func CompareForces(bodies []*barneshut.Body, p barneshut.Params) Report {
	start := time.Now()
	exact := compute.DirectForces(bodies, p, 0)
	direct := time.Since(start)
	return compare(bodies, p, exact, direct)
}

// ThetaSweep runs CompareForces for each theta while computing the exact
// reference only once.
func ThetaSweep(bodies []*barneshut.Body, p barneshut.Params, thetas []float64) []Report {
	start := time.Now()
	exact := compute.DirectForces(bodies, p, 0)
	direct := time.Since(start)

	reports := make([]Report, 0, len(thetas))
	for _, theta := range thetas {
		q := p
		q.Theta = theta
		reports = append(reports, compare(bodies, q, exact, direct))
	}
	return reports
}

func compare(bodies []*barneshut.Body, p barneshut.Params, exact []barneshut.Vector, direct time.Duration) Report {
	r := Report{Theta: p.Theta, Bodies: len(bodies), DirectTime: direct}
	if len(bodies) == 0 {
		return r
	}

	start := time.Now()
	approx := compute.NewTreeBackend(0).Forces(bodies, p)
	r.TreeTime = time.Since(start)

	if tree := barneshut.Build(bodies, p); tree != nil {
		r.Nodes = tree.Stats().Nodes
	}

	sum := 0.0
	for i := range bodies {
		e := RelativeError(approx[i], exact[i])
		sum += e
		r.MaxError = math.Max(r.MaxError, e)
	}
	r.MeanError = sum / float64(len(bodies))
	return r
}

// RelativeError is |a-b| / |b|, or |a-b| when b is zero.
func RelativeError(a, b barneshut.Vector) float64 {
	diff := a.Sub(b).Norm()
	if n := b.Norm(); n > 0 {
		return diff / n
	}
	return diff
}
