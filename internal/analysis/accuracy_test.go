package analysis

import (
	"math/rand"
	"testing"

	"github.com/san-kum/barneshut/internal/barneshut"
)

func cluster(n int, seed int64) ([]*barneshut.Body, barneshut.Params) {
	p := barneshut.DefaultParams()
	p.G = 1
	p.Softening = 0.01
	rng := rand.New(rand.NewSource(seed))
	bodies := make([]*barneshut.Body, n)
	for i := range bodies {
		loc := barneshut.Point{X: rng.NormFloat64() * 10, Y: rng.NormFloat64() * 10}
		bodies[i] = barneshut.NewBody(loc, 1, p)
	}
	return bodies, p
}

func TestCompareForces_ExactAtZeroTheta(t *testing.T) {
	bodies, p := cluster(150, 1)
	p.Theta = 0

	r := CompareForces(bodies, p)
	if r.MaxError > 1e-9 {
		t.Errorf("expected exact forces, got max error %e", r.MaxError)
	}
	if r.Bodies != 150 || r.Nodes == 0 {
		t.Errorf("unexpected report %+v", r)
	}
}

func TestThetaSweep_Converges(t *testing.T) {
	bodies, p := cluster(300, 2)
	reports := ThetaSweep(bodies, p, []float64{1.0, 0.5, 0.2})

	if len(reports) != 3 {
		t.Fatalf("expected 3 reports, got %d", len(reports))
	}
	if reports[2].MeanError >= reports[0].MeanError {
		t.Errorf("expected error to fall with theta: %e (0.2) vs %e (1.0)",
			reports[2].MeanError, reports[0].MeanError)
	}
	if reports[1].MeanError > 0.1 {
		t.Errorf("expected mean error below 10%% at theta 0.5, got %e", reports[1].MeanError)
	}
}

func TestCompareForces_Empty(t *testing.T) {
	r := CompareForces(nil, barneshut.DefaultParams())
	if r.Bodies != 0 || r.MaxError != 0 {
		t.Errorf("expected empty report, got %+v", r)
	}
}

func TestRelativeError(t *testing.T) {
	tests := []struct {
		a, b barneshut.Vector
		want float64
	}{
		{barneshut.Vector{X: 1.1}, barneshut.Vector{X: 1}, 0.1},
		{barneshut.Vector{X: 3, Y: 4}, barneshut.Vector{}, 5},
		{barneshut.Vector{X: 2}, barneshut.Vector{X: 2}, 0},
	}
	for _, tt := range tests {
		if got := RelativeError(tt.a, tt.b); got-tt.want > 1e-12 || tt.want-got > 1e-12 {
			t.Errorf("RelativeError(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
