package barneshut

import (
	"math"
	"testing"
)

func TestNewBody_DefaultMass(t *testing.T) {
	p := DefaultParams()

	tests := []struct {
		name string
		mass float64
		want float64
	}{
		{"explicit", 3, 3},
		{"zero", 0, p.DefaultMass},
		{"negative", -1, p.DefaultMass},
		{"NaN", math.NaN(), p.DefaultMass},
		{"+Inf", math.Inf(1), p.DefaultMass},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBody(Point{}, tt.mass, p)
			if b.Mass != tt.want {
				t.Errorf("expected mass %v, got %v", tt.want, b.Mass)
			}
			if b.ID == NoID {
				t.Error("expected a non-zero id")
			}
		})
	}
}

func TestNewBody_UniqueIDs(t *testing.T) {
	p := DefaultParams()
	seen := make(map[uint64]bool)
	for i := 0; i < 100; i++ {
		b := NewBody(Point{}, 1, p)
		if seen[b.ID] {
			t.Fatalf("duplicate id %d", b.ID)
		}
		seen[b.ID] = true
	}
}

func TestBody_Add(t *testing.T) {
	p := DefaultParams()
	a := NewBody(Point{0, 0}, 1, p)
	b := NewBody(Point{4, 8}, 3, p)

	agg := a.Add(b)
	if agg.Mass != 4 {
		t.Errorf("expected mass 4, got %v", agg.Mass)
	}
	if agg.Location != (Point{3, 6}) {
		t.Errorf("expected centroid (3,6), got %v", agg.Location)
	}
	if agg.ID != NoID {
		t.Errorf("expected aggregate without identity, got %d", agg.ID)
	}
	if a.Location != (Point{0, 0}) || b.Mass != 3 {
		t.Error("Add modified its inputs")
	}
}

func TestBody_AddForce(t *testing.T) {
	p := Params{G: 2, Softening: 1}
	a := &Body{ID: 1, Location: Point{0, 0}, Mass: 3}
	b := &Body{ID: 2, Location: Point{3, 4}, Mass: 5}

	a.AddForce(b, p)

	// F = 2*3*5 / (25 + 1)
	f := 30.0 / 26.0
	if math.Abs(a.Force.X-f*3/5) > 1e-12 || math.Abs(a.Force.Y-f*4/5) > 1e-12 {
		t.Errorf("expected force (%v, %v), got %v", f*3/5, f*4/5, a.Force)
	}

	a.AddForce(b, p)
	if math.Abs(a.Force.X-2*f*3/5) > 1e-12 {
		t.Errorf("expected force to accumulate, got %v", a.Force)
	}
}

func TestBody_AddForceCoincident(t *testing.T) {
	p := Params{G: 1, Softening: 0}
	a := &Body{ID: 1, Location: Point{2, 2}, Mass: 1}
	b := &Body{ID: 2, Location: Point{2, 2}, Mass: 1}

	a.AddForce(b, p)
	if a.Force != (Vector{}) {
		t.Errorf("expected zero force from coincident body, got %v", a.Force)
	}
}

func TestBody_ResetForce(t *testing.T) {
	b := &Body{Force: Vector{3, -4}}
	b.ResetForce()
	b.ResetForce()
	if b.Force != (Vector{}) {
		t.Errorf("expected zero force, got %v", b.Force)
	}
}

func TestBody_Update(t *testing.T) {
	b := &Body{Location: Point{1, 1}, Mass: 2, Velocity: Vector{1, 0}, Force: Vector{4, 2}}
	b.Update(0.5)

	// v = (1,0) + (2,1)*0.5 = (2, 0.5); x = (1,1) + v*0.5
	if b.Velocity != (Vector{2, 0.5}) {
		t.Errorf("expected velocity (2, 0.5), got %v", b.Velocity)
	}
	if b.Location != (Point{2, 1.25}) {
		t.Errorf("expected location (2, 1.25), got %v", b.Location)
	}
}

func TestBody_UpdateDefaultDt(t *testing.T) {
	b := &Body{Mass: 1, Velocity: Vector{1, 1}}
	b.Update(0)
	if b.Location != (Point{1, 1}) {
		t.Errorf("expected unit step, got %v", b.Location)
	}
}

func TestBody_EqualsAndSame(t *testing.T) {
	p := DefaultParams()
	a := NewBody(Point{1, 2}, 5, p)
	b := NewBody(Point{1, 2}, 5, p)

	if !a.Equals(b) {
		t.Error("expected structural equality")
	}
	if a.Same(b) {
		t.Error("distinct bodies reported as the same")
	}
	if !a.Same(a) {
		t.Error("body not the same as itself")
	}

	agg := a.Add(b)
	if agg.Same(&agg) {
		t.Error("aggregate bodies have no identity")
	}
}

func TestBody_Radius(t *testing.T) {
	b := &Body{Mass: 4 * math.Pi}
	if got := b.Radius(1); math.Abs(got-2) > 1e-12 {
		t.Errorf("expected radius 2, got %v", got)
	}
}

func TestSet(t *testing.T) {
	p := DefaultParams()
	s := NewSet(p)

	a := s.Add(Point{0, 0}, 1)
	b := s.Add(Point{1, 0}, 0)
	c := s.Add(Point{2, 0}, 2)

	if s.Len() != 3 {
		t.Fatalf("expected 3 bodies, got %d", s.Len())
	}
	if b.Mass != p.DefaultMass {
		t.Errorf("expected default mass, got %v", b.Mass)
	}
	if s.TotalMass() != 3+p.DefaultMass {
		t.Errorf("unexpected total mass %v", s.TotalMass())
	}

	if !s.Remove(b.ID) || s.Remove(b.ID) {
		t.Error("remove should succeed once")
	}
	got := s.Bodies()
	if len(got) != 2 || got[0] != a || got[1] != c {
		t.Errorf("expected order [a c], got %v", got)
	}

	clone := s.Clone()
	clone.Bodies()[0].Location.X = 99
	if a.Location.X == 99 {
		t.Error("Clone did not copy bodies")
	}
	if clone.Bodies()[0].ID != a.ID {
		t.Error("Clone should keep identities")
	}

	s.Clear()
	if s.Len() != 0 {
		t.Errorf("expected empty set, got %d", s.Len())
	}
}

func TestParams_Validate(t *testing.T) {
	if err := DefaultParams().Validate(); err != nil {
		t.Fatalf("default params invalid: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"negative theta", func(p *Params) { p.Theta = -1 }},
		{"negative softening", func(p *Params) { p.Softening = -1 }},
		{"zero density", func(p *Params) { p.Density = 0 }},
		{"zero default mass", func(p *Params) { p.DefaultMass = 0 }},
		{"zero depth", func(p *Params) { p.MaxDepth = 0 }},
		{"zero extent", func(p *Params) { p.MinExtent = 0 }},
		{"NaN G", func(p *Params) { p.G = math.NaN() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			if err := p.Validate(); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
