package barneshut

// Set is the ordered collection of bodies a simulation advances.
type Set struct {
	params Params
	bodies []*Body
}

func NewSet(p Params) *Set {
	return &Set{params: p, bodies: make([]*Body, 0)}
}

// Add creates a body at loc and appends it. A non-positive mass takes the
// default mass.
func (s *Set) Add(loc Point, mass float64) *Body {
	b := NewBody(loc, mass, s.params)
	s.bodies = append(s.bodies, b)
	return b
}

// Append adds existing bodies, keeping their identities.
func (s *Set) Append(bodies ...*Body) {
	s.bodies = append(s.bodies, bodies...)
}

// Remove deletes the body with the given id, preserving order.
func (s *Set) Remove(id uint64) bool {
	for i, b := range s.bodies {
		if b.ID == id {
			s.bodies = append(s.bodies[:i], s.bodies[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Set) Clear()         { s.bodies = s.bodies[:0] }
func (s *Set) Len() int       { return len(s.bodies) }
func (s *Set) Params() Params { return s.params }

// Bodies returns the backing slice. Callers may mutate the bodies but not the
// slice itself.
func (s *Set) Bodies() []*Body { return s.bodies }

// Clone deep-copies the set. Copies keep the identities of their originals.
func (s *Set) Clone() *Set {
	c := &Set{params: s.params, bodies: make([]*Body, len(s.bodies))}
	for i, b := range s.bodies {
		cp := *b
		c.bodies[i] = &cp
	}
	return c
}

// TotalMass sums the mass of every body.
func (s *Set) TotalMass() float64 {
	m := 0.0
	for _, b := range s.bodies {
		m += b.Mass
	}
	return m
}
