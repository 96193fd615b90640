package barneshut

import "math"

const boundsPad = 1e-9

// Position names a child slot of a quadrant.
type Position uint8

const (
	TopLeft Position = iota
	TopRight
	BottomLeft
	BottomRight
)

// Positions is the fixed priority order in which children are tested. A
// point on a shared edge goes to the first child that contains it.
var Positions = [4]Position{TopLeft, TopRight, BottomLeft, BottomRight}

func (p Position) String() string {
	switch p {
	case TopLeft:
		return "top-left"
	case TopRight:
		return "top-right"
	case BottomLeft:
		return "bottom-left"
	case BottomRight:
		return "bottom-right"
	}
	return "unknown"
}

// Quadrant is an axis-aligned rectangle. Y grows upward: the top children
// sit above the centre.
type Quadrant struct {
	Center        Point
	Width, Height float64
}

// Contains reports whether p lies inside q, edges included.
func (q Quadrant) Contains(p Point) bool {
	hw, hh := q.Width/2, q.Height/2
	return q.Center.X-hw <= p.X && p.X <= q.Center.X+hw &&
		q.Center.Y-hh <= p.Y && p.Y <= q.Center.Y+hh
}

func (q Quadrant) TopLeft() Quadrant     { return q.Child(TopLeft) }
func (q Quadrant) TopRight() Quadrant    { return q.Child(TopRight) }
func (q Quadrant) BottomLeft() Quadrant  { return q.Child(BottomLeft) }
func (q Quadrant) BottomRight() Quadrant { return q.Child(BottomRight) }

// Child returns the quarter of q at pos.
func (q Quadrant) Child(pos Position) Quadrant {
	w, h := q.Width/2, q.Height/2
	c := q.Center
	switch pos {
	case TopLeft:
		c = Point{c.X - w/2, c.Y + h/2}
	case TopRight:
		c = Point{c.X + w/2, c.Y + h/2}
	case BottomLeft:
		c = Point{c.X - w/2, c.Y - h/2}
	default:
		c = Point{c.X + w/2, c.Y - h/2}
	}
	return Quadrant{Center: c, Width: w, Height: h}
}

// Locate picks the child that receives p: the first one in priority order
// containing it, or the child on p's side of the centre when none does.
func (q Quadrant) Locate(p Point) Position {
	for _, pos := range Positions {
		if q.Child(pos).Contains(p) {
			return pos
		}
	}
	right, top := p.X > q.Center.X, p.Y > q.Center.Y
	switch {
	case top && !right:
		return TopLeft
	case top:
		return TopRight
	case !right:
		return BottomLeft
	}
	return BottomRight
}

// Size returns the larger side.
func (q Quadrant) Size() float64 {
	return math.Max(q.Width, q.Height)
}

// Min and Max return the lower-left and upper-right corners.
func (q Quadrant) Min() Point { return Point{q.Center.X - q.Width/2, q.Center.Y - q.Height/2} }
func (q Quadrant) Max() Point { return Point{q.Center.X + q.Width/2, q.Center.Y + q.Height/2} }

// Bounds returns the quadrant enclosing every body. Each side is at least
// p.MinExtent, both sides match the larger one when p.SquareBounds is set,
// and sides are padded by a relative boundsPad so that the extreme bodies stay
// inside after rounding. It reports false for an empty slice.
func Bounds(bodies []*Body, p Params) (Quadrant, bool) {
	if len(bodies) == 0 {
		return Quadrant{}, false
	}

	minX, minY := bodies[0].Location.X, bodies[0].Location.Y
	maxX, maxY := minX, minY
	for _, b := range bodies[1:] {
		minX = math.Min(minX, b.Location.X)
		maxX = math.Max(maxX, b.Location.X)
		minY = math.Min(minY, b.Location.Y)
		maxY = math.Max(maxY, b.Location.Y)
	}

	w := math.Max(maxX-minX, p.MinExtent)
	h := math.Max(maxY-minY, p.MinExtent)
	if p.SquareBounds {
		w = math.Max(w, h)
		h = w
	}
	w += w * boundsPad
	h += h * boundsPad

	return Quadrant{
		Center: Point{minX + (maxX-minX)/2, minY + (maxY-minY)/2},
		Width:  w,
		Height: h,
	}, true
}
