package barneshut

type nodeKind uint8

// node kinds
const (
	empty nodeKind = iota
	external
	internal
)

// Node is one cell of a Quadtree.
type Node struct {
	quadrant Quadrant
	depth    int
	kind     nodeKind

	// center aggregates everything below an internal node, or a bucket leaf.
	center   Body
	bodies   []*Body
	children [4]*Node
}

func (n *Node) Quadrant() Quadrant { return n.quadrant }
func (n *Node) Depth() int         { return n.depth }

// IsExternal reports whether n has no children.
func (n *Node) IsExternal() bool { return n.kind != internal }

// Child returns the child at pos, or nil when it was never created.
func (n *Node) Child(pos Position) *Node { return n.children[pos] }

// Bodies returns the real bodies held by an external node.
func (n *Node) Bodies() []*Body { return n.bodies }

// CenterOfMass returns the body a distant observer sees for n. It reports
// false for an empty node.
func (n *Node) CenterOfMass() (Body, bool) {
	switch {
	case n.kind == empty:
		return Body{}, false
	case n.kind == external && len(n.bodies) == 1:
		return *n.bodies[0], true
	}
	return n.center, true
}

// Quadtree is the spatial index rebuilt for every step.
type Quadtree struct {
	params Params
	root   *Node
	size   int
}

// New returns an empty tree covering q.
func New(q Quadrant, p Params) *Quadtree {
	return &Quadtree{params: p, root: &Node{quadrant: q}}
}

// Build inserts bodies into a tree over their bounding quadrant. It returns
// nil for an empty slice.
func Build(bodies []*Body, p Params) *Quadtree {
	q, ok := Bounds(bodies, p)
	if !ok {
		return nil
	}
	t := New(q, p)
	for _, b := range bodies {
		t.Insert(b)
	}
	return t
}

func (t *Quadtree) Root() *Node    { return t.root }
func (t *Quadtree) Len() int       { return t.size }
func (t *Quadtree) Params() Params { return t.params }

// Insert adds b below the root. The tree keeps a reference to b.
func (t *Quadtree) Insert(b *Body) {
	t.insert(t.root, b)
	t.size++
}

func (t *Quadtree) insert(n *Node, b *Body) {
	switch n.kind {
	case empty:
		n.kind = external
		n.bodies = []*Body{b}

	case external:
		if !t.canSplit(n) {
			n.bodies = append(n.bodies, b)
			n.center = aggregate(n.bodies)
			return
		}

		// promote: the resident moves down and n becomes internal
		resident := n.bodies[0]
		n.bodies = nil
		n.kind = internal
		n.center = *resident
		n.center.ID = NoID
		n.center.Velocity, n.center.Force = Vector{}, Vector{}
		t.insert(t.child(n, n.quadrant.Locate(resident.Location)), resident)

		n.center = n.center.Add(b)
		t.insert(t.child(n, n.quadrant.Locate(b.Location)), b)

	case internal:
		n.center = n.center.Add(b)
		t.insert(t.child(n, n.quadrant.Locate(b.Location)), b)
	}
}

func (t *Quadtree) canSplit(n *Node) bool {
	if n.depth >= t.params.MaxDepth {
		return false
	}
	return n.quadrant.Width/2 >= t.params.MinCell && n.quadrant.Height/2 >= t.params.MinCell
}

// child returns the child at pos, creating it on first use.
func (t *Quadtree) child(n *Node, pos Position) *Node {
	if n.children[pos] == nil {
		n.children[pos] = &Node{quadrant: n.quadrant.Child(pos), depth: n.depth + 1}
	}
	return n.children[pos]
}

func aggregate(bodies []*Body) Body {
	agg := *bodies[0]
	agg.ID = NoID
	for _, b := range bodies[1:] {
		agg = agg.Add(b)
	}
	return agg
}

// UpdateForce accumulates into b the approximate attraction of every body in
// the tree. Distant internal nodes, where width/distance < Theta, act as a
// single mass at their centre. Nearer ones are opened. An external node
// contributes each of its bodies except b itself.
func (t *Quadtree) UpdateForce(b *Body) {
	t.updateForce(t.root, b)
}

func (t *Quadtree) updateForce(n *Node, b *Body) {
	switch n.kind {
	case external:
		for _, o := range n.bodies {
			if !o.Same(b) {
				b.AddForce(o, t.params)
			}
		}

	case internal:
		if n.quadrant.Width/n.center.DistanceTo(b) < t.params.Theta {
			b.AddForce(&n.center, t.params)
			return
		}
		for _, pos := range Positions {
			if c := n.children[pos]; c != nil {
				t.updateForce(c, b)
			}
		}
	}
}

// Walk visits nodes depth-first in priority order. Returning false from fn
// skips the node's children.
func (t *Quadtree) Walk(fn func(*Node) bool) {
	walk(t.root, fn)
}

func walk(n *Node, fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, pos := range Positions {
		if c := n.children[pos]; c != nil {
			walk(c, fn)
		}
	}
}

// Stats summarizes the shape of a tree.
type Stats struct {
	Nodes    int
	Leaves   int
	Buckets  int
	MaxDepth int
}

func (t *Quadtree) Stats() Stats {
	var s Stats
	t.Walk(func(n *Node) bool {
		s.Nodes++
		if n.kind == external {
			s.Leaves++
			if len(n.bodies) > 1 {
				s.Buckets++
			}
		}
		if n.depth > s.MaxDepth {
			s.MaxDepth = n.depth
		}
		return true
	})
	return s
}
