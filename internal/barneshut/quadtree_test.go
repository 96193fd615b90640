package barneshut_test

import (
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/barneshut/internal/barneshut"
	"github.com/san-kum/barneshut/internal/compute"
)

func unitParams() barneshut.Params {
	p := barneshut.DefaultParams()
	p.G = 1
	p.Softening = 0.01
	return p
}

func randomBodies(n int, seed int64, p barneshut.Params) []*barneshut.Body {
	rng := rand.New(rand.NewSource(seed))
	bodies := make([]*barneshut.Body, n)
	for i := range bodies {
		loc := barneshut.Point{X: rng.Float64()*200 - 100, Y: rng.Float64()*200 - 100}
		bodies[i] = barneshut.NewBody(loc, 1+rng.Float64()*9, p)
	}
	return bodies
}

func buildTree(bodies []*barneshut.Body, p barneshut.Params) *barneshut.Quadtree {
	tree := barneshut.Build(bodies, p)
	Expect(tree).NotTo(BeNil())
	return tree
}

func treeForce(tree *barneshut.Quadtree, b *barneshut.Body) barneshut.Vector {
	b.ResetForce()
	tree.UpdateForce(b)
	return b.Force
}

var _ = Describe("Quadtree", func() {
	var p barneshut.Params

	BeforeEach(func() {
		p = unitParams()
	})

	Describe("Build", func() {
		It("returns nil for no bodies", func() {
			Expect(barneshut.Build(nil, p)).To(BeNil())
		})

		It("covers every body", func() {
			bodies := randomBodies(50, 3, p)
			tree := barneshut.Build(bodies, p)
			Expect(tree.Len()).To(Equal(50))
			for _, b := range bodies {
				Expect(tree.Root().Quadrant().Contains(b.Location)).To(BeTrue())
			}
		})
	})

	Describe("insertion", func() {
		It("keeps a single body as an external node", func() {
			b := barneshut.NewBody(barneshut.Point{X: 1, Y: 1}, 5, p)
			tree := barneshut.New(barneshut.Quadrant{Width: 4, Height: 4}, p)
			tree.Insert(b)

			root := tree.Root()
			Expect(root.IsExternal()).To(BeTrue())
			com, ok := root.CenterOfMass()
			Expect(ok).To(BeTrue())
			Expect(com.ID).To(Equal(b.ID))
			Expect(root.Bodies()).To(ConsistOf(b))
		})

		It("promotes a leaf when a second body arrives", func() {
			a := barneshut.NewBody(barneshut.Point{X: -1, Y: 1}, 2, p)
			b := barneshut.NewBody(barneshut.Point{X: 1, Y: -1}, 2, p)
			tree := barneshut.New(barneshut.Quadrant{Width: 4, Height: 4}, p)
			tree.Insert(a)
			tree.Insert(b)

			root := tree.Root()
			Expect(root.IsExternal()).To(BeFalse())
			Expect(root.Child(barneshut.TopLeft).Bodies()).To(ConsistOf(a))
			Expect(root.Child(barneshut.BottomRight).Bodies()).To(ConsistOf(b))
			Expect(root.Child(barneshut.TopRight)).To(BeNil())
			Expect(root.Child(barneshut.BottomLeft)).To(BeNil())

			com, _ := root.CenterOfMass()
			Expect(com.ID).To(Equal(barneshut.NoID))
			Expect(com.Mass).To(Equal(4.0))
			Expect(com.Location.X).To(BeNumerically("~", 0, 1e-12))
			Expect(com.Location.Y).To(BeNumerically("~", 0, 1e-12))
		})

		It("assigns a body on the centre to the top-left child", func() {
			a := barneshut.NewBody(barneshut.Point{X: 1, Y: 1}, 1, p)
			b := barneshut.NewBody(barneshut.Point{X: 0, Y: 0}, 1, p)
			tree := barneshut.New(barneshut.Quadrant{Width: 4, Height: 4}, p)
			tree.Insert(a)
			tree.Insert(b)

			Expect(tree.Root().Child(barneshut.TopLeft).Bodies()).To(ConsistOf(b))
		})

		It("conserves mass and centroid independent of insertion order", func() {
			bodies := randomBodies(200, 7, p)
			total, sx, sy := 0.0, 0.0, 0.0
			for _, b := range bodies {
				total += b.Mass
				sx += b.Location.X * b.Mass
				sy += b.Location.Y * b.Mass
			}

			forward := buildTree(bodies, p)
			reversed := make([]*barneshut.Body, len(bodies))
			for i, b := range bodies {
				reversed[len(bodies)-1-i] = b
			}
			backward := buildTree(reversed, p)

			for _, tree := range []*barneshut.Quadtree{forward, backward} {
				com, ok := tree.Root().CenterOfMass()
				Expect(ok).To(BeTrue())
				Expect(com.Mass).To(BeNumerically("~", total, 1e-9))
				Expect(com.Location.X).To(BeNumerically("~", sx/total, 1e-9))
				Expect(com.Location.Y).To(BeNumerically("~", sy/total, 1e-9))
				Expect(tree.Len()).To(Equal(200))
			}
		})

		It("stores every inserted body in exactly one leaf", func() {
			bodies := randomBodies(150, 11, p)
			tree := buildTree(bodies, p)

			seen := map[uint64]int{}
			tree.Walk(func(n *barneshut.Node) bool {
				for _, b := range n.Bodies() {
					seen[b.ID]++
					Expect(n.Quadrant().Contains(b.Location)).To(BeTrue())
				}
				return true
			})
			Expect(seen).To(HaveLen(150))
			for _, count := range seen {
				Expect(count).To(Equal(1))
			}
		})

		It("buckets coincident bodies instead of recursing forever", func() {
			loc := barneshut.Point{X: 3, Y: 3}
			a := barneshut.NewBody(loc, 1, p)
			b := barneshut.NewBody(loc, 1, p)
			c := barneshut.NewBody(barneshut.Point{X: -3, Y: -3}, 1, p)
			tree := buildTree([]*barneshut.Body{a, b, c}, p)

			stats := tree.Stats()
			Expect(stats.Buckets).To(Equal(1))
			Expect(stats.MaxDepth).To(BeNumerically("<=", p.MaxDepth))

			com, _ := tree.Root().CenterOfMass()
			Expect(com.Mass).To(Equal(3.0))
		})
	})

	Describe("force approximation", func() {
		It("gives an isolated body no self-force", func() {
			b := barneshut.NewBody(barneshut.Point{X: 5, Y: 5}, 10, p)
			tree := buildTree([]*barneshut.Body{b}, p)

			Expect(treeForce(tree, b)).To(Equal(barneshut.Vector{}))
		})

		It("is symmetric between two bodies in exact mode", func() {
			p.Theta = 0
			a := barneshut.NewBody(barneshut.Point{X: -2, Y: 1}, 3, p)
			b := barneshut.NewBody(barneshut.Point{X: 4, Y: -5}, 7, p)
			tree := buildTree([]*barneshut.Body{a, b}, p)

			fa := treeForce(tree, a)
			fb := treeForce(tree, b)
			Expect(fa.Norm()).To(BeNumerically(">", 0))
			Expect(fa.X).To(BeNumerically("~", -fb.X, 1e-12))
			Expect(fa.Y).To(BeNumerically("~", -fb.Y, 1e-12))
		})

		It("matches direct summation when theta is zero", func() {
			p.Theta = 0
			bodies := randomBodies(120, 3, p)
			tree := buildTree(bodies, p)
			direct := compute.DirectForces(bodies, p, 1)

			for i, b := range bodies {
				f := treeForce(tree, b)
				Expect(f.X).To(BeNumerically("~", direct[i].X, 1e-9*direct[i].Norm()+1e-15))
				Expect(f.Y).To(BeNumerically("~", direct[i].Y, 1e-9*direct[i].Norm()+1e-15))
			}
		})

		It("converges to direct summation as theta shrinks", func() {
			bodies := randomBodies(300, 19, p)
			direct := compute.DirectForces(bodies, p, 1)

			meanErr := func(theta float64) float64 {
				q := p
				q.Theta = theta
				tree := buildTree(bodies, q)
				sum := 0.0
				for i, b := range bodies {
					f := treeForce(tree, b)
					sum += f.Sub(direct[i]).Norm() / direct[i].Norm()
				}
				return sum / float64(len(bodies))
			}

			coarse, fine, exact := meanErr(1.0), meanErr(0.3), meanErr(0)
			Expect(fine).To(BeNumerically("<", coarse))
			Expect(exact).To(BeNumerically("<", 1e-9))
			Expect(fine).To(BeNumerically("<", 0.05))
		})

		It("lets a body coincident with another receive zero force from it", func() {
			p.Theta = 0
			loc := barneshut.Point{X: 1, Y: 1}
			a := barneshut.NewBody(loc, 1, p)
			b := barneshut.NewBody(loc, 1, p)
			tree := buildTree([]*barneshut.Body{a, b}, p)

			f := treeForce(tree, a)
			Expect(math.IsNaN(f.X) || math.IsNaN(f.Y)).To(BeFalse())
			Expect(f).To(Equal(barneshut.Vector{}))
		})
	})
})
