package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/barneshut/internal/barneshut"
)

// FrameOptions controls FrameToSVG.
type FrameOptions struct {
	Width, Height int
	// Tree draws the quadrant outline of every node.
	Tree       bool
	BodyColor  string
	TreeColor  string
	Background string
	// MinRadius keeps light bodies visible, in pixels.
	MinRadius float64
}

func DefaultFrameOptions() FrameOptions {
	return FrameOptions{
		Width:      800,
		Height:     800,
		Tree:       true,
		BodyColor:  "#ffffff",
		TreeColor:  "#3a6ea5",
		Background: "#0a0a0a",
		MinRadius:  0.75,
	}
}

// FrameToSVG renders bodies as discs sized by mass and density, optionally
// over the outlines of tree. A nil tree draws bodies only; the frame is then
// fitted to the bodies' bounding quadrant.
func FrameToSVG(bodies []*barneshut.Body, tree *barneshut.Quadtree, p barneshut.Params, opts FrameOptions) string {
	var view barneshut.Quadrant
	switch {
	case tree != nil:
		view = tree.Root().Quadrant()
	default:
		q, ok := barneshut.Bounds(bodies, p)
		if !ok {
			q = barneshut.Quadrant{Width: 1, Height: 1}
		}
		view = q
	}

	w, h := float64(opts.Width), float64(opts.Height)
	scale := math.Min(w/view.Width, h/view.Height) * 0.95
	min := view.Min()
	// centre the quadrant in the frame
	offX := (w - view.Width*scale) / 2
	offY := (h - view.Height*scale) / 2
	px := func(pt barneshut.Point) (float64, float64) {
		return offX + (pt.X-min.X)*scale, h - offY - (pt.Y-min.Y)*scale
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, opts.Width, opts.Height, opts.Width, opts.Height, opts.Background))

	if opts.Tree && tree != nil {
		sb.WriteString(fmt.Sprintf(`<g fill="none" stroke="%s" stroke-width="0.5">`+"\n", opts.TreeColor))
		tree.Walk(func(n *barneshut.Node) bool {
			q := n.Quadrant()
			x, y := px(barneshut.Point{X: q.Min().X, Y: q.Max().Y})
			sb.WriteString(fmt.Sprintf(`<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f"/>`+"\n",
				x, y, q.Width*scale, q.Height*scale))
			return true
		})
		sb.WriteString("</g>\n")
	}

	sb.WriteString(fmt.Sprintf(`<g fill="%s">`+"\n", opts.BodyColor))
	for _, b := range bodies {
		if !b.Location.IsFinite() {
			continue
		}
		x, y := px(b.Location)
		r := math.Max(b.Radius(p.Density)*scale, opts.MinRadius)
		sb.WriteString(fmt.Sprintf(`<circle cx="%.2f" cy="%.2f" r="%.2f"/>`+"\n", x, y, r))
	}
	sb.WriteString("</g>\n</svg>\n")
	return sb.String()
}

// SeriesToSVG plots values against their index as a polyline, for energy
// and timing histories.
func SeriesToSVG(values []float64, width, height int, strokeColor string) string {
	if len(values) < 2 {
		return ""
	}

	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		minY = math.Min(minY, v)
		maxY = math.Max(maxY, v)
	}
	if math.IsInf(minY, 1) {
		return ""
	}

	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	rangeY *= 1.2
	stepX := float64(width) / float64(len(values)-1)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="`,
		width, height, width, height, strokeColor))

	pen := "M"
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			pen = "M"
			continue
		}
		x := float64(i) * stepX
		y := float64(height) - (v-minY)/rangeY*float64(height)
		sb.WriteString(fmt.Sprintf("%s%.1f,%.1f ", pen, x, y))
		pen = "L"
	}

	sb.WriteString(`"/>
</svg>
`)
	return sb.String()
}
