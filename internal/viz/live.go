package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/barneshut/internal/barneshut"
	"github.com/san-kum/barneshut/internal/layout"
	"github.com/san-kum/barneshut/internal/metrics"
	"github.com/san-kum/barneshut/internal/sim"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 300
	frameInterval   = time.Second / 30
	// energy is O(n^2); sample it less often than every frame
	energyEvery = 5
	ringCount   = 500
	zoomFactor  = 1.25
)

type TickMsg time.Time

// Model is the bubbletea model of the live view. It owns the body set and
// drives the simulator one step per tick while running.
type Model struct {
	sim     *sim.Simulator
	set     *barneshut.Set
	initial *barneshut.Set
	name    string

	dt, initialDt float64
	t             float64
	steps         int
	lastStep      time.Duration
	stats         barneshut.Stats

	canvas   *Canvas
	view     Viewport
	running  bool
	showTree bool
	showHelp bool

	energyHistory []float64
}

// NewModel builds a live view over set. The set is advanced in place and a
// copy is kept for reset.
func NewModel(s *sim.Simulator, set *barneshut.Set, dt float64, name string) Model {
	m := Model{
		sim:           s,
		set:           set,
		initial:       set.Clone(),
		name:          name,
		dt:            dt,
		initialDt:     dt,
		canvas:        NewCanvas(width, height),
		running:       true,
		energyHistory: make([]float64, 0, historyCapacity),
	}
	m.fit()
	return m
}

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "n":
			if !m.running {
				m.step()
			}
		case "t":
			m.showTree = !m.showTree
		case "[":
			m.dt /= 10
		case "]":
			m.dt *= 10
		case "c":
			m.addPattern(layout.Circle)
		case "e":
			m.addPattern(layout.Ellipse)
		case "x":
			m.set.Clear()
			m.stats = barneshut.Stats{}
			m.energyHistory = m.energyHistory[:0]
		case "+", "=":
			m.view = m.view.Zoom(zoomFactor)
		case "-", "_":
			m.view = m.view.Zoom(1 / zoomFactor)
		case "f":
			m.fit()
		case "r":
			m.reset()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, tick()
	}
	return m, nil
}

// step advances the simulation by one dt.
func (m *Model) step() {
	start := time.Now()
	m.sim.Step(m.set.Bodies(), m.dt)
	m.lastStep = time.Since(start)
	m.t += m.dt
	m.steps++

	if tree := m.sim.Tree(); tree != nil {
		m.stats = tree.Stats()
	} else {
		m.stats = barneshut.Stats{}
	}

	if m.steps%energyEvery == 0 {
		m.energyHistory = append(m.energyHistory, metrics.TotalEnergy(m.set.Bodies(), m.set.Params()))
		if len(m.energyHistory) > historyCapacity {
			m.energyHistory = m.energyHistory[1:]
		}
	}
}

// addPattern drops a pattern sized to the visible area at the view centre.
func (m *Model) addPattern(gen layout.Generator) {
	vis := m.view.Visible()
	tmp := barneshut.NewSet(m.set.Params())
	gen(tmp, layout.Options{Count: ringCount, Width: vis.Width * 0.8, Height: vis.Height * 0.8, Mass: 1})

	dx := vis.Center.X - vis.Width*0.4
	dy := vis.Center.Y - vis.Height*0.4
	for _, b := range tmp.Bodies() {
		b.Location.X += dx
		b.Location.Y += dy
	}
	m.set.Append(tmp.Bodies()...)
}

// reset restores the initial bodies and dt.
func (m *Model) reset() {
	m.set.Clear()
	m.set.Append(m.initial.Clone().Bodies()...)
	// restored bodies keep their ids but not their forces
	m.sim.Integrator().Reset()
	m.dt = m.initialDt
	m.t = 0
	m.steps = 0
	m.stats = barneshut.Stats{}
	m.energyHistory = m.energyHistory[:0]
	m.fit()
}

// fit centres the view on the current bodies.
func (m *Model) fit() {
	w, h := m.canvas.Dots()
	q, ok := barneshut.Bounds(m.set.Bodies(), m.set.Params())
	if !ok {
		q = barneshut.Quadrant{Width: 1, Height: 1}
	}
	m.view = NewViewport(q, w, h)
}

// draw renders bodies and, when enabled, the quadrant outlines.
func (m *Model) draw() {
	m.canvas.Clear()

	if tree := m.sim.Tree(); m.showTree && tree != nil {
		tree.Walk(func(n *barneshut.Node) bool {
			q := n.Quadrant()
			x0, y0 := m.view.Project(q.Min())
			x1, y1 := m.view.Project(q.Max())
			m.canvas.DrawRect(x0, y0, x1, y1)
			return true
		})
	}

	density := m.set.Params().Density
	for _, b := range m.set.Bodies() {
		x, y := m.view.Project(b.Location)
		m.canvas.FillDisc(x, y, b.Radius(density)*m.view.Scale)
	}
}

// Status returns the header status word.
func (m Model) Status() string {
	if m.running {
		return StatusRunning.Render("RUNNING")
	}
	return StatusPaused.Render("PAUSED")
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.name)) + "\n")
	s.WriteString(m.Status() + "\n\n")

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	p := m.set.Params()
	rows := [][2]string{
		{"Bodies", fmt.Sprintf("%d", m.set.Len())},
		{"Step", fmt.Sprintf("%d", m.steps)},
		{"Time", fmt.Sprintf("%.4g", m.t)},
		{"dt", fmt.Sprintf("%.3g", m.dt)},
		{"Theta", fmt.Sprintf("%.2f", m.sim.Params().Theta)},
		{"Nodes", fmt.Sprintf("%d", m.stats.Nodes)},
		{"Depth", fmt.Sprintf("%d", m.stats.MaxDepth)},
		{"Step time", m.lastStep.Round(time.Microsecond).String()},
		{"Zoom", fmt.Sprintf("%.3g", m.view.Scale)},
		{"Mass", fmt.Sprintf("%.4g", m.set.TotalMass())},
		{"Softening", fmt.Sprintf("%.3g", p.Softening)},
	}
	if n := len(m.energyHistory); n > 0 {
		rows = append(rows, [2]string{"Energy", fmt.Sprintf("%.4g", m.energyHistory[n-1])})
	}
	for _, r := range rows {
		s.WriteString(labelStyle.Render(r[0]) + valueStyle.Render(r[1]) + "\n")
	}

	tree := "off"
	if m.showTree {
		tree = "on"
	}
	s.WriteString(labelStyle.Render("Tree") + valueStyle.Render(tree) + "\n")
	s.WriteString(helpStyle.Render("\n─────────────────────\nSP:Pause N:Step T:Tree Q:Quit\nC:Circle E:Ellipse X:Clear\n[ ]:dt +/-:Zoom F:Fit R:Reset"))

	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return helpOverlay + "\n\n" + mainView
	}
	return mainView
}

const helpOverlay = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  N        - Single step when paused  ║
║  T        - Toggle quadtree overlay  ║
║  [ / ]    - Divide/multiply dt by 10 ║
║  C        - Add a circle of bodies   ║
║  E        - Add an ellipse of bodies ║
║  X        - Remove all bodies        ║
║  + / -    - Zoom in/out              ║
║  F        - Fit view to bodies       ║
║  R        - Reset to initial bodies  ║
║  Q        - Quit                     ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`
