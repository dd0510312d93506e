// Package viz renders a running scene in the terminal.
package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"collide3d/internal/config"
	"collide3d/internal/physics"
	"collide3d/internal/scene"
)

const (
	width           = 60
	height          = 20
	historyCapacity = 120
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(45)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	hitStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Model steps a scene on every tick and draws it top-down (X right, Z down).
type Model struct {
	scene     *scene.Scene
	canvas    *Canvas
	running   bool
	maxFrames int
	extent    float32

	last          scene.FrameStats
	triggers      int
	stays         int
	exits         int
	pairHistory   []float64
	detectHistory []float64
	rays          []scene.RayResult
}

// NewModel wraps s. maxFrames <= 0 runs until quit.
func NewModel(s *scene.Scene, maxFrames int) Model {
	extent := s.Config().Bounds
	if extent <= 0 {
		extent = config.DefaultBounds
	}
	return Model{
		scene:         s,
		canvas:        NewCanvas(width, height),
		running:       true,
		maxFrames:     maxFrames,
		extent:        extent,
		pairHistory:   make([]float64, 0, historyCapacity),
		detectHistory: make([]float64, 0, historyCapacity),
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input events and steps the scene.
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
		}
	case TickMsg:
		if m.running && !m.finished() {
			m.step()
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) finished() bool {
	return m.maxFrames > 0 && m.scene.Frame() >= m.maxFrames
}

func (m *Model) step() {
	m.last = m.scene.Step()
	m.triggers += m.last.Triggers
	m.stays += m.last.Stays
	m.exits += m.last.Exits
	m.rays = m.scene.CastRays()

	m.pairHistory = appendCapped(m.pairHistory, float64(m.last.Pairs))
	m.detectHistory = appendCapped(m.detectHistory, float64(m.last.Detect.Microseconds()))
}

func appendCapped(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[1:]
	}
	return h
}

// project maps world X/Z onto canvas sub-pixels.
func (m *Model) project(x, z float32) (int, int) {
	cw, ch := float32(m.canvas.Width*2), float32(m.canvas.Height*4)
	px := (x/m.extent + 1) / 2 * (cw - 1)
	pz := (z/m.extent + 1) / 2 * (ch - 1)
	return int(px), int(pz)
}

func (m *Model) scale(r float32) int {
	return int(r / m.extent / 2 * float32(m.canvas.Width*2))
}

func (m *Model) draw() {
	m.canvas.Clear()
	for _, a := range m.scene.Actors() {
		if !a.Body.Enabled() {
			continue
		}
		p := a.Body.Position()
		cx, cy := m.project(p.X, p.Z)
		switch v := a.Body.Volume().(type) {
		case physics.Sphere:
			m.canvas.Disc(cx, cy, m.scale(v.Radius))
		case physics.Box:
			x0, y0 := m.project(p.X-v.HalfSize.X, p.Z-v.HalfSize.Z)
			x1, y1 := m.project(p.X+v.HalfSize.X, p.Z+v.HalfSize.Z)
			m.canvas.Rect(x0, y0, x1, y1)
		default:
			m.canvas.Set(cx, cy)
		}
	}
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.String())

	var s strings.Builder
	name := m.scene.Config().Name
	if name == "" {
		name = "scene"
	}
	s.WriteString(headerStyle.Render(strings.ToUpper(name)) + "\n")
	status := "RUNNING"
	switch {
	case m.finished():
		status = "DONE"
	case !m.running:
		status = "PAUSED"
	}
	s.WriteString(status + "\n\n")

	if len(m.pairHistory) > 1 {
		chart := asciigraph.Plot(m.pairHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Pairs"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Frame", fmt.Sprintf("%d", m.scene.Frame()))
	row("Bodies", fmt.Sprintf("%d", m.last.Bodies))
	row("Pairs", fmt.Sprintf("%d", m.last.Pairs))
	row("Detect", m.last.Detect.Round(time.Microsecond).String())
	row("Trigger", fmt.Sprintf("%d", m.triggers))
	row("Stay", fmt.Sprintf("%d", m.stays))
	row("Exit", fmt.Sprintf("%d", m.exits))
	row("Workers", fmt.Sprintf("%d", m.scene.Manager().Workers()))

	if len(m.rays) > 0 {
		s.WriteString("\nRAYS\n")
		for _, r := range m.rays {
			if r.Hit.Hit() {
				s.WriteString(hitStyle.Render(fmt.Sprintf("  %-10s %s @ %.2f", r.Name, r.Target, r.Hit.Distance)) + "\n")
			} else {
				s.WriteString(labelStyle.Render(fmt.Sprintf("  %-10s miss", r.Name)) + "\n")
			}
		}
	}
	s.WriteString(helpStyle.Render("SP:Pause N:Step Q:Quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
}
