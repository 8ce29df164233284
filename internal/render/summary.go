package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/cxd309/ride-engine/internal/engine"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
)

// Summary collects speed and acceleration magnitudes for a terminal report.
type Summary struct {
	Title string
	// Width and Height size the speed chart, in characters.
	Width, Height int

	speeds []float64
	accels []float64
	last   engine.Frame
}

// NewSummary returns a Summary with a 60x10 chart.
func NewSummary(title string) *Summary {
	return &Summary{Title: title, Width: 60, Height: 10}
}

// Render records the speed and acceleration magnitudes of f.
func (s *Summary) Render(f engine.Frame) error {
	s.speeds = append(s.speeds, f.Snapshot.Velocity.Norm())
	s.accels = append(s.accels, f.Snapshot.Acceleration.Norm())
	s.last = f
	return nil
}

// Steps returns the number of frames seen.
func (s *Summary) Steps() int { return len(s.speeds) }

// WriteTo writes the report to w.
func (s *Summary) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	b.WriteString(headerStyle.Render(strings.ToUpper(s.Title)) + "\n\n")

	if len(s.speeds) > 1 {
		chart := asciigraph.Plot(s.speeds,
			asciigraph.Height(s.Height),
			asciigraph.Width(s.Width),
			asciigraph.Caption("speed"))
		b.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Steps", fmt.Sprintf("%d", len(s.speeds)))
	if len(s.speeds) > 0 {
		snap := s.last.Snapshot
		row("Time", fmt.Sprintf("%.2f", s.last.Time))
		row("Tip", fmt.Sprintf("(%.3f, %.3f)", snap.Tip.X, snap.Tip.Y))
		row("Speed", fmt.Sprintf("%.3f (max %.3f)", s.speeds[len(s.speeds)-1], maxOf(s.speeds)))
		// The first acceleration sample is v1/dt and would swamp the max.
		row("Accel", fmt.Sprintf("%.3f (max %.3f)", s.accels[len(s.accels)-1], maxOf(s.accels[1:])))
	}

	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

func maxOf(xs []float64) float64 {
	m := 0.0
	for _, x := range xs {
		m = max(m, x)
	}
	return m
}
