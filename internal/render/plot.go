// Package render holds the presentation side of the ride simulation: frame
// images, CSV logs, terminal summaries and real-time pacing. Every type here
// implements engine.Renderer and only ever reads the frames it is given.
package render

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"github.com/golang/geo/r2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/cxd309/ride-engine/internal/engine"
	"github.com/cxd309/ride-engine/internal/geometry"
)

var (
	colorCircle       = color.RGBA{B: 255, A: 255}
	colorTrajectory   = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	colorVelocity     = color.RGBA{R: 255, A: 255}
	colorAcceleration = color.RGBA{G: 128, A: 255}
)

const (
	circleSegments = 64
	arrowHead      = 0.1 // head length in world units
)

// Plotter draws frames with gonum/plot. With Dir set it writes one PNG every
// Every steps; the last frame seen can always be saved with Save.
type Plotter struct {
	// Size is the side of the square view centred on the origin, in world
	// units. Zero fits the view to the drawn content.
	Size float64
	// Side is the image side length.
	Side vg.Length
	// Dir receives frame_NNNNNN.png files. Empty disables frame output.
	Dir string
	// Every is the step interval between frame files. Values below 1 mean 1.
	Every int

	last    engine.Frame
	hasLast bool
}

// NewPlotter returns a Plotter with a 10x10 view and 6 inch images.
func NewPlotter() *Plotter {
	return &Plotter{Size: 10, Side: 6 * vg.Inch, Every: 1}
}

// Render remembers f and writes it to Dir when due.
func (p *Plotter) Render(f engine.Frame) error {
	p.last, p.hasLast = f, true
	if p.Dir == "" {
		return nil
	}
	every := max(p.Every, 1)
	if f.Step%every != 0 {
		return nil
	}
	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return fmt.Errorf("creating frame dir: %w", err)
	}
	return p.save(f, filepath.Join(p.Dir, fmt.Sprintf("frame_%06d.png", f.Step)))
}

// Save writes the last rendered frame to path. The image format follows the
// file extension.
func (p *Plotter) Save(path string) error {
	if !p.hasLast {
		return fmt.Errorf("no frame rendered yet")
	}
	return p.save(p.last, path)
}

func (p *Plotter) save(f engine.Frame, path string) error {
	pl, err := p.Draw(f)
	if err != nil {
		return err
	}
	side := p.Side
	if side <= 0 {
		side = 6 * vg.Inch
	}
	if err := pl.Save(side, side, path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

// Draw builds the plot for f: the trajectory so far, the small arm's circle,
// the ride point, and the velocity (red) and acceleration (green) arrows.
func (p *Plotter) Draw(f engine.Frame) (*plot.Plot, error) {
	pl := plot.New()
	pl.Title.Text = fmt.Sprintf("t = %.2f", f.Time)
	pl.X.Label.Text = "x"
	pl.Y.Label.Text = "y"

	if len(f.Trajectory) > 1 {
		line, err := plotter.NewLine(toXYs(f.Trajectory))
		if err != nil {
			return nil, fmt.Errorf("trajectory line: %w", err)
		}
		line.LineStyle.Color = colorTrajectory
		line.LineStyle.Width = vg.Points(1)
		pl.Add(line)
	}

	radius := f.Arms.Small.Direction.Norm()
	circle, err := plotter.NewLine(circlePoints(f.Snapshot.Pivot, radius))
	if err != nil {
		return nil, fmt.Errorf("circle: %w", err)
	}
	circle.LineStyle.Color = colorCircle
	pl.Add(circle)

	for _, a := range []struct {
		arrow geometry.Arrow
		c     color.Color
	}{
		{geometry.Arrow{Position: f.Snapshot.Tip, Direction: f.Snapshot.Velocity}, colorVelocity},
		{geometry.Arrow{Position: f.Snapshot.Tip, Direction: f.Snapshot.Acceleration}, colorAcceleration},
	} {
		lines, err := arrowLines(a.arrow, a.c)
		if err != nil {
			return nil, err
		}
		for _, l := range lines {
			pl.Add(l)
		}
	}

	dot, err := plotter.NewScatter(toXYs([]geometry.Vector{f.Snapshot.Tip}))
	if err != nil {
		return nil, fmt.Errorf("tip dot: %w", err)
	}
	dot.GlyphStyle.Color = colorVelocity
	dot.GlyphStyle.Shape = draw.CircleGlyph{}
	dot.GlyphStyle.Radius = vg.Points(4)
	pl.Add(dot)

	view := p.view(f, radius)
	pl.X.Min, pl.X.Max = view.X.Lo, view.X.Hi
	pl.Y.Min, pl.Y.Max = view.Y.Lo, view.Y.Hi
	return pl, nil
}

// view returns the square region to show.
func (p *Plotter) view(f engine.Frame, radius float64) r2.Rect {
	if p.Size > 0 {
		return r2.RectFromCenterSize(r2.Point{}, r2.Point{X: p.Size, Y: p.Size})
	}
	pts := append(f.Trajectory[:len(f.Trajectory):len(f.Trajectory)],
		f.Snapshot.Tip,
		f.Snapshot.Tip.Add(f.Snapshot.Velocity),
		f.Snapshot.Tip.Add(f.Snapshot.Acceleration),
		f.Snapshot.Pivot.Add(geometry.Vector{X: radius, Y: radius}),
		f.Snapshot.Pivot.Sub(geometry.Vector{X: radius, Y: radius}),
	)
	b := Bounds(pts)
	size := b.Size()
	side := math.Max(math.Max(size.X, size.Y), 1) * 1.1
	return r2.RectFromCenterSize(b.Center(), r2.Point{X: side, Y: side})
}

// Bounds returns the smallest rectangle containing pts, or an empty rectangle.
func Bounds(pts []geometry.Vector) r2.Rect {
	r := r2.EmptyRect()
	for _, v := range pts {
		r = r.AddPoint(v.Point())
	}
	return r
}

func toXYs(pts []geometry.Vector) plotter.XYs {
	xys := make(plotter.XYs, len(pts))
	for i, v := range pts {
		xys[i].X, xys[i].Y = v.X, v.Y
	}
	return xys
}

func circlePoints(center geometry.Vector, radius float64) plotter.XYs {
	xys := make(plotter.XYs, circleSegments+1)
	for i := range xys {
		theta := 2 * math.Pi * float64(i) / circleSegments
		xys[i].X = center.X + radius*math.Cos(theta)
		xys[i].Y = center.Y + radius*math.Sin(theta)
	}
	return xys
}

// arrowLines returns the shaft and the two head strokes of a.
func arrowLines(a geometry.Arrow, c color.Color) ([]*plotter.Line, error) {
	tip := a.Endpoint()
	segs := []plotter.XYs{toXYs([]geometry.Vector{a.Position, tip})}

	if n := a.Direction.Norm(); n > 0 {
		back, _ := a.Direction.Div(n / arrowHead)
		left, right := back, back
		left.Rotate(math.Pi - math.Pi/6)
		right.Rotate(math.Pi + math.Pi/6)
		segs = append(segs,
			toXYs([]geometry.Vector{tip, tip.Add(left)}),
			toXYs([]geometry.Vector{tip, tip.Add(right)}),
		)
	}

	lines := make([]*plotter.Line, 0, len(segs))
	for _, s := range segs {
		l, err := plotter.NewLine(s)
		if err != nil {
			return nil, fmt.Errorf("arrow: %w", err)
		}
		l.LineStyle.Color = c
		l.LineStyle.Width = vg.Points(1.5)
		lines = append(lines, l)
	}
	return lines, nil
}
