package render

import (
	"time"

	"github.com/cxd309/ride-engine/internal/engine"
)

// Pacer slows a run down to wall-clock time by sleeping once per frame.
// Register it last so the other renderers' work is not delayed.
type Pacer struct {
	Interval time.Duration
	sleep    func(time.Duration)
}

// NewPacer returns a Pacer sleeping dt seconds per frame.
func NewPacer(dt float64) *Pacer {
	return &Pacer{Interval: time.Duration(dt * float64(time.Second)), sleep: time.Sleep}
}

// Render sleeps for Interval so frames arrive at simulated-time pace.
func (p *Pacer) Render(engine.Frame) error {
	if p.Interval > 0 {
		p.sleep(p.Interval)
	}
	return nil
}
