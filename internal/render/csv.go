package render

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/cxd309/ride-engine/internal/engine"
)

var csvHeader = []string{"step", "time", "x", "y", "vx", "vy", "ax", "ay"}

// CSVWriter writes one row per frame. Call Flush or Close when the run ends.
type CSVWriter struct {
	w           *csv.Writer
	closer      io.Closer
	wroteHeader bool
}

// NewCSVWriter returns a CSVWriter writing to w. If w is an io.Closer,
// Close closes it after flushing.
func NewCSVWriter(w io.Writer) *CSVWriter {
	c := &CSVWriter{w: csv.NewWriter(w)}
	c.closer, _ = w.(io.Closer)
	return c
}

// Render appends a CSV row for f, writing the header first.
func (c *CSVWriter) Render(f engine.Frame) error {
	if !c.wroteHeader {
		if err := c.w.Write(csvHeader); err != nil {
			return err
		}
		c.wroteHeader = true
	}
	s := f.Snapshot
	return c.w.Write([]string{
		strconv.Itoa(f.Step),
		ftoa(f.Time),
		ftoa(s.Tip.X), ftoa(s.Tip.Y),
		ftoa(s.Velocity.X), ftoa(s.Velocity.Y),
		ftoa(s.Acceleration.X), ftoa(s.Acceleration.Y),
	})
}

// Flush flushes buffered rows and reports any write error.
func (c *CSVWriter) Flush() error {
	c.w.Flush()
	return c.w.Error()
}

// Close flushes buffered rows and closes the underlying writer. The first
// error wins. Later calls do not close the writer again.
func (c *CSVWriter) Close() error {
	err := c.Flush()
	if c.closer == nil {
		return err
	}
	cerr := c.closer.Close()
	c.closer = nil
	if err != nil {
		return err
	}
	return cerr
}

func ftoa(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
