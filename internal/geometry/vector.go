// Package geometry provides the 2D vector and arrow types used by the ride
// model and its renderers.
package geometry

import (
	"errors"
	"math"

	"github.com/golang/geo/r2"
)

// ErrDivisionByZero is returned by Vector.Div when the divisor is zero.
var ErrDivisionByZero = errors.New("division by zero")

// Vector is a 2D vector. Arithmetic methods return new values; only Rotate
// mutates the receiver.
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns v + w.
func (v Vector) Add(w Vector) Vector {
	return Vector{X: v.X + w.X, Y: v.Y + w.Y}
}

// Sub returns v - w.
func (v Vector) Sub(w Vector) Vector {
	return Vector{X: v.X - w.X, Y: v.Y - w.Y}
}

// Div returns v divided componentwise by s.
func (v Vector) Div(s float64) (Vector, error) {
	if s == 0 {
		return Vector{}, ErrDivisionByZero
	}
	return Vector{X: v.X / s, Y: v.Y / s}, nil
}

// Rotate rotates v in place by theta radians, counter-clockwise.
func (v *Vector) Rotate(theta float64) {
	cos, sin := math.Cos(theta), math.Sin(theta)
	x := v.X*cos - v.Y*sin
	y := v.X*sin + v.Y*cos
	v.X, v.Y = x, y
}

// Norm returns the length of v.
func (v Vector) Norm() float64 { return math.Hypot(v.X, v.Y) }

// Point converts v to an r2.Point.
func (v Vector) Point() r2.Point { return r2.Point{X: v.X, Y: v.Y} }

// FromPoint converts an r2.Point to a Vector.
func FromPoint(p r2.Point) Vector { return Vector{X: p.X, Y: p.Y} }
