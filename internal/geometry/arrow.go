package geometry

// Arrow is a rigid segment pivoting at Position. Its tip is Position+Direction.
//
// An arrow may be attached to a parent arrow, in which case its Position is
// meant to track the parent's tip. The relation is only recorded here; the
// owner decides when to call Refresh, so update order stays explicit.
type Arrow struct {
	Position  Vector
	Direction Vector
	parent    *Arrow
}

// NewArrow returns an unattached arrow.
func NewArrow(position, direction Vector) *Arrow {
	return &Arrow{Position: position, Direction: direction}
}

// Endpoint returns the tip of the arrow.
func (a *Arrow) Endpoint() Vector {
	return a.Position.Add(a.Direction)
}

// Rotate turns the arrow about its pivot. Position is untouched.
func (a *Arrow) Rotate(theta float64) {
	a.Direction.Rotate(theta)
}

// AttachTo records that a's pivot sits on parent's tip and refreshes it once.
// A nil parent detaches the arrow.
func (a *Arrow) AttachTo(parent *Arrow) {
	a.parent = parent
	a.Refresh()
}

// Parent returns the arrow a is attached to, or nil.
func (a *Arrow) Parent() *Arrow { return a.parent }

// Attached reports whether a is attached to another arrow.
func (a *Arrow) Attached() bool { return a.parent != nil }

// Refresh copies the parent's current tip into Position. It is a no-op for an
// unattached arrow.
func (a *Arrow) Refresh() {
	if a.parent == nil {
		return
	}
	a.Position = a.parent.Endpoint()
}

// Snapshot returns a detached copy of the arrow.
func (a *Arrow) Snapshot() Arrow {
	return Arrow{Position: a.Position, Direction: a.Direction}
}
