package sway

// FinishCallbackType says when a finish callback may run.
type FinishCallbackType uint8

const (
	// TimeSensitive callbacks run when the animation timing completes, even
	// for a scope that animated nothing.
	TimeSensitive FinishCallbackType = iota
	// TimeInsensitive callbacks may run as soon as nothing is animating.
	TimeInsensitive
	// Logically callbacks run once an interpolating spring is visually at
	// rest, before its estimated duration ends.
	Logically
)

func (t FinishCallbackType) String() string {
	switch t {
	case TimeSensitive:
		return "time-sensitive"
	case TimeInsensitive:
		return "time-insensitive"
	case Logically:
		return "logically"
	}
	return "callback(?)"
}

// FinishCallback runs a function once every holder has released it. A
// scope holds it while open and each animation created in the scope holds
// it until it finishes or is cancelled.
type FinishCallback struct {
	Type FinishCallbackType

	fn    func()
	refs  int
	fired bool
}

// NewFinishCallback wraps fn. A nil fn is allowed.
func NewFinishCallback(typ FinishCallbackType, fn func()) *FinishCallback {
	return &FinishCallback{Type: typ, fn: fn}
}

// Fired reports whether the callback has run.
func (c *FinishCallback) Fired() bool { return c.fired }

func (c *FinishCallback) retain() { c.refs++ }

// soleHolder reports whether the caller's reference is the only one.
func (c *FinishCallback) soleHolder() bool { return c.refs <= 1 }

// release drops one reference and runs the callback when none remain.
func (c *FinishCallback) release() {
	if c.refs > 0 {
		c.refs--
	}
	if c.refs == 0 {
		c.fire()
	}
}

// discard drops one reference without ever running the callback for it.
func (c *FinishCallback) discard() {
	if c.refs > 0 {
		c.refs--
	}
}

func (c *FinishCallback) fire() {
	if c.fired {
		return
	}
	c.fired = true
	if c.fn != nil {
		c.fn()
	}
}
