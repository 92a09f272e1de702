package spin

// Controller owns a single State between frames.
type Controller struct {
	params Params
	state  State
	ready  bool
}

// NewController returns a controller resting at angle zero. Invalid fields
// of p fall back to their defaults.
func NewController(p Params) *Controller {
	return &Controller{params: p.Sanitized(), ready: true}
}

// Update applies one frame. It is a no-op on a nil or zero Controller.
func (c *Controller) Update(in Input) {
	if c == nil || !c.ready {
		return
	}
	c.state = Step(c.params, c.state, in)
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	if c == nil {
		return State{}
	}
	return c.state
}

// Settled reports whether the current episode has landed.
func (c *Controller) Settled() bool {
	return c != nil && c.state.Phase == PhaseSettled
}

// Reset returns the coin to its initial resting state.
func (c *Controller) Reset() {
	if c == nil {
		return
	}
	c.state = State{}
}
