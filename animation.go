package sway

import "time"

// Animation is the UI-side handle of an animation. Its methods queue
// commands for the render side; state changes reported back arrive through
// Client.HandleCallbacks. The target node is nil for timer animations,
// which run on the fallback node.
type Animation struct {
	id       ID
	client   *Client
	node     *Node
	property *propertyBase
	spec     AnimationSpec
	state    AnimationState
	custom   bool // runs in the client's local context
	explicit bool // staging is written on Start

	finish          *FinishCallback
	repeat          func()
	released        bool
	finishRequested bool
}

func newAnimation(c *Client, node *Node, p *propertyBase, spec AnimationSpec) *Animation {
	a := &Animation{id: spec.ID, client: c, node: node, property: p, spec: spec}
	if p != nil {
		a.custom = p.custom
	}
	return a
}

func (a *Animation) ID() ID                { return a.id }
func (a *Animation) Kind() AnimationKind   { return a.spec.Kind }
func (a *Animation) State() AnimationState { return a.state }
func (a *Animation) Node() *Node           { return a.node }
func (a *Animation) IsRunning() bool       { return a.state == StateRunning }

// Spec returns a copy of what the render side builds the animation from.
func (a *Animation) Spec() AnimationSpec { return a.spec }

func (a *Animation) propertyID() ID { return a.spec.Property }

func (a *Animation) nodeID() ID {
	if a.node == nil {
		return FallbackNodeID
	}
	return a.node.id
}

// Duration returns the protocol duration, or for springs the estimated
// settling time.
func (a *Animation) Duration() time.Duration {
	switch a.spec.Kind {
	case AnimationSpring:
		m := springModel{
			response:        a.spec.Curve.Response,
			dampingRatio:    a.spec.Curve.DampingRatio,
			initialOffset:   a.spec.Start.Sub(a.spec.End),
			initialVelocity: a.spec.InitialVelocity,
		}
		if m.initialVelocity == nil {
			m.initialVelocity = m.initialOffset.Kind().Zero()
		}
		m.calculate()
		return m.estimateDuration(a.threshold())
	case AnimationInterpolatingSpring:
		m := springModel{
			response:        a.spec.Curve.Response,
			dampingRatio:    a.spec.Curve.DampingRatio,
			initialOffset:   Float(-1),
			initialVelocity: Float(a.spec.Curve.InitialVelocity),
		}
		m.calculate()
		return m.estimateDuration(a.threshold())
	}
	return a.spec.Protocol.Duration
}

func (a *Animation) threshold() float64 {
	if a.spec.ZeroThreshold > 0 {
		return a.spec.ZeroThreshold
	}
	return DefaultZeroThreshold
}

// SetFinishCallback makes the animation hold cb until it finishes.
func (a *Animation) SetFinishCallback(cb *FinishCallback) {
	if a.finish != nil && !a.released {
		a.finish.discard()
	}
	a.finish = cb
	a.released = false
	if cb != nil {
		cb.retain()
		if cb.Type == Logically && a.spec.Kind == AnimationInterpolatingSpring {
			a.spec.LogicallyFinished = true
		}
	}
}

// SetRepeatCallback sets fn to run at the end of every cycle but the last.
// Set it before Start.
func (a *Animation) SetRepeatCallback(fn func()) {
	a.repeat = fn
	a.spec.Protocol.RepeatCallback = fn != nil
}

// Start sends the animation to the render side, which attaches and starts
// it.
func (a *Animation) Start() {
	if a.state != StateInitialized {
		logger.Error("start: animation already started", "animation", a.id, "state", a.state)
		return
	}
	if a.node != nil && a.node.disposed {
		logger.Error("start: node disposed", "animation", a.id, "node", a.node.id)
		return
	}
	a.state = StateRunning
	if a.explicit && a.property != nil {
		a.property.staging = a.spec.End
	}
	a.client.animations[a.id] = a
	if a.node != nil {
		a.node.addAnimation(a)
	}
	a.client.enqueue(&CreateAnimation{Node: a.nodeID(), Spec: a.spec}, a.custom)
}

func (a *Animation) Pause() {
	if a.state != StateRunning {
		logger.Error("pause: animation not running", "animation", a.id, "state", a.state)
		return
	}
	a.state = StatePaused
	a.client.enqueue(&PauseAnimation{Node: a.nodeID(), Animation: a.id}, a.custom)
}

func (a *Animation) Resume() {
	if a.state != StatePaused {
		logger.Error("resume: animation not paused", "animation", a.id, "state", a.state)
		return
	}
	a.state = StateRunning
	a.client.enqueue(&ResumeAnimation{Node: a.nodeID(), Animation: a.id}, a.custom)
}

// Finish asks the render side to jump to the end. The animation reports
// finished on the next frame.
func (a *Animation) Finish() {
	if a.state != StateRunning && a.state != StatePaused {
		logger.Error("finish: animation not running", "animation", a.id, "state", a.state)
		return
	}
	if a.finishRequested {
		return
	}
	a.finishRequested = true
	a.client.enqueue(&FinishAnimation{Node: a.nodeID(), Animation: a.id}, a.custom)
}

// Reverse flips the direction of the rest of the current cycle.
func (a *Animation) Reverse(reversed bool) {
	if a.state != StateRunning && a.state != StatePaused {
		logger.Error("reverse: animation not running", "animation", a.id, "state", a.state)
		return
	}
	a.client.enqueue(&ReverseAnimation{Node: a.nodeID(), Animation: a.id, Reversed: reversed}, a.custom)
}

// SetFraction shows the paused animation at f in [0,1].
func (a *Animation) SetFraction(f float64) {
	if a.state != StatePaused {
		logger.Error("set fraction: animation not paused", "animation", a.id, "state", a.state)
		return
	}
	f = min(max(f, 0), 1)
	a.client.enqueue(&SetAnimationFraction{Node: a.nodeID(), Animation: a.id, Fraction: f}, a.custom)
}

// onEvent handles a callback from the render side.
func (a *Animation) onEvent(ev CallbackEvent) {
	switch ev {
	case CallbackRepeat:
		if a.repeat != nil {
			a.repeat()
		}
	case CallbackLogicallyFinished:
		if a.finish != nil && a.finish.Type == Logically {
			a.releaseFinish()
		}
	case CallbackFinished:
		a.onFinished()
	}
}

func (a *Animation) event(ev CallbackEvent) AnimationEvent {
	e := AnimationEvent{Type: ev, Animation: a.id, Property: a.spec.Property}
	if a.node != nil {
		e.Node = a.node.id
		e.NodeName = a.node.Name
	}
	return e
}

// onFinished forgets the animation and lets the render side drop it. The
// last animation on a property also settles it at the staging value.
func (a *Animation) onFinished() {
	if a.state == StateFinished {
		return
	}
	a.state = StateFinished
	delete(a.client.animations, a.id)
	var final Value
	if a.node != nil {
		last := a.node.removeAnimation(a)
		if last && a.property != nil && !a.node.disposed {
			final = a.property.staging
		}
	}
	a.client.enqueue(&RemoveAnimation{Node: a.nodeID(), Animation: a.id, Final: final}, a.custom)
	a.releaseFinish()
}

// cancel ends the animation on the UI side; the render side removes it
// without reporting back.
func (a *Animation) cancel() {
	a.state = StateFinished
	delete(a.client.animations, a.id)
	a.releaseFinish()
}

// drop forgets the animation without running its finish callback.
func (a *Animation) drop() {
	a.state = StateFinished
	delete(a.client.animations, a.id)
	if a.finish != nil && !a.released {
		a.released = true
		a.finish.discard()
	}
}

func (a *Animation) releaseFinish() {
	if a.finish == nil || a.released {
		return
	}
	a.released = true
	a.finish.release()
}
