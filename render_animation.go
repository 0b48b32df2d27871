package sway

import "time"

// AnimationState is the lifecycle state of an animation.
type AnimationState uint8

const (
	StateInitialized AnimationState = iota
	StateRunning
	StatePaused
	StateFinished
)

func (s AnimationState) String() string {
	switch s {
	case StateInitialized:
		return "initialized"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateFinished:
		return "finished"
	}
	return "state(?)"
}

// RenderAnimation is an animation living on the render side, attached to a
// RenderNode and ticked by that node's AnimationManager.
type RenderAnimation interface {
	ID() ID
	PropertyID() ID
	TargetID() ID
	State() AnimationState
	Duration() time.Duration
	IsInfinite() bool
	FrameRate() FrameRateRange

	Start()
	Pause()
	Resume()
	Finish()
	FinishOnCurrentPosition()
	SetFraction(f float64)
	SetReversed(reversed bool)

	// Animate evaluates the animation at now (nanoseconds) and reports
	// whether it has finished.
	Animate(now int64) bool

	core() *renderAnimation
}

// animationHooks are the per-kind steps the shared state machine calls into.
type animationHooks interface {
	onAnimate(fraction float64)
	onAnimateByTime(play time.Duration) (finished bool)
	onInitialize(now int64)
	onAttach()
	onDetach()
	onSetFraction(fraction float64)
	onRemoveOnCompletion()
}

// renderAnimation is the state machine shared by every animation kind.
type renderAnimation struct {
	id       ID
	hooks    animationHooks
	timer    fractionTimer
	state    AnimationState
	byTime   bool // time-based timing (springs)
	targetID ID
	target   *RenderNode
	ctx      *RenderContext

	needUpdateStartTime bool
	needInitialize      bool
}

func (a *renderAnimation) init(id ID, p TimingProtocol, hooks animationHooks) {
	a.id = id
	a.hooks = hooks
	a.timer = newFractionTimer(p)
	a.needInitialize = true
}

func (a *renderAnimation) core() *renderAnimation { return a }

func (a *renderAnimation) ID() ID                      { return a.id }
func (a *renderAnimation) PropertyID() ID              { return ID{} }
func (a *renderAnimation) TargetID() ID                { return a.targetID }
func (a *renderAnimation) State() AnimationState       { return a.state }
func (a *renderAnimation) Duration() time.Duration     { return a.timer.Duration }
func (a *renderAnimation) IsInfinite() bool            { return a.timer.IsInfinite() }
func (a *renderAnimation) FrameRate() FrameRateRange   { return a.timer.FrameRate }
func (a *renderAnimation) isStarted() bool             { return a.state != StateInitialized }
func (a *renderAnimation) isRunning() bool             { return a.state == StateRunning }
func (a *renderAnimation) isPaused() bool              { return a.state == StatePaused }
func (a *renderAnimation) lastFrameTime() int64        { return a.timer.lastFrameTime }
func (a *renderAnimation) setDuration(d time.Duration) { a.timer.Duration = d }

// attach binds the animation to node and starts it. When the node's context
// has already ticked, that frame becomes the start time.
func (a *renderAnimation) attach(node *RenderNode) {
	if a.target != nil {
		a.detach(false)
	}
	a.target = node
	if node != nil {
		a.targetID = node.ID()
		a.ctx = node.ctx
		if a.ctx != nil {
			a.timer.setScale(a.ctx.animationScale)
		}
	}
	ticked := a.ctx != nil && a.ctx.ticked
	if ticked {
		a.timer.lastFrameTime = a.ctx.frameTime
	}
	a.hooks.onAttach()
	a.Start()
	if ticked {
		a.needUpdateStartTime = false
	}
}

// detach unbinds the animation. A fallback detach keeps the target id and
// the bound property so the animation can finish on the fallback node.
func (a *renderAnimation) detach(fallback bool) {
	if !fallback {
		a.hooks.onDetach()
	}
	a.target = nil
}

func (a *renderAnimation) Start() {
	if a.isStarted() {
		logger.Error("start: animation already started", "animation", a.id)
		return
	}
	a.state = StateRunning
	a.needUpdateStartTime = true
	a.processFillModeOnStart(a.timer.startFraction())
}

func (a *renderAnimation) Finish() {
	if !a.isPaused() && !a.isRunning() {
		logger.Error("finish: animation not running", "animation", a.id, "state", a.state)
		return
	}
	a.state = StateFinished
	a.processFillModeOnFinish(a.timer.endFraction())
}

// FinishOnCurrentPosition finishes without applying the fill mode, leaving
// the property where the last frame put it.
func (a *renderAnimation) FinishOnCurrentPosition() {
	if !a.isPaused() && !a.isRunning() {
		logger.Error("finish: animation not running", "animation", a.id, "state", a.state)
		return
	}
	a.state = StateFinished
}

func (a *renderAnimation) Pause() {
	if !a.isRunning() {
		logger.Error("pause: animation not running", "animation", a.id, "state", a.state)
		return
	}
	a.state = StatePaused
}

func (a *renderAnimation) Resume() {
	if !a.isPaused() {
		logger.Error("resume: animation not paused", "animation", a.id, "state", a.state)
		return
	}
	a.state = StateRunning
	a.needUpdateStartTime = true
}

func (a *renderAnimation) SetFraction(f float64) {
	if !a.isPaused() {
		logger.Error("set fraction: animation not paused", "animation", a.id, "state", a.state)
		return
	}
	f = min(max(f, 0), 1)
	a.hooks.onSetFraction(f)
}

func (a *renderAnimation) SetReversed(reversed bool) {
	if !a.isPaused() && !a.isRunning() {
		logger.Error("reverse: animation not running", "animation", a.id, "state", a.state)
		return
	}
	a.timer.setReversed(reversed)
}

// setFractionInner seeks the timer; kinds that can render an arbitrary
// fraction also apply the value.
func (a *renderAnimation) setFractionInner(f float64) {
	a.timer.seek(f)
}

func (a *renderAnimation) processFillModeOnStart(startFraction float64) {
	if a.byTime {
		// Time-based animations present nothing before their first frame.
		return
	}
	if a.timer.FillMode.fillsBackwards() {
		a.hooks.onAnimate(startFraction)
	}
}

func (a *renderAnimation) processFillModeOnFinish(endFraction float64) {
	if a.timer.FillMode.fillsForwards() {
		a.hooks.onAnimate(endFraction)
		return
	}
	a.hooks.onRemoveOnCompletion()
}

func (a *renderAnimation) notify(event CallbackEvent) {
	if a.ctx == nil {
		return
	}
	a.ctx.addUIMessage(a.id.Route(), &AnimationCallback{
		Node:      a.targetID,
		Animation: a.id,
		Event:     event,
	})
}

func (a *renderAnimation) setStartTime(now int64) {
	a.timer.lastFrameTime = now
	a.needUpdateStartTime = false
}

// Animate is the per-frame entry point for fraction-based kinds.
func (a *renderAnimation) Animate(now int64) bool {
	if !a.isRunning() {
		return a.state == StateFinished
	}
	if a.needUpdateStartTime {
		a.setStartTime(now)
		return false
	}
	if now == a.timer.lastFrameTime {
		return false
	}
	if a.needInitialize {
		a.hooks.onInitialize(now)
	}

	var (
		fraction       float64
		inDelay        bool
		finished       bool
		repeats        int
	)
	if a.byTime {
		var play time.Duration
		play, inDelay = a.timer.playTime(now)
		if !inDelay {
			finished = a.hooks.onAnimateByTime(play)
		}
	} else {
		fraction, inDelay, finished, repeats = a.timer.fraction(now)
	}
	if inDelay {
		a.processFillModeOnStart(fraction)
		return false
	}
	if !a.byTime {
		a.hooks.onAnimate(fraction)
	}
	for range repeats {
		a.notify(CallbackRepeat)
	}
	if finished {
		a.state = StateFinished
		a.processFillModeOnFinish(fraction)
		return true
	}
	return false
}

// baseHooks gives kinds without a bound property no-op hooks.
type baseHooks struct{}

func (baseHooks) onAnimate(float64)                  {}
func (baseHooks) onAnimateByTime(time.Duration) bool { return true }
func (baseHooks) onAttach()                          {}
func (baseHooks) onDetach()                          {}
func (baseHooks) onRemoveOnCompletion()              {}

// --- Timer animation ---

// timerAnimation drives no property. It exists so a finish callback can be
// delivered through the normal finish path.
type timerAnimation struct {
	renderAnimation
	baseHooks
}

func newTimerAnimation(id ID, p TimingProtocol) *timerAnimation {
	t := &timerAnimation{}
	t.init(id, p, t)
	return t
}

func (t *timerAnimation) onInitialize(int64) { t.needInitialize = false }

func (t *timerAnimation) onSetFraction(f float64) { t.setFractionInner(f) }
