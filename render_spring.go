package sway

import (
	"math"
	"time"
)

const (
	responseThreshold = 1e-3
	fractionThreshold = 1e-3
	blendingDuration  = 300 * time.Millisecond // reported while a blend is in progress
)

// springAnimation is the time-based spring. It runs until the oscillator is
// at rest and can take over a running spring on the same property without a
// visible jump.
type springAnimation struct {
	propertyAnimation
	model          springModel
	start, end     Value
	finalResponse  float64
	blendRemaining time.Duration
	prevMappedTime float64 // seconds into the current round at the last frame
	animated       bool
	threshold      float64
}

func newSpringAnimation(spec *AnimationSpec) *springAnimation {
	s := &springAnimation{
		start:          spec.Start,
		end:            spec.End,
		finalResponse:  spec.Curve.Response,
		blendRemaining: spec.Curve.BlendDuration,
		threshold:      spec.ZeroThreshold,
	}
	s.model.response = spec.Curve.Response
	s.model.dampingRatio = spec.Curve.DampingRatio
	s.model.initialVelocity = spec.InitialVelocity
	if s.threshold <= 0 {
		s.threshold = DefaultZeroThreshold
	}
	s.initProperty(spec, s)
	s.byTime = true
	return s
}

// Response is the spring response currently in use; it differs from the
// configured one while a blend is in progress.
func (s *springAnimation) Response() float64 { return s.model.response }

// Animate replaces the shared per-frame step. Inside the start delay it
// shows the start value for Backwards/Both fill modes, and on completion it
// only removes its contribution for None/Backwards.
func (s *springAnimation) Animate(now int64) bool {
	if !s.isRunning() {
		return s.state == StateFinished
	}
	if s.needUpdateStartTime {
		s.setStartTime(now)
		return false
	}
	if now == s.timer.lastFrameTime {
		return false
	}
	if s.needInitialize {
		s.onInitialize(now)
	}
	play, inDelay := s.timer.playTime(now)
	if inDelay {
		if s.timer.FillMode.fillsBackwards() {
			s.onAnimateByTime(0)
		}
		return false
	}
	if !s.onAnimateByTime(play) {
		return false
	}
	s.state = StateFinished
	if !s.timer.FillMode.fillsForwards() {
		s.onRemoveOnCompletion()
	}
	return true
}

// onAnimate renders a fraction of the estimated duration. Used by Finish
// and by Backwards fill at start.
func (s *springAnimation) onAnimate(f float64) {
	if s.propertyID.IsZero() {
		return
	}
	if math.Abs(f-1) <= fractionThreshold {
		s.setAnimationValue(s.end)
		s.prevMappedTime = s.Duration().Seconds()
		return
	}
	s.ensureModel()
	t := f * s.Duration().Seconds()
	s.setAnimationValue(s.end.Add(s.model.displacement(t)))
	s.prevMappedTime = t
}

func (s *springAnimation) onSetFraction(float64) {
	logger.Error("set fraction: not supported by spring animations", "animation", s.id)
}

func (s *springAnimation) onAnimateByTime(play time.Duration) bool {
	if s.propertyID.IsZero() {
		return true
	}
	s.ensureModel()
	t := play.Seconds()
	disp := s.model.displacement(t)
	reverse := s.timer.reverseCycle
	cur, target := s.end.Add(disp), s.end
	if reverse {
		cur, target = s.start.Sub(disp), s.start
	}
	s.prevMappedTime = t
	s.animated = true
	if !cur.NearEqual(target, s.threshold) {
		s.setAnimationValue(cur)
		return false
	}
	vel := s.model.velocity(t).Scale(frameInterval)
	if !vel.NearEqual(vel.Kind().Zero(), s.threshold) {
		s.setAnimationValue(cur)
		return false
	}
	// At rest: this round is over.
	s.setAnimationValue(target)
	s.timer.finishRound()
	s.prevMappedTime = 0
	if s.timer.roundsLeft() == 0 {
		return true
	}
	if s.timer.RepeatCallback {
		s.notify(CallbackRepeat)
	}
	return false
}

// ensureModel fills in the oscillator state when a frame arrives before
// initialization (fill at start, explicit finish).
func (s *springAnimation) ensureModel() {
	if s.model.initialOffset == nil {
		s.model.initialOffset = s.start.Sub(s.end)
		if s.model.initialVelocity == nil {
			s.model.initialVelocity = s.model.initialOffset.Kind().Zero()
		}
		s.model.calculate()
	}
}

func (s *springAnimation) onAttach() {
	s.propertyAnimation.onAttach()
	if s.target == nil {
		return
	}
	mgr := s.target.AnimationManager()
	prev := mgr.querySpring(s.propertyID)
	mgr.registerSpring(s.propertyID, s.id)
	// Ticking the predecessor at our clock aligns both springs; if it
	// finishes there is nothing to take over.
	if prev == nil || prev.State() == StateFinished ||
		(s.timer.lastFrameTime >= 0 && prev.Animate(s.timer.lastFrameTime)) {
		s.blendRemaining = 0
		return
	}
	s.inherit(prev.SpringState())
	s.model.response = prev.model.response
	switch {
	case math.Abs(s.model.response-s.finalResponse) <= responseThreshold:
		s.blendRemaining = 0
	case s.blendRemaining == 0:
		s.model.response = s.finalResponse
	case math.Abs(s.finalResponse-prev.finalResponse) <= responseThreshold:
		// Same destination response: carry on with the predecessor's blend.
		s.blendRemaining = prev.blendRemaining
	}
	prev.FinishOnCurrentPosition()
}

func (s *springAnimation) onDetach() {
	if s.target != nil {
		s.target.AnimationManager().unregisterSpring(s.propertyID, s.id)
	}
}

// onInitialize builds the oscillator. While blending it runs every frame,
// restarting the spring from its current state with a response moved
// linearly toward the configured one.
func (s *springAnimation) onInitialize(now int64) {
	if s.blendRemaining > 0 {
		last := s.timer.lastFrameTime
		s.inherit(s.SpringState())
		s.timer.reset()
		s.prevMappedTime = 0
		blend := time.Duration(float64(now-last) / s.timer.scale)
		if blend < s.blendRemaining {
			ratio := float64(blend) / float64(s.blendRemaining)
			s.model.response += (s.finalResponse - s.model.response) * ratio
			s.blendRemaining -= blend
		} else {
			s.model.response = s.finalResponse
			s.blendRemaining = 0
		}
	}
	s.model.initialOffset = s.start.Sub(s.end)
	if s.model.initialVelocity == nil {
		s.model.initialVelocity = s.model.initialOffset.Kind().Zero()
	}
	s.model.calculate()
	if s.blendRemaining > 0 {
		s.setDuration(blendingDuration)
		return
	}
	s.setDuration(s.model.estimateDuration(s.threshold))
	s.needInitialize = false
}

// SpringState reports the current value and velocity. A spring that has
// not produced a frame yet reports its start value and initial velocity.
func (s *springAnimation) SpringState() SpringState {
	if !s.animated || s.last == nil {
		return SpringState{Value: s.start, Velocity: s.model.initialVelocity, RemainingDelay: s.timer.remainingDelay()}
	}
	s.ensureModel()
	vel := s.model.velocity(s.prevMappedTime)
	if s.timer.reverseCycle {
		vel = vel.Scale(-1)
	}
	return SpringState{Value: s.last, Velocity: vel, RemainingDelay: s.timer.remainingDelay()}
}

func (s *springAnimation) inherit(st SpringState) {
	s.start = st.Value
	s.model.initialVelocity = st.Velocity
	s.origin = st.Value
	s.last = st.Value
	s.timer.setRemainingDelay(st.RemainingDelay)
}
