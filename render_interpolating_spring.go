package sway

// interpolatingSpringAnimation evaluates a normalized spring (offset -1,
// rest 0) over a duration estimated once at initialization, and maps the
// result between the start and end values.
type interpolatingSpringAnimation struct {
	propertyAnimation
	model                 springModel
	start, end            Value
	normalizedVelocity    float64
	threshold             float64
	logicallyFinished     bool // a logically-finished callback was requested
	logicallyFinishedSent bool
}

func newInterpolatingSpringAnimation(spec *AnimationSpec) *interpolatingSpringAnimation {
	a := &interpolatingSpringAnimation{
		start:              spec.Start,
		end:                spec.End,
		normalizedVelocity: spec.Curve.InitialVelocity,
		threshold:          spec.ZeroThreshold,
		logicallyFinished:  spec.LogicallyFinished,
	}
	a.model.response = spec.Curve.Response
	a.model.dampingRatio = spec.Curve.DampingRatio
	if a.threshold <= 0 {
		a.threshold = DefaultZeroThreshold
	}
	a.initProperty(spec, a)
	a.prepareModel()
	return a
}

func (a *interpolatingSpringAnimation) prepareModel() {
	a.model.initialOffset = Float(-1)
	a.model.initialVelocity = Float(a.normalizedVelocity)
	a.model.calculate()
}

func (a *interpolatingSpringAnimation) onInitialize(int64) {
	a.prepareModel()
	a.setDuration(a.model.estimateDuration(a.threshold))
	a.needInitialize = false
}

// progress returns the normalized spring position at t seconds: 0 at the
// start value, 1 at rest.
func (a *interpolatingSpringAnimation) progress(t float64) float64 {
	return 1 + float64(a.model.displacement(t).(Float))
}

func (a *interpolatingSpringAnimation) onAnimate(f float64) {
	if a.propertyID.IsZero() {
		return
	}
	if f == 1 {
		a.setAnimationValue(a.end)
		return
	}
	t := f * a.Duration().Seconds()
	p := a.progress(t)
	a.setAnimationValue(Lerp(a.start, a.end, p))

	if !a.logicallyFinished || a.logicallyFinishedSent || a.timer.roundsLeft() != 1 {
		return
	}
	target := a.end
	if a.timer.reverseCycle {
		target = a.start
	}
	value := Lerp(a.start, a.end, p)
	next := Lerp(a.start, a.end, a.progress(t+velocityStep))
	velocity := next.Sub(value).Scale(1 / velocityStep * frameInterval)
	if value.NearEqual(target, a.threshold) && velocity.NearEqual(velocity.Kind().Zero(), a.threshold) {
		a.logicallyFinishedSent = true
		a.notify(CallbackLogicallyFinished)
	}
}

func (a *interpolatingSpringAnimation) onSetFraction(f float64) {
	a.setFractionInner(f)
	a.onAnimate(f)
}
