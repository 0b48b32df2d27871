package sway

import (
	"sort"
	"time"
)

// propertyAnimation binds an animation to one RenderProperty. Values are
// applied additively by default: each frame adds (value - last) to the
// property so several animations on the same property compose.
type propertyAnimation struct {
	renderAnimation
	propertyID ID
	origin     Value
	last       Value
	additive   bool
	property   *RenderProperty
}

func (p *propertyAnimation) initProperty(spec *AnimationSpec, hooks animationHooks) {
	p.init(spec.ID, spec.Protocol, hooks)
	p.propertyID = spec.Property
	p.origin = spec.Origin
	p.last = spec.Origin
	p.additive = spec.Additive
}

func (p *propertyAnimation) PropertyID() ID { return p.propertyID }

// lastValue is the value this animation applied most recently.
func (p *propertyAnimation) lastValue() Value { return p.last }

func (p *propertyAnimation) onAttach() {
	if p.property != nil || p.target == nil {
		return
	}
	p.property = p.target.property(p.propertyID)
	if p.property == nil {
		logger.Warn("animation target property not found",
			"animation", p.id, "node", p.targetID, "property", p.propertyID)
	}
}

func (p *propertyAnimation) onDetach() {}

func (p *propertyAnimation) onInitialize(int64) { p.needInitialize = false }

func (p *propertyAnimation) onAnimateByTime(time.Duration) bool { return true }

func (p *propertyAnimation) setAnimationValue(v Value) {
	if v == nil {
		return
	}
	if p.property == nil {
		p.last = v
		return
	}
	if p.additive && p.last != nil {
		p.property.Set(p.property.Get().Add(v.Sub(p.last)))
	} else {
		p.property.Set(v)
	}
	p.last = v
}

// onRemoveOnCompletion takes this animation's contribution back out,
// returning the property to its origin.
func (p *propertyAnimation) onRemoveOnCompletion() {
	if p.property == nil || p.origin == nil {
		return
	}
	if p.additive && p.last != nil {
		p.property.Set(p.property.Get().Add(p.origin.Sub(p.last)))
	} else {
		p.property.Set(p.origin)
	}
	p.last = p.origin
}

// --- Curve ---

type curveAnimation struct {
	propertyAnimation
	start, end Value
	curve      TimingCurve
}

func newCurveAnimation(spec *AnimationSpec) *curveAnimation {
	a := &curveAnimation{start: spec.Start, end: spec.End, curve: spec.Curve}
	a.initProperty(spec, a)
	return a
}

func (a *curveAnimation) onAnimate(f float64) {
	a.setAnimationValue(a.curve.lerp(a.start, a.end, a.curve.Interpolate(f)))
}

func (a *curveAnimation) onSetFraction(f float64) {
	a.setFractionInner(f)
	a.onAnimate(f)
}

// --- Keyframe ---

// Keyframe is one stop of a keyframe animation. Curve shapes the segment
// that ends at this keyframe.
type Keyframe struct {
	Fraction float64
	Value    Value
	Curve    TimingCurve
}

type keyframeAnimation struct {
	propertyAnimation
	keyframes []Keyframe // sorted, first stop at fraction 0
}

func newKeyframeAnimation(spec *AnimationSpec) *keyframeAnimation {
	kfs := make([]Keyframe, 0, len(spec.Keyframes)+1)
	kfs = append(kfs, Keyframe{Fraction: 0, Value: spec.Start, Curve: CurveLinear})
	for _, kf := range spec.Keyframes {
		kf.Fraction = min(max(kf.Fraction, 0), 1)
		kfs = append(kfs, kf)
	}
	sort.SliceStable(kfs, func(i, j int) bool { return kfs[i].Fraction < kfs[j].Fraction })
	a := &keyframeAnimation{keyframes: kfs}
	a.initProperty(spec, a)
	return a
}

// valueAt interpolates the keyframe segment containing f. Past the last
// stop the last value holds.
func (a *keyframeAnimation) valueAt(f float64) Value {
	kfs := a.keyframes
	if len(kfs) == 0 {
		return nil
	}
	for i := 1; i < len(kfs); i++ {
		prev, cur := kfs[i-1], kfs[i]
		if f > cur.Fraction {
			continue
		}
		span := cur.Fraction - prev.Fraction
		if span <= 0 {
			return cur.Value
		}
		local := cur.Curve.Interpolate((f - prev.Fraction) / span)
		return cur.Curve.lerp(prev.Value, cur.Value, local)
	}
	return kfs[len(kfs)-1].Value
}

func (a *keyframeAnimation) onAnimate(f float64) {
	a.setAnimationValue(a.valueAt(f))
}

func (a *keyframeAnimation) onSetFraction(f float64) {
	a.setFractionInner(f)
	a.onAnimate(f)
}

// --- Path ---

type pathAnimation struct {
	propertyAnimation
	start, end Value
	curve      TimingCurve
	path       *MotionPath
}

func newPathAnimation(spec *AnimationSpec) *pathAnimation {
	a := &pathAnimation{start: spec.Start, end: spec.End, curve: spec.Curve, path: spec.Path}
	a.initProperty(spec, a)
	return a
}

func (a *pathAnimation) onAnimate(f float64) {
	eased := a.curve.Interpolate(f)
	base := Lerp(a.start, a.end, eased)
	if a.path == nil || len(a.path.Points) == 0 {
		a.setAnimationValue(base)
		return
	}
	pos := a.path.pointAt(a.path.progress(eased))
	switch v := base.(type) {
	case Vec2:
		a.setAnimationValue(pos)
	case Rect:
		v.X, v.Y = pos.X, pos.Y
		a.setAnimationValue(v)
	default:
		a.setAnimationValue(base)
	}
}

func (a *pathAnimation) onSetFraction(f float64) {
	a.setFractionInner(f)
	a.onAnimate(f)
}
