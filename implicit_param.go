package sway

import "fmt"

// ImplicitParamKind tags the implicit animation parameter variants.
type ImplicitParamKind uint8

const (
	ParamCancel ImplicitParamKind = iota + 1
	ParamCurve
	ParamKeyframe
	ParamPath
	ParamSpring
	ParamInterpolatingSpring
	ParamTransition
)

func (k ImplicitParamKind) String() string {
	switch k {
	case ParamCancel:
		return "cancel"
	case ParamCurve:
		return "curve"
	case ParamKeyframe:
		return "keyframe"
	case ParamPath:
		return "path"
	case ParamSpring:
		return "spring"
	case ParamInterpolatingSpring:
		return "interpolating-spring"
	case ParamTransition:
		return "transition"
	}
	return fmt.Sprintf("param(%d)", uint8(k))
}

// ImplicitParam says how a property write inside an implicit scope becomes
// an animation. The set of implementations is closed.
type ImplicitParam interface {
	Kind() ImplicitParamKind
	implicitParam()
}

// CancelParam applies writes immediately and cancels running animations on
// the written property.
type CancelParam struct {
	Protocol TimingProtocol
}

// CurveParam animates writes along an interpolating curve.
type CurveParam struct {
	Protocol TimingProtocol
	Curve    TimingCurve
}

// KeyframeParam adds a keyframe at Fraction to the animation of the outer
// scope. Curve shapes the segment ending at the keyframe.
type KeyframeParam struct {
	Protocol TimingProtocol
	Fraction float64
	Curve    TimingCurve
}

// PathParam animates position writes along Path.
type PathParam struct {
	Protocol TimingProtocol
	Curve    TimingCurve
	Path     *MotionPath
}

// SpringParam animates writes with a time-based spring.
type SpringParam struct {
	Protocol TimingProtocol
	Curve    TimingCurve
}

// InterpolatingSpringParam animates writes with a fraction-based spring.
type InterpolatingSpringParam struct {
	Protocol TimingProtocol
	Curve    TimingCurve
}

// TransitionParam animates writes like its timing curve would, and gives
// NotifyTransition the effect to play.
type TransitionParam struct {
	Protocol TimingProtocol
	Curve    TimingCurve
	Effect   TransitionEffect
}

func (*CancelParam) Kind() ImplicitParamKind              { return ParamCancel }
func (*CurveParam) Kind() ImplicitParamKind               { return ParamCurve }
func (*KeyframeParam) Kind() ImplicitParamKind            { return ParamKeyframe }
func (*PathParam) Kind() ImplicitParamKind                { return ParamPath }
func (*SpringParam) Kind() ImplicitParamKind              { return ParamSpring }
func (*InterpolatingSpringParam) Kind() ImplicitParamKind { return ParamInterpolatingSpring }
func (*TransitionParam) Kind() ImplicitParamKind          { return ParamTransition }

func (*CancelParam) implicitParam()              {}
func (*CurveParam) implicitParam()               {}
func (*KeyframeParam) implicitParam()            {}
func (*PathParam) implicitParam()                {}
func (*SpringParam) implicitParam()              {}
func (*InterpolatingSpringParam) implicitParam() {}
func (*TransitionParam) implicitParam()          {}

// paramFor picks the parameter a scope opened with protocol and curve
// uses. A zero-duration interpolating scope cancels instead of animating.
func paramFor(protocol TimingProtocol, curve TimingCurve) ImplicitParam {
	switch curve.Kind {
	case CurveSpring:
		return &SpringParam{Protocol: protocol, Curve: curve}
	case CurveInterpolatingSpring:
		return &InterpolatingSpringParam{Protocol: protocol, Curve: curve}
	}
	if protocol.Duration <= 0 {
		return &CancelParam{Protocol: protocol}
	}
	return &CurveParam{Protocol: protocol, Curve: curve}
}

// timingParam returns the parameter that does the animating for p: the
// timing curve behind a transition.
func timingParam(p ImplicitParam) ImplicitParam {
	if t, ok := p.(*TransitionParam); ok {
		return paramFor(t.Protocol, t.Curve)
	}
	return p
}

// --- Transition effects ---

// TransitionStep is one attribute of a transition: the value the node
// shows when fully transitioned out.
type TransitionStep struct {
	Type  ModifierType
	Value Value
}

// TransitionEffect is played by NotifyTransition: going in, each attribute
// moves from its step value to its current value; going out, the reverse.
type TransitionEffect []TransitionStep

// FadeStep transitions alpha.
func FadeStep(alpha float64) TransitionStep {
	return TransitionStep{Type: ModifierAlpha, Value: Float(alpha)}
}

// ScaleStep transitions scale.
func ScaleStep(s Vec2) TransitionStep {
	return TransitionStep{Type: ModifierScale, Value: s}
}

// TranslateStep transitions translation.
func TranslateStep(d Vec2) TransitionStep {
	return TransitionStep{Type: ModifierTranslate, Value: d}
}

// NewTransitionEffect combines steps.
func NewTransitionEffect(steps ...TransitionStep) TransitionEffect {
	return TransitionEffect(steps)
}
