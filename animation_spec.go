package sway

import "fmt"

// AnimationKind selects the render-side animation built from a spec.
type AnimationKind uint8

const (
	AnimationCurve AnimationKind = iota + 1
	AnimationKeyframe
	AnimationPath
	AnimationSpring
	AnimationInterpolatingSpring
	AnimationTimer
)

var animationKindNames = map[AnimationKind]string{
	AnimationCurve:               "curve",
	AnimationKeyframe:            "keyframe",
	AnimationPath:                "path",
	AnimationSpring:              "spring",
	AnimationInterpolatingSpring: "interpolating-spring",
	AnimationTimer:               "timer",
}

func (k AnimationKind) String() string {
	if s, ok := animationKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("animation(%d)", uint8(k))
}

func parseAnimationKind(s string) AnimationKind {
	for k, name := range animationKindNames {
		if name == s {
			return k
		}
	}
	return 0
}

// AnimationSpec is everything the render side needs to build an animation.
// It is what a CreateAnimation command carries.
type AnimationSpec struct {
	ID       ID
	Kind     AnimationKind
	Property ID
	Protocol TimingProtocol
	Curve    TimingCurve
	Additive bool

	// Origin is the property value before the animation; Start and End
	// bound the animated range.
	Origin, Start, End Value

	Keyframes       []Keyframe
	Path            *MotionPath
	InitialVelocity Value
	ZeroThreshold   float64

	// LogicallyFinished asks an interpolating spring to report when it is
	// visually at rest, ahead of its estimated duration.
	LogicallyFinished bool
}

// validate checks that the spec can be built; value kinds must agree.
func (s *AnimationSpec) validate() error {
	if err := s.Protocol.Validate(); err != nil {
		return fmt.Errorf("%s animation %s: %w", s.Kind, s.ID, err)
	}
	if s.Kind == AnimationTimer {
		return nil
	}
	if s.Property.IsZero() {
		return fmt.Errorf("%s animation %s without property: %w", s.Kind, s.ID, ErrInvalidValue)
	}
	for _, v := range []Value{s.Origin, s.Start, s.End} {
		if v == nil || !v.Valid() {
			return fmt.Errorf("%s animation %s: %w", s.Kind, s.ID, ErrInvalidValue)
		}
	}
	if s.Start.Kind() != s.End.Kind() || s.Origin.Kind() != s.End.Kind() {
		return fmt.Errorf("%s animation %s mixes %s and %s: %w", s.Kind, s.ID, s.Start.Kind(), s.End.Kind(), ErrInvalidValue)
	}
	switch s.Kind {
	case AnimationSpring, AnimationInterpolatingSpring:
		if err := s.Curve.Validate(); err != nil {
			return err
		}
		if s.Curve.Kind == CurveInterpolating {
			return fmt.Errorf("%s animation with %s curve: %w", s.Kind, s.Curve.Kind, ErrInvalidCurve)
		}
	case AnimationKeyframe:
		for _, kf := range s.Keyframes {
			if kf.Value == nil || kf.Value.Kind() != s.End.Kind() {
				return fmt.Errorf("keyframe at %.3f: %w", kf.Fraction, ErrInvalidValue)
			}
		}
	}
	return nil
}

// newRenderAnimation builds the render-side animation for spec.
func newRenderAnimation(spec *AnimationSpec) (RenderAnimation, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}
	switch spec.Kind {
	case AnimationCurve:
		return newCurveAnimation(spec), nil
	case AnimationKeyframe:
		return newKeyframeAnimation(spec), nil
	case AnimationPath:
		return newPathAnimation(spec), nil
	case AnimationSpring:
		return newSpringAnimation(spec), nil
	case AnimationInterpolatingSpring:
		return newInterpolatingSpringAnimation(spec), nil
	case AnimationTimer:
		return newTimerAnimation(spec.ID, spec.Protocol), nil
	}
	return nil, fmt.Errorf("animation kind %s: %w", spec.Kind, ErrUnknownCommand)
}
