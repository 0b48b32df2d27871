package sway

import (
	"fmt"
	"math"
	"sync"
	"time"

	fease "github.com/fogleman/ease"
	"github.com/tanema/gween/ease"
)

// CurveKind selects how a TimingCurve maps progress to value.
type CurveKind uint8

const (
	CurveInterpolating      CurveKind = iota // easing function over a fixed duration
	CurveSpring                              // time-based spring, duration derived from the model
	CurveInterpolatingSpring                 // spring evaluated over an estimated duration
)

func (k CurveKind) String() string {
	switch k {
	case CurveInterpolating:
		return "interpolating"
	case CurveSpring:
		return "spring"
	case CurveInterpolatingSpring:
		return "interpolating-spring"
	}
	return fmt.Sprintf("curve(%d)", uint8(k))
}

// EaseFunc maps linear progress in [0, 1] to eased progress.
type EaseFunc func(t float64) float64

// TimingCurve describes the shape of an animation. It is a plain value so it
// can travel inside commands.
type TimingCurve struct {
	Kind CurveKind `json:"kind" yaml:"kind"`

	// Interpolating curves: a registered easing name, or a cubic bezier
	// (x1, y1, x2, y2) when Bezier is set.
	Ease   string      `json:"ease,omitempty" yaml:"ease,omitempty"`
	Bezier *[4]float64 `json:"bezier,omitempty" yaml:"bezier,omitempty"`
	// Hcl blends Color values through HCL space instead of per component.
	Hcl bool `json:"hcl,omitempty" yaml:"hcl,omitempty"`

	// Springs
	Response      float64       `json:"response,omitempty" yaml:"response,omitempty"`
	DampingRatio  float64       `json:"damping_ratio,omitempty" yaml:"damping_ratio,omitempty"`
	BlendDuration time.Duration `json:"blend_duration,omitempty" yaml:"blend_duration,omitempty"`
	// InitialVelocity is the normalized start velocity of an interpolating
	// spring (1 = covers the whole distance per second).
	InitialVelocity float64 `json:"initial_velocity,omitempty" yaml:"initial_velocity,omitempty"`
}

// Common curves.
var (
	CurveLinear    = EaseCurve("linear")
	CurveEase      = BezierCurve(0.25, 0.1, 0.25, 1)
	CurveEaseIn    = BezierCurve(0.42, 0, 1, 1)
	CurveEaseOut   = BezierCurve(0, 0, 0.58, 1)
	CurveEaseInOut = BezierCurve(0.42, 0, 0.58, 1)

	CurveDefaultSpring     = SpringCurve(0.55, 0.825, 0)
	CurveInteractiveSpring = SpringCurve(0.15, 0.86, 250*time.Millisecond)
)

// EaseCurve returns an interpolating curve using a registered easing.
func EaseCurve(name string) TimingCurve {
	return TimingCurve{Kind: CurveInterpolating, Ease: name}
}

// BezierCurve returns an interpolating curve following a CSS cubic-bezier.
func BezierCurve(x1, y1, x2, y2 float64) TimingCurve {
	return TimingCurve{Kind: CurveInterpolating, Bezier: &[4]float64{x1, y1, x2, y2}}
}

// SpringCurve returns a time-based spring curve. A non-zero blend duration
// lets a retargeting spring ease its response from the one it replaces.
func SpringCurve(response, dampingRatio float64, blend time.Duration) TimingCurve {
	return TimingCurve{Kind: CurveSpring, Response: response, DampingRatio: dampingRatio, BlendDuration: blend}
}

// InterpolatingSpringCurve builds a fraction-based spring from physical
// parameters: mass, stiffness and damping are converted to response and
// damping ratio.
func InterpolatingSpringCurve(mass, stiffness, damping, initialVelocity float64) TimingCurve {
	if mass <= 0 {
		mass = 1
	}
	if stiffness <= 0 {
		stiffness = 1
	}
	response := 2 * math.Pi * math.Sqrt(mass/stiffness)
	ratio := damping / (2 * math.Sqrt(mass*stiffness))
	return TimingCurve{
		Kind:            CurveInterpolatingSpring,
		Response:        response,
		DampingRatio:    ratio,
		InitialVelocity: initialVelocity,
	}
}

// Validate reports whether the curve parameters are usable.
func (c TimingCurve) Validate() error {
	switch c.Kind {
	case CurveInterpolating:
		if c.Bezier != nil {
			for _, v := range c.Bezier {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					return fmt.Errorf("bezier %v: %w", *c.Bezier, ErrInvalidCurve)
				}
			}
			if c.Bezier[0] < 0 || c.Bezier[0] > 1 || c.Bezier[2] < 0 || c.Bezier[2] > 1 {
				return fmt.Errorf("bezier x outside [0,1]: %w", ErrInvalidCurve)
			}
		}
		return nil
	case CurveSpring, CurveInterpolatingSpring:
		if !(c.Response > 0) || c.DampingRatio < 0 || math.IsInf(c.Response, 0) || math.IsNaN(c.DampingRatio) {
			return fmt.Errorf("spring response %v damping %v: %w", c.Response, c.DampingRatio, ErrInvalidCurve)
		}
		return nil
	}
	return fmt.Errorf("%s: %w", c.Kind, ErrInvalidCurve)
}

// WithHcl returns a copy of c that blends colors in HCL space.
func (c TimingCurve) WithHcl() TimingCurve {
	c.Hcl = true
	return c
}

// lerp interpolates from toward to at eased progress f.
func (c TimingCurve) lerp(from, to Value, f float64) Value {
	if c.Hcl {
		a, aok := from.(Color)
		b, bok := to.(Color)
		if aok && bok {
			return a.BlendHcl(b, f)
		}
	}
	return Lerp(from, to, f)
}

// Interpolate maps a linear fraction to the eased fraction. Spring curves
// are not evaluated here and return t unchanged.
func (c TimingCurve) Interpolate(t float64) float64 {
	if c.Kind != CurveInterpolating {
		return t
	}
	if c.Bezier != nil {
		return cubicBezier(c.Bezier[0], c.Bezier[1], c.Bezier[2], c.Bezier[3], t)
	}
	return lookupEase(c.Ease)(t)
}

// --- Easing registry ---

var (
	easeMu    sync.RWMutex
	easeFuncs = map[string]EaseFunc{}
)

// RegisterEase adds or replaces a named easing.
func RegisterEase(name string, fn EaseFunc) {
	easeMu.Lock()
	easeFuncs[name] = fn
	easeMu.Unlock()
}

// HasEase reports whether name resolves to a registered easing.
func HasEase(name string) bool {
	easeMu.RLock()
	_, ok := easeFuncs[name]
	easeMu.RUnlock()
	return ok
}

func lookupEase(name string) EaseFunc {
	if name == "" {
		return easeLinear
	}
	easeMu.RLock()
	fn, ok := easeFuncs[name]
	easeMu.RUnlock()
	if !ok {
		logger.Warn("unknown easing, using linear", "name", name)
		return easeLinear
	}
	return fn
}

func easeLinear(t float64) float64 { return t }

// fromTween adapts a Penner (t, b, c, d) tween function to unit progress.
func fromTween(fn ease.TweenFunc) EaseFunc {
	return func(t float64) float64 {
		return float64(fn(float32(t), 0, 1, 1))
	}
}

func init() {
	// Smooth polynomial families, evaluated in float64.
	for name, fn := range map[string]EaseFunc{
		"linear":       fease.Linear,
		"in-quad":      fease.InQuad,
		"out-quad":     fease.OutQuad,
		"in-out-quad":  fease.InOutQuad,
		"in-cubic":     fease.InCubic,
		"out-cubic":    fease.OutCubic,
		"in-out-cubic": fease.InOutCubic,
		"in-sine":      fease.InSine,
		"out-sine":     fease.OutSine,
		"in-out-sine":  fease.InOutSine,
	} {
		easeFuncs[name] = fn
	}
	// Penner families.
	for name, fn := range map[string]ease.TweenFunc{
		"out-in-quad":    ease.OutInQuad,
		"out-in-cubic":   ease.OutInCubic,
		"out-in-sine":    ease.OutInSine,
		"in-quart":       ease.InQuart,
		"out-quart":      ease.OutQuart,
		"in-out-quart":   ease.InOutQuart,
		"in-quint":       ease.InQuint,
		"out-quint":      ease.OutQuint,
		"in-out-quint":   ease.InOutQuint,
		"in-expo":        ease.InExpo,
		"out-expo":       ease.OutExpo,
		"in-out-expo":    ease.InOutExpo,
		"in-circ":        ease.InCirc,
		"out-circ":       ease.OutCirc,
		"in-out-circ":    ease.InOutCirc,
		"in-back":        ease.InBack,
		"out-back":       ease.OutBack,
		"in-out-back":    ease.InOutBack,
		"in-elastic":     ease.InElastic,
		"out-elastic":    ease.OutElastic,
		"in-out-elastic": ease.InOutElastic,
		"in-bounce":      ease.InBounce,
		"out-bounce":     ease.OutBounce,
		"in-out-bounce":  ease.InOutBounce,
	} {
		easeFuncs[name] = fromTween(fn)
	}
}

// --- Cubic bezier ---

// cubicBezier evaluates a CSS cubic-bezier(x1, y1, x2, y2) at x = t.
func cubicBezier(x1, y1, x2, y2, t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	cx := 3 * x1
	bx := 3*(x2-x1) - cx
	ax := 1 - cx - bx
	cy := 3 * y1
	by := 3*(y2-y1) - cy
	ay := 1 - cy - by

	sampleX := func(s float64) float64 { return ((ax*s+bx)*s + cx) * s }
	sampleY := func(s float64) float64 { return ((ay*s+by)*s + cy) * s }
	slopeX := func(s float64) float64 { return (3*ax*s+2*bx)*s + cx }

	// Newton first, bisection when the slope is too flat.
	s := t
	for i := 0; i < 8; i++ {
		dx := sampleX(s) - t
		if math.Abs(dx) < 1e-7 {
			return sampleY(s)
		}
		d := slopeX(s)
		if math.Abs(d) < 1e-6 {
			break
		}
		s -= dx / d
	}
	lo, hi := 0.0, 1.0
	s = t
	for i := 0; i < 32; i++ {
		x := sampleX(s)
		if math.Abs(x-t) < 1e-7 {
			break
		}
		if x < t {
			lo = s
		} else {
			hi = s
		}
		s = (lo + hi) / 2
	}
	return sampleY(s)
}
