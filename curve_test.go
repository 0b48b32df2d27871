package sway

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestCurveInterpolateEndpoints(t *testing.T) {
	curves := map[string]TimingCurve{
		"linear":      CurveLinear,
		"ease":        CurveEase,
		"ease-in":     CurveEaseIn,
		"ease-in-out": CurveEaseInOut,
		"out-cubic":   EaseCurve("out-cubic"),
		"in-out-back": EaseCurve("in-out-back"),
	}
	for name, c := range curves {
		t.Run(name, func(t *testing.T) {
			if got := c.Interpolate(0); math.Abs(got) > 1e-6 {
				t.Errorf("Interpolate(0) = %v", got)
			}
			if got := c.Interpolate(1); math.Abs(got-1) > 1e-6 {
				t.Errorf("Interpolate(1) = %v", got)
			}
		})
	}
}

func TestCurveShapes(t *testing.T) {
	if got := CurveLinear.Interpolate(0.3); got != 0.3 {
		t.Errorf("linear(0.3) = %v", got)
	}
	if got := CurveEaseIn.Interpolate(0.5); got >= 0.5 {
		t.Errorf("ease-in(0.5) = %v, want below 0.5", got)
	}
	if got := CurveEaseOut.Interpolate(0.5); got <= 0.5 {
		t.Errorf("ease-out(0.5) = %v, want above 0.5", got)
	}
	if got := CurveDefaultSpring.Interpolate(0.4); got != 0.4 {
		t.Errorf("spring curves should pass fractions through, got %v", got)
	}
}

func TestRegisterEase(t *testing.T) {
	RegisterEase("test-step", func(t float64) float64 {
		if t < 0.5 {
			return 0
		}
		return 1
	})
	if !HasEase("test-step") {
		t.Fatal("HasEase = false after RegisterEase")
	}
	c := EaseCurve("test-step")
	if c.Interpolate(0.4) != 0 || c.Interpolate(0.6) != 1 {
		t.Error("registered easing not used")
	}
	if got := EaseCurve("no-such-ease").Interpolate(0.25); got != 0.25 {
		t.Errorf("unknown easing = %v, want linear fallback", got)
	}
}

func TestCurveValidate(t *testing.T) {
	tests := []struct {
		name  string
		curve TimingCurve
		ok    bool
	}{
		{"linear", CurveLinear, true},
		{"bezier", CurveEaseInOut, true},
		{"bezier x out of range", BezierCurve(1.5, 0, 0.5, 1), false},
		{"bezier NaN", BezierCurve(0.5, math.NaN(), 0.5, 1), false},
		{"spring", SpringCurve(0.5, 0.8, 100*time.Millisecond), true},
		{"spring zero response", SpringCurve(0, 0.8, 0), false},
		{"spring negative damping", SpringCurve(0.5, -1, 0), false},
		{"interpolating spring", InterpolatingSpringCurve(1, 100, 10, 0), true},
		{"unknown kind", TimingCurve{Kind: CurveKind(9)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.curve.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidCurve) {
				t.Errorf("Validate err = %v, want ErrInvalidCurve", err)
			}
		})
	}
}

func TestInterpolatingSpringCurveParameters(t *testing.T) {
	c := InterpolatingSpringCurve(1, 100, 20, 2)
	if c.Kind != CurveInterpolatingSpring {
		t.Fatalf("kind = %s", c.Kind)
	}
	if want := 2 * math.Pi / 10; math.Abs(c.Response-want) > 1e-12 {
		t.Errorf("response = %v, want %v", c.Response, want)
	}
	if math.Abs(c.DampingRatio-1) > 1e-12 {
		t.Errorf("damping ratio = %v, want 1", c.DampingRatio)
	}
	if c.InitialVelocity != 2 {
		t.Errorf("initial velocity = %v, want 2", c.InitialVelocity)
	}
}

func TestParamFor(t *testing.T) {
	tests := []struct {
		name     string
		protocol TimingProtocol
		curve    TimingCurve
		want     ImplicitParamKind
	}{
		{"curve", DefaultTimingProtocol(), CurveEaseIn, ParamCurve},
		{"zero duration", ImmediateTimingProtocol(), CurveEaseIn, ParamCancel},
		{"spring ignores duration", ImmediateTimingProtocol(), CurveDefaultSpring, ParamSpring},
		{"interpolating spring", DefaultTimingProtocol(), InterpolatingSpringCurve(1, 50, 5, 0), ParamInterpolatingSpring},
	}
	for _, tt := range tests {
		if got := paramFor(tt.protocol, tt.curve).Kind(); got != tt.want {
			t.Errorf("%s: param = %s, want %s", tt.name, got, tt.want)
		}
	}
}
