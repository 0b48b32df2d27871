package sway

import (
	"math"
	"testing"
	"time"
)

// --- Spring model ---

func TestSpringModelRegimes(t *testing.T) {
	tests := []struct {
		name    string
		damping float64
	}{
		{"underdamped", 0.5},
		{"critical", 1},
		{"overdamped", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := springModel{response: 0.4, dampingRatio: tt.damping, initialOffset: Float(-100), initialVelocity: Float(0)}
			m.calculate()
			if got := floatOf(m.displacement(0)); math.Abs(got+100) > 1e-9 {
				t.Errorf("displacement(0) = %v, want -100", got)
			}
			if got := floatOf(m.velocity(0)); math.Abs(got) > 0.1 {
				t.Errorf("velocity(0) = %v, want 0", got)
			}
			d := m.estimateDuration(DefaultZeroThreshold)
			if d <= 0 || d >= maxSpringDuration {
				t.Fatalf("estimateDuration = %v", d)
			}
			if got := floatOf(m.displacement(d.Seconds() + 0.5)); math.Abs(got) > 0.01 {
				t.Errorf("displacement after settling = %v, want ~0", got)
			}
		})
	}
}

func TestSpringModelInitialVelocity(t *testing.T) {
	m := springModel{response: 0.5, dampingRatio: 0.8, initialOffset: Vec2{0, 0}, initialVelocity: Vec2{50, -20}}
	m.calculate()
	v := vec2Of(m.velocity(0))
	if math.Abs(v.X-50) > 0.01 || math.Abs(v.Y+20) > 0.01 {
		t.Errorf("velocity(0) = %+v, want {50 -20}", v)
	}
	if d := vec2Of(m.displacement(0.01)); d.X <= 0 || d.Y >= 0 {
		t.Errorf("displacement(0.01) = %+v, want moving along the velocity", d)
	}
}

// --- Time-based spring ---

func TestSpringSettlesAtEnd(t *testing.T) {
	ctx, n, prop := newTestRenderNode(t, Float(0))
	a := attachSpec(t, n, springSpec(nextID(10), prop, Float(0), Float(100), SpringCurve(0.3, 1, 0)))

	now := int64(0)
	for i := 0; i < 600 && a.State() != StateFinished; i++ {
		ctx.Tick(now)
		now += 16 * ms
	}
	if a.State() != StateFinished {
		t.Fatal("spring never finished")
	}
	if got := floatProp(n, prop); math.Abs(got-100) > 1e-9 {
		t.Errorf("value = %v, want 100", got)
	}
}

func TestSpringRetargetIsContinuous(t *testing.T) {
	ctx, n, prop := newTestRenderNode(t, Float(0))
	first := attachSpec(t, n, springSpec(nextID(10), prop, Float(0), Float(100), SpringCurve(0.5, 0.8, 0))).(*springAnimation)

	for now := int64(0); now <= 192*ms; now += 16 * ms {
		ctx.Tick(now)
	}
	before := floatProp(n, prop)
	st := first.SpringState()
	vel := floatOf(st.Velocity)
	if math.Abs(floatOf(st.Value)-before) > 1e-9 {
		t.Fatalf("SpringState value = %v, want %v", st.Value, before)
	}

	second := attachSpec(t, n, springSpec(nextID(11), prop, Float(100), Float(50), SpringCurve(0.5, 0.8, 0))).(*springAnimation)

	if first.State() != StateFinished {
		t.Errorf("predecessor state = %s, want finished", first.State())
	}
	if got := floatProp(n, prop); math.Abs(got-before) > 1e-9 {
		t.Errorf("predecessor finished at %v, want its current position %v", got, before)
	}

	ctx.Tick(193 * ms)
	after := floatProp(n, prop)
	want := before + vel*0.001
	if math.Abs(after-want) > 0.05 {
		t.Errorf("value 1ms after retarget = %v, want ~%v (was %v, velocity %v)", after, want, before, vel)
	}
	if second.State() != StateRunning {
		t.Errorf("successor state = %s, want running", second.State())
	}

	// The successor ends at its own target.
	for now := 209 * ms; second.State() != StateFinished && now < 20000*ms; now += 16 * ms {
		ctx.Tick(now)
	}
	if got := floatProp(n, prop); math.Abs(got-50) > 1e-9 {
		t.Errorf("final value = %v, want 50", got)
	}
}

func TestSpringBlendResponse(t *testing.T) {
	ctx, n, prop := newTestRenderNode(t, Float(0))
	attachSpec(t, n, springSpec(nextID(10), prop, Float(0), Float(100), SpringCurve(0.3, 1, 0)))
	ctx.Tick(0)
	ctx.Tick(25 * ms)
	ctx.Tick(50 * ms)

	second := attachSpec(t, n, springSpec(nextID(11), prop, Float(100), Float(200), SpringCurve(0.6, 1, 200*time.Millisecond))).(*springAnimation)
	if got := second.Response(); math.Abs(got-0.3) > 1e-9 {
		t.Fatalf("response at attach = %v, want inherited 0.3", got)
	}

	tests := []struct {
		now  int64
		want float64
	}{
		{100 * ms, 0.375},
		{150 * ms, 0.45},
		{200 * ms, 0.525},
		{250 * ms, 0.6},
		{300 * ms, 0.6},
	}
	for _, tt := range tests {
		ctx.Tick(tt.now)
		if got := second.Response(); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("response at %dms = %v, want %v", tt.now/ms, got, tt.want)
		}
	}
}

func TestSpringPredecessorFinishedDoesNotBlend(t *testing.T) {
	ctx, n, prop := newTestRenderNode(t, Float(0))
	first := attachSpec(t, n, springSpec(nextID(10), prop, Float(0), Float(1), SpringCurve(0.1, 1, 0)))
	for now := int64(0); first.State() != StateFinished && now < 10000*ms; now += 16 * ms {
		ctx.Tick(now)
	}
	second := attachSpec(t, n, springSpec(nextID(11), prop, Float(1), Float(2), SpringCurve(0.4, 1, 200*time.Millisecond))).(*springAnimation)
	if got := second.Response(); math.Abs(got-0.4) > 1e-9 {
		t.Errorf("response = %v, want own 0.4", got)
	}
}

func TestSpringSetFractionUnsupported(t *testing.T) {
	_, n, prop := newTestRenderNode(t, Float(0))
	a := attachSpec(t, n, springSpec(nextID(10), prop, Float(0), Float(10), CurveDefaultSpring))
	n.Animate(0)
	n.Animate(16 * ms)
	v := floatProp(n, prop)
	a.Pause()
	a.SetFraction(0.9)
	if got := floatProp(n, prop); got != v {
		t.Errorf("SetFraction moved spring from %v to %v", v, got)
	}
}

// --- Interpolating spring ---

func TestInterpolatingSpringEndsExactly(t *testing.T) {
	_, n, prop := newTestRenderNode(t, Float(0))
	spec := springSpec(nextID(10), prop, Float(0), Float(37.5), TimingCurve{Kind: CurveInterpolatingSpring, Response: 0.4, DampingRatio: 0.6})
	spec.Kind = AnimationInterpolatingSpring
	spec.Additive = false
	a := attachSpec(t, n, spec)

	n.Animate(0)
	n.Animate(16 * ms)
	a.Pause()
	a.SetFraction(1)
	if got := floatProp(n, prop); got != 37.5 {
		t.Errorf("value at fraction 1 = %v, want exactly 37.5", got)
	}

	a.Resume()
	now := int64(100 * ms)
	for i := 0; i < 10000 && a.State() != StateFinished; i++ {
		n.Animate(now)
		now += 16 * ms
	}
	if got := floatProp(n, prop); got != 37.5 {
		t.Errorf("value at end = %v, want exactly 37.5", got)
	}
}

func TestInterpolatingSpringLogicallyFinished(t *testing.T) {
	ctx, n, prop := newTestRenderNode(t, Float(0))
	// A short distance comes to rest well before the normalized estimate.
	spec := springSpec(nextID(10), prop, Float(0), Float(0.1), TimingCurve{Kind: CurveInterpolatingSpring, Response: 0.3, DampingRatio: 1})
	spec.Kind = AnimationInterpolatingSpring
	spec.LogicallyFinished = true
	a := attachSpec(t, n, spec)

	var logically, finished int
	var logicalFirst bool
	for now := int64(0); a.State() != StateFinished && now < 30000*ms; now += 16 * ms {
		ctx.Tick(now)
		_, msgs := ctx.takeUIMessages()
		for _, cmd := range msgs[1] {
			switch cmd.(*AnimationCallback).Event {
			case CallbackLogicallyFinished:
				logically++
				logicalFirst = finished == 0
			case CallbackFinished:
				finished++
			}
		}
	}
	if logically != 1 || finished != 1 {
		t.Fatalf("logically = %d, finished = %d, want 1 and 1", logically, finished)
	}
	if !logicalFirst {
		t.Error("logically-finished arrived after finished")
	}
}
