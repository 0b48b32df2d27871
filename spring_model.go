package sway

import (
	"math"
	"time"
)

const (
	minResponse     = 1e-4
	minDampingRatio = 1e-4
	maxDampingRatio = 1e4

	// DefaultZeroThreshold is the distance under which a spring counts as
	// having arrived.
	DefaultZeroThreshold = 1.0 / 256

	maxSpringDuration = 300 * time.Second
	velocityStep      = 1e-6 // seconds, forward-difference step
	frameInterval     = 1.0 / 60
)

// SpringState is the part of a running spring a successor may inherit.
type SpringState struct {
	Value          Value
	Velocity       Value
	RemainingDelay time.Duration
}

// springModel is a damped harmonic oscillator. Displacement is measured from
// the rest position: x(t) = x0*A(t) + v0*B(t).
type springModel struct {
	response        float64 // seconds per undamped oscillation
	dampingRatio    float64
	initialOffset   Value
	initialVelocity Value

	// derived by calculate()
	omega  float64 // natural angular frequency
	omegaD float64 // damped angular frequency (underdamped)
	r1, r2 float64 // real roots (overdamped)
	regime int
}

const (
	underdamped = iota
	criticallyDamped
	overdamped
)

// calculate derives the regime and frequencies from response and damping.
func (m *springModel) calculate() {
	m.response = math.Max(m.response, minResponse)
	m.dampingRatio = math.Max(minDampingRatio, math.Min(m.dampingRatio, maxDampingRatio))
	m.omega = 2 * math.Pi / m.response
	z := m.dampingRatio
	switch {
	case z < 1:
		m.regime = underdamped
		m.omegaD = m.omega * math.Sqrt(1-z*z)
	case z == 1:
		m.regime = criticallyDamped
	default:
		m.regime = overdamped
		s := math.Sqrt(z*z - 1)
		m.r1 = -m.omega * (z - s)
		m.r2 = -m.omega * (z + s)
	}
}

// coefficients returns A(t) and B(t).
func (m *springModel) coefficients(t float64) (a, b float64) {
	w := m.omega
	switch m.regime {
	case underdamped:
		decay := math.Exp(-m.dampingRatio * w * t)
		c, s := math.Cos(m.omegaD*t), math.Sin(m.omegaD*t)
		a = decay * (c + m.dampingRatio*w/m.omegaD*s)
		b = decay * s / m.omegaD
	case criticallyDamped:
		decay := math.Exp(-w * t)
		a = decay * (1 + w*t)
		b = t * decay
	default:
		e1, e2 := math.Exp(m.r1*t), math.Exp(m.r2*t)
		d := m.r1 - m.r2
		a = (-m.r2*e1 + m.r1*e2) / d
		b = (e1 - e2) / d
	}
	return a, b
}

// displacement returns the offset from rest t seconds after the start.
func (m *springModel) displacement(t float64) Value {
	if t <= 0 {
		return m.initialOffset
	}
	a, b := m.coefficients(t)
	return m.initialOffset.Scale(a).Add(m.initialVelocity.Scale(b))
}

// velocity estimates the instantaneous velocity at t with a 1µs forward
// difference.
func (m *springModel) velocity(t float64) Value {
	return m.displacement(t + velocityStep).Sub(m.displacement(t)).Scale(1 / velocityStep)
}

// estimateDuration returns the time until the displacement stays within
// threshold.
func (m *springModel) estimateDuration(threshold float64) time.Duration {
	if threshold <= 0 {
		threshold = DefaultZeroThreshold
	}
	x0 := norm(m.initialOffset)
	v0 := norm(m.initialVelocity)
	if x0 <= threshold && v0*frameInterval <= threshold {
		return 0
	}
	maxSec := maxSpringDuration.Seconds()
	var sec float64
	if m.regime == underdamped {
		// The envelope bounds every future oscillation.
		zw := m.dampingRatio * m.omega
		amp := math.Hypot(x0, (v0+zw*x0)/m.omegaD)
		sec = math.Log(amp/threshold) / zw
	} else {
		sec = maxSec
		for t := 0.0; t <= maxSec; t += frameInterval {
			if norm(m.displacement(t)) <= threshold && norm(m.velocity(t))*frameInterval <= threshold {
				sec = t
				break
			}
		}
	}
	if math.IsNaN(sec) || sec < 0 {
		sec = 0
	}
	if sec > maxSec {
		sec = maxSec
	}
	return time.Duration(sec * float64(time.Second))
}

// norm is the largest absolute component of v.
func norm(v Value) float64 {
	if v == nil {
		return 0
	}
	n := 0.0
	for _, c := range v.components() {
		n = math.Max(n, math.Abs(c))
	}
	return n
}
