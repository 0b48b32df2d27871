package sway

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ValueKind tags the concrete type behind a Value.
type ValueKind uint8

const (
	KindInvalid ValueKind = iota
	KindFloat             // Float
	KindVec2              // Vec2: translate, scale, pivot
	KindRect              // Rect: bounds and frame
	KindColor             // Color: background and foreground
)

var kindNames = [...]string{
	KindInvalid: "invalid",
	KindFloat:   "float",
	KindVec2:    "vec2",
	KindRect:    "rect",
	KindColor:   "color",
}

func (k ValueKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

func parseKind(s string) ValueKind {
	for k, name := range kindNames {
		if name == s {
			return ValueKind(k)
		}
	}
	return KindInvalid
}

// Zero returns the additive identity for the kind, or nil for KindInvalid.
func (k ValueKind) Zero() Value {
	switch k {
	case KindFloat:
		return Float(0)
	case KindVec2:
		return Vec2{}
	case KindRect:
		return Rect{}
	case KindColor:
		return Color{}
	}
	return nil
}

// Value is an animatable property value. The arithmetic is total: combining
// two values of different kinds never panics, the receiver is returned
// unchanged and Equal reports false.
type Value interface {
	Kind() ValueKind
	Add(Value) Value
	Sub(Value) Value
	Scale(float64) Value
	Equal(Value) bool
	// NearEqual reports whether every component differs by at most threshold.
	NearEqual(other Value, threshold float64) bool
	// Valid reports whether every component is finite.
	Valid() bool

	components() []float64
}

// Lerp returns from + (to-from)*f.
func Lerp(from, to Value, f float64) Value {
	return from.Add(to.Sub(from).Scale(f))
}

// valueFromComponents rebuilds a value from its kind and flat components.
func valueFromComponents(kind ValueKind, c []float64) (Value, error) {
	need := map[ValueKind]int{KindFloat: 1, KindVec2: 2, KindRect: 4, KindColor: 4}[kind]
	if need == 0 {
		return nil, fmt.Errorf("value kind %q: %w", kind, ErrInvalidValue)
	}
	if len(c) != need {
		return nil, fmt.Errorf("%s needs %d components, got %d: %w", kind, need, len(c), ErrInvalidValue)
	}
	switch kind {
	case KindFloat:
		return Float(c[0]), nil
	case KindVec2:
		return Vec2{c[0], c[1]}, nil
	case KindRect:
		return Rect{c[0], c[1], c[2], c[3]}, nil
	default:
		return Color{c[0], c[1], c[2], c[3]}, nil
	}
}

func nearEqual(a, b []float64, threshold float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > threshold {
			return false
		}
	}
	return true
}

func allFinite(c []float64) bool {
	for _, v := range c {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// --- Float ---

// Float is a scalar property value (alpha, rotation, corner radius).
type Float float64

func (f Float) Kind() ValueKind { return KindFloat }

func (f Float) Add(o Value) Value {
	if g, ok := o.(Float); ok {
		return f + g
	}
	return f
}

func (f Float) Sub(o Value) Value {
	if g, ok := o.(Float); ok {
		return f - g
	}
	return f
}

func (f Float) Scale(s float64) Value { return Float(float64(f) * s) }

func (f Float) Equal(o Value) bool {
	g, ok := o.(Float)
	return ok && f == g
}

func (f Float) NearEqual(o Value, threshold float64) bool {
	return o != nil && o.Kind() == KindFloat && nearEqual(f.components(), o.components(), threshold)
}

func (f Float) Valid() bool           { return allFinite(f.components()) }
func (f Float) components() []float64 { return []float64{float64(f)} }

// --- Vec2 ---

// Vec2 is a 2D vector used for translation, scale and pivot values.
type Vec2 struct {
	X, Y float64
}

func (v Vec2) Kind() ValueKind { return KindVec2 }

func (v Vec2) Add(o Value) Value {
	if w, ok := o.(Vec2); ok {
		return Vec2{v.X + w.X, v.Y + w.Y}
	}
	return v
}

func (v Vec2) Sub(o Value) Value {
	if w, ok := o.(Vec2); ok {
		return Vec2{v.X - w.X, v.Y - w.Y}
	}
	return v
}

func (v Vec2) Scale(s float64) Value { return Vec2{v.X * s, v.Y * s} }

func (v Vec2) Equal(o Value) bool {
	w, ok := o.(Vec2)
	return ok && v == w
}

func (v Vec2) NearEqual(o Value, threshold float64) bool {
	return o != nil && o.Kind() == KindVec2 && nearEqual(v.components(), o.components(), threshold)
}

func (v Vec2) Valid() bool           { return allFinite(v.components()) }
func (v Vec2) components() []float64 { return []float64{v.X, v.Y} }

// --- Rect ---

// Rect is an axis-aligned rectangle used for bounds and frame. The origin is
// the top-left corner with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

func (r Rect) Kind() ValueKind { return KindRect }

func (r Rect) Add(o Value) Value {
	if s, ok := o.(Rect); ok {
		return Rect{r.X + s.X, r.Y + s.Y, r.Width + s.Width, r.Height + s.Height}
	}
	return r
}

func (r Rect) Sub(o Value) Value {
	if s, ok := o.(Rect); ok {
		return Rect{r.X - s.X, r.Y - s.Y, r.Width - s.Width, r.Height - s.Height}
	}
	return r
}

func (r Rect) Scale(k float64) Value {
	return Rect{r.X * k, r.Y * k, r.Width * k, r.Height * k}
}

func (r Rect) Equal(o Value) bool {
	s, ok := o.(Rect)
	return ok && r == s
}

func (r Rect) NearEqual(o Value, threshold float64) bool {
	return o != nil && o.Kind() == KindRect && nearEqual(r.components(), o.components(), threshold)
}

func (r Rect) Valid() bool           { return allFinite(r.components()) }
func (r Rect) components() []float64 { return []float64{r.X, r.Y, r.Width, r.Height} }

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// --- Color ---

// Color represents an RGBA color with components nominally in [0, 1]. Not
// premultiplied. Intermediate animation values may leave the range (springs
// overshoot); Clamped brings them back.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is opaque white.
var ColorWhite = Color{1, 1, 1, 1}

// ParseHexColor parses "#rgb", "#rrggbb" or "#rrggbbaa".
func ParseHexColor(s string) (Color, error) {
	alpha := 1.0
	if len(s) == 9 && strings.HasPrefix(s, "#") {
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("parse color %q: %w", s, err)
		}
		alpha = float64(a) / 255
		s = s[:7]
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	return Color{c.R, c.G, c.B, alpha}, nil
}

// Hex formats the color as "#rrggbbaa".
func (c Color) Hex() string {
	cc := c.Clamped()
	rgb := colorful.Color{R: cc.R, G: cc.G, B: cc.B}.Hex()
	return fmt.Sprintf("%s%02x", rgb, uint8(cc.A*255+0.5))
}

// Clamped limits every component to [0, 1].
func (c Color) Clamped() Color {
	cl := func(v float64) float64 { return math.Max(0, math.Min(1, v)) }
	return Color{cl(c.R), cl(c.G), cl(c.B), cl(c.A)}
}

// BlendHcl mixes c toward to in HCL space, which keeps perceived lightness
// steadier than component-wise interpolation.
func (c Color) BlendHcl(to Color, t float64) Color {
	a := colorful.Color{R: c.R, G: c.G, B: c.B}.Clamped()
	b := colorful.Color{R: to.R, G: to.G, B: to.B}.Clamped()
	m := a.BlendHcl(b, t).Clamped()
	return Color{m.R, m.G, m.B, c.A + (to.A-c.A)*t}
}

func (c Color) String() string { return c.Hex() }

func (c Color) Kind() ValueKind { return KindColor }

func (c Color) Add(o Value) Value {
	if d, ok := o.(Color); ok {
		return Color{c.R + d.R, c.G + d.G, c.B + d.B, c.A + d.A}
	}
	return c
}

func (c Color) Sub(o Value) Value {
	if d, ok := o.(Color); ok {
		return Color{c.R - d.R, c.G - d.G, c.B - d.B, c.A - d.A}
	}
	return c
}

func (c Color) Scale(k float64) Value {
	return Color{c.R * k, c.G * k, c.B * k, c.A * k}
}

func (c Color) Equal(o Value) bool {
	d, ok := o.(Color)
	return ok && c == d
}

func (c Color) NearEqual(o Value, threshold float64) bool {
	return o != nil && o.Kind() == KindColor && nearEqual(c.components(), o.components(), threshold)
}

func (c Color) Valid() bool           { return allFinite(c.components()) }
func (c Color) components() []float64 { return []float64{c.R, c.G, c.B, c.A} }
