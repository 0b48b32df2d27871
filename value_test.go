package sway

import (
	"math"
	"testing"
)

func TestValueArithmetic(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		sum  Value
	}{
		{"float", Float(1.5), Float(2), Float(3.5)},
		{"vec2", Vec2{1, 2}, Vec2{3, 4}, Vec2{4, 6}},
		{"rect", Rect{0, 0, 10, 10}, Rect{1, 1, 5, 5}, Rect{1, 1, 15, 15}},
		{"color", Color{0.1, 0.2, 0.3, 1}, Color{0.1, 0.1, 0.1, 0}, Color{0.2, 0.3, 0.4, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Add(tt.b); !got.NearEqual(tt.sum, 1e-12) {
				t.Errorf("Add = %v, want %v", got, tt.sum)
			}
			if got := tt.sum.Sub(tt.b); !got.NearEqual(tt.a, 1e-12) {
				t.Errorf("Sub = %v, want %v", got, tt.a)
			}
			if got := Lerp(tt.a, tt.sum, 0.5); !got.NearEqual(tt.a.Add(tt.b.Scale(0.5)), 1e-12) {
				t.Errorf("Lerp = %v", got)
			}
		})
	}
}

func TestValueMixedKinds(t *testing.T) {
	f := Float(1)
	if got := f.Add(Vec2{1, 1}); got != f {
		t.Errorf("Float + Vec2 = %v, want receiver unchanged", got)
	}
	if (Vec2{1, 1}).Equal(Rect{1, 1, 0, 0}) {
		t.Error("Vec2 equal to Rect")
	}
	if (Rect{}).NearEqual(Color{}, 1) {
		t.Error("Rect near-equal to Color")
	}
}

func TestValueValid(t *testing.T) {
	tests := []struct {
		v    Value
		want bool
	}{
		{Float(1), true},
		{Float(math.NaN()), false},
		{Vec2{math.Inf(-1), 0}, false},
		{Rect{0, 0, 1, 1}, true},
		{Color{0, math.NaN(), 0, 1}, false},
	}
	for _, tt := range tests {
		if got := tt.v.Valid(); got != tt.want {
			t.Errorf("%v.Valid() = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestKindZero(t *testing.T) {
	for _, k := range []ValueKind{KindFloat, KindVec2, KindRect, KindColor} {
		z := k.Zero()
		if z.Kind() != k || !z.Equal(z.Scale(5)) {
			t.Errorf("%s.Zero() = %v", k, z)
		}
	}
	if KindInvalid.Zero() != nil {
		t.Error("KindInvalid.Zero() should be nil")
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in   string
		want Color
		err  bool
	}{
		{"#ff0000", Color{1, 0, 0, 1}, false},
		{"#00ff0080", Color{0, 1, 0, 128.0 / 255}, false},
		{"#fff", Color{1, 1, 1, 1}, false},
		{"red", Color{}, true},
		{"#12345g00", Color{}, true},
	}
	for _, tt := range tests {
		got, err := ParseHexColor(tt.in)
		if tt.err {
			if err == nil {
				t.Errorf("ParseHexColor(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseHexColor(%q): %v", tt.in, err)
			continue
		}
		if !got.NearEqual(tt.want, 1e-9) {
			t.Errorf("ParseHexColor(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
	if got := (Color{1, 0, 0, 0.5}).Hex(); got != "#ff000080" {
		t.Errorf("Hex = %q, want #ff000080", got)
	}
}

func TestColorBlendHcl(t *testing.T) {
	a, b := Color{1, 0, 0, 1}, Color{0, 0, 1, 0}
	if got := a.BlendHcl(b, 0); !got.NearEqual(a, 1e-6) {
		t.Errorf("blend at 0 = %+v, want %+v", got, a)
	}
	if got := a.BlendHcl(b, 1); !got.NearEqual(b, 1e-6) {
		t.Errorf("blend at 1 = %+v, want %+v", got, b)
	}
	if got := a.BlendHcl(b, 0.5); math.Abs(got.A-0.5) > 1e-12 {
		t.Errorf("alpha at 0.5 = %v, want 0.5", got.A)
	}
}

func TestRectContains(t *testing.T) {
	r := Rect{10, 10, 20, 20}
	if !r.Contains(15, 15) || r.Contains(5, 15) || r.Contains(31, 20) {
		t.Error("Contains wrong")
	}
}
