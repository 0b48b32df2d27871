package sway

import "math"

// MotionPath is a polyline a position travels along. Begin and End select
// the part of the path used, as fractions of its length; End defaults to 1.
type MotionPath struct {
	Points []Vec2  `json:"points" yaml:"points"`
	Begin  float64 `json:"begin" yaml:"begin"`
	End    float64 `json:"end" yaml:"end"`
}

// NewMotionPath returns a path through points covering its whole length.
func NewMotionPath(points ...Vec2) *MotionPath {
	return &MotionPath{Points: points, End: 1}
}

// progress maps animation progress to a fraction of the path length.
func (p *MotionPath) progress(f float64) float64 {
	end := p.End
	if end == 0 && p.Begin == 0 {
		end = 1
	}
	return p.Begin + (end-p.Begin)*f
}

func (p *MotionPath) length() float64 {
	total := 0.0
	for i := 1; i < len(p.Points); i++ {
		total += math.Hypot(p.Points[i].X-p.Points[i-1].X, p.Points[i].Y-p.Points[i-1].Y)
	}
	return total
}

// pointAt returns the point at fraction f of the path's arc length.
func (p *MotionPath) pointAt(f float64) Vec2 {
	switch len(p.Points) {
	case 0:
		return Vec2{}
	case 1:
		return p.Points[0]
	}
	f = min(max(f, 0), 1)
	target := f * p.length()
	walked := 0.0
	for i := 1; i < len(p.Points); i++ {
		a, b := p.Points[i-1], p.Points[i]
		seg := math.Hypot(b.X-a.X, b.Y-a.Y)
		if seg > 0 && walked+seg >= target {
			t := (target - walked) / seg
			return Vec2{a.X + (b.X-a.X)*t, a.Y + (b.Y-a.Y)*t}
		}
		walked += seg
	}
	return p.Points[len(p.Points)-1]
}
