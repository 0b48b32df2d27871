package sway

import "fmt"

// ModifierType names the attribute a modifier drives. The set is closed;
// ModifierCustom covers values drawn by user code.
type ModifierType uint8

const (
	ModifierBounds ModifierType = iota + 1
	ModifierFrame
	ModifierTranslate
	ModifierScale
	ModifierRotation
	ModifierAlpha
	ModifierBackgroundColor
	ModifierForegroundColor
	ModifierCornerRadius
	ModifierCustom
)

var modifierNames = map[ModifierType]string{
	ModifierBounds:          "bounds",
	ModifierFrame:           "frame",
	ModifierTranslate:       "translate",
	ModifierScale:           "scale",
	ModifierRotation:        "rotation",
	ModifierAlpha:           "alpha",
	ModifierBackgroundColor: "background-color",
	ModifierForegroundColor: "foreground-color",
	ModifierCornerRadius:    "corner-radius",
	ModifierCustom:          "custom",
}

func (t ModifierType) String() string {
	if s, ok := modifierNames[t]; ok {
		return s
	}
	return fmt.Sprintf("modifier(%d)", uint8(t))
}

func parseModifierType(s string) ModifierType {
	for t, name := range modifierNames {
		if name == s {
			return t
		}
	}
	return 0
}

// ValueKind is the value kind the attribute holds. Custom modifiers accept
// any kind.
func (t ModifierType) ValueKind() ValueKind {
	switch t {
	case ModifierBounds, ModifierFrame:
		return KindRect
	case ModifierTranslate, ModifierScale:
		return KindVec2
	case ModifierRotation, ModifierAlpha, ModifierCornerRadius:
		return KindFloat
	case ModifierBackgroundColor, ModifierForegroundColor:
		return KindColor
	}
	return KindInvalid
}

// PathAnimatable reports whether a motion path may drive the attribute.
func (t ModifierType) PathAnimatable() bool {
	return t == ModifierBounds || t == ModifierFrame || t == ModifierTranslate
}

// RenderProperty is the render-side storage of one property. It remembers
// whether it changed since the last draw pass.
type RenderProperty struct {
	id    ID
	value Value
	dirty bool
}

func newRenderProperty(id ID, v Value) *RenderProperty {
	return &RenderProperty{id: id, value: v, dirty: true}
}

func (p *RenderProperty) ID() ID        { return p.id }
func (p *RenderProperty) Get() Value    { return p.value }
func (p *RenderProperty) IsDirty() bool { return p.dirty }

// Set stores v and marks the property dirty. Values of another kind are
// ignored.
func (p *RenderProperty) Set(v Value) {
	if v == nil || (p.value != nil && v.Kind() != p.value.Kind()) {
		logger.Warn("render property kind mismatch", "property", p.id)
		return
	}
	p.value = v
	p.dirty = true
}

// RenderModifier applies one property to a node's RenderProperties.
type RenderModifier struct {
	typ      ModifierType
	property *RenderProperty
}

func (m *RenderModifier) Type() ModifierType        { return m.typ }
func (m *RenderModifier) Property() *RenderProperty { return m.property }

// Update writes a value from the UI side. A delta is added to the current
// value; otherwise the value replaces it.
func (m *RenderModifier) Update(v Value, isDelta bool) {
	if isDelta {
		m.property.Set(m.property.Get().Add(v))
		return
	}
	m.property.Set(v)
}

// Apply copies the property value into props.
func (m *RenderModifier) Apply(props *RenderProperties) {
	v := m.property.Get()
	switch m.typ {
	case ModifierBounds:
		props.Bounds, _ = v.(Rect)
	case ModifierFrame:
		props.Frame, _ = v.(Rect)
	case ModifierTranslate:
		props.Translate, _ = v.(Vec2)
	case ModifierScale:
		props.Scale, _ = v.(Vec2)
	case ModifierRotation:
		props.Rotation = floatOf(v)
	case ModifierAlpha:
		props.Alpha = floatOf(v)
	case ModifierBackgroundColor:
		props.BackgroundColor, _ = v.(Color)
	case ModifierForegroundColor:
		props.ForegroundColor, _ = v.(Color)
	case ModifierCornerRadius:
		props.CornerRadius = floatOf(v)
	case ModifierCustom:
		if props.Custom == nil {
			props.Custom = make(map[ID]Value)
		}
		props.Custom[m.property.id] = v
	}
}

func floatOf(v Value) float64 {
	f, _ := v.(Float)
	return float64(f)
}

func vec2Of(v Value) Vec2 {
	r, _ := v.(Vec2)
	return r
}

func rectOf(v Value) Rect {
	r, _ := v.(Rect)
	return r
}

func colorOf(v Value) Color {
	c, _ := v.(Color)
	return c
}

// RenderProperties is the resolved state a node is drawn with.
type RenderProperties struct {
	Bounds          Rect
	Frame           Rect
	Translate       Vec2
	Scale           Vec2
	Rotation        float64
	Alpha           float64
	BackgroundColor Color
	ForegroundColor Color
	CornerRadius    float64
	Custom          map[ID]Value
}

// DefaultRenderProperties returns the identity state: unit scale, opaque.
func DefaultRenderProperties() RenderProperties {
	return RenderProperties{Scale: Vec2{1, 1}, Alpha: 1}
}
