package sway

// propertyBase is the UI-side state of one property. Staging is what UI
// code last set; showing is what the UI-side animation of a custom
// property currently displays.
type propertyBase struct {
	id       ID
	node     *Node
	modifier *Modifier

	staging Value
	showing Value

	animatable bool
	custom     bool
}

func (p *propertyBase) get() Value {
	if p.custom && p.showing != nil {
		return p.showing
	}
	return p.staging
}

// set stores v. Inside an implicit scope the write becomes an animation;
// otherwise the render side gets an update, as a delta when animations are
// running on the property so their contributions still add up.
func (p *propertyBase) set(v Value, velocity Value) {
	if v == nil || !v.Valid() {
		logger.Warn("property set rejected", "property", p.id, "err", ErrInvalidValue)
		return
	}
	if p.staging != nil && v.Kind() != p.staging.Kind() {
		logger.Warn("property set rejected: kind mismatch", "property", p.id, "have", p.staging.Kind(), "got", v.Kind())
		return
	}
	if p.staging != nil && v.Equal(p.staging) {
		return
	}
	if p.node == nil || p.node.disposed {
		p.staging = v
		return
	}
	c := p.node.client
	if p.animatable && c.animator.needImplicitAnimation() {
		start := p.staging
		p.staging = v
		c.animator.createImplicitAnimation(p.node, p, start, v, velocity)
		return
	}
	old := p.staging
	p.staging = v
	p.sendUpdate(old, v)
}

func (p *propertyBase) sendUpdate(old, v Value) {
	n := p.node
	if old != nil && n.HasPropertyAnimation(p.id) {
		n.client.enqueue(p.modifier.updateCommand(n.id, v.Sub(old), true), p.custom)
		return
	}
	n.client.enqueue(p.modifier.updateCommand(n.id, v, false), p.custom)
}

// forceSet makes v both the staging and the rendered value immediately.
func (p *propertyBase) forceSet(v Value) {
	p.staging = v
	if p.custom {
		p.showing = v
	}
	if p.node != nil && !p.node.disposed {
		p.node.client.enqueue(p.modifier.updateCommand(p.node.id, v, false), p.custom)
	}
}

// Property is a typed property that is never animated.
type Property[T Value] struct {
	base *propertyBase
}

// ID returns the property id.
func (p *Property[T]) ID() ID { return p.base.id }

// Get returns the showing value of a custom property, otherwise the
// staging value.
func (p *Property[T]) Get() T {
	v, _ := p.base.get().(T)
	return v
}

// Staging returns the value last set.
func (p *Property[T]) Staging() T {
	v, _ := p.base.staging.(T)
	return v
}

// Set stores v. Equal or non-finite values are ignored.
func (p *Property[T]) Set(v T) { p.base.set(v, nil) }

// IsCustom reports whether the property is drawn by user code.
func (p *Property[T]) IsCustom() bool { return p.base.custom }

// AnimatableProperty is a typed property whose writes inside an implicit
// scope become animations.
type AnimatableProperty[T Value] struct {
	Property[T]
}

// SetWithVelocity sets v; a spring animation created by the write starts
// with the given velocity.
func (p *AnimatableProperty[T]) SetWithVelocity(v, velocity T) { p.base.set(v, velocity) }

// Animate prepares an explicit animation of the property from its current
// staging value to to. Nothing happens until the animation is started.
func (p *AnimatableProperty[T]) Animate(to T, protocol TimingProtocol, curve TimingCurve) (*Animation, error) {
	b := p.base
	if b.node == nil || b.node.disposed {
		return nil, ErrNodeNotFound
	}
	return b.node.client.animator.newExplicitAnimation(b.node, b, to, protocol, curve)
}

// Animatable returns the node's property for typ, creating it with the
// attribute's default value on first use. It returns nil when T does not
// match the attribute's value kind.
func Animatable[T Value](n *Node, typ ModifierType) *AnimatableProperty[T] {
	var zero T
	if any(zero) == nil || typ == ModifierCustom || typ.ValueKind() != zero.Kind() {
		return nil
	}
	b := n.builtin(typ, defaultValue(typ))
	if b == nil {
		return nil
	}
	return &AnimatableProperty[T]{Property[T]{base: b}}
}

// AddCustomProperty adds an animatable property drawn by user code. draw
// is called with the showing value whenever it changes; animations of the
// property run on the client.
func AddCustomProperty[T Value](n *Node, initial T, draw func(T)) *AnimatableProperty[T] {
	b := n.addCustom(initial, true, wrapDraw(draw))
	if b == nil {
		return nil
	}
	return &AnimatableProperty[T]{Property[T]{base: b}}
}

// AddStaticProperty adds a custom property that is never animated.
func AddStaticProperty[T Value](n *Node, initial T, draw func(T)) *Property[T] {
	b := n.addCustom(initial, false, wrapDraw(draw))
	if b == nil {
		return nil
	}
	return &Property[T]{base: b}
}

func wrapDraw[T Value](draw func(T)) func(Value) {
	if draw == nil {
		return nil
	}
	return func(v Value) {
		if t, ok := v.(T); ok {
			draw(t)
		}
	}
}

func defaultValue(typ ModifierType) Value {
	d := DefaultRenderProperties()
	switch typ {
	case ModifierScale:
		return d.Scale
	case ModifierAlpha:
		return Float(d.Alpha)
	}
	return typ.ValueKind().Zero()
}
