package sway

// Node is the UI-side handle of a render node. Built-in properties are
// created by their first write, one per modifier type; custom properties
// are added explicitly.
type Node struct {
	// Identity
	id     ID
	Name   string
	client *Client

	// Hierarchy
	Parent   *Node
	children []*Node

	// Properties
	builtins   map[ModifierType]*Modifier
	customs    []*Modifier
	properties map[ID]*propertyBase
	motionPath *MotionPath

	// Animations per property id, in start order
	animations map[ID][]*Animation

	// Internal
	local    bool // mirrored in the client's local context
	disposed bool
}

func newNode(c *Client, id ID, name string) *Node {
	return &Node{
		id:         id,
		Name:       name,
		client:     c,
		builtins:   make(map[ModifierType]*Modifier),
		properties: make(map[ID]*propertyBase),
		animations: make(map[ID][]*Animation),
	}
}

// ID returns the node id shared with the render side.
func (n *Node) ID() ID { return n.id }

// Client returns the client that created the node.
func (n *Node) Client() *Client { return n.client }

// --- Built-in properties ---

func (n *Node) SetBounds(r Rect)           { n.setBuiltin(ModifierBounds, r) }
func (n *Node) SetFrame(r Rect)            { n.setBuiltin(ModifierFrame, r) }
func (n *Node) SetTranslate(v Vec2)        { n.setBuiltin(ModifierTranslate, v) }
func (n *Node) SetScale(v Vec2)            { n.setBuiltin(ModifierScale, v) }
func (n *Node) SetRotation(deg float64)    { n.setBuiltin(ModifierRotation, Float(deg)) }
func (n *Node) SetAlpha(a float64)         { n.setBuiltin(ModifierAlpha, Float(a)) }
func (n *Node) SetBackgroundColor(c Color) { n.setBuiltin(ModifierBackgroundColor, c) }
func (n *Node) SetForegroundColor(c Color) { n.setBuiltin(ModifierForegroundColor, c) }
func (n *Node) SetCornerRadius(r float64)  { n.setBuiltin(ModifierCornerRadius, Float(r)) }

func (n *Node) Bounds() Rect           { return rectOf(n.valueOf(ModifierBounds)) }
func (n *Node) Frame() Rect            { return rectOf(n.valueOf(ModifierFrame)) }
func (n *Node) Translate() Vec2        { return vec2Of(n.valueOf(ModifierTranslate)) }
func (n *Node) Scale() Vec2            { return vec2Of(n.valueOf(ModifierScale)) }
func (n *Node) Rotation() float64      { return floatOf(n.valueOf(ModifierRotation)) }
func (n *Node) Alpha() float64         { return floatOf(n.valueOf(ModifierAlpha)) }
func (n *Node) BackgroundColor() Color { return colorOf(n.valueOf(ModifierBackgroundColor)) }
func (n *Node) ForegroundColor() Color { return colorOf(n.valueOf(ModifierForegroundColor)) }
func (n *Node) CornerRadius() float64  { return floatOf(n.valueOf(ModifierCornerRadius)) }

// Modifier returns the built-in modifier for typ, or nil before the first
// write.
func (n *Node) Modifier(typ ModifierType) *Modifier { return n.builtins[typ] }

func (n *Node) valueOf(typ ModifierType) Value {
	if m, ok := n.builtins[typ]; ok {
		return m.property.get()
	}
	return defaultValue(typ)
}

// setBuiltin writes a built-in property. The first write creates the
// property with v and never animates.
func (n *Node) setBuiltin(typ ModifierType, v Value) {
	if m, ok := n.builtins[typ]; ok {
		m.property.set(v, nil)
		return
	}
	n.builtin(typ, v)
}

func (n *Node) builtin(typ ModifierType, initial Value) *propertyBase {
	if n.disposed {
		n.client.debugCheckDisposed(n, "set property")
		return nil
	}
	if m, ok := n.builtins[typ]; ok {
		return m.property
	}
	if initial == nil || !initial.Valid() || initial.Kind() != typ.ValueKind() {
		logger.Warn("property create rejected", "node", n.id, "modifier", typ, "err", ErrInvalidValue)
		return nil
	}
	p := &propertyBase{id: n.client.ids.Next(), node: n, staging: initial, animatable: true}
	m := newModifier(typ, p)
	n.builtins[typ] = m
	n.properties[p.id] = p
	n.client.enqueue(m.addCommand(n.id), false)
	return p
}

func (n *Node) addCustom(initial Value, animatable bool, draw func(Value)) *propertyBase {
	if n.disposed {
		n.client.debugCheckDisposed(n, "add custom property")
		return nil
	}
	if initial == nil || !initial.Valid() {
		logger.Warn("custom property rejected", "node", n.id, "err", ErrInvalidValue)
		return nil
	}
	p := &propertyBase{
		id:         n.client.ids.Next(),
		node:       n,
		staging:    initial,
		showing:    initial,
		animatable: animatable,
		custom:     true,
	}
	m := newModifier(ModifierCustom, p)
	m.draw = draw
	n.customs = append(n.customs, m)
	n.properties[p.id] = p
	add := m.addCommand(n.id)
	n.client.enqueue(add, false)
	n.client.enqueue(add, true)
	n.client.customs.add(m)
	return p
}

// SetMotionPath makes implicit animations of bounds, frame and translate
// follow path. A nil path restores straight-line motion.
func (n *Node) SetMotionPath(path *MotionPath) { n.motionPath = path }

// MotionPath returns the path set by SetMotionPath.
func (n *Node) MotionPath() *MotionPath { return n.motionPath }

// --- Animations ---

func (n *Node) addAnimation(a *Animation) {
	id := a.propertyID()
	n.animations[id] = append(n.animations[id], a)
}

// removeAnimation forgets a and reports whether it was the last animation
// on its property.
func (n *Node) removeAnimation(a *Animation) bool {
	id := a.propertyID()
	list := n.animations[id]
	for i, x := range list {
		if x == a {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(n.animations, id)
		return true
	}
	n.animations[id] = list
	return false
}

// HasPropertyAnimation reports whether any started animation of the node
// drives propertyID.
func (n *Node) HasPropertyAnimation(propertyID ID) bool {
	return len(n.animations[propertyID]) > 0
}

// AnimationCount returns the number of running animations on the node.
func (n *Node) AnimationCount() int {
	total := 0
	for _, list := range n.animations {
		total += len(list)
	}
	return total
}

// CancelAnimationByProperty stops every animation on propertyID. Their
// finish callbacks are released and the render side drops them without
// reporting back.
func (n *Node) CancelAnimationByProperty(propertyID ID) {
	list := n.animations[propertyID]
	delete(n.animations, propertyID)
	for _, a := range list {
		a.cancel()
	}
	p := n.properties[propertyID]
	custom := p != nil && p.custom
	n.client.enqueue(&CancelAnimations{Node: n.id, Property: propertyID}, custom)
}

// NotifyTransition animates the node in or out with the effect of the
// enclosing transition scope.
func (n *Node) NotifyTransition(in bool) error {
	return n.client.animator.notifyTransition(n, in)
}

// --- Tree manipulation ---

// AddChild appends child to this node's children. If child already has a
// parent, it is removed from that parent first. Panics if child is nil or
// an ancestor of this node.
func (n *Node) AddChild(child *Node) {
	if child == nil {
		panic("sway: cannot add nil child")
	}
	n.client.debugCheckDisposed(n, "AddChild (parent)")
	n.client.debugCheckDisposed(child, "AddChild (child)")
	if isAncestor(child, n) {
		panic("sway: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	child.Parent = n
	n.children = append(n.children, child)
	if n.client.debug {
		debugCheckTreeDepth(child)
	}
}

// RemoveChild detaches child from this node. Panics if child.Parent != n.
func (n *Node) RemoveChild(child *Node) {
	if child.Parent != n {
		panic("sway: child's parent is not this node")
	}
	n.removeChildByPtr(child)
	child.Parent = nil
}

// RemoveFromParent detaches this node from its parent.
func (n *Node) RemoveFromParent() {
	if n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// Children returns the child list. The returned slice must not be mutated.
func (n *Node) Children() []*Node { return n.children }

// --- Disposal ---

// Dispose removes the node and its descendants from both sides. Running
// animations finish on the render side's fallback node, except infinitely
// repeating ones, which are dropped.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.RemoveFromParent()
	n.dispose()
}

func (n *Node) dispose() {
	n.disposed = true
	for _, child := range n.children {
		child.Parent = nil
		child.dispose()
	}
	n.children = nil
	for id, list := range n.animations {
		kept := list[:0]
		for _, a := range list {
			if a.spec.Protocol.IsInfinite() {
				a.drop()
				continue
			}
			kept = append(kept, a)
		}
		n.animations[id] = kept
	}
	n.client.enqueue(&RemoveNode{Node: n.id}, false)
	if n.local {
		n.client.enqueue(&RemoveNode{Node: n.id}, true)
	}
	delete(n.client.nodes, n.id)
}

// IsDisposed reports whether Dispose was called.
func (n *Node) IsDisposed() bool { return n.disposed }

// isAncestor reports whether candidate is an ancestor of node.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing
// child.Parent.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}
