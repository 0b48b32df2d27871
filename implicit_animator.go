package sway

import "fmt"

type scopeKind uint8

const (
	scopeAnimation scopeKind = iota // owns the animations created inside it
	scopeKeyframe
	scopePath
)

type propertyKey struct {
	node, property ID
}

// Scope is an open implicit animation scope. Close it in the reverse order
// of opening; closing an animation scope starts the animations created in
// it.
type Scope struct {
	animator *ImplicitAnimator
	kind     scopeKind
	param    ImplicitParam
	closed   bool

	// Animation scopes only
	protocol   TimingProtocol
	curve      TimingCurve
	finish     *FinishCallback
	repeat     func()
	animations []*Animation
	keyframes  map[propertyKey]*Animation
}

// Param returns the parameter property writes in the scope use.
func (s *Scope) Param() ImplicitParam { return s.param }

// Animations returns the animations created in an animation scope so far.
func (s *Scope) Animations() []*Animation { return s.animations }

// Close pops the scope.
func (s *Scope) Close() error { return s.animator.close(s) }

// ImplicitAnimator turns property writes into animations while a scope is
// open. Each Client has one; it must only be used from the goroutine that
// drives that client.
type ImplicitAnimator struct {
	client   *Client
	scopes   []*Scope
	disabled int
}

func newImplicitAnimator(c *Client) *ImplicitAnimator {
	return &ImplicitAnimator{client: c}
}

// Depth returns the number of open scopes.
func (ia *ImplicitAnimator) Depth() int { return len(ia.scopes) }

// Open pushes a scope animating property writes with protocol and curve.
// finish, when set, runs once the scope's animations are done; repeat runs
// at each repeat of each of them.
func (ia *ImplicitAnimator) Open(protocol TimingProtocol, curve TimingCurve, finish *FinishCallback, repeat func()) (*Scope, error) {
	if err := protocol.Validate(); err != nil {
		return nil, err
	}
	if err := curve.Validate(); err != nil {
		return nil, err
	}
	return ia.push(paramFor(protocol, curve), protocol, curve, finish, repeat), nil
}

// OpenTransition pushes an animation scope whose writes animate with
// protocol and curve and in which NotifyTransition plays effect.
func (ia *ImplicitAnimator) OpenTransition(effect TransitionEffect, protocol TimingProtocol, curve TimingCurve, finish *FinishCallback) (*Scope, error) {
	if err := protocol.Validate(); err != nil {
		return nil, err
	}
	if err := curve.Validate(); err != nil {
		return nil, err
	}
	param := &TransitionParam{Protocol: protocol, Curve: curve, Effect: effect}
	return ia.push(param, protocol, curve, finish, nil), nil
}

func (ia *ImplicitAnimator) push(param ImplicitParam, protocol TimingProtocol, curve TimingCurve, finish *FinishCallback, repeat func()) *Scope {
	s := &Scope{
		animator:  ia,
		kind:      scopeAnimation,
		param:     param,
		protocol:  protocol,
		curve:     curve,
		finish:    finish,
		repeat:    repeat,
		keyframes: make(map[propertyKey]*Animation),
	}
	if finish != nil {
		finish.retain()
	}
	ia.scopes = append(ia.scopes, s)
	return s
}

// BeginKeyframe pushes a keyframe scope: writes inside it add a keyframe at
// fraction to the enclosing scope's animation of the written property.
// It needs an open scope that is not itself a keyframe scope.
func (ia *ImplicitAnimator) BeginKeyframe(fraction float64, curve TimingCurve) (*Scope, error) {
	top := ia.top()
	if top == nil || top.kind == scopeKeyframe {
		return nil, fmt.Errorf("begin keyframe: %w", ErrNoImplicitScope)
	}
	if curve.Kind != CurveInterpolating {
		return nil, fmt.Errorf("keyframe with %s curve: %w", curve.Kind, ErrInvalidCurve)
	}
	if err := curve.Validate(); err != nil {
		return nil, err
	}
	owner := ia.owner()
	s := &Scope{
		animator: ia,
		kind:     scopeKeyframe,
		param:    &KeyframeParam{Protocol: owner.protocol, Fraction: min(max(fraction, 0), 1), Curve: curve},
	}
	ia.scopes = append(ia.scopes, s)
	return s, nil
}

// EndKeyframe closes the innermost keyframe scope.
func (ia *ImplicitAnimator) EndKeyframe() error {
	top := ia.top()
	if top == nil || top.kind != scopeKeyframe {
		return fmt.Errorf("end keyframe: %w", ErrNoImplicitScope)
	}
	return ia.close(top)
}

// Keyframe runs fn inside a keyframe scope at fraction.
func (ia *ImplicitAnimator) Keyframe(fraction float64, curve TimingCurve, fn func()) error {
	if _, err := ia.BeginKeyframe(fraction, curve); err != nil {
		return err
	}
	fn()
	return ia.EndKeyframe()
}

// OpenPath pushes a scope in which position writes follow path, timed by
// the enclosing scope.
func (ia *ImplicitAnimator) OpenPath(path *MotionPath) (*Scope, error) {
	top := ia.top()
	if top == nil || top.kind == scopeKeyframe {
		return nil, fmt.Errorf("open path: %w", ErrNoImplicitScope)
	}
	owner := ia.owner()
	curve := owner.curve
	if curve.Kind != CurveInterpolating {
		curve = CurveLinear
	}
	s := &Scope{
		animator: ia,
		kind:     scopePath,
		param:    &PathParam{Protocol: owner.protocol, Curve: curve, Path: path},
	}
	ia.scopes = append(ia.scopes, s)
	return s, nil
}

// ExecuteWithoutAnimation runs fn with implicit animation turned off:
// writes inside it are applied directly even when a scope is open.
func (ia *ImplicitAnimator) ExecuteWithoutAnimation(fn func()) {
	ia.disabled++
	defer func() { ia.disabled-- }()
	fn()
}

func (ia *ImplicitAnimator) top() *Scope {
	if len(ia.scopes) == 0 {
		return nil
	}
	return ia.scopes[len(ia.scopes)-1]
}

// owner returns the innermost animation scope.
func (ia *ImplicitAnimator) owner() *Scope {
	for i := len(ia.scopes) - 1; i >= 0; i-- {
		if ia.scopes[i].kind == scopeAnimation {
			return ia.scopes[i]
		}
	}
	return nil
}

func (ia *ImplicitAnimator) needImplicitAnimation() bool {
	return ia.disabled == 0 && len(ia.scopes) > 0
}

// close pops s and, for an animation scope, starts what it created and
// hands over its finish callback. A scope that created nothing still runs
// the callback if no one else holds it: immediately when time does not
// matter, otherwise after a zero-length timer animation.
func (ia *ImplicitAnimator) close(s *Scope) error {
	if s.closed {
		return nil
	}
	if ia.top() != s {
		logger.Error("implicit scope closed out of order", "depth", len(ia.scopes))
		return fmt.Errorf("close scope out of order: %w", ErrNoImplicitScope)
	}
	ia.scopes = ia.scopes[:len(ia.scopes)-1]
	s.closed = true
	if s.kind != scopeAnimation {
		return nil
	}
	for _, a := range s.animations {
		if s.finish != nil {
			a.SetFinishCallback(s.finish)
		}
		if s.repeat != nil {
			a.SetRepeatCallback(s.repeat)
		}
		a.Start()
		if a.state == StateInitialized {
			a.releaseFinish()
		}
	}
	if s.finish == nil {
		return nil
	}
	if len(s.animations) == 0 && s.finish.soleHolder() && s.finish.Type != TimeInsensitive {
		ia.client.startTimer(s.finish)
	}
	s.finish.release()
	return nil
}

// createImplicitAnimation turns a write of end over start into an
// animation owned by the innermost animation scope.
func (ia *ImplicitAnimator) createImplicitAnimation(node *Node, p *propertyBase, start, end, velocity Value) {
	owner := ia.owner()
	param := ia.top().param
	if c, ok := param.(*CurveParam); ok && node.motionPath != nil && p.modifier.typ.PathAnimatable() {
		param = &PathParam{Protocol: c.Protocol, Curve: c.Curve, Path: node.motionPath}
	}
	a, created := ia.build(param, owner, node, p, start, end, velocity)
	if a == nil || !created || owner == nil {
		return
	}
	owner.animations = append(owner.animations, a)
}

// build dispatches on the parameter variant. It returns the animation the
// write contributes to and whether it is new.
func (ia *ImplicitAnimator) build(param ImplicitParam, owner *Scope, node *Node, p *propertyBase, start, end, velocity Value) (*Animation, bool) {
	if start == nil {
		start = end
	}
	switch pr := param.(type) {
	case *CancelParam:
		node.CancelAnimationByProperty(p.id)
		p.forceSet(end)
		return nil, false
	case *CurveParam:
		spec := ia.newSpec(AnimationCurve, p, pr.Protocol, pr.Curve, start, end)
		return newAnimation(ia.client, node, p, spec), true
	case *KeyframeParam:
		kf := Keyframe{Fraction: pr.Fraction, Value: end, Curve: pr.Curve}
		key := propertyKey{node: node.id, property: p.id}
		if owner != nil {
			if a, ok := owner.keyframes[key]; ok {
				a.spec.Keyframes = append(a.spec.Keyframes, kf)
				a.spec.End = lastKeyframeValue(a.spec.Keyframes)
				return a, false
			}
		}
		spec := ia.newSpec(AnimationKeyframe, p, pr.Protocol, CurveLinear, start, end)
		spec.Keyframes = []Keyframe{kf}
		a := newAnimation(ia.client, node, p, spec)
		if owner != nil {
			owner.keyframes[key] = a
		}
		return a, true
	case *PathParam:
		kind := AnimationPath
		if !p.modifier.typ.PathAnimatable() {
			kind = AnimationCurve
		}
		spec := ia.newSpec(kind, p, pr.Protocol, pr.Curve, start, end)
		if kind == AnimationPath {
			spec.Path = pr.Path
		}
		return newAnimation(ia.client, node, p, spec), true
	case *SpringParam:
		spec := ia.newSpec(AnimationSpring, p, pr.Protocol, pr.Curve, start, end)
		if velocity != nil && velocity.Kind() == end.Kind() {
			spec.InitialVelocity = velocity
		}
		return newAnimation(ia.client, node, p, spec), true
	case *InterpolatingSpringParam:
		spec := ia.newSpec(AnimationInterpolatingSpring, p, pr.Protocol, pr.Curve, start, end)
		spec.LogicallyFinished = owner != nil && owner.finish != nil && owner.finish.Type == Logically
		return newAnimation(ia.client, node, p, spec), true
	case *TransitionParam:
		return ia.build(timingParam(pr), owner, node, p, start, end, velocity)
	}
	logger.Error("unknown implicit param", "kind", param.Kind())
	return nil, false
}

func (ia *ImplicitAnimator) newSpec(kind AnimationKind, p *propertyBase, protocol TimingProtocol, curve TimingCurve, start, end Value) AnimationSpec {
	return AnimationSpec{
		ID:            ia.client.ids.Next(),
		Kind:          kind,
		Property:      p.id,
		Protocol:      protocol,
		Curve:         curve,
		Additive:      true,
		Origin:        start,
		Start:         start,
		End:           end,
		ZeroThreshold: ia.client.threshold,
	}
}

func lastKeyframeValue(kfs []Keyframe) Value {
	best := kfs[0]
	for _, kf := range kfs[1:] {
		if kf.Fraction >= best.Fraction {
			best = kf
		}
	}
	return best.Value
}

// newExplicitAnimation prepares an animation of p toward to outside any
// scope. The caller starts it.
func (ia *ImplicitAnimator) newExplicitAnimation(node *Node, p *propertyBase, to Value, protocol TimingProtocol, curve TimingCurve) (*Animation, error) {
	if err := protocol.Validate(); err != nil {
		return nil, err
	}
	if err := curve.Validate(); err != nil {
		return nil, err
	}
	if to == nil || !to.Valid() || (p.staging != nil && to.Kind() != p.staging.Kind()) {
		return nil, fmt.Errorf("animate property %s: %w", p.id, ErrInvalidValue)
	}
	param := paramFor(protocol, curve)
	if _, ok := param.(*CancelParam); ok {
		param = &CurveParam{Protocol: protocol, Curve: curve}
	}
	a, _ := ia.build(param, nil, node, p, p.staging, to, nil)
	if a == nil {
		return nil, fmt.Errorf("animate property %s: %w", p.id, ErrInvalidCurve)
	}
	a.explicit = true
	return a, nil
}

// notifyTransition plays the effect of the innermost transition scope on
// node.
func (ia *ImplicitAnimator) notifyTransition(node *Node, in bool) error {
	var param *TransitionParam
	for i := len(ia.scopes) - 1; i >= 0 && param == nil; i-- {
		param, _ = ia.scopes[i].param.(*TransitionParam)
	}
	if param == nil {
		return fmt.Errorf("notify transition: %w", ErrNoImplicitScope)
	}
	for _, step := range param.Effect {
		p := node.builtin(step.Type, defaultValue(step.Type))
		if p == nil || step.Value == nil || step.Value.Kind() != p.staging.Kind() {
			continue
		}
		if in {
			target := p.staging
			ia.ExecuteWithoutAnimation(func() { p.set(step.Value, nil) })
			p.set(target, nil)
			continue
		}
		p.set(step.Value, nil)
	}
	return nil
}
