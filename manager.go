package sway

import "fmt"

// AnimationManager owns the animations attached to one render node and
// ticks them. It also tracks which spring currently drives each property,
// so a new spring on the same property can take over from it.
type AnimationManager struct {
	node *RenderNode

	animations []RenderAnimation // attach order
	byID       map[ID]RenderAnimation

	// Finished animations stay here until the UI removes them.
	finished      map[ID]RenderAnimation
	finishedTotal int
	lastFinished  []RenderAnimation // finished by the latest Animate

	springs map[ID]ID // property id -> spring animation id
}

func newAnimationManager(node *RenderNode) *AnimationManager {
	return &AnimationManager{
		node:     node,
		byID:     make(map[ID]RenderAnimation),
		finished: make(map[ID]RenderAnimation),
		springs:  make(map[ID]ID),
	}
}

// Len returns the number of attached animations that have not finished.
func (m *AnimationManager) Len() int { return len(m.animations) }

// Animations returns the attached animations in attach order. The returned
// slice must not be modified.
func (m *AnimationManager) Animations() []RenderAnimation { return m.animations }

func (m *AnimationManager) finishedCount() int { return m.finishedTotal }

// Add attaches a and starts it. An id already known to the manager is
// rejected and the existing animation kept.
func (m *AnimationManager) Add(a RenderAnimation) error {
	id := a.ID()
	if _, ok := m.byID[id]; ok {
		return fmt.Errorf("add animation %s: %w", id, ErrDuplicateAnimation)
	}
	if _, ok := m.finished[id]; ok {
		return fmt.Errorf("add animation %s: %w", id, ErrDuplicateAnimation)
	}
	m.animations = append(m.animations, a)
	m.byID[id] = a
	a.core().attach(m.node)
	if m.node.ctx != nil {
		m.node.ctx.RegisterAnimatingRenderNode(m.node)
	}
	return nil
}

// adopt takes over an animation from a removed node without restarting it.
func (m *AnimationManager) adopt(a RenderAnimation) {
	m.animations = append(m.animations, a)
	m.byID[a.ID()] = a
	c := a.core()
	c.target = m.node
	c.ctx = m.node.ctx
}

// Get returns an attached or finished animation.
func (m *AnimationManager) Get(id ID) (RenderAnimation, bool) {
	if a, ok := m.byID[id]; ok {
		return a, true
	}
	a, ok := m.finished[id]
	return a, ok
}

// Animate evaluates every attached animation at now. Finished ones are
// detached and reported to their owner. It returns whether any animation
// is still running.
func (m *AnimationManager) Animate(now int64) bool {
	running := false
	m.lastFinished = m.lastFinished[:0]
	kept := m.animations[:0]
	for _, a := range m.animations {
		if a.Animate(now) {
			m.finish(a)
			m.lastFinished = append(m.lastFinished, a)
			continue
		}
		kept = append(kept, a)
		if a.State() == StateRunning {
			running = true
		}
	}
	for i := len(kept); i < len(m.animations); i++ {
		m.animations[i] = nil
	}
	m.animations = kept
	return running
}

func (m *AnimationManager) finish(a RenderAnimation) {
	id := a.ID()
	c := a.core()
	c.detach(false)
	delete(m.byID, id)
	m.finished[id] = a
	m.finishedTotal++
	c.notify(CallbackFinished)
}

// RemoveAnimation drops an animation once the UI side has acknowledged its
// end, writing final to the property when given. An animation that is
// still attached is detached without notification.
func (m *AnimationManager) RemoveAnimation(id ID, final Value) bool {
	a, ok := m.finished[id]
	if ok {
		delete(m.finished, id)
	} else if a, ok = m.byID[id]; ok {
		m.drop(a)
	} else {
		return false
	}
	if final != nil {
		if p := m.node.property(a.PropertyID()); p != nil {
			p.Set(final)
		}
	}
	return true
}

// drop detaches an attached animation silently.
func (m *AnimationManager) drop(a RenderAnimation) {
	a.core().detach(false)
	delete(m.byID, a.ID())
	for i, x := range m.animations {
		if x == a {
			m.animations = append(m.animations[:i], m.animations[i+1:]...)
			break
		}
	}
}

// CancelByProperty removes every animation on propertyID, finished or not,
// without callbacks. It returns the removed ids.
func (m *AnimationManager) CancelByProperty(propertyID ID) []ID {
	return m.removeIf(func(a RenderAnimation) bool { return a.PropertyID() == propertyID })
}

// FilterByOwner removes every animation created by owner, for example when
// that owner disconnects. No callbacks are sent.
func (m *AnimationManager) FilterByOwner(owner uint32) []ID {
	return m.removeIf(func(a RenderAnimation) bool { return a.ID().Route() == owner })
}

func (m *AnimationManager) removeIf(match func(RenderAnimation) bool) []ID {
	var removed []ID
	kept := m.animations[:0]
	for _, a := range m.animations {
		if !match(a) {
			kept = append(kept, a)
			continue
		}
		a.core().detach(false)
		delete(m.byID, a.ID())
		removed = append(removed, a.ID())
	}
	for i := len(kept); i < len(m.animations); i++ {
		m.animations[i] = nil
	}
	m.animations = kept
	for id, a := range m.finished {
		if match(a) {
			delete(m.finished, id)
			removed = append(removed, id)
		}
	}
	return removed
}

// takeAll empties the manager, returning attached and finished animations.
func (m *AnimationManager) takeAll() ([]RenderAnimation, map[ID]RenderAnimation) {
	attached, finished := m.animations, m.finished
	m.animations = nil
	m.byID = make(map[ID]RenderAnimation)
	m.finished = make(map[ID]RenderAnimation)
	m.springs = make(map[ID]ID)
	return attached, finished
}

// --- Spring registry ---

func (m *AnimationManager) querySpring(propertyID ID) *springAnimation {
	id, ok := m.springs[propertyID]
	if !ok {
		return nil
	}
	s, _ := m.byID[id].(*springAnimation)
	return s
}

func (m *AnimationManager) registerSpring(propertyID, animationID ID) {
	m.springs[propertyID] = animationID
}

func (m *AnimationManager) unregisterSpring(propertyID, animationID ID) {
	if m.springs[propertyID] == animationID {
		delete(m.springs, propertyID)
	}
}
