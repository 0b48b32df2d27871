package sway

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

const defaultAppliedHistory = 4096

// RenderService applies transactions to a RenderContext and sends the
// resulting callbacks back through a CallbackRouter. Apply, Tick and
// FlushCallbacks may be called from different goroutines.
type RenderService struct {
	mu     sync.Mutex
	ctx    *RenderContext
	router CallbackRouter

	// Recently applied transaction ids, oldest first.
	applied     map[string]struct{}
	appliedRing []string
	appliedNext int

	dropped int
}

// NewRenderService returns a service driving ctx. The router may be set
// later with SetRouter.
func NewRenderService(ctx *RenderContext, router CallbackRouter) *RenderService {
	return &RenderService{
		ctx:         ctx,
		router:      router,
		applied:     make(map[string]struct{}, defaultAppliedHistory),
		appliedRing: make([]string, defaultAppliedHistory),
	}
}

// SetRouter sets where callbacks go.
func (s *RenderService) SetRouter(r CallbackRouter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.router = r
}

// Context returns the render context. Use it only from the goroutine that
// ticks, or while no transaction can arrive.
func (s *RenderService) Context() *RenderContext { return s.ctx }

// Dropped returns how many commands were dropped because they could not be
// applied.
func (s *RenderService) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Apply runs the commands of tx in order. A transaction id seen before is
// rejected with ErrDuplicateTransaction. Commands that fail are logged and
// dropped; the rest still apply.
func (s *RenderService) Apply(_ context.Context, tx *Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tx.ID != "" {
		if _, ok := s.applied[tx.ID]; ok {
			return fmt.Errorf("transaction %s: %w", tx.ID, ErrDuplicateTransaction)
		}
		s.remember(tx.ID)
	}
	for _, cmd := range tx.Commands {
		if err := s.applyCommand(cmd); err != nil {
			s.dropped++
			logger.Warn("command dropped", "op", cmd.Op(), "node", cmd.NodeID(), "owner", tx.Owner, "err", err)
		}
	}
	return nil
}

func (s *RenderService) remember(id string) {
	if old := s.appliedRing[s.appliedNext]; old != "" {
		delete(s.applied, old)
	}
	s.appliedRing[s.appliedNext] = id
	s.appliedNext = (s.appliedNext + 1) % len(s.appliedRing)
	s.applied[id] = struct{}{}
}

// Tick advances the render context.
func (s *RenderService) Tick(now int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx.Tick(now)
}

// FlushCallbacks routes every queued UI-bound message to its owner.
func (s *RenderService) FlushCallbacks(ctx context.Context) error {
	s.mu.Lock()
	owners, msgs := s.ctx.takeUIMessages()
	router := s.router
	s.mu.Unlock()
	if router == nil {
		if len(owners) > 0 {
			logger.Warn("callbacks dropped: no router", "owners", len(owners))
		}
		return nil
	}
	var errs []error
	for _, owner := range owners {
		if err := router.Route(ctx, owner, msgs[owner]); err != nil {
			errs = append(errs, fmt.Errorf("route to owner %d: %w", owner, err))
		}
	}
	return errors.Join(errs...)
}

// DisconnectOwner removes everything owner created: its nodes and every
// animation it started, without callbacks.
func (s *RenderService) DisconnectOwner(owner uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.ctx.Nodes() {
		n.manager.FilterByOwner(owner)
		if n.id.Route() == owner && n != s.ctx.fallback {
			s.ctx.RemoveNode(n.id)
		}
	}
}

// animationNode finds the node holding animation id, looking at the
// fallback node when the addressed node is gone.
func (s *RenderService) animationNode(node, id ID) (*RenderNode, RenderAnimation, error) {
	if n, ok := s.ctx.RenderNode(node); ok {
		if a, ok := n.manager.Get(id); ok {
			return n, a, nil
		}
	}
	if a, ok := s.ctx.fallback.manager.Get(id); ok {
		return s.ctx.fallback, a, nil
	}
	return nil, nil, fmt.Errorf("animation %s on node %s: %w", id, node, ErrAnimationNotFound)
}

func (s *RenderService) node(id ID) (*RenderNode, error) {
	n, ok := s.ctx.RenderNode(id)
	if !ok {
		return nil, fmt.Errorf("node %s: %w", id, ErrNodeNotFound)
	}
	return n, nil
}

func (s *RenderService) applyCommand(cmd Command) error {
	switch c := cmd.(type) {
	case *CreateNode:
		_, err := s.ctx.createNode(c.Node)
		return err
	case *RemoveNode:
		s.ctx.RemoveNode(c.Node)
		return nil
	case *AddModifier:
		n, err := s.node(c.Node)
		if err != nil {
			return err
		}
		if c.Value == nil || !c.Value.Valid() {
			return fmt.Errorf("modifier %s: %w", c.Property, ErrInvalidValue)
		}
		if want := c.Type.ValueKind(); want != KindInvalid && want != c.Value.Kind() {
			return fmt.Errorf("%s modifier with %s value: %w", c.Type, c.Value.Kind(), ErrInvalidValue)
		}
		n.addModifier(c.Type, c.Property, c.Value)
		return nil
	case *UpdateProperty:
		n, err := s.node(c.Node)
		if err != nil {
			return err
		}
		m := n.Modifier(c.Property)
		if m == nil {
			return fmt.Errorf("property %s: %w", c.Property, ErrNodeNotFound)
		}
		if c.Value == nil || !c.Value.Valid() {
			return fmt.Errorf("property %s: %w", c.Property, ErrInvalidValue)
		}
		m.Update(c.Value, c.Delta)
		n.applyDirty()
		return nil
	case *CreateAnimation:
		n, err := s.node(c.Node)
		if err != nil {
			return err
		}
		a, err := newRenderAnimation(&c.Spec)
		if err != nil {
			return err
		}
		if err := n.manager.Add(a); err != nil {
			return err
		}
		n.applyDirty()
		return nil
	case *StartAnimation:
		return s.control(c.Node, c.Animation, RenderAnimation.Start)
	case *PauseAnimation:
		return s.control(c.Node, c.Animation, RenderAnimation.Pause)
	case *ResumeAnimation:
		return s.control(c.Node, c.Animation, RenderAnimation.Resume)
	case *FinishAnimation:
		return s.control(c.Node, c.Animation, RenderAnimation.Finish)
	case *ReverseAnimation:
		return s.control(c.Node, c.Animation, func(a RenderAnimation) { a.SetReversed(c.Reversed) })
	case *SetAnimationFraction:
		return s.control(c.Node, c.Animation, func(a RenderAnimation) { a.SetFraction(c.Fraction) })
	case *RemoveAnimation:
		n, _, err := s.animationNode(c.Node, c.Animation)
		if err != nil {
			return err
		}
		n.manager.RemoveAnimation(c.Animation, c.Final)
		n.applyDirty()
		return nil
	case *CancelAnimations:
		n, err := s.node(c.Node)
		if err != nil {
			return err
		}
		n.manager.CancelByProperty(c.Property)
		n.applyDirty()
		return nil
	case *AnimationCallback:
		return fmt.Errorf("%s is UI-bound: %w", c.Op(), ErrUnknownCommand)
	}
	return fmt.Errorf("%T: %w", cmd, ErrUnknownCommand)
}

// control applies a state transition and keeps the node ticking if the
// animation is running afterwards.
func (s *RenderService) control(node, id ID, fn func(RenderAnimation)) error {
	n, a, err := s.animationNode(node, id)
	if err != nil {
		return err
	}
	fn(a)
	n.applyDirty()
	if a.State() == StateRunning || a.State() == StateFinished {
		s.ctx.RegisterAnimatingRenderNode(n)
	}
	return nil
}
