package sway

import (
	"context"
	"errors"
	"fmt"
)

// Client is the UI side of one owner: it creates nodes and properties,
// runs the implicit animator, and batches the resulting commands into
// transactions. Animations of custom properties run in a local render
// context ticked by the client. A Client must be used from one goroutine.
type Client struct {
	owner     uint32
	ids       *IDGenerator
	transport Transport
	pending   *Transaction
	unsent    []*Transaction // failed sends, oldest first

	nodes      map[ID]*Node
	animations map[ID]*Animation
	animator   *ImplicitAnimator

	// Custom properties
	local   *RenderService
	customs modifierManager

	store     EntityStore
	threshold float64
	debug     bool
}

// EntityStore is the interface for optional ECS integration.
// When set on a Client, animation events are forwarded to the ECS.
type EntityStore interface {
	EmitEvent(event AnimationEvent)
}

// AnimationEvent carries an animation callback for the ECS bridge.
type AnimationEvent struct {
	Type      CallbackEvent
	Animation ID
	Node      ID // zero for timers
	NodeName  string
	Property  ID
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithZeroThreshold sets the distance under which springs count as at
// rest.
func WithZeroThreshold(t float64) ClientOption {
	return func(c *Client) {
		if t > 0 {
			c.threshold = t
		}
	}
}

// WithClientDebug makes use of disposed nodes panic.
func WithClientDebug(enabled bool) ClientOption {
	return func(c *Client) { c.debug = enabled }
}

// WithLocalContext replaces the context custom property animations run in.
func WithLocalContext(ctx *RenderContext) ClientOption {
	return func(c *Client) { c.local = NewRenderService(ctx, nil) }
}

// NewClient returns a client for owner sending transactions through
// transport.
func NewClient(owner uint32, transport Transport, opts ...ClientOption) *Client {
	c := &Client{
		owner:      owner,
		ids:        NewIDGenerator(owner),
		transport:  transport,
		pending:    NewTransaction(owner),
		nodes:      make(map[ID]*Node),
		animations: make(map[ID]*Animation),
		threshold:  DefaultZeroThreshold,
	}
	c.animator = newImplicitAnimator(c)
	for _, opt := range opts {
		opt(c)
	}
	if c.local == nil {
		c.local = NewRenderService(NewRenderContext(), nil)
	}
	c.local.SetRouter(localRouter{c})
	return c
}

// NewClientFromConfig builds a client from the owner, threshold, debug and
// animation scale settings of cfg.
func NewClientFromConfig(cfg *Config, transport Transport) *Client {
	return NewClient(cfg.Owner, transport,
		WithZeroThreshold(cfg.ZeroThreshold),
		WithClientDebug(cfg.Debug),
		WithLocalContext(NewRenderContext(WithConfig(cfg))),
	)
}

// Owner returns the owner tag embedded in every id the client creates.
func (c *Client) Owner() uint32 { return c.owner }

// SetEntityStore sets the optional ECS bridge.
func (c *Client) SetEntityStore(store EntityStore) { c.store = store }

// Animator returns the client's implicit animator.
func (c *Client) Animator() *ImplicitAnimator { return c.animator }

// NewNode creates a node on both sides.
func (c *Client) NewNode(name string) *Node {
	n := newNode(c, c.ids.Next(), name)
	c.nodes[n.id] = n
	c.enqueue(&CreateNode{Node: n.id}, false)
	return n
}

// Node looks up a live node.
func (c *Client) Node(id ID) (*Node, bool) {
	n, ok := c.nodes[id]
	return n, ok
}

// Animation looks up a started animation that has not finished.
func (c *Client) Animation(id ID) (*Animation, bool) {
	a, ok := c.animations[id]
	return a, ok
}

// PendingCommands returns the commands queued for the next Commit,
// including those of transactions whose send failed.
func (c *Client) PendingCommands() []Command {
	var out []Command
	for _, tx := range c.unsent {
		out = append(out, tx.Commands...)
	}
	return append(out, c.pending.Commands...)
}

// Animate runs fn inside an implicit scope: property writes in fn animate
// with protocol and curve, and finish runs when they are all done.
func (c *Client) Animate(protocol TimingProtocol, curve TimingCurve, fn func(), finish *FinishCallback) error {
	s, err := c.animator.Open(protocol, curve, finish, nil)
	if err != nil {
		return err
	}
	fn()
	return s.Close()
}

// ExecuteWithoutAnimation runs fn with implicit animation turned off.
func (c *Client) ExecuteWithoutAnimation(fn func()) { c.animator.ExecuteWithoutAnimation(fn) }

// Commit flushes custom properties and sends everything queued since the
// last commit as one transaction. A transaction whose send fails is kept
// with its id and sent again, ahead of newer ones, by the next Commit.
func (c *Client) Commit(ctx context.Context) error {
	c.flushCustom()
	if !c.pending.Empty() {
		c.unsent = append(c.unsent, c.pending)
		c.pending = NewTransaction(c.owner)
	}
	if len(c.unsent) == 0 {
		return nil
	}
	if c.transport == nil {
		return ErrNoTransport
	}
	for len(c.unsent) > 0 {
		tx := c.unsent[0]
		err := c.transport.Send(ctx, tx)
		if errors.Is(err, ErrDuplicateTransaction) {
			logger.Debug("transaction already applied", "tx", tx.ID)
			err = nil
		}
		if err != nil {
			return fmt.Errorf("commit %s: %w", tx.ID, err)
		}
		c.unsent[0] = nil
		c.unsent = c.unsent[1:]
	}
	return nil
}

// Tick advances animations of custom properties to now and draws the ones
// that changed. It reports whether any is still running.
func (c *Client) Tick(now int64) bool {
	running := c.local.Tick(now)
	c.syncLocal()
	if err := c.local.FlushCallbacks(context.Background()); err != nil {
		logger.Warn("local callbacks", "err", err)
	}
	c.flushCustom()
	return running
}

// HandleCallbacks applies render-side messages addressed to this client.
func (c *Client) HandleCallbacks(cmds []Command) {
	for _, cmd := range cmds {
		cb, ok := cmd.(*AnimationCallback)
		if !ok {
			logger.Warn("unexpected UI-bound command", "op", cmd.Op())
			continue
		}
		a, ok := c.animations[cb.Animation]
		if !ok {
			logger.Debug("callback for unknown animation", "animation", cb.Animation, "event", cb.Event)
			continue
		}
		a.onEvent(cb.Event)
		if c.store != nil {
			c.store.EmitEvent(a.event(cb.Event))
		}
	}
}

// enqueue routes cmd to the render side, or to the local context for custom
// properties.
func (c *Client) enqueue(cmd Command, custom bool) {
	if !custom {
		c.pending.Add(cmd)
		return
	}
	c.applyLocal(cmd)
}

func (c *Client) applyLocal(cmd Command) {
	id := cmd.NodeID()
	if _, ok := c.local.ctx.RenderNode(id); !ok && cmd.Op() != OpRemoveNode {
		if n, ok := c.nodes[id]; ok {
			if _, err := c.local.ctx.createNode(id); err == nil {
				n.local = true
			}
		}
	}
	tx := &Transaction{Owner: c.owner, Commands: []Command{cmd}}
	if err := c.local.Apply(context.Background(), tx); err != nil {
		logger.Warn("local apply", "op", cmd.Op(), "err", err)
	}
	c.syncLocal()
}

// syncLocal copies values changed in the local context into the showing
// values of custom properties.
func (c *Client) syncLocal() {
	for _, rn := range c.local.ctx.Nodes() {
		dirty := rn.TakeDirty()
		if len(dirty) == 0 {
			continue
		}
		n, ok := c.nodes[rn.id]
		if !ok {
			continue
		}
		for _, m := range dirty {
			p := n.properties[m.property.id]
			if p == nil || !p.custom {
				continue
			}
			p.showing = m.property.Get()
			c.customs.add(p.modifier)
		}
	}
}

func (c *Client) flushCustom() {
	for _, cmd := range c.customs.flush() {
		c.pending.Add(cmd)
	}
}

// startTimer starts a property-less animation that ends on the next frame
// and holds cb until then.
func (c *Client) startTimer(cb *FinishCallback) {
	spec := AnimationSpec{ID: c.ids.Next(), Kind: AnimationTimer, Protocol: ImmediateTimingProtocol()}
	a := newAnimation(c, nil, nil, spec)
	a.SetFinishCallback(cb)
	a.Start()
}

// localRouter hands callbacks from the local context straight back.
type localRouter struct{ c *Client }

func (r localRouter) Route(_ context.Context, _ uint32, cmds []Command) error {
	r.c.HandleCallbacks(cmds)
	return nil
}
