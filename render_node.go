package sway

import (
	"sort"
	"time"
)

// RenderNode is the render-side counterpart of a UI Node. It owns the
// render properties, their modifiers, and the animations driving them.
type RenderNode struct {
	id  ID
	ctx *RenderContext

	manager   *AnimationManager
	modifiers map[ID]*RenderModifier
	order     []*RenderModifier // insertion order, applied in this order
	props     RenderProperties
	dirty     []*RenderModifier // changed since the last TakeDirty
}

func newRenderNode(id ID, ctx *RenderContext) *RenderNode {
	n := &RenderNode{
		id:        id,
		ctx:       ctx,
		modifiers: make(map[ID]*RenderModifier),
		props:     DefaultRenderProperties(),
	}
	n.manager = newAnimationManager(n)
	return n
}

// ID returns the node id.
func (n *RenderNode) ID() ID { return n.id }

// AnimationManager returns the manager ticking this node's animations.
func (n *RenderNode) AnimationManager() *AnimationManager { return n.manager }

// Modifier returns the modifier bound to propertyID, or nil.
func (n *RenderNode) Modifier(propertyID ID) *RenderModifier { return n.modifiers[propertyID] }

// RenderProperties returns the resolved properties the node is drawn with.
func (n *RenderNode) RenderProperties() RenderProperties { return n.props }

func (n *RenderNode) property(id ID) *RenderProperty {
	if m := n.modifiers[id]; m != nil {
		return m.property
	}
	return nil
}

// addModifier binds a new property to the node. A property id that already
// has a modifier keeps the existing one.
func (n *RenderNode) addModifier(typ ModifierType, propertyID ID, v Value) *RenderModifier {
	if m, ok := n.modifiers[propertyID]; ok {
		logger.Warn("modifier already exists", "node", n.id, "property", propertyID)
		return m
	}
	m := &RenderModifier{typ: typ, property: newRenderProperty(propertyID, v)}
	n.modifiers[propertyID] = m
	n.order = append(n.order, m)
	n.applyDirty()
	return m
}

// Animate ticks the node's animations and applies every property that
// changed. It reports whether any animation is still running.
func (n *RenderNode) Animate(now int64) bool {
	running := n.manager.Animate(now)
	n.applyDirty()
	return running
}

// applyDirty copies changed properties into the render properties and
// clears their dirty flags.
func (n *RenderNode) applyDirty() {
	for _, m := range n.order {
		if !m.property.dirty {
			continue
		}
		m.Apply(&n.props)
		m.property.dirty = false
		n.markDirty(m)
	}
}

func (n *RenderNode) markDirty(m *RenderModifier) {
	for _, d := range n.dirty {
		if d == m {
			return
		}
	}
	n.dirty = append(n.dirty, m)
}

// TakeDirty returns the modifiers applied since the previous call, for the
// draw pass, and resets the list.
func (n *RenderNode) TakeDirty() []*RenderModifier {
	d := n.dirty
	n.dirty = nil
	return d
}

// --- Context ---

// Scheduler requests display frames. RequestNextFrame is called after a tick
// that leaves at least one animation running.
type Scheduler interface {
	RequestNextFrame()
}

// TickStats summarizes one RenderContext.Tick.
type TickStats struct {
	Now        int64
	Nodes      int // animating nodes ticked
	Animations int // animations attached to those nodes
	Finished   int // animations that finished this tick
	Running    bool
	Elapsed    time.Duration  // wall time spent in the tick
	FrameRate  FrameRateRange // merged hint of the animations still running
}

// TickObserver receives stats after every tick.
type TickObserver interface {
	ObserveTick(TickStats)
}

// AnimationTrace is the state of one animation after a tick.
type AnimationTrace struct {
	Node      ID
	Animation ID
	Property  ID
	State     AnimationState
	Value     Value // nil for animations without a property
}

// FrameTracer records the animations evaluated in each tick.
type FrameTracer interface {
	TraceFrame(now int64, traces []AnimationTrace)
}

// RenderOption configures a RenderContext.
type RenderOption func(*RenderContext)

// WithScheduler sets the frame scheduler.
func WithScheduler(s Scheduler) RenderOption {
	return func(c *RenderContext) { c.scheduler = s }
}

// WithTickObserver sets the observer notified after every tick.
func WithTickObserver(o TickObserver) RenderOption {
	return func(c *RenderContext) { c.observer = o }
}

// WithFrameTracer sets the tracer recording per-frame animation state.
func WithFrameTracer(t FrameTracer) RenderOption {
	return func(c *RenderContext) { c.tracer = t }
}

// WithAnimationScale stretches every animation attached afterwards;
// 2 plays at half speed. Non-positive values are ignored.
func WithAnimationScale(scale float64) RenderOption {
	return func(c *RenderContext) {
		if scale > 0 {
			c.animationScale = scale
		}
	}
}

// WithDebug enables per-tick debug logging.
func WithDebug(enabled bool) RenderOption {
	return func(c *RenderContext) { c.debug = enabled }
}

// WithConfig applies the render-side settings of cfg.
func WithConfig(cfg *Config) RenderOption {
	return func(c *RenderContext) {
		if cfg == nil {
			return
		}
		if cfg.AnimationScale > 0 {
			c.animationScale = cfg.AnimationScale
		}
		c.debug = cfg.Debug
	}
}

// RenderContext is the render side: the node registry, the set of nodes
// with running animations, and the UI-bound messages they produce. It is
// driven from a single goroutine.
type RenderContext struct {
	nodes    map[ID]*RenderNode
	fallback *RenderNode

	// Nodes with animations, in registration order.
	animating    []*RenderNode
	animatingSet map[ID]struct{}
	pending      []*RenderNode // registered during a tick

	// Frame clock
	frameTime      int64
	ticked         bool
	ticking        bool
	animationScale float64

	// UI-bound messages grouped by owner
	uiMessages map[uint32][]Command
	owners     []uint32

	scheduler Scheduler
	observer  TickObserver
	tracer    FrameTracer
	debug     bool
}

// NewRenderContext creates a render context holding only the fallback node.
func NewRenderContext(opts ...RenderOption) *RenderContext {
	c := &RenderContext{
		nodes:          make(map[ID]*RenderNode),
		animatingSet:   make(map[ID]struct{}),
		uiMessages:     make(map[uint32][]Command),
		animationScale: 1,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.fallback = newRenderNode(FallbackNodeID, c)
	c.nodes[FallbackNodeID] = c.fallback
	return c
}

// RenderNode looks up a node by id.
func (c *RenderContext) RenderNode(id ID) (*RenderNode, bool) {
	n, ok := c.nodes[id]
	return n, ok
}

// FallbackNode returns the root that adopts animations of removed nodes.
func (c *RenderContext) FallbackNode() *RenderNode { return c.fallback }

// FrameTime returns the timestamp of the last tick.
func (c *RenderContext) FrameTime() int64 { return c.frameTime }

// AnimationScale returns the global duration scale.
func (c *RenderContext) AnimationScale() float64 { return c.animationScale }

// Nodes returns all nodes sorted by id, the fallback node included.
func (c *RenderContext) Nodes() []*RenderNode {
	out := make([]*RenderNode, 0, len(c.nodes))
	for _, n := range c.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id.Less(out[j].id) })
	return out
}

func (c *RenderContext) createNode(id ID) (*RenderNode, error) {
	if _, ok := c.nodes[id]; ok {
		logger.Warn("render node already exists", "node", id)
		return c.nodes[id], nil
	}
	n := newRenderNode(id, c)
	c.nodes[id] = n
	return n, nil
}

// RemoveNode destroys a node. Its animations move to the fallback node and
// keep running there, except infinitely repeating ones, which are dropped.
func (c *RenderContext) RemoveNode(id ID) {
	n, ok := c.nodes[id]
	if !ok || n == c.fallback {
		return
	}
	delete(c.nodes, id)
	attached, finished := n.manager.takeAll()
	for _, a := range attached {
		if a.IsInfinite() {
			a.core().detach(false)
			continue
		}
		a.core().detach(true)
		c.fallback.manager.adopt(a)
	}
	for id, a := range finished {
		c.fallback.manager.finished[id] = a
	}
	if c.fallback.manager.Len() > 0 {
		c.RegisterAnimatingRenderNode(c.fallback)
	}
	c.unregisterAnimating(n)
}

// RegisterAnimatingRenderNode keeps n in the tick set until its animations
// are all finished.
func (c *RenderContext) RegisterAnimatingRenderNode(n *RenderNode) {
	if _, ok := c.animatingSet[n.id]; ok {
		return
	}
	c.animatingSet[n.id] = struct{}{}
	if c.ticking {
		c.pending = append(c.pending, n)
		return
	}
	c.animating = append(c.animating, n)
}

func (c *RenderContext) unregisterAnimating(n *RenderNode) {
	if _, ok := c.animatingSet[n.id]; !ok {
		return
	}
	delete(c.animatingSet, n.id)
	for i, a := range c.animating {
		if a == n {
			c.animating = append(c.animating[:i], c.animating[i+1:]...)
			return
		}
	}
}

// Tick advances every animating node to now (nanoseconds) and reports
// whether any animation is still running, in which case the next frame is
// requested from the scheduler. A tick started from inside another is
// ignored.
func (c *RenderContext) Tick(now int64) bool {
	if c.ticking {
		logger.Error("tick re-entered", "now", now)
		return false
	}
	c.ticking = true

	var t0 time.Time
	if c.debug || c.observer != nil {
		t0 = time.Now()
	}
	c.frameTime = now
	c.ticked = true

	stats := TickStats{Now: now}
	var traces []AnimationTrace
	kept := c.animating[:0]
	for _, n := range c.animating {
		before := n.manager.finishedCount()
		stats.Nodes++
		stats.Animations += n.manager.Len()
		running := n.Animate(now)
		stats.Finished += n.manager.finishedCount() - before
		if c.tracer != nil {
			traces = traceNode(traces, n)
		}
		for _, a := range n.manager.animations {
			if a.State() == StateRunning {
				stats.FrameRate = stats.FrameRate.Merge(a.FrameRate())
			}
		}
		if running {
			kept = append(kept, n)
			continue
		}
		delete(c.animatingSet, n.id)
	}
	for i := len(kept); i < len(c.animating); i++ {
		c.animating[i] = nil
	}
	c.animating = append(kept, c.pending...)
	c.pending = c.pending[:0]
	c.ticking = false

	running := len(c.animating) > 0
	if running && c.scheduler != nil {
		c.scheduler.RequestNextFrame()
	}
	stats.Running = running

	if c.tracer != nil {
		c.tracer.TraceFrame(now, traces)
	}
	if c.debug || c.observer != nil {
		stats.Elapsed = time.Since(t0)
	}
	if c.observer != nil {
		c.observer.ObserveTick(stats)
	}
	c.debugLog(stats)
	return running
}

// traceNode appends a snapshot of every animation n ticked, including the
// ones that finished on this tick.
func traceNode(out []AnimationTrace, n *RenderNode) []AnimationTrace {
	for _, list := range [][]RenderAnimation{n.manager.animations, n.manager.lastFinished} {
		for _, a := range list {
			t := AnimationTrace{Node: n.id, Animation: a.ID(), Property: a.PropertyID(), State: a.State()}
			if p, ok := a.(interface{ lastValue() Value }); ok {
				t.Value = p.lastValue()
			}
			out = append(out, t)
		}
	}
	return out
}

// addUIMessage queues a command for the UI side of owner.
func (c *RenderContext) addUIMessage(owner uint32, cmd Command) {
	if _, ok := c.uiMessages[owner]; !ok {
		c.owners = append(c.owners, owner)
	}
	c.uiMessages[owner] = append(c.uiMessages[owner], cmd)
}

// takeUIMessages returns the queued messages per owner, in the order owners
// first received a message, and clears the queue.
func (c *RenderContext) takeUIMessages() ([]uint32, map[uint32][]Command) {
	owners, msgs := c.owners, c.uiMessages
	c.owners = nil
	c.uiMessages = make(map[uint32][]Command)
	return owners, msgs
}

// PendingUIMessages reports how many UI-bound messages are queued.
func (c *RenderContext) PendingUIMessages() int {
	total := 0
	for _, m := range c.uiMessages {
		total += len(m)
	}
	return total
}
