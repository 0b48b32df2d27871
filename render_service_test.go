package sway

import (
	"context"
	"errors"
	"testing"
	"time"
)

type countingScheduler struct{ requests int }

func (s *countingScheduler) RequestNextFrame() { s.requests++ }

type recordingObserver struct{ ticks []TickStats }

func (o *recordingObserver) ObserveTick(s TickStats) { o.ticks = append(o.ticks, s) }

type recordingTracer struct{ frames map[int64][]AnimationTrace }

func (r *recordingTracer) TraceFrame(now int64, traces []AnimationTrace) {
	if r.frames == nil {
		r.frames = make(map[int64][]AnimationTrace)
	}
	r.frames[now] = traces
}

type routed struct {
	owner uint32
	cmds  []Command
}

type recordingRouter struct{ batches []routed }

func (r *recordingRouter) Route(_ context.Context, owner uint32, cmds []Command) error {
	r.batches = append(r.batches, routed{owner, cmds})
	return nil
}

func nodeTx(owner uint32, node ID, prop ID) *Transaction {
	tx := NewTransaction(owner)
	tx.Add(&CreateNode{Node: node})
	tx.Add(&AddModifier{Node: node, Property: prop, Type: ModifierAlpha, Value: Float(0)})
	return tx
}

func TestServiceRejectsDuplicateTransaction(t *testing.T) {
	s := NewRenderService(NewRenderContext(), nil)
	tx := nodeTx(1, ID{1, 1}, ID{1, 2})
	if err := s.Apply(context.Background(), tx); err != nil {
		t.Fatal(err)
	}
	if err := s.Apply(context.Background(), tx); !errors.Is(err, ErrDuplicateTransaction) {
		t.Errorf("second Apply err = %v, want ErrDuplicateTransaction", err)
	}
}

func TestServiceDropsBadCommands(t *testing.T) {
	s := NewRenderService(NewRenderContext(), nil)
	tx := nodeTx(1, ID{1, 1}, ID{1, 2})
	tx.Add(&UpdateProperty{Node: ID{1, 99}, Property: ID{1, 2}, Value: Float(1)})
	tx.Add(&AddModifier{Node: ID{1, 1}, Property: ID{1, 3}, Type: ModifierBounds, Value: Float(1)})
	tx.Add(&PauseAnimation{Node: ID{1, 1}, Animation: ID{1, 50}})
	tx.Add(&AnimationCallback{Node: ID{1, 1}, Animation: ID{1, 50}, Event: CallbackFinished})
	tx.Add(&UpdateProperty{Node: ID{1, 1}, Property: ID{1, 2}, Value: Float(0.7)})
	if err := s.Apply(context.Background(), tx); err != nil {
		t.Fatal(err)
	}
	if s.Dropped() != 4 {
		t.Errorf("Dropped = %d, want 4", s.Dropped())
	}
	n, _ := s.Context().RenderNode(ID{1, 1})
	if got := floatOf(n.Modifier(ID{1, 2}).Property().Get()); got != 0.7 {
		t.Errorf("later command not applied: alpha = %v", got)
	}
	if n.RenderProperties().Alpha != 0.7 {
		t.Errorf("render properties alpha = %v", n.RenderProperties().Alpha)
	}
}

func TestServiceDuplicateAnimationKeepsFirst(t *testing.T) {
	s := NewRenderService(NewRenderContext(), nil)
	tx := nodeTx(1, ID{1, 1}, ID{1, 2})
	spec := curveSpec(ID{1, 10}, ID{1, 2}, Float(0), Float(1), 100*time.Millisecond)
	tx.Add(&CreateAnimation{Node: ID{1, 1}, Spec: spec})
	spec.End = Float(5)
	tx.Add(&CreateAnimation{Node: ID{1, 1}, Spec: spec})
	s.Apply(context.Background(), tx)

	n, _ := s.Context().RenderNode(ID{1, 1})
	if n.AnimationManager().Len() != 1 || s.Dropped() != 1 {
		t.Errorf("Len = %d, Dropped = %d, want 1 and 1", n.AnimationManager().Len(), s.Dropped())
	}
}

func TestServiceRoutesCallbacksByOwner(t *testing.T) {
	router := &recordingRouter{}
	s := NewRenderService(NewRenderContext(), router)
	for owner := uint32(1); owner <= 2; owner++ {
		tx := nodeTx(owner, ID{owner, 1}, ID{owner, 2})
		tx.Add(&CreateAnimation{Node: ID{owner, 1}, Spec: curveSpec(ID{owner, 10}, ID{owner, 2}, Float(0), Float(1), 50*time.Millisecond)})
		s.Apply(context.Background(), tx)
	}
	s.Tick(0)
	s.Tick(60 * ms)
	if err := s.FlushCallbacks(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(router.batches) != 2 {
		t.Fatalf("batches = %d, want 2", len(router.batches))
	}
	for _, b := range router.batches {
		cb := b.cmds[0].(*AnimationCallback)
		if cb.Animation.Route() != b.owner || cb.Event != CallbackFinished {
			t.Errorf("owner %d got %+v", b.owner, cb)
		}
	}
	if s.Context().PendingUIMessages() != 0 {
		t.Error("messages left after flush")
	}
}

func TestServiceDisconnectOwner(t *testing.T) {
	s := NewRenderService(NewRenderContext(), nil)
	s.Apply(context.Background(), nodeTx(1, ID{1, 1}, ID{1, 2}))
	s.Apply(context.Background(), nodeTx(2, ID{2, 1}, ID{2, 2}))

	// Owner 2 animates a property of owner 1's node.
	tx := NewTransaction(2)
	tx.Add(&CreateAnimation{Node: ID{1, 1}, Spec: curveSpec(ID{2, 10}, ID{1, 2}, Float(0), Float(1), time.Second)})
	tx.Add(&CreateAnimation{Node: ID{1, 1}, Spec: curveSpec(ID{1, 11}, ID{1, 2}, Float(0), Float(1), time.Second)})
	s.Apply(context.Background(), tx)

	s.DisconnectOwner(2)
	ctx := s.Context()
	if _, ok := ctx.RenderNode(ID{2, 1}); ok {
		t.Error("owner 2's node survived")
	}
	n, ok := ctx.RenderNode(ID{1, 1})
	if !ok {
		t.Fatal("owner 1's node removed")
	}
	if n.AnimationManager().Len() != 1 {
		t.Fatalf("Len = %d, want 1", n.AnimationManager().Len())
	}
	if _, ok := n.AnimationManager().Get(ID{1, 11}); !ok {
		t.Error("owner 1's animation removed")
	}
	if _, ok := ctx.RenderNode(FallbackNodeID); !ok {
		t.Error("fallback node removed")
	}
}

// --- Context ---

func TestContextSchedulerObserverTracer(t *testing.T) {
	sched := &countingScheduler{}
	obs := &recordingObserver{}
	tracer := &recordingTracer{}
	ctx := NewRenderContext(WithScheduler(sched), WithTickObserver(obs), WithFrameTracer(tracer))
	n, _ := ctx.createNode(ID{1, 1})
	n.addModifier(ModifierAlpha, ID{1, 2}, Float(0))
	attachSpec(t, n, curveSpec(ID{1, 10}, ID{1, 2}, Float(0), Float(1), 100*time.Millisecond))

	ctx.Tick(0)
	ctx.Tick(50 * ms)
	ctx.Tick(100 * ms)

	if sched.requests != 2 {
		t.Errorf("frame requests = %d, want 2", sched.requests)
	}
	if len(obs.ticks) != 3 {
		t.Fatalf("observed ticks = %d, want 3", len(obs.ticks))
	}
	last := obs.ticks[2]
	if last.Finished != 1 || last.Running || last.Nodes != 1 {
		t.Errorf("last tick stats = %+v", last)
	}
	mid := tracer.frames[50*ms]
	if len(mid) != 1 || mid[0].State != StateRunning || !mid[0].Value.NearEqual(Float(0.5), 1e-9) {
		t.Errorf("trace at 50ms = %+v", mid)
	}
	final := tracer.frames[100*ms]
	if len(final) != 1 || final[0].State != StateFinished || !final[0].Value.NearEqual(Float(1), 1e-9) {
		t.Errorf("trace at 100ms = %+v", final)
	}
}

func TestContextRemoveNodeKeepsFinishedForUI(t *testing.T) {
	ctx := NewRenderContext()
	n, _ := ctx.createNode(ID{1, 1})
	n.addModifier(ModifierAlpha, ID{1, 2}, Float(0))
	attachSpec(t, n, curveSpec(ID{1, 10}, ID{1, 2}, Float(0), Float(1), 50*time.Millisecond))
	ctx.Tick(0)
	ctx.Tick(60 * ms)

	ctx.RemoveNode(ID{1, 1})
	if _, ok := ctx.FallbackNode().AnimationManager().Get(ID{1, 10}); !ok {
		t.Fatal("finished animation not moved to the fallback node")
	}
	if !ctx.FallbackNode().AnimationManager().RemoveAnimation(ID{1, 10}, nil) {
		t.Error("RemoveAnimation on the fallback node failed")
	}
}
