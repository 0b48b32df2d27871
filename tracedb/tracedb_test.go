package tracedb

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/phanxgames/sway"
)

const ms = int64(time.Millisecond)

func openTempDB(t *testing.T) (*Recorder, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trace", "sway.db")
	r, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r, path
}

// animate applies a 100ms linear alpha animation from 0 to 1 to a service
// traced by r.
func animate(t *testing.T, r *Recorder) (*sway.RenderService, sway.ID) {
	t.Helper()
	svc := sway.NewRenderService(sway.NewRenderContext(sway.WithFrameTracer(r)), nil)
	node, prop, anim := sway.ID{Owner: 1, Counter: 1}, sway.ID{Owner: 1, Counter: 2}, sway.ID{Owner: 1, Counter: 10}

	p := sway.DefaultTimingProtocol()
	p.Duration = 100 * time.Millisecond
	tx := sway.NewTransaction(1)
	tx.Add(&sway.CreateNode{Node: node})
	tx.Add(&sway.AddModifier{Node: node, Property: prop, Type: sway.ModifierAlpha, Value: sway.Float(0)})
	tx.Add(&sway.CreateAnimation{Node: node, Spec: sway.AnimationSpec{
		ID:       anim,
		Kind:     sway.AnimationCurve,
		Property: prop,
		Protocol: p,
		Curve:    sway.CurveLinear,
		Additive: true,
		Origin:   sway.Float(0),
		Start:    sway.Float(0),
		End:      sway.Float(1),
	}})
	if err := svc.Apply(context.Background(), tx); err != nil {
		t.Fatal(err)
	}
	return svc, anim
}

func TestRecorderStoresFrames(t *testing.T) {
	r, _ := openTempDB(t)
	svc, anim := animate(t, r)
	for _, now := range []int64{0, 50 * ms, 100 * ms} {
		svc.Tick(now)
	}
	if err := r.Err(); err != nil {
		t.Fatalf("Err: %v", err)
	}

	samples, err := r.Frames(context.Background(), anim)
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 3 {
		t.Fatalf("samples = %d, want 3", len(samples))
	}
	if r.FramesWritten() != 3 {
		t.Errorf("FramesWritten = %d, want 3", r.FramesWritten())
	}
	mid := samples[1]
	if mid.Now != 50*ms || mid.State != "running" {
		t.Errorf("mid sample = %+v", mid)
	}
	if mid.Node != (sway.ID{Owner: 1, Counter: 1}) || mid.Property != (sway.ID{Owner: 1, Counter: 2}) || mid.Animation != anim {
		t.Errorf("ids = %v %v %v", mid.Node, mid.Property, mid.Animation)
	}
	if mid.Value == nil || !mid.Value.NearEqual(sway.Float(0.5), 1e-9) {
		t.Errorf("mid value = %v, want 0.5", mid.Value)
	}

	last := samples[2]
	if last.Now != 100*ms || last.State != "finished" || last.Value == nil || !last.Value.NearEqual(sway.Float(1), 1e-9) {
		t.Errorf("final sample = %+v", last)
	}

	other, err := r.Frames(context.Background(), sway.ID{Owner: 9, Counter: 9})
	if err != nil || len(other) != 0 {
		t.Errorf("unknown animation = %v, %v", other, err)
	}
}

func TestRecorderSkipsEmptyFrames(t *testing.T) {
	r, _ := openTempDB(t)
	r.TraceFrame(0, nil)
	if r.FramesWritten() != 0 {
		t.Errorf("FramesWritten = %d, want 0", r.FramesWritten())
	}
}

func TestRecorderTimerWithoutValue(t *testing.T) {
	r, _ := openTempDB(t)
	r.TraceFrame(5, []sway.AnimationTrace{{Node: sway.FallbackNodeID, Animation: sway.ID{Owner: 3, Counter: 1}, State: sway.StateRunning}})
	samples, err := r.Frames(context.Background(), sway.ID{Owner: 3, Counter: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 1 || samples[0].Value != nil || !samples[0].Property.IsZero() {
		t.Errorf("samples = %+v", samples)
	}
}

func TestRecorderHighOwnerID(t *testing.T) {
	r, _ := openTempDB(t)
	id := sway.ID{Owner: 0xfffffff0, Counter: 7}
	r.TraceFrame(1, []sway.AnimationTrace{{Node: id, Animation: id, Property: id, State: sway.StatePaused, Value: sway.Vec2{X: 1, Y: 2}}})
	samples, err := r.Frames(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 1 || samples[0].Node != id || samples[0].State != "paused" {
		t.Errorf("samples = %+v", samples)
	}
}

func TestPrune(t *testing.T) {
	r, _ := openTempDB(t)
	for now := int64(0); now < 5; now++ {
		r.TraceFrame(now, []sway.AnimationTrace{{Animation: sway.ID{Owner: 1, Counter: 1}, State: sway.StateRunning}})
	}
	n, err := r.Prune(context.Background(), 3)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("pruned %d, want 3", n)
	}
	left, _ := r.Frames(context.Background(), sway.ID{Owner: 1, Counter: 1})
	if len(left) != 2 || left[0].Now != 3 {
		t.Errorf("left = %+v", left)
	}
	if _, err := r.Prune(context.Background(), -1); !errors.Is(err, ErrInvalidHorizon) {
		t.Errorf("err = %v, want ErrInvalidHorizon", err)
	}
}

func TestMigrations(t *testing.T) {
	r, path := openTempDB(t)
	ctx := context.Background()
	r.TraceFrame(1, []sway.AnimationTrace{{Animation: sway.ID{Owner: 1, Counter: 1}, State: sway.StateFinished}})

	// Reapplying is a no-op and keeps data.
	if err := ApplyMigrations(ctx, r.DB()); err != nil {
		t.Fatal(err)
	}
	r.Close()
	r2, err := Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	defer r2.Close()
	if got, _ := r2.Frames(ctx, sway.ID{Owner: 1, Counter: 1}); len(got) != 1 {
		t.Errorf("frames after reopen = %d, want 1", len(got))
	}

	if err := RollbackAll(ctx, r2.DB()); err != nil {
		t.Fatalf("RollbackAll: %v", err)
	}
	if _, err := r2.Frames(ctx, sway.ID{Owner: 1, Counter: 1}); err == nil {
		t.Error("frames table survived rollback")
	}
	if err := ApplyMigrations(ctx, r2.DB()); err != nil {
		t.Fatalf("ApplyMigrations after rollback: %v", err)
	}
}

func TestRecorderKeepsFirstError(t *testing.T) {
	r, _ := openTempDB(t)
	if err := RollbackAll(context.Background(), r.DB()); err != nil {
		t.Fatal(err)
	}
	r.TraceFrame(1, []sway.AnimationTrace{{Animation: sway.ID{Owner: 1, Counter: 1}, State: sway.StateRunning}})
	if r.Err() == nil {
		t.Error("write to a missing table reported no error")
	}
	if r.FramesWritten() != 0 {
		t.Errorf("FramesWritten = %d, want 0", r.FramesWritten())
	}
}
