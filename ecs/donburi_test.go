package ecs

import (
	"context"
	"testing"
	"time"

	"github.com/phanxgames/sway"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

func TestNewDonburiStore(t *testing.T) {
	world := donburi.NewWorld()
	store := NewDonburiStore(world)
	if store == nil {
		t.Fatal("NewDonburiStore returned nil")
	}
}

func TestDonburiStore_EmitEvent(t *testing.T) {
	world := donburi.NewWorld()
	store := NewDonburiStore(world)

	var received []sway.AnimationEvent
	AnimationEventType.Subscribe(world, func(w donburi.World, e sway.AnimationEvent) {
		received = append(received, e)
	})

	store.EmitEvent(sway.AnimationEvent{
		Type:      sway.CallbackFinished,
		Animation: sway.ID{Owner: 1, Counter: 42},
		Node:      sway.ID{Owner: 1, Counter: 7},
		NodeName:  "box",
	})
	store.EmitEvent(sway.AnimationEvent{Type: sway.CallbackRepeat})

	// Events are queued until processed.
	AnimationEventType.ProcessEvents(world)

	if len(received) != 2 {
		t.Fatalf("expected 2 events, got %d", len(received))
	}
	e0 := received[0]
	if e0.Type != sway.CallbackFinished || e0.Animation.Counter != 42 || e0.NodeName != "box" {
		t.Errorf("event 0: %+v", e0)
	}
	if received[1].Type != sway.CallbackRepeat {
		t.Errorf("event 1: %+v", received[1])
	}
}

func TestDonburiStore_ImplementsEntityStore(t *testing.T) {
	world := donburi.NewWorld()
	var store sway.EntityStore = NewDonburiStore(world)
	_ = store // compile-time interface check
}

func TestDonburiStore_MultipleSubscribers(t *testing.T) {
	world := donburi.NewWorld()
	store := NewDonburiStore(world)

	var count1, count2 int
	AnimationEventType.Subscribe(world, func(w donburi.World, e sway.AnimationEvent) {
		count1++
	})
	AnimationEventType.Subscribe(world, func(w donburi.World, e sway.AnimationEvent) {
		count2++
	})

	store.EmitEvent(sway.AnimationEvent{Type: sway.CallbackFinished})
	events.ProcessAllEvents(world)

	if count1 != 1 || count2 != 1 {
		t.Errorf("expected both subscribers called once, got %d and %d", count1, count2)
	}
}

func TestDonburiStore_ClientFinish(t *testing.T) {
	world := donburi.NewWorld()

	service := sway.NewRenderService(sway.NewRenderContext(), nil)
	bus := sway.NewLocalBus(service)
	service.SetRouter(bus)
	client := sway.NewClient(1, bus)
	bus.Register(1, client)
	client.SetEntityStore(NewDonburiStore(world))

	var received []sway.AnimationEvent
	AnimationEventType.Subscribe(world, func(w donburi.World, e sway.AnimationEvent) {
		received = append(received, e)
	})

	node := client.NewNode("box")
	node.SetAlpha(0)
	protocol := sway.DefaultTimingProtocol()
	protocol.Duration = 100 * time.Millisecond
	if err := client.Animate(protocol, sway.CurveLinear, func() { node.SetAlpha(1) }, nil); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := client.Commit(ctx); err != nil {
		t.Fatal(err)
	}

	service.Tick(0)
	service.Tick(int64(200 * time.Millisecond))
	if err := service.FlushCallbacks(ctx); err != nil {
		t.Fatal(err)
	}
	events.ProcessAllEvents(world)

	if len(received) != 1 {
		t.Fatalf("expected 1 event, got %d", len(received))
	}
	if received[0].Type != sway.CallbackFinished || received[0].Node != node.ID() {
		t.Errorf("event: %+v", received[0])
	}
}
