// Package ecs provides ECS adapters for sway.
package ecs

import (
	"github.com/phanxgames/sway"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// AnimationEventType is the Donburi event type for sway animation events.
// Subscribe to this in your ECS systems to receive finish, repeat and
// logically-finished notifications.
var AnimationEventType = events.NewEventType[sway.AnimationEvent]()

type donburiStore struct {
	world donburi.World
}

// NewDonburiStore creates an EntityStore backed by a Donburi world.
// Animation events are published to AnimationEventType and can be
// consumed with events.Subscribe and ProcessEvents.
func NewDonburiStore(world donburi.World) sway.EntityStore {
	return &donburiStore{world: world}
}

func (s *donburiStore) EmitEvent(event sway.AnimationEvent) {
	AnimationEventType.Publish(s.world, event)
}
