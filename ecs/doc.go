// Package ecs provides ECS adapters for sway's animation callbacks.
//
// The primary adapter is [NewDonburiStore], which bridges sway animation
// events (finish, repeat, logically finished) into a [Donburi] world as
// typed events. Subscribe to [AnimationEventType] in your ECS systems to
// receive them.
//
// Usage:
//
//	store := ecs.NewDonburiStore(world)
//	client.SetEntityStore(store)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
