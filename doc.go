// Package sway is a property-animation engine split into a UI side and a
// render side.
//
// The UI side ([Client]) owns a tree of [Node] values. Each node attribute
// (bounds, translation, alpha, colours and so on) is a property behind a
// single modifier. Writing a property records a command; [Client.Commit]
// ships the pending commands as one [Transaction]. Writes made inside an
// implicit animation scope become animations instead of plain updates.
//
// The render side ([RenderService] around a [RenderContext]) applies
// transactions to its own mirror of the tree and ticks the animations every
// frame. Finish and repeat notifications travel back to the owning client,
// which runs the user's callbacks.
//
// # Quick start
//
// In one process the two sides talk through a [LocalBus]:
//
//	service := sway.NewRenderService(sway.NewRenderContext(), nil)
//	bus := sway.NewLocalBus(service)
//	service.SetRouter(bus)
//	client := sway.NewClient(1, bus)
//	bus.Register(1, client)
//
//	box := client.NewNode("box")
//	box.SetAlpha(0)
//	client.Animate(sway.DefaultTimingProtocol(), sway.CurveEaseOut, func() {
//		box.SetAlpha(1)
//	}, nil)
//	client.Commit(ctx)
//
// Then, once per frame:
//
//	service.Tick(now)
//	service.FlushCallbacks(ctx)
//	client.Tick(now)
//	client.Commit(ctx)
//
// # Animation kinds
//
// Interpolating curves (named easings via [gween] and [ease], or CSS
// cubic-bezier), keyframes, motion paths, time-based springs that retarget
// smoothly, fraction-based interpolating springs, and timers. Animations
// are additive: a new animation on a property blends on top of the ones
// already running.
//
// # Adapters
//
// sway/mqttlink carries transactions and callbacks over MQTT, sway/tracedb
// records per-frame traces in SQLite, sway/promstats exports tick metrics
// to Prometheus, and sway/ecs forwards animation events to a [Donburi]
// world.
//
// [gween]: https://github.com/tanema/gween
// [ease]: https://github.com/fogleman/ease
// [Donburi]: https://github.com/yohamta/donburi
package sway
