// Package event implements the synchronous event channel that connects the
// suite execution loop to observers such as reporters, coverage collectors,
// history recorders, and metrics exporters.
//
// Events are plain in-process callbacks: publishing never queues, defers, or
// spawns goroutines. A test that belongs to one or more groups has each of
// its events delivered first under the group-qualified type key
// ("test.start.smoke") and then under the bare type key ("test.start"), so
// observers can subscribe to everything or to a single group.
package event
