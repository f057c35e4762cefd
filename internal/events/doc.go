// Package events carries the domain events the recitation service publishes
// for other subsystems, most importantly rewards.
//
// Services emit events after their transaction commits. Emission never fails
// the operation that produced the event: the AsyncEmitter queues events and
// dispatches them from a small worker pool, and handler errors are logged.
//
// The primary components are:
// - Event: an envelope with a type and a JSON payload
// - EventHandler: consumes events (for example the Redis publisher)
// - EventEmitter: publishes events to handlers
package events
