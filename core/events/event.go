// Package events defines the kernel-wide event emission contract and the
// typed payloads every kernel component emits.
package events

import "flowkernel/core/types"

// Event represents a structured state change emitted by a kernel component.
type Event interface {
	EventType() string
}

// Emitter broadcasts events to downstream subscribers (adminapi's WebSocket
// stream, the webhook dispatcher, the audit log).
type Emitter interface {
	Emit(Event)
}

// NoopEmitter is a helper that satisfies the Emitter interface while
// discarding all events. It is useful when a component wants to optionally
// expose events.
type NoopEmitter struct{}

// Emit implements the Emitter interface.
func (NoopEmitter) Emit(Event) {}

// MultiEmitter fans a single event out to every wrapped emitter, e.g. the
// metrics recorder, the WebSocket stream, and the webhook dispatcher at once.
type MultiEmitter struct {
	Emitters []Emitter
}

// Emit implements the Emitter interface.
func (m MultiEmitter) Emit(evt Event) {
	for _, e := range m.Emitters {
		if e == nil {
			continue
		}
		e.Emit(evt)
	}
}

// Payload is satisfied by every concrete event struct in this package.
type Payload interface {
	Event
	Event() *types.Event
}
