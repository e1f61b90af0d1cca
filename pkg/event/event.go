// Package event is the in-process dispatcher behind the order fan-out:
// services fire named events, listeners (websocket broadcast, notification
// channels, receipt mails) subscribe at boot.
package event

import "sync"

// Handler receives an event payload.
type Handler func(payload any)

type dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

var global = &dispatcher{handlers: map[string][]Handler{}}

// Listen registers a handler for the named event.
func Listen(name string, h Handler) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.handlers[name] = append(global.handlers[name], h)
}

func (d *dispatcher) snapshot(name string) []Handler {
	d.mu.RLock()
	defer d.mu.RUnlock()
	hs := make([]Handler, len(d.handlers[name]))
	copy(hs, d.handlers[name])
	return hs
}

// Fire dispatches the event synchronously, running every listener in
// registration order before returning.
func Fire(name string, payload any) {
	for _, h := range global.snapshot(name) {
		h(payload)
	}
}

// FireAsync dispatches the event without waiting; each listener runs in
// its own goroutine. Used on request paths that must not block on
// notification delivery.
func FireAsync(name string, payload any) {
	for _, h := range global.snapshot(name) {
		go h(payload)
	}
}

// Flush drops every registered listener. Tests use it to isolate fixtures.
func Flush() {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.handlers = map[string][]Handler{}
}
