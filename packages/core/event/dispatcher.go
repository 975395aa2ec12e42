package event

import "sync"

// Listener receives published events.
type Listener func(Event)

// Dispatcher routes events to subscribed listeners. Delivery is synchronous
// and in subscription order; for events whose test carries group tags, the
// group-qualified keys are served before the bare type key.
type Dispatcher struct {
	mu        sync.RWMutex
	listeners map[string][]Listener
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		listeners: make(map[string][]Listener),
	}
}

// Subscribe registers fn for the exact event-type key. Subscribing to
// "test.start" receives every test start; "test.start.smoke" only starts of
// tests tagged with the "smoke" group.
func (d *Dispatcher) Subscribe(eventType string, fn Listener) {
	if fn == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], fn)
}

// Publish delivers ev once per group tag under eventType+"."+group, then once
// under the bare eventType.
func (d *Dispatcher) Publish(eventType string, ev Event) {
	if ev.Test != nil {
		for _, group := range ev.Test.Groups() {
			d.deliver(eventType+"."+group, ev)
		}
	}
	d.deliver(eventType, ev)
}

func (d *Dispatcher) deliver(key string, ev Event) {
	d.mu.RLock()
	fns := d.listeners[key]
	d.mu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}
