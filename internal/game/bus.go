package game

import "sync"

// Listener receives every published effect.
type Listener func(Effect)

type typedListener struct {
	handle   int
	callback func(Effect)
}

// EffectBus is a synchronous publish/subscribe channel for effect descriptors,
// used by presentation layers that prefer callbacks over inspecting Results.
type EffectBus struct {
	mu             sync.RWMutex
	listeners      map[int]Listener
	typedListeners map[EffectKind][]typedListener
	nextHandle     int
}

// NewEffectBus constructs an empty bus.
func NewEffectBus() *EffectBus {
	return &EffectBus{
		listeners:      make(map[int]Listener),
		typedListeners: make(map[EffectKind][]typedListener),
	}
}

// Subscribe registers a listener for all effects and returns a handle.
func (bus *EffectBus) Subscribe(listener Listener) int {
	if listener == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.listeners[handle] = listener
	return handle
}

// SubscribeKind registers a listener for one effect kind.
func (bus *EffectBus) SubscribeKind(kind EffectKind, callback func(Effect)) int {
	if callback == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.typedListeners[kind] = append(bus.typedListeners[kind], typedListener{handle: handle, callback: callback})
	return handle
}

// Unsubscribe removes the listener identified by handle.
func (bus *EffectBus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	delete(bus.listeners, handle)
	for kind, listeners := range bus.typedListeners {
		for i := len(listeners) - 1; i >= 0; i-- {
			if listeners[i].handle == handle {
				bus.typedListeners[kind] = append(listeners[:i], listeners[i+1:]...)
				break
			}
		}
	}
}

// Publish delivers effect to all matching listeners synchronously.
func (bus *EffectBus) Publish(effect Effect) {
	bus.mu.RLock()
	defer bus.mu.RUnlock()

	for _, listener := range bus.listeners {
		listener(effect)
	}
	for _, listener := range bus.typedListeners[effect.Kind()] {
		listener.callback(effect)
	}
}

// PublishBatch publishes effects in order.
func (bus *EffectBus) PublishBatch(effects []Effect) {
	for _, effect := range effects {
		bus.Publish(effect)
	}
}
