package domain

// Event is a domain event emitted by a state-change operation and delivered
// synchronously, inside the same transaction as the change, to every
// registered listener. Replaces implicit observer side effects: ordering and
// failure semantics are explicit at the call site.
type Event interface {
	Name() string
}

// ClientStatusChanged is emitted when a client's lifecycle status changes.
// Its primary listener deactivates the client's portal account on exit.
type ClientStatusChanged struct {
	ClientID string
	Old      ClientStatus
	New      ClientStatus
}

func (ClientStatusChanged) Name() string { return "client.status_changed" }

// DVFlagChanged is emitted when a client's DV-safe flag flips.
type DVFlagChanged struct {
	ClientID string
	Set      bool
}

func (DVFlagChanged) Name() string { return "client.dv_flag_changed" }

// Listener handles one event. A listener error aborts the surrounding
// operation, which is the point: the side effect is part of the transaction.
type Listener func(event Event) error

// EventBus is a synchronous listener registry. It is populated at startup
// and read-only afterwards, so no locking is needed at publish time.
type EventBus struct {
	listeners map[string][]Listener
}

func NewEventBus() *EventBus {
	return &EventBus{listeners: make(map[string][]Listener)}
}

// Subscribe registers a listener for the named event.
func (b *EventBus) Subscribe(name string, l Listener) {
	b.listeners[name] = append(b.listeners[name], l)
}

// Publish delivers the event to every listener in registration order,
// stopping at the first error.
func (b *EventBus) Publish(event Event) error {
	for _, l := range b.listeners[event.Name()] {
		if err := l(event); err != nil {
			return err
		}
	}
	return nil
}
