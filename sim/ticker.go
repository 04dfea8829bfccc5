package sim

// TickEvent is a generic event that almost all the components can use to
// update their status.
type TickEvent struct {
	EventBase
}

// MakeTickEvent creates a new TickEvent.
func MakeTickEvent(handler Handler, time VTick) TickEvent {
	evt := TickEvent{}
	evt.ID = GetIDGenerator().Generate()
	evt.handler = handler
	evt.time = time
	evt.secondary = false

	return evt
}

// MakeSecondaryTickEvent creates a new TickEvent that runs after all the
// same-tick primary events.
func MakeSecondaryTickEvent(handler Handler, time VTick) TickEvent {
	evt := MakeTickEvent(handler, time)
	evt.secondary = true

	return evt
}
