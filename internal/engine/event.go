package engine

// EventKind is the overlap transition a callback reacts to.
type EventKind uint8

const (
	// EventTrigger fires on the first frame two bodies overlap
	EventTrigger EventKind = iota
	// EventStay fires on every following frame they still overlap
	EventStay
	// EventExit fires on the first frame they no longer overlap
	EventExit

	eventKindCount
)

func (k EventKind) String() string {
	switch k {
	case EventTrigger:
		return "trigger"
	case EventStay:
		return "stay"
	case EventExit:
		return "exit"
	default:
		return "unknown"
	}
}

// Valid reports whether k names one of the three event slots.
func (k EventKind) Valid() bool {
	return k < eventKindCount
}

// Callback receives the other body of the pair.
type Callback func(other *Body)

// EventWithArg is a generic event with one argument
type EventWithArg[T any] struct {
	listeners []func(T)
}

// Set replaces every listener with callback. A nil callback clears the event.
func (e *EventWithArg[T]) Set(callback func(T)) {
	e.listeners = nil
	e.AddListener(callback)
}

func (e *EventWithArg[T]) AddListener(callback func(T)) {
	if callback == nil {
		return
	}
	e.listeners = append(e.listeners, callback)
}

func (e *EventWithArg[T]) RemoveAllListeners() {
	e.listeners = nil
}

// Listeners returns a copy that stays valid after the event is modified.
func (e *EventWithArg[T]) Listeners() []func(T) {
	if len(e.listeners) == 0 {
		return nil
	}
	out := make([]func(T), len(e.listeners))
	copy(out, e.listeners)
	return out
}

func (e *EventWithArg[T]) Invoke(arg T) {
	for _, listener := range e.listeners {
		if listener != nil {
			listener(arg)
		}
	}
}

func (e *EventWithArg[T]) GetListenerCount() int {
	return len(e.listeners)
}
