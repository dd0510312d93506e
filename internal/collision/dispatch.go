package collision

import (
	"fmt"

	"collide3d/internal/engine"
)

// ProcessEvent fires callbacks for the difference between the last two Detect calls:
// Trigger for new pairs, Stay for pairs in both, Exit for pairs that disappeared.
// Both bodies of a pair are notified, A first, each with the other as argument.
//
// No lock is held while a callback runs, so callbacks may register, unregister or
// destroy bodies. Those changes are applied once dispatch is over. Pairs whose
// bodies are gone by the time they are reached are skipped.
func (m *Manager) ProcessEvent() {
	m.begin()

	m.mu.RLock()
	var triggers, stays, exits []Pair
	for _, p := range m.current.sorted() {
		if _, ok := m.previous[p]; ok {
			stays = append(stays, p)
		} else {
			triggers = append(triggers, p)
		}
	}
	for _, p := range m.previous.sorted() {
		if _, ok := m.current[p]; !ok {
			exits = append(exits, p)
		}
	}
	m.mu.RUnlock()

	m.dispatch(engine.EventTrigger, triggers)
	m.dispatch(engine.EventStay, stays)
	m.dispatch(engine.EventExit, exits)

	m.drainPending()
	m.end()

	m.log.V(2).Info("Collision: events dispatched", "trigger", len(triggers), "stay", len(stays), "exit", len(exits))
}

func (m *Manager) dispatch(kind engine.EventKind, pairs []Pair) {
	for _, p := range pairs {
		if a, b, ok := m.lookupPair(p); ok {
			m.notify(kind, a, b)
		}
		// Look again: the first callback may have destroyed either body
		if a, b, ok := m.lookupPair(p); ok {
			m.notify(kind, b, a)
		}
	}
}

func (m *Manager) lookupPair(p Pair) (*engine.Body, *engine.Body, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.resolveLocked(p.A)
	if !ok {
		return nil, nil, false
	}
	b, ok := m.resolveLocked(p.B)
	if !ok {
		return nil, nil, false
	}
	return a, b, true
}

// notify runs self's callbacks for kind. A panicking callback is logged and dispatch goes on.
func (m *Manager) notify(kind engine.EventKind, self, other *engine.Body) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error(fmt.Errorf("panic: %v", r), "Collision: callback panicked",
				"event", kind.String(), "body", self.ID(), "other", other.ID())
		}
	}()
	self.Notify(kind, other)
}
