// Package collision tracks registered bodies, finds overlapping pairs each frame
// and turns frame-to-frame differences into Trigger, Stay and Exit callbacks.
//
// A frame is driven by the caller:
//
//	m.Detect()       // parallel broad and narrow phase
//	m.ProcessEvent() // callbacks, then deferred registrations
//
// Callbacks may call Register and Unregister. While Detect or ProcessEvent is
// running those calls are queued and applied at the next safe point.
package collision

import (
	"cmp"
	"slices"
	"sync"
	"sync/atomic"
	"weak"

	"github.com/go-logr/logr"

	"collide3d/internal/compute"
	"collide3d/internal/engine"
)

// Manager is the body registry and broad-phase scheduler.
// It never owns bodies: entries are weak and stop resolving once a body is
// destroyed or collected.
type Manager struct {
	mu       sync.RWMutex
	bodies   map[string]weak.Pointer[engine.Body]
	current  pairSet
	previous pairSet

	pendingMu      sync.Mutex
	pendingAdds    []*engine.Body
	pendingRemoves []string

	// active counts Detect/ProcessEvent calls in flight
	active atomic.Int32
	closed atomic.Bool

	pool    *compute.Pool
	ownPool bool
	workers int
	cutoff  float32
	log     logr.Logger
}

var _ engine.Registrar = (*Manager)(nil)
var _ engine.Resolver = (*Manager)(nil)

func New(opts ...Option) *Manager {
	m := &Manager{
		bodies:   make(map[string]weak.Pointer[engine.Body]),
		current:  make(pairSet),
		previous: make(pairSet),
		log:      logr.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.pool == nil {
		m.pool = compute.NewPool(m.workers, m.log)
		m.ownPool = true
	}
	m.log.V(1).Info("Collision: manager ready", "workers", m.pool.Size(), "cutoff", m.cutoff)
	return m
}

// Close stops the Manager's own pool. Register and Unregister fail afterwards.
func (m *Manager) Close() {
	if m.closed.Swap(true) {
		return
	}
	if m.ownPool {
		m.pool.Close()
	}
}

func (m *Manager) Logger() logr.Logger {
	return m.log
}

// Workers is the number of pool workers detection can use.
func (m *Manager) Workers() int {
	return m.pool.Size()
}

// Register adds b, or queues it while a cycle is running.
// Registering an id again replaces the previous entry.
func (m *Manager) Register(b *engine.Body) bool {
	if b == nil || m.closed.Load() {
		return false
	}
	if m.active.Load() > 0 {
		m.pendingMu.Lock()
		m.pendingAdds = append(m.pendingAdds, b)
		m.pendingMu.Unlock()
		return true
	}

	m.mu.Lock()
	m.insertLocked(b)
	m.mu.Unlock()
	return true
}

// Unregister removes b and every pair referencing it, or queues the removal
// while a cycle is running.
func (m *Manager) Unregister(b *engine.Body) bool {
	if b == nil || m.closed.Load() {
		return false
	}
	if m.active.Load() > 0 {
		m.pendingMu.Lock()
		m.pendingRemoves = append(m.pendingRemoves, b.ID())
		m.pendingMu.Unlock()
		return true
	}

	m.mu.Lock()
	m.removeLocked(b.ID())
	m.mu.Unlock()
	return true
}

// Get looks up a committed, live body. Queued registrations are not visible.
func (m *Manager) Get(id string) (*engine.Body, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.resolveLocked(id)
}

// Len is the number of live registered bodies.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for id := range m.bodies {
		if _, ok := m.resolveLocked(id); ok {
			n++
		}
	}
	return n
}

// Bodies returns every live registered body ordered by id.
func (m *Manager) Bodies() []*engine.Body {
	m.mu.RLock()
	out := make([]*engine.Body, 0, len(m.bodies))
	for id := range m.bodies {
		if b, ok := m.resolveLocked(id); ok {
			out = append(out, b)
		}
	}
	m.mu.RUnlock()

	slices.SortFunc(out, func(x, y *engine.Body) int { return cmp.Compare(x.ID(), y.ID()) })
	return out
}

// Pairs returns the pairs found by the last Detect, sorted.
func (m *Manager) Pairs() []Pair {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.sorted()
}

// PreviousPairs returns the pairs found by the Detect before the last one, sorted.
func (m *Manager) PreviousPairs() []Pair {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.previous.sorted()
}

func (m *Manager) resolveLocked(id string) (*engine.Body, bool) {
	ref, ok := m.bodies[id]
	if !ok {
		return nil, false
	}
	b := ref.Value()
	if b == nil || !b.Alive() {
		return nil, false
	}
	return b, true
}

func (m *Manager) insertLocked(b *engine.Body) {
	if !b.Alive() {
		return
	}
	m.bodies[b.ID()] = weak.Make(b)
}

func (m *Manager) removeLocked(id string) {
	delete(m.bodies, id)
	m.current.purge(id)
	m.previous.purge(id)
}

func (m *Manager) begin() {
	m.active.Add(1)
}

func (m *Manager) end() {
	m.active.Add(-1)
}

// drainPending applies queued adds, then queued removes.
func (m *Manager) drainPending() {
	m.pendingMu.Lock()
	adds, removes := m.pendingAdds, m.pendingRemoves
	m.pendingAdds, m.pendingRemoves = nil, nil
	m.pendingMu.Unlock()

	if len(adds) == 0 && len(removes) == 0 {
		return
	}

	m.mu.Lock()
	for _, b := range adds {
		m.insertLocked(b)
	}
	for _, id := range removes {
		m.removeLocked(id)
	}
	m.mu.Unlock()

	m.log.V(1).Info("Collision: applied deferred registrations", "added", len(adds), "removed", len(removes))
}
