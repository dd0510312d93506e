package collision

import (
	"cmp"
	"slices"
	"time"

	"collide3d/internal/engine"
	"collide3d/internal/physics"
)

// Detect rolls the current pairs into the previous generation and fills the
// current set with every eligible overlapping pair.
// The all-pairs scan is split into contiguous index ranges, one pool task each;
// Detect returns once every task has finished.
func (m *Manager) Detect() {
	start := time.Now()
	m.begin()
	defer m.end()

	m.drainPending()

	m.mu.Lock()
	m.previous = m.current
	m.current = make(pairSet, len(m.previous))
	m.mu.Unlock()

	states := m.snapshot(true)
	found := m.scan(states)

	m.mu.Lock()
	for _, local := range found {
		for _, p := range local {
			m.current[p] = struct{}{}
		}
	}
	pairs := len(m.current)
	m.mu.Unlock()

	m.log.V(2).Info("Collision: detect finished", "bodies", len(states), "pairs", pairs, "elapsed", time.Since(start))
}

// snapshot copies the state of every live, enabled, shaped body ordered by id.
// Entries whose body was garbage collected are dropped when prune is set.
func (m *Manager) snapshot(prune bool) []engine.State {
	var stale []string

	m.mu.RLock()
	states := make([]engine.State, 0, len(m.bodies))
	for id, ref := range m.bodies {
		b := ref.Value()
		if b == nil {
			stale = append(stale, id)
			continue
		}
		s := b.State()
		if !s.Enabled || s.Shape == physics.ShapeNone {
			continue
		}
		states = append(states, s)
	}
	m.mu.RUnlock()

	if prune && len(stale) > 0 {
		m.mu.Lock()
		for _, id := range stale {
			if ref, ok := m.bodies[id]; ok && ref.Value() == nil {
				m.removeLocked(id)
			}
		}
		m.mu.Unlock()
		m.log.V(1).Info("Collision: dropped collected bodies", "count", len(stale))
	}

	slices.SortFunc(states, func(a, b engine.State) int { return cmp.Compare(a.ID, b.ID) })
	return states
}

// scan runs the upper-triangular pair scan across the pool.
// Each range writes only its own slot of the result.
func (m *Manager) scan(states []engine.State) [][]Pair {
	n := len(states)
	if n < 2 {
		return nil
	}
	ranges := min(m.pool.Size(), n)
	chunk := (n + ranges - 1) / ranges
	found := make([][]Pair, ranges)

	batch := m.pool.NewBatch()
	for r := 0; r < ranges; r++ {
		lo := r * chunk
		if lo >= n {
			break
		}
		hi := min(lo+chunk, n)
		task := func() {
			found[r] = m.scanRange(states, lo, hi)
		}
		if err := batch.Go(task); err != nil {
			// Pool closed, run on the caller
			task()
		}
	}
	batch.Wait()
	return found
}

// scanRange tests every pair (i, j) with i in [lo, hi) and j > i.
func (m *Manager) scanRange(states []engine.State, lo, hi int) []Pair {
	var out []Pair
	for i := lo; i < hi; i++ {
		a := states[i]
		for j := i + 1; j < len(states); j++ {
			b := states[j]
			if !engine.CanCollide(a, b) {
				continue
			}
			if m.cutoff > 0 && !physics.CentersWithin(a.Volume, b.Volume, m.cutoff) {
				continue
			}
			if physics.Overlaps(a.Volume, b.Volume) {
				out = append(out, MakePair(a.ID, b.ID))
			}
		}
	}
	return out
}
