package collision

import (
	"github.com/go-logr/logr"

	"collide3d/internal/compute"
)

// Option configures a Manager.
type Option func(*Manager)

// WithPool runs detection on a shared pool. The Manager does not close it.
func WithPool(p *compute.Pool) Option {
	return func(m *Manager) {
		m.pool = p
	}
}

// WithWorkers sets the size of the Manager's own pool. n <= 0 means one per CPU.
// Ignored when WithPool is also given.
func WithWorkers(n int) Option {
	return func(m *Manager) {
		m.workers = n
	}
}

func WithLogger(log logr.Logger) Option {
	return func(m *Manager) {
		m.log = log
	}
}

// WithDistanceCutoff skips the narrow phase for pairs whose centers are further apart than d.
// d <= 0 disables the cutoff, which is the default.
func WithDistanceCutoff(d float32) Option {
	return func(m *Manager) {
		if d < 0 {
			d = 0
		}
		m.cutoff = d
	}
}
