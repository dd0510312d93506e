package engine

import (
	"sync"

	"github.com/go-logr/logr"
)

// fakeRegistry records registrations and can be told to refuse them.
type fakeRegistry struct {
	mu           sync.Mutex
	bodies       map[string]*Body
	refuse       bool
	refuseRemove bool
	unregisters  int
	log          logr.Logger
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{bodies: make(map[string]*Body), log: logr.Discard()}
}

func (f *fakeRegistry) Register(b *Body) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.refuse {
		return false
	}
	if _, ok := f.bodies[b.ID()]; ok {
		return false
	}
	f.bodies[b.ID()] = b
	return true
}

func (f *fakeRegistry) Unregister(b *Body) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unregisters++
	if f.refuseRemove {
		return false
	}
	if _, ok := f.bodies[b.ID()]; !ok {
		return false
	}
	delete(f.bodies, b.ID())
	return true
}

func (f *fakeRegistry) Get(id string) (*Body, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bodies[id]
	if !ok || !b.Alive() {
		return nil, false
	}
	return b, true
}

func (f *fakeRegistry) Logger() logr.Logger {
	return f.log
}
