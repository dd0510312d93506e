package engine

import (
	"fmt"
	"sync"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"collide3d/internal/physics"
)

// Body is a registrable collision participant.
// Every setter returns the body so calls can be chained:
//
//	body.SetShape(physics.ShapeSphere).SetRadius(0.5).AddAttribute(LayerPlayer)
//
// The registry only borrows the body; the application owns its lifetime and ends it with Destroy.
type Body struct {
	mu sync.RWMutex

	id        string
	shape     physics.ShapeKind
	position  rl.Vector3
	size      physics.Extent
	attribute uint32
	ignore    uint32
	enabled   bool
	owner     any
	callbacks [eventKindCount]EventWithArg[*Body]

	registrar  Registrar
	registered bool
	destroyed  bool
	log        logr.Logger
}

// NewBody creates a body and registers it with r.
// A body that cannot be registered is not returned.
func NewBody(r Registrar) (*Body, error) {
	if r == nil {
		return nil, ErrNoRegistrar
	}
	b := &Body{
		id:        uuid.NewString(),
		size:      physics.Radius(0),
		enabled:   true,
		registrar: r,
		log:       loggerFor(r),
	}
	if !r.Register(b) {
		return nil, fmt.Errorf("%w: %s", ErrRegisterFailed, b.id)
	}
	b.registered = true
	return b, nil
}

// Destroy unregisters the body and marks it dead so lookups stop returning it.
// Unregister failures are logged, never returned; the registry may already be gone.
func (b *Body) Destroy() {
	b.mu.Lock()
	if b.destroyed {
		b.mu.Unlock()
		return
	}
	b.destroyed = true
	registrar := b.registrar
	b.mu.Unlock()

	if registrar == nil || !registrar.Unregister(b) {
		b.log.Error(ErrUnregisterFailed, "Collision: body unregister failed", "id", b.id)
	}

	b.mu.Lock()
	b.registered = false
	b.mu.Unlock()
}

func (b *Body) ID() string {
	return b.id
}

func (b *Body) SetShape(kind physics.ShapeKind) *Body {
	b.mu.Lock()
	b.shape = kind
	b.mu.Unlock()
	return b
}

func (b *Body) SetPosition(p rl.Vector3) *Body {
	b.mu.Lock()
	b.position = p
	b.mu.Unlock()
	return b
}

// SetSize sets the extent. A nil extent is ignored.
func (b *Body) SetSize(size physics.Extent) *Body {
	if size == nil {
		return b
	}
	b.mu.Lock()
	b.size = size
	b.mu.Unlock()
	return b
}

func (b *Body) SetRadius(r float32) *Body {
	return b.SetSize(physics.Radius(r))
}

func (b *Body) SetHalfSize(half rl.Vector3) *Body {
	return b.SetSize(physics.HalfExtent(half))
}

// SetCallback replaces the callback for kind. Passing nil clears it.
func (b *Body) SetCallback(kind EventKind, fn Callback) *Body {
	if !kind.Valid() {
		return b
	}
	b.mu.Lock()
	b.callbacks[kind].Set(fn)
	b.mu.Unlock()
	return b
}

// AddCallback adds another listener for kind next to the existing ones.
func (b *Body) AddCallback(kind EventKind, fn Callback) *Body {
	if !kind.Valid() || fn == nil {
		return b
	}
	b.mu.Lock()
	b.callbacks[kind].AddListener(fn)
	b.mu.Unlock()
	return b
}

func (b *Body) AddAttribute(mask uint32) *Body {
	b.mu.Lock()
	b.attribute |= mask
	b.mu.Unlock()
	return b
}

func (b *Body) RemoveAttribute(mask uint32) *Body {
	b.mu.Lock()
	b.attribute &^= mask
	b.mu.Unlock()
	return b
}

func (b *Body) AddIgnore(mask uint32) *Body {
	b.mu.Lock()
	b.ignore |= mask
	b.mu.Unlock()
	return b
}

func (b *Body) RemoveIgnore(mask uint32) *Body {
	b.mu.Lock()
	b.ignore &^= mask
	b.mu.Unlock()
	return b
}

func (b *Body) SetOwner(owner any) *Body {
	b.mu.Lock()
	b.owner = owner
	b.mu.Unlock()
	return b
}

func (b *Body) Enable() *Body {
	b.mu.Lock()
	b.enabled = true
	b.mu.Unlock()
	return b
}

func (b *Body) Disable() *Body {
	b.mu.Lock()
	b.enabled = false
	b.mu.Unlock()
	return b
}

func (b *Body) Shape() physics.ShapeKind {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.shape
}

func (b *Body) Position() rl.Vector3 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.position
}

func (b *Body) Size() physics.Extent {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.size
}

func (b *Body) Attribute() uint32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.attribute
}

func (b *Body) Ignore() uint32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.ignore
}

func (b *Body) Enabled() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.enabled
}

func (b *Body) Owner() any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.owner
}

// HasCallback reports whether any listener is set for kind.
func (b *Body) HasCallback(kind EventKind) bool {
	if !kind.Valid() {
		return false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.callbacks[kind].GetListenerCount() > 0
}

// Registered reports whether the body currently belongs to its registrar.
func (b *Body) Registered() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.registered
}

// Alive is false once Destroy has been called.
func (b *Body) Alive() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return !b.destroyed
}

// Volume builds the positioned shape for the narrow phase, nil for ShapeNone.
func (b *Body) Volume() physics.Volume {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return physics.NewVolume(b.shape, b.position, b.size)
}

// State copies everything detection needs in one locked read.
func (b *Body) State() State {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return State{
		ID:        b.id,
		Shape:     b.shape,
		Volume:    physics.NewVolume(b.shape, b.position, b.size),
		Attribute: b.attribute,
		Ignore:    b.ignore,
		Enabled:   b.enabled && !b.destroyed,
	}
}

// Notify invokes the listeners for kind with other as argument.
// No lock is held while listeners run, so they may freely modify either body.
func (b *Body) Notify(kind EventKind, other *Body) {
	if !kind.Valid() {
		return
	}
	b.mu.RLock()
	listeners := b.callbacks[kind].Listeners()
	b.mu.RUnlock()

	for _, listener := range listeners {
		listener(other)
	}
}

func (b *Body) String() string {
	return fmt.Sprintf("Body(%s %s)", b.Shape(), b.id)
}
