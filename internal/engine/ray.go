package engine

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/google/uuid"

	"collide3d/internal/physics"
)

// Ray is a finite query ray with its own identity and layer masks.
// Bodies whose masks reject the ray's are skipped by casts.
type Ray struct {
	id        string
	geom      physics.Ray
	attribute uint32
	ignore    uint32
	owner     any
}

// NewRay builds a ray from origin along direction, normalized, for length units.
func NewRay(origin, direction rl.Vector3, length float32) *Ray {
	return &Ray{
		id:   uuid.NewString(),
		geom: physics.NewRay(origin, direction, length),
	}
}

// NewRayTo builds a ray from origin ending at destination.
func NewRayTo(origin, destination rl.Vector3) *Ray {
	return &Ray{
		id:   uuid.NewString(),
		geom: physics.NewRayTo(origin, destination),
	}
}

func (r *Ray) ID() string {
	return r.id
}

func (r *Ray) SetOrigin(origin rl.Vector3) *Ray {
	r.geom.Origin = origin
	return r
}

func (r *Ray) SetDirection(direction rl.Vector3) *Ray {
	r.geom = physics.NewRay(r.geom.Origin, direction, r.geom.Length)
	return r
}

func (r *Ray) SetLength(length float32) *Ray {
	r.geom.Length = length
	return r
}

// SetDestination keeps the origin and points the ray at destination.
func (r *Ray) SetDestination(destination rl.Vector3) *Ray {
	r.geom.SetDestination(destination)
	return r
}

func (r *Ray) AddAttribute(mask uint32) *Ray {
	r.attribute |= mask
	return r
}

func (r *Ray) RemoveAttribute(mask uint32) *Ray {
	r.attribute &^= mask
	return r
}

func (r *Ray) AddIgnore(mask uint32) *Ray {
	r.ignore |= mask
	return r
}

func (r *Ray) RemoveIgnore(mask uint32) *Ray {
	r.ignore &^= mask
	return r
}

func (r *Ray) SetOwner(owner any) *Ray {
	r.owner = owner
	return r
}

func (r *Ray) Origin() rl.Vector3    { return r.geom.Origin }
func (r *Ray) Direction() rl.Vector3 { return r.geom.Direction }
func (r *Ray) Length() float32       { return r.geom.Length }
func (r *Ray) Attribute() uint32     { return r.attribute }
func (r *Ray) Ignore() uint32        { return r.ignore }
func (r *Ray) Owner() any            { return r.owner }

// Point returns origin + direction*t.
func (r *Ray) Point(t float32) rl.Vector3 {
	return r.geom.Point(t)
}

// Geometry returns the bare segment used by the intersection tests.
func (r *Ray) Geometry() physics.Ray {
	return r.geom
}

// Valid reports whether the ray can hit anything at all.
func (r *Ray) Valid() bool {
	return r != nil && r.geom.Valid()
}

// Accepts reports whether the ray may hit a body with state s.
func (r *Ray) Accepts(s State) bool {
	if !s.Enabled || s.Shape == physics.ShapeNone || s.Volume == nil {
		return false
	}
	return masksAccept(r.attribute, r.ignore, s.Attribute, s.Ignore)
}
