package physics

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// ShapeKind tags which volume a body uses for detection.
// The zero value is ShapeNone so a freshly built body never collides.
type ShapeKind uint8

const (
	ShapeNone ShapeKind = iota
	ShapeSphere
	ShapeBox
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeSphere:
		return "sphere"
	case ShapeBox:
		return "box"
	default:
		return "none"
	}
}

// ParseShapeKind maps a config name back to a ShapeKind
func ParseShapeKind(name string) (ShapeKind, bool) {
	switch name {
	case "sphere":
		return ShapeSphere, true
	case "box", "aabb":
		return ShapeBox, true
	case "none", "":
		return ShapeNone, true
	}
	return ShapeNone, false
}

// Extent is the size of a body: either a Radius or a HalfExtent.
type Extent interface {
	isExtent()
}

// Radius sizes a sphere.
type Radius float32

// HalfExtent sizes a box by its half dimensions on each axis.
type HalfExtent rl.Vector3

func (Radius) isExtent()     {}
func (HalfExtent) isExtent() {}

// Volume is a positioned shape ready for the narrow phase.
// Implemented by Sphere and Box only.
type Volume interface {
	Kind() ShapeKind
	Bounds() AABB
}

type Sphere struct {
	Position rl.Vector3
	Radius   float32
}

type Box struct {
	Position rl.Vector3
	HalfSize rl.Vector3
}

func (s Sphere) Kind() ShapeKind { return ShapeSphere }
func (b Box) Kind() ShapeKind    { return ShapeBox }

func (s Sphere) Bounds() AABB {
	return NewAABBFromHalfSize(s.Position, rl.Vector3{X: s.Radius, Y: s.Radius, Z: s.Radius})
}

func (b Box) Bounds() AABB {
	return NewAABBFromHalfSize(b.Position, b.HalfSize)
}

// NewVolume builds the volume for a shape tag at a position.
// A mismatched extent is coerced: a sphere sized by a HalfExtent takes X as its radius,
// a box sized by a Radius becomes a cube with that half size.
func NewVolume(kind ShapeKind, position rl.Vector3, size Extent) Volume {
	switch kind {
	case ShapeSphere:
		switch s := size.(type) {
		case Radius:
			return Sphere{Position: position, Radius: float32(s)}
		case HalfExtent:
			return Sphere{Position: position, Radius: s.X}
		}
		return Sphere{Position: position}
	case ShapeBox:
		switch s := size.(type) {
		case HalfExtent:
			return Box{Position: position, HalfSize: rl.Vector3(s)}
		case Radius:
			r := float32(s)
			return Box{Position: position, HalfSize: rl.Vector3{X: r, Y: r, Z: r}}
		}
		return Box{Position: position}
	}
	return nil
}
