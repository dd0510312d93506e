package physics

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Overlaps runs the narrow phase for any pair of volumes.
// Operand order does not matter; mixed pairs are normalized to box-then-sphere.
func Overlaps(a, b Volume) bool {
	switch va := a.(type) {
	case Sphere:
		switch vb := b.(type) {
		case Sphere:
			return SphereSphere(va, vb)
		case Box:
			return BoxSphere(vb, va)
		}
	case Box:
		switch vb := b.(type) {
		case Sphere:
			return BoxSphere(va, vb)
		case Box:
			return BoxBox(va, vb)
		}
	}
	return false
}

// SphereSphere overlaps when the center distance is at most the radius sum.
func SphereSphere(a, b Sphere) bool {
	return rl.Vector3Distance(a.Position, b.Position) <= a.Radius+b.Radius
}

// BoxBox tests the per-axis interval overlap of two axis-aligned boxes.
func BoxBox(a, b Box) bool {
	return a.Bounds().Intersects(b.Bounds())
}

// BoxSphere checks the sphere center against the box grown by the radius.
// This is the cheap expanded-box test, so it reports hits near the box corners
// that an exact closest-point test would reject.
func BoxSphere(box Box, sphere Sphere) bool {
	return box.Bounds().Expand(sphere.Radius).Contains(sphere.Position)
}

// CentersWithin reports whether two volumes' centers are at most d apart.
func CentersWithin(a, b Volume, d float32) bool {
	ca, cb := a.Bounds().Center(), b.Bounds().Center()
	return rl.Vector3Distance(ca, cb) <= d
}
