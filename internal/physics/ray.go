package physics

import rl "github.com/gen2brain/raylib-go/raylib"

// Ray is a bounded half-line: Origin + Direction*t for t in [0, Length].
// Direction is kept normalized; a zero direction marks the ray invalid.
type Ray struct {
	Origin    rl.Vector3
	Direction rl.Vector3
	Length    float32
}

func NewRay(origin, direction rl.Vector3, length float32) Ray {
	return Ray{
		Origin:    origin,
		Direction: normalize(direction),
		Length:    length,
	}
}

// NewRayTo builds a ray from origin that ends exactly at destination.
func NewRayTo(origin, destination rl.Vector3) Ray {
	r := Ray{Origin: origin}
	r.SetDestination(destination)
	return r
}

// SetDestination points the ray at destination and sets its length to reach it.
func (r *Ray) SetDestination(destination rl.Vector3) {
	delta := rl.Vector3Subtract(destination, r.Origin)
	r.Length = rl.Vector3Length(delta)
	r.Direction = normalize(delta)
}

// Point returns the position at distance t along the ray.
func (r Ray) Point(t float32) rl.Vector3 {
	return rl.Vector3Add(r.Origin, rl.Vector3Scale(r.Direction, t))
}

// End is the point at the ray's maximum extent.
func (r Ray) End() rl.Vector3 {
	return r.Point(r.Length)
}

// Valid reports whether the ray can hit anything at all.
func (r Ray) Valid() bool {
	if !finiteVec(r.Origin) || !finiteVec(r.Direction) || !finite(r.Length) {
		return false
	}
	if r.Length <= 0 {
		return false
	}
	return rl.Vector3DotProduct(r.Direction, r.Direction) > epsilon
}

func normalize(v rl.Vector3) rl.Vector3 {
	if !finiteVec(v) {
		return rl.Vector3{}
	}
	length := rl.Vector3Length(v)
	if length < epsilon {
		return rl.Vector3{}
	}
	return rl.Vector3Scale(v, 1/length)
}
