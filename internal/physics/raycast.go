package physics

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Intersect dispatches to the ray test for the volume's shape.
// It returns the distance along the ray to the hit.
func Intersect(r Ray, v Volume) (float32, bool) {
	switch vol := v.(type) {
	case Box:
		return IntersectBox(r, vol)
	case Sphere:
		return IntersectSphere(r, vol)
	}
	return 0, false
}

// IntersectBox is the slab test against an axis-aligned box.
// A ray starting inside the box hits at distance 0.
func IntersectBox(r Ray, box Box) (float32, bool) {
	if !r.Valid() || !finiteVec(box.Position) || !finiteVec(box.HalfSize) {
		return 0, false
	}
	bounds := box.Bounds()

	tmin := float32(math.Inf(-1))
	tmax := float32(math.Inf(1))

	for i := 0; i < 3; i++ {
		origin := axis(r.Origin, i)
		dir := axis(r.Direction, i)
		lo, hi := axis(bounds.Min, i), axis(bounds.Max, i)

		// Parallel to this slab: must already be between its planes
		if abs(dir) < epsilon {
			if origin < lo || origin > hi {
				return 0, false
			}
			continue
		}

		inv := 1 / dir
		t1 := (lo - origin) * inv
		t2 := (hi - origin) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return 0, false
		}
	}

	if !finite(tmin) || !finite(tmax) {
		return 0, false
	}
	// Box entirely behind the origin
	if tmax < 0 {
		return 0, false
	}
	t := tmin
	if t < 0 {
		t = 0
	}
	if t > r.Length {
		return 0, false
	}
	return t, true
}

// IntersectSphere projects the center onto the ray and solves for the near hit.
// The distance is clamped into [0, Length].
func IntersectSphere(r Ray, sphere Sphere) (float32, bool) {
	if !r.Valid() || !finiteVec(sphere.Position) || !finite(sphere.Radius) {
		return 0, false
	}

	toCenter := rl.Vector3Subtract(sphere.Position, r.Origin)
	projection := rl.Vector3DotProduct(toCenter, r.Direction)

	// Center behind the ray or past its end
	if projection < 0 || projection > r.Length {
		return 0, false
	}

	d2 := rl.Vector3DotProduct(toCenter, toCenter) - projection*projection
	r2 := sphere.Radius * sphere.Radius
	if d2 > r2 {
		return 0, false
	}

	t := projection - float32(math.Sqrt(float64(r2-d2)))
	if !finite(t) {
		return 0, false
	}
	return clamp(t, 0, r.Length), true
}
