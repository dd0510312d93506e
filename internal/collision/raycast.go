package collision

import (
	"cmp"
	"math"
	"slices"

	rl "github.com/gen2brain/raylib-go/raylib"

	"collide3d/internal/engine"
	"collide3d/internal/physics"
)

// RayHit is the result of a ray query. An empty ID means nothing was hit and
// Point is then the end of the ray.
type RayHit struct {
	ID       string
	Point    rl.Vector3
	Distance float32
}

func (h RayHit) Hit() bool {
	return h.ID != ""
}

// RayCast returns the closest body along r. Equal distances resolve to the
// body with the smaller id.
func (m *Manager) RayCast(r *engine.Ray) RayHit {
	hits := m.RayCastAll(r)
	if len(hits) == 0 {
		return missFor(r)
	}
	return hits[0]
}

// NextHit returns the closest hit strictly further than beyond along r.
func (m *Manager) NextHit(r *engine.Ray, beyond float32) RayHit {
	for _, h := range m.RayCastAll(r) {
		if h.Distance > beyond {
			return h
		}
	}
	return missFor(r)
}

// RayCastAll returns every body r hits, nearest first.
// Runs on the caller; it only reads the registry.
func (m *Manager) RayCastAll(r *engine.Ray) []RayHit {
	if !r.Valid() {
		return nil
	}
	geom := r.Geometry()

	var hits []RayHit
	for _, s := range m.snapshot(false) {
		if s.ID == r.ID() || !r.Accepts(s) {
			continue
		}
		t, ok := physics.Intersect(geom, s.Volume)
		if !ok {
			continue
		}
		hits = append(hits, RayHit{ID: s.ID, Point: geom.Point(t), Distance: t})
	}

	slices.SortStableFunc(hits, func(a, b RayHit) int { return cmp.Compare(a.Distance, b.Distance) })
	return hits
}

// missFor is the no-hit result: positioned at the end of the ray, or the zero
// value when the ray has no usable extent.
func missFor(r *engine.Ray) RayHit {
	if r == nil {
		return RayHit{}
	}
	end := r.Geometry().End()
	if !finite(r.Length()) || !finite(end.X) || !finite(end.Y) || !finite(end.Z) {
		return RayHit{}
	}
	return RayHit{Point: end, Distance: r.Length()}
}

func finite(x float32) bool {
	f := float64(x)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
