package physics

import (
	"math"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-4
}

func TestNewRayNormalizes(t *testing.T) {
	r := NewRay(rl.Vector3{}, rl.Vector3{Z: 10}, 5)
	if r.Direction != (rl.Vector3{Z: 1}) {
		t.Errorf("Direction should be normalized, got %v", r.Direction)
	}
	if !r.Valid() {
		t.Error("Ray should be valid")
	}
	if end := r.End(); !near(end.Z, 5) {
		t.Errorf("End() = %v, want z=5", end)
	}
}

func TestRaySetDestination(t *testing.T) {
	r := NewRayTo(rl.Vector3{X: 1}, rl.Vector3{X: 1, Y: 4})
	if !near(r.Length, 4) {
		t.Errorf("Length = %v, want 4", r.Length)
	}
	if r.Direction != (rl.Vector3{Y: 1}) {
		t.Errorf("Direction = %v, want +Y", r.Direction)
	}
}

func TestRayInvalid(t *testing.T) {
	tests := []struct {
		name string
		ray  Ray
	}{
		{"zero direction", NewRay(rl.Vector3{}, rl.Vector3{}, 10)},
		{"zero length", NewRay(rl.Vector3{}, rl.Vector3{X: 1}, 0)},
		{"negative length", NewRay(rl.Vector3{}, rl.Vector3{X: 1}, -1)},
		{"NaN length", NewRay(rl.Vector3{}, rl.Vector3{X: 1}, float32(math.NaN()))},
		{"NaN direction", NewRay(rl.Vector3{}, rl.Vector3{X: float32(math.NaN())}, 1)},
		{"infinite origin", NewRay(rl.Vector3{Y: float32(math.Inf(1))}, rl.Vector3{X: 1}, 1)},
	}

	box := Box{HalfSize: rl.Vector3{X: 100, Y: 100, Z: 100}}
	sphere := Sphere{Radius: 100}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.ray.Valid() {
				t.Error("ray should be invalid")
			}
			if _, ok := IntersectBox(tt.ray, box); ok {
				t.Error("invalid ray should not hit a box")
			}
			if _, ok := IntersectSphere(tt.ray, sphere); ok {
				t.Error("invalid ray should not hit a sphere")
			}
		})
	}
}

func TestIntersectSphere(t *testing.T) {
	ray := NewRay(rl.Vector3{}, rl.Vector3{Z: 1}, 100)

	tests := []struct {
		name   string
		sphere Sphere
		want   float32
		hit    bool
	}{
		{"straight ahead", Sphere{Position: rl.Vector3{Z: 5}, Radius: 1}, 4, true},
		{"further ahead", Sphere{Position: rl.Vector3{Z: 10}, Radius: 1}, 9, true},
		{"grazing", Sphere{Position: rl.Vector3{X: 1, Z: 5}, Radius: 1}, 5, true},
		{"off to the side", Sphere{Position: rl.Vector3{X: 3, Z: 5}, Radius: 1}, 0, false},
		{"behind origin", Sphere{Position: rl.Vector3{Z: -5}, Radius: 1}, 0, false},
		{"center past length", Sphere{Position: rl.Vector3{Z: 101}, Radius: 5}, 0, false},
		{"origin inside", Sphere{Position: rl.Vector3{Z: 0.5}, Radius: 2}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := IntersectSphere(ray, tt.sphere)
			if ok != tt.hit {
				t.Fatalf("hit = %v, want %v", ok, tt.hit)
			}
			if ok && !near(got, tt.want) {
				t.Errorf("distance = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIntersectSphereClampsToLength(t *testing.T) {
	// Center sits exactly at the end of the ray
	ray := NewRay(rl.Vector3{}, rl.Vector3{Z: 1}, 10)
	got, ok := IntersectSphere(ray, Sphere{Position: rl.Vector3{Z: 10}, Radius: 0.5})
	if !ok {
		t.Fatal("expected hit")
	}
	if !near(got, 9.5) {
		t.Errorf("distance = %v, want 9.5", got)
	}

	if got > ray.Length || got < 0 {
		t.Errorf("distance %v outside [0, %v]", got, ray.Length)
	}
}

func TestIntersectBox(t *testing.T) {
	box := Box{Position: rl.Vector3{Z: 10}, HalfSize: rl.Vector3{X: 1, Y: 1, Z: 1}}

	tests := []struct {
		name string
		ray  Ray
		want float32
		hit  bool
	}{
		{"head on", NewRay(rl.Vector3{}, rl.Vector3{Z: 1}, 100), 9, true},
		{"diagonal", NewRay(rl.Vector3{X: -9, Z: 0}, rl.Vector3{X: 1, Z: 1}, 100), float32(9 * math.Sqrt2), true},
		{"too short", NewRay(rl.Vector3{}, rl.Vector3{Z: 1}, 8.5), 0, false},
		{"exactly reaches", NewRay(rl.Vector3{}, rl.Vector3{Z: 1}, 9), 9, true},
		{"pointing away", NewRay(rl.Vector3{}, rl.Vector3{Z: -1}, 100), 0, false},
		{"parallel outside slab", NewRay(rl.Vector3{X: 5}, rl.Vector3{Z: 1}, 100), 0, false},
		{"parallel on face", NewRay(rl.Vector3{X: 1}, rl.Vector3{Z: 1}, 100), 9, true},
		{"origin inside", NewRay(rl.Vector3{Z: 10}, rl.Vector3{X: 1}, 100), 0, true},
		{"misses above", NewRay(rl.Vector3{Y: 2}, rl.Vector3{Z: 1}, 100), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := IntersectBox(tt.ray, box)
			if ok != tt.hit {
				t.Fatalf("hit = %v, want %v (t=%v)", ok, tt.hit, got)
			}
			if ok && !near(got, tt.want) {
				t.Errorf("distance = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIntersectDispatch(t *testing.T) {
	ray := NewRay(rl.Vector3{}, rl.Vector3{X: 1}, 20)

	if d, ok := Intersect(ray, Sphere{Position: rl.Vector3{X: 5}, Radius: 1}); !ok || !near(d, 4) {
		t.Errorf("sphere: got %v, %v", d, ok)
	}
	if d, ok := Intersect(ray, Box{Position: rl.Vector3{X: 5}, HalfSize: rl.Vector3{X: 1, Y: 1, Z: 1}}); !ok || !near(d, 4) {
		t.Errorf("box: got %v, %v", d, ok)
	}
	if _, ok := Intersect(ray, nil); ok {
		t.Error("nil volume should not be hit")
	}
}
