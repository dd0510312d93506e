package config

import (
	"fmt"
	"slices"
)

// Collision layers used by the presets.
const (
	LayerPlayer uint32 = 1 << iota
	LayerEnemy
	LayerWall
	LayerPickup
)

var Presets = map[string]*Config{
	// Two spheres pass through each other: one Trigger, a run of Stays, one Exit.
	"pass": {
		Frames: 180, Dt: DefaultDt, Bounds: 0,
		Bodies: []BodyConfig{
			{Name: "left", Shape: "sphere", Position: V(-6, 0, 0), Radius: 1, Velocity: V(3, 0, 0)},
			{Name: "right", Shape: "sphere", Position: V(6, 0, 0), Radius: 1, Velocity: V(-3, 0, 0)},
		},
		Rays: []RayConfig{
			{Name: "probe", Origin: V(0, 0, -10), Direction: V(0, 0, 1), Length: 20},
		},
	},
	// A player walks through a room; enemies ignore each other, pickups ignore walls.
	"layers": {
		Frames: 240, Dt: DefaultDt, Bounds: 10,
		Bodies: []BodyConfig{
			{Name: "player", Shape: "sphere", Position: V(-8, 0, 0), Radius: 0.5, Velocity: V(4, 0, 0), Attribute: LayerPlayer},
			{Name: "grunt", Shape: "box", Position: V(0, 0, 0), HalfSize: V(0.5, 1, 0.5), Attribute: LayerEnemy, Ignore: LayerEnemy},
			{Name: "brute", Shape: "box", Position: V(0.5, 0, 0), HalfSize: V(1, 1, 1), Attribute: LayerEnemy, Ignore: LayerEnemy},
			{Name: "coin", Shape: "sphere", Position: V(4, 0, 0), Radius: 0.3, Attribute: LayerPickup, Ignore: LayerWall | LayerEnemy, Consume: true},
			{Name: "wall", Shape: "box", Position: V(4, 0, 0), HalfSize: V(0.2, 3, 3), Attribute: LayerWall},
		},
		Rays: []RayConfig{
			{Name: "sight", Origin: V(-9, 0, 0), Target: &Vec3{9, 0, 0}, Ignore: LayerPickup},
		},
	},
	// Randomly moving bodies bouncing in a cube.
	"crowd": {
		Frames: DefaultFrames, Dt: DefaultDt, Bounds: DefaultBounds, Seed: 1,
		Random: RandomConfig{Count: 200, Shape: "mixed", MinSize: 0.3, MaxSize: 1.2, MaxSpeed: 6},
		Rays: []RayConfig{
			{Name: "x-axis", Origin: V(-20, 0, 0), Direction: V(1, 0, 0), Length: 40},
			{Name: "diagonal", Origin: V(-20, -20, -20), Target: &Vec3{20, 20, 20}},
		},
	},
	// Static boxes on a line for ray queries.
	"gallery": {
		Frames: 1, Dt: DefaultDt,
		Bodies: []BodyConfig{
			{Name: "near", Shape: "box", Position: V(0, 0, 3), HalfSize: V(1, 1, 0.5)},
			{Name: "middle", Shape: "sphere", Position: V(0, 0, 6), Radius: 1},
			{Name: "far", Shape: "box", Position: V(0, 0, 10), HalfSize: V(2, 2, 0.5)},
			{Name: "hidden", Shape: "sphere", Position: V(0, 0, 14), Radius: 1, Disabled: true},
		},
		Rays: []RayConfig{
			{Name: "forward", Origin: V(0, 0, 0), Direction: V(0, 0, 1), Length: 20},
			{Name: "short", Origin: V(0, 0, 0), Direction: V(0, 0, 1), Length: 2},
			{Name: "offset", Origin: V(1.5, 0, 0), Direction: V(0, 0, 1), Length: 20},
		},
	},
	// Dense population for timing the broad phase.
	"stress": {
		Frames: 60, Dt: DefaultDt, Bounds: 40, Seed: 42,
		Random: RandomConfig{Count: 1500, Shape: "mixed", MinSize: 0.2, MaxSize: 1, MaxSpeed: 10},
	},
}

// GetPreset returns a copy of the named preset.
func GetPreset(name string) (*Config, error) {
	cfg, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	out := cfg.Clone()
	out.Name = name
	return out, nil
}

// ListPresets returns the preset names in alphabetical order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
