package engine

import "collide3d/internal/physics"

// State is a point-in-time copy of a body's collision-relevant fields.
type State struct {
	ID        string
	Shape     physics.ShapeKind
	Volume    physics.Volume
	Attribute uint32
	Ignore    uint32
	Enabled   bool
}

// masksAccept is the symmetric layer test: neither side ignores a layer the other carries.
func masksAccept(attrA, ignoreA, attrB, ignoreB uint32) bool {
	return attrA&ignoreB == 0 && attrB&ignoreA == 0
}

// CanCollide reports whether two bodies are eligible for the narrow phase.
// Bodies with no shape, disabled bodies, a body paired with itself and
// mask-rejected pairs are all excluded.
func CanCollide(a, b State) bool {
	if a.ID == b.ID {
		return false
	}
	if !a.Enabled || !b.Enabled {
		return false
	}
	if a.Shape == physics.ShapeNone || b.Shape == physics.ShapeNone || a.Volume == nil || b.Volume == nil {
		return false
	}
	return masksAccept(a.Attribute, a.Ignore, b.Attribute, b.Ignore)
}
