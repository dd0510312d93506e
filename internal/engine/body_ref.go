package engine

// BodyRef is a serializable reference to a Body by identifier.
// Use it where holding the *Body would keep it alive longer than its owner intends.
//
// Example:
//
//	type Turret struct {
//	    Target engine.BodyRef
//	}
//
//	func (t *Turret) Aim(m *collision.Manager) {
//	    if target := t.Target.Get(m); target != nil {
//	        // Use the target...
//	    }
//	}
type BodyRef struct {
	ID string // identifier of the referenced Body ("" = none)
}

// RefTo returns a reference to b, or an empty reference for nil.
func RefTo(b *Body) BodyRef {
	var r BodyRef
	r.Set(b)
	return r
}

// Get resolves the reference through a registry.
// Returns nil if the reference is empty or the body is gone.
func (r BodyRef) Get(resolver Resolver) *Body {
	if r.ID == "" || resolver == nil {
		return nil
	}
	b, ok := resolver.Get(r.ID)
	if !ok {
		return nil
	}
	return b
}

// IsValid returns true if the reference points to something.
// Note: This doesn't check if the Body is still registered.
func (r BodyRef) IsValid() bool {
	return r.ID != ""
}

// Set sets the reference to point to the given Body.
// Pass nil to clear the reference.
func (r *BodyRef) Set(b *Body) {
	if b == nil {
		r.ID = ""
	} else {
		r.ID = b.ID()
	}
}

func (r *BodyRef) Clear() {
	r.ID = ""
}
