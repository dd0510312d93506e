package collision

import (
	"cmp"
	"slices"
)

// Pair is two overlapping bodies, smaller id first
type Pair struct {
	A, B string
}

// MakePair creates a consistent pair regardless of argument order
func MakePair(x, y string) Pair {
	if x > y {
		return Pair{A: y, B: x}
	}
	return Pair{A: x, B: y}
}

// Has reports whether id is either side of the pair.
func (p Pair) Has(id string) bool {
	return p.A == id || p.B == id
}

// Other returns the side of the pair that is not id.
func (p Pair) Other(id string) string {
	if p.A == id {
		return p.B
	}
	return p.A
}

func comparePairs(x, y Pair) int {
	if c := cmp.Compare(x.A, y.A); c != 0 {
		return c
	}
	return cmp.Compare(x.B, y.B)
}

type pairSet map[Pair]struct{}

func (s pairSet) sorted() []Pair {
	out := make([]Pair, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	slices.SortFunc(out, comparePairs)
	return out
}

// purge drops every pair referencing id.
func (s pairSet) purge(id string) {
	for p := range s {
		if p.Has(id) {
			delete(s, p)
		}
	}
}
