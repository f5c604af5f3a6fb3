package bvh

import "spheretree/internal/physics"

// nilNode marks an empty child or parent slot.
const nilNode int32 = -1

// rootNode is the arena index of the sentinel root. Its sphere is never
// maintained; only its children bound anything.
const rootNode int32 = 0

// node is an arena slot. A slot is either a leaf (payload set, no children),
// an internal node (two children), the root sentinel, or free.
type node[T any] struct {
	sphere   physics.Sphere
	payload  T
	parent   int32
	children [2]int32
	gen      uint32
	leaf     bool
	live     bool
}

// childSlot returns which of n's slots holds child, or -1.
func (n *node[T]) childSlot(child int32) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}

// Handle identifies a leaf issued by a Tree. The zero Handle is never live.
type Handle struct {
	index int32
	gen   uint32
}

// IsZero reports whether h was never issued.
func (h Handle) IsZero() bool {
	return h == Handle{}
}
