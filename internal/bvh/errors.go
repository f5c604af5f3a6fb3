package bvh

import "fmt"

// InvalidHandleError is returned when a handle does not refer to a live leaf
// of the tree it was passed to: it was already removed, the tree was
// cleared, or it was issued by another tree.
type InvalidHandleError struct {
	Handle Handle
}

func (e *InvalidHandleError) Error() string {
	return fmt.Sprintf("bvh: invalid handle (index %d, generation %d)", e.Handle.index, e.Handle.gen)
}

// ReentrancyError is returned (or raised, for operations without an error
// result) when the tree is mutated from inside a Walk callback.
type ReentrancyError struct {
	Op string
}

func (e *ReentrancyError) Error() string {
	return fmt.Sprintf("bvh: %s called during a tree walk", e.Op)
}

// InvariantError describes a structural inconsistency found by Validate.
type InvariantError struct {
	Node   int32
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("bvh: node %d: %s", e.Node, e.Reason)
}
