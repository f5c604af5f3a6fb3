package bvh

import (
	"github.com/chewxy/math32"

	"spheretree/internal/physics"
)

// NodeInfo describes one node reached by Walk. Handle and Payload are only
// set for leaves.
type NodeInfo[T any] struct {
	Sphere  physics.Sphere
	Depth   int
	Leaf    bool
	Handle  Handle
	Payload T
}

// Walk visits every node depth-first, parents before children, stopping
// early if fn returns false. The root's children have depth 1. The tree
// must not be mutated from fn: Remove and UpdateSphere return a
// *ReentrancyError, Insert and Clear panic with one.
func (t *Tree[T]) Walk(fn func(NodeInfo[T]) bool) {
	t.walking++
	defer func() { t.walking-- }()
	t.walk(fn)
}

func (t *Tree[T]) walk(fn func(NodeInfo[T]) bool) {
	type item struct {
		index int32
		depth int
	}
	items := make([]item, 0, inlineStackSize)
	pushChildren := func(i int32, depth int) {
		for c := 1; c >= 0; c-- {
			if child := t.nodes[i].children[c]; child != nilNode {
				items = append(items, item{index: child, depth: depth})
			}
		}
	}

	pushChildren(rootNode, 1)
	for len(items) > 0 {
		it := items[len(items)-1]
		items = items[:len(items)-1]

		n := &t.nodes[it.index]
		info := NodeInfo[T]{Sphere: n.sphere, Depth: it.depth, Leaf: n.leaf}
		if n.leaf {
			info.Handle = Handle{index: it.index, gen: n.gen}
			info.Payload = n.payload
		}
		if !fn(info) {
			return
		}
		if !n.leaf {
			pushChildren(it.index, it.depth+1)
		}
	}
}

// validateEpsilon is the relative slack allowed when checking enclosure.
const validateEpsilon = 1e-4

// Validate checks the structural invariants of the tree: every internal
// node has two children whose spheres it encloses, every leaf is childless,
// parent links agree with child links, and the node counts match. It is a
// debugging aid and returns the first violation found.
func (t *Tree[T]) Validate() error {
	root := &t.nodes[rootNode]
	if root.parent != nilNode {
		return &InvariantError{Node: rootNode, Reason: "root has a parent"}
	}

	var s stack
	s.init()
	for _, c := range root.children {
		if c == nilNode {
			continue
		}
		if t.nodes[c].parent != rootNode {
			return &InvariantError{Node: c, Reason: "child of root does not point back at root"}
		}
		s.push(c)
	}

	leaves, internal := 0, 0
	for !s.empty() {
		i := s.pop()
		n := &t.nodes[i]
		if !n.live {
			return &InvariantError{Node: i, Reason: "reachable node is free"}
		}
		if leaves+internal > len(t.nodes) {
			return &InvariantError{Node: i, Reason: "cycle detected"}
		}

		if n.leaf {
			leaves++
			if n.children[0] != nilNode || n.children[1] != nilNode {
				return &InvariantError{Node: i, Reason: "leaf has children"}
			}
			continue
		}

		internal++
		for _, c := range n.children {
			if c == nilNode {
				return &InvariantError{Node: i, Reason: "internal node is missing a child"}
			}
			child := &t.nodes[c]
			if child.parent != i {
				return &InvariantError{Node: c, Reason: "parent link does not match child link"}
			}
			eps := validateEpsilon * math32.Max(1, n.sphere.Radius)
			if !n.sphere.Encloses(child.sphere, eps) {
				return &InvariantError{Node: i, Reason: "sphere does not enclose child"}
			}
			s.push(c)
		}
	}

	if leaves != t.leaves {
		return &InvariantError{Node: rootNode, Reason: "leaf count mismatch"}
	}
	if internal != t.internal {
		return &InvariantError{Node: rootNode, Reason: "internal node count mismatch"}
	}
	return nil
}
