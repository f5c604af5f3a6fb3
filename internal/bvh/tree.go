// Package bvh implements a dynamic bounding-sphere hierarchy: a binary tree
// of enclosing spheres over movable objects, answering box overlap and ray
// queries without scanning every object.
//
// Nodes live in an arena addressed by int32 indices. Leaves are placed with a
// greedy nearest-subtree descent and the tree is never globally rebalanced,
// so long insert/remove churn can leave it deeper than an optimal build.
//
// A Tree is not safe for concurrent use.
package bvh

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"

	"spheretree/internal/physics"
)

// Tree indexes payloads of type T by bounding sphere.
type Tree[T any] struct {
	nodes   []node[T]
	free    []int32
	padding float32

	leaves    int
	internal  int
	reinserts uint64

	// walking counts active Walk callbacks; mutations are refused while set.
	walking int
}

// Stats summarizes the current shape of a tree.
type Stats struct {
	Leaves    int
	Internal  int
	Depth     int
	Reinserts uint64
}

// New creates an empty tree. padding is added to the radius of every
// internal node; negative values are treated as zero.
func New[T any](padding float32) *Tree[T] {
	if padding < 0 || math32.IsNaN(padding) {
		padding = 0
	}
	t := &Tree[T]{padding: padding}
	t.nodes = append(t.nodes, node[T]{
		parent:   nilNode,
		children: [2]int32{nilNode, nilNode},
		live:     true,
	})
	return t
}

func (t *Tree[T]) Padding() float32 {
	return t.padding
}

// Len returns the number of leaves.
func (t *Tree[T]) Len() int {
	return t.leaves
}

// Insert adds a leaf and returns its handle. It never fails.
func (t *Tree[T]) Insert(center rl.Vector3, radius float32, payload T) Handle {
	if err := t.guard("Insert"); err != nil {
		panic(err)
	}

	i := t.alloc()
	n := &t.nodes[i]
	n.sphere = physics.Sphere{Center: center, Radius: radius}
	n.payload = payload
	n.leaf = true
	t.leaves++

	t.insertLeaf(i)
	return Handle{index: i, gen: t.nodes[i].gen}
}

// Remove deletes the leaf behind h. The sibling of the removed leaf takes
// the place of their shared parent.
func (t *Tree[T]) Remove(h Handle) error {
	if err := t.guard("Remove"); err != nil {
		return err
	}
	i, ok := t.lookup(h)
	if !ok {
		return &InvalidHandleError{Handle: h}
	}

	t.detach(i)
	t.release(i)
	t.leaves--
	return nil
}

// UpdateSphere moves the leaf behind h. If the new sphere still fits inside
// the leaf's parent nothing else changes; otherwise the leaf is unlinked and
// reinserted. The leaf keeps its arena slot, so the returned handle is
// always h.
func (t *Tree[T]) UpdateSphere(h Handle, center rl.Vector3, radius float32) (Handle, error) {
	if err := t.guard("UpdateSphere"); err != nil {
		return h, err
	}
	i, ok := t.lookup(h)
	if !ok {
		return h, &InvalidHandleError{Handle: h}
	}

	n := &t.nodes[i]
	n.sphere = physics.Sphere{Center: center, Radius: radius}

	// Only the immediate parent is checked. If the leaf fits, the parent
	// sphere is unchanged and every ancestor still encloses it.
	p := n.parent
	if p == rootNode || t.nodes[p].sphere.Encloses(n.sphere, 0) {
		return h, nil
	}

	t.detach(i)
	t.insertLeaf(i)
	t.reinserts++
	return h, nil
}

// Clear removes every leaf. Handles issued before the call become invalid.
func (t *Tree[T]) Clear() {
	if err := t.guard("Clear"); err != nil {
		panic(err)
	}

	for i := int32(1); i < int32(len(t.nodes)); i++ {
		if t.nodes[i].live {
			t.release(i)
		}
	}
	t.nodes[rootNode].children = [2]int32{nilNode, nilNode}
	t.leaves = 0
	t.internal = 0
}

// Contains reports whether h refers to a live leaf of t.
func (t *Tree[T]) Contains(h Handle) bool {
	_, ok := t.lookup(h)
	return ok
}

func (t *Tree[T]) Payload(h Handle) (T, bool) {
	i, ok := t.lookup(h)
	if !ok {
		var zero T
		return zero, false
	}
	return t.nodes[i].payload, true
}

func (t *Tree[T]) Sphere(h Handle) (physics.Sphere, bool) {
	i, ok := t.lookup(h)
	if !ok {
		return physics.Sphere{}, false
	}
	return t.nodes[i].sphere, true
}

// Reinserts counts UpdateSphere calls that had to unlink and reinsert.
func (t *Tree[T]) Reinserts() uint64 {
	return t.reinserts
}

func (t *Tree[T]) Stats() Stats {
	s := Stats{
		Leaves:    t.leaves,
		Internal:  t.internal,
		Reinserts: t.reinserts,
	}
	t.walk(func(info NodeInfo[T]) bool {
		if info.Depth > s.Depth {
			s.Depth = info.Depth
		}
		return true
	})
	return s
}

func (t *Tree[T]) guard(op string) error {
	if t.walking > 0 {
		return &ReentrancyError{Op: op}
	}
	return nil
}

func (t *Tree[T]) lookup(h Handle) (int32, bool) {
	if h.index <= rootNode || int(h.index) >= len(t.nodes) {
		return 0, false
	}
	n := &t.nodes[h.index]
	if !n.live || !n.leaf || n.gen != h.gen {
		return 0, false
	}
	return h.index, true
}

// alloc takes a slot from the free list or grows the arena. Generations
// start at 1 so the zero Handle never matches.
func (t *Tree[T]) alloc() int32 {
	var i int32
	if last := len(t.free) - 1; last >= 0 {
		i = t.free[last]
		t.free = t.free[:last]
	} else {
		t.nodes = append(t.nodes, node[T]{})
		i = int32(len(t.nodes) - 1)
	}

	n := &t.nodes[i]
	*n = node[T]{
		parent:   nilNode,
		children: [2]int32{nilNode, nilNode},
		gen:      n.gen + 1,
		live:     true,
	}
	return i
}

func (t *Tree[T]) release(i int32) {
	n := &t.nodes[i]
	*n = node[T]{
		parent:   nilNode,
		children: [2]int32{nilNode, nilNode},
		gen:      n.gen,
	}
	t.free = append(t.free, i)
}

// insertLeaf links an allocated, unlinked leaf into the tree.
func (t *Tree[T]) insertLeaf(leaf int32) {
	root := &t.nodes[rootNode]
	for slot, c := range root.children {
		if c == nilNode {
			root.children[slot] = leaf
			t.nodes[leaf].parent = rootNode
			return
		}
	}

	sibling := t.nearestLeaf(t.nodes[leaf].sphere.Center)
	t.split(sibling, leaf)
}

// nearestLeaf descends from the root, at each level taking the child whose
// far surface is closest to center.
func (t *Tree[T]) nearestLeaf(center rl.Vector3) int32 {
	cur := rootNode
	for {
		n := &t.nodes[cur]
		if n.leaf {
			return cur
		}

		best := n.children[0]
		bestCost := t.insertCost(best, center)
		if c := n.children[1]; t.insertCost(c, center) < bestCost {
			best = c
		}
		cur = best
	}
}

func (t *Tree[T]) insertCost(i int32, center rl.Vector3) float32 {
	s := t.nodes[i].sphere
	return rl.Vector3Distance(center, s.Center) + s.Radius
}

// split replaces sibling with a new internal node holding sibling and leaf.
func (t *Tree[T]) split(sibling, leaf int32) {
	p := t.alloc()
	t.internal++

	parent := t.nodes[sibling].parent
	t.nodes[p].parent = parent
	t.nodes[p].children = [2]int32{sibling, leaf}

	pn := &t.nodes[parent]
	pn.children[pn.childSlot(sibling)] = p
	t.nodes[sibling].parent = p
	t.nodes[leaf].parent = p

	t.refit(p)
}

// detach unlinks leaf without freeing it. When the leaf hangs off an
// internal node, that node is freed and the sibling takes its slot.
func (t *Tree[T]) detach(leaf int32) {
	p := t.nodes[leaf].parent
	t.nodes[leaf].parent = nilNode

	if p == rootNode {
		root := &t.nodes[rootNode]
		root.children[root.childSlot(leaf)] = nilNode
		return
	}

	pn := &t.nodes[p]
	sibling := pn.children[1-pn.childSlot(leaf)]
	g := pn.parent

	gn := &t.nodes[g]
	gn.children[gn.childSlot(p)] = sibling
	t.nodes[sibling].parent = g

	t.release(p)
	t.internal--
	t.refit(g)
}

// refit recomputes enclosing spheres from i up to, not including, the root.
func (t *Tree[T]) refit(i int32) {
	for i != rootNode && i != nilNode {
		n := &t.nodes[i]
		n.sphere = enclose(t.nodes[n.children[0]].sphere, t.nodes[n.children[1]].sphere, t.padding)
		i = n.parent
	}
}
