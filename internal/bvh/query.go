package bvh

import (
	"cmp"
	"slices"

	rl "github.com/gen2brain/raylib-go/raylib"

	"spheretree/internal/physics"
)

// Hit is a leaf struck by a ray.
type Hit[T any] struct {
	Payload  T
	Point    rl.Vector3
	Distance float32
}

// search walks the tree depth-first from the root's children. visit is
// called for every reached node and returns whether to descend into it.
// Every call owns its stack, so searches may nest.
func (t *Tree[T]) search(visit func(n *node[T]) bool) {
	var s stack
	s.init()

	root := &t.nodes[rootNode]
	s.push(root.children[1])
	s.push(root.children[0])

	for !s.empty() {
		n := &t.nodes[s.pop()]
		if visit(n) && !n.leaf {
			s.push(n.children[1])
			s.push(n.children[0])
		}
	}
}

// QueryOverlapBox returns the payload of every leaf whose sphere overlaps
// box. Order is unspecified.
func (t *Tree[T]) QueryOverlapBox(box physics.Box) []T {
	var out []T
	t.search(func(n *node[T]) bool {
		if !n.sphere.OverlapsBox(box) {
			return false
		}
		if n.leaf {
			out = append(out, n.payload)
		}
		return true
	})
	return out
}

// QueryOverlapSphere returns the payload of every leaf whose sphere touches
// s. Order is unspecified.
func (t *Tree[T]) QueryOverlapSphere(s physics.Sphere) []T {
	var out []T
	t.search(func(n *node[T]) bool {
		if !n.sphere.Overlaps(s) {
			return false
		}
		if n.leaf {
			out = append(out, n.payload)
		}
		return true
	})
	return out
}

// QueryRaycast returns every leaf the ray hits within ray.MaxDistance. When
// sorted is set the hits are ordered nearest first.
func (t *Tree[T]) QueryRaycast(ray physics.Ray, sorted bool) []Hit[T] {
	var hits []Hit[T]
	t.search(func(n *node[T]) bool {
		tNear, tFar, ok := physics.RaySphere(ray, n.sphere)
		if !ok {
			return false
		}
		if n.leaf {
			d := physics.HitDistance(tNear, tFar)
			if d <= ray.MaxDistance {
				hits = append(hits, Hit[T]{Payload: n.payload, Point: ray.At(d), Distance: d})
			}
		}
		return true
	})

	if sorted {
		slices.SortStableFunc(hits, func(a, b Hit[T]) int {
			return cmp.Compare(a.Distance, b.Distance)
		})
	}
	return hits
}

// QueryRaycastFirst returns the nearest leaf the ray hits. Subtrees whose
// entry distance is already beyond the best hit are skipped.
func (t *Tree[T]) QueryRaycastFirst(ray physics.Ray) (Hit[T], bool) {
	best := Hit[T]{Distance: ray.MaxDistance}
	found := false

	t.search(func(n *node[T]) bool {
		tNear, tFar, ok := physics.RaySphere(ray, n.sphere)
		if !ok {
			return false
		}
		if n.leaf {
			d := physics.HitDistance(tNear, tFar)
			if d <= best.Distance && (!found || d < best.Distance) {
				best = Hit[T]{Payload: n.payload, Point: ray.At(d), Distance: d}
				found = true
			}
			return false
		}
		return max(tNear, 0) <= best.Distance
	})

	return best, found
}
