// Package broadphase keeps scene objects in a bounding-sphere tree and
// answers the coarse questions asked before exact collision or picking
// tests: which objects touch a box, which ones a ray crosses, and which
// pairs of objects may be colliding.
package broadphase

import (
	"bytes"
	"slices"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/google/uuid"

	"spheretree/internal/bvh"
	"spheretree/internal/physics"
)

// DefaultPadding is the internal-node padding used by the editor scene index.
const DefaultPadding = 0.1

// Pair is two objects whose bounding spheres overlap. A sorts before B.
type Pair struct {
	A uuid.UUID
	B uuid.UUID
}

// Index maps object ids to tree leaves. It is meant to be owned by a single
// goroutine, like the scene it indexes.
type Index struct {
	name    string
	tree    *bvh.Tree[uuid.UUID]
	handles map[uuid.UUID]bvh.Handle
}

// NewIndex creates an empty index. name labels its logs and metrics.
func NewIndex(name string, padding float32) *Index {
	x := &Index{
		name:    name,
		tree:    bvh.New[uuid.UUID](padding),
		handles: make(map[uuid.UUID]bvh.Handle),
	}
	instrumentObjects(name, 0)
	return x
}

func (x *Index) Name() string {
	return x.name
}

func (x *Index) Len() int {
	return len(x.handles)
}

func (x *Index) Padding() float32 {
	return x.tree.Padding()
}

// Add indexes a new object under a generated id.
func (x *Index) Add(center rl.Vector3, radius float32) (uuid.UUID, error) {
	id := uuid.New()
	if err := x.Put(id, center, radius); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// Put indexes an object under a caller-chosen id.
func (x *Index) Put(id uuid.UUID, center rl.Vector3, radius float32) error {
	if _, ok := x.handles[id]; ok {
		return errors.New("object is already indexed").
			WithTag("index", x.name).
			WithTag("id", id)
	}
	if err := checkSphere(center, radius); err != nil {
		return errors.New("rejecting object sphere").
			WithTag("index", x.name).
			WithTag("id", id).
			Wrap(err)
	}

	x.handles[id] = x.tree.Insert(center, radius, id)

	instrumentOperation(x.name, "put")
	instrumentObjects(x.name, len(x.handles))
	logs.WithTag("index", x.name).
		WithTag("id", id).
		Debug("object indexed")
	return nil
}

// Remove drops an object from the index.
func (x *Index) Remove(id uuid.UUID) error {
	h, ok := x.handles[id]
	if !ok {
		err := errors.New("object is not indexed").
			WithTag("index", x.name).
			WithTag("id", id)
		logs.Warn(err)
		return err
	}

	if err := x.tree.Remove(h); err != nil {
		return errors.New("removing object failed").
			WithTag("index", x.name).
			WithTag("id", id).
			Wrap(err)
	}
	delete(x.handles, id)

	instrumentOperation(x.name, "remove")
	instrumentObjects(x.name, len(x.handles))
	logs.WithTag("index", x.name).
		WithTag("id", id).
		Debug("object removed")
	return nil
}

// Move updates the bounding sphere of an indexed object.
func (x *Index) Move(id uuid.UUID, center rl.Vector3, radius float32) error {
	h, ok := x.handles[id]
	if !ok {
		err := errors.New("object is not indexed").
			WithTag("index", x.name).
			WithTag("id", id)
		logs.Warn(err)
		return err
	}
	if err := checkSphere(center, radius); err != nil {
		return errors.New("rejecting object sphere").
			WithTag("index", x.name).
			WithTag("id", id).
			Wrap(err)
	}

	before := x.tree.Reinserts()
	h, err := x.tree.UpdateSphere(h, center, radius)
	if err != nil {
		return errors.New("moving object failed").
			WithTag("index", x.name).
			WithTag("id", id).
			Wrap(err)
	}
	x.handles[id] = h

	instrumentOperation(x.name, "move")
	if x.tree.Reinserts() != before {
		instrumentReinsert(x.name)
	}
	return nil
}

// Sphere returns the bounding sphere an object was last indexed with.
func (x *Index) Sphere(id uuid.UUID) (physics.Sphere, bool) {
	h, ok := x.handles[id]
	if !ok {
		return physics.Sphere{}, false
	}
	return x.tree.Sphere(h)
}

// Clear drops every object.
func (x *Index) Clear() {
	x.tree.Clear()
	clear(x.handles)

	instrumentOperation(x.name, "clear")
	instrumentObjects(x.name, 0)
	logs.WithTag("index", x.name).Debug("index cleared")
}

// SetPadding rebuilds the tree with a new internal-node padding. Object ids
// are preserved.
func (x *Index) SetPadding(padding float32) {
	tree := bvh.New[uuid.UUID](padding)
	x.tree.Walk(func(info bvh.NodeInfo[uuid.UUID]) bool {
		if info.Leaf {
			x.handles[info.Payload] = tree.Insert(info.Sphere.Center, info.Sphere.Radius, info.Payload)
		}
		return true
	})
	x.tree = tree

	instrumentOperation(x.name, "rebuild")
	logs.WithTag("index", x.name).
		WithTag("padding", tree.Padding()).
		WithTag("objects", len(x.handles)).
		Info("index rebuilt")
}

// OverlapBox returns the ids of objects whose sphere overlaps box.
func (x *Index) OverlapBox(box physics.Box) []uuid.UUID {
	ids := x.tree.QueryOverlapBox(box)
	instrumentQuery(x.name, "overlap_box", len(ids))
	return ids
}

// OverlapSphere returns the ids of objects whose sphere touches s.
func (x *Index) OverlapSphere(s physics.Sphere) []uuid.UUID {
	ids := x.tree.QueryOverlapSphere(s)
	instrumentQuery(x.name, "overlap_sphere", len(ids))
	return ids
}

// Raycast returns every object the ray crosses, nearest first if sorted.
func (x *Index) Raycast(ray physics.Ray, sorted bool) []bvh.Hit[uuid.UUID] {
	hits := x.tree.QueryRaycast(ray, sorted)
	instrumentQuery(x.name, "raycast", len(hits))
	return hits
}

// Pick returns the nearest object the ray crosses.
func (x *Index) Pick(ray physics.Ray) (bvh.Hit[uuid.UUID], bool) {
	hit, ok := x.tree.QueryRaycastFirst(ray)
	n := 0
	if ok {
		n = 1
	}
	instrumentQuery(x.name, "pick", n)
	return hit, ok
}

// CandidatePairs returns every pair of objects whose spheres overlap, each
// pair once, sorted by A then B.
func (x *Index) CandidatePairs() []Pair {
	var pairs []Pair
	x.tree.Walk(func(info bvh.NodeInfo[uuid.UUID]) bool {
		if !info.Leaf {
			return true
		}
		for _, other := range x.tree.QueryOverlapSphere(info.Sphere) {
			if compareIDs(info.Payload, other) < 0 {
				pairs = append(pairs, Pair{A: info.Payload, B: other})
			}
		}
		return true
	})

	slices.SortFunc(pairs, func(a, b Pair) int {
		if c := compareIDs(a.A, b.A); c != 0 {
			return c
		}
		return compareIDs(a.B, b.B)
	})
	instrumentQuery(x.name, "pairs", len(pairs))
	return pairs
}

// Walk exposes the tree nodes for debug drawing.
func (x *Index) Walk(fn func(bvh.NodeInfo[uuid.UUID]) bool) {
	x.tree.Walk(fn)
}

func (x *Index) Stats() bvh.Stats {
	return x.tree.Stats()
}

// Validate checks the underlying tree invariants.
func (x *Index) Validate() error {
	if err := x.tree.Validate(); err != nil {
		return errors.New("index tree is inconsistent").
			WithTag("index", x.name).
			Wrap(err)
	}
	if x.tree.Len() != len(x.handles) {
		return errors.New("index and tree disagree on object count").
			WithTag("index", x.name).
			WithTag("objects", len(x.handles)).
			WithTag("leaves", x.tree.Len())
	}
	return nil
}

func compareIDs(a, b uuid.UUID) int {
	return bytes.Compare(a[:], b[:])
}

func checkSphere(center rl.Vector3, radius float32) error {
	if radius < 0 || math32.IsNaN(radius) || math32.IsInf(radius, 0) {
		return errors.New("invalid radius").WithTag("radius", radius)
	}
	if !finite(center.X) || !finite(center.Y) || !finite(center.Z) {
		return errors.New("invalid center").WithTag("center", center)
	}
	return nil
}

func finite(v float32) bool {
	return !math32.IsNaN(v) && !math32.IsInf(v, 0)
}
