package physics

import rl "github.com/gen2brain/raylib-go/raylib"

// Box is any volume that can answer closest-point queries. Both AABB and OBB
// satisfy it, so overlap queries accept either.
type Box interface {
	// ClosestPoint returns the point of the box nearest to p. Points inside
	// the box are returned unchanged.
	ClosestPoint(p rl.Vector3) rl.Vector3
}

var (
	_ Box = AABB{}
	_ Box = OBB{}
)
