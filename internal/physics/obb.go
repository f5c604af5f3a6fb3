package physics

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// OBB represents an Oriented Bounding Box
type OBB struct {
	Center   rl.Vector3    // World-space center
	HalfSize rl.Vector3    // Half-extents along local axes
	Axes     [3]rl.Vector3 // Local X, Y, Z axes (rotated)
}

// NewOBB creates an OBB from center, size, and euler rotation (degrees)
func NewOBB(center, size, rotation rl.Vector3) OBB {
	// Same rotation order as the editor transform: X, Y, Z
	rotX := rl.MatrixRotateX(rotation.X * rl.Deg2rad)
	rotY := rl.MatrixRotateY(rotation.Y * rl.Deg2rad)
	rotZ := rl.MatrixRotateZ(rotation.Z * rl.Deg2rad)
	rotMatrix := rl.MatrixMultiply(rl.MatrixMultiply(rotX, rotY), rotZ)

	axes := [3]rl.Vector3{
		rl.Vector3Normalize(rl.Vector3{X: rotMatrix.M0, Y: rotMatrix.M1, Z: rotMatrix.M2}),
		rl.Vector3Normalize(rl.Vector3{X: rotMatrix.M4, Y: rotMatrix.M5, Z: rotMatrix.M6}),
		rl.Vector3Normalize(rl.Vector3{X: rotMatrix.M8, Y: rotMatrix.M9, Z: rotMatrix.M10}),
	}

	return OBB{
		Center:   center,
		HalfSize: rl.Vector3{X: absf(size.X) / 2, Y: absf(size.Y) / 2, Z: absf(size.Z) / 2},
		Axes:     axes,
	}
}

// NewAABBasOBB creates an axis-aligned OBB (no rotation)
func NewAABBasOBB(center, size rl.Vector3) OBB {
	return OBB{
		Center:   center,
		HalfSize: rl.Vector3{X: absf(size.X) / 2, Y: absf(size.Y) / 2, Z: absf(size.Z) / 2},
		Axes: [3]rl.Vector3{
			{X: 1, Y: 0, Z: 0},
			{X: 0, Y: 1, Z: 0},
			{X: 0, Y: 0, Z: 1},
		},
	}
}

// local projects p onto the box axes, relative to the center.
func (o OBB) local(p rl.Vector3) (x, y, z float32) {
	d := rl.Vector3Subtract(p, o.Center)
	return rl.Vector3DotProduct(d, o.Axes[0]),
		rl.Vector3DotProduct(d, o.Axes[1]),
		rl.Vector3DotProduct(d, o.Axes[2])
}

// IntersectsSphere tests if an OBB intersects with a sphere
func (o OBB) IntersectsSphere(center rl.Vector3, radius float32) bool {
	localX, localY, localZ := o.local(center)

	dx := localX - clampf(localX, -o.HalfSize.X, o.HalfSize.X)
	dy := localY - clampf(localY, -o.HalfSize.Y, o.HalfSize.Y)
	dz := localZ - clampf(localZ, -o.HalfSize.Z, o.HalfSize.Z)

	return dx*dx+dy*dy+dz*dz <= radius*radius
}

// ClosestPoint returns the point of the OBB nearest to p, in world space.
func (o OBB) ClosestPoint(p rl.Vector3) rl.Vector3 {
	localX, localY, localZ := o.local(p)

	result := o.Center
	result = rl.Vector3Add(result, rl.Vector3Scale(o.Axes[0], clampf(localX, -o.HalfSize.X, o.HalfSize.X)))
	result = rl.Vector3Add(result, rl.Vector3Scale(o.Axes[1], clampf(localY, -o.HalfSize.Y, o.HalfSize.Y)))
	result = rl.Vector3Add(result, rl.Vector3Scale(o.Axes[2], clampf(localZ, -o.HalfSize.Z, o.HalfSize.Z)))

	return result
}

func absf(x float32) float32 {
	return math32.Abs(x)
}

func minf(a, b float32) float32 {
	return math32.Min(a, b)
}

func maxf(a, b float32) float32 {
	return math32.Max(a, b)
}

func clampf(v, min, max float32) float32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
