package physics

import rl "github.com/gen2brain/raylib-go/raylib"

type AABB struct {
	Min rl.Vector3
	Max rl.Vector3
}

// NewAABBFromCenter creates an AABB from a center point and full size dimensions.
func NewAABBFromCenter(center, size rl.Vector3) AABB {
	half := rl.Vector3{X: absf(size.X) / 2, Y: absf(size.Y) / 2, Z: absf(size.Z) / 2}
	return AABB{
		Min: rl.Vector3Subtract(center, half),
		Max: rl.Vector3Add(center, half),
	}
}

// NewAABB creates an AABB from two opposite corners in any order.
func NewAABB(a, b rl.Vector3) AABB {
	return AABB{
		Min: rl.Vector3{X: minf(a.X, b.X), Y: minf(a.Y, b.Y), Z: minf(a.Z, b.Z)},
		Max: rl.Vector3{X: maxf(a.X, b.X), Y: maxf(a.Y, b.Y), Z: maxf(a.Z, b.Z)},
	}
}

func (a AABB) Center() rl.Vector3 {
	return rl.Vector3Scale(rl.Vector3Add(a.Min, a.Max), 0.5)
}

func (a AABB) Size() rl.Vector3 {
	return rl.Vector3Subtract(a.Max, a.Min)
}

func (a AABB) Intersects(b AABB) bool {
	return a.Min.X <= b.Max.X && a.Max.X >= b.Min.X &&
		a.Min.Y <= b.Max.Y && a.Max.Y >= b.Min.Y &&
		a.Min.Z <= b.Max.Z && a.Max.Z >= b.Min.Z
}

// ContainsPoint reports whether p is inside the box, faces included.
func (a AABB) ContainsPoint(p rl.Vector3) bool {
	return p.X >= a.Min.X && p.X <= a.Max.X &&
		p.Y >= a.Min.Y && p.Y <= a.Max.Y &&
		p.Z >= a.Min.Z && p.Z <= a.Max.Z
}

// ClosestPoint clamps p to the box extents on every axis.
func (a AABB) ClosestPoint(p rl.Vector3) rl.Vector3 {
	return rl.Vector3{
		X: clampf(p.X, a.Min.X, a.Max.X),
		Y: clampf(p.Y, a.Min.Y, a.Max.Y),
		Z: clampf(p.Z, a.Min.Z, a.Max.Z),
	}
}

func (a AABB) IntersectsSphere(center rl.Vector3, radius float32) bool {
	return Sphere{Center: center, Radius: radius}.ContainsPoint(a.ClosestPoint(center))
}

// OBB returns the same box as an unrotated OBB.
func (a AABB) OBB() OBB {
	return NewAABBasOBB(a.Center(), a.Size())
}

// AABBOfSphere returns the AABB that tightly bounds s.
func AABBOfSphere(s Sphere) AABB {
	r := rl.Vector3{X: s.Radius, Y: s.Radius, Z: s.Radius}
	return AABB{Min: rl.Vector3Subtract(s.Center, r), Max: rl.Vector3Add(s.Center, r)}
}
