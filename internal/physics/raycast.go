package physics

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Ray is a half-line starting at Origin. Direction is kept normalized so ray
// parameters are world distances.
type Ray struct {
	Origin      rl.Vector3
	Direction   rl.Vector3
	MaxDistance float32
}

// NewRay creates an unbounded ray.
func NewRay(origin, direction rl.Vector3) Ray {
	return Ray{
		Origin:      origin,
		Direction:   rl.Vector3Normalize(direction),
		MaxDistance: math32.Inf(1),
	}
}

// RayFromRaylib converts a raylib picking ray (e.g. GetScreenToWorldRay).
func RayFromRaylib(r rl.Ray, maxDistance float32) Ray {
	ray := NewRay(r.Position, r.Direction)
	if maxDistance > 0 {
		ray.MaxDistance = maxDistance
	}
	return ray
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) rl.Vector3 {
	return rl.Vector3Add(r.Origin, rl.Vector3Scale(r.Direction, t))
}

// RaySphere solves the ray/sphere quadratic and returns both roots.
// ok is false when the ray misses, when the sphere lies entirely behind the
// origin, or when the sphere starts past MaxDistance.
func RaySphere(r Ray, s Sphere) (tNear, tFar float32, ok bool) {
	oc := rl.Vector3Subtract(r.Origin, s.Center)
	a := rl.Vector3DotProduct(r.Direction, r.Direction)
	if a == 0 {
		return 0, 0, false
	}
	b := 2.0 * rl.Vector3DotProduct(oc, r.Direction)
	c := rl.Vector3DotProduct(oc, oc) - s.Radius*s.Radius

	discriminant := b*b - 4*a*c
	if discriminant < 0 {
		return 0, 0, false
	}

	sq := math32.Sqrt(discriminant)
	tNear = (-b - sq) / (2 * a)
	tFar = (-b + sq) / (2 * a)
	if tFar < 0 {
		return 0, 0, false
	}
	if tNear > r.MaxDistance {
		return 0, 0, false
	}
	return tNear, tFar, true
}

// HitDistance picks the reported hit from the two roots: the entry point, or
// the exit point when the origin is inside the sphere.
func HitDistance(tNear, tFar float32) float32 {
	if tNear < 0 {
		return tFar
	}
	return tNear
}

// RaycastSphere returns the hit distance, point and surface normal of r
// against s, honoring MaxDistance.
func RaycastSphere(r Ray, s Sphere) (t float32, point, normal rl.Vector3, ok bool) {
	tNear, tFar, ok := RaySphere(r, s)
	if !ok {
		return 0, rl.Vector3{}, rl.Vector3{}, false
	}
	t = HitDistance(tNear, tFar)
	if t > r.MaxDistance {
		return 0, rl.Vector3{}, rl.Vector3{}, false
	}
	point = r.At(t)
	normal = rl.Vector3Normalize(rl.Vector3Subtract(point, s.Center))
	return t, point, normal, true
}
