package physics

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Sphere is a center and radius in world space.
type Sphere struct {
	Center rl.Vector3
	Radius float32
}

func NewSphere(center rl.Vector3, radius float32) Sphere {
	return Sphere{Center: center, Radius: radius}
}

// ContainsPoint reports whether p lies inside or on the sphere surface.
func (s Sphere) ContainsPoint(p rl.Vector3) bool {
	d := rl.Vector3Subtract(p, s.Center)
	return rl.Vector3DotProduct(d, d) <= s.Radius*s.Radius
}

// Encloses reports whether o lies entirely inside s, allowing eps of slack.
func (s Sphere) Encloses(o Sphere, eps float32) bool {
	return rl.Vector3Distance(s.Center, o.Center)+o.Radius <= s.Radius+eps
}

// Overlaps reports whether the two spheres touch or intersect.
func (s Sphere) Overlaps(o Sphere) bool {
	d := rl.Vector3Subtract(o.Center, s.Center)
	r := s.Radius + o.Radius
	return rl.Vector3DotProduct(d, d) <= r*r
}

// OverlapsBox reports whether the closest point of b to the sphere center is
// inside the sphere.
func (s Sphere) OverlapsBox(b Box) bool {
	return s.ContainsPoint(b.ClosestPoint(s.Center))
}
