package bvh

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"spheretree/internal/physics"
)

// enclose returns the smallest sphere containing both a and b, grown by
// padding. The larger sphere is kept as the starting point and stretched
// toward the smaller one only as far as needed.
func enclose(a, b physics.Sphere, padding float32) physics.Sphere {
	if a.Radius < b.Radius {
		a, b = b, a
	}

	center, radius := a.Center, a.Radius
	offset := rl.Vector3Subtract(b.Center, center)
	d := rl.Vector3Length(offset)

	if d+b.Radius > radius {
		newRadius := (radius + d + b.Radius) / 2
		if d > 0 {
			center = rl.Vector3Add(center, rl.Vector3Scale(offset, (newRadius-radius)/d))
		}
		radius = newRadius
	}

	return physics.Sphere{Center: center, Radius: radius + padding}
}
