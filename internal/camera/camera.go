package camera

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	minDistance = 2
	maxDistance = 500
)

// OrbitCamera circles a target point. Yaw and Pitch are in degrees.
type OrbitCamera struct {
	Target    rl.Vector3
	Distance  float32
	Yaw       float32
	Pitch     float32
	LookSpeed float32
	ZoomSpeed float32
}

func New(target rl.Vector3, distance float32) *OrbitCamera {
	return &OrbitCamera{
		Target:    target,
		Distance:  distance,
		Yaw:       -135.0,
		Pitch:     30.0,
		LookSpeed: 0.3,
		ZoomSpeed: 0.1, // Fraction of the distance per wheel step
	}
}

// Update orbits while the right mouse button is held and zooms with the
// wheel.
func (c *OrbitCamera) Update() {
	if rl.IsMouseButtonDown(rl.MouseRightButton) {
		delta := rl.GetMouseDelta()
		c.Rotate(delta.X*c.LookSpeed, delta.Y*c.LookSpeed)
	}
	if scroll := rl.GetMouseWheelMove(); scroll != 0 {
		c.Zoom(scroll)
	}
}

// Rotate turns the camera around the target, keeping the pitch away from
// the poles.
func (c *OrbitCamera) Rotate(yaw, pitch float32) {
	c.Yaw += yaw
	c.Pitch += pitch
	c.Pitch = math32.Max(-89, math32.Min(89, c.Pitch))
}

// Zoom moves towards the target for positive steps.
func (c *OrbitCamera) Zoom(steps float32) {
	c.Distance *= 1 - steps*c.ZoomSpeed
	c.Distance = math32.Max(minDistance, math32.Min(maxDistance, c.Distance))
}

func (c *OrbitCamera) Position() rl.Vector3 {
	yawRad := c.Yaw * rl.Deg2rad
	pitchRad := c.Pitch * rl.Deg2rad

	return rl.Vector3{
		X: c.Target.X + c.Distance*math32.Cos(pitchRad)*math32.Cos(yawRad),
		Y: c.Target.Y + c.Distance*math32.Sin(pitchRad),
		Z: c.Target.Z + c.Distance*math32.Cos(pitchRad)*math32.Sin(yawRad),
	}
}

func (c *OrbitCamera) GetRaylibCamera() rl.Camera3D {
	return rl.Camera3D{
		Position:   c.Position(),
		Target:     c.Target,
		Up:         rl.Vector3{X: 0, Y: 1, Z: 0},
		Fovy:       45,
		Projection: rl.CameraPerspective,
	}
}
