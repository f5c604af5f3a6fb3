package camera

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func near(a, b float32) bool {
	d := a - b
	return d > -1e-4 && d < 1e-4
}

func TestPositionKeepsDistance(t *testing.T) {
	c := New(rl.Vector3{X: 1, Y: 2, Z: 3}, 10)
	c.Yaw = 37
	c.Pitch = -20

	if d := rl.Vector3Distance(c.Position(), c.Target); !near(d, 10) {
		t.Errorf("distance to target = %v, want 10", d)
	}
}

func TestPositionAxes(t *testing.T) {
	c := New(rl.Vector3{}, 5)
	c.Yaw = 0
	c.Pitch = 0
	if p := c.Position(); !near(p.X, 5) || !near(p.Y, 0) || !near(p.Z, 0) {
		t.Errorf("yaw 0 position = %v, want (5, 0, 0)", p)
	}

	c.Yaw = 90
	if p := c.Position(); !near(p.X, 0) || !near(p.Z, 5) {
		t.Errorf("yaw 90 position = %v, want (0, 0, 5)", p)
	}
}

func TestRotateClampsPitch(t *testing.T) {
	c := New(rl.Vector3{}, 5)
	c.Rotate(0, 500)
	if c.Pitch != 89 {
		t.Errorf("pitch = %v, want 89", c.Pitch)
	}
	c.Rotate(0, -500)
	if c.Pitch != -89 {
		t.Errorf("pitch = %v, want -89", c.Pitch)
	}
}

func TestZoomClampsDistance(t *testing.T) {
	c := New(rl.Vector3{}, 10)
	c.Zoom(1)
	if !near(c.Distance, 9) {
		t.Errorf("distance = %v, want 9", c.Distance)
	}

	c.Zoom(100)
	if c.Distance != minDistance {
		t.Errorf("distance = %v, want %v", c.Distance, float32(minDistance))
	}
}

func TestGetRaylibCameraLooksAtTarget(t *testing.T) {
	c := New(rl.Vector3{Y: 4}, 20)
	cam := c.GetRaylibCamera()
	if cam.Target != c.Target {
		t.Errorf("target = %v, want %v", cam.Target, c.Target)
	}
	if cam.Position != c.Position() {
		t.Errorf("position = %v, want %v", cam.Position, c.Position())
	}
}
