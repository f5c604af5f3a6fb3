// Interactive viewer for the bounding-sphere tree: bouncing balls indexed in
// a broad-phase, with the tree nodes drawn as wire spheres.
package main

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"syscall"

	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/google/uuid"
	"github.com/segmentio/encoding/json"

	"spheretree/internal/bvh"
	"spheretree/internal/camera"
	"spheretree/internal/physics"
)

var _ = reflect.TypeOf(config{})

type config struct {
	Balls    int    `cli:"" env:"BVHVIEWER_BALLS"     help:"Number of balls spawned at start."`
	Seed     int    `cli:"" env:"BVHVIEWER_SEED"      help:"Random seed."`
	Prefs    string `cli:"" env:"BVHVIEWER_PREFS"     help:"Path of the viewer preferences file."`
	LogLevel string `cli:"" env:"BVHVIEWER_LOG_LEVEL" help:"Log level (debug|info|warning|error)."`
	Help     bool   `cli:"" env:"-"                   help:"Show help."`
}

const (
	sceneHalfSize = 20
	panelWidth    = 220
	spawnBatch    = 50
)

var (
	colorBgDark  = rl.NewColor(20, 20, 30, 255)
	colorPanel   = rl.NewColor(30, 30, 42, 230)
	colorAccent  = rl.NewColor(90, 140, 255, 255)
	colorTouched = rl.NewColor(255, 90, 90, 255)
)

type viewer struct {
	scene    *scene
	camera   *camera.OrbitCamera
	prefs    viewerPrefs
	selected uuid.UUID
	paused   bool
}

func main() {
	conf := config{
		Balls:    200,
		Seed:     1,
		Prefs:    prefsFile,
		LogLevel: logs.InfoLevel.String(),
	}

	ctx, cancel := cli.ContextWithSignals(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	cli.Register().
		Help("Opens the bounding-sphere tree viewer.").
		Options(&conf)
	cli.Load()

	logs.SetLevel(logs.ParseLevel(conf.LogLevel))
	logs.Encoder = json.Marshal
	errors.Encoder = json.Marshal

	prefs, err := loadPrefs(conf.Prefs)
	if err != nil {
		logs.Warn(err)
	}

	v := &viewer{
		scene:  newScene(sceneHalfSize, prefs.Padding, int64(conf.Seed)),
		camera: camera.New(rl.Vector3{}, prefs.CameraDist),
		prefs:  prefs,
	}
	v.camera.Yaw = prefs.CameraYaw
	v.camera.Pitch = prefs.CameraPitch

	if err := v.scene.spawn(conf.Balls); err != nil {
		logs.Fatal(err)
	}

	rl.SetConfigFlags(rl.FlagWindowHighdpi | rl.FlagMsaa4xHint)
	rl.InitWindow(1280, 720, "Bounding Sphere Tree")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)
	applyStyle()

	for !rl.WindowShouldClose() && ctx.Err() == nil {
		if err := v.update(); err != nil {
			logs.Fatal(err)
		}
		v.draw()
	}

	v.prefs.CameraYaw = v.camera.Yaw
	v.prefs.CameraPitch = v.camera.Pitch
	v.prefs.CameraDist = v.camera.Distance
	if err := savePrefs(conf.Prefs, v.prefs); err != nil {
		logs.Warn(err)
	}
}

func applyStyle() {
	gui.SetStyle(gui.DEFAULT, gui.BACKGROUND_COLOR, gui.NewColorPropertyValue(colorBgDark))
	gui.SetStyle(gui.DEFAULT, gui.BASE_COLOR_PRESSED, gui.NewColorPropertyValue(colorAccent))
	gui.SetStyle(gui.DEFAULT, gui.BORDER_COLOR_FOCUSED, gui.NewColorPropertyValue(colorAccent))
	gui.SetStyle(gui.DEFAULT, gui.TEXT_SIZE, 15)
}

func (v *viewer) mouseInPanel() bool {
	return rl.GetMousePosition().X < panelWidth
}

func (v *viewer) update() error {
	if !v.mouseInPanel() {
		v.camera.Update()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		v.paused = !v.paused
	}

	cam := v.camera.GetRaylibCamera()
	if rl.IsMouseButtonPressed(rl.MouseLeftButton) && !v.mouseInPanel() {
		ray := physics.RayFromRaylib(rl.GetScreenToWorldRay(rl.GetMousePosition(), cam), 0)
		v.selected = uuid.Nil
		if b, ok := v.scene.pick(ray); ok {
			v.selected = b.id
			logs.WithTag("id", b.id).Debug("ball selected")
		}
	}

	if rl.IsKeyPressed(rl.KeyDelete) && v.selected != uuid.Nil {
		if err := v.scene.remove(v.selected); err != nil {
			logs.Warn(err)
		}
		v.selected = uuid.Nil
	}

	if v.paused {
		return nil
	}
	return v.scene.step(rl.GetFrameTime())
}

func (v *viewer) draw() {
	cam := v.camera.GetRaylibCamera()

	rl.BeginDrawing()
	rl.ClearBackground(colorBgDark)

	rl.BeginMode3D(cam)
	rl.DrawCubeWiresV(v.scene.bounds.Center(), v.scene.bounds.Size(), rl.DarkGray)
	v.drawTree()
	rl.EndMode3D()

	v.drawPanel()
	rl.EndDrawing()
}

func (v *viewer) drawTree() {
	stats := v.scene.index.Stats()
	v.scene.index.Walk(func(info bvh.NodeInfo[uuid.UUID]) bool {
		s := info.Sphere
		if info.Leaf {
			b, ok := v.scene.balls[info.Payload]
			if !ok {
				return true
			}
			color := b.color
			if v.scene.touching[b.id] {
				color = colorTouched
			}
			rl.DrawSphereEx(s.Center, s.Radius, 8, 8, color)
			if b.id == v.selected {
				rl.DrawSphereWires(s.Center, s.Radius*1.1, 12, 12, rl.Yellow)
			}
			return true
		}

		if v.prefs.ShowInternal {
			rl.DrawSphereWires(s.Center, s.Radius, 8, 8, depthColor(info.Depth, stats.Depth))
		}
		return true
	})
}

// depthColor fades internal nodes from accent blue at the root to grey at
// the deepest level.
func depthColor(depth, maxDepth int) rl.Color {
	if maxDepth <= 1 {
		return rl.Fade(colorAccent, 0.4)
	}
	t := float32(depth-1) / float32(maxDepth-1)
	c := rl.NewColor(
		lerp8(colorAccent.R, rl.Gray.R, t),
		lerp8(colorAccent.G, rl.Gray.G, t),
		lerp8(colorAccent.B, rl.Gray.B, t),
		255,
	)
	return rl.Fade(c, 0.4-0.3*t)
}

func lerp8(a, b uint8, t float32) uint8 {
	return uint8(float32(a) + (float32(b)-float32(a))*t)
}

func (v *viewer) drawPanel() {
	rl.DrawRectangle(0, 0, panelWidth, int32(rl.GetScreenHeight()), colorPanel)
	stats := v.scene.index.Stats()

	y := float32(10)
	line := func(text string) {
		rl.DrawText(text, 10, int32(y), 16, rl.RayWhite)
		y += 22
	}

	line(fmt.Sprintf("Objects:   %d", stats.Leaves))
	line(fmt.Sprintf("Internal:  %d", stats.Internal))
	line(fmt.Sprintf("Depth:     %d", stats.Depth))
	line(fmt.Sprintf("Reinserts: %d", stats.Reinserts))
	line(fmt.Sprintf("Pairs:     %d", v.scene.pairs))
	y += 10

	line("Padding")
	padding := gui.Slider(rl.Rectangle{X: 10, Y: y, Width: 150, Height: 18}, "", fmt.Sprintf("%.2f", v.prefs.Padding), v.prefs.Padding, 0, 3)
	if padding != v.prefs.Padding {
		v.prefs.Padding = padding
		v.scene.index.SetPadding(padding)
	}
	y += 30

	v.prefs.ShowInternal = gui.CheckBox(rl.Rectangle{X: 10, Y: y, Width: 18, Height: 18}, "Show internal nodes", v.prefs.ShowInternal)
	y += 30

	if gui.Button(rl.Rectangle{X: 10, Y: y, Width: 95, Height: 26}, fmt.Sprintf("Spawn %d", spawnBatch)) {
		if err := v.scene.spawn(spawnBatch); err != nil {
			logs.Warn(err)
		}
	}
	if gui.Button(rl.Rectangle{X: 115, Y: y, Width: 95, Height: 26}, "Clear") {
		v.scene.clear()
		v.selected = uuid.Nil
	}
	y += 40

	if v.selected != uuid.Nil {
		if s, ok := v.scene.index.Sphere(v.selected); ok {
			line("Selected")
			line(v.selected.String()[:8])
			line(fmt.Sprintf("r=%.2f", s.Radius))
		}
	}

	rl.DrawText("RMB orbit, wheel zoom", 10, int32(rl.GetScreenHeight())-50, 14, rl.Gray)
	rl.DrawText("LMB pick, Del remove, Space pause", 10, int32(rl.GetScreenHeight())-30, 14, rl.Gray)
}
