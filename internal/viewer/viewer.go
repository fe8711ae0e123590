// Package viewer draws the particle cloud in a raylib window.
package viewer

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/ayusman/nritya/internal/app"
	"github.com/ayusman/nritya/internal/render"
	"github.com/ayusman/nritya/internal/shape"
	"github.com/ayusman/nritya/internal/state"
)

// Scene constants.
const (
	cameraDistance = 45
	fovy           = 35
	pointSize      = 1.8
	// worldPerPoint converts point size units to billboard world units.
	worldPerPoint = 0.1
	spriteSize    = 64

	hintText    = "Pinch & Hold, then Release to change shape"
	initCamText = "Init Camera..."
	fontSize    = 20
	padding     = 20
)

var background = color.RGBA{R: 2, G: 2, B: 2, A: 255}

// Controller is the application surface the viewer drives.
type Controller interface {
	Tick() render.Frame
	Select(t shape.Type, src state.Source) error
	Advance(src state.Source) shape.Type
	ToggleUI() bool
	Snapshot() app.Snapshot
}

// Config holds viewer options.
type Config struct {
	Title     string
	Width     int
	Height    int
	TargetFPS int
	// FontPath is a TTF font with the glyphs of the shape labels. Empty uses
	// raylib's default font and ASCII names.
	FontPath string
	// Sink receives every frame after it is drawn, e.g. a stream hub.
	Sink   render.Sink
	Logger *slog.Logger
}

// DefaultConfig returns the standard window configuration.
func DefaultConfig() Config {
	return Config{
		Title:     "Nritya",
		Width:     1280,
		Height:    720,
		TargetFPS: 60,
	}
}

// Viewer owns the raylib window. It must run on the main OS thread.
type Viewer struct {
	ctl    Controller
	config Config
	logger *slog.Logger

	camera  rl.Camera3D
	sprite  rl.Texture2D
	font    rl.Font
	hasFont bool
	overlay *overlay

	// scratch holds perturbed positions, reused across frames.
	scratch []float32
}

// New creates a Viewer for ctl.
func New(ctl Controller, config Config) *Viewer {
	def := DefaultConfig()
	if config.Width <= 0 || config.Height <= 0 {
		config.Width, config.Height = def.Width, def.Height
	}
	if config.TargetFPS <= 0 {
		config.TargetFPS = def.TargetFPS
	}
	if config.Title == "" {
		config.Title = def.Title
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Viewer{
		ctl:     ctl,
		config:  config,
		logger:  logger,
		overlay: newOverlay(ctl.Snapshot().ShowUI),
	}
}

// Run opens the window and renders until it is closed or ctx is cancelled.
func (v *Viewer) Run(ctx context.Context) error {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(v.config.Width), int32(v.config.Height), v.config.Title)
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(v.config.TargetFPS))

	v.setup()
	defer v.teardown()

	for !rl.WindowShouldClose() {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		v.handleInput()
		f := v.ctl.Tick()
		snap := v.ctl.Snapshot()
		v.overlay.SetVisible(snap.ShowUI)
		alpha := v.overlay.Update(rl.GetFrameTime())

		rl.BeginDrawing()
		rl.ClearBackground(background)
		v.drawParticles(f)
		v.drawOverlay(snap, alpha)
		rl.EndDrawing()

		if v.config.Sink != nil {
			if err := v.config.Sink.Render(f); err != nil {
				v.logger.Debug("viewer sink", slog.Any("error", err))
			}
		}
	}
	return nil
}

func (v *Viewer) setup() {
	v.camera = rl.Camera3D{
		Position:   rl.NewVector3(0, 0, cameraDistance),
		Target:     rl.NewVector3(0, 0, 0),
		Up:         rl.NewVector3(0, 1, 0),
		Fovy:       fovy,
		Projection: rl.CameraPerspective,
	}

	img := rl.GenImageGradientRadial(spriteSize, spriteSize, 0, rl.White, rl.Blank)
	v.sprite = rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)

	if v.config.FontPath != "" {
		f := rl.LoadFont(v.config.FontPath)
		if f.Texture.ID != 0 {
			v.font = f
			v.hasFont = true
		} else {
			v.logger.Warn("viewer font not loaded, using default", slog.String("path", v.config.FontPath))
		}
	}
}

func (v *Viewer) teardown() {
	rl.UnloadTexture(v.sprite)
	if v.hasFont {
		rl.UnloadFont(v.font)
	}
}

func (v *Viewer) handleInput() {
	for key := int32(rl.KeyOne); key <= rl.KeySix; key++ {
		if !rl.IsKeyPressed(key) {
			continue
		}
		if t, ok := keyShape(key - rl.KeyOne); ok {
			if err := v.ctl.Select(t, state.SourceUI); err != nil {
				v.logger.Warn("select shape", slog.Any("error", err))
			}
		}
	}
	if rl.IsKeyPressed(rl.KeyN) {
		v.ctl.Advance(state.SourceUI)
	}
	if rl.IsKeyPressed(rl.KeyH) {
		v.ctl.ToggleUI()
	}
}

// drawParticles renders the cloud with additive blending. Depth writes are
// off so the transparent sprite corners never hide particles behind them.
func (v *Viewer) drawParticles(f render.Frame) {
	v.scratch = worldPositions(v.scratch, f)

	rl.BeginMode3D(v.camera)
	rl.DisableDepthMask()
	rl.BeginBlendMode(rl.BlendAdditive)
	n := f.Count()
	for i := 0; i < n; i++ {
		pos := rl.NewVector3(v.scratch[i*3], v.scratch[i*3+1], v.scratch[i*3+2])
		size := pointSize * worldPerPoint * f.Sizes[i]
		rl.DrawBillboard(v.camera, v.sprite, pos, size, particleColor(f.Colors[i*3:i*3+3]))
	}
	rl.EndBlendMode()
	rl.EnableDepthMask()
	rl.EndMode3D()
}

// worldPositions perturbs the positions of f and applies the frame scale,
// reusing dst when it has the right length.
func worldPositions(dst []float32, f render.Frame) []float32 {
	dst = render.PerturbInto(dst, f)
	for i := range dst {
		dst[i] *= f.Scale
	}
	return dst
}

func (v *Viewer) drawOverlay(snap app.Snapshot, alpha float32) {
	if !snap.CameraReady {
		v.drawText(initCamText, padding, int32(rl.GetScreenHeight())-padding-fontSize, rl.Fade(rl.Orange, 0.9))
	}
	if alpha <= 0 {
		return
	}

	y := int32(padding)
	for i, t := range shape.Order {
		c := rl.LightGray
		if t == snap.Shape {
			c = rl.White
		}
		v.drawText(fmt.Sprintf("%d  %s", i+1, v.menuLabel(t)), padding, y, rl.Fade(c, alpha))
		y += fontSize + 6
	}
	v.drawText("N next   H hide", padding, y+6, rl.Fade(rl.Gray, alpha))

	w := v.measureText(hintText)
	x := (int32(rl.GetScreenWidth()) - w) / 2
	v.drawText(hintText, x, int32(rl.GetScreenHeight())-padding-fontSize, rl.Fade(rl.LightGray, alpha))
}

// menuLabel falls back to the ASCII name when the default font cannot draw the label.
func (v *Viewer) menuLabel(t shape.Type) string {
	if v.hasFont {
		return t.Label()
	}
	return asciiLabel(t)
}

func (v *Viewer) drawText(text string, x, y int32, c color.RGBA) {
	if v.hasFont {
		rl.DrawTextEx(v.font, text, rl.NewVector2(float32(x), float32(y)), fontSize, 1, c)
		return
	}
	rl.DrawText(text, x, y, fontSize, c)
}

func (v *Viewer) measureText(text string) int32 {
	if v.hasFont {
		return int32(rl.MeasureTextEx(v.font, text, fontSize, 1).X)
	}
	return rl.MeasureText(text, fontSize)
}

// keyShape maps a zero-based number key offset to a shape in cycle order.
func keyShape(offset int32) (shape.Type, bool) {
	if offset < 0 || int(offset) >= len(shape.Order) {
		return 0, false
	}
	return shape.Order[offset], true
}

// asciiLabel returns t's label if it is ASCII, else its name.
func asciiLabel(t shape.Type) string {
	l := t.Label()
	for _, r := range l {
		if r > 0x7f {
			return t.String()
		}
	}
	return l
}

// particleColor converts an rgb triple in [0, 1] to an opaque color.
func particleColor(rgb []float32) color.RGBA {
	return color.RGBA{
		R: channel(rgb[0]),
		G: channel(rgb[1]),
		B: channel(rgb[2]),
		A: 255,
	}
}

func channel(v float32) uint8 {
	return uint8(math32.Round(math32.Min(math32.Max(v, 0), 1) * 255))
}
