// Package app wires the particle engine, the shared state, the gesture
// pipeline and persistence into a running application.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ayusman/nritya/internal/capture"
	"github.com/ayusman/nritya/internal/config"
	"github.com/ayusman/nritya/internal/detector"
	"github.com/ayusman/nritya/internal/gesture"
	"github.com/ayusman/nritya/internal/particles"
	"github.com/ayusman/nritya/internal/render"
	"github.com/ayusman/nritya/internal/shape"
	"github.com/ayusman/nritya/internal/state"
	"github.com/ayusman/nritya/internal/store"
)

// Options holds the dependencies of an App. Zero fields get defaults.
type Options struct {
	Config config.Config

	// Store persists settings and history. Nil opens Config.Store.Path, or
	// disables persistence when that path is empty. A Store passed here is
	// not closed by the App.
	Store *store.Store

	// Camera and Detector override the gocv camera and MediaPipe detector.
	Camera   capture.Camera
	Detector detector.Detector

	// Rand seeds shape generation. Nil uses Config.Particles.Seed when set.
	Rand *rand.Rand

	Logger *slog.Logger
}

// Snapshot is a point-in-time view of the application state.
type Snapshot struct {
	Shape       shape.Type `json:"shape"`
	Label       string     `json:"label"`
	TargetShape shape.Type `json:"target_shape"`
	ScaleFactor float64    `json:"scale_factor"`
	ShowUI      bool       `json:"show_ui"`
	CameraReady bool       `json:"camera_ready"`
	Particles   int        `json:"particles"`
	Uptime      string     `json:"uptime"`
}

// App is the main application.
type App struct {
	config    config.Config
	logger    *slog.Logger
	state     *state.State
	generator *shape.Generator
	particles *particles.Store
	engine    *particles.Engine
	pipeline  *Pipeline
	db        *store.Store
	ownsDB    bool
	started   time.Time

	// targetShape is the shape the current target was generated for.
	targetShape atomic.Int64

	retarget  chan struct{}
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New builds an App. The initial distribution is generated eagerly so the
// first Tick already has data.
func New(opts Options) (*App, error) {
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	a := &App{
		config:   cfg,
		logger:   logger,
		db:       opts.Store,
		started:  time.Now(),
		retarget: make(chan struct{}, 1),
		done:     make(chan struct{}),
	}

	if a.db == nil && cfg.Store.Path != "" {
		path, err := config.ExpandPath(cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		db, err := store.New(path)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		a.db = db
		a.ownsDB = true
	}

	a.pruneEvents()

	initial, _ := shape.Parse(cfg.Particles.InitialShape)
	initial, showUI := a.restore(initial)

	a.state = state.New(initial)
	a.state.SetShowUI(showUI)

	gen, err := a.newGenerator(opts.Rand)
	if err != nil {
		a.closeDB()
		return nil, err
	}
	a.generator = gen

	ps, err := particles.NewStore(gen.Generate(initial), gen.Sizes())
	if err != nil {
		a.closeDB()
		return nil, err
	}
	a.particles = ps
	a.targetShape.Store(int64(initial))

	a.engine = particles.NewEngine(ps, a.state, particles.EngineConfig{
		LerpSpeed:      cfg.Particles.LerpSpeed,
		ScaleSmoothing: cfg.Particles.ScaleSmoothing,
	})

	if cfg.Camera.Enabled || opts.Camera != nil {
		a.pipeline = a.newPipeline(opts)
	}

	a.state.Subscribe(a.onChange)

	a.wg.Add(1)
	go a.retargetLoop()

	logger.Info("app ready",
		slog.String("shape", initial.String()),
		slog.Int("particles", ps.Count()),
		slog.Bool("persistence", a.db != nil))
	return a, nil
}

func (a *App) newGenerator(rng *rand.Rand) (*shape.Generator, error) {
	gc := shape.DefaultConfig()
	gc.Count = a.config.Particles.Count
	gc.Text = a.config.Text.Content
	gc.FallbackText = a.config.Text.Fallback
	gc.Logger = a.logger
	gc.Rand = rng
	if gc.Rand == nil && a.config.Particles.Seed != 0 {
		seed := a.config.Particles.Seed
		gc.Rand = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
	if a.config.Text.FontPath != "" {
		path, err := config.ExpandPath(a.config.Text.FontPath)
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read font: %w", err)
		}
		gc.FontData = data
	}
	return shape.NewGenerator(gc)
}

func (a *App) newPipeline(opts Options) *Pipeline {
	cam := opts.Camera
	if cam == nil {
		cam = capture.NewCamera(a.config.CameraDevice())
	}
	det := opts.Detector
	if det == nil {
		dc := detector.DefaultConfig()
		dc.ScriptPath = a.config.Camera.ScriptPath
		dc.PythonPath = a.config.Camera.PythonPath
		mp, err := detector.NewMediaPipeDetector(dc, a.logger)
		if err != nil {
			a.logger.Warn("hand detection unavailable, gestures disabled", slog.Any("error", err))
			return nil
		}
		det = mp
	}
	return NewPipeline(cam, det, gesture.NewClassifier(a.config.Thresholds()), a.state, PipelineConfig{
		IdleFPS:         a.config.Camera.IdleFPS,
		ActiveFPS:       a.config.Camera.ActiveFPS,
		MotionThreshold: a.config.Camera.MotionThreshold,
	}, a.logger)
}

// restore returns the persisted shape and UI visibility, falling back to
// initial and a visible UI.
func (a *App) restore(initial shape.Type) (shape.Type, bool) {
	if a.db == nil {
		return initial, true
	}
	settings := a.db.Settings()

	if v, err := settings.Get(store.KeyCurrentShape); err == nil {
		if t, err := shape.Parse(v); err == nil {
			initial = t
		} else {
			a.logger.Warn("ignoring stored shape", slog.String("value", v))
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		a.logger.Warn("read stored shape", slog.Any("error", err))
	}

	showUI := true
	if v, err := settings.GetBool(store.KeyShowUI); err == nil {
		showUI = v
	}
	return initial, showUI
}

// Start launches the gesture pipeline. Camera or detector failures are
// logged and leave the app running without gestures.
func (a *App) Start(ctx context.Context) {
	if a.pipeline == nil {
		a.logger.Info("camera disabled, gestures off")
		return
	}
	if err := a.pipeline.Start(ctx); err != nil {
		a.logger.Warn("camera unavailable, gestures off", slog.Any("error", err))
	}
}

// Tick advances the blend by one step. It must be called from a single
// goroutine.
func (a *App) Tick() render.Frame {
	return a.engine.Tick()
}

// Run ticks at the configured rate and renders each frame to sink until ctx
// is cancelled. Sink errors are logged and do not stop the loop.
func (a *App) Run(ctx context.Context, sink render.Sink) error {
	ticker := time.NewTicker(a.config.TickInterval())
	defer ticker.Stop()

	var lastErr string
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			f := a.Tick()
			if sink == nil {
				continue
			}
			if err := sink.Render(f); err != nil {
				if err.Error() != lastErr {
					a.logger.Warn("render", slog.Any("error", err))
				}
				lastErr = err.Error()
			} else {
				lastErr = ""
			}
		}
	}
}

// Select jumps to t.
func (a *App) Select(t shape.Type, src state.Source) error {
	return a.state.Select(t, src)
}

// Advance moves to the next shape in cycle order.
func (a *App) Advance(src state.Source) shape.Type {
	return a.state.Advance(src)
}

// ToggleUI flips the overlay visibility and persists it.
func (a *App) ToggleUI() bool {
	v := a.state.ToggleUI()
	a.persistShowUI(v)
	return v
}

// SetShowUI sets the overlay visibility and persists it.
func (a *App) SetShowUI(v bool) {
	a.state.SetShowUI(v)
	a.persistShowUI(v)
}

// SetGesturesEnabled pauses or resumes gesture processing.
func (a *App) SetGesturesEnabled(enabled bool) {
	if a.pipeline != nil {
		a.pipeline.SetEnabled(enabled)
	}
}

// GesturesEnabled reports whether gesture processing is active.
func (a *App) GesturesEnabled() bool {
	return a.pipeline != nil && a.pipeline.IsEnabled() && a.pipeline.Running()
}

// State returns the shared state.
func (a *App) State() *state.State {
	return a.state
}

// TargetShape returns the shape the current target distribution was
// generated for. It lags Current while a regeneration is pending.
func (a *App) TargetShape() shape.Type {
	return shape.Type(a.targetShape.Load())
}

// Snapshot returns the current application state.
func (a *App) Snapshot() Snapshot {
	cur := a.state.Current()
	return Snapshot{
		Shape:       cur,
		Label:       cur.Label(),
		TargetShape: a.TargetShape(),
		ScaleFactor: a.state.ScaleFactor(),
		ShowUI:      a.state.ShowUI(),
		CameraReady: a.state.CameraReady(),
		Particles:   a.particles.Count(),
		Uptime:      time.Since(a.started).Round(time.Second).String(),
	}
}

// Events returns up to limit recent shape changes, newest first.
func (a *App) Events(limit int) ([]*store.ShapeEvent, error) {
	if a.db == nil {
		return []*store.ShapeEvent{}, nil
	}
	return a.db.Events().List(limit)
}

// Close stops the pipeline and the regeneration worker and closes the
// database if the App opened it. Close is idempotent.
func (a *App) Close() error {
	var err error
	a.closeOnce.Do(func() {
		if a.pipeline != nil {
			a.pipeline.Close()
		}
		close(a.done)
		a.wg.Wait()
		err = a.closeDB()
	})
	return err
}

func (a *App) closeDB() error {
	if a.db == nil || !a.ownsDB {
		return nil
	}
	return a.db.Close()
}

// onChange runs on the goroutine that made the selection.
func (a *App) onChange(c state.Change) {
	a.logger.Info("shape selected",
		slog.String("from", c.From.String()),
		slog.String("to", c.To.String()),
		slog.String("source", string(c.Source)))

	// Coalesce: a pending request already regenerates for the latest shape.
	select {
	case a.retarget <- struct{}{}:
	default:
	}

	a.record(c)
}

func (a *App) record(c state.Change) {
	if a.db == nil {
		return
	}
	if err := a.db.Settings().Set(store.KeyCurrentShape, c.To.String()); err != nil {
		a.logger.Warn("persist shape", slog.Any("error", err))
	}
	err := a.db.Events().Record(&store.ShapeEvent{
		From:   c.From.String(),
		To:     c.To.String(),
		Source: string(c.Source),
	})
	if err != nil {
		a.logger.Warn("record shape event", slog.Any("error", err))
	}
}

// pruneEvents drops shape events older than the configured retention.
func (a *App) pruneEvents() {
	keep := a.config.Retention()
	if a.db == nil || keep <= 0 {
		return
	}
	n, err := a.db.Events().Prune(time.Now().Add(-keep))
	if err != nil {
		a.logger.Warn("prune shape events", slog.Any("error", err))
		return
	}
	if n > 0 {
		a.logger.Info("pruned shape events", slog.Int64("removed", n))
	}
}

func (a *App) persistShowUI(v bool) {
	if a.db == nil {
		return
	}
	if err := a.db.Settings().SetBool(store.KeyShowUI, v); err != nil {
		a.logger.Warn("persist ui visibility", slog.Any("error", err))
	}
}

// retargetLoop regenerates the target for the latest selection. Selections
// made while a generation is running are folded into the next one.
func (a *App) retargetLoop() {
	defer a.wg.Done()
	for {
		select {
		case <-a.done:
			return
		case <-a.retarget:
			t := a.state.Current()
			start := time.Now()
			if err := a.particles.SetTarget(a.generator.Generate(t)); err != nil {
				a.logger.Error("set target", slog.String("shape", t.String()), slog.Any("error", err))
				continue
			}
			a.targetShape.Store(int64(t))
			a.logger.Debug("target regenerated",
				slog.String("shape", t.String()),
				slog.Duration("took", time.Since(start)))
		}
	}
}
