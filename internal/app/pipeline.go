package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ayusman/nritya/internal/capture"
	"github.com/ayusman/nritya/internal/detector"
	"github.com/ayusman/nritya/internal/gesture"
	"github.com/ayusman/nritya/internal/state"
)

// ErrPipelineRunning is returned by Start when the pipeline is already running.
var ErrPipelineRunning = errors.New("pipeline already running")

// PipelineConfig holds the gesture pipeline frame rates.
type PipelineConfig struct {
	// IdleFPS is the frame rate when no motion is detected.
	IdleFPS int
	// ActiveFPS is the frame rate while the scene is moving.
	ActiveFPS int
	// ActiveHold is how long the pipeline stays active after the last motion.
	ActiveHold time.Duration
	// MotionThreshold is the percentage of changed pixels that counts as motion.
	MotionThreshold float64
}

// DefaultPipelineConfig returns the standard frame rates.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		IdleFPS:         capture.DefaultIdleFPS,
		ActiveFPS:       capture.DefaultActiveFPS,
		ActiveHold:      capture.DefaultActiveHold,
		MotionThreshold: capture.DefaultMotionThreshold,
	}
}

// Pipeline periodically reads a camera frame, detects hands, classifies the
// gesture and writes the result into the shared state.
//
// The pipeline owns the camera and detector between Start and Stop.
type Pipeline struct {
	config     PipelineConfig
	camera     capture.Camera
	detector   detector.Detector
	classifier *gesture.Classifier
	motion     *capture.MotionDetector
	activity   *capture.ActivityMonitor
	state      *state.State
	logger     *slog.Logger
	now        func() time.Time

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	active  bool
	lastErr string
	enabled bool
}

// NewPipeline creates a pipeline. Nothing is opened until Start.
func NewPipeline(cam capture.Camera, det detector.Detector, cls *gesture.Classifier, st *state.State, config PipelineConfig, logger *slog.Logger) *Pipeline {
	def := DefaultPipelineConfig()
	if config.IdleFPS <= 0 {
		config.IdleFPS = def.IdleFPS
	}
	if config.ActiveFPS <= 0 {
		config.ActiveFPS = def.ActiveFPS
	}
	if logger == nil {
		logger = slog.Default()
	}

	motion := capture.NewMotionDetector(config.MotionThreshold)
	return &Pipeline{
		config:     config,
		camera:     cam,
		detector:   det,
		classifier: cls,
		motion:     motion,
		activity:   capture.NewActivityMonitor(motion, config.ActiveHold),
		state:      st,
		logger:     logger,
		now:        time.Now,
		enabled:    true,
	}
}

// Start opens the camera and launches the capture loop. On failure the
// camera is released, the state reports the camera as not ready and the
// error is returned.
func (p *Pipeline) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		return ErrPipelineRunning
	}

	if err := p.camera.Open(); err != nil {
		p.state.SetCameraReady(false)
		return fmt.Errorf("open camera: %w", err)
	}
	p.camera.SetFPS(p.config.IdleFPS)
	p.active = false
	p.classifier.Reset()

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.state.SetCameraReady(true)

	p.wg.Add(1)
	go p.run(ctx)

	p.logger.Info("gesture pipeline started", slog.Int("fps", p.config.IdleFPS))
	return nil
}

// Stop cancels the loop, waits for it to exit and releases the camera and
// detector. No shared state is written after Stop returns. Stop is safe to
// call when the pipeline is not running.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	p.wg.Wait()

	if err := p.camera.Close(); err != nil {
		p.logger.Warn("close camera", slog.Any("error", err))
	}
	if err := p.detector.Close(); err != nil {
		p.logger.Warn("close detector", slog.Any("error", err))
	}
	p.motion.Reset()
	p.state.SetCameraReady(false)

	p.logger.Info("gesture pipeline stopped")
}

// Close stops the pipeline and frees the motion detector.
func (p *Pipeline) Close() {
	p.Stop()
	p.motion.Close()
}

// Running reports whether the capture loop is active.
func (p *Pipeline) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

// SetEnabled pauses or resumes gesture processing without releasing the camera.
func (p *Pipeline) SetEnabled(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enabled = enabled
}

// IsEnabled returns whether gesture processing is currently enabled.
func (p *Pipeline) IsEnabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled
}

func (p *Pipeline) run(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(time.Second / time.Duration(p.config.IdleFPS))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !p.IsEnabled() {
				continue
			}
			fps, changed := p.step()
			if changed {
				p.camera.SetFPS(fps)
				ticker.Reset(time.Second / time.Duration(fps))
			}
		}
	}
}

// step processes one frame. It returns the frame rate to use next and
// whether it differs from the current one.
func (p *Pipeline) step() (fps int, changed bool) {
	frame, err := p.camera.ReadFrame()
	if err != nil {
		p.reportError("read frame", err)
		return 0, false
	}
	defer frame.Close()

	now := p.now()
	active := p.activity.Observe(frame, now)
	if active != p.active {
		p.active = active
		changed = true
		if active {
			fps = p.config.ActiveFPS
		} else {
			fps = p.config.IdleFPS
		}
		p.logger.Debug("capture rate changed", slog.Bool("active", active), slog.Int("fps", fps))
	}

	hands, err := p.detector.Detect(frame)
	if err != nil {
		p.reportError("detect hands", err)
		return fps, changed
	}
	p.lastErr = ""

	p.apply(gesture.Sample{Hands: hands, Timestamp: now})
	return fps, changed
}

// apply classifies s and writes the outcome into the shared state.
func (p *Pipeline) apply(s gesture.Sample) gesture.Result {
	r := p.classifier.Process(s)
	p.state.SetScaleFactor(r.Scale)
	if r.Next {
		next := p.state.Advance(state.SourceGesture)
		p.logger.Info("gesture advanced shape",
			slog.String("shape", next.String()),
			slog.Float64("span", r.Span))
	}
	return r
}

// reportError logs err once until a different error or a success occurs.
func (p *Pipeline) reportError(op string, err error) {
	msg := op + ": " + err.Error()
	if msg == p.lastErr {
		return
	}
	p.lastErr = msg
	p.logger.Warn("gesture pipeline", slog.String("op", op), slog.Any("error", err))
}
