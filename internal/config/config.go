// Package config loads and saves the TOML configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"

	"github.com/ayusman/nritya/internal/capture"
	"github.com/ayusman/nritya/internal/gesture"
	"github.com/ayusman/nritya/internal/particles"
	"github.com/ayusman/nritya/internal/shape"
	"github.com/ayusman/nritya/internal/state"
)

// DataDir is the per-user directory holding the config file and database.
const DataDir = "~/.nritya"

// DefaultPath is the config file location used when none is given.
const DefaultPath = DataDir + "/config.toml"

// DefaultRetentionDays is how long shape events are kept.
const DefaultRetentionDays = 30

// ErrInvalid is returned by Validate for out-of-range settings.
var ErrInvalid = errors.New("invalid config")

// Config is the complete application configuration.
type Config struct {
	Particles ParticlesConfig `toml:"particles"`
	Text      TextConfig      `toml:"text"`
	Camera    CameraConfig    `toml:"camera"`
	Gesture   GestureConfig   `toml:"gesture"`
	Server    ServerConfig    `toml:"server"`
	Store     StoreConfig     `toml:"store"`
	Log       LogConfig       `toml:"log"`
}

// ParticlesConfig controls the particle cloud and its blending.
type ParticlesConfig struct {
	Count          int     `toml:"count"`
	LerpSpeed      float32 `toml:"lerp_speed"`
	ScaleSmoothing float32 `toml:"scale_smoothing"`
	TickHz         int     `toml:"tick_hz"`
	InitialShape   string  `toml:"initial_shape"`
	Seed           uint64  `toml:"seed,omitempty"`
}

// TextConfig controls the TEXT shape.
type TextConfig struct {
	Content  string `toml:"content"`
	Fallback string `toml:"fallback"`
	FontPath string `toml:"font_path,omitempty"`
}

// CameraConfig controls gesture capture.
type CameraConfig struct {
	Enabled         bool    `toml:"enabled"`
	DeviceID        int     `toml:"device_id"`
	Width           int     `toml:"width"`
	Height          int     `toml:"height"`
	MotionThreshold float64 `toml:"motion_threshold"`
	IdleFPS         int     `toml:"idle_fps"`
	ActiveFPS       int     `toml:"active_fps"`
	ScriptPath      string  `toml:"script_path,omitempty"`
	PythonPath      string  `toml:"python_path,omitempty"`
}

// GestureConfig holds the classifier thresholds.
type GestureConfig struct {
	PinchClosed float64 `toml:"pinch_closed"`
	SpanClosed  float64 `toml:"span_closed"`
	SpanOpen    float64 `toml:"span_open"`
	CooldownMS  int     `toml:"cooldown_ms"`
	MinScale    float64 `toml:"min_scale"`
	MaxScale    float64 `toml:"max_scale"`
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Enabled   bool   `toml:"enabled"`
	Addr      string `toml:"addr"`
	StaticDir string `toml:"static_dir,omitempty"`
}

// StoreConfig controls persistence.
type StoreConfig struct {
	Path string `toml:"path"`
	// RetentionDays drops shape events older than this many days at startup.
	// Zero keeps every event.
	RetentionDays int `toml:"retention_days"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	th := gesture.DefaultThresholds()
	return Config{
		Particles: ParticlesConfig{
			Count:          shape.DefaultCount,
			LerpSpeed:      particles.DefaultLerpSpeed,
			ScaleSmoothing: particles.DefaultScaleSmoothing,
			TickHz:         60,
			InitialShape:   shape.Text.String(),
		},
		Text: TextConfig{
			Content:  shape.DefaultConfig().Text,
			Fallback: shape.DefaultConfig().FallbackText,
		},
		Camera: CameraConfig{
			Enabled:         true,
			DeviceID:        0,
			Width:           capture.DefaultWidth,
			Height:          capture.DefaultHeight,
			MotionThreshold: capture.DefaultMotionThreshold,
			IdleFPS:         capture.DefaultIdleFPS,
			ActiveFPS:       capture.DefaultActiveFPS,
		},
		Gesture: GestureConfig{
			PinchClosed: th.PinchClosed,
			SpanClosed:  th.SpanClosed,
			SpanOpen:    th.SpanOpen,
			CooldownMS:  int(th.Cooldown / time.Millisecond),
			MinScale:    th.MinScale,
			MaxScale:    th.MaxScale,
		},
		Server: ServerConfig{
			Enabled: true,
			Addr:    "127.0.0.1:8420",
		},
		Store: StoreConfig{
			Path:          DataDir + "/nritya.db",
			RetentionDays: DefaultRetentionDays,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the config file at path on top of Default. A missing file
// yields the defaults. An empty path uses DefaultPath.
func Load(path string) (Config, error) {
	cfg := Default()

	p, err := ExpandPath(orDefault(path))
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse config %s: %w", p, err)
	}
	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// Save writes cfg to path, creating the directory if needed. An empty path
// uses DefaultPath.
func Save(path string, cfg Config) error {
	p, err := ExpandPath(orDefault(path))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(p, data, 0o644)
}

// Validate reports the first out-of-range setting.
func (c Config) Validate() error {
	switch {
	case c.Particles.Count <= 0:
		return fmt.Errorf("%w: particles.count must be positive", ErrInvalid)
	case c.Particles.LerpSpeed <= 0 || c.Particles.LerpSpeed > 1:
		return fmt.Errorf("%w: particles.lerp_speed must be in (0, 1]", ErrInvalid)
	case c.Particles.ScaleSmoothing <= 0 || c.Particles.ScaleSmoothing > 1:
		return fmt.Errorf("%w: particles.scale_smoothing must be in (0, 1]", ErrInvalid)
	case c.Particles.TickHz <= 0:
		return fmt.Errorf("%w: particles.tick_hz must be positive", ErrInvalid)
	case c.Camera.IdleFPS <= 0 || c.Camera.ActiveFPS <= 0:
		return fmt.Errorf("%w: camera fps must be positive", ErrInvalid)
	case c.Gesture.SpanOpen <= c.Gesture.SpanClosed:
		return fmt.Errorf("%w: gesture.span_open must exceed gesture.span_closed", ErrInvalid)
	case c.Gesture.MinScale <= 0 || c.Gesture.MaxScale < c.Gesture.MinScale:
		return fmt.Errorf("%w: gesture scale range", ErrInvalid)
	case c.Gesture.MinScale < state.MinScale || c.Gesture.MaxScale > state.MaxScale:
		return fmt.Errorf("%w: gesture scale range must lie within [%v, %v]", ErrInvalid, state.MinScale, state.MaxScale)
	case c.Store.RetentionDays < 0:
		return fmt.Errorf("%w: store.retention_days must not be negative", ErrInvalid)
	}
	if _, err := shape.Parse(c.Particles.InitialShape); err != nil {
		return fmt.Errorf("%w: particles.initial_shape: %v", ErrInvalid, err)
	}
	return nil
}

// Thresholds converts the gesture section into classifier thresholds.
func (c Config) Thresholds() gesture.Thresholds {
	th := gesture.DefaultThresholds()
	th.PinchClosed = c.Gesture.PinchClosed
	th.SpanClosed = c.Gesture.SpanClosed
	th.SpanOpen = c.Gesture.SpanOpen
	th.Cooldown = time.Duration(c.Gesture.CooldownMS) * time.Millisecond
	th.MinScale = c.Gesture.MinScale
	th.MaxScale = c.Gesture.MaxScale
	return th
}

// CameraDevice converts the camera section into a capture config.
func (c Config) CameraDevice() capture.Config {
	return capture.Config{
		DeviceID: c.Camera.DeviceID,
		Width:    c.Camera.Width,
		Height:   c.Camera.Height,
		FPS:      c.Camera.IdleFPS,
	}
}

// Retention returns how long shape events are kept, or zero to keep all.
func (c Config) Retention() time.Duration {
	return time.Duration(c.Store.RetentionDays) * 24 * time.Hour
}

// TickInterval returns the render tick period.
func (c Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.Particles.TickHz)
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) (string, error) {
	out, err := homedir.Expand(strings.TrimSpace(p))
	if err != nil {
		return "", fmt.Errorf("expand path %q: %w", p, err)
	}
	return out, nil
}

func orDefault(path string) string {
	if path == "" {
		return DefaultPath
	}
	return path
}
