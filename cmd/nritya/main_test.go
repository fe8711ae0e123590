package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ayusman/nritya/internal/config"
)

func TestShapesCommand(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"shapes"})

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 6 {
		t.Fatalf("got %d lines, want 6:\n%s", len(lines), out.String())
	}
	if !strings.HasPrefix(lines[0], "1  TEXT") {
		t.Errorf("first line = %q, want TEXT as key 1", lines[0])
	}
	if !strings.HasPrefix(lines[1], "2  HEART") {
		t.Errorf("second line = %q, want HEART as key 2", lines[1])
	}
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.Save(path, config.Default()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	root := newRootCmd()
	if err := root.ParseFlags([]string{"--config", path, "--addr", "off", "--no-camera", "--shape", "rose", "--seed", "42"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}
	opts := options{configPath: path, addr: "off", noCamera: true, shape: "rose", seed: 42}

	cfg, err := loadConfig(root, opts)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Server.Enabled {
		t.Error("expected server disabled by --addr off")
	}
	if cfg.Camera.Enabled {
		t.Error("expected camera disabled by --no-camera")
	}
	if cfg.Particles.InitialShape != "rose" {
		t.Errorf("InitialShape = %q, want rose", cfg.Particles.InitialShape)
	}
	if cfg.Particles.Seed != 42 {
		t.Errorf("Seed = %d, want 42", cfg.Particles.Seed)
	}
}

func TestLoadConfig_InvalidShape(t *testing.T) {
	root := newRootCmd()
	if err := root.ParseFlags([]string{"--shape", "cube"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}
	opts := options{configPath: filepath.Join(t.TempDir(), "missing.toml"), shape: "cube"}

	if _, err := loadConfig(root, opts); err == nil {
		t.Error("expected error for unknown shape")
	}
}
