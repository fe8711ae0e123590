package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayusman/nritya/internal/app"
	"github.com/ayusman/nritya/internal/config"
	"github.com/ayusman/nritya/internal/logging"
	"github.com/ayusman/nritya/internal/server"
	"github.com/ayusman/nritya/internal/tray"
	"github.com/ayusman/nritya/internal/viewer"
)

// trayRefresh is how often the tray picks up camera and shape changes.
const trayRefresh = 500 * time.Millisecond

func run(cmd *cobra.Command, opts options) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	logger, err := logging.Setup(os.Stderr, logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(app.Options{Config: cfg, Logger: logger})
	if err != nil {
		return fmt.Errorf("start app: %w", err)
	}
	defer a.Close()
	a.Start(ctx)

	hub := server.NewFrameHub(server.DefaultStreamFPS, logger)
	defer hub.Close()

	if cfg.Server.Enabled {
		staticDir := cfg.Server.StaticDir
		if staticDir == "" {
			staticDir = findWebDir()
		}
		if staticDir != "" {
			logger.Info("serving static files", slog.String("dir", staticDir))
		}
		srv := server.New(server.Config{
			StaticDir:  staticDir,
			Controller: a,
			Frames:     hub,
			Logger:     logger,
		})
		go func() {
			if err := srv.Run(ctx, cfg.Server.Addr); err != nil {
				logger.Error("http server", slog.Any("error", err))
			}
		}()
	}

	var t *tray.Tray
	if opts.tray {
		t = tray.New(a)
		t.OnQuit(stop)
		go refreshTray(ctx, t)
	}

	if opts.headless {
		if t == nil {
			return a.Run(ctx, hub)
		}
		go a.Run(ctx, hub)
		go func() {
			<-ctx.Done()
			t.Quit()
		}()
		t.Run()
		return nil
	}

	if t != nil {
		t.Register()
	}
	v := viewer.New(a, viewer.Config{
		FontPath: cfg.Text.FontPath,
		Sink:     hub,
		Logger:   logger,
	})
	return v.Run(ctx)
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig(cmd *cobra.Command, opts options) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("addr") {
		if opts.addr == "off" {
			cfg.Server.Enabled = false
		} else {
			cfg.Server.Enabled = true
			cfg.Server.Addr = opts.addr
		}
	}
	if opts.noCamera {
		cfg.Camera.Enabled = false
	}
	if flags.Changed("shape") {
		cfg.Particles.InitialShape = opts.shape
	}
	if flags.Changed("seed") {
		cfg.Particles.Seed = opts.seed
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func refreshTray(ctx context.Context, t *tray.Tray) {
	ticker := time.NewTicker(trayRefresh)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Refresh()
		}
	}
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.nritya/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeWebDir, err := config.ExpandPath(config.DataDir + "/web")
	if err != nil {
		return ""
	}
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
