package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ayusman/nritya/internal/shape"
)

// The raylib window and the tray must run on the main OS thread.
func init() {
	runtime.LockOSThread()
}

type options struct {
	configPath string
	addr       string
	headless   bool
	noCamera   bool
	tray       bool
	shape      string
	seed       uint64
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	root := &cobra.Command{
		Use:          "nritya",
		Short:        "Gesture-driven 3D particle shapes",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	flags := root.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "config file (default ~/.nritya/config.toml)")
	flags.StringVar(&opts.addr, "addr", "", "HTTP listen address, empty string from config; \"off\" disables the server")
	flags.BoolVar(&opts.headless, "headless", false, "run without a window")
	flags.BoolVar(&opts.noCamera, "no-camera", false, "disable camera gestures")
	flags.BoolVar(&opts.tray, "tray", false, "show a system tray menu")
	flags.StringVar(&opts.shape, "shape", "", "initial shape when nothing is persisted")
	flags.Uint64Var(&opts.seed, "seed", 0, "seed for shape generation (0 is random)")

	root.AddCommand(newShapesCmd())
	return root
}

func newShapesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shapes",
		Short: "List the available shapes and their keys",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			for i, t := range shape.Order {
				fmt.Fprintf(w, "%d  %-10s %s\n", i+1, t.String(), t.Label())
			}
		},
	}
}
