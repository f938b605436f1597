// Command meshview opens a window and draws the mesh of
// assets/models/plane-blender.dae, relative to the working directory.
package main

import (
	"log/slog"
	"os"
	"runtime"

	"github.com/soypat/meshview/surface"
)

func init() {
	// GLFW and the GL context must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	cfg := surface.DefaultConfig()
	cfg.Logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	err := surface.Run(cfg)
	if err != nil {
		cfg.Logger.Error("meshview", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
