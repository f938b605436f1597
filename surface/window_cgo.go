//go:build !tinygo && cgo

package surface

import (
	"fmt"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/sqweek/dialog"
)

// Run opens a window configured by cfg, draws the configured model in it
// and returns once the window is closed or cfg.Context is done.
// A failed import does not close the window; it stays open showing nothing.
// Run must be called from the main goroutine locked to its OS thread.
func Run(cfg Config) error {
	if cfg.Alert == nil {
		cfg.Alert = DialogAlert
	}
	window, term, err := startGLFW(cfg.Width, cfg.Height, cfg.Title)
	if err != nil {
		return err
	}
	defer term()

	dev := new(GLDevice)
	s := New(dev, cfg)
	// Setup reports its own errors to the user.
	_ = s.Setup()
	defer s.Destroy()

	s.Resize(window.GetFramebufferSize())
	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		s.Resize(width, height)
	})
	window.SetRefreshCallback(func(w *glfw.Window) {
		s.Render()
		w.SwapBuffers()
	})

	ctx := cfg.Context
	for !window.ShouldClose() {
		if ctx != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}
		s.Render()
		window.SwapBuffers()
		glfw.PollEvents()
	}
	return nil
}

// DialogAlert shows a modal error dialog and blocks until the user dismisses it.
func DialogAlert(title, message string) {
	dialog.Message("%s", message).Title(title).Error()
}

func startGLFW(width, height int, title string) (window *glfw.Window, term func(), err error) {
	if err := glfw.Init(); err != nil {
		return nil, nil, fmt.Errorf("initializing GLFW: %w", err)
	}
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	window, err = glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, nil, fmt.Errorf("creating GLFW window: %w", err)
	}
	window.MakeContextCurrent()
	// One frame per display refresh.
	glfw.SwapInterval(1)
	return window, glfw.Terminate, nil
}
