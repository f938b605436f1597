// Package surface implements the render surface: a window whose contents
// are a single imported mesh drawn as a triangle list every frame.
//
// [Surface] holds the setup, resize and per-frame logic and issues its GPU
// work through a [Device]. [Run] opens a GLFW window with an OpenGL
// context and drives a Surface from the window's event loop.
package surface

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/soypat/meshview"
	"github.com/soypat/meshview/importer"
	"github.com/soypat/meshview/shaders"
)

// Device is the GPU as seen by a [Surface]. All methods are called from the
// goroutine that owns the rendering context.
type Device interface {
	// Init binds graphics functions for the current context.
	Init() error
	SetClearColor(r, g, b, a float32)
	EnableDepthTest()
	// UploadPositions creates the vertex buffer and fills it with data, 3 floats per vertex.
	UploadPositions(data []float32) error
	// CompileProgram compiles and links src. The program must expose the
	// [shaders.PositionAttrib] attribute and [shaders.ModelMatrixUniform] uniform.
	CompileProgram(src shaders.Source) error
	Viewport(v meshview.Viewport)
	// Clear clears the color and depth buffers.
	Clear()
	// DrawTriangles binds the program and vertex buffer, sets the model
	// uniform and draws count vertices as a triangle list.
	DrawTriangles(model mgl32.Mat4, count int)
	// Release deletes all GPU objects created by the device.
	Release()
}

// Config configures a [Surface] and the window [Run] opens for it.
type Config struct {
	Width  int
	Height int
	Title  string
	// ModelPath is the scene file whose first mesh is drawn.
	ModelPath   string
	PostProcess importer.PostProcess
	ClearColor  [4]float32
	// Importer reads ModelPath. If nil [importer.FileImporter] is used.
	Importer importer.Importer
	// Logger receives diagnostics. If nil slog.Default() is used.
	Logger *slog.Logger
	// Alert shows a blocking error message to the user. If nil
	// errors are only logged.
	Alert func(title, message string)
	// Context stops the event loop of [Run] when done. May be nil.
	Context context.Context
}

// DefaultConfig returns the configuration of the demo window.
func DefaultConfig() Config {
	return Config{
		Width:       400,
		Height:      400,
		Title:       "OpenGL 4.1, GLFW, Go",
		ModelPath:   "assets/models/plane-blender.dae",
		PostProcess: importer.Triangulate | importer.FlipUVs,
		ClearColor:  [4]float32{0.1, 0.1, 0.1, 1},
	}
}

// Surface draws a single mesh. The zero value is not usable, use [New].
type Surface struct {
	dev      Device
	cfg      Config
	log      *slog.Logger
	mesh     meshview.Mesh
	loaded   bool
	viewport meshview.Viewport
	width    int
	height   int
}

// New returns a surface that issues GPU work to dev. No GPU work is done
// until [Surface.Setup] is called.
func New(dev Device, cfg Config) *Surface {
	if cfg.Importer == nil {
		cfg.Importer = importer.FileImporter{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Surface{dev: dev, cfg: cfg, log: cfg.Logger}
}

var errNoVertices = errors.New("first mesh has no vertices")

// Setup prepares the context, imports the model and uploads it to the GPU.
// It must be called once with the rendering context current, before the first frame.
// On error the user is alerted and the surface renders nothing.
func (s *Surface) Setup() error {
	if err := s.dev.Init(); err != nil {
		return fmt.Errorf("initializing graphics: %w", err)
	}
	c := s.cfg.ClearColor
	s.dev.SetClearColor(c[0], c[1], c[2], c[3])
	s.dev.EnableDepthTest()

	mesh, err := s.importMesh()
	if err != nil {
		s.fail("Import error", err)
		return err
	}
	flat := meshview.FlattenPositions(&mesh)
	if err := s.dev.UploadPositions(flat); err != nil {
		err = fmt.Errorf("uploading vertices: %w", err)
		s.fail("Graphics error", err)
		return err
	}
	if err := s.dev.CompileProgram(shaders.Mesh()); err != nil {
		err = fmt.Errorf("building mesh program: %w", err)
		s.fail("Graphics error", err)
		return err
	}
	s.mesh = mesh
	s.loaded = true
	bb := mesh.Bounds()
	s.log.Info("mesh loaded", slog.String("path", s.cfg.ModelPath), slog.String("mesh", mesh.Name),
		slog.Int("vertices", mesh.NumVertices()), slog.Any("min", bb.Min), slog.Any("max", bb.Max))
	if s.width > 0 && s.height > 0 {
		// Resize arrived before setup finished.
		s.Resize(s.width, s.height)
	}
	return nil
}

func (s *Surface) importMesh() (meshview.Mesh, error) {
	scene, err := s.cfg.Importer.Import(s.cfg.ModelPath, s.cfg.PostProcess)
	if err == nil {
		err = scene.Validate()
	}
	if err != nil {
		return meshview.Mesh{}, err
	}
	mesh := scene.Meshes[0]
	if mesh.NumVertices() == 0 {
		return meshview.Mesh{}, fmt.Errorf("%s: %w", s.cfg.ModelPath, errNoVertices)
	}
	return mesh, nil
}

func (s *Surface) fail(title string, err error) {
	s.log.Error(title, slog.String("path", s.cfg.ModelPath), slog.String("error", err.Error()))
	if s.cfg.Alert != nil {
		s.cfg.Alert(title, err.Error())
	}
}

// Resize updates the viewport to the new drawable area in pixels.
// Before a successful setup only the size is recorded.
func (s *Surface) Resize(width, height int) {
	s.width, s.height = width, height
	if !s.loaded {
		return
	}
	s.viewport = meshview.ViewportFor(width, height)
	s.dev.Viewport(s.viewport)
}

// Render draws one frame.
func (s *Surface) Render() {
	s.dev.Clear()
	if !s.loaded {
		return
	}
	s.dev.DrawTriangles(meshview.ModelMatrix(), s.mesh.NumVertices())
}

// Destroy releases GPU resources. The surface renders nothing afterwards.
func (s *Surface) Destroy() {
	s.loaded = false
	s.dev.Release()
}

// Loaded reports whether setup succeeded and the mesh is being drawn.
func (s *Surface) Loaded() bool { return s.loaded }

// NumVertices returns the amount of vertices drawn each frame.
func (s *Surface) NumVertices() int {
	if !s.loaded {
		return 0
	}
	return s.mesh.NumVertices()
}

// Viewport returns the viewport currently in effect.
func (s *Surface) Viewport() meshview.Viewport { return s.viewport }
