package surface

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/meshview"
	"github.com/soypat/meshview/importer"
	"github.com/soypat/meshview/shaders"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder is a Device that records the calls made to it.
type recorder struct {
	calls      []string
	uploaded   [][]float32
	viewports  []meshview.Viewport
	models     []mgl32.Mat4
	counts     []int
	compileErr error
}

func (r *recorder) Init() error { r.calls = append(r.calls, "init"); return nil }
func (r *recorder) SetClearColor(cr, g, b, a float32) {
	r.calls = append(r.calls, fmt.Sprintf("clearcolor %g %g %g %g", cr, g, b, a))
}
func (r *recorder) EnableDepthTest() { r.calls = append(r.calls, "depthtest") }
func (r *recorder) UploadPositions(data []float32) error {
	r.calls = append(r.calls, "upload")
	r.uploaded = append(r.uploaded, append([]float32{}, data...))
	return nil
}
func (r *recorder) CompileProgram(src shaders.Source) error {
	r.calls = append(r.calls, "compile")
	return r.compileErr
}
func (r *recorder) Viewport(v meshview.Viewport) {
	r.calls = append(r.calls, "viewport")
	r.viewports = append(r.viewports, v)
}
func (r *recorder) Clear() { r.calls = append(r.calls, "clear") }
func (r *recorder) DrawTriangles(model mgl32.Mat4, count int) {
	r.calls = append(r.calls, "draw")
	r.models = append(r.models, model)
	r.counts = append(r.counts, count)
}
func (r *recorder) Release() { r.calls = append(r.calls, "release") }

func (r *recorder) count(call string) (n int) {
	for _, c := range r.calls {
		if c == call {
			n++
		}
	}
	return n
}

type sceneImporter struct {
	scene *importer.Scene
	err   error
	paths []string
	pp    []importer.PostProcess
}

func (si *sceneImporter) Import(path string, pp importer.PostProcess) (*importer.Scene, error) {
	si.paths = append(si.paths, path)
	si.pp = append(si.pp, pp)
	return si.scene, si.err
}

var triangleMesh = meshview.Mesh{
	Name:      "tri",
	Positions: []ms3.Vec{{X: -1, Y: -1}, {X: 1, Y: -1}, {Y: 1, Z: 0.5}},
}

func goodScene() *importer.Scene {
	return &importer.Scene{
		Root: &importer.Node{Name: "root"},
		Meshes: []meshview.Mesh{
			triangleMesh,
			{Name: "ignored", Positions: []ms3.Vec{{X: 9}, {X: 9}, {X: 9}}},
		},
	}
}

type alertLog struct {
	titles, messages []string
}

func (a *alertLog) alert(title, msg string) {
	a.titles = append(a.titles, title)
	a.messages = append(a.messages, msg)
}

func newTestSurface(imp importer.Importer) (*Surface, *recorder, *alertLog, *bytes.Buffer) {
	dev := new(recorder)
	alerts := new(alertLog)
	var logbuf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Importer = imp
	cfg.Alert = alerts.alert
	cfg.Logger = slog.New(slog.NewTextHandler(&logbuf, nil))
	return New(dev, cfg), dev, alerts, &logbuf
}

func TestSetupUploadsFirstMesh(t *testing.T) {
	imp := &sceneImporter{scene: goodScene()}
	s, dev, alerts, _ := newTestSurface(imp)
	require.NoError(t, s.Setup())

	assert.True(t, s.Loaded())
	assert.Equal(t, 3, s.NumVertices())
	assert.Equal(t, []string{"init", "clearcolor 0.1 0.1 0.1 1", "depthtest", "upload", "compile"}, dev.calls)
	require.Len(t, dev.uploaded, 1)
	assert.Equal(t, []float32{-1, -1, 0, 1, -1, 0, 0, 1, 0.5}, dev.uploaded[0])
	assert.Empty(t, alerts.messages)

	assert.Equal(t, []string{"assets/models/plane-blender.dae"}, imp.paths)
	assert.Equal(t, []importer.PostProcess{importer.Triangulate | importer.FlipUVs}, imp.pp)
}

func TestSetupImportFailure(t *testing.T) {
	errMissing := errors.New("unable to open file \"assets/models/plane-blender.dae\"")
	for name, imp := range map[string]*sceneImporter{
		"error":      {err: errMissing},
		"nilscene":   {},
		"incomplete": {scene: &importer.Scene{Root: &importer.Node{}, Meshes: []meshview.Mesh{triangleMesh}, Flags: importer.FlagIncomplete}},
		"noroot":     {scene: &importer.Scene{Meshes: []meshview.Mesh{triangleMesh}}},
		"nomeshes":   {scene: &importer.Scene{Root: &importer.Node{}}},
		"novertices": {scene: &importer.Scene{Root: &importer.Node{}, Meshes: []meshview.Mesh{{Name: "empty"}}}},
	} {
		t.Run(name, func(t *testing.T) {
			s, dev, alerts, logbuf := newTestSurface(imp)
			err := s.Setup()
			require.Error(t, err)
			assert.False(t, s.Loaded())
			assert.Zero(t, s.NumVertices())

			// No geometry reaches the GPU.
			assert.Zero(t, dev.count("upload"))
			assert.Zero(t, dev.count("compile"))

			// User is told through dialog and log with the same text.
			require.Len(t, alerts.messages, 1)
			assert.Equal(t, "Import error", alerts.titles[0])
			assert.Equal(t, err.Error(), alerts.messages[0])
			assert.Contains(t, logbuf.String(), "level=ERROR")
			assert.Contains(t, logbuf.String(), fmt.Sprintf("%q", err.Error()))

			// Frames clear but never draw, resizes are not forwarded.
			s.Resize(640, 480)
			s.Render()
			s.Render()
			assert.Zero(t, dev.count("draw"))
			assert.Zero(t, dev.count("viewport"))
			assert.Equal(t, 2, dev.count("clear"))
		})
	}
}

func TestSetupCompileFailure(t *testing.T) {
	s, dev, alerts, _ := newTestSurface(&sceneImporter{scene: goodScene()})
	dev.compileErr = errors.New("0:3(1): error: syntax error")
	err := s.Setup()
	require.Error(t, err)
	assert.False(t, s.Loaded())
	require.Len(t, alerts.titles, 1)
	assert.Equal(t, "Graphics error", alerts.titles[0])
	s.Render()
	assert.Zero(t, dev.count("draw"))
}

func TestRenderModelTransformConstant(t *testing.T) {
	s, dev, _, _ := newTestSurface(&sceneImporter{scene: goodScene()})
	require.NoError(t, s.Setup())
	const frames = 5
	for i := 0; i < frames; i++ {
		s.Resize(100*(i+1), 50*(i+1))
		s.Render()
	}
	require.Len(t, dev.models, frames)
	want := mgl32.Scale3D(0.5, 0.5, 0.5)
	for i, model := range dev.models {
		assert.Equal(t, want, model, "frame %d", i)
		assert.Equal(t, 3, dev.counts[i], "frame %d", i)
	}
	assert.Equal(t, frames, dev.count("clear"))
}

func TestRenderClearsBeforeDraw(t *testing.T) {
	s, dev, _, _ := newTestSurface(&sceneImporter{scene: goodScene()})
	require.NoError(t, s.Setup())
	dev.calls = dev.calls[:0]
	s.Render()
	assert.Equal(t, []string{"clear", "draw"}, dev.calls)
}

func TestResizeViewport(t *testing.T) {
	s, dev, _, _ := newTestSurface(&sceneImporter{scene: goodScene()})
	require.NoError(t, s.Setup())
	s.Resize(800, 600)
	assert.Equal(t, meshview.Viewport{Width: 800, Height: 600}, s.Viewport())

	s.Resize(1, 2)
	s.Resize(1024, 768)
	s.Resize(300, 200)
	assert.Equal(t, meshview.Viewport{Width: 300, Height: 200}, s.Viewport())
	require.Len(t, dev.viewports, 4)
	assert.Equal(t, meshview.Viewport{Width: 300, Height: 200}, dev.viewports[len(dev.viewports)-1])
}

func TestResizeBeforeSetup(t *testing.T) {
	s, dev, _, _ := newTestSurface(&sceneImporter{scene: goodScene()})
	s.Resize(640, 480)
	assert.Zero(t, dev.count("viewport"))
	require.NoError(t, s.Setup())
	require.Len(t, dev.viewports, 1)
	assert.Equal(t, meshview.Viewport{Width: 640, Height: 480}, dev.viewports[0])
}

func TestDestroy(t *testing.T) {
	s, dev, _, _ := newTestSurface(&sceneImporter{scene: goodScene()})
	require.NoError(t, s.Setup())
	s.Destroy()
	assert.False(t, s.Loaded())
	assert.Equal(t, 1, dev.count("release"))
	s.Render()
	assert.Zero(t, dev.count("draw"))
}

func TestSetupFromFile(t *testing.T) {
	dev := new(recorder)
	cfg := DefaultConfig()
	cfg.ModelPath = "../assets/models/plane-blender.dae"
	cfg.Logger = slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	s := New(dev, cfg)
	require.NoError(t, s.Setup())
	assert.Equal(t, 6, s.NumVertices())
	require.Len(t, dev.uploaded, 1)
	assert.Len(t, dev.uploaded[0], 18)
}
