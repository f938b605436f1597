// Package importer reads 3D scene files into owned [Scene] values.
//
// Supported formats are COLLADA (.dae) and Wavefront OBJ (.obj). Parsing of the
// formats themselves is done by the g3n decoders; this package copies out
// the data the rest of the program consumes and then drops the decoder.
package importer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/soypat/geometry/ms2"
	"github.com/soypat/meshview"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrIncomplete        = errors.New("scene is incomplete")
	ErrNoRootNode        = errors.New("scene has no root node")
	// ErrNoMeshes is reported by [Scene.Validate] for scenes built outside of
	// [Import]. Import flags a scene without meshes with [FlagIncomplete] instead.
	ErrNoMeshes    = errors.New("scene has no meshes")
	ErrBadGeometry = errors.New("bad geometry")
)

// PostProcess is a set of steps applied to imported meshes.
type PostProcess uint32

const (
	// Triangulate splits polygons with more than three corners into triangles.
	Triangulate PostProcess = 1 << iota
	// FlipUVs flips texture coordinates along the V axis (v' = 1 - v).
	FlipUVs
)

func (pp PostProcess) has(step PostProcess) bool { return pp&step != 0 }

// Flags describes the state of an imported [Scene].
type Flags uint32

const (
	// FlagIncomplete is set when the file held no mesh data.
	FlagIncomplete Flags = 1 << iota
)

// Node is an element of the scene hierarchy.
type Node struct {
	Name     string
	Children []*Node
}

// Scene is the result of an import.
type Scene struct {
	Meshes []meshview.Mesh
	// Root is the top of the scene hierarchy. It is nil if the
	// file declares no scene.
	Root  *Node
	Flags Flags
}

// Validate returns a non-nil error if the scene can not be rendered.
func (s *Scene) Validate() error {
	switch {
	case s == nil:
		return ErrNoRootNode
	case s.Flags&FlagIncomplete != 0:
		return ErrIncomplete
	case s.Root == nil:
		return ErrNoRootNode
	case len(s.Meshes) == 0:
		return ErrNoMeshes
	}
	return nil
}

// Importer reads scene files.
type Importer interface {
	Import(path string, pp PostProcess) (*Scene, error)
}

// FileImporter imports scenes from the local file system.
type FileImporter struct{}

var _ Importer = FileImporter{}

// Import delegates to [Import].
func (FileImporter) Import(path string, pp PostProcess) (*Scene, error) {
	return Import(path, pp)
}

// Import reads the file at path, selecting the format by file extension,
// and applies the post processing steps in pp to every mesh.
// The returned scene is validated with [Scene.Validate].
func Import(path string, pp PostProcess) (*Scene, error) {
	var scene *Scene
	var err error
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".dae":
		scene, err = importCollada(path, pp)
	case ".obj":
		scene, err = importOBJ(path, pp)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("importing %s: %w", path, err)
	}
	for i := range scene.Meshes {
		mesh := &scene.Meshes[i]
		if pp.has(FlipUVs) {
			flipUVs(mesh.UVs)
		}
		if err := mesh.Validate(); err != nil {
			return nil, fmt.Errorf("importing %s: mesh %q: %w: %s", path, mesh.Name, ErrBadGeometry, err)
		}
	}
	if len(scene.Meshes) == 0 {
		scene.Flags |= FlagIncomplete
	}
	if err := scene.Validate(); err != nil {
		return scene, fmt.Errorf("importing %s: %w", path, err)
	}
	return scene, nil
}

func flipUVs(uvs []ms2.Vec) {
	for i := range uvs {
		uvs[i].Y = 1 - uvs[i].Y
	}
}

// openFile is like os.Open but reports a missing file without the
// *PathError noise so that the message fits in a dialog.
func openFile(path string) (*os.File, error) {
	fp, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("file %q: %w", path, os.ErrNotExist)
	}
	return fp, err
}

// appendPolygon appends the corners of one polygon to dst. With triangulation
// polygons with more than 3 corners are split as a fan around the first corner.
// Degenerate polygons with less than 3 corners are dropped.
func appendPolygon[T any](dst []T, corners []T, triangulate bool) []T {
	n := len(corners)
	switch {
	case n < 3:
		return dst
	case n == 3 || !triangulate:
		return append(dst, corners...)
	}
	for i := 1; i < n-1; i++ {
		dst = append(dst, corners[0], corners[i], corners[i+1])
	}
	return dst
}
