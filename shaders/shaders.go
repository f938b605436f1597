// Package shaders embeds the GLSL program used to draw meshes.
package shaders

import (
	_ "embed"
	"strings"
)

// Program interface names. The attribute takes 3 floats per vertex
// and the uniform a 4x4 column major matrix.
const (
	PositionAttrib     = "aPosition"
	ModelMatrixUniform = "uModelMatrix"
)

var (
	//go:embed mesh.vert
	meshVert string
	//go:embed mesh.frag
	meshFrag string
)

// Source holds the stage sources of one program.
type Source struct {
	Vertex   string
	Fragment string
}

// Mesh returns the mesh program sources. Sources are null terminated
// so they can be handed to GL as is.
func Mesh() Source {
	return Source{
		Vertex:   CString(meshVert),
		Fragment: CString(meshFrag),
	}
}

// CString returns s with a single trailing null byte.
func CString(s string) string {
	return strings.TrimRight(s, "\x00") + "\x00"
}
