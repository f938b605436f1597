package meshview

import (
	"errors"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
)

// ModelScale is the uniform scale applied to the mesh every frame.
const ModelScale = 0.5

// Mesh is an imported mesh. It owns all of its data: nothing in it
// references the decoder that produced it.
type Mesh struct {
	Name string
	// Positions are the mesh's vertex positions in draw order.
	Positions []ms3.Vec
	// UVs holds one texture coordinate per position or is empty.
	UVs []ms2.Vec
}

// NumVertices returns the amount of vertices in the mesh.
func (m *Mesh) NumVertices() int { return len(m.Positions) }

// Bounds returns the smallest box containing all positions of the mesh.
// It returns the zero Box for an empty mesh.
func (m *Mesh) Bounds() ms3.Box {
	if len(m.Positions) == 0 {
		return ms3.Box{}
	}
	bb := ms3.Box{Min: m.Positions[0], Max: m.Positions[0]}
	for _, v := range m.Positions[1:] {
		bb.Min = ms3.MinElem(bb.Min, v)
		bb.Max = ms3.MaxElem(bb.Max, v)
	}
	return bb
}

// Validate checks mesh positions are finite and that UVs, if present, match
// the position count.
func (m *Mesh) Validate() error {
	if len(m.UVs) != 0 && len(m.UVs) != len(m.Positions) {
		return errors.New("texture coordinate count does not match vertex count")
	}
	for _, v := range m.Positions {
		if !finite(v.X) || !finite(v.Y) || !finite(v.Z) {
			return errors.New("non-finite vertex position")
		}
	}
	return nil
}

// AppendPositions appends the X, Y, Z components of every vertex position of
// m to dst in vertex order and returns the extended buffer. Exactly 3*m.NumVertices()
// values are appended.
func AppendPositions(dst []float32, m *Mesh) []float32 {
	for _, v := range m.Positions {
		dst = append(dst, v.X, v.Y, v.Z)
	}
	return dst
}

// FlattenPositions returns the vertex positions of m as a flat sequence
// suitable for a GPU vertex buffer.
func FlattenPositions(m *Mesh) []float32 {
	return AppendPositions(make([]float32, 0, 3*m.NumVertices()), m)
}

// ModelMatrix returns the model transform: identity scaled uniformly by [ModelScale].
func ModelMatrix() mgl32.Mat4 {
	return mgl32.Ident4().Mul4(mgl32.Scale3D(ModelScale, ModelScale, ModelScale))
}

// Viewport is a GL viewport rectangle in pixels.
type Viewport struct {
	X, Y          int
	Width, Height int
}

// ViewportFor returns the viewport covering a drawable area of width x height pixels.
func ViewportFor(width, height int) Viewport {
	return Viewport{Width: width, Height: height}
}

func finite(f float32) bool {
	return !math32.IsNaN(f) && !math32.IsInf(f, 0)
}
