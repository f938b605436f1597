//go:build !tinygo && cgo

package surface

import (
	"errors"
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/soypat/glgl/v4.1-core/glgl"
	"github.com/soypat/meshview"
	"github.com/soypat/meshview/shaders"
)

// GLDevice is a [Device] backed by an OpenGL 4.1 core context.
type GLDevice struct {
	prog      glgl.Program
	hasProg   bool
	vao       uint32
	vbo       uint32
	modelLoc  int32
	posAttrib uint32
}

var _ Device = (*GLDevice)(nil)

func (d *GLDevice) Init() error {
	return gl.Init()
}

func (d *GLDevice) SetClearColor(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
}

func (d *GLDevice) EnableDepthTest() {
	gl.Enable(gl.DEPTH_TEST)
}

func (d *GLDevice) UploadPositions(data []float32) error {
	if len(data) == 0 {
		return errors.New("no vertex data")
	}
	// Core profile requires a bound vertex array to draw.
	gl.GenVertexArrays(1, &d.vao)
	if d.vao == 0 {
		return glErrOrMessage("vertex array got zero id")
	}
	gl.BindVertexArray(d.vao)
	gl.GenBuffers(1, &d.vbo)
	if d.vbo == 0 {
		return glErrOrMessage("vertex buffer got zero id")
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, d.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, 4*len(data), gl.Ptr(data), gl.STATIC_DRAW)
	return glgl.Err()
}

func (d *GLDevice) CompileProgram(src shaders.Source) error {
	prog, err := glgl.CompileProgram(glgl.ShaderSource{
		Vertex:   src.Vertex,
		Fragment: src.Fragment,
	})
	if err != nil {
		return err
	}
	modelLoc, err := prog.UniformLocation(shaders.CString(shaders.ModelMatrixUniform))
	if err != nil {
		prog.Delete()
		return fmt.Errorf("uniform %s: %w", shaders.ModelMatrixUniform, err)
	}
	posAttrib, err := prog.AttribLocation(shaders.CString(shaders.PositionAttrib))
	if err != nil {
		prog.Delete()
		return fmt.Errorf("attribute %s: %w", shaders.PositionAttrib, err)
	}
	d.prog, d.hasProg = prog, true
	d.modelLoc, d.posAttrib = modelLoc, posAttrib
	return nil
}

func (d *GLDevice) Viewport(v meshview.Viewport) {
	gl.Viewport(int32(v.X), int32(v.Y), int32(v.Width), int32(v.Height))
}

func (d *GLDevice) Clear() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (d *GLDevice) DrawTriangles(model mgl32.Mat4, count int) {
	d.prog.Bind()
	gl.UniformMatrix4fv(d.modelLoc, 1, false, &model[0])
	gl.BindVertexArray(d.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, d.vbo)
	gl.VertexAttribPointer(d.posAttrib, 3, gl.FLOAT, false, 0, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(d.posAttrib)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(count))
}

func (d *GLDevice) Release() {
	if d.hasProg {
		d.prog.Delete()
		d.hasProg = false
	}
	if d.vbo != 0 {
		gl.DeleteBuffers(1, &d.vbo)
		d.vbo = 0
	}
	if d.vao != 0 {
		gl.DeleteVertexArrays(1, &d.vao)
		d.vao = 0
	}
}

func glErrOrMessage(defaultMsg string) (err error) {
	err = glgl.Err()
	if err == nil {
		err = errors.New(defaultMsg)
	} else {
		err = fmt.Errorf("%s: %w", defaultMsg, err)
	}
	return err
}
