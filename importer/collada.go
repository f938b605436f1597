package importer

import (
	"fmt"
	"io"

	"github.com/g3n/engine/core"
	"github.com/g3n/engine/geometry"
	"github.com/g3n/engine/gls"
	"github.com/g3n/engine/graphic"
	"github.com/g3n/engine/loader/collada"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/meshview"
)

func importCollada(path string, pp PostProcess) (*Scene, error) {
	fp, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	return decodeCollada(fp, pp)
}

// decodeCollada decodes a COLLADA document and builds the scene instanced by
// its <scene> element. The decoder triangulates polygons itself so pp's
// Triangulate step is always in effect for this format.
func decodeCollada(r io.Reader, pp PostProcess) (*Scene, error) {
	dec, err := collada.DecodeReader(r)
	if err != nil {
		return nil, fmt.Errorf("decoding COLLADA: %w", err)
	}
	top, err := dec.NewScene()
	if err != nil {
		// No <scene>, or a scene that can not be instanced.
		return nil, fmt.Errorf("%w: %v", ErrNoRootNode, err)
	}
	scene := &Scene{}
	scene.Root, err = colladaNode(scene, top)
	if err != nil {
		return nil, err
	}
	return scene, nil
}

// colladaNode copies the hierarchy under inode and appends the meshes found
// to scene in depth first order.
func colladaNode(scene *Scene, inode core.INode) (*Node, error) {
	node := inode.GetNode()
	n := &Node{Name: node.Name()}
	if gm, ok := inode.(*graphic.Mesh); ok {
		mesh, err := colladaMesh(gm.GetGeometry())
		if err != nil {
			return nil, fmt.Errorf("mesh %q: %w", n.Name, err)
		}
		mesh.Name = n.Name
		if mesh.NumVertices() > 0 {
			scene.Meshes = append(scene.Meshes, mesh)
		}
	}
	for _, child := range node.Children() {
		cn, err := colladaNode(scene, child)
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, cn)
	}
	return n, nil
}

// colladaMesh de-indexes a decoded geometry so that every triangle corner
// becomes one vertex in draw order.
func colladaMesh(geom *geometry.Geometry) (meshview.Mesh, error) {
	var mesh meshview.Mesh
	positions := vboData(geom, gls.VertexPosition)
	if len(positions)%3 != 0 {
		return mesh, fmt.Errorf("position buffer length %d not multiple of 3", len(positions))
	}
	nv := len(positions) / 3
	uvs := vboData(geom, gls.VertexTexcoord)
	hasUVs := len(uvs) == 2*nv && nv > 0

	indices := geom.Indices()
	if len(indices) == 0 {
		indices = make([]uint32, nv)
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	mesh.Positions = make([]ms3.Vec, 0, len(indices))
	if hasUVs {
		mesh.UVs = make([]ms2.Vec, 0, len(indices))
	}
	for _, idx := range indices {
		i := int(idx)
		if i >= nv {
			return mesh, fmt.Errorf("vertex index %d out of range [0,%d)", i, nv)
		}
		mesh.Positions = append(mesh.Positions, ms3.Vec{X: positions[3*i], Y: positions[3*i+1], Z: positions[3*i+2]})
		if hasUVs {
			mesh.UVs = append(mesh.UVs, ms2.Vec{X: uvs[2*i], Y: uvs[2*i+1]})
		}
	}
	return mesh, nil
}

// vboData returns a copy of the buffer holding attrib. The COLLADA decoder
// stores each attribute in its own tightly packed buffer.
func vboData(geom *geometry.Geometry, attrib gls.AttribType) []float32 {
	vbo := geom.VBO(attrib)
	if vbo == nil || vbo.Buffer() == nil {
		return nil
	}
	return append([]float32{}, (*vbo.Buffer())...)
}
