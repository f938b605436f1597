package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/g3n/engine/loader/obj"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/meshview"
)

func importOBJ(path string, pp PostProcess) (*Scene, error) {
	fp, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	return decodeOBJ(fp, pp)
}

// decodeOBJ decodes a Wavefront OBJ stream. Material libraries are not read.
// Each object becomes a mesh and the file itself the root node.
func decodeOBJ(r io.Reader, pp PostProcess) (*Scene, error) {
	// The decoder reads the material stream unconditionally; an empty one
	// leaves every face with the default material.
	dec, err := obj.DecodeReader(r, strings.NewReader(""))
	if err != nil {
		return nil, fmt.Errorf("decoding OBJ: %w", err)
	}
	scene := &Scene{Root: &Node{Name: "obj"}}
	nv := len(dec.Vertices) / 3
	nuv := len(dec.Uvs) / 2
	triangulate := pp.has(Triangulate)
	for _, object := range dec.Objects {
		scene.Root.Children = append(scene.Root.Children, &Node{Name: object.Name})
		mesh := meshview.Mesh{Name: object.Name}
		hasUVs := true
		var polyPos []ms3.Vec
		var polyUV []ms2.Vec
		for fi := range object.Faces {
			face := &object.Faces[fi]
			polyPos, polyUV = polyPos[:0], polyUV[:0]
			hasUVs = hasUVs && len(face.Uvs) == len(face.Vertices)
			for c, vi := range face.Vertices {
				if vi < 0 || vi >= nv {
					return nil, fmt.Errorf("object %q: vertex index %d out of range [0,%d)", object.Name, vi, nv)
				}
				polyPos = append(polyPos, ms3.Vec{
					X: dec.Vertices[3*vi],
					Y: dec.Vertices[3*vi+1],
					Z: dec.Vertices[3*vi+2],
				})
				if hasUVs {
					// Faces written without texture coordinates get an invalid index.
					ti := face.Uvs[c]
					if ti < 0 || ti >= nuv {
						hasUVs = false
						continue
					}
					polyUV = append(polyUV, ms2.Vec{X: dec.Uvs[2*ti], Y: dec.Uvs[2*ti+1]})
				}
			}
			mesh.Positions = appendPolygon(mesh.Positions, polyPos, triangulate)
			if hasUVs {
				mesh.UVs = appendPolygon(mesh.UVs, polyUV, triangulate)
			}
		}
		if !hasUVs {
			mesh.UVs = nil
		}
		if len(mesh.Positions) > 0 {
			scene.Meshes = append(scene.Meshes, mesh)
		}
	}
	return scene, nil
}
