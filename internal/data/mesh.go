package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Mesh is one sub-mesh of a model: packed xyz floats and 16-bit triangle
// indices. Counts are declared separately from the buffers, the way model
// loaders hand them out.
type Mesh struct {
	Vertices      []float32
	VertexCount   int
	Indices       []uint16
	TriangleCount int
}

// Model is a named set of meshes.
type Model struct {
	Name   string
	Meshes []Mesh
}

// BoxEntry describes an axis-aligned box turned into a closed mesh.
type BoxEntry struct {
	Min [3]float32 `yaml:"min"`
	Max [3]float32 `yaml:"max"`
}

// MeshEntry is a raw mesh as written in a model file.
type MeshEntry struct {
	Vertices []float32 `yaml:"vertices"`
	Indices  []uint16  `yaml:"indices"`
}

type modelFile struct {
	Name   string      `yaml:"name"`
	Meshes []MeshEntry `yaml:"meshes"`
	Boxes  []BoxEntry  `yaml:"boxes"`
}

// LoadModel loads a model description (explicit meshes plus boxes).
func LoadModel(path string) (*Model, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model %s: %w", path, err)
	}
	return ParseModel(raw)
}

func ParseModel(raw []byte) (*Model, error) {
	var f modelFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse model: %w", err)
	}
	m := &Model{Name: f.Name, Meshes: make([]Mesh, 0, len(f.Meshes)+len(f.Boxes))}
	for _, e := range f.Meshes {
		m.Meshes = append(m.Meshes, Mesh{
			Vertices:      e.Vertices,
			VertexCount:   len(e.Vertices) / 3,
			Indices:       e.Indices,
			TriangleCount: len(e.Indices) / 3,
		})
	}
	for _, b := range f.Boxes {
		m.Meshes = append(m.Meshes, Box(b.Min, b.Max))
	}
	return m, nil
}

// Box builds a 12-triangle box with outward, counter-clockwise faces.
func Box(lo, hi [3]float32) Mesh {
	x0, y0, z0 := lo[0], lo[1], lo[2]
	x1, y1, z1 := hi[0], hi[1], hi[2]
	verts := []float32{
		x0, y0, z0, // 0
		x1, y0, z0, // 1
		x1, y1, z0, // 2
		x0, y1, z0, // 3
		x0, y0, z1, // 4
		x1, y0, z1, // 5
		x1, y1, z1, // 6
		x0, y1, z1, // 7
	}
	idx := []uint16{
		0, 2, 1, 0, 3, 2, // -z
		4, 5, 6, 4, 6, 7, // +z
		0, 4, 7, 0, 7, 3, // -x
		1, 2, 6, 1, 6, 5, // +x
		0, 1, 5, 0, 5, 4, // -y
		3, 7, 6, 3, 6, 2, // +y
	}
	return Mesh{Vertices: verts, VertexCount: 8, Indices: idx, TriangleCount: 12}
}

// Bounds returns the model's axis-aligned extent over every mesh.
func (m *Model) Bounds() (lo, hi [3]float32, ok bool) {
	for _, mesh := range m.Meshes {
		n := mesh.VertexCount * 3
		if n > len(mesh.Vertices) {
			n = len(mesh.Vertices) - len(mesh.Vertices)%3
		}
		for i := 0; i < n; i += 3 {
			for k := 0; k < 3; k++ {
				v := mesh.Vertices[i+k]
				if !ok || v < lo[k] {
					lo[k] = v
				}
				if !ok || v > hi[k] {
					hi[k] = v
				}
			}
			ok = true
		}
	}
	return lo, hi, ok
}

// TriangleCount sums the declared triangle counts of all meshes.
func (m *Model) TriangleCount() int {
	n := 0
	for _, mesh := range m.Meshes {
		n += mesh.TriangleCount
	}
	return n
}
