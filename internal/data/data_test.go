package data

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseModel(t *testing.T) {
	raw := []byte(`
name: test
meshes:
  - vertices: [0, 0, 0, 1, 0, 0, 0, 0, 1]
    indices: [0, 2, 1]
  - vertices: []
boxes:
  - min: [-1, -1, -1]
    max: [1, 1, 1]
`)
	m, err := ParseModel(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if m.Name != "test" || len(m.Meshes) != 3 {
		t.Fatalf("model = %s with %d meshes", m.Name, len(m.Meshes))
	}
	if m.Meshes[0].VertexCount != 3 || m.Meshes[0].TriangleCount != 1 {
		t.Errorf("mesh 0 counts = %d/%d", m.Meshes[0].VertexCount, m.Meshes[0].TriangleCount)
	}
	if m.Meshes[1].VertexCount != 0 {
		t.Errorf("empty mesh vertex count = %d", m.Meshes[1].VertexCount)
	}
	if m.TriangleCount() != 13 {
		t.Errorf("triangles = %d, want 13", m.TriangleCount())
	}
	lo, hi, ok := m.Bounds()
	if !ok || lo != [3]float32{-1, -1, -1} || hi != [3]float32{1, 1, 1} {
		t.Errorf("bounds = %v %v %v", lo, hi, ok)
	}
}

func TestBoxIndicesInRange(t *testing.T) {
	b := Box([3]float32{0, 0, 0}, [3]float32{1, 2, 3})
	if len(b.Vertices) != b.VertexCount*3 || len(b.Indices) != b.TriangleCount*3 {
		t.Fatalf("box buffers do not match counts")
	}
	for _, i := range b.Indices {
		if int(i) >= b.VertexCount {
			t.Fatalf("index %d out of range", i)
		}
	}
}

func TestLoadScene(t *testing.T) {
	dir := t.TempDir()
	model := "name: slab\nboxes:\n  - min: [-5, -0.1, -5]\n    max: [5, 0, 5]\n"
	if err := os.WriteFile(filepath.Join(dir, "slab.yaml"), []byte(model), 0o644); err != nil {
		t.Fatal(err)
	}
	scene := `
name: test
entities:
  - name: Room
    model: slab.yaml
    renderable: true
    static_collider: true
  - name: Ball
    dynamic_sphere: true
    sphere: true
    lifetime: 5s
  - name: Player
    character: {height: 2, radius: 0.5}
    position: [1, 0, 1]
`
	path := filepath.Join(dir, "scene.yaml")
	if err := os.WriteFile(path, []byte(scene), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadScene(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Count() != 3 {
		t.Fatalf("count = %d", s.Count())
	}
	if m := s.Models["slab.yaml"]; m == nil || len(m.Meshes) != 1 {
		t.Errorf("slab model not loaded: %+v", m)
	}
	if s.Entities[1].Lifetime != 5*time.Second {
		t.Errorf("lifetime = %v", s.Entities[1].Lifetime)
	}
	if c := s.Entities[2].Character; c == nil || c.Height != 2 || c.Radius != 0.5 {
		t.Errorf("character = %+v", c)
	}
	if p := s.Entities[2].Position; p == nil || *p != [3]float32{1, 0, 1} {
		t.Errorf("position = %v", p)
	}
}

func TestLoadSceneMissingModel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	if err := os.WriteFile(path, []byte("entities:\n  - name: Room\n    model: nope.yaml\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadScene(path); err == nil {
		t.Fatal("expected error for missing model")
	}
}
