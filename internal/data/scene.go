package data

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// CameraEntry configures a perspective camera.
type CameraEntry struct {
	Position [3]float32 `yaml:"position"`
	Target   [3]float32 `yaml:"target"`
	Up       [3]float32 `yaml:"up"`
	FovY     float32    `yaml:"fovy"`
	// Follow makes the camera track its entity's matrix every frame.
	Follow bool `yaml:"follow"`
	Debug  bool `yaml:"debug"` // free-fly keys in PreRender
}

type CharacterEntry struct {
	Height float32 `yaml:"height"`
	Radius float32 `yaml:"radius"`
}

type GridEntry struct {
	Slices  int     `yaml:"slices"`
	Spacing float32 `yaml:"spacing"`
}

type TextEntry struct {
	Value string `yaml:"value"`
	X     int    `yaml:"x"`
	Y     int    `yaml:"y"`
	Size  int    `yaml:"size"`
	Color string `yaml:"color"`
}

// EntityEntry is one entity of a scene file. Absent sections mean the
// entity does not carry the matching components.
type EntityEntry struct {
	Name           string          `yaml:"name"`
	Model          string          `yaml:"model"`
	Position       *[3]float32     `yaml:"position"`
	Rotation       *[4]float32     `yaml:"rotation"` // x, y, z, w
	Scale          *[3]float32     `yaml:"scale"`
	Color          string          `yaml:"color"`
	Renderable     bool            `yaml:"renderable"`
	StaticCollider bool            `yaml:"static_collider"`
	DynamicSphere  bool            `yaml:"dynamic_sphere"`
	Sphere         bool            `yaml:"sphere"`
	Capsule        bool            `yaml:"capsule"`
	Player         bool            `yaml:"player"`
	Gravity        *[3]float32     `yaml:"gravity"`
	Character      *CharacterEntry `yaml:"character"`
	Camera         *CameraEntry    `yaml:"camera"`
	Grid           *GridEntry      `yaml:"grid"`
	Text           *TextEntry      `yaml:"text"`
	Lifetime       time.Duration   `yaml:"lifetime"`
}

type sceneFile struct {
	Name     string        `yaml:"name"`
	Entities []EntityEntry `yaml:"entities"`
}

// Scene is a parsed scene with its referenced models loaded.
type Scene struct {
	Name     string
	Entities []EntityEntry
	Models   map[string]*Model
}

// LoadScene reads a scene file and every model it references. Model paths
// are relative to the scene file.
func LoadScene(path string) (*Scene, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene %s: %w", path, err)
	}
	var f sceneFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse scene %s: %w", path, err)
	}
	s := &Scene{
		Name:     f.Name,
		Entities: f.Entities,
		Models:   make(map[string]*Model),
	}
	dir := filepath.Dir(path)
	for i, e := range f.Entities {
		if e.Name == "" {
			return nil, fmt.Errorf("scene %s: entity %d has no name", path, i)
		}
		if e.Model == "" {
			continue
		}
		if _, ok := s.Models[e.Model]; ok {
			continue
		}
		m, err := LoadModel(filepath.Join(dir, e.Model))
		if err != nil {
			return nil, fmt.Errorf("scene %s entity %s: %w", path, e.Name, err)
		}
		s.Models[e.Model] = m
	}
	return s, nil
}

// Count returns the number of entities in the scene.
func (s *Scene) Count() int {
	return len(s.Entities)
}
