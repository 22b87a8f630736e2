package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Window   WindowConfig   `toml:"window"`
	Physics  PhysicsConfig  `toml:"physics"`
	Gameplay GameplayConfig `toml:"gameplay"`
	Scene    SceneConfig    `toml:"scene"`
	Input    InputConfig    `toml:"input"`
	Audio    AudioConfig    `toml:"audio"`
	Logging  LoggingConfig  `toml:"logging"`
}

type WindowConfig struct {
	Title     string `toml:"title"`
	Width     int    `toml:"width"`  // terminal cells; 0 = use the whole screen
	Height    int    `toml:"height"` // terminal cells; 0 = use the whole screen
	TargetFPS int    `toml:"target_fps"`
}

// TickRate is the frame interval derived from TargetFPS.
func (w WindowConfig) TickRate() time.Duration {
	if w.TargetFPS <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(w.TargetFPS)
}

type PhysicsConfig struct {
	TempAllocatorBytes    int        `toml:"temp_allocator_bytes"`
	MaxBodies             int        `toml:"max_bodies"`
	NumBodyMutexes        int        `toml:"num_body_mutexes"`
	MaxBodyPairs          int        `toml:"max_body_pairs"`
	MaxContactConstraints int        `toml:"max_contact_constraints"`
	CollisionSteps        int        `toml:"collision_steps"`
	WorkerThreads         int        `toml:"worker_threads"` // 0 = hardware threads - 1
	Gravity               [3]float32 `toml:"gravity"`
}

type GameplayConfig struct {
	MovementSpeed          float32    `toml:"movement_speed"`
	SphereRadius           float32    `toml:"sphere_radius"`
	SphereSpawnHeight      float32    `toml:"sphere_spawn_height"`
	SphereInitialVelocityY float32    `toml:"sphere_initial_velocity_y"`
	SphereRestitution      float32    `toml:"sphere_restitution"`
	SphereFriction         float32    `toml:"sphere_friction"`
	CharacterMaxSlopeDeg   float32    `toml:"character_max_slope_deg"`
	CharacterFriction      float32    `toml:"character_friction"`
	GravityForce           [3]float32 `toml:"gravity_force"`
	ScriptDir              string     `toml:"script_dir"`
	MaxBalls               int        `toml:"max_balls"`
}

type SceneConfig struct {
	Path string `toml:"path"`
}

type InputConfig struct {
	// Terminals report presses only; a key counts as held for this long.
	HoldWindow time.Duration `toml:"hold_window"`
}

type AudioConfig struct {
	Enabled    bool `toml:"enabled"`
	SampleRate int  `toml:"sample_rate"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
	File   string `toml:"file"`   // empty = stderr
}

// Load reads path on top of the defaults. A missing file yields the
// defaults and ErrNotFound so callers can decide whether that is fatal.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("read config %s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

var ErrNotFound = errors.New("config file not found")

// Validate rejects values the runtime cannot work with.
func (c *Config) Validate() error {
	p := c.Physics
	switch {
	case p.TempAllocatorBytes <= 0:
		return errors.New("physics.temp_allocator_bytes must be positive")
	case p.MaxBodies <= 0:
		return errors.New("physics.max_bodies must be positive")
	case p.MaxBodyPairs <= 0:
		return errors.New("physics.max_body_pairs must be positive")
	case p.MaxContactConstraints <= 0:
		return errors.New("physics.max_contact_constraints must be positive")
	case p.CollisionSteps <= 0:
		return errors.New("physics.collision_steps must be positive")
	case p.WorkerThreads < 0:
		return errors.New("physics.worker_threads must not be negative")
	}
	if c.Window.TargetFPS <= 0 {
		return errors.New("window.target_fps must be positive")
	}
	return nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:     "Res",
			TargetFPS: 60,
		},
		Physics: PhysicsConfig{
			TempAllocatorBytes:    10 * 1024 * 1024,
			MaxBodies:             65536,
			NumBodyMutexes:        0,
			MaxBodyPairs:          65536,
			MaxContactConstraints: 10240,
			CollisionSteps:        1,
			Gravity:               [3]float32{0, -9.81, 0},
		},
		Gameplay: GameplayConfig{
			MovementSpeed:          5,
			SphereRadius:           0.5,
			SphereSpawnHeight:      5,
			SphereInitialVelocityY: -1,
			SphereRestitution:      1,
			SphereFriction:         0,
			CharacterMaxSlopeDeg:   45,
			CharacterFriction:      0.5,
			GravityForce:           [3]float32{0, -9.8, 0},
			ScriptDir:              "scripts",
			MaxBalls:               16,
		},
		Scene: SceneConfig{
			Path: "data/yaml/scene.yaml",
		},
		Input: InputConfig{
			HoldWindow: 150 * time.Millisecond,
		},
		Audio: AudioConfig{
			Enabled:    true,
			SampleRate: 44100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			File:   "res.log",
		},
	}
}
