package config

import (
	"errors"
	"fmt"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gopkg.in/yaml.v3"

	"collide3d/internal/physics"
)

const (
	DefaultFrames  = 300
	DefaultDt      = 1.0 / 60.0
	DefaultBounds  = 20.0
	DefaultMinSize = 0.25
	DefaultMaxSize = 1.0
	DefaultSpeed   = 4.0
)

var (
	ErrUnknownShape  = errors.New("config: unknown shape")
	ErrUnknownPreset = errors.New("config: unknown preset")
	ErrInvalid       = errors.New("config: invalid value")
)

// Vec3 is written as a flow sequence: [x, y, z]
type Vec3 [3]float32

func (v Vec3) Vector() rl.Vector3 {
	return rl.Vector3{X: v[0], Y: v[1], Z: v[2]}
}

func V(x, y, z float32) Vec3 {
	return Vec3{x, y, z}
}

func (v Vec3) isZero() bool {
	return v == Vec3{}
}

type Config struct {
	Name    string       `yaml:"name,omitempty"`
	Workers int          `yaml:"workers"`
	Cutoff  float32      `yaml:"cutoff"`
	Frames  int          `yaml:"frames"`
	Dt      float32      `yaml:"dt"`
	Bounds  float32      `yaml:"bounds"`
	Seed    int64        `yaml:"seed"`
	Random  RandomConfig `yaml:"random"`
	Bodies  []BodyConfig `yaml:"bodies,omitempty"`
	Rays    []RayConfig  `yaml:"rays,omitempty"`
}

// RandomConfig scatters Count extra bodies inside the bounds.
type RandomConfig struct {
	Count    int     `yaml:"count"`
	Shape    string  `yaml:"shape"` // sphere, box or mixed
	MinSize  float32 `yaml:"min_size"`
	MaxSize  float32 `yaml:"max_size"`
	MaxSpeed float32 `yaml:"max_speed"`
}

type BodyConfig struct {
	Name      string  `yaml:"name"`
	Shape     string  `yaml:"shape"`
	Position  Vec3    `yaml:"position,flow"`
	Radius    float32 `yaml:"radius,omitempty"`
	HalfSize  Vec3    `yaml:"half_size,flow"`
	Velocity  Vec3    `yaml:"velocity,flow"`
	Attribute uint32  `yaml:"attribute,omitempty"`
	Ignore    uint32  `yaml:"ignore,omitempty"`
	Disabled  bool    `yaml:"disabled,omitempty"`
	// Consume removes the body the first time anything triggers it.
	Consume bool `yaml:"consume,omitempty"`
}

// RayConfig casts from Origin along Direction for Length, or straight at Target when set.
type RayConfig struct {
	Name      string  `yaml:"name"`
	Origin    Vec3    `yaml:"origin,flow"`
	Direction Vec3    `yaml:"direction,flow"`
	Target    *Vec3   `yaml:"target,omitempty,flow"`
	Length    float32 `yaml:"length,omitempty"`
	Attribute uint32  `yaml:"attribute,omitempty"`
	Ignore    uint32  `yaml:"ignore,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Frames: DefaultFrames,
		Dt:     DefaultDt,
		Bounds: DefaultBounds,
		Random: RandomConfig{
			Shape:    "mixed",
			MinSize:  DefaultMinSize,
			MaxSize:  DefaultMaxSize,
			MaxSpeed: DefaultSpeed,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks every field the scene builder relies on.
func (c *Config) Validate() error {
	switch {
	case c.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative", ErrInvalid)
	case c.Cutoff < 0:
		return fmt.Errorf("%w: cutoff must not be negative", ErrInvalid)
	case c.Frames <= 0:
		return fmt.Errorf("%w: frames must be positive", ErrInvalid)
	case c.Dt <= 0:
		return fmt.Errorf("%w: dt must be positive", ErrInvalid)
	case c.Bounds < 0:
		return fmt.Errorf("%w: bounds must not be negative", ErrInvalid)
	}

	if err := c.Random.validate(); err != nil {
		return err
	}

	names := make(map[string]bool, len(c.Bodies))
	for i := range c.Bodies {
		b := &c.Bodies[i]
		if b.Name != "" {
			if names[b.Name] {
				return fmt.Errorf("%w: duplicate body name %q", ErrInvalid, b.Name)
			}
			names[b.Name] = true
		}
		if err := b.validate(); err != nil {
			return fmt.Errorf("body %d (%s): %w", i, b.Name, err)
		}
	}
	for i := range c.Rays {
		if err := c.Rays[i].validate(); err != nil {
			return fmt.Errorf("ray %d (%s): %w", i, c.Rays[i].Name, err)
		}
	}
	return nil
}

func (r RandomConfig) validate() error {
	if r.Count < 0 {
		return fmt.Errorf("%w: random count must not be negative", ErrInvalid)
	}
	if r.Count == 0 {
		return nil
	}
	if r.Shape != "mixed" {
		if kind, ok := physics.ParseShapeKind(r.Shape); !ok || kind == physics.ShapeNone {
			return fmt.Errorf("%w: %q", ErrUnknownShape, r.Shape)
		}
	}
	if r.MinSize <= 0 || r.MaxSize < r.MinSize {
		return fmt.Errorf("%w: random sizes need 0 < min_size <= max_size", ErrInvalid)
	}
	if r.MaxSpeed < 0 {
		return fmt.Errorf("%w: max_speed must not be negative", ErrInvalid)
	}
	return nil
}

// Kind parses the shape name. Callers run Validate first.
func (b BodyConfig) Kind() physics.ShapeKind {
	kind, _ := physics.ParseShapeKind(b.Shape)
	return kind
}

// Extent returns the size matching the shape.
func (b BodyConfig) Extent() physics.Extent {
	if b.Kind() == physics.ShapeBox {
		return physics.HalfExtent(b.HalfSize.Vector())
	}
	return physics.Radius(b.Radius)
}

func (b BodyConfig) validate() error {
	kind, ok := physics.ParseShapeKind(b.Shape)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownShape, b.Shape)
	}
	switch kind {
	case physics.ShapeSphere:
		if b.Radius <= 0 {
			return fmt.Errorf("%w: sphere radius must be positive", ErrInvalid)
		}
	case physics.ShapeBox:
		h := b.HalfSize
		if h[0] <= 0 || h[1] <= 0 || h[2] <= 0 {
			return fmt.Errorf("%w: box half_size must be positive on every axis", ErrInvalid)
		}
	}
	return nil
}

func (r RayConfig) validate() error {
	if r.Target != nil {
		if *r.Target == r.Origin {
			return fmt.Errorf("%w: ray target equals its origin", ErrInvalid)
		}
		return nil
	}
	if r.Direction.isZero() {
		return fmt.Errorf("%w: ray direction must not be zero", ErrInvalid)
	}
	if r.Length <= 0 {
		return fmt.Errorf("%w: ray length must be positive", ErrInvalid)
	}
	return nil
}

// Clone returns a deep copy so presets can be modified freely.
func (c *Config) Clone() *Config {
	out := *c
	out.Bodies = append([]BodyConfig(nil), c.Bodies...)
	out.Rays = make([]RayConfig, len(c.Rays))
	for i, r := range c.Rays {
		if r.Target != nil {
			t := *r.Target
			r.Target = &t
		}
		out.Rays[i] = r
	}
	if len(c.Rays) == 0 {
		out.Rays = nil
	}
	return &out
}
