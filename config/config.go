// Package config loads and exposes the simulation parameters. An embedded
// defaults.yaml is unmarshaled first, an optional user file is then
// unmarshaled on top of it (so a partial file only overrides what it
// names), and a computeDerived pass fills in values that depend on other
// fields.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// InitShape selects the geometry bootstrap used to seed the population.
type InitShape string

const (
	ShapeSphere      InitShape = "sphere"
	ShapePlane       InitShape = "plane"
	ShapeEnvironment InitShape = "environment"
	ShapeMesh        InitShape = "mesh"
)

// FoodMode selects which per-cell growth policy drives splitting.
type FoodMode string

const (
	FoodRandom     FoodMode = "random"
	FoodArea       FoodMode = "area"
	FoodXCoord     FoodMode = "x_coord"
	FoodRadial     FoodMode = "radial"
	FoodCollisions FoodMode = "collisions"
	FoodCurvature  FoodMode = "curvature"
	FoodInherit    FoodMode = "inherit"
	FoodHybrid     FoodMode = "hybrid"
	FoodShift      FoodMode = "shift"
	FoodTentacle   FoodMode = "tentacle"
)

// SplitMode selects the ring partition axis.
type SplitMode string

const (
	SplitZero SplitMode = "zero"
	SplitLong SplitMode = "long"
)

// Accelerator selects the collision-phase spatial index.
type Accelerator string

const (
	AccelKDTree Accelerator = "kdtree"
	AccelGrid   Accelerator = "grid"
)

// GeometryConfig sizes the generated init shapes. Only the fields
// relevant to the active InitShape are consulted.
type GeometryConfig struct {
	Rings   int     `yaml:"rings"`    // Sphere
	PerRing int     `yaml:"per_ring"` // Sphere
	Radius  float64 `yaml:"radius"`   // Sphere

	Rows    int     `yaml:"rows"`    // Plane, Environment scaffold
	Cols    int     `yaml:"cols"`    // Plane, Environment scaffold
	Spacing float64 `yaml:"spacing"` // Plane, Environment

	SeedRows int `yaml:"seed_rows"` // Environment live patch
	SeedCols int `yaml:"seed_cols"` // Environment live patch

	MeshPath string `yaml:"mesh_path"` // Mesh
}

// ForcesConfig holds the per-cell force coefficients used by Cell.Calculate.
type ForcesConfig struct {
	SpringFactor float64 `yaml:"spring_factor"`
	PlanarFactor float64 `yaml:"planar_factor"`
	BulgeFactor  float64 `yaml:"bulge_factor"`
	SpringLength float64 `yaml:"spring_length"`
}

// CollisionConfig holds the collision-phase parameters. An AgeThreshold
// of zero disables the age cutoff entirely.
type CollisionConfig struct {
	Radius       float64     `yaml:"radius"`
	Factor       float64     `yaml:"factor"`
	AgeThreshold float64     `yaml:"age_threshold"`
	Accelerator  Accelerator `yaml:"accelerator"`
	MaxNeighbors int         `yaml:"max_neighbors"`
}

// GrowthConfig holds the split-trigger parameters.
type GrowthConfig struct {
	Threshold       float64   `yaml:"threshold"`
	MaxDegree       int       `yaml:"max_degree"`
	SplitMode       SplitMode `yaml:"split_mode"`
	CurvatureFactor float64   `yaml:"curvature_factor"`
}

// Config is the full set of recognized simulation parameters.
type Config struct {
	InitShape InitShape `yaml:"init_shape"`
	FoodMode  FoodMode  `yaml:"food_mode"`
	MaxPop    int       `yaml:"max_pop"`
	Dampening float64   `yaml:"dampening"`

	Geometry  GeometryConfig  `yaml:"geometry"`
	Forces    ForcesConfig    `yaml:"forces"`
	Collision CollisionConfig `yaml:"collision"`
	Growth    GrowthConfig    `yaml:"growth"`

	Derived DerivedConfig `yaml:"-"`
}

// DerivedConfig holds values computed from the loaded config after load.
type DerivedConfig struct {
	CollisionRadiusSq float64
	NumWorkers        int
}

var global *Config

// Init loads configuration from path (embedded defaults if path is empty)
// and installs it as the package-level config. Must be called before Cfg.
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the package-level configuration. Panics if Init was not
// called first.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load parses the embedded defaults, then overlays path (if non-empty),
// then computes derived values.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()
	return cfg, nil
}

func (c *Config) computeDerived() {
	c.Derived.CollisionRadiusSq = c.Collision.Radius * c.Collision.Radius
	n := numWorkers()
	c.Derived.NumWorkers = n
}

// WriteYAML writes the configuration to path, for the run-start snapshot
// the telemetry package keeps alongside its CSV output.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
