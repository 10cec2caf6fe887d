// Package config provides configuration loading and access for the simulator.
package config

import (
	_ "embed"
	"fmt"
	"image/color"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulator configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	Track      TrackConfig      `yaml:"track"`
	Car        CarConfig        `yaml:"car"`
	Simulation SimulationConfig `yaml:"simulation"`
	Evolution  EvolutionConfig  `yaml:"evolution"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
// The map area is the fixed logical track resolution; the panel sits to its right.
type ScreenConfig struct {
	MapWidth   int `yaml:"map_width"`
	MapHeight  int `yaml:"map_height"`
	PanelWidth int `yaml:"panel_width"`
	TargetFPS  int `yaml:"target_fps"`
}

// TrackConfig holds track catalogue settings.
type TrackConfig struct {
	InfoFile      string `yaml:"info_file"`
	MapIndex      int    `yaml:"map_index"`
	BoundaryColor []int  `yaml:"boundary_color"` // RGBA
}

// CarConfig holds agent kinematics, sensing and reward constants.
type CarConfig struct {
	InitialSpeed   float64   `yaml:"initial_speed"`
	MinSpeed       float64   `yaml:"min_speed"`
	SpeedStep      float64   `yaml:"speed_step"`
	SteerStep      float64   `yaml:"steer_step"`
	SensorOffsets  []float64 `yaml:"sensor_offsets"` // degrees relative to heading
	MaxRadar       int       `yaml:"max_radar"`
	SensorScale    float64   `yaml:"sensor_scale"`
	AvoidRadius    float64   `yaml:"avoid_radius"`
	AvoidStep      float64   `yaml:"avoid_step"`
	AvoidMaxWeight int       `yaml:"avoid_max_weight"`
	DeathPenalty   float64   `yaml:"death_penalty"`
	CrashBucket    float64   `yaml:"crash_bucket"` // 0 = exact crash keys
}

// SimulationConfig holds generation loop parameters.
type SimulationConfig struct {
	MaxTicks  int `yaml:"max_ticks"`
	PollLimit int `yaml:"poll_limit"` // max front-end events drained per tick
}

// EvolutionConfig holds optimizer settings.
type EvolutionConfig struct {
	NEATConfig  string `yaml:"neat_config"` // neat-python style INI file
	Generations int    `yaml:"generations"` // 0 = run until stopped
	Seed        int64  `yaml:"seed"`        // 0 = time-based
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	OutputDir string `yaml:"output_dir"`
	LogEvery  int    `yaml:"log_every"` // generations between slog stats lines
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	TotalWidth    int        // MapWidth + PanelWidth
	BoundaryColor color.RGBA // Track.BoundaryColor as a color
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
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

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
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
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// validate rejects values the simulator cannot run with.
func (c *Config) validate() error {
	if c.Screen.MapWidth <= 0 || c.Screen.MapHeight <= 0 {
		return fmt.Errorf("screen: map size must be positive, got %dx%d", c.Screen.MapWidth, c.Screen.MapHeight)
	}
	if len(c.Track.BoundaryColor) != 4 {
		return fmt.Errorf("track: boundary_color needs 4 components, got %d", len(c.Track.BoundaryColor))
	}
	for _, v := range c.Track.BoundaryColor {
		if v < 0 || v > 255 {
			return fmt.Errorf("track: boundary_color component %d out of range", v)
		}
	}
	if len(c.Car.SensorOffsets) == 0 {
		return fmt.Errorf("car: sensor_offsets must not be empty")
	}
	if c.Car.SensorScale <= 0 {
		return fmt.Errorf("car: sensor_scale must be positive")
	}
	if c.Simulation.MaxTicks <= 0 {
		return fmt.Errorf("simulation: max_ticks must be positive")
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.TotalWidth = c.Screen.MapWidth + c.Screen.PanelWidth
	bc := c.Track.BoundaryColor
	c.Derived.BoundaryColor = color.RGBA{R: uint8(bc[0]), G: uint8(bc[1]), B: uint8(bc[2]), A: uint8(bc[3])}
	if c.Simulation.PollLimit <= 0 {
		c.Simulation.PollLimit = 1
	}
	if c.Telemetry.LogEvery <= 0 {
		c.Telemetry.LogEvery = 1
	}
}

// WriteYAML writes the configuration to a YAML file.
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
