// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalidConfig is returned (wrapped) by Validate for any rejected value.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all simulation configuration parameters.
type Config struct {
	Field      FieldConfig      `yaml:"field"`
	Population PopulationConfig `yaml:"population"`
	Play       PlayConfig       `yaml:"play"`
	Neural     NeuralConfig     `yaml:"neural"`
	Mutation   MutationConfig   `yaml:"mutation"`
	Offense    SideConfig       `yaml:"offense"`
	Defense    SideConfig       `yaml:"defense"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// FieldConfig holds the playing field dimensions in screen units.
type FieldConfig struct {
	Left      float64 `yaml:"left"`       // X of the left sideline
	Width     float64 `yaml:"width"`      // Distance between the sidelines
	Height    float64 `yaml:"height"`     // Full field height, end zones included
	AgentSize float64 `yaml:"agent_size"` // Side of an agent's square bounding box
}

// PopulationConfig holds generation sizing.
type PopulationConfig struct {
	Size        int `yaml:"size"`        // Rosters per side (N); must be even
	TickBudget  int `yaml:"tick_budget"` // Ticks per generation before forced timeout
	Generations int `yaml:"generations"` // Generations to run (0 = unlimited)
}

// PlayConfig holds scrimmage rules and yard-line geometry.
type PlayConfig struct {
	HitBoxRatio    float64 `yaml:"hit_box_ratio"`   // Box scale used for contact tests
	PushMultiplier float64 `yaml:"push_multiplier"` // Scale of the force a stronger opponent applies
	ScorePoints    int     `yaml:"score_points"`    // Points for crossing the score line
	YardsTotal     float64 `yaml:"yards_total"`     // Yards covered by Field.Height
	YardOffset     float64 `yaml:"yard_offset"`     // Yards of end zone before yard 0
	ScoreYard      float64 `yaml:"score_yard"`      // Score line, measured without offset
	SafetyYard     float64 `yaml:"safety_yard"`     // Safety line, measured without offset
	ScrimmageYard  float64 `yaml:"scrimmage_yard"`  // Line of scrimmage, offset applied
}

// NeuralConfig holds network topology parameters.
type NeuralConfig struct {
	HiddenLayers []int `yaml:"hidden_layers"` // Sizes of hidden layers; empty = direct input->output
}

// MutationConfig holds mutation parameters.
type MutationConfig struct {
	Rate           float64 `yaml:"rate"`             // Per-weight mutation probability
	Magnitude      float64 `yaml:"magnitude"`        // Perturbations drawn from U[-magnitude, magnitude]
	FirstLayerOnly bool    `yaml:"first_layer_only"` // Mutate only the first weight matrix
}

// RoleConfig is one row of a side's role table.
type RoleConfig struct {
	Name        string  `yaml:"name"`
	Count       int     `yaml:"count"`
	Speed       float64 `yaml:"speed"`
	Strength    float64 `yaml:"strength"`
	BallCarrier bool    `yaml:"ball_carrier"`
}

// SideConfig describes one team: its formation and role table.
type SideConfig struct {
	Name      string       `yaml:"name"`
	StartYard float64      `yaml:"start_yard"` // Formation yard line, offset applied
	Heading   float64      `yaml:"heading"`    // Starting heading in degrees
	Roles     []RoleConfig `yaml:"roles"`
}

// Size returns the number of agents the role table produces.
func (s SideConfig) Size() int {
	n := 0
	for _, r := range s.Roles {
		n += r.Count
	}
	return n
}

// TelemetryConfig holds logging and output parameters.
type TelemetryConfig struct {
	LogEvery  int `yaml:"log_every"`  // Log generation stats every N generations
	WatchPlay int `yaml:"watch_play"` // Index of the play mirrored into the scene
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	OffenseInputs int   // 2*defense size + 2*reference points
	DefenseInputs int   // 2*offense size + 2*reference points
	OffenseLayers []int // Full layer sizes for offense networks
	DefenseLayers []int // Full layer sizes for defense networks
}

// ReferencePoints is the number of field reference points every agent senses
// (the two sideline corners at the score line).
const ReferencePoints = 2

// NumOutputs is the network output width: move and turn.
const NumOutputs = 2

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

// Default returns the embedded defaults. It panics if they fail to parse or validate,
// which only happens if defaults.yaml itself is broken.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
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
		// Only overwrites fields present in the file. Role lists are replaced wholesale.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Validate rejects configurations the simulation cannot run.
func (c *Config) Validate() error {
	if c.Field.Width <= 0 || c.Field.Height <= 0 || c.Field.Left < 0 {
		return fmt.Errorf("%w: field must have positive width and height", ErrInvalidConfig)
	}
	if c.Field.AgentSize <= 0 {
		return fmt.Errorf("%w: field.agent_size must be positive", ErrInvalidConfig)
	}
	if c.Population.Size < 2 || c.Population.Size%2 != 0 {
		return fmt.Errorf("%w: population.size must be even and >= 2, got %d", ErrInvalidConfig, c.Population.Size)
	}
	if c.Population.TickBudget <= 0 {
		return fmt.Errorf("%w: population.tick_budget must be positive", ErrInvalidConfig)
	}
	if c.Population.Generations < 0 {
		return fmt.Errorf("%w: population.generations must not be negative", ErrInvalidConfig)
	}
	if c.Play.HitBoxRatio <= 0 || c.Play.HitBoxRatio > 1 {
		return fmt.Errorf("%w: play.hit_box_ratio must be in (0,1]", ErrInvalidConfig)
	}
	if c.Play.ScorePoints < 0 {
		return fmt.Errorf("%w: play.score_points must not be negative", ErrInvalidConfig)
	}
	if c.Play.YardsTotal <= 0 {
		return fmt.Errorf("%w: play.yards_total must be positive", ErrInvalidConfig)
	}
	for i, h := range c.Neural.HiddenLayers {
		if h <= 0 {
			return fmt.Errorf("%w: neural.hidden_layers[%d] must be positive", ErrInvalidConfig, i)
		}
	}
	if c.Mutation.Rate < 0 || c.Mutation.Rate > 1 {
		return fmt.Errorf("%w: mutation.rate must be in [0,1]", ErrInvalidConfig)
	}
	if c.Mutation.Magnitude < 0 {
		return fmt.Errorf("%w: mutation.magnitude must not be negative", ErrInvalidConfig)
	}
	if err := c.Offense.validate(true); err != nil {
		return fmt.Errorf("offense: %w", err)
	}
	if err := c.Defense.validate(false); err != nil {
		return fmt.Errorf("defense: %w", err)
	}
	if c.Telemetry.WatchPlay < 0 || c.Telemetry.WatchPlay >= c.Population.Size {
		return fmt.Errorf("%w: telemetry.watch_play out of range", ErrInvalidConfig)
	}
	return nil
}

// validate checks one role table. The offense needs exactly one ball carrier.
func (s SideConfig) validate(offense bool) error {
	if len(s.Roles) == 0 || s.Size() == 0 {
		return fmt.Errorf("%w: side %q has no agents", ErrInvalidConfig, s.Name)
	}
	carriers := 0
	for _, r := range s.Roles {
		if r.Name == "" {
			return fmt.Errorf("%w: unnamed role", ErrInvalidConfig)
		}
		if r.Count <= 0 {
			return fmt.Errorf("%w: role %q count must be positive", ErrInvalidConfig, r.Name)
		}
		if r.Speed <= 0 || r.Strength <= 0 {
			return fmt.Errorf("%w: role %q needs positive speed and strength", ErrInvalidConfig, r.Name)
		}
		if r.BallCarrier {
			carriers += r.Count
		}
	}
	if offense && carriers != 1 {
		return fmt.Errorf("%w: offense needs exactly one ball carrier, got %d", ErrInvalidConfig, carriers)
	}
	if !offense && carriers != 0 {
		return fmt.Errorf("%w: defense cannot have a ball carrier", ErrInvalidConfig)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.OffenseInputs = 2*c.Defense.Size() + 2*ReferencePoints
	c.Derived.DefenseInputs = 2*c.Offense.Size() + 2*ReferencePoints
	c.Derived.OffenseLayers = layerSizes(c.Derived.OffenseInputs, c.Neural.HiddenLayers)
	c.Derived.DefenseLayers = layerSizes(c.Derived.DefenseInputs, c.Neural.HiddenLayers)
}

func layerSizes(inputs int, hidden []int) []int {
	sizes := make([]int, 0, len(hidden)+2)
	sizes = append(sizes, inputs)
	sizes = append(sizes, hidden...)
	return append(sizes, NumOutputs)
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
