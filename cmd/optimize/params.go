package main

import (
	"github.com/pthm-cable/gridiron/config"
)

// ParamSpec is one tunable config value and where it lives.
type ParamSpec struct {
	Name    string  // column name in optimize_log.csv
	Path    string  // YAML path, for humans
	Min     float64 // search lower bound
	Max     float64 // search upper bound
	Default float64 // starting point, matches defaults.yaml

	get func(cfg *config.Config) float64
	set func(cfg *config.Config, v float64)
}

func (s ParamSpec) toUnit(v float64) float64   { return (v - s.Min) / (s.Max - s.Min) }
func (s ParamSpec) fromUnit(u float64) float64 { return s.Min + u*(s.Max-s.Min) }
func (s ParamSpec) clamp(v float64) float64    { return min(max(v, s.Min), s.Max) }

// ParamVector is the ordered set of tuned parameters. CMA-ES searches the
// unit cube; Normalize and Denormalize map between it and config values.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector returns the mutation and contact parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{Specs: []ParamSpec{
		{
			Name: "mutation_rate", Path: "mutation.rate", Min: 0.05, Max: 1.0, Default: 0.5,
			get: func(c *config.Config) float64 { return c.Mutation.Rate },
			set: func(c *config.Config, v float64) { c.Mutation.Rate = v },
		},
		{
			Name: "mutation_magnitude", Path: "mutation.magnitude", Min: 0.1, Max: 5.0, Default: 3.0,
			get: func(c *config.Config) float64 { return c.Mutation.Magnitude },
			set: func(c *config.Config, v float64) { c.Mutation.Magnitude = v },
		},
		{
			Name: "push_multiplier", Path: "play.push_multiplier", Min: 0.0, Max: 4.0, Default: 2.0,
			get: func(c *config.Config) float64 { return c.Play.PushMultiplier },
			set: func(c *config.Config, v float64) { c.Play.PushMultiplier = v },
		},
		{
			Name: "hit_box_ratio", Path: "play.hit_box_ratio", Min: 0.5, Max: 1.0, Default: 0.8,
			get: func(c *config.Config) float64 { return c.Play.HitBoxRatio },
			set: func(c *config.Config, v float64) { c.Play.HitBoxRatio = v },
		},
	}}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

func (pv *ParamVector) mapEach(v []float64, f func(ParamSpec, float64) float64) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, s := range pv.Specs {
		out[i] = f(s, v[i])
	}
	return out
}

// DefaultVector returns the starting values.
func (pv *ParamVector) DefaultVector() []float64 {
	return pv.mapEach(make([]float64, len(pv.Specs)), func(s ParamSpec, _ float64) float64 { return s.Default })
}

// Normalize maps config values into [0,1] per parameter.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	return pv.mapEach(raw, ParamSpec.toUnit)
}

// Denormalize maps unit-cube coordinates back to config values. The result may
// fall outside the bounds; see Clamp.
func (pv *ParamVector) Denormalize(unit []float64) []float64 {
	return pv.mapEach(unit, ParamSpec.fromUnit)
}

// Clamp bounds every value to its parameter's range.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	return pv.mapEach(v, ParamSpec.clamp)
}

// ApplyToConfig writes clamped values into cfg.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	for i, v := range pv.Clamp(values) {
		pv.Specs[i].set(cfg, v)
	}
}

// ExtractFromConfig reads the current values from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, s := range pv.Specs {
		out[i] = s.get(cfg)
	}
	return out
}
