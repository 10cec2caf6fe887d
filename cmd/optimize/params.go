package main

import (
	"github.com/pthm-cable/carsim/neural"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // neat-python key
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable NEAT rates.
func NewParamVector() *ParamVector {
	def := neural.DefaultConfig()
	return &ParamVector{
		Specs: []ParamSpec{
			// Structural mutation
			{Name: "conn_add_prob", Min: 0.05, Max: 0.9, Default: def.NEAT.MutateAddLinkProb},
			{Name: "node_add_prob", Min: 0.01, Max: 0.5, Default: def.NEAT.MutateAddNodeProb},
			// Weight mutation
			{Name: "weight_mutate_rate", Min: 0.1, Max: 1.0, Default: def.NEAT.MutateLinkWeightsProb},
			{Name: "weight_mutate_power", Min: 0.05, Max: 2.0, Default: def.NEAT.WeightMutPower},
			{Name: "weight_replace_rate", Min: 0.0, Max: 0.5, Default: def.WeightReplaceRate},
			// Speciation and selection
			{Name: "compatibility_threshold", Min: 0.5, Max: 5.0, Default: def.NEAT.CompatThreshold},
			{Name: "survival_threshold", Min: 0.05, Max: 0.6, Default: def.NEAT.SurvivalThresh},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes parameter values into a NEAT config.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *neural.Config, values []float64) {
	c := pv.Clamp(values)
	opts := cfg.NEAT

	opts.MutateAddLinkProb = c[0]
	opts.MutateAddNodeProb = c[1]
	opts.MutateLinkWeightsProb = c[2]
	opts.WeightMutPower = c[3]
	cfg.WeightReplaceRate = c[4]
	opts.CompatThreshold = c[5]
	opts.SurvivalThresh = c[6]
}

// ExtractFromConfig reads the current parameter values from a NEAT config.
func (pv *ParamVector) ExtractFromConfig(cfg *neural.Config) []float64 {
	opts := cfg.NEAT
	return []float64{
		opts.MutateAddLinkProb,
		opts.MutateAddNodeProb,
		opts.MutateLinkWeightsProb,
		opts.WeightMutPower,
		cfg.WeightReplaceRate,
		opts.CompatThreshold,
		opts.SurvivalThresh,
	}
}
