package neural

import (
	"fmt"
	"slices"

	"github.com/yaricom/goNEAT/v4/neat"
	neatmath "github.com/yaricom/goNEAT/v4/neat/math"
)

// BrainInputs is the number of sensor inputs a car controller receives.
const BrainInputs = 5

// BrainOutputs is the number of action scores a car controller produces.
const BrainOutputs = 4

// Config holds all optimizer configuration. NEAT carries the mutation,
// speciation and population rates; the remaining fields cover what
// neat.Options has no slot for.
type Config struct {
	NEAT *neat.Options

	Inputs                int
	Outputs               int
	InitialConnectionProb float64 // 1 = fully connected start genomes

	OutputActivation neatmath.NodeActivationType
	HiddenActivators []neatmath.NodeActivationType

	FitnessCriterion     string // max, min or mean over the population
	FitnessThreshold     float64
	SpeciesFitnessFunc   string // max, min or mean over a species, for stagnation
	NoFitnessTermination bool
	ResetOnExtinction    bool

	Elitism        int // best genomes per species copied unchanged
	SpeciesElitism int // species protected from stagnation
	MinSpeciesSize int

	WeightReplaceRate float64 // chance a mutated weight is redrawn instead of perturbed
	WeightMaxValue    float64
}

// DefaultConfig returns a configuration with sensible defaults for the car task.
func DefaultConfig() *Config {
	return &Config{
		NEAT:                  DefaultNEATOptions(),
		Inputs:                BrainInputs,
		Outputs:               BrainOutputs,
		InitialConnectionProb: 1.0,
		OutputActivation:      neatmath.TanhActivation,
		HiddenActivators:      []neatmath.NodeActivationType{neatmath.TanhActivation},
		FitnessCriterion:      "max",
		FitnessThreshold:      1e8,
		SpeciesFitnessFunc:    "max",
		Elitism:               3,
		SpeciesElitism:        2,
		MinSpeciesSize:        2,
		WeightReplaceRate:     0.1,
		WeightMaxValue:        30,
	}
}

// DefaultNEATOptions returns NEAT options tuned for evolving car controllers.
func DefaultNEATOptions() *neat.Options {
	return &neat.Options{
		// Weight mutation
		WeightMutPower: 0.5,

		// Structural mutation rates
		MutateAddNodeProb:      0.2,
		MutateAddLinkProb:      0.5,
		MutateToggleEnableProb: 0.01,

		// Weight mutation probability
		MutateLinkWeightsProb: 0.8,
		MutateOnlyProb:        0.25,

		// Mating probabilities
		MateOnlyProb: 0.2,

		// Speciation
		CompatThreshold: 2.0,
		DisjointCoeff:   1.0,
		ExcessCoeff:     1.0,
		MutdiffCoeff:    0.5,

		// Species management
		DropOffAge:     20,
		SurvivalThresh: 0.2,

		PopSize: 30,
	}
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := *c
	opts := *c.NEAT
	out.NEAT = &opts
	out.HiddenActivators = slices.Clone(c.HiddenActivators)
	return &out
}

// validate rejects settings the evolver cannot run with.
func (c *Config) validate() error {
	if c.NEAT == nil {
		return fmt.Errorf("neural: missing NEAT options")
	}
	if c.NEAT.PopSize < 1 {
		return fmt.Errorf("neural: pop_size must be positive, got %d", c.NEAT.PopSize)
	}
	if c.Inputs < 1 || c.Outputs < 1 {
		return fmt.Errorf("neural: need at least one input and one output, got %d/%d", c.Inputs, c.Outputs)
	}
	if len(c.HiddenActivators) == 0 {
		return fmt.Errorf("neural: no hidden activation functions")
	}
	if _, ok := aggregates[c.FitnessCriterion]; !ok {
		return fmt.Errorf("neural: unknown fitness_criterion %q", c.FitnessCriterion)
	}
	if _, ok := aggregates[c.SpeciesFitnessFunc]; !ok {
		return fmt.Errorf("neural: unknown species_fitness_func %q", c.SpeciesFitnessFunc)
	}
	return nil
}
