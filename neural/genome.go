package neural

import (
	"github.com/yaricom/goNEAT/v4/neat/genetics"

	"github.com/pthm-cable/carsim/sim"
)

// Candidate is one member of the population: a genome and the fitness its
// car earned in the last evaluated generation.
type Candidate struct {
	Genome    *genetics.Genome
	SpeciesID int

	fitness float64
}

// NewCandidate wraps genome with zero fitness.
func NewCandidate(genome *genetics.Genome) *Candidate {
	return &Candidate{Genome: genome}
}

// Key returns the genome ID.
func (c *Candidate) Key() int { return c.Genome.Id }

// Fitness returns the last recorded fitness.
func (c *Candidate) Fitness() float64 { return c.fitness }

// SetFitness records fitness.
func (c *Candidate) SetFitness(f float64) { c.fitness = f }

// NewController builds the genome's network.
func (c *Candidate) NewController() (sim.Controller, error) {
	brain, err := NewBrain(c.Genome)
	if err != nil {
		return nil, err
	}
	return brain, nil
}

var _ sim.Genome = (*Candidate)(nil)
