package neural

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/carsim/sim"
)

// ErrExtinct is returned when every species stagnated and reset_on_extinction is off.
var ErrExtinct = errors.New("neural: all species extinct")

// EvaluateFunc scores one generation, setting each genome's fitness.
type EvaluateFunc func(ctx context.Context, genomes []sim.Genome) (sim.Result, error)

// Report summarises one generation.
type Report struct {
	Generation  int
	Result      sim.Result
	Fitness     []float64 // per genome, in population order
	BestFitness float64   // best fitness of this generation
	BestKey     int
	Species     SpeciesStats
	Solved      bool
}

// Evolver owns the population and advances it one generation at a time.
type Evolver struct {
	cfg     *Config
	rng     *rand.Rand
	idGen   *GenomeIDGenerator
	mutator *Mutator
	species *SpeciesManager

	population []*Candidate
	generation int
	best       *Candidate
	bestFit    float64
}

// NewEvolver creates a population of cfg.NEAT.PopSize start genomes and
// speciates it.
func NewEvolver(cfg *Config, seed int64) (*Evolver, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(seed))
	idGen := NewGenomeIDGenerator(int64(cfg.Inputs*cfg.Outputs) + 1)
	e := &Evolver{
		cfg:     cfg,
		rng:     rng,
		idGen:   idGen,
		mutator: NewMutator(cfg, idGen, rng),
		species: NewSpeciesManager(cfg),
		bestFit: math.Inf(-1),
	}
	e.population = e.newPopulation()
	e.species.Speciate(e.population, e.generation)
	return e, nil
}

func (e *Evolver) newPopulation() []*Candidate {
	pop := make([]*Candidate, e.cfg.NEAT.PopSize)
	for i := range pop {
		pop[i] = NewCandidate(NewStartGenome(e.idGen.NextID(), e.cfg, e.rng))
	}
	return pop
}

// Genomes returns the current population in evaluation order.
func (e *Evolver) Genomes() []sim.Genome {
	out := make([]sim.Genome, len(e.population))
	for i, c := range e.population {
		out[i] = c
	}
	return out
}

// Population returns the current candidates.
func (e *Evolver) Population() []*Candidate { return e.population }

// Generation returns how many generations have been evaluated.
func (e *Evolver) Generation() int { return e.generation }

// Best returns the fittest candidate seen so far, or nil before the first evaluation.
func (e *Evolver) Best() *Candidate { return e.best }

// Species returns the species manager.
func (e *Evolver) Species() *SpeciesManager { return e.species }

// SpeciesColor returns the display color of the i-th candidate's species.
func (e *Evolver) SpeciesColor(i int) SpeciesColor {
	if i < 0 || i >= len(e.population) {
		return SpeciesColor{R: 128, G: 128, B: 128}
	}
	return e.species.GetSpeciesColor(e.population[i].SpeciesID)
}

// RunGeneration evaluates the current population with eval and, unless the
// fitness threshold was reached, replaces it with the next generation.
func (e *Evolver) RunGeneration(ctx context.Context, eval EvaluateFunc) (Report, error) {
	res, err := eval(ctx, e.Genomes())
	if err != nil {
		return Report{}, fmt.Errorf("evaluating generation %d: %w", e.generation+1, err)
	}
	e.generation++

	fitness := memberFitness(e.population)
	bestIdx := floats.MaxIdx(fitness)
	if c := e.population[bestIdx]; c.Fitness() > e.bestFit {
		e.bestFit = c.Fitness()
		clone, err := CloneGenome(c.Genome, c.Genome.Id)
		if err != nil {
			return Report{}, err
		}
		e.best = &Candidate{Genome: clone, SpeciesID: c.SpeciesID, fitness: c.Fitness()}
	}

	e.species.UpdateFitness(e.generation)
	report := Report{
		Generation:  e.generation,
		Result:      res,
		Fitness:     fitness,
		BestFitness: fitness[bestIdx],
		BestKey:     e.population[bestIdx].Key(),
		Species:     e.species.GetStats(e.generation),
	}

	if !e.cfg.NoFitnessTermination && aggregates[e.cfg.FitnessCriterion](fitness) >= e.cfg.FitnessThreshold {
		report.Solved = true
		return report, nil
	}

	next, err := e.reproduce()
	if err != nil {
		return report, err
	}
	e.population = next
	e.species.Speciate(e.population, e.generation)

	slog.Debug("generation evolved",
		"generation", e.generation,
		"best", report.BestFitness,
		"species", len(e.species.Species),
		"population", len(e.population),
	)
	return report, nil
}

// reproduce builds the next population from the surviving species.
// Species spawn in proportion to their adjusted fitness; each keeps its
// Elitism best members and fills the rest with offspring of its top
// SurvivalThresh fraction.
func (e *Evolver) reproduce() ([]*Candidate, error) {
	survivors := e.species.Survivors(e.generation)
	if len(survivors) == 0 {
		if !e.cfg.ResetOnExtinction {
			return nil, ErrExtinct
		}
		slog.Info("all species extinct, resetting population", "generation", e.generation)
		e.species = NewSpeciesManager(e.cfg)
		return e.newPopulation(), nil
	}

	var all []float64
	for _, sp := range survivors {
		all = append(all, memberFitness(sp.Members)...)
	}
	minFit, maxFit := floats.Min(all), floats.Max(all)
	fitRange := math.Max(1, maxFit-minFit)

	adjusted := make([]float64, len(survivors))
	sizes := make([]int, len(survivors))
	for i, sp := range survivors {
		adjusted[i] = (aggregates["mean"](memberFitness(sp.Members)) - minFit) / fitRange
		sizes[i] = len(sp.Members)
	}

	minSize := max(e.cfg.MinSpeciesSize, e.cfg.Elitism)
	spawn := computeSpawnAmounts(adjusted, floats.Sum(adjusted), sizes, e.cfg.NEAT.PopSize, minSize, e.rng)

	next := make([]*Candidate, 0, e.cfg.NEAT.PopSize)
	for i, sp := range survivors {
		members := make([]*Candidate, len(sp.Members))
		copy(members, sp.Members)
		sort.SliceStable(members, func(a, b int) bool { return members[a].Fitness() > members[b].Fitness() })

		n := spawn[i]
		for j := 0; j < e.cfg.Elitism && j < len(members) && n > 0; j++ {
			next = append(next, members[j])
			n--
		}

		cutoff := int(math.Ceil(e.cfg.NEAT.SurvivalThresh * float64(len(members))))
		cutoff = min(max(cutoff, 2), len(members))
		parents := members[:cutoff]

		for ; n > 0; n-- {
			child, err := e.offspring(parents)
			if err != nil {
				return nil, fmt.Errorf("species %d: %w", sp.ID, err)
			}
			next = append(next, child)
		}
	}
	return next, nil
}

// offspring produces one child from parents by cloning or crossover, then mutation.
func (e *Evolver) offspring(parents []*Candidate) (*Candidate, error) {
	opts := e.cfg.NEAT
	p1 := parents[e.rng.Intn(len(parents))]
	id := e.idGen.NextID()

	if len(parents) == 1 || e.rng.Float64() < opts.MutateOnlyProb {
		g, err := CloneGenome(p1.Genome, id)
		if err != nil {
			return nil, err
		}
		e.mutator.Mutate(g)
		return NewCandidate(g), nil
	}

	p2 := parents[e.rng.Intn(len(parents))]
	g, err := CrossoverGenomes(p1.Genome, p2.Genome, p1.Fitness(), p2.Fitness(), id, e.rng)
	if err != nil {
		return nil, err
	}
	if e.rng.Float64() < opts.MateOnlyProb {
		e.mutator.connectOutputs(g)
	} else {
		e.mutator.Mutate(g)
	}
	return NewCandidate(g), nil
}

// computeSpawnAmounts sizes each species' share of the next population.
// Targets are proportional to adjusted fitness, moved halfway from the
// previous size, then normalized to popSize.
func computeSpawnAmounts(adjusted []float64, adjustedSum float64, previous []int, popSize, minSize int, rng *rand.Rand) []int {
	spawn := make([]int, len(adjusted))
	for i, af := range adjusted {
		s := float64(minSize)
		if adjustedSum > 0 {
			s = math.Max(s, af/adjustedSum*float64(popSize))
		}

		d := (s - float64(previous[i])) * 0.5
		c := int(math.Round(d))
		n := previous[i]
		switch {
		case c != 0:
			n += c
		case d > 0:
			n++
		case d < 0:
			n--
		}
		spawn[i] = max(minSize, n)
	}

	total := 0
	for _, n := range spawn {
		total += n
	}
	norm := float64(popSize) / float64(max(total, 1))

	current := 0
	for i, n := range spawn {
		spawn[i] = max(minSize, int(math.Round(float64(n)*norm)))
		current += spawn[i]
	}

	diff := popSize - current
	for _, i := range rng.Perm(len(spawn)) {
		if diff == 0 {
			break
		}
		if diff > 0 {
			spawn[i]++
			diff--
		} else if spawn[i] > minSize {
			spawn[i]--
			diff++
		}
	}
	return spawn
}
