package main

import (
	"context"
	"log/slog"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/carsim/config"
	"github.com/pthm-cable/carsim/game"
	"github.com/pthm-cable/carsim/neural"
	"github.com/pthm-cable/carsim/telemetry"
)

// FitnessEvaluator runs headless evolution runs and scores NEAT settings.
type FitnessEvaluator struct {
	params      *ParamVector
	generations int
	seeds       []int64
	cfg         *config.Config
	baseNEAT    *neural.Config

	mu          sync.Mutex
	bestFitness float64
	bestNEAT    *neural.Config
	lastSolved  float64 // fraction of seeds that reached the threshold in the last Evaluate
	lastFailed  int     // seeds whose run errored in the last Evaluate
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, generations int, seeds []int64, cfg *config.Config, baseNEAT *neural.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		generations: generations,
		seeds:       seeds,
		cfg:         cfg,
		baseNEAT:    baseNEAT,
		bestFitness: math.Inf(1),
	}
}

// BestNEAT returns the NEAT config of the best evaluation so far.
func (fe *FitnessEvaluator) BestNEAT() *neural.Config {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestNEAT
}

// LastSolved returns the solved fraction from the most recent evaluation.
func (fe *FitnessEvaluator) LastSolved() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastSolved
}

// LastFailed returns how many seeds errored in the most recent evaluation.
func (fe *FitnessEvaluator) LastFailed() int {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastFailed
}

// runResult holds the outcome of one seed.
type runResult struct {
	best   float64 // best fitness seen over the run
	solved bool
	err    error
}

// Evaluate computes fitness for a raw parameter vector (lower = better).
// Fitness is the negated mean of the per-seed best car fitness.
// Failed seeds are logged and left out; if every seed fails the result is +Inf.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	neatCfg := fe.baseNEAT.Clone()
	fe.params.ApplyToConfig(neatCfg, x)

	results := make([]runResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runEvolution(neatCfg.Clone(), s)
		}(i, seed)
	}
	wg.Wait()

	bests := make([]float64, 0, len(results))
	solved, failed := 0, 0
	for i, r := range results {
		if r.err != nil {
			slog.Warn("run failed", "seed", fe.seeds[i], "error", r.err)
			failed++
			continue
		}
		bests = append(bests, r.best)
		if r.solved {
			solved++
		}
	}

	fitness := math.Inf(1)
	if len(bests) > 0 {
		fitness = -stat.Mean(bests, nil)
	}

	fe.mu.Lock()
	if fitness < fe.bestFitness {
		fe.bestFitness = fitness
		fe.bestNEAT = neatCfg
	}
	fe.lastSolved = float64(solved) / float64(len(fe.seeds))
	fe.lastFailed = failed
	fe.mu.Unlock()

	return fitness
}

// runEvolution executes a single headless run for the configured number of generations.
func (fe *FitnessEvaluator) runEvolution(neatCfg *neural.Config, seed int64) runResult {
	res := runResult{best: math.Inf(-1)}

	g, err := game.NewGame(fe.cfg, game.Options{
		Seed:        seed,
		Generations: fe.generations,
		NEAT:        neatCfg,
		OnGeneration: func(s telemetry.GenerationStats) {
			res.best = max(res.best, s.BestEver)
			res.solved = res.solved || s.Solved
		},
	})
	if err != nil {
		res.err = err
		return res
	}
	defer g.Close()

	if err := g.Run(context.Background()); err != nil {
		res.err = err
	}
	return res
}
