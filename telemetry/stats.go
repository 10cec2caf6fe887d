// Package telemetry records per-generation statistics, milestones and timing.
package telemetry

import (
	"log/slog"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/carsim/neural"
)

// GenerationStats holds aggregated statistics for one evaluated generation.
type GenerationStats struct {
	Generation int    `csv:"generation"`
	Map        string `csv:"map"`
	Ticks      int    `csv:"ticks"`
	Outcome    string `csv:"outcome"`
	Population int    `csv:"population"`
	Survivors  int    `csv:"survivors"` // cars alive when the generation ended

	// Fitness distribution
	FitnessMax  float64 `csv:"fitness_max"`
	FitnessMean float64 `csv:"fitness_mean"`
	FitnessStd  float64 `csv:"fitness_std"`
	FitnessMin  float64 `csv:"fitness_min"`
	FitnessP10  float64 `csv:"fitness_p10"`
	FitnessP50  float64 `csv:"fitness_p50"`
	FitnessP90  float64 `csv:"fitness_p90"`
	BestEver    float64 `csv:"best_ever"`

	// Species
	Species          int     `csv:"species"`
	LargestSpecies   int     `csv:"largest_species"`
	AverageStaleness float64 `csv:"avg_staleness"`

	ElapsedSec float64 `csv:"elapsed_sec"`
	Solved     bool    `csv:"solved"`
}

// FitnessSummary computes mean, population standard deviation and
// percentiles of values. Returns zeros if values is empty.
func FitnessSummary(values []float64) (mean, std, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0, 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean, std = stat.PopMeanStdDev(sorted, nil)
	p10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	p50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)
	return mean, std, p10, p50, p90
}

// NewGenerationStats summarises an evolver report.
func NewGenerationStats(r neural.Report, mapName string, bestEver float64, elapsed time.Duration) GenerationStats {
	s := GenerationStats{
		Generation:       r.Generation,
		Map:              mapName,
		Ticks:            r.Result.Ticks,
		Outcome:          r.Result.Outcome.String(),
		Population:       len(r.Fitness),
		Survivors:        r.Result.Alive,
		BestEver:         bestEver,
		Species:          r.Species.Count,
		LargestSpecies:   r.Species.LargestSize,
		AverageStaleness: r.Species.AverageStaleness,
		ElapsedSec:       elapsed.Seconds(),
		Solved:           r.Solved,
	}
	if len(r.Fitness) > 0 {
		s.FitnessMax = floats.Max(r.Fitness)
		s.FitnessMin = floats.Min(r.Fitness)
		s.FitnessMean, s.FitnessStd, s.FitnessP10, s.FitnessP50, s.FitnessP90 = FitnessSummary(r.Fitness)
	}
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s GenerationStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("generation", s.Generation),
		slog.String("map", s.Map),
		slog.Int("ticks", s.Ticks),
		slog.String("outcome", s.Outcome),
		slog.Int("population", s.Population),
		slog.Int("survivors", s.Survivors),
		slog.Float64("fitness_max", s.FitnessMax),
		slog.Float64("fitness_mean", s.FitnessMean),
		slog.Float64("fitness_std", s.FitnessStd),
		slog.Float64("fitness_min", s.FitnessMin),
		slog.Float64("fitness_p50", s.FitnessP50),
		slog.Float64("best_ever", s.BestEver),
		slog.Int("species", s.Species),
		slog.Float64("elapsed_sec", s.ElapsedSec),
	)
}

// LogStats logs the generation summary using slog.
func (s GenerationStats) LogStats() {
	slog.Info("generation",
		"generation", s.Generation,
		"map", s.Map,
		"ticks", s.Ticks,
		"outcome", s.Outcome,
		"survivors", s.Survivors,
		"fitness_max", s.FitnessMax,
		"fitness_mean", s.FitnessMean,
		"fitness_p50", s.FitnessP50,
		"best_ever", s.BestEver,
		"species", s.Species,
		"largest_species", s.LargestSpecies,
		"elapsed_sec", s.ElapsedSec,
		"solved", s.Solved,
	)
}
