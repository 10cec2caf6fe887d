package neural

import (
	"math"
	"sort"

	"github.com/yaricom/goNEAT/v4/neat/genetics"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// aggregates are the population and species fitness reductions neat-python supports.
var aggregates = map[string]func([]float64) float64{
	"max":  floats.Max,
	"min":  floats.Min,
	"mean": func(xs []float64) float64 { return stat.Mean(xs, nil) },
}

// SpeciesColor represents an RGB color for species visualization.
type SpeciesColor struct {
	R, G, B uint8
}

// Species is a group of genetically similar candidates.
type Species struct {
	ID             int
	Representative *genetics.Genome // used for compatibility comparisons
	Members        []*Candidate
	Fitness        float64 // species fitness of the last evaluated generation
	BestFitness    float64 // best species fitness so far
	Created        int     // generation the species appeared in
	LastImproved   int     // generation BestFitness last rose
	Color          SpeciesColor
}

// SpeciesManager partitions each generation into species and tracks stagnation.
type SpeciesManager struct {
	Species       []*Species
	cfg           *Config
	nextSpeciesID int
	speciesColors []SpeciesColor
}

// NewSpeciesManager creates an empty species manager.
func NewSpeciesManager(cfg *Config) *SpeciesManager {
	return &SpeciesManager{
		cfg:           cfg,
		nextSpeciesID: 1,
		speciesColors: generateDistinctColors(64),
	}
}

// generateDistinctColors creates visually distinct colors using golden angle.
func generateDistinctColors(count int) []SpeciesColor {
	colors := make([]SpeciesColor, count)
	goldenAngle := 137.508

	for i := 0; i < count; i++ {
		hue := math.Mod(float64(i)*goldenAngle, 360.0)
		r, g, b := hsvToRGB(hue, 0.7, 0.9)
		colors[i] = SpeciesColor{R: r, G: g, B: b}
	}
	return colors
}

// hsvToRGB converts HSV to RGB.
func hsvToRGB(h, s, v float64) (uint8, uint8, uint8) {
	h = math.Mod(h, 360)
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return uint8((r + m) * 255), uint8((g + m) * 255), uint8((b + m) * 255)
}

// Speciate assigns every candidate to a species. Each surviving species first
// takes the closest unassigned candidate as its new representative; the rest
// join the closest compatible species or found a new one. Species left without
// members are dropped.
func (sm *SpeciesManager) Speciate(pop []*Candidate, generation int) {
	threshold := sm.cfg.NEAT.CompatThreshold

	unassigned := make([]*Candidate, len(pop))
	copy(unassigned, pop)

	active := make([]*Species, 0, len(sm.Species))
	for _, sp := range sm.Species {
		sp.Members = sp.Members[:0]
		if len(unassigned) == 0 || sp.Representative == nil {
			continue
		}

		closest, dist := -1, math.MaxFloat64
		for i, c := range unassigned {
			if d := GenomeCompatibility(c.Genome, sp.Representative, sm.cfg); d < dist {
				closest, dist = i, d
			}
		}
		if dist >= threshold {
			continue
		}

		rep := unassigned[closest]
		unassigned = append(unassigned[:closest], unassigned[closest+1:]...)
		sp.Representative = rep.Genome
		sp.Members = append(sp.Members, rep)
		rep.SpeciesID = sp.ID
		active = append(active, sp)
	}
	sm.Species = active

	for _, c := range unassigned {
		var best *Species
		bestDist := threshold
		for _, sp := range sm.Species {
			if d := GenomeCompatibility(c.Genome, sp.Representative, sm.cfg); d < bestDist {
				best, bestDist = sp, d
			}
		}
		if best == nil {
			best = sm.newSpecies(c.Genome, generation)
		}
		best.Members = append(best.Members, c)
		c.SpeciesID = best.ID
	}
}

func (sm *SpeciesManager) newSpecies(rep *genetics.Genome, generation int) *Species {
	sp := &Species{
		ID:             sm.nextSpeciesID,
		Representative: rep,
		BestFitness:    math.Inf(-1),
		Created:        generation,
		LastImproved:   generation,
		Color:          sm.speciesColors[sm.nextSpeciesID%len(sm.speciesColors)],
	}
	sm.nextSpeciesID++
	sm.Species = append(sm.Species, sp)
	return sp
}

// GetSpeciesColor returns the color for a species ID.
// Returns a default gray if species not found.
func (sm *SpeciesManager) GetSpeciesColor(speciesID int) SpeciesColor {
	for _, sp := range sm.Species {
		if sp.ID == speciesID {
			return sp.Color
		}
	}
	return SpeciesColor{R: 128, G: 128, B: 128}
}

// UpdateFitness recomputes every species' fitness from its evaluated members
// and records improvements.
func (sm *SpeciesManager) UpdateFitness(generation int) {
	agg := aggregates[sm.cfg.SpeciesFitnessFunc]
	for _, sp := range sm.Species {
		if len(sp.Members) == 0 {
			sp.Fitness = math.Inf(-1)
			continue
		}
		sp.Fitness = agg(memberFitness(sp.Members))
		if sp.Fitness > sp.BestFitness {
			sp.BestFitness = sp.Fitness
			sp.LastImproved = generation
		}
	}
}

// Survivors returns the species allowed to reproduce: those with members that
// improved within DropOffAge generations, plus the SpeciesElitism fittest
// regardless of stagnation.
func (sm *SpeciesManager) Survivors(generation int) []*Species {
	sorted := make([]*Species, 0, len(sm.Species))
	for _, sp := range sm.Species {
		if len(sp.Members) > 0 {
			sorted = append(sorted, sp)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Fitness > sorted[j].Fitness })

	survivors := make([]*Species, 0, len(sorted))
	for i, sp := range sorted {
		stale := generation-sp.LastImproved >= sm.cfg.NEAT.DropOffAge
		if !stale || i < sm.cfg.SpeciesElitism {
			survivors = append(survivors, sp)
		}
	}
	return survivors
}

func memberFitness(members []*Candidate) []float64 {
	out := make([]float64, len(members))
	for i, c := range members {
		out[i] = c.Fitness()
	}
	return out
}

// SpeciesStats contains summary statistics about all species.
type SpeciesStats struct {
	Count            int
	LargestSize      int
	SmallestSize     int
	AverageStaleness float64
	BestFitness      float64
}

// SpeciesInfo contains display information about a single species.
type SpeciesInfo struct {
	ID        int
	Size      int
	Fitness   float64
	Age       int
	Staleness int
	Color     SpeciesColor
}

// GetStats returns summary statistics about species distribution.
func (sm *SpeciesManager) GetStats(generation int) SpeciesStats {
	if len(sm.Species) == 0 {
		return SpeciesStats{}
	}

	stats := SpeciesStats{
		Count:        len(sm.Species),
		SmallestSize: math.MaxInt,
		BestFitness:  math.Inf(-1),
	}

	totalStaleness := 0
	for _, sp := range sm.Species {
		size := len(sp.Members)
		stats.LargestSize = max(stats.LargestSize, size)
		stats.SmallestSize = min(stats.SmallestSize, size)
		stats.BestFitness = math.Max(stats.BestFitness, sp.BestFitness)
		totalStaleness += generation - sp.LastImproved
	}
	stats.AverageStaleness = float64(totalStaleness) / float64(stats.Count)

	return stats
}

// GetTopSpecies returns info about the top n species by size.
func (sm *SpeciesManager) GetTopSpecies(n, generation int) []SpeciesInfo {
	if len(sm.Species) == 0 {
		return nil
	}

	sorted := make([]*Species, len(sm.Species))
	copy(sorted, sm.Species)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Members) > len(sorted[j].Members)
	})

	n = min(n, len(sorted))
	result := make([]SpeciesInfo, n)
	for i, sp := range sorted[:n] {
		result[i] = SpeciesInfo{
			ID:        sp.ID,
			Size:      len(sp.Members),
			Fitness:   sp.Fitness,
			Age:       generation - sp.Created,
			Staleness: generation - sp.LastImproved,
			Color:     sp.Color,
		}
	}
	return result
}
