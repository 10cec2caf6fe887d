package neural

import (
	"math"
	"testing"
)

func TestHSVToRGB(t *testing.T) {
	tests := []struct {
		h       float64
		r, g, b uint8
	}{
		{0, 255, 0, 0},
		{120, 0, 255, 0},
		{240, 0, 0, 255},
		{360, 255, 0, 0},
	}

	for _, tt := range tests {
		r, g, b := hsvToRGB(tt.h, 1, 1)
		if r != tt.r || g != tt.g || b != tt.b {
			t.Errorf("hsvToRGB(%v) = (%d, %d, %d), want (%d, %d, %d)", tt.h, r, g, b, tt.r, tt.g, tt.b)
		}
	}
}

func TestGenerateDistinctColors(t *testing.T) {
	colors := generateDistinctColors(16)
	seen := make(map[SpeciesColor]bool)
	for _, c := range colors {
		if seen[c] {
			t.Errorf("duplicate color %v", c)
		}
		seen[c] = true
	}
}

// candidates returns n candidates sharing one genome layout with the given weight.
func candidates(t *testing.T, n, firstID int, weight float64) []*Candidate {
	t.Helper()
	out := make([]*Candidate, n)
	for i := range out {
		g := fullGenome(t, firstID+i)
		for _, gene := range g.Genes {
			gene.Link.ConnectionWeight = weight
		}
		out[i] = NewCandidate(g)
	}
	return out
}

func TestSpeciateGroupsSimilarGenomes(t *testing.T) {
	cfg := DefaultConfig()
	sm := NewSpeciesManager(cfg)

	pop := append(candidates(t, 4, 1, 0), candidates(t, 3, 10, 10)...)
	sm.Speciate(pop, 0)

	if len(sm.Species) != 2 {
		t.Fatalf("expected 2 species, got %d", len(sm.Species))
	}
	if len(sm.Species[0].Members) != 4 || len(sm.Species[1].Members) != 3 {
		t.Errorf("expected sizes 4 and 3, got %d and %d", len(sm.Species[0].Members), len(sm.Species[1].Members))
	}
	for _, c := range pop[:4] {
		if c.SpeciesID != pop[0].SpeciesID {
			t.Errorf("candidate %d should share species %d, got %d", c.Key(), pop[0].SpeciesID, c.SpeciesID)
		}
	}
	if pop[4].SpeciesID == pop[0].SpeciesID {
		t.Error("distant genomes should not share a species")
	}
}

func TestSpeciateKeepsSpeciesIDs(t *testing.T) {
	cfg := DefaultConfig()
	sm := NewSpeciesManager(cfg)

	sm.Speciate(candidates(t, 3, 1, 0), 0)
	id := sm.Species[0].ID

	next := candidates(t, 3, 20, 0.1)
	sm.Speciate(next, 1)

	if len(sm.Species) != 1 {
		t.Fatalf("expected 1 species, got %d", len(sm.Species))
	}
	if sm.Species[0].ID != id {
		t.Errorf("expected species %d to carry over, got %d", id, sm.Species[0].ID)
	}
	if sm.Species[0].Representative != next[0].Genome {
		t.Error("representative should come from the new generation")
	}

	// A generation that no longer resembles the old species founds a new one.
	sm.Speciate(candidates(t, 2, 40, 20), 2)
	if len(sm.Species) != 1 || sm.Species[0].ID == id {
		t.Errorf("expected the old species to be dropped, got %d species", len(sm.Species))
	}
}

func TestSpeciesStagnation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NEAT.DropOffAge = 3
	cfg.SpeciesElitism = 0
	sm := NewSpeciesManager(cfg)

	pop := candidates(t, 3, 1, 0)
	for i, c := range pop {
		c.SetFitness(float64(i))
	}
	sm.Speciate(pop, 0)

	sm.UpdateFitness(1)
	sp := sm.Species[0]
	if sp.Fitness != 2 || sp.BestFitness != 2 || sp.LastImproved != 1 {
		t.Fatalf("unexpected species state after first update: %+v", *sp)
	}

	tests := []struct {
		generation int
		survivors  int
	}{
		{2, 1},
		{3, 1},
		{4, 0},
	}
	for _, tt := range tests {
		sm.UpdateFitness(tt.generation)
		if got := len(sm.Survivors(tt.generation)); got != tt.survivors {
			t.Errorf("generation %d: expected %d survivors, got %d", tt.generation, tt.survivors, got)
		}
	}

	cfg.SpeciesElitism = 1
	if got := len(sm.Survivors(4)); got != 1 {
		t.Errorf("species elitism should protect the best species, got %d survivors", got)
	}
}

func TestSpeciesFitnessFunc(t *testing.T) {
	tests := []struct {
		fn   string
		want float64
	}{
		{"max", 6},
		{"min", 0},
		{"mean", 3},
	}

	for _, tt := range tests {
		t.Run(tt.fn, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.SpeciesFitnessFunc = tt.fn
			sm := NewSpeciesManager(cfg)

			pop := candidates(t, 3, 1, 0)
			for i, c := range pop {
				c.SetFitness(float64(i * 3))
			}
			sm.Speciate(pop, 0)
			sm.UpdateFitness(1)

			if got := sm.Species[0].Fitness; math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("expected species fitness %f, got %f", tt.want, got)
			}
		})
	}
}

func TestSpeciesStats(t *testing.T) {
	cfg := DefaultConfig()
	sm := NewSpeciesManager(cfg)

	if stats := sm.GetStats(0); stats.Count != 0 {
		t.Errorf("expected empty stats, got %+v", stats)
	}
	if top := sm.GetTopSpecies(3, 0); top != nil {
		t.Errorf("expected no top species, got %v", top)
	}

	pop := append(candidates(t, 2, 1, 0), candidates(t, 5, 10, 10)...)
	for i, c := range pop {
		c.SetFitness(float64(i))
	}
	sm.Speciate(pop, 0)
	sm.UpdateFitness(2)

	stats := sm.GetStats(4)
	if stats.Count != 2 || stats.LargestSize != 5 || stats.SmallestSize != 2 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if stats.BestFitness != 6 {
		t.Errorf("expected best fitness 6, got %f", stats.BestFitness)
	}
	if stats.AverageStaleness != 2 {
		t.Errorf("expected staleness 2, got %f", stats.AverageStaleness)
	}

	top := sm.GetTopSpecies(1, 4)
	if len(top) != 1 || top[0].Size != 5 || top[0].Age != 4 {
		t.Errorf("unexpected top species: %+v", top)
	}
	if sm.GetSpeciesColor(top[0].ID) != top[0].Color {
		t.Error("species color lookup mismatch")
	}
	if c := sm.GetSpeciesColor(999); c != (SpeciesColor{R: 128, G: 128, B: 128}) {
		t.Errorf("unknown species should be gray, got %v", c)
	}
}
