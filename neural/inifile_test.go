package neural

import (
	"os"
	"path/filepath"
	"testing"

	neatmath "github.com/yaricom/goNEAT/v4/neat/math"
)

const sampleNEATConfig = `[NEAT]
fitness_criterion     = mean
fitness_threshold     = 100000000
pop_size              = 12
reset_on_extinction   = True
no_fitness_termination = False

[DefaultGenome]
activation_default      = tanh
activation_options      = tanh sigmoid
bias_init_mean          = 0.0
compatibility_disjoint_coefficient = 1.5
compatibility_weight_coefficient   = 0.4
conn_add_prob           = 0.6
node_add_prob           = 0.15
enabled_mutate_rate     = 0.02
initial_connection      = partial_direct 0.5
num_inputs              = 5
num_outputs             = 4
num_hidden              = 0
weight_max_value        = 20
weight_mutate_power     = 0.3
weight_mutate_rate      = 0.7
weight_replace_rate     = 0.05

[DefaultSpeciesSet]
compatibility_threshold = 3.5

[DefaultStagnation]
species_fitness_func = mean
max_stagnation       = 15
species_elitism      = 1

[DefaultReproduction]
elitism            = 2
survival_threshold = 0.3
min_species_size   = 0
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "neat_config.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleNEATConfig))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	opts := cfg.NEAT
	checks := []struct {
		name      string
		got, want float64
	}{
		{"pop_size", float64(opts.PopSize), 12},
		{"fitness_threshold", cfg.FitnessThreshold, 1e8},
		{"disjoint", opts.DisjointCoeff, 1.5},
		{"excess", opts.ExcessCoeff, 1.5},
		{"weight coefficient", opts.MutdiffCoeff, 0.4},
		{"conn_add_prob", opts.MutateAddLinkProb, 0.6},
		{"node_add_prob", opts.MutateAddNodeProb, 0.15},
		{"enabled_mutate_rate", opts.MutateToggleEnableProb, 0.02},
		{"initial_connection", cfg.InitialConnectionProb, 0.5},
		{"weight_max_value", cfg.WeightMaxValue, 20},
		{"weight_mutate_power", opts.WeightMutPower, 0.3},
		{"weight_mutate_rate", opts.MutateLinkWeightsProb, 0.7},
		{"weight_replace_rate", cfg.WeightReplaceRate, 0.05},
		{"compatibility_threshold", opts.CompatThreshold, 3.5},
		{"max_stagnation", float64(opts.DropOffAge), 15},
		{"species_elitism", float64(cfg.SpeciesElitism), 1},
		{"elitism", float64(cfg.Elitism), 2},
		{"survival_threshold", opts.SurvivalThresh, 0.3},
		{"min_species_size", float64(cfg.MinSpeciesSize), 1},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s: expected %v, got %v", c.name, c.want, c.got)
		}
	}

	if cfg.FitnessCriterion != "mean" || cfg.SpeciesFitnessFunc != "mean" {
		t.Errorf("expected mean criteria, got %q/%q", cfg.FitnessCriterion, cfg.SpeciesFitnessFunc)
	}
	if !cfg.ResetOnExtinction || cfg.NoFitnessTermination {
		t.Errorf("unexpected termination flags: reset=%v no_termination=%v", cfg.ResetOnExtinction, cfg.NoFitnessTermination)
	}
	if cfg.OutputActivation != neatmath.TanhActivation {
		t.Errorf("expected tanh outputs, got %v", cfg.OutputActivation)
	}
	if len(cfg.HiddenActivators) != 2 || cfg.HiddenActivators[1] != neatmath.SigmoidSteepenedActivation {
		t.Errorf("unexpected hidden activators: %v", cfg.HiddenActivators)
	}
}

func TestLoadConfigKeepsDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "[NEAT]\npop_size = 8\n"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	def := DefaultConfig()

	if cfg.NEAT.PopSize != 8 {
		t.Errorf("expected pop_size 8, got %d", cfg.NEAT.PopSize)
	}
	if cfg.NEAT.CompatThreshold != def.NEAT.CompatThreshold {
		t.Errorf("compatibility threshold should keep its default, got %v", cfg.NEAT.CompatThreshold)
	}
	if cfg.Inputs != BrainInputs || cfg.Outputs != BrainOutputs {
		t.Errorf("expected %d/%d io, got %d/%d", BrainInputs, BrainOutputs, cfg.Inputs, cfg.Outputs)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown activation", "[DefaultGenome]\nactivation_default = relu6\n"},
		{"unknown criterion", "[NEAT]\nfitness_criterion = median\n"},
		{"bad connection", "[DefaultGenome]\ninitial_connection = sparse\n"},
		{"empty population", "[NEAT]\npop_size = 0\n"},
		{"malformed number", "[NEAT]\npop_size = many\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, tt.content)); err == nil {
				t.Error("expected an error")
			}
		})
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestParseInitialConnection(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"full", 1, false},
		{"full_direct", 1, false},
		{"unconnected", 0, false},
		{"partial 0.25", 0.25, false},
		{"partial", 0, true},
		{"partial 2", 0, true},
		{"fs_neat", 0, true},
	}

	for _, tt := range tests {
		got, err := parseInitialConnection(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseInitialConnection(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseInitialConnection(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestWriteConfigReadsBack(t *testing.T) {
	src, err := LoadConfig(writeConfig(t, sampleNEATConfig))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "out.ini")
	if err := WriteConfig(src, path); err != nil {
		t.Fatalf("WriteConfig failed: %v", err)
	}
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("reading written config: %v", err)
	}

	if got.NEAT.PopSize != 12 || got.NEAT.CompatThreshold != 3.5 || got.NEAT.MutateAddLinkProb != 0.6 {
		t.Errorf("NEAT options not preserved: %+v", got.NEAT)
	}
	if got.InitialConnectionProb != 0.5 {
		t.Errorf("expected partial connection 0.5, got %v", got.InitialConnectionProb)
	}
	if got.FitnessCriterion != "mean" || !got.ResetOnExtinction {
		t.Errorf("termination settings not preserved: %q reset=%v", got.FitnessCriterion, got.ResetOnExtinction)
	}
	if len(got.HiddenActivators) != 2 || got.HiddenActivators[1] != neatmath.SigmoidSteepenedActivation {
		t.Errorf("hidden activators not preserved: %v", got.HiddenActivators)
	}
}

func TestCloneIsDeep(t *testing.T) {
	a := DefaultConfig()
	b := a.Clone()

	b.NEAT.PopSize = 99
	b.HiddenActivators[0] = neatmath.SineActivation
	if a.NEAT.PopSize == 99 {
		t.Error("clone shares NEAT options")
	}
	if a.HiddenActivators[0] == neatmath.SineActivation {
		t.Error("clone shares hidden activators")
	}
}
