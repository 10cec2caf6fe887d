package neural

import (
	"fmt"
	"strconv"
	"strings"

	neatmath "github.com/yaricom/goNEAT/v4/neat/math"
	"gopkg.in/ini.v1"
)

// iniNEAT mirrors the [NEAT] section of a neat-python config file.
type iniNEAT struct {
	PopSize              int     `ini:"pop_size"`
	FitnessCriterion     string  `ini:"fitness_criterion"`
	FitnessThreshold     float64 `ini:"fitness_threshold"`
	NoFitnessTermination bool    `ini:"no_fitness_termination"`
	ResetOnExtinction    bool    `ini:"reset_on_extinction"`
}

// iniGenome mirrors the [DefaultGenome] keys the evolver understands.
type iniGenome struct {
	NumInputs         int      `ini:"num_inputs"`
	NumOutputs        int      `ini:"num_outputs"`
	InitialConnection string   `ini:"initial_connection"`
	ActivationDefault string   `ini:"activation_default"`
	ActivationOptions []string `ini:"activation_options" delim:" "`

	CompatibilityDisjointCoefficient float64 `ini:"compatibility_disjoint_coefficient"`
	CompatibilityWeightCoefficient   float64 `ini:"compatibility_weight_coefficient"`

	ConnAddProb       float64 `ini:"conn_add_prob"`
	NodeAddProb       float64 `ini:"node_add_prob"`
	EnabledMutateRate float64 `ini:"enabled_mutate_rate"`

	WeightMutateRate  float64 `ini:"weight_mutate_rate"`
	WeightMutatePower float64 `ini:"weight_mutate_power"`
	WeightReplaceRate float64 `ini:"weight_replace_rate"`
	WeightMaxValue    float64 `ini:"weight_max_value"`
}

type iniSpeciesSet struct {
	CompatibilityThreshold float64 `ini:"compatibility_threshold"`
}

type iniStagnation struct {
	SpeciesFitnessFunc string `ini:"species_fitness_func"`
	MaxStagnation      int    `ini:"max_stagnation"`
	SpeciesElitism     int    `ini:"species_elitism"`
}

type iniReproduction struct {
	Elitism           int     `ini:"elitism"`
	SurvivalThreshold float64 `ini:"survival_threshold"`
	MinSpeciesSize    int     `ini:"min_species_size"`
}

// activationNames maps neat-python activation names onto goNEAT activators.
var activationNames = map[string]neatmath.NodeActivationType{
	"sigmoid":  neatmath.SigmoidSteepenedActivation,
	"tanh":     neatmath.TanhActivation,
	"identity": neatmath.LinearActivation,
	"gauss":    neatmath.GaussianActivation,
	"sin":      neatmath.SineActivation,
}

// LoadConfig reads a neat-python style INI file on top of DefaultConfig.
// Keys that are absent keep their defaults.
func LoadConfig(path string) (*Config, error) {
	file, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:         true,
		UnescapeValueCommentSymbols: true,
	}, path)
	if err != nil {
		return nil, fmt.Errorf("loading NEAT config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := applyINI(cfg, file); err != nil {
		return nil, fmt.Errorf("NEAT config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyINI overlays every section of file onto cfg.
func applyINI(cfg *Config, file *ini.File) error {
	opts := cfg.NEAT

	n := iniNEAT{
		PopSize:              opts.PopSize,
		FitnessCriterion:     cfg.FitnessCriterion,
		FitnessThreshold:     cfg.FitnessThreshold,
		NoFitnessTermination: cfg.NoFitnessTermination,
		ResetOnExtinction:    cfg.ResetOnExtinction,
	}
	if err := file.Section("NEAT").StrictMapTo(&n); err != nil {
		return fmt.Errorf("mapping [NEAT]: %w", err)
	}
	opts.PopSize = n.PopSize
	cfg.FitnessCriterion = strings.TrimSpace(n.FitnessCriterion)
	cfg.FitnessThreshold = n.FitnessThreshold
	cfg.NoFitnessTermination = n.NoFitnessTermination
	cfg.ResetOnExtinction = n.ResetOnExtinction

	g := iniGenome{
		NumInputs:                        cfg.Inputs,
		NumOutputs:                       cfg.Outputs,
		CompatibilityDisjointCoefficient: opts.DisjointCoeff,
		CompatibilityWeightCoefficient:   opts.MutdiffCoeff,
		ConnAddProb:                      opts.MutateAddLinkProb,
		NodeAddProb:                      opts.MutateAddNodeProb,
		EnabledMutateRate:                opts.MutateToggleEnableProb,
		WeightMutateRate:                 opts.MutateLinkWeightsProb,
		WeightMutatePower:                opts.WeightMutPower,
		WeightReplaceRate:                cfg.WeightReplaceRate,
		WeightMaxValue:                   cfg.WeightMaxValue,
	}
	if err := file.Section("DefaultGenome").StrictMapTo(&g); err != nil {
		return fmt.Errorf("mapping [DefaultGenome]: %w", err)
	}
	cfg.Inputs = g.NumInputs
	cfg.Outputs = g.NumOutputs
	opts.DisjointCoeff = g.CompatibilityDisjointCoefficient
	opts.ExcessCoeff = g.CompatibilityDisjointCoefficient
	opts.MutdiffCoeff = g.CompatibilityWeightCoefficient
	opts.MutateAddLinkProb = g.ConnAddProb
	opts.MutateAddNodeProb = g.NodeAddProb
	opts.MutateToggleEnableProb = g.EnabledMutateRate
	opts.MutateLinkWeightsProb = g.WeightMutateRate
	opts.WeightMutPower = g.WeightMutatePower
	cfg.WeightReplaceRate = g.WeightReplaceRate
	cfg.WeightMaxValue = g.WeightMaxValue

	if g.InitialConnection != "" {
		prob, err := parseInitialConnection(g.InitialConnection)
		if err != nil {
			return err
		}
		cfg.InitialConnectionProb = prob
	}
	if name := strings.TrimSpace(g.ActivationDefault); name != "" && name != "random" {
		act, err := activationByName(name)
		if err != nil {
			return err
		}
		cfg.OutputActivation = act
		cfg.HiddenActivators = []neatmath.NodeActivationType{act}
	}
	if len(g.ActivationOptions) > 0 {
		acts := make([]neatmath.NodeActivationType, 0, len(g.ActivationOptions))
		for _, name := range g.ActivationOptions {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			act, err := activationByName(name)
			if err != nil {
				return err
			}
			acts = append(acts, act)
		}
		if len(acts) > 0 {
			cfg.HiddenActivators = acts
		}
	}

	ss := iniSpeciesSet{CompatibilityThreshold: opts.CompatThreshold}
	if err := file.Section("DefaultSpeciesSet").StrictMapTo(&ss); err != nil {
		return fmt.Errorf("mapping [DefaultSpeciesSet]: %w", err)
	}
	opts.CompatThreshold = ss.CompatibilityThreshold

	st := iniStagnation{
		SpeciesFitnessFunc: cfg.SpeciesFitnessFunc,
		MaxStagnation:      opts.DropOffAge,
		SpeciesElitism:     cfg.SpeciesElitism,
	}
	if err := file.Section("DefaultStagnation").StrictMapTo(&st); err != nil {
		return fmt.Errorf("mapping [DefaultStagnation]: %w", err)
	}
	opts.DropOffAge = st.MaxStagnation
	cfg.SpeciesElitism = st.SpeciesElitism
	cfg.SpeciesFitnessFunc = strings.TrimSpace(st.SpeciesFitnessFunc)

	rp := iniReproduction{
		Elitism:           cfg.Elitism,
		SurvivalThreshold: opts.SurvivalThresh,
		MinSpeciesSize:    cfg.MinSpeciesSize,
	}
	if err := file.Section("DefaultReproduction").StrictMapTo(&rp); err != nil {
		return fmt.Errorf("mapping [DefaultReproduction]: %w", err)
	}
	cfg.Elitism = rp.Elitism
	opts.SurvivalThresh = rp.SurvivalThreshold
	cfg.MinSpeciesSize = max(rp.MinSpeciesSize, 1)

	return nil
}

// parseInitialConnection turns neat-python's initial_connection into a link probability.
func parseInitialConnection(v string) (float64, error) {
	fields := strings.Fields(v)
	if len(fields) == 0 {
		return 1, nil
	}
	switch fields[0] {
	case "full", "full_direct", "full_nodirect":
		return 1, nil
	case "unconnected":
		return 0, nil
	case "partial", "partial_direct", "partial_nodirect":
		if len(fields) != 2 {
			return 0, fmt.Errorf("initial_connection %q needs a probability", v)
		}
		p, err := strconv.ParseFloat(fields[1], 64)
		if err != nil || p < 0 || p > 1 {
			return 0, fmt.Errorf("initial_connection %q: bad probability", v)
		}
		return p, nil
	default:
		return 0, fmt.Errorf("unsupported initial_connection %q", v)
	}
}

func activationByName(name string) (neatmath.NodeActivationType, error) {
	act, ok := activationNames[name]
	if !ok {
		return 0, fmt.Errorf("unsupported activation %q", name)
	}
	return act, nil
}

// WriteConfig saves cfg as a neat-python style INI file that LoadConfig reads back.
func WriteConfig(cfg *Config, path string) error {
	opts := cfg.NEAT
	hidden := make([]string, 0, len(cfg.HiddenActivators))
	for _, act := range cfg.HiddenActivators {
		hidden = append(hidden, activationName(act))
	}

	sections := []struct {
		name string
		v    any
	}{
		{"NEAT", &iniNEAT{
			PopSize:              opts.PopSize,
			FitnessCriterion:     cfg.FitnessCriterion,
			FitnessThreshold:     cfg.FitnessThreshold,
			NoFitnessTermination: cfg.NoFitnessTermination,
			ResetOnExtinction:    cfg.ResetOnExtinction,
		}},
		{"DefaultGenome", &iniGenome{
			NumInputs:                        cfg.Inputs,
			NumOutputs:                       cfg.Outputs,
			InitialConnection:                formatInitialConnection(cfg.InitialConnectionProb),
			ActivationDefault:                activationName(cfg.OutputActivation),
			ActivationOptions:                hidden,
			CompatibilityDisjointCoefficient: opts.DisjointCoeff,
			CompatibilityWeightCoefficient:   opts.MutdiffCoeff,
			ConnAddProb:                      opts.MutateAddLinkProb,
			NodeAddProb:                      opts.MutateAddNodeProb,
			EnabledMutateRate:                opts.MutateToggleEnableProb,
			WeightMutateRate:                 opts.MutateLinkWeightsProb,
			WeightMutatePower:                opts.WeightMutPower,
			WeightReplaceRate:                cfg.WeightReplaceRate,
			WeightMaxValue:                   cfg.WeightMaxValue,
		}},
		{"DefaultSpeciesSet", &iniSpeciesSet{CompatibilityThreshold: opts.CompatThreshold}},
		{"DefaultStagnation", &iniStagnation{
			SpeciesFitnessFunc: cfg.SpeciesFitnessFunc,
			MaxStagnation:      opts.DropOffAge,
			SpeciesElitism:     cfg.SpeciesElitism,
		}},
		{"DefaultReproduction", &iniReproduction{
			Elitism:           cfg.Elitism,
			SurvivalThreshold: opts.SurvivalThresh,
			MinSpeciesSize:    cfg.MinSpeciesSize,
		}},
	}

	file := ini.Empty()
	for _, s := range sections {
		if err := file.Section(s.name).ReflectFrom(s.v); err != nil {
			return fmt.Errorf("writing [%s]: %w", s.name, err)
		}
	}
	if err := file.SaveTo(path); err != nil {
		return fmt.Errorf("saving NEAT config %s: %w", path, err)
	}
	return nil
}

func formatInitialConnection(prob float64) string {
	switch {
	case prob >= 1:
		return "full"
	case prob <= 0:
		return "unconnected"
	default:
		return "partial " + strconv.FormatFloat(prob, 'f', -1, 64)
	}
}

// activationName is the neat-python name of act, tanh for activators it has no name for.
func activationName(act neatmath.NodeActivationType) string {
	for name, a := range activationNames {
		if a == act {
			return name
		}
	}
	return "tanh"
}
