package neural

import (
	"fmt"
	"math/rand"

	"github.com/yaricom/goNEAT/v4/neat/genetics"
	neatmath "github.com/yaricom/goNEAT/v4/neat/math"
	"github.com/yaricom/goNEAT/v4/neat/network"
)

// fallbackSteps is used when the network cannot report its depth, e.g. with recurrent links.
const fallbackSteps = 5

// Brain wraps a goNEAT network built from a genome for runtime evaluation.
// Each Activate is a single feed-forward pass for one tick; nothing carries
// over between ticks.
type Brain struct {
	Genome  *genetics.Genome
	network *network.Network
	inputs  int
	steps   int // propagation steps per tick
}

// NewBrain builds the phenotype network of genome.
func NewBrain(genome *genetics.Genome) (*Brain, error) {
	phenotype, err := genome.Genesis(genome.Id)
	if err != nil {
		return nil, fmt.Errorf("failed to build network from genome %d: %w", genome.Id, err)
	}

	inputs := 0
	for _, node := range genome.Nodes {
		if node.NeuronType == network.InputNeuron {
			inputs++
		}
	}

	steps, err := phenotype.MaxActivationDepth()
	if err != nil || steps < 1 {
		steps = fallbackSteps
	}

	return &Brain{
		Genome:  genome,
		network: phenotype,
		inputs:  inputs,
		steps:   steps,
	}, nil
}

// Activate feeds one tick's sensor readings through the network and returns
// one score per output node. Two calls with the same inputs give the same scores.
func (b *Brain) Activate(inputs []float64) ([]float64, error) {
	if len(inputs) != b.inputs {
		return nil, fmt.Errorf("expected %d inputs, got %d", b.inputs, len(inputs))
	}
	if err := b.network.LoadSensors(inputs); err != nil {
		return nil, fmt.Errorf("failed to load sensors: %w", err)
	}

	// Readings must reach the outputs through the longest hidden chain.
	for range b.steps {
		if _, err := b.network.Activate(); err != nil {
			return nil, fmt.Errorf("activation failed: %w", err)
		}
	}
	outputs := b.network.ReadOutputs()

	// Drop this tick's activations so the next tick starts from rest.
	if _, err := b.network.Flush(); err != nil {
		return nil, fmt.Errorf("flush failed: %w", err)
	}
	return outputs, nil
}

// NodeCount returns the number of nodes in the network.
func (b *Brain) NodeCount() int {
	return b.network.NodeCount()
}

// LinkCount returns the number of links in the network.
func (b *Brain) LinkCount() int {
	return b.network.LinkCount()
}

// NewStartGenome creates a genome with cfg.Inputs linear input nodes and
// cfg.Outputs output nodes. Each input-output pair is linked with
// probability cfg.InitialConnectionProb, and every output gets at least one
// link so the network always produces a reading.
// Innovation numbers 1..Inputs*Outputs are reserved for the direct links.
func NewStartGenome(id int, cfg *Config, rng *rand.Rand) *genetics.Genome {
	nIn, nOut := cfg.Inputs, cfg.Outputs
	nodes := make([]*network.NNode, 0, nIn+nOut)

	// Input nodes (IDs 1 to nIn)
	for i := 1; i <= nIn; i++ {
		node := network.NewNNode(i, network.InputNeuron)
		node.ActivationType = neatmath.LinearActivation
		nodes = append(nodes, node)
	}

	// Output nodes (IDs nIn+1 to nIn+nOut)
	for j := 1; j <= nOut; j++ {
		node := network.NewNNode(nIn+j, network.OutputNeuron)
		node.ActivationType = cfg.OutputActivation
		nodes = append(nodes, node)
	}

	genes := make([]*genetics.Gene, 0, nIn*nOut)
	for j := 0; j < nOut; j++ {
		connected := false
		for i := 0; i < nIn; i++ {
			if rng.Float64() >= cfg.InitialConnectionProb {
				continue
			}
			genes = append(genes, directGene(nodes[i], nodes[nIn+j], nIn, rng.NormFloat64()))
			connected = true
		}
		if !connected {
			i := rng.Intn(nIn)
			genes = append(genes, directGene(nodes[i], nodes[nIn+j], nIn, rng.NormFloat64()))
		}
	}

	return genetics.NewGenome(id, nil, nodes, genes)
}

// directGene links input in to output out under its reserved innovation number.
func directGene(in, out *network.NNode, nIn int, weight float64) *genetics.Gene {
	innov := int64((out.Id-nIn-1)*nIn + in.Id)
	return genetics.NewGeneWithTrait(nil, weight, in, out, false, innov, 0)
}
