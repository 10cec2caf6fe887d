package neural

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/yaricom/goNEAT/v4/neat/genetics"
	"github.com/yaricom/goNEAT/v4/neat/network"
)

// maxLinkAttempts bounds the search for a new connection.
const maxLinkAttempts = 20

// GenomeIDGenerator hands out genome IDs and innovation numbers.
type GenomeIDGenerator struct {
	nextID       int
	nextInnovNum int64
}

// NewGenomeIDGenerator creates a generator whose innovation numbers start
// after the firstInnov-1 numbers reserved for start genomes.
func NewGenomeIDGenerator(firstInnov int64) *GenomeIDGenerator {
	return &GenomeIDGenerator{
		nextID:       1,
		nextInnovNum: firstInnov,
	}
}

// NextID returns the next unique genome ID.
func (g *GenomeIDGenerator) NextID() int {
	id := g.nextID
	g.nextID++
	return id
}

// NextInnovation returns the next innovation number.
func (g *GenomeIDGenerator) NextInnovation() int64 {
	num := g.nextInnovNum
	g.nextInnovNum++
	return num
}

// CrossoverGenomes performs NEAT crossover. Genes are aligned by innovation
// number; matching genes come from either parent at random, disjoint and
// excess genes from the fitter parent (from both, at random, on a tie).
// A gene disabled in either parent stays disabled with probability 0.75.
func CrossoverGenomes(parent1, parent2 *genetics.Genome, fitness1, fitness2 float64, childID int, rng *rand.Rand) (*genetics.Genome, error) {
	if parent1 == nil || parent2 == nil {
		return nil, fmt.Errorf("cannot crossover nil genomes")
	}

	primary, secondary := parent1, parent2
	if fitness2 > fitness1 {
		primary, secondary = parent2, parent1
	}

	primaryGenes := genesByInnovation(primary)
	secondaryGenes := genesByInnovation(secondary)

	innovations := make([]int64, 0, len(primaryGenes)+len(secondaryGenes))
	for innov := range primaryGenes {
		innovations = append(innovations, innov)
	}
	for innov := range secondaryGenes {
		if _, ok := primaryGenes[innov]; !ok {
			innovations = append(innovations, innov)
		}
	}
	sort.Slice(innovations, func(i, j int) bool { return innovations[i] < innovations[j] })

	childNodeMap := make(map[int]*network.NNode)
	for _, node := range primary.Nodes {
		childNodeMap[node.Id] = copyNode(node)
	}
	for _, node := range secondary.Nodes {
		if _, exists := childNodeMap[node.Id]; !exists {
			childNodeMap[node.Id] = copyNode(node)
		}
	}

	childGenes := make([]*genetics.Gene, 0, len(innovations))
	for _, innov := range innovations {
		pGene := primaryGenes[innov]
		sGene := secondaryGenes[innov]

		var selected *genetics.Gene
		enabled := true
		switch {
		case pGene != nil && sGene != nil:
			selected = pGene
			if rng.Float64() < 0.5 {
				selected = sGene
			}
			if (!pGene.IsEnabled || !sGene.IsEnabled) && rng.Float64() < 0.75 {
				enabled = false
			}
		case pGene != nil:
			selected = pGene
		case fitness1 == fitness2 && rng.Float64() < 0.5:
			selected = sGene
		}
		if selected == nil {
			continue
		}
		if !selected.IsEnabled {
			enabled = false
		}

		inNode := childNodeMap[selected.Link.InNode.Id]
		outNode := childNodeMap[selected.Link.OutNode.Id]
		if inNode == nil || outNode == nil {
			continue
		}
		child := genetics.NewGeneWithTrait(
			nil,
			selected.Link.ConnectionWeight,
			inNode,
			outNode,
			selected.Link.IsRecurrent,
			selected.InnovationNum,
			selected.MutationNum,
		)
		child.IsEnabled = enabled
		childGenes = append(childGenes, child)
	}

	childNodes := make([]*network.NNode, 0, len(childNodeMap))
	for _, node := range childNodeMap {
		childNodes = append(childNodes, node)
	}
	sort.Slice(childNodes, func(i, j int) bool { return childNodes[i].Id < childNodes[j].Id })

	return genetics.NewGenome(childID, nil, childNodes, childGenes), nil
}

func genesByInnovation(g *genetics.Genome) map[int64]*genetics.Gene {
	m := make(map[int64]*genetics.Gene, len(g.Genes))
	for _, gene := range g.Genes {
		m[gene.InnovationNum] = gene
	}
	return m
}

func copyNode(node *network.NNode) *network.NNode {
	newNode := network.NewNNode(node.Id, node.NeuronType)
	newNode.ActivationType = node.ActivationType
	return newNode
}

// CloneGenome creates a deep copy of a genome with a new ID.
func CloneGenome(genome *genetics.Genome, newID int) (*genetics.Genome, error) {
	if genome == nil {
		return nil, fmt.Errorf("cannot clone nil genome")
	}

	nodeMap := make(map[int]*network.NNode, len(genome.Nodes))
	newNodes := make([]*network.NNode, 0, len(genome.Nodes))
	for _, node := range genome.Nodes {
		newNode := copyNode(node)
		nodeMap[node.Id] = newNode
		newNodes = append(newNodes, newNode)
	}

	newGenes := make([]*genetics.Gene, 0, len(genome.Genes))
	for _, gene := range genome.Genes {
		inNode := nodeMap[gene.Link.InNode.Id]
		outNode := nodeMap[gene.Link.OutNode.Id]
		if inNode == nil || outNode == nil {
			continue
		}
		newGene := genetics.NewGeneWithTrait(
			nil,
			gene.Link.ConnectionWeight,
			inNode,
			outNode,
			gene.Link.IsRecurrent,
			gene.InnovationNum,
			gene.MutationNum,
		)
		newGene.IsEnabled = gene.IsEnabled
		newGenes = append(newGenes, newGene)
	}

	return genetics.NewGenome(newID, nil, newNodes, newGenes), nil
}

// Mutator applies structural and weight mutations to genomes.
type Mutator struct {
	cfg   *Config
	idGen *GenomeIDGenerator
	rng   *rand.Rand
}

// NewMutator creates a mutator drawing IDs from idGen.
func NewMutator(cfg *Config, idGen *GenomeIDGenerator, rng *rand.Rand) *Mutator {
	return &Mutator{cfg: cfg, idGen: idGen, rng: rng}
}

// Mutate applies each mutation with its configured probability, then
// reconnects any output left without a live input link.
// Reports whether anything changed.
func (m *Mutator) Mutate(genome *genetics.Genome) bool {
	opts := m.cfg.NEAT
	mutated := false

	if m.rng.Float64() < opts.MutateLinkWeightsProb {
		m.mutateWeights(genome)
		mutated = true
	}
	if m.rng.Float64() < opts.MutateAddNodeProb && m.addNode(genome) {
		mutated = true
	}
	if m.rng.Float64() < opts.MutateAddLinkProb && m.addLink(genome) {
		mutated = true
	}
	if m.rng.Float64() < opts.MutateToggleEnableProb && m.toggleEnable(genome) {
		mutated = true
	}

	if m.connectOutputs(genome) {
		mutated = true
	}
	return mutated
}

func (m *Mutator) mutateWeights(genome *genetics.Genome) {
	power := m.cfg.NEAT.WeightMutPower
	for _, gene := range genome.Genes {
		if m.rng.Float64() < m.cfg.WeightReplaceRate {
			gene.Link.ConnectionWeight = m.rng.NormFloat64()
		} else {
			gene.Link.ConnectionWeight += m.rng.NormFloat64() * power
		}
		gene.Link.ConnectionWeight = clampWeight(gene.Link.ConnectionWeight, m.cfg.WeightMaxValue)
	}
}

// clampWeight clamps a connection weight to [-limit, limit]; limit <= 0 disables it.
func clampWeight(w, limit float64) float64 {
	if limit <= 0 {
		return w
	}
	return math.Max(-limit, math.Min(limit, w))
}

// addNode splits a random enabled gene in two around a new hidden node.
func (m *Mutator) addNode(genome *genetics.Genome) bool {
	enabled := make([]*genetics.Gene, 0, len(genome.Genes))
	for _, gene := range genome.Genes {
		if gene.IsEnabled {
			enabled = append(enabled, gene)
		}
	}
	if len(enabled) == 0 {
		return false
	}

	split := enabled[m.rng.Intn(len(enabled))]
	split.IsEnabled = false

	maxNodeID := 0
	for _, node := range genome.Nodes {
		maxNodeID = max(maxNodeID, node.Id)
	}

	hidden := network.NewNNode(maxNodeID+1, network.HiddenNeuron)
	acts := m.cfg.HiddenActivators
	hidden.ActivationType = acts[m.rng.Intn(len(acts))]

	// old_in -> hidden keeps the signal, hidden -> old_out keeps the weight
	in := genetics.NewGeneWithTrait(nil, 1.0, split.Link.InNode, hidden, false, m.idGen.NextInnovation(), 0)
	out := genetics.NewGeneWithTrait(nil, split.Link.ConnectionWeight, hidden, split.Link.OutNode, false, m.idGen.NextInnovation(), 0)

	genome.Nodes = append(genome.Nodes, hidden)
	genome.Genes = append(genome.Genes, in, out)
	return true
}

// addLink connects two unconnected nodes without creating a cycle.
func (m *Mutator) addLink(genome *genetics.Genome) bool {
	var sources, targets []*network.NNode
	for _, node := range genome.Nodes {
		switch node.NeuronType {
		case network.InputNeuron, network.BiasNeuron:
			sources = append(sources, node)
		case network.OutputNeuron:
			targets = append(targets, node)
		case network.HiddenNeuron:
			sources = append(sources, node)
			targets = append(targets, node)
		}
	}
	if len(sources) == 0 || len(targets) == 0 {
		return false
	}

	existing := make(map[int64]bool, len(genome.Genes))
	for _, gene := range genome.Genes {
		existing[connectionKey(gene.Link.InNode.Id, gene.Link.OutNode.Id)] = true
	}

	for attempt := 0; attempt < maxLinkAttempts; attempt++ {
		source := sources[m.rng.Intn(len(sources))]
		target := targets[m.rng.Intn(len(targets))]

		if source.Id == target.Id || existing[connectionKey(source.Id, target.Id)] {
			continue
		}
		if createsCycle(genome, source.Id, target.Id) {
			continue
		}

		gene := genetics.NewGeneWithTrait(nil, m.rng.NormFloat64(), source, target, false, m.idGen.NextInnovation(), 0)
		genome.Genes = append(genome.Genes, gene)
		return true
	}
	return false
}

// connectionKey creates a unique key for a connection between two nodes.
func connectionKey(inID, outID int) int64 {
	return int64(inID)<<32 | int64(outID)
}

// createsCycle reports whether adding in -> out would close a loop,
// i.e. whether out already reaches in.
func createsCycle(genome *genetics.Genome, in, out int) bool {
	if in == out {
		return true
	}
	next := make(map[int][]int)
	for _, gene := range genome.Genes {
		next[gene.Link.InNode.Id] = append(next[gene.Link.InNode.Id], gene.Link.OutNode.Id)
	}

	visited := map[int]bool{out: true}
	stack := []int{out}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, to := range next[n] {
			if to == in {
				return true
			}
			if !visited[to] {
				visited[to] = true
				stack = append(stack, to)
			}
		}
	}
	return false
}

// toggleEnable flips a random gene, refusing to disable an output's last enabled link.
func (m *Mutator) toggleEnable(genome *genetics.Genome) bool {
	if len(genome.Genes) == 0 {
		return false
	}

	gene := genome.Genes[m.rng.Intn(len(genome.Genes))]
	if !gene.IsEnabled {
		gene.IsEnabled = true
		return true
	}

	outID := gene.Link.OutNode.Id
	for _, g := range genome.Genes {
		if g != gene && g.IsEnabled && g.Link.OutNode.Id == outID {
			gene.IsEnabled = false
			return true
		}
	}
	return false
}

// connectOutputs makes sure every output has an enabled link straight from
// an input, re-enabling one if possible and adding one otherwise.
func (m *Mutator) connectOutputs(genome *genetics.Genome) bool {
	var inputs []*network.NNode
	for _, node := range genome.Nodes {
		if node.NeuronType == network.InputNeuron {
			inputs = append(inputs, node)
		}
	}
	if len(inputs) == 0 {
		return false
	}

	changed := false
	for _, node := range genome.Nodes {
		if node.NeuronType != network.OutputNeuron {
			continue
		}

		var disabled *genetics.Gene
		live := false
		for _, gene := range genome.Genes {
			if gene.Link.OutNode.Id != node.Id || gene.Link.InNode.NeuronType != network.InputNeuron {
				continue
			}
			if gene.IsEnabled {
				live = true
				break
			}
			if disabled == nil {
				disabled = gene
			}
		}
		if live {
			continue
		}

		if disabled != nil {
			disabled.IsEnabled = true
		} else {
			in := inputs[m.rng.Intn(len(inputs))]
			innov := int64((node.Id-len(inputs)-1)*len(inputs) + in.Id)
			genome.Genes = append(genome.Genes, genetics.NewGeneWithTrait(nil, m.rng.NormFloat64(), in, node, false, innov, 0))
		}
		changed = true
	}
	return changed
}

// GenomeCompatibility calculates the compatibility distance between two genomes.
func GenomeCompatibility(g1, g2 *genetics.Genome, cfg *Config) float64 {
	if g1 == nil || g2 == nil {
		return math.MaxFloat64
	}
	opts := cfg.NEAT

	genes1 := genesByInnovation(g1)
	genes2 := genesByInnovation(g2)

	maxInnov1, maxInnov2 := int64(0), int64(0)
	for innov := range genes1 {
		maxInnov1 = max(maxInnov1, innov)
	}
	for innov := range genes2 {
		maxInnov2 = max(maxInnov2, innov)
	}

	matching, disjoint, excess := 0, 0, 0
	weightDiff := 0.0

	for innov, gene1 := range genes1 {
		if gene2, exists := genes2[innov]; exists {
			matching++
			weightDiff += math.Abs(gene1.Link.ConnectionWeight - gene2.Link.ConnectionWeight)
		} else if innov > maxInnov2 {
			excess++
		} else {
			disjoint++
		}
	}
	for innov := range genes2 {
		if _, exists := genes1[innov]; !exists {
			if innov > maxInnov1 {
				excess++
			} else {
				disjoint++
			}
		}
	}

	// Small genomes are not normalized
	n := float64(max(len(g1.Genes), len(g2.Genes)))
	if n < 20 {
		n = 1
	}

	avgWeightDiff := 0.0
	if matching > 0 {
		avgWeightDiff = weightDiff / float64(matching)
	}

	return (opts.ExcessCoeff*float64(excess)+opts.DisjointCoeff*float64(disjoint))/n +
		opts.MutdiffCoeff*avgWeightDiff
}
