package neural

import (
	"sort"

	"github.com/yaricom/goNEAT/v4/neat/genetics"
	"github.com/yaricom/goNEAT/v4/neat/network"
)

// NodeKind is the role of a node in a topology.
type NodeKind uint8

const (
	NodeInput NodeKind = iota
	NodeHidden
	NodeOutput
)

// TopologyNode is one node placed in a layer. Inputs are layer 0 and
// outputs share the last layer.
type TopologyNode struct {
	ID    int
	Kind  NodeKind
	Layer int
}

// TopologyLink is one connection gene.
type TopologyLink struct {
	From, To int
	Weight   float64
	Enabled  bool
}

// Topology is a drawable snapshot of a genome.
type Topology struct {
	Nodes  []TopologyNode // ordered by layer, then ID
	Links  []TopologyLink
	Layers int
}

// NewTopology lays out genome's nodes by longest path from the inputs.
func NewTopology(genome *genetics.Genome) Topology {
	if genome == nil {
		return Topology{}
	}

	kinds := make(map[int]NodeKind, len(genome.Nodes))
	for _, n := range genome.Nodes {
		switch n.NeuronType {
		case network.InputNeuron, network.BiasNeuron:
			kinds[n.Id] = NodeInput
		case network.OutputNeuron:
			kinds[n.Id] = NodeOutput
		default:
			kinds[n.Id] = NodeHidden
		}
	}

	links := make([]TopologyLink, 0, len(genome.Genes))
	for _, g := range genome.Genes {
		links = append(links, TopologyLink{
			From:    g.Link.InNode.Id,
			To:      g.Link.OutNode.Id,
			Weight:  g.Link.ConnectionWeight,
			Enabled: g.IsEnabled,
		})
	}

	// Relax hidden layers; links are feed-forward so this settles within len(Nodes) passes.
	layer := make(map[int]int, len(kinds))
	for pass := 0; pass < len(kinds); pass++ {
		changed := false
		for _, l := range links {
			if kinds[l.To] != NodeHidden {
				continue
			}
			if want := layer[l.From] + 1; want > layer[l.To] {
				layer[l.To] = want
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	last := 1
	for id, k := range kinds {
		if k == NodeHidden {
			last = max(last, layer[id]+1)
		}
	}

	t := Topology{Links: links, Layers: last + 1}
	for id, k := range kinds {
		n := TopologyNode{ID: id, Kind: k}
		switch k {
		case NodeHidden:
			n.Layer = max(layer[id], 1)
		case NodeOutput:
			n.Layer = last
		}
		t.Nodes = append(t.Nodes, n)
	}
	sort.Slice(t.Nodes, func(i, j int) bool {
		if t.Nodes[i].Layer != t.Nodes[j].Layer {
			return t.Nodes[i].Layer < t.Nodes[j].Layer
		}
		return t.Nodes[i].ID < t.Nodes[j].ID
	})
	return t
}
