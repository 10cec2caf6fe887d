package ui

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/carsim/neural"
)

// Network diagram colors.
var (
	ColorNodeInactive = rl.Color{R: 60, G: 60, B: 60, A: 255}
	ColorEdgePositive = rl.Color{R: 200, G: 80, B: 80, A: 100}
	ColorEdgeNegative = rl.Color{R: 80, G: 80, B: 200, A: 100}
	ColorEdgeDisabled = rl.Color{R: 150, G: 150, B: 150, A: 60}
	ColorLabelDim     = rl.Color{R: 120, G: 120, B: 120, A: 255}
	ColorDiagramBg    = rl.Color{R: 255, G: 255, B: 255, A: 200}
)

// NetworkData is one network to draw. Inputs are the current sensor values,
// indexed in input-node order.
type NetworkData struct {
	Topology     neural.Topology
	Inputs       []float64
	InputLabels  []string
	OutputLabels []string
}

// NetworkPanel draws a layered network diagram in a fixed box.
type NetworkPanel struct {
	x, y, width, height int32
}

// NewNetworkPanel creates a diagram box.
func NewNetworkPanel(x, y, width, height int32) *NetworkPanel {
	return &NetworkPanel{x: x, y: y, width: width, height: height}
}

// Draw renders the network with its layers left to right.
func (p *NetworkPanel) Draw(data NetworkData) {
	rl.DrawRectangle(p.x, p.y, p.width, p.height, ColorDiagramBg)
	rl.DrawRectangleLines(p.x, p.y, p.width, p.height, ColorLabelDim)

	topo := data.Topology
	if len(topo.Nodes) == 0 || topo.Layers == 0 {
		rl.DrawText("No network data", p.x+10, p.y+10, 14, ColorLabelDim)
		return
	}

	positions := p.layout(topo)
	nodeRadius := float32(5)

	for _, l := range topo.Links {
		from, okFrom := positions[l.From]
		to, okTo := positions[l.To]
		if !okFrom || !okTo {
			continue
		}
		drawEdge(from, to, l.Weight, l.Enabled)
	}

	input, output := 0, 0
	for _, n := range topo.Nodes {
		pos := positions[n.ID]
		switch n.Kind {
		case neural.NodeInput:
			var activation float64
			if input < len(data.Inputs) {
				activation = data.Inputs[input]
			}
			drawNode(pos, nodeRadius, activation)
			if input < len(data.InputLabels) {
				rl.DrawText(data.InputLabels[input], int32(pos.X+nodeRadius)+3, int32(pos.Y)-12, 10, ColorLabelDim)
			}
			input++
		case neural.NodeOutput:
			drawNode(pos, nodeRadius+2, 0)
			if output < len(data.OutputLabels) {
				label := data.OutputLabels[output]
				w := rl.MeasureText(label, 10)
				rl.DrawText(label, int32(pos.X-nodeRadius)-w-4, int32(pos.Y)-5, 10, ColorLabelDim)
			}
			output++
		default:
			drawNode(pos, nodeRadius, 0)
		}
	}
}

// layout spaces layers evenly across the box and nodes evenly within a layer.
func (p *NetworkPanel) layout(topo neural.Topology) map[int]rl.Vector2 {
	perLayer := make([][]int, topo.Layers)
	for _, n := range topo.Nodes {
		perLayer[n.Layer] = append(perLayer[n.Layer], n.ID)
	}

	const margin = 15
	colWidth := float32(p.width-2*margin) / float32(max(topo.Layers-1, 1))
	usable := float32(p.height - 2*margin)

	positions := make(map[int]rl.Vector2, len(topo.Nodes))
	for layer, ids := range perLayer {
		spacing := usable / float32(len(ids)+1)
		for i, id := range ids {
			positions[id] = rl.Vector2{
				X: float32(p.x+margin) + float32(layer)*colWidth,
				Y: float32(p.y+margin) + float32(i+1)*spacing,
			}
		}
	}
	return positions
}

// drawNode renders a single neuron node.
func drawNode(pos rl.Vector2, radius float32, activation float64) {
	rl.DrawCircleV(pos, radius, activationColor(activation))
	rl.DrawCircleLinesV(pos, radius, rl.Color{R: 100, G: 100, B: 100, A: 255})
}

// drawEdge renders a connection between nodes.
func drawEdge(from, to rl.Vector2, weight float64, enabled bool) {
	if !enabled {
		rl.DrawLineEx(from, to, 0.5, ColorEdgeDisabled)
		return
	}

	w := math.Abs(weight)
	thickness := float32(min(max(w*1.5, 0.5), 3))

	color := ColorEdgePositive
	if weight < 0 {
		color = ColorEdgeNegative
	}
	color.A = uint8(min(40+int(w*40), 150))

	rl.DrawLineEx(from, to, thickness, color)
}

// activationColor returns a color based on activation value.
// Negative = blue, Zero = gray, Positive = red.
func activationColor(activation float64) rl.Color {
	if activation == 0 {
		return ColorNodeInactive
	}
	t := float32(min(math.Abs(activation), 1))
	if activation > 0 {
		return rl.Color{R: uint8(60 + t*195), G: uint8(60 - t*30), B: uint8(60 - t*30), A: 255}
	}
	return rl.Color{R: uint8(60 - t*30), G: uint8(60 - t*30), B: uint8(60 + t*195), A: 255}
}
