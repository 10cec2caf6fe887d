package ui

import (
	"fmt"
	"math"

	"github.com/pthm-cable/carsim/car"
)

// LeaderData is what the inspector shows about the leading car.
type LeaderData struct {
	Car     *car.Car
	Index   int // genome index
	Fitness float64
}

// Inspector renders the descriptor-driven readout of the leading car.
type Inspector struct {
	renderer *Renderer
	x, y     int32
	width    int32
	sections []SectionDescriptor
}

// NewInspector creates an inspector with one radar bar per sensor, each
// scaled to maxRadar.
func NewInspector(x, y, width int32, sensors, maxRadar int) *Inspector {
	return &Inspector{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		sections: leaderSections(sensors, maxRadar),
	}
}

func leaderData(data any) LeaderData {
	d, _ := data.(LeaderData)
	return d
}

// leaderSections builds the inspector layout.
func leaderSections(sensors, maxRadar int) []SectionDescriptor {
	state := SectionDescriptor{
		ID:    "leader",
		Title: "Leader",
		Fields: []FieldDescriptor{
			{ID: "index", Label: "Car", Widget: WidgetText, TextGetter: func(d any) string {
				return fmt.Sprintf("#%d", leaderData(d).Index)
			}},
			{ID: "fitness", Label: "Fitness", Widget: WidgetText, Format: "%.0f", Getter: func(d any) float32 {
				return float32(leaderData(d).Fitness)
			}},
			{ID: "speed", Label: "Speed", Widget: WidgetText, Format: "%.0f", Getter: func(d any) float32 {
				return float32(leaderData(d).Car.Speed)
			}},
			{ID: "heading", Label: "Heading", Widget: WidgetText, Format: "%.0f", Getter: func(d any) float32 {
				return float32(math.Mod(math.Mod(leaderData(d).Car.Angle, 360)+360, 360))
			}},
			{ID: "distance", Label: "Distance", Widget: WidgetText, Format: "%.0f", Getter: func(d any) float32 {
				return float32(leaderData(d).Car.Distance)
			}},
			{ID: "crashes", Label: "Crashes", Widget: WidgetText, TextGetter: func(d any) string {
				return fmt.Sprintf("%d", leaderData(d).Car.CrashMemory().Len())
			}},
		},
	}

	radars := SectionDescriptor{
		ID:    "radars",
		Title: "Radars",
		Visible: func(d any) bool {
			return len(leaderData(d).Car.Radars) > 0
		},
	}
	for i := 0; i < sensors; i++ {
		radars.Fields = append(radars.Fields, FieldDescriptor{
			ID:     fmt.Sprintf("radar_%d", i),
			Label:  fmt.Sprintf("R%d", i),
			Widget: WidgetBar,
			Range:  FieldRange{Min: 0, Max: float32(maxRadar)},
			Visible: func(d any) bool {
				return i < len(leaderData(d).Car.Radars)
			},
			Getter: func(d any) float32 {
				return float32(leaderData(d).Car.Radars[i].Length)
			},
		})
	}

	return []SectionDescriptor{state, radars}
}

// Draw renders the inspector for data and returns the Y below it.
// Nothing is drawn without a car.
func (ins *Inspector) Draw(data LeaderData) int32 {
	if data.Car == nil {
		return ins.y
	}

	r := ins.renderer
	x := ins.x + r.Theme.Padding
	width := ins.width - r.Theme.Padding*2
	y := ins.y
	for _, sd := range ins.sections {
		y = r.DrawSection(x, y, sd, data, width)
	}
	return y
}
