// Package ui draws the side panel: the HUD, the navigation buttons and the
// descriptor-driven readouts for the leading car and the species.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// WidgetType specifies how a field should be rendered.
type WidgetType int

const (
	WidgetText        WidgetType = iota // Plain text with format string
	WidgetBar                           // Progress bar over Range
	WidgetColorSwatch                   // Color preview square
	WidgetSection                       // Section header
	WidgetSpacer                        // Vertical spacing
)

// FieldRange defines the value range for bar widgets.
type FieldRange struct {
	Min float32
	Max float32
}

// FieldDescriptor defines how to display a single piece of data.
type FieldDescriptor struct {
	ID          string             // Unique identifier for the field
	Label       string             // Display label
	Widget      WidgetType         // How to render
	Format      string             // Printf format for text (e.g., "%.2f")
	Range       FieldRange         // Value range for bars
	Visible     func(any) bool     // Optional visibility check (nil = always visible)
	Getter      func(any) float32  // Value extractor (for numeric fields)
	TextGetter  func(any) string   // Value extractor (for text fields)
	ColorGetter func(any) rl.Color // Color extractor (for color swatches)
}

// SectionDescriptor defines a group of fields with a header.
type SectionDescriptor struct {
	ID      string            // Unique identifier
	Title   string            // Section header text
	Fields  []FieldDescriptor // Fields in this section
	Visible func(any) bool    // Optional visibility check for entire section
}

// Theme holds UI styling constants.
type Theme struct {
	PanelBg        rl.Color
	TextColor      rl.Color
	SectionHeader  rl.Color
	LabelColor     rl.Color
	ValueColor     rl.Color
	BarBg          rl.Color
	BarFill        rl.Color
	NextButton     rl.Color
	PlayButton     rl.Color
	ReturnButton   rl.Color
	Padding        int32
	LineHeight     int32
	LabelWidth     int32
	BarHeight      int32
	FontSize       int32
	HeaderFontSize int32
	HUDFontSize    int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:        rl.Color{R: 200, G: 200, B: 200, A: 255},
		TextColor:      rl.Black,
		SectionHeader:  rl.Color{R: 40, G: 40, B: 120, A: 255},
		LabelColor:     rl.Color{R: 50, G: 50, B: 50, A: 255},
		ValueColor:     rl.Black,
		BarBg:          rl.Color{R: 160, G: 160, B: 160, A: 255},
		BarFill:        rl.Color{R: 60, G: 110, B: 180, A: 255},
		NextButton:     rl.Color{R: 0, G: 0, B: 255, A: 255},
		PlayButton:     rl.Color{R: 0, G: 255, B: 0, A: 255},
		ReturnButton:   rl.Color{R: 255, G: 0, B: 0, A: 255},
		Padding:        10,
		LineHeight:     14,
		LabelWidth:     60,
		BarHeight:      10,
		FontSize:       10,
		HeaderFontSize: 12,
		HUDFontSize:    30,
	}
}
