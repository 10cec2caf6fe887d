package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// OverlayID uniquely identifies an overlay.
type OverlayID string

// Standard overlay IDs.
const (
	OverlaySpeciesColors OverlayID = "species_colors"
	OverlayLeaderRadars  OverlayID = "leader_radars"
	OverlayAllRadars     OverlayID = "all_radars"
	OverlayCrashMarks    OverlayID = "crash_marks"
	OverlayInspector     OverlayID = "inspector"
	OverlayPerf          OverlayID = "perf"
	OverlayNetwork       OverlayID = "network"
)

// OverlayDescriptor defines an overlay that can be toggled.
type OverlayDescriptor struct {
	ID          OverlayID   // Unique identifier
	Name        string      // Display name
	Description string      // What this overlay shows
	Key         int32       // Keyboard key to toggle (0 = no key)
	KeyLabel    string      // Key label for display (e.g., "S", "V")
	Default     bool        // Enabled at start
	Exclusive   []OverlayID // Other overlays to disable when this is enabled
}

// OverlayRegistry manages overlay state and metadata.
type OverlayRegistry struct {
	descriptors []OverlayDescriptor
	byID        map[OverlayID]OverlayDescriptor
	enabled     map[OverlayID]bool
}

// NewOverlayRegistry creates a registry with default overlays.
func NewOverlayRegistry() *OverlayRegistry {
	reg := &OverlayRegistry{
		byID:    make(map[OverlayID]OverlayDescriptor),
		enabled: make(map[OverlayID]bool),
	}
	reg.registerDefaults()
	return reg
}

// registerDefaults adds standard overlays.
func (r *OverlayRegistry) registerDefaults() {
	r.Register(OverlayDescriptor{
		ID:          OverlaySpeciesColors,
		Name:        "Species Colors",
		Description: "Tint cars by species",
		Key:         rl.KeyS,
		KeyLabel:    "S",
		Default:     true,
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayLeaderRadars,
		Name:        "Leader Radars",
		Description: "Radars and footprint of the leading car",
		Key:         rl.KeyL,
		KeyLabel:    "L",
		Default:     true,
		Exclusive:   []OverlayID{OverlayAllRadars},
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayAllRadars,
		Name:        "All Radars",
		Description: "Radars of every living car",
		Key:         rl.KeyR,
		KeyLabel:    "R",
		Exclusive:   []OverlayID{OverlayLeaderRadars},
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayCrashMarks,
		Name:        "Crash Marks",
		Description: "Crash points remembered by each car",
		Key:         rl.KeyC,
		KeyLabel:    "C",
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayInspector,
		Name:        "Inspector",
		Description: "Leading car readout",
		Key:         rl.KeyI,
		KeyLabel:    "I",
		Default:     true,
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayPerf,
		Name:        "Tick Timing",
		Description: "Per-phase tick timing",
		Key:         rl.KeyP,
		KeyLabel:    "P",
		Exclusive:   []OverlayID{OverlayInspector},
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayNetwork,
		Name:        "Leader Network",
		Description: "Network topology of the leading car",
		Key:         rl.KeyN,
		KeyLabel:    "N",
	})
}

// Register adds an overlay to the registry.
func (r *OverlayRegistry) Register(desc OverlayDescriptor) {
	r.descriptors = append(r.descriptors, desc)
	r.byID[desc.ID] = desc
	r.enabled[desc.ID] = desc.Default
}

// Toggle switches an overlay on/off and handles exclusivity.
func (r *OverlayRegistry) Toggle(id OverlayID) bool {
	if _, ok := r.byID[id]; !ok {
		return false
	}
	newState := !r.enabled[id]
	r.SetEnabled(id, newState)
	return newState
}

// SetEnabled explicitly sets an overlay's state.
func (r *OverlayRegistry) SetEnabled(id OverlayID, enabled bool) {
	desc, ok := r.byID[id]
	if !ok {
		return
	}

	r.enabled[id] = enabled

	// If enabling, disable exclusive overlays
	if enabled {
		for _, excl := range desc.Exclusive {
			r.enabled[excl] = false
		}
	}
}

// IsEnabled returns whether an overlay is active.
func (r *OverlayRegistry) IsEnabled(id OverlayID) bool {
	return r.enabled[id]
}

// All returns all registered overlays in registration order.
func (r *OverlayRegistry) All() []OverlayDescriptor {
	return r.descriptors
}

// HandleKeyPress checks if a key corresponds to an overlay toggle.
// Returns the overlay ID and new state if a toggle occurred.
func (r *OverlayRegistry) HandleKeyPress(key int32) (OverlayID, bool, bool) {
	for _, desc := range r.descriptors {
		if desc.Key == key {
			newState := r.Toggle(desc.ID)
			return desc.ID, newState, true
		}
	}
	return "", false, false
}

// EnabledOverlays returns a list of currently enabled overlay IDs.
func (r *OverlayRegistry) EnabledOverlays() []OverlayID {
	var result []OverlayID
	for _, desc := range r.descriptors {
		if r.enabled[desc.ID] {
			result = append(result, desc.ID)
		}
	}
	return result
}
