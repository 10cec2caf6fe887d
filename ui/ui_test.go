package ui

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func TestButtonRect(t *testing.T) {
	tests := []struct {
		id   ButtonID
		want rl.Rectangle
	}{
		{ButtonNext, rl.Rectangle{X: 850, Y: 225, Width: 100, Height: 50}},
		{ButtonPlay, rl.Rectangle{X: 850, Y: 275, Width: 100, Height: 50}},
		{ButtonReturn, rl.Rectangle{X: 850, Y: 325, Width: 100, Height: 50}},
	}

	for _, tt := range tests {
		t.Run(tt.id.String(), func(t *testing.T) {
			if got := ButtonRect(tt.id, 800, 600); got != tt.want {
				t.Errorf("ButtonRect(%v) = %+v, want %+v", tt.id, got, tt.want)
			}
		})
	}
}

func TestOverlayDefaults(t *testing.T) {
	reg := NewOverlayRegistry()

	for _, id := range []OverlayID{OverlaySpeciesColors, OverlayLeaderRadars, OverlayInspector} {
		if !reg.IsEnabled(id) {
			t.Errorf("%s should be enabled by default", id)
		}
	}
	if reg.IsEnabled(OverlayAllRadars) || reg.IsEnabled(OverlayCrashMarks) {
		t.Error("optional overlays should start disabled")
	}
}

func TestOverlayExclusive(t *testing.T) {
	reg := NewOverlayRegistry()

	if !reg.Toggle(OverlayAllRadars) {
		t.Fatal("toggle should enable all_radars")
	}
	if reg.IsEnabled(OverlayLeaderRadars) {
		t.Error("enabling all_radars should disable leader_radars")
	}

	// Disabling does not re-enable the excluded overlay
	reg.Toggle(OverlayAllRadars)
	if reg.IsEnabled(OverlayLeaderRadars) {
		t.Error("leader_radars should stay disabled")
	}
}

func TestOverlayHandleKeyPress(t *testing.T) {
	reg := NewOverlayRegistry()

	id, state, ok := reg.HandleKeyPress(rl.KeyC)
	if !ok || id != OverlayCrashMarks || !state {
		t.Errorf("HandleKeyPress(C) = (%s, %v, %v), want (crash_marks, true, true)", id, state, ok)
	}

	if _, _, ok := reg.HandleKeyPress(rl.KeyZ); ok {
		t.Error("unbound key should not toggle anything")
	}
}

func TestUnknownOverlay(t *testing.T) {
	reg := NewOverlayRegistry()
	if reg.Toggle("missing") {
		t.Error("unknown overlay should not toggle")
	}
	if reg.IsEnabled("missing") {
		t.Error("unknown overlay should report disabled")
	}
}

func TestActivationColor(t *testing.T) {
	if got := activationColor(0); got != ColorNodeInactive {
		t.Errorf("zero activation: got %v", got)
	}
	if got := activationColor(2); got.R != 255 || got.B != 30 {
		t.Errorf("saturated positive: got %v", got)
	}
	if got := activationColor(-1); got.B != 255 || got.R != 30 {
		t.Errorf("saturated negative: got %v", got)
	}
}

func TestNetworkOverlayOffByDefault(t *testing.T) {
	reg := NewOverlayRegistry()
	if reg.IsEnabled(OverlayNetwork) {
		t.Error("network overlay should start disabled")
	}
	if id, state, ok := reg.HandleKeyPress(rl.KeyN); !ok || id != OverlayNetwork || !state {
		t.Errorf("N should enable the network overlay, got %v/%v/%v", id, state, ok)
	}
}
