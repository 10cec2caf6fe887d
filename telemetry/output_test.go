package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/carsim/config"
)

func TestNewOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if om != nil {
		t.Fatal("expected nil manager for empty dir")
	}

	// A nil manager accepts writes and does nothing.
	if err := om.WriteGeneration(GenerationStats{}); err != nil {
		t.Errorf("WriteGeneration on nil manager: %v", err)
	}
	if err := om.WriteBookmark(Bookmark{}); err != nil {
		t.Errorf("WriteBookmark on nil manager: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Errorf("Close on nil manager: %v", err)
	}
	if om.Dir() != "" {
		t.Errorf("expected empty dir, got %q", om.Dir())
	}
}

func TestOutputManagerWritesGenerations(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager failed: %v", err)
	}

	rows := []GenerationStats{
		{Generation: 1, Map: "map1", Ticks: 40, Outcome: "all_dead", Population: 30, FitnessMax: 12.5},
		{Generation: 2, Map: "map1", Ticks: 1200, Outcome: "tick_budget", Population: 30, Survivors: 2, FitnessMax: 900},
	}
	for _, r := range rows {
		if err := om.WriteGeneration(r); err != nil {
			t.Fatalf("WriteGeneration failed: %v", err)
		}
	}
	if err := om.WriteBookmark(Bookmark{Type: BookmarkFirstSurvivor, Generation: 2, Description: "2 cars survived"}); err != nil {
		t.Fatalf("WriteBookmark failed: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, "generations.csv"))
	if err != nil {
		t.Fatalf("opening generations.csv: %v", err)
	}
	defer f.Close()

	var got []GenerationStats
	if err := gocsv.UnmarshalFile(f, &got); err != nil {
		t.Fatalf("reading generations.csv: %v", err)
	}
	if len(got) != len(rows) {
		t.Fatalf("expected %d rows, got %d", len(rows), len(got))
	}
	for i := range rows {
		if got[i] != rows[i] {
			t.Errorf("row %d: got %+v, want %+v", i, got[i], rows[i])
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "bookmarks.csv"))
	if err != nil {
		t.Fatalf("reading bookmarks.csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 || lines[0] != "type,generation,description" {
		t.Errorf("unexpected bookmarks.csv:\n%s", data)
	}
}

func TestOutputManagerWriteConfig(t *testing.T) {
	om, err := NewOutputManager(t.TempDir())
	if err != nil {
		t.Fatalf("NewOutputManager failed: %v", err)
	}
	defer om.Close()

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		t.Fatalf("WriteConfig failed: %v", err)
	}

	reloaded, err := config.Load(filepath.Join(om.Dir(), "config.yaml"))
	if err != nil {
		t.Fatalf("reloading snapshot: %v", err)
	}
	if reloaded.Simulation.MaxTicks != cfg.Simulation.MaxTicks {
		t.Errorf("snapshot max_ticks = %d, want %d", reloaded.Simulation.MaxTicks, cfg.Simulation.MaxTicks)
	}
}
