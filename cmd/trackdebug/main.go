// Track debug tool - renders every catalogue map with a car at its start
// pose, its radars and its footprint to PNG files for inspection.
//
// Usage: go run ./cmd/trackdebug -out debug/
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/carsim/car"
	"github.com/pthm-cable/carsim/config"
	"github.com/pthm-cable/carsim/renderer"
	"github.com/pthm-cable/carsim/track"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	outDir := flag.String("out", "debug", "Output directory for PNGs")
	ticks := flag.Int("ticks", 1, "Updates to drive straight before capturing")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	maps, err := track.LoadInfo(cfg.Track.InfoFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load catalogue: %v\n", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(*outDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	width, height := int32(cfg.Screen.MapWidth), int32(cfg.Screen.MapHeight)

	// Initialize raylib with hidden window
	rl.SetConfigFlags(rl.FlagWindowHidden)
	rl.InitWindow(width, height, "Track Debug")
	defer rl.CloseWindow()

	target := rl.LoadRenderTexture(width, height)
	defer rl.UnloadRenderTexture(target)

	tracks := renderer.NewTrackRenderer()
	defer tracks.Unload()

	baseDir := filepath.Dir(cfg.Track.InfoFile)
	failed := false
	for i, info := range maps {
		surface, err := track.Load(track.ResolvePath(baseDir, info.File), cfg.Screen.MapWidth, cfg.Screen.MapHeight, cfg.Derived.BoundaryColor)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Map %d: %v\n", i, err)
			failed = true
			continue
		}

		params := car.ParamsFromConfig(cfg.Car, info.CarWidth, info.CarHeight)
		c := car.New(params, float64(info.StartX), float64(info.StartY))
		for t := 0; t < *ticks && c.Alive; t++ {
			c.Update(surface)
		}

		tracks.SetSurface(surface)

		rl.BeginTextureMode(target)
		rl.ClearBackground(rl.White)
		tracks.Draw()
		renderer.DrawCar(c, rl.Color{R: 230, G: 60, B: 60, A: 255})
		renderer.DrawRadars(c)
		renderer.DrawFootprint(c)
		rl.EndTextureMode()

		// Get image from texture and flip it (OpenGL convention)
		img := rl.LoadImageFromTexture(target.Texture)
		rl.ImageFlipVertical(img)

		name := strings.TrimSuffix(filepath.Base(info.File), filepath.Ext(info.File))
		outPath := filepath.Join(*outDir, fmt.Sprintf("%02d_%s.png", i, name))
		success := rl.ExportImage(*img, outPath)
		rl.UnloadImage(img)

		if !success {
			fmt.Fprintf(os.Stderr, "Map %d: failed to export %s\n", i, outPath)
			failed = true
			continue
		}
		status := "alive"
		if !c.Alive {
			status = "crashed"
		}
		fmt.Printf("Map %d rendered to: %s (car %s after %d ticks, radars %v)\n", i, outPath, status, c.Ticks, radarLengths(c))
	}

	if failed {
		os.Exit(1)
	}
}

func radarLengths(c *car.Car) []int {
	out := make([]int, len(c.Radars))
	for i, r := range c.Radars {
		out[i] = r.Length
	}
	return out
}
