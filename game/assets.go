package game

import (
	"fmt"

	"github.com/pthm-cable/carsim/car"
	"github.com/pthm-cable/carsim/config"
	"github.com/pthm-cable/carsim/track"
)

// mapAssets is one catalogue map loaded at the logical resolution.
type mapAssets struct {
	info    track.MapInfo
	surface *track.Surface
	params  car.Params
	start   car.Vec2
}

// loadMap decodes info's image and derives the car parameters for it.
func loadMap(cfg *config.Config, baseDir string, info track.MapInfo) (*mapAssets, error) {
	path := track.ResolvePath(baseDir, info.File)
	surface, err := track.Load(path, cfg.Screen.MapWidth, cfg.Screen.MapHeight, cfg.Derived.BoundaryColor)
	if err != nil {
		return nil, fmt.Errorf("loading map %s: %w", info.File, err)
	}

	return &mapAssets{
		info:    info,
		surface: surface,
		params:  car.ParamsFromConfig(cfg.Car, info.CarWidth, info.CarHeight),
		start:   car.Vec2{X: float64(info.StartX), Y: float64(info.StartY)},
	}, nil
}

// previewCar returns a car at the map's start pose.
func (m *mapAssets) previewCar() *car.Car {
	return car.New(m.params, m.start.X, m.start.Y)
}
