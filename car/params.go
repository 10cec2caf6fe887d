// Package car implements one simulated car: kinematics, hull collision,
// ray sensors, crash memory and the reward it earns.
package car

import "github.com/pthm-cable/carsim/config"

// Params is the immutable per-map description every car of a generation shares.
// Width and Height are the footprint in pixels; the rest are kinematic,
// sensing and reward constants.
type Params struct {
	Width  int
	Height int

	InitialSpeed float64 // speed assigned on the first update
	MinSpeed     float64 // braking never goes below this
	SpeedStep    float64 // per-action speed change
	SteerStep    float64 // per-action heading change, degrees

	SensorOffsets []float64 // ray directions relative to heading, degrees
	MaxRadar      int       // ray length cap, pixels
	SensorScale   float64   // controller input = int(length / SensorScale)

	AvoidRadius    float64 // crash points closer than this bias the heading
	AvoidStep      float64 // degrees per unit of crash weight
	AvoidMaxWeight int     // crash weight cap

	DeathPenalty float64
	CrashBucket  float64 // grid size for crash keys; 0 keys on exact values
}

// DefaultParams returns the reference constants for a width x height footprint.
func DefaultParams(width, height int) Params {
	return Params{
		Width:          width,
		Height:         height,
		InitialSpeed:   20,
		MinSpeed:       12,
		SpeedStep:      2,
		SteerStep:      10,
		SensorOffsets:  []float64{-90, -45, 0, 45, 90},
		MaxRadar:       300,
		SensorScale:    30,
		AvoidRadius:    50,
		AvoidStep:      5,
		AvoidMaxWeight: 10,
		DeathPenalty:   1000,
	}
}

// ParamsFromConfig builds Params from the car section of the config.
func ParamsFromConfig(cc config.CarConfig, width, height int) Params {
	offsets := make([]float64, len(cc.SensorOffsets))
	copy(offsets, cc.SensorOffsets)
	return Params{
		Width:          width,
		Height:         height,
		InitialSpeed:   cc.InitialSpeed,
		MinSpeed:       cc.MinSpeed,
		SpeedStep:      cc.SpeedStep,
		SteerStep:      cc.SteerStep,
		SensorOffsets:  offsets,
		MaxRadar:       cc.MaxRadar,
		SensorScale:    cc.SensorScale,
		AvoidRadius:    cc.AvoidRadius,
		AvoidStep:      cc.AvoidStep,
		AvoidMaxWeight: cc.AvoidMaxWeight,
		DeathPenalty:   cc.DeathPenalty,
		CrashBucket:    cc.CrashBucket,
	}
}

// NumSensors returns the number of controller inputs a car produces.
func (p Params) NumSensors() int {
	return len(p.SensorOffsets)
}
