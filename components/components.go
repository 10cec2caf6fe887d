// Package components defines ECS components for one generation's agents.
package components

import "github.com/pthm-cable/carsim/car"

// Controller maps the previous tick's sensor inputs to raw action scores.
type Controller interface {
	Activate(inputs []float64) ([]float64, error)
}

// Vehicle holds the agent's simulated car.
type Vehicle struct {
	Car *car.Car
}

// Pilot holds the agent's controller and the action index it chose this tick.
// Action is -1 until the first decision.
type Pilot struct {
	Controller Controller
	Action     int
}

// Score links an agent back to its genome and holds the fitness accrued so far.
type Score struct {
	Index   int // position in the generation's genome list
	Fitness float64
}
