package sim

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/carsim/car"
)

// ErrEmptyOutput is returned when a controller produces no outputs.
var ErrEmptyOutput = errors.New("sim: controller produced no outputs")

// Action is one discrete control choice.
type Action uint8

const (
	SteerLeft  Action = iota // heading += SteerStep
	SteerRight               // heading -= SteerStep
	Brake                    // speed -= SpeedStep, never below MinSpeed
	Accelerate               // speed += SpeedStep
	numActions
)

// NumActions is the number of controller outputs the action table expects.
const NumActions = int(numActions)

var actionNames = [numActions]string{
	SteerLeft:  "steer_left",
	SteerRight: "steer_right",
	Brake:      "brake",
	Accelerate: "accelerate",
}

// actionEffects is the single mapping from action to its effect on a car.
var actionEffects = [numActions]func(c *car.Car){
	SteerLeft:  func(c *car.Car) { c.Steer(c.Params().SteerStep) },
	SteerRight: func(c *car.Car) { c.Steer(-c.Params().SteerStep) },
	Brake:      (*car.Car).Brake,
	Accelerate: (*car.Car).Accelerate,
}

func (a Action) String() string {
	if a < numActions {
		return actionNames[a]
	}
	return fmt.Sprintf("action(%d)", uint8(a))
}

// Apply performs the action on c. Unknown actions accelerate.
func (a Action) Apply(c *car.Car) {
	actionEffects[actionFromIndex(int(a))](c)
}

// actionFromIndex maps an output index to an action.
// Every index past Brake accelerates.
func actionFromIndex(i int) Action {
	if i < 0 || i >= int(Accelerate) {
		return Accelerate
	}
	return Action(i)
}

// ChooseAction picks the action for the highest output; the first index wins ties.
func ChooseAction(outputs []float64) (Action, error) {
	if len(outputs) == 0 {
		return 0, ErrEmptyOutput
	}
	return actionFromIndex(floats.MaxIdx(outputs)), nil
}
