// Package sim runs one generation of cars against a track: it turns genomes
// into agents, steps them in lockstep and reports fitness back to the optimizer.
package sim

import (
	"context"
	"errors"
	"log/slog"

	"github.com/pthm-cable/carsim/car"
	"github.com/pthm-cable/carsim/components"
	"github.com/pthm-cable/carsim/config"
)

// ErrNoAgents is returned when a generation is asked to evaluate no genomes.
var ErrNoAgents = errors.New("sim: no genomes to evaluate")

// Controller maps sensor inputs to action scores.
type Controller = components.Controller

// Genome is the optimizer's view of one candidate.
type Genome interface {
	Key() int
	Fitness() float64
	SetFitness(f float64)
	// NewController builds a fresh controller; called once per generation.
	NewController() (Controller, error)
}

// Outcome is the terminal state of a generation.
type Outcome uint8

const (
	AllDead    Outcome = iota + 1 // no agent alive after a step
	TickBudget                    // the tick cap was reached
)

func (o Outcome) String() string {
	switch o {
	case AllDead:
		return "all_dead"
	case TickBudget:
		return "tick_budget"
	default:
		return "running"
	}
}

// Event is a navigation request from the front end.
type Event uint8

const (
	EventNone Event = iota
	EventMenu       // return to the menu once the generation ends
)

// Frame is what the front end gets to draw after each tick.
// The slices are owned by the generation and valid until the next tick.
type Frame struct {
	Generation int
	Tick       int
	Alive      int
	Leader     int
	Cars       []*car.Car
	Fitness    []float64
}

// Frontend is the display and input collaborator. Poll must not block.
type Frontend interface {
	Poll() (Event, bool)
	Render(f Frame)
}

// Tick phases reported to a Timer.
const (
	PhasePoll   = "poll"
	PhaseStep   = "step"
	PhaseRender = "render"
)

// Timer receives per-tick phase timings.
type Timer interface {
	StartTick()
	StartPhase(phase string)
	EndTick()
}

// Result summarizes a finished generation.
type Result struct {
	Generation    int
	Ticks         int
	Outcome       Outcome
	Alive         int
	Leader        int
	MenuRequested bool
}

// Evaluator scores populations on one track. Each Evaluate call is one generation.
type Evaluator struct {
	track     car.Surface
	params    car.Params
	start     car.Vec2
	maxTicks  int
	pollLimit int
	frontend  Frontend
	timer     Timer

	generation int
}

// NewEvaluator creates an evaluator for cars with params starting at start.
// fe may be nil for headless runs.
func NewEvaluator(track car.Surface, params car.Params, start car.Vec2, sc config.SimulationConfig, fe Frontend) *Evaluator {
	return &Evaluator{
		track:     track,
		params:    params,
		start:     start,
		maxTicks:  sc.MaxTicks,
		pollLimit: max(sc.PollLimit, 1),
		frontend:  fe,
	}
}

// SetTrack replaces the track used by later generations.
func (e *Evaluator) SetTrack(track car.Surface) {
	e.track = track
}

// SetTimer attaches a phase timer; nil detaches it.
func (e *Evaluator) SetTimer(t Timer) {
	e.timer = t
}

// Generation returns the number of generations evaluated so far.
func (e *Evaluator) Generation() int {
	return e.generation
}

// Evaluate runs one generation over genomes and leaves each genome's fitness set.
// Cancelling ctx abandons the generation at the next tick with ctx.Err().
// A menu request is latched and reported in the result once the generation ends.
func (e *Evaluator) Evaluate(ctx context.Context, genomes []Genome) (Result, error) {
	gen, err := NewGeneration(genomes, e.track, e.params, e.start)
	if err != nil {
		return Result{}, err
	}
	e.generation++

	res := Result{Generation: e.generation}
	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		e.startTick()

		e.startPhase(PhasePoll)
		if e.poll() {
			res.MenuRequested = true
		}

		e.startPhase(PhaseStep)
		if err := gen.Step(); err != nil {
			return res, err
		}

		if e.frontend != nil {
			e.startPhase(PhaseRender)
			e.frontend.Render(gen.Frame(e.generation))
		}
		e.endTick()

		if gen.Alive() == 0 {
			res.Outcome = AllDead
			break
		}
		if gen.Tick() >= e.maxTicks {
			res.Outcome = TickBudget
			break
		}
	}

	res.Ticks = gen.Tick()
	res.Alive = gen.Alive()
	res.Leader = gen.Leader()

	slog.Debug("generation evaluated",
		"generation", res.Generation,
		"ticks", res.Ticks,
		"outcome", res.Outcome.String(),
		"alive", res.Alive,
		"leader", genomes[res.Leader].Key(),
	)
	return res, nil
}

func (e *Evaluator) startTick() {
	if e.timer != nil {
		e.timer.StartTick()
	}
}

func (e *Evaluator) startPhase(phase string) {
	if e.timer != nil {
		e.timer.StartPhase(phase)
	}
}

func (e *Evaluator) endTick() {
	if e.timer != nil {
		e.timer.EndTick()
	}
}

// poll drains at most pollLimit pending events and reports whether the menu was requested.
func (e *Evaluator) poll() bool {
	if e.frontend == nil {
		return false
	}
	menu := false
	for i := 0; i < e.pollLimit; i++ {
		ev, ok := e.frontend.Poll()
		if !ok {
			break
		}
		if ev == EventMenu {
			menu = true
		}
	}
	return menu
}
