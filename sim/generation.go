package sim

import (
	"fmt"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/carsim/car"
	"github.com/pthm-cable/carsim/components"
)

// Generation is the transient world of one evaluation: one agent per genome,
// a tick counter and the current leader.
type Generation struct {
	world *ecs.World

	agentMapper *ecs.Map3[components.Vehicle, components.Pilot, components.Score]
	agentFilter *ecs.Filter3[components.Vehicle, components.Pilot, components.Score]

	genomes []Genome
	cars    []*car.Car // by genome index
	fitness []float64  // by genome index
	track   car.Surface

	tick   int
	alive  int
	leader int
}

// NewGeneration zeroes every genome's fitness, builds one controller per genome
// and spawns one car per genome at start.
func NewGeneration(genomes []Genome, track car.Surface, params car.Params, start car.Vec2) (*Generation, error) {
	if len(genomes) == 0 {
		return nil, ErrNoAgents
	}

	world := ecs.NewWorld()
	g := &Generation{
		world:       world,
		agentMapper: ecs.NewMap3[components.Vehicle, components.Pilot, components.Score](world),
		agentFilter: ecs.NewFilter3[components.Vehicle, components.Pilot, components.Score](world),
		genomes:     genomes,
		cars:        make([]*car.Car, len(genomes)),
		fitness:     make([]float64, len(genomes)),
		track:       track,
		alive:       len(genomes),
	}

	for i, genome := range genomes {
		genome.SetFitness(0)

		ctrl, err := genome.NewController()
		if err != nil {
			return nil, fmt.Errorf("genome %d: building controller: %w", genome.Key(), err)
		}

		c := car.New(params, start.X, start.Y)
		g.cars[i] = c

		vehicle := components.Vehicle{Car: c}
		pilot := components.Pilot{Controller: ctrl, Action: -1}
		score := components.Score{Index: i}
		g.agentMapper.NewEntity(&vehicle, &pilot, &score)
	}

	return g, nil
}

// Step runs one tick. Every alive agent first decides from the sensor
// readings of the previous tick, then every agent alive at the start of the
// tick applies its action, moves and collects its reward.
func (g *Generation) Step() error {
	if err := g.decide(); err != nil {
		return err
	}
	g.move()
	g.tick++
	g.leader = floats.MaxIdx(g.fitness)
	return nil
}

// decide is pass 1: no car moves until every controller has answered.
func (g *Generation) decide() error {
	var firstErr error

	query := g.agentFilter.Query()
	for query.Next() {
		vehicle, pilot, score := query.Get()
		if firstErr != nil || !vehicle.Car.Alive {
			continue
		}

		outputs, err := pilot.Controller.Activate(vehicle.Car.Inputs())
		if err != nil {
			firstErr = fmt.Errorf("genome %d: activate: %w", g.genomes[score.Index].Key(), err)
			continue
		}
		action, err := ChooseAction(outputs)
		if err != nil {
			firstErr = fmt.Errorf("genome %d: %w", g.genomes[score.Index].Key(), err)
			continue
		}
		pilot.Action = int(action)
	}

	return firstErr
}

// move is pass 2. Rewards are collected for every agent alive at the start
// of the tick, so the death penalty lands exactly once.
func (g *Generation) move() {
	alive := 0

	query := g.agentFilter.Query()
	for query.Next() {
		vehicle, pilot, score := query.Get()
		c := vehicle.Car
		if !c.Alive {
			continue
		}

		if pilot.Action >= 0 {
			Action(pilot.Action).Apply(c)
		}
		c.Update(g.track)

		score.Fitness += c.Reward()
		g.fitness[score.Index] = score.Fitness
		g.genomes[score.Index].SetFitness(score.Fitness)

		if c.Alive {
			alive++
		}
	}

	g.alive = alive
}

// Tick returns the number of completed steps.
func (g *Generation) Tick() int { return g.tick }

// Alive returns the number of agents alive after the last step.
func (g *Generation) Alive() int { return g.alive }

// Leader returns the genome index with the highest fitness; the lowest index wins ties.
func (g *Generation) Leader() int { return g.leader }

// Len returns the number of agents.
func (g *Generation) Len() int { return len(g.cars) }

// Car returns the car of the i-th genome.
func (g *Generation) Car(i int) *car.Car { return g.cars[i] }

// Fitness returns the fitness accrued so far by the i-th genome.
func (g *Generation) Fitness(i int) float64 { return g.fitness[i] }

// Frame returns a read-only view of the current tick for rendering.
func (g *Generation) Frame(generation int) Frame {
	return Frame{
		Generation: generation,
		Tick:       g.tick,
		Alive:      g.alive,
		Leader:     g.leader,
		Cars:       g.cars,
		Fitness:    g.fitness,
	}
}
