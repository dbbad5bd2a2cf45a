// Package agent implements a value-learning chess agent. It looks a few
// plies ahead along a single line, blends what it finds with what it
// remembers, and stores the blended value back into its experience.
//
// All values are from White's point of view: +1 is a White win, -1 a Black
// win. Values found d plies away are discounted by Discount^d.
package agent

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/hailam/mlchess/internal/board"
	"github.com/hailam/mlchess/internal/env"
	"github.com/hailam/mlchess/internal/material"
)

// ErrNoDecision is returned by React when the environment has no legal move.
var ErrNoDecision = errors.New("agent: no decision available")

// Config holds agent parameters.
type Config struct {
	Color          board.Color
	Foresight      int     // plies looked ahead before falling back to material
	Discount       float64 // per-ply discount in (0, 1]
	Exploration    float64 // probability of following a random line
	PurgeThreshold int     // experience size that triggers a purge
	Parallelism    int     // concurrent decision evaluations in React
	Seed           int64
}

// DefaultConfig returns the default parameters for a White agent.
func DefaultConfig() Config {
	return Config{
		Color:          board.White,
		Foresight:      4,
		Discount:       0.9,
		Exploration:    0.5,
		PurgeThreshold: 100000,
		Parallelism:    1,
		Seed:           1,
	}
}

// Agent chooses moves from its experience.
type Agent struct {
	cfg        Config
	experience *Experience

	mu  sync.Mutex // guards rng
	rng *rand.Rand

	evaluated atomic.Uint64
}

// New creates an agent with an empty experience.
func New(cfg Config) *Agent {
	return NewWithExperience(cfg, NewExperience())
}

// NewWithExperience creates an agent that shares exp.
func NewWithExperience(cfg Config, exp *Experience) *Agent {
	if cfg.Foresight < 1 {
		cfg.Foresight = 1
	}
	if cfg.Discount <= 0 || cfg.Discount > 1 {
		cfg.Discount = 1
	}
	if cfg.Parallelism < 1 {
		cfg.Parallelism = 1
	}
	return &Agent{
		cfg:        cfg,
		experience: exp,
		rng:        rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Config returns the agent's parameters.
func (a *Agent) Config() Config { return a.cfg }

// Color returns the side the agent plays.
func (a *Agent) Color() board.Color { return a.cfg.Color }

// SetColor changes the side the agent plays.
func (a *Agent) SetColor(c board.Color) { a.cfg.Color = c }

// Experience returns the agent's experience.
func (a *Agent) Experience() *Experience { return a.experience }

// PositionsEvaluated returns the number of positions visited by Evaluate.
func (a *Agent) PositionsEvaluated() uint64 { return a.evaluated.Load() }

// Evaluate returns the value of pos seen from depth plies below the root.
func (a *Agent) Evaluate(pos *board.Position, depth int) float64 {
	return a.evaluate(pos, depth, a.childRand())
}

// React evaluates every decision of e and returns the one best for the
// agent's color. It does not change e.
func (a *Agent) React(ctx context.Context, e *env.Environment) (board.Position, error) {
	decisions := e.AvailableDecisions()
	if len(decisions) == 0 {
		return board.Position{}, ErrNoDecision
	}

	values := make([]float64, len(decisions))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Parallelism)
	for i := range decisions {
		rng := a.childRand()
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			values[i] = a.evaluate(&decisions[i], 1, rng)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return board.Position{}, err
	}

	best := 0
	bestValue := math.Inf(-1)
	for i, v := range values {
		if a.cfg.Color == board.Black {
			v = -v
		}
		if v > bestValue {
			best, bestValue = i, v
		}
	}

	if a.cfg.PurgeThreshold > 0 {
		a.experience.Purge(a.cfg.PurgeThreshold)
	}
	return decisions[best], nil
}

func (a *Agent) evaluate(pos *board.Position, depth int, rng *rand.Rand) float64 {
	a.evaluated.Add(1)
	discount := math.Pow(a.cfg.Discount, float64(depth))

	successors := pos.Successors()
	if len(successors) == 0 {
		if !pos.InCheck() {
			return 0
		}
		if pos.SideToMove == board.White {
			return -discount
		}
		return discount
	}

	if depth >= a.cfg.Foresight {
		w, b := material.Values(pos)
		return material.Balance(w, b) * discount
	}

	next := a.choose(pos.SideToMove, successors, rng)
	value := (a.experience.ValueOf(pos)*discount + a.evaluate(next, depth+1, rng)) / 2
	a.experience.Memorize(pos, value)
	return value
}

// choose picks the line to follow: a random successor with probability
// Exploration, otherwise the one experience rates best for mover.
func (a *Agent) choose(mover board.Color, successors []board.Position, rng *rand.Rand) *board.Position {
	if rng.Float64() < a.cfg.Exploration {
		return &successors[rng.Intn(len(successors))]
	}
	best := 0
	bestValue := math.Inf(-1)
	for i := range successors {
		v := a.experience.ValueOf(&successors[i])
		if mover == board.Black {
			v = -v
		}
		if v > bestValue {
			best, bestValue = i, v
		}
	}
	return &successors[best]
}

// childRand derives an independent generator so concurrent evaluations do
// not share one.
func (a *Agent) childRand() *rand.Rand {
	a.mu.Lock()
	defer a.mu.Unlock()
	return rand.New(rand.NewSource(a.rng.Int63()))
}
