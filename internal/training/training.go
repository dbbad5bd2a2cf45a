// Package training plays the agent against a random opponent, persisting
// what it learns and recording every game.
package training

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/hailam/mlchess/internal/agent"
	"github.com/hailam/mlchess/internal/board"
	"github.com/hailam/mlchess/internal/env"
	"github.com/hailam/mlchess/internal/record"
	"github.com/hailam/mlchess/internal/storage"
)

// Store is the persistence the trainer needs.
type Store interface {
	LoadExperience() (map[string]agent.Recollection, error)
	SaveExperience(map[string]agent.Recollection) error
	SaveGame(*storage.GameRecord) error
	RecordGame(storage.GameResult) error
}

// Options control a training run.
type Options struct {
	GameLimit int   // games to play
	TurnLimit int   // plies per game before it is abandoned as a draw
	SaveEvery int   // persist experience every this many games
	Seed      int64 // opponent randomness
	Resume    bool  // start from the stored experience
	Run       string
}

// DefaultOptions returns the default run parameters.
func DefaultOptions() Options {
	return Options{
		GameLimit: 100,
		TurnLimit: 200,
		SaveEvery: 10,
		Seed:      1,
		Resume:    true,
	}
}

// Summary counts results from the agent's point of view.
type Summary struct {
	Run    string
	Games  int
	Wins   int
	Losses int
	Draws  int
}

func (s Summary) String() string {
	return fmt.Sprintf("run %s: %d games, %d wins, %d losses, %d draws", s.Run, s.Games, s.Wins, s.Losses, s.Draws)
}

// Trainer runs training games.
type Trainer struct {
	agent *agent.Agent
	store Store
	opts  Options
	rng   *rand.Rand
}

// New creates a trainer for a.
func New(a *agent.Agent, store Store, opts Options) *Trainer {
	if opts.SaveEvery < 1 {
		opts.SaveEvery = 1
	}
	if opts.Run == "" {
		opts.Run = record.NewRunName()
	}
	return &Trainer{
		agent: a,
		store: store,
		opts:  opts,
		rng:   rand.New(rand.NewSource(opts.Seed)),
	}
}

// Run plays up to GameLimit games. When ctx is cancelled it saves the
// experience gathered so far and returns the context error.
func (t *Trainer) Run(ctx context.Context) (Summary, error) {
	sum := Summary{Run: t.opts.Run}

	if t.opts.Resume {
		entries, err := t.store.LoadExperience()
		if err != nil {
			return sum, fmt.Errorf("load experience: %w", err)
		}
		t.agent.Experience().Restore(entries)
		log.Printf("training %s: resumed with %d positions", t.opts.Run, len(entries))
	}

	for game := 1; game <= t.opts.GameLimit; game++ {
		// The agent switches color every game, starting as White.
		color := board.White
		if game%2 == 0 {
			color = board.Black
		}
		t.agent.SetColor(color)

		outcome, err := t.playGame(ctx, game)
		if err != nil {
			if saveErr := t.save(); saveErr != nil {
				log.Printf("training %s: %v", t.opts.Run, saveErr)
			}
			return sum, err
		}

		sum.Games++
		switch outcome {
		case env.Win:
			sum.Wins++
		case env.Loss:
			sum.Losses++
		default:
			sum.Draws++
		}

		if game%t.opts.SaveEvery == 0 {
			if err := t.save(); err != nil {
				return sum, err
			}
		}
	}

	if err := t.save(); err != nil {
		return sum, err
	}
	log.Printf("training %s", sum)
	return sum, nil
}

func (t *Trainer) playGame(ctx context.Context, game int) (env.TerminalState, error) {
	white, black := "agent", "random"
	if t.agent.Color() == board.Black {
		white, black = black, white
	}

	e := env.New()
	rec := record.NewRecorder(t.opts.Run, white, black)
	start := time.Now()

	for ply := 0; ply < t.opts.TurnLimit && !e.IsTerminated() && !rec.Over(); ply++ {
		if err := ctx.Err(); err != nil {
			return env.Draw, err
		}

		if e.State.SideToMove == t.agent.Color() {
			next, err := t.agent.React(ctx, e)
			if err != nil {
				return env.Draw, fmt.Errorf("game %d ply %d: %w", game, ply, err)
			}
			e.ApplyChange(next)
		} else {
			e.ApplyChangeRandomly(t.rng)
		}

		if err := rec.PushPosition(&e.State); err != nil {
			return env.Draw, fmt.Errorf("game %d ply %d: %w", game, ply, err)
		}
	}

	outcome := e.TerminalState(t.agent.Color())
	gameRec := rec.Finish()
	if err := t.store.SaveGame(gameRec); err != nil {
		return outcome, fmt.Errorf("save game %d: %w", game, err)
	}
	result := storage.GameResult{
		Won:      outcome == env.Win,
		Draw:     outcome == env.Draw,
		Duration: time.Since(start),
	}
	if err := t.store.RecordGame(result); err != nil {
		return outcome, fmt.Errorf("record game %d: %w", game, err)
	}

	log.Printf("training %s: game %d as %s: %s (%s) after %d plies, %d positions known",
		t.opts.Run, game, t.agent.Color(), gameRec.Result, gameRec.Reason, rec.Plies(), t.agent.Experience().Len())
	return outcome, nil
}

func (t *Trainer) save() error {
	if err := t.store.SaveExperience(t.agent.Experience().Snapshot()); err != nil {
		return fmt.Errorf("save experience: %w", err)
	}
	return nil
}
