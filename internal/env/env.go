// Package env is the game environment a learning agent acts in: a current
// position, the decisions available from it and the terminal outcome.
package env

import (
	"math/rand"

	"github.com/hailam/mlchess/internal/board"
	"github.com/hailam/mlchess/internal/numeric"
)

// TerminalState is the outcome of a finished game from one side's view.
type TerminalState int

const (
	Win TerminalState = iota
	Loss
	Draw
)

// String returns the outcome name.
func (ts TerminalState) String() string {
	switch ts {
	case Win:
		return "win"
	case Loss:
		return "loss"
	default:
		return "draw"
	}
}

// Environment holds the current game state. Decisions are represented by
// the positions they lead to.
type Environment struct {
	State board.Position
}

// New returns an environment at the initial position.
func New() *Environment {
	return &Environment{State: *board.NewPosition()}
}

// FromPosition returns an environment at pos.
func FromPosition(pos board.Position) *Environment {
	return &Environment{State: pos}
}

// AvailableDecisions returns the legal successor positions of the current state.
func (e *Environment) AvailableDecisions() []board.Position {
	return e.State.Successors()
}

// ApplyChange sets the current state, normally to one of AvailableDecisions.
func (e *Environment) ApplyChange(state board.Position) {
	e.State = state
}

// ApplyChangeRandomly moves to a uniformly chosen decision. It does nothing
// once the game is over.
func (e *Environment) ApplyChangeRandomly(rng *rand.Rand) {
	decisions := e.AvailableDecisions()
	if len(decisions) == 0 {
		return
	}
	e.State = decisions[rng.Intn(len(decisions))]
}

// IsTerminated reports checkmate or stalemate.
func (e *Environment) IsTerminated() bool {
	return !e.State.HasLegalMoves()
}

// TerminalState returns the outcome for perspective. Only checkmate is
// decisive; the checkmated side is the one to move.
func (e *Environment) TerminalState(perspective board.Color) TerminalState {
	if !e.State.IsCheckmate() {
		return Draw
	}
	if e.State.SideToMove == perspective {
		return Loss
	}
	return Win
}

// StateVector returns the encoded current state.
func (e *Environment) StateVector() numeric.Vector {
	return numeric.Encode(&e.State)
}

// AvailableActions returns the encoded successors of the current state.
func (e *Environment) AvailableActions() []numeric.Vector {
	return numeric.EncodeAll(e.AvailableDecisions())
}
