// Package record turns played games into stored records with PGN
// transcripts.
package record

import (
	"fmt"
	"time"

	petname "github.com/dustinkirkland/golang-petname"
	"github.com/google/uuid"
	"github.com/notnil/chess"

	"github.com/hailam/mlchess/internal/board"
	"github.com/hailam/mlchess/internal/storage"
)

// Results as written in PGN.
const (
	WhiteWins  = "1-0"
	BlackWins  = "0-1"
	DrawResult = "1/2-1/2"
	Unfinished = "*"
)

const reasonFiftyMove = "fifty-move rule"

// NewRunName returns a readable name for a training run.
func NewRunName() string {
	return petname.Generate(2, "-")
}

// NewGameID returns a unique game id.
func NewGameID() string {
	return uuid.NewString()
}

// Outcome returns the PGN result of a game ending in pos and the reason.
func Outcome(pos *board.Position) (result, reason string) {
	switch {
	case pos.IsCheckmate():
		if pos.SideToMove == board.White {
			return BlackWins, "checkmate"
		}
		return WhiteWins, "checkmate"
	case pos.IsStalemate():
		return DrawResult, "stalemate"
	case pos.IsFiftyMoveDraw():
		return DrawResult, reasonFiftyMove
	case pos.IsInsufficientMaterial():
		return DrawResult, "insufficient material"
	default:
		return Unfinished, "turn limit"
	}
}

// Recorder collects the moves of one game.
type Recorder struct {
	id      string
	run     string
	white   string
	black   string
	started time.Time

	pos   board.Position
	moves []string
	game  *chess.Game
}

// NewRecorder starts recording a game between white and black from the
// initial position.
func NewRecorder(run, white, black string) *Recorder {
	game := chess.NewGame(chess.UseNotation(chess.UCINotation{}))
	return newRecorder(run, white, black, *board.NewPosition(), game)
}

// NewRecorderFrom starts recording a game that begins at pos.
func NewRecorderFrom(pos *board.Position, run, white, black string) (*Recorder, error) {
	if err := pos.Validate(); err != nil {
		return nil, fmt.Errorf("record: %w", err)
	}
	fen := pos.FEN()
	start, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("record: %w", err)
	}
	game := chess.NewGame(start, chess.UseNotation(chess.UCINotation{}))
	if fen != board.StartFEN {
		game.AddTagPair("SetUp", "1")
		game.AddTagPair("FEN", fen)
	}
	return newRecorder(run, white, black, *pos, game), nil
}

func newRecorder(run, white, black string, pos board.Position, game *chess.Game) *Recorder {
	game.AddTagPair("Event", "mlchess training")
	game.AddTagPair("Site", "local")
	game.AddTagPair("Run", run)
	game.AddTagPair("White", white)
	game.AddTagPair("Black", black)
	game.AddTagPair("Result", Unfinished)

	return &Recorder{
		id:      NewGameID(),
		run:     run,
		white:   white,
		black:   black,
		started: time.Now(),
		pos:     pos,
		game:    game,
	}
}

// ID returns the game id.
func (r *Recorder) ID() string { return r.id }

// Plies returns the number of recorded moves.
func (r *Recorder) Plies() int { return len(r.moves) }

// Position returns the current position of the game.
func (r *Recorder) Position() board.Position { return r.pos }

// Push records a move of the current position.
func (r *Recorder) Push(m board.Move) error {
	if _, err := board.ParseMove(m.String(), &r.pos); err != nil {
		return err
	}
	if err := r.game.MoveStr(m.String()); err != nil {
		return fmt.Errorf("record %s: %w", m, err)
	}
	r.pos = r.pos.Apply(m)
	r.moves = append(r.moves, m.String())

	// The PGN game only rules fifty-move draws on request.
	if _, reason := Outcome(&r.pos); reason == reasonFiftyMove && r.game.Outcome() == chess.NoOutcome {
		if err := r.game.Draw(chess.FiftyMoveRule); err != nil {
			return fmt.Errorf("record %s: %w", m, err)
		}
	}
	result, _ := r.Outcome()
	r.game.AddTagPair("Result", result)
	return nil
}

// PushPosition records the move that leads to next.
func (r *Recorder) PushPosition(next *board.Position) error {
	m, ok := r.pos.MoveTo(next)
	if !ok {
		return fmt.Errorf("record: %w: no move reaches %s", board.ErrIllegalMove, next.FEN())
	}
	return r.Push(m)
}

// Outcome returns the result so far. Besides the positional outcomes it
// reports the draws the PGN game declares on its own, fivefold repetition
// and the seventy-five move rule.
func (r *Recorder) Outcome() (result, reason string) {
	result, reason = Outcome(&r.pos)
	if result != Unfinished {
		return result, reason
	}
	switch r.game.Method() {
	case chess.FivefoldRepetition:
		return DrawResult, "fivefold repetition"
	case chess.SeventyFiveMoveRule:
		return DrawResult, "seventy-five move rule"
	}
	return result, reason
}

// Over reports whether the game has a result.
func (r *Recorder) Over() bool {
	result, _ := r.Outcome()
	return result != Unfinished
}

// PGN returns the transcript.
func (r *Recorder) PGN() string {
	// Moves are fed in UCI form; the transcript uses standard algebraic.
	chess.UseNotation(chess.AlgebraicNotation{})(r.game)
	defer chess.UseNotation(chess.UCINotation{})(r.game)
	return r.game.String()
}

// Finish returns the stored form of the game.
func (r *Recorder) Finish() *storage.GameRecord {
	result, reason := r.Outcome()
	moves := make([]string, len(r.moves))
	copy(moves, r.moves)

	return &storage.GameRecord{
		ID:       r.id,
		Run:      r.run,
		White:    r.white,
		Black:    r.black,
		Result:   result,
		Reason:   reason,
		Moves:    moves,
		PGN:      r.PGN(),
		Started:  r.started,
		Duration: time.Since(r.started),
	}
}
