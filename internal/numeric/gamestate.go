package numeric

import (
	"github.com/hailam/mlchess/internal/board"
	"github.com/hailam/mlchess/internal/material"
)

// MaxNextStates bounds the number of legal moves in any chess position
// (the known maximum is 218).
const MaxNextStates = 256

// MoveTriple is a legal move as [from, to, promotion code]. The promotion
// code is signed by the mover's color and is 0 for non-promotions.
type MoveTriple [3]int32

// NewGameState returns the initial position.
func NewGameState() Vector {
	return Encode(board.NewPosition())
}

// IsCheckmate reports whether the side to move in v is checkmated.
func IsCheckmate(v Vector) (bool, error) {
	pos, err := Decode(v)
	if err != nil {
		return false, err
	}
	return pos.IsCheckmate(), nil
}

// IsStalemate reports whether the side to move in v is stalemated.
func IsStalemate(v Vector) (bool, error) {
	pos, err := Decode(v)
	if err != nil {
		return false, err
	}
	return pos.IsStalemate(), nil
}

// MaterialValues returns [white, black] material for v.
func MaterialValues(v Vector) ([2]int32, error) {
	pos, err := Decode(v)
	if err != nil {
		return [2]int32{}, err
	}
	w, b := material.Values(pos)
	return [2]int32{int32(w), int32(b)}, nil
}

// LegalNextStates returns the encoded position after each legal move of v.
func LegalNextStates(v Vector) ([]Vector, error) {
	pos, err := Decode(v)
	if err != nil {
		return nil, err
	}
	return EncodeAll(pos.Successors()), nil
}

// LegalMoves returns every legal move of v as a triple.
func LegalMoves(v Vector) ([]MoveTriple, error) {
	pos, err := Decode(v)
	if err != nil {
		return nil, err
	}
	moves := pos.LegalMoves()
	out := make([]MoveTriple, len(moves))
	for i, m := range moves {
		out[i] = Triple(pos, m)
	}
	return out, nil
}

// Triple converts m, a move of pos, to its integer form.
func Triple(pos *board.Position, m board.Move) MoveTriple {
	t := MoveTriple{int32(m.From()), int32(m.To()), CodeEmpty}
	if m.IsPromotion() {
		t[2] = PieceCode(board.NewPiece(m.Promotion(), pos.SideToMove))
	}
	return t
}

// EncodeAll encodes a list of positions.
func EncodeAll(positions []board.Position) []Vector {
	out := make([]Vector, len(positions))
	for i := range positions {
		out[i] = Encode(&positions[i])
	}
	return out
}
