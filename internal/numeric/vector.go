// Package numeric converts chess positions to and from the fixed-length
// integer vector consumed by learning code.
//
// Layout of a Vector:
//
//	0..63  piece code on each square, a1=0 ... h8=63
//	64     side to move: 1 White, -1 Black
//	65     castling rights, K=1 Q=2 k=4 q=8
//	66     en-passant target square, or -1
//	67     half-move clock
//	68     full-move number
//	69     1 if the side to move is in check, else 0
//
// Piece codes are signed by color (positive White) with magnitudes
// pawn=1, bishop=2, knight=3, rook=4, queen=5, king=6; 0 is an empty square.
package numeric

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hailam/mlchess/internal/board"
)

// Length is the number of integers in an encoded position.
const Length = 70

// Vector indices past the 64 board squares.
const (
	IndexSideToMove = 64 + iota
	IndexCastling
	IndexEnPassant
	IndexHalfMoveClock
	IndexFullMoveNumber
	IndexInCheck
)

// Vector is an encoded position. Elements are int32 so a Vector has the
// memory layout of a C int[70].
type Vector [Length]int32

// ErrInvalidVector is wrapped by every decoding failure.
var ErrInvalidVector = errors.New("invalid game state vector")

// Piece code magnitudes.
const (
	CodeEmpty  int32 = 0
	CodePawn   int32 = 1
	CodeBishop int32 = 2
	CodeKnight int32 = 3
	CodeRook   int32 = 4
	CodeQueen  int32 = 5
	CodeKing   int32 = 6
)

var typeCode = [7]int32{
	board.Pawn:        CodePawn,
	board.Knight:      CodeKnight,
	board.Bishop:      CodeBishop,
	board.Rook:        CodeRook,
	board.Queen:       CodeQueen,
	board.King:        CodeKing,
	board.NoPieceType: CodeEmpty,
}

var codeType = [7]board.PieceType{
	CodeEmpty:  board.NoPieceType,
	CodePawn:   board.Pawn,
	CodeBishop: board.Bishop,
	CodeKnight: board.Knight,
	CodeRook:   board.Rook,
	CodeQueen:  board.Queen,
	CodeKing:   board.King,
}

// PieceCode returns the signed code of a piece.
func PieceCode(p board.Piece) int32 {
	if p == board.NoPiece {
		return CodeEmpty
	}
	code := typeCode[p.Type()]
	if p.Color() == board.Black {
		return -code
	}
	return code
}

// PieceFromCode is the inverse of PieceCode.
func PieceFromCode(code int32) (board.Piece, error) {
	if code < -CodeKing || code > CodeKing {
		return board.NoPiece, fmt.Errorf("%w: piece code %d out of range", ErrInvalidVector, code)
	}
	if code == CodeEmpty {
		return board.NoPiece, nil
	}
	if code < 0 {
		return board.NewPiece(codeType[-code], board.Black), nil
	}
	return board.NewPiece(codeType[code], board.White), nil
}

// Encode returns the vector form of pos.
func Encode(pos *board.Position) Vector {
	var v Vector
	for sq := board.A1; sq <= board.H8; sq++ {
		v[sq] = PieceCode(pos.PieceAt(sq))
	}
	v[IndexSideToMove] = 1
	if pos.SideToMove == board.Black {
		v[IndexSideToMove] = -1
	}
	v[IndexCastling] = int32(pos.CastlingRights)
	v[IndexEnPassant] = -1
	if pos.EnPassant != board.NoSquare {
		v[IndexEnPassant] = int32(pos.EnPassant)
	}
	v[IndexHalfMoveClock] = int32(pos.HalfMoveClock)
	v[IndexFullMoveNumber] = int32(pos.FullMoveNumber)
	if pos.InCheck() {
		v[IndexInCheck] = 1
	}
	return v
}

// Decode rebuilds a position from v. The check flag is range checked and
// then recomputed from the pieces.
func Decode(v Vector) (*board.Position, error) {
	pos := board.EmptyPosition()

	for sq := board.A1; sq <= board.H8; sq++ {
		piece, err := PieceFromCode(v[sq])
		if err != nil {
			return nil, fmt.Errorf("square %s: %w", sq, err)
		}
		if piece != board.NoPiece {
			pos.Place(piece, sq)
		}
	}

	switch v[IndexSideToMove] {
	case 1:
		pos.SideToMove = board.White
	case -1:
		pos.SideToMove = board.Black
	default:
		return nil, fmt.Errorf("%w: side to move %d", ErrInvalidVector, v[IndexSideToMove])
	}

	castling := v[IndexCastling]
	if castling < 0 || castling > int32(board.AllCastling) {
		return nil, fmt.Errorf("%w: castling rights %d", ErrInvalidVector, castling)
	}
	pos.CastlingRights = board.CastlingRights(castling)

	ep := v[IndexEnPassant]
	switch {
	case ep == -1:
		pos.EnPassant = board.NoSquare
	case ep >= 0 && ep < 64:
		pos.EnPassant = board.Square(ep)
	default:
		return nil, fmt.Errorf("%w: en passant square %d", ErrInvalidVector, ep)
	}

	if v[IndexHalfMoveClock] < 0 {
		return nil, fmt.Errorf("%w: half-move clock %d", ErrInvalidVector, v[IndexHalfMoveClock])
	}
	pos.HalfMoveClock = int(v[IndexHalfMoveClock])
	if v[IndexFullMoveNumber] < 1 {
		return nil, fmt.Errorf("%w: full-move number %d", ErrInvalidVector, v[IndexFullMoveNumber])
	}
	pos.FullMoveNumber = int(v[IndexFullMoveNumber])

	if flag := v[IndexInCheck]; flag != 0 && flag != 1 {
		return nil, fmt.Errorf("%w: check flag %d", ErrInvalidVector, flag)
	}

	pos.UpdateCheckers()
	if err := pos.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidVector, err)
	}
	return pos, nil
}

// SquareVector returns the 64 piece codes of pos as floats, the board-only
// view used when side-to-move and clock metadata are not wanted.
func SquareVector(pos *board.Position) [64]float64 {
	var out [64]float64
	for sq := board.A1; sq <= board.H8; sq++ {
		out[sq] = float64(PieceCode(pos.PieceAt(sq)))
	}
	return out
}

// String returns the elements separated by single spaces.
func (v Vector) String() string {
	var sb strings.Builder
	for i, x := range v {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strconv.Itoa(int(x)))
	}
	return sb.String()
}

// ParseVector reads exactly Length whitespace-separated integers.
func ParseVector(s string) (Vector, error) {
	var v Vector
	fields := strings.Fields(s)
	if len(fields) != Length {
		return v, fmt.Errorf("%w: need %d integers, got %d", ErrInvalidVector, Length, len(fields))
	}
	for i, f := range fields {
		n, err := strconv.ParseInt(f, 10, 32)
		if err != nil {
			return v, fmt.Errorf("%w: element %d: %v", ErrInvalidVector, i, err)
		}
		v[i] = int32(n)
	}
	return v, nil
}
