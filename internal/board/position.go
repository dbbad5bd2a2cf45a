package board

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPosition is wrapped by every Validate failure.
var ErrInvalidPosition = errors.New("invalid position")

// CastlingRights represents the available castling options.
type CastlingRights uint8

const (
	WhiteKingSideCastle  CastlingRights = 1 << iota // K
	WhiteQueenSideCastle                            // Q
	BlackKingSideCastle                             // k
	BlackQueenSideCastle                            // q
	NoCastling           CastlingRights = 0
	AllCastling          CastlingRights = WhiteKingSideCastle | WhiteQueenSideCastle | BlackKingSideCastle | BlackQueenSideCastle
)

// String returns the FEN castling field.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	s := ""
	if cr&WhiteKingSideCastle != 0 {
		s += "K"
	}
	if cr&WhiteQueenSideCastle != 0 {
		s += "Q"
	}
	if cr&BlackKingSideCastle != 0 {
		s += "k"
	}
	if cr&BlackQueenSideCastle != 0 {
		s += "q"
	}
	return s
}

// castlingLoss holds the rights lost when a piece leaves or lands on a square.
var castlingLoss = [64]CastlingRights{
	A1: WhiteQueenSideCastle,
	E1: WhiteKingSideCastle | WhiteQueenSideCastle,
	H1: WhiteKingSideCastle,
	A8: BlackQueenSideCastle,
	E8: BlackKingSideCastle | BlackQueenSideCastle,
	H8: BlackKingSideCastle,
}

// Position represents a complete chess position. It is a plain value:
// copying a Position copies the whole game state.
type Position struct {
	// Piece bitboards: [Color][PieceType]
	Pieces [2][6]Bitboard

	Occupied    [2]Bitboard
	AllOccupied Bitboard

	SideToMove     Color
	CastlingRights CastlingRights
	EnPassant      Square // NoSquare if none
	HalfMoveClock  int
	FullMoveNumber int

	KingSquare [2]Square

	// Pieces giving check to the side to move
	Checkers Bitboard
}

// NewPosition creates the starting position.
func NewPosition() *Position {
	pos, err := ParseFEN(StartFEN)
	if err != nil {
		panic(err)
	}
	return pos
}

// EmptyPosition returns a board with no pieces, White to move.
func EmptyPosition() *Position {
	return &Position{
		EnPassant:      NoSquare,
		FullMoveNumber: 1,
		KingSquare:     [2]Square{NoSquare, NoSquare},
	}
}

// PieceAt returns the piece on sq, or NoPiece.
func (p *Position) PieceAt(sq Square) Piece {
	bb := SquareBB(sq)
	if p.AllOccupied&bb == 0 {
		return NoPiece
	}
	c := White
	if p.Occupied[Black]&bb != 0 {
		c = Black
	}
	for pt := Pawn; pt <= King; pt++ {
		if p.Pieces[c][pt]&bb != 0 {
			return NewPiece(pt, c)
		}
	}
	return NoPiece
}

// Place puts piece on sq, replacing whatever stood there. Checkers are not
// updated; call UpdateCheckers once the position is fully set up.
func (p *Position) Place(piece Piece, sq Square) {
	p.removePiece(sq)
	p.setPiece(piece, sq)
}

func (p *Position) setPiece(piece Piece, sq Square) {
	if piece == NoPiece {
		return
	}
	c, pt := piece.Color(), piece.Type()
	bb := SquareBB(sq)
	p.Pieces[c][pt] |= bb
	p.Occupied[c] |= bb
	p.AllOccupied |= bb
	if pt == King {
		p.KingSquare[c] = sq
	}
}

func (p *Position) removePiece(sq Square) Piece {
	piece := p.PieceAt(sq)
	if piece == NoPiece {
		return NoPiece
	}
	c, pt := piece.Color(), piece.Type()
	bb := SquareBB(sq)
	p.Pieces[c][pt] &^= bb
	p.Occupied[c] &^= bb
	p.AllOccupied &^= bb
	if pt == King && p.Pieces[c][King] == 0 {
		p.KingSquare[c] = NoSquare
	}
	return piece
}

// InCheck reports whether the side to move is in check.
func (p *Position) InCheck() bool {
	return p.Checkers != 0
}

// Validate checks that the position is one the move generator can exploit
// safely: one king per side, no pawns on the back ranks, the side that just
// moved is not in check, and castling and en-passant fields agree with the
// pieces on the board.
func (p *Position) Validate() error {
	if n := p.Pieces[White][King].PopCount(); n != 1 {
		return fmt.Errorf("%w: white has %d kings", ErrInvalidPosition, n)
	}
	if n := p.Pieces[Black][King].PopCount(); n != 1 {
		return fmt.Errorf("%w: black has %d kings", ErrInvalidPosition, n)
	}
	if (p.Pieces[White][Pawn]|p.Pieces[Black][Pawn])&(Rank1|Rank8) != 0 {
		return fmt.Errorf("%w: pawn on first or last rank", ErrInvalidPosition)
	}
	them := p.SideToMove.Other()
	if p.IsSquareAttacked(p.KingSquare[them], p.SideToMove) {
		return fmt.Errorf("%w: %s king can be captured", ErrInvalidPosition, them)
	}

	for _, c := range [...]struct {
		right      CastlingRights
		king, rook Piece
		ksq, rsq   Square
	}{
		{WhiteKingSideCastle, WhiteKing, WhiteRook, E1, H1},
		{WhiteQueenSideCastle, WhiteKing, WhiteRook, E1, A1},
		{BlackKingSideCastle, BlackKing, BlackRook, E8, H8},
		{BlackQueenSideCastle, BlackKing, BlackRook, E8, A8},
	} {
		if p.CastlingRights&c.right == 0 {
			continue
		}
		if p.PieceAt(c.ksq) != c.king || p.PieceAt(c.rsq) != c.rook {
			return fmt.Errorf("%w: castling right %s without king and rook at home", ErrInvalidPosition, c.right)
		}
	}

	if p.EnPassant != NoSquare {
		if !p.EnPassant.IsValid() {
			return fmt.Errorf("%w: en passant square %d", ErrInvalidPosition, p.EnPassant)
		}
		// The pawn that just made the double push sits behind the target square
		// and has left its origin square.
		f := p.EnPassant.File()
		wantRank, pusher, origin := 5, NewSquare(f, 4), NewSquare(f, 6)
		if p.SideToMove == Black {
			wantRank, pusher, origin = 2, NewSquare(f, 3), NewSquare(f, 1)
		}
		if p.EnPassant.Rank() != wantRank || p.PieceAt(pusher) != NewPiece(Pawn, them) ||
			!p.IsEmptySquare(p.EnPassant) || !p.IsEmptySquare(origin) {
			return fmt.Errorf("%w: en passant square %s", ErrInvalidPosition, p.EnPassant)
		}
	}

	if p.HalfMoveClock < 0 || p.FullMoveNumber < 1 {
		return fmt.Errorf("%w: move counters %d/%d", ErrInvalidPosition, p.HalfMoveClock, p.FullMoveNumber)
	}
	return nil
}

// IsEmptySquare reports whether no piece stands on sq.
func (p *Position) IsEmptySquare(sq Square) bool {
	return p.AllOccupied&SquareBB(sq) == 0
}

// String returns a visual representation of the position.
func (p *Position) String() string {
	var sb strings.Builder
	sb.WriteByte('\n')
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%d  ", rank+1)
		for file := 0; file < 8; file++ {
			piece := p.PieceAt(NewSquare(file, rank))
			if piece == NoPiece {
				sb.WriteString(". ")
			} else {
				sb.WriteString(piece.String() + " ")
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("\n   a b c d e f g h\n\n")
	fmt.Fprintf(&sb, "Side to move: %s\n", p.SideToMove)
	fmt.Fprintf(&sb, "Castling: %s\n", p.CastlingRights)
	fmt.Fprintf(&sb, "En passant: %s\n", p.EnPassant)
	fmt.Fprintf(&sb, "Half-move clock: %d\n", p.HalfMoveClock)
	fmt.Fprintf(&sb, "Full move: %d\n", p.FullMoveNumber)
	return sb.String()
}
