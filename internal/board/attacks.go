package board

// Ray directions. The first four walk toward higher square indices.
const (
	dirNorth = iota
	dirEast
	dirNorthEast
	dirNorthWest
	dirSouth
	dirWest
	dirSouthEast
	dirSouthWest
)

var rayDelta = [8][2]int{
	dirNorth:     {0, 1},
	dirEast:      {1, 0},
	dirNorthEast: {1, 1},
	dirNorthWest: {-1, 1},
	dirSouth:     {0, -1},
	dirWest:      {-1, 0},
	dirSouthEast: {1, -1},
	dirSouthWest: {-1, -1},
}

// Pre-computed attack tables
var (
	knightAttacks [64]Bitboard
	kingAttacks   [64]Bitboard
	pawnAttacks   [2][64]Bitboard // [Color][Square]
	rays          [8][64]Bitboard // [direction][Square], origin excluded
)

func init() {
	knightJumps := [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}

	for sq := A1; sq <= H8; sq++ {
		for _, j := range knightJumps {
			if to, ok := squareOffset(sq, j[0], j[1]); ok {
				knightAttacks[sq] |= SquareBB(to)
			}
		}

		for dir, d := range rayDelta {
			if to, ok := squareOffset(sq, d[0], d[1]); ok {
				kingAttacks[sq] |= SquareBB(to)
			}
			for to, ok := squareOffset(sq, d[0], d[1]); ok; to, ok = squareOffset(to, d[0], d[1]) {
				rays[dir][sq] |= SquareBB(to)
			}
		}

		for _, df := range [2]int{-1, 1} {
			if to, ok := squareOffset(sq, df, 1); ok {
				pawnAttacks[White][sq] |= SquareBB(to)
			}
			if to, ok := squareOffset(sq, df, -1); ok {
				pawnAttacks[Black][sq] |= SquareBB(to)
			}
		}
	}
}

// rayAttacks returns the squares reached along one ray from sq, stopping at
// (and including) the first occupied square.
func rayAttacks(dir int, sq Square, occupied Bitboard) Bitboard {
	attacks := rays[dir][sq]
	blockers := attacks & occupied
	if blockers == 0 {
		return attacks
	}
	var first Square
	if dir < dirSouth {
		first = blockers.LSB()
	} else {
		first = blockers.MSB()
	}
	return attacks &^ rays[dir][first]
}

// KnightAttacks returns the knight attack set for a square.
func KnightAttacks(sq Square) Bitboard {
	return knightAttacks[sq]
}

// KingAttacks returns the king attack set for a square.
func KingAttacks(sq Square) Bitboard {
	return kingAttacks[sq]
}

// PawnAttacks returns the squares a pawn of color c on sq attacks.
func PawnAttacks(sq Square, c Color) Bitboard {
	return pawnAttacks[c][sq]
}

// BishopAttacks returns the bishop attack set for a square with the given occupancy.
func BishopAttacks(sq Square, occupied Bitboard) Bitboard {
	return rayAttacks(dirNorthEast, sq, occupied) |
		rayAttacks(dirNorthWest, sq, occupied) |
		rayAttacks(dirSouthEast, sq, occupied) |
		rayAttacks(dirSouthWest, sq, occupied)
}

// RookAttacks returns the rook attack set for a square with the given occupancy.
func RookAttacks(sq Square, occupied Bitboard) Bitboard {
	return rayAttacks(dirNorth, sq, occupied) |
		rayAttacks(dirEast, sq, occupied) |
		rayAttacks(dirSouth, sq, occupied) |
		rayAttacks(dirWest, sq, occupied)
}

// QueenAttacks returns the queen attack set for a square with the given occupancy.
func QueenAttacks(sq Square, occupied Bitboard) Bitboard {
	return BishopAttacks(sq, occupied) | RookAttacks(sq, occupied)
}

// AttackersByColor returns the pieces of color c attacking sq.
func (p *Position) AttackersByColor(sq Square, c Color, occupied Bitboard) Bitboard {
	pcs := &p.Pieces[c]
	return (pawnAttacks[c.Other()][sq] & pcs[Pawn]) |
		(knightAttacks[sq] & pcs[Knight]) |
		(kingAttacks[sq] & pcs[King]) |
		(BishopAttacks(sq, occupied) & (pcs[Bishop] | pcs[Queen])) |
		(RookAttacks(sq, occupied) & (pcs[Rook] | pcs[Queen]))
}

// IsSquareAttacked reports whether sq is attacked by color c.
func (p *Position) IsSquareAttacked(sq Square, c Color) bool {
	return p.AttackersByColor(sq, c, p.AllOccupied) != 0
}

// UpdateCheckers recomputes the pieces giving check to the side to move.
func (p *Position) UpdateCheckers() {
	us := p.SideToMove
	if p.Pieces[us][King] == 0 {
		p.Checkers = 0
		return
	}
	p.Checkers = p.AttackersByColor(p.Pieces[us][King].LSB(), us.Other(), p.AllOccupied)
}
