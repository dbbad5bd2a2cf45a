// Package material sums piece values for each side of a position.
package material

import "github.com/hailam/mlchess/internal/board"

// Value is the material worth of each piece type in pawn units. Kings are
// never captured and count for nothing.
var Value = [7]int{
	board.Pawn:        1,
	board.Knight:      3,
	board.Bishop:      3,
	board.Rook:        5,
	board.Queen:       9,
	board.King:        0,
	board.NoPieceType: 0,
}

// Values returns the total material of White and Black.
func Values(pos *board.Position) (white, black int) {
	for pt := board.Pawn; pt < board.King; pt++ {
		white += pos.Pieces[board.White][pt].PopCount() * Value[pt]
		black += pos.Pieces[board.Black][pt].PopCount() * Value[pt]
	}
	return white, black
}

// Balance normalizes a material count into [-1, 1] from White's point of
// view by dividing the difference by the larger side. Bare kings give 0.
func Balance(white, black int) float64 {
	most := max(white, black)
	if most == 0 {
		return 0
	}
	return float64(white-black) / float64(most)
}
