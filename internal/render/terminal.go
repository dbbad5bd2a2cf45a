// Package render draws positions for people: coloured text for terminals
// and PNG images.
package render

import (
	"strings"

	"github.com/fatih/color"

	"github.com/hailam/mlchess/internal/board"
)

var (
	lightSquare = color.BgHiWhite
	darkSquare  = color.BgGreen
	whitePiece  = color.FgHiBlue
	blackPiece  = color.FgBlack
)

// Terminal returns pos as an 8x8 board with rank and file labels, White at
// the bottom. Colours are dropped when color.NoColor is set.
func Terminal(pos *board.Position) string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		sb.WriteByte(byte('1' + rank))
		sb.WriteByte(' ')
		for file := 0; file < 8; file++ {
			sq := board.NewSquare(file, rank)
			sb.WriteString(cell(pos.PieceAt(sq), (file+rank)%2 == 1))
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("   a  b  c  d  e  f  g  h\n")
	return sb.String()
}

func cell(p board.Piece, light bool) string {
	glyph := " . "
	if p != board.NoPiece {
		glyph = " " + p.String() + " "
	}
	if color.NoColor {
		return glyph
	}

	bg := darkSquare
	if light {
		bg = lightSquare
	}
	if p == board.NoPiece {
		return color.New(bg).Sprint(glyph)
	}
	fg := whitePiece
	if p.Color() == board.Black {
		fg = blackPiece
	}
	return color.New(bg, fg, color.Bold).Sprint(glyph)
}
