package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/hailam/mlchess/internal/board"
)

// MinPNGSize is the smallest board PNG accepts.
const MinPNGSize = 64

const (
	lightFill = "#eeeed2"
	darkFill  = "#769656"
	checkFill = "#e06c5a"
)

var (
	whiteDisk = color.RGBA{0xfa, 0xfa, 0xfa, 0xff}
	blackDisk = color.RGBA{0x22, 0x22, 0x22, 0xff}
	labelInk  = color.RGBA{0x30, 0x30, 0x30, 0xff}
)

// boardSVG describes the squares and piece disks of pos on an 8x8 grid,
// White at the bottom. The king in check sits on a red square.
func boardSVG(pos *board.Position) string {
	var sb strings.Builder
	sb.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 8 8" width="8" height="8">`)

	checked := board.NoSquare
	if pos.InCheck() {
		checked = pos.KingSquare[pos.SideToMove]
	}

	for rank := 7; rank >= 0; rank-- {
		for file := 0; file < 8; file++ {
			sq := board.NewSquare(file, rank)
			x, y := file, 7-rank

			fill := darkFill
			if (file+rank)%2 == 1 {
				fill = lightFill
			}
			if sq == checked {
				fill = checkFill
			}
			fmt.Fprintf(&sb, `<rect x="%d" y="%d" width="1" height="1" fill="%s"/>`, x, y, fill)

			p := pos.PieceAt(sq)
			if p == board.NoPiece {
				continue
			}
			disk, rim := "#fafafa", "#222222"
			if p.Color() == board.Black {
				disk, rim = rim, disk
			}
			fmt.Fprintf(&sb, `<circle cx="%g" cy="%g" r="0.4" fill="%s" stroke="%s" stroke-width="0.05"/>`,
				float64(x)+0.5, float64(y)+0.5, disk, rim)
		}
	}
	sb.WriteString(`</svg>`)
	return sb.String()
}

// Image rasterizes pos into a size x size image.
func Image(pos *board.Position, size int) (*image.RGBA, error) {
	if size < MinPNGSize {
		return nil, fmt.Errorf("render: size %d below minimum %d", size, MinPNGSize)
	}

	icon, err := oksvg.ReadIconStream(strings.NewReader(boardSVG(pos)))
	if err != nil {
		return nil, fmt.Errorf("render: parse board svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	rgba := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, rgba, rgba.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)

	cellSize := size / 8
	face, err := pieceFace(cellSize)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	for sq := board.A1; sq <= board.H8; sq++ {
		p := pos.PieceAt(sq)
		if p == board.NoPiece {
			continue
		}
		ink := blackDisk
		if p.Color() == board.Black {
			ink = whiteDisk
		}
		letter := strings.ToUpper(p.String())
		x := sq.File() * size / 8
		y := (7 - sq.Rank()) * size / 8
		drawCentered(rgba, face, ink, letter, x, y, cellSize)
	}

	drawLabels(rgba, size)
	return rgba, nil
}

// PNG writes pos as a size x size PNG image to w.
func PNG(w io.Writer, pos *board.Position, size int) error {
	img, err := Image(pos, size)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

func pieceFace(cellSize int) (font.Face, error) {
	f, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("render: parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(cellSize) * 0.5,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("render: font face: %w", err)
	}
	return face, nil
}

func drawCentered(dst *image.RGBA, face font.Face, ink color.Color, s string, x, y, cellSize int) {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(ink), Face: face}
	width := d.MeasureString(s).Round()
	m := face.Metrics()
	height := (m.Ascent + m.Descent).Round()
	d.Dot = fixed.P(x+(cellSize-width)/2, y+(cellSize-height)/2+m.Ascent.Round())
	d.DrawString(s)
}

// drawLabels writes file letters along the bottom edge and rank digits
// along the left edge.
func drawLabels(dst *image.RGBA, size int) {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(labelInk), Face: basicfont.Face7x13}
	cellSize := size / 8
	for i := 0; i < 8; i++ {
		d.Dot = fixed.P(i*cellSize+cellSize-9, size-3)
		d.DrawString(string(rune('a' + i)))

		d.Dot = fixed.P(2, (7-i)*cellSize+12)
		d.DrawString(string(rune('1' + i)))
	}
}
