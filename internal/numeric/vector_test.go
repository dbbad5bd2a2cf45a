package numeric

import (
	"errors"
	"testing"

	"github.com/hailam/mlchess/internal/board"
)

func TestNewGameState(t *testing.T) {
	v := NewGameState()

	backRank := []int32{CodeRook, CodeKnight, CodeBishop, CodeQueen, CodeKing, CodeBishop, CodeKnight, CodeRook}
	for file, want := range backRank {
		if v[file] != want {
			t.Errorf("square %d = %d, want %d", file, v[file], want)
		}
		if v[56+file] != -want {
			t.Errorf("square %d = %d, want %d", 56+file, v[56+file], -want)
		}
		if v[8+file] != CodePawn || v[48+file] != -CodePawn {
			t.Errorf("pawn ranks wrong on file %d: %d %d", file, v[8+file], v[48+file])
		}
	}
	for sq := 16; sq < 48; sq++ {
		if v[sq] != CodeEmpty {
			t.Errorf("square %d = %d, want empty", sq, v[sq])
		}
	}

	meta := map[int]int32{
		IndexSideToMove:     1,
		IndexCastling:       15,
		IndexEnPassant:      -1,
		IndexHalfMoveClock:  0,
		IndexFullMoveNumber: 1,
		IndexInCheck:        0,
	}
	for i, want := range meta {
		if v[i] != want {
			t.Errorf("v[%d] = %d, want %d", i, v[i], want)
		}
	}
}

func TestDecodeInverse(t *testing.T) {
	for _, fen := range []string{
		board.StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3",
		"rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3",
	} {
		pos, err := board.ParseFEN(fen)
		if err != nil {
			t.Fatal(err)
		}
		v := Encode(pos)
		back, err := Decode(v)
		if err != nil {
			t.Fatalf("Decode(%s): %v", fen, err)
		}
		if back.FEN() != fen {
			t.Errorf("Decode(Encode(%s)) = %s", fen, back.FEN())
		}
		if Encode(back) != v {
			t.Errorf("re-encoding %s changed the vector", fen)
		}
	}
}

func TestDecodeRejects(t *testing.T) {
	start := NewGameState()

	tests := []struct {
		name   string
		mutate func(v *Vector)
	}{
		{"piece code too large", func(v *Vector) { v[20] = 7 }},
		{"piece code too small", func(v *Vector) { v[20] = -7 }},
		{"missing white king", func(v *Vector) { v[4] = 0 }},
		{"extra black king", func(v *Vector) { v[30] = -CodeKing }},
		{"side to move zero", func(v *Vector) { v[IndexSideToMove] = 0 }},
		{"castling out of range", func(v *Vector) { v[IndexCastling] = 16 }},
		{"castling without rook", func(v *Vector) { v[7] = 0 }},
		{"en passant off board", func(v *Vector) { v[IndexEnPassant] = 64 }},
		{"en passant without pawn", func(v *Vector) { v[IndexEnPassant] = 20 }},
		{"negative clock", func(v *Vector) { v[IndexHalfMoveClock] = -1 }},
		{"zero full move", func(v *Vector) { v[IndexFullMoveNumber] = 0 }},
		{"check flag", func(v *Vector) { v[IndexInCheck] = 2 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := start
			tc.mutate(&v)
			if _, err := Decode(v); !errors.Is(err, ErrInvalidVector) {
				t.Errorf("Decode() error = %v, want ErrInvalidVector", err)
			}
		})
	}
}

func TestDecodeRecomputesCheckFlag(t *testing.T) {
	v := NewGameState()
	v[IndexInCheck] = 1
	pos, err := Decode(v)
	if err != nil {
		t.Fatal(err)
	}
	if pos.InCheck() {
		t.Error("check flag was trusted instead of recomputed")
	}
	if Encode(pos)[IndexInCheck] != 0 {
		t.Error("re-encoded check flag should be 0")
	}
}

func TestParseVector(t *testing.T) {
	v := NewGameState()
	got, err := ParseVector(v.String())
	if err != nil {
		t.Fatal(err)
	}
	if got != v {
		t.Errorf("ParseVector(String()) = %v, want %v", got, v)
	}
	if _, err := ParseVector("1 2 3"); !errors.Is(err, ErrInvalidVector) {
		t.Errorf("short vector error = %v", err)
	}
}

func TestSquareVector(t *testing.T) {
	sq := SquareVector(board.NewPosition())
	if sq[board.E1] != 6 || sq[board.E8] != -6 || sq[board.B1] != 3 || sq[board.C8] != -2 || sq[board.E4] != 0 {
		t.Errorf("unexpected square vector: %v", sq)
	}
}
