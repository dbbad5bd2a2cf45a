package main

import (
	"testing"

	"github.com/hailam/mlchess/internal/board"
	"github.com/hailam/mlchess/internal/numeric"
)

func vectorOf(t *testing.T, fen string) []int32 {
	t.Helper()
	pos, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatal(err)
	}
	v := numeric.Encode(pos)
	return v[:]
}

func TestNewGameState(t *testing.T) {
	out := make([]int32, numeric.Length)
	newGameState(out)
	want := numeric.NewGameState()
	if readVector(out) != want {
		t.Errorf("got %v, want %v", out, want)
	}
}

func TestTerminalCodes(t *testing.T) {
	tests := []struct {
		name            string
		in              []int32
		mate, stalemate int32
	}{
		{"start", vectorOf(t, board.StartFEN), 0, 0},
		{"fools mate", vectorOf(t, "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3"), 1, 0},
		{"stalemate", vectorOf(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1"), 0, 1},
		{"invalid", make([]int32, numeric.Length), statusInvalid, statusInvalid},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := isCheckmate(tc.in); got != tc.mate {
				t.Errorf("isCheckmate = %d, want %d", got, tc.mate)
			}
			if got := isStalemate(tc.in); got != tc.stalemate {
				t.Errorf("isStalemate = %d, want %d", got, tc.stalemate)
			}
		})
	}
}

func TestMaterialValues(t *testing.T) {
	out := make([]int32, 2)
	if got := materialValues(vectorOf(t, board.StartFEN), out); got != statusOK {
		t.Fatalf("status = %d", got)
	}
	if out[0] != 39 || out[1] != 39 {
		t.Errorf("material = %v, want [39 39]", out)
	}
	if got := materialValues(make([]int32, numeric.Length), out); got != statusInvalid {
		t.Errorf("invalid input status = %d", got)
	}
}

func TestLegalNextStates(t *testing.T) {
	in := vectorOf(t, board.StartFEN)
	out := make([]int32, numeric.MaxNextStates*numeric.Length)
	n := legalNextStates(in, out, numeric.MaxNextStates)
	if n != 20 {
		t.Fatalf("count = %d, want 20", n)
	}
	for i := 0; i < int(n); i++ {
		v := readVector(out[i*numeric.Length:])
		if _, err := numeric.Decode(v); err != nil {
			t.Errorf("state %d does not decode: %v", i, err)
		}
	}

	small := make([]int32, 5*numeric.Length)
	if got := legalNextStates(in, small, 5); got != statusCapacity {
		t.Errorf("small capacity status = %d, want %d", got, statusCapacity)
	}
}

func TestLegalMoves(t *testing.T) {
	in := vectorOf(t, board.StartFEN)
	out := make([]int32, numeric.MaxNextStates*3)
	n := legalMoves(in, out, numeric.MaxNextStates)
	if n != 20 {
		t.Fatalf("count = %d, want 20", n)
	}
	found := false
	for i := 0; i < int(n); i++ {
		if out[i*3] == int32(board.E2) && out[i*3+1] == int32(board.E4) && out[i*3+2] == 0 {
			found = true
		}
	}
	if !found {
		t.Error("e2e4 missing from triples")
	}
	if got := legalMoves(make([]int32, numeric.Length), out, 10); got != statusInvalid {
		t.Errorf("invalid input status = %d", got)
	}
}

func TestTerminalPositionNeedsNoBuffer(t *testing.T) {
	in := vectorOf(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	if got := legalNextStates(in, nil, 0); got != 0 {
		t.Errorf("legalNextStates = %d, want 0", got)
	}
	if got := legalMoves(in, nil, 0); got != 0 {
		t.Errorf("legalMoves = %d, want 0", got)
	}
	if got := legalMoves(vectorOf(t, board.StartFEN), nil, 0); got != statusCapacity {
		t.Errorf("start position without buffer = %d, want %d", got, statusCapacity)
	}
}

func TestValidBuffer(t *testing.T) {
	tests := []struct {
		present  bool
		capacity int
		want     bool
	}{
		{false, 0, true},
		{true, 0, true},
		{true, 10, true},
		{false, 10, false},
		{true, -1, false},
		{false, -1, false},
	}
	for _, tc := range tests {
		if got := validBuffer(tc.present, tc.capacity); got != tc.want {
			t.Errorf("validBuffer(%v, %d) = %v, want %v", tc.present, tc.capacity, got, tc.want)
		}
	}
}
