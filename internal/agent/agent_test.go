package agent

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/hailam/mlchess/internal/board"
	"github.com/hailam/mlchess/internal/env"
	"github.com/hailam/mlchess/internal/material"
)

func mustPos(t *testing.T, fen string) *board.Position {
	t.Helper()
	pos, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatal(err)
	}
	return pos
}

func deterministic(c board.Color) Config {
	cfg := DefaultConfig()
	cfg.Color = c
	cfg.Exploration = 0
	return cfg
}

func TestMemorizeRunningMean(t *testing.T) {
	exp := NewExperience()
	pos := board.NewPosition()

	exp.Memorize(pos, 0)
	if exp.Len() != 0 {
		t.Fatal("neutral value for an unseen position was stored")
	}

	for _, v := range []float64{1, 0, 0.5} {
		exp.Memorize(pos, v)
	}
	r, ok := exp.Lookup(pos)
	if !ok {
		t.Fatal("position not remembered")
	}
	if r.TimesEncountered != 3 {
		t.Errorf("TimesEncountered = %d, want 3", r.TimesEncountered)
	}
	if math.Abs(r.AverageValue-0.5) > 1e-12 {
		t.Errorf("AverageValue = %v, want 0.5", r.AverageValue)
	}
	if exp.ValueOf(pos) != r.AverageValue {
		t.Error("ValueOf disagrees with Lookup")
	}
}

func TestPurgeKeepsMostEncountered(t *testing.T) {
	exp := NewExperience()
	positions := []*board.Position{board.NewPosition()}
	for _, pos := range positions[0].Successors() {
		positions = append(positions, &pos)
	}
	// positions[i] is memorized i+1 times.
	for i, pos := range positions {
		for n := 0; n <= i; n++ {
			exp.Memorize(pos, 0.1)
		}
	}
	total := len(positions)

	if dropped := exp.Purge(total); dropped != 0 {
		t.Fatalf("Purge at threshold dropped %d", dropped)
	}

	threshold := 8
	dropped := exp.Purge(threshold)
	if exp.Len() != threshold*3/4 {
		t.Fatalf("Len() after purge = %d, want %d", exp.Len(), threshold*3/4)
	}
	if dropped != total-threshold*3/4 {
		t.Errorf("dropped = %d, want %d", dropped, total-threshold*3/4)
	}
	for i, pos := range positions {
		_, ok := exp.Lookup(pos)
		if want := i >= total-threshold*3/4; ok != want {
			t.Errorf("position %d kept=%v, want %v", i, ok, want)
		}
	}
}

func TestSnapshotRestore(t *testing.T) {
	exp := NewExperience()
	exp.Memorize(board.NewPosition(), 0.25)
	snap := exp.Snapshot()

	other := NewExperience()
	other.Restore(snap)
	if other.ValueOf(board.NewPosition()) != 0.25 {
		t.Error("restored experience lost the value")
	}

	snap[board.NewPosition().Key()] = Recollection{TimesEncountered: 9, AverageValue: -1}
	if other.ValueOf(board.NewPosition()) != 0.25 {
		t.Error("Restore kept a reference to the caller's map")
	}
}

func TestEvaluateTerminal(t *testing.T) {
	a := New(deterministic(board.White))
	tests := []struct {
		name  string
		fen   string
		depth int
		want  float64
	}{
		{"white mated", "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3", 0, -1},
		{"black mated", "R5k1/5ppp/8/8/8/8/8/6K1 b - - 0 1", 1, 0.9},
		{"stalemate", "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", 2, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := a.Evaluate(mustPos(t, tc.fen), tc.depth)
			if math.Abs(got-tc.want) > 1e-12 {
				t.Errorf("Evaluate = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEvaluateAtForesight(t *testing.T) {
	a := New(deterministic(board.White))
	pos := mustPos(t, "4k3/8/8/8/8/8/8/QR2K3 w - - 0 1")
	got := a.Evaluate(pos, a.Config().Foresight)
	want := math.Pow(0.9, 4)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("Evaluate at foresight = %v, want %v", got, want)
	}
	if a.Experience().Len() != 0 {
		t.Error("leaf evaluation should not be memorized")
	}
}

func TestEvaluateBlendsExperience(t *testing.T) {
	const fen = "4k3/8/8/8/8/8/8/QR2K3 w - - 0 1"
	tests := []struct {
		name  string
		prior []float64 // values memorized before evaluating
	}{
		{"unseen", nil},
		{"remembered", []float64{0.5}},
		{"remembered twice", []float64{0.2, -0.4}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := New(deterministic(board.White))
			pos := mustPos(t, fen)
			for _, v := range tc.prior {
				a.Experience().Memorize(pos, v)
			}
			before, _ := a.Experience().Lookup(pos)

			// Every successor keeps the material, so the leaf one ply down
			// is the current balance discounted to foresight.
			depth := a.Config().Foresight - 1
			leaf := material.Balance(material.Values(pos)) * math.Pow(0.9, float64(depth+1))
			want := (before.AverageValue*math.Pow(0.9, float64(depth)) + leaf) / 2

			got := a.Evaluate(pos, depth)
			if math.Abs(got-want) > 1e-12 {
				t.Errorf("Evaluate = %v, want %v", got, want)
			}

			r, ok := a.Experience().Lookup(pos)
			if !ok {
				t.Fatal("evaluated position not memorized")
			}
			n := before.TimesEncountered + 1
			mean := before.AverageValue + (want-before.AverageValue)/float64(n)
			if r.TimesEncountered != n || math.Abs(r.AverageValue-mean) > 1e-12 {
				t.Errorf("memorized %+v, want {%d %v}", r, n, mean)
			}
			if a.Experience().Len() != 1 {
				t.Errorf("Len() = %d, only the root should be memorized", a.Experience().Len())
			}
		})
	}
}

func TestReactFindsMate(t *testing.T) {
	tests := []struct {
		name  string
		color board.Color
		fen   string
	}{
		{"white", board.White, "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1"},
		{"black", board.Black, "r5k1/8/8/8/8/8/5PPP/6K1 b - - 0 1"},
	}
	for _, tc := range tests {
		for _, par := range []int{1, 4} {
			t.Run(tc.name, func(t *testing.T) {
				cfg := deterministic(tc.color)
				cfg.Parallelism = par
				a := New(cfg)
				e := env.FromPosition(*mustPos(t, tc.fen))
				next, err := a.React(context.Background(), e)
				if err != nil {
					t.Fatal(err)
				}
				if !next.IsCheckmate() {
					t.Errorf("parallelism %d chose %s, not a mate", par, next.FEN())
				}
				t.Logf("parallelism %d: %d positions evaluated", par, a.PositionsEvaluated())
			})
		}
	}
}

func TestReactNoDecision(t *testing.T) {
	a := New(DefaultConfig())
	e := env.FromPosition(*mustPos(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1"))
	if _, err := a.React(context.Background(), e); !errors.Is(err, ErrNoDecision) {
		t.Errorf("React error = %v, want ErrNoDecision", err)
	}
}

func TestReactCancelled(t *testing.T) {
	a := New(DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := a.React(ctx, env.New()); !errors.Is(err, context.Canceled) {
		t.Errorf("React error = %v, want context.Canceled", err)
	}
}

func TestReactLearns(t *testing.T) {
	a := New(DefaultConfig())
	e := env.New()
	for i := 0; i < 4; i++ {
		next, err := a.React(context.Background(), e)
		if err != nil {
			t.Fatal(err)
		}
		e.ApplyChange(next)
	}
	if a.PositionsEvaluated() == 0 {
		t.Error("no positions evaluated")
	}
	t.Logf("experience holds %d positions", a.Experience().Len())
}
