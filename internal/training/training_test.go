package training

import (
	"context"
	"errors"
	"testing"

	"github.com/hailam/mlchess/internal/agent"
	"github.com/hailam/mlchess/internal/board"
	"github.com/hailam/mlchess/internal/storage"
)

type countingStore struct {
	*storage.Storage
	saves int
}

func (c *countingStore) SaveExperience(entries map[string]agent.Recollection) error {
	c.saves++
	return c.Storage.SaveExperience(entries)
}

func newStore(t *testing.T) *countingStore {
	t.Helper()
	s, err := storage.OpenInMemory()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return &countingStore{Storage: s}
}

func smallAgent() *agent.Agent {
	cfg := agent.DefaultConfig()
	cfg.Foresight = 2
	return agent.New(cfg)
}

func TestRun(t *testing.T) {
	store := newStore(t)
	a := smallAgent()
	opts := Options{GameLimit: 4, TurnLimit: 16, SaveEvery: 2, Seed: 3, Run: "quiet-heron"}

	sum, err := New(a, store, opts).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if sum.Games != 4 || sum.Wins+sum.Losses+sum.Draws != 4 {
		t.Errorf("summary = %s", sum)
	}
	if store.saves != 3 {
		t.Errorf("experience saved %d times, want 3", store.saves)
	}

	games, err := store.ListGames()
	if err != nil {
		t.Fatal(err)
	}
	if len(games) != 4 {
		t.Fatalf("stored %d games, want 4", len(games))
	}
	for i, g := range games {
		if g.Run != "quiet-heron" || len(g.Moves) == 0 || len(g.Moves) > 16 {
			t.Errorf("game %d: run=%s moves=%d", i, g.Run, len(g.Moves))
		}
		wantWhite := "agent"
		if i%2 == 1 {
			wantWhite = "random"
		}
		if g.White != wantWhite {
			t.Errorf("game %d: white = %s, want %s", i, g.White, wantWhite)
		}
	}

	stats, err := store.LoadStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.GamesPlayed != 4 {
		t.Errorf("GamesPlayed = %d, want 4", stats.GamesPlayed)
	}

	exp, err := store.LoadExperience()
	if err != nil {
		t.Fatal(err)
	}
	if len(exp) != a.Experience().Len() {
		t.Errorf("stored %d positions, agent knows %d", len(exp), a.Experience().Len())
	}
	t.Logf("%s, %d positions evaluated", sum, a.PositionsEvaluated())
}

func TestRunResumes(t *testing.T) {
	store := newStore(t)
	key := board.NewPosition().Key()
	if err := store.Storage.SaveExperience(map[string]agent.Recollection{
		key: {TimesEncountered: 5, AverageValue: 0.3},
	}); err != nil {
		t.Fatal(err)
	}

	a := smallAgent()
	opts := Options{GameLimit: 0, SaveEvery: 1, Resume: true, Run: "r"}
	if _, err := New(a, store, opts).Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if r, ok := a.Experience().Lookup(board.NewPosition()); !ok || r.TimesEncountered != 5 {
		t.Errorf("experience not resumed: %+v %v", r, ok)
	}
}

func TestRunCancelled(t *testing.T) {
	store := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sum, err := New(smallAgent(), store, DefaultOptions()).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run error = %v, want context.Canceled", err)
	}
	if sum.Games != 0 {
		t.Errorf("played %d games after cancel", sum.Games)
	}
	if store.saves != 1 {
		t.Errorf("experience saved %d times on cancel, want 1", store.saves)
	}
}
