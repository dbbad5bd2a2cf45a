package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hailam/mlchess/internal/agent"
)

func openTest(t *testing.T) *Storage {
	t.Helper()
	s, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestExperience(t *testing.T) {
	s := openTest(t)

	first := map[string]agent.Recollection{
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -":   {TimesEncountered: 3, AverageValue: 0.1},
		"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq -": {TimesEncountered: 1, AverageValue: -0.5},
	}
	if err := s.SaveExperience(first); err != nil {
		t.Fatalf("SaveExperience failed: %v", err)
	}
	got, err := s.LoadExperience()
	if err != nil {
		t.Fatalf("LoadExperience failed: %v", err)
	}
	if len(got) != len(first) {
		t.Fatalf("loaded %d entries, want %d", len(got), len(first))
	}
	for k, want := range first {
		if got[k] != want {
			t.Errorf("entry %q = %+v, want %+v", k, got[k], want)
		}
	}

	// A second save replaces the first.
	second := map[string]agent.Recollection{
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -": {TimesEncountered: 4, AverageValue: 0.2},
	}
	if err := s.SaveExperience(second); err != nil {
		t.Fatalf("SaveExperience failed: %v", err)
	}
	got, err = s.LoadExperience()
	if err != nil {
		t.Fatalf("LoadExperience failed: %v", err)
	}
	if len(got) != 1 || got["rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -"].TimesEncountered != 4 {
		t.Errorf("second save not applied: %+v", got)
	}
}

func TestGames(t *testing.T) {
	s := openTest(t)

	if _, err := s.LoadGame("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadGame(missing) error = %v, want ErrNotFound", err)
	}
	if err := s.SaveGame(&GameRecord{}); err == nil {
		t.Error("SaveGame accepted a record without id")
	}

	now := time.Now()
	recs := []*GameRecord{
		{ID: "b", Run: "brave-otter", Result: "1-0", Moves: []string{"e2e4"}, Started: now.Add(time.Minute)},
		{ID: "a", Run: "brave-otter", Result: "0-1", Moves: []string{"f2f3", "e7e5"}, Started: now},
	}
	for _, r := range recs {
		if err := s.SaveGame(r); err != nil {
			t.Fatalf("SaveGame failed: %v", err)
		}
	}

	got, err := s.LoadGame("b")
	if err != nil {
		t.Fatalf("LoadGame failed: %v", err)
	}
	if got.Result != "1-0" || len(got.Moves) != 1 {
		t.Errorf("LoadGame = %+v", got)
	}

	games, err := s.ListGames()
	if err != nil {
		t.Fatalf("ListGames failed: %v", err)
	}
	if len(games) != 2 || games[0].ID != "a" || games[1].ID != "b" {
		t.Errorf("ListGames order wrong: %v", games)
	}
}

func TestStats(t *testing.T) {
	s := openTest(t)

	stats, err := s.LoadStats()
	if err != nil {
		t.Fatalf("LoadStats failed: %v", err)
	}
	if stats.GamesPlayed != 0 || stats.GetWinRate() != 0 {
		t.Errorf("expected empty stats, got %+v", stats)
	}

	for _, r := range []GameResult{
		{Won: true, Duration: time.Second},
		{Won: true, Duration: time.Second},
		{Draw: true},
		{Won: true},
		{},
	} {
		if err := s.RecordGame(r); err != nil {
			t.Fatalf("RecordGame failed: %v", err)
		}
	}

	stats, err = s.LoadStats()
	if err != nil {
		t.Fatalf("LoadStats failed: %v", err)
	}
	if stats.GamesPlayed != 5 || stats.Wins != 3 || stats.Draws != 1 || stats.Losses != 1 {
		t.Errorf("unexpected counts: %+v", stats)
	}
	if stats.LongestWinStrk != 2 || stats.CurrentStreak != 0 {
		t.Errorf("unexpected streaks: %+v", stats)
	}
	if stats.TotalPlayTime != 2*time.Second {
		t.Errorf("TotalPlayTime = %v, want 2s", stats.TotalPlayTime)
	}
	if rate := stats.GetWinRate(); rate != 60 {
		t.Errorf("Expected 60%% win rate, got %.2f%%", rate)
	}
}

func TestOpenDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := s.RecordGame(GameResult{Won: true}); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = Open(dir)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()
	stats, err := s.LoadStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Wins != 1 {
		t.Errorf("stats not persisted: %+v", stats)
	}
}

func TestDataPaths(t *testing.T) {
	override := filepath.Join(t.TempDir(), "data")
	t.Setenv(DataDirEnv, override)

	dataDir, err := GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir failed: %v", err)
	}
	if dataDir != override {
		t.Errorf("GetDataDir = %s, want %s", dataDir, override)
	}

	dbDir, err := GetDatabaseDir()
	if err != nil {
		t.Fatalf("GetDatabaseDir failed: %v", err)
	}
	if _, err := os.Stat(dbDir); os.IsNotExist(err) {
		t.Errorf("Database directory was not created: %s", dbDir)
	}

	gamesDir, err := GetGamesDir()
	if err != nil {
		t.Fatalf("GetGamesDir failed: %v", err)
	}
	t.Logf("Data directory: %s, games: %s", dataDir, gamesDir)
}
