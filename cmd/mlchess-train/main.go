// Command mlchess-train trains the value-learning agent against a random
// opponent and stores its experience, games and statistics.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/hailam/mlchess/internal/agent"
	"github.com/hailam/mlchess/internal/logging"
	"github.com/hailam/mlchess/internal/storage"
	"github.com/hailam/mlchess/internal/training"
)

var (
	games       = flag.Int("games", 100, "number of training games")
	turns       = flag.Int("turns", 200, "plies per game before it is abandoned")
	saveEvery   = flag.Int("save-every", 10, "persist experience every N games")
	seed        = flag.Int64("seed", 1, "random seed")
	foresight   = flag.Int("foresight", 4, "plies the agent looks ahead")
	discount    = flag.Float64("discount", 0.9, "per-ply value discount")
	exploration = flag.Float64("exploration", 0.5, "probability of exploring a random line")
	purge       = flag.Int("purge", 100000, "experience size that triggers a purge")
	parallel    = flag.Int("parallel", 1, "concurrent evaluations per move")
	dbDir       = flag.String("db", "", "database directory (default: platform data dir)")
	fresh       = flag.Bool("fresh", false, "ignore stored experience")
	runName     = flag.String("run", "", "run name (default: random)")
	logFile     = flag.String("log", "", "write logs to this file")
	exportPGN   = flag.Bool("export", false, "write the PGN of every stored game to the games directory and exit")
)

func main() {
	flag.Parse()

	f, err := logging.InitLog(*logFile, "[train] ")
	if err != nil {
		log.Fatal(err)
	}
	if f != nil {
		defer f.Close()
	}

	store, err := openStore()
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	if *exportPGN {
		if err := export(store); err != nil {
			log.Fatal(err)
		}
		return
	}

	cfg := agent.DefaultConfig()
	cfg.Foresight = *foresight
	cfg.Discount = *discount
	cfg.Exploration = *exploration
	cfg.PurgeThreshold = *purge
	cfg.Parallelism = *parallel
	cfg.Seed = *seed
	a := agent.New(cfg)

	opts := training.DefaultOptions()
	opts.GameLimit = *games
	opts.TurnLimit = *turns
	opts.SaveEvery = *saveEvery
	opts.Seed = *seed
	opts.Resume = !*fresh
	opts.Run = *runName

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sum, err := training.New(a, store, opts).Run(ctx)
	if err != nil {
		log.Printf("training stopped: %v", err)
	}

	stats, err := store.LoadStats()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(sum)
	fmt.Printf("all runs: %d games, win rate %.1f%%, longest streak %d, %d positions known\n",
		stats.GamesPlayed, stats.GetWinRate(), stats.LongestWinStrk, a.Experience().Len())
}

func openStore() (*storage.Storage, error) {
	if *dbDir != "" {
		return storage.Open(*dbDir)
	}
	return storage.NewStorage()
}

func export(store *storage.Storage) error {
	dir, err := storage.GetGamesDir()
	if err != nil {
		return err
	}
	records, err := store.ListGames()
	if err != nil {
		return err
	}

	byRun := make(map[string][]string)
	for _, rec := range records {
		byRun[rec.Run] = append(byRun[rec.Run], rec.PGN)
	}
	for run, pgns := range byRun {
		path := filepath.Join(dir, run+".pgn")
		if err := os.WriteFile(path, []byte(strings.Join(pgns, "\n\n")+"\n"), 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		log.Printf("wrote %d games to %s", len(pgns), path)
	}
	return nil
}
