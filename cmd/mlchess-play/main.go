// Command mlchess-play plays a game against the trained agent in the
// terminal. Moves are entered in UCI form (e2e4, e7e8q).
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/hailam/mlchess/internal/agent"
	"github.com/hailam/mlchess/internal/board"
	"github.com/hailam/mlchess/internal/env"
	"github.com/hailam/mlchess/internal/logging"
	"github.com/hailam/mlchess/internal/record"
	"github.com/hailam/mlchess/internal/render"
	"github.com/hailam/mlchess/internal/storage"
)

var (
	side      = flag.String("color", "white", "your color: white or black")
	foresight = flag.Int("foresight", 4, "plies the agent looks ahead")
	dbDir     = flag.String("db", "", "database directory (default: platform data dir)")
	pngPath   = flag.String("png", "", "write the final position to this PNG file")
	noColor   = flag.Bool("nocolor", false, "disable coloured output")
	logFile   = flag.String("log", "", "write logs to this file")
)

var (
	errResign = errors.New("resigned")
	errQuit   = errors.New("quit")
)

func main() {
	flag.Parse()
	if *noColor {
		color.NoColor = true
	}

	f, err := logging.InitLog(*logFile, "[play] ")
	if err != nil {
		log.Fatal(err)
	}
	if f != nil {
		defer f.Close()
	}

	if err := run(); err != nil {
		log.Print(err)
		if f != nil {
			f.Close()
		}
		os.Exit(1)
	}
}

func run() error {
	human := board.White
	switch strings.ToLower(*side) {
	case "white", "w":
	case "black", "b":
		human = board.Black
	default:
		return fmt.Errorf("unknown color %q", *side)
	}

	var (
		store *storage.Storage
		err   error
	)
	if *dbDir != "" {
		store, err = storage.Open(*dbDir)
	} else {
		store, err = storage.NewStorage()
	}
	if err != nil {
		return err
	}
	defer store.Close()

	cfg := agent.DefaultConfig()
	cfg.Color = human.Other()
	cfg.Foresight = *foresight
	cfg.Exploration = 0
	cfg.Seed = time.Now().UnixNano()
	a := agent.New(cfg)

	entries, err := store.LoadExperience()
	if err != nil {
		return err
	}
	a.Experience().Restore(entries)

	white, black := "human", "agent"
	if human == board.Black {
		white, black = black, white
	}
	rec := record.NewRecorder("play", white, black)
	e := env.New()
	in := bufio.NewScanner(os.Stdin)
	start := time.Now()
	resigned := false

	for !e.IsTerminated() && !rec.Over() {
		fmt.Print(render.Terminal(&e.State))

		if e.State.SideToMove == human {
			m, err := readMove(in, &e.State)
			if errors.Is(err, errResign) {
				resigned = true
				break
			}
			if err != nil {
				break
			}
			if err := rec.Push(m); err != nil {
				return err
			}
			e.ApplyChange(e.State.Apply(m))
			continue
		}

		next, err := a.React(context.Background(), e)
		if err != nil {
			return err
		}
		m, _ := e.State.MoveTo(&next)
		fmt.Printf("agent plays %s\n", m)
		if err := rec.Push(m); err != nil {
			return err
		}
		e.ApplyChange(next)
	}

	fmt.Print(render.Terminal(&e.State))
	gameRec := rec.Finish()
	if resigned {
		fmt.Println("you resigned")
	} else {
		fmt.Printf("result %s (%s)\n", gameRec.Result, gameRec.Reason)
	}

	if err := store.SaveGame(gameRec); err != nil {
		log.Printf("save game: %v", err)
	}
	if result, ok := agentResult(e, rec.Over(), resigned, a.Color(), time.Since(start)); ok {
		if err := store.RecordGame(result); err != nil {
			log.Printf("record game: %v", err)
		}
	}
	if err := store.SaveExperience(a.Experience().Snapshot()); err != nil {
		log.Printf("save experience: %v", err)
	}

	if *pngPath != "" {
		out, err := os.Create(*pngPath)
		if err != nil {
			return err
		}
		defer out.Close()
		if err := render.PNG(out, &e.State, 480); err != nil {
			return err
		}
	}
	return nil
}

// agentResult returns the game result for the agent's statistics. Games the
// human left unfinished are not counted; a resignation is a win.
func agentResult(e *env.Environment, over, resigned bool, agentColor board.Color, d time.Duration) (storage.GameResult, bool) {
	switch {
	case resigned:
		return storage.GameResult{Won: true, Duration: d}, true
	case !over && !e.IsTerminated():
		return storage.GameResult{}, false
	}
	outcome := e.TerminalState(agentColor)
	return storage.GameResult{
		Won:      outcome == env.Win,
		Draw:     outcome == env.Draw,
		Duration: d,
	}, true
}

// readMove prompts until a legal move is entered. It returns errResign or
// errQuit when the human stops playing.
func readMove(in *bufio.Scanner, pos *board.Position) (board.Move, error) {
	for {
		fmt.Print("your move: ")
		if !in.Scan() {
			return board.NoMove, errQuit
		}
		text := strings.TrimSpace(in.Text())
		switch text {
		case "":
			continue
		case "quit":
			return board.NoMove, errQuit
		case "resign":
			return board.NoMove, errResign
		case "moves":
			for _, m := range pos.LegalMoves() {
				fmt.Print(m, " ")
			}
			fmt.Println()
			continue
		}
		m, err := board.ParseMove(text, pos)
		if err != nil {
			fmt.Println(err)
			continue
		}
		return m, nil
	}
}
