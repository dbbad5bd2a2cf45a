// Package protocol implements a line protocol for querying encoded
// positions. Each command is one line; each reply starts with the command
// name, or is "error <message>" when the command fails.
//
//	newgame                          reset to the initial position
//	position startpos [moves ...]    set a position from moves
//	position fen <fen> [moves ...]
//	load <70 ints>                   set a position from its vector
//	vector                           print the current vector
//	squares                          print the 64 board entries
//	moves                            print the legal moves
//	next                             print the vector after each legal move
//	checkmate | stalemate            print true or false
//	material                         print white and black material
//	terminal                         print checkmate, stalemate or none
//	d                                draw the board
//	perft <depth>                    count leaf nodes
//	isready                          print readyok
//	quit                             stop
package protocol

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/hailam/mlchess/internal/board"
	"github.com/hailam/mlchess/internal/material"
	"github.com/hailam/mlchess/internal/numeric"
	"github.com/hailam/mlchess/internal/render"
)

// MaxPerftDepth bounds perft requests.
const MaxPerftDepth = 7

var errQuit = errors.New("quit")

// Server answers protocol commands for one current position.
type Server struct {
	in       io.Reader
	out      io.Writer
	position *board.Position
}

// New creates a server reading commands from in and replying on out.
func New(in io.Reader, out io.Writer) *Server {
	return &Server{
		in:       in,
		out:      out,
		position: board.NewPosition(),
	}
}

// Position returns the current position.
func (s *Server) Position() *board.Position {
	return s.position
}

// Run processes commands until quit or end of input.
func (s *Server) Run() error {
	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := s.Handle(line); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			fmt.Fprintf(s.out, "error %v\n", err)
		}
	}
	return scanner.Err()
}

// Handle executes one command line.
func (s *Server) Handle(line string) error {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil
	}
	cmd := parts[0]
	args := parts[1:]

	switch cmd {
	case "isready":
		fmt.Fprintln(s.out, "readyok")
	case "newgame":
		s.position = board.NewPosition()
		fmt.Fprintln(s.out, "ok")
	case "position":
		return s.handlePosition(args)
	case "load":
		return s.handleLoad(args)
	case "vector":
		v := numeric.Encode(s.position)
		fmt.Fprintf(s.out, "vector %s\n", v.String())
	case "squares":
		s.handleSquares()
	case "moves":
		s.handleMoves()
	case "next":
		s.handleNext()
	case "checkmate":
		fmt.Fprintf(s.out, "checkmate %t\n", s.position.IsCheckmate())
	case "stalemate":
		fmt.Fprintf(s.out, "stalemate %t\n", s.position.IsStalemate())
	case "material":
		w, b := material.Values(s.position)
		fmt.Fprintf(s.out, "material %d %d %.4f\n", w, b, material.Balance(w, b))
	case "terminal":
		s.handleTerminal()
	case "d":
		fmt.Fprint(s.out, render.Terminal(s.position))
		fmt.Fprintf(s.out, "Fen: %s\n", s.position.FEN())
	case "perft":
		return s.handlePerft(args)
	case "quit":
		return errQuit
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves e2e4 e7e5
//   - position fen <fen>
//   - position fen <fen> moves e2e4
func (s *Server) handlePosition(args []string) error {
	if len(args) == 0 {
		return errors.New("position: missing startpos or fen")
	}

	moveStart := len(args)
	for i, arg := range args {
		if arg == "moves" {
			moveStart = i
			break
		}
	}

	var pos *board.Position
	switch args[0] {
	case "startpos":
		if moveStart != 1 {
			return fmt.Errorf("position: unexpected %q after startpos", args[1])
		}
		pos = board.NewPosition()
	case "fen":
		p, err := board.ParseFEN(strings.Join(args[1:moveStart], " "))
		if err != nil {
			return fmt.Errorf("position: %w", err)
		}
		if err := p.Validate(); err != nil {
			return fmt.Errorf("position: %w", err)
		}
		pos = p
	default:
		return fmt.Errorf("position: unknown kind %q", args[0])
	}

	if moveStart < len(args) {
		for _, moveStr := range args[moveStart+1:] {
			m, err := board.ParseMove(moveStr, pos)
			if err != nil {
				return fmt.Errorf("position: %w", err)
			}
			next := pos.Apply(m)
			pos = &next
		}
	}

	s.position = pos
	fmt.Fprintln(s.out, "ok")
	return nil
}

func (s *Server) handleLoad(args []string) error {
	v, err := numeric.ParseVector(strings.Join(args, " "))
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	pos, err := numeric.Decode(v)
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	s.position = pos
	fmt.Fprintln(s.out, "ok")
	return nil
}

func (s *Server) handleSquares() {
	sq := numeric.SquareVector(s.position)
	fields := make([]string, len(sq))
	for i, x := range sq {
		fields[i] = strconv.FormatFloat(x, 'g', -1, 64)
	}
	fmt.Fprintf(s.out, "squares %s\n", strings.Join(fields, " "))
}

func (s *Server) handleMoves() {
	moves := s.position.LegalMoves()
	fields := make([]string, len(moves))
	for i, m := range moves {
		fields[i] = m.String()
	}
	fmt.Fprintln(s.out, strings.TrimSpace(fmt.Sprintf("moves %d %s", len(moves), strings.Join(fields, " "))))
}

// handleNext prints a count line followed by one vector per legal move.
func (s *Server) handleNext() {
	next := numeric.EncodeAll(s.position.Successors())
	fmt.Fprintf(s.out, "next %d\n", len(next))
	for _, v := range next {
		fmt.Fprintln(s.out, v.String())
	}
}

func (s *Server) handleTerminal() {
	state := "none"
	switch {
	case s.position.IsCheckmate():
		state = "checkmate"
	case s.position.IsStalemate():
		state = "stalemate"
	}
	fmt.Fprintf(s.out, "terminal %s\n", state)
}

// handlePerft runs a perft test.
func (s *Server) handlePerft(args []string) error {
	depth := 3
	if len(args) > 0 {
		d, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("perft: %w", err)
		}
		depth = d
	}
	if depth < 1 || depth > MaxPerftDepth {
		return fmt.Errorf("perft: depth %d out of range 1..%d", depth, MaxPerftDepth)
	}

	start := time.Now()
	nodes := board.Perft(s.position, depth)
	elapsed := time.Since(start)

	fmt.Fprintf(s.out, "perft %d nodes %d time %v\n", depth, nodes, elapsed.Round(time.Millisecond))
	return nil
}
