package main

import (
	"github.com/hailam/mlchess/internal/numeric"
)

// Status codes returned across the C boundary.
const (
	statusOK       = 0
	statusInvalid  = -1
	statusCapacity = -2
)

func readVector(in []int32) numeric.Vector {
	var v numeric.Vector
	copy(v[:], in)
	return v
}

func newGameState(out []int32) {
	v := numeric.NewGameState()
	copy(out, v[:])
}

func boolStatus(ok bool, err error) int32 {
	switch {
	case err != nil:
		return statusInvalid
	case ok:
		return 1
	default:
		return 0
	}
}

func isCheckmate(in []int32) int32 {
	return boolStatus(numeric.IsCheckmate(readVector(in)))
}

func isStalemate(in []int32) int32 {
	return boolStatus(numeric.IsStalemate(readVector(in)))
}

func materialValues(in, out []int32) int32 {
	values, err := numeric.MaterialValues(readVector(in))
	if err != nil {
		return statusInvalid
	}
	copy(out, values[:])
	return statusOK
}

// validBuffer reports whether an output buffer of capacity entries can be
// used. A zero capacity needs no buffer.
func validBuffer(present bool, capacity int) bool {
	return capacity == 0 || present && capacity > 0
}

// legalNextStates writes each successor as Length consecutive ints and
// returns how many were written. out holds capacity successors.
func legalNextStates(in, out []int32, capacity int) int32 {
	next, err := numeric.LegalNextStates(readVector(in))
	if err != nil {
		return statusInvalid
	}
	if len(next) > capacity {
		return statusCapacity
	}
	for i, v := range next {
		copy(out[i*numeric.Length:], v[:])
	}
	return int32(len(next))
}

// legalMoves writes each move as a from, to, promotion triple.
func legalMoves(in, out []int32, capacity int) int32 {
	moves, err := numeric.LegalMoves(readVector(in))
	if err != nil {
		return statusInvalid
	}
	if len(moves) > capacity {
		return statusCapacity
	}
	for i, m := range moves {
		copy(out[i*3:], m[:])
	}
	return int32(len(moves))
}
