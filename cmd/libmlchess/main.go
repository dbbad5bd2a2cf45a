// Command libmlchess builds the shared library that exposes the encoded
// game state to C callers:
//
//	go build -buildmode=c-shared -o libmlchess.so ./cmd/libmlchess
//
// Every position crosses the boundary as an int[70] array laid out as
// described in internal/numeric. Functions returning int use -1 for an
// invalid input position.
package main

/*
#include <stdint.h>
*/
import "C"
import (
	"unsafe"

	"github.com/hailam/mlchess/internal/numeric"
)

func ints(p *C.int, n int) []int32 {
	return unsafe.Slice((*int32)(unsafe.Pointer(p)), n)
}

//export fill_array_with_new_gamestate
func fill_array_with_new_gamestate(out *C.int) {
	if out == nil {
		return
	}
	newGameState(ints(out, numeric.Length))
}

//export numeric_gamestate_is_checkmate
func numeric_gamestate_is_checkmate(in *C.int) C.int {
	if in == nil {
		return statusInvalid
	}
	return C.int(isCheckmate(ints(in, numeric.Length)))
}

//export numeric_gamestate_is_stalemate
func numeric_gamestate_is_stalemate(in *C.int) C.int {
	if in == nil {
		return statusInvalid
	}
	return C.int(isStalemate(ints(in, numeric.Length)))
}

//export numeric_gamestate_material_values
func numeric_gamestate_material_values(in, out *C.int) C.int {
	if in == nil || out == nil {
		return statusInvalid
	}
	return C.int(materialValues(ints(in, numeric.Length), ints(out, 2)))
}

//export numeric_gamestate_legal_next_states
func numeric_gamestate_legal_next_states(in, out *C.int, capacity C.int) C.int {
	if in == nil || !validBuffer(out != nil, int(capacity)) {
		return statusInvalid
	}
	n := int(capacity)
	return C.int(legalNextStates(ints(in, numeric.Length), ints(out, n*numeric.Length), n))
}

//export numeric_gamestate_legal_moves
func numeric_gamestate_legal_moves(in, out *C.int, capacity C.int) C.int {
	if in == nil || !validBuffer(out != nil, int(capacity)) {
		return statusInvalid
	}
	n := int(capacity)
	return C.int(legalMoves(ints(in, numeric.Length), ints(out, n*3), n))
}

func main() {}
