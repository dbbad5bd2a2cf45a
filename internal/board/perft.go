package board

// Perft counts the leaf nodes of the legal move tree at the given depth.
func Perft(p *Position, depth int) int64 {
	if depth <= 0 {
		return 1
	}
	if depth == 1 {
		return int64(len(p.LegalMoves()))
	}
	var nodes int64
	for _, next := range p.Successors() {
		nodes += Perft(&next, depth-1)
	}
	return nodes
}
