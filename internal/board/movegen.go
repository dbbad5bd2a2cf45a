package board

// LegalMoves returns every legal move for the side to move.
func (p *Position) LegalMoves() []Move {
	pseudo := p.pseudoLegalMoves(make([]Move, 0, 64))
	legal := pseudo[:0]
	for _, m := range pseudo {
		if p.isLegal(m) {
			legal = append(legal, m)
		}
	}
	return legal
}

// Successors returns the position reached by each legal move, in the same
// order as LegalMoves.
func (p *Position) Successors() []Position {
	moves := p.LegalMoves()
	next := make([]Position, len(moves))
	for i, m := range moves {
		next[i] = p.Apply(m)
	}
	return next
}

// MoveTo returns the legal move that turns p into next.
func (p *Position) MoveTo(next *Position) (Move, bool) {
	for _, m := range p.LegalMoves() {
		if p.Apply(m) == *next {
			return m, true
		}
	}
	return NoMove, false
}

// HasLegalMoves reports whether the side to move has at least one legal move.
func (p *Position) HasLegalMoves() bool {
	for _, m := range p.pseudoLegalMoves(make([]Move, 0, 64)) {
		if p.isLegal(m) {
			return true
		}
	}
	return false
}

// IsCheckmate reports whether the side to move is checkmated.
func (p *Position) IsCheckmate() bool {
	return p.InCheck() && !p.HasLegalMoves()
}

// IsStalemate reports whether the side to move has no legal move and is not in check.
func (p *Position) IsStalemate() bool {
	return !p.InCheck() && !p.HasLegalMoves()
}

// IsFiftyMoveDraw reports whether fifty moves passed without a capture or pawn move.
func (p *Position) IsFiftyMoveDraw() bool {
	return p.HalfMoveClock >= 100
}

// IsInsufficientMaterial reports whether neither side can possibly mate:
// bare kings, a single minor piece, or bishops that all share a square color.
func (p *Position) IsInsufficientMaterial() bool {
	for c := White; c <= Black; c++ {
		if p.Pieces[c][Pawn]|p.Pieces[c][Rook]|p.Pieces[c][Queen] != 0 {
			return false
		}
	}
	knights := p.Pieces[White][Knight] | p.Pieces[Black][Knight]
	bishops := p.Pieces[White][Bishop] | p.Pieces[Black][Bishop]
	minors := (knights | bishops).PopCount()
	if minors <= 1 {
		return true
	}
	if knights != 0 {
		return false
	}
	return bishops&LightSquares == 0 || bishops&^LightSquares == 0
}

// isLegal reports whether the pseudo-legal move m leaves the mover's king safe.
func (p *Position) isLegal(m Move) bool {
	us := p.SideToMove
	next := p.Apply(m)
	return !next.IsSquareAttacked(next.KingSquare[us], us.Other())
}

// pseudoLegalMoves appends all moves that obey piece movement rules,
// ignoring whether the mover's king is left in check.
func (p *Position) pseudoLegalMoves(ml []Move) []Move {
	us := p.SideToMove
	own := p.Occupied[us]
	occupied := p.AllOccupied

	ml = p.pawnMoves(ml)

	for pt := Knight; pt <= King; pt++ {
		pieces := p.Pieces[us][pt]
		for pieces != 0 {
			from := pieces.PopLSB()
			var targets Bitboard
			switch pt {
			case Knight:
				targets = KnightAttacks(from)
			case Bishop:
				targets = BishopAttacks(from, occupied)
			case Rook:
				targets = RookAttacks(from, occupied)
			case Queen:
				targets = QueenAttacks(from, occupied)
			case King:
				targets = KingAttacks(from)
			}
			targets &^= own
			for targets != 0 {
				ml = append(ml, NewMove(from, targets.PopLSB()))
			}
		}
	}

	return p.castlingMoves(ml)
}

// pawnMoves appends pushes, double pushes, captures, promotions and en passant.
func (p *Position) pawnMoves(ml []Move) []Move {
	us := p.SideToMove
	enemies := p.Occupied[us.Other()]

	forward, startRank, lastRank := 8, 1, 7
	if us == Black {
		forward, startRank, lastRank = -8, 6, 0
	}

	add := func(from, to Square) {
		if to.Rank() == lastRank {
			for _, promo := range [...]PieceType{Queen, Rook, Bishop, Knight} {
				ml = append(ml, NewPromotion(from, to, promo))
			}
			return
		}
		ml = append(ml, NewMove(from, to))
	}

	pawns := p.Pieces[us][Pawn]
	for pawns != 0 {
		from := pawns.PopLSB()

		one := Square(int(from) + forward)
		if one.IsValid() && p.IsEmptySquare(one) {
			add(from, one)
			two := Square(int(one) + forward)
			if from.Rank() == startRank && p.IsEmptySquare(two) {
				ml = append(ml, NewMove(from, two))
			}
		}

		captures := PawnAttacks(from, us) & enemies
		for captures != 0 {
			add(from, captures.PopLSB())
		}

		if p.EnPassant != NoSquare && PawnAttacks(from, us).IsSet(p.EnPassant) {
			ml = append(ml, NewEnPassant(from, p.EnPassant))
		}
	}
	return ml
}

// castlingMoves appends castling moves whose rights are held, whose path is
// empty and whose king neither starts on, crosses, nor lands on an attacked square.
func (p *Position) castlingMoves(ml []Move) []Move {
	us := p.SideToMove
	them := us.Other()

	type castle struct {
		right    CastlingRights
		king     Square
		rook     Square
		empty    []Square
		kingPath []Square
	}
	var options [2]castle
	if us == White {
		options = [2]castle{
			{WhiteKingSideCastle, E1, H1, []Square{F1, G1}, []Square{E1, F1, G1}},
			{WhiteQueenSideCastle, E1, A1, []Square{B1, C1, D1}, []Square{E1, D1, C1}},
		}
	} else {
		options = [2]castle{
			{BlackKingSideCastle, E8, H8, []Square{F8, G8}, []Square{E8, F8, G8}},
			{BlackQueenSideCastle, E8, A8, []Square{B8, C8, D8}, []Square{E8, D8, C8}},
		}
	}

	for _, c := range options {
		if p.CastlingRights&c.right == 0 {
			continue
		}
		if p.PieceAt(c.king) != NewPiece(King, us) || p.PieceAt(c.rook) != NewPiece(Rook, us) {
			continue
		}
		if !p.allEmpty(c.empty) || p.anyAttacked(c.kingPath, them) {
			continue
		}
		ml = append(ml, NewCastling(c.king, c.kingPath[2]))
	}
	return ml
}

func (p *Position) allEmpty(squares []Square) bool {
	for _, sq := range squares {
		if !p.IsEmptySquare(sq) {
			return false
		}
	}
	return true
}

func (p *Position) anyAttacked(squares []Square, by Color) bool {
	for _, sq := range squares {
		if p.IsSquareAttacked(sq, by) {
			return true
		}
	}
	return false
}

// Apply returns the position after m. The receiver is not modified; m is
// assumed to be at least pseudo-legal in p.
func (p *Position) Apply(m Move) Position {
	next := *p
	us := p.SideToMove
	them := us.Other()
	from, to := m.From(), m.To()

	piece := next.removePiece(from)
	captured := next.removePiece(to)

	next.HalfMoveClock++
	if captured != NoPiece || piece.Type() == Pawn {
		next.HalfMoveClock = 0
	}

	switch {
	case m.IsPromotion():
		piece = NewPiece(m.Promotion(), us)
	case m.IsEnPassant():
		if us == White {
			next.removePiece(to - 8)
		} else {
			next.removePiece(to + 8)
		}
	case m.IsCastling():
		if to > from {
			next.setPiece(next.removePiece(to+1), to-1)
		} else {
			next.setPiece(next.removePiece(to-2), to+1)
		}
	}
	next.setPiece(piece, to)

	next.CastlingRights &^= castlingLoss[from] | castlingLoss[to]

	// The en-passant square is only recorded when an enemy pawn could use it.
	next.EnPassant = NoSquare
	if piece.Type() == Pawn && (int(to)-int(from) == 16 || int(from)-int(to) == 16) {
		target := Square((int(from) + int(to)) / 2)
		if PawnAttacks(target, us)&next.Pieces[them][Pawn] != 0 {
			next.EnPassant = target
		}
	}

	if us == Black {
		next.FullMoveNumber++
	}
	next.SideToMove = them
	next.UpdateCheckers()
	return next
}
