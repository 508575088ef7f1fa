package main

// HumanPlayer queues the move the web client submitted until the
// controller drains it on the next advance.
type HumanPlayer struct {
	pending     bool
	pendingMove Position
}

func NewHumanPlayer() *HumanPlayer {
	return &HumanPlayer{}
}

func (h *HumanPlayer) IsHuman() bool {
	return true
}

func (h *HumanPlayer) ChooseMove(Board, *Suggester) (Position, bool) {
	if !h.pending {
		return Position{}, false
	}
	return h.pendingMove, true
}

func (h *HumanPlayer) SetPendingMove(move Position) {
	h.pendingMove = move
	h.pending = true
}

func (h *HumanPlayer) HasPendingMove() bool {
	return h.pending
}

func (h *HumanPlayer) TakePendingMove() Position {
	h.pending = false
	return h.pendingMove
}
