package main

type EventKind int

const (
	EventMoveApplied EventKind = iota
	EventRoundComplete
	EventGameComplete
	EventStateChange
)

func (k EventKind) String() string {
	switch k {
	case EventMoveApplied:
		return "move_applied"
	case EventRoundComplete:
		return "round_complete"
	case EventGameComplete:
		return "game_complete"
	default:
		return "state_change"
	}
}

// GameEvent is delivered to observers synchronously, in registration
// order, after the engine finished mutating its state. Which fields
// are set depends on Kind: Move for move_applied, Stats for
// game_complete, Phase for state_change; Round is always set.
type GameEvent struct {
	Kind  EventKind
	Round int
	Phase Phase
	Move  *MoveRecord
	Stats *GameStats
}

func (g *Game) Subscribe(fn func(GameEvent)) {
	if fn == nil {
		return
	}
	g.observers = append(g.observers, fn)
}

func (g *Game) emit(event GameEvent) {
	for _, fn := range g.observers {
		fn(event)
	}
}
