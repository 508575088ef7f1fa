package main

import (
	"errors"
	"fmt"
)

const TotalRounds = 8

var (
	ErrInvalidPhase    = errors.New("move not allowed in current phase")
	ErrInvalidPosition = errors.New("position out of range")
	ErrCellOccupied    = errors.New("cell already occupied")
	ErrGameOver        = errors.New("game is over")
	ErrMalformedBoard  = errors.New("malformed board")
)

type Phase int

const (
	PhaseWaiting Phase = iota
	PhasePlayerTurn
	PhaseComputerTurn
	PhaseGameOver
)

func (p Phase) String() string {
	switch p {
	case PhasePlayerTurn:
		return "player_turn"
	case PhaseComputerTurn:
		return "computer_turn"
	case PhaseGameOver:
		return "game_over"
	default:
		return "waiting"
	}
}

// Game is the eight-round cooperative state machine. It is the sole
// mutator of its board and stats; everything it hands out is a copy.
// Calls are not safe for concurrent use, the driver serializes.
type Game struct {
	phase         Phase
	round         int
	board         Board
	scorer        *Scorer
	history       MoveHistory
	playerMoves   []Position
	computerMoves []Position
	completed     []Line
	observers     []func(GameEvent)
}

func NewGame(scorer *Scorer) *Game {
	return &Game{
		phase:  PhaseWaiting,
		board:  NewBoard(),
		scorer: scorer,
	}
}

// Start moves Waiting into the first player turn with a cleared board.
func (g *Game) Start() error {
	if g.phase != PhaseWaiting {
		return fmt.Errorf("start in phase %s: %w", g.phase, ErrInvalidPhase)
	}
	g.clearState()
	g.phase = PhasePlayerTurn
	g.round = 1
	g.emit(GameEvent{Kind: EventStateChange, Phase: g.phase, Round: g.round})
	return nil
}

func (g *Game) ApplyPlayerMove(r, c int) error {
	if err := g.checkMove(PhasePlayerTurn, r, c); err != nil {
		return err
	}
	record := g.placeMove(ActorPlayer, r, c)
	g.phase = PhaseComputerTurn
	g.emit(GameEvent{Kind: EventMoveApplied, Move: &record, Round: g.round})
	g.emit(GameEvent{Kind: EventStateChange, Phase: g.phase, Round: g.round})
	return nil
}

func (g *Game) ApplyComputerMove(r, c int) error {
	if err := g.checkMove(PhaseComputerTurn, r, c); err != nil {
		return err
	}
	record := g.placeMove(ActorComputer, r, c)
	finished := g.round
	if finished >= TotalRounds {
		g.phase = PhaseGameOver
	} else {
		g.round++
		g.phase = PhasePlayerTurn
	}
	g.emit(GameEvent{Kind: EventMoveApplied, Move: &record, Round: finished})
	g.emit(GameEvent{Kind: EventRoundComplete, Round: finished})
	if g.phase == PhaseGameOver {
		stats := g.Stats()
		g.emit(GameEvent{Kind: EventGameComplete, Stats: &stats, Round: finished})
	}
	g.emit(GameEvent{Kind: EventStateChange, Phase: g.phase, Round: g.round})
	return nil
}

// Reset returns to Waiting from any phase and drops the scorer cache.
func (g *Game) Reset() {
	g.clearState()
	g.phase = PhaseWaiting
	g.emit(GameEvent{Kind: EventStateChange, Phase: g.phase, Round: g.round})
}

func (g *Game) clearState() {
	g.board.Reset()
	g.history.Clear()
	g.playerMoves = nil
	g.computerMoves = nil
	g.completed = nil
	g.round = 0
	g.scorer.ClearCache()
}

// checkMove applies the rejection order: terminal state, then phase,
// then bounds, then occupancy. Failed checks leave no trace.
func (g *Game) checkMove(want Phase, r, c int) error {
	if g.phase == PhaseGameOver {
		return fmt.Errorf("move (%d,%d) rejected: %w", r, c, ErrGameOver)
	}
	if g.phase != want {
		return fmt.Errorf("move (%d,%d) in phase %s: %w", r, c, g.phase, ErrInvalidPhase)
	}
	if !g.board.InBounds(r, c) {
		return fmt.Errorf("move (%d,%d): %w", r, c, ErrInvalidPosition)
	}
	if g.board.At(r, c) != CellEmpty {
		return fmt.Errorf("move (%d,%d): %w", r, c, ErrCellOccupied)
	}
	return nil
}

// placeMove writes the mark, records the move, and refreshes the
// completed-line snapshot. Phase transitions stay with the caller.
func (g *Game) placeMove(actor Actor, r, c int) MoveRecord {
	g.board.Set(r, c, actor.cell())
	if actor == ActorComputer {
		g.computerMoves = append(g.computerMoves, NewPosition(r, c))
	} else {
		g.playerMoves = append(g.playerMoves, NewPosition(r, c))
	}
	record := MoveRecord{Round: g.round, Actor: actor.String(), Row: r, Col: c}
	g.history.Push(record)
	g.completed = CompletedLines(g.board)
	return record
}

func (g *Game) Phase() Phase {
	return g.phase
}

func (g *Game) Round() int {
	return g.round
}

func (g *Game) Scorer() *Scorer {
	return g.scorer
}

func (g *Game) History() MoveHistory {
	return g.history
}

// BoardSnapshot hands out a defensive copy of the canonical board.
func (g *Game) BoardSnapshot() Board {
	return g.board.Clone()
}

// SetVariant swaps in a fresh scorer for the given weight set. Allowed
// mid-game; cached values and metrics start over.
func (g *Game) SetVariant(variant Variant) {
	g.scorer = NewScorer(variant, g.scorer.Cache().Capacity())
}

func (g *Game) Variant() Variant {
	return g.scorer.Variant()
}
