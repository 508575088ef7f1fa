package main

import (
	"fmt"
	"math/rand"
	"time"
)

type ComputerStrategy string

const (
	StrategyRandom    ComputerStrategy = "random"
	StrategySuggested ComputerStrategy = "suggested"
)

func ParseComputerStrategy(s string) (ComputerStrategy, error) {
	switch ComputerStrategy(s) {
	case StrategyRandom, StrategySuggested:
		return ComputerStrategy(s), nil
	default:
		return "", fmt.Errorf("unknown computer strategy %q", s)
	}
}

// ComputerPlayer picks the computer's cell: uniformly random among the
// empty cells, or replaying the suggester for a fully cooperative
// partner. A fixed seed makes games reproducible.
type ComputerPlayer struct {
	strategy ComputerStrategy
	rng      *rand.Rand
}

func NewComputerPlayer(strategy ComputerStrategy, seed int64) *ComputerPlayer {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &ComputerPlayer{
		strategy: strategy,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

func (p *ComputerPlayer) IsHuman() bool {
	return false
}

func (p *ComputerPlayer) ChooseMove(board Board, suggester *Suggester) (Position, bool) {
	if p.strategy == StrategySuggested && suggester != nil {
		if suggestion, ok := suggester.Suggest(board); ok {
			return NewPosition(suggestion.Row, suggestion.Col), true
		}
		return Position{}, false
	}
	empty := board.EmptyCells()
	if len(empty) == 0 {
		return Position{}, false
	}
	return empty[p.rng.Intn(len(empty))], true
}
