package main

import (
	"testing"

	"pgregory.net/rapid"
)

var allVariants = []Variant{VariantStandard, VariantEnhanced}

func TestRandomPlayTerminates(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		variant := rapid.SampledFrom(allVariants).Draw(rt, "variant")
		g := NewGame(NewScorer(variant, 0))
		if err := g.Start(); err != nil {
			rt.Fatalf("start: %v", err)
		}

		moves := 0
		lines := 0
		for g.Phase() == PhasePlayerTurn || g.Phase() == PhaseComputerTurn {
			empty := g.BoardSnapshot().EmptyCells()
			if len(empty) == 0 {
				rt.Fatalf("phase %v with no empty cells", g.Phase())
			}
			pos := empty[rapid.IntRange(0, len(empty)-1).Draw(rt, "pick")]
			var err error
			if g.Phase() == PhasePlayerTurn {
				err = g.ApplyPlayerMove(pos.Row, pos.Col)
			} else {
				err = g.ApplyComputerMove(pos.Row, pos.Col)
			}
			if err != nil {
				rt.Fatalf("move %d at (%d,%d): %v", moves, pos.Row, pos.Col, err)
			}
			moves++
			if moves > 2*TotalRounds {
				rt.Fatalf("game did not end after %d moves", moves)
			}
			if got := g.CompletedLineCount(); got < lines {
				rt.Fatalf("completed lines regressed: %d -> %d", lines, got)
			} else {
				lines = got
			}
		}

		if g.Phase() != PhaseGameOver {
			rt.Fatalf("expected game over, got %v", g.Phase())
		}
		if moves != 2*TotalRounds {
			rt.Fatalf("expected %d moves, played %d", 2*TotalRounds, moves)
		}
		if g.History().Size() != moves {
			rt.Fatalf("history holds %d of %d moves", g.History().Size(), moves)
		}
		stats := g.Stats()
		if stats.TotalLines != len(stats.CompletedLines) || stats.TotalLines != lines {
			rt.Fatalf("inconsistent line totals: %d/%d/%d",
				stats.TotalLines, len(stats.CompletedLines), lines)
		}
		if got := CountCompletedLines(g.BoardSnapshot()); got != lines {
			rt.Fatalf("fresh scan found %d lines, engine tracked %d", got, lines)
		}
	})
}

func randomBoard(rt *rapid.T) Board {
	b := NewBoard()
	for r := 0; r < BoardSize; r++ {
		for c := 0; c < BoardSize; c++ {
			b.Set(r, c, Cell(rapid.IntRange(0, 2).Draw(rt, "cell")))
		}
	}
	return b
}

func TestScorerLegalityOnRandomBoards(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		variant := rapid.SampledFrom(allVariants).Draw(rt, "variant")
		s := NewScorer(variant, 0)
		b := randomBoard(rt)
		r := rapid.IntRange(-1, BoardSize).Draw(rt, "row")
		c := rapid.IntRange(-1, BoardSize).Draw(rt, "col")

		before := b.Hash()
		value := s.Value(b, r, c)
		if b.Hash() != before {
			rt.Fatalf("scoring mutated the board")
		}

		if b.IsEmpty(r, c) {
			if value < 0 {
				rt.Fatalf("legal cell (%d,%d) scored %f", r, c, value)
			}
		} else if value != illegalMoveValue {
			rt.Fatalf("illegal cell (%d,%d) scored %f", r, c, value)
		}

		// Same inputs, same value: through the cache and past a clear.
		if again := s.Value(b, r, c); again != value {
			rt.Fatalf("cached value drifted: %f -> %f", value, again)
		}
		s.ClearCache()
		if again := s.Value(b, r, c); again != value {
			rt.Fatalf("recomputed value drifted: %f -> %f", value, again)
		}
	})
}

func TestBoardHashTracksEveryMutation(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		b := randomBoard(rt)
		hash := b.Hash()
		if len(hash) != BoardCells {
			rt.Fatalf("hash length %d", len(hash))
		}
		for _, ch := range hash {
			if ch < '0' || ch > '2' {
				rt.Fatalf("unexpected hash character %q", ch)
			}
		}

		r := rapid.IntRange(0, BoardSize-1).Draw(rt, "row")
		c := rapid.IntRange(0, BoardSize-1).Draw(rt, "col")
		next := Cell((int(b.At(r, c)) + rapid.IntRange(1, 2).Draw(rt, "shift")) % 3)
		b.Set(r, c, next)
		if b.Hash() == hash {
			rt.Fatalf("mutating (%d,%d) left the hash unchanged", r, c)
		}
		if b.Hash()[r*BoardSize+c] != byte('0'+next) {
			rt.Fatalf("hash cell (%d,%d) does not reflect %v", r, c, next)
		}
	})
}
