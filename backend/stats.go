package main

// GameStats is a point-in-time snapshot. Slices and the count map are
// fresh copies; mutating them does not touch the engine.
type GameStats struct {
	Round          int
	Phase          Phase
	PlayerMoves    []Position
	ComputerMoves  []Position
	CompletedLines []Line
	LineCounts     map[LineKind]int
	TotalLines     int
}

func (g *Game) Stats() GameStats {
	lineCounts := make(map[LineKind]int, 4)
	for _, line := range g.completed {
		lineCounts[line.Kind]++
	}
	return GameStats{
		Round:          g.round,
		Phase:          g.phase,
		PlayerMoves:    append([]Position(nil), g.playerMoves...),
		ComputerMoves:  append([]Position(nil), g.computerMoves...),
		CompletedLines: append([]Line(nil), g.completed...),
		LineCounts:     lineCounts,
		TotalLines:     len(g.completed),
	}
}

func (g *Game) CompletedLineCount() int {
	return len(g.completed)
}
