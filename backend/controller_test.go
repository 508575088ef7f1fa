package main

import (
	"errors"
	"testing"
)

func TestControllerStartAndExchange(t *testing.T) {
	gc := NewGameController(DefaultConfig())
	snap := gc.StartGame()
	if snap.Phase != PhasePlayerTurn || snap.Round != 1 {
		t.Fatalf("after start: phase %v round %d", snap.Phase, snap.Round)
	}
	if snap.GameID == "" {
		t.Fatalf("expected a game id")
	}

	outcome, err := gc.SubmitPlayerMove(2, 2)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if outcome.Player.Row != 2 || outcome.Player.Col != 2 ||
		outcome.Player.Actor != ActorPlayer.String() || outcome.Player.Round != 1 {
		t.Fatalf("unexpected player record: %+v", outcome.Player)
	}
	if outcome.Computer == nil {
		t.Fatalf("the computer must reply in the same exchange")
	}
	if outcome.Computer.Actor != ActorComputer.String() || outcome.Computer.Round != 1 {
		t.Fatalf("unexpected computer record: %+v", outcome.Computer)
	}
	if outcome.Snapshot.Round != 2 || outcome.Snapshot.Phase != PhasePlayerTurn {
		t.Fatalf("after exchange: phase %v round %d", outcome.Snapshot.Phase, outcome.Snapshot.Round)
	}

	marks := 0
	for r := 0; r < BoardSize; r++ {
		for c := 0; c < BoardSize; c++ {
			if outcome.Snapshot.Board.At(r, c) != CellEmpty {
				marks++
			}
		}
	}
	if marks != 2 {
		t.Fatalf("expected 2 marks after one exchange, got %d", marks)
	}
	if outcome.Snapshot.Board.At(2, 2) != CellPlayer {
		t.Fatalf("player mark missing at (2,2)")
	}
	if outcome.Snapshot.Board.At(outcome.Computer.Row, outcome.Computer.Col) != CellComputer {
		t.Fatalf("computer mark missing at (%d,%d)", outcome.Computer.Row, outcome.Computer.Col)
	}
}

func TestControllerStartGameRotatesID(t *testing.T) {
	gc := NewGameController(DefaultConfig())
	first := gc.StartGame().GameID
	second := gc.StartGame().GameID
	if first == second {
		t.Fatalf("restart must mint a new game id")
	}
	if gc.Status().Round != 1 {
		t.Fatalf("restart must rewind to round 1, got %d", gc.Status().Round)
	}
}

func TestControllerSeededGameRunsToCompletion(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ComputerSeed = 42
	gc := NewGameController(cfg)
	snap := gc.StartGame()

	for i := 0; i < TotalRounds+1; i++ {
		if snap.Phase != PhasePlayerTurn {
			break
		}
		empty := snap.Board.EmptyCells()
		if len(empty) == 0 {
			t.Fatalf("player turn with no empty cells")
		}
		outcome, err := gc.SubmitPlayerMove(empty[0].Row, empty[0].Col)
		if err != nil {
			t.Fatalf("exchange %d: %v", i, err)
		}
		snap = outcome.Snapshot
	}

	if snap.Phase != PhaseGameOver {
		t.Fatalf("expected game over after %d exchanges, got %v", TotalRounds, snap.Phase)
	}
	if len(gc.History()) != 2*TotalRounds {
		t.Fatalf("expected %d history entries, got %d", 2*TotalRounds, len(gc.History()))
	}
	if _, err := gc.SubmitPlayerMove(0, 0); !errors.Is(err, ErrGameOver) {
		t.Fatalf("expected ErrGameOver after completion, got %v", err)
	}
}

func TestControllerSuggestTracksLiveBoard(t *testing.T) {
	gc := NewGameController(DefaultConfig())
	gc.StartGame()
	suggestion, ok := gc.Suggest()
	if !ok {
		t.Fatalf("expected a suggestion on a fresh game")
	}
	if suggestion.Row != 2 || suggestion.Col != 2 {
		t.Fatalf("fresh board should point at the center, got (%d,%d)", suggestion.Row, suggestion.Col)
	}
	metrics := gc.Metrics()
	if metrics.CacheMisses == 0 {
		t.Fatalf("ranking a fresh board must record misses")
	}
	if metrics.CacheSize == 0 {
		t.Fatalf("ranking a fresh board must populate the cache")
	}
}

func TestControllerEvaluate(t *testing.T) {
	gc := NewGameController(DefaultConfig())
	grid := make([][]int, BoardSize)
	for r := range grid {
		grid[r] = make([]int, BoardSize)
	}
	for c := 0; c < 4; c++ {
		grid[0][c] = int(CellPlayer)
	}

	value, err := gc.Evaluate(grid, 0, 4)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if value != 220.0 {
		t.Fatalf("expected 220 for the completing cell, got %f", value)
	}

	// Occupied target is a legal request with an illegal-move result.
	value, err = gc.Evaluate(grid, 0, 0)
	if err != nil {
		t.Fatalf("evaluate occupied: %v", err)
	}
	if value != -1.0 {
		t.Fatalf("expected -1 for an occupied cell, got %f", value)
	}

	if _, err := gc.Evaluate(grid[:4], 0, 0); !errors.Is(err, ErrMalformedBoard) {
		t.Fatalf("short grid: expected ErrMalformedBoard, got %v", err)
	}
}

func TestControllerSuggestFor(t *testing.T) {
	gc := NewGameController(DefaultConfig())
	grid := make([][]int, BoardSize)
	for r := range grid {
		grid[r] = make([]int, BoardSize)
	}
	suggestion, ok, err := gc.SuggestFor(grid)
	if err != nil || !ok {
		t.Fatalf("suggest for empty grid: ok=%v err=%v", ok, err)
	}
	if suggestion.Row != 2 || suggestion.Col != 2 {
		t.Fatalf("expected center, got (%d,%d)", suggestion.Row, suggestion.Col)
	}

	for r := range grid {
		for c := range grid[r] {
			grid[r][c] = int(CellComputer)
		}
	}
	if _, ok, err := gc.SuggestFor(grid); err != nil || ok {
		t.Fatalf("full grid: ok=%v err=%v", ok, err)
	}

	grid[0] = grid[0][:3]
	if _, _, err := gc.SuggestFor(grid); !errors.Is(err, ErrMalformedBoard) {
		t.Fatalf("ragged grid: expected ErrMalformedBoard, got %v", err)
	}
}

func TestControllerApplyConfigSwapsVariant(t *testing.T) {
	gc := NewGameController(DefaultConfig())
	gc.StartGame()
	if _, ok := gc.Suggest(); !ok {
		t.Fatalf("expected a suggestion")
	}
	if gc.Metrics().CacheMisses == 0 {
		t.Fatalf("expected recorded misses before the swap")
	}

	cfg := DefaultConfig()
	cfg.Variant = string(VariantEnhanced)
	gc.ApplyConfig(cfg)
	if gc.Status().Variant != VariantEnhanced {
		t.Fatalf("variant did not switch: %v", gc.Status().Variant)
	}
	metrics := gc.Metrics()
	if metrics.CacheMisses != 0 || metrics.CacheHits != 0 || metrics.CacheSize != 0 {
		t.Fatalf("variant swap must start metrics over: %+v", metrics)
	}

	// Same variant again: the scorer stays, metrics survive.
	if _, ok := gc.Suggest(); !ok {
		t.Fatalf("expected a suggestion")
	}
	misses := gc.Metrics().CacheMisses
	gc.ApplyConfig(cfg)
	if got := gc.Metrics().CacheMisses; got != misses {
		t.Fatalf("unchanged variant must keep metrics: %d -> %d", misses, got)
	}
}

func TestControllerCacheControls(t *testing.T) {
	gc := NewGameController(DefaultConfig())
	gc.StartGame()
	if _, ok := gc.Suggest(); !ok {
		t.Fatalf("expected a suggestion")
	}

	items, total := gc.CacheTop(0, 10)
	if total != BoardCells {
		t.Fatalf("ranking an empty board caches every cell, total %d", total)
	}
	if len(items) != 10 {
		t.Fatalf("expected a 10-item page, got %d", len(items))
	}

	gc.ClearCache()
	if _, total := gc.CacheTop(0, 10); total != 0 {
		t.Fatalf("cache not cleared, total %d", total)
	}
	if gc.Metrics().CacheSize != 0 {
		t.Fatalf("metrics still report cached entries")
	}

	gc.ResetMetrics()
	metrics := gc.Metrics()
	if metrics.CacheHits != 0 || metrics.CacheMisses != 0 || metrics.WindowSamples != 0 {
		t.Fatalf("metrics reset incomplete: %+v", metrics)
	}
}
