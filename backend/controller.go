package main

import (
	"sync"

	"github.com/google/uuid"
)

// StatusSnapshot is what the controller hands the serving layer after
// every transition: consistent copies taken under the lock.
type StatusSnapshot struct {
	GameID  string
	Phase   Phase
	Round   int
	Board   Board
	Stats   GameStats
	Variant Variant
}

// MoveOutcome reports one full exchange: the applied human move, the
// computer's reply when one was played, and the state afterwards.
type MoveOutcome struct {
	Player   MoveRecord
	Computer *MoveRecord
	Snapshot StatusSnapshot
}

// GameController serializes all access to one Game. The engine itself
// is single-threaded; this is the debounce boundary for racing HTTP
// and websocket callers.
type GameController struct {
	mu       sync.Mutex
	game     *Game
	gameID   string
	human    *HumanPlayer
	computer *ComputerPlayer

	eventSink        func(GameEvent)
	suggestPublisher func(Suggestion, bool)
	metricsPublisher func(MetricsSnapshot)
}

func NewGameController(config Config) *GameController {
	gc := &GameController{
		game:     NewGame(NewScorer(config.variant(), config.CacheEntries)),
		gameID:   uuid.NewString(),
		human:    NewHumanPlayer(),
		computer: NewComputerPlayer(config.computerStrategy(), config.ComputerSeed),
	}
	gc.game.Subscribe(func(event GameEvent) {
		if gc.eventSink != nil {
			gc.eventSink(event)
		}
	})
	return gc
}

// SetPublishers wires the broadcast sinks. Sinks run synchronously
// under the controller lock and must not call back in; hub publishes
// are non-blocking channel sends, which is exactly that.
func (gc *GameController) SetPublishers(events func(GameEvent), suggestions func(Suggestion, bool), metrics func(MetricsSnapshot)) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	gc.eventSink = events
	gc.suggestPublisher = suggestions
	gc.metricsPublisher = metrics
}

func (gc *GameController) StartGame() StatusSnapshot {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	gc.game.Reset()
	gc.gameID = uuid.NewString()
	_ = gc.game.Start()
	gc.publishSuggestionLocked()
	return gc.statusLocked()
}

func (gc *GameController) Reset() StatusSnapshot {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	gc.game.Reset()
	return gc.statusLocked()
}

// SubmitPlayerMove queues the human move, then advances: the move is
// applied and the computer's reply played in the same exchange.
func (gc *GameController) SubmitPlayerMove(r, c int) (MoveOutcome, error) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	gc.human.SetPendingMove(NewPosition(r, c))
	return gc.advanceLocked()
}

func (gc *GameController) advanceLocked() (MoveOutcome, error) {
	if !gc.human.HasPendingMove() {
		return MoveOutcome{Snapshot: gc.statusLocked()}, nil
	}
	move := gc.human.TakePendingMove()
	if err := gc.game.ApplyPlayerMove(move.Row, move.Col); err != nil {
		return MoveOutcome{}, err
	}
	outcome := MoveOutcome{Player: gc.lastRecordLocked()}
	if reply, ok := gc.computer.ChooseMove(gc.game.BoardSnapshot(), gc.suggesterLocked()); ok {
		if err := gc.game.ApplyComputerMove(reply.Row, reply.Col); err == nil {
			record := gc.lastRecordLocked()
			outcome.Computer = &record
		}
	}
	gc.publishSuggestionLocked()
	outcome.Snapshot = gc.statusLocked()
	return outcome, nil
}

func (gc *GameController) lastRecordLocked() MoveRecord {
	entries := gc.game.History().All()
	if len(entries) == 0 {
		return MoveRecord{}
	}
	return entries[len(entries)-1]
}

// Suggest evaluates the live board for the human's next move.
func (gc *GameController) Suggest() (Suggestion, bool) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	suggestion, ok := gc.suggesterLocked().Suggest(gc.game.BoardSnapshot())
	gc.publishMetricsLocked()
	return suggestion, ok
}

// Evaluate scores a single cell on a caller-supplied board dump.
func (gc *GameController) Evaluate(grid [][]int, r, c int) (float64, error) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	board, err := BoardFromGrid(grid)
	if err != nil {
		return 0, err
	}
	value := gc.game.Scorer().Value(board, r, c)
	gc.publishMetricsLocked()
	return value, nil
}

// SuggestFor ranks a caller-supplied board dump without touching the
// live game.
func (gc *GameController) SuggestFor(grid [][]int) (Suggestion, bool, error) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	board, err := BoardFromGrid(grid)
	if err != nil {
		return Suggestion{}, false, err
	}
	suggestion, ok := gc.suggesterLocked().Suggest(board)
	gc.publishMetricsLocked()
	return suggestion, ok, nil
}

func (gc *GameController) Status() StatusSnapshot {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.statusLocked()
}

func (gc *GameController) History() []MoveRecord {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.History().All()
}

func (gc *GameController) Metrics() MetricsSnapshot {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.metricsSnapshotLocked()
}

func (gc *GameController) ResetMetrics() {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	gc.game.Scorer().Metrics().Reset()
}

func (gc *GameController) CacheTop(offset, limit int) ([]ScoreCacheEntry, int) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.Scorer().Cache().TopEntries(offset, limit)
}

func (gc *GameController) ClearCache() {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	gc.game.Scorer().ClearCache()
}

func (gc *GameController) CacheSnapshot() []ScoreCacheEntry {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.Scorer().Cache().snapshotEntries()
}

func (gc *GameController) RestoreCache(entries []ScoreCacheEntry) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	gc.game.Scorer().Cache().loadEntries(entries)
}

// ApplyConfig swaps variant and computer strategy to match the given
// config. A variant change replaces the scorer, so cached values and
// metrics start over.
func (gc *GameController) ApplyConfig(config Config) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	if gc.game.Variant() != config.variant() {
		gc.game.SetVariant(config.variant())
	}
	gc.computer = NewComputerPlayer(config.computerStrategy(), config.ComputerSeed)
}

func (gc *GameController) statusLocked() StatusSnapshot {
	return StatusSnapshot{
		GameID:  gc.gameID,
		Phase:   gc.game.Phase(),
		Round:   gc.game.Round(),
		Board:   gc.game.BoardSnapshot(),
		Stats:   gc.game.Stats(),
		Variant: gc.game.Variant(),
	}
}

func (gc *GameController) suggesterLocked() *Suggester {
	return NewSuggester(gc.game.Scorer(), GetConfig().SuggestAlternatives)
}

func (gc *GameController) metricsSnapshotLocked() MetricsSnapshot {
	scorer := gc.game.Scorer()
	return scorer.Metrics().Snapshot(scorer.Cache().Count(), scorer.Cache().Capacity())
}

func (gc *GameController) publishSuggestionLocked() {
	if gc.suggestPublisher == nil || !GetConfig().StreamSuggestions {
		return
	}
	if gc.game.Phase() != PhasePlayerTurn {
		gc.suggestPublisher(Suggestion{}, false)
		return
	}
	suggestion, ok := gc.suggesterLocked().Suggest(gc.game.BoardSnapshot())
	gc.suggestPublisher(suggestion, ok)
	gc.publishMetricsLocked()
}

func (gc *GameController) publishMetricsLocked() {
	if gc.metricsPublisher == nil || !GetConfig().StreamMetrics {
		return
	}
	gc.metricsPublisher(gc.metricsSnapshotLocked())
}
