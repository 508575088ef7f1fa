package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
)

type StatusResponse struct {
	GameID      string   `json:"game_id"`
	Phase       string   `json:"phase"`
	Round       int      `json:"round"`
	TotalRounds int      `json:"total_rounds"`
	Variant     string   `json:"variant"`
	Board       [][]int  `json:"board"`
	Stats       statsDTO `json:"stats"`
	Config      Config   `json:"config"`
}

type statsDTO struct {
	Round          int            `json:"round"`
	Phase          string         `json:"phase"`
	PlayerMoves    []Position     `json:"player_moves"`
	ComputerMoves  []Position     `json:"computer_moves"`
	CompletedLines []lineDTO      `json:"completed_lines"`
	LineCounts     map[string]int `json:"line_counts"`
	TotalLines     int            `json:"total_lines"`
}

type lineDTO struct {
	Type  string     `json:"type"`
	Index int        `json:"index"`
	Cells []Position `json:"cells"`
}

type suggestionDTO struct {
	Row          int         `json:"row"`
	Col          int         `json:"col"`
	Value        float64     `json:"value"`
	Confidence   string      `json:"confidence"`
	Alternatives []MoveValue `json:"alternatives"`
}

type apiMove struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type moveResponse struct {
	Player   MoveRecord     `json:"player"`
	Computer *MoveRecord    `json:"computer,omitempty"`
	Status   StatusResponse `json:"status"`
}

type historyResponse struct {
	GameID string       `json:"game_id"`
	Moves  []MoveRecord `json:"moves"`
}

type evaluateRequest struct {
	Board [][]int `json:"board"`
	Row   int     `json:"row"`
	Col   int     `json:"col"`
}

type evaluateResponse struct {
	Row   int     `json:"row"`
	Col   int     `json:"col"`
	Value float64 `json:"value"`
}

type suggestRequest struct {
	Board [][]int `json:"board"`
}

type scoreCacheStatusResponse struct {
	Count    int     `json:"count"`
	Capacity int     `json:"capacity"`
	Usage    float64 `json:"usage"`
	Full     bool    `json:"full"`
}

type scoreCacheEntriesResponse struct {
	Items  []ScoreCacheEntry `json:"items"`
	Offset int               `json:"offset"`
	Limit  int               `json:"limit"`
	Total  int               `json:"total"`
}

func main() {
	controller := NewGameController(GetConfig())

	var persistOnce sync.Once
	persistOnShutdown := func(reason string) {
		persistOnce.Do(func() {
			log.Printf("[backend] persisting scorer cache on %s", reason)
			persistCacheSnapshot(GetConfig(), controller)
		})
	}
	defer func() {
		if recovered := recover(); recovered != nil {
			log.Printf("[backend] panic recovered in main: %v", recovered)
			persistOnShutdown("panic")
		}
	}()

	loadCacheSnapshot(GetConfig(), controller)
	defer persistOnShutdown("exit")

	hub := NewHub()
	suggestHub := NewSuggestHub()
	metricsHub := NewMetricsHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	controller.SetPublishers(
		func(event GameEvent) {
			hub.PublishEvent(eventToPayload(event))
		},
		func(suggestion Suggestion, ok bool) {
			suggestHub.Publish(suggestionToPayload(suggestion, ok))
		},
		func(snapshot MetricsSnapshot) {
			metricsHub.Publish(snapshot)
		},
	)

	go hub.Run(ctx.Done())
	go suggestHub.Run(ctx.Done())
	go metricsHub.Run(ctx.Done())

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	r.Get("/api/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, statusFromSnapshot(controller.Status()))
	})

	r.Post("/api/start", func(w http.ResponseWriter, r *http.Request) {
		status := statusFromSnapshot(controller.StartGame())
		writeJSON(w, http.StatusOK, status)
		hub.PublishStatus(status)
	})

	r.Post("/api/reset", func(w http.ResponseWriter, r *http.Request) {
		status := statusFromSnapshot(controller.Reset())
		writeJSON(w, http.StatusOK, status)
		hub.PublishStatus(status)
	})

	r.Post("/api/move", func(w http.ResponseWriter, r *http.Request) {
		var payload apiMove
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		outcome, err := controller.SubmitPlayerMove(payload.Row, payload.Col)
		if err != nil {
			writeGameError(w, err)
			return
		}
		status := statusFromSnapshot(outcome.Snapshot)
		hub.PublishStatus(status)
		writeJSON(w, http.StatusOK, moveResponse{
			Player:   outcome.Player,
			Computer: outcome.Computer,
			Status:   status,
		})
	})

	r.Get("/api/suggest", func(w http.ResponseWriter, r *http.Request) {
		suggestion, ok := controller.Suggest()
		writeJSON(w, http.StatusOK, suggestionToPayload(suggestion, ok))
	})

	r.Post("/api/suggest", func(w http.ResponseWriter, r *http.Request) {
		var payload suggestRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		suggestion, ok, err := controller.SuggestFor(payload.Board)
		if err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, suggestionToPayload(suggestion, ok))
	})

	r.Post("/api/evaluate", func(w http.ResponseWriter, r *http.Request) {
		var payload evaluateRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		value, err := controller.Evaluate(payload.Board, payload.Row, payload.Col)
		if err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, evaluateResponse{Row: payload.Row, Col: payload.Col, Value: value})
	})

	r.Get("/api/history", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, historyResponse{
			GameID: controller.Status().GameID,
			Moves:  controller.History(),
		})
	})

	r.Get("/api/settings", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, settingsPayload{Config: GetConfig()})
	})

	r.Put("/api/settings", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Config *Config `json:"config"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		if payload.Config != nil {
			configStore.Update(*payload.Config)
			controller.ApplyConfig(GetConfig())
		}
		hub.PublishSettings(settingsPayload{Config: GetConfig()})
		writeJSON(w, http.StatusOK, statusFromSnapshot(controller.Status()))
	})

	r.Get("/api/metrics", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, controller.Metrics())
	})
	r.Delete("/api/metrics", func(w http.ResponseWriter, r *http.Request) {
		controller.ResetMetrics()
		writeJSON(w, http.StatusOK, map[string]any{"reset": true})
	})

	r.Get("/api/cache/scorer", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, scoreCacheStatus(controller))
	})
	r.Delete("/api/cache/scorer", func(w http.ResponseWriter, r *http.Request) {
		controller.ClearCache()
		writeJSON(w, http.StatusOK, map[string]any{"cleared": true})
	})
	r.Get("/api/cache/scorer/entries", func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if limit <= 0 {
			limit = 10
		}
		if limit > 100 {
			limit = 100
		}
		if offset < 0 {
			offset = 0
		}
		writeJSON(w, http.StatusOK, scoreCacheEntries(controller, offset, limit))
	})

	r.Get("/ws/", func(w http.ResponseWriter, r *http.Request) {
		serveWS(hub, controller, w, r)
	})
	r.Get("/ws/suggest", func(w http.ResponseWriter, r *http.Request) {
		serveSuggestWS(suggestHub, w, r)
	})
	r.Get("/ws/metrics", func(w http.ResponseWriter, r *http.Request) {
		serveMetricsWS(metricsHub, controller, w, r)
	})

	addr := envDefault("BINGO_ADDR", ":8080")
	server := &http.Server{
		Addr:    addr,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
		close(serverErrCh)
	}()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	log.Printf("backend listening on %s", addr)
	var runErr error
	select {
	case <-sigCtx.Done():
		log.Printf("[backend] shutdown signal received: %v", sigCtx.Err())
	case err, ok := <-serverErrCh:
		if ok {
			runErr = err
			log.Printf("[backend] server error: %v", err)
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("[backend] graceful shutdown failed: %v", err)
		if closeErr := server.Close(); closeErr != nil && !errors.Is(closeErr, http.ErrServerClosed) {
			log.Printf("[backend] forced close failed: %v", closeErr)
		}
	}

	cancel()
	persistOnShutdown("shutdown")
	if runErr != nil {
		log.Printf("[backend] exiting after server error: %v", runErr)
	}
}

func serveWS(hub *Hub, controller *GameController, w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &Client{hub: hub, send: make(chan []byte, 16)}
	hub.Register(client)

	status := statusFromSnapshot(controller.Status())
	client.sendJSON(wsMessage{Type: "status", Payload: mustMarshal(status)})

	go func() {
		defer conn.Close()
		if err := writeWSWithHeartbeat(conn, client.send); err != nil {
			return
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			hub.Unregister(client)
			return
		}
		var msg wsMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		switch msg.Type {
		case "request_status":
			status := statusFromSnapshot(controller.Status())
			client.sendJSON(wsMessage{Type: "status", Payload: mustMarshal(status)})
		}
	}
}

func statusFromSnapshot(s StatusSnapshot) StatusResponse {
	return StatusResponse{
		GameID:      s.GameID,
		Phase:       s.Phase.String(),
		Round:       s.Round,
		TotalRounds: TotalRounds,
		Variant:     string(s.Variant),
		Board:       s.Board.Grid(),
		Stats:       statsToDTO(s.Stats),
		Config:      GetConfig(),
	}
}

func statsToDTO(stats GameStats) statsDTO {
	lines := make([]lineDTO, 0, len(stats.CompletedLines))
	for _, line := range stats.CompletedLines {
		lines = append(lines, lineToDTO(line))
	}
	counts := make(map[string]int, len(stats.LineCounts))
	for kind, n := range stats.LineCounts {
		counts[kind.String()] = n
	}
	return statsDTO{
		Round:          stats.Round,
		Phase:          stats.Phase.String(),
		PlayerMoves:    stats.PlayerMoves,
		ComputerMoves:  stats.ComputerMoves,
		CompletedLines: lines,
		LineCounts:     counts,
		TotalLines:     stats.TotalLines,
	}
}

func lineToDTO(line Line) lineDTO {
	return lineDTO{
		Type:  line.Kind.String(),
		Index: line.Index,
		Cells: append([]Position(nil), line.Cells[:]...),
	}
}

func suggestionToDTO(s Suggestion) suggestionDTO {
	alternatives := s.Alternatives
	if alternatives == nil {
		alternatives = []MoveValue{}
	}
	return suggestionDTO{
		Row:          s.Row,
		Col:          s.Col,
		Value:        s.Value,
		Confidence:   s.Confidence.String(),
		Alternatives: alternatives,
	}
}

func suggestionToPayload(s Suggestion, ok bool) suggestPayload {
	if !ok {
		return suggestPayload{}
	}
	dto := suggestionToDTO(s)
	return suggestPayload{Active: true, Suggestion: &dto}
}

func eventToPayload(event GameEvent) eventPayload {
	payload := eventPayload{
		Event: event.Kind.String(),
		Round: event.Round,
		Phase: event.Phase.String(),
		Move:  event.Move,
	}
	if event.Stats != nil {
		dto := statsToDTO(*event.Stats)
		payload.Stats = &dto
	}
	return payload
}

func writeGameError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": err.Error(),
		"kind":  errorKind(err),
	})
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidPhase):
		return "invalid_phase"
	case errors.Is(err, ErrInvalidPosition):
		return "invalid_position"
	case errors.Is(err, ErrCellOccupied):
		return "cell_occupied"
	case errors.Is(err, ErrGameOver):
		return "game_over"
	case errors.Is(err, ErrMalformedBoard):
		return "malformed_board"
	default:
		return "internal"
	}
}

func scoreCacheStatus(controller *GameController) scoreCacheStatusResponse {
	snapshot := controller.Metrics()
	usage := 0.0
	full := false
	if snapshot.CacheCapacity > 0 {
		usage = float64(snapshot.CacheSize) / float64(snapshot.CacheCapacity)
		full = snapshot.CacheSize >= snapshot.CacheCapacity
	}
	return scoreCacheStatusResponse{
		Count:    snapshot.CacheSize,
		Capacity: snapshot.CacheCapacity,
		Usage:    usage,
		Full:     full,
	}
}

func scoreCacheEntries(controller *GameController, offset, limit int) scoreCacheEntriesResponse {
	items, total := controller.CacheTop(offset, limit)
	if items == nil {
		items = []ScoreCacheEntry{}
	}
	return scoreCacheEntriesResponse{
		Items:  items,
		Offset: offset,
		Limit:  limit,
		Total:  total,
	}
}

func envDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func mustMarshal(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
