package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

// trainer plays batches of assisted games against one or more backend
// instances and compares the scoring variants against each other. Each
// backend holds a single live game, so variants claim a backend from a
// pool and batches on the same backend run back to back.
type trainer struct {
	client     *http.Client
	logger     *log.Logger
	backends   []string
	apiAddr    string
	reportPath string

	gamesPerVariant int
	variants        []string

	statusMu sync.RWMutex
	status   trainerStatus

	jobMu     sync.Mutex
	jobCancel context.CancelFunc
	jobDone   chan struct{}
}

type trainerStatus struct {
	Running         bool            `json:"running"`
	Phase           string          `json:"phase"`
	Message         string          `json:"message"`
	StartedAt       string          `json:"started_at"`
	UpdatedAt       string          `json:"updated_at"`
	GamesPerVariant int             `json:"games_per_variant"`
	GamesPlayed     int             `json:"games_played"`
	GamesTotal      int             `json:"games_total"`
	Variants        []string        `json:"variants"`
	Reports         []variantReport `json:"reports,omitempty"`
}

// variantReport aggregates one batch of self-played games: how many
// lines the pair completed, which confidence levels the suggester
// reported, and what the scorer cache did.
type variantReport struct {
	Variant          string         `json:"variant"`
	Games            int            `json:"games"`
	TotalLines       int            `json:"total_lines"`
	AvgLines         float64        `json:"avg_lines"`
	LineDistribution map[int]int    `json:"line_distribution"`
	LineKinds        map[string]int `json:"line_kinds"`
	Confidence       map[string]int `json:"confidence"`
	CacheHitRatePct  float64        `json:"cache_hit_rate_pct"`
	AvgCalcMs        float64        `json:"avg_calc_ms"`
}

type statusResponse struct {
	Phase string `json:"phase"`
	Round int    `json:"round"`
	Stats struct {
		TotalLines int            `json:"total_lines"`
		LineCounts map[string]int `json:"line_counts"`
	} `json:"stats"`
	Config map[string]any `json:"config"`
}

type moveResponse struct {
	Status statusResponse `json:"status"`
}

type suggestResponse struct {
	Active     bool `json:"active"`
	Suggestion *struct {
		Row        int     `json:"row"`
		Col        int     `json:"col"`
		Value      float64 `json:"value"`
		Confidence string  `json:"confidence"`
	} `json:"suggestion"`
}

type metricsResponse struct {
	CacheHits   int64   `json:"cache_hits"`
	CacheMisses int64   `json:"cache_misses"`
	HitRatePct  float64 `json:"hit_rate_pct"`
	AvgCalcMs   float64 `json:"avg_calc_ms"`
}

type settingsResponse struct {
	Config map[string]any `json:"config"`
}

func main() {
	logPath := getenv("TRAINER_LOG_FILE", "/logs/trainer.log")
	logger, closeLog, err := buildLogger(logPath)
	if err != nil {
		logger = log.New(os.Stdout, "", 0)
		closeLog = func() {}
		logger.Printf("file logging disabled: %v", err)
	}
	defer closeLog()

	backends := splitList(getenv("BACKEND_URLS", "http://backend:8080"))
	gamesPerVariant := getenvInt("TRAINER_GAMES_PER_VARIANT", 20)
	variants := splitList(getenv("TRAINER_VARIANTS", "standard,enhanced"))
	apiAddr := getenv("TRAINER_API_ADDR", ":8090")
	autostart := getenv("TRAINER_AUTOSTART", "")

	t := &trainer{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:          logger,
		backends:        backends,
		apiAddr:         apiAddr,
		reportPath:      filepath.Join(filepath.Dir(logPath), "comparison_report.json"),
		gamesPerVariant: gamesPerVariant,
		variants:        variants,
		status: trainerStatus{
			Running:         false,
			Phase:           "idle",
			Message:         "service ready",
			StartedAt:       time.Now().UTC().Format(time.RFC3339),
			UpdatedAt:       time.Now().UTC().Format(time.RFC3339),
			GamesPerVariant: gamesPerVariant,
			Variants:        variants,
		},
	}

	t.logf("variant comparator started. backends=%v variants=%v games_per_variant=%d", t.backends, t.variants, t.gamesPerVariant)
	t.startStatusAPI()

	if autostart == "1" || autostart == "true" || autostart == "yes" {
		if err := t.startComparison(gamesPerVariant); err != nil {
			t.logf("Autostart failed: %v", err)
		}
	}

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()
	<-sigCtx.Done()
	_ = t.stopComparison("shutdown")
	t.logf("Comparator service stopping")
}

func (t *trainer) startStatusAPI() {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/trainer/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "running": t.getStatus().Running})
	})
	mux.HandleFunc("/api/trainer/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, t.getStatus())
	})
	mux.HandleFunc("/api/trainer/start", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
			return
		}
		var payload struct {
			Games int `json:"games"`
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		games := payload.Games
		if games <= 0 {
			games = t.gamesPerVariant
		}
		if err := t.startComparison(games); err != nil {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, t.getStatus())
	})
	mux.HandleFunc("/api/trainer/stop", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
			return
		}
		if err := t.stopComparison("requested via api"); err != nil {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, t.getStatus())
	})
	server := &http.Server{Addr: t.apiAddr, Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.logf("trainer api server error: %v", err)
		}
	}()
}

func (t *trainer) getStatus() trainerStatus {
	t.statusMu.RLock()
	defer t.statusMu.RUnlock()
	return t.status
}

func (t *trainer) updateStatus(mutator func(*trainerStatus)) {
	t.statusMu.Lock()
	defer t.statusMu.Unlock()
	mutator(&t.status)
	t.status.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
}

func (t *trainer) startComparison(games int) error {
	t.jobMu.Lock()
	defer t.jobMu.Unlock()
	if t.jobCancel != nil {
		return fmt.Errorf("comparison already running")
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	t.jobCancel = cancel
	t.jobDone = done
	t.updateStatus(func(s *trainerStatus) {
		s.Running = true
		s.Phase = "starting"
		s.Message = "comparison starting"
		s.GamesPerVariant = games
		s.GamesPlayed = 0
		s.GamesTotal = games * len(t.variants)
		s.Reports = nil
	})
	go func() {
		defer close(done)
		if err := t.waitBackendsReady(ctx); err != nil {
			t.updateStatus(func(s *trainerStatus) {
				s.Phase = "error"
				s.Message = err.Error()
			})
		} else {
			if err := t.runComparison(ctx, games); err != nil && err != context.Canceled {
				t.updateStatus(func(s *trainerStatus) {
					s.Phase = "error"
					s.Message = err.Error()
				})
			}
		}
		t.updateStatus(func(s *trainerStatus) {
			s.Running = false
			if s.Phase != "error" {
				s.Phase = "idle"
				s.Message = "service ready"
			}
		})
		t.jobMu.Lock()
		t.jobCancel = nil
		t.jobDone = nil
		t.jobMu.Unlock()
	}()
	return nil
}

func (t *trainer) stopComparison(reason string) error {
	t.jobMu.Lock()
	cancel := t.jobCancel
	done := t.jobDone
	t.jobMu.Unlock()
	if cancel == nil {
		return fmt.Errorf("no running comparison")
	}
	t.logf("Stopping comparison: %s", reason)
	cancel()
	if done != nil {
		<-done
	}
	t.updateStatus(func(s *trainerStatus) {
		s.Running = false
		s.Phase = "idle"
		s.Message = "service ready"
	})
	return nil
}

func (t *trainer) runComparison(ctx context.Context, games int) error {
	t.updateStatus(func(s *trainerStatus) {
		s.Phase = "running"
		s.Message = "comparison running"
	})

	pool := make(chan string, len(t.backends))
	for _, base := range t.backends {
		pool <- base
	}

	var mu sync.Mutex
	reports := make([]variantReport, 0, len(t.variants))

	g, ctx := errgroup.WithContext(ctx)
	for _, variant := range t.variants {
		variant := variant
		g.Go(func() error {
			var base string
			select {
			case <-ctx.Done():
				return ctx.Err()
			case base = <-pool:
			}
			defer func() { pool <- base }()
			report, err := t.runVariant(ctx, base, variant, games)
			if err != nil {
				return fmt.Errorf("variant %s on %s: %w", variant, base, err)
			}
			mu.Lock()
			reports = append(reports, report)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	sort.Slice(reports, func(i, j int) bool { return reports[i].Variant < reports[j].Variant })
	t.updateStatus(func(s *trainerStatus) {
		s.Reports = reports
	})
	t.logReports(reports)
	if err := t.writeReportFile(reports); err != nil {
		t.logf("failed to write report file: %v", err)
	}
	return nil
}

// runVariant switches the backend to the given variant, resets the
// scorer metrics so the batch starts from zero, then plays the batch.
func (t *trainer) runVariant(ctx context.Context, base, variant string, games int) (variantReport, error) {
	report := variantReport{
		Variant:          variant,
		LineDistribution: map[int]int{},
		LineKinds:        map[string]int{},
		Confidence:       map[string]int{},
	}
	if err := t.applyVariant(base, variant); err != nil {
		return report, err
	}
	if err := t.deleteJSON(base, "/api/metrics"); err != nil {
		return report, err
	}
	t.logf("variant %s: playing %d games against %s", variant, games, base)
	for i := 0; i < games; i++ {
		select {
		case <-ctx.Done():
			return report, ctx.Err()
		default:
		}
		if err := t.playGame(ctx, base, &report); err != nil {
			return report, err
		}
		t.updateStatus(func(s *trainerStatus) {
			s.GamesPlayed++
		})
		if (i+1)%5 == 0 || i == 0 {
			t.logf("variant %s: %d/%d games done", variant, i+1, games)
		}
	}
	var metrics metricsResponse
	if err := t.getJSON(base, "/api/metrics", &metrics); err != nil {
		return report, err
	}
	report.CacheHitRatePct = metrics.HitRatePct
	report.AvgCalcMs = metrics.AvgCalcMs
	if report.Games > 0 {
		report.AvgLines = float64(report.TotalLines) / float64(report.Games)
	}
	return report, nil
}

// playGame starts a fresh game and follows the suggester for every
// human move; the backend answers each move with the computer's reply,
// so one POST advances a full exchange.
func (t *trainer) playGame(ctx context.Context, base string, report *variantReport) error {
	var status statusResponse
	if err := t.postJSON(base, "/api/start", map[string]any{}, &status); err != nil {
		return err
	}
	for status.Phase == "player_turn" {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		var advice suggestResponse
		if err := t.getJSON(base, "/api/suggest", &advice); err != nil {
			return err
		}
		if !advice.Active || advice.Suggestion == nil {
			return fmt.Errorf("no suggestion in round %d", status.Round)
		}
		report.Confidence[advice.Suggestion.Confidence]++
		var outcome moveResponse
		if err := t.postJSON(base, "/api/move", map[string]any{
			"row": advice.Suggestion.Row,
			"col": advice.Suggestion.Col,
		}, &outcome); err != nil {
			return err
		}
		status = outcome.Status
	}
	if status.Phase != "game_over" {
		return fmt.Errorf("game stalled in phase %q", status.Phase)
	}
	report.Games++
	report.TotalLines += status.Stats.TotalLines
	report.LineDistribution[status.Stats.TotalLines]++
	for kind, n := range status.Stats.LineCounts {
		report.LineKinds[kind] += n
	}
	return nil
}

// applyVariant round-trips the backend settings so unrelated config
// keys survive the update.
func (t *trainer) applyVariant(base, variant string) error {
	var settings settingsResponse
	if err := t.getJSON(base, "/api/settings", &settings); err != nil {
		return err
	}
	cfg := settings.Config
	if cfg == nil {
		cfg = map[string]any{}
	}
	cfg["variant"] = variant
	return t.putJSON(base, "/api/settings", map[string]any{"config": cfg}, nil)
}

func (t *trainer) logReports(reports []variantReport) {
	for _, r := range reports {
		t.logf("variant=%s games=%d total_lines=%d avg_lines=%.2f cache_hit_rate=%.2f%% avg_calc=%.3fms",
			r.Variant, r.Games, r.TotalLines, r.AvgLines, r.CacheHitRatePct, r.AvgCalcMs)
		t.logf("  lines per game: %v", r.LineDistribution)
		t.logf("  line kinds: %v", r.LineKinds)
		t.logf("  confidence: %v", r.Confidence)
	}
}

func (t *trainer) writeReportFile(reports []variantReport) error {
	raw, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return err
	}
	raw = append(raw, '\n')
	tmp := t.reportPath + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, t.reportPath)
}

func (t *trainer) waitBackendsReady(ctx context.Context) error {
	for _, base := range t.backends {
		if err := t.waitBackendReady(ctx, base); err != nil {
			return fmt.Errorf("backend %s: %w", base, err)
		}
	}
	return nil
}

func (t *trainer) waitBackendReady(ctx context.Context, base string) error {
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := t.ping(base); err == nil {
			return nil
		}
		if !sleepWithContext(ctx, 1*time.Second) {
			return ctx.Err()
		}
	}
	return fmt.Errorf("timeout after 60s")
}

func (t *trainer) ping(base string) error {
	req, err := http.NewRequest(http.MethodGet, base+"/api/ping", nil)
	if err != nil {
		return err
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ping status %d", resp.StatusCode)
	}
	return nil
}

func (t *trainer) getJSON(base, path string, out any) error {
	req, err := http.NewRequest(http.MethodGet, base+path, nil)
	if err != nil {
		return err
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("GET %s -> %d: %s", path, resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (t *trainer) postJSON(base, path string, payload any, out any) error {
	return t.sendJSON(http.MethodPost, base, path, payload, out)
}

func (t *trainer) putJSON(base, path string, payload any, out any) error {
	return t.sendJSON(http.MethodPut, base, path, payload, out)
}

func (t *trainer) deleteJSON(base, path string) error {
	req, err := http.NewRequest(http.MethodDelete, base+path, nil)
	if err != nil {
		return err
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("DELETE %s -> %d: %s", path, resp.StatusCode, string(body))
	}
	return nil
}

func (t *trainer) sendJSON(method, base, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(method, base+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%s %s -> %d: %s", method, path, resp.StatusCode, string(respBody))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (t *trainer) logf(format string, args ...any) {
	ts := time.Now().Format("2006-01-02 15:04:05")
	t.logger.Printf("[%s] %s", ts, fmt.Sprintf(format, args...))
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func buildLogger(path string) (*log.Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	logger := log.New(io.MultiWriter(os.Stdout, f), "", 0)
	return logger, func() { _ = f.Close() }, nil
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var parsed int
	if _, err := fmt.Sscanf(value, "%d", &parsed); err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
