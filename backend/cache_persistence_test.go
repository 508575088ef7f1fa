package main

import (
	"os"
	"path/filepath"
	"testing"
)

func populatedController(t *testing.T, cfg Config) (*GameController, int) {
	t.Helper()
	gc := NewGameController(cfg)
	gc.StartGame()
	if _, ok := gc.Suggest(); !ok {
		t.Fatalf("expected a suggestion to warm the cache")
	}
	count := gc.Metrics().CacheSize
	if count == 0 {
		t.Fatalf("cache stayed empty after ranking")
	}
	return gc, count
}

func TestCacheSnapshotRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CacheSnapshotPath = filepath.Join(t.TempDir(), "nested", "scorer_cache.gob")

	gc, count := populatedController(t, cfg)
	persistCacheSnapshot(cfg, gc)
	if _, err := os.Stat(cfg.CacheSnapshotPath); err != nil {
		t.Fatalf("snapshot file missing: %v", err)
	}

	restored := NewGameController(cfg)
	loadCacheSnapshot(cfg, restored)
	if got := restored.Metrics().CacheSize; got != count {
		t.Fatalf("expected %d restored entries, got %d", count, got)
	}

	// The restored values must serve the same board purely as hits.
	if _, ok := restored.Suggest(); !ok {
		t.Fatalf("expected a suggestion from the restored cache")
	}
	metrics := restored.Metrics()
	if metrics.CacheMisses != 0 {
		t.Fatalf("restored cache recorded %d misses", metrics.CacheMisses)
	}
	if metrics.CacheHits != int64(count) {
		t.Fatalf("expected %d hits, got %d", count, metrics.CacheHits)
	}
}

func TestCacheSnapshotCapacityMismatchSkipped(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CacheSnapshotPath = filepath.Join(t.TempDir(), "scorer_cache.gob")

	gc, _ := populatedController(t, cfg)
	persistCacheSnapshot(cfg, gc)

	smaller := cfg
	smaller.CacheEntries = 64
	restored := NewGameController(smaller)
	loadCacheSnapshot(smaller, restored)
	if got := restored.Metrics().CacheSize; got != 0 {
		t.Fatalf("capacity mismatch must skip the restore, got %d entries", got)
	}
	if _, err := os.Stat(cfg.CacheSnapshotPath); err != nil {
		t.Fatalf("mismatched snapshot must be kept on disk: %v", err)
	}
}

func TestCacheSnapshotTruncatedFileDiscarded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CacheSnapshotPath = filepath.Join(t.TempDir(), "scorer_cache.gob")
	if err := os.WriteFile(cfg.CacheSnapshotPath, nil, 0o644); err != nil {
		t.Fatalf("write truncated snapshot: %v", err)
	}

	gc := NewGameController(cfg)
	loadCacheSnapshot(cfg, gc)
	if got := gc.Metrics().CacheSize; got != 0 {
		t.Fatalf("truncated snapshot restored %d entries", got)
	}
	if _, err := os.Stat(cfg.CacheSnapshotPath); !os.IsNotExist(err) {
		t.Fatalf("truncated snapshot should be removed, stat err %v", err)
	}
}

func TestCacheSnapshotMissingFileIsQuiet(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CacheSnapshotPath = filepath.Join(t.TempDir(), "absent.gob")

	gc := NewGameController(cfg)
	loadCacheSnapshot(cfg, gc)
	if got := gc.Metrics().CacheSize; got != 0 {
		t.Fatalf("missing snapshot restored %d entries", got)
	}
}
