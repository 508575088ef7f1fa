package main

import (
	"encoding/gob"
	"io"
	"log"
	"os"
	"path/filepath"
)

type cacheSnapshotFile struct {
	Capacity int
	Entries  []ScoreCacheEntry
}

// loadCacheSnapshot warm-starts the scorer cache from a previous run.
// A missing file is normal; a truncated one is discarded.
func loadCacheSnapshot(cfg Config, controller *GameController) {
	if cfg.CacheSnapshotPath == "" {
		return
	}
	path := cfg.CacheSnapshotPath
	file, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[cache] failed to open snapshot %s: %v", path, err)
		}
		return
	}
	defer file.Close()
	var snapshot cacheSnapshotFile
	if err := gob.NewDecoder(file).Decode(&snapshot); err != nil {
		if isEOFError(err) {
			file.Close()
			os.Remove(path)
			return
		}
		log.Printf("[cache] failed to decode snapshot %s: %v", path, err)
		return
	}
	if snapshot.Capacity != cfg.CacheEntries {
		log.Printf("[cache] snapshot capacity %d does not match configured %d; skipping", snapshot.Capacity, cfg.CacheEntries)
		return
	}
	controller.RestoreCache(snapshot.Entries)
	log.Printf("[cache] restored %d cached values from %s", len(snapshot.Entries), path)
}

func persistCacheSnapshot(cfg Config, controller *GameController) {
	if cfg.CacheSnapshotPath == "" {
		return
	}
	path := cfg.CacheSnapshotPath
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Printf("[cache] unable to create snapshot directory %s: %v", dir, err)
			return
		}
	}
	entries := controller.CacheSnapshot()
	file, err := os.Create(path)
	if err != nil {
		log.Printf("[cache] failed to create snapshot %s: %v", path, err)
		return
	}
	defer file.Close()
	snapshot := cacheSnapshotFile{Capacity: cfg.CacheEntries, Entries: entries}
	if err := gob.NewEncoder(file).Encode(&snapshot); err != nil {
		log.Printf("[cache] failed to encode snapshot %s: %v", path, err)
		return
	}
	log.Printf("[cache] stored %d cached values to %s", len(entries), path)
}

func isEOFError(err error) bool {
	return err == io.EOF || err == io.ErrUnexpectedEOF
}
