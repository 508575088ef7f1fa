package main

import "sync"

type Config struct {
	Variant             string `json:"variant"`
	CacheEntries        int    `json:"cache_entries"`
	SuggestAlternatives int    `json:"suggest_alternatives"`
	ComputerStrategy    string `json:"computer_strategy"`
	ComputerSeed        int64  `json:"computer_seed"`
	StreamSuggestions   bool   `json:"stream_suggestions"`
	StreamMetrics       bool   `json:"stream_metrics"`
	CacheSnapshotPath   string `json:"cache_snapshot_path"`
}

func DefaultConfig() Config {
	return Config{
		Variant:             string(VariantStandard),
		CacheEntries:        scoreCacheDefaultEntries,
		SuggestAlternatives: maxSuggestionAlternatives,
		ComputerStrategy:    string(StrategyRandom),

		// Seed 0 means a fresh seed per process; fix it for
		// reproducible games.
		ComputerSeed: 0,

		StreamSuggestions: true,
		StreamMetrics:     true,

		// Empty path disables the scorer cache snapshot on shutdown.
		CacheSnapshotPath: "",
	}
}

// variant falls back to Standard on unknown names so a stale persisted
// config cannot wedge the server.
func (c Config) variant() Variant {
	v, err := ParseVariant(c.Variant)
	if err != nil {
		return VariantStandard
	}
	return v
}

func (c Config) computerStrategy() ComputerStrategy {
	s, err := ParseComputerStrategy(c.ComputerStrategy)
	if err != nil {
		return StrategyRandom
	}
	return s
}

type ConfigStore struct {
	mu     sync.RWMutex
	config Config
}

var configStore = &ConfigStore{config: DefaultConfig()}

func GetConfig() Config {
	return configStore.Get()
}

func (c *ConfigStore) Get() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

func (c *ConfigStore) Update(newConfig Config) {
	c.mu.Lock()
	c.config = newConfig
	c.mu.Unlock()
}
