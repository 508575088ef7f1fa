package main

import "time"

const metricsWindowSamples = 100

// ScorerMetrics tracks cache accounting and a bounded rolling window of
// calculation durations for one Scorer. Hits are cache lookups that
// avoided a calculation; every miss contributes one duration sample.
type ScorerMetrics struct {
	hits      int64
	misses    int64
	durations []time.Duration
}

func NewScorerMetrics() *ScorerMetrics {
	return &ScorerMetrics{}
}

func (m *ScorerMetrics) RecordHit() {
	m.hits++
}

func (m *ScorerMetrics) RecordCalculation(d time.Duration) {
	m.misses++
	if len(m.durations) >= metricsWindowSamples {
		copy(m.durations, m.durations[1:])
		m.durations[len(m.durations)-1] = d
		return
	}
	m.durations = append(m.durations, d)
}

func (m *ScorerMetrics) Hits() int64 {
	return m.hits
}

func (m *ScorerMetrics) Misses() int64 {
	return m.misses
}

// HitRate reports cache hits as a percentage of all lookups.
func (m *ScorerMetrics) HitRate() float64 {
	total := m.hits + m.misses
	if total == 0 {
		return 0
	}
	return float64(m.hits) / float64(total) * 100.0
}

func (m *ScorerMetrics) AverageCalcTime() time.Duration {
	if len(m.durations) == 0 {
		return 0
	}
	var sum time.Duration
	for _, d := range m.durations {
		sum += d
	}
	return sum / time.Duration(len(m.durations))
}

func (m *ScorerMetrics) WindowSize() int {
	return len(m.durations)
}

func (m *ScorerMetrics) Reset() {
	m.hits = 0
	m.misses = 0
	m.durations = nil
}

type MetricsSnapshot struct {
	CacheHits     int64   `json:"cache_hits"`
	CacheMisses   int64   `json:"cache_misses"`
	HitRatePct    float64 `json:"hit_rate_pct"`
	AvgCalcMs     float64 `json:"avg_calc_ms"`
	WindowSamples int     `json:"window_samples"`
	CacheSize     int     `json:"cache_size"`
	CacheCapacity int     `json:"cache_capacity"`
}

func (m *ScorerMetrics) Snapshot(cacheSize, cacheCapacity int) MetricsSnapshot {
	return MetricsSnapshot{
		CacheHits:     m.hits,
		CacheMisses:   m.misses,
		HitRatePct:    m.HitRate(),
		AvgCalcMs:     float64(m.AverageCalcTime()) / float64(time.Millisecond),
		WindowSamples: len(m.durations),
		CacheSize:     cacheSize,
		CacheCapacity: cacheCapacity,
	}
}
