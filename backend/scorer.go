package main

import "time"

const illegalMoveValue = -1.0

// strategicCells are the Enhanced-bonus positions: the four corners
// plus the midpoints of the outer rows and columns.
var strategicCells = map[Position]bool{
	{Row: 0, Col: 0}: true,
	{Row: 0, Col: 4}: true,
	{Row: 4, Col: 0}: true,
	{Row: 4, Col: 4}: true,
	{Row: 0, Col: 2}: true,
	{Row: 2, Col: 0}: true,
	{Row: 2, Col: 4}: true,
	{Row: 4, Col: 2}: true,
}

func onDiagonal(r, c int) bool {
	return r == c || r+c == BoardSize-1
}

func isStrategicCell(r, c int) bool {
	return strategicCells[Position{Row: r, Col: c}]
}

// Scorer maps (board, row, col) to the value of marking that cell for
// the player. Pure per variant: same board and cell always yield the
// same number. Results are memoized by (board hash, row, col).
type Scorer struct {
	variant Variant
	weights ScoreWeights
	cache   *ScoreCache
	metrics *ScorerMetrics
}

func NewScorer(variant Variant, cacheEntries int) *Scorer {
	return &Scorer{
		variant: variant,
		weights: WeightsFor(variant),
		cache:   NewScoreCache(cacheEntries),
		metrics: NewScorerMetrics(),
	}
}

func (s *Scorer) Variant() Variant {
	return s.variant
}

func (s *Scorer) Weights() ScoreWeights {
	return s.weights
}

func (s *Scorer) Cache() *ScoreCache {
	return s.cache
}

func (s *Scorer) Metrics() *ScorerMetrics {
	return s.metrics
}

func (s *Scorer) ClearCache() {
	s.cache.Clear()
}

// Value returns the move value for marking (r, c), or -1 when the cell
// is out of bounds or occupied. Illegal inputs bypass the cache.
func (s *Scorer) Value(board Board, r, c int) float64 {
	if !board.IsEmpty(r, c) {
		return illegalMoveValue
	}
	key := board.Hash()
	if value, ok := s.cache.Probe(key, r, c); ok {
		s.metrics.RecordHit()
		return value
	}
	start := time.Now()
	value := s.compute(board, r, c)
	s.metrics.RecordCalculation(time.Since(start))
	s.cache.Store(key, r, c, value)
	return value
}

func (s *Scorer) compute(board Board, r, c int) float64 {
	after := board.Clone()
	after.Set(r, c, CellPlayer)

	value := 0.0
	for _, line := range LinesThrough(r, c) {
		preFilled := CountFilled(board, line)
		preEmpty := BoardSize - preFilled

		// Completion: the move fills the line's last empty cell.
		if IsLineComplete(after, line) {
			value += s.weights.CompleteLine
		}

		// Cooperative: joining a line that already carries marks, the
		// closer to completion the better. Both mark kinds count.
		if preFilled > 0 && preEmpty > 0 {
			switch {
			case preFilled == 4:
				value += s.weights.CooperativeLine * 2
			case preFilled >= 2:
				value += s.weights.CooperativeLine
			default:
				value += s.weights.CooperativeLine * 0.5
			}
		}

		// Potential: lines still open after the move, weighted by how
		// many marks they now hold.
		if postFilled := CountFilled(after, line); postFilled < BoardSize {
			value += float64(postFilled) * s.weights.PotentialLine
		}
	}

	if IsCenter(r, c) {
		value += s.weights.CenterBonus
	}

	if s.variant == VariantEnhanced {
		if onDiagonal(r, c) {
			value += s.weights.IntersectionBonus
		}
		if isStrategicCell(r, c) {
			value += s.weights.StrategicPosition
		}
	}
	return value
}
