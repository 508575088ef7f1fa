package main

import "sort"

type Confidence int

const (
	ConfidenceLow Confidence = iota
	ConfidenceMedium
	ConfidenceHigh
	ConfidenceVeryHigh
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceVeryHigh:
		return "very_high"
	case ConfidenceHigh:
		return "high"
	case ConfidenceMedium:
		return "medium"
	default:
		return "low"
	}
}

type MoveValue struct {
	Row   int     `json:"row"`
	Col   int     `json:"col"`
	Value float64 `json:"value"`
}

type Suggestion struct {
	Row          int
	Col          int
	Value        float64
	Confidence   Confidence
	Alternatives []MoveValue
}

const maxSuggestionAlternatives = 3

// Suggester ranks every legal move by scorer value and picks the best
// with a qualitative confidence derived from the margin over the
// runner-up.
type Suggester struct {
	scorer       *Scorer
	alternatives int
}

func NewSuggester(scorer *Scorer, alternatives int) *Suggester {
	if alternatives < 0 || alternatives > maxSuggestionAlternatives {
		alternatives = maxSuggestionAlternatives
	}
	return &Suggester{scorer: scorer, alternatives: alternatives}
}

func (sg *Suggester) Scorer() *Scorer {
	return sg.scorer
}

// Rank scores every empty cell and sorts descending by value. Cells are
// enumerated row-major and the sort is stable, so equal values keep
// row-major order.
func (sg *Suggester) Rank(board Board) []MoveValue {
	empty := board.EmptyCells()
	ranked := make([]MoveValue, 0, len(empty))
	for _, p := range empty {
		ranked = append(ranked, MoveValue{
			Row:   p.Row,
			Col:   p.Col,
			Value: sg.scorer.Value(board, p.Row, p.Col),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Value > ranked[j].Value
	})
	return ranked
}

// Suggest returns the best move plus up to three alternatives, or
// false when the board has no empty cell left.
func (sg *Suggester) Suggest(board Board) (Suggestion, bool) {
	ranked := sg.Rank(board)
	if len(ranked) == 0 {
		return Suggestion{}, false
	}
	best := ranked[0]
	// A lone candidate is measured against zero, so a completing final
	// cell still reports very high confidence.
	gap := best.Value
	if len(ranked) > 1 {
		gap = best.Value - ranked[1].Value
	}
	limit := sg.alternatives
	if len(ranked)-1 < limit {
		limit = len(ranked) - 1
	}
	alternatives := make([]MoveValue, limit)
	copy(alternatives, ranked[1:1+limit])
	return Suggestion{
		Row:          best.Row,
		Col:          best.Col,
		Value:        best.Value,
		Confidence:   confidenceForGap(gap, sg.scorer.Weights()),
		Alternatives: alternatives,
	}, true
}

func confidenceForGap(gap float64, w ScoreWeights) Confidence {
	switch {
	case gap >= w.CompleteLine:
		return ConfidenceVeryHigh
	case gap >= w.CooperativeLine:
		return ConfidenceHigh
	case gap >= w.PotentialLine:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
