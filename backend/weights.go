package main

import "fmt"

// Variant names a scoring weight set. Variants are plain values; the
// two shipped sets differ in magnitude and in the Enhanced-only
// positional bonuses.
type Variant string

const (
	VariantStandard Variant = "standard"
	VariantEnhanced Variant = "enhanced"
)

func ParseVariant(s string) (Variant, error) {
	switch Variant(s) {
	case VariantStandard:
		return VariantStandard, nil
	case VariantEnhanced:
		return VariantEnhanced, nil
	default:
		return "", fmt.Errorf("unknown variant %q", s)
	}
}

type ScoreWeights struct {
	CompleteLine      float64 `json:"complete_line"`
	CooperativeLine   float64 `json:"cooperative_line"`
	PotentialLine     float64 `json:"potential_line"`
	CenterBonus       float64 `json:"center_bonus"`
	IntersectionBonus float64 `json:"intersection_bonus"`
	StrategicPosition float64 `json:"strategic_position"`
}

func StandardWeights() ScoreWeights {
	return ScoreWeights{
		CompleteLine:    100.0,
		CooperativeLine: 50.0,
		PotentialLine:   10.0,
		CenterBonus:     5.0,
	}
}

func EnhancedWeights() ScoreWeights {
	return ScoreWeights{
		CompleteLine:      120.0,
		CooperativeLine:   70.0,
		PotentialLine:     15.0,
		CenterBonus:       8.0,
		IntersectionBonus: 20.0,
		StrategicPosition: 12.0,
	}
}

func WeightsFor(variant Variant) ScoreWeights {
	if variant == VariantEnhanced {
		return EnhancedWeights()
	}
	return StandardWeights()
}
