// Package scoring normalizes, deduplicates, and ranks candidate patterns.
package scoring

import (
	"sort"

	"trading-coach/internal/config"
	"trading-coach/internal/models"
)

// EvidenceStrength computes the [0,1] confidence score for a candidate: the
// mean of three sub-scores, each clamped to [0,1] as value/ceiling.
func EvidenceStrength(frequency, sampleSize int, impact float64, cfg config.ScoringConfig) float64 {
	freqScore := clamp01(float64(frequency) / cfg.FrequencyCeiling)
	sampleScore := clamp01(float64(sampleSize) / cfg.SampleCeiling)
	if impact < 0 {
		impact = -impact
	}
	impactScore := clamp01(impact / cfg.ImpactCeiling)

	return (freqScore + sampleScore + impactScore) / 3
}

// ApplyEvidence fills in EvidenceStrength on every candidate in place.
func ApplyEvidence(candidates []models.CandidatePattern, cfg config.ScoringConfig) {
	for i := range candidates {
		candidates[i].EvidenceStrength = EvidenceStrength(
			candidates[i].Frequency,
			candidates[i].SampleSize,
			candidates[i].ImpactOnPerformance,
			cfg,
		)
	}
}

// Dedupe drops candidates whose (patternType, patternName) key has already
// been seen. Within one pass the first-emitted candidate for a key wins,
// which is why the analyzer registry order is part of the contract.
func Dedupe(candidates []models.CandidatePattern) []models.CandidatePattern {
	seen := make(map[models.PatternKey]bool, len(candidates))
	out := make([]models.CandidatePattern, 0, len(candidates))
	for _, c := range candidates {
		key := c.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}

// Rank sorts candidates descending by ranking score (severity weight x
// evidence strength x impact magnitude). The sort is stable: ties keep the
// analyzer emission order.
func Rank(candidates []models.CandidatePattern) []models.CandidatePattern {
	out := make([]models.CandidatePattern, len(candidates))
	copy(out, candidates)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RankingScore() > out[j].RankingScore()
	})
	return out
}

// Process runs the full scoring stage: evidence, dedupe, rank.
func Process(candidates []models.CandidatePattern, cfg config.ScoringConfig) []models.CandidatePattern {
	ApplyEvidence(candidates, cfg)
	return Rank(Dedupe(candidates))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
