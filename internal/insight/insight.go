// Package insight reduces a synchronized analysis pass into the compact,
// prioritized payload handed to downstream prompt-assembly and display
// consumers. The contract is the structure, not any particular phrasing.
package insight

import (
	"fmt"
	"sort"

	"trading-coach/internal/config"
	"trading-coach/internal/models"
)

// CoachingInsights is the structured summary of one analysis pass.
type CoachingInsights struct {
	Summary              string            `json:"summary"`
	PriorityCount        int               `json:"priority_count"` // Critical + High patterns
	PriorityPatterns     []PriorityPattern `json:"priority_patterns"`
	TypeRollup           []TypeRollup      `json:"type_rollup"`
	FocusRecommendations []string          `json:"focus_recommendations"`
}

// PriorityPattern is one high-ranked Critical/High pattern with its
// recommendations.
type PriorityPattern struct {
	PatternType      models.PatternType `json:"pattern_type"`
	PatternName      string             `json:"pattern_name"`
	Severity         models.Severity    `json:"severity"`
	EvidenceStrength float64            `json:"evidence_strength"`
	Impact           float64            `json:"impact"`
	Description      string             `json:"description"`
	Recommendations  []string           `json:"recommendations"`
}

// TypeRollup aggregates patterns per type.
type TypeRollup struct {
	PatternType models.PatternType `json:"pattern_type"`
	Count       int                `json:"count"`
	TotalImpact float64            `json:"total_impact"` // absolute magnitude
}

// Summarize reduces the ranked candidates plus synchronizer counts into the
// insight payload. Candidates must already be in final ranked order.
func Summarize(ranked []models.CandidatePattern, created, updated int, cfg config.InsightConfig) *CoachingInsights {
	out := &CoachingInsights{}

	for _, c := range ranked {
		if c.Severity == models.SeverityCritical || c.Severity == models.SeverityHigh {
			out.PriorityCount++
		}
	}

	out.Summary = fmt.Sprintf(
		"Identified %d new and refreshed %d existing behavioral patterns; %d need priority attention",
		created, updated, out.PriorityCount)

	// Highest-ranked Critical/High patterns, capped.
	for _, c := range ranked {
		if len(out.PriorityPatterns) >= cfg.MaxPriorityPatterns {
			break
		}
		if c.Severity != models.SeverityCritical && c.Severity != models.SeverityHigh {
			continue
		}
		out.PriorityPatterns = append(out.PriorityPatterns, PriorityPattern{
			PatternType:      c.PatternType,
			PatternName:      c.PatternName,
			Severity:         c.Severity,
			EvidenceStrength: c.EvidenceStrength,
			Impact:           c.ImpactOnPerformance,
			Description:      c.Description,
			Recommendations:  c.CoachingRecommendations,
		})
	}

	out.TypeRollup = rollupByType(ranked)
	out.FocusRecommendations = focusRecommendations(out.PriorityPatterns, cfg.MaxFocusRecommendations)

	return out
}

// rollupByType aggregates pattern count and total impact magnitude per
// pattern type, sorted by total impact descending.
func rollupByType(ranked []models.CandidatePattern) []TypeRollup {
	byType := make(map[models.PatternType]*TypeRollup)
	for _, c := range ranked {
		r, ok := byType[c.PatternType]
		if !ok {
			r = &TypeRollup{PatternType: c.PatternType}
			byType[c.PatternType] = r
		}
		r.Count++
		impact := c.ImpactOnPerformance
		if impact < 0 {
			impact = -impact
		}
		r.TotalImpact += impact
	}

	out := make([]TypeRollup, 0, len(byType))
	for _, r := range byType {
		out = append(out, *r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalImpact != out[j].TotalImpact {
			return out[i].TotalImpact > out[j].TotalImpact
		}
		return out[i].PatternType < out[j].PatternType
	})
	return out
}

// focusRecommendations flattens the priority patterns' recommendations into
// a deduplicated, capped list.
func focusRecommendations(priority []PriorityPattern, max int) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range priority {
		for _, rec := range p.Recommendations {
			if len(out) >= max {
				return out
			}
			if seen[rec] {
				continue
			}
			seen[rec] = true
			out = append(out, rec)
		}
	}
	return out
}
