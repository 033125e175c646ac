package models

import (
	"fmt"
	"time"
)

// CoachingIntervention is one entry in a pattern's append-only intervention
// log. Entries are never rewritten once appended.
type CoachingIntervention struct {
	Date             time.Time `json:"date"`
	Recommendations  []string  `json:"recommendations"`
	EvidenceStrength float64   `json:"evidence_strength"`
}

// TradingContext is an opaque snapshot of the statistics that backed a
// pattern at identification time.
type TradingContext map[string]float64

// PsychologyPattern is a persisted behavioral pattern. Patterns are unique
// per (UserID, PatternType, PatternName) and are never hard-deleted: they
// deactivate when stale and reactivate through the normal update path.
type PsychologyPattern struct {
	ID                    string
	UserID                string
	PatternType           PatternType
	PatternName           string
	Description           string
	Frequency             int
	Severity              Severity
	ImpactOnPerformance   float64 // signed currency value
	FirstObserved         time.Time
	LastObserved          time.Time
	TriggerConditions     []string
	TradingContext        TradingContext
	CoachingInterventions []CoachingIntervention
	IsActive              bool
}

// Key returns the deduplication key for the pattern.
func (p *PsychologyPattern) Key() PatternKey {
	return PatternKey{Type: p.PatternType, Name: p.PatternName}
}

// Validate checks structural invariants before persistence.
func (p *PsychologyPattern) Validate() error {
	if p.UserID == "" {
		return fmt.Errorf("pattern user id is required")
	}
	if _, err := ParsePatternType(string(p.PatternType)); err != nil {
		return err
	}
	if p.PatternName == "" {
		return fmt.Errorf("pattern name is required")
	}
	if _, err := ParseSeverity(string(p.Severity)); err != nil {
		return err
	}
	for i, iv := range p.CoachingInterventions {
		if iv.EvidenceStrength < 0 || iv.EvidenceStrength > 1 {
			return fmt.Errorf("intervention %d: evidence strength %f outside [0,1]", i, iv.EvidenceStrength)
		}
	}
	return nil
}

// PatternKey identifies a pattern within a user's pattern set.
type PatternKey struct {
	Type PatternType
	Name string
}

// CandidatePattern is an analyzer's proposed pattern before deduplication,
// ranking, and persistence.
type CandidatePattern struct {
	PatternType             PatternType
	PatternName             string
	Description             string
	Frequency               int
	SampleSize              int
	Severity                Severity
	ImpactOnPerformance     float64
	TriggerConditions       []string
	TradingContext          TradingContext
	CoachingRecommendations []string
	EvidenceStrength        float64
}

// Key returns the deduplication key for the candidate.
func (c *CandidatePattern) Key() PatternKey {
	return PatternKey{Type: c.PatternType, Name: c.PatternName}
}

// RankingScore combines severity weight, evidence strength, and impact
// magnitude into the sort key used for final ordering.
func (c *CandidatePattern) RankingScore() float64 {
	impact := c.ImpactOnPerformance
	if impact < 0 {
		impact = -impact
	}
	return c.Severity.Weight() * c.EvidenceStrength * impact
}
