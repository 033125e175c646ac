// Package models provides domain models for the trading coach application.
package models

import "fmt"

// TradeType distinguishes practice trades from real-money trades.
type TradeType string

const (
	TradeTypeTraining TradeType = "TRAINING"
	TradeTypeReal     TradeType = "REAL"
)

// TradeStatus represents the lifecycle state of a trade.
type TradeStatus string

const (
	TradeStatusOpen   TradeStatus = "OPEN"
	TradeStatusClosed TradeStatus = "CLOSED"
)

// TradeDirection represents the direction of a trade.
type TradeDirection string

const (
	DirectionLong  TradeDirection = "LONG"
	DirectionShort TradeDirection = "SHORT"
)

// PatternType classifies a psychology pattern.
type PatternType string

const (
	PatternEmotionalTrigger   PatternType = "EMOTIONAL_TRIGGER"
	PatternRiskManagement     PatternType = "RISK_MANAGEMENT"
	PatternDisciplineIssue    PatternType = "DISCIPLINE_ISSUE"
	PatternMarketTiming       PatternType = "MARKET_TIMING"
	PatternPerformancePattern PatternType = "PERFORMANCE_PATTERN"
)

// AllPatternTypes lists every pattern type in a fixed order.
var AllPatternTypes = []PatternType{
	PatternEmotionalTrigger,
	PatternRiskManagement,
	PatternDisciplineIssue,
	PatternMarketTiming,
	PatternPerformancePattern,
}

// ParsePatternType parses a string into a PatternType.
func ParsePatternType(s string) (PatternType, error) {
	for _, pt := range AllPatternTypes {
		if string(pt) == s {
			return pt, nil
		}
	}
	return "", fmt.Errorf("unknown pattern type: %q", s)
}

// Severity rates how damaging a pattern is to performance.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Weight returns the ranking weight for a severity level.
func (s Severity) Weight() float64 {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	default:
		return 1
	}
}

// ParseSeverity parses a string into a Severity.
func ParseSeverity(s string) (Severity, error) {
	switch Severity(s) {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return Severity(s), nil
	}
	return "", fmt.Errorf("unknown severity: %q", s)
}
