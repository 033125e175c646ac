package patterns

import (
	"fmt"

	"trading-coach/internal/aggregate"
	"trading-coach/internal/models"
	"trading-coach/pkg/utils"
)

// DisciplineAnalyzer flags impulsive (unplanned) trading and low plan
// adherence.
type DisciplineAnalyzer struct{}

func (a *DisciplineAnalyzer) Name() string { return "discipline" }

func (a *DisciplineAnalyzer) Type() models.PatternType { return models.PatternDisciplineIssue }

// Analyze emits "impulsive trading" when planned trades outperform unplanned
// ones by the configured margin, and "plan deviation" when low-adherence
// trades reach MinFrequency with an average P&L beyond the loss threshold.
func (a *DisciplineAnalyzer) Analyze(ac *aggregate.Context, p Params) ([]models.CandidatePattern, error) {
	var out []models.CandidatePattern

	if c := a.analyzeImpulsive(ac, p); c != nil {
		out = append(out, *c)
	}
	if c := a.analyzeDeviation(ac, p); c != nil {
		out = append(out, *c)
	}
	return out, nil
}

func (a *DisciplineAnalyzer) analyzeImpulsive(ac *aggregate.Context, p Params) *models.CandidatePattern {
	var (
		plannedCount, unplannedCount int
		plannedPnL, unplannedPnL     float64
	)
	for _, t := range ac.ClosedTrades {
		if t.TradePlanID != "" {
			plannedCount++
			plannedPnL += t.PnL()
		} else {
			unplannedCount++
			unplannedPnL += t.PnL()
		}
	}
	if plannedCount < p.MinFrequency || unplannedCount < p.MinFrequency {
		return nil
	}

	plannedAvg := plannedPnL / float64(plannedCount)
	unplannedAvg := unplannedPnL / float64(unplannedCount)
	gap := plannedAvg - unplannedAvg
	if gap < p.Thresholds.ImpulsiveMargin {
		return nil
	}

	// Impact is the shortfall the unplanned trades left on the table
	// relative to the planned baseline.
	impact := (unplannedAvg - plannedAvg) * float64(unplannedCount)

	return &models.CandidatePattern{
		PatternType: models.PatternDisciplineIssue,
		PatternName: "Impulsive Trading",
		Description: fmt.Sprintf(
			"%d unplanned trades averaged %s versus %s across %d planned trades, a %s per-trade gap",
			unplannedCount, utils.FormatCurrency(unplannedAvg),
			utils.FormatCurrency(plannedAvg), plannedCount, utils.FormatCurrency(gap)),
		Frequency:           unplannedCount,
		SampleSize:          plannedCount + unplannedCount,
		Severity:            severityForAvgLoss(-gap, p.Thresholds),
		ImpactOnPerformance: impact,
		TriggerConditions:   []string{"trade_plan:absent"},
		TradingContext: models.TradingContext{
			"planned_count":   float64(plannedCount),
			"unplanned_count": float64(unplannedCount),
			"planned_avg":     plannedAvg,
			"unplanned_avg":   unplannedAvg,
		},
		CoachingRecommendations: []string{
			"Require a written plan before every entry",
			"Flag any order placed within minutes of opening the platform",
		},
	}
}

func (a *DisciplineAnalyzer) analyzeDeviation(ac *aggregate.Context, p Params) *models.CandidatePattern {
	var (
		count    int
		totalPnL float64
		adhSum   float64
	)
	for _, t := range ac.ClosedTrades {
		if t.PlanAdherence == nil || *t.PlanAdherence >= p.Thresholds.AdherenceCutoff {
			continue
		}
		count++
		totalPnL += t.PnL()
		adhSum += *t.PlanAdherence
	}
	if count < p.MinFrequency {
		return nil
	}

	avg := totalPnL / float64(count)
	if avg >= p.Thresholds.AvgLossThreshold {
		return nil
	}
	avgAdherence := adhSum / float64(count)

	return &models.CandidatePattern{
		PatternType: models.PatternDisciplineIssue,
		PatternName: "Plan Deviation",
		Description: fmt.Sprintf(
			"%d trades executed at %s average adherence lost %s on average (%s total)",
			count, utils.FormatPercent(avgAdherence),
			utils.FormatCurrency(avg), utils.FormatCurrency(totalPnL)),
		Frequency:           count,
		SampleSize:          count,
		Severity:            severityForAvgLoss(avg, p.Thresholds),
		ImpactOnPerformance: totalPnL,
		TriggerConditions:   []string{fmt.Sprintf("plan_adherence:below_%.2f", p.Thresholds.AdherenceCutoff)},
		TradingContext: models.TradingContext{
			"trade_count":   float64(count),
			"avg_adherence": avgAdherence,
			"avg_pnl":       avg,
			"total_pnl":     totalPnL,
		},
		CoachingRecommendations: []string{
			"Score adherence immediately after closing each trade",
			"Re-read the plan at every decision point, not just at entry",
		},
	}
}
