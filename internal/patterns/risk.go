package patterns

import (
	"fmt"

	"trading-coach/internal/aggregate"
	"trading-coach/internal/models"
	"trading-coach/pkg/utils"
)

// RiskManagementAnalyzer flags trading without stop losses and stop
// movement habits.
type RiskManagementAnalyzer struct{}

func (a *RiskManagementAnalyzer) Name() string { return "risk-management" }

func (a *RiskManagementAnalyzer) Type() models.PatternType { return models.PatternRiskManagement }

// Analyze emits "no stop loss" when stop-less trades reach MinFrequency and
// show either an outsized single loss or a negative average, and "stop
// movement" when moved-stop trades reach MinFrequency with an average P&L
// beyond the loss threshold.
func (a *RiskManagementAnalyzer) Analyze(ac *aggregate.Context, p Params) ([]models.CandidatePattern, error) {
	var out []models.CandidatePattern

	if c := a.analyzeNoStop(ac, p); c != nil {
		out = append(out, *c)
	}
	if c := a.analyzeStopMovement(ac, p); c != nil {
		out = append(out, *c)
	}
	return out, nil
}

func (a *RiskManagementAnalyzer) analyzeNoStop(ac *aggregate.Context, p Params) *models.CandidatePattern {
	var (
		count    int
		totalPnL float64
		worst    float64
	)
	for _, t := range ac.ClosedTrades {
		if t.StopLoss != nil {
			continue
		}
		pnl := t.PnL()
		count++
		totalPnL += pnl
		if pnl < worst {
			worst = pnl
		}
	}
	if count < p.MinFrequency {
		return nil
	}

	avg := totalPnL / float64(count)
	outsized := worst <= p.Thresholds.OutsizedLossThreshold
	if !outsized && avg >= 0 {
		return nil
	}

	severity := severityForAvgLoss(avg, p.Thresholds)
	if outsized && severity != models.SeverityCritical {
		// A single uncontrolled loss is worse than the average suggests.
		severity = models.SeverityHigh
	}

	return &models.CandidatePattern{
		PatternType: models.PatternRiskManagement,
		PatternName: "Trading Without Stop Loss",
		Description: fmt.Sprintf(
			"%d trades entered without a stop loss: %s average P&L, worst single loss %s",
			count, utils.FormatCurrency(avg), utils.FormatCurrency(worst)),
		Frequency:           count,
		SampleSize:          count,
		Severity:            severity,
		ImpactOnPerformance: totalPnL,
		TriggerConditions:   []string{"stop_loss:absent"},
		TradingContext: models.TradingContext{
			"trade_count": float64(count),
			"avg_pnl":     avg,
			"worst_loss":  worst,
		},
		CoachingRecommendations: []string{
			"Define the stop loss before entry, not after",
			"Size positions from the stop distance so each loss stays bounded",
		},
	}
}

func (a *RiskManagementAnalyzer) analyzeStopMovement(ac *aggregate.Context, p Params) *models.CandidatePattern {
	var (
		count    int
		totalPnL float64
	)
	for _, t := range ac.ClosedTrades {
		if !t.StopMoved {
			continue
		}
		count++
		totalPnL += t.PnL()
	}
	if count < p.MinFrequency {
		return nil
	}

	avg := totalPnL / float64(count)
	if avg >= p.Thresholds.AvgLossThreshold {
		return nil
	}

	return &models.CandidatePattern{
		PatternType: models.PatternRiskManagement,
		PatternName: "Moving Stop Losses",
		Description: fmt.Sprintf(
			"%d trades where the stop was moved after entry, averaging %s per trade (%s total)",
			count, utils.FormatCurrency(avg), utils.FormatCurrency(totalPnL)),
		Frequency:           count,
		SampleSize:          count,
		Severity:            severityForAvgLoss(avg, p.Thresholds),
		ImpactOnPerformance: totalPnL,
		TriggerConditions:   []string{"stop_loss:moved"},
		TradingContext: models.TradingContext{
			"trade_count": float64(count),
			"avg_pnl":     avg,
			"total_pnl":   totalPnL,
		},
		CoachingRecommendations: []string{
			"Treat the original stop as a commitment; widen only before entry",
			"Review each moved-stop trade against its plan in the journal",
		},
	}
}
