package patterns

import (
	"fmt"
	"sort"

	"trading-coach/internal/aggregate"
	"trading-coach/internal/models"
	"trading-coach/pkg/utils"
)

// EmotionalStateAnalyzer flags emotional states whose trades underperform.
type EmotionalStateAnalyzer struct{}

func (a *EmotionalStateAnalyzer) Name() string { return "emotional-state" }

func (a *EmotionalStateAnalyzer) Type() models.PatternType { return models.PatternEmotionalTrigger }

// Analyze flags an emotional state when it has at least MinFrequency closed
// trades and either a win rate below the low-win-rate threshold or an
// average P&L beyond the loss threshold.
func (a *EmotionalStateAnalyzer) Analyze(ac *aggregate.Context, p Params) ([]models.CandidatePattern, error) {
	states := make([]string, 0, len(ac.EmotionalStates))
	for state := range ac.EmotionalStates {
		states = append(states, state)
	}
	sort.Strings(states)

	var out []models.CandidatePattern
	for _, state := range states {
		s := ac.EmotionalStates[state]
		if s.Count < p.MinFrequency {
			continue
		}
		if s.WinRate >= p.Thresholds.LowWinRate && s.AvgPnL >= p.Thresholds.AvgLossThreshold {
			continue
		}

		out = append(out, models.CandidatePattern{
			PatternType: models.PatternEmotionalTrigger,
			PatternName: fmt.Sprintf("%s Trading Pattern", state),
			Description: fmt.Sprintf(
				"Trading while %s: %d trades with a %s win rate and %s average P&L (%s total)",
				state, s.Count, utils.FormatPercent(s.WinRate),
				utils.FormatCurrency(s.AvgPnL), utils.FormatCurrency(s.TotalPnL)),
			Frequency:           s.Count,
			SampleSize:          s.Count,
			Severity:            severityForAvgLoss(s.AvgPnL, p.Thresholds),
			ImpactOnPerformance: s.TotalPnL,
			TriggerConditions:   []string{fmt.Sprintf("emotional_state:%s", state)},
			TradingContext: models.TradingContext{
				"trade_count": float64(s.Count),
				"win_rate":    s.WinRate,
				"avg_pnl":     s.AvgPnL,
				"total_pnl":   s.TotalPnL,
			},
			CoachingRecommendations: []string{
				fmt.Sprintf("Pause before entering trades when feeling %s", state),
				fmt.Sprintf("Journal the trigger each time %s shows up pre-trade", state),
				"Reduce position size until the win rate recovers",
			},
		})
	}
	return out, nil
}
