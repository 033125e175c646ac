package patterns

import (
	"fmt"
	"sort"

	"trading-coach/internal/aggregate"
	"trading-coach/internal/models"
	"trading-coach/pkg/utils"
)

// bucketStats accumulates closed-trade results for one bucket.
type bucketStats struct {
	count    int
	wins     int
	totalPnL float64
}

func (b bucketStats) winRate() float64 {
	if b.count == 0 {
		return 0
	}
	return float64(b.wins) / float64(b.count)
}

func (b bucketStats) avgPnL() float64 {
	if b.count == 0 {
		return 0
	}
	return b.totalPnL / float64(b.count)
}

// TimingAnalyzer buckets closed trades by hour of entry and flags weak
// windows.
type TimingAnalyzer struct{}

func (a *TimingAnalyzer) Name() string { return "timing" }

func (a *TimingAnalyzer) Type() models.PatternType { return models.PatternMarketTiming }

// Analyze flags an entry hour when it has at least MinFrequency trades and
// either an average P&L beyond the loss threshold or a win rate below the
// timing threshold.
func (a *TimingAnalyzer) Analyze(ac *aggregate.Context, p Params) ([]models.CandidatePattern, error) {
	buckets := make(map[int]*bucketStats)
	for _, t := range ac.ClosedTrades {
		hour := t.EntryTime.UTC().Hour()
		b, ok := buckets[hour]
		if !ok {
			b = &bucketStats{}
			buckets[hour] = b
		}
		b.count++
		pnl := t.PnL()
		b.totalPnL += pnl
		if pnl > 0 {
			b.wins++
		}
	}

	hours := make([]int, 0, len(buckets))
	for h := range buckets {
		hours = append(hours, h)
	}
	sort.Ints(hours)

	var out []models.CandidatePattern
	for _, hour := range hours {
		b := buckets[hour]
		if b.count < p.MinFrequency {
			continue
		}
		avg := b.avgPnL()
		wr := b.winRate()
		if avg >= p.Thresholds.AvgLossThreshold && wr >= p.Thresholds.TimingWinRate {
			continue
		}

		window := utils.FormatHour(hour)
		out = append(out, models.CandidatePattern{
			PatternType: models.PatternMarketTiming,
			PatternName: fmt.Sprintf("Weak Entry Window %s", window),
			Description: fmt.Sprintf(
				"%d trades entered between %s: %s win rate, %s average P&L (%s total)",
				b.count, window, utils.FormatPercent(wr),
				utils.FormatCurrency(avg), utils.FormatCurrency(b.totalPnL)),
			Frequency:           b.count,
			SampleSize:          b.count,
			Severity:            severityForAvgLoss(avg, p.Thresholds),
			ImpactOnPerformance: b.totalPnL,
			TriggerConditions:   []string{fmt.Sprintf("entry_hour:%02d", hour)},
			TradingContext: models.TradingContext{
				"entry_hour":  float64(hour),
				"trade_count": float64(b.count),
				"win_rate":    wr,
				"avg_pnl":     avg,
			},
			CoachingRecommendations: []string{
				fmt.Sprintf("Stand aside during the %s window until results improve", window),
				"Compare setups from this window against your best-performing hours",
			},
		})
	}
	return out, nil
}

// MarketConditionAnalyzer buckets closed trades by recorded volatility
// regime and flags weak regimes with the same thresholds as TimingAnalyzer.
type MarketConditionAnalyzer struct{}

func (a *MarketConditionAnalyzer) Name() string { return "market-condition" }

func (a *MarketConditionAnalyzer) Type() models.PatternType { return models.PatternPerformancePattern }

// Analyze flags a volatility regime when it has at least MinFrequency trades
// and either an average P&L beyond the loss threshold or a win rate below
// the timing threshold. Trades without a recorded regime are skipped.
func (a *MarketConditionAnalyzer) Analyze(ac *aggregate.Context, p Params) ([]models.CandidatePattern, error) {
	buckets := make(map[string]*bucketStats)
	for _, t := range ac.ClosedTrades {
		if t.VolatilityRegime == "" {
			continue
		}
		b, ok := buckets[t.VolatilityRegime]
		if !ok {
			b = &bucketStats{}
			buckets[t.VolatilityRegime] = b
		}
		b.count++
		pnl := t.PnL()
		b.totalPnL += pnl
		if pnl > 0 {
			b.wins++
		}
	}

	regimes := make([]string, 0, len(buckets))
	for r := range buckets {
		regimes = append(regimes, r)
	}
	sort.Strings(regimes)

	var out []models.CandidatePattern
	for _, regime := range regimes {
		b := buckets[regime]
		if b.count < p.MinFrequency {
			continue
		}
		avg := b.avgPnL()
		wr := b.winRate()
		if avg >= p.Thresholds.AvgLossThreshold && wr >= p.Thresholds.TimingWinRate {
			continue
		}

		out = append(out, models.CandidatePattern{
			PatternType: models.PatternPerformancePattern,
			PatternName: fmt.Sprintf("Struggles in %s Volatility", regime),
			Description: fmt.Sprintf(
				"%d trades during %s volatility: %s win rate, %s average P&L (%s total)",
				b.count, regime, utils.FormatPercent(wr),
				utils.FormatCurrency(avg), utils.FormatCurrency(b.totalPnL)),
			Frequency:           b.count,
			SampleSize:          b.count,
			Severity:            severityForAvgLoss(avg, p.Thresholds),
			ImpactOnPerformance: b.totalPnL,
			TriggerConditions:   []string{fmt.Sprintf("volatility_regime:%s", regime)},
			TradingContext: models.TradingContext{
				"trade_count": float64(b.count),
				"win_rate":    wr,
				"avg_pnl":     avg,
			},
			CoachingRecommendations: []string{
				fmt.Sprintf("Cut size or sit out when the market is in a %s regime", regime),
				"Backtest the current setup list against this regime before re-engaging",
			},
		})
	}
	return out, nil
}
