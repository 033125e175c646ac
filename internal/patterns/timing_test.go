package patterns

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-coach/internal/aggregate"
	"trading-coach/internal/models"
)

func atHour(tr models.Trade, hour int) models.Trade {
	tr.EntryTime = time.Date(2026, 8, 10, hour, 15, 0, 0, time.UTC)
	return tr
}

func inRegime(tr models.Trade, regime string) models.Trade {
	tr.VolatilityRegime = regime
	return tr
}

func TestTimingWeakWindowFlagged(t *testing.T) {
	t.Parallel()

	// 09:00 window: 3 trades, 1 win, -$60 average. 14:00 window is healthy.
	ac := &aggregate.Context{ClosedTrades: []models.Trade{
		atHour(closedTrade("t1", -150), 9),
		atHour(closedTrade("t2", 40), 9),
		atHour(closedTrade("t3", -70), 9),
		atHour(closedTrade("t4", 90), 14),
		atHour(closedTrade("t5", 60), 14),
	}}

	out, err := (&TimingAnalyzer{}).Analyze(ac, testParams())
	require.NoError(t, err)
	require.Len(t, out, 1)

	c := out[0]
	assert.Equal(t, models.PatternMarketTiming, c.PatternType)
	assert.Equal(t, "Weak Entry Window 09:00-10:00", c.PatternName)
	assert.Equal(t, 3, c.Frequency)
	assert.Equal(t, models.SeverityMedium, c.Severity)
	assert.InDelta(t, -180.0, c.ImpactOnPerformance, 1e-9)
	assert.Contains(t, c.TriggerConditions, "entry_hour:09")
}

func TestTimingLowWinRateAloneFlags(t *testing.T) {
	t.Parallel()

	// Positive average but 1 win in 3: below the timing win-rate floor.
	ac := &aggregate.Context{ClosedTrades: []models.Trade{
		atHour(closedTrade("t1", 300), 11),
		atHour(closedTrade("t2", -20), 11),
		atHour(closedTrade("t3", -10), 11),
	}}

	out, err := (&TimingAnalyzer{}).Analyze(ac, testParams())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Weak Entry Window 11:00-12:00", out[0].PatternName)
	assert.Equal(t, models.SeverityLow, out[0].Severity)
}

func TestTimingBucketsSortedByHour(t *testing.T) {
	t.Parallel()

	ac := &aggregate.Context{ClosedTrades: []models.Trade{
		atHour(closedTrade("t1", -100), 15),
		atHour(closedTrade("t2", -100), 15),
		atHour(closedTrade("t3", -100), 9),
		atHour(closedTrade("t4", -100), 9),
	}}

	out, err := (&TimingAnalyzer{}).Analyze(ac, testParams())
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Weak Entry Window 09:00-10:00", out[0].PatternName)
	assert.Equal(t, "Weak Entry Window 15:00-16:00", out[1].PatternName)
}

func TestMarketConditionWeakRegimeFlagged(t *testing.T) {
	t.Parallel()

	ac := &aggregate.Context{ClosedTrades: []models.Trade{
		inRegime(closedTrade("t1", -130), "high"),
		inRegime(closedTrade("t2", -70), "high"),
		inRegime(closedTrade("t3", 90), "low"),
		inRegime(closedTrade("t4", 50), "low"),
		closedTrade("t5", -999), // no regime recorded, skipped
	}}

	out, err := (&MarketConditionAnalyzer{}).Analyze(ac, testParams())
	require.NoError(t, err)
	require.Len(t, out, 1)

	c := out[0]
	assert.Equal(t, models.PatternPerformancePattern, c.PatternType)
	assert.Equal(t, "Struggles in high Volatility", c.PatternName)
	assert.Equal(t, models.SeverityHigh, c.Severity) // avg -$100
	assert.InDelta(t, -200.0, c.ImpactOnPerformance, 1e-9)
	assert.Contains(t, c.TriggerConditions, "volatility_regime:high")
}

func TestMarketConditionHealthyRegimeNotFlagged(t *testing.T) {
	t.Parallel()

	ac := &aggregate.Context{ClosedTrades: []models.Trade{
		inRegime(closedTrade("t1", 90), "low"),
		inRegime(closedTrade("t2", 50), "low"),
		inRegime(closedTrade("t3", -10), "low"),
	}}

	out, err := (&MarketConditionAnalyzer{}).Analyze(ac, testParams())
	require.NoError(t, err)
	assert.Empty(t, out)
}
