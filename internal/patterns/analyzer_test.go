package patterns

import (
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"trading-coach/internal/aggregate"
	"trading-coach/internal/config"
	"trading-coach/internal/models"
)

func testParams() Params {
	return Params{
		MinFrequency:    2,
		LookForwardDays: 7,
		Thresholds:      config.Default().Thresholds,
	}
}

func fptr(v float64) *float64 { return &v }

func closedTrade(id string, pnl float64) models.Trade {
	return models.Trade{
		ID:         id,
		UserID:     "u1",
		TradeType:  models.TradeTypeReal,
		Instrument: "ES",
		Status:     models.TradeStatusClosed,
		PnLDollars: fptr(pnl),
		EntryTime:  time.Date(2026, 8, 10, 9, 30, 0, 0, time.UTC),
	}
}

func TestRegistryOrder(t *testing.T) {
	t.Parallel()

	names := func(analyzers []Analyzer) []string {
		var out []string
		for _, a := range analyzers {
			out = append(out, a.Name())
		}
		return out
	}

	assert.Equal(t,
		[]string{"emotional-state", "risk-management", "discipline", "timing", "market-condition", "coaching-response"},
		names(Registry(true)))
	assert.Equal(t,
		[]string{"emotional-state", "risk-management", "discipline", "timing", "market-condition"},
		names(Registry(false)))
}

func TestFilterByType(t *testing.T) {
	t.Parallel()

	full := Registry(true)

	filtered := FilterByType(full, []models.PatternType{models.PatternRiskManagement, models.PatternMarketTiming})
	assert.Len(t, filtered, 2)
	assert.Equal(t, "risk-management", filtered[0].Name())
	assert.Equal(t, "timing", filtered[1].Name())

	// Empty allow-list keeps everything.
	assert.Len(t, FilterByType(full, nil), len(full))
}

// failingAnalyzer and panickingAnalyzer exercise failure isolation in the
// executor.
type failingAnalyzer struct{}

func (a *failingAnalyzer) Name() string               { return "failing" }
func (a *failingAnalyzer) Type() models.PatternType   { return models.PatternEmotionalTrigger }
func (a *failingAnalyzer) Analyze(ac *aggregate.Context, p Params) ([]models.CandidatePattern, error) {
	return nil, fmt.Errorf("boom")
}

type panickingAnalyzer struct{}

func (a *panickingAnalyzer) Name() string             { return "panicking" }
func (a *panickingAnalyzer) Type() models.PatternType { return models.PatternEmotionalTrigger }
func (a *panickingAnalyzer) Analyze(ac *aggregate.Context, p Params) ([]models.CandidatePattern, error) {
	panic("nope")
}

type staticAnalyzer struct {
	name string
}

func (a *staticAnalyzer) Name() string             { return a.name }
func (a *staticAnalyzer) Type() models.PatternType { return models.PatternEmotionalTrigger }
func (a *staticAnalyzer) Analyze(ac *aggregate.Context, p Params) ([]models.CandidatePattern, error) {
	return []models.CandidatePattern{{
		PatternType: models.PatternEmotionalTrigger,
		PatternName: a.name,
		Severity:    models.SeverityLow,
	}}, nil
}

func TestExecutorIsolatesFailures(t *testing.T) {
	t.Parallel()

	e := NewExecutor(zerolog.Nop())
	analyzers := []Analyzer{
		&staticAnalyzer{name: "first"},
		&failingAnalyzer{},
		&panickingAnalyzer{},
		&staticAnalyzer{name: "last"},
	}

	out := e.Run(analyzers, &aggregate.Context{}, testParams())

	assert.Len(t, out, 2)
	assert.Equal(t, "first", out[0].PatternName)
	assert.Equal(t, "last", out[1].PatternName)
}

func TestExecutorPreservesRegistryOrder(t *testing.T) {
	t.Parallel()

	e := NewExecutor(zerolog.Nop())
	analyzers := []Analyzer{
		&staticAnalyzer{name: "a"},
		&staticAnalyzer{name: "b"},
		&staticAnalyzer{name: "c"},
	}

	for i := 0; i < 20; i++ {
		out := e.Run(analyzers, &aggregate.Context{}, testParams())
		assert.Equal(t, "a", out[0].PatternName)
		assert.Equal(t, "b", out[1].PatternName)
		assert.Equal(t, "c", out[2].PatternName)
	}
}

func TestSeverityForAvgLoss(t *testing.T) {
	t.Parallel()

	th := config.Default().Thresholds

	tests := []struct {
		avg  float64
		want models.Severity
	}{
		{-250, models.SeverityCritical},
		{-200, models.SeverityCritical},
		{-199.99, models.SeverityHigh},
		{-100, models.SeverityHigh},
		{-99.99, models.SeverityMedium},
		{-80, models.SeverityMedium},
		{-50, models.SeverityMedium},
		{-49.99, models.SeverityLow},
		{0, models.SeverityLow},
		{120, models.SeverityLow},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, severityForAvgLoss(tt.avg, th), "avg %.2f", tt.avg)
	}
}
