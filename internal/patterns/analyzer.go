// Package patterns implements the behavioral pattern analyzers. Each
// analyzer is a pure function over the aggregated context: no shared state,
// no side effects, safe to run concurrently.
package patterns

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"trading-coach/internal/aggregate"
	"trading-coach/internal/config"
	apperrors "trading-coach/internal/errors"
	"trading-coach/internal/logging"
	"trading-coach/internal/models"
)

// Params carries the per-pass tuning every analyzer reads.
type Params struct {
	MinFrequency    int
	LookForwardDays int
	Thresholds      config.ThresholdConfig
}

// Analyzer proposes candidate patterns from the aggregated context.
type Analyzer interface {
	// Name returns the unique name of the analyzer.
	Name() string
	// Type returns the pattern type this analyzer emits.
	Type() models.PatternType
	// Analyze proposes candidate patterns. It must not mutate the context.
	Analyze(ac *aggregate.Context, p Params) ([]models.CandidatePattern, error)
}

// Registry returns the analyzer set in its contract order. The order is
// load-bearing: candidate emission order feeds the first-wins deduplication
// rule and the ranking tie-break downstream.
func Registry(includeCoachingResponse bool) []Analyzer {
	analyzers := []Analyzer{
		&EmotionalStateAnalyzer{},
		&RiskManagementAnalyzer{},
		&DisciplineAnalyzer{},
		&TimingAnalyzer{},
		&MarketConditionAnalyzer{},
	}
	if includeCoachingResponse {
		analyzers = append(analyzers, &CoachingResponseAnalyzer{})
	}
	return analyzers
}

// FilterByType restricts a registry to an allow-list of pattern types,
// preserving order. An empty allow-list keeps everything.
func FilterByType(analyzers []Analyzer, types []models.PatternType) []Analyzer {
	if len(types) == 0 {
		return analyzers
	}
	allowed := make(map[models.PatternType]bool, len(types))
	for _, t := range types {
		allowed[t] = true
	}
	out := make([]Analyzer, 0, len(analyzers))
	for _, a := range analyzers {
		if allowed[a.Type()] {
			out = append(out, a)
		}
	}
	return out
}

// Executor runs a set of analyzers concurrently while keeping their output
// in registry order, so results are deterministic regardless of scheduling.
type Executor struct {
	logger zerolog.Logger
}

// NewExecutor creates a new analyzer executor.
func NewExecutor(logger zerolog.Logger) *Executor {
	return &Executor{logger: logger}
}

// Run executes all analyzers over the context. A failing or panicking
// analyzer is isolated: its error is logged and the remaining analyzers'
// candidates still come back. The returned slice concatenates each
// analyzer's output in registry order.
func (e *Executor) Run(analyzers []Analyzer, ac *aggregate.Context, p Params) []models.CandidatePattern {
	results := make([][]models.CandidatePattern, len(analyzers))
	errs := make([]error, len(analyzers))

	var wg sync.WaitGroup
	for i, a := range analyzers {
		wg.Add(1)
		go func(i int, a Analyzer) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					errs[i] = apperrors.NewAnalyzerError(a.Name(), fmt.Errorf("panic: %v", r))
				}
			}()

			candidates, err := a.Analyze(ac, p)
			if err != nil {
				errs[i] = apperrors.NewAnalyzerError(a.Name(), err)
				return
			}
			results[i] = candidates
		}(i, a)
	}
	wg.Wait()

	var out []models.CandidatePattern
	for i := range analyzers {
		if errs[i] != nil {
			logging.LogAnalyzerFailure(e.logger, analyzers[i].Name(), errs[i])
			continue
		}
		out = append(out, results[i]...)
	}
	return out
}

// severityForAvgLoss maps an average dollar loss to a severity level using
// the configured escalation boundaries.
func severityForAvgLoss(avg float64, th config.ThresholdConfig) models.Severity {
	switch {
	case avg <= th.CriticalAvgLoss:
		return models.SeverityCritical
	case avg <= th.HighSeverityAvgLoss:
		return models.SeverityHigh
	case avg <= th.AvgLossThreshold:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}
