// Package engine wires the analysis pipeline: aggregate, analyze, score,
// synchronize, summarize. One pass per user per call.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"trading-coach/internal/aggregate"
	"trading-coach/internal/config"
	apperrors "trading-coach/internal/errors"
	"trading-coach/internal/insight"
	"trading-coach/internal/logging"
	"trading-coach/internal/models"
	"trading-coach/internal/patterns"
	"trading-coach/internal/scoring"
	"trading-coach/internal/store"
)

// Options tunes a single analysis pass. Zero values fall back to the
// configured defaults.
type Options struct {
	AnalysisWindowDays      int
	MinFrequency            int
	IncludeCoachingFeedback *bool
	ForcedPatternTypes      []models.PatternType
	Now                     time.Time // zero means time.Now; fixed in tests
}

// Result is the outcome of one analysis pass.
type Result struct {
	UserID              string                     `json:"user_id"`
	GeneratedAt         time.Time                  `json:"generated_at"`
	InsufficientData    bool                       `json:"insufficient_data"`
	Message             string                     `json:"message,omitempty"`
	PatternsIdentified  []models.CandidatePattern  `json:"patterns_identified"`
	NewPatterns         int                        `json:"new_patterns"`
	PatternsUpdated     int                        `json:"patterns_updated"`
	PatternsDeactivated int                        `json:"patterns_deactivated"`
	CoachingInsights    *insight.CoachingInsights  `json:"coaching_insights,omitempty"`
	AnalysisData        *aggregate.Context         `json:"-"`
}

// Engine runs analysis passes against a data store.
type Engine struct {
	cfg      *config.Config
	store    store.DataStore
	builder  *aggregate.Builder
	executor *patterns.Executor
	locks    *userLocks
	logger   zerolog.Logger
}

// New creates a new analysis engine.
func New(cfg *config.Config, dataStore store.DataStore, logger zerolog.Logger) *Engine {
	return &Engine{
		cfg:      cfg,
		store:    dataStore,
		builder:  aggregate.NewBuilder(dataStore, logger),
		executor: patterns.NewExecutor(logger),
		locks:    newUserLocks(),
		logger:   logger,
	}
}

// AnalyzeAndUpdatePatterns runs one full analysis pass for a user: it
// aggregates the window, runs the analyzer set, scores and ranks the
// candidates, reconciles them against the pattern store in one transaction,
// and reduces the outcome to a coaching-insight payload.
//
// Passes for the same user are serialized; passes for different users run
// independently. Fewer trades than the minimum sample yields a valid
// "insufficient data" result, not an error.
func (e *Engine) AnalyzeAndUpdatePatterns(ctx context.Context, userID string, opts Options) (*Result, error) {
	if userID == "" {
		return nil, apperrors.NewValidationError("userID", userID, "must not be empty")
	}
	resolved, err := e.resolveOptions(opts)
	if err != nil {
		return nil, err
	}

	// Per-user mutual exclusion: the active-pattern snapshot read during
	// aggregation must stay valid through synchronization.
	unlock := e.locks.acquire(userID)
	defer unlock()

	start := time.Now()
	now := resolved.Now
	logger := logging.WithUser(e.logger, userID)

	ac, err := e.builder.Build(ctx, userID, aggregate.Options{
		WindowDays:       resolved.AnalysisWindowDays,
		MaxTrades:        e.cfg.Analysis.MaxTrades,
		MaxSessions:      e.cfg.Analysis.MaxSessions,
		MaxConversations: e.cfg.Analysis.MaxConversations,
		MinTradeSample:   e.cfg.Analysis.MinTradeSample,
		Now:              now,
	})
	if err != nil {
		var insufficient *apperrors.InsufficientDataError
		if apperrors.As(err, &insufficient) {
			logger.Info().
				Int("trades", insufficient.TradeCount).
				Int("min_sample", insufficient.MinSample).
				Msg("Insufficient data for analysis")
			return &Result{
				UserID:           userID,
				GeneratedAt:      now,
				InsufficientData: true,
				Message: fmt.Sprintf("Not enough closed trades to analyze: %d of %d required",
					insufficient.TradeCount, insufficient.MinSample),
			}, nil
		}
		return nil, err
	}

	registry := patterns.FilterByType(
		patterns.Registry(*resolved.IncludeCoachingFeedback),
		resolved.ForcedPatternTypes,
	)
	candidates := e.executor.Run(registry, ac, patterns.Params{
		MinFrequency:    resolved.MinFrequency,
		LookForwardDays: e.cfg.Analysis.LookForwardDays,
		Thresholds:      e.cfg.Thresholds,
	})

	ranked := scoring.Process(candidates, e.cfg.Scoring)

	counts, err := e.synchronize(ctx, userID, ranked, now)
	if err != nil {
		return nil, err
	}

	insights := insight.Summarize(ranked, counts.created, counts.updated, e.cfg.Insight)

	logging.LogPassComplete(logger, userID, counts.created, counts.updated, counts.deactivated, time.Since(start))

	return &Result{
		UserID:              userID,
		GeneratedAt:         now,
		PatternsIdentified:  ranked,
		NewPatterns:         counts.created,
		PatternsUpdated:     counts.updated,
		PatternsDeactivated: counts.deactivated,
		CoachingInsights:    insights,
		AnalysisData:        ac,
	}, nil
}

// resolveOptions validates the caller's options and fills defaults.
func (e *Engine) resolveOptions(opts Options) (Options, error) {
	if opts.AnalysisWindowDays < 0 {
		return opts, apperrors.NewValidationError("analysisWindowDays", opts.AnalysisWindowDays, "must not be negative")
	}
	if opts.MinFrequency < 0 {
		return opts, apperrors.NewValidationError("minFrequency", opts.MinFrequency, "must not be negative")
	}
	for _, pt := range opts.ForcedPatternTypes {
		if _, err := models.ParsePatternType(string(pt)); err != nil {
			return opts, apperrors.NewValidationError("forcedPatternTypes", string(pt), "unknown pattern type")
		}
	}

	if opts.AnalysisWindowDays == 0 {
		opts.AnalysisWindowDays = e.cfg.Analysis.WindowDays
	}
	if opts.MinFrequency == 0 {
		opts.MinFrequency = e.cfg.Analysis.MinFrequency
	}
	if opts.IncludeCoachingFeedback == nil {
		include := e.cfg.Analysis.IncludeCoachingFeedback
		opts.IncludeCoachingFeedback = &include
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now().UTC()
	}
	return opts, nil
}
