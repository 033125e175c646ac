package aggregate

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	apperrors "trading-coach/internal/errors"
	"trading-coach/internal/models"
	"trading-coach/internal/store"
)

// Options bound the cost of one aggregation pass.
type Options struct {
	WindowDays       int
	MaxTrades        int
	MaxSessions      int
	MaxConversations int
	MinTradeSample   int
	Now              time.Time // zero means time.Now
}

// Builder fetches raw records and computes the derived statistics bundle.
type Builder struct {
	store  store.DataStore
	logger zerolog.Logger
}

// NewBuilder creates a new context builder.
func NewBuilder(dataStore store.DataStore, logger zerolog.Logger) *Builder {
	return &Builder{store: dataStore, logger: logger}
}

// fetchResult carries one backing read's outcome through the fan-in join.
type fetchResult struct {
	name string
	err  error
}

// Build fetches trades, sessions, active patterns, and conversations for the
// window concurrently, joins them, and computes every derived statistic.
// Fewer closed trades than MinTradeSample yields an InsufficientDataError;
// given unchanged backing data the result is deterministic.
func (b *Builder) Build(ctx context.Context, userID string, opts Options) (*Context, error) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	window := Window{From: now.AddDate(0, 0, -opts.WindowDays), To: now}

	ac := &Context{
		UserID: userID,
		Window: window,
	}

	// The four reads are independent; issue them concurrently and join
	// before any computation.
	var (
		wg      sync.WaitGroup
		results = make(chan fetchResult, 4)
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		trades, err := b.store.GetTrades(ctx, store.TradeFilter{
			UserID:    userID,
			StartDate: window.From,
			EndDate:   window.To,
			Limit:     opts.MaxTrades,
		})
		ac.Trades = trades
		results <- fetchResult{name: "trades", err: err}
	}()
	go func() {
		defer wg.Done()
		sessions, err := b.store.GetSessions(ctx, store.SessionFilter{
			UserID:    userID,
			StartDate: window.From,
			EndDate:   window.To,
			Limit:     opts.MaxSessions,
		})
		ac.Sessions = sessions
		results <- fetchResult{name: "sessions", err: err}
	}()
	go func() {
		defer wg.Done()
		patterns, err := b.store.GetActivePatterns(ctx, userID)
		ac.ActivePatterns = patterns
		results <- fetchResult{name: "patterns", err: err}
	}()
	go func() {
		defer wg.Done()
		convs, err := b.store.GetConversations(ctx, store.ConversationFilter{
			UserID:    userID,
			StartDate: window.From,
			EndDate:   window.To,
			Limit:     opts.MaxConversations,
		})
		ac.Conversations = convs
		results <- fetchResult{name: "conversations", err: err}
	}()

	wg.Wait()
	close(results)

	for r := range results {
		if r.err != nil {
			return nil, apperrors.NewPersistenceError("aggregate."+r.name, userID, r.err)
		}
	}

	ac.ClosedTrades = closedOnly(ac.Trades)
	if len(ac.ClosedTrades) < opts.MinTradeSample {
		return nil, apperrors.NewInsufficientDataError(userID, len(ac.ClosedTrades), opts.MinTradeSample)
	}

	b.compute(ac)

	b.logger.Debug().
		Str("user_id", userID).
		Int("trades", len(ac.Trades)).
		Int("closed", len(ac.ClosedTrades)).
		Int("sessions", len(ac.Sessions)).
		Int("active_patterns", len(ac.ActivePatterns)).
		Msg("Aggregated context built")

	return ac, nil
}

// compute fills in every derived statistic from the joined raw records.
func (b *Builder) compute(ac *Context) {
	closed := ac.ClosedTrades
	ac.Overall = summarizeTrades(closed)
	ac.ByType = summarizeByType(closed)
	ac.Streaks = computeStreaks(closed)
	ac.Drawdown = computeDrawdown(closed)
	ac.Instruments = instrumentBreakdown(closed)
	ac.EmotionalStates = emotionalBreakdown(closed)
	ac.PlanAdherence = adherenceRollup(closed)
	ac.DailyPnL = dailySeries(closed)
}

// TypeSummaryFor returns the summary for one trade type, zero if absent.
func (c *Context) TypeSummaryFor(tt models.TradeType) TypeSummary {
	if c.ByType == nil {
		return TypeSummary{}
	}
	return c.ByType[tt]
}
