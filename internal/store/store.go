// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"trading-coach/internal/models"
)

// DataStore defines the interface for data persistence.
type DataStore interface {
	// Trades
	SaveTrade(ctx context.Context, trade *models.Trade) error
	GetTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error)

	// Coaching sessions
	SaveSession(ctx context.Context, session *models.CoachingSession) error
	GetSessions(ctx context.Context, filter SessionFilter) ([]models.CoachingSession, error)

	// Conversations
	SaveConversation(ctx context.Context, conv *models.Conversation) error
	GetConversations(ctx context.Context, filter ConversationFilter) ([]models.Conversation, error)

	// Trade plans
	SavePlan(ctx context.Context, plan *models.TradePlan) error
	GetPlan(ctx context.Context, planID string) (*models.TradePlan, error)

	// Psychology patterns. All writes go through a PatternTx so a whole
	// synchronization pass commits or rolls back as a unit.
	GetActivePatterns(ctx context.Context, userID string) ([]models.PsychologyPattern, error)
	GetPatterns(ctx context.Context, filter PatternFilter) ([]models.PsychologyPattern, error)
	BeginPatternSync(ctx context.Context) (PatternTx, error)

	// Pass bookkeeping
	GetLastPass(ctx context.Context, userID string) (time.Time, error)

	// Lifecycle
	Close() error
}

// PatternTx is the explicit transactional scope for one pattern
// synchronization pass. Every exit path must call Commit or Rollback.
type PatternTx interface {
	CreatePattern(ctx context.Context, pattern *models.PsychologyPattern) error
	UpdatePattern(ctx context.Context, pattern *models.PsychologyPattern) error
	DeactivatePattern(ctx context.Context, patternID string, when time.Time) error
	RecordPass(ctx context.Context, userID string, at time.Time) error
	Commit() error
	Rollback() error
}

// TradeFilter represents filters for querying trades.
type TradeFilter struct {
	UserID    string
	StartDate time.Time
	EndDate   time.Time
	Status    models.TradeStatus
	TradeType models.TradeType
	Limit     int
}

// SessionFilter represents filters for querying coaching sessions.
type SessionFilter struct {
	UserID    string
	StartDate time.Time
	EndDate   time.Time
	Limit     int
}

// ConversationFilter represents filters for querying conversations.
type ConversationFilter struct {
	UserID    string
	StartDate time.Time
	EndDate   time.Time
	Limit     int
}

// PatternFilter represents filters for querying psychology patterns.
type PatternFilter struct {
	UserID     string
	ActiveOnly bool
	Types      []models.PatternType
	Limit      int
}
