// Package aggregate builds the derived per-user statistics bundle that the
// pattern analyzers consume. The bundle is ephemeral: it is computed fresh
// for each analysis pass and never persisted.
package aggregate

import (
	"time"

	"trading-coach/internal/models"
)

// Window is the time range covered by one analysis pass.
type Window struct {
	From time.Time
	To   time.Time
}

// Context is the aggregated statistics bundle for one user and window.
// All slices preserve trade-sequence (entry time) order.
type Context struct {
	UserID string
	Window Window

	Trades         []models.Trade
	ClosedTrades   []models.Trade
	Sessions       []models.CoachingSession
	ActivePatterns []models.PsychologyPattern
	Conversations  []models.Conversation

	Overall         TypeSummary
	ByType          map[models.TradeType]TypeSummary
	Streaks         StreakSummary
	Drawdown        DrawdownSummary
	Instruments     map[string]InstrumentSummary
	EmotionalStates map[string]StateSummary
	PlanAdherence   AdherenceSummary
	DailyPnL        []DailyPnL
}

// TypeSummary summarizes closed trades of one trade type (or all of them).
type TypeSummary struct {
	Count        int
	Wins         int
	Losses       int
	WinRate      float64
	TotalPnL     float64
	AvgPnL       float64
	AvgRMultiple float64
	RSamples     int
	BestTrade    float64
	WorstTrade   float64
	BestTradeID  string
	WorstTradeID string
}

// StreakSummary captures win/loss streak extremes over sequence order.
type StreakSummary struct {
	LongestWin  int
	LongestLoss int
	Current     int // positive = winning streak, negative = losing streak
}

// DrawdownSummary captures the peak-to-trough decline of cumulative P&L
// over trade-sequence order, not calendar order.
type DrawdownSummary struct {
	MaxDrawdown float64 // positive magnitude
	Peak        float64
	Trough      float64
}

// InstrumentSummary summarizes closed trades per instrument.
type InstrumentSummary struct {
	Count    int
	Wins     int
	WinRate  float64
	TotalPnL float64
}

// StateSummary summarizes closed trades per recorded emotional state.
type StateSummary struct {
	Count    int
	Wins     int
	WinRate  float64
	TotalPnL float64
	AvgPnL   float64
}

// AdherenceSummary rolls up plan adherence over trades that recorded it.
type AdherenceSummary struct {
	Samples int
	Average float64
	Min     float64
	Max     float64
}

// DailyPnL is one point in the daily P&L series.
type DailyPnL struct {
	Date   string // YYYY-MM-DD
	PnL    float64
	Trades int
}
