package models

import (
	"fmt"
	"time"
)

// Trade represents a single executed (or still open) trade.
// Optional fields are pointers: a nil ExitPrice means the trade never closed,
// a nil DisciplineScore means the trader never rated it.
type Trade struct {
	ID               string
	UserID           string
	TradeType        TradeType
	Instrument       string
	Direction        TradeDirection
	EntryPrice       float64
	ExitPrice        *float64
	PnLDollars       *float64
	PnLPoints        *float64
	Status           TradeStatus
	EmotionalState   string
	DisciplineScore  *int    // 0-10
	PlanAdherence    *float64 // 0..1
	RiskAmount       *float64
	StopLoss         *float64
	StopMoved        bool
	VolatilityRegime string
	TradePlanID      string
	DeviationReasons []string
	EntryTime        time.Time
	ExitTime         *time.Time
}

// Closed reports whether the trade has been closed out.
func (t *Trade) Closed() bool {
	return t.Status == TradeStatusClosed
}

// PnL returns the realized dollar P&L, or 0 if not recorded.
func (t *Trade) PnL() float64 {
	if t.PnLDollars == nil {
		return 0
	}
	return *t.PnLDollars
}

// RMultiple returns profit expressed as a multiple of the amount risked.
// Returns (0, false) when the trade has no recorded risk or P&L.
func (t *Trade) RMultiple() (float64, bool) {
	if t.PnLDollars == nil || t.RiskAmount == nil || *t.RiskAmount <= 0 {
		return 0, false
	}
	return *t.PnLDollars / *t.RiskAmount, true
}

// Validate checks structural invariants at the ingestion boundary.
func (t *Trade) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("trade id is required")
	}
	if t.UserID == "" {
		return fmt.Errorf("trade user id is required")
	}
	if t.TradeType != TradeTypeTraining && t.TradeType != TradeTypeReal {
		return fmt.Errorf("invalid trade type: %q", t.TradeType)
	}
	if t.Status != TradeStatusOpen && t.Status != TradeStatusClosed {
		return fmt.Errorf("invalid trade status: %q", t.Status)
	}
	if t.DisciplineScore != nil && (*t.DisciplineScore < 0 || *t.DisciplineScore > 10) {
		return fmt.Errorf("discipline score must be 0-10, got %d", *t.DisciplineScore)
	}
	if t.PlanAdherence != nil && (*t.PlanAdherence < 0 || *t.PlanAdherence > 1) {
		return fmt.Errorf("plan adherence must be 0..1, got %f", *t.PlanAdherence)
	}
	if t.EntryTime.IsZero() {
		return fmt.Errorf("trade entry time is required")
	}
	return nil
}

// CoachingSession represents one coaching conversation with the trader.
type CoachingSession struct {
	ID                 string
	UserID             string
	SessionType        string
	EmotionalTriggers  []string
	BehavioralPatterns []string
	Recommendations    []string
	RelatedTradeIDs    []string
	CreatedAt          time.Time
}

// Validate checks structural invariants at the ingestion boundary.
func (s *CoachingSession) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("session id is required")
	}
	if s.UserID == "" {
		return fmt.Errorf("session user id is required")
	}
	if s.CreatedAt.IsZero() {
		return fmt.Errorf("session created time is required")
	}
	return nil
}

// TradePlan represents a pre-trade plan a trade may be executed against.
type TradePlan struct {
	ID              string
	UserID          string
	Instrument      string
	AdherenceScore  float64
	Deviations      []string
	ExecutedTradeID string // lookup-only back-reference
	CreatedAt       time.Time
}

// Conversation represents a stored chat conversation (metadata only; the
// message contents live with the upload/chat subsystem).
type Conversation struct {
	ID           string
	UserID       string
	Title        string
	MessageCount int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
